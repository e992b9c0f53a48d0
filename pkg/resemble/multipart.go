package resemble

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

type formField struct {
	name, value string
}

// multipartCall builds a POST whose body is a multipart form holding fields
// followed by file under fileField. file is read in full so the body can be
// replayed.
func multipartCall(srv server, path string, fields []formField, fileField, filename string, file io.Reader) (call, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return call{}, fmt.Errorf("failed to write form field %s: %w", f.name, err)
		}
	}

	part, err := mw.CreateFormFile(fileField, filename)
	if err != nil {
		return call{}, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return call{}, fmt.Errorf("failed to read %s: %w", fileField, err)
	}
	if err := mw.Close(); err != nil {
		return call{}, fmt.Errorf("failed to finish form: %w", err)
	}

	return call{
		method:      http.MethodPost,
		srv:         srv,
		path:        path,
		body:        body.Bytes(),
		contentType: mw.FormDataContentType(),
	}, nil
}
