package resemble

import (
	"net/url"
	"strconv"
)

// pagePath appends page and page_size to path. A pageSize of 0 leaves the
// page size to the server.
func pagePath(path string, page, pageSize int, extra url.Values) string {
	q := url.Values{}
	for k, v := range extra {
		q[k] = v
	}
	q.Set("page", strconv.Itoa(page))
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}
	return path + "?" + q.Encode()
}

// withQuery appends a non-empty query to path.
func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
