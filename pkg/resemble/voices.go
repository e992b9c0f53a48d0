package resemble

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// Voice is a synthetic voice.
type Voice struct {
	UUID               string    `json:"uuid"`
	Name               string    `json:"name"`
	Status             string    `json:"status"`
	DefaultLanguage    string    `json:"default_language"`
	SupportedLanguages []string  `json:"supported_languages"`
	SampleURL          string    `json:"sample_url,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// VoiceInput is the body of voice create and update requests.
type VoiceInput struct {
	Name        string `json:"name"`
	DatasetURL  string `json:"dataset_url,omitempty"`
	CallbackURI string `json:"callback_uri,omitempty"`
	Consent     string `json:"consent,omitempty"`
}

// VoiceQuery selects optional fields in voice listings and lookups.
type VoiceQuery struct {
	SampleURL bool // include a sample audio URL
	Filters   bool // include filter metadata
}

func (q *VoiceQuery) values() url.Values {
	v := url.Values{}
	if q == nil {
		return v
	}
	if q.SampleURL {
		v.Set("sample_url", "true")
	}
	if q.Filters {
		v.Set("filters", "true")
	}
	return v
}

// VoicesService handles the voices resource.
type VoicesService service

// List returns one page of voices. q may be nil.
func (s *VoicesService) List(ctx context.Context, page, pageSize int, q *VoiceQuery) (*PaginationResponse[Voice], error) {
	return doJSON[PaginationResponse[Voice]](ctx, s.client, http.MethodGet, appServer,
		pagePath("voices", page, pageSize, q.values()), nil)
}

// Get fetches one voice. q may be nil.
func (s *VoicesService) Get(ctx context.Context, uuid string, q *VoiceQuery) (*ReadResponse[Voice], error) {
	return doJSON[ReadResponse[Voice]](ctx, s.client, http.MethodGet, appServer,
		withQuery("voices/"+uuid, q.values()), nil)
}

// Create creates a voice.
func (s *VoicesService) Create(ctx context.Context, in VoiceInput) (*WriteResponse[Voice], error) {
	return doJSON[WriteResponse[Voice]](ctx, s.client, http.MethodPost, appServer, "voices", in)
}

// Update replaces a voice's attributes.
func (s *VoicesService) Update(ctx context.Context, uuid string, in VoiceInput) (*UpdateResponse[Voice], error) {
	return doJSON[UpdateResponse[Voice]](ctx, s.client, http.MethodPut, appServer, "voices/"+uuid, in)
}

// Delete deletes a voice.
func (s *VoicesService) Delete(ctx context.Context, uuid string) (*DeleteResponse, error) {
	return doJSON[DeleteResponse](ctx, s.client, http.MethodDelete, appServer, "voices/"+uuid, nil)
}

// Build starts training a voice from its recordings.
func (s *VoicesService) Build(ctx context.Context, uuid string) (*Response, error) {
	return doJSON[Response](ctx, s.client, http.MethodPost, appServer, "voices/"+uuid+"/build", nil)
}
