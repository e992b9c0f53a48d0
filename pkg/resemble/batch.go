package resemble

import (
	"context"
	"net/http"
	"time"
)

// Batch is a group of clips synthesized together.
type Batch struct {
	UUID           string      `json:"uuid"`
	Body           [][2]string `json:"body"` // [title, text] pairs
	VoiceUUID      string      `json:"voice_uuid"`
	CallbackURI    string      `json:"callback_uri,omitempty"`
	TotalCount     int         `json:"total_count"`
	CompletedCount int         `json:"completed_count"`
	FailedCount    int         `json:"failed_count"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// BatchConfig holds the optional synthesis settings of a batch.
type BatchConfig struct {
	CallbackURI  string
	Precision    string // PCM_16, PCM_32 or MULAW
	SampleRate   int    // 8000, 16000, 22050 or 44100
	OutputFormat string // wav or mp3
}

type batchRequest struct {
	Body         any    `json:"body"`
	VoiceUUID    string `json:"voice_uuid"`
	SampleRate   int    `json:"sample_rate,omitempty"`
	OutputFormat string `json:"output_format,omitempty"`
	Precision    string `json:"precision,omitempty"`
	CallbackURI  string `json:"callback_uri,omitempty"`
}

// BatchService handles the batches of a project.
type BatchService service

func batchPath(projectUUID string) string {
	return "/projects/" + projectUUID + "/batch"
}

// List returns one page of a project's batches.
func (s *BatchService) List(ctx context.Context, projectUUID string, page, pageSize int) (*PaginationResponse[Batch], error) {
	return doJSON[PaginationResponse[Batch]](ctx, s.client, http.MethodGet, appServer,
		pagePath(batchPath(projectUUID), page, pageSize, nil), nil)
}

// Create submits one clip per text in body.
func (s *BatchService) Create(ctx context.Context, projectUUID, voiceUUID string, body []string, cfg BatchConfig) (*WriteResponse[Batch], error) {
	return s.create(ctx, projectUUID, voiceUUID, body, cfg)
}

// CreateTitled submits one clip per [title, text] pair.
func (s *BatchService) CreateTitled(ctx context.Context, projectUUID, voiceUUID string, body [][2]string, cfg BatchConfig) (*WriteResponse[Batch], error) {
	return s.create(ctx, projectUUID, voiceUUID, body, cfg)
}

func (s *BatchService) create(ctx context.Context, projectUUID, voiceUUID string, body any, cfg BatchConfig) (*WriteResponse[Batch], error) {
	req := batchRequest{
		Body:         body,
		VoiceUUID:    voiceUUID,
		SampleRate:   cfg.SampleRate,
		OutputFormat: cfg.OutputFormat,
		Precision:    cfg.Precision,
		CallbackURI:  cfg.CallbackURI,
	}
	return doJSON[WriteResponse[Batch]](ctx, s.client, http.MethodPost, appServer, batchPath(projectUUID), req)
}

// Get fetches one batch.
func (s *BatchService) Get(ctx context.Context, projectUUID, uuid string) (*ReadResponse[Batch], error) {
	return doJSON[ReadResponse[Batch]](ctx, s.client, http.MethodGet, appServer,
		batchPath(projectUUID)+"/"+uuid, nil)
}

// Delete deletes a batch.
func (s *BatchService) Delete(ctx context.Context, projectUUID, uuid string) (*DeleteResponse, error) {
	return doJSON[DeleteResponse](ctx, s.client, http.MethodDelete, appServer,
		batchPath(projectUUID)+"/"+uuid, nil)
}
