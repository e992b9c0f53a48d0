package resemble

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Recording is one training sample of a voice.
type Recording struct {
	UUID      string    `json:"uuid"`
	Name      string    `json:"name"`
	Text      string    `json:"text"`
	Emotion   string    `json:"emotion"`
	IsActive  bool      `json:"is_active"`
	AudioSrc  string    `json:"audio_src"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RecordingInput is the body of recording create and update requests.
type RecordingInput struct {
	Name     string `json:"name"`
	Text     string `json:"text"`
	Emotion  string `json:"emotion"`
	IsActive bool   `json:"is_active"`
}

// RecordingsService handles the recordings of a voice.
type RecordingsService service

func recordingsPath(voiceUUID string) string {
	return "voices/" + voiceUUID + "/recordings"
}

// List returns one page of a voice's recordings.
func (s *RecordingsService) List(ctx context.Context, voiceUUID string, page, pageSize int) (*PaginationResponse[Recording], error) {
	return doJSON[PaginationResponse[Recording]](ctx, s.client, http.MethodGet, appServer,
		pagePath(recordingsPath(voiceUUID), page, pageSize, nil), nil)
}

// Get fetches one recording.
func (s *RecordingsService) Get(ctx context.Context, voiceUUID, uuid string) (*ReadResponse[Recording], error) {
	return doJSON[ReadResponse[Recording]](ctx, s.client, http.MethodGet, appServer,
		recordingsPath(voiceUUID)+"/"+uuid, nil)
}

// Create uploads a recording. The audio is read from file in full and sent
// as a multipart form together with the input fields.
func (s *RecordingsService) Create(ctx context.Context, voiceUUID string, in RecordingInput, file io.Reader, filename string) (*WriteResponse[Recording], error) {
	if filename == "" {
		filename = "recording.wav"
	}
	cl, err := multipartCall(appServer, recordingsPath(voiceUUID), []formField{
		{"name", in.Name},
		{"text", in.Text},
		{"emotion", in.Emotion},
		{"is_active", strconv.FormatBool(in.IsActive)},
	}, "file", filename, file)
	if err != nil {
		return nil, err
	}
	return doCall[WriteResponse[Recording]](ctx, s.client, cl)
}

// Update replaces a recording's attributes. The audio cannot be changed.
func (s *RecordingsService) Update(ctx context.Context, voiceUUID, uuid string, in RecordingInput) (*UpdateResponse[Recording], error) {
	return doJSON[UpdateResponse[Recording]](ctx, s.client, http.MethodPut, appServer,
		recordingsPath(voiceUUID)+"/"+uuid, in)
}

// Delete deletes a recording.
func (s *RecordingsService) Delete(ctx context.Context, voiceUUID, uuid string) (*DeleteResponse, error) {
	return doJSON[DeleteResponse](ctx, s.client, http.MethodDelete, appServer,
		recordingsPath(voiceUUID)+"/"+uuid, nil)
}
