package resemble

import (
	"context"
	"io"
	"net/http"
	"time"
)

// AudioEdit replaces words in a recording with speech in a voice.
type AudioEdit struct {
	UUID               string    `json:"uuid"`
	VoiceUUID          string    `json:"voice_uuid"`
	OriginalTranscript string    `json:"original_transcript"`
	TargetTranscript   string    `json:"target_transcript"`
	InputAudioURL      string    `json:"input_audio_url"`
	ResultAudioURL     string    `json:"result_audio_url"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// AudioEditInput describes an edit. OriginalTranscript must match the
// uploaded audio.
type AudioEditInput struct {
	OriginalTranscript string
	TargetTranscript   string
	VoiceUUID          string
}

// AudioEditService handles audio edits.
type AudioEditService service

// List returns one page of audio edits.
func (s *AudioEditService) List(ctx context.Context, page int) (*PaginationResponse[AudioEdit], error) {
	return doJSON[PaginationResponse[AudioEdit]](ctx, s.client, http.MethodGet, appServer,
		pagePath("edit", page, 0, nil), nil)
}

// Get fetches one audio edit.
func (s *AudioEditService) Get(ctx context.Context, uuid string) (*ReadResponse[AudioEdit], error) {
	return doJSON[ReadResponse[AudioEdit]](ctx, s.client, http.MethodGet, appServer, "edit/"+uuid, nil)
}

// Create uploads audio and starts an edit. The audio is read in full and
// sent as the input_audio part of a multipart form.
func (s *AudioEditService) Create(ctx context.Context, in AudioEditInput, audio io.Reader, filename string) (*WriteResponse[AudioEdit], error) {
	if filename == "" {
		filename = "input.wav"
	}
	cl, err := multipartCall(appServer, "edit/"+in.VoiceUUID, []formField{
		{"original_transcript", in.OriginalTranscript},
		{"target_transcript", in.TargetTranscript},
		{"voice_uuid", in.VoiceUUID},
	}, "input_audio", filename, audio)
	if err != nil {
		return nil, err
	}
	return doCall[WriteResponse[AudioEdit]](ctx, s.client, cl)
}
