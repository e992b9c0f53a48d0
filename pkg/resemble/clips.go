package resemble

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/resemble-ai/resemble-go/pkg/streamdecoder"
)

// Clip is a synthesized piece of text in a project.
type Clip struct {
	UUID       string                    `json:"uuid"`
	Title      string                    `json:"title"`
	Body       string                    `json:"body"`
	VoiceUUID  string                    `json:"voice_uuid"`
	IsPublic   bool                      `json:"is_public"`
	IsArchived bool                      `json:"is_archived"`
	Timestamps *streamdecoder.Timestamps `json:"timestamps,omitempty"`
	AudioSrc   string                    `json:"audio_src,omitempty"`
	RawAudio   string                    `json:"raw_audio,omitempty"` // base64, only for raw sync clips
	CreatedAt  time.Time                 `json:"created_at"`
	UpdatedAt  time.Time                 `json:"updated_at"`
}

// ClipInput holds the fields shared by clip create and update requests.
type ClipInput struct {
	Title             string `json:"title,omitempty"`
	Body              string `json:"body"`
	VoiceUUID         string `json:"voice_uuid"`
	IsPublic          bool   `json:"is_public"`
	IsArchived        bool   `json:"is_archived"`
	SampleRate        int    `json:"sample_rate,omitempty"`   // 16000, 22050 or 44100
	OutputFormat      string `json:"output_format,omitempty"` // wav or mp3
	Precision         string `json:"precision,omitempty"`     // PCM_16 or PCM_32
	IncludeTimestamps bool   `json:"include_timestamps,omitempty"`
}

// SyncClipInput creates a clip and waits for its audio.
type SyncClipInput struct {
	ClipInput
	Raw bool `json:"raw,omitempty"`
}

// AsyncClipInput creates a clip whose audio is delivered to CallbackURI.
type AsyncClipInput struct {
	ClipInput
	CallbackURI string `json:"callback_uri"`
}

// DirectClipInput is synthesized by the synthesis server without creating
// a stored clip.
type DirectClipInput struct {
	VoiceUUID    string `json:"voice_uuid"`
	ProjectUUID  string `json:"project_uuid"`
	Title        string `json:"title,omitempty"`
	Data         string `json:"data"`
	Precision    string `json:"precision,omitempty"`     // MULAW, PCM_16, PCM_24 or PCM_32
	OutputFormat string `json:"output_format,omitempty"` // wav or mp3
	SampleRate   int    `json:"sample_rate,omitempty"`
}

// DirectClip is the result of direct synthesis.
type DirectClip struct {
	Response
	AudioContent    string                    `json:"audio_content"` // base64
	AudioTimestamps *streamdecoder.Timestamps `json:"audio_timestamps"`
	Duration        float64                   `json:"duration"`
	SynthDuration   float64                   `json:"synth_duration"`
	OutputFormat    string                    `json:"output_format"`
	SampleRate      int                       `json:"sample_rate"`
	Issues          []string                  `json:"issues,omitempty"`
}

// Audio decodes AudioContent.
func (d *DirectClip) Audio() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(d.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("failed to decode audio content: %w", err)
	}
	return data, nil
}

// ClipsService handles the clips of a project and synthesis requests.
type ClipsService service

func clipsPath(projectUUID string) string {
	return "projects/" + projectUUID + "/clips"
}

// List returns one page of a project's clips.
func (s *ClipsService) List(ctx context.Context, projectUUID string, page, pageSize int) (*PaginationResponse[Clip], error) {
	return doJSON[PaginationResponse[Clip]](ctx, s.client, http.MethodGet, appServer,
		pagePath(clipsPath(projectUUID), page, pageSize, nil), nil)
}

// Get fetches one clip.
func (s *ClipsService) Get(ctx context.Context, projectUUID, uuid string) (*ReadResponse[Clip], error) {
	return doJSON[ReadResponse[Clip]](ctx, s.client, http.MethodGet, appServer,
		clipsPath(projectUUID)+"/"+uuid, nil)
}

// CreateSync creates a clip and returns once its audio is rendered.
func (s *ClipsService) CreateSync(ctx context.Context, projectUUID string, in SyncClipInput) (*WriteResponse[Clip], error) {
	return doJSON[WriteResponse[Clip]](ctx, s.client, http.MethodPost, appServer, clipsPath(projectUUID), in)
}

// CreateAsync creates a clip and returns immediately. The rendered clip is
// posted to in.CallbackURI.
func (s *ClipsService) CreateAsync(ctx context.Context, projectUUID string, in AsyncClipInput) (*WriteResponse[Clip], error) {
	return doJSON[WriteResponse[Clip]](ctx, s.client, http.MethodPost, appServer, clipsPath(projectUUID), in)
}

// UpdateAsync re-renders a clip with new input. The result is posted to
// in.CallbackURI.
func (s *ClipsService) UpdateAsync(ctx context.Context, projectUUID, uuid string, in AsyncClipInput) (*UpdateResponse[Clip], error) {
	return doJSON[UpdateResponse[Clip]](ctx, s.client, http.MethodPut, appServer,
		clipsPath(projectUUID)+"/"+uuid, in)
}

// Delete deletes a clip.
func (s *ClipsService) Delete(ctx context.Context, projectUUID, uuid string) (*DeleteResponse, error) {
	return doJSON[DeleteResponse](ctx, s.client, http.MethodDelete, appServer,
		clipsPath(projectUUID)+"/"+uuid, nil)
}

// CreateDirect synthesizes in.Data on the synthesis server and returns the
// audio inline.
func (s *ClipsService) CreateDirect(ctx context.Context, in DirectClipInput) (*DirectClip, error) {
	return doJSON[DirectClip](ctx, s.client, http.MethodPost, synthesisServer, "synthesize", in)
}
