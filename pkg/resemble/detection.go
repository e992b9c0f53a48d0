package resemble

import (
	"context"
	"net/http"
	"time"
)

// Media types reported by deepfake detection.
const (
	MediaAudio = "audio"
	MediaImage = "image"
	MediaVideo = "video"
)

// DetectionMetrics holds the audio detection result.
type DetectionMetrics struct {
	Image           string    `json:"image,omitempty"`
	Label           string    `json:"label,omitempty"`
	Score           []float64 `json:"score,omitempty"`
	Certainty       string    `json:"certainty,omitempty"`
	AggregatedScore string    `json:"aggregated_score,omitempty"`
}

// ImageMetrics holds the image detection result.
type ImageMetrics struct {
	Type     string `json:"type"`
	Image    string `json:"image"`
	Label    string `json:"label"`
	Score    string `json:"score"`
	Children []struct {
		Type        string `json:"type"`
		Label       string `json:"label"`
		Description string `json:"description"`
	} `json:"children"`
}

// VideoMetricsChild is one node of the video detection tree.
type VideoMetricsChild struct {
	Type        string              `json:"type"`
	Score       string              `json:"score"`
	Certainty   string              `json:"certainty"`
	Posterior   string              `json:"posterior"`
	Conclusion  string              `json:"conclusion"`
	PatchType   string              `json:"patch_type,omitempty"`
	Violations  []any               `json:"violations,omitempty"`
	Description string              `json:"description,omitempty"`
	Children    []VideoMetricsChild `json:"children,omitempty"`
}

// VideoMetrics holds the video detection result.
type VideoMetrics struct {
	Image     string              `json:"image"`
	Label     string              `json:"label"`
	Score     string              `json:"score"`
	Children  []VideoMetricsChild `json:"children"`
	Treeview  string              `json:"treeview"`
	Certainty string              `json:"certainty"`
	Posterior string              `json:"posterior"`
}

// Detection is a deepfake detection job. Which metrics are set depends on
// MediaType.
type Detection struct {
	UUID         string           `json:"uuid"`
	MediaType    string           `json:"media_type"`
	Metrics      DetectionMetrics `json:"metrics"`
	ImageMetrics *ImageMetrics    `json:"image_metrics,omitempty"`
	VideoMetrics *VideoMetrics    `json:"video_metrics,omitempty"`
	Duration     string           `json:"duration,omitempty"`
	URL          string           `json:"url,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// DetectionInput submits media for detection. Only URL is required; the
// remaining fields apply to some media types only.
type DetectionInput struct {
	URL         string `json:"url"`
	CallbackURL string `json:"callback_url,omitempty"`
	Visualize   bool   `json:"visualize,omitempty"`

	// Audio and video
	FrameLength int     `json:"frame_length,omitempty"`
	StartRegion float64 `json:"start_region,omitempty"`
	EndRegion   float64 `json:"end_region,omitempty"`

	// Image and video
	Pipeline string `json:"pipeline,omitempty"`

	// Video
	MaxVideoFPS  float64 `json:"max_video_fps,omitempty"`
	MaxVideoSecs float64 `json:"max_video_secs,omitempty"`
	ModelTypes   string  `json:"model_types,omitempty"` // image or talking_head
}

// DetectionService handles deepfake detection.
type DetectionService service

// Create submits media and returns immediately. Poll Get, or wait for the
// callback, for the result.
func (s *DetectionService) Create(ctx context.Context, in DetectionInput) (*WriteResponse[Detection], error) {
	return doJSON[WriteResponse[Detection]](ctx, s.client, http.MethodPost, appServer, "detect", in)
}

// CreateSync submits media and asks the server to hold the response until
// the detection has finished.
func (s *DetectionService) CreateSync(ctx context.Context, in DetectionInput) (*WriteResponse[Detection], error) {
	cl, err := jsonCall(http.MethodPost, appServer, "detect", in)
	if err != nil {
		return nil, err
	}
	cl.header = http.Header{"Prefer": []string{"wait"}}
	return doCall[WriteResponse[Detection]](ctx, s.client, cl)
}

// Get fetches a detection.
func (s *DetectionService) Get(ctx context.Context, uuid string) (*ReadResponse[Detection], error) {
	return doJSON[ReadResponse[Detection]](ctx, s.client, http.MethodGet, appServer, "detect/"+uuid, nil)
}
