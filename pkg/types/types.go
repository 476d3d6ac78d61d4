package types

type ProcessingFormat string

const (
	ProcessingFormatShorts ProcessingFormat = "shorts"
	ProcessingFormatNormal ProcessingFormat = "normal"
)

// GenerationResult is what a finished composition reports back to callers.
type GenerationResult struct {
	RequestID     string `json:"request_id"`
	VideoPath     string `json:"video_path"`
	ThumbnailPath string `json:"thumbnail_path"`
	ScriptPath    string `json:"script_path"`
}

// MediaInfo summarizes a probed media file.
type MediaInfo struct {
	Path     string  `json:"path"`
	Duration float64 `json:"duration"`
	Width    int     `json:"width,omitempty"`
	Height   int     `json:"height,omitempty"`
	Codec    string  `json:"codec,omitempty"`
	HasVideo bool    `json:"has_video"`
	HasAudio bool    `json:"has_audio"`
}
