// Package thumbnail grabs a still frame from a finished video.
package thumbnail

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	ffmpeggo "github.com/u2takey/ffmpeg-go"

	"github.com/ZacxDev/video-composer/internal/ffmpeg"
)

// ExtractionError reports a thumbnail that could not be produced.
type ExtractionError struct {
	Source string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("thumbnail extraction from %s failed: %v", e.Source, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Extractor captures one frame at a fixed offset.
type Extractor struct {
	proc *ffmpeg.Processor
	at   float64
	log  zerolog.Logger
}

// NewExtractor creates an Extractor that seeks to at seconds.
func NewExtractor(proc *ffmpeg.Processor, at float64, log zerolog.Logger) *Extractor {
	return &Extractor{proc: proc, at: at, log: log}
}

// Extract writes a width x height JPEG of videoPath to thumbPath. Videos
// shorter than the seek offset are captured from their first frame.
func (e *Extractor) Extract(ctx context.Context, videoPath, thumbPath string, width, height int) error {
	meta, err := e.proc.Metadata(videoPath)
	if err != nil {
		return &ExtractionError{Source: videoPath, Err: err}
	}
	if !meta.HasVideo {
		return &ExtractionError{Source: videoPath, Err: errors.New("no video stream")}
	}

	at := e.at
	if meta.Duration <= at {
		at = 0
	}

	if err := os.MkdirAll(filepath.Dir(thumbPath), 0755); err != nil {
		return &ExtractionError{Source: videoPath, Err: errors.WithStack(err)}
	}

	stream := ffmpeggo.Input(videoPath, ffmpeggo.KwArgs{"ss": fmt.Sprintf("%.3f", at)}).
		Output(thumbPath, ffmpeggo.KwArgs{
			"frames:v": 1,
			"vf":       fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d", width, height, width, height),
			"q:v":      2,
		})

	if err := e.proc.Execute(ctx, "thumbnail", stream, thumbPath); err != nil {
		return &ExtractionError{Source: videoPath, Err: err}
	}

	e.log.Debug().Str("thumbnail", thumbPath).Float64("at", at).Msg("thumbnail extracted")
	return nil
}
