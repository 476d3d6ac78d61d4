package composer

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/ZacxDev/video-composer/internal/format"
)

// RenderContext is the scratch space and fixed geometry of one run. It is
// passed by value and never modified after creation.
type RenderContext struct {
	RequestID string
	Dir       string
	Format    format.Format
	Width     int
	Height    int
	Duration  float64
}

// acquireRenderContext creates the run's temp directory under root, made
// absolute. The returned release func removes it; removal errors are logged,
// not returned.
func acquireRenderContext(root, requestID string, f format.Format, duration float64, log zerolog.Logger) (RenderContext, func(), error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return RenderContext{}, func() {}, errors.Wrap(err, "failed to resolve temp root")
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return RenderContext{}, func() {}, errors.Wrap(err, "failed to create temp root")
	}

	dir, err := os.MkdirTemp(root, fmt.Sprintf("%s_%d_", requestID, time.Now().Unix()))
	if err != nil {
		return RenderContext{}, func() {}, errors.Wrap(err, "failed to create temp directory")
	}

	w, h := f.Dimensions()
	rc := RenderContext{
		RequestID: requestID,
		Dir:       dir,
		Format:    f,
		Width:     w,
		Height:    h,
		Duration:  duration,
	}

	release := func() {
		if err := os.RemoveAll(dir); err != nil {
			log.Error().Err(err).Str("dir", dir).Msg("failed to remove temp directory")
			return
		}
		log.Debug().Str("dir", dir).Msg("temp directory removed")
	}
	return rc, release, nil
}
