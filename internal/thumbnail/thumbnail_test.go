package thumbnail

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZacxDev/video-composer/internal/ffmpeg"
	"github.com/ZacxDev/video-composer/internal/ffmpeg/ffmpegtest"
)

func newExtractor(runner ffmpeg.Runner, prober ffmpeg.Prober) *Extractor {
	return NewExtractor(ffmpeg.NewProcessor(runner, prober, 1, zerolog.Nop()), 1, zerolog.Nop())
}

func TestExtract(t *testing.T) {
	runner := &ffmpegtest.Runner{}
	thumb := filepath.Join(t.TempDir(), "video", "req_thumbnail.jpg")

	err := newExtractor(runner, &ffmpegtest.Prober{Default: 10}).Extract(context.Background(), "final.mp4", thumb, 1080, 1920)
	require.NoError(t, err)
	assert.FileExists(t, thumb)

	call := runner.CallsFor("thumbnail")[0]
	assert.Equal(t, "1.000", ffmpegtest.Flag(call, "-ss"))
	assert.Equal(t, "1", ffmpegtest.Flag(call, "-frames:v"))
	assert.Equal(t, "scale=1080:1920:force_original_aspect_ratio=increase,crop=1080:1920", ffmpegtest.Flag(call, "-vf"))
}

func TestExtractShortVideoUsesFirstFrame(t *testing.T) {
	runner := &ffmpegtest.Runner{}
	thumb := filepath.Join(t.TempDir(), "thumb.jpg")

	require.NoError(t, newExtractor(runner, &ffmpegtest.Prober{Default: 0.8}).Extract(context.Background(), "short.mp4", thumb, 1920, 1080))
	assert.Equal(t, "0.000", ffmpegtest.Flag(runner.Calls()[0], "-ss"))
}

func TestExtractUnreadableSource(t *testing.T) {
	runner := &ffmpegtest.Runner{}
	prober := &ffmpegtest.Prober{Errors: map[string]error{"broken.mp4": errors.New("invalid data found")}}

	err := newExtractor(runner, prober).Extract(context.Background(), "broken.mp4", filepath.Join(t.TempDir(), "t.jpg"), 1080, 1920)

	var extErr *ExtractionError
	require.True(t, errors.As(err, &extErr))
	assert.Equal(t, "broken.mp4", extErr.Source)
	assert.Empty(t, runner.Calls())
}

func TestExtractEncoderFailure(t *testing.T) {
	runner := &ffmpegtest.Runner{Fail: ffmpegtest.FailOp("thumbnail")}

	err := newExtractor(runner, &ffmpegtest.Prober{Default: 10}).Extract(context.Background(), "final.mp4", filepath.Join(t.TempDir(), "t.jpg"), 1080, 1920)

	var extErr *ExtractionError
	assert.True(t, errors.As(err, &extErr))
}
