package segment

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZacxDev/video-composer/internal/ffmpeg"
	"github.com/ZacxDev/video-composer/internal/ffmpeg/ffmpegtest"
	"github.com/ZacxDev/video-composer/internal/format"
)

var testMotion = Motion{FPS: 30, ZoomCeiling: 1.05, MaxPan: 30, Fade: 0.5, Seed: 7}

func shorts(t *testing.T) format.Format {
	f, err := format.Get("shorts")
	require.NoError(t, err)
	return f
}

func TestBuildFilterIsDeterministic(t *testing.T) {
	f := shorts(t)
	a := BuildFilter(2, 3.3333, f, testMotion)
	b := BuildFilter(2, 3.3333, f, testMotion)
	assert.Equal(t, a, b)

	c := BuildFilter(3, 3.3333, f, testMotion)
	assert.NotEqual(t, a.Graph, c.Graph)

	other := testMotion
	other.Seed = 8
	assert.NotEqual(t, a.Graph, BuildFilter(2, 3.3333, f, other).Graph)
}

func TestBuildFilterChain(t *testing.T) {
	spec := BuildFilter(0, 4, shorts(t), testMotion)

	assert.Equal(t, 120, spec.Frames)
	parts := strings.Split(spec.Graph, ",fade")
	require.Len(t, parts, 3)
	assert.True(t, strings.HasPrefix(spec.Graph, "scale=1080:1920:force_original_aspect_ratio=increase,crop=1080:1920,zoompan=z='min(1+0.0500*on/119,1.0500)'"))
	assert.Contains(t, spec.Graph, ":d=1:s=1080x1920:fps=30")
	assert.Contains(t, spec.Graph, "fade=t=in:st=0:d=0.500")
	assert.Contains(t, spec.Graph, "fade=t=out:st=3.500:d=0.500")
}

func TestBuildFilterPanIsBounded(t *testing.T) {
	f := shorts(t)
	seenX := map[float64]bool{}
	for i := 0; i < 50; i++ {
		spec := BuildFilter(i, 2, f, testMotion)
		assert.LessOrEqual(t, math.Abs(spec.AmpX), 30.0)
		assert.LessOrEqual(t, math.Abs(spec.AmpY), 30.0)
		seenX[spec.AmpX] = true
	}
	assert.Greater(t, len(seenX), 40, "each segment should draw its own motion")
}

func TestBuildFilterShortSegmentShrinksFades(t *testing.T) {
	spec := BuildFilter(0, 0.6, shorts(t), testMotion)
	assert.Contains(t, spec.Graph, "fade=t=in:st=0:d=0.300")
	assert.Contains(t, spec.Graph, "fade=t=out:st=0.300:d=0.300")
}

func newSynth(runner ffmpeg.Runner, workers int) *Synthesizer {
	proc := ffmpeg.NewProcessor(runner, &ffmpegtest.Prober{}, 4, zerolog.Nop())
	settings := ffmpeg.Settings{VideoCodec: "libx264", AudioCodec: "aac", Preset: "medium", CRF: 23, PixelFormat: "yuv420p", AudioBitrate: "192k"}
	return NewSynthesizer(proc, settings, testMotion, workers, zerolog.Nop())
}

func TestSynthesizeProducesOneSegmentPerImage(t *testing.T) {
	for _, workers := range []int{1, 3} {
		runner := &ffmpegtest.Runner{}
		dir := t.TempDir()
		images := []string{"a.png", "b.png", "c.png"}

		segs, err := newSynth(runner, workers).Synthesize(context.Background(), images, shorts(t), 10, dir)
		require.NoError(t, err)
		require.Len(t, segs, 3)

		for i, seg := range segs {
			assert.Equal(t, i, seg.Index)
			assert.Equal(t, images[i], seg.Source)
			assert.InDelta(t, 10.0/3, seg.Duration, 1.0/30)
			assert.FileExists(t, seg.Path)
		}

		calls := runner.CallsFor("segment")
		require.Len(t, calls, 3)
		for _, c := range calls {
			assert.Equal(t, "3.333", ffmpegtest.Flag(c, "-t"))
			assert.Equal(t, "1", ffmpegtest.Flag(c, "-loop"))
			assert.Contains(t, ffmpegtest.Flag(c, "-vf"), "zoompan=")
			assert.True(t, ffmpegtest.HasArg(c, "-an"))
		}
	}
}

func TestSynthesizeAbortsAndCleansUp(t *testing.T) {
	runner := &ffmpegtest.Runner{Fail: func(inv ffmpeg.Invocation) error {
		if strings.HasSuffix(inv.Output, "segment_001.mp4") {
			return errors.New("exit status 1")
		}
		return nil
	}}
	dir := t.TempDir()

	segs, err := newSynth(runner, 1).Synthesize(context.Background(), []string{"a.png", "b.png", "c.png"}, shorts(t), 9, dir)
	require.Error(t, err)
	assert.Nil(t, segs)

	var encErr *ffmpeg.EncodingError
	assert.True(t, errors.As(err, &encErr))

	_, statErr := os.Stat(filepath.Join(dir, "segments"))
	assert.True(t, os.IsNotExist(statErr))
	// sequential mode never reaches the third image
	assert.Len(t, runner.Calls(), 2)
}

func TestSynthesizeRejectsEmptyInput(t *testing.T) {
	_, err := newSynth(&ffmpegtest.Runner{}, 1).Synthesize(context.Background(), nil, shorts(t), 9, t.TempDir())

	var encErr *ffmpeg.EncodingError
	assert.True(t, errors.As(err, &encErr))
}
