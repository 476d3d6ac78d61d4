package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 30, cfg.Motion.FPS)
	assert.Equal(t, 1.05, cfg.Motion.ZoomCeiling)
	assert.Equal(t, "vi", cfg.Transcript.Language)
}

func TestLoadOverridesFromFile(t *testing.T) {

	path := filepath.Join(t.TempDir(), "composer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
encoder:
  max_concurrent: 4
  segment_workers: 3
  title_in_base: true
transcript:
  language: en
  timeout: 90s
motion:
  seed: 42
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Encoder.MaxConcurrent)
	assert.Equal(t, 3, cfg.Encoder.SegmentWorkers)
	assert.True(t, cfg.Encoder.TitleInBase)
	assert.Equal(t, "en", cfg.Transcript.Language)
	assert.Equal(t, 90*time.Second, cfg.Transcript.Timeout)
	assert.Equal(t, int64(42), cfg.Motion.Seed)
	// untouched keys keep their defaults
	assert.Equal(t, "libx264", cfg.Encoder.VideoCodec)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("FFMPEG_PATH", "/opt/ffmpeg/bin/ffmpeg")
	t.Setenv("WHISPER_COMMAND", "whisper-json --model small")
	t.Setenv("COMPOSER_MAX_ENCODES", "6")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/opt/ffmpeg/bin/ffmpeg", cfg.Encoder.FFmpegPath)
	assert.Equal(t, []string{"whisper-json", "--model", "small"}, cfg.Transcript.Command)
	assert.Equal(t, 6, cfg.Encoder.MaxConcurrent)
}

func TestLoadRejectsBadEnv(t *testing.T) {
	t.Setenv("COMPOSER_MAX_ENCODES", "lots")

	_, err := Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Encoder.CRF = 60
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Motion.FPS = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Encoder.MaxConcurrent = 0
	assert.Error(t, cfg.Validate())
}
