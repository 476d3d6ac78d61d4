package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	// Output frame rate for every rendered segment
	DefaultFPS = 30

	// Quality bounds for x264 CRF
	MinCRF = 0
	MaxCRF = 51

	// Motion defaults
	DefaultZoomCeiling = 1.05
	DefaultMaxPan      = 30.0 // pixels
	DefaultFade        = 0.5  // seconds

	// Caption animation defaults
	DefaultWordDelay   = 0.2 // seconds between word reveals
	DefaultPopScale    = 120 // percent
	DefaultPopDuration = 0.2 // seconds

	// Thumbnail capture offset
	DefaultThumbnailAt = 1.0 // seconds
)

// Config is the full runtime configuration of the composer.
type Config struct {
	Paths      PathsConfig      `yaml:"paths"`
	Encoder    EncoderConfig    `yaml:"encoder"`
	Motion     MotionConfig     `yaml:"motion"`
	Transcript TranscriptConfig `yaml:"transcript"`
	Captions   CaptionConfig    `yaml:"captions"`
	Title      TitleConfig      `yaml:"title"`
	Thumbnail  ThumbnailConfig  `yaml:"thumbnail"`
}

type PathsConfig struct {
	OutputRoot string `yaml:"output_root"`
	TempRoot   string `yaml:"temp_root"`
}

type EncoderConfig struct {
	FFmpegPath      string        `yaml:"ffmpeg_path"`
	VideoCodec      string        `yaml:"video_codec"`
	AudioCodec      string        `yaml:"audio_codec"`
	Preset          string        `yaml:"preset"`
	CRF             int           `yaml:"crf"`
	IntermediateCRF int           `yaml:"intermediate_crf"`
	AudioBitrate    string        `yaml:"audio_bitrate"`
	PixelFormat     string        `yaml:"pixel_format"`
	MaxConcurrent   int           `yaml:"max_concurrent"`
	SegmentWorkers  int           `yaml:"segment_workers"`
	ProbeTimeout    time.Duration `yaml:"probe_timeout"`
	// TitleInBase draws the title during the mux invocation instead of a
	// separate re-encode.
	TitleInBase bool `yaml:"title_in_base"`
}

type MotionConfig struct {
	FPS         int     `yaml:"fps"`
	ZoomCeiling float64 `yaml:"zoom_ceiling"`
	MaxPan      float64 `yaml:"max_pan"`
	Fade        float64 `yaml:"fade"`
	Seed        int64   `yaml:"seed"`
}

type TranscriptConfig struct {
	Command            []string      `yaml:"command"`
	Language           string        `yaml:"language"`
	Timeout            time.Duration `yaml:"timeout"`
	MaxWordsPerCaption int           `yaml:"max_words_per_caption"`
}

type CaptionConfig struct {
	Font          string   `yaml:"font"`
	Color         string   `yaml:"color"`
	OutlineColor  string   `yaml:"outline_color"`
	Outline       int      `yaml:"outline"`
	WordDelay     float64  `yaml:"word_delay"`
	PopScale      int      `yaml:"pop_scale"`
	PopDuration   float64  `yaml:"pop_duration"`
	FadeMs        int      `yaml:"fade_ms"`
	PlainFontSize int      `yaml:"plain_font_size"`
	MarginV       int      `yaml:"margin_v"`
	FontPaths     []string `yaml:"font_paths"`
}

type TitleConfig struct {
	Color       string  `yaml:"color"`
	BorderColor string  `yaml:"border_color"`
	BorderWidth int     `yaml:"border_width"`
	TopRatio    float64 `yaml:"top_ratio"`
	LineSpacing float64 `yaml:"line_spacing"`
}

type ThumbnailConfig struct {
	At float64 `yaml:"at"`
}

// Default returns the configuration used when no file or env override is set.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			OutputRoot: "output",
			TempRoot:   filepath.Join(os.TempDir(), "video-composer"),
		},
		Encoder: EncoderConfig{
			FFmpegPath:      "ffmpeg",
			VideoCodec:      "libx264",
			AudioCodec:      "aac",
			Preset:          "medium",
			CRF:             23,
			IntermediateCRF: 18,
			AudioBitrate:    "192k",
			PixelFormat:     "yuv420p",
			MaxConcurrent:   2,
			SegmentWorkers:  1,
			ProbeTimeout:    30 * time.Second,
		},
		Motion: MotionConfig{
			FPS:         DefaultFPS,
			ZoomCeiling: DefaultZoomCeiling,
			MaxPan:      DefaultMaxPan,
			Fade:        DefaultFade,
			Seed:        time.Now().UnixNano(),
		},
		Transcript: TranscriptConfig{
			Command:            []string{"python3", "whisper_transcribe.py"},
			Language:           "vi",
			Timeout:            5 * time.Minute,
			MaxWordsPerCaption: 4,
		},
		Captions: CaptionConfig{
			Font:          "Arial",
			Color:         "yellow",
			OutlineColor:  "black",
			Outline:       2,
			WordDelay:     DefaultWordDelay,
			PopScale:      DefaultPopScale,
			PopDuration:   DefaultPopDuration,
			FadeMs:        200,
			PlainFontSize: 24,
			MarginV:       60,
			FontPaths: []string{
				"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
				"/usr/share/fonts/TTF/DejaVuSans-Bold.ttf",
				"/System/Library/Fonts/Supplemental/Arial Bold.ttf",
				"/Library/Fonts/Arial Bold.ttf",
				"C:/Windows/Fonts/arialbd.ttf",
			},
		},
		Title: TitleConfig{
			Color:       "yellow",
			BorderColor: "black",
			BorderWidth: 3,
			TopRatio:    0.25,
			LineSpacing: 1.2,
		},
		Thumbnail: ThumbnailConfig{
			At: DefaultThumbnailAt,
		},
	}
}

// Load builds a Config from defaults, an optional YAML file and environment
// overrides. A .env file in the working directory is loaded when present.
func Load(path string) (*Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "failed to load .env")
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read config %s", path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "failed to parse config %s", path)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("FFMPEG_PATH"); v != "" {
		c.Encoder.FFmpegPath = v
	}
	if v := os.Getenv("WHISPER_COMMAND"); v != "" {
		c.Transcript.Command = strings.Fields(v)
	}
	if v := os.Getenv("COMPOSER_OUTPUT_ROOT"); v != "" {
		c.Paths.OutputRoot = v
	}
	if v := os.Getenv("COMPOSER_TEMP_ROOT"); v != "" {
		c.Paths.TempRoot = v
	}
	if v := os.Getenv("COMPOSER_MAX_ENCODES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(err, "invalid COMPOSER_MAX_ENCODES")
		}
		c.Encoder.MaxConcurrent = n
	}
	return nil
}

// Validate rejects settings that would make every encode fail.
func (c *Config) Validate() error {
	switch {
	case c.Motion.FPS <= 0:
		return errors.Errorf("motion.fps must be positive, got %d", c.Motion.FPS)
	case c.Motion.ZoomCeiling < 1:
		return errors.Errorf("motion.zoom_ceiling must be >= 1, got %.3f", c.Motion.ZoomCeiling)
	case c.Encoder.MaxConcurrent <= 0:
		return errors.Errorf("encoder.max_concurrent must be positive, got %d", c.Encoder.MaxConcurrent)
	case c.Encoder.SegmentWorkers <= 0:
		return errors.Errorf("encoder.segment_workers must be positive, got %d", c.Encoder.SegmentWorkers)
	case c.Encoder.CRF < MinCRF || c.Encoder.CRF > MaxCRF:
		return errors.Errorf("encoder.crf must be in [%d, %d], got %d", MinCRF, MaxCRF, c.Encoder.CRF)
	case c.Encoder.IntermediateCRF < MinCRF || c.Encoder.IntermediateCRF > MaxCRF:
		return errors.Errorf("encoder.intermediate_crf must be in [%d, %d], got %d", MinCRF, MaxCRF, c.Encoder.IntermediateCRF)
	case c.Encoder.FFmpegPath == "":
		return errors.New("encoder.ffmpeg_path must not be empty")
	}
	return nil
}
