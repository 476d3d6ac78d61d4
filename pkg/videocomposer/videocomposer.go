// Package videocomposer is the public entry point for composing narrated
// short-form videos from images, a voice track and a script.
package videocomposer

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/ZacxDev/video-composer/internal/caption"
	"github.com/ZacxDev/video-composer/internal/composer"
	"github.com/ZacxDev/video-composer/internal/config"
	"github.com/ZacxDev/video-composer/internal/ffmpeg"
	"github.com/ZacxDev/video-composer/internal/format"
	"github.com/ZacxDev/video-composer/internal/segment"
	"github.com/ZacxDev/video-composer/internal/thumbnail"
	"github.com/ZacxDev/video-composer/internal/transcript"
	"github.com/ZacxDev/video-composer/pkg/types"
)

// ComposeOptions defines one composition request
type ComposeOptions struct {
	RequestID  string // generated when empty
	AudioPath  string
	Title      string
	Script     string
	Language   string
	Images     []string
	Format     string
	OutputRoot string // defaults to the configured output root
	Hashtags   []string
	TTSModel   string
	Voice      string
	Progress   func(percent int)
}

// Composer wires the encoder, transcript, caption and thumbnail stages
// together from a Config.
type Composer struct {
	cfg         *config.Config
	proc        *ffmpeg.Processor
	transcripts *transcript.Acquirer
	pipeline    *composer.Composer
	log         zerolog.Logger
}

// New builds a Composer that runs the real encoder and speech recognizer.
func New(cfg *config.Config, log zerolog.Logger) (*Composer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var recognizer transcript.Recognizer
	if len(cfg.Transcript.Command) > 0 {
		recognizer = transcript.NewWhisperEngine(cfg.Transcript.Command, cfg.Transcript.Timeout, log)
	}

	return NewWithDeps(cfg,
		ffmpeg.NewExecRunner(cfg.Encoder.FFmpegPath, log),
		ffmpeg.FFProbe{Timeout: cfg.Encoder.ProbeTimeout},
		recognizer,
		log,
	), nil
}

// NewWithDeps builds a Composer around the given encoder runner, prober and
// recognizer. A nil recognizer skips speech recognition entirely.
func NewWithDeps(cfg *config.Config, runner ffmpeg.Runner, prober ffmpeg.Prober, recognizer transcript.Recognizer, log zerolog.Logger) *Composer {
	settings := ffmpeg.Settings{
		VideoCodec:   cfg.Encoder.VideoCodec,
		AudioCodec:   cfg.Encoder.AudioCodec,
		Preset:       cfg.Encoder.Preset,
		CRF:          cfg.Encoder.CRF,
		PixelFormat:  cfg.Encoder.PixelFormat,
		AudioBitrate: cfg.Encoder.AudioBitrate,
	}
	style := caption.Style{
		Font:          cfg.Captions.Font,
		Color:         cfg.Captions.Color,
		OutlineColor:  cfg.Captions.OutlineColor,
		Outline:       cfg.Captions.Outline,
		WordDelay:     cfg.Captions.WordDelay,
		PopScale:      cfg.Captions.PopScale,
		PopDuration:   cfg.Captions.PopDuration,
		FadeMs:        cfg.Captions.FadeMs,
		PlainFontSize: cfg.Captions.PlainFontSize,
		MarginV:       cfg.Captions.MarginV,
		FontPaths:     cfg.Captions.FontPaths,
	}
	titleStyle := caption.TitleStyle{
		Color:       cfg.Title.Color,
		BorderColor: cfg.Title.BorderColor,
		BorderWidth: cfg.Title.BorderWidth,
		TopRatio:    cfg.Title.TopRatio,
		LineSpacing: cfg.Title.LineSpacing,
	}
	motion := segment.Motion{
		FPS:         cfg.Motion.FPS,
		ZoomCeiling: cfg.Motion.ZoomCeiling,
		MaxPan:      cfg.Motion.MaxPan,
		Fade:        cfg.Motion.Fade,
		Seed:        cfg.Motion.Seed,
	}

	proc := ffmpeg.NewProcessor(runner, prober, cfg.Encoder.MaxConcurrent, log.With().Str("component", "ffmpeg").Logger())
	transcripts := transcript.NewAcquirer(recognizer, cfg.Transcript.MaxWordsPerCaption, log)

	pipeline := composer.New(
		proc,
		segment.NewSynthesizer(proc, settings, motion, cfg.Encoder.SegmentWorkers, log.With().Str("component", "segment").Logger()),
		transcripts,
		caption.NewRenderer(proc, settings, cfg.Encoder.IntermediateCRF, style, titleStyle, log.With().Str("component", "caption").Logger()),
		thumbnail.NewExtractor(proc, cfg.Thumbnail.At, log.With().Str("component", "thumbnail").Logger()),
		composer.Options{
			TempRoot:        cfg.Paths.TempRoot,
			Settings:        settings,
			IntermediateCRF: cfg.Encoder.IntermediateCRF,
			TitleInBase:     cfg.Encoder.TitleInBase,
			Language:        cfg.Transcript.Language,
			CaptionEffect:   style.CaptionEffect(),
			TitleEffect:     titleStyle.TitleEffect(cfg.Captions.Font),
		},
		log.With().Str("component", "composer").Logger(),
	)

	return &Composer{
		cfg:         cfg,
		proc:        proc,
		transcripts: transcripts,
		pipeline:    pipeline,
		log:         log,
	}
}

// Compose renders a video and returns where its outputs were written.
func (c *Composer) Compose(ctx context.Context, opts *ComposeOptions) (*types.GenerationResult, error) {
	f, err := format.Get(opts.Format)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	requestID := opts.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}
	outputRoot := opts.OutputRoot
	if outputRoot == "" {
		outputRoot = c.cfg.Paths.OutputRoot
	}

	res, err := c.pipeline.Compose(ctx, composer.Request{
		RequestID:  requestID,
		AudioPath:  opts.AudioPath,
		Title:      opts.Title,
		Script:     opts.Script,
		Language:   opts.Language,
		Images:     opts.Images,
		Format:     f,
		OutputRoot: outputRoot,
		Progress:   opts.Progress,
		Hashtags:   opts.Hashtags,
		TTSModel:   opts.TTSModel,
		Voice:      opts.Voice,
	})
	if err != nil {
		return nil, err
	}

	return &types.GenerationResult{
		RequestID:     requestID,
		VideoPath:     res.VideoPath,
		ThumbnailPath: res.ThumbnailPath,
		ScriptPath:    res.ScriptPath,
	}, nil
}

// Transcribe times script against audioPath and returns it as SRT text.
func (c *Composer) Transcribe(ctx context.Context, audioPath, script, language string) (string, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return "", errors.Wrapf(err, "audio %s is not readable", audioPath)
	}
	meta, err := c.proc.Metadata(audioPath)
	if err != nil {
		return "", err
	}
	if language == "" {
		language = c.cfg.Transcript.Language
	}

	units := c.transcripts.Acquire(ctx, audioPath, script, language, meta.Duration)
	return caption.BuildSRT(caption.FromUnits(units, nil)), nil
}

// Probe reports the duration and stream layout of a media file.
func (c *Composer) Probe(path string) (*types.MediaInfo, error) {
	meta, err := c.proc.Metadata(path)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return &types.MediaInfo{
		Path:     abs,
		Duration: meta.Duration,
		Width:    meta.Width,
		Height:   meta.Height,
		Codec:    meta.Codec,
		HasVideo: meta.HasVideo,
		HasAudio: meta.HasAudio,
	}, nil
}

// GetSupportedFormats returns the names accepted by ComposeOptions.Format
func GetSupportedFormats() []string {
	return format.Supported()
}
