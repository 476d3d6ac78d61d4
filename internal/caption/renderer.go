package caption

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	ffmpeggo "github.com/u2takey/ffmpeg-go"

	"github.com/ZacxDev/video-composer/internal/fallback"
	"github.com/ZacxDev/video-composer/internal/ffmpeg"
	"github.com/ZacxDev/video-composer/internal/format"
)

const (
	TierAnimated = "animated"
	TierPlain    = "plain"
	TierBurnIn   = "burnin"
)

// RenderError is a failed caption or title rendering attempt.
type RenderError struct {
	Tier string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("caption tier %s: %v", e.Tier, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Job is the video a render step works on. Every file the step writes goes
// into Dir.
type Job struct {
	Dir    string
	Format format.Format
	Input  string
}

// Renderer draws titles and captions onto videos.
type Renderer struct {
	proc            *ffmpeg.Processor
	settings        ffmpeg.Settings
	intermediateCRF int
	style           Style
	title           TitleStyle
	fontFile        string
	log             zerolog.Logger
}

// NewRenderer creates a Renderer. Title renders use intermediateCRF since
// captions are drawn on top of them afterwards.
func NewRenderer(proc *ffmpeg.Processor, settings ffmpeg.Settings, intermediateCRF int, style Style, title TitleStyle, log zerolog.Logger) *Renderer {
	return &Renderer{
		proc:            proc,
		settings:        settings,
		intermediateCRF: intermediateCRF,
		style:           style,
		title:           title,
		fontFile:        ResolveFont(style.FontPaths),
		log:             log.With().Str("component", "caption").Logger(),
	}
}

// TitleFilter wraps the title to the format's line width and returns one
// drawtext filter per line, stacked downward from the configured top ratio.
func (r *Renderer) TitleFilter(job Job, title TextClip) (string, error) {
	_, h := job.Format.Dimensions()
	size := r.title.FontSize
	if size <= 0 {
		size = job.Format.TitleFontSize()
	}

	lines := WrapLines(title.Text, NewMeasurer(size), format.LineWidth(job.Format))
	if len(lines) == 0 {
		return "", errors.New("title is empty")
	}

	ts := r.title.withEffect(title.Effect)
	box := "black@0.4"
	font := ""
	if title.Effect != nil {
		if title.Effect.Background != "" {
			box = title.Effect.Background
		}
		font = title.Effect.Font
	}
	lineHeight := int(float64(size) * ts.LineSpacing)
	top := int(float64(h) * ts.TopRatio)

	filters := make([]string, 0, len(lines))
	for i, line := range lines {
		path, err := writeTextFile(job.Dir, fmt.Sprintf("title_%02d.txt", i), line)
		if err != nil {
			return "", err
		}
		filters = append(filters, drawText{
			TextFile:    path,
			FontFile:    r.fontFile,
			Font:        font,
			FontSize:    size,
			Color:       ts.Color,
			BorderColor: ts.BorderColor,
			BorderWidth: ts.BorderWidth,
			Box:         box,
			X:           "(w-text_w)/2",
			Y:           strconv.Itoa(top + i*lineHeight),
			Start:       title.Start,
			End:         title.End,
		}.filter())
	}

	r.log.Debug().Int("lines", len(lines)).Int("font_size", size).Msg("title wrapped")
	return strings.Join(filters, ","), nil
}

// ApplyTitle burns the title into job.Input and returns the new video path.
func (r *Renderer) ApplyTitle(ctx context.Context, job Job, title TextClip) (string, error) {
	vf, err := r.TitleFilter(job, title)
	if err != nil {
		return "", &RenderError{Tier: "title", Err: err}
	}
	out := filepath.Join(job.Dir, "titled.mp4")
	if err := r.overlay(ctx, "title", job.Input, out, vf, r.intermediateCRF); err != nil {
		return "", &RenderError{Tier: "title", Err: err}
	}
	return out, nil
}

// ApplyCaptions tries the animated, plain and burn-in tiers in order. Each
// tier renders to its own file, so a failed tier leaves job.Input intact.
// When every tier fails the input path is returned unchanged.
func (r *Renderer) ApplyCaptions(ctx context.Context, job Job, clips []TextClip) string {
	if len(clips) == 0 {
		r.log.Info().Msg("no captions to render")
		return job.Input
	}

	out, tier, err := fallback.First(ctx, r.log,
		r.tier(TierAnimated, job, clips, r.animated),
		r.tier(TierPlain, job, clips, r.plain),
		r.tier(TierBurnIn, job, clips, r.burnIn),
	)
	if err != nil {
		r.log.Warn().Err(err).Msg("every caption tier failed, keeping uncaptioned video")
		return job.Input
	}

	r.log.Info().Str("tier", tier).Int("captions", len(clips)).Msg("captions rendered")
	return out
}

type tierFunc func(ctx context.Context, job Job, clips []TextClip) (string, error)

func (r *Renderer) tier(name string, job Job, clips []TextClip, fn tierFunc) fallback.Tier[string] {
	return fallback.Tier[string]{
		Name: name,
		Run: func(ctx context.Context) (string, error) {
			out, err := fn(ctx, job, clips)
			if err != nil {
				return "", &RenderError{Tier: name, Err: err}
			}
			return out, nil
		},
	}
}

func (r *Renderer) animated(ctx context.Context, job Job, clips []TextClip) (string, error) {
	w, h := job.Format.Dimensions()
	doc := BuildASS(clips, w, h, r.captionSize(job.Format), r.style)
	path, err := writeTextFile(job.Dir, "captions.ass", doc)
	if err != nil {
		return "", err
	}

	out := filepath.Join(job.Dir, "captions_animated.mp4")
	vf := fmt.Sprintf("subtitles=filename='%s'", ffmpeg.EscapeFilterPath(path))
	if err := r.overlay(ctx, "captions:"+TierAnimated, job.Input, out, vf, r.settings.CRF); err != nil {
		return "", err
	}
	return out, nil
}

func (r *Renderer) plain(ctx context.Context, job Job, clips []TextClip) (string, error) {
	path, err := writeTextFile(job.Dir, "captions.srt", BuildSRT(clips))
	if err != nil {
		return "", err
	}

	out := filepath.Join(job.Dir, "captions_plain.mp4")
	// SRT carries no styling, so the first clip's effect styles the whole document
	style := r.style.withEffect(firstEffect(clips))
	vf := fmt.Sprintf("subtitles=filename='%s':force_style='%s'", ffmpeg.EscapeFilterPath(path), style.forceStyle())
	if err := r.overlay(ctx, "captions:"+TierPlain, job.Input, out, vf, r.settings.CRF); err != nil {
		return "", err
	}
	return out, nil
}

func (r *Renderer) burnIn(ctx context.Context, job Job, clips []TextClip) (string, error) {
	_, h := job.Format.Dimensions()
	size := r.captionSize(job.Format)
	measure := NewMeasurer(size)
	maxWidth := format.LineWidth(job.Format)

	filters := make([]string, 0, len(clips))
	for i, c := range clips {
		lines := WrapLines(c.Text, measure, maxWidth)
		if len(lines) == 0 {
			continue
		}
		path, err := writeTextFile(job.Dir, fmt.Sprintf("caption_%03d.txt", i), strings.Join(lines, "\n"))
		if err != nil {
			return "", err
		}
		style := r.style.withEffect(c.Effect)
		filters = append(filters, drawText{
			TextFile:    path,
			FontFile:    r.fontFile,
			Font:        style.Font,
			FontSize:    size,
			Color:       style.Color,
			BorderColor: style.OutlineColor,
			BorderWidth: style.Outline,
			X:           "(w-text_w)/2",
			Y:           fmt.Sprintf("%d-text_h/2", h*2/3),
			Start:       c.Start,
			End:         c.End,
		}.filter())
	}
	if len(filters) == 0 {
		return "", errors.New("no caption text to draw")
	}

	out := filepath.Join(job.Dir, "captions_burnin.mp4")
	if err := r.overlay(ctx, "captions:"+TierBurnIn, job.Input, out, strings.Join(filters, ","), r.settings.CRF); err != nil {
		return "", err
	}
	return out, nil
}

func (r *Renderer) overlay(ctx context.Context, op, input, output, vf string, crf int) error {
	stream := ffmpeggo.Input(input).Output(output, ffmpeggo.MergeKwArgs([]ffmpeggo.KwArgs{
		r.settings.VideoArgs(crf),
		{"vf": vf, "c:a": "copy"},
	}))
	return r.proc.Execute(ctx, op, stream, output)
}

func (r *Renderer) captionSize(f format.Format) int {
	if r.style.FontSize > 0 {
		return r.style.FontSize
	}
	return f.CaptionFontSize()
}
