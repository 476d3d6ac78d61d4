// Package composer sequences a narrated video from segments, audio, title
// and captions, and owns every temporary file a run creates.
package composer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	ffmpeggo "github.com/u2takey/ffmpeg-go"
	"golang.org/x/sync/errgroup"

	"github.com/ZacxDev/video-composer/internal/caption"
	"github.com/ZacxDev/video-composer/internal/ffmpeg"
	"github.com/ZacxDev/video-composer/internal/format"
	"github.com/ZacxDev/video-composer/internal/segment"
	"github.com/ZacxDev/video-composer/internal/transcript"
)

// ProgressFunc receives completion percentages in [0, 100].
type ProgressFunc func(percent int)

// Request is everything needed to compose one video.
type Request struct {
	RequestID  string
	AudioPath  string
	Title      string
	Script     string
	Language   string
	Images     []string
	Format     format.Format
	OutputRoot string
	Progress   ProgressFunc

	// Recorded in the script file only
	Hashtags []string
	TTSModel string
	Voice    string
}

// Result lists the persisted outputs of a run.
type Result struct {
	VideoPath     string
	ThumbnailPath string
	ScriptPath    string
}

// Transcriber produces caption units and never fails.
type Transcriber interface {
	Acquire(ctx context.Context, audioPath, script, language string, duration float64) []transcript.Unit
}

// TextRenderer draws the title and captions.
type TextRenderer interface {
	TitleFilter(job caption.Job, title caption.TextClip) (string, error)
	ApplyTitle(ctx context.Context, job caption.Job, title caption.TextClip) (string, error)
	ApplyCaptions(ctx context.Context, job caption.Job, clips []caption.TextClip) string
}

// ThumbnailExtractor captures a still from a finished video.
type ThumbnailExtractor interface {
	Extract(ctx context.Context, videoPath, thumbPath string, width, height int) error
}

// Options tune a Composer.
type Options struct {
	TempRoot        string
	Settings        ffmpeg.Settings
	IntermediateCRF int
	// TitleInBase draws the title in the mux invocation, saving one
	// re-encode of the whole video.
	TitleInBase   bool
	Language      string
	CaptionEffect *caption.Effect
	TitleEffect   *caption.Effect
}

// Composer runs the pipeline. A Composer is safe for concurrent use; each
// Compose call works in its own temp directory.
type Composer struct {
	proc        *ffmpeg.Processor
	segments    *segment.Synthesizer
	transcripts Transcriber
	text        TextRenderer
	thumbs      ThumbnailExtractor
	opts        Options
	log         zerolog.Logger
}

// New creates a Composer.
func New(proc *ffmpeg.Processor, segments *segment.Synthesizer, transcripts Transcriber, text TextRenderer, thumbs ThumbnailExtractor, opts Options, log zerolog.Logger) *Composer {
	return &Composer{
		proc:        proc,
		segments:    segments,
		transcripts: transcripts,
		text:        text,
		thumbs:      thumbs,
		opts:        opts,
		log:         log,
	}
}

// run tracks one Compose call.
type run struct {
	state    State
	progress ProgressFunc
	log      zerolog.Logger
}

func (r *run) enter(s State) {
	r.log.Info().Str("from", r.state.String()).Str("to", s.String()).Msg("state transition")
	r.state = s
	if pct, ok := progress[s]; ok {
		r.report(pct)
	}
}

func (r *run) report(pct int) {
	if r.progress != nil {
		r.progress(pct)
	}
}

func (r *run) fail(err error) error {
	at := r.state
	r.state = Failed
	r.log.Error().Err(err).Str("state", at.String()).Msg("composition failed")
	return errors.Wrapf(err, "compose failed in state %s", at)
}

// Compose renders req and persists the video, thumbnail and script file. The
// run's temp directory is removed before Compose returns, whatever the
// outcome.
func (c *Composer) Compose(ctx context.Context, req Request) (*Result, error) {
	r := &run{
		state:    Idle,
		progress: req.Progress,
		log:      c.log.With().Str("request_id", req.RequestID).Logger(),
	}

	images, duration, err := c.validate(&req)
	if err != nil {
		return nil, r.fail(err)
	}
	r.report(progress[Idle])

	rc, release, err := acquireRenderContext(c.opts.TempRoot, req.RequestID, req.Format, duration, r.log)
	defer release()
	if err != nil {
		return nil, r.fail(err)
	}
	r.report(progressPrepared)

	// Idle -> SegmentsReady, with caption timing acquired alongside
	var segs []segment.Segment
	var units []transcript.Unit
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		segs, err = c.segments.Synthesize(gctx, images, rc.Format, rc.Duration, rc.Dir)
		return err
	})
	g.Go(func() error {
		units = c.transcripts.Acquire(gctx, req.AudioPath, req.Script, req.Language, rc.Duration)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, r.fail(err)
	}
	r.enter(SegmentsReady)

	// SegmentsReady -> BaseMuxed
	title := caption.TitleClip(req.Title, rc.Duration, c.opts.TitleEffect)
	hasTitle := strings.TrimSpace(req.Title) != ""

	base, titled, err := c.mux(ctx, rc, segs, req.AudioPath, title, hasTitle, r.log)
	if err != nil {
		return nil, r.fail(err)
	}
	r.enter(BaseMuxed)
	current := base

	// BaseMuxed -> TitleApplied
	if hasTitle && !titled {
		out, err := c.text.ApplyTitle(ctx, caption.Job{Dir: rc.Dir, Format: rc.Format, Input: current}, title)
		if err != nil {
			r.log.Warn().Err(err).Msg("title overlay failed, continuing without title")
		} else {
			current = out
		}
	}
	r.enter(TitleApplied)

	// TitleApplied -> CaptionsApplied
	clips := caption.FromUnits(units, c.opts.CaptionEffect)
	current = c.text.ApplyCaptions(ctx, caption.Job{Dir: rc.Dir, Format: rc.Format, Input: current}, clips)
	r.enter(CaptionsApplied)

	// CaptionsApplied -> ThumbnailExtracted
	thumb := filepath.Join(rc.Dir, "thumbnail.jpg")
	if err := c.thumbs.Extract(ctx, current, thumb, rc.Width, rc.Height); err != nil {
		return nil, r.fail(err)
	}
	r.enter(ThumbnailExtracted)

	// ThumbnailExtracted -> Done
	layout := newLayout(req.OutputRoot, req.RequestID)
	if err := layout.persist(current, thumb, req); err != nil {
		layout.remove()
		return nil, r.fail(err)
	}
	r.enter(Done)

	return &Result{
		VideoPath:     layout.VideoPath,
		ThumbnailPath: layout.ThumbnailPath,
		ScriptPath:    layout.ScriptPath,
	}, nil
}

// mux concatenates the segments and lays the narration under them, stopping
// at whichever stream ends first. When configured, the title is drawn in the
// same pass and titled is true.
func (c *Composer) mux(ctx context.Context, rc RenderContext, segs []segment.Segment, audioPath string, title caption.TextClip, hasTitle bool, log zerolog.Logger) (out string, titled bool, err error) {
	list := filepath.Join(rc.Dir, "concat.txt")
	paths := lo.Map(segs, func(s segment.Segment, _ int) string { return s.Path })
	if err := ffmpeg.WriteConcatList(list, paths); err != nil {
		return "", false, err
	}

	out = filepath.Join(rc.Dir, "base.mp4")
	vf := fmt.Sprintf("scale=%d:%d,setsar=1", rc.Width, rc.Height)

	if c.opts.TitleInBase && hasTitle {
		tf, err := c.text.TitleFilter(caption.Job{Dir: rc.Dir, Format: rc.Format, Input: out}, title)
		if err != nil {
			log.Warn().Err(err).Msg("title could not be prepared for the mux pass")
		} else {
			vf += "," + tf
			titled = true
		}
	}

	video := ffmpeggo.Input(list, ffmpeggo.KwArgs{"f": "concat", "safe": "0"})
	audio := ffmpeggo.Input(audioPath)
	stream := ffmpeggo.Output(
		[]*ffmpeggo.Stream{video.Video(), audio.Audio()},
		out,
		ffmpeggo.MergeKwArgs([]ffmpeggo.KwArgs{
			c.opts.Settings.MuxArgs(c.opts.IntermediateCRF),
			{"vf": vf, "shortest": ""},
		}),
	)

	if err := c.proc.Execute(ctx, "mux", stream, out); err != nil {
		return "", false, err
	}
	return out, titled, nil
}

func (c *Composer) validate(req *Request) ([]string, float64, error) {
	if req.Format == nil {
		return nil, 0, inputErrorf("format is required")
	}
	if req.RequestID == "" || strings.ContainsAny(req.RequestID, `/\`) || strings.Contains(req.RequestID, "..") {
		return nil, 0, inputErrorf("invalid request id %q", req.RequestID)
	}
	if req.OutputRoot == "" {
		return nil, 0, inputErrorf("output root is required")
	}
	if req.Language == "" {
		req.Language = c.opts.Language
	}

	if _, err := os.Stat(req.AudioPath); err != nil {
		return nil, 0, inputErrorf("audio %q is not readable: %v", req.AudioPath, err)
	}
	meta, err := c.proc.Metadata(req.AudioPath)
	if err != nil {
		return nil, 0, inputErrorf("audio %q could not be probed: %v", req.AudioPath, err)
	}
	if meta.Duration <= 0 {
		return nil, 0, inputErrorf("audio %q has no duration", req.AudioPath)
	}

	images := lo.Filter(req.Images, func(path string, _ int) bool {
		info, err := os.Stat(path)
		return err == nil && !info.IsDir()
	})
	if dropped := len(req.Images) - len(images); dropped > 0 {
		c.log.Warn().Int("dropped", dropped).Msg("skipping images that do not exist")
	}
	if len(images) == 0 {
		return nil, 0, inputErrorf("no valid images among %d provided", len(req.Images))
	}

	return images, meta.Duration, nil
}
