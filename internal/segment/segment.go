// Package segment renders one motion clip per background image.
package segment

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	ffmpeggo "github.com/u2takey/ffmpeg-go"
	"golang.org/x/sync/errgroup"

	"github.com/ZacxDev/video-composer/internal/ffmpeg"
	"github.com/ZacxDev/video-composer/internal/format"
)

// Segment is a rendered clip for one source image.
type Segment struct {
	Index    int
	Source   string
	Path     string
	Duration float64
	Filter   Spec
}

// Synthesizer encodes image segments through a shared Processor.
type Synthesizer struct {
	proc     *ffmpeg.Processor
	settings ffmpeg.Settings
	motion   Motion
	workers  int
	log      zerolog.Logger
}

// NewSynthesizer creates a Synthesizer. workers bounds how many segments of
// one run are encoded at once; 1 encodes them strictly in order.
func NewSynthesizer(proc *ffmpeg.Processor, settings ffmpeg.Settings, motion Motion, workers int, log zerolog.Logger) *Synthesizer {
	if workers < 1 {
		workers = 1
	}
	return &Synthesizer{
		proc:     proc,
		settings: settings,
		motion:   motion,
		workers:  workers,
		log:      log.With().Str("component", "segment").Logger(),
	}
}

// Synthesize renders one segment per image into dir/segments, each lasting
// totalDuration/len(images). The returned slice follows image order. If any
// segment fails, every segment already written is removed.
func (s *Synthesizer) Synthesize(ctx context.Context, images []string, f format.Format, totalDuration float64, dir string) ([]Segment, error) {
	if len(images) == 0 {
		return nil, &ffmpeg.EncodingError{Op: "segment", Output: dir, Err: errors.New("no input images")}
	}
	if totalDuration <= 0 {
		return nil, &ffmpeg.EncodingError{Op: "segment", Output: dir, Err: errors.Errorf("invalid total duration %.3f", totalDuration)}
	}

	segDir := filepath.Join(dir, "segments")
	if err := os.MkdirAll(segDir, 0755); err != nil {
		return nil, &ffmpeg.EncodingError{Op: "segment", Output: segDir, Err: errors.Wrap(err, "failed to create segment directory")}
	}

	duration := totalDuration / float64(len(images))
	segments := make([]Segment, len(images))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, img := range images {
		i, img := i, img
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			seg, err := s.render(gctx, i, img, duration, f, segDir)
			if err != nil {
				return err
			}
			segments[i] = seg
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if rmErr := os.RemoveAll(segDir); rmErr != nil {
			s.log.Error().Err(rmErr).Str("dir", segDir).Msg("failed to remove partial segments")
		}
		return nil, err
	}

	s.log.Info().Int("segments", len(segments)).Float64("segment_duration", duration).Msg("segments ready")
	return segments, nil
}

func (s *Synthesizer) render(ctx context.Context, index int, image string, duration float64, f format.Format, dir string) (Segment, error) {
	spec := BuildFilter(index, duration, f, s.motion)
	out := filepath.Join(dir, fmt.Sprintf("segment_%03d.mp4", index))
	seconds := fmt.Sprintf("%.3f", duration)

	stream := ffmpeggo.Input(image, ffmpeggo.KwArgs{
		"loop":      1,
		"framerate": s.fps(),
		"t":         seconds,
	}).Output(out, ffmpeggo.MergeKwArgs([]ffmpeggo.KwArgs{
		s.settings.VideoArgs(s.settings.CRF),
		{
			"vf": spec.Graph,
			"r":  s.fps(),
			"t":  seconds,
			"an": "",
		},
	}))

	s.log.Debug().Int("segment", index).Str("image", image).Float64("amp_x", spec.AmpX).Float64("amp_y", spec.AmpY).Msg("rendering segment")
	if err := s.proc.Execute(ctx, "segment", stream, out); err != nil {
		return Segment{}, errors.Wrapf(err, "segment %d (%s)", index, filepath.Base(image))
	}

	return Segment{Index: index, Source: image, Path: out, Duration: duration, Filter: spec}, nil
}

func (s *Synthesizer) fps() int {
	if s.motion.FPS <= 0 {
		return 30
	}
	return s.motion.FPS
}
