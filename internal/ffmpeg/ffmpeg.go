package ffmpeg

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	ffmpeg "github.com/u2takey/ffmpeg-go"
	"golang.org/x/sync/semaphore"
)

// Settings holds the codec choices applied to every encode of a run.
type Settings struct {
	VideoCodec   string
	AudioCodec   string
	Preset       string
	CRF          int
	PixelFormat  string
	AudioBitrate string
}

// VideoArgs returns output flags for a video-only or video-copying-audio encode
// at the given CRF.
func (s Settings) VideoArgs(crf int) ffmpeg.KwArgs {
	return ffmpeg.KwArgs{
		"c:v":      s.VideoCodec,
		"preset":   s.Preset,
		"crf":      crf,
		"pix_fmt":  s.PixelFormat,
		"movflags": "+faststart",
	}
}

// MuxArgs extends VideoArgs with audio encoding flags.
func (s Settings) MuxArgs(crf int) ffmpeg.KwArgs {
	kw := s.VideoArgs(crf)
	kw["c:a"] = s.AudioCodec
	kw["b:a"] = s.AudioBitrate
	return kw
}

// Processor wraps FFmpeg invocations. It bounds the number of encoder
// subprocesses running at once across every caller that shares it.
type Processor struct {
	runner Runner
	prober Prober
	sem    *semaphore.Weighted
	log    zerolog.Logger
}

// NewProcessor creates a new FFmpeg processor
func NewProcessor(runner Runner, prober Prober, maxConcurrent int, log zerolog.Logger) *Processor {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Processor{
		runner: runner,
		prober: prober,
		sem:    semaphore.NewWeighted(int64(maxConcurrent)),
		log:    log,
	}
}

// Execute runs the encoder for stream and checks that output was produced.
// Both a zero exit status and a non-empty output file are required.
func (p *Processor) Execute(ctx context.Context, op string, stream *ffmpeg.Stream, output string) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return &EncodingError{Op: op, Output: output, Err: errors.Wrap(err, "waiting for encoder slot")}
	}
	defer p.sem.Release(1)

	if err := os.Remove(output); err != nil && !os.IsNotExist(err) {
		return &EncodingError{Op: op, Output: output, Err: errors.Wrap(err, "failed to clear stale output")}
	}

	args := stream.OverWriteOutput().GetArgs()
	p.log.Debug().Str("op", op).Str("output", output).Msgf("ffmpeg %s", strings.Join(args, " "))

	if err := p.runner.Run(ctx, Invocation{Op: op, Args: args, Output: output}); err != nil {
		return &EncodingError{Op: op, Output: output, Err: err}
	}

	if err := VerifyOutput(output); err != nil {
		return &EncodingError{Op: op, Output: output, Err: err}
	}
	return nil
}

// VerifyOutput checks that path exists and is not empty.
func VerifyOutput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrap(err, "failed to verify output file")
	}
	if info.Size() == 0 {
		return errors.New("output file is empty")
	}
	return nil
}

// CheckDependencies reports whether the encoder and its probe tool can be
// found on this machine.
func CheckDependencies(ffmpegPath string) error {
	for _, bin := range []string{ffmpegPath, "ffprobe"} {
		if _, err := exec.LookPath(bin); err != nil {
			return errors.Wrapf(err, "%s not found", bin)
		}
	}
	return nil
}
