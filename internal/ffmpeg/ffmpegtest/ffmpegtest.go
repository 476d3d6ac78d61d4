// Package ffmpegtest provides in-memory encoder and probe fakes.
package ffmpegtest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ZacxDev/video-composer/internal/ffmpeg"
)

// Runner records invocations and writes a placeholder file at each declared
// output instead of running an encoder.
type Runner struct {
	// Fail, when set, is consulted before each invocation; a non-nil result
	// is returned as the encoder error.
	Fail func(inv ffmpeg.Invocation) error
	// SkipOutput, when set and true, makes the invocation "succeed" without
	// producing its output file.
	SkipOutput func(inv ffmpeg.Invocation) bool
	// OnRun, when set, runs before the output is written.
	OnRun func(inv ffmpeg.Invocation)

	mu    sync.Mutex
	calls []ffmpeg.Invocation
}

func (r *Runner) Run(ctx context.Context, inv ffmpeg.Invocation) error {
	r.mu.Lock()
	r.calls = append(r.calls, inv)
	r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if r.OnRun != nil {
		r.OnRun(inv)
	}
	if r.Fail != nil {
		if err := r.Fail(inv); err != nil {
			return err
		}
	}
	if r.SkipOutput != nil && r.SkipOutput(inv) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(inv.Output), 0755); err != nil {
		return err
	}
	return os.WriteFile(inv.Output, []byte("fake "+inv.Op), 0644)
}

// Calls returns a copy of every recorded invocation.
func (r *Runner) Calls() []ffmpeg.Invocation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ffmpeg.Invocation(nil), r.calls...)
}

// CallsFor returns the recorded invocations for one operation name.
func (r *Runner) CallsFor(op string) []ffmpeg.Invocation {
	var out []ffmpeg.Invocation
	for _, c := range r.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// FailOp returns a Fail func that rejects every invocation of op.
func FailOp(ops ...string) func(ffmpeg.Invocation) error {
	return func(inv ffmpeg.Invocation) error {
		for _, op := range ops {
			if inv.Op == op {
				return fmt.Errorf("exit status 1 (%s)", op)
			}
		}
		return nil
	}
}

// Flag returns the value following flag in args, or "" when absent.
func Flag(inv ffmpeg.Invocation, flag string) string {
	for i := 0; i < len(inv.Args)-1; i++ {
		if inv.Args[i] == flag {
			return inv.Args[i+1]
		}
	}
	return ""
}

// HasArg reports whether arg appears anywhere in the argument vector.
func HasArg(inv ffmpeg.Invocation, arg string) bool {
	for _, a := range inv.Args {
		if a == arg {
			return true
		}
	}
	return false
}

// Prober answers probe requests with synthetic ffprobe JSON.
type Prober struct {
	// Durations maps a path to its reported duration. Paths not listed use
	// Default.
	Durations map[string]float64
	Default   float64
	// Errors maps a path to a probe failure.
	Errors map[string]error
}

func (p *Prober) Probe(path string) (string, error) {
	if err, ok := p.Errors[path]; ok {
		return "", err
	}
	d, ok := p.Durations[path]
	if !ok {
		d = p.Default
	}
	return fmt.Sprintf(`{"streams":[{"codec_type":"video","codec_name":"h264","width":1080,"height":1920,"duration":"%.6f"},`+
		`{"codec_type":"audio","codec_name":"aac","duration":"%.6f"}],"format":{"duration":"%.6f"}}`, d, d, d), nil
}
