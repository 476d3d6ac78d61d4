package ffmpeg

import (
	"context"
	"os/exec"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Invocation is one encoder call: its argument vector and the file it must
// produce.
type Invocation struct {
	Op     string
	Args   []string
	Output string
}

// Runner executes encoder invocations.
type Runner interface {
	Run(ctx context.Context, inv Invocation) error
}

// ExecRunner runs the encoder binary as a subprocess.
type ExecRunner struct {
	Binary string
	log    zerolog.Logger
}

// NewExecRunner returns a Runner for the encoder at binary.
func NewExecRunner(binary string, log zerolog.Logger) *ExecRunner {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &ExecRunner{Binary: binary, log: log}
}

func (r *ExecRunner) Run(ctx context.Context, inv Invocation) error {
	cmd := exec.CommandContext(ctx, r.Binary, inv.Args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		r.log.Warn().
			Str("op", inv.Op).
			Str("output", inv.Output).
			Str("stderr", tail(string(out), 2048)).
			Msg("encoder failed")
		return errors.Wrapf(err, "%s exited with error", r.Binary)
	}
	return nil
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
