package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Seconds accepts a JSON number, a numeric string or null.
type Seconds float64

func (s *Seconds) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` {
		*s = 0
		return nil
	}
	raw = strings.Trim(raw, `"`)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return errors.Wrapf(err, "invalid timestamp %s", string(data))
	}
	*s = Seconds(v)
	return nil
}

// Word is one recognized word with its timing.
type Word struct {
	Text  string  `json:"text"`
	Start Seconds `json:"start"`
	End   Seconds `json:"end"`
}

// Segment is one recognized utterance.
type Segment struct {
	Text  string  `json:"text"`
	Start Seconds `json:"start"`
	End   Seconds `json:"end"`
	Words []Word  `json:"words,omitempty"`
}

// Result is the recognizer's JSON document.
type Result struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
	Error    string    `json:"error,omitempty"`
}

// ParseResult decodes recognizer stdout. A document carrying an error field
// is reported as a failure.
func ParseResult(data []byte) (*Result, error) {
	var res Result
	if err := json.Unmarshal(bytes.TrimSpace(data), &res); err != nil {
		return nil, errors.Wrap(err, "malformed recognizer output")
	}
	if res.Error != "" {
		return nil, errors.Errorf("recognizer reported: %s", res.Error)
	}
	return &res, nil
}

// WhisperEngine runs an external speech-recognition command as
// `<command...> <audio> <language>` and reads JSON from its stdout.
type WhisperEngine struct {
	command []string
	timeout time.Duration
	log     zerolog.Logger
}

// NewWhisperEngine creates an engine for command. A zero timeout means no
// limit beyond the caller's context.
func NewWhisperEngine(command []string, timeout time.Duration, log zerolog.Logger) *WhisperEngine {
	return &WhisperEngine{command: command, timeout: timeout, log: log}
}

func (e *WhisperEngine) Recognize(ctx context.Context, audioPath, language string) (*Result, error) {
	if len(e.command) == 0 {
		return nil, errors.New("no recognizer command configured")
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	args := append(append([]string{}, e.command[1:]...), audioPath, language)
	cmd := exec.CommandContext(ctx, e.command[0], args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	e.log.Debug().
		Str("command", strings.Join(cmd.Args, " ")).
		Dur("elapsed", time.Since(start)).
		Msg("recognizer finished")

	if err != nil {
		// The recognizer reports its own failures as JSON on stdout.
		if _, perr := ParseResult(stdout.Bytes()); perr != nil && stdout.Len() > 0 {
			return nil, errors.Wrapf(perr, "recognizer exited: %v", err)
		}
		return nil, errors.Wrapf(err, "recognizer failed: %s", lastLine(stderr.String()))
	}
	return ParseResult(stdout.Bytes())
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return lines[len(lines)-1]
}
