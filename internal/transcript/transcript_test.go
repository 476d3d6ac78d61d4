package transcript

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRecognizer struct {
	res   *Result
	err   error
	calls int
}

func (s *stubRecognizer) Recognize(context.Context, string, string) (*Result, error) {
	s.calls++
	return s.res, s.err
}

func coverage(units []Unit) float64 {
	var total float64
	for _, u := range units {
		total += u.Duration()
	}
	return total
}

func TestSplitPhrases(t *testing.T) {
	cases := map[string][]string{
		"Hello world. This is a test.":   {"Hello world.", "This is a test."},
		"First, second! Third? fourth":   {"First,", "second!", "Third?", "fourth"},
		"no punctuation here":            {"no punctuation here"},
		"...":                            nil,
		"  Wait...  what?  ":             {"Wait.", "what?"},
		"Xin chào. Hôm nay trời đẹp quá!": {"Xin chào.", "Hôm nay trời đẹp quá!"},
	}
	for in, want := range cases {
		assert.Equal(t, want, SplitPhrases(in), in)
	}
}

func TestAcquireFallsBackToPhrases(t *testing.T) {
	rec := &stubRecognizer{err: errors.New("exit status 1")}
	a := NewAcquirer(rec, 4, zerolog.Nop())

	units := a.Acquire(context.Background(), "voice.mp3", "Hello world. This is a test.", "en", 10)
	require.Len(t, units, 2)
	assert.Equal(t, 1, rec.calls)

	assert.Equal(t, Unit{Text: "Hello world.", Start: 0, End: 5}, units[0])
	assert.Equal(t, Unit{Text: "This is a test.", Start: 5, End: 10}, units[1])
	assert.InDelta(t, 10, coverage(units), 1e-9)
}

func TestAcquireCoverageMatchesDuration(t *testing.T) {
	a := NewAcquirer(&stubRecognizer{err: errors.New("boom")}, 4, zerolog.Nop())
	script := "One, two, three. Four! Five? Six seven."

	units := a.Acquire(context.Background(), "voice.mp3", script, "en", 58.3)
	assert.Len(t, units, len(SplitPhrases(script)))
	assert.InDelta(t, 58.3, coverage(units), 1e-9)
	for i := 1; i < len(units); i++ {
		assert.GreaterOrEqual(t, units[i].Start, units[i-1].Start)
	}
}

func TestAcquireFallsBackToWords(t *testing.T) {
	a := NewAcquirer(nil, 4, zerolog.Nop())

	units := a.Acquire(context.Background(), "voice.mp3", "... !!", "en", 4)
	require.Len(t, units, 2)
	assert.Equal(t, "...", units[0].Text)
	assert.InDelta(t, 2, units[0].Duration(), 1e-9)
	assert.Equal(t, 4.0, units[1].End)
}

func TestAcquireWithoutDurationStillProducesUnits(t *testing.T) {
	a := NewAcquirer(nil, 4, zerolog.Nop())

	units := a.Acquire(context.Background(), "voice.mp3", "Hello there, friend.", "en", 0)
	require.Len(t, units, 3)
	for _, u := range units {
		assert.Greater(t, u.End, u.Start)
	}
}

func TestAcquireEmptyScript(t *testing.T) {
	rec := &stubRecognizer{}
	a := NewAcquirer(rec, 4, zerolog.Nop())

	units := a.Acquire(context.Background(), "voice.mp3", "   \n ", "en", 10)
	require.NotNil(t, units)
	assert.Empty(t, units)
	assert.Zero(t, rec.calls)
}

func TestAcquirePrefersRecognizerWords(t *testing.T) {
	rec := &stubRecognizer{res: &Result{Segments: []Segment{
		{Text: "Hello world, this is great", Start: 0, End: 3, Words: []Word{
			{Text: "Hello", Start: 0, End: 0.4},
			{Text: "world,", Start: 0.4, End: 0.9},
			{Text: "this", Start: 1.0, End: 1.3},
			{Text: "is", Start: 1.3, End: 1.5},
			{Text: "great", Start: 1.5, End: 2.2},
		}},
		{Text: "Bye.", Start: 3, End: 4},
	}}}
	a := NewAcquirer(rec, 2, zerolog.Nop())

	units := a.Acquire(context.Background(), "voice.mp3", "Hello world, this is great. Bye.", "en", 4)
	require.Len(t, units, 4)
	assert.Equal(t, Unit{Text: "Hello world,", Start: 0, End: 0.9}, units[0])
	assert.Equal(t, Unit{Text: "this is", Start: 1.0, End: 1.5}, units[1])
	assert.Equal(t, Unit{Text: "great", Start: 1.5, End: 2.2}, units[2])
	assert.Equal(t, Unit{Text: "Bye.", Start: 3, End: 4}, units[3])
}

func TestAcquireEmptyRecognitionFallsThrough(t *testing.T) {
	rec := &stubRecognizer{res: &Result{Text: ""}}
	a := NewAcquirer(rec, 4, zerolog.Nop())

	units := a.Acquire(context.Background(), "voice.mp3", "A. B.", "en", 2)
	require.Len(t, units, 2)
	assert.Equal(t, "A.", units[0].Text)
}

func TestFromResultSanitizes(t *testing.T) {
	units := FromResult(&Result{Segments: []Segment{
		{Text: "late", Start: 5, End: 6},
		{Text: "  ", Start: 1, End: 2},
		{Text: "early", Start: -1, End: -0.5},
	}}, 3)
	require.Len(t, units, 2)
	assert.Equal(t, "early", units[0].Text)
	assert.Equal(t, 0.0, units[0].Start)
	assert.Greater(t, units[0].End, units[0].Start)
	assert.Equal(t, "late", units[1].Text)
}

func TestParseResultAcceptsStringTimestamps(t *testing.T) {
	res, err := ParseResult([]byte(`{"text":"Xin chào","segments":[{"text":"Xin chào","start":0.0,"end":1.5,
		"words":[{"text":"Xin","start":"0.0","end":"0.62"},{"text":"chào","start":"0.62","end":"1.5"}]}]}`))
	require.NoError(t, err)
	require.Len(t, res.Segments, 1)
	assert.InDelta(t, 0.62, float64(res.Segments[0].Words[1].Start), 1e-9)
}

func TestParseResultErrors(t *testing.T) {
	_, err := ParseResult([]byte(`{"error":"Audio file not found","text":"","segments":[]}`))
	assert.ErrorContains(t, err, "Audio file not found")

	_, err = ParseResult([]byte(`Using device: cpu`))
	assert.Error(t, err)

	_, err = ParseResult([]byte(`{"segments":[{"text":"x","start":"soon","end":1}]}`))
	assert.Error(t, err)
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script recognizer requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "recognize.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755))
	return path
}

func TestWhisperEngineReadsStdout(t *testing.T) {
	script := writeScript(t, `echo "loading model $2" >&2
echo '{"text":"hi","segments":[{"text":"hi","start":0,"end":1}]}'
`)
	e := NewWhisperEngine([]string{"sh", script}, time.Minute, zerolog.Nop())

	res, err := e.Recognize(context.Background(), "voice.mp3", "en")
	require.NoError(t, err)
	require.Len(t, res.Segments, 1)
	assert.Equal(t, "hi", res.Segments[0].Text)
}

func TestWhisperEngineNonZeroExit(t *testing.T) {
	script := writeScript(t, `echo '{"error":"model missing","text":"","segments":[]}'
exit 1
`)
	e := NewWhisperEngine([]string{"sh", script}, time.Minute, zerolog.Nop())

	_, err := e.Recognize(context.Background(), "voice.mp3", "en")
	assert.ErrorContains(t, err, "model missing")
}

func TestWhisperEngineNoCommand(t *testing.T) {
	_, err := NewWhisperEngine(nil, 0, zerolog.Nop()).Recognize(context.Background(), "a.mp3", "vi")
	assert.Error(t, err)
}
