package ffmpeg_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ffmpeggo "github.com/u2takey/ffmpeg-go"

	"github.com/ZacxDev/video-composer/internal/ffmpeg"
	"github.com/ZacxDev/video-composer/internal/ffmpeg/ffmpegtest"
)

func TestExecuteSucceeds(t *testing.T) {
	runner := &ffmpegtest.Runner{}
	p := ffmpeg.NewProcessor(runner, &ffmpegtest.Prober{}, 1, zerolog.Nop())

	out := filepath.Join(t.TempDir(), "out.mp4")
	stream := ffmpeggo.Input("in.mp4").Output(out, ffmpeggo.KwArgs{"c:v": "libx264"})
	require.NoError(t, p.Execute(context.Background(), "test", stream, out))

	calls := runner.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "libx264", ffmpegtest.Flag(calls[0], "-c:v"))
	assert.True(t, ffmpegtest.HasArg(calls[0], "-y"))
	assert.Equal(t, out, calls[0].Output)
}

func TestExecuteRunnerFailure(t *testing.T) {
	runner := &ffmpegtest.Runner{Fail: ffmpegtest.FailOp("test")}
	p := ffmpeg.NewProcessor(runner, &ffmpegtest.Prober{}, 1, zerolog.Nop())

	out := filepath.Join(t.TempDir(), "out.mp4")
	err := p.Execute(context.Background(), "test", ffmpeggo.Input("in.mp4").Output(out), out)

	var encErr *ffmpeg.EncodingError
	require.True(t, errors.As(err, &encErr))
	assert.Equal(t, "test", encErr.Op)
}

func TestExecuteMissingOutputIsFailure(t *testing.T) {
	runner := &ffmpegtest.Runner{SkipOutput: func(ffmpeg.Invocation) bool { return true }}
	p := ffmpeg.NewProcessor(runner, &ffmpegtest.Prober{}, 1, zerolog.Nop())

	out := filepath.Join(t.TempDir(), "out.mp4")
	err := p.Execute(context.Background(), "test", ffmpeggo.Input("in.mp4").Output(out), out)

	var encErr *ffmpeg.EncodingError
	require.True(t, errors.As(err, &encErr))
}

func TestExecuteClearsStaleOutput(t *testing.T) {
	runner := &ffmpegtest.Runner{SkipOutput: func(ffmpeg.Invocation) bool { return true }}
	p := ffmpeg.NewProcessor(runner, &ffmpegtest.Prober{}, 1, zerolog.Nop())

	out := filepath.Join(t.TempDir(), "out.mp4")
	require.NoError(t, os.WriteFile(out, []byte("old render"), 0644))

	err := p.Execute(context.Background(), "test", ffmpeggo.Input("in.mp4").Output(out), out)
	assert.Error(t, err)
}

func TestExecuteBoundsConcurrency(t *testing.T) {
	var running, peak int32
	runner := &ffmpegtest.Runner{OnRun: func(ffmpeg.Invocation) {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&running, -1)
	}}
	p := ffmpeg.NewProcessor(runner, &ffmpegtest.Prober{}, 2, zerolog.Nop())

	dir := t.TempDir()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out := filepath.Join(dir, strings.Repeat("x", i+1)+".mp4")
			assert.NoError(t, p.Execute(context.Background(), "test", ffmpeggo.Input("in.mp4").Output(out), out))
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestParseMetadataFallbacks(t *testing.T) {
	meta, err := ffmpeg.ParseMetadata(`{"streams":[{"codec_type":"audio","codec_name":"mp3","duration":"12.5"}],"format":{}}`)
	require.NoError(t, err)
	assert.InDelta(t, 12.5, meta.Duration, 1e-9)
	assert.True(t, meta.HasAudio)
	assert.False(t, meta.HasVideo)

	meta, err = ffmpeg.ParseMetadata(`{"streams":[{"codec_type":"audio"}],"format":{"duration":"58.000"}}`)
	require.NoError(t, err)
	assert.InDelta(t, 58.0, meta.Duration, 1e-9)

	meta, err = ffmpeg.ParseMetadata(`{"streams":[{"codec_type":"video","width":1080,"height":1920,"nb_frames":"90","r_frame_rate":"30/1"}],"format":{}}`)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, meta.Duration, 1e-9)
	assert.Equal(t, 1080, meta.Width)

	_, err = ffmpeg.ParseMetadata(`{"streams":[{"codec_type":"audio"}],"format":{}}`)
	assert.Error(t, err)

	_, err = ffmpeg.ParseMetadata(`not json`)
	assert.Error(t, err)
}

func TestWriteConcatListEscapesQuotes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.txt")
	require.NoError(t, ffmpeg.WriteConcatList(path, []string{"/tmp/a.mp4", "/tmp/it's.mp4"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "file '/tmp/a.mp4'\nfile '/tmp/it'\\''s.mp4'\n", string(data))
}

func TestEscapeFilterPath(t *testing.T) {
	assert.Equal(t, `C\:/work/subs.ass`, ffmpeg.EscapeFilterPath(`C:\work\subs.ass`))
	assert.Equal(t, `/tmp/it'\\\''s.srt`, ffmpeg.EscapeFilterPath(`/tmp/it's.srt`))
	assert.Equal(t, `/tmp/a'\\\''b/c\:d.ass`, ffmpeg.EscapeFilterPath(`/tmp/a'b/c:d.ass`))
}

func TestWriteConcatListMakesEntriesAbsolute(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.txt")
	require.NoError(t, ffmpeg.WriteConcatList(path, []string{"tmp/run/segments/segment_000.mp4"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, "file '"+filepath.Join(wd, "tmp/run/segments/segment_000.mp4")+"'\n", string(data))
}
