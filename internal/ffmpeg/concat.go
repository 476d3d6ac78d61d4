package ffmpeg

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// WriteConcatList writes a concat demuxer list referencing files in order.
// Entries are made absolute since the demuxer resolves relative ones against
// the list's own directory. Single quotes in paths are closed, escaped and
// reopened.
func WriteConcatList(path string, files []string) error {
	var sb strings.Builder
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return errors.Wrapf(err, "failed to resolve %s", f)
		}
		sb.WriteString(fmt.Sprintf("file '%s'\n", strings.ReplaceAll(abs, "'", `'\''`)))
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return errors.Wrap(err, "failed to write concat list")
	}
	return nil
}

// EscapeFilterPath makes a file path safe to embed as a filter option value
// inside single quotes. The value is unquoted by both the filtergraph and the
// option parser, so an apostrophe closes the quote, is emitted as \\\' and
// reopens it.
func EscapeFilterPath(path string) string {
	p := strings.ReplaceAll(path, `\`, "/")
	p = strings.ReplaceAll(p, ":", `\:`)
	p = strings.ReplaceAll(p, "'", `'\\\''`)
	return p
}
