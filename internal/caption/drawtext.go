package caption

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/ZacxDev/video-composer/internal/ffmpeg"
)

// ResolveFont returns the first existing font file in paths, or "" to let
// the encoder pick its default font.
func ResolveFont(paths []string) string {
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// drawText describes one timed drawtext filter. Text is read from a file so
// no filter-level escaping of user text is needed.
type drawText struct {
	TextFile    string
	FontFile    string
	Font        string // family name, used only when FontFile is empty
	FontSize    int
	Color       string
	BorderColor string
	BorderWidth int
	Box         string // "" for no box
	X, Y        string
	Start, End  float64
}

func (d drawText) filter() string {
	opts := []string{
		fmt.Sprintf("textfile='%s'", ffmpeg.EscapeFilterPath(d.TextFile)),
		"expansion=none",
	}
	if d.FontFile != "" {
		opts = append(opts, fmt.Sprintf("fontfile='%s'", ffmpeg.EscapeFilterPath(d.FontFile)))
	} else if d.Font != "" {
		opts = append(opts, fmt.Sprintf("font='%s'", ffmpeg.EscapeFilterPath(d.Font)))
	}
	opts = append(opts,
		fmt.Sprintf("fontsize=%d", d.FontSize),
		"fontcolor="+ffmpegColor(d.Color),
		fmt.Sprintf("borderw=%d", d.BorderWidth),
		"bordercolor="+ffmpegColor(d.BorderColor),
	)
	if d.Box != "" {
		opts = append(opts, "box=1", "boxcolor="+d.Box, "boxborderw=10")
	}
	opts = append(opts,
		"x="+d.X,
		"y="+d.Y,
		fmt.Sprintf("enable='between(t,%.3f,%.3f)'", d.Start, d.End),
	)
	return "drawtext=" + strings.Join(opts, ":")
}

func writeTextFile(dir, name, text string) (string, error) {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return "", errors.Wrapf(err, "failed to write %s", name)
	}
	return path, nil
}
