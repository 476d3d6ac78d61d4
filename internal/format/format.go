package format

import (
	"fmt"
	"sort"
	"time"
)

// Format fixes the pixel geometry and pacing of one generation run.
type Format interface {
	// Name returns the registry key, e.g. "shorts"
	Name() string

	// Dimensions returns the output frame size in pixels
	Dimensions() (width, height int)

	// AspectRatio returns the display ratio, e.g. "9:16"
	AspectRatio() string

	// TargetDuration returns the intended length of a finished video
	TargetDuration() time.Duration

	// CaptionFontSize returns the caption font size in output pixels
	CaptionFontSize() int

	// TitleFontSize returns the title font size in output pixels
	TitleFontSize() int
}

var formats = make(map[string]Format)

// Register adds a format to the registry
func Register(f Format) {
	formats[f.Name()] = f
}

// Get returns a format by name
func Get(name string) (Format, error) {
	f, ok := formats[name]
	if !ok {
		return nil, fmt.Errorf("unsupported format: %s", name)
	}
	return f, nil
}

// Supported returns the registered format names in sorted order
func Supported() []string {
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LineWidth is the usable text width for a format, leaving a 50px margin on
// each side.
func LineWidth(f Format) int {
	w, _ := f.Dimensions()
	if w <= 100 {
		return w
	}
	return w - 100
}
