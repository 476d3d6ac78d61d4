package caption

import (
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
)

// Measurer reports the rendered width of a string in pixels.
type Measurer interface {
	Width(s string) int
}

var (
	boldOnce sync.Once
	boldFont *opentype.Font
	boldErr  error
)

type faceMeasurer struct {
	face font.Face
}

func (m faceMeasurer) Width(s string) int {
	return font.MeasureString(m.face, s).Ceil()
}

// charEstimate assumes an average glyph advance of 0.6em.
type charEstimate struct {
	size int
}

func (m charEstimate) Width(s string) int {
	return int(float64(len([]rune(s))) * float64(m.size) * 0.6)
}

// NewMeasurer measures with bold sans-serif metrics at size pixels. It falls
// back to a per-character estimate if the font cannot be loaded.
func NewMeasurer(size int) Measurer {
	boldOnce.Do(func() {
		boldFont, boldErr = opentype.Parse(gobold.TTF)
	})
	if boldErr != nil {
		return charEstimate{size: size}
	}
	face, err := opentype.NewFace(boldFont, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return charEstimate{size: size}
	}
	return faceMeasurer{face: face}
}

// WrapLines greedily packs words into lines no wider than maxWidth. A word
// wider than maxWidth gets a line of its own.
func WrapLines(text string, m Measurer, maxWidth int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]
	for _, w := range words[1:] {
		candidate := current + " " + w
		if m.Width(candidate) <= maxWidth {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = w
	}
	return append(lines, current)
}
