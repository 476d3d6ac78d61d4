// Package caption burns the title and timed captions into a video.
package caption

import (
	"github.com/samber/lo"

	"github.com/ZacxDev/video-composer/internal/transcript"
)

// Effect describes how a clip is drawn.
type Effect struct {
	Style       string // EffectPopIn or EffectTitle
	Color       string
	Stroke      string
	StrokeWidth int
	Background  string
	Font        string
}

// TextClip is a span of on-screen text. Clips are built once and not
// modified afterwards.
type TextClip struct {
	Text   string
	Start  float64
	End    float64
	Effect *Effect
}

// TitleClip spans the whole video.
func TitleClip(text string, total float64, effect *Effect) TextClip {
	return TextClip{Text: text, Start: 0, End: total, Effect: effect}
}

// FromUnits turns caption units into pop-in caption clips.
func FromUnits(units []transcript.Unit, effect *Effect) []TextClip {
	return lo.Map(units, func(u transcript.Unit, _ int) TextClip {
		return TextClip{Text: u.Text, Start: u.Start, End: u.End, Effect: effect}
	})
}
