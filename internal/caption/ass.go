package caption

import (
	"fmt"
	"math"
	"strings"
)

const assHeader = `[Script Info]
ScriptType: v4.00+
PlayResX: %d
PlayResY: %d
WrapStyle: 0
ScaledBorderAndShadow: yes

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Default,%s,%d,%s,&H000000FF,%s,&H80000000,-1,0,0,0,100,100,0,0,1,%d,1,2,50,50,%d,1

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
`

// BuildASS renders caption clips as an Advanced SubStation document sized to
// width x height. Each word of a clip is hidden until its turn, then scales up
// to Style.PopScale and back; words are revealed Style.WordDelay apart from
// the clip's start and the whole line fades in and out. A clip's Effect
// overrides the document style for that line only.
func BuildASS(clips []TextClip, width, height, fontSize int, style Style) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(assHeader,
		width, height,
		style.Font, fontSize,
		assColor(style.Color, 0), assColor(style.OutlineColor, 0),
		style.Outline, height/4,
	))

	for _, c := range clips {
		var text string
		if animates(c.Effect) {
			text = popInText(c.Text, style)
		} else {
			text = strings.Join(strings.Fields(escapeASS(c.Text)), " ")
		}
		if text == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf("Dialogue: 0,%s,%s,Default,,0,0,0,,{\\fad(%d,%d)%s}%s\n",
			FormatASSTime(c.Start), FormatASSTime(c.End), style.FadeMs, style.FadeMs,
			effectOverrides(style, c.Effect), text))
	}
	return sb.String()
}

// effectOverrides returns the inline tags for the fields where e differs
// from the document style.
func effectOverrides(style Style, e *Effect) string {
	s := style.withEffect(e)
	var tags strings.Builder
	if s.Font != style.Font {
		tags.WriteString(`\fn` + escapeASS(s.Font))
	}
	if rgbHex(s.Color) != rgbHex(style.Color) {
		tags.WriteString(`\c` + assInlineColor(s.Color))
	}
	if rgbHex(s.OutlineColor) != rgbHex(style.OutlineColor) {
		tags.WriteString(`\3c` + assInlineColor(s.OutlineColor))
	}
	if s.Outline != style.Outline {
		tags.WriteString(fmt.Sprintf(`\bord%d`, s.Outline))
	}
	return tags.String()
}

func popInText(text string, style Style) string {
	words := strings.Fields(escapeASS(text))
	if len(words) == 0 {
		return ""
	}

	delay := int(math.Round(style.WordDelay * 1000))
	pop := int(math.Round(style.PopDuration * 1000))
	half := pop / 2
	scale := style.PopScale
	if scale <= 0 {
		scale = 100
	}

	parts := make([]string, len(words))
	for i, w := range words {
		d := i * delay
		parts[i] = fmt.Sprintf(`{\alpha&HFF&\t(%d,%d,\alpha&H00&)\t(%d,%d,\fscx%d\fscy%d)\t(%d,%d,\fscx100\fscy100)}%s`,
			d, d+1, d, d+half, scale, scale, d+half, d+pop, w)
	}
	return strings.Join(parts, " ")
}

// escapeASS keeps text from being read as override blocks.
func escapeASS(text string) string {
	r := strings.NewReplacer(`\`, "/", "{", "(", "}", ")")
	return r.Replace(text)
}
