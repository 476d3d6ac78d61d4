package caption

import (
	"fmt"
	"strings"
)

// BuildSRT renders one numbered SubRip entry per clip. Line breaks inside a
// clip are flattened to spaces.
func BuildSRT(clips []TextClip) string {
	var sb strings.Builder
	n := 0
	for _, c := range clips {
		text := strings.Join(strings.Fields(c.Text), " ")
		if text == "" {
			continue
		}
		n++
		sb.WriteString(fmt.Sprintf("%d\n%s --> %s\n%s\n\n", n, FormatSRTTime(c.Start), FormatSRTTime(c.End), text))
	}
	return sb.String()
}

func (s Style) forceStyle() string {
	return strings.Join([]string{
		"FontName=" + s.Font,
		fmt.Sprintf("FontSize=%d", s.PlainFontSize),
		"PrimaryColour=" + assColor(s.Color, 0),
		"OutlineColour=" + assColor(s.OutlineColor, 0),
		"BorderStyle=1",
		fmt.Sprintf("Outline=%d", s.Outline),
		"Alignment=2",
		fmt.Sprintf("MarginV=%d", s.MarginV),
	}, ",")
}
