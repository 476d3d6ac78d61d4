package caption

import (
	"fmt"
	"strings"
)

var namedColors = map[string]string{
	"white":  "ffffff",
	"black":  "000000",
	"red":    "ff0000",
	"green":  "00ff00",
	"blue":   "0000ff",
	"yellow": "ffff00",
}

// rgbHex resolves a color name or #rrggbb value to rrggbb, defaulting to white.
func rgbHex(color string) string {
	color = strings.ToLower(strings.TrimSpace(color))
	if hex, ok := namedColors[color]; ok {
		return hex
	}
	if strings.HasPrefix(color, "#") && len(color) == 7 {
		return color[1:]
	}
	return "ffffff"
}

// assColor converts a color to the &HAABBGGRR form subtitle styles use.
func assColor(color string, alpha uint8) string {
	hex := strings.ToUpper(rgbHex(color))
	return fmt.Sprintf("&H%02X%s%s%s", alpha, hex[4:6], hex[2:4], hex[0:2])
}

// ffmpegColor converts a color to the 0xRRGGBB form drawtext accepts.
func ffmpegColor(color string) string {
	return "0x" + rgbHex(color)
}

// assInlineColor converts a color to the &HBBGGRR& form of \c override tags.
func assInlineColor(color string) string {
	hex := strings.ToUpper(rgbHex(color))
	return fmt.Sprintf("&H%s%s%s&", hex[4:6], hex[2:4], hex[0:2])
}
