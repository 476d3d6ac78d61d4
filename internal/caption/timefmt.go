package caption

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/pkg/errors"

	"github.com/ZacxDev/video-composer/internal/timing"
)

// FormatASSTime renders seconds as H:MM:SS.CC, flooring every component.
func FormatASSTime(seconds float64) string {
	p := timing.Decompose(seconds)
	return fmt.Sprintf("%d:%02d:%02d.%02d", p.Hours, p.Minutes, p.Seconds, p.Scaled(100))
}

// FormatSRTTime renders seconds as HH:MM:SS,mmm, flooring every component.
func FormatSRTTime(seconds float64) string {
	p := timing.Decompose(seconds)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", p.Hours, p.Minutes, p.Seconds, p.Scaled(1000))
}

var (
	assTimeRe = regexp.MustCompile(`^(\d+):(\d{2}):(\d{2})\.(\d{2})$`)
	srtTimeRe = regexp.MustCompile(`^(\d{2,}):(\d{2}):(\d{2}),(\d{3})$`)
)

// ParseASSTime is the inverse of FormatASSTime.
func ParseASSTime(s string) (float64, error) {
	return parseClock(assTimeRe, s, 100)
}

// ParseSRTTime is the inverse of FormatSRTTime.
func ParseSRTTime(s string) (float64, error) {
	return parseClock(srtTimeRe, s, 1000)
}

func parseClock(re *regexp.Regexp, s string, unit float64) (float64, error) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return 0, errors.Errorf("invalid timestamp %q", s)
	}
	var v [4]int
	for i := range v {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0, errors.Wrapf(err, "invalid timestamp %q", s)
		}
		v[i] = n
	}
	return float64(v[0]*3600+v[1]*60+v[2]) + float64(v[3])/unit, nil
}
