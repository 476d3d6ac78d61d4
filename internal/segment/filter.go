package segment

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/ZacxDev/video-composer/internal/format"
	"github.com/ZacxDev/video-composer/internal/timing"
)

// Motion tunes the pan/zoom applied to every segment.
type Motion struct {
	FPS         int
	ZoomCeiling float64
	MaxPan      float64 // pixels, applied to both axes
	Fade        float64 // seconds at each edge
	Seed        int64
}

// Spec is the filter graph for one segment plus the parameters drawn for it.
type Spec struct {
	Graph    string
	Frames   int
	Duration float64
	AmpX     float64
	AmpY     float64
	PhaseX   float64
	PhaseY   float64
}

// BuildFilter returns the filter graph for the segment at index. The result
// depends only on its arguments: the same index, duration, format and seed
// always give the same graph.
func BuildFilter(index int, duration float64, f format.Format, m Motion) Spec {
	w, h := f.Dimensions()
	fps := m.FPS
	if fps <= 0 {
		fps = 30
	}
	ceiling := math.Max(m.ZoomCeiling, 1)

	rng := rand.New(rand.NewSource(m.Seed + int64(index)))
	spec := Spec{
		Duration: duration,
		Frames:   max(1, int(math.Round(duration*float64(fps)))),
		AmpX:     (rng.Float64()*2 - 1) * m.MaxPan,
		AmpY:     (rng.Float64()*2 - 1) * m.MaxPan,
		PhaseX:   rng.Float64() * 2 * math.Pi,
		PhaseY:   rng.Float64() * 2 * math.Pi,
	}

	fade := timing.Clamp(m.Fade, 0, duration/2)
	span := max(spec.Frames-1, 1)

	zoom := fmt.Sprintf("min(1+%.4f*on/%d,%.4f)", ceiling-1, span, ceiling)
	panX := fmt.Sprintf("iw/2-(iw/zoom/2)+%.2f*sin(2*PI*on/%d+%.4f)", spec.AmpX, span, spec.PhaseX)
	panY := fmt.Sprintf("ih/2-(ih/zoom/2)+%.2f*sin(2*PI*on/%d+%.4f)", spec.AmpY, span, spec.PhaseY)

	filters := []string{
		fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=increase", w, h),
		fmt.Sprintf("crop=%d:%d", w, h),
		fmt.Sprintf("zoompan=z='%s':x='%s':y='%s':d=1:s=%dx%d:fps=%d", zoom, panX, panY, w, h, fps),
	}
	if fade > 0 {
		filters = append(filters,
			fmt.Sprintf("fade=t=in:st=0:d=%.3f", fade),
			fmt.Sprintf("fade=t=out:st=%.3f:d=%.3f", duration-fade, fade),
		)
	}
	spec.Graph = strings.Join(filters, ",")
	return spec
}
