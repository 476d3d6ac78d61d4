package ffmpeg

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Prober returns ffprobe JSON for a media file.
type Prober interface {
	Probe(path string) (string, error)
}

// FFProbe probes through ffmpeg-go's ffprobe wrapper.
type FFProbe struct {
	Timeout time.Duration
}

func (p FFProbe) Probe(path string) (string, error) {
	return ffmpeg.ProbeWithTimeout(path, p.Timeout, ffmpeg.KwArgs{})
}

// MediaMetadata contains metadata about an audio or video file
type MediaMetadata struct {
	Duration float64
	Width    int
	Height   int
	Codec    string
	HasVideo bool
	HasAudio bool
}

type probeStream struct {
	CodecType  string `json:"codec_type"`
	CodecName  string `json:"codec_name"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Duration   string `json:"duration"`
	NbFrames   string `json:"nb_frames"`
	RFrameRate string `json:"r_frame_rate"`
}

type probeResult struct {
	Streams []probeStream `json:"streams"`
	Format  struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Metadata probes path and resolves its duration from the primary stream,
// then the container, then frame count over frame rate.
func (p *Processor) Metadata(path string) (*MediaMetadata, error) {
	raw, err := p.prober.Probe(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error probing %s", path)
	}
	return ParseMetadata(raw)
}

// ParseMetadata decodes ffprobe JSON output.
func ParseMetadata(raw string) (*MediaMetadata, error) {
	var data probeResult
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, errors.WithStack(err)
	}
	if len(data.Streams) == 0 {
		return nil, errors.New("no streams found")
	}

	meta := &MediaMetadata{}
	var primary *probeStream
	for i := range data.Streams {
		s := &data.Streams[i]
		switch s.CodecType {
		case "video":
			meta.HasVideo = true
			if primary == nil || primary.CodecType != "video" {
				primary = s
			}
		case "audio":
			meta.HasAudio = true
			if primary == nil {
				primary = s
			}
		}
	}
	if primary == nil {
		return nil, errors.New("no audio or video stream found")
	}

	meta.Codec = primary.CodecName
	meta.Width = primary.Width
	meta.Height = primary.Height
	meta.Duration = parseSeconds(primary.Duration)

	if meta.Duration == 0 {
		meta.Duration = parseSeconds(data.Format.Duration)
	}

	if meta.Duration == 0 {
		frames := parseSeconds(primary.NbFrames)
		if rate := parseRate(primary.RFrameRate); frames > 0 && rate > 0 {
			meta.Duration = frames / rate
		}
	}

	if meta.Duration == 0 {
		return nil, errors.New("could not determine media duration")
	}
	return meta, nil
}

func parseSeconds(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func parseRate(s string) float64 {
	nums := strings.Split(s, "/")
	if len(nums) != 2 {
		return 0
	}
	num, err1 := strconv.ParseFloat(nums[0], 64)
	den, err2 := strconv.ParseFloat(nums[1], 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 0
	}
	return num / den
}
