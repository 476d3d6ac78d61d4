package format

import "time"

type Shorts struct{}

func init() {
	Register(&Shorts{})
}

func (f *Shorts) Name() string {
	return "shorts"
}

func (f *Shorts) Dimensions() (width, height int) {
	return 1080, 1920
}

func (f *Shorts) AspectRatio() string {
	return "9:16"
}

func (f *Shorts) TargetDuration() time.Duration {
	return 60 * time.Second
}

func (f *Shorts) CaptionFontSize() int {
	return 60
}

func (f *Shorts) TitleFontSize() int {
	return 90
}
