package format

import "time"

type Normal struct{}

func init() {
	Register(&Normal{})
}

func (f *Normal) Name() string {
	return "normal"
}

func (f *Normal) Dimensions() (width, height int) {
	return 1920, 1080
}

func (f *Normal) AspectRatio() string {
	return "16:9"
}

func (f *Normal) TargetDuration() time.Duration {
	return 3 * time.Minute
}

func (f *Normal) CaptionFontSize() int {
	return 54
}

func (f *Normal) TitleFontSize() int {
	return 80
}
