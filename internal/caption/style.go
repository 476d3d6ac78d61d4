package caption

// Style controls caption appearance and the pop-in animation.
type Style struct {
	Font         string
	FontSize     int // 0 uses the format's caption size
	Color        string
	OutlineColor string
	Outline      int
	WordDelay    float64 // seconds between successive word reveals
	PopScale     int     // peak scale in percent
	PopDuration  float64 // seconds for one grow-and-shrink
	FadeMs       int

	// Plain subtitle tier
	PlainFontSize int
	MarginV       int

	// Font files tried, in order, for drawtext rendering
	FontPaths []string
}

// TitleStyle controls the title overlay.
type TitleStyle struct {
	FontSize    int // 0 uses the format's title size
	Color       string
	BorderColor string
	BorderWidth int
	TopRatio    float64 // first line's top edge as a fraction of frame height
	LineSpacing float64 // line height as a multiple of font size
}

// Effect styles.
const (
	EffectPopIn = "pop-in"
	EffectTitle = "title"
)

// CaptionEffect is the effect descriptor attached to caption clips.
func (s Style) CaptionEffect() *Effect {
	return &Effect{
		Style:       EffectPopIn,
		Color:       s.Color,
		Stroke:      s.OutlineColor,
		StrokeWidth: s.Outline,
		Font:        s.Font,
	}
}

// TitleEffect is the effect descriptor attached to the title clip.
func (t TitleStyle) TitleEffect(font string) *Effect {
	return &Effect{
		Style:       EffectTitle,
		Color:       t.Color,
		Stroke:      t.BorderColor,
		StrokeWidth: t.BorderWidth,
		Background:  "black@0.4",
		Font:        font,
	}
}

// withEffect returns s with the set fields of e applied over it.
func (s Style) withEffect(e *Effect) Style {
	if e == nil {
		return s
	}
	if e.Font != "" {
		s.Font = e.Font
	}
	if e.Color != "" {
		s.Color = e.Color
	}
	if e.Stroke != "" {
		s.OutlineColor = e.Stroke
	}
	if e.StrokeWidth > 0 {
		s.Outline = e.StrokeWidth
	}
	return s
}

func (t TitleStyle) withEffect(e *Effect) TitleStyle {
	if e == nil {
		return t
	}
	if e.Color != "" {
		t.Color = e.Color
	}
	if e.Stroke != "" {
		t.BorderColor = e.Stroke
	}
	if e.StrokeWidth > 0 {
		t.BorderWidth = e.StrokeWidth
	}
	return t
}

// animates reports whether clips drawn with e get the per-word pop-in.
func animates(e *Effect) bool {
	return e == nil || e.Style == "" || e.Style == EffectPopIn
}

// firstEffect returns the effect of the first clip that carries one.
func firstEffect(clips []TextClip) *Effect {
	for _, c := range clips {
		if c.Effect != nil {
			return c.Effect
		}
	}
	return nil
}
