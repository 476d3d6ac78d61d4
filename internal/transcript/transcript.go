// Package transcript produces time-aligned caption units for a narration,
// degrading from speech recognition to punctuation phrases to single words.
package transcript

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/ZacxDev/video-composer/internal/fallback"
	"github.com/ZacxDev/video-composer/internal/timing"
)

const (
	TierRecognizer = "recognizer"
	TierPhrases    = "phrases"
	TierWords      = "words"

	// fallbackWordSeconds paces word timing when the audio duration is unknown
	fallbackWordSeconds = 0.4
)

// Unit is one timed span of caption text.
type Unit struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns End - Start.
func (u Unit) Duration() float64 {
	return u.End - u.Start
}

// Recognizer turns an audio file into timed segments.
type Recognizer interface {
	Recognize(ctx context.Context, audioPath, language string) (*Result, error)
}

// Acquirer runs the caption timing chain.
type Acquirer struct {
	recognizer Recognizer
	maxWords   int
	log        zerolog.Logger
}

// NewAcquirer creates an Acquirer. recognizer may be nil, in which case the
// chain starts at phrase splitting.
func NewAcquirer(recognizer Recognizer, maxWordsPerUnit int, log zerolog.Logger) *Acquirer {
	if maxWordsPerUnit < 1 {
		maxWordsPerUnit = 1
	}
	return &Acquirer{
		recognizer: recognizer,
		maxWords:   maxWordsPerUnit,
		log:        log.With().Str("component", "transcript").Logger(),
	}
}

// Acquire returns caption units for script spoken over audioPath. It never
// fails and never returns nil; an empty script yields an empty slice.
func (a *Acquirer) Acquire(ctx context.Context, audioPath, script, language string, duration float64) []Unit {
	script = strings.TrimSpace(script)
	if script == "" {
		return []Unit{}
	}

	var tiers []fallback.Tier[[]Unit]
	if a.recognizer != nil {
		tiers = append(tiers, fallback.Tier[[]Unit]{
			Name: TierRecognizer,
			Run: func(context.Context) ([]Unit, error) {
				res, err := a.recognizer.Recognize(ctx, audioPath, language)
				if err != nil {
					return nil, err
				}
				units := FromResult(res, a.maxWords)
				if len(units) == 0 {
					return nil, errors.New("recognizer returned no usable segments")
				}
				return units, nil
			},
		})
	}
	tiers = append(tiers,
		fallback.Tier[[]Unit]{
			Name: TierPhrases,
			Run: func(context.Context) ([]Unit, error) {
				return PhraseUnits(script, duration)
			},
		},
		fallback.Tier[[]Unit]{
			Name: TierWords,
			Run: func(context.Context) ([]Unit, error) {
				return WordUnits(script, duration), nil
			},
		},
	)

	// The recognizer is bound to ctx; the chain itself is not, so the local
	// tiers still answer after a cancelled recognition.
	units, tier, err := fallback.First(context.WithoutCancel(ctx), a.log, tiers...)
	if err != nil {
		a.log.Error().Err(err).Msg("caption timing chain exhausted")
		return WordUnits(script, duration)
	}

	a.log.Info().Str("tier", tier).Int("units", len(units)).Msg("caption timing acquired")
	return units
}

// FromResult converts recognizer output into units. Segments that carry word
// timestamps are regrouped into units of at most maxWords words, breaking
// after clause punctuation; the rest become one unit per segment.
func FromResult(res *Result, maxWords int) []Unit {
	if res == nil {
		return nil
	}
	if maxWords < 1 {
		maxWords = 1
	}

	var units []Unit
	for _, seg := range res.Segments {
		if len(seg.Words) == 0 {
			units = append(units, Unit{Text: seg.Text, Start: float64(seg.Start), End: float64(seg.End)})
			continue
		}
		units = append(units, groupWords(seg.Words, maxWords)...)
	}
	return sanitize(units)
}

func groupWords(words []Word, maxWords int) []Unit {
	var units []Unit
	var group []Word

	flush := func() {
		if len(group) == 0 {
			return
		}
		texts := make([]string, 0, len(group))
		for _, w := range group {
			if t := strings.TrimSpace(w.Text); t != "" {
				texts = append(texts, t)
			}
		}
		units = append(units, Unit{
			Text:  strings.Join(texts, " "),
			Start: float64(group[0].Start),
			End:   float64(group[len(group)-1].End),
		})
		group = group[:0]
	}

	for _, w := range words {
		group = append(group, w)
		if len(group) >= maxWords || endsClause(w.Text) {
			flush()
		}
	}
	flush()
	return units
}

func endsClause(word string) bool {
	word = strings.TrimSpace(word)
	return word != "" && strings.ContainsAny(word[len(word)-1:], ".,!?")
}

// sanitize drops empty text, clamps negative starts, repairs inverted windows
// and orders units by start time.
func sanitize(units []Unit) []Unit {
	out := make([]Unit, 0, len(units))
	for _, u := range units {
		u.Text = strings.TrimSpace(u.Text)
		if u.Text == "" {
			continue
		}
		u.Start = timing.NonNegative(u.Start)
		if u.End <= u.Start {
			u.End = u.Start + 0.1
		}
		out = append(out, u)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}
