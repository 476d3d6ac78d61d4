package transcript

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/ZacxDev/video-composer/internal/timing"
)

var clausePunct = regexp.MustCompile(`[.,!?]`)

// SplitPhrases splits text at sentence and clause punctuation. Each mark stays
// attached to the phrase it ends; marks with no text before them are dropped.
func SplitPhrases(text string) []string {
	var phrases []string
	add := func(part, mark string) {
		if p := strings.TrimSpace(part); p != "" {
			phrases = append(phrases, p+mark)
		}
	}

	last := 0
	for _, loc := range clausePunct.FindAllStringIndex(text, -1) {
		add(text[last:loc[0]], text[loc[0]:loc[1]])
		last = loc[1]
	}
	add(text[last:], "")
	return phrases
}

// PhraseUnits gives each phrase of script an equal share of duration, in order.
func PhraseUnits(script string, duration float64) ([]Unit, error) {
	phrases := SplitPhrases(script)
	if len(phrases) == 0 {
		return nil, errors.New("script has no phrases")
	}
	if duration <= 0 {
		return nil, errors.Errorf("cannot allocate %d phrases over %.3fs", len(phrases), duration)
	}
	return allocate(phrases, duration), nil
}

// WordUnits gives each whitespace-separated word of script an equal share of
// duration. It returns units for any non-empty script.
func WordUnits(script string, duration float64) []Unit {
	words := strings.Fields(script)
	if len(words) == 0 {
		return []Unit{}
	}
	if duration <= 0 {
		duration = fallbackWordSeconds * float64(len(words))
	}
	return allocate(words, duration)
}

func allocate(texts []string, duration float64) []Unit {
	shares := timing.EqualShares(duration, len(texts))
	return lo.Map(texts, func(text string, i int) Unit {
		return Unit{Text: text, Start: shares[i][0], End: shares[i][1]}
	})
}
