// Package stats derives counts and change summaries from input and result text.
package stats

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Character count thresholds for the input meter
const (
	WarnChars = 8000
	MaxChars  = 10000
)

var sentenceEnd = regexp.MustCompile(`[.!?]+`)

// TextStats are the live counts for a piece of text
type TextStats struct {
	Chars     int
	Words     int
	Sentences int
}

// Count computes character, word and sentence counts. Words are
// whitespace-delimited tokens; sentences are runs of terminal punctuation.
func Count(text string) TextStats {
	s := TextStats{Chars: utf8.RuneCountInString(text)}
	if strings.TrimSpace(text) == "" {
		return s
	}
	s.Words = len(strings.Fields(text))
	s.Sentences = len(sentenceEnd.FindAllStringIndex(text, -1))
	return s
}

// Level classifies a character count for display
type Level int

const (
	LevelNormal Level = iota
	LevelWarning
	LevelOver
)

func (l Level) String() string {
	switch l {
	case LevelNormal:
		return "normal"
	case LevelWarning:
		return "warning"
	case LevelOver:
		return "over"
	default:
		return "unknown"
	}
}

// CharLevel reports how close chars is to the submission limit
func CharLevel(chars int) Level {
	switch {
	case chars > MaxChars:
		return LevelOver
	case chars > WarnChars:
		return LevelWarning
	default:
		return LevelNormal
	}
}

// Delta is the change in one count between original and processed text
type Delta struct {
	From    int
	To      int
	Diff    int
	Percent int // Rounded; 0 when From is 0
}

func newDelta(from, to int) Delta {
	d := Delta{From: from, To: to, Diff: to - from}
	if from > 0 {
		d.Percent = int(math.Round(float64(d.Diff) / float64(from) * 100))
	}
	return d
}

// String formats the delta as "+1 (50%)"; a zero or negative diff has no plus sign
func (d Delta) String() string {
	sign := ""
	if d.Diff > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%d (%d%%)", sign, d.Diff, d.Percent)
}

// DiffStats compares original and processed text
type DiffStats struct {
	Original  TextStats
	Processed TextStats
	Words     Delta
	Chars     Delta
}

// Diff computes word and character deltas between two texts
func Diff(original, processed string) DiffStats {
	o, p := Count(original), Count(processed)
	return DiffStats{
		Original:  o,
		Processed: p,
		Words:     newDelta(o.Words, p.Words),
		Chars:     newDelta(o.Chars, p.Chars),
	}
}
