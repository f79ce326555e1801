// Package validate holds the pure checks run before anything is sent to the
// processing API.
package validate

import (
	"strings"
	"unicode/utf8"

	"writon/internal/prefs"
	"writon/internal/provider"
)

// MaxTextLength is the largest submission accepted, in characters
const MaxTextLength = 10000

// unknownKeyMinLength is the length an unrecognized provider's key must exceed
const unknownKeyMinLength = 10

// Kind identifies which submission check failed
type Kind int

const (
	EmptyText Kind = iota
	MissingKey
	TooLong
	MissingLanguage
)

func (k Kind) String() string {
	switch k {
	case EmptyText:
		return "empty_text"
	case MissingKey:
		return "missing_key"
	case TooLong:
		return "too_long"
	case MissingLanguage:
		return "missing_language"
	default:
		return "unknown"
	}
}

// Error is a locally detected submission problem. It never reaches the network.
type Error struct {
	Kind Kind
}

func (e *Error) Error() string {
	switch e.Kind {
	case EmptyText:
		return "Please enter some text to process"
	case MissingKey:
		return "Please enter your API key"
	case TooLong:
		return "Text is too long. Maximum 10,000 characters allowed."
	case MissingLanguage:
		return "Please specify a target language for translation"
	default:
		return "invalid submission"
	}
}

// Is matches another *Error of the same kind, so errors.Is(err, &Error{Kind: TooLong}) works
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// IsValidAPIKeyFormat reports whether key has the shape the provider issues.
// It says nothing about whether the key is live; that is the health check's job.
func IsValidAPIKeyFormat(providerID, key string) bool {
	info, ok := provider.Lookup(providerID)
	if !ok || info.KeyPattern == nil {
		return len(key) > unknownKeyMinLength
	}
	return info.KeyPattern.MatchString(key)
}

// ResolveTargetLanguage returns the language to translate into. The second
// value is false outside translate mode.
func ResolveTargetLanguage(mode, selected, custom string) (string, bool) {
	if mode != prefs.ModeTranslate {
		return "", false
	}
	if selected == prefs.CustomLanguage {
		return strings.TrimSpace(custom), true
	}
	return selected, true
}

// Length counts characters the way the limit is enforced
func Length(text string) int {
	return utf8.RuneCountInString(text)
}

// ValidateSubmission runs the checks in order and returns the first failure
func ValidateSubmission(cfg prefs.Configuration, text string) error {
	if strings.TrimSpace(text) == "" {
		return &Error{Kind: EmptyText}
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return &Error{Kind: MissingKey}
	}
	if Length(text) > MaxTextLength {
		return &Error{Kind: TooLong}
	}
	if lang, ok := ResolveTargetLanguage(cfg.Mode, cfg.TargetLanguage, cfg.CustomLanguage); ok && lang == "" {
		return &Error{Kind: MissingLanguage}
	}
	return nil
}
