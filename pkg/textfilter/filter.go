package textfilter

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MatchMode selects how the words of a WordList are tested against text.
type MatchMode int

const (
	// Substring matches a word anywhere in the text, including inside other words
	// ("ass" matches "class").
	Substring MatchMode = iota

	// WholeWord matches only when the word is the entire text or is bounded by
	// single spaces or the start/end of the text. Punctuation is not a boundary.
	WholeWord
)

func (m MatchMode) String() string {
	switch m {
	case Substring:
		return "substring"
	case WholeWord:
		return "whole_word"
	default:
		return "unknown"
	}
}

// WordList is a fixed list of lower-case words or phrases tested with one MatchMode.
type WordList struct {
	words []string
	mode  MatchMode
}

// NewWordList creates a word list. Words are folded to lower case once here so
// callers can declare lists in any case.
func NewWordList(mode MatchMode, words ...string) *WordList {
	wl := &WordList{
		words: make([]string, 0, len(words)),
		mode:  mode,
	}
	for _, w := range words {
		w = Fold(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		wl.words = append(wl.words, w)
	}
	return wl
}

// Mode returns the list's match mode.
func (wl *WordList) Mode() MatchMode {
	return wl.mode
}

// Words returns a copy of the list's words.
func (wl *WordList) Words() []string {
	out := make([]string, len(wl.words))
	copy(out, wl.words)
	return out
}

// Matches reports whether any word in the list matches the already-folded text.
func (wl *WordList) Matches(folded string) bool {
	_, ok := wl.FirstMatch(folded)
	return ok
}

// FirstMatch returns the first word, in declaration order, that matches the folded text.
func (wl *WordList) FirstMatch(folded string) (string, bool) {
	for _, w := range wl.words {
		var hit bool
		switch wl.mode {
		case WholeWord:
			hit = ContainsWord(folded, w)
		default:
			hit = strings.Contains(folded, w)
		}
		if hit {
			return w, true
		}
	}
	return "", false
}

// ContainsWord reports whether word occurs in text as a whole word, where the only
// recognized boundaries are a single space and the edges of the text.
func ContainsWord(text, word string) bool {
	if word == "" {
		return false
	}
	return text == word ||
		strings.Contains(text, " "+word+" ") ||
		strings.HasPrefix(text, word+" ") ||
		strings.HasSuffix(text, " "+word)
}

// ContainsAny reports whether text contains any of the given substrings.
func ContainsAny(text string, subs ...string) bool {
	for _, s := range subs {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}

// Fold lower-cases text for case-insensitive comparison.
// A new Caser is built per call because Casers are not safe for concurrent use.
func Fold(text string) string {
	return cases.Lower(language.Und).String(text)
}

// Title returns text in title case, e.g. for display names built from ids.
func Title(text string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}
