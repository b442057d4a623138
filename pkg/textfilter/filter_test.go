package textfilter

import (
	"testing"
)

func TestWordList_Substring(t *testing.T) {
	wl := NewWordList(Substring, "ass", "Hell", "  ", "screw")

	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{name: "exact word", input: "ass", expected: true},
		{name: "inside another word", input: "i love my class", expected: true},
		{name: "hello contains hell", input: "hello there", expected: true},
		{name: "list words are folded", input: "what the hell", expected: true},
		{name: "prefix of longer word", input: "screwdriver", expected: true},
		{name: "no match", input: "good morning", expected: false},
		{name: "empty text", input: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wl.Matches(tt.input); got != tt.expected {
				t.Errorf("Matches(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}

	if len(wl.Words()) != 3 {
		t.Errorf("expected blank entries to be dropped, got %v", wl.Words())
	}
}

func TestWordList_WholeWord(t *testing.T) {
	wl := NewWordList(WholeWord, "hell", "ass")

	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{name: "entire text", input: "hell", expected: true},
		{name: "leading word", input: "hell no", expected: true},
		{name: "trailing word", input: "oh hell", expected: true},
		{name: "middle word", input: "what the hell man", expected: true},
		{name: "inside another word", input: "hello", expected: false},
		{name: "class is not ass", input: "my class", expected: false},
		{name: "punctuation is not a boundary", input: "oh hell!", expected: false},
		{name: "comma is not a boundary", input: "hell, no", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wl.Matches(tt.input); got != tt.expected {
				t.Errorf("Matches(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestWordList_FirstMatch(t *testing.T) {
	wl := NewWordList(Substring, "need", "do")

	word, ok := wl.FirstMatch("what do i need")
	if !ok {
		t.Fatal("expected a match")
	}
	if word != "need" {
		t.Errorf("expected first declared word 'need', got %q", word)
	}

	if _, ok := wl.FirstMatch("nothing here"); ok {
		t.Error("expected no match")
	}
}

func TestContainsWord_EmptyWord(t *testing.T) {
	if ContainsWord("anything", "") {
		t.Error("empty word should never match")
	}
}

func TestFold(t *testing.T) {
	if got := Fold("Alexandra SMITH"); got != "alexandra smith" {
		t.Errorf("Fold() = %q", got)
	}
}

func TestTitle(t *testing.T) {
	if got := Title("dean_office"); got != "Dean Office" {
		t.Errorf("Title() = %q", got)
	}
}

func TestMatchMode_String(t *testing.T) {
	if Substring.String() != "substring" || WholeWord.String() != "whole_word" {
		t.Error("unexpected mode names")
	}
	if MatchMode(9).String() != "unknown" {
		t.Error("expected unknown for out-of-range mode")
	}
}
