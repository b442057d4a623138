// Package classifier maps raw player text to the semantic category that drives
// the dialogue state machine. Matching is rule based: word lists and
// a name-shape pattern, with a fixed precedence per persona.
package classifier

import (
	"regexp"
	"strings"

	"github.com/jwebster45206/console-university/pkg/textfilter"
)

// Persona identifies which conversation rules apply to an NPC.
type Persona string

const (
	PersonaDean       Persona = "dean"        // gatekeeper who asks for the player's name
	PersonaQuestGiver Persona = "quest_giver" // asks the player a timed riddle
)

// Category is the classification of one player utterance.
type Category string

const (
	Empty Category = "empty"

	// Dean
	Insult    Category = "insult"
	Question  Category = "question"
	Name      Category = "name"
	Fallback  Category = "fallback"
	Dismissed Category = "dismissed" // any input after the name was given

	// Quest giver
	Mean        Category = "mean"
	Topical     Category = "topical"
	CorrectTime Category = "correct_time"
	WrongTime   Category = "wrong_time"
	ThirdStrike Category = "third_strike"
	Irrelevant  Category = "irrelevant"
	Generic     Category = "generic"
	Scripted    Category = "scripted" // scripted policy: any input
)

// StrikeLimit is the wrong-answer count at which a time guess ends the conversation.
const StrikeLimit = 2

var (
	derogatoryPhrases = textfilter.NewWordList(textfilter.Substring,
		"bite me", "screw you", "fuck off", "piss off", "go to hell", "drop dead",
		"shut up", "shut it", "shut your", "get lost", "buzz off", "piss on",
		"kiss my", "kiss my ass", "suck it", "suck my", "eat shit", "eat me",
	)

	// Curse words must appear as whole words; generic insults match anywhere.
	curseWords = textfilter.NewWordList(textfilter.WholeWord,
		"fuck", "shit", "damn", "hell", "ass", "dipshit", "jerk", "idiot", "stupid",
		"dumb", "moron", "bastard", "bitch", "crap", "piss",
	)
	insultWords = textfilter.NewWordList(textfilter.Substring,
		"stupid", "idiot", "dumb", "suck", "hate", "screw", "jerk",
	)

	meanWords = textfilter.NewWordList(textfilter.Substring,
		"stupid", "idiot", "dumb", "suck", "hate", "screw", "damn", "hell", "ass",
		"jerk", "weird", "gross",
	)
	topicalWords = textfilter.NewWordList(textfilter.Substring,
		"sonic", "stadium", "championship", "mission", "help", "how", "what", "need", "do", "get",
	)

	questionWords = []string{"what", "how", "why", "when", "where", "who"}
	gameKeywords  = []string{"sonic", "stadium", "championship", "mission"}
	commandVerbs  = []string{"go", "talk", "enter", "exit"}

	correctTimeForms = []string{"315", "3:15", "3 15", "three fifteen", "three-fifteen", "3 fifteen"}
	clockWords       = []string{"time", "noon", "midnight", "o'clock"}
	meridiemWords    = []string{"pm", "am"}

	namePattern  = regexp.MustCompile(`^[A-Za-z]+([\s'-][A-Za-z]+)*$`)
	invalidChars = regexp.MustCompile(`[!@#$%^&*()_+=\[\]{};:"\\|,.<>/?]`)
	digits       = regexp.MustCompile(`\d+`)
)

const (
	minNameLength = 2
	maxNameLength = 30
)

// Normalize trims surrounding whitespace from raw input.
func Normalize(raw string) string {
	return strings.TrimSpace(raw)
}

// IsInsult reports whether folded text insults the Dean: a derogatory phrase, a
// whole-word curse, or a generic insult anywhere in the text.
func IsInsult(folded string) bool {
	return derogatoryPhrases.Matches(folded) ||
		curseWords.Matches(folded) ||
		insultWords.Matches(folded)
}

// IsQuestion reports whether folded text reads as a question.
func IsQuestion(folded string) bool {
	if strings.Contains(folded, "?") {
		return true
	}
	for _, w := range questionWords {
		if strings.HasPrefix(folded, w) || strings.Contains(folded, w+" ") {
			return true
		}
	}
	return false
}

// IsName reports whether trimmed (not folded) text has the shape of a person's name.
func IsName(trimmed string) bool {
	if len(trimmed) < minNameLength || len(trimmed) > maxNameLength {
		return false
	}
	if !namePattern.MatchString(trimmed) || invalidChars.MatchString(trimmed) {
		return false
	}
	folded := textfilter.Fold(trimmed)
	if textfilter.ContainsAny(folded, gameKeywords...) {
		return false
	}
	for _, verb := range commandVerbs {
		if strings.HasPrefix(folded, verb+" ") {
			return false
		}
	}
	return true
}

// IsCorrectTime reports whether folded text gives the riddle answer, 3:15.
func IsCorrectTime(folded string) bool {
	return textfilter.ContainsAny(folded, correctTimeForms...)
}

// IsTimeGuess reports whether folded text looks like an attempt at a time.
func IsTimeGuess(folded string) bool {
	return digits.MatchString(folded) ||
		textfilter.ContainsAny(folded, clockWords...) ||
		textfilter.ContainsAny(folded, meridiemWords...)
}

// IsStrikeGuess is the narrower time test used once the strike limit is reached:
// a bare "pm"/"am" no longer counts as a guess.
func IsStrikeGuess(folded string) bool {
	return digits.MatchString(folded) || textfilter.ContainsAny(folded, clockWords...)
}

// IsMean reports whether folded text is rude to the quest giver.
func IsMean(folded string) bool {
	return meanWords.Matches(folded)
}

// IsTopical reports whether folded text is about the quest.
func IsTopical(folded string) bool {
	return topicalWords.Matches(folded)
}

// AsksWhatToDo reports whether a topical utterance asks what the player should do,
// which delays the quest giver's first reply.
func AsksWhatToDo(folded string) bool {
	return strings.Contains(folded, "what") ||
		(strings.Contains(folded, "need") && strings.Contains(folded, "do")) ||
		strings.Contains(folded, "how") ||
		strings.Contains(folded, "help")
}
