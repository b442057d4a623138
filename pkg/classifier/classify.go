package classifier

import "github.com/jwebster45206/console-university/pkg/textfilter"

// Context is the slice of conversation state that classification depends on.
type Context struct {
	Persona        Persona
	HasName        bool
	Answered       bool
	WrongAnswers   int
	ScriptedPolicy bool
}

// Classify maps raw player text to a Category for the given context.
// Blank input is Empty regardless of persona.
func Classify(raw string, ctx Context) Category {
	trimmed := Normalize(raw)
	if trimmed == "" {
		return Empty
	}
	switch ctx.Persona {
	case PersonaDean:
		return classifyDean(trimmed, ctx)
	case PersonaQuestGiver:
		if ctx.ScriptedPolicy {
			return Scripted
		}
		return classifyQuestGiver(trimmed, ctx)
	default:
		return Fallback
	}
}

// Precedence: insult > question > name > fallback. Only before the name is known.
func classifyDean(trimmed string, ctx Context) Category {
	if ctx.HasName {
		return Dismissed
	}
	folded := textfilter.Fold(trimmed)
	switch {
	case IsInsult(folded):
		return Insult
	case IsQuestion(folded):
		return Question
	case IsName(trimmed):
		return Name
	default:
		return Fallback
	}
}

// Precedence: mean > topical (unanswered) > correct time > wrong time under the
// strike limit > third strike > irrelevant (unanswered) > generic.
func classifyQuestGiver(trimmed string, ctx Context) Category {
	folded := textfilter.Fold(trimmed)
	switch {
	case IsMean(folded):
		return Mean
	case IsTopical(folded) && !ctx.Answered:
		return Topical
	case IsCorrectTime(folded):
		return CorrectTime
	case ctx.WrongAnswers < StrikeLimit && IsTimeGuess(folded):
		return WrongTime
	case ctx.WrongAnswers >= StrikeLimit && IsStrikeGuess(folded):
		return ThirdStrike
	case !ctx.Answered:
		return Irrelevant
	default:
		return Generic
	}
}
