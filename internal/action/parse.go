package action

import (
	"regexp"
	"strings"
)

// Legacy fallback parser. Used when the LLM parser is disabled, fails,
// or answers below the confidence floor. Recognizes look, take X,
// drop X, and move <dir>; anything else becomes a noop.

var (
	takeRe = regexp.MustCompile(`^(?:take|grab|pick\s+up)\s+(?:the\s+)?(.+)$`)
	dropRe = regexp.MustCompile(`^drop\s+(?:the\s+)?(.+)$`)
	moveRe = regexp.MustCompile(`^(?:go|move|walk|head)?\s*(north|south|east|west|up|down|n|s|e|w|u|d)$`)
)

// Fallback parses the legacy grammar. Confidence is fixed at 0.6: above
// the 0.5 floor so its result is used, below any healthy LLM reply.
func Fallback(text string) *Intent {
	t := strings.ToLower(strings.TrimSpace(text))

	var a *Action
	switch {
	case t == "look" || t == "look around":
		a = &Action{Kind: KindTrivial, Verb: "look"}
	case t == "inventory" || t == "i":
		a = &Action{Kind: KindTrivial, Verb: "inventory"}
	default:
		if m := takeRe.FindStringSubmatch(t); m != nil {
			a = &Action{Kind: KindTake, Verb: "take", Target: m[1]}
			break
		}
		if m := dropRe.FindStringSubmatch(t); m != nil {
			a = &Action{Kind: KindDrop, Verb: "drop", Target: m[1]}
			break
		}
		if m := moveRe.FindStringSubmatch(t); m != nil {
			if dir, ok := CanonicalDir(m[1]); ok {
				a = &Action{Kind: KindMove, Verb: "move", Dir: dir}
			}
		}
	}

	if a == nil {
		return Noop(text)
	}
	a.Raw = text
	return &Intent{
		Primary:    a,
		Confidence: 0.6,
		Source:     "fallback",
		Raw:        text,
	}
}
