// Package action models player intents as a tagged variant, parses the
// legacy fallback grammar, scores alias matches, and validates queued
// actions against the current world state without mutating it.
// Application lives in the turn orchestrator, which routes each queued
// action to the subsystem that owns its mutation.
package action

import (
	"strings"

	"driftworld/internal/catalog"
)

// Kind tags the action variant.
type Kind string

const (
	KindMove    Kind = "move"
	KindTake    Kind = "take"
	KindDrop    Kind = "drop"
	KindExamine Kind = "examine"
	KindTalk    Kind = "talk"
	KindQuest   Kind = "quest"
	KindTrivial Kind = "trivial" // sit, stand, wait, listen, look, inventory, help
	KindShallow Kind = "shallow" // cast, attack, sneak: noted but not failed
	KindEnter   Kind = "enter"   // layer descent/ascent
	KindUnknown Kind = "unknown"
)

// Action is one normalized player action.
type Action struct {
	Kind      Kind   `json:"kind"`
	Verb      string `json:"verb"`
	Target    string `json:"target,omitempty"`
	Dir       string `json:"dir,omitempty"`
	QuestKind string `json:"quest_kind,omitempty"` // accept_quest, complete_quest, ask_about_quest
	QuestID   string `json:"quest_id,omitempty"`
	NPCID     string `json:"npc_id,omitempty"`
	Raw       string `json:"raw,omitempty"`
	Note      string `json:"note,omitempty"`
}

// Intent is the normalized result of parsing one utterance.
type Intent struct {
	Primary    *Action  `json:"primary"`
	Secondary  []Action `json:"secondary,omitempty"`
	Compound   bool     `json:"compound"`
	Confidence float64  `json:"confidence"`
	Source     string   `json:"source"` // llm, fallback, noop
	Raw        string   `json:"raw"`
}

var trivialVerbs = map[string]bool{
	"sit": true, "stand": true, "wait": true, "listen": true,
	"look": true, "inventory": true, "help": true,
}

var shallowVerbs = map[string]bool{
	"cast": true, "attack": true, "sneak": true,
}

var questVerbs = map[string]bool{
	"accept_quest": true, "complete_quest": true, "ask_about_quest": true,
}

// Classify builds an Action from the parser's (action, target, dir)
// triple.
func Classify(verb, target, dir string) Action {
	v := strings.ToLower(strings.TrimSpace(verb))
	a := Action{Verb: v, Target: strings.TrimSpace(target)}

	switch {
	case v == "move" || v == "go" || v == "walk" || v == "head":
		a.Kind = KindMove
		a.Dir = dir
		if a.Dir == "" {
			a.Dir = a.Target
		}
	case v == "take" || v == "grab" || v == "pick_up":
		a.Kind = KindTake
	case v == "drop":
		a.Kind = KindDrop
	case v == "examine" || v == "inspect":
		a.Kind = KindExamine
	case v == "talk" || v == "speak":
		a.Kind = KindTalk
	case v == "enter" || v == "exit" || v == "leave":
		a.Kind = KindEnter
	case questVerbs[v]:
		a.Kind = KindQuest
		a.QuestKind = v
	case trivialVerbs[v]:
		a.Kind = KindTrivial
	case shallowVerbs[v]:
		a.Kind = KindShallow
		a.Note = "shallow action: acknowledged without simulation"
	default:
		a.Kind = KindUnknown
		a.Note = "unrecognized action passed through"
	}
	return a
}

// Noop is the empty intent used when nothing could be parsed.
func Noop(raw string) *Intent {
	return &Intent{
		Primary:    &Action{Kind: KindTrivial, Verb: "wait", Raw: raw},
		Confidence: 0,
		Source:     "noop",
		Raw:        raw,
	}
}

// CanonicalDir canonicalizes a direction token.
func CanonicalDir(dir string) (string, bool) {
	return catalog.CanonicalDirection(dir)
}

// Summary renders a short history line for an intent.
func (in *Intent) Summary() string {
	if in == nil || in.Primary == nil {
		return "noop"
	}
	parts := []string{in.Primary.Verb}
	if in.Primary.Dir != "" {
		parts = append(parts, in.Primary.Dir)
	}
	if in.Primary.Target != "" {
		parts = append(parts, in.Primary.Target)
	}
	return strings.Join(parts, " ")
}
