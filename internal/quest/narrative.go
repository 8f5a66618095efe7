package quest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"driftworld/internal/state"
)

// StepNarrative is one step's narrative text keyed by its declared id.
type StepNarrative struct {
	ID        string `json:"id"`
	Narrative string `json:"narrative"`
}

// Narrative is the writer's reply: the flavor layer that wraps a
// constraint. It never changes the mechanics.
type Narrative struct {
	Narrative     string          `json:"narrative"`
	Objective     string          `json:"objective_description"`
	RewardDesc    string          `json:"reward_description"`
	Protagonist   string          `json:"protagonist,omitempty"`
	Antagonist    string          `json:"antagonist,omitempty"`
	Hooks         []string        `json:"narrative_hooks,omitempty"`
	Complications []string        `json:"complications,omitempty"`
	FailureConds  []string        `json:"failure_conditions,omitempty"`
	Steps         []StepNarrative `json:"steps"`
}

var goldMentionRe = regexp.MustCompile(`(\d+)\s*gold`)

// ValidateNarrative checks a writer reply against its constraint:
// required fields, keyword bans, reward consistency, bestiary bounds and
// step id coverage. Any violation sends the caller to the fallback
// library.
func ValidateNarrative(n *Narrative, c Constraint, steps []*state.QuestStep) error {
	if n == nil {
		return fmt.Errorf("empty reply")
	}
	if n.Narrative == "" || n.Objective == "" || n.RewardDesc == "" {
		return fmt.Errorf("missing required fields")
	}

	texts := n.allTexts()
	joined := strings.ToLower(strings.Join(texts, "\n"))

	for _, kw := range c.ForbiddenKeywords {
		if strings.Contains(joined, strings.ToLower(kw)) {
			return fmt.Errorf("forbidden keyword %q", kw)
		}
	}

	for _, m := range goldMentionRe.FindAllStringSubmatch(n.RewardDesc, -1) {
		amount, err := strconv.Atoi(m[1])
		if err == nil && amount != c.RewardGold {
			return fmt.Errorf("reward mentions %d gold, constraint pays %d", amount, c.RewardGold)
		}
	}

	if enemy := strayEnemy(joined, c.Difficulty); enemy != "" {
		return fmt.Errorf("enemy %q outside %s tier", enemy, c.Difficulty)
	}

	declared := make(map[string]bool, len(steps))
	for _, st := range steps {
		declared[st.ID] = true
	}
	covered := make(map[string]bool, len(n.Steps))
	for _, sn := range n.Steps {
		if !declared[sn.ID] {
			return fmt.Errorf("narrative for undeclared step %q", sn.ID)
		}
		covered[sn.ID] = true
	}
	for _, st := range steps {
		if !covered[st.ID] {
			return fmt.Errorf("no narrative for step %q", st.ID)
		}
	}
	return nil
}

func (n *Narrative) allTexts() []string {
	texts := []string{n.Narrative, n.Objective, n.RewardDesc, n.Protagonist, n.Antagonist}
	texts = append(texts, n.Hooks...)
	texts = append(texts, n.Complications...)
	texts = append(texts, n.FailureConds...)
	for _, sn := range n.Steps {
		texts = append(texts, sn.Narrative)
	}
	return texts
}

// strayEnemy finds a bestiary name from another tier mentioned in the
// text. A disallowed name that is a substring of an allowed one (wolf vs
// dire wolf) is not counted against it.
func strayEnemy(lowerText, difficulty string) string {
	allowed := AllowedEnemyTypes[difficulty]
	for d, enemies := range AllowedEnemyTypes {
		if d == difficulty {
			continue
		}
	scan:
		for _, e := range enemies {
			if !strings.Contains(lowerText, strings.ToLower(e)) {
				continue
			}
			for _, a := range allowed {
				if strings.Contains(strings.ToLower(a), strings.ToLower(e)) {
					continue scan
				}
			}
			return e
		}
	}
	return ""
}

// Per-difficulty fallback templates. ${settlement} and ${reward_gold}
// are substituted; the constraint's first enemy becomes the antagonist.
var fallbackTemplates = map[string]struct {
	narrative string
	objective string
	step      string
}{
	DiffTrivial: {
		narrative: "Folk in ${settlement} are bothered by a nuisance and will pay ${reward_gold} gold to be rid of it.",
		objective: "Deal with the trouble near ${settlement}.",
		step:      "Track the nuisance and put an end to it.",
	},
	DiffEasy: {
		narrative: "Trouble on the roads around ${settlement}. The locals offer ${reward_gold} gold for a steady hand.",
		objective: "Clear the threat menacing ${settlement}.",
		step:      "Find where the trouble nests and deal with it.",
	},
	DiffModerate: {
		narrative: "Something organized is preying on ${settlement}. The bounty stands at ${reward_gold} gold.",
		objective: "Break the threat against ${settlement}.",
		step:      "Follow the trail and strike before they regroup.",
	},
	DiffHard: {
		narrative: "A dangerous power threatens ${settlement}. Survivors will be paid ${reward_gold} gold.",
		objective: "End the threat to ${settlement}, whatever the cost.",
		step:      "Press deeper; the worst is still ahead.",
	},
	DiffDeadly: {
		narrative: "Doom gathers over ${settlement}. The desperate purse holds ${reward_gold} gold.",
		objective: "Face what no one else in ${settlement} dares to.",
		step:      "Endure, and do not turn back.",
	},
}

// FallbackNarrative fills the deterministic template library for the
// constraint. Used whenever the writer is disabled, errors out, or fails
// validation.
func FallbackNarrative(c Constraint, steps []*state.QuestStep, settlementName string) *Narrative {
	tpl := fallbackTemplates[c.Difficulty]
	sub := func(s string) string {
		s = strings.ReplaceAll(s, "${settlement}", settlementName)
		return strings.ReplaceAll(s, "${reward_gold}", strconv.Itoa(c.RewardGold))
	}
	antagonist := ""
	if len(c.EnemyTypes) > 0 {
		antagonist = c.EnemyTypes[0]
	}
	n := &Narrative{
		Narrative:  sub(tpl.narrative),
		Objective:  sub(tpl.objective),
		RewardDesc: fmt.Sprintf("%d gold", c.RewardGold),
		Antagonist: antagonist,
	}
	for _, st := range steps {
		n.Steps = append(n.Steps, StepNarrative{ID: st.ID, Narrative: sub(tpl.step)})
	}
	return n
}

// Apply folds a validated narrative into the quest structure.
func Apply(q *state.Quest, n *Narrative, fallback bool) {
	q.Narrative = n.Narrative
	q.ObjectiveDesc = n.Objective
	q.RewardDesc = n.RewardDesc
	q.Protagonist = n.Protagonist
	q.Antagonist = n.Antagonist
	q.NarrativeHooks = n.Hooks
	q.Complications = n.Complications
	q.FailureConditions = n.FailureConds
	q.IsFallback = fallback

	byID := make(map[string]string, len(n.Steps))
	for _, sn := range n.Steps {
		byID[sn.ID] = sn.Narrative
	}
	for _, st := range q.Steps {
		if text, ok := byID[st.ID]; ok {
			st.Narrative = text
		}
	}
}
