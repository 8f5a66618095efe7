package quest

import (
	"fmt"

	"driftworld/internal/rng"
	"driftworld/internal/state"
)

// Constraint is the fully-determined frame of a quest: reward, enemy set,
// travel distance and keyword bans are all fixed before any narrative is
// written, so a rejected narrative can be regenerated without re-rolling
// the mechanics.
type Constraint struct {
	Difficulty        string   `json:"difficulty"`
	RewardGold        int      `json:"reward_gold"`
	RewardItems       int      `json:"reward_items"`
	EnemyTypes        []string `json:"enemy_types"`
	EnemyCount        int      `json:"enemy_count"`
	TravelDistance    int      `json:"travel_distance"`
	ForbiddenKeywords []string `json:"forbidden_keywords"`
	Complexity        string   `json:"complexity"`
	TotalSteps        int      `json:"total_steps"`
	SettlementType    string   `json:"settlement_type"`
	Population        int      `json:"population"`
}

// RollConstraint draws a constraint from the settlement context. The
// stream should be quest-scoped so identical seeds reproduce identical
// constraints.
func RollConstraint(s rng.Stream, settlementType string, population int) Constraint {
	mods, ok := settlementModifiers[settlementType]
	if !ok {
		mods = settlementModifiers["village"]
	}
	weighted := make([]rng.Weighted[string], 0, len(difficulties))
	for _, d := range difficulties {
		weighted = append(weighted, rng.Weighted[string]{
			Item:   d,
			Weight: difficultyWeights[d] * mods[d],
		})
	}
	diff := rng.WeightedChoice(s, weighted)

	c := Constraint{
		Difficulty:        diff,
		SettlementType:    settlementType,
		Population:        population,
		ForbiddenKeywords: ForbiddenKeywords[diff],
	}

	rr := RewardRanges[diff]
	c.RewardGold = rng.IntFrom(s, rr[0], rr[1])

	allowed := AllowedEnemyTypes[diff]
	max := len(allowed)
	if max > 3 {
		max = 3
	}
	n := rng.IntFrom(s, 1, max)
	picked := map[int]bool{}
	for len(c.EnemyTypes) < n {
		idx := rng.IntFrom(s, 0, len(allowed)-1)
		if picked[idx] {
			continue
		}
		picked[idx] = true
		c.EnemyTypes = append(c.EnemyTypes, allowed[idx])
	}

	ec := enemyCountRanges[diff]
	c.EnemyCount = rng.IntFrom(s, ec[0], ec[1])
	tr := travelRanges[diff]
	c.TravelDistance = rng.IntFrom(s, tr[0], tr[1])

	items := make([]rng.Weighted[int], len(rewardItemWeights))
	for i, w := range rewardItemWeights {
		items[i] = rng.Weighted[int]{Item: w.Count, Weight: w.Weight}
	}
	c.RewardItems = rng.WeightedChoice(s, items)

	cw := make([]rng.Weighted[string], 0, len(complexityWeights))
	for _, k := range []string{ComplexitySingle, ComplexityShort, ComplexityMedium, ComplexityDynamic} {
		cw = append(cw, rng.Weighted[string]{Item: k, Weight: complexityWeights[k]})
	}
	c.Complexity = rng.WeightedChoice(s, cw)
	sr := complexitySteps[c.Complexity]
	c.TotalSteps = rng.IntFrom(s, sr[0], sr[1])

	return c
}

// BuildSteps lays out the quest skeleton: every step but the last carries
// 2-3 choices, each pointing at some strictly later step, and every step
// carries 1-2 failure triggers.
func BuildSteps(s rng.Stream, questID string, total int) []*state.QuestStep {
	steps := make([]*state.QuestStep, total)
	for i := 0; i < total; i++ {
		steps[i] = &state.QuestStep{
			ID: fmt.Sprintf("%s_step_%d", questID, i+1),
		}
	}
	for i := 0; i < total-1; i++ {
		nChoices := rng.IntFrom(s, 2, 3)
		for k := 0; k < nChoices; k++ {
			target := rng.IntFrom(s, i+1, total-1)
			steps[i].Choices = append(steps[i].Choices, &state.QuestChoice{
				ID:          fmt.Sprintf("choice_%d_%d", i+1, k+1),
				LeadsToStep: steps[target].ID,
			})
		}
	}
	cons := make([]rng.Weighted[string], len(consequenceWeights))
	for i, w := range consequenceWeights {
		cons[i] = rng.Weighted[string]{Item: w.Name, Weight: w.Weight}
	}
	for _, st := range steps {
		nTriggers := rng.IntFrom(s, 1, 2)
		for k := 0; k < nTriggers; k++ {
			st.FailureTriggers = append(st.FailureTriggers, &state.FailureTrigger{
				Kind:        rng.Choice(s, failureTriggerKinds),
				Consequence: rng.WeightedChoice(s, cons),
			})
		}
	}
	return steps
}
