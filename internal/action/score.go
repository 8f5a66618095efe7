package action

import (
	"strings"

	"driftworld/internal/state"
)

// Alias scoring: 10 for an exact case-insensitive name match, +6 if any
// alias matches, + min(ctxBonus, 4), −2 when the minimum Levenshtein
// distance to name-or-aliases exceeds 2.

// Score rates how well query q matches an item name and its aliases.
func Score(q, name string, aliases []string, ctxBonus int) int {
	q = strings.ToLower(strings.TrimSpace(q))
	score := 0
	if strings.EqualFold(q, name) {
		score += 10
	}
	for _, a := range aliases {
		if strings.EqualFold(q, a) {
			score += 6
			break
		}
	}
	if ctxBonus > 4 {
		ctxBonus = 4
	}
	score += ctxBonus

	minDist := levenshtein(q, strings.ToLower(name))
	for _, a := range aliases {
		if d := levenshtein(q, strings.ToLower(a)); d < minDist {
			minDist = d
		}
	}
	if minDist > 2 {
		score -= 2
	}
	return score
}

// cellMatchThreshold accepts an alias-scored cell item.
const cellMatchThreshold = 6

// MatchCellItem finds the best-scoring item in a cell; ok requires the
// score threshold.
func MatchCellItem(q string, items []state.Item) (int, bool) {
	best, bestIdx := -1, -1
	for i, it := range items {
		if s := Score(q, it.Name, it.Aliases, 0); s > best {
			best, bestIdx = s, i
		}
	}
	return bestIdx, bestIdx >= 0 && best >= cellMatchThreshold
}

// Inventory resolution accepts the top candidate only with score ≥ 20
// and a gap of ≥ 10 to the runner-up.
const (
	inventoryAcceptScore = 20
	inventoryAcceptGap   = 10
)

// ResolveInventory finds the unambiguous best inventory match for q.
func ResolveInventory(q string, items []state.Item, ctxBonus int) (int, bool) {
	best, second, bestIdx := -1, -1, -1
	for i, it := range items {
		s := Score(q, it.Name, it.Aliases, ctxBonus)
		switch {
		case s > best:
			second = best
			best, bestIdx = s, i
		case s > second:
			second = s
		}
	}
	if bestIdx < 0 || best < inventoryAcceptScore {
		return -1, false
	}
	if second >= 0 && best-second < inventoryAcceptGap {
		return -1, false
	}
	return bestIdx, true
}

// FindOwned resolves target to an inventory index for drop and examine.
// The strict scored resolution wins when the utterance spells the item
// out in full; the plain name/alias lookup covers terse commands.
func FindOwned(p *state.Player, target, raw string) int {
	if idx, ok := ResolveInventory(target, p.Inventory, phraseBonus(raw, target)); ok {
		return idx
	}
	return p.FindItem(target)
}

// phraseBonus grants the full context bonus only when every word of the
// resolved target appears verbatim in the utterance, so normalized
// targets the player never typed stay on the plain lookup.
func phraseBonus(raw, target string) int {
	targetWords := strings.Fields(strings.ToLower(target))
	if len(targetWords) == 0 {
		return 0
	}
	rawWords := strings.Fields(strings.ToLower(raw))
	for _, tw := range targetWords {
		found := false
		for _, rw := range rawWords {
			if rw == tw {
				found = true
				break
			}
		}
		if !found {
			return 0
		}
	}
	return 4
}

// levenshtein computes edit distance with a two-row table.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
