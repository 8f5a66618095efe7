// Package quest rolls fully-constrained quests from settlement context,
// wraps them in validated narrative (or a deterministic fallback), and
// owns the accept/complete state transitions.
package quest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"driftworld/internal/rng"
	"driftworld/internal/state"
)

// Stable quest failure codes.
const (
	ReasonNoNPCTarget        = "NO_NPC_TARGET"
	ReasonBadNPCIDFormat     = "INVALID_NPC_ID_FORMAT"
	ReasonNPCNotFound        = "NPC_NOT_FOUND"
	ReasonNotQuestGiver      = "NPC_NOT_QUEST_GIVER"
	ReasonNoQuestAvailable   = "NO_QUEST_AVAILABLE"
	ReasonAlreadyActive      = "QUEST_ALREADY_ACTIVE"
	ReasonAlreadyCompleted   = "QUEST_ALREADY_COMPLETED"
	ReasonActiveLimitReached = "MAX_ACTIVE_QUESTS_REACHED"
	ReasonNoQuestID          = "NO_QUEST_ID"
	ReasonNotActive          = "QUEST_NOT_ACTIVE"
	ReasonWrongGiver         = "WRONG_QUEST_GIVER"
	ReasonIncomplete         = "INCOMPLETE_QUEST"
)

// Error carries a stable code plus a human message.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Code + ": " + e.Message }

func errc(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Writer produces quest narrative. Implementations may block; the engine
// bounds them with the passed context and falls back on any error.
type Writer interface {
	WriteQuestNarrative(ctx context.Context, c Constraint, steps []*state.QuestStep, settlementName string) (*Narrative, error)
}

// Engine rolls and transitions quests.
type Engine struct {
	log    *slog.Logger
	writer Writer // nil disables narrative generation
}

// NewEngine creates a quest engine. writer may be nil.
func NewEngine(log *slog.Logger, writer Writer) *Engine {
	return &Engine{log: log, writer: writer}
}

// SeedSettlement rolls the quest board for a newly created settlement:
// up to maxQuestsPerSettlement slots, each filled with the settlement's
// availability probability, constraints drawn from a quest-scoped stream
// so two sessions with the same world seed grow the same board.
func (e *Engine) SeedSettlement(ctx context.Context, gs *state.GameState, settlement *state.Settlement, rec *state.Recorder) []*state.Quest {
	kind := string(settlement.Type)
	ar, ok := availabilityRanges[kind]
	if !ok {
		ar = availabilityRanges["village"]
	}

	s := rng.Keyed(gs.RNGSeed, settlement.ID, "quests")
	avail := ar[0] + s.Float()*(ar[1]-ar[0])

	givers := questGivers(settlement)
	var quests []*state.Quest
	for slot := 0; slot < gs.Quests.Config.MaxQuestsPerSettlement; slot++ {
		if s.Float() >= avail {
			continue
		}
		id := fmt.Sprintf("quest_%s_%d", settlement.ID, slot)
		c := RollConstraint(s, kind, settlement.Population)
		steps := BuildSteps(s, id, c.TotalSteps)

		q := &state.Quest{
			ID:                id,
			Tier:              settlement.Tier,
			Status:            "available",
			Difficulty:        c.Difficulty,
			RewardGold:        c.RewardGold,
			RewardItems:       c.RewardItems,
			EnemyTypes:        c.EnemyTypes,
			EnemyCount:        c.EnemyCount,
			Complexity:        c.Complexity,
			TravelDistance:    c.TravelDistance,
			ForbiddenKeywords: c.ForbiddenKeywords,
			SettlementType:    kind,
			Population:        settlement.Population,
			Steps:             steps,
			CurrentStep:       0,
			TotalSteps:        c.TotalSteps,
		}
		if len(givers) > 0 {
			q.GiverNPCID = givers[len(quests)%len(givers)].ID
		}
		e.narrate(ctx, q, c, settlement.Name)
		quests = append(quests, q)
	}

	if gs.Quests.AllQuestsSeeded == nil {
		gs.Quests.AllQuestsSeeded = map[string][]*state.Quest{}
	}
	gs.Quests.AllQuestsSeeded[settlement.ID] = quests
	rec.Add("/quests/allQuestsSeeded/"+settlement.ID, quests)
	return quests
}

// narrate asks the writer for flavor and falls back to the template
// library on any failure. The constraint is never re-rolled.
func (e *Engine) narrate(ctx context.Context, q *state.Quest, c Constraint, settlementName string) {
	if e.writer != nil {
		n, err := e.writer.WriteQuestNarrative(ctx, c, q.Steps, settlementName)
		if err == nil {
			if verr := ValidateNarrative(n, c, q.Steps); verr == nil {
				Apply(q, n, false)
				return
			} else if e.log != nil {
				e.log.Warn("quest narrative rejected", "quest", q.ID, "reason", verr)
			}
		} else if e.log != nil {
			e.log.Warn("quest narrative failed", "quest", q.ID, "error", err)
		}
	}
	Apply(q, FallbackNarrative(c, q.Steps, settlementName), true)
}

func questGivers(settlement *state.Settlement) []*state.NPC {
	var givers []*state.NPC
	for _, npc := range settlement.NPCs {
		if npc.IsQuestGiver && npc.QuestGiverRank > 0 {
			givers = append(givers, npc)
		}
	}
	return givers
}

// Available lists the still-acceptable quests seeded for a settlement.
func Available(gs *state.GameState, settlementID string) []*state.Quest {
	var out []*state.Quest
	for _, q := range gs.Quests.AllQuestsSeeded[settlementID] {
		if q.Status == "available" {
			out = append(out, q)
		}
	}
	return out
}

// findSeeded locates a quest on any settlement's board and reports
// which board holds it.
func findSeeded(gs *state.GameState, questID string) (string, *state.Quest) {
	for settlementID, quests := range gs.Quests.AllQuestsSeeded {
		for _, q := range quests {
			if q.ID == questID {
				return settlementID, q
			}
		}
	}
	return "", nil
}

func findActive(gs *state.GameState, questID string) (int, *state.Quest) {
	for i, q := range gs.Quests.Active {
		if q.ID == questID {
			return i, q
		}
	}
	return -1, nil
}

func findCompleted(gs *state.GameState, questID string) *state.Quest {
	for _, q := range gs.Quests.Completed {
		if q.ID == questID {
			return q
		}
	}
	return nil
}

// CheckAccept validates acceptance without mutating. Returns the quest
// on success.
func CheckAccept(gs *state.GameState, questID string) (*state.Quest, *Error) {
	if questID == "" {
		return nil, errc(ReasonNoQuestID, "no quest id supplied")
	}
	if len(gs.Quests.Active) >= gs.Quests.Config.MaxActiveQuests {
		return nil, errc(ReasonActiveLimitReached, "active quest limit (%d) reached", gs.Quests.Config.MaxActiveQuests)
	}
	if _, q := findActive(gs, questID); q != nil {
		return nil, errc(ReasonAlreadyActive, "quest %s already active", questID)
	}
	if findCompleted(gs, questID) != nil {
		return nil, errc(ReasonAlreadyCompleted, "quest %s already completed", questID)
	}
	_, q := findSeeded(gs, questID)
	if q == nil || q.Status != "available" {
		return nil, errc(ReasonNoQuestAvailable, "quest %s not on offer", questID)
	}
	return q, nil
}

// Accept moves a seeded quest onto the active list.
func Accept(gs *state.GameState, questID string, rec *state.Recorder) (*state.Quest, *Error) {
	q, qerr := CheckAccept(gs, questID)
	if qerr != nil {
		return nil, qerr
	}
	q.Status = "active"
	q.CurrentStep = 1
	gs.Quests.Active = append(gs.Quests.Active, q)
	settlementID, _ := findSeeded(gs, q.ID)
	rec.Add("/quests/active/"+q.ID, q)
	rec.Set("/quests/allQuestsSeeded/"+settlementID+"/"+q.ID+"/status", "active")
	return q, nil
}

// AdvanceStep moves an active quest forward, optionally via a declared
// choice id. The final step leaves the quest ready_to_complete.
func AdvanceStep(gs *state.GameState, questID, choiceID string, rec *state.Recorder) (*state.Quest, *Error) {
	if questID == "" {
		return nil, errc(ReasonNoQuestID, "no quest id supplied")
	}
	_, q := findActive(gs, questID)
	if q == nil {
		return nil, errc(ReasonNotActive, "quest %s is not active", questID)
	}
	if q.CurrentStep >= q.TotalSteps {
		q.Status = "ready_to_complete"
		return q, nil
	}

	next := q.CurrentStep + 1
	if choiceID != "" {
		step := q.Steps[q.CurrentStep-1]
		for _, ch := range step.Choices {
			if ch.ID != choiceID {
				continue
			}
			for i, st := range q.Steps {
				if st.ID == ch.LeadsToStep {
					next = i + 1
					break
				}
			}
			break
		}
	}
	q.CurrentStep = next
	if q.CurrentStep >= q.TotalSteps {
		q.Status = "ready_to_complete"
	}
	rec.Set("/quests/active/"+q.ID+"/current_step", q.CurrentStep)
	return q, nil
}

// CheckComplete validates completion without mutating.
func CheckComplete(gs *state.GameState, questID, npcID string) (*state.Quest, *Error) {
	if questID == "" {
		return nil, errc(ReasonNoQuestID, "no quest id supplied")
	}
	_, q := findActive(gs, questID)
	if q == nil {
		return nil, errc(ReasonNotActive, "quest %s is not active", questID)
	}
	if q.CurrentStep < q.TotalSteps {
		return nil, errc(ReasonIncomplete, "quest %s is on step %d of %d", questID, q.CurrentStep, q.TotalSteps)
	}
	if npcID != "" && q.GiverNPCID != "" && npcID != q.GiverNPCID {
		return nil, errc(ReasonWrongGiver, "quest %s must be turned in to %s", questID, q.GiverNPCID)
	}
	return q, nil
}

// Complete turns in a finished quest: pays reward_gold into the
// inventory (merging with an existing gold item), moves the quest to the
// completed list, and decrements the giver's rank, floor-clamped at 0.
func Complete(gs *state.GameState, questID, npcID string, rec *state.Recorder) (*state.Quest, *Error) {
	q, qerr := CheckComplete(gs, questID, npcID)
	if qerr != nil {
		return nil, qerr
	}

	payGold(gs, q.RewardGold, rec)

	idx, _ := findActive(gs, questID)
	gs.Quests.Active = append(gs.Quests.Active[:idx], gs.Quests.Active[idx+1:]...)
	q.Status = "completed"
	gs.Quests.Completed = append(gs.Quests.Completed, q)
	rec.Del("/quests/active/" + q.ID)
	rec.Add("/quests/completed/"+q.ID, q)

	if giver := findNPC(gs, q.GiverNPCID); giver != nil && giver.QuestGiverRank > 0 {
		giver.QuestGiverRank--
		rec.Set("/npcs/"+giver.ID+"/quest_giver_rank", giver.QuestGiverRank)
	}
	return q, nil
}

func payGold(gs *state.GameState, amount int, rec *state.Recorder) {
	if amount <= 0 {
		return
	}
	for i := range gs.Player.Inventory {
		if strings.EqualFold(gs.Player.Inventory[i].Name, "gold") {
			gs.Player.Inventory[i].Quantity += amount
			rec.Set("/player/inventory", gs.Player.Inventory)
			return
		}
	}
	gs.Player.Inventory = append(gs.Player.Inventory, state.Item{
		ID:       "item_gold",
		Name:     "gold",
		Aliases:  []string{"coins", "coin"},
		Quantity: amount,
	})
	rec.Set("/player/inventory", gs.Player.Inventory)
}

func findNPC(gs *state.GameState, id string) *state.NPC {
	for _, settlement := range gs.World.Settlements {
		for _, npc := range settlement.NPCs {
			if npc.ID == id {
				return npc
			}
		}
	}
	return nil
}

// ValidateAction is the non-mutating validator the action pipeline
// delegates quest-kind actions to. Returns an empty string when valid.
func ValidateAction(gs *state.GameState, kind, questID, npcID string) string {
	switch kind {
	case "ask_about_quest":
		if npcID == "" {
			return ReasonNoNPCTarget
		}
		if !strings.Contains(npcID, "#npc_") {
			return ReasonBadNPCIDFormat
		}
		npc := findNPC(gs, npcID)
		if npc == nil {
			return ReasonNPCNotFound
		}
		if !npc.IsQuestGiver {
			return ReasonNotQuestGiver
		}
		if len(Available(gs, npc.SiteID)) == 0 {
			return ReasonNoQuestAvailable
		}
	case "accept_quest":
		if _, err := CheckAccept(gs, questID); err != nil {
			return err.Code
		}
	case "complete_quest":
		if _, err := CheckComplete(gs, questID, npcID); err != nil {
			return err.Code
		}
	}
	return ""
}
