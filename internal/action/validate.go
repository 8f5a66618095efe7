package action

import (
	"strings"

	"driftworld/internal/state"
)

// Stable validation failure codes.
const (
	ReasonNoIntent         = "NO_INTENT"
	ReasonNoPrimaryAction  = "NO_PRIMARY_ACTION"
	ReasonEmptyAction      = "EMPTY_ACTION"
	ReasonInvalidDirection = "INVALID_DIRECTION"
	ReasonNotFoundInCell   = "TARGET_NOT_FOUND_IN_CELL"
	ReasonNotInInventory   = "TARGET_NOT_IN_INVENTORY"
	ReasonNotVisible       = "TARGET_NOT_VISIBLE"
	ReasonNPCNotPresent    = "NPC_NOT_PRESENT"
)

// Result is the outcome of validating an intent's queue. A failed
// validation carries a stable reason code and an empty queue; nothing
// has been applied either way.
type Result struct {
	Valid  bool     `json:"valid"`
	Reason string   `json:"reason,omitempty"`
	Queue  []Action `json:"queue,omitempty"`
	Notes  []string `json:"notes,omitempty"`
}

// QuestValidator checks a quest-kind action against the quest log
// without mutating it. A non-empty return is a stable reason code.
type QuestValidator func(gs *state.GameState, a Action) string

// Validate builds the action queue from the intent and checks every
// queued action against the current state. State is never mutated here.
func Validate(gs *state.GameState, in *Intent, quests QuestValidator) Result {
	if in == nil {
		return Result{Reason: ReasonNoIntent}
	}
	if in.Primary == nil {
		return Result{Reason: ReasonNoPrimaryAction}
	}

	queue := []Action{*in.Primary}
	if in.Compound {
		queue = append(queue, in.Secondary...)
	}

	res := Result{Valid: true, Queue: queue}
	for i := range queue {
		a := &res.Queue[i]
		if a.Verb == "" && a.Kind == "" {
			return Result{Reason: ReasonEmptyAction}
		}
		switch a.Kind {
		case KindMove:
			dir, ok := CanonicalDir(a.Dir)
			if !ok {
				return Result{Reason: ReasonInvalidDirection}
			}
			a.Dir = dir
		case KindTake:
			cell := currentCell(gs)
			if cell == nil {
				return Result{Reason: ReasonNotFoundInCell}
			}
			if _, ok := MatchCellItem(a.Target, cell.Items); !ok {
				return Result{Reason: ReasonNotFoundInCell}
			}
		case KindDrop:
			if FindOwned(&gs.Player, a.Target, in.Raw) < 0 {
				return Result{Reason: ReasonNotInInventory}
			}
		case KindExamine:
			if !visible(gs, a.Target, in.Raw) {
				return Result{Reason: ReasonNotVisible}
			}
		case KindTalk:
			if findPresentNPC(gs, a.Target) == nil {
				return Result{Reason: ReasonNPCNotPresent}
			}
		case KindQuest:
			if quests == nil {
				continue
			}
			if reason := quests(gs, *a); reason != "" {
				return Result{Reason: reason}
			}
		case KindShallow, KindUnknown:
			if a.Note != "" {
				res.Notes = append(res.Notes, a.Note)
			}
		case KindTrivial, KindEnter:
			// always allowed
		}
	}
	return res
}

func currentCell(gs *state.GameState) *state.Cell {
	pos := gs.World.Position
	key := state.CellKey(pos.MX, pos.MY, pos.LX, pos.LY)
	return gs.World.Cells[key]
}

// visible reports whether the target is a cell item, an inventory item,
// or a present NPC.
func visible(gs *state.GameState, target, raw string) bool {
	if cell := currentCell(gs); cell != nil {
		if _, ok := MatchCellItem(target, cell.Items); ok {
			return true
		}
	}
	if FindOwned(&gs.Player, target, raw) >= 0 {
		return true
	}
	return findPresentNPC(gs, target) != nil
}

// findPresentNPC resolves an NPC by case-insensitive name among those
// sharing the player's location on the current layer: street NPCs and
// building occupants of the active settlement on L2, the active
// building's occupants on L3, nobody on L0/L1.
func findPresentNPC(gs *state.GameState, name string) *state.NPC {
	for _, id := range presentNPCIDs(gs) {
		npc := lookupNPC(gs, id)
		if npc != nil && strings.EqualFold(npc.Name, name) {
			return npc
		}
	}
	return nil
}

func presentNPCIDs(gs *state.GameState) []string {
	w := &gs.World
	settlement := w.Settlements[w.L2Active]
	if settlement == nil {
		return nil
	}
	switch w.CurrentLayer {
	case 2:
		ids := make([]string, 0, len(settlement.StreetNPCs))
		for id := range settlement.StreetNPCs {
			ids = append(ids, id)
		}
		for _, b := range settlement.Buildings {
			ids = append(ids, b.NPCIDs...)
		}
		return ids
	case 3:
		for _, b := range settlement.Buildings {
			if b.ID == w.L3Active {
				return b.NPCIDs
			}
		}
	}
	return nil
}

func lookupNPC(gs *state.GameState, id string) *state.NPC {
	settlement := gs.World.Settlements[gs.World.L2Active]
	if settlement == nil {
		return nil
	}
	for _, npc := range settlement.NPCs {
		if npc.ID == id {
			return npc
		}
	}
	return nil
}
