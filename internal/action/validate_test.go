package action

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"driftworld/internal/state"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func baseState() *state.GameState {
	gs := state.New(1, testNow)
	pos := gs.World.Position
	key := state.CellKey(pos.MX, pos.MY, pos.LX, pos.LY)
	gs.World.Cells[key] = &state.Cell{
		ID: key, MX: pos.MX, MY: pos.MY, LX: pos.LX, LY: pos.LY,
		Known: true, Hydrated: true,
		Items: []state.Item{{ID: "i1", Name: "worn flint", Aliases: []string{"flint"}}},
	}
	gs.Player.Inventory = []state.Item{
		{ID: "i2", Name: "rusty dagger", Aliases: []string{"dagger"}},
	}
	return gs
}

func intentOf(a Action) *Intent {
	return &Intent{Primary: &a, Confidence: 1, Source: "llm"}
}

func TestValidateGuards(t *testing.T) {
	gs := baseState()

	res := Validate(gs, nil, nil)
	require.False(t, res.Valid)
	require.Equal(t, ReasonNoIntent, res.Reason)

	res = Validate(gs, &Intent{}, nil)
	require.Equal(t, ReasonNoPrimaryAction, res.Reason)

	res = Validate(gs, intentOf(Action{}), nil)
	require.Equal(t, ReasonEmptyAction, res.Reason)
}

func TestValidateMoveCanonicalizes(t *testing.T) {
	gs := baseState()

	res := Validate(gs, intentOf(Action{Kind: KindMove, Verb: "move", Dir: "n"}), nil)
	require.True(t, res.Valid)
	require.Equal(t, "north", res.Queue[0].Dir)

	res = Validate(gs, intentOf(Action{Kind: KindMove, Verb: "move", Dir: "nort"}), nil)
	require.False(t, res.Valid)
	require.Equal(t, ReasonInvalidDirection, res.Reason)
}

func TestValidateTakeAndDrop(t *testing.T) {
	gs := baseState()

	res := Validate(gs, intentOf(Action{Kind: KindTake, Verb: "take", Target: "flint"}), nil)
	require.True(t, res.Valid)

	res = Validate(gs, intentOf(Action{Kind: KindTake, Verb: "take", Target: "sword"}), nil)
	require.Equal(t, ReasonNotFoundInCell, res.Reason)

	res = Validate(gs, intentOf(Action{Kind: KindDrop, Verb: "drop", Target: "dagger"}), nil)
	require.True(t, res.Valid)

	res = Validate(gs, intentOf(Action{Kind: KindDrop, Verb: "drop", Target: "crown"}), nil)
	require.Equal(t, ReasonNotInInventory, res.Reason)
}

func TestValidateExamineVisibility(t *testing.T) {
	gs := baseState()

	// Cell item, inventory item, and nothing at all.
	require.True(t, Validate(gs, intentOf(Action{Kind: KindExamine, Verb: "examine", Target: "flint"}), nil).Valid)
	require.True(t, Validate(gs, intentOf(Action{Kind: KindExamine, Verb: "examine", Target: "dagger"}), nil).Valid)

	res := Validate(gs, intentOf(Action{Kind: KindExamine, Verb: "examine", Target: "ghost"}), nil)
	require.Equal(t, ReasonNotVisible, res.Reason)
}

func withSettlement(gs *state.GameState) {
	gs.World.CurrentLayer = 2
	gs.World.L2Active = "site_3x3_0"
	gs.World.Settlements["site_3x3_0"] = &state.Settlement{
		ID: "site_3x3_0",
		NPCs: []*state.NPC{
			{ID: "site_3x3_0#npc_1", Name: "Mara Holt"},
			{ID: "site_3x3_0#npc_2", Name: "Edwin Cray"},
		},
		StreetNPCs: map[string]state.CellRef{"site_3x3_0#npc_1": {LX: 2, LY: 2}},
		Buildings: []*state.Building{
			{ID: "site_3x3_0_bldg_0", NPCIDs: []string{"site_3x3_0#npc_2"}},
		},
	}
}

func TestValidateTalk(t *testing.T) {
	gs := baseState()

	// Nobody is present outside a settlement.
	res := Validate(gs, intentOf(Action{Kind: KindTalk, Verb: "talk", Target: "Mara Holt"}), nil)
	require.Equal(t, ReasonNPCNotPresent, res.Reason)

	withSettlement(gs)
	require.True(t, Validate(gs, intentOf(Action{Kind: KindTalk, Verb: "talk", Target: "mara holt"}), nil).Valid)
	require.True(t, Validate(gs, intentOf(Action{Kind: KindTalk, Verb: "talk", Target: "Edwin Cray"}), nil).Valid)

	// On L3 only the active building's occupants are present.
	gs.World.CurrentLayer = 3
	gs.World.L3Active = "site_3x3_0_bldg_0"
	require.True(t, Validate(gs, intentOf(Action{Kind: KindTalk, Verb: "talk", Target: "Edwin Cray"}), nil).Valid)
	res = Validate(gs, intentOf(Action{Kind: KindTalk, Verb: "talk", Target: "Mara Holt"}), nil)
	require.Equal(t, ReasonNPCNotPresent, res.Reason)
}

func TestValidateQuestDelegates(t *testing.T) {
	gs := baseState()
	quests := func(_ *state.GameState, a Action) string {
		if a.QuestID == "" {
			return "NO_QUEST_ID"
		}
		return ""
	}

	res := Validate(gs, intentOf(Action{Kind: KindQuest, Verb: "accept_quest", QuestKind: "accept_quest"}), quests)
	require.Equal(t, "NO_QUEST_ID", res.Reason)

	res = Validate(gs, intentOf(Action{Kind: KindQuest, Verb: "accept_quest", QuestKind: "accept_quest", QuestID: "quest_x_0"}), quests)
	require.True(t, res.Valid)

	// No validator wired: quest actions pass through.
	res = Validate(gs, intentOf(Action{Kind: KindQuest, Verb: "accept_quest", QuestKind: "accept_quest"}), nil)
	require.True(t, res.Valid)
}

func TestValidateCompoundQueue(t *testing.T) {
	gs := baseState()
	in := &Intent{
		Primary:   &Action{Kind: KindTake, Verb: "take", Target: "flint"},
		Secondary: []Action{{Kind: KindMove, Verb: "move", Dir: "e"}},
		Compound:  true,
	}
	res := Validate(gs, in, nil)
	require.True(t, res.Valid)
	require.Len(t, res.Queue, 2)
	require.Equal(t, "east", res.Queue[1].Dir)

	// Secondaries are ignored unless the intent is compound.
	in.Compound = false
	res = Validate(gs, in, nil)
	require.Len(t, res.Queue, 1)
}

func TestValidateShallowNote(t *testing.T) {
	gs := baseState()
	res := Validate(gs, intentOf(Classify("attack", "guard", "")), nil)
	require.True(t, res.Valid)
	require.Len(t, res.Notes, 1)
}
