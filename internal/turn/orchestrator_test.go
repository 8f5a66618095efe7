package turn

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"driftworld/internal/action"
	"driftworld/internal/catalog"
	"driftworld/internal/llm"
	"driftworld/internal/npc"
	"driftworld/internal/quest"
	"driftworld/internal/rng"
	"driftworld/internal/state"
	"driftworld/internal/worldgen"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

const openingPrompt = "A windy coast of pine islands."

func newOrchestrator(t testing.TB) *Orchestrator {
	t.Helper()
	cat, err := catalog.Load()
	require.NoError(t, err)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	gen := worldgen.New(cat, npc.NewGenerator(cat))
	return New(log, gen, llm.NewParser(nil, log), quest.NewEngine(log, nil))
}

func firstTurn(t *testing.T, o *Orchestrator, prompt string) *state.GameState {
	t.Helper()
	gs := state.New(1, testNow)
	out, err := o.Run(context.Background(), gs, Input{
		SessionID: "sess1", Text: prompt, TurnID: "t0", Timestamp: testNow,
	})
	require.NoError(t, err)
	require.True(t, out.Valid)
	return out.State
}

func TestFirstTurnSeedsWorld(t *testing.T) {
	o := newOrchestrator(t)
	gs := state.New(1, testNow)

	out, err := o.Run(context.Background(), gs, Input{
		SessionID: "sess1", Text: openingPrompt, TurnID: "t0", Timestamp: testNow,
	})
	require.NoError(t, err)
	require.True(t, out.Valid)

	next := out.State
	require.Equal(t, rng.HashSeed(openingPrompt), next.RNGSeed)
	require.Equal(t, catalog.BiomeCoast, next.World.MacroBiome)
	require.Len(t, next.World.Macro, 64)
	require.Equal(t, uint64(1), next.TurnCounter)
	require.Equal(t, "look", out.Intent.Primary.Verb)
	require.Len(t, next.History, 1)
	require.NotEmpty(t, next.Fingerprint.HexDigestStable)

	// The opening turn never touches the caller's snapshot.
	require.Equal(t, uint64(0), gs.TurnCounter)
	require.Empty(t, gs.World.Macro)

	require.True(t, strings.HasPrefix(out.Blocks[0], "[STATE-DELTA 1/2]\n"))
	require.True(t, strings.HasPrefix(out.Blocks[1], "[STATE-DELTA 2/2]\n"))
	require.NotEmpty(t, out.Deltas)

	require.Equal(t, "D4", out.Facts.L0ID)
	require.Equal(t, next.World.Position, out.Facts.Position)
	require.NotEmpty(t, out.Facts.Clusters)
	for _, c := range out.Facts.Clusters {
		require.NotEmpty(t, c.ClusterID)
		require.NotEmpty(t, c.Tier)
	}

	require.Equal(t, 1, out.Scene.Layer)
	require.NotEmpty(t, out.Scene.Description)
}

func TestFirstTurnDeterministicAcrossSessions(t *testing.T) {
	o := newOrchestrator(t)
	in := Input{Text: openingPrompt, TurnID: "t0", Timestamp: testNow}

	a, err := o.Run(context.Background(), state.New(1, testNow), in)
	require.NoError(t, err)
	b, err := o.Run(context.Background(), state.New(2, testNow), in)
	require.NoError(t, err)

	require.Equal(t, a.State.RNGSeed, b.State.RNGSeed)
	require.Equal(t, a.State.Fingerprint, b.State.Fingerprint)
	require.Equal(t, a.Blocks, b.Blocks)
	require.Equal(t, a.Facts, b.Facts)
}

func TestDropRemovesInventoryItem(t *testing.T) {
	o := newOrchestrator(t)
	gs := firstTurn(t, o, openingPrompt)
	gs.Player.Inventory = []state.Item{
		{ID: "i1", Name: "rusty dagger", Aliases: []string{"dagger"}},
	}
	before := gs.Counters.InventoryRev

	out, err := o.Run(context.Background(), gs, Input{
		SessionID: "sess1", Text: "drop the dagger", TurnID: "t1", Timestamp: testNow.Add(time.Minute),
	})
	require.NoError(t, err)
	require.True(t, out.Valid)
	require.Equal(t, "fallback", out.Intent.Source)

	next := out.State
	require.Empty(t, next.Player.Inventory)
	require.Equal(t, before+1, next.Counters.InventoryRev)
	require.Contains(t, out.Events, "You drop the rusty dagger.")

	var sawInventory, sawRev bool
	for _, d := range out.Deltas {
		switch {
		case d.Op == "set" && d.Path == "/player/inventory":
			sawInventory = true
		case d.Op == "inc" && d.Path == "/counters/inventory_rev":
			sawRev = true
		}
	}
	require.True(t, sawInventory)
	require.True(t, sawRev)

	// The pre-turn snapshot keeps the item.
	require.Len(t, gs.Player.Inventory, 1)
}

func TestMoveShiftsPosition(t *testing.T) {
	o := newOrchestrator(t)
	gs := firstTurn(t, o, openingPrompt)
	start := gs.World.Position

	out, err := o.Run(context.Background(), gs, Input{
		SessionID: "sess1", Text: "go north", TurnID: "t1", Timestamp: testNow.Add(time.Minute),
	})
	require.NoError(t, err)
	require.True(t, out.Valid)

	pos := out.State.World.Position
	require.Equal(t, start.LY-1, pos.LY)
	require.Equal(t, start.LX, pos.LX)
	require.Contains(t, out.Events, "You head north.")

	// The window followed the player.
	for _, c := range out.State.World.Cells {
		require.LessOrEqual(t, state.Chebyshev(c.LX, c.LY, pos.LX, pos.LY), 3)
	}
}

func TestInvalidTurnLeavesStateUnapplied(t *testing.T) {
	o := newOrchestrator(t)
	gs := firstTurn(t, o, openingPrompt)

	out, err := o.Run(context.Background(), gs, Input{
		SessionID: "sess1", Text: "drop the crown", TurnID: "t1", Timestamp: testNow.Add(time.Minute),
	})
	require.NoError(t, err)
	require.False(t, out.Valid)
	require.Equal(t, action.ReasonNotInInventory, out.Reason)
	require.Equal(t, gs.TurnCounter, out.State.TurnCounter)
	require.Empty(t, out.Deltas)
}

func TestUnparsedTextIsNoopTurn(t *testing.T) {
	o := newOrchestrator(t)
	gs := firstTurn(t, o, openingPrompt)

	out, err := o.Run(context.Background(), gs, Input{
		SessionID: "sess1", Text: "ponder the meaning of moss", TurnID: "t1", Timestamp: testNow.Add(time.Minute),
	})
	require.NoError(t, err)
	require.True(t, out.Valid)
	require.Equal(t, "noop", out.Intent.Source)
	require.Equal(t, gs.TurnCounter+1, out.State.TurnCounter)
}

func TestEnterSettlementSeedsQuests(t *testing.T) {
	o := newOrchestrator(t)
	gs := firstTurn(t, o, openingPrompt)

	pos := gs.World.Position
	site := &state.Site{
		ID: "site_test_0", MX: pos.MX, MY: pos.MY, ClusterID: "test_0",
		Tier:  catalog.KindCity,
		Cells: []state.CellRef{{LX: pos.LX, LY: pos.LY}},
	}
	gs.World.Sites[site.ID] = site

	rec := &state.Recorder{}
	out := &Output{State: gs}
	o.applyEnter(context.Background(), gs, action.Action{Kind: action.KindEnter, Verb: "enter"}, testNow, rec, out)

	require.Equal(t, 2, gs.World.CurrentLayer)
	settlement := gs.World.Settlements[site.ID]
	require.NotNil(t, settlement)
	require.Contains(t, out.Events, "You enter "+settlement.Name+".")
	require.Contains(t, gs.Quests.AllQuestsSeeded, site.ID)

	// Re-entering after leaving must not reseed the board.
	board := gs.Quests.AllQuestsSeeded[site.ID]
	o.applyEnter(context.Background(), gs, action.Action{Kind: action.KindEnter, Verb: "leave"}, testNow, rec, out)
	require.Equal(t, 1, gs.World.CurrentLayer)
	o.applyEnter(context.Background(), gs, action.Action{Kind: action.KindEnter, Verb: "enter"}, testNow, rec, out)
	require.Equal(t, board, gs.Quests.AllQuestsSeeded[site.ID])
}

func TestResolveBuilding(t *testing.T) {
	settlement := &state.Settlement{
		Buildings: []*state.Building{
			{ID: "s_bldg_0", Name: "the Drowned Rat", Purpose: catalog.PurposeTavern},
			{ID: "s_bldg_1", Name: "the Copper Scale", Purpose: catalog.PurposeShop},
		},
	}
	require.Equal(t, "s_bldg_0", resolveBuilding(settlement, "The Drowned Rat"))
	require.Equal(t, "s_bldg_1", resolveBuilding(settlement, "s_bldg_1"))
	require.Equal(t, "s_bldg_0", resolveBuilding(settlement, "the tavern"))
	require.Equal(t, "s_bldg_1", resolveBuilding(settlement, "that shop"))
	require.Empty(t, resolveBuilding(settlement, "the temple"))
}

func TestSeedFromPrompt(t *testing.T) {
	require.Equal(t, rng.HashSeed("hello"), seedFromPrompt("hello", 9))
	require.Equal(t, uint32(9), seedFromPrompt("   ", 9))
}

func TestIsTrader(t *testing.T) {
	require.True(t, isTrader("Merchant"))
	require.True(t, isTrader("spice trader"))
	require.True(t, isTrader("peddler"))
	require.False(t, isTrader("blacksmith"))
}

func TestSceneInsideSettlementListsStreetNPCs(t *testing.T) {
	o := newOrchestrator(t)
	gs := state.New(1, testNow)
	gs.World.CurrentLayer = 2
	gs.World.L2Active = "site_x"
	gs.World.Settlements["site_x"] = &state.Settlement{
		ID: "site_x", Name: "Ironford", Type: catalog.KindTown,
		NPCs: []*state.NPC{
			{ID: "site_x#npc_2", Name: "Edwin Cray"},
			{ID: "site_x#npc_1", Name: "Mara Holt"},
		},
		StreetNPCs: map[string]state.CellRef{
			"site_x#npc_2": {LX: 1, LY: 1},
			"site_x#npc_1": {LX: 2, LY: 2},
		},
	}

	scene := o.scene(gs, nil)
	require.Equal(t, "Ironford", scene.SettlementName)
	// Sorted by id for a stable listing.
	require.Equal(t, []string{"Mara Holt", "Edwin Cray"}, scene.NPCs)
}
