// Package turn runs one game turn end to end: clone, parse, validate,
// apply, digest, fingerprint, history, response assembly. All mutation
// happens on the clone; the caller swaps it in only when the turn
// succeeds, so a failed or abandoned turn leaves the session untouched.
package turn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"driftworld/internal/action"
	"driftworld/internal/llm"
	"driftworld/internal/quest"
	"driftworld/internal/rng"
	"driftworld/internal/state"
	"driftworld/internal/worldgen"
)

// merchantRegenEvery is the turn interval of the stock refill stub.
const merchantRegenEvery = 10

// Orchestrator wires the parser, world generator and quest engine into
// the per-turn pipeline. One orchestrator serves all sessions.
type Orchestrator struct {
	log    *slog.Logger
	gen    *worldgen.Generator
	parser *llm.Parser
	quests *quest.Engine
	seq    atomic.Uint64
}

// New creates a turn orchestrator.
func New(log *slog.Logger, gen *worldgen.Generator, parser *llm.Parser, quests *quest.Engine) *Orchestrator {
	return &Orchestrator{log: log, gen: gen, parser: parser, quests: quests}
}

// Input is one turn request.
type Input struct {
	SessionID string
	Text      string
	TurnID    string    // optional; generated when empty
	Timestamp time.Time // optional; clock when zero
}

// PostStateFacts is the machine-readable tail of a turn response.
type PostStateFacts struct {
	Position        state.Position     `json:"position"`
	L0ID            string             `json:"l0_id"`
	L1Dims          state.Dims         `json:"l1_dims"`
	Stream          state.StreamParams `json:"stream"`
	Clusters        []ClusterMeta      `json:"clusters"`
	InventoryDigest string             `json:"inventory_digest"`
}

// ClusterMeta is per-cluster visibility in the player's current macro.
type ClusterMeta struct {
	ClusterID string `json:"cluster_id"`
	SiteID    string `json:"site_id,omitempty"`
	Tier      string `json:"tier"`
	Revealed  bool   `json:"revealed"`
	Promoted  bool   `json:"promoted"`
}

// Output is the result of one applied turn.
type Output struct {
	State     *state.GameState `json:"-"`
	TurnID    string           `json:"turn_id"`
	Valid     bool             `json:"valid"`
	Reason    string           `json:"reason,omitempty"`
	Intent    *action.Intent   `json:"intent"`
	Deltas    []state.Delta    `json:"deltas"`
	Blocks    [2]string        `json:"blocks"`
	Facts     PostStateFacts   `json:"post_state_facts"`
	Scene     llm.Scene        `json:"scene"`
	Events    []string         `json:"events,omitempty"`
	QuestErrs []string         `json:"quest_errors,omitempty"`
}

// Run executes one turn against a snapshot of session state. The input
// state is never mutated; on success Output.State is the replacement.
func (o *Orchestrator) Run(ctx context.Context, gs *state.GameState, in Input) (*Output, error) {
	clone, err := gs.Clone()
	if err != nil {
		return nil, fmt.Errorf("clone state: %w", err)
	}

	now := in.Timestamp
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	turnID := in.TurnID
	if turnID == "" {
		turnID = fmt.Sprintf("t%d_%d_%d_%04d", now.UnixMilli(), os.Getpid(), o.seq.Add(1), rand.Intn(10000))
	}

	rec := &state.Recorder{}
	clone.World.TimeUTC = now.Format(time.RFC3339)
	rec.Set("/world/time_utc", clone.World.TimeUTC)

	out := &Output{State: clone, TurnID: turnID}

	intent := o.normalize(ctx, clone, in.Text)
	out.Intent = intent

	// Opening prompt on the first turn seeds the world.
	if clone.TurnCounter == 0 && len(clone.World.Macro) == 0 {
		clone.RNGSeed = seedFromPrompt(in.Text, clone.RNGSeed)
		rec.Set("/rng_seed", clone.RNGSeed)
		o.gen.InitL0(clone, in.Text, rec)
		intent = action.Noop(in.Text)
		intent.Primary.Verb = "look"
		out.Intent = intent
	}

	res := action.Validate(clone, intent, func(s *state.GameState, a action.Action) string {
		return quest.ValidateAction(s, a.QuestKind, a.QuestID, a.NPCID)
	})
	if !res.Valid {
		out.Reason = res.Reason
		return out, nil
	}
	out.Valid = true

	var flags changeFlags
	for _, a := range res.Queue {
		if a.Raw == "" {
			a.Raw = intent.Raw
		}
		o.apply(ctx, clone, a, now, rec, out, &flags)
	}

	clone.Digests.InventoryDigest = state.InventoryDigest(clone.Player.Inventory)

	clone.TurnCounter++
	if clone.TurnCounter%merchantRegenEvery == 0 {
		o.regenerateMerchants(clone, now, &flags)
	}

	if flags.inventory {
		clone.Counters.InventoryRev++
		rec.Inc("/counters/inventory_rev")
	}
	if flags.merchant {
		clone.Counters.MerchantStateRev++
		rec.Inc("/counters/merchant_state_rev")
	}
	if flags.faction {
		clone.Counters.FactionRev++
		rec.Inc("/counters/faction_rev")
	}
	clone.Counters.StateRev++

	if err := clone.Refingerprint(); err != nil {
		return nil, fmt.Errorf("fingerprint: %w", err)
	}

	entry := state.HistoryEntry{
		TurnID:       turnID,
		TimestampUTC: clone.World.TimeUTC,
		Intent:       intent.Source,
		Summary:      intent.Summary(),
	}
	clone.History = append(clone.History, entry)
	clone.LedgerLen += uint64(rec.Len())

	out.Deltas = rec.Deltas
	out.Blocks = renderBlocks(out.Deltas, entry, clone.Fingerprint)
	out.Facts = o.facts(clone)
	out.Scene = o.scene(clone, out.Events)
	return out, nil
}

type changeFlags struct {
	inventory bool
	merchant  bool
	faction   bool
}

// normalize runs the LLM parser and falls back to the regex grammar on
// any coded failure.
func (o *Orchestrator) normalize(ctx context.Context, gs *state.GameState, text string) *action.Intent {
	intent, err := o.parser.Parse(ctx, text, gameContext(gs))
	if err == nil {
		return intent
	}
	var perr *llm.ParseError
	if errors.As(err, &perr) && perr.Code != llm.ErrNoAPIKey {
		o.log.Debug("parser fallback", "code", perr.Code)
	}
	return action.Fallback(text)
}

// apply routes one validated action to its owning subsystem.
func (o *Orchestrator) apply(ctx context.Context, gs *state.GameState, a action.Action, now time.Time, rec *state.Recorder, out *Output, flags *changeFlags) {
	switch a.Kind {
	case action.KindMove:
		o.gen.Move(gs, a.Dir, rec)
		out.Events = append(out.Events, "You head "+a.Dir+".")

	case action.KindDrop:
		idx := action.FindOwned(&gs.Player, a.Target, a.Raw)
		if idx >= 0 {
			name := gs.Player.Inventory[idx].Name
			gs.Player.Inventory = append(gs.Player.Inventory[:idx], gs.Player.Inventory[idx+1:]...)
			rec.Set("/player/inventory", gs.Player.Inventory)
			flags.inventory = true
			out.Events = append(out.Events, "You drop the "+name+".")
		}

	case action.KindTake:
		out.Events = append(out.Events, "You reach for the "+a.Target+", but it stays where it is.")

	case action.KindExamine:
		out.Events = append(out.Events, "You look closely at the "+a.Target+".")

	case action.KindTalk:
		out.Events = append(out.Events, "You speak with "+a.Target+".")

	case action.KindEnter:
		o.applyEnter(ctx, gs, a, now, rec, out)

	case action.KindQuest:
		o.applyQuest(gs, a, rec, out, flags)

	case action.KindTrivial, action.KindShallow, action.KindUnknown:
		if a.Note != "" {
			out.Events = append(out.Events, a.Note)
		}
	}
}

func (o *Orchestrator) applyEnter(ctx context.Context, gs *state.GameState, a action.Action, now time.Time, rec *state.Recorder, out *Output) {
	leaving := a.Verb == "exit" || a.Verb == "leave"
	switch {
	case leaving && gs.World.CurrentLayer == 3:
		if err := o.gen.ExitL3(gs, rec); err == nil {
			out.Events = append(out.Events, "You step back out onto the street.")
		}
	case leaving && gs.World.CurrentLayer == 2:
		if err := o.gen.ExitL2(gs, rec); err == nil {
			out.Events = append(out.Events, "You leave and return to the open country.")
		}
	case gs.World.CurrentLayer == 1:
		settlement, created, err := o.gen.EnterL2FromL1(gs, now, rec)
		if err != nil {
			out.Events = append(out.Events, "There is nothing to enter here.")
			return
		}
		if created && settlement != nil {
			o.quests.SeedSettlement(ctx, gs, settlement, rec)
		}
		if settlement != nil {
			out.Events = append(out.Events, "You enter "+settlement.Name+".")
		} else {
			out.Events = append(out.Events, "You descend into the ruin.")
		}
	case gs.World.CurrentLayer == 2:
		settlement := gs.World.Settlements[gs.World.L2Active]
		if settlement == nil {
			return
		}
		buildingID := resolveBuilding(settlement, a.Target)
		if buildingID == "" {
			out.Events = append(out.Events, "You find no such door.")
			return
		}
		if b, err := o.gen.EnterL3FromL2(gs, buildingID, rec); err == nil {
			out.Events = append(out.Events, "You step inside "+b.Name+".")
		}
	}
}

func resolveBuilding(settlement *state.Settlement, target string) string {
	for _, b := range settlement.Buildings {
		if strings.EqualFold(b.Name, target) || strings.EqualFold(b.ID, target) {
			return b.ID
		}
	}
	// Loose match: "the tavern" should find the only tavern in town.
	lower := strings.ToLower(target)
	for _, b := range settlement.Buildings {
		if strings.Contains(lower, string(b.Purpose)) {
			return b.ID
		}
	}
	return ""
}

func (o *Orchestrator) applyQuest(gs *state.GameState, a action.Action, rec *state.Recorder, out *Output, flags *changeFlags) {
	switch a.QuestKind {
	case "accept_quest":
		q, qerr := quest.Accept(gs, a.QuestID, rec)
		if qerr != nil {
			out.QuestErrs = append(out.QuestErrs, qerr.Code)
			return
		}
		out.Events = append(out.Events, "You accept the quest: "+q.ObjectiveDesc)
	case "complete_quest":
		q, qerr := quest.Complete(gs, a.QuestID, a.NPCID, rec)
		if qerr != nil {
			out.QuestErrs = append(out.QuestErrs, qerr.Code)
			return
		}
		flags.inventory = true
		out.Events = append(out.Events, fmt.Sprintf("Quest complete. You are paid %d gold.", q.RewardGold))
	case "ask_about_quest":
		npcID := a.NPCID
		quests := quest.Available(gs, siteOf(gs, npcID))
		if len(quests) > 0 {
			out.Events = append(out.Events, "Work is on offer: "+quests[0].ObjectiveDesc)
		}
	}
}

func siteOf(gs *state.GameState, npcID string) string {
	if i := strings.Index(npcID, "#npc_"); i > 0 {
		return npcID[:i]
	}
	return ""
}

// regenerateMerchants is the periodic stock refill. Expiry is computed
// for diagnostics but expired traders are not yet culled.
func (o *Orchestrator) regenerateMerchants(gs *state.GameState, now time.Time, flags *changeFlags) {
	for _, settlement := range gs.World.Settlements {
		for _, npc := range settlement.NPCs {
			if !isTrader(npc.JobCategory) {
				continue
			}
			isExpired := false
			if t, err := time.Parse(time.RFC3339, npc.ExpiresAtUTC); err == nil {
				isExpired = now.After(t)
			}
			o.log.Debug("merchant stock refilled", "npc", npc.ID, "expired", isExpired)
			flags.merchant = true
		}
	}
}

func isTrader(job string) bool {
	j := strings.ToLower(job)
	return strings.Contains(j, "merchant") || strings.Contains(j, "trader") || strings.Contains(j, "peddler")
}

func seedFromPrompt(prompt string, fallback uint32) uint32 {
	if strings.TrimSpace(prompt) == "" {
		return fallback
	}
	return rng.HashSeed(prompt)
}

// renderBlocks assembles the two-block wire response: world deltas first,
// then history and fingerprints.
func renderBlocks(deltas []state.Delta, entry state.HistoryEntry, fp state.Fingerprint) [2]string {
	first, _ := json.Marshal(deltas)
	second, _ := json.Marshal(map[string]any{
		"history":     entry,
		"fingerprint": fp,
	})
	return [2]string{
		"[STATE-DELTA 1/2]\n" + string(first),
		"[STATE-DELTA 2/2]\n" + string(second),
	}
}

func (o *Orchestrator) facts(gs *state.GameState) PostStateFacts {
	pos := gs.World.Position
	facts := PostStateFacts{
		Position:        pos,
		L0ID:            state.L0ID(pos.MX, pos.MY),
		L1Dims:          gs.World.L1Default,
		Stream:          gs.World.Stream,
		InventoryDigest: gs.Digests.InventoryDigest,
	}
	if macro := gs.World.Macro[state.MacroKey(pos.MX, pos.MY)]; macro != nil && macro.SitePlan != nil {
		for _, p := range macro.SitePlan.Placements {
			meta := ClusterMeta{ClusterID: p.ClusterID, Tier: string(p.Tier)}
			if site, ok := gs.World.Sites["site_"+p.ClusterID]; ok {
				meta.SiteID = site.ID
				meta.Revealed = true
				meta.Promoted = site.Promoted
			}
			facts.Clusters = append(facts.Clusters, meta)
		}
	}
	return facts
}

// scene gathers the narration facts for the player's current location.
func (o *Orchestrator) scene(gs *state.GameState, events []string) llm.Scene {
	scene := llm.Scene{
		Biome:  string(gs.World.MacroBiome),
		Layer:  gs.World.CurrentLayer,
		Events: events,
	}
	switch gs.World.CurrentLayer {
	case 2, 3:
		if settlement := gs.World.Settlements[gs.World.L2Active]; settlement != nil {
			scene.SettlementName = settlement.Name
			scene.Description = fmt.Sprintf("The %s of %s.", settlement.Type, settlement.Name)
			ids := make([]string, 0, len(settlement.StreetNPCs))
			for id := range settlement.StreetNPCs {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				for _, npc := range settlement.NPCs {
					if npc.ID == id {
						scene.NPCs = append(scene.NPCs, npc.Name)
					}
				}
			}
		}
	default:
		if cell := worldgen.CurrentCell(gs); cell != nil {
			scene.Description = cell.Description
			for _, it := range cell.Items {
				scene.Items = append(scene.Items, it.Name)
			}
		}
	}
	return scene
}
