// Package state defines the per-session game state tree, the ordered
// delta log describing its mutations, and the digests and fingerprints
// used for replay-equivalence checks. The tree is plain data; all
// behavior lives in the generators and the turn orchestrator.
package state

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"driftworld/internal/catalog"
)

// SchemaVersion feeds the stable fingerprint.
const SchemaVersion = "1"

// RulesetRev identifies the rule tables in play; part of the stable
// fingerprint so replays against different tables never compare equal.
const RulesetRev = "3c"

// Stream window defaults: cells within R are hydrated, within R+P known,
// outside R+P evicted.
const (
	DefaultStreamR = 2
	DefaultStreamP = 1
)

// L0 is always 8×8; L1 defaults to 12×12 per macro cell.
const (
	L0Width         = 8
	L0Height        = 8
	DefaultL1Width  = 12
	DefaultL1Height = 12
)

// Quest list limits.
const (
	MaxActiveQuests        = 10
	MaxQuestsPerSettlement = 5
)

// GameState is the complete mutable state of one session.
type GameState struct {
	SchemaVersion string         `json:"schema_version"`
	RNGSeed       uint32         `json:"rng_seed"`
	TurnCounter   uint64         `json:"turn_counter"`
	Player        Player         `json:"player"`
	World         World          `json:"world"`
	Quests        QuestLog       `json:"quests"`
	Counters      Counters       `json:"counters"`
	Fingerprint   Fingerprint    `json:"fingerprint"`
	Digests       Digests        `json:"digests"`
	History       []HistoryEntry `json:"history"`
	LedgerLen     uint64         `json:"ledger_len"`
}

// Player holds identity, stats, and the ordered inventory.
type Player struct {
	ID        string         `json:"id"`
	Aliases   []string       `json:"aliases"`
	Stats     map[string]int `json:"stats"` // stamina, clarity ∈ [0,100]
	Inventory []Item         `json:"inventory"`
}

// Item is one inventory or cell item.
type Item struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Aliases          []string  `json:"aliases"`
	Props            ItemProps `json:"props"`
	PropertyRevision int       `json:"property_revision"`
	Quantity         int       `json:"quantity,omitempty"` // Used for gold stacks
}

// ItemProps carry the slot and rarity used by the inventory digest.
type ItemProps struct {
	Slot   string `json:"slot"`
	Rarity string `json:"rarity"`
}

// Dims is a width×height pair.
type Dims struct {
	W int `json:"w"`
	H int `json:"h"`
}

// StreamParams is the hydration window: R is the hydration radius
// (inclusive), R+P the prefetch radius.
type StreamParams struct {
	R int `json:"r"`
	P int `json:"p"`
}

// Position is the player's coordinates, always clamped into bounds.
type Position struct {
	MX int `json:"mx"`
	MY int `json:"my"`
	LX int `json:"lx"`
	LY int `json:"ly"`
}

// World is the spatial model.
type World struct {
	TimeUTC      string                 `json:"time_utc"`
	L0           Dims                   `json:"l0"`
	Macro        map[string]*MacroCell  `json:"macro"`
	L1Default    Dims                   `json:"l1_default"`
	Stream       StreamParams           `json:"stream"`
	Position     Position               `json:"position"`
	Cells        map[string]*Cell       `json:"cells"`
	Sites        map[string]*Site       `json:"sites"`
	Settlements  map[string]*Settlement `json:"settlements"`
	L2Active     string                 `json:"l2_active,omitempty"`
	L2Pos        *CellRef               `json:"l2_pos,omitempty"`
	L3Active     string                 `json:"l3_active,omitempty"`
	CurrentLayer int                    `json:"current_layer"`
	MacroBiome   catalog.Biome          `json:"macro_biome,omitempty"`
	Prompt       string                 `json:"prompt,omitempty"` // Opening world prompt
}

// MacroCell is one L0 grid entry.
type MacroCell struct {
	ID       string         `json:"id"`
	MX       int            `json:"mx"`
	MY       int            `json:"my"`
	L1       Dims           `json:"l1"`
	Caps     map[string]int `json:"caps"` // city ≤ 1, metropolis = 0 by default
	Biome    catalog.Biome  `json:"biome"`
	SitePlan *SitePlan      `json:"site_plan,omitempty"`
}

// Cell is one L1 grid cell.
type Cell struct {
	ID          string   `json:"id"`
	MX          int      `json:"mx"`
	MY          int      `json:"my"`
	LX          int      `json:"lx"`
	LY          int      `json:"ly"`
	Type        string   `json:"type,omitempty"`
	Subtype     string   `json:"subtype,omitempty"`
	Description string   `json:"description,omitempty"`
	Known       bool     `json:"known"`
	Hydrated    bool     `json:"hydrated"`
	Tags        []string `json:"tags,omitempty"`
	IsCustom    bool     `json:"is_custom,omitempty"`
	Items       []Item   `json:"items,omitempty"`
}

// CellRef addresses a cell within an L1 grid.
type CellRef struct {
	LX int `json:"lx"`
	LY int `json:"ly"`
}

// SitePlan is the cached per-macro settlement placement. It is returned
// by value from the planner cache so callers can never mutate the cache.
type SitePlan struct {
	Target        int         `json:"target"`
	Placements    []Placement `json:"placements"`
	WarnShortfall bool        `json:"warn_shortfall,omitempty"`
}

// Placement is one planned cluster.
type Placement struct {
	ClusterID string                 `json:"cluster_id"`
	Tier      catalog.SettlementKind `json:"tier"`
	Center    CellRef                `json:"center"`
	Cells     []CellRef              `json:"cells"`
}

// Site is a revealed settlement placement.
type Site struct {
	ID        string                 `json:"id"`
	MX        int                    `json:"mx"`
	MY        int                    `json:"my"`
	ClusterID string                 `json:"cluster_id"`
	SegIndex  int                    `json:"seg_index"`
	Tier      catalog.SettlementKind `json:"tier"`
	Cells     []CellRef              `json:"cells"`
	Promoted  bool                   `json:"promoted"`
}

// Settlement is a generated L2 interior, persisted and reused by id.
type Settlement struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name"`
	Type       catalog.SettlementKind `json:"type"`
	Population int                    `json:"population"`
	Width      int                    `json:"width"`
	Height     int                    `json:"height"`
	Grid       []string               `json:"grid"` // Row-major cell kinds: "street", "open", "building:<id>"
	Buildings  []*Building            `json:"buildings"`
	NPCs       []*NPC                 `json:"npcs"`
	StreetNPCs map[string]CellRef     `json:"street_npcs,omitempty"` // NPC id → street cell
	Tier       int                    `json:"tier"`
}

// Building is one named L2 building with an optional L3 interior.
type Building struct {
	ID      string                  `json:"id"`
	Name    string                  `json:"name"`
	Purpose catalog.BuildingPurpose `json:"purpose"`
	X       int                     `json:"x"`
	Y       int                     `json:"y"`
	Rooms   []*Room                 `json:"rooms,omitempty"`
	NPCIDs  []string                `json:"npc_ids,omitempty"`
}

// Room is one L3 interior room; exits chain rooms bidirectionally.
type Room struct {
	ID     string            `json:"id"`
	Name   string            `json:"name"`
	Exits  map[string]string `json:"exits"`
	NPCIDs []string          `json:"npc_ids,omitempty"`
}

// NPC is one generated character.
type NPC struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	SiteID           string   `json:"site_id"`
	Age              int      `json:"age"`
	Gender           string   `json:"gender"`
	Tier             int      `json:"tier"`
	JobCategory      string   `json:"job_category"`
	HomeLocation     *string  `json:"home_location"` // site_id, "wanderer", or null
	FactionID        *string  `json:"faction_id"`
	WealthTier       int      `json:"wealth_tier"`
	PlayerReputation int      `json:"player_reputation"`
	Traits           []string `json:"traits"`
	CorruptionLevel  float64  `json:"corruption_level"`
	IsCriminal       bool     `json:"is_criminal"`
	Position         Position `json:"position"`
	State            string   `json:"state"`
	CreatedAtUTC     string   `json:"created_at_utc"`
	ExpiresAtUTC     string   `json:"expires_at_utc"`
	Schedule         *string  `json:"schedule"`
	IsQuestGiver     bool     `json:"is_quest_giver,omitempty"`
	QuestGiverRank   int      `json:"quest_giver_rank,omitempty"`
}

// QuestLog tracks quest state per session.
type QuestLog struct {
	Active          []*Quest            `json:"active"`
	Completed       []*Quest            `json:"completed"`
	AllQuestsSeeded map[string][]*Quest `json:"allQuestsSeeded"`
	Config          QuestConfig         `json:"config"`
}

// QuestConfig holds the quest list limits.
type QuestConfig struct {
	MaxActiveQuests        int `json:"maxActiveQuests"`
	MaxQuestsPerSettlement int `json:"maxQuestsPerSettlement"`
}

// Quest is a fully-constrained quest instance.
type Quest struct {
	ID                string       `json:"id"`
	Tier              int          `json:"tier"`
	Status            string       `json:"status"` // available, accepted, active, ready_to_complete, completed
	Difficulty        string       `json:"difficulty"`
	RewardGold        int          `json:"reward_gold"`
	RewardItems       int          `json:"reward_items"`
	EnemyTypes        []string     `json:"enemy_types"`
	EnemyCount        int          `json:"enemy_count"`
	Complexity        string       `json:"complexity"` // single, short, medium, dynamic
	TravelDistance    int          `json:"travel_distance"`
	ForbiddenKeywords []string     `json:"forbidden_keywords"`
	SettlementType    string       `json:"settlement_type"`
	Population        int          `json:"population"`
	Steps             []*QuestStep `json:"steps"`
	CurrentStep       int          `json:"current_step"`
	TotalSteps        int          `json:"total_steps"`
	GiverNPCID        string       `json:"giver_npc_id"`
	Protagonist       string       `json:"protagonist,omitempty"`
	Antagonist        string       `json:"antagonist,omitempty"`
	Narrative         string       `json:"narrative,omitempty"`
	ObjectiveDesc     string       `json:"objective_description,omitempty"`
	RewardDesc        string       `json:"reward_description,omitempty"`
	NarrativeHooks    []string     `json:"narrative_hooks,omitempty"`
	Complications     []string     `json:"complications,omitempty"`
	FailureConditions []string     `json:"failure_conditions,omitempty"`
	IsFallback        bool         `json:"is_fallback"`
}

// QuestStep is one step of a quest's structure.
type QuestStep struct {
	ID              string            `json:"id"`
	Narrative       string            `json:"narrative,omitempty"`
	Objective       string            `json:"objective,omitempty"`
	Choices         []*QuestChoice    `json:"choices,omitempty"`
	FailureTriggers []*FailureTrigger `json:"failure_triggers,omitempty"`
}

// QuestChoice leads from one step to a later one.
type QuestChoice struct {
	ID           string   `json:"id"`
	LeadsToStep  string   `json:"leads_to_step"`
	Consequences []string `json:"consequences,omitempty"`
}

// FailureTrigger describes one way a step can go wrong.
type FailureTrigger struct {
	Kind        string `json:"kind"`        // observability, innocence, destruction, moral_choice
	Consequence string `json:"consequence"` // permanent_failure, escalated_difficulty, redemption_available
}

// Counters are the monotonic revision counters.
type Counters struct {
	StateRev         uint64 `json:"state_rev"`
	CellRev          uint64 `json:"cell_rev"`
	SiteRev          uint64 `json:"site_rev"`
	InventoryRev     uint64 `json:"inventory_rev"`
	MerchantStateRev uint64 `json:"merchant_state_rev"`
	FactionRev       uint64 `json:"faction_rev"`
}

// Fingerprint carries the stable fields and the three digests.
type Fingerprint struct {
	SchemaVersion   string `json:"schema_version"`
	WorldSeed       uint32 `json:"world_seed"`
	RulesetRev      string `json:"ruleset_rev"`
	HexDigestStable string `json:"hex_digest_stable"`
	HexDigestState  string `json:"hex_digest_state"`
	HexDigest       string `json:"hex_digest"`
}

// Digests holds derived content digests.
type Digests struct {
	InventoryDigest string `json:"inventory_digest"`
}

// HistoryEntry is one appended turn summary.
type HistoryEntry struct {
	TurnID       string `json:"turn_id"`
	TimestampUTC string `json:"timestamp_utc"`
	Intent       string `json:"intent"`
	Summary      string `json:"summary"`
}

// New creates a fresh session state with the fixed 8×8 macro grid, the
// default stream window, and the player parked mid-grid.
func New(seed uint32, now time.Time) *GameState {
	gs := &GameState{
		SchemaVersion: SchemaVersion,
		RNGSeed:       seed,
		Player: Player{
			ID:      "player",
			Aliases: []string{"you", "me", "self"},
			Stats:   map[string]int{"stamina": 100, "clarity": 100},
		},
		World: World{
			TimeUTC:      now.UTC().Format(time.RFC3339),
			L0:           Dims{W: L0Width, H: L0Height},
			Macro:        make(map[string]*MacroCell),
			L1Default:    Dims{W: DefaultL1Width, H: DefaultL1Height},
			Stream:       StreamParams{R: DefaultStreamR, P: DefaultStreamP},
			Position:     Position{MX: 3, MY: 3, LX: 6, LY: 6},
			Cells:        make(map[string]*Cell),
			Sites:        make(map[string]*Site),
			Settlements:  make(map[string]*Settlement),
			CurrentLayer: 1,
		},
		Quests: QuestLog{
			Active:          []*Quest{},
			Completed:       []*Quest{},
			AllQuestsSeeded: make(map[string][]*Quest),
			Config: QuestConfig{
				MaxActiveQuests:        MaxActiveQuests,
				MaxQuestsPerSettlement: MaxQuestsPerSettlement,
			},
		},
		History: []HistoryEntry{},
	}
	gs.Fingerprint.SchemaVersion = SchemaVersion
	gs.Fingerprint.WorldSeed = seed
	gs.Fingerprint.RulesetRev = RulesetRev
	return gs
}

// MacroKey is the macro map key for (mx, my).
func MacroKey(mx, my int) string {
	return fmt.Sprintf("%d,%d", mx, my)
}

// Clone deep-copies the state via a JSON round-trip. The turn orchestrator
// mutates the clone and swaps it in atomically, so a failed turn never
// touches the stored state.
func (gs *GameState) Clone() (*GameState, error) {
	raw, err := json.Marshal(gs)
	if err != nil {
		return nil, fmt.Errorf("clone marshal: %w", err)
	}
	out := &GameState{}
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("clone unmarshal: %w", err)
	}
	return out, nil
}

// FindItem returns the inventory index of the first item whose name or
// alias matches case-insensitively, or -1.
func (p *Player) FindItem(name string) int {
	for i, it := range p.Inventory {
		if strings.EqualFold(it.Name, name) {
			return i
		}
		for _, a := range it.Aliases {
			if strings.EqualFold(a, name) {
				return i
			}
		}
	}
	return -1
}
