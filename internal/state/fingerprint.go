package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// InventoryDigest hashes the inventory projection: one line per item
// "{id}|{name}|{slot}|{rarity}|{property_revision}", sorted
// lexicographically and joined by newline.
func InventoryDigest(items []Item) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("%s|%s|%s|%s|%d",
			it.ID, it.Name, it.Props.Slot, it.Props.Rarity, it.PropertyRevision))
	}
	sort.Strings(lines)
	sum := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(sum[:])
}

// StableDigest covers the fields that never change within a session.
func StableDigest(schemaVersion string, worldSeed uint32, rulesetRev string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%s", schemaVersion, worldSeed, rulesetRev)))
	return hex.EncodeToString(sum[:])
}

// stateProjection is the deterministic subset of state the full-state
// digest covers. encoding/json emits map keys in sorted order, so the
// serialization is canonical.
type stateProjection struct {
	SchemaVersion string   `json:"schema_version"`
	RNGSeed       uint32   `json:"rng_seed"`
	TurnCounter   uint64   `json:"turn_counter"`
	Player        Player   `json:"player"`
	World         World    `json:"world"`
	Counters      Counters `json:"counters"`
	Digests       Digests  `json:"digests"`
	HistoryLen    int      `json:"history_len"`
	LedgerLen     uint64   `json:"ledger_len"`
}

// StateDigest hashes the deterministic JSON projection of observable
// substate. It changes iff any covered field changes.
func StateDigest(gs *GameState) (string, error) {
	proj := stateProjection{
		SchemaVersion: gs.SchemaVersion,
		RNGSeed:       gs.RNGSeed,
		TurnCounter:   gs.TurnCounter,
		Player:        gs.Player,
		World:         gs.World,
		Counters:      gs.Counters,
		Digests:       gs.Digests,
		HistoryLen:    len(gs.History),
		LedgerLen:     gs.LedgerLen,
	}
	raw, err := json.Marshal(proj)
	if err != nil {
		return "", fmt.Errorf("state projection: %w", err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// Refingerprint recomputes all three digests in place.
func (gs *GameState) Refingerprint() error {
	gs.Fingerprint.SchemaVersion = gs.SchemaVersion
	gs.Fingerprint.WorldSeed = gs.RNGSeed
	gs.Fingerprint.RulesetRev = RulesetRev
	gs.Fingerprint.HexDigestStable = StableDigest(gs.SchemaVersion, gs.RNGSeed, RulesetRev)
	stateHex, err := StateDigest(gs)
	if err != nil {
		return err
	}
	gs.Fingerprint.HexDigestState = stateHex
	gs.Fingerprint.HexDigest = stateHex
	return nil
}
