package worldgen

import (
	"fmt"
	"strconv"
	"time"

	"driftworld/internal/catalog"
	"driftworld/internal/rng"
	"driftworld/internal/state"
)

// Settlement interior generation: a size×size grid with a "+" of streets
// through the middle, named buildings scattered over the remaining cells,
// and the NPC pool split 70/30 between streets and buildings.

const buildingPlaceTries = 50

// settlementTiers orders the kinds for the numeric tier field.
var settlementTiers = map[catalog.SettlementKind]int{
	catalog.KindOutpost:    1,
	catalog.KindHamlet:     2,
	catalog.KindVillage:    3,
	catalog.KindTown:       4,
	catalog.KindCity:       5,
	catalog.KindMetropolis: 6,
}

// GenerateSettlement builds the L2 interior for a revealed site. The
// result is persisted in world.settlements and reused by id.
func (g *Generator) GenerateSettlement(gs *state.GameState, site *state.Site, now time.Time) *state.Settlement {
	kind := site.Tier
	spec, ok := catalog.SettlementSpecs[kind]
	if !ok {
		spec = catalog.SettlementSpecs[catalog.KindVillage]
	}
	size := spec.GridSize
	s := rng.Keyed(gs.RNGSeed, site.ID, "interior")

	grid := make([]string, size*size)
	for i := range grid {
		grid[i] = "open"
	}

	// Streets: a "+" through the middle. Insertion order is the row
	// west→east, then the column north→south (center skipped once); NPC
	// street slots round-robin in this order.
	mid := size / 2
	var streets []state.CellRef
	for x := 0; x < size; x++ {
		grid[mid*size+x] = "street"
		streets = append(streets, state.CellRef{LX: x, LY: mid})
	}
	for y := 0; y < size; y++ {
		if y == mid {
			continue
		}
		grid[y*size+mid] = "street"
		streets = append(streets, state.CellRef{LX: mid, LY: y})
	}

	// Buildings scattered uniformly over non-street cells, retry-bounded.
	buildings := make([]*state.Building, 0, spec.Buildings)
	for i := 0; i < spec.Buildings; i++ {
		purpose := pickPurpose(s, kind, i)
		placed := false
		for try := 0; try < buildingPlaceTries && !placed; try++ {
			x := rng.IntFrom(s, 0, size-1)
			y := rng.IntFrom(s, 0, size-1)
			if grid[y*size+x] != "open" {
				continue
			}
			id := fmt.Sprintf("%s_bldg_%d", site.ID, i)
			pool := catalog.BuildingNamePools[purpose]
			name := pool[rng.RndInt(gs.RNGSeed, []string{site.ID, "bname", strconv.Itoa(i)}, 0, len(pool)-1)]
			grid[y*size+x] = "building:" + id
			buildings = append(buildings, &state.Building{
				ID: id, Name: name, Purpose: purpose, X: x, Y: y,
			})
			placed = true
		}
	}

	// NPC pool, seeded from the world seed and site id.
	baseSeed := uint32(rng.IntFrom(rng.Keyed(gs.RNGSeed, site.ID, "npcbase"), 0, 1<<31-1))
	pool := g.npcs.GeneratePool(site.ID, catalog.NPCCountFor(kind), baseSeed, now)
	markQuestGivers(pool)

	// 70% to street slots in insertion order, the rest round-robin over
	// buildings.
	streetCount := len(pool) * 7 / 10
	streetNPCs := make(map[string]state.CellRef, streetCount)
	for i := 0; i < streetCount && len(streets) > 0; i++ {
		streetNPCs[pool[i].ID] = streets[i%len(streets)]
	}
	if len(buildings) > 0 {
		for i := streetCount; i < len(pool); i++ {
			b := buildings[(i-streetCount)%len(buildings)]
			b.NPCIDs = append(b.NPCIDs, pool[i].ID)
		}
	}

	return &state.Settlement{
		ID:         site.ID,
		Name:       settlementName(gs.RNGSeed, site.ID),
		Type:       kind,
		Population: rng.IntFrom(s, spec.PopMin, spec.PopMax),
		Width:      size,
		Height:     size,
		Grid:       grid,
		Buildings:  buildings,
		NPCs:       pool,
		StreetNPCs: streetNPCs,
		Tier:       settlementTiers[kind],
	}
}

// settlementName joins a seeded prefix and suffix.
func settlementName(seed uint32, settlementID string) string {
	s := rng.Keyed(seed, settlementID, "name")
	prefix := rng.Choice(s, catalog.NamePrefixes)
	suffix := rng.Choice(s, catalog.NameSuffixes)
	return prefix + suffix
}

// pickPurpose chooses a building purpose. The first two buildings of any
// settlement are a tavern and a shop so every interior has somewhere to
// trade and talk; larger kinds unlock civic buildings.
func pickPurpose(s rng.Stream, kind catalog.SettlementKind, index int) catalog.BuildingPurpose {
	switch index {
	case 0:
		return catalog.PurposeTavern
	case 1:
		return catalog.PurposeShop
	}
	choices := []rng.Weighted[catalog.BuildingPurpose]{
		{Item: catalog.PurposeHouse, Weight: 0.55},
		{Item: catalog.PurposeShop, Weight: 0.20},
		{Item: catalog.PurposeTavern, Weight: 0.10},
		{Item: catalog.PurposeTemple, Weight: 0.10},
	}
	if settlementTiers[kind] >= settlementTiers[catalog.KindTown] {
		choices = append(choices, rng.Weighted[catalog.BuildingPurpose]{Item: catalog.PurposeGuildhall, Weight: 0.08})
	}
	if settlementTiers[kind] >= settlementTiers[catalog.KindCity] {
		choices = append(choices, rng.Weighted[catalog.BuildingPurpose]{Item: catalog.PurposePalace, Weight: 0.03})
	}
	return rng.WeightedChoice(s, choices)
}

// markQuestGivers flags the first two adult NPCs in pool order as quest
// givers.
func markQuestGivers(pool []*state.NPC) {
	marked := 0
	for _, n := range pool {
		if marked >= 2 {
			return
		}
		if n.Age >= 18 {
			n.IsQuestGiver = true
			n.QuestGiverRank = 3
			marked++
		}
	}
}
