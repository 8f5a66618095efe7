package worldgen

import (
	"sort"
	"strconv"
	"strings"

	"driftworld/internal/catalog"
	"driftworld/internal/rng"
	"driftworld/internal/state"
)

// Found-item table for sparse cell loot. Indexed by a keyed roll, so the
// same cell always offers the same find.
var foundItems = []state.Item{
	{ID: "item_flint", Name: "worn flint", Aliases: []string{"flint"}, Props: state.ItemProps{Slot: "pack", Rarity: "common"}},
	{ID: "item_rope", Name: "coil of rope", Aliases: []string{"rope"}, Props: state.ItemProps{Slot: "pack", Rarity: "common"}},
	{ID: "item_knife", Name: "bone-handled knife", Aliases: []string{"knife"}, Props: state.ItemProps{Slot: "belt", Rarity: "common"}},
	{ID: "item_charm", Name: "tarnished charm", Aliases: []string{"charm", "trinket"}, Props: state.ItemProps{Slot: "neck", Rarity: "uncommon"}},
	{ID: "item_waterskin", Name: "patched waterskin", Aliases: []string{"waterskin", "skin"}, Props: state.ItemProps{Slot: "pack", Rarity: "common"}},
	{ID: "item_lantern", Name: "dented lantern", Aliases: []string{"lantern"}, Props: state.ItemProps{Slot: "hand", Rarity: "uncommon"}},
}

const lootChance = 0.08

// backfill assigns terrain kinds to hydrated typeless cells and
// synthesizes descriptions for cells that lack one. Custom cells are
// never overwritten. Iteration is key-sorted so the delta order is
// deterministic.
func (g *Generator) backfill(gs *state.GameState, rec *state.Recorder) {
	keys := make([]string, 0, len(gs.World.Cells))
	for k := range gs.World.Cells {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		cell := gs.World.Cells[key]
		if !cell.Hydrated || cell.IsCustom {
			continue
		}
		biome := g.biomeFor(gs, cell.MX, cell.MY)
		mutated := false

		if cell.Type == "" {
			palette := catalog.BiomePalettes[biome]
			idx := rng.RndInt(gs.RNGSeed, cellParts("terrain", cell), 0, len(palette)-1)
			cell.Type = palette[idx].Type
			cell.Subtype = palette[idx].Subtype
			if cell.Type == "ruin" {
				cell.Tags = appendTag(cell.Tags, "poi")
			}
			mutated = true
		}

		if !hasTag(cell.Tags, "loot_rolled") {
			cell.Tags = appendTag(cell.Tags, "loot_rolled")
			s := rng.Keyed(gs.RNGSeed, cellParts("loot", cell)...)
			if s.Float() < lootChance {
				item := foundItems[rng.IntFrom(s, 0, len(foundItems)-1)]
				item.ID = item.ID + "@" + key
				cell.Items = append(cell.Items, item)
			}
			mutated = true
		}

		if cell.Description == "" && cell.Type != "" {
			templates := catalog.BiomeTemplates[biome]
			idx := rng.RndInt(gs.RNGSeed, cellParts("desc", cell), 0, len(templates)-1)
			cell.Description = g.expandTemplate(templates[idx], gs.RNGSeed, cell)
			mutated = true
		}

		if mutated {
			rec.Set("/world/cells/"+key, cell)
		}
	}
}

func cellParts(tag string, c *state.Cell) []string {
	return []string{tag,
		strconv.Itoa(c.MX), strconv.Itoa(c.MY),
		strconv.Itoa(c.LX), strconv.Itoa(c.LY)}
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// expandTemplate fills ${type}, ${subtype}, and ${relief} placeholders.
// Relief comes from a simplex field over global L1 coordinates, banded
// into adjectives.
func (g *Generator) expandTemplate(tmpl string, seed uint32, cell *state.Cell) string {
	relief := g.reliefWord(seed, cell)
	out := strings.ReplaceAll(tmpl, "${type}", cell.Type)
	out = strings.ReplaceAll(out, "${subtype}", cell.Subtype)
	out = strings.ReplaceAll(out, "${relief}", relief)
	return out
}

func (g *Generator) reliefWord(seed uint32, cell *state.Cell) string {
	x := float64(cell.MX*state.DefaultL1Width + cell.LX)
	y := float64(cell.MY*state.DefaultL1Height + cell.LY)
	v := g.noise(seed).Eval2(x*0.08, y*0.08)
	band := int(v * float64(len(catalog.ReliefWords)))
	if band >= len(catalog.ReliefWords) {
		band = len(catalog.ReliefWords) - 1
	}
	if band < 0 {
		band = 0
	}
	return catalog.ReliefWords[band]
}
