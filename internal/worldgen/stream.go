package worldgen

import (
	"sort"

	"driftworld/internal/catalog"
	"driftworld/internal/state"
)

// Step runs one world-generation pass for the player's current position:
// hydrate the streaming window, evict cells that fell out of it, reveal
// sites whose centers became hydrated, then backfill terrain and
// descriptions. Idempotent: with no movement a second pass emits nothing.
func (g *Generator) Step(gs *state.GameState, rec *state.Recorder) {
	w := &gs.World
	clampPosition(w)

	pos := w.Position
	macro := w.Macro[state.MacroKey(pos.MX, pos.MY)]
	dims := w.L1Default
	if macro != nil {
		dims = macro.L1
	}
	outer := w.Stream.R + w.Stream.P

	changed := false
	for dy := -outer; dy <= outer; dy++ {
		for dx := -outer; dx <= outer; dx++ {
			lx, ly := pos.LX+dx, pos.LY+dy
			if lx < 0 || lx >= dims.W || ly < 0 || ly >= dims.H {
				continue
			}
			dist := state.Chebyshev(lx, ly, pos.LX, pos.LY)
			hydrated := dist <= w.Stream.R
			key := state.CellKey(pos.MX, pos.MY, lx, ly)
			path := "/world/cells/" + key

			cell, ok := w.Cells[key]
			if !ok {
				cell = &state.Cell{
					ID: key, MX: pos.MX, MY: pos.MY, LX: lx, LY: ly,
					Known: true, Hydrated: hydrated,
				}
				w.Cells[key] = cell
				rec.Add(path, cell)
				changed = true
				continue
			}
			mutated := false
			if !cell.Known {
				cell.Known = true
				mutated = true
			}
			if cell.Hydrated != hydrated {
				cell.Hydrated = hydrated
				mutated = true
			}
			if mutated {
				rec.Set(path, cell)
				changed = true
			}
		}
	}

	// Evict everything in the current macro beyond the prefetch radius.
	// Key-sorted so the delta order is deterministic.
	keys := make([]string, 0, len(w.Cells))
	for key := range w.Cells {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		cell := w.Cells[key]
		if cell.MX != pos.MX || cell.MY != pos.MY {
			continue
		}
		if state.Chebyshev(cell.LX, cell.LY, pos.LX, pos.LY) > outer {
			delete(w.Cells, key)
			rec.Del("/world/cells/" + key)
			changed = true
		}
	}

	if changed {
		gs.Counters.CellRev++
	}

	g.revealSites(gs, rec)
	g.backfill(gs, rec)
}

// revealSites promotes planned clusters whose center cell is currently
// hydrated into the sites mapping. Sites never unreveal.
func (g *Generator) revealSites(gs *state.GameState, rec *state.Recorder) {
	pos := gs.World.Position
	plan := g.PlanFor(gs, pos.MX, pos.MY)

	for i, pl := range plan.Placements {
		siteID := "site_" + pl.ClusterID
		if _, known := gs.World.Sites[siteID]; known {
			continue
		}
		centerKey := state.CellKey(pos.MX, pos.MY, pl.Center.LX, pl.Center.LY)
		cell := gs.World.Cells[centerKey]
		if cell == nil || !cell.Hydrated {
			continue
		}
		site := &state.Site{
			ID:        siteID,
			MX:        pos.MX,
			MY:        pos.MY,
			ClusterID: pl.ClusterID,
			SegIndex:  i,
			Tier:      pl.Tier,
			Cells:     append([]state.CellRef(nil), pl.Cells...),
			Promoted:  false,
		}
		gs.World.Sites[siteID] = site
		rec.Add("/world/sites/"+siteID, site)
		gs.Counters.SiteRev++

		// Tag covered cells so validation and the scene payload can see
		// the settlement from L1.
		for _, ref := range pl.Cells {
			if c := gs.World.Cells[state.CellKey(pos.MX, pos.MY, ref.LX, ref.LY)]; c != nil {
				c.Tags = appendTag(c.Tags, "site:"+siteID)
			}
		}
	}
}

func appendTag(tags []string, tag string) []string {
	for _, t := range tags {
		if t == tag {
			return tags
		}
	}
	return append(tags, tag)
}

// Move applies one canonical-direction step and re-runs the streaming
// pass. Crossing an L1 edge moves into the adjacent macro cell; stepping
// off the L0 grid silently no-ops (WORLD_WRAP is off). Vertical
// directions are layer transitions and do not move the L1 position.
func (g *Generator) Move(gs *state.GameState, dir string, rec *state.Recorder) {
	w := &gs.World
	pos := w.Position

	switch dir {
	case "north":
		pos.LY--
	case "south":
		pos.LY++
	case "west":
		pos.LX--
	case "east":
		pos.LX++
	case "up", "down":
		return
	default:
		return
	}

	dims := w.L1Default
	if macro := w.Macro[state.MacroKey(pos.MX, pos.MY)]; macro != nil {
		dims = macro.L1
	}

	// Edge crossing into the neighboring macro cell.
	switch {
	case pos.LX < 0:
		pos.MX--
		pos.LX = dims.W - 1
	case pos.LX >= dims.W:
		pos.MX++
		pos.LX = 0
	case pos.LY < 0:
		pos.MY--
		pos.LY = dims.H - 1
	case pos.LY >= dims.H:
		pos.MY++
		pos.LY = 0
	}

	if pos.MX < 0 || pos.MX >= w.L0.W || pos.MY < 0 || pos.MY >= w.L0.H {
		return // Off the macro grid: no-op
	}

	w.Position = pos
	rec.Set("/world/position", pos)
	g.Step(gs, rec)
}

func clampPosition(w *state.World) {
	p := &w.Position
	p.MX = clamp(p.MX, 0, w.L0.W-1)
	p.MY = clamp(p.MY, 0, w.L0.H-1)
	dims := w.L1Default
	if macro := w.Macro[state.MacroKey(p.MX, p.MY)]; macro != nil {
		dims = macro.L1
	}
	p.LX = clamp(p.LX, 0, dims.W-1)
	p.LY = clamp(p.LY, 0, dims.H-1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SiteAt returns the revealed site covering the player's current cell,
// if any.
func SiteAt(gs *state.GameState) *state.Site {
	pos := gs.World.Position
	for _, site := range gs.World.Sites {
		if site.MX != pos.MX || site.MY != pos.MY {
			continue
		}
		for _, ref := range site.Cells {
			if ref.LX == pos.LX && ref.LY == pos.LY {
				return site
			}
		}
	}
	return nil
}

// CurrentCell returns the player's cell, creating nothing.
func CurrentCell(gs *state.GameState) *state.Cell {
	pos := gs.World.Position
	return gs.World.Cells[state.CellKey(pos.MX, pos.MY, pos.LX, pos.LY)]
}

// biomeFor returns the macro's biome, falling back to the world biome.
func (g *Generator) biomeFor(gs *state.GameState, mx, my int) catalog.Biome {
	if macro := gs.World.Macro[state.MacroKey(mx, my)]; macro != nil && macro.Biome != "" {
		return macro.Biome
	}
	if gs.World.MacroBiome != "" {
		return gs.World.MacroBiome
	}
	return catalog.BiomeRural
}
