package worldgen

import (
	"fmt"
	"strconv"

	"driftworld/internal/catalog"
	"driftworld/internal/rng"
	"driftworld/internal/state"
)

// Site planning places settlement clusters on one macro cell's L1 grid
// under spacing and capacity constraints. Plans are deterministic in
// (seed, mx, my), cached on the macro entry, and returned by value so the
// cache can never be mutated through a caller.

const (
	candidatesPerPlacement = 80
	townAttemptLimit       = 200
	growthAttemptLimit     = 200
)

// PlanFor returns the site plan for a macro cell, computing and caching
// it on first access.
func (g *Generator) PlanFor(gs *state.GameState, mx, my int) state.SitePlan {
	macro := gs.World.Macro[state.MacroKey(mx, my)]
	if macro == nil {
		return state.SitePlan{}
	}
	if macro.SitePlan == nil {
		plan := planSites(gs.RNGSeed, macro)
		macro.SitePlan = &plan
	}
	return copyPlan(macro.SitePlan)
}

func copyPlan(p *state.SitePlan) state.SitePlan {
	out := state.SitePlan{
		Target:        p.Target,
		WarnShortfall: p.WarnShortfall,
		Placements:    make([]state.Placement, len(p.Placements)),
	}
	for i, pl := range p.Placements {
		cp := pl
		cp.Cells = append([]state.CellRef(nil), pl.Cells...)
		out.Placements[i] = cp
	}
	return out
}

type planner struct {
	seed   uint32
	mx, my int
	w, h   int
	occ    []bool
	epoch  int // Bumped per candidate so every try draws a distinct stream
	plan   *state.SitePlan
}

func planSites(seed uint32, macro *state.MacroCell) state.SitePlan {
	w, h := macro.L1.W, macro.L1.H
	p := &planner{
		seed: seed,
		mx:   macro.MX,
		my:   macro.MY,
		w:    w,
		h:    h,
		occ:  make([]bool, w*h),
		plan: &state.SitePlan{},
	}
	p.plan.Target = rng.RndInt(seed, []string{"target", strconv.Itoa(macro.MX), strconv.Itoa(macro.MY)}, 7, 11)

	// Capacity-capped tiers first: metropolis (cap 0 by default), then
	// city (cap 1).
	for i := 0; i < macro.Caps["metropolis"]; i++ {
		p.place(catalog.KindMetropolis)
	}
	for i := 0; i < macro.Caps["city"]; i++ {
		p.place(catalog.KindCity)
	}

	// Towns until the target is met or the attempt budget runs out.
	for attempt := 0; len(p.plan.Placements) < p.plan.Target && attempt < townAttemptLimit; attempt++ {
		p.place(catalog.KindTown)
	}

	// Alternate hamlet/outpost, flipping each attempt.
	for attempt := 0; len(p.plan.Placements) < p.plan.Target && attempt < 2*w*h; attempt++ {
		tier := catalog.KindHamlet
		if attempt%2 == 1 {
			tier = catalog.KindOutpost
		}
		p.place(tier)
	}

	if len(p.plan.Placements) < p.plan.Target {
		p.plan.WarnShortfall = true
	}
	return *p.plan
}

// place tries up to 80 candidate centers for one cluster of the given
// tier. A candidate is valid when its cell is unoccupied and every placed
// cluster center keeps the Chebyshev spacing of the larger tier.
func (p *planner) place(tier catalog.SettlementKind) bool {
	for try := 0; try < candidatesPerPlacement; try++ {
		p.epoch++
		s := rng.Keyed(p.seed, "place",
			strconv.Itoa(p.mx), strconv.Itoa(p.my), string(tier), strconv.Itoa(p.epoch))
		lx := rng.IntFrom(s, 0, p.w-1)
		ly := rng.IntFrom(s, 0, p.h-1)

		if p.occ[ly*p.w+lx] || !p.spaced(lx, ly, tier) {
			continue
		}

		cells := p.grow(s, lx, ly, catalog.SiteFootprint[tier])
		n := len(p.plan.Placements)
		p.plan.Placements = append(p.plan.Placements, state.Placement{
			ClusterID: fmt.Sprintf("%dx%d_%d", p.mx, p.my, n),
			Tier:      tier,
			Center:    state.CellRef{LX: lx, LY: ly},
			Cells:     cells,
		})
		return true
	}
	return false
}

func (p *planner) spaced(lx, ly int, tier catalog.SettlementKind) bool {
	for _, placed := range p.plan.Placements {
		need := catalog.SiteSpacing[tier]
		if s := catalog.SiteSpacing[placed.Tier]; s > need {
			need = s
		}
		if state.Chebyshev(lx, ly, placed.Center.LX, placed.Center.LY) < need {
			return false
		}
	}
	return true
}

// grow expands a cluster footprint from its center by breadth-random
// growth in the four cardinal directions.
func (p *planner) grow(s rng.Stream, lx, ly, footprint int) []state.CellRef {
	cells := []state.CellRef{{LX: lx, LY: ly}}
	p.occ[ly*p.w+lx] = true

	var dirs = [4][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}
	for attempt := 0; len(cells) < footprint && attempt < growthAttemptLimit; attempt++ {
		base := cells[rng.IntFrom(s, 0, len(cells)-1)]
		d := dirs[rng.IntFrom(s, 0, 3)]
		nx, ny := base.LX+d[0], base.LY+d[1]
		if nx < 0 || nx >= p.w || ny < 0 || ny >= p.h || p.occ[ny*p.w+nx] {
			continue
		}
		p.occ[ny*p.w+nx] = true
		cells = append(cells, state.CellRef{LX: nx, LY: ny})
	}
	return cells
}
