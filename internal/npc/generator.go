// Package npc generates NPCs deterministically from (seed, site_id).
// The LCG draw order below is a contract: tier, age, gender, job,
// criminal roll (only when the job's weight is fractional), corruption
// band, corruption value, trait count, trait indices, wealth, reputation,
// home, position x, position y, given name, family name. Reordering any
// draw changes every NPC.
package npc

import (
	"fmt"
	"math"
	"time"

	"driftworld/internal/catalog"
	"driftworld/internal/rng"
	"driftworld/internal/state"
)

// Lifespan before an NPC record expires.
const expiry = 14 * 24 * time.Hour

// Generator produces NPCs against a loaded catalog.
type Generator struct {
	cat *catalog.Catalog
}

// NewGenerator creates an NPC generator.
func NewGenerator(cat *catalog.Catalog) *Generator {
	return &Generator{cat: cat}
}

// Generate creates one NPC from (seed, siteID). Bit-identical across runs
// and platforms for the same inputs; now only stamps the bookkeeping
// timestamps.
func (g *Generator) Generate(seed uint32, siteID string, now time.Time) *state.NPC {
	r := rng.NewLCG(seed)

	tier := rollTier(r.Float())
	age := 5 + int(r.Float()*80)
	gender := "male"
	if r.Float() >= 0.5 {
		gender = "female"
	}

	job := g.pickJob(r, tier, age)

	isCriminal := false
	switch {
	case job.CriminalWeight >= 1:
		isCriminal = true
	case job.CriminalWeight <= 0:
		isCriminal = false
	default:
		isCriminal = r.Float() < job.CriminalWeight
	}

	corruption := rollCorruption(r)
	traits := g.rollTraits(r)
	wealth := rollWealth(r, tier)
	reputation := int(math.Floor((r.Float() - 0.5) * 50))

	var home *string
	switch h := r.Float(); {
	case h < 0.8:
		s := siteID
		home = &s
	case h < 0.95:
		s := "wanderer"
		home = &s
	default:
		home = nil
	}

	lx := int(r.Float() * float64(state.DefaultL1Width))
	ly := int(r.Float() * float64(state.DefaultL1Height))

	given := catalog.GivenNamesMale
	if gender == "female" {
		given = catalog.GivenNamesFemale
	}
	name := pick(r, given) + " " + pick(r, catalog.FamilyNames)

	created := now.UTC()
	return &state.NPC{
		ID:               fmt.Sprintf("%s#npc_%d", siteID, seed),
		Name:             name,
		SiteID:           siteID,
		Age:              age,
		Gender:           gender,
		Tier:             tier,
		JobCategory:      job.Name,
		HomeLocation:     home,
		FactionID:        nil,
		WealthTier:       wealth,
		PlayerReputation: reputation,
		Traits:           traits,
		CorruptionLevel:  corruption,
		IsCriminal:       isCriminal,
		Position:         state.Position{LX: lx, LY: ly},
		State:            "active",
		CreatedAtUTC:     created.Format(time.RFC3339),
		ExpiresAtUTC:     created.Add(expiry).Format(time.RFC3339),
		Schedule:         nil,
	}
}

// GeneratePool emits count NPCs with seeds baseSeed, baseSeed+1, …
func (g *Generator) GeneratePool(siteID string, count int, baseSeed uint32, now time.Time) []*state.NPC {
	pool := make([]*state.NPC, 0, count)
	for i := 0; i < count; i++ {
		pool = append(pool, g.Generate(baseSeed+uint32(i), siteID, now))
	}
	return pool
}

func pick(r *rng.LCG, pool []string) string {
	idx := int(r.Float() * float64(len(pool)))
	if idx >= len(pool) {
		idx = len(pool) - 1
	}
	return pool[idx]
}

func rollTier(r float64) int {
	switch {
	case r < 0.05:
		return 1
	case r < 0.25:
		return 2
	case r < 0.90:
		return 3
	default:
		return 4
	}
}

func (g *Generator) pickJob(r *rng.LCG, tier, age int) catalog.Job {
	var eligible []catalog.Job
	for _, j := range g.cat.JobsForTier(tier) {
		if age >= j.MinAge {
			eligible = append(eligible, j)
		}
	}
	// The index draw happens even when nobody qualifies; the pool
	// collapses to the placeholder but the stream keeps its shape.
	if len(eligible) == 0 {
		eligible = []catalog.Job{catalog.Unemployed}
	}
	idx := int(r.Float() * float64(len(eligible)))
	if idx >= len(eligible) {
		idx = len(eligible) - 1
	}
	return eligible[idx]
}

func rollCorruption(r *rng.LCG) float64 {
	var lo, hi float64
	switch band := r.Float(); {
	case band < 0.60:
		lo, hi = 0.0, 0.3
	case band < 0.90:
		lo, hi = 0.3, 0.7
	default:
		lo, hi = 0.7, 1.0
	}
	return lo + r.Float()*(hi-lo)
}

func (g *Generator) rollTraits(r *rng.LCG) []string {
	count := 3
	switch c := r.Float(); {
	case c < 0.35:
		count = 1
	case c < 0.75:
		count = 2
	}

	picked := make([]string, 0, count)
	used := make(map[int]bool, count)
	for len(picked) < count {
		idx := int(r.Float() * float64(len(g.cat.Traits)))
		if idx >= len(g.cat.Traits) {
			idx = len(g.cat.Traits) - 1
		}
		if used[idx] {
			continue
		}
		used[idx] = true
		picked = append(picked, g.cat.Traits[idx].Name)
	}
	return picked
}

func rollWealth(r *rng.LCG, tier int) int {
	var lo, hi int
	switch tier {
	case 1:
		lo, hi = 7, 9
	case 2:
		lo, hi = 5, 8
	case 3:
		lo, hi = 2, 5
	default:
		lo, hi = 0, 1
	}
	return lo + int(r.Float()*float64(hi-lo+1))
}
