// Package catalog holds the static, load-time-validated tables the engine
// draws from: NPC traits and jobs, settlement size tables, biome palettes,
// and direction aliases. Catalogs are immutable and shared across sessions;
// a violated invariant aborts startup.
package catalog

import (
	"fmt"
	"strings"
)

const (
	traitCount = 104
)

// Catalog bundles the validated trait and job tables.
type Catalog struct {
	Traits []Trait
	Jobs   []Job

	jobsByTier map[int][]Job
}

// Load builds and validates the catalogs. Any invariant violation is
// returned as an error; callers treat it as fatal.
func Load() (*Catalog, error) {
	c := &Catalog{
		Traits:     buildTraits(),
		Jobs:       buildJobs(),
		jobsByTier: make(map[int][]Job),
	}
	for _, j := range c.Jobs {
		c.jobsByTier[j.Tier] = append(c.jobsByTier[j.Tier], j)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return c, nil
}

func (c *Catalog) validate() error {
	if len(c.Traits) != traitCount {
		return fmt.Errorf("expected %d traits, got %d", traitCount, len(c.Traits))
	}
	seen := make(map[string]bool, len(c.Traits))
	classCounts := make(map[TraitClass]int)
	for _, t := range c.Traits {
		name := strings.ToLower(t.Name)
		if name != t.Name {
			return fmt.Errorf("trait %q is not lowercase", t.Name)
		}
		if seen[name] {
			return fmt.Errorf("duplicate trait %q", t.Name)
		}
		seen[name] = true
		classCounts[t.Class]++
	}
	if classCounts[TraitPositive] != 40 || classCounts[TraitNegative] != 40 || classCounts[TraitNeutral] != 24 {
		return fmt.Errorf("trait classes must be 40/40/24, got %d/%d/%d",
			classCounts[TraitPositive], classCounts[TraitNegative], classCounts[TraitNeutral])
	}

	jobNames := make(map[string]bool, len(c.Jobs))
	for _, j := range c.Jobs {
		if j.Name == "" {
			return fmt.Errorf("job with empty name in tier %d", j.Tier)
		}
		if jobNames[j.Name] {
			return fmt.Errorf("duplicate job %q", j.Name)
		}
		jobNames[j.Name] = true
		if j.CriminalWeight < 0 || j.CriminalWeight > 1 {
			return fmt.Errorf("job %q criminal_weight %v out of [0,1]", j.Name, j.CriminalWeight)
		}
		if j.MinAge < 0 {
			return fmt.Errorf("job %q min_age %d negative", j.Name, j.MinAge)
		}
	}
	for tier, want := range tierSizes {
		if got := len(c.jobsByTier[tier]); got != want {
			return fmt.Errorf("tier %d has %d jobs, want %d", tier, got, want)
		}
	}

	for _, b := range BiomeOrder {
		if len(BiomeKeywords[b]) == 0 {
			return fmt.Errorf("biome %s has no keywords", b)
		}
		if len(BiomePalettes[b]) == 0 {
			return fmt.Errorf("biome %s has no palette", b)
		}
		if len(BiomeTemplates[b]) == 0 {
			return fmt.Errorf("biome %s has no templates", b)
		}
	}
	return nil
}

// JobsForTier returns the jobs of one social tier, in catalog order.
func (c *Catalog) JobsForTier(tier int) []Job {
	return c.jobsByTier[tier]
}

// CanonicalDirection resolves a direction alias to its canonical long
// form; ok is false for unrecognized input.
func CanonicalDirection(dir string) (string, bool) {
	d, ok := Directions[strings.ToLower(strings.TrimSpace(dir))]
	return d, ok
}
