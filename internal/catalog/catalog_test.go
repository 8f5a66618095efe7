package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadValidates(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)
	require.Len(t, c.Traits, 104)

	counts := map[TraitClass]int{}
	seen := map[string]bool{}
	for _, tr := range c.Traits {
		require.Equal(t, strings.ToLower(tr.Name), tr.Name)
		require.False(t, seen[tr.Name], "duplicate trait %q", tr.Name)
		seen[tr.Name] = true
		counts[tr.Class]++
	}
	require.Equal(t, 40, counts[TraitPositive])
	require.Equal(t, 40, counts[TraitNegative])
	require.Equal(t, 24, counts[TraitNeutral])
}

func TestJobTierPartition(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	byTier := map[int]int{}
	for _, j := range c.Jobs {
		byTier[j.Tier]++
		require.GreaterOrEqual(t, j.CriminalWeight, 0.0, "job %q", j.Name)
		require.LessOrEqual(t, j.CriminalWeight, 1.0, "job %q", j.Name)
		require.GreaterOrEqual(t, j.MinAge, 0, "job %q", j.Name)
	}
	require.Equal(t, 11, byTier[1])
	require.Equal(t, 22, byTier[2])
	require.Equal(t, 27, byTier[3])
	require.Equal(t, 12, byTier[4])

	for tier, want := range tierSizes {
		require.Len(t, c.JobsForTier(tier), want)
	}
}

func TestCanonicalDirection(t *testing.T) {
	for in, want := range map[string]string{
		"n": "north", "north": "north",
		"s": "south", "SOUTH": "south",
		"e": "east", "w": "west",
		"u": "up", "d": "down",
	} {
		got, ok := CanonicalDirection(in)
		require.True(t, ok, "direction %q", in)
		require.Equal(t, want, got)
	}
	_, ok := CanonicalDirection("nort")
	require.False(t, ok)
}

func TestBiomeTablesComplete(t *testing.T) {
	for _, b := range BiomeOrder {
		require.NotEmpty(t, BiomeKeywords[b], "keywords for %s", b)
		require.NotEmpty(t, BiomePalettes[b], "palette for %s", b)
		require.NotEmpty(t, BiomeTemplates[b], "templates for %s", b)
	}
}

func TestSettlementSpecs(t *testing.T) {
	order := []SettlementKind{KindOutpost, KindHamlet, KindTown, KindCity, KindMetropolis}
	prev := 0
	for _, k := range order {
		spec, ok := SettlementSpecs[k]
		require.True(t, ok, "spec for %s", k)
		require.Greater(t, spec.GridSize, prev, "sizes ascend through %s", k)
		prev = spec.GridSize
		require.Greater(t, SiteSpacing[k], 0)
		require.Greater(t, SiteFootprint[k], 0)
	}
	require.Equal(t, 6, SiteSpacing[KindMetropolis])
	require.Equal(t, 7, SiteFootprint[KindMetropolis])
}

func TestNamePoolsNonEmpty(t *testing.T) {
	require.NotEmpty(t, NamePrefixes)
	require.NotEmpty(t, NameSuffixes)
	require.NotEmpty(t, GivenNamesFemale)
	require.NotEmpty(t, GivenNamesMale)
	require.NotEmpty(t, FamilyNames)
}
