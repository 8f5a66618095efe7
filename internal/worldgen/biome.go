// Package worldgen implements the three-layer procedural world: L0 macro
// biome tagging, L1 site planning and the sliding hydration window, and
// the L2/L3 interiors of settlements, points of interest, and buildings.
// Every draw comes from a coordinate-keyed stream, so two sessions with
// the same seed observe identical worlds.
package worldgen

import (
	"strings"
	"sync"

	opensimplex "github.com/ojrac/opensimplex-go"

	"driftworld/internal/catalog"
	"driftworld/internal/npc"
	"driftworld/internal/state"
)

// Generator drives world generation for all sessions. It is stateless
// apart from the catalog, the NPC generator, and a per-seed noise cache.
type Generator struct {
	cat    *catalog.Catalog
	npcs   *npc.Generator
	mu     sync.Mutex
	noises map[uint32]opensimplex.Noise
}

// New creates a world generator.
func New(cat *catalog.Catalog, npcs *npc.Generator) *Generator {
	return &Generator{
		cat:    cat,
		npcs:   npcs,
		noises: make(map[uint32]opensimplex.Noise),
	}
}

// noise returns the relief noise field for a world seed.
func (g *Generator) noise(seed uint32) opensimplex.Noise {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.noises[seed]
	if !ok {
		n = opensimplex.NewNormalized(int64(seed))
		g.noises[seed] = n
	}
	return n
}

// DetectBiome scans the prompt for biome keywords. The first biome in
// enumeration order with any match wins; ok is false when nothing
// matches.
func DetectBiome(prompt string) (catalog.Biome, bool) {
	text := strings.ToLower(prompt)
	for _, b := range catalog.BiomeOrder {
		for _, kw := range catalog.BiomeKeywords[b] {
			if strings.Contains(text, kw) {
				return b, true
			}
		}
	}
	return "", false
}

// InitL0 seeds the macro grid from the opening world prompt: every macro
// cell is tagged with the detected biome (rural when nothing matches) and
// the default caps, then the streaming window runs once so the player
// starts on known ground.
func (g *Generator) InitL0(gs *state.GameState, prompt string, rec *state.Recorder) {
	biome, ok := DetectBiome(prompt)
	if !ok {
		biome = catalog.BiomeRural
	}
	gs.World.MacroBiome = biome
	gs.World.Prompt = prompt
	rec.Set("/world/macro_biome", string(biome))

	for my := 0; my < gs.World.L0.H; my++ {
		for mx := 0; mx < gs.World.L0.W; mx++ {
			key := state.MacroKey(mx, my)
			if _, exists := gs.World.Macro[key]; exists {
				continue
			}
			gs.World.Macro[key] = &state.MacroCell{
				ID:    state.L0ID(mx, my),
				MX:    mx,
				MY:    my,
				L1:    gs.World.L1Default,
				Caps:  map[string]int{"city": 1, "metropolis": 0},
				Biome: biome,
			}
		}
	}
	rec.Set("/world/macro", "initialized")

	g.Step(gs, rec)
}
