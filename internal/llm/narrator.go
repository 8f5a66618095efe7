package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Scene is the payload the orchestrator assembles for narration: the
// facts of the player's surroundings after a turn has been applied.
type Scene struct {
	Description    string   `json:"description"`
	Biome          string   `json:"biome,omitempty"`
	Layer          int      `json:"layer"`
	SettlementName string   `json:"settlement_name,omitempty"`
	Items          []string `json:"items,omitempty"`
	NPCs           []string `json:"npcs,omitempty"`
	Events         []string `json:"events,omitempty"`
}

const narratorTimeout = 30 * time.Second

// Narrator renders scenes to prose. With no client it uses the
// deterministic renderer, so narration never fails a turn.
type Narrator struct {
	client *Client
	log    *slog.Logger
}

// NewNarrator creates a narrator. client may be nil.
func NewNarrator(client *Client, log *slog.Logger) *Narrator {
	return &Narrator{client: client, log: log}
}

const narratorSystem = `You are the narrator of a grounded low-fantasy world simulation.
Render the scene facts into 2-4 sentences of second-person present-tense prose.
Never invent items, people or exits not listed. Never break character.`

// Narrate renders a scene. The second return reports whether the prose
// came from the LLM.
func (n *Narrator) Narrate(ctx context.Context, scene Scene, playerText string) (string, bool) {
	if n.client.Enabled() {
		cctx, cancel := context.WithTimeout(ctx, narratorTimeout)
		defer cancel()
		prompt := fmt.Sprintf("Player said: %q\n\nScene facts:\n%s", playerText, renderFacts(scene))
		text, err := n.client.Complete(cctx, narratorSystem, prompt, 300)
		if err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text), true
		}
		if err != nil && n.log != nil {
			n.log.Warn("narration failed, using fallback", "error", err)
		}
	}
	return RenderFallback(scene), false
}

func renderFacts(scene Scene) string {
	var b strings.Builder
	fmt.Fprintf(&b, "location: %s\n", scene.Description)
	if scene.Biome != "" {
		fmt.Fprintf(&b, "biome: %s\n", scene.Biome)
	}
	if scene.SettlementName != "" {
		fmt.Fprintf(&b, "settlement: %s\n", scene.SettlementName)
	}
	if len(scene.Items) > 0 {
		fmt.Fprintf(&b, "items here: %s\n", strings.Join(scene.Items, ", "))
	}
	if len(scene.NPCs) > 0 {
		fmt.Fprintf(&b, "people here: %s\n", strings.Join(scene.NPCs, ", "))
	}
	for _, ev := range scene.Events {
		fmt.Fprintf(&b, "happened: %s\n", ev)
	}
	return b.String()
}

// RenderFallback is the deterministic scene renderer used when the LLM
// is disabled or failing.
func RenderFallback(scene Scene) string {
	var parts []string
	if scene.Description != "" {
		parts = append(parts, scene.Description)
	} else {
		parts = append(parts, "You take in your surroundings.")
	}
	if scene.SettlementName != "" {
		parts = append(parts, fmt.Sprintf("You are in %s.", scene.SettlementName))
	}
	if len(scene.Items) > 0 {
		parts = append(parts, fmt.Sprintf("You see %s.", joinAnd(scene.Items)))
	}
	if len(scene.NPCs) > 0 {
		parts = append(parts, fmt.Sprintf("Nearby: %s.", joinAnd(scene.NPCs)))
	}
	parts = append(parts, scene.Events...)
	return strings.Join(parts, " ")
}

func joinAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}
