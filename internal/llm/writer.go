package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"driftworld/internal/quest"
	"driftworld/internal/state"
)

const (
	writerTimeout  = 30 * time.Second
	writerAttempts = 3
	writerBackoff  = time.Second
)

// NarrativeWriter asks the LLM to flesh a quest constraint into prose.
// It satisfies quest.Writer; the engine validates the reply and owns the
// fallback.
type NarrativeWriter struct {
	client *Client
	log    *slog.Logger
}

// NewNarrativeWriter creates a quest narrative writer. client may be nil.
func NewNarrativeWriter(client *Client, log *slog.Logger) *NarrativeWriter {
	return &NarrativeWriter{client: client, log: log}
}

const writerSystem = `You write quest narrative for a grounded low-fantasy world simulation.
You are given fixed quest mechanics; you may not change them.
Reply with a single JSON object and nothing else:
{"narrative":"...","objective_description":"...","reward_description":"...","protagonist":"...","antagonist":"...","narrative_hooks":[],"complications":[],"failure_conditions":[],"steps":[{"id":"...","narrative":"..."}]}
Rules: mention the reward only as the exact gold amount given. Only name
enemies from the allowed list. Never use any forbidden keyword. Write one
narrative per declared step id.`

// WriteQuestNarrative generates narrative for a rolled constraint with
// bounded retries.
func (w *NarrativeWriter) WriteQuestNarrative(ctx context.Context, c quest.Constraint, steps []*state.QuestStep, settlementName string) (*quest.Narrative, error) {
	if !w.client.Enabled() {
		return nil, fmt.Errorf("LLM client not configured")
	}

	stepIDs := make([]string, len(steps))
	for i, st := range steps {
		stepIDs[i] = st.ID
	}
	frame := map[string]any{
		"settlement":      settlementName,
		"settlement_type": c.SettlementType,
		"difficulty":      c.Difficulty,
		"reward_gold":     c.RewardGold,
		"enemy_types":     c.EnemyTypes,
		"enemy_count":     c.EnemyCount,
		"travel_distance": c.TravelDistance,
		"forbidden_words": c.ForbiddenKeywords,
		"step_ids":        stepIDs,
	}
	prompt, err := json.Marshal(frame)
	if err != nil {
		return nil, fmt.Errorf("marshal constraint: %w", err)
	}

	cctx, cancel := context.WithTimeout(ctx, writerTimeout)
	defer cancel()

	reply, err := w.client.CompleteWithRetry(cctx, writerSystem, string(prompt), 1200, writerAttempts, writerBackoff)
	if err != nil {
		return nil, err
	}

	var n quest.Narrative
	if err := json.Unmarshal([]byte(stripFences(reply)), &n); err != nil {
		return nil, fmt.Errorf("unmarshal narrative: %w", err)
	}
	return &n, nil
}
