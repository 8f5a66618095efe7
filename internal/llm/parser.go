package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"driftworld/internal/action"
)

// Stable parser failure codes.
const (
	ErrEmptyInput     = "EMPTY_INPUT"
	ErrNoAPIKey       = "NO_API_KEY"
	ErrLLMUnavailable = "LLM_UNAVAILABLE"
	ErrParseFailed    = "PARSE_FAILED"
	ErrLowConfidence  = "LOW_CONFIDENCE"
)

// ParseError carries a stable code; the orchestrator switches to the
// regex fallback on any of them.
type ParseError struct {
	Code string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Err.Error()
	}
	return e.Code
}

func (e *ParseError) Unwrap() error { return e.Err }

const (
	parserTimeout   = 15 * time.Second
	cacheTTL        = 30 * time.Second
	confidenceFloor = 0.5
)

// Parser normalizes free player text into an intent via the LLM, with a
// short-lived cache so repeated utterances in the same context are free.
type Parser struct {
	client *Client
	log    *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	intent  action.Intent
	expires time.Time
}

// NewParser creates an intent parser. client may be nil.
func NewParser(client *Client, log *slog.Logger) *Parser {
	return &Parser{
		client: client,
		log:    log,
		now:    time.Now,
		cache:  map[string]cacheEntry{},
	}
}

// parserReply mirrors the JSON contract the system prompt demands.
type parserReply struct {
	PrimaryAction *struct {
		Action string `json:"action"`
		Target string `json:"target,omitempty"`
		Dir    string `json:"dir,omitempty"`
	} `json:"primaryAction"`
	SecondaryActions []struct {
		Action string `json:"action"`
		Target string `json:"target,omitempty"`
		Dir    string `json:"dir,omitempty"`
	} `json:"secondaryActions,omitempty"`
	Compound   bool    `json:"compound"`
	Confidence float64 `json:"confidence"`
}

const parserSystem = `You normalize player text for a turn-based world simulation.
Reply with a single JSON object and nothing else:
{"primaryAction":{"action":"...","target":"...","dir":"..."},"secondaryActions":[],"compound":false,"confidence":0.0}
Actions: move, take, drop, examine, talk, enter, exit, accept_quest, complete_quest, ask_about_quest, sit, stand, wait, listen, look, inventory, help, cast, attack, sneak.
Directions: north, south, east, west, up, down.
confidence is your certainty in [0,1]. Omit fields you cannot fill.`

// Parse normalizes (userText, gameContext) into an intent. Results are
// cached for 30 seconds keyed by SHA-256(userText|context). Failures
// return a coded ParseError; the caller falls back to the regex parser.
func (p *Parser) Parse(ctx context.Context, userText, gameContext string) (*action.Intent, error) {
	text := strings.TrimSpace(userText)
	if text == "" {
		return nil, &ParseError{Code: ErrEmptyInput}
	}
	if !p.client.Enabled() {
		return nil, &ParseError{Code: ErrNoAPIKey}
	}

	key := cacheKey(text, gameContext)
	p.mu.Lock()
	if e, ok := p.cache[key]; ok && p.now().Before(e.expires) {
		p.mu.Unlock()
		intent := e.intent
		return &intent, nil
	}
	p.mu.Unlock()

	cctx, cancel := context.WithTimeout(ctx, parserTimeout)
	defer cancel()

	prompt := fmt.Sprintf("Context:\n%s\n\nPlayer text: %q", gameContext, text)
	reply, err := p.client.Complete(cctx, parserSystem, prompt, 400)
	if err != nil {
		return nil, &ParseError{Code: ErrLLMUnavailable, Err: err}
	}

	var pr parserReply
	if err := json.Unmarshal([]byte(stripFences(reply)), &pr); err != nil {
		return nil, &ParseError{Code: ErrParseFailed, Err: err}
	}
	if pr.PrimaryAction == nil || pr.PrimaryAction.Action == "" {
		return nil, &ParseError{Code: ErrParseFailed, Err: fmt.Errorf("no primary action")}
	}
	if pr.Confidence < confidenceFloor {
		return nil, &ParseError{Code: ErrLowConfidence, Err: fmt.Errorf("confidence %.2f", pr.Confidence)}
	}

	primary := action.Classify(pr.PrimaryAction.Action, pr.PrimaryAction.Target, pr.PrimaryAction.Dir)
	primary.Raw = text
	intent := action.Intent{
		Primary:    &primary,
		Compound:   pr.Compound,
		Confidence: pr.Confidence,
		Source:     "llm",
		Raw:        text,
	}
	for _, sa := range pr.SecondaryActions {
		intent.Secondary = append(intent.Secondary, action.Classify(sa.Action, sa.Target, sa.Dir))
	}

	p.mu.Lock()
	p.cache[key] = cacheEntry{intent: intent, expires: p.now().Add(cacheTTL)}
	p.prune()
	p.mu.Unlock()

	out := intent
	return &out, nil
}

// prune drops expired entries; called under mu.
func (p *Parser) prune() {
	now := p.now()
	for k, e := range p.cache {
		if now.After(e.expires) {
			delete(p.cache, k)
		}
	}
}

func cacheKey(userText, gameContext string) string {
	sum := sha256.Sum256([]byte(userText + "|" + gameContext))
	return hex.EncodeToString(sum[:])
}

// stripFences removes a ```json … ``` wrapper if the model added one.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
