package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"driftworld/internal/state"
)

// Stable save/load failure codes.
const (
	ErrMissingSessionID = "MISSING_SESSION_ID"
	ErrInvalidSaveName  = "INVALID_SAVE_NAME"
	ErrInvalidGameState = "INVALID_GAME_STATE"
	ErrSaveLimit        = "SAVE_LIMIT_EXCEEDED"
	ErrSaveNotFound     = "SAVE_NOT_FOUND"
	ErrInvalidSaveFile  = "INVALID_SAVE_FILE"
	ErrSaveFailed       = "SAVE_FAILED"
	ErrLoadFailed       = "LOAD_FAILED"
)

// SaveError carries a stable code plus a human message.
type SaveError struct {
	Code    string
	Message string
}

func (e *SaveError) Error() string { return e.Code + ": " + e.Message }

func saveErr(code, format string, args ...any) *SaveError {
	return &SaveError{Code: code, Message: fmt.Sprintf(format, args...)}
}

const (
	maxSavesPerSession = 5
	maxSaveNameLen     = 30
)

// SaveFile is the on-disk payload of one save slot.
type SaveFile struct {
	GameState *state.GameState `json:"gameState"`
	Timestamp string           `json:"timestamp"`
	SessionID string           `json:"sessionId"`
	SaveName  string           `json:"saveName"`
}

// Saves manages the per-session save directories under root.
type Saves struct {
	root string
	now  func() time.Time
}

// NewSaves creates a save manager rooted at dir (typically "saves").
func NewSaves(dir string) *Saves {
	return &Saves{root: dir, now: time.Now}
}

// SanitizeName strips everything outside [A-Za-z0-9 ], trims, and caps
// length. Empty results are invalid.
func SanitizeName(name string) (string, bool) {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(b.String())
	if len(out) > maxSaveNameLen {
		out = strings.TrimSpace(out[:maxSaveNameLen])
	}
	return out, out != ""
}

func (s *Saves) sessionDir(sessionID string) string {
	return filepath.Join(s.root, sessionID)
}

// Save writes a whole-file snapshot. A name collision gets a " (n)"
// suffix; the sixth save of a session fails with SAVE_LIMIT_EXCEEDED.
// Returns the final save name.
func (s *Saves) Save(sessionID, name string, gs *state.GameState) (string, *SaveError) {
	if sessionID == "" {
		return "", saveErr(ErrMissingSessionID, "no session id")
	}
	if gs == nil {
		return "", saveErr(ErrInvalidGameState, "no game state")
	}
	clean, ok := SanitizeName(name)
	if !ok {
		return "", saveErr(ErrInvalidSaveName, "save name %q is empty after sanitization", name)
	}

	dir := s.sessionDir(sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", saveErr(ErrSaveFailed, "create save dir: %v", err)
	}

	existing, err := s.List(sessionID)
	if err != nil {
		return "", saveErr(ErrSaveFailed, "list saves: %v", err.Message)
	}
	if len(existing) >= maxSavesPerSession {
		return "", saveErr(ErrSaveLimit, "session has %d of %d save slots used", len(existing), maxSavesPerSession)
	}

	final := clean
	for n := 1; exists(dir, final); n++ {
		final = fmt.Sprintf("%s (%d)", clean, n)
	}

	payload := SaveFile{
		GameState: gs,
		Timestamp: s.now().UTC().Format(time.RFC3339),
		SessionID: sessionID,
		SaveName:  final,
	}
	data, err2 := json.MarshalIndent(payload, "", "  ")
	if err2 != nil {
		return "", saveErr(ErrSaveFailed, "marshal save: %v", err2)
	}
	if err2 := os.WriteFile(filepath.Join(dir, final+".json"), data, 0o644); err2 != nil {
		return "", saveErr(ErrSaveFailed, "write save: %v", err2)
	}
	return final, nil
}

func exists(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name+".json"))
	return err == nil
}

// Load reads a save slot back.
func (s *Saves) Load(sessionID, name string) (*SaveFile, *SaveError) {
	if sessionID == "" {
		return nil, saveErr(ErrMissingSessionID, "no session id")
	}
	clean, ok := SanitizeName(name)
	if !ok {
		return nil, saveErr(ErrInvalidSaveName, "save name %q is empty after sanitization", name)
	}

	path := filepath.Join(s.sessionDir(sessionID), clean+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, saveErr(ErrSaveNotFound, "no save named %q", clean)
		}
		return nil, saveErr(ErrLoadFailed, "read save: %v", err)
	}

	var payload SaveFile
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, saveErr(ErrInvalidSaveFile, "parse save: %v", err)
	}
	if payload.GameState == nil {
		return nil, saveErr(ErrInvalidSaveFile, "save %q has no game state", clean)
	}
	return &payload, nil
}

// List returns the session's save names, lexicographically sorted.
func (s *Saves) List(sessionID string) ([]string, *SaveError) {
	if sessionID == "" {
		return nil, saveErr(ErrMissingSessionID, "no session id")
	}
	entries, err := os.ReadDir(s.sessionDir(sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, saveErr(ErrLoadFailed, "read save dir: %v", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	return names, nil
}

// SuggestName produces an unused default slot name for GET /api/newsave.
func (s *Saves) SuggestName(sessionID string) (string, *SaveError) {
	existing, err := s.List(sessionID)
	if err != nil {
		return "", err
	}
	if len(existing) >= maxSavesPerSession {
		return "", saveErr(ErrSaveLimit, "all %d save slots used", maxSavesPerSession)
	}
	used := make(map[string]bool, len(existing))
	for _, n := range existing {
		used[n] = true
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("save %d", n)
		if !used[candidate] {
			return candidate, nil
		}
	}
}
