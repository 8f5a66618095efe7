// Package api serves the game over HTTP. Sessions are addressed by the
// X-Session-Id header; a missing header creates a session and the
// resolved id is echoed on every response.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"driftworld/internal/llm"
	"driftworld/internal/quest"
	"driftworld/internal/rng"
	"driftworld/internal/session"
	"driftworld/internal/state"
	"driftworld/internal/turn"
)

// Server wires the session store, orchestrator and narrator to HTTP.
type Server struct {
	Log      *slog.Logger
	Store    *session.Store
	Saves    *session.Saves
	Journal  *session.Journal // may be nil
	Orch     *turn.Orchestrator
	Narrator *llm.Narrator
	Port     int

	startedAt time.Time
}

// Start begins serving in a goroutine.
func (s *Server) Start() {
	s.startedAt = time.Now()

	// /narrate may call the LLM twice; keep a per-caller ceiling.
	narrateLimiter := NewRateLimiter(120, time.Minute)

	mux := http.NewServeMux()
	mux.HandleFunc("/init", s.handleInit)
	mux.HandleFunc("/reset", s.handleReset)
	mux.HandleFunc("/narrate", RateLimitMiddleware(narrateLimiter, s.handleNarrate))

	mux.HandleFunc("/api/save", s.handleSave)
	mux.HandleFunc("/api/load", s.handleLoad)
	mux.HandleFunc("/api/newsave", s.handleNewSave)
	mux.HandleFunc("/api/saves", s.handleSaves)

	mux.HandleFunc("/quest/available", s.handleQuestAvailable)
	mux.HandleFunc("/quest/accept", s.handleQuestAccept)
	mux.HandleFunc("/quest/progress", s.handleQuestProgress)
	mux.HandleFunc("/quest/complete", s.handleQuestComplete)
	mux.HandleFunc("/quest/active", s.handleQuestActive)

	mux.HandleFunc("/status", s.handleStatus)

	addr := fmt.Sprintf(":%d", s.Port)
	s.Log.Info("HTTP API starting", "addr", addr)

	go func() {
		if err := http.ListenAndServe(addr, corsMiddleware(mux)); err != nil {
			s.Log.Error("HTTP server error", "error", err)
		}
	}()
}

// resolve finds or creates the request's session and stamps the header.
func (s *Server) resolve(w http.ResponseWriter, r *http.Request) (*session.Session, string) {
	id := r.Header.Get("X-Session-Id")
	sess, resolved := s.Store.Resolve(id, rng.HashSeed(id))
	w.Header().Set("X-Session-Id", resolved)
	return sess, resolved
}

func (s *Server) handleInit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	sess, id := s.resolve(w, r)
	gs := sess.State()
	if s.Journal != nil {
		if err := s.Journal.RecordSession(id, sess.CreatedAt, gs.RNGSeed, string(gs.World.MacroBiome)); err != nil {
			s.Log.Warn("journal session failed", "error", err)
		}
	}
	writeJSON(w, map[string]any{
		"sessionId": id,
		"status":    "world_created",
		"state":     gs,
		"prompt":    gs.World.Prompt,
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	_, id := s.resolve(w, r)
	sess := s.Store.Reset(id, rng.HashSeed(id))
	writeJSON(w, map[string]any{
		"sessionId": id,
		"status":    "world_created",
		"state":     sess.State(),
		"prompt":    "",
	})
}

type narrateRequest struct {
	Action string `json:"action"`
}

func (s *Server) handleNarrate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	sess, id := s.resolve(w, r)

	var req narrateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, map[string]any{"sessionId": id, "error": "EMPTY_INPUT"})
		return
	}

	if handled := s.systemCommand(w, sess, id, req.Action); handled {
		return
	}

	var out *turn.Output
	var runErr error
	sess.Apply(func(gs *state.GameState) *state.GameState {
		out, runErr = s.Orch.Run(r.Context(), gs, turn.Input{SessionID: id, Text: req.Action})
		if runErr != nil || !out.Valid {
			return nil
		}
		return out.State
	})
	if runErr != nil {
		s.Log.Error("turn failed", "session", id, "error", runErr)
		writeJSON(w, map[string]any{"sessionId": id, "error": "TURN_FAILED"})
		return
	}
	if !out.Valid {
		writeJSON(w, map[string]any{"sessionId": id, "error": out.Reason})
		return
	}

	s.journalTurn(id, out)

	narrative, fromLLM := s.Narrator.Narrate(r.Context(), out.Scene, req.Action)
	writeJSON(w, map[string]any{
		"sessionId": id,
		"narrative": narrative,
		"state":     out.State,
		"engine_output": map[string]any{
			"turn_id":          out.TurnID,
			"blocks":           out.Blocks,
			"post_state_facts": out.Facts,
			"deltas":           out.Deltas,
			"quest_errors":     out.QuestErrs,
		},
		"scene": out.Scene,
		"debug": map[string]any{
			"intent_source": out.Intent.Source,
			"llm_narration": fromLLM,
		},
	})
}

func (s *Server) journalTurn(id string, out *turn.Output) {
	if s.Journal == nil {
		return
	}
	err := s.Journal.RecordTurn(session.TurnRecord{
		SessionID:   id,
		TurnID:      out.TurnID,
		TurnCounter: out.State.TurnCounter,
		AppliedAt:   out.State.World.TimeUTC,
		Summary:     out.Intent.Summary(),
		DeltaCount:  len(out.Deltas),
		StateDigest: out.State.Fingerprint.HexDigestState,
	})
	if err != nil {
		s.Log.Warn("journal turn failed", "session", id, "error", err)
	}
}

var (
	saveCmdRe = regexp.MustCompile(`(?i)^save(?:\s+as)?\s+(.+)$`)
	loadCmdRe = regexp.MustCompile(`(?i)^load\s+(.+)$`)
	newGameRe = regexp.MustCompile(`(?i)^(new game|restart|start over)$`)
	savesRe   = regexp.MustCompile(`(?i)^(saves|my saves|list saves|show saves)$`)
)

// systemCommand intercepts save/load/new-game/list commands before the
// turn pipeline and the narrator. Returns true when the request was
// handled.
func (s *Server) systemCommand(w http.ResponseWriter, sess *session.Session, id, text string) bool {
	t := strings.TrimSpace(text)

	if m := saveCmdRe.FindStringSubmatch(t); m != nil {
		final, serr := s.Saves.Save(id, m[1], sess.State())
		if serr != nil {
			writeJSON(w, map[string]any{"sessionId": id, "systemCommand": true, "error": serr.Code})
			return true
		}
		writeJSON(w, map[string]any{
			"sessionId":     id,
			"systemCommand": true,
			"narrative":     fmt.Sprintf("Game saved as %q.", final),
			"saveName":      final,
		})
		return true
	}

	if m := loadCmdRe.FindStringSubmatch(t); m != nil {
		payload, serr := s.Saves.Load(id, m[1])
		if serr != nil {
			writeJSON(w, map[string]any{"sessionId": id, "systemCommand": true, "error": serr.Code})
			return true
		}
		sess.Replace(payload.GameState)
		writeJSON(w, map[string]any{
			"sessionId":     id,
			"systemCommand": true,
			"narrative":     fmt.Sprintf("Loaded save %q.", payload.SaveName),
			"state":         payload.GameState,
		})
		return true
	}

	if newGameRe.MatchString(t) {
		fresh := s.Store.Reset(id, rng.HashSeed(id))
		writeJSON(w, map[string]any{
			"sessionId":     id,
			"systemCommand": true,
			"restart":       true,
			"narrative":     "A new world awaits. Describe it.",
			"state":         fresh.State(),
		})
		return true
	}

	if savesRe.MatchString(t) {
		names, serr := s.Saves.List(id)
		if serr != nil {
			writeJSON(w, map[string]any{"sessionId": id, "systemCommand": true, "error": serr.Code})
			return true
		}
		writeJSON(w, map[string]any{
			"sessionId":     id,
			"systemCommand": true,
			"saves":         names,
		})
		return true
	}

	return false
}

type saveRequest struct {
	SaveName  string           `json:"saveName"`
	GameState *state.GameState `json:"gameState"`
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	sess, id := s.resolve(w, r)

	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, map[string]any{"success": false, "error": session.ErrInvalidGameState})
		return
	}
	gs := req.GameState
	if gs == nil {
		gs = sess.State()
	}
	final, serr := s.Saves.Save(id, req.SaveName, gs)
	if serr != nil {
		writeJSON(w, map[string]any{"success": false, "error": serr.Code, "message": serr.Message})
		return
	}
	writeJSON(w, map[string]any{"success": true, "saveName": final, "sessionId": id})
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	sess, id := s.resolve(w, r)

	var req struct {
		SaveName string `json:"saveName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, map[string]any{"success": false, "error": session.ErrInvalidSaveName})
		return
	}
	payload, serr := s.Saves.Load(id, req.SaveName)
	if serr != nil {
		writeJSON(w, map[string]any{"success": false, "error": serr.Code, "message": serr.Message})
		return
	}
	sess.Replace(payload.GameState)
	writeJSON(w, map[string]any{
		"success":   true,
		"saveName":  payload.SaveName,
		"sessionId": id,
		"gameState": payload.GameState,
	})
}

func (s *Server) handleNewSave(w http.ResponseWriter, r *http.Request) {
	_, id := s.resolve(w, r)
	name, serr := s.Saves.SuggestName(id)
	if serr != nil {
		writeJSON(w, map[string]any{"success": false, "error": serr.Code})
		return
	}
	writeJSON(w, map[string]any{"success": true, "saveName": name, "sessionId": id})
}

func (s *Server) handleSaves(w http.ResponseWriter, r *http.Request) {
	_, id := s.resolve(w, r)
	names, serr := s.Saves.List(id)
	if serr != nil {
		writeJSON(w, map[string]any{"success": false, "error": serr.Code})
		return
	}
	writeJSON(w, map[string]any{"success": true, "saves": names, "sessionId": id})
}

func (s *Server) handleQuestAvailable(w http.ResponseWriter, r *http.Request) {
	sess, id := s.resolve(w, r)
	settlementID := r.URL.Query().Get("settlementId")
	writeJSON(w, map[string]any{
		"sessionId": id,
		"quests":    quest.Available(sess.State(), settlementID),
	})
}

func (s *Server) handleQuestAccept(w http.ResponseWriter, r *http.Request) {
	s.questMutation(w, r, func(gs *state.GameState, questID, _ string, rec *state.Recorder) (*state.Quest, *quest.Error) {
		return quest.Accept(gs, questID, rec)
	})
}

func (s *Server) handleQuestProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	sess, id := s.resolve(w, r)

	var req struct {
		QuestID string `json:"questId"`
		Step    string `json:"step,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, map[string]any{"sessionId": id, "error": quest.ReasonNoQuestID})
		return
	}

	var q *state.Quest
	var qerr *quest.Error
	sess.Update(func(gs *state.GameState) *state.GameState {
		clone, err := gs.Clone()
		if err != nil {
			qerr = &quest.Error{Code: "CLONE_FAILED", Message: err.Error()}
			return nil
		}
		rec := &state.Recorder{}
		q, qerr = quest.AdvanceStep(clone, req.QuestID, req.Step, rec)
		if qerr != nil {
			return nil
		}
		if err := clone.Refingerprint(); err != nil {
			qerr = &quest.Error{Code: "REFINGERPRINT_FAILED", Message: err.Error()}
			return nil
		}
		return clone
	})
	if qerr != nil {
		writeJSON(w, map[string]any{"sessionId": id, "error": qerr.Code, "message": qerr.Message})
		return
	}
	writeJSON(w, map[string]any{"sessionId": id, "quest": q})
}

func (s *Server) handleQuestComplete(w http.ResponseWriter, r *http.Request) {
	s.questMutation(w, r, func(gs *state.GameState, questID, npcID string, rec *state.Recorder) (*state.Quest, *quest.Error) {
		return quest.Complete(gs, questID, npcID, rec)
	})
}

func (s *Server) questMutation(w http.ResponseWriter, r *http.Request, fn func(*state.GameState, string, string, *state.Recorder) (*state.Quest, *quest.Error)) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	sess, id := s.resolve(w, r)

	var req struct {
		QuestID string `json:"questId"`
		NPCID   string `json:"npcId,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, map[string]any{"sessionId": id, "error": quest.ReasonNoQuestID})
		return
	}

	var q *state.Quest
	var qerr *quest.Error
	sess.Update(func(gs *state.GameState) *state.GameState {
		clone, err := gs.Clone()
		if err != nil {
			qerr = &quest.Error{Code: "CLONE_FAILED", Message: err.Error()}
			return nil
		}
		rec := &state.Recorder{}
		q, qerr = fn(clone, req.QuestID, req.NPCID, rec)
		if qerr != nil {
			return nil
		}
		if err := clone.Refingerprint(); err != nil {
			qerr = &quest.Error{Code: "REFINGERPRINT_FAILED", Message: err.Error()}
			return nil
		}
		return clone
	})
	if qerr != nil {
		writeJSON(w, map[string]any{"sessionId": id, "error": qerr.Code, "message": qerr.Message})
		return
	}
	writeJSON(w, map[string]any{"sessionId": id, "quest": q})
}

func (s *Server) handleQuestActive(w http.ResponseWriter, r *http.Request) {
	sess, id := s.resolve(w, r)
	writeJSON(w, map[string]any{
		"sessionId": id,
		"quests":    sess.State().Quests.Active,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	type sessionInfo struct {
		ID      string `json:"id"`
		Turns   uint64 `json:"turns"`
		Created string `json:"created"`
	}
	var sessions []sessionInfo
	s.Store.Each(func(id string, turns uint64, created time.Time) {
		sessions = append(sessions, sessionInfo{
			ID:      id,
			Turns:   turns,
			Created: humanize.Time(created),
		})
	})

	writeJSON(w, map[string]any{
		"name":     "driftworld",
		"uptime":   humanize.Time(s.startedAt),
		"sessions": len(sessions),
		"detail":   sessions,
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Session-Id")
			w.Header().Set("Access-Control-Expose-Headers", "X-Session-Id")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
