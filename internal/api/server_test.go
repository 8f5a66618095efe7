package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"driftworld/internal/catalog"
	"driftworld/internal/llm"
	"driftworld/internal/npc"
	"driftworld/internal/quest"
	"driftworld/internal/session"
	"driftworld/internal/turn"
	"driftworld/internal/worldgen"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	cat, err := catalog.Load()
	require.NoError(t, err)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	gen := worldgen.New(cat, npc.NewGenerator(cat))
	return &Server{
		Log:      log,
		Store:    session.NewStore(),
		Saves:    session.NewSaves(t.TempDir()),
		Orch:     turn.New(log, gen, llm.NewParser(nil, log), quest.NewEngine(log, nil)),
		Narrator: llm.NewNarrator(nil, log),
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func post(handler http.HandlerFunc, path, sessionID, payload string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(payload))
	if sessionID != "" {
		r.Header.Set("X-Session-Id", sessionID)
	}
	w := httptest.NewRecorder()
	handler(w, r)
	return w
}

func TestInitCreatesSessionAndEchoesHeader(t *testing.T) {
	s := testServer(t)

	w := post(s.handleInit, "/init", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	id := w.Header().Get("X-Session-Id")
	require.NotEmpty(t, id)
	body := decode(t, w)
	require.Equal(t, id, body["sessionId"])
	require.Equal(t, "world_created", body["status"])
	require.Equal(t, 1, s.Store.Count())

	// The same header resolves to the same session.
	w = post(s.handleInit, "/init", id, "")
	require.Equal(t, id, w.Header().Get("X-Session-Id"))
	require.Equal(t, 1, s.Store.Count())

	// GET is rejected.
	r := httptest.NewRequest(http.MethodGet, "/init", nil)
	rec := httptest.NewRecorder()
	s.handleInit(rec, r)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestNarrateFirstTurnCreatesWorld(t *testing.T) {
	s := testServer(t)
	w := post(s.handleNarrate, "/narrate", "sess1", `{"action":"A windy coast of pine islands."}`)

	body := decode(t, w)
	require.Equal(t, "sess1", body["sessionId"])
	require.NotEmpty(t, body["narrative"])
	require.NotContains(t, body, "error")

	engine := body["engine_output"].(map[string]any)
	require.NotEmpty(t, engine["turn_id"])
	require.Len(t, engine["blocks"], 2)

	debug := body["debug"].(map[string]any)
	require.Equal(t, false, debug["llm_narration"])

	sess, _ := s.Store.Resolve("sess1", 0)
	require.Equal(t, uint64(1), sess.Turns())
	require.Equal(t, "coast", string(sess.State().World.MacroBiome))
}

func TestNarrateInvalidTurnKeepsState(t *testing.T) {
	s := testServer(t)
	post(s.handleNarrate, "/narrate", "sess1", `{"action":"A windy coast of pine islands."}`)

	w := post(s.handleNarrate, "/narrate", "sess1", `{"action":"drop the crown"}`)
	body := decode(t, w)
	require.Equal(t, "TARGET_NOT_IN_INVENTORY", body["error"])

	sess, _ := s.Store.Resolve("sess1", 0)
	require.Equal(t, uint64(1), sess.Turns())
}

func TestNarrateSystemCommands(t *testing.T) {
	s := testServer(t)
	post(s.handleNarrate, "/narrate", "sess1", `{"action":"A windy coast of pine islands."}`)

	w := post(s.handleNarrate, "/narrate", "sess1", `{"action":"save as camp"}`)
	body := decode(t, w)
	require.Equal(t, true, body["systemCommand"])
	require.Equal(t, "camp", body["saveName"])

	w = post(s.handleNarrate, "/narrate", "sess1", `{"action":"my saves"}`)
	body = decode(t, w)
	require.Equal(t, []any{"camp"}, body["saves"])

	w = post(s.handleNarrate, "/narrate", "sess1", `{"action":"load camp"}`)
	body = decode(t, w)
	require.Equal(t, true, body["systemCommand"])
	require.NotContains(t, body, "error")

	w = post(s.handleNarrate, "/narrate", "sess1", `{"action":"load nothing"}`)
	body = decode(t, w)
	require.Equal(t, "SAVE_NOT_FOUND", body["error"])

	w = post(s.handleNarrate, "/narrate", "sess1", `{"action":"new game"}`)
	body = decode(t, w)
	require.Equal(t, true, body["restart"])
	sess, _ := s.Store.Resolve("sess1", 0)
	require.Equal(t, uint64(0), sess.State().TurnCounter)
}

func TestSaveAndLoadEndpoints(t *testing.T) {
	s := testServer(t)
	post(s.handleInit, "/init", "sess1", "")

	w := post(s.handleSave, "/api/save", "sess1", `{"saveName":"slot one"}`)
	body := decode(t, w)
	require.Equal(t, true, body["success"])
	require.Equal(t, "slot one", body["saveName"])

	w = post(s.handleLoad, "/api/load", "sess1", `{"saveName":"slot one"}`)
	body = decode(t, w)
	require.Equal(t, true, body["success"])

	w = post(s.handleLoad, "/api/load", "sess1", `{"saveName":"missing"}`)
	body = decode(t, w)
	require.Equal(t, false, body["success"])
	require.Equal(t, "SAVE_NOT_FOUND", body["error"])

	r := httptest.NewRequest(http.MethodGet, "/api/newsave", nil)
	r.Header.Set("X-Session-Id", "sess1")
	rec := httptest.NewRecorder()
	s.handleNewSave(rec, r)
	body = decode(t, rec)
	require.Equal(t, "save 1", body["saveName"])
}

func TestQuestAcceptEndpointErrors(t *testing.T) {
	s := testServer(t)
	post(s.handleInit, "/init", "sess1", "")

	w := post(s.handleQuestAccept, "/quest/accept", "sess1", `{"questId":"quest_nowhere_0"}`)
	body := decode(t, w)
	require.Equal(t, "NO_QUEST_AVAILABLE", body["error"])

	w = post(s.handleQuestAccept, "/quest/accept", "sess1", `{"questId":""}`)
	body = decode(t, w)
	require.Equal(t, "NO_QUEST_ID", body["error"])
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	require.True(t, rl.Allow("sess:a"))
	require.True(t, rl.Allow("sess:a"))
	require.False(t, rl.Allow("sess:a"))
	require.Greater(t, rl.RetryAfter("sess:a"), 0)

	// Another caller has its own window.
	require.True(t, rl.Allow("sess:b"))

	// An expired window resets.
	rl.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	require.True(t, rl.Allow("sess:a"))
	require.Equal(t, 0, rl.RetryAfter("sess:b"))
}

func TestLimitKey(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/narrate", nil)
	r.RemoteAddr = "9.9.9.9:1234"
	require.Equal(t, "ip:9.9.9.9", limitKey(r))

	r.Header.Set("X-Forwarded-For", "1.2.3.4, 10.0.0.1")
	require.Equal(t, "ip:1.2.3.4", limitKey(r))

	// A session header outranks the address.
	r.Header.Set("X-Session-Id", "sess1")
	require.Equal(t, "sess:sess1", limitKey(r))
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	handler := RateLimitMiddleware(rl, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r := httptest.NewRequest(http.MethodPost, "/narrate", nil)
	r.RemoteAddr = "9.9.9.9:1234"
	r.Header.Set("X-Session-Id", "sess1")
	w := httptest.NewRecorder()
	handler(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	handler(w, r)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.NotEmpty(t, w.Header().Get("Retry-After"))

	// A different session from the same address is not throttled.
	r2 := httptest.NewRequest(http.MethodPost, "/narrate", nil)
	r2.RemoteAddr = "9.9.9.9:1234"
	r2.Header.Set("X-Session-Id", "sess2")
	w = httptest.NewRecorder()
	handler(w, r2)
	require.Equal(t, http.StatusOK, w.Code)
}
