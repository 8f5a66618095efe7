package session

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"driftworld/internal/state"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func TestResolveCreatesAndReuses(t *testing.T) {
	s := NewStore()

	sess, id := s.Resolve("", 42)
	require.NotEmpty(t, id)
	require.Equal(t, id, sess.ID)
	require.Equal(t, uint32(42), sess.State().RNGSeed)
	require.Equal(t, 1, s.Count())

	again, id2 := s.Resolve(id, 99)
	require.Equal(t, id, id2)
	require.Same(t, sess, again)
	require.Equal(t, 1, s.Count())

	// An unknown id is adopted rather than replaced.
	_, id3 := s.Resolve("client-chosen", 7)
	require.Equal(t, "client-chosen", id3)
	require.Equal(t, 2, s.Count())
}

func TestResetReplacesState(t *testing.T) {
	s := NewStore()
	sess, id := s.Resolve("", 1)
	sess.Apply(func(gs *state.GameState) *state.GameState {
		next, _ := gs.Clone()
		next.TurnCounter = 5
		return next
	})

	fresh := s.Reset(id, 2)
	require.Equal(t, uint64(0), fresh.State().TurnCounter)
	require.Equal(t, uint32(2), fresh.State().RNGSeed)
	require.Equal(t, uint64(0), fresh.Turns())
}

func TestApplyCountsTurnsUpdateDoesNot(t *testing.T) {
	s := NewStore()
	sess, _ := s.Resolve("", 1)

	sess.Apply(func(gs *state.GameState) *state.GameState {
		next, _ := gs.Clone()
		next.TurnCounter++
		return next
	})
	require.Equal(t, uint64(1), sess.Turns())
	require.Equal(t, uint64(1), sess.State().TurnCounter)

	// A nil return keeps the old state and the turn count.
	sess.Apply(func(gs *state.GameState) *state.GameState { return nil })
	require.Equal(t, uint64(1), sess.Turns())

	sess.Update(func(gs *state.GameState) *state.GameState {
		next, _ := gs.Clone()
		return next
	})
	require.Equal(t, uint64(1), sess.Turns())
}

func TestSanitizeName(t *testing.T) {
	got, ok := SanitizeName("my save")
	require.True(t, ok)
	require.Equal(t, "my save", got)

	got, ok = SanitizeName("  ../../etc/passwd!  ")
	require.True(t, ok)
	require.Equal(t, "etcpasswd", got)

	_, ok = SanitizeName("!!!")
	require.False(t, ok)

	long := strings.Repeat("a", 40)
	got, ok = SanitizeName(long)
	require.True(t, ok)
	require.Len(t, got, 30)
}

func newSaves(t *testing.T) *Saves {
	t.Helper()
	s := NewSaves(t.TempDir())
	s.now = func() time.Time { return testNow }
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newSaves(t)
	gs := state.New(7, testNow)
	gs.Player.Inventory = []state.Item{{ID: "i1", Name: "torch"}}

	name, serr := s.Save("sess1", "camp", gs)
	require.Nil(t, serr)
	require.Equal(t, "camp", name)

	loaded, serr := s.Load("sess1", "camp")
	require.Nil(t, serr)
	require.Equal(t, "sess1", loaded.SessionID)
	require.Equal(t, "camp", loaded.SaveName)
	require.Equal(t, testNow.UTC().Format(time.RFC3339), loaded.Timestamp)
	require.Equal(t, uint32(7), loaded.GameState.RNGSeed)
	require.Equal(t, "torch", loaded.GameState.Player.Inventory[0].Name)
}

func TestSaveDuplicateNameSuffixes(t *testing.T) {
	s := newSaves(t)
	gs := state.New(1, testNow)

	name, serr := s.Save("sess1", "one", gs)
	require.Nil(t, serr)
	require.Equal(t, "one", name)

	name, serr = s.Save("sess1", "one", gs)
	require.Nil(t, serr)
	require.Equal(t, "one (1)", name)

	name, serr = s.Save("sess1", "one", gs)
	require.Nil(t, serr)
	require.Equal(t, "one (2)", name)
}

func TestSaveSlotLimit(t *testing.T) {
	s := newSaves(t)
	gs := state.New(1, testNow)

	for i := 0; i < 5; i++ {
		_, serr := s.Save("sess1", "slot "+string(rune('a'+i)), gs)
		require.Nil(t, serr)
	}
	_, serr := s.Save("sess1", "overflow", gs)
	require.NotNil(t, serr)
	require.Equal(t, ErrSaveLimit, serr.Code)

	// Another session is unaffected.
	_, serr = s.Save("sess2", "slot", gs)
	require.Nil(t, serr)
}

func TestSaveErrors(t *testing.T) {
	s := newSaves(t)
	gs := state.New(1, testNow)

	_, serr := s.Save("", "x", gs)
	require.Equal(t, ErrMissingSessionID, serr.Code)

	_, serr = s.Save("sess1", "x", nil)
	require.Equal(t, ErrInvalidGameState, serr.Code)

	_, serr = s.Save("sess1", "###", gs)
	require.Equal(t, ErrInvalidSaveName, serr.Code)

	_, lerr := s.Load("sess1", "missing")
	require.Equal(t, ErrSaveNotFound, lerr.Code)
}

func TestListAndSuggestName(t *testing.T) {
	s := newSaves(t)
	gs := state.New(1, testNow)

	names, serr := s.List("sess1")
	require.Nil(t, serr)
	require.Empty(t, names)

	suggested, serr := s.SuggestName("sess1")
	require.Nil(t, serr)
	require.Equal(t, "save 1", suggested)

	_, serr = s.Save("sess1", "save 1", gs)
	require.Nil(t, serr)
	suggested, serr = s.SuggestName("sess1")
	require.Nil(t, serr)
	require.Equal(t, "save 2", suggested)

	names, serr = s.List("sess1")
	require.Nil(t, serr)
	require.Equal(t, []string{"save 1"}, names)
}
