package action

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFallbackGrammar(t *testing.T) {
	cases := []struct {
		text   string
		kind   Kind
		verb   string
		target string
		dir    string
	}{
		{"look", KindTrivial, "look", "", ""},
		{"Look Around", KindTrivial, "look", "", ""},
		{"inventory", KindTrivial, "inventory", "", ""},
		{"i", KindTrivial, "inventory", "", ""},
		{"take the rope", KindTake, "take", "rope", ""},
		{"pick up lantern", KindTake, "take", "lantern", ""},
		{"drop the dagger", KindDrop, "drop", "dagger", ""},
		{"go north", KindMove, "move", "", "north"},
		{"n", KindMove, "move", "", "north"},
		{"head W", KindMove, "move", "", "west"},
	}
	for _, tc := range cases {
		in := Fallback(tc.text)
		require.Equal(t, "fallback", in.Source, tc.text)
		require.Equal(t, 0.6, in.Confidence, tc.text)
		require.Equal(t, tc.kind, in.Primary.Kind, tc.text)
		require.Equal(t, tc.verb, in.Primary.Verb, tc.text)
		require.Equal(t, tc.target, in.Primary.Target, tc.text)
		require.Equal(t, tc.dir, in.Primary.Dir, tc.text)
	}
}

func TestFallbackUnparsedIsNoop(t *testing.T) {
	for _, text := range []string{"dance wildly", "go nowhere", ""} {
		in := Fallback(text)
		require.Equal(t, "noop", in.Source, text)
		require.Equal(t, 0.0, in.Confidence, text)
		require.Equal(t, "wait", in.Primary.Verb, text)
	}
}

func TestClassify(t *testing.T) {
	a := Classify("go", "", "north")
	require.Equal(t, KindMove, a.Kind)
	require.Equal(t, "north", a.Dir)

	// Direction falls back to the target slot.
	a = Classify("walk", "east", "")
	require.Equal(t, KindMove, a.Kind)
	require.Equal(t, "east", a.Dir)

	a = Classify("grab", "rope", "")
	require.Equal(t, KindTake, a.Kind)
	require.Equal(t, "rope", a.Target)

	a = Classify("accept_quest", "", "")
	require.Equal(t, KindQuest, a.Kind)
	require.Equal(t, "accept_quest", a.QuestKind)

	a = Classify("attack", "guard", "")
	require.Equal(t, KindShallow, a.Kind)
	require.NotEmpty(t, a.Note)

	a = Classify("yodel", "", "")
	require.Equal(t, KindUnknown, a.Kind)
}

func TestIntentSummary(t *testing.T) {
	in := Fallback("go north")
	require.Equal(t, "move north", in.Summary())

	in = Fallback("take the rope")
	require.Equal(t, "take rope", in.Summary())

	var none *Intent
	require.Equal(t, "noop", none.Summary())
}
