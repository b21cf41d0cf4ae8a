package objectmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpStateReflectsRegisteredNodes(t *testing.T) {
	m := New[string](newRoot())
	oidA, err := m.Add(&fakeNode{}, Path{"", "a"}, false)
	require.NoError(t, err)
	oidB, err := m.Add(&fakeNode{}, Path{"", "b"}, false)
	require.NoError(t, err)
	require.NoError(t, m.Connect(oidA, oidB, "owns"))

	state := m.DumpState()

	assert.Equal(t, []string{"", "a"}, state.IDToPath[int64(oidA)])
	assert.ElementsMatch(t, []int64{int64(oidA), int64(oidB)}, func() []int64 {
		var out []int64
		for id := range state.IDToPath {
			out = append(out, id)
		}
		return out
	}())

	refSet, ok := state.ReferenceSets["owns"]
	require.True(t, ok)
	assert.Equal(t, []int64{int64(oidB)}, refSet.Src2Tgt[int64(oidA)])
}
