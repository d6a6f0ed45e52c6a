package replacer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Mirrors spec.md §8 scenario 5: K=2, pool=7, frames 1..=6 created.
func TestLRUKReplacer_ScenarioFive(t *testing.T) {
	r := NewLRUKReplacer(2)

	for f := FrameId(1); f <= 6; f++ {
		r.RecordAccess(f)
	}
	for f := FrameId(1); f <= 5; f++ {
		r.SetEvictable(f, true)
	}
	r.SetEvictable(6, false)

	r.RecordAccess(1)
	require.Equal(t, 5, r.Size())

	var victims []FrameId
	for i := 0; i < 3; i++ {
		f, ok := r.Evict()
		require.True(t, ok)
		victims = append(victims, f)
	}
	require.Equal(t, []FrameId{2, 3, 4}, victims)
}

func TestLRUKReplacer_FullHistoryBeatsPartial(t *testing.T) {
	r := NewLRUKReplacer(2)

	// frame 1 gets two accesses (finite K-distance).
	r.RecordAccess(1)
	r.RecordAccess(1)
	r.SetEvictable(1, true)

	// frame 2 gets only one access (infinite K-distance) after frame 1 is
	// fully warmed up; it must still be evicted first.
	r.RecordAccess(2)
	r.SetEvictable(2, true)

	f, ok := r.Evict()
	require.True(t, ok)
	require.Equal(t, FrameId(2), f)

	f, ok = r.Evict()
	require.True(t, ok)
	require.Equal(t, FrameId(1), f)
}

func TestLRUKReplacer_RemoveAndNoVictim(t *testing.T) {
	r := NewLRUKReplacer(2)
	r.RecordAccess(1)
	r.SetEvictable(1, true)
	r.Remove(1)

	_, ok := r.Evict()
	require.False(t, ok)
	require.Equal(t, 0, r.Size())
}

func TestLRUKReplacer_NonEvictableNotChosen(t *testing.T) {
	r := NewLRUKReplacer(2)
	r.RecordAccess(1)
	r.SetEvictable(1, false)

	_, ok := r.Evict()
	require.False(t, ok)
}
