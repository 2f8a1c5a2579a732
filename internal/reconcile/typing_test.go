package reconcile

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type typingLog struct {
	mu      sync.Mutex
	entries []bool
}

func (l *typingLog) record(roomID string, typing bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, typing)
}

func (l *typingLog) snapshot() []bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]bool, len(l.entries))
	copy(out, l.entries)
	return out
}

// Every keystroke in a burst re-issues the typing write (keeping the
// store-side TTL fresh), and only after the idle window passes with no
// further keystrokes does the single retract fire.
func TestKeystrokesRefreshUntilIdle(t *testing.T) {
	log := &typingLog{}
	tr := NewTypingTracker(120*time.Millisecond, log.record)
	defer tr.Stop()

	tr.Keystroke("room-1", "h")
	time.Sleep(40 * time.Millisecond)
	tr.Keystroke("room-1", "he")
	time.Sleep(40 * time.Millisecond)
	tr.Keystroke("room-1", "hel")

	// Still inside the idle window: one write per keystroke, all
	// asserting typing, no retract yet.
	assert.Equal(t, []bool{true, true, true}, log.snapshot(),
		"each keystroke must refresh the typing flag")

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, []bool{true, true, true, false}, log.snapshot(),
		"typing must retract exactly once after the idle window")
}

func TestEmptyDraftRetractsImmediately(t *testing.T) {
	log := &typingLog{}
	tr := NewTypingTracker(time.Hour, log.record)
	defer tr.Stop()

	tr.Keystroke("room-1", "draft")
	tr.Keystroke("room-1", "")

	assert.Equal(t, []bool{true, false}, log.snapshot())
}

func TestRetractIsNotRepeated(t *testing.T) {
	log := &typingLog{}
	tr := NewTypingTracker(time.Hour, log.record)

	tr.Keystroke("room-1", "x")
	tr.Keystroke("room-1", "")
	tr.Keystroke("room-1", "")
	tr.Stop()

	assert.Equal(t, []bool{true, false}, log.snapshot())
}

func TestStopRetractsEveryRoom(t *testing.T) {
	var mu sync.Mutex
	state := map[string]bool{}
	tr := NewTypingTracker(time.Hour, func(roomID string, typing bool) {
		mu.Lock()
		defer mu.Unlock()
		state[roomID] = typing
	})

	tr.Keystroke("room-1", "a")
	tr.Keystroke("room-2", "b")
	tr.Stop()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, state, 2)
	assert.False(t, state["room-1"])
	assert.False(t, state["room-2"])
}
