package reconcile

import (
	"sync"
	"time"
)

// TypingTracker debounces a user's keystrokes into typing on/off
// signals. Each non-empty keystroke asserts typing and re-arms an idle
// timer; when the timer fires with no further keystrokes, or when the
// draft is cleared, typing is retracted.
type TypingTracker struct {
	mu     sync.Mutex
	idle   time.Duration
	set    func(roomID string, typing bool)
	timers map[string]*time.Timer
	active map[string]bool
}

// NewTypingTracker builds a tracker that calls set on typing state
// transitions. idle is how long after the last keystroke typing is
// retracted.
func NewTypingTracker(idle time.Duration, set func(roomID string, typing bool)) *TypingTracker {
	return &TypingTracker{
		idle:   idle,
		set:    set,
		timers: make(map[string]*time.Timer),
		active: make(map[string]bool),
	}
}

// Keystroke records the current draft for a room. An empty draft
// retracts typing immediately. Every non-empty keystroke re-issues the
// typing write: the store-side flag carries a TTL, so a long typing
// run needs the refresh to keep the indicator alive.
func (t *TypingTracker) Keystroke(roomID, draft string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if draft == "" {
		t.retractLocked(roomID)
		return
	}

	t.active[roomID] = true
	t.set(roomID, true)
	if timer, ok := t.timers[roomID]; ok {
		timer.Stop()
	}
	t.timers[roomID] = time.AfterFunc(t.idle, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		t.retractLocked(roomID)
	})
}

// Stop retracts typing in every room and cancels pending timers. Used
// on disconnect.
func (t *TypingTracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for roomID := range t.active {
		t.retractLocked(roomID)
	}
	for roomID, timer := range t.timers {
		timer.Stop()
		delete(t.timers, roomID)
	}
}

func (t *TypingTracker) retractLocked(roomID string) {
	if timer, ok := t.timers[roomID]; ok {
		timer.Stop()
		delete(t.timers, roomID)
	}
	if t.active[roomID] {
		delete(t.active, roomID)
		t.set(roomID, false)
	}
}
