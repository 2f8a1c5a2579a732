// Package reconcile keeps a connected client's view of the chat
// consistent: which rooms it can see, which room is selected, which
// messages belong on screen, and which of those should be promoted to
// read.
package reconcile

import (
	"sync"

	"github.com/allichat/server/internal/models"
)

// Session tracks one connected user's selection state across snapshot
// pushes. All methods are safe for concurrent use.
type Session struct {
	mu sync.Mutex

	user       string
	globalName string

	rooms    []models.Room
	current  string
	messages []models.Message
}

func NewSession(user, globalName string) *Session {
	return &Session{user: user, globalName: globalName}
}

func (s *Session) User() string { return s.user }

// Visible reports whether the user may see the room: a participant, a
// public room, or the global room.
func (s *Session) Visible(room *models.Room) bool {
	return room.HasParticipant(s.user) || room.IsPublic || room.Name == s.globalName
}

// ApplyRooms installs a new room snapshot, filtered to visible rooms.
// On the first non-empty snapshot the earliest-created visible room is
// selected. If the currently selected room disappears from the
// snapshot, selection falls back the same way, or clears when nothing
// is left. Reports whether the selection changed.
func (s *Session) ApplyRooms(rooms []models.Room) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	visible := make([]models.Room, 0, len(rooms))
	for _, r := range rooms {
		if s.Visible(&r) {
			visible = append(visible, r)
		}
	}
	s.rooms = visible

	if s.current != "" {
		for _, r := range visible {
			if r.ID == s.current {
				return false
			}
		}
	}

	// Default selection and the vanished-selection fallback only
	// consider rooms the user actually participates in; a merely
	// visible public or global room never wins by default. Rooms
	// arrive ordered by creation time.
	prev := s.current
	s.current = ""
	for _, r := range visible {
		if r.HasParticipant(s.user) {
			s.current = r.ID
			break
		}
	}
	if s.current != prev {
		s.messages = nil
	}
	return s.current != prev
}

// SelectRoom switches the session to the given room if it is visible.
// Reports whether the selection changed.
func (s *Session) SelectRoom(roomID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if roomID == s.current {
		return false
	}
	for _, r := range s.rooms {
		if r.ID == roomID {
			s.current = roomID
			s.messages = nil
			return true
		}
	}
	return false
}

// ApplyMessages installs a message snapshot for the current room and
// returns the IDs that should be promoted to read: messages from other
// senders not yet marked read. When the user is not a participant of
// the current room the snapshot is forced empty; selecting a public or
// global room does not grant message access without joining it.
func (s *Session) ApplyMessages(roomID string, msgs []models.Message) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if roomID != s.current {
		return nil
	}

	var room *models.Room
	for i := range s.rooms {
		if s.rooms[i].ID == roomID {
			room = &s.rooms[i]
			break
		}
	}
	if room == nil || !room.HasParticipant(s.user) {
		s.messages = nil
		return nil
	}

	s.messages = msgs
	var promote []string
	for _, m := range msgs {
		if m.Sender != s.user && m.Status != models.StatusRead {
			promote = append(promote, m.ID)
		}
	}
	return promote
}

func (s *Session) CurrentRoom() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Session) Rooms() []models.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Room, len(s.rooms))
	copy(out, s.rooms)
	return out
}

func (s *Session) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}
