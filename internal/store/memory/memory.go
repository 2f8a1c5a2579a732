// Package memory is an in-process implementation of the store
// interfaces with the same ordering and mutation semantics as the
// postgres package. It backs the test suites.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/allichat/server/internal/models"
	"github.com/allichat/server/internal/store"
)

type state struct {
	mu sync.Mutex

	users         map[string]*models.User
	rooms         map[string]*models.Room
	messages      map[string]*models.Message
	reactions     map[string]map[string][]string // messageID -> emoji -> reactors
	announcements map[string]*models.Announcement
	subteams      map[string]*models.Subteam
	notifications map[string]*models.Notification
	documents     map[string]map[string]map[string]any // collection -> key -> fields
}

// Store bundles in-memory implementations of every store interface
// over a single shared state.
type Store struct {
	st *state

	Users         *UserStore
	Rooms         *RoomStore
	Messages      *MessageStore
	Announcements *AnnouncementStore
	Subteams      *SubteamStore
	Notifications *NotificationStore
	Documents     *DocumentStore
}

func New() *Store {
	st := &state{
		users:         make(map[string]*models.User),
		rooms:         make(map[string]*models.Room),
		messages:      make(map[string]*models.Message),
		reactions:     make(map[string]map[string][]string),
		announcements: make(map[string]*models.Announcement),
		subteams:      make(map[string]*models.Subteam),
		notifications: make(map[string]*models.Notification),
		documents:     make(map[string]map[string]map[string]any),
	}
	return &Store{
		st:            st,
		Users:         &UserStore{st},
		Rooms:         &RoomStore{st},
		Messages:      &MessageStore{st},
		Announcements: &AnnouncementStore{st},
		Subteams:      &SubteamStore{st},
		Notifications: &NotificationStore{st},
		Documents:     &DocumentStore{st},
	}
}

// --- users ---

type UserStore struct{ st *state }

func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	cp := *u
	s.st.users[u.DisplayName] = &cp
	return nil
}

func (s *UserStore) Get(ctx context.Context, name string) (*models.User, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	u, ok := s.st.users[name]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	users := make([]models.User, 0, len(s.st.users))
	for _, u := range s.st.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].DisplayName < users[j].DisplayName
	})
	return users, nil
}

func (s *UserStore) SetOnline(ctx context.Context, name string, online bool) error {
	return s.apply(name, func(u *models.User) { u.IsOnline = online })
}

func (s *UserStore) SetMuted(ctx context.Context, name string, muted bool) error {
	return s.apply(name, func(u *models.User) { u.IsMuted = muted })
}

func (s *UserStore) SetBanned(ctx context.Context, name string, banned bool) error {
	return s.apply(name, func(u *models.User) { u.IsBanned = banned })
}

func (s *UserStore) UpdateLastSeen(ctx context.Context, name string, t time.Time) error {
	return s.apply(name, func(u *models.User) { u.LastSeen = &t })
}

func (s *UserStore) apply(name string, fn func(*models.User)) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	u, ok := s.st.users[name]
	if !ok {
		return store.ErrNotFound
	}
	fn(u)
	return nil
}

// --- rooms ---

type RoomStore struct{ st *state }

func (s *RoomStore) Create(ctx context.Context, r *models.Room) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	s.st.rooms[r.ID] = copyRoom(r)
	return nil
}

func (s *RoomStore) Get(ctx context.Context, id string) (*models.Room, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	r, ok := s.st.rooms[id]
	if !ok {
		return nil, nil
	}
	return copyRoom(r), nil
}

func (s *RoomStore) VisibleTo(ctx context.Context, user, globalName string) ([]models.Room, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	var rooms []models.Room
	for _, r := range s.st.rooms {
		if r.HasParticipant(user) || r.IsPublic || r.Name == globalName {
			rooms = append(rooms, *copyRoom(r))
		}
	}
	sortRooms(rooms)
	if rooms == nil {
		rooms = []models.Room{}
	}
	return rooms, nil
}

func (s *RoomStore) PublicNotJoined(ctx context.Context, user string) ([]models.Room, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	var rooms []models.Room
	for _, r := range s.st.rooms {
		if r.Type == models.RoomTypeGroup && r.IsPublic && !r.HasParticipant(user) {
			rooms = append(rooms, *copyRoom(r))
		}
	}
	sortRooms(rooms)
	if rooms == nil {
		rooms = []models.Room{}
	}
	return rooms, nil
}

func (s *RoomStore) FindDirect(ctx context.Context, a, b string) (*models.Room, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	for _, r := range s.st.rooms {
		if r.Type == models.RoomTypeDirect && r.HasParticipant(a) && r.HasParticipant(b) {
			return copyRoom(r), nil
		}
	}
	return nil, nil
}

func (s *RoomStore) AddParticipant(ctx context.Context, roomID, user string) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	r, ok := s.st.rooms[roomID]
	if !ok {
		return store.ErrNotFound
	}
	if !r.HasParticipant(user) {
		r.Participants = append(r.Participants, user)
	}
	return nil
}

func (s *RoomStore) RemoveParticipantOrDelete(ctx context.Context, roomID, user string) (bool, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	r, ok := s.st.rooms[roomID]
	if !ok {
		return false, store.ErrNotFound
	}
	updated := r.Participants[:0]
	for _, p := range r.Participants {
		if p != user {
			updated = append(updated, p)
		}
	}
	r.Participants = updated
	if r.CreatedBy == user && len(updated) == 0 {
		delete(s.st.rooms, roomID)
		return true, nil
	}
	return false, nil
}

func copyRoom(r *models.Room) *models.Room {
	cp := *r
	cp.Participants = append([]string(nil), r.Participants...)
	return &cp
}

func sortRooms(rooms []models.Room) {
	sort.Slice(rooms, func(i, j int) bool {
		if !rooms[i].CreatedAt.Equal(rooms[j].CreatedAt) {
			return rooms[i].CreatedAt.Before(rooms[j].CreatedAt)
		}
		return rooms[i].ID < rooms[j].ID
	})
}

// --- messages ---

type MessageStore struct{ st *state }

func (s *MessageStore) Create(ctx context.Context, m *models.Message) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	cp := *m
	s.st.messages[m.ID] = &cp
	return nil
}

func (s *MessageStore) Get(ctx context.Context, id string) (*models.Message, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	m, ok := s.st.messages[id]
	if !ok {
		return nil, nil
	}
	return s.copyMessage(m), nil
}

func (s *MessageStore) ListByRoom(ctx context.Context, roomID string) ([]models.Message, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	var messages []models.Message
	for _, m := range s.st.messages {
		if m.RoomID == roomID {
			messages = append(messages, *s.copyMessage(m))
		}
	}
	sort.Slice(messages, func(i, j int) bool {
		if !messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].CreatedAt.Before(messages[j].CreatedAt)
		}
		return messages[i].ID < messages[j].ID
	})
	if messages == nil {
		messages = []models.Message{}
	}
	return messages, nil
}

func (s *MessageStore) UpdateContent(ctx context.Context, id, content string, editedAt time.Time) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	m, ok := s.st.messages[id]
	if !ok {
		return store.ErrNotFound
	}
	m.Content = content
	m.Edited = true
	m.EditedAt = &editedAt
	return nil
}

func (s *MessageStore) SetStatus(ctx context.Context, id, status string) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	m, ok := s.st.messages[id]
	if !ok {
		return store.ErrNotFound
	}
	m.Status = status
	return nil
}

func (s *MessageStore) Delete(ctx context.Context, id string) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	delete(s.st.messages, id)
	delete(s.st.reactions, id)
	return nil
}

func (s *MessageStore) AddReaction(ctx context.Context, messageID, emoji, reactor string) (bool, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if _, ok := s.st.messages[messageID]; !ok {
		return false, store.ErrNotFound
	}
	byEmoji := s.st.reactions[messageID]
	if byEmoji == nil {
		byEmoji = make(map[string][]string)
		s.st.reactions[messageID] = byEmoji
	}
	for _, r := range byEmoji[emoji] {
		if r == reactor {
			return false, nil
		}
	}
	byEmoji[emoji] = append(byEmoji[emoji], reactor)
	return true, nil
}

func (s *MessageStore) RemoveReaction(ctx context.Context, messageID, emoji, reactor string) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	byEmoji := s.st.reactions[messageID]
	if byEmoji == nil {
		return nil
	}
	updated := byEmoji[emoji][:0]
	for _, r := range byEmoji[emoji] {
		if r != reactor {
			updated = append(updated, r)
		}
	}
	if len(updated) == 0 {
		delete(byEmoji, emoji)
	} else {
		byEmoji[emoji] = updated
	}
	return nil
}

func (s *MessageStore) copyMessage(m *models.Message) *models.Message {
	cp := *m
	cp.Reactions = nil
	if byEmoji, ok := s.st.reactions[m.ID]; ok && len(byEmoji) > 0 {
		cp.Reactions = make(map[string][]string, len(byEmoji))
		for emoji, reactors := range byEmoji {
			cp.Reactions[emoji] = append([]string(nil), reactors...)
		}
	}
	return &cp
}

// --- announcements ---

type AnnouncementStore struct{ st *state }

func (s *AnnouncementStore) Create(ctx context.Context, a *models.Announcement) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	cp := *a
	s.st.announcements[a.ID] = &cp
	return nil
}

func (s *AnnouncementStore) List(ctx context.Context) ([]models.Announcement, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	var items []models.Announcement
	for _, a := range s.st.announcements {
		items = append(items, *a)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if items == nil {
		items = []models.Announcement{}
	}
	return items, nil
}

func (s *AnnouncementStore) Delete(ctx context.Context, id string) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	delete(s.st.announcements, id)
	return nil
}

// --- subteams ---

type SubteamStore struct{ st *state }

func (s *SubteamStore) Create(ctx context.Context, st *models.Subteam) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	s.st.subteams[st.ID] = copySubteam(st)
	return nil
}

func (s *SubteamStore) Get(ctx context.Context, id string) (*models.Subteam, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	st, ok := s.st.subteams[id]
	if !ok {
		return nil, nil
	}
	return copySubteam(st), nil
}

func (s *SubteamStore) ListByMember(ctx context.Context, member string) ([]models.Subteam, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	var subteams []models.Subteam
	for _, st := range s.st.subteams {
		if st.HasMember(member) {
			subteams = append(subteams, *copySubteam(st))
		}
	}
	sort.Slice(subteams, func(i, j int) bool {
		if !subteams[i].CreatedAt.Equal(subteams[j].CreatedAt) {
			return subteams[i].CreatedAt.Before(subteams[j].CreatedAt)
		}
		return subteams[i].ID < subteams[j].ID
	})
	if subteams == nil {
		subteams = []models.Subteam{}
	}
	return subteams, nil
}

func (s *SubteamStore) Update(ctx context.Context, id, name, description, color string) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	st, ok := s.st.subteams[id]
	if !ok {
		return store.ErrNotFound
	}
	st.Name = name
	st.Description = description
	st.Color = color
	return nil
}

func (s *SubteamStore) AddMember(ctx context.Context, id, member string) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	st, ok := s.st.subteams[id]
	if !ok {
		return store.ErrNotFound
	}
	if !st.HasMember(member) {
		st.Members = append(st.Members, member)
	}
	return nil
}

func (s *SubteamStore) Delete(ctx context.Context, id string) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	delete(s.st.subteams, id)
	return nil
}

func copySubteam(st *models.Subteam) *models.Subteam {
	cp := *st
	cp.Members = append([]string(nil), st.Members...)
	return &cp
}

// --- notifications ---

type NotificationStore struct{ st *state }

func (s *NotificationStore) Create(ctx context.Context, n *models.Notification) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	cp := *n
	s.st.notifications[n.ID] = &cp
	return nil
}

func (s *NotificationStore) UnreadFor(ctx context.Context, user string) ([]models.Notification, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	var items []models.Notification
	for _, n := range s.st.notifications {
		if n.ToUser == user && !n.Read {
			items = append(items, *n)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if items == nil {
		items = []models.Notification{}
	}
	return items, nil
}

func (s *NotificationStore) MarkRead(ctx context.Context, id string) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	n, ok := s.st.notifications[id]
	if !ok {
		return store.ErrNotFound
	}
	n.Read = true
	return nil
}

// --- documents ---

type DocumentStore struct{ st *state }

func (s *DocumentStore) Put(ctx context.Context, collection, key string, fields map[string]any) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	coll := s.st.documents[collection]
	if coll == nil {
		coll = make(map[string]map[string]any)
		s.st.documents[collection] = coll
	}
	cp := make(map[string]any, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	coll[key] = cp
	return nil
}

// Document returns the stored fields for a key, for test assertions.
func (s *DocumentStore) Document(collection, key string) (map[string]any, bool) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	fields, ok := s.st.documents[collection][key]
	return fields, ok
}

// Count returns the number of distinct stored documents.
func (s *DocumentStore) Count() int {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	n := 0
	for _, coll := range s.st.documents {
		n += len(coll)
	}
	return n
}
