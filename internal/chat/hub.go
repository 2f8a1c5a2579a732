// Package chat carries the live side of the application: one WebSocket
// connection per signed-in user, a hub that fans collection-change
// invalidations out as fresh snapshots, and the wire protocol between
// them.
package chat

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/allichat/server/internal/redisc"
	"github.com/allichat/server/internal/service"
	"github.com/allichat/server/internal/store"
)

// Collection names used on the invalidation channel.
const (
	colRooms         = "rooms"
	colMessages      = "messages"
	colUsers         = "users"
	colAnnouncements = "announcements"
	colSubteams      = "subteams"
	colNotifications = "notifications"
	colTyping        = "typing"
)

// Publisher turns service change callbacks into Redis invalidations so
// every hub instance, not just the local one, refreshes its clients.
type Publisher struct {
	rdb *redis.Client
}

func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{rdb: rdb}
}

var _ service.Notifier = (*Publisher)(nil)

func (p *Publisher) publish(collection string, payload []byte) {
	if err := redisc.PublishInvalidate(p.rdb, collection, payload); err != nil {
		slog.Error("publishing invalidation", "collection", collection, "error", err)
	}
}

func (p *Publisher) MessagesChanged(roomID string) { p.publish(colMessages, []byte(roomID)) }

func (p *Publisher) RoomsChanged() { p.publish(colRooms, nil) }

func (p *Publisher) UsersChanged() { p.publish(colUsers, nil) }

func (p *Publisher) AnnouncementsChanged() { p.publish(colAnnouncements, nil) }

func (p *Publisher) SubteamsChanged() { p.publish(colSubteams, nil) }

func (p *Publisher) NotificationsChanged() { p.publish(colNotifications, nil) }

func (p *Publisher) TypingChanged(roomID string) { p.publish(colTyping, []byte(roomID)) }

type invalidation struct {
	collection string
	payload    []byte
}

// Hub owns the set of connected clients and translates invalidations
// into per-client snapshot pushes. Snapshot queries run through the
// same services the REST handlers use, so a client only ever sees what
// its user may see.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	invalidate chan invalidation

	rooms         *service.RoomService
	messages      *service.MessageService
	subteams      *service.SubteamService
	notifications *service.NotificationService
	users         store.UserStore
	announcements store.AnnouncementStore

	rdb       *redis.Client
	publisher *Publisher
	jwtSecret string
}

func NewHub(
	rooms *service.RoomService,
	messages *service.MessageService,
	subteams *service.SubteamService,
	notifications *service.NotificationService,
	users store.UserStore,
	announcements store.AnnouncementStore,
	rdb *redis.Client,
	jwtSecret string,
) *Hub {
	return &Hub{
		clients:       make(map[*Client]bool),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		invalidate:    make(chan invalidation, 64),
		rooms:         rooms,
		messages:      messages,
		subteams:      subteams,
		notifications: notifications,
		users:         users,
		announcements: announcements,
		rdb:           rdb,
		publisher:     NewPublisher(rdb),
		jwtSecret:     jwtSecret,
	}
}

// Run is the hub's event loop. It must run in its own goroutine before
// any client connects.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			slog.Info("client connected", "user", client.name)
			h.pushAll(client)
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				slog.Info("client disconnected", "user", client.name)
			}
		case inv := <-h.invalidate:
			h.handleInvalidation(inv)
		}
	}
}

// Listen subscribes to the Redis invalidation channels and feeds the
// hub loop. Blocks; run in a goroutine.
func (h *Hub) Listen() {
	redisc.SubscribeInvalidations(h.rdb, func(collection string, payload []byte) {
		h.invalidate <- invalidation{collection: collection, payload: payload}
	})
}

func (h *Hub) handleInvalidation(inv invalidation) {
	switch inv.collection {
	case colRooms:
		for client := range h.clients {
			h.pushRooms(client)
			h.pushMessages(client)
		}
	case colMessages:
		roomID := string(inv.payload)
		for client := range h.clients {
			if client.session.CurrentRoom() == roomID {
				h.pushMessages(client)
			}
		}
	case colUsers:
		for client := range h.clients {
			h.pushUsers(client)
		}
	case colAnnouncements:
		for client := range h.clients {
			h.pushAnnouncements(client)
		}
	case colSubteams:
		for client := range h.clients {
			h.pushSubteams(client)
		}
	case colNotifications:
		for client := range h.clients {
			h.pushNotifications(client)
		}
	case colTyping:
		roomID := string(inv.payload)
		for client := range h.clients {
			if client.session.CurrentRoom() == roomID {
				h.pushTyping(client, roomID)
			}
		}
	}
}

func (h *Hub) pushAll(c *Client) {
	h.pushRooms(c)
	h.pushMessages(c)
	h.pushUsers(c)
	h.pushAnnouncements(c)
	h.pushSubteams(c)
	h.pushNotifications(c)
	if roomID := c.session.CurrentRoom(); roomID != "" {
		h.pushTyping(c, roomID)
	}
}

func (h *Hub) pushRooms(c *Client) {
	ctx := context.Background()
	rooms, err := h.rooms.VisibleTo(ctx, c.name)
	if err != nil {
		slog.Error("loading rooms snapshot", "user", c.name, "error", err)
		return
	}
	c.session.ApplyRooms(rooms)
	c.enqueue(NewEvent(EvtSnapshotRooms, roomsSnapshot{
		Rooms:    c.session.Rooms(),
		Selected: c.session.CurrentRoom(),
	}))
}

func (h *Hub) pushMessages(c *Client) {
	roomID := c.session.CurrentRoom()
	if roomID == "" {
		c.enqueue(NewEvent(EvtSnapshotMessages, messagesSnapshot{RoomID: "", Messages: []any{}}))
		return
	}
	ctx := context.Background()
	msgs, err := h.messages.ListByRoom(ctx, roomID)
	if err != nil {
		slog.Error("loading messages snapshot", "user", c.name, "room", roomID, "error", err)
		return
	}
	promote := c.session.ApplyMessages(roomID, msgs)
	c.enqueue(NewEvent(EvtSnapshotMessages, messagesSnapshot{
		RoomID:   roomID,
		Messages: c.session.Messages(),
	}))
	if len(promote) > 0 {
		h.messages.PromoteRead(ctx, roomID, promote)
	}
}

func (h *Hub) pushUsers(c *Client) {
	users, err := h.users.List(context.Background())
	if err != nil {
		slog.Error("loading users snapshot", "error", err)
		return
	}
	c.enqueue(NewEvent(EvtSnapshotUsers, users))
}

func (h *Hub) pushAnnouncements(c *Client) {
	anns, err := h.announcements.List(context.Background())
	if err != nil {
		slog.Error("loading announcements snapshot", "error", err)
		return
	}
	c.enqueue(NewEvent(EvtSnapshotAnnouncements, anns))
}

func (h *Hub) pushSubteams(c *Client) {
	teams, err := h.subteams.ListFor(context.Background(), c.name)
	if err != nil {
		slog.Error("loading subteams snapshot", "user", c.name, "error", err)
		return
	}
	c.enqueue(NewEvent(EvtSnapshotSubteams, teams))
}

func (h *Hub) pushNotifications(c *Client) {
	notes, err := h.notifications.UnreadFor(context.Background(), c.name)
	if err != nil {
		slog.Error("loading notifications snapshot", "user", c.name, "error", err)
		return
	}
	c.enqueue(NewEvent(EvtSnapshotNotifications, notes))
}

func (h *Hub) pushTyping(c *Client, roomID string) {
	names, err := redisc.GetTypingUsers(h.rdb, roomID)
	if err != nil {
		slog.Error("loading typing state", "room", roomID, "error", err)
		return
	}
	// The typist does not need their own indicator.
	filtered := names[:0]
	for _, n := range names {
		if n != c.name {
			filtered = append(filtered, n)
		}
	}
	c.enqueue(NewEvent(EvtTypingUpdate, typingUpdate{RoomID: roomID, Users: filtered}))
}
