package chat

import (
	"encoding/json"
	"log/slog"
)

// Client to server event types.
const (
	EvtRoomSelect     = "room.select"
	EvtRoomJoin       = "room.join"
	EvtRoomLeave      = "room.leave"
	EvtMessageSend    = "message.send"
	EvtMessageEdit    = "message.edit"
	EvtMessageDelete  = "message.delete"
	EvtReactionToggle = "reaction.toggle"
	EvtTypingKey      = "typing.keystroke"
	EvtPing           = "ping"
)

// Server to client event types.
const (
	EvtSnapshotRooms         = "snapshot.rooms"
	EvtSnapshotMessages      = "snapshot.messages"
	EvtSnapshotUsers         = "snapshot.users"
	EvtSnapshotAnnouncements = "snapshot.announcements"
	EvtSnapshotSubteams      = "snapshot.subteams"
	EvtSnapshotNotifications = "snapshot.notifications"
	EvtTypingUpdate          = "typing.update"
	EvtError                 = "error"
	EvtPong                  = "pong"
)

type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

func NewEvent(typ string, data any) []byte {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			slog.Error("marshaling event data", "type", typ, "error", err)
			return NewEvent(EvtError, errorPayload{Message: "internal error"})
		}
		raw = b
	}
	b, err := json.Marshal(Event{Type: typ, Data: raw})
	if err != nil {
		slog.Error("marshaling event", "type", typ, "error", err)
		return []byte(`{"type":"error","data":{"message":"internal error"}}`)
	}
	return b
}

type roomRef struct {
	RoomID string `json:"room_id"`
}

type sendPayload struct {
	RoomID  string `json:"room_id"`
	Content string `json:"content"`
	Image   string `json:"image,omitempty"`
	ReplyTo string `json:"reply_to,omitempty"`
}

type editPayload struct {
	MessageID string `json:"message_id"`
	Content   string `json:"content"`
}

type messageRef struct {
	MessageID string `json:"message_id"`
}

type reactionPayload struct {
	MessageID string `json:"message_id"`
	Emoji     string `json:"emoji"`
}

type typingPayload struct {
	RoomID string `json:"room_id"`
	Draft  string `json:"draft"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type roomsSnapshot struct {
	Rooms    any    `json:"rooms"`
	Selected string `json:"selected"`
}

type messagesSnapshot struct {
	RoomID   string `json:"room_id"`
	Messages any    `json:"messages"`
}

type typingUpdate struct {
	RoomID string   `json:"room_id"`
	Users  []string `json:"users"`
}
