package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/allichat/server/internal/auth"
	"github.com/allichat/server/internal/reconcile"
	"github.com/allichat/server/internal/redisc"
	"github.com/allichat/server/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 * 1024 * 1024

	typingIdle = 3 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	name    string
	session *reconcile.Session
	typing  *reconcile.TypingTracker

	// Inbound events above this rate are rejected rather than queued.
	limiter *rate.Limiter
}

// enqueue hands a frame to the write pump, dropping it if the client's
// buffer is full rather than stalling the hub.
func (c *Client) enqueue(frame []byte) {
	select {
	case c.send <- frame:
	default:
		slog.Warn("dropping frame for slow client", "user", c.name)
	}
}

func (c *Client) readPump() {
	defer func() {
		c.typing.Stop()
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		if err := redisc.RefreshPresence(c.hub.rdb, c.name); err != nil {
			slog.Warn("refreshing presence", "user", c.name, "error", err)
		}
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("websocket read error", "user", c.name, "error", err)
			}
			return
		}
		if !c.limiter.Allow() {
			c.enqueue(NewEvent(EvtError, errorPayload{Message: "slow down"}))
			continue
		}
		var evt Event
		if err := json.Unmarshal(raw, &evt); err != nil {
			c.enqueue(NewEvent(EvtError, errorPayload{Message: "malformed event"}))
			continue
		}
		c.dispatch(&evt)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) dispatch(evt *Event) {
	ctx := context.Background()
	switch evt.Type {
	case EvtPing:
		c.enqueue(NewEvent(EvtPong, nil))

	case EvtRoomSelect:
		var p roomRef
		if err := json.Unmarshal(evt.Data, &p); err != nil {
			c.fail("malformed event")
			return
		}
		if c.session.SelectRoom(p.RoomID) {
			c.hub.pushMessages(c)
			c.hub.pushTyping(c, p.RoomID)
		}

	case EvtMessageSend:
		var p sendPayload
		if err := json.Unmarshal(evt.Data, &p); err != nil {
			c.fail("malformed event")
			return
		}
		_, err := c.hub.messages.Send(ctx, c.name, service.SendInput{
			RoomID:    p.RoomID,
			Content:   p.Content,
			Image:     p.Image,
			ReplyToID: p.ReplyTo,
		})
		if err != nil {
			c.fail(err.Error())
			return
		}
		c.typing.Keystroke(p.RoomID, "")

	case EvtMessageEdit:
		var p editPayload
		if err := json.Unmarshal(evt.Data, &p); err != nil {
			c.fail("malformed event")
			return
		}
		if err := c.hub.messages.Edit(ctx, c.name, p.MessageID, p.Content); err != nil {
			c.fail(err.Error())
		}

	case EvtMessageDelete:
		var p messageRef
		if err := json.Unmarshal(evt.Data, &p); err != nil {
			c.fail("malformed event")
			return
		}
		if err := c.hub.messages.Delete(ctx, c.name, p.MessageID); err != nil {
			c.fail(err.Error())
		}

	case EvtReactionToggle:
		var p reactionPayload
		if err := json.Unmarshal(evt.Data, &p); err != nil {
			c.fail("malformed event")
			return
		}
		if err := c.hub.messages.ToggleReaction(ctx, c.name, p.MessageID, p.Emoji); err != nil {
			c.fail(err.Error())
		}

	case EvtRoomJoin:
		var p roomRef
		if err := json.Unmarshal(evt.Data, &p); err != nil {
			c.fail("malformed event")
			return
		}
		if err := c.hub.rooms.Join(ctx, c.name, p.RoomID); err != nil {
			c.fail(err.Error())
		}

	case EvtRoomLeave:
		var p roomRef
		if err := json.Unmarshal(evt.Data, &p); err != nil {
			c.fail("malformed event")
			return
		}
		if _, err := c.hub.rooms.Leave(ctx, c.name, p.RoomID); err != nil {
			c.fail(err.Error())
		}

	case EvtTypingKey:
		var p typingPayload
		if err := json.Unmarshal(evt.Data, &p); err != nil {
			c.fail("malformed event")
			return
		}
		c.typing.Keystroke(p.RoomID, p.Draft)

	default:
		c.fail("unknown event type")
	}
}

func (c *Client) fail(msg string) {
	c.enqueue(NewEvent(EvtError, errorPayload{Message: msg}))
}

// ServeWS authenticates the connection from the token query parameter
// and starts the pumps. The browser WebSocket API cannot set an
// Authorization header, hence the query parameter.
func ServeWS(hub *Hub, w http.ResponseWriter, r *http.Request) {
	claims, err := auth.ValidateToken(r.URL.Query().Get("token"), hub.jwtSecret)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, 256),
		name:    claims.Name,
		session: reconcile.NewSession(claims.Name, hub.rooms.GlobalName()),
		limiter: rate.NewLimiter(rate.Limit(20), 40),
	}
	client.typing = reconcile.NewTypingTracker(typingIdle, func(roomID string, typing bool) {
		if err := redisc.SetTyping(hub.rdb, roomID, client.name, typing); err != nil {
			slog.Error("writing typing flag", "user", client.name, "error", err)
			return
		}
		hub.publisher.TypingChanged(roomID)
	})

	hub.register <- client
	go client.writePump()
	go client.readPump()
}
