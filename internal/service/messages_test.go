package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allichat/server/internal/models"
	"github.com/allichat/server/internal/store/memory"
)

func seedChat(t *testing.T) (*memory.Store, *MessageService) {
	t.Helper()
	st := memory.New()
	ctx := context.Background()

	for _, u := range []*models.User{
		{DisplayName: "alice", Role: models.RoleMember},
		{DisplayName: "bob", Role: models.RoleMember},
		{DisplayName: "carol", Role: models.RoleAdmin},
	} {
		require.NoError(t, st.Users.Create(ctx, u))
	}
	require.NoError(t, st.Rooms.Create(ctx, &models.Room{
		ID:           "room-1",
		Name:         "lounge",
		Type:         models.RoomTypeGroup,
		Participants: []string{"alice", "bob"},
		CreatedBy:    "alice",
		CreatedAt:    time.Now().UTC(),
	}))

	return st, NewMessageService(st.Users, st.Rooms, st.Messages)
}

func TestSendAndList(t *testing.T) {
	_, svc := seedChat(t)
	ctx := context.Background()

	msg, err := svc.Send(ctx, "alice", SendInput{RoomID: "room-1", Content: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "alice", msg.Sender)
	assert.Equal(t, models.StatusSent, msg.Status)
	assert.NotEmpty(t, msg.ID)

	msgs, err := svc.ListByRoom(ctx, "room-1")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hello", msgs[0].Content)
}

func TestSendRejectsEmptyContent(t *testing.T) {
	_, svc := seedChat(t)
	_, err := svc.Send(context.Background(), "alice", SendInput{RoomID: "room-1", Content: "   "})
	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestSendRejectsNonParticipant(t *testing.T) {
	_, svc := seedChat(t)
	_, err := svc.Send(context.Background(), "carol", SendInput{RoomID: "room-1", Content: "hi"})
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestSendMutedWritesNothing(t *testing.T) {
	st, svc := seedChat(t)
	ctx := context.Background()
	require.NoError(t, st.Users.SetMuted(ctx, "bob", true))

	_, err := svc.Send(ctx, "bob", SendInput{RoomID: "room-1", Content: "hi"})
	assert.ErrorIs(t, err, ErrMuted)

	msgs, err := svc.ListByRoom(ctx, "room-1")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestSendBannedWritesNothing(t *testing.T) {
	st, svc := seedChat(t)
	ctx := context.Background()
	require.NoError(t, st.Users.SetBanned(ctx, "bob", true))

	_, err := svc.Send(ctx, "bob", SendInput{RoomID: "room-1", Content: "hi"})
	assert.ErrorIs(t, err, ErrBanned)

	msgs, err := svc.ListByRoom(ctx, "room-1")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestSendDenormalizesReply(t *testing.T) {
	_, svc := seedChat(t)
	ctx := context.Background()

	orig, err := svc.Send(ctx, "alice", SendInput{RoomID: "room-1", Content: "original"})
	require.NoError(t, err)

	reply, err := svc.Send(ctx, "bob", SendInput{RoomID: "room-1", Content: "answer", ReplyToID: orig.ID})
	require.NoError(t, err)
	require.NotNil(t, reply.ReplyTo)
	assert.Equal(t, orig.ID, reply.ReplyTo.ID)
	assert.Equal(t, "alice", reply.ReplyTo.Sender)
	assert.Equal(t, "original", reply.ReplyTo.Content)
}

func TestSendImageValidation(t *testing.T) {
	_, svc := seedChat(t)
	ctx := context.Background()

	_, err := svc.Send(ctx, "alice", SendInput{RoomID: "room-1", Content: "pic", Image: "not-a-data-url"})
	assert.ErrorIs(t, err, ErrNotImage)

	huge := "data:image/png;base64," + strings.Repeat("A", (maxImageBytes/3+1)*4)
	_, err = svc.Send(ctx, "alice", SendInput{RoomID: "room-1", Content: "pic", Image: huge})
	assert.ErrorIs(t, err, ErrImageTooLarge)

	// 1x1 transparent PNG.
	tiny := "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="
	msg, err := svc.Send(ctx, "alice", SendInput{RoomID: "room-1", Content: "pic", Image: tiny})
	require.NoError(t, err)
	assert.True(t, msg.IsImage)

	_, err = svc.Send(ctx, "alice", SendInput{RoomID: "room-1", Content: "pic", Image: "data:image/png;base64,aGVsbG8="})
	assert.ErrorIs(t, err, ErrNotImage, "valid base64 that is not an image must be rejected")
}

func TestEditOnlyBySender(t *testing.T) {
	_, svc := seedChat(t)
	ctx := context.Background()

	msg, err := svc.Send(ctx, "alice", SendInput{RoomID: "room-1", Content: "tpyo"})
	require.NoError(t, err)

	err = svc.Edit(ctx, "bob", msg.ID, "typo")
	assert.ErrorIs(t, err, ErrNotSender)

	require.NoError(t, svc.Edit(ctx, "alice", msg.ID, "typo"))
	msgs, err := svc.ListByRoom(ctx, "room-1")
	require.NoError(t, err)
	assert.Equal(t, "typo", msgs[0].Content)
	assert.True(t, msgs[0].Edited)
}

func TestDeleteAdminOnly(t *testing.T) {
	_, svc := seedChat(t)
	ctx := context.Background()

	msg, err := svc.Send(ctx, "alice", SendInput{RoomID: "room-1", Content: "oops"})
	require.NoError(t, err)

	err = svc.Delete(ctx, "alice", msg.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, svc.Delete(ctx, "carol", msg.ID))
	msgs, err := svc.ListByRoom(ctx, "room-1")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

// Toggling a reaction twice returns the message to its prior state,
// and an emoji key exists only while its reactor set is non-empty.
func TestToggleReactionIdempotentPairs(t *testing.T) {
	_, svc := seedChat(t)
	ctx := context.Background()

	msg, err := svc.Send(ctx, "alice", SendInput{RoomID: "room-1", Content: "react to me"})
	require.NoError(t, err)

	require.NoError(t, svc.ToggleReaction(ctx, "bob", msg.ID, "👍"))
	msgs, err := svc.ListByRoom(ctx, "room-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, msgs[0].Reactions["👍"])

	require.NoError(t, svc.ToggleReaction(ctx, "bob", msg.ID, "👍"))
	msgs, err = svc.ListByRoom(ctx, "room-1")
	require.NoError(t, err)
	_, present := msgs[0].Reactions["👍"]
	assert.False(t, present, "emoji key must vanish with its last reactor")

	// Two reactors, one withdraws: key survives with the other.
	require.NoError(t, svc.ToggleReaction(ctx, "alice", msg.ID, "🎉"))
	require.NoError(t, svc.ToggleReaction(ctx, "bob", msg.ID, "🎉"))
	require.NoError(t, svc.ToggleReaction(ctx, "alice", msg.ID, "🎉"))
	msgs, err = svc.ListByRoom(ctx, "room-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, msgs[0].Reactions["🎉"])
}

func TestListByRoomOrderNonDecreasing(t *testing.T) {
	st, svc := seedChat(t)
	ctx := context.Background()

	base := time.Now().UTC()
	// Insert out of order on purpose.
	for i, offset := range []time.Duration{2 * time.Second, 0, time.Second} {
		require.NoError(t, st.Messages.Create(ctx, &models.Message{
			ID:        string(rune('a' + i)),
			RoomID:    "room-1",
			Sender:    "alice",
			Content:   "m",
			Status:    models.StatusSent,
			CreatedAt: base.Add(offset),
		}))
	}

	msgs, err := svc.ListByRoom(ctx, "room-1")
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	for i := 1; i < len(msgs); i++ {
		assert.False(t, msgs[i].CreatedAt.Before(msgs[i-1].CreatedAt),
			"messages must be ordered by creation time")
	}
}

func TestSearchByRoom(t *testing.T) {
	_, svc := seedChat(t)
	ctx := context.Background()

	for _, m := range []struct{ sender, content string }{
		{"alice", "deploy is done"},
		{"bob", "thanks Alice"},
		{"bob", "lunch?"},
	} {
		_, err := svc.Send(ctx, m.sender, SendInput{RoomID: "room-1", Content: m.content})
		require.NoError(t, err)
	}

	// Case-insensitive, matches content and sender name.
	got, err := svc.SearchByRoom(ctx, "room-1", "ALICE")
	require.NoError(t, err)
	require.Len(t, got, 2)

	got, err = svc.SearchByRoom(ctx, "room-1", "lunch")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "lunch?", got[0].Content)

	got, err = svc.SearchByRoom(ctx, "room-1", "")
	require.NoError(t, err)
	assert.Len(t, got, 3, "empty query returns the full history")
}

// recordingNotifier captures MessagesChanged calls for assertions.
type recordingNotifier struct {
	mu    sync.Mutex
	rooms []string
}

func (n *recordingNotifier) MessagesChanged(roomID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rooms = append(n.rooms, roomID)
}

func (n *recordingNotifier) RoomsChanged() {}

func (n *recordingNotifier) UsersChanged() {}

func (n *recordingNotifier) AnnouncementsChanged() {}

func (n *recordingNotifier) SubteamsChanged() {}

func (n *recordingNotifier) NotificationsChanged() {}

func (n *recordingNotifier) messageRooms() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.rooms))
	copy(out, n.rooms)
	return out
}

func TestPromoteRead(t *testing.T) {
	st, svc := seedChat(t)
	ctx := context.Background()

	msg, err := svc.Send(ctx, "alice", SendInput{RoomID: "room-1", Content: "unread"})
	require.NoError(t, err)

	rec := &recordingNotifier{}
	svc.SetNotifier(rec)
	svc.PromoteRead(ctx, "room-1", []string{msg.ID})

	got, err := st.Messages.Get(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRead, got.Status)
	assert.Equal(t, []string{"room-1"}, rec.messageRooms())
}

// When every promotion fails there is no write to announce; notifying
// anyway would feed the invalidation loop another identical attempt.
func TestPromoteReadNoNotifyWhenNothingWritten(t *testing.T) {
	_, svc := seedChat(t)
	ctx := context.Background()

	rec := &recordingNotifier{}
	svc.SetNotifier(rec)
	svc.PromoteRead(ctx, "room-1", []string{"missing-1", "missing-2"})

	assert.Empty(t, rec.messageRooms())
}
