package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allichat/server/internal/models"
	"github.com/allichat/server/internal/store/memory"
)

func seedAdmin(t *testing.T) (*memory.Store, *AdminService, *MessageService) {
	t.Helper()
	st := memory.New()
	ctx := context.Background()

	require.NoError(t, st.Users.Create(ctx, &models.User{DisplayName: "root", Role: models.RoleAdmin}))
	require.NoError(t, st.Users.Create(ctx, &models.User{DisplayName: "dave", Role: models.RoleMember}))
	require.NoError(t, st.Rooms.Create(ctx, &models.Room{
		ID:           "room-1",
		Name:         "lounge",
		Type:         models.RoomTypeGroup,
		Participants: []string{"root", "dave"},
		CreatedBy:    "root",
	}))

	admin := NewAdminService(st.Users, st.Rooms, st.Messages, st.Announcements)
	msgs := NewMessageService(st.Users, st.Rooms, st.Messages)
	return st, admin, msgs
}

func TestSetMutedRequiresAdmin(t *testing.T) {
	st, admin, _ := seedAdmin(t)
	ctx := context.Background()

	err := admin.SetMuted(ctx, "dave", "root", true)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, admin.SetMuted(ctx, "root", "dave", true))
	u, err := st.Users.Get(ctx, "dave")
	require.NoError(t, err)
	assert.True(t, u.IsMuted)
}

// An admin whose role was revoked in the store cannot keep moderating,
// even if their token still says admin.
func TestRevokedAdminLosesAccess(t *testing.T) {
	st, admin, _ := seedAdmin(t)
	ctx := context.Background()

	demoted := &models.User{DisplayName: "ex-admin", Role: models.RoleMember}
	require.NoError(t, st.Users.Create(ctx, demoted))

	err := admin.SetBanned(ctx, "ex-admin", "dave", true)
	assert.ErrorIs(t, err, ErrForbidden)
}

// A muted and banned user cannot post themselves, but an admin posting
// in their name succeeds: the impersonated sender's flags are not
// consulted on the sudo path.
func TestSudoSendBypassesMuteAndBan(t *testing.T) {
	st, admin, msgs := seedAdmin(t)
	ctx := context.Background()

	require.NoError(t, st.Users.SetMuted(ctx, "dave", true))
	require.NoError(t, st.Users.SetBanned(ctx, "dave", true))

	_, err := msgs.Send(ctx, "dave", SendInput{RoomID: "room-1", Content: "blocked"})
	require.Error(t, err)
	listed, err := msgs.ListByRoom(ctx, "room-1")
	require.NoError(t, err)
	require.Empty(t, listed, "a blocked send must write nothing")

	sent, err := admin.SudoSend(ctx, "root", "dave", "room-1", "speaking for dave")
	require.NoError(t, err)
	assert.Equal(t, "dave", sent.Sender)
	assert.True(t, sent.IsSudo)

	listed, err = msgs.ListByRoom(ctx, "room-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "speaking for dave", listed[0].Content)
}

func TestSudoSendRequiresAdmin(t *testing.T) {
	_, admin, _ := seedAdmin(t)
	_, err := admin.SudoSend(context.Background(), "dave", "root", "room-1", "nope")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAnnouncementLifecycle(t *testing.T) {
	st, admin, _ := seedAdmin(t)
	ctx := context.Background()

	_, err := admin.CreateAnnouncement(ctx, "dave", AnnouncementInput{Content: "hi"})
	assert.ErrorIs(t, err, ErrForbidden)

	a, err := admin.CreateAnnouncement(ctx, "root", AnnouncementInput{Content: "maintenance tonight"})
	require.NoError(t, err)
	assert.Equal(t, 14, a.FontSize, "font size defaults when unset")

	all, err := st.Announcements.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	require.NoError(t, admin.DeleteAnnouncement(ctx, "root", a.ID))
	all, err = st.Announcements.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
