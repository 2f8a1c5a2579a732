package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allichat/server/internal/models"
	"github.com/allichat/server/internal/store"
	"github.com/allichat/server/internal/store/memory"
)

func seedSubteams(t *testing.T) (*memory.Store, *SubteamService) {
	t.Helper()
	st := memory.New()
	ctx := context.Background()
	for _, name := range []string{"alice", "bob", "carol"} {
		require.NoError(t, st.Users.Create(ctx, &models.User{DisplayName: name, Role: models.RoleMember}))
	}
	return st, NewSubteamService(st.Subteams, st.Users, st.Notifications)
}

func TestSubteamInviteLeavesNotification(t *testing.T) {
	st, svc := seedSubteams(t)
	ctx := context.Background()

	team, err := svc.Create(ctx, "alice", "backend", "server folks", "#ff0000")
	require.NoError(t, err)

	require.NoError(t, svc.AddMember(ctx, "alice", team.ID, "bob"))

	notes, err := st.Notifications.UnreadFor(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationSubteamInvite, notes[0].Type)
	assert.Equal(t, team.ID, notes[0].SubteamID)
	assert.Equal(t, "backend", notes[0].SubteamName)
	assert.Equal(t, "alice", notes[0].FromUser)

	teams, err := svc.ListFor(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, teams, 1)
}

func TestSubteamInviteIsMemberGated(t *testing.T) {
	_, svc := seedSubteams(t)
	ctx := context.Background()

	team, err := svc.Create(ctx, "alice", "backend", "", "")
	require.NoError(t, err)

	err = svc.AddMember(ctx, "carol", team.ID, "bob")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSubteamInviteUnknownUser(t *testing.T) {
	_, svc := seedSubteams(t)
	ctx := context.Background()

	team, err := svc.Create(ctx, "alice", "backend", "", "")
	require.NoError(t, err)

	err = svc.AddMember(ctx, "alice", team.ID, "nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSubteamDuplicateInviteIsNoop(t *testing.T) {
	st, svc := seedSubteams(t)
	ctx := context.Background()

	team, err := svc.Create(ctx, "alice", "backend", "", "")
	require.NoError(t, err)
	require.NoError(t, svc.AddMember(ctx, "alice", team.ID, "bob"))
	require.NoError(t, svc.AddMember(ctx, "alice", team.ID, "bob"))

	notes, err := st.Notifications.UnreadFor(ctx, "bob")
	require.NoError(t, err)
	assert.Len(t, notes, 1, "re-inviting an existing member must not pile up notifications")
}

func TestSubteamDeleteCreatorOnly(t *testing.T) {
	_, svc := seedSubteams(t)
	ctx := context.Background()

	team, err := svc.Create(ctx, "alice", "backend", "", "")
	require.NoError(t, err)
	require.NoError(t, svc.AddMember(ctx, "alice", team.ID, "bob"))

	err = svc.Delete(ctx, "bob", team.ID)
	assert.ErrorIs(t, err, ErrNotCreator)

	require.NoError(t, svc.Delete(ctx, "alice", team.ID))
	teams, err := svc.ListFor(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, teams)
}

func TestSubteamUpdateMemberGated(t *testing.T) {
	st, svc := seedSubteams(t)
	ctx := context.Background()

	team, err := svc.Create(ctx, "alice", "backend", "old", "")
	require.NoError(t, err)

	err = svc.Update(ctx, "carol", team.ID, "renamed", "new", "")
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, svc.Update(ctx, "alice", team.ID, "renamed", "new", "#00ff00"))
	got, err := st.Subteams.Get(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
	assert.Equal(t, "new", got.Description)
	assert.Equal(t, "#00ff00", got.Color)
}
