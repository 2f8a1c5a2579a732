package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allichat/server/internal/models"
	"github.com/allichat/server/internal/store/memory"
)

func seedRooms(t *testing.T) (*memory.Store, *RoomService) {
	t.Helper()
	st := memory.New()
	ctx := context.Background()
	for _, name := range []string{"alice", "bob", "carol"} {
		require.NoError(t, st.Users.Create(ctx, &models.User{DisplayName: name, Role: models.RoleMember}))
	}
	return st, NewRoomService(st.Rooms, st.Users, "general")
}

func TestCreateGroupRequiresName(t *testing.T) {
	_, svc := seedRooms(t)
	_, err := svc.CreateGroup(context.Background(), "alice", "  ", "", false)
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestStartDirectReusesExistingRoom(t *testing.T) {
	_, svc := seedRooms(t)
	ctx := context.Background()

	first, err := svc.StartDirect(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, models.RoomTypeDirect, first.Type)
	assert.ElementsMatch(t, []string{"alice", "bob"}, first.Participants)

	// Either side opening the conversation again lands in the same room.
	second, err := svc.StartDirect(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	rooms, err := svc.VisibleTo(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, rooms, 1)
}

// Leaving deletes the room only when the leaver created it and nobody
// else remains.
func TestLeaveDeletesOnlyForLastCreator(t *testing.T) {
	st, svc := seedRooms(t)
	ctx := context.Background()

	room, err := svc.CreateGroup(ctx, "alice", "project", "", false)
	require.NoError(t, err)
	require.NoError(t, svc.Join(ctx, "bob", room.ID))

	// Creator leaves while bob remains: room survives without her.
	deleted, err := svc.Leave(ctx, "alice", room.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
	got, err := st.Rooms.Get(ctx, room.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{"bob"}, got.Participants)

	// Non-creator leaves last: room still survives, just empty.
	deleted, err = svc.Leave(ctx, "bob", room.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
	got, err = st.Rooms.Get(ctx, room.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestLeaveDeletesWhenCreatorIsLast(t *testing.T) {
	st, svc := seedRooms(t)
	ctx := context.Background()

	room, err := svc.CreateGroup(ctx, "alice", "solo", "", false)
	require.NoError(t, err)

	deleted, err := svc.Leave(ctx, "alice", room.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	got, err := st.Rooms.Get(ctx, room.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestVisibleToFiltersPrivateRooms(t *testing.T) {
	_, svc := seedRooms(t)
	ctx := context.Background()
	require.NoError(t, svc.EnsureGlobalRoom(ctx))

	_, err := svc.CreateGroup(ctx, "alice", "private club", "", false)
	require.NoError(t, err)
	open, err := svc.CreateGroup(ctx, "alice", "open space", "", true)
	require.NoError(t, err)

	rooms, err := svc.VisibleTo(ctx, "carol")
	require.NoError(t, err)
	names := make([]string, 0, len(rooms))
	for _, r := range rooms {
		names = append(names, r.Name)
	}
	assert.ElementsMatch(t, []string{"general", "open space"}, names)

	// Public rooms not yet joined show up in discovery.
	discover, err := svc.DiscoverPublic(ctx, "carol")
	require.NoError(t, err)
	found := false
	for _, r := range discover {
		if r.ID == open.ID {
			found = true
		}
	}
	assert.True(t, found)
}

func TestEnsureGlobalRoomIdempotent(t *testing.T) {
	_, svc := seedRooms(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureGlobalRoom(ctx))
	require.NoError(t, svc.EnsureGlobalRoom(ctx))

	rooms, err := svc.VisibleTo(ctx, "alice")
	require.NoError(t, err)
	count := 0
	for _, r := range rooms {
		if r.Name == "general" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
