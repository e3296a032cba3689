package persistent

import (
	"context"
	"testing"

	"animov/pkg/apperr"
	"animov/pkg/dbtest"
	"animov/pkg/models"
	"animov/services/social/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFriendshipRepository_PairIsUnordered(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewFriendshipRepository(db)
	alice := dbtest.CreateUser(t, db, "alice")
	bob := dbtest.CreateUser(t, db, "bob")
	ctx := context.Background()

	created, err := repo.CreateRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FriendshipPending, created.Status)

	_, err = repo.CreateRequest(ctx, bob.ID, alice.ID)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	found, err := repo.FindPair(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)

	carol := dbtest.CreateUser(t, db, "carol")
	none, err := repo.FindPair(ctx, alice.ID, carol.ID)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestFriendshipRepository_AcceptOnlyByAddressee(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewFriendshipRepository(db)
	alice := dbtest.CreateUser(t, db, "alice")
	bob := dbtest.CreateUser(t, db, "bob")
	carol := dbtest.CreateUser(t, db, "carol")
	ctx := context.Background()

	request, err := repo.CreateRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, repo.Accept(ctx, request.ID, alice.ID), apperr.ErrNotFound, "requester cannot accept")
	assert.ErrorIs(t, repo.Accept(ctx, request.ID, carol.ID), apperr.ErrNotFound, "outsider cannot accept")
	require.NoError(t, repo.Accept(ctx, request.ID, bob.ID))
	assert.ErrorIs(t, repo.Accept(ctx, request.ID, bob.ID), apperr.ErrNotFound, "no longer pending")

	view, err := repo.GetView(ctx, bob.ID, request.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusAccepted, view.Status)
	assert.Equal(t, "alice", view.User.Username)
	assert.Empty(t, view.Direction)

	assert.ErrorIs(t, repo.DeletePending(ctx, request.ID, bob.ID), apperr.ErrNotFound)
	assert.ErrorIs(t, repo.DeleteAccepted(ctx, request.ID, carol.ID), apperr.ErrNotFound)
	require.NoError(t, repo.DeleteAccepted(ctx, request.ID, alice.ID))
	assert.ErrorIs(t, repo.DeleteAccepted(ctx, request.ID, alice.ID), apperr.ErrNotFound)
}

func TestFriendshipRepository_Lists(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewFriendshipRepository(db)
	alice := dbtest.CreateUser(t, db, "alice")
	bob := dbtest.CreateUser(t, db, "bob")
	carol := dbtest.CreateUser(t, db, "carol")
	dave := dbtest.CreateUser(t, db, "dave")
	erin := dbtest.CreateUser(t, db, "erin")
	ctx := context.Background()

	friend, err := repo.CreateRequest(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	require.NoError(t, repo.Accept(ctx, friend.ID, alice.ID))
	_, err = repo.CreateRequest(ctx, carol.ID, alice.ID)
	require.NoError(t, err)
	_, err = repo.CreateRequest(ctx, alice.ID, dave.ID)
	require.NoError(t, err)
	applied, err := repo.Block(ctx, alice.ID, erin.ID)
	require.NoError(t, err)
	assert.True(t, applied)

	friends, err := repo.ListAccepted(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, bob.ID, friends[0].User.ID)

	incoming, err := repo.ListPending(ctx, alice.ID, entity.Incoming)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, "carol", incoming[0].User.Username)
	assert.Equal(t, entity.Incoming, incoming[0].Direction)

	outgoing, err := repo.ListPending(ctx, alice.ID, entity.Outgoing)
	require.NoError(t, err)
	require.Len(t, outgoing, 1)
	assert.Equal(t, "dave", outgoing[0].User.Username)
	assert.Equal(t, entity.Outgoing, outgoing[0].Direction)

	both, err := repo.ListPending(ctx, alice.ID, "")
	require.NoError(t, err)
	assert.Len(t, both, 2)

	blocked, err := repo.ListBlocked(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, blocked, 1)
	assert.Equal(t, erin.ID, blocked[0].User.ID)

	blockedByErin, err := repo.ListBlocked(ctx, erin.ID)
	require.NoError(t, err)
	assert.Empty(t, blockedByErin)
}

func TestFriendshipRepository_Block(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewFriendshipRepository(db)
	alice := dbtest.CreateUser(t, db, "alice")
	bob := dbtest.CreateUser(t, db, "bob")
	ctx := context.Background()

	request, err := repo.CreateRequest(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	applied, err := repo.Block(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, applied, "a pending pair can be blocked")

	pair, err := repo.FindPair(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, request.ID, pair.ID, "block reuses the pair row")
	assert.Equal(t, models.FriendshipBlocked, pair.Status)
	assert.Equal(t, bob.ID, pair.RequesterID)

	applied, err = repo.Block(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, applied, "the blocked user cannot take over the block")

	applied, err = repo.Block(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, applied, "blocking again is idempotent")

	assert.ErrorIs(t, repo.Unblock(ctx, alice.ID, bob.ID), apperr.ErrNotFound)
	require.NoError(t, repo.Unblock(ctx, bob.ID, alice.ID))

	pair, err = repo.FindPair(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Nil(t, pair)
}

func TestFriendshipRepository_FindUser(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewFriendshipRepository(db)
	alice := dbtest.CreateUser(t, db, "Alice")
	ctx := context.Background()

	byName, err := repo.FindUserByUsername(ctx, " alice ")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byName.ID)

	_, err = repo.FindUser(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, db.Model(&models.User{}).Where("id = ?", alice.ID).Update("is_active", false).Error)
	_, err = repo.FindUser(ctx, alice.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
