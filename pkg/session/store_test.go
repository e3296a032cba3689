package session

import (
	"context"
	"testing"
	"time"

	"animov/pkg/apperr"
	"animov/pkg/dbtest"
	"animov/pkg/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestStore_CreateAndResolve(t *testing.T) {
	db := dbtest.Open(t)
	user := dbtest.CreateUser(t, db, "alice")
	store := NewStore(db, nil)
	ctx := context.Background()

	sess, err := store.Create(ctx, user.ID, time.Hour, "Mozilla/5.0", "127.0.0.1")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)

	userID, err := store.Resolve(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestStore_ResolveExpired(t *testing.T) {
	db := dbtest.Open(t)
	user := dbtest.CreateUser(t, db, "bob")
	store := NewStore(db, nil)
	ctx := context.Background()

	expired := &models.Session{UserID: user.ID, ExpiresAt: time.Now().UTC().Add(-time.Hour)}
	require.NoError(t, db.Create(expired).Error)

	_, err := store.Resolve(ctx, expired.ID)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestStore_ResolveUnknown(t *testing.T) {
	store := NewStore(dbtest.Open(t), nil)

	_, err := store.Resolve(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = store.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestStore_CachesInRedis(t *testing.T) {
	db := dbtest.Open(t)
	user := dbtest.CreateUser(t, db, "carol")
	mr, client := newRedis(t)
	store := NewStore(db, client)
	ctx := context.Background()

	sess, err := store.Create(ctx, user.ID, time.Hour, "", "")
	require.NoError(t, err)

	cached, err := mr.Get("session:" + sess.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, cached)
	assert.True(t, mr.TTL("session:"+sess.ID) > 59*time.Minute)

	// The row is gone but the cache still answers.
	require.NoError(t, db.Where("id = ?", sess.ID).Delete(&models.Session{}).Error)
	userID, err := store.Resolve(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestStore_Delete(t *testing.T) {
	db := dbtest.Open(t)
	user := dbtest.CreateUser(t, db, "dave")
	mr, client := newRedis(t)
	store := NewStore(db, client)
	ctx := context.Background()

	sess, err := store.Create(ctx, user.ID, time.Hour, "", "")
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, sess.ID))
	assert.False(t, mr.Exists("session:"+sess.ID))

	_, err = store.Resolve(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestStore_DeleteExpired(t *testing.T) {
	db := dbtest.Open(t)
	user := dbtest.CreateUser(t, db, "erin")
	store := NewStore(db, nil)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.Session{UserID: user.ID, ExpiresAt: time.Now().UTC().Add(-2 * time.Hour)}).Error)
	live, err := store.Create(ctx, user.ID, time.Hour, "", "")
	require.NoError(t, err)

	n, err := store.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.Get(ctx, live.ID)
	assert.NoError(t, err)
}
