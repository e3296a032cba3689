package usecase

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"animov/pkg/apperr"
	"animov/pkg/dbtest"
	"animov/pkg/logger"
	"animov/pkg/queue"
	"animov/services/notification/internal/entity"
	"animov/services/notification/internal/repo/persistent"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setup(t *testing.T) (NotificationUseCase, *gorm.DB, *miniredis.Miniredis) {
	t.Helper()
	db := dbtest.Open(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	uc := NewNotificationUseCase(persistent.NewNotificationRepository(db), rdb, logger.NewWithOptions(io.Discard, "info", false))
	return uc, db, mr
}

func TestHandleEvent_StoresNewestFirst(t *testing.T) {
	uc, db, _ := setup(t)
	alice := dbtest.CreateUser(t, db, "alice")
	bob := dbtest.CreateUser(t, db, "bob")
	ctx := context.Background()

	require.NoError(t, uc.HandleEvent(ctx, queue.Event{Type: queue.EventFriendRequest, RecipientID: alice.ID, ActorID: bob.ID, ActorName: "Bob"}))
	require.NoError(t, uc.HandleEvent(ctx, queue.Event{Type: queue.EventCommentLike, RecipientID: alice.ID, ActorID: bob.ID, CommentID: "c-1", ContentID: "tv-1399"}))

	page, err := uc.List(ctx, alice.ID, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	require.Len(t, page.Notifications, 2)

	latest := page.Notifications[0]
	assert.Equal(t, string(queue.EventCommentLike), latest.Type)
	assert.Equal(t, "bob liked your comment", latest.Message)
	assert.Equal(t, "tv-1399", latest.ContentID)
	assert.NotEmpty(t, latest.ID)
	assert.Equal(t, "Bob sent you a friend request", page.Notifications[1].Message)
}

func TestHandleEvent_RespectsSettings(t *testing.T) {
	uc, db, mr := setup(t)
	alice := dbtest.CreateUser(t, db, "alice")
	bob := dbtest.CreateUser(t, db, "bob")
	alice.Notifications.CommentLikes = false
	require.NoError(t, db.Save(alice).Error)

	err := uc.HandleEvent(context.Background(), queue.Event{Type: queue.EventCommentLike, RecipientID: alice.ID, ActorID: bob.ID})
	require.NoError(t, err)
	assert.False(t, mr.Exists(InboxKey(alice.ID)))
}

func TestHandleEvent_UnknownRecipientIsDropped(t *testing.T) {
	uc, _, mr := setup(t)

	err := uc.HandleEvent(context.Background(), queue.Event{Type: queue.EventFriendAccepted, RecipientID: "not-a-uuid", ActorID: "x"})
	require.NoError(t, err)
	assert.False(t, mr.Exists(InboxKey("not-a-uuid")))
}

func TestHandleEvent_StorageFailureIsReturned(t *testing.T) {
	uc, db, mr := setup(t)
	alice := dbtest.CreateUser(t, db, "alice")
	mr.Close()

	err := uc.HandleEvent(context.Background(), queue.Event{Type: queue.EventCommentReply, RecipientID: alice.ID, ActorID: "someone", OccurredAt: time.Now()})
	assert.Error(t, err)
}

func TestHandleEvent_InboxIsCapped(t *testing.T) {
	uc, db, mr := setup(t)
	alice := dbtest.CreateUser(t, db, "alice")
	ctx := context.Background()

	for i := 0; i < InboxSize+5; i++ {
		require.NoError(t, uc.HandleEvent(ctx, queue.Event{
			Type:        queue.EventCommentReply,
			RecipientID: alice.ID,
			ActorID:     "actor",
			ActorName:   fmt.Sprintf("user%d", i),
		}))
	}

	items, err := mr.List(InboxKey(alice.ID))
	require.NoError(t, err)
	assert.Len(t, items, InboxSize)
	assert.Contains(t, items[0], fmt.Sprintf("user%d", InboxSize+4))
}

func TestList_PagingAndClear(t *testing.T) {
	uc, db, _ := setup(t)
	alice := dbtest.CreateUser(t, db, "alice")
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, uc.HandleEvent(ctx, queue.Event{Type: queue.EventCommentReply, RecipientID: alice.ID, ActorID: "a", ActorName: fmt.Sprintf("n%d", i)}))
	}

	page, err := uc.List(ctx, alice.ID, 2, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 5, page.Total)
	require.Len(t, page.Notifications, 2)
	assert.Equal(t, "n3", page.Notifications[0].ActorName)

	_, err = uc.List(ctx, alice.ID, 2, -1)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	require.NoError(t, uc.Clear(ctx, alice.ID))
	page, err = uc.List(ctx, alice.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, page.Notifications)
	assert.Zero(t, page.Total)
}

func TestStream_DeliversStoredNotifications(t *testing.T) {
	uc, db, mr := setup(t)
	alice := dbtest.CreateUser(t, db, "alice")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan entity.Notification, 1)
	done := make(chan error, 1)
	go func() {
		done <- uc.Stream(ctx, alice.ID, func(n entity.Notification) error {
			received <- n
			return nil
		})
	}()

	require.Eventually(t, func() bool {
		return mr.PubSubNumSub(InboxKey(alice.ID))[InboxKey(alice.ID)] == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, uc.HandleEvent(ctx, queue.Event{Type: queue.EventFriendAccepted, RecipientID: alice.ID, ActorID: "a", ActorName: "Bob"}))

	select {
	case n := <-received:
		assert.Equal(t, "Bob accepted your friend request", n.Message)
	case <-time.After(time.Second):
		t.Fatal("notification was not streamed")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("stream did not stop")
	}
}
