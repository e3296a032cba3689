package queue

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	event := Event{
		Type:        EventCommentReply,
		RecipientID: "user-1",
		ActorID:     "user-2",
		ContentID:   "tv-1399",
		CommentID:   "comment-1",
		OccurredAt:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	body, err := Encode(event)
	require.NoError(t, err)

	decoded, err := Decode(body)
	require.NoError(t, err)
	assert.Equal(t, event, decoded)
}

func TestDecode_Rejects(t *testing.T) {
	cases := map[string]string{
		"not json":          `{`,
		"unknown type":      `{"type":"poke","recipientId":"a","actorId":"b"}`,
		"missing recipient": `{"type":"comment_like","actorId":"b"}`,
		"missing actor":     `{"type":"friend_request","recipientId":"a"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(body))
			assert.ErrorIs(t, err, errMalformedEvent)
		})
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
	done   chan struct{}
}

func (r *recordingPublisher) Publish(event Event) error {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
	close(r.done)
	return r.err
}

func TestPublishAsync(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down"), done: make(chan struct{})}
	errs := make(chan error, 1)

	PublishAsync(pub, Event{Type: EventFriendRequest, RecipientID: "a", ActorID: "b"}, func(err error) { errs <- err })

	select {
	case err := <-errs:
		assert.EqualError(t, err, "broker down")
	case <-time.After(time.Second):
		t.Fatal("publish was not attempted")
	}
	pub.mu.Lock()
	assert.Len(t, pub.events, 1)
	pub.mu.Unlock()
}

func TestPublishAsync_NilPublisher(t *testing.T) {
	assert.NotPanics(t, func() {
		PublishAsync(nil, Event{Type: EventCommentLike}, nil)
	})
}
