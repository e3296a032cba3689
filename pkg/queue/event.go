package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type EventType string

const (
	EventFriendRequest  EventType = "friend_request"
	EventFriendAccepted EventType = "friend_accepted"
	EventCommentReply   EventType = "comment_reply"
	EventCommentLike    EventType = "comment_like"
)

func (t EventType) Valid() bool {
	switch t {
	case EventFriendRequest, EventFriendAccepted, EventCommentReply, EventCommentLike:
		return true
	}
	return false
}

// Event is a user-facing happening addressed to one recipient.
type Event struct {
	Type        EventType `json:"type"`
	RecipientID string    `json:"recipientId"`
	ActorID     string    `json:"actorId"`
	ActorName   string    `json:"actorName,omitempty"`
	ContentID   string    `json:"contentId,omitempty"`
	CommentID   string    `json:"commentId,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// Publisher is implemented by Client; use cases depend on it so tests can
// record events without a broker.
type Publisher interface {
	Publish(event Event) error
}

var errMalformedEvent = errors.New("malformed event")

func Decode(body []byte) (Event, error) {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return Event{}, fmt.Errorf("%w: %v", errMalformedEvent, err)
	}
	if !event.Type.Valid() {
		return Event{}, fmt.Errorf("%w: unknown type %q", errMalformedEvent, event.Type)
	}
	if event.RecipientID == "" || event.ActorID == "" {
		return Event{}, fmt.Errorf("%w: missing recipient or actor", errMalformedEvent)
	}
	return event, nil
}

// PublishAsync publishes in a goroutine and logs failures through onError.
// A nil publisher drops the event.
func PublishAsync(p Publisher, event Event, onError func(error)) {
	if p == nil {
		return
	}
	go func() {
		if err := p.Publish(event); err != nil && onError != nil {
			onError(err)
		}
	}()
}
