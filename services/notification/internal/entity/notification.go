package entity

import "time"

// Notification is one inbox entry, stored newest first.
type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	ActorID   string    `json:"actorId"`
	ActorName string    `json:"actorName,omitempty"`
	ContentID string    `json:"contentId,omitempty"`
	CommentID string    `json:"commentId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type NotificationPage struct {
	Notifications []Notification `json:"notifications"`
	Total         int64          `json:"total"`
	Limit         int            `json:"limit"`
	Offset        int            `json:"offset"`
}
