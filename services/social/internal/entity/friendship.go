package entity

import "time"

const (
	StatusNone     = "none"
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusBlocked  = "blocked"
)

// Direction of a pending request as seen by the viewer.
type Direction string

const (
	Incoming Direction = "incoming"
	Outgoing Direction = "outgoing"
)

func (d Direction) Valid() bool {
	return d == Incoming || d == Outgoing
}

type UserSummary struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
}

func (u *UserSummary) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// Friendship is a relationship row seen from one of its two users. User is
// the other party.
type Friendship struct {
	ID          string       `json:"id"`
	Status      string       `json:"status"`
	RequesterID string       `json:"requesterId"`
	Direction   Direction    `json:"direction,omitempty"`
	User        *UserSummary `json:"user"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Relationship answers "what is between me and this user".
type Relationship struct {
	UserID       string    `json:"userId"`
	Status       string    `json:"status"`
	Direction    Direction `json:"direction,omitempty"`
	FriendshipID string    `json:"friendshipId,omitempty"`
}

// RequestTarget names the addressee by id or by username.
type RequestTarget struct {
	UserID   string
	Username string
}
