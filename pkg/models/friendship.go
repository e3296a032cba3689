package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FriendshipStatus string

const (
	FriendshipPending  FriendshipStatus = "pending"
	FriendshipAccepted FriendshipStatus = "accepted"
	FriendshipBlocked  FriendshipStatus = "blocked"
)

// Friendship stores an unordered user pair as (low, high) so that a single
// unique index covers both request directions.
type Friendship struct {
	ID          string           `gorm:"type:uuid;primary_key" json:"id"`
	UserLowID   string           `gorm:"type:uuid;not null;uniqueIndex:idx_friendships_pair" json:"user_low_id"`
	UserHighID  string           `gorm:"type:uuid;not null;uniqueIndex:idx_friendships_pair;index" json:"user_high_id"`
	RequesterID string           `gorm:"type:uuid;not null" json:"requester_id"`
	Status      FriendshipStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func (Friendship) TableName() string {
	return "friendships"
}

func (f *Friendship) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}

// OrderedPair returns a and b sorted, the key under which their friendship is stored.
func OrderedPair(a, b string) (low, high string) {
	if a < b {
		return a, b
	}
	return b, a
}

// Other returns the member of the pair that is not userID.
func (f *Friendship) Other(userID string) string {
	if f.UserLowID == userID {
		return f.UserHighID
	}
	return f.UserLowID
}
