package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FavoriteItem struct {
	ID          string    `gorm:"type:uuid;primary_key" json:"id"`
	UserID      string    `gorm:"type:uuid;not null;uniqueIndex:idx_favorites_user_content" json:"user_id"`
	ContentID   string    `gorm:"type:varchar(128);not null;uniqueIndex:idx_favorites_user_content" json:"content_id"`
	ContentType string    `gorm:"type:varchar(10);not null;index" json:"content_type"`
	Title       string    `gorm:"type:varchar(500)" json:"title"`
	PosterURL   string    `gorm:"type:varchar(500)" json:"poster_url"`
	Rating      *float64  `json:"rating"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (FavoriteItem) TableName() string {
	return "favorites"
}

func (f *FavoriteItem) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}

// TrackedItem is the row shape shared by the watchlist and the readlist; only
// the table and the allowed status set differ.
type TrackedItem struct {
	ID          string    `gorm:"type:uuid;primary_key" json:"id"`
	UserID      string    `gorm:"type:uuid;not null" json:"user_id"`
	ContentID   string    `gorm:"type:varchar(128);not null" json:"content_id"`
	ContentType string    `gorm:"type:varchar(10);not null;index" json:"content_type"`
	Title       string    `gorm:"type:varchar(500)" json:"title"`
	PosterURL   string    `gorm:"type:varchar(500)" json:"poster_url"`
	Status      string    `gorm:"type:varchar(20);not null;index" json:"status"`
	Progress    *int      `json:"progress"`
	Notes       string    `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (t *TrackedItem) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

const (
	WatchlistTable = "watchlist_items"
	ReadlistTable  = "readlist_items"
)

type WatchlistItem struct {
	TrackedItem
}

func (WatchlistItem) TableName() string {
	return WatchlistTable
}

type ReadlistItem struct {
	TrackedItem
}

func (ReadlistItem) TableName() string {
	return ReadlistTable
}
