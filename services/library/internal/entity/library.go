package entity

import (
	"time"

	"animov/pkg/catalog"
	"animov/pkg/content"
)

// ListKind names one of the two status-tracked lists.
type ListKind string

const (
	Watchlist ListKind = "watchlist"
	Readlist  ListKind = "readlist"
)

type Favorite struct {
	ID          string        `json:"id"`
	UserID      string        `json:"userId"`
	ContentID   string        `json:"contentId"`
	ContentType content.Type  `json:"contentType"`
	Title       string        `json:"title"`
	PosterURL   string        `json:"posterUrl"`
	Rating      *float64      `json:"rating"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
	Details     *catalog.Item `json:"details,omitempty"`
}

// ListItem is a watchlist or readlist entry.
type ListItem struct {
	ID          string        `json:"id"`
	UserID      string        `json:"userId"`
	ContentID   string        `json:"contentId"`
	ContentType content.Type  `json:"contentType"`
	Title       string        `json:"title"`
	PosterURL   string        `json:"posterUrl"`
	Status      string        `json:"status"`
	Progress    *int          `json:"progress"`
	Notes       string        `json:"notes"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
	Details     *catalog.Item `json:"details,omitempty"`
}

type FavoriteInput struct {
	ContentID   string
	ContentType content.Type
	Title       string
	PosterURL   string
	Rating      *float64
}

type FavoritePatch struct {
	Title     *string
	PosterURL *string
	Rating    *float64
}

type ListItemInput struct {
	ContentID   string
	ContentType content.Type
	Title       string
	PosterURL   string
	Status      string
	Progress    *int
	Notes       string
}

type ListItemPatch struct {
	Status   *string
	Progress *int
	Notes    *string
}

type ListFilter struct {
	Status      string
	ContentType content.Type
}

// Membership answers "is this content in my list".
type Membership struct {
	InList bool        `json:"inList"`
	Item   interface{} `json:"item,omitempty"`
}
