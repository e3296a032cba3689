package entity

import (
	"time"

	"animov/pkg/content"
)

const (
	MinRating = 1
	MaxRating = 10
)

// Author is the public summary of a comment's writer.
type Author struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
}

// Name is what notifications show for the author.
func (a *Author) Name() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.Username
}

type Comment struct {
	ID          string       `json:"id"`
	UserID      string       `json:"userId"`
	ContentID   string       `json:"contentId"`
	ContentType content.Type `json:"contentType"`
	Rating      *int         `json:"rating"`
	Text        string       `json:"text"`
	ParentID    *string      `json:"parentId"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`

	Author     *Author `json:"author,omitempty"`
	LikeCount  int64   `json:"likeCount"`
	LikedByMe  bool    `json:"likedByMe"`
	ReplyCount int64   `json:"replyCount"`
}

func (c *Comment) IsReply() bool {
	return c.ParentID != nil && *c.ParentID != ""
}

type CommentInput struct {
	ContentID   string
	ContentType content.Type
	Text        string
	Rating      *int
	ParentID    string
}

type CommentPatch struct {
	Text   *string
	Rating *int
}

// ListQuery selects either the top-level comments on a piece of content or
// the direct replies to ParentID.
type ListQuery struct {
	ContentID   string
	ContentType content.Type
	ParentID    string
	Limit       int
	Offset      int
}

type CommentPage struct {
	Comments []*Comment `json:"comments"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}

type LikeState struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"likeCount"`
}

// RatingSummary aggregates the ratings left in top-level comments.
type RatingSummary struct {
	ContentID string        `json:"contentId"`
	Count     int64         `json:"count"`
	Average   float64       `json:"average"`
	Histogram map[int]int64 `json:"histogram"`
}
