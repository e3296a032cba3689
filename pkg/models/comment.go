package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Comment struct {
	ID          string    `gorm:"type:uuid;primary_key" json:"id"`
	UserID      string    `gorm:"type:uuid;not null;index" json:"user_id"`
	ContentID   string    `gorm:"type:varchar(128);not null;index:idx_comments_content" json:"content_id"`
	ContentType string    `gorm:"type:varchar(10);not null;index:idx_comments_content" json:"content_type"`
	Rating      *int      `json:"rating"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	ParentID    *string   `gorm:"type:uuid;index" json:"parent_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Comment) TableName() string {
	return "comments"
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// CommentLike is one member of a comment's like set.
type CommentLike struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	CommentID string    `gorm:"type:uuid;not null;uniqueIndex:idx_comment_likes_comment_user" json:"comment_id"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_comment_likes_comment_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (CommentLike) TableName() string {
	return "comment_likes"
}

func (l *CommentLike) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}
