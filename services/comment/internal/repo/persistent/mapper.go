package persistent

import (
	"animov/pkg/content"
	"animov/pkg/models"
	"animov/services/comment/internal/entity"
)

func ToCommentEntity(m *models.Comment) *entity.Comment {
	if m == nil {
		return nil
	}

	return &entity.Comment{
		ID:          m.ID,
		UserID:      m.UserID,
		ContentID:   m.ContentID,
		ContentType: content.Type(m.ContentType),
		Rating:      m.Rating,
		Text:        m.Text,
		ParentID:    m.ParentID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func ToCommentModel(e *entity.Comment) *models.Comment {
	if e == nil {
		return nil
	}

	return &models.Comment{
		ID:          e.ID,
		UserID:      e.UserID,
		ContentID:   e.ContentID,
		ContentType: string(e.ContentType),
		Rating:      e.Rating,
		Text:        e.Text,
		ParentID:    e.ParentID,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// commentRow is a comment joined with its author and counters.
type commentRow struct {
	models.Comment
	AuthorUsername    string
	AuthorDisplayName string
	AuthorAvatarURL   string
	LikeCount         int64
	ReplyCount        int64
	LikedByMe         bool
}

func (r *commentRow) toEntity() *entity.Comment {
	comment := ToCommentEntity(&r.Comment)
	comment.Author = &entity.Author{
		ID:          r.UserID,
		Username:    r.AuthorUsername,
		DisplayName: r.AuthorDisplayName,
		AvatarURL:   r.AuthorAvatarURL,
	}
	comment.LikeCount = r.LikeCount
	comment.ReplyCount = r.ReplyCount
	comment.LikedByMe = r.LikedByMe
	return comment
}
