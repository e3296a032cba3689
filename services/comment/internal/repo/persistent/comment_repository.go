package persistent

import (
	"context"
	"fmt"
	"time"

	"animov/pkg/apperr"
	"animov/pkg/content"
	"animov/pkg/database"
	"animov/pkg/models"
	"animov/services/comment/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrCommentNotFound = apperr.Kind(apperr.ErrNotFound, "comment not found")
	ErrUserNotFound    = apperr.Kind(apperr.ErrNotFound, "user not found")
)

type CommentRepository interface {
	Create(ctx context.Context, comment *entity.Comment) error
	GetByID(ctx context.Context, id string) (*entity.Comment, error)
	GetView(ctx context.Context, viewerID, id string) (*entity.Comment, error)
	List(ctx context.Context, viewerID string, q entity.ListQuery) ([]*entity.Comment, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	DeleteThread(ctx context.Context, id string) (int64, error)

	Like(ctx context.Context, commentID, userID string) (bool, error)
	Unlike(ctx context.Context, commentID, userID string) (bool, error)
	LikeCount(ctx context.Context, commentID string) (int64, error)

	RatingHistogram(ctx context.Context, contentID string, contentType content.Type) (map[int]int64, error)
	GetAuthor(ctx context.Context, userID string) (*entity.Author, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	commentModel := ToCommentModel(comment)
	if err := r.db.WithContext(ctx).Create(commentModel).Error; err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	*comment = *ToCommentEntity(commentModel)
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id string) (*entity.Comment, error) {
	if !database.ValidID(id) {
		return nil, ErrCommentNotFound
	}

	var commentModel models.Comment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&commentModel).Error
	if database.IsNotFound(err) {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load comment: %w", err)
	}
	return ToCommentEntity(&commentModel), nil
}

// withCounters selects comments joined with their author, like count, reply
// count and whether viewerID liked them.
func (r *commentRepository) withCounters(ctx context.Context, viewerID string) *gorm.DB {
	likedByMe := "1 = 0 AS liked_by_me"
	args := []interface{}{}
	if database.ValidID(viewerID) {
		likedByMe = "EXISTS (SELECT 1 FROM comment_likes m WHERE m.comment_id = c.id AND m.user_id = ?) AS liked_by_me"
		args = append(args, viewerID)
	}

	return r.db.WithContext(ctx).
		Table("comments AS c").
		Select(`c.*,
			COALESCE(u.username, '') AS author_username,
			COALESCE(u.display_name, '') AS author_display_name,
			COALESCE(u.avatar_url, '') AS author_avatar_url,
			(SELECT COUNT(*) FROM comment_likes l WHERE l.comment_id = c.id) AS like_count,
			(SELECT COUNT(*) FROM comments rp WHERE rp.parent_id = c.id) AS reply_count,
			`+likedByMe, args...).
		Joins("LEFT JOIN users u ON u.id = c.user_id")
}

func (r *commentRepository) GetView(ctx context.Context, viewerID, id string) (*entity.Comment, error) {
	if !database.ValidID(id) {
		return nil, ErrCommentNotFound
	}

	var rows []commentRow
	if err := r.withCounters(ctx, viewerID).Where("c.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load comment: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrCommentNotFound
	}
	return rows[0].toEntity(), nil
}

// List returns top-level comments newest first, or the direct replies to
// q.ParentID oldest first.
func (r *commentRepository) List(ctx context.Context, viewerID string, q entity.ListQuery) ([]*entity.Comment, error) {
	query := r.withCounters(ctx, viewerID).
		Where("c.content_id = ? AND c.content_type = ?", q.ContentID, q.ContentType)

	if q.ParentID == "" {
		query = query.Where("c.parent_id IS NULL").Order("c.created_at DESC")
	} else {
		query = query.Where("c.parent_id = ?", q.ParentID).Order("c.created_at ASC")
	}

	var rows []commentRow
	if err := query.Limit(q.Limit).Offset(q.Offset).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	comments := make([]*entity.Comment, len(rows))
	for i := range rows {
		comments[i] = rows[i].toEntity()
	}
	return comments, nil
}

func (r *commentRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update comment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCommentNotFound
	}
	return nil
}

// DeleteThread removes a comment together with every reply below it and all
// of their likes. It returns the number of comments removed.
func (r *commentRepository) DeleteThread(ctx context.Context, id string) (int64, error) {
	if !database.ValidID(id) {
		return 0, ErrCommentNotFound
	}

	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := []string{id}
		frontier := []string{id}
		for len(frontier) > 0 {
			var children []string
			if err := tx.Model(&models.Comment{}).Where("parent_id IN ?", frontier).Pluck("id", &children).Error; err != nil {
				return err
			}
			ids = append(ids, children...)
			frontier = children
		}

		if err := tx.Where("comment_id IN ?", ids).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		result := tx.Where("id IN ?", ids).Delete(&models.Comment{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete comment: %w", err)
	}
	if deleted == 0 {
		return 0, ErrCommentNotFound
	}
	return deleted, nil
}

// Like adds userID to the comment's like set. It reports whether the like is
// new; liking twice is a no-op.
func (r *commentRepository) Like(ctx context.Context, commentID, userID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.CommentLike{CommentID: commentID, UserID: userID})
	if result.Error != nil {
		return false, fmt.Errorf("failed to like comment: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *commentRepository) Unlike(ctx context.Context, commentID, userID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("comment_id = ? AND user_id = ?", commentID, userID).
		Delete(&models.CommentLike{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to unlike comment: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *commentRepository) LikeCount(ctx context.Context, commentID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.CommentLike{}).Where("comment_id = ?", commentID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}
	return count, nil
}

// RatingHistogram counts top-level ratings per value in a single GROUP BY.
func (r *commentRepository) RatingHistogram(ctx context.Context, contentID string, contentType content.Type) (map[int]int64, error) {
	var buckets []struct {
		Rating int
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Select("rating, COUNT(*) AS count").
		Where("content_id = ? AND content_type = ? AND parent_id IS NULL AND rating IS NOT NULL", contentID, contentType).
		Group("rating").
		Scan(&buckets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate ratings: %w", err)
	}

	histogram := make(map[int]int64, len(buckets))
	for _, b := range buckets {
		histogram[b.Rating] = b.Count
	}
	return histogram, nil
}

func (r *commentRepository) GetAuthor(ctx context.Context, userID string) (*entity.Author, error) {
	if !database.ValidID(userID) {
		return nil, ErrUserNotFound
	}

	var user models.User
	err := r.db.WithContext(ctx).Select("id", "username", "display_name", "avatar_url").Where("id = ?", userID).First(&user).Error
	if database.IsNotFound(err) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &entity.Author{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		AvatarURL:   user.AvatarURL,
	}, nil
}
