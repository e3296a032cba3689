package persistent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"animov/pkg/apperr"
	"animov/pkg/database"
	"animov/pkg/models"
	"animov/services/social/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrUserNotFound       = apperr.Kind(apperr.ErrNotFound, "user not found")
	ErrFriendshipNotFound = apperr.Kind(apperr.ErrNotFound, "friend request not found")
	ErrRelationshipExists = apperr.Kind(apperr.ErrConflict, "a relationship with this user already exists")
	ErrBlockNotFound      = apperr.Kind(apperr.ErrNotFound, "user is not blocked")
)

type FriendshipRepository interface {
	FindUser(ctx context.Context, id string) (*entity.UserSummary, error)
	FindUserByUsername(ctx context.Context, username string) (*entity.UserSummary, error)

	FindPair(ctx context.Context, a, b string) (*models.Friendship, error)
	GetView(ctx context.Context, viewerID, id string) (*entity.Friendship, error)
	CreateRequest(ctx context.Context, requesterID, addresseeID string) (*models.Friendship, error)
	Accept(ctx context.Context, id, addresseeID string) error
	DeletePending(ctx context.Context, id, userID string) error
	DeleteAccepted(ctx context.Context, id, userID string) error
	Block(ctx context.Context, blockerID, targetID string) (bool, error)
	Unblock(ctx context.Context, blockerID, targetID string) error

	ListAccepted(ctx context.Context, userID string) ([]*entity.Friendship, error)
	ListPending(ctx context.Context, userID string, direction entity.Direction) ([]*entity.Friendship, error)
	ListBlocked(ctx context.Context, userID string) ([]*entity.Friendship, error)
}

type friendshipRepository struct {
	db *gorm.DB
}

func NewFriendshipRepository(db *gorm.DB) FriendshipRepository {
	return &friendshipRepository{db: db}
}

func (r *friendshipRepository) FindUser(ctx context.Context, id string) (*entity.UserSummary, error) {
	if !database.ValidID(id) {
		return nil, ErrUserNotFound
	}
	return r.findUser(ctx, "id = ? AND is_active = ?", id, true)
}

func (r *friendshipRepository) FindUserByUsername(ctx context.Context, username string) (*entity.UserSummary, error) {
	return r.findUser(ctx, "LOWER(username) = ? AND is_active = ?", strings.ToLower(strings.TrimSpace(username)), true)
}

func (r *friendshipRepository) findUser(ctx context.Context, query string, args ...interface{}) (*entity.UserSummary, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error
	if database.IsNotFound(err) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return ToUserSummary(&user), nil
}

// FindPair returns the row for the unordered pair {a, b}, or (nil, nil).
func (r *friendshipRepository) FindPair(ctx context.Context, a, b string) (*models.Friendship, error) {
	low, high := models.OrderedPair(a, b)

	var rows []models.Friendship
	err := r.db.WithContext(ctx).
		Where("user_low_id = ? AND user_high_id = ?", low, high).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to look up friendship: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// withCounterpart selects friendships involving viewerID joined with the
// other user's public fields.
func (r *friendshipRepository) withCounterpart(ctx context.Context, viewerID string) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("friendships AS f").
		Select(`f.*,
			u.username AS other_username,
			u.display_name AS other_display_name,
			u.avatar_url AS other_avatar_url`).
		Joins("JOIN users u ON u.id = CASE WHEN f.user_low_id = ? THEN f.user_high_id ELSE f.user_low_id END AND u.deleted_at IS NULL", viewerID).
		Where("(f.user_low_id = ? OR f.user_high_id = ?)", viewerID, viewerID)
}

func (r *friendshipRepository) list(query *gorm.DB, viewerID string) ([]*entity.Friendship, error) {
	var rows []friendshipRow
	if err := query.Order("f.updated_at DESC").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list friendships: %w", err)
	}

	friendships := make([]*entity.Friendship, len(rows))
	for i := range rows {
		friendships[i] = rows[i].toEntity(viewerID)
	}
	return friendships, nil
}

func (r *friendshipRepository) GetView(ctx context.Context, viewerID, id string) (*entity.Friendship, error) {
	if !database.ValidID(id) {
		return nil, ErrFriendshipNotFound
	}

	friendships, err := r.list(r.withCounterpart(ctx, viewerID).Where("f.id = ?", id), viewerID)
	if err != nil {
		return nil, err
	}
	if len(friendships) == 0 {
		return nil, ErrFriendshipNotFound
	}
	return friendships[0], nil
}

// CreateRequest inserts a pending row. The pair's unique index turns a
// concurrent request in either direction into ErrRelationshipExists.
func (r *friendshipRepository) CreateRequest(ctx context.Context, requesterID, addresseeID string) (*models.Friendship, error) {
	low, high := models.OrderedPair(requesterID, addresseeID)
	friendship := &models.Friendship{
		UserLowID:   low,
		UserHighID:  high,
		RequesterID: requesterID,
		Status:      models.FriendshipPending,
	}
	if err := r.db.WithContext(ctx).Create(friendship).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrRelationshipExists
		}
		return nil, fmt.Errorf("failed to create friend request: %w", err)
	}
	return friendship, nil
}

// Accept moves a pending request to accepted in one statement. Only the
// addressee can accept.
func (r *friendshipRepository) Accept(ctx context.Context, id, addresseeID string) error {
	if !database.ValidID(id) {
		return ErrFriendshipNotFound
	}

	result := r.db.WithContext(ctx).Model(&models.Friendship{}).
		Where("id = ? AND status = ? AND requester_id <> ? AND (user_low_id = ? OR user_high_id = ?)",
			id, models.FriendshipPending, addresseeID, addresseeID, addresseeID).
		Updates(map[string]interface{}{
			"status":     models.FriendshipAccepted,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to accept friend request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrFriendshipNotFound
	}
	return nil
}

func (r *friendshipRepository) deleteWithStatus(ctx context.Context, id, userID string, status models.FriendshipStatus) error {
	if !database.ValidID(id) {
		return ErrFriendshipNotFound
	}

	result := r.db.WithContext(ctx).
		Where("id = ? AND status = ? AND (user_low_id = ? OR user_high_id = ?)", id, status, userID, userID).
		Delete(&models.Friendship{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete friendship: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrFriendshipNotFound
	}
	return nil
}

// DeletePending rejects (addressee) or cancels (requester) a request.
func (r *friendshipRepository) DeletePending(ctx context.Context, id, userID string) error {
	return r.deleteWithStatus(ctx, id, userID, models.FriendshipPending)
}

func (r *friendshipRepository) DeleteAccepted(ctx context.Context, id, userID string) error {
	return r.deleteWithStatus(ctx, id, userID, models.FriendshipAccepted)
}

// Block upserts the pair to blocked with blockerID as requester. A pair the
// other user already blocked is left alone and reported as false.
func (r *friendshipRepository) Block(ctx context.Context, blockerID, targetID string) (bool, error) {
	low, high := models.OrderedPair(blockerID, targetID)
	now := time.Now().UTC()
	friendship := &models.Friendship{
		UserLowID:   low,
		UserHighID:  high,
		RequesterID: blockerID,
		Status:      models.FriendshipBlocked,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_low_id"}, {Name: "user_high_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "requester_id", "updated_at"}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "friendships.status <> ? OR friendships.requester_id = ?", Vars: []interface{}{models.FriendshipBlocked, blockerID}},
		}},
	}).Create(friendship)
	if result.Error != nil {
		return false, fmt.Errorf("failed to block user: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *friendshipRepository) Unblock(ctx context.Context, blockerID, targetID string) error {
	low, high := models.OrderedPair(blockerID, targetID)
	result := r.db.WithContext(ctx).
		Where("user_low_id = ? AND user_high_id = ? AND status = ? AND requester_id = ?", low, high, models.FriendshipBlocked, blockerID).
		Delete(&models.Friendship{})
	if result.Error != nil {
		return fmt.Errorf("failed to unblock user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrBlockNotFound
	}
	return nil
}

func (r *friendshipRepository) ListAccepted(ctx context.Context, userID string) ([]*entity.Friendship, error) {
	return r.list(r.withCounterpart(ctx, userID).Where("f.status = ?", models.FriendshipAccepted), userID)
}

// ListPending returns incoming, outgoing, or (direction "") both kinds of
// pending request.
func (r *friendshipRepository) ListPending(ctx context.Context, userID string, direction entity.Direction) ([]*entity.Friendship, error) {
	query := r.withCounterpart(ctx, userID).Where("f.status = ?", models.FriendshipPending)
	switch direction {
	case entity.Incoming:
		query = query.Where("f.requester_id <> ?", userID)
	case entity.Outgoing:
		query = query.Where("f.requester_id = ?", userID)
	}
	return r.list(query, userID)
}

// ListBlocked returns the users userID has blocked.
func (r *friendshipRepository) ListBlocked(ctx context.Context, userID string) ([]*entity.Friendship, error) {
	return r.list(r.withCounterpart(ctx, userID).Where("f.status = ? AND f.requester_id = ?", models.FriendshipBlocked, userID), userID)
}
