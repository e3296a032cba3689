package persistent

import (
	"context"
	"fmt"
	"strings"

	"animov/pkg/apperr"
	"animov/pkg/database"
	"animov/pkg/models"
	"animov/services/auth/internal/entity"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound  = apperr.Kind(apperr.ErrNotFound, "user not found")
	ErrDuplicateUser = apperr.Kind(apperr.ErrConflict, "email or username already taken")
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	AreFriends(ctx context.Context, a, b string) (bool, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	userModel := ToUserModel(user)
	if err := r.db.WithContext(ctx).Create(userModel).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateUser
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	*user = *ToUserEntity(userModel)
	return nil
}

func (r *userRepository) first(ctx context.Context, query string, arg interface{}) (*entity.User, error) {
	var userModel models.User
	if err := r.db.WithContext(ctx).Where(query, arg).First(&userModel).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return ToUserEntity(&userModel), nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.first(ctx, "LOWER(email) = ?", strings.ToLower(email))
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.first(ctx, "LOWER(username) = ?", strings.ToLower(username))
}

func (r *userRepository) Update(ctx context.Context, user *entity.User) error {
	userModel := ToUserModel(user)
	result := r.db.WithContext(ctx).Model(userModel).
		Select("display_name", "avatar_url", "preferences", "notifications", "privacy").
		Updates(userModel)
	if result.Error != nil {
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	user.UpdatedAt = userModel.UpdatedAt
	return nil
}

func (r *userRepository) AreFriends(ctx context.Context, a, b string) (bool, error) {
	low, high := models.OrderedPair(a, b)
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Friendship{}).
		Where("user_low_id = ? AND user_high_id = ? AND status = ?", low, high, models.FriendshipAccepted).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check friendship: %w", err)
	}
	return count > 0, nil
}
