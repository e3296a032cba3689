package persistent

import (
	"context"
	"fmt"

	"animov/pkg/apperr"
	"animov/pkg/database"
	"animov/pkg/models"

	"gorm.io/gorm"
)

var ErrUserNotFound = apperr.Kind(apperr.ErrNotFound, "user not found")

type NotificationRepository interface {
	GetSettings(ctx context.Context, userID string) (*models.NotificationSettings, error)
	GetUsername(ctx context.Context, userID string) (string, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) findUser(ctx context.Context, userID string, columns ...string) (*models.User, error) {
	if !database.ValidID(userID) {
		return nil, ErrUserNotFound
	}
	var user models.User
	err := r.db.WithContext(ctx).
		Select(columns).
		Where("id = ? AND is_active = ?", userID, true).
		First(&user).Error
	if database.IsNotFound(err) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", userID, err)
	}
	return &user, nil
}

// GetSettings returns the recipient's notification toggles.
func (r *notificationRepository) GetSettings(ctx context.Context, userID string) (*models.NotificationSettings, error) {
	user, err := r.findUser(ctx, userID, "id", "notifications")
	if err != nil {
		return nil, err
	}
	return &user.Notifications, nil
}

func (r *notificationRepository) GetUsername(ctx context.Context, userID string) (string, error) {
	user, err := r.findUser(ctx, userID, "id", "username", "display_name")
	if err != nil {
		return "", err
	}
	if user.DisplayName != "" {
		return user.DisplayName, nil
	}
	return user.Username, nil
}
