package persistent

import (
	"animov/pkg/models"
	"animov/services/auth/internal/entity"
)

func ToUserEntity(m *models.User) *entity.User {
	if m == nil {
		return nil
	}

	return &entity.User{
		ID:            m.ID,
		Email:         m.Email,
		Username:      m.Username,
		Password:      m.Password,
		DisplayName:   m.DisplayName,
		AvatarURL:     m.AvatarURL,
		Preferences:   m.Preferences,
		Notifications: m.Notifications,
		Privacy:       m.Privacy,
		IsActive:      m.IsActive,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func ToUserModel(e *entity.User) *models.User {
	if e == nil {
		return nil
	}

	return &models.User{
		ID:            e.ID,
		Email:         e.Email,
		Username:      e.Username,
		Password:      e.Password,
		DisplayName:   e.DisplayName,
		AvatarURL:     e.AvatarURL,
		Preferences:   e.Preferences,
		Notifications: e.Notifications,
		Privacy:       e.Privacy,
		IsActive:      e.IsActive,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}
