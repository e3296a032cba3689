package persistent

import (
	"animov/pkg/content"
	"animov/pkg/models"
	"animov/services/library/internal/entity"
)

func ToFavoriteEntity(m *models.FavoriteItem) *entity.Favorite {
	if m == nil {
		return nil
	}

	return &entity.Favorite{
		ID:          m.ID,
		UserID:      m.UserID,
		ContentID:   m.ContentID,
		ContentType: content.Type(m.ContentType),
		Title:       m.Title,
		PosterURL:   m.PosterURL,
		Rating:      m.Rating,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func ToFavoriteModel(e *entity.Favorite) *models.FavoriteItem {
	if e == nil {
		return nil
	}

	return &models.FavoriteItem{
		ID:          e.ID,
		UserID:      e.UserID,
		ContentID:   e.ContentID,
		ContentType: string(e.ContentType),
		Title:       e.Title,
		PosterURL:   e.PosterURL,
		Rating:      e.Rating,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func ToListItemEntity(m *models.TrackedItem) *entity.ListItem {
	if m == nil {
		return nil
	}

	return &entity.ListItem{
		ID:          m.ID,
		UserID:      m.UserID,
		ContentID:   m.ContentID,
		ContentType: content.Type(m.ContentType),
		Title:       m.Title,
		PosterURL:   m.PosterURL,
		Status:      m.Status,
		Progress:    m.Progress,
		Notes:       m.Notes,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func ToTrackedModel(e *entity.ListItem) *models.TrackedItem {
	if e == nil {
		return nil
	}

	return &models.TrackedItem{
		ID:          e.ID,
		UserID:      e.UserID,
		ContentID:   e.ContentID,
		ContentType: string(e.ContentType),
		Title:       e.Title,
		PosterURL:   e.PosterURL,
		Status:      e.Status,
		Progress:    e.Progress,
		Notes:       e.Notes,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}
