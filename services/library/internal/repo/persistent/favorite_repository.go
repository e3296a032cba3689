package persistent

import (
	"context"
	"fmt"
	"time"

	"animov/pkg/apperr"
	"animov/pkg/content"
	"animov/pkg/database"
	"animov/pkg/models"
	"animov/services/library/internal/entity"

	"gorm.io/gorm"
)

var (
	ErrItemNotFound  = apperr.Kind(apperr.ErrNotFound, "list item not found")
	ErrAlreadyListed = apperr.Kind(apperr.ErrConflict, "content is already in this list")
)

type FavoriteRepository interface {
	Create(ctx context.Context, favorite *entity.Favorite) error
	GetByID(ctx context.Context, userID, id string) (*entity.Favorite, error)
	FindByContent(ctx context.Context, userID, contentID string) (*entity.Favorite, error)
	List(ctx context.Context, userID string, contentType content.Type) ([]*entity.Favorite, error)
	Update(ctx context.Context, userID, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, userID, id string) error
}

type favoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Create(ctx context.Context, favorite *entity.Favorite) error {
	favoriteModel := ToFavoriteModel(favorite)
	if err := r.db.WithContext(ctx).Create(favoriteModel).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return ErrAlreadyListed
		}
		return fmt.Errorf("failed to create favorite: %w", err)
	}
	*favorite = *ToFavoriteEntity(favoriteModel)
	return nil
}

func (r *favoriteRepository) GetByID(ctx context.Context, userID, id string) (*entity.Favorite, error) {
	if !database.ValidID(id) {
		return nil, ErrItemNotFound
	}
	var favoriteModel models.FavoriteItem
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&favoriteModel).Error
	if database.IsNotFound(err) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load favorite: %w", err)
	}
	return ToFavoriteEntity(&favoriteModel), nil
}

// FindByContent returns (nil, nil) when the user has not favorited contentID.
func (r *favoriteRepository) FindByContent(ctx context.Context, userID, contentID string) (*entity.Favorite, error) {
	var favoriteModels []models.FavoriteItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND content_id = ?", userID, contentID).
		Limit(1).
		Find(&favoriteModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to look up favorite: %w", err)
	}
	if len(favoriteModels) == 0 {
		return nil, nil
	}
	return ToFavoriteEntity(&favoriteModels[0]), nil
}

func (r *favoriteRepository) List(ctx context.Context, userID string, contentType content.Type) ([]*entity.Favorite, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if contentType != "" {
		query = query.Where("content_type = ?", contentType)
	}

	var favoriteModels []models.FavoriteItem
	if err := query.Order("created_at DESC").Find(&favoriteModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}

	favorites := make([]*entity.Favorite, len(favoriteModels))
	for i := range favoriteModels {
		favorites[i] = ToFavoriteEntity(&favoriteModels[i])
	}
	return favorites, nil
}

func (r *favoriteRepository) Update(ctx context.Context, userID, id string, fields map[string]interface{}) error {
	if !database.ValidID(id) {
		return ErrItemNotFound
	}
	fields["updated_at"] = time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&models.FavoriteItem{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update favorite: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *favoriteRepository) Delete(ctx context.Context, userID, id string) error {
	if !database.ValidID(id) {
		return ErrItemNotFound
	}
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.FavoriteItem{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete favorite: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}
