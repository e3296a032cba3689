package persistent

import (
	"context"
	"fmt"
	"time"

	"animov/pkg/database"
	"animov/pkg/models"
	"animov/services/library/internal/entity"

	"gorm.io/gorm"
)

// ListRepository serves one status-tracked list table. The watchlist and the
// readlist share the row shape and differ only in table name.
type ListRepository interface {
	Create(ctx context.Context, item *entity.ListItem) error
	GetByID(ctx context.Context, userID, id string) (*entity.ListItem, error)
	FindByContent(ctx context.Context, userID, contentID string) (*entity.ListItem, error)
	List(ctx context.Context, userID string, filter entity.ListFilter) ([]*entity.ListItem, error)
	Update(ctx context.Context, userID, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, userID, id string) error
}

type listRepository struct {
	db    *gorm.DB
	table string
}

func NewWatchlistRepository(db *gorm.DB) ListRepository {
	return &listRepository{db: db, table: models.WatchlistTable}
}

func NewReadlistRepository(db *gorm.DB) ListRepository {
	return &listRepository{db: db, table: models.ReadlistTable}
}

func (r *listRepository) scope(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table(r.table)
}

func (r *listRepository) Create(ctx context.Context, item *entity.ListItem) error {
	itemModel := ToTrackedModel(item)
	if err := r.scope(ctx).Create(itemModel).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return ErrAlreadyListed
		}
		return fmt.Errorf("failed to add to %s: %w", r.table, err)
	}
	*item = *ToListItemEntity(itemModel)
	return nil
}

func (r *listRepository) GetByID(ctx context.Context, userID, id string) (*entity.ListItem, error) {
	if !database.ValidID(id) {
		return nil, ErrItemNotFound
	}
	var itemModels []models.TrackedItem
	err := r.scope(ctx).Where("id = ? AND user_id = ?", id, userID).Limit(1).Find(&itemModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load %s item: %w", r.table, err)
	}
	if len(itemModels) == 0 {
		return nil, ErrItemNotFound
	}
	return ToListItemEntity(&itemModels[0]), nil
}

// FindByContent returns (nil, nil) when contentID is not in the list.
func (r *listRepository) FindByContent(ctx context.Context, userID, contentID string) (*entity.ListItem, error) {
	var itemModels []models.TrackedItem
	err := r.scope(ctx).Where("user_id = ? AND content_id = ?", userID, contentID).Limit(1).Find(&itemModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s item: %w", r.table, err)
	}
	if len(itemModels) == 0 {
		return nil, nil
	}
	return ToListItemEntity(&itemModels[0]), nil
}

func (r *listRepository) List(ctx context.Context, userID string, filter entity.ListFilter) ([]*entity.ListItem, error) {
	query := r.scope(ctx).Where("user_id = ?", userID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ContentType != "" {
		query = query.Where("content_type = ?", filter.ContentType)
	}

	var itemModels []models.TrackedItem
	if err := query.Order("created_at DESC").Find(&itemModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.table, err)
	}

	items := make([]*entity.ListItem, len(itemModels))
	for i := range itemModels {
		items[i] = ToListItemEntity(&itemModels[i])
	}
	return items, nil
}

func (r *listRepository) Update(ctx context.Context, userID, id string, fields map[string]interface{}) error {
	if !database.ValidID(id) {
		return ErrItemNotFound
	}
	fields["updated_at"] = time.Now().UTC()
	result := r.scope(ctx).Where("id = ? AND user_id = ?", id, userID).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update %s item: %w", r.table, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *listRepository) Delete(ctx context.Context, userID, id string) error {
	if !database.ValidID(id) {
		return ErrItemNotFound
	}
	result := r.scope(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.TrackedItem{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete %s item: %w", r.table, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}
