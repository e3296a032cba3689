package usecase

import (
	"context"
	"errors"

	"animov/pkg/apperr"
	"animov/pkg/catalog"
	"animov/pkg/content"
	"animov/pkg/logger"
)

// Catalog is the part of catalog.Service the use case depends on.
type Catalog interface {
	Search(ctx context.Context, contentType content.Type, query string, page int) (*catalog.Page, error)
	Trending(ctx context.Context, contentType content.Type) (*catalog.Page, error)
	Details(ctx context.Context, contentID string) (*catalog.Item, error)
}

type CatalogUseCase interface {
	Search(ctx context.Context, contentType content.Type, query string, page int) (*catalog.Page, error)
	Trending(ctx context.Context, contentType content.Type) (*catalog.Page, error)
	Details(ctx context.Context, contentType content.Type, id string) (*catalog.Item, error)
}

type catalogUseCase struct {
	catalog Catalog
	logger  *logger.Logger
}

func NewCatalogUseCase(catalog Catalog, logger *logger.Logger) CatalogUseCase {
	return &catalogUseCase{
		catalog: catalog,
		logger:  logger,
	}
}

func checkType(contentType content.Type) error {
	if !contentType.Valid() {
		return apperr.Kind(apperr.ErrValidation, "unknown content type: "+string(contentType))
	}
	return nil
}

func (uc *catalogUseCase) Search(ctx context.Context, contentType content.Type, query string, page int) (*catalog.Page, error) {
	if err := checkType(contentType); err != nil {
		return nil, err
	}
	result, err := uc.catalog.Search(ctx, contentType, query, page)
	if err != nil {
		uc.logUpstream("search", string(contentType), err)
		return nil, err
	}
	return result, nil
}

func (uc *catalogUseCase) Trending(ctx context.Context, contentType content.Type) (*catalog.Page, error) {
	if err := checkType(contentType); err != nil {
		return nil, err
	}
	result, err := uc.catalog.Trending(ctx, contentType)
	if err != nil {
		uc.logUpstream("trending", string(contentType), err)
		return nil, err
	}
	return result, nil
}

// Details accepts either a bare external id ("1399") or one already
// namespaced with the same type ("tv-1399").
func (uc *catalogUseCase) Details(ctx context.Context, contentType content.Type, id string) (*catalog.Item, error) {
	contentID, err := content.Namespace(contentType, id)
	if err != nil {
		return nil, err
	}
	item, err := uc.catalog.Details(ctx, contentID)
	if err != nil {
		if !catalog.IsNotFound(err) {
			uc.logUpstream("details", contentID, err)
		}
		return nil, err
	}
	return item, nil
}

func (uc *catalogUseCase) logUpstream(op, subject string, err error) {
	if uc.logger == nil || errors.Is(err, apperr.ErrValidation) {
		return
	}
	uc.logger.Warn("Catalog %s for %s failed: %v", op, subject, err)
}
