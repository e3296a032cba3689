package usecase

import (
	"context"
	"strings"

	"animov/pkg/apperr"
	"animov/pkg/catalog"
	"animov/pkg/content"
	"animov/pkg/logger"
	"animov/services/library/internal/entity"
	"animov/services/library/internal/repo/persistent"
)

type LibraryUseCase interface {
	AddFavorite(ctx context.Context, userID string, in entity.FavoriteInput) (*entity.Favorite, error)
	ListFavorites(ctx context.Context, userID string, contentType content.Type, expand bool) ([]*entity.Favorite, error)
	UpdateFavorite(ctx context.Context, userID, id string, patch entity.FavoritePatch) (*entity.Favorite, error)
	RemoveFavorite(ctx context.Context, userID, id string) error
	FavoriteStatus(ctx context.Context, userID, contentID string, contentType content.Type) (*entity.Membership, error)

	AddToList(ctx context.Context, kind entity.ListKind, userID string, in entity.ListItemInput) (*entity.ListItem, error)
	ListItems(ctx context.Context, kind entity.ListKind, userID string, filter entity.ListFilter, expand bool) ([]*entity.ListItem, error)
	UpdateListItem(ctx context.Context, kind entity.ListKind, userID, id string, patch entity.ListItemPatch) (*entity.ListItem, error)
	RemoveListItem(ctx context.Context, kind entity.ListKind, userID, id string) error
	ListStatus(ctx context.Context, kind entity.ListKind, userID, contentID string, contentType content.Type) (*entity.Membership, error)
}

// listRules is what distinguishes the watchlist from the readlist.
type listRules struct {
	repo          persistent.ListRepository
	accepts       func(content.Type) bool
	validStatus   func(string) bool
	defaultStatus string
	describe      string
}

type libraryUseCase struct {
	favoriteRepo persistent.FavoriteRepository
	lists        map[entity.ListKind]listRules
	resolver     Resolver
	logger       *logger.Logger
}

func NewLibraryUseCase(
	favoriteRepo persistent.FavoriteRepository,
	watchlistRepo persistent.ListRepository,
	readlistRepo persistent.ListRepository,
	resolver Resolver,
	logger *logger.Logger,
) LibraryUseCase {
	return &libraryUseCase{
		favoriteRepo: favoriteRepo,
		lists: map[entity.ListKind]listRules{
			entity.Watchlist: {
				repo:          watchlistRepo,
				accepts:       content.Type.Watchable,
				validStatus:   func(s string) bool { return content.WatchStatus(s).Valid() },
				defaultStatus: string(content.WatchPlanned),
				describe:      "movie, tv or anime",
			},
			entity.Readlist: {
				repo:          readlistRepo,
				accepts:       content.Type.Readable,
				validStatus:   func(s string) bool { return content.ReadStatus(s).Valid() },
				defaultStatus: string(content.ReadPlanned),
				describe:      "manga or book",
			},
		},
		resolver: resolver,
		logger:   logger,
	}
}

func (uc *libraryUseCase) rules(kind entity.ListKind) (listRules, error) {
	rules, ok := uc.lists[kind]
	if !ok {
		return listRules{}, apperr.Kind(apperr.ErrValidation, "unknown list: "+string(kind))
	}
	return rules, nil
}

func (uc *libraryUseCase) AddFavorite(ctx context.Context, userID string, in entity.FavoriteInput) (*entity.Favorite, error) {
	contentID, err := content.Namespace(in.ContentType, in.ContentID)
	if err != nil {
		return nil, err
	}

	existing, err := uc.favoriteRepo.FindByContent(ctx, userID, contentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, persistent.ErrAlreadyListed
	}

	favorite := &entity.Favorite{
		UserID:      userID,
		ContentID:   contentID,
		ContentType: in.ContentType,
		Title:       strings.TrimSpace(in.Title),
		PosterURL:   in.PosterURL,
		Rating:      in.Rating,
	}
	if err := uc.favoriteRepo.Create(ctx, favorite); err != nil {
		return nil, err
	}
	return favorite, nil
}

func (uc *libraryUseCase) ListFavorites(ctx context.Context, userID string, contentType content.Type, expandDetails bool) ([]*entity.Favorite, error) {
	if contentType != "" && !contentType.Valid() {
		return nil, apperr.Kind(apperr.ErrValidation, "unknown content type: "+string(contentType))
	}

	favorites, err := uc.favoriteRepo.List(ctx, userID, contentType)
	if err != nil {
		return nil, err
	}
	if !expandDetails || uc.resolver == nil {
		return favorites, nil
	}
	return expand(ctx, uc.resolver, uc.logger, favorites,
		func(f *entity.Favorite) string { return f.ContentID },
		func(f *entity.Favorite, item *catalog.Item) { f.Details = item },
	), nil
}

func (uc *libraryUseCase) UpdateFavorite(ctx context.Context, userID, id string, patch entity.FavoritePatch) (*entity.Favorite, error) {
	fields := map[string]interface{}{}
	if patch.Title != nil {
		fields["title"] = strings.TrimSpace(*patch.Title)
	}
	if patch.PosterURL != nil {
		fields["poster_url"] = *patch.PosterURL
	}
	if patch.Rating != nil {
		fields["rating"] = *patch.Rating
	}
	if len(fields) == 0 {
		return uc.favoriteRepo.GetByID(ctx, userID, id)
	}

	if err := uc.favoriteRepo.Update(ctx, userID, id, fields); err != nil {
		return nil, err
	}
	return uc.favoriteRepo.GetByID(ctx, userID, id)
}

func (uc *libraryUseCase) RemoveFavorite(ctx context.Context, userID, id string) error {
	return uc.favoriteRepo.Delete(ctx, userID, id)
}

func (uc *libraryUseCase) FavoriteStatus(ctx context.Context, userID, contentID string, contentType content.Type) (*entity.Membership, error) {
	namespaced, err := content.Namespace(contentType, contentID)
	if err != nil {
		return nil, err
	}
	favorite, err := uc.favoriteRepo.FindByContent(ctx, userID, namespaced)
	if err != nil {
		return nil, err
	}
	if favorite == nil {
		return &entity.Membership{InList: false}, nil
	}
	return &entity.Membership{InList: true, Item: favorite}, nil
}

func (uc *libraryUseCase) AddToList(ctx context.Context, kind entity.ListKind, userID string, in entity.ListItemInput) (*entity.ListItem, error) {
	rules, err := uc.rules(kind)
	if err != nil {
		return nil, err
	}
	if !rules.accepts(in.ContentType) {
		return nil, apperr.Kind(apperr.ErrValidation, "the "+string(kind)+" only accepts "+rules.describe)
	}
	contentID, err := content.Namespace(in.ContentType, in.ContentID)
	if err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = rules.defaultStatus
	}
	if !rules.validStatus(status) {
		return nil, apperr.Kind(apperr.ErrValidation, "invalid "+string(kind)+" status: "+status)
	}
	if in.Progress != nil && *in.Progress < 0 {
		return nil, apperr.Kind(apperr.ErrValidation, "progress cannot be negative")
	}

	existing, err := rules.repo.FindByContent(ctx, userID, contentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, persistent.ErrAlreadyListed
	}

	item := &entity.ListItem{
		UserID:      userID,
		ContentID:   contentID,
		ContentType: in.ContentType,
		Title:       strings.TrimSpace(in.Title),
		PosterURL:   in.PosterURL,
		Status:      status,
		Progress:    in.Progress,
		Notes:       in.Notes,
	}
	if err := rules.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (uc *libraryUseCase) ListItems(ctx context.Context, kind entity.ListKind, userID string, filter entity.ListFilter, expandDetails bool) ([]*entity.ListItem, error) {
	rules, err := uc.rules(kind)
	if err != nil {
		return nil, err
	}
	if filter.Status != "" && !rules.validStatus(filter.Status) {
		return nil, apperr.Kind(apperr.ErrValidation, "invalid "+string(kind)+" status: "+filter.Status)
	}
	if filter.ContentType != "" && !rules.accepts(filter.ContentType) {
		return nil, apperr.Kind(apperr.ErrValidation, "the "+string(kind)+" only holds "+rules.describe)
	}

	items, err := rules.repo.List(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	if !expandDetails || uc.resolver == nil {
		return items, nil
	}
	return expand(ctx, uc.resolver, uc.logger, items,
		func(i *entity.ListItem) string { return i.ContentID },
		func(i *entity.ListItem, item *catalog.Item) { i.Details = item },
	), nil
}

func (uc *libraryUseCase) UpdateListItem(ctx context.Context, kind entity.ListKind, userID, id string, patch entity.ListItemPatch) (*entity.ListItem, error) {
	rules, err := uc.rules(kind)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if patch.Status != nil {
		if !rules.validStatus(*patch.Status) {
			return nil, apperr.Kind(apperr.ErrValidation, "invalid "+string(kind)+" status: "+*patch.Status)
		}
		fields["status"] = *patch.Status
	}
	if patch.Progress != nil {
		if *patch.Progress < 0 {
			return nil, apperr.Kind(apperr.ErrValidation, "progress cannot be negative")
		}
		fields["progress"] = *patch.Progress
	}
	if patch.Notes != nil {
		fields["notes"] = *patch.Notes
	}
	if len(fields) == 0 {
		return rules.repo.GetByID(ctx, userID, id)
	}

	if err := rules.repo.Update(ctx, userID, id, fields); err != nil {
		return nil, err
	}
	return rules.repo.GetByID(ctx, userID, id)
}

func (uc *libraryUseCase) RemoveListItem(ctx context.Context, kind entity.ListKind, userID, id string) error {
	rules, err := uc.rules(kind)
	if err != nil {
		return err
	}
	return rules.repo.Delete(ctx, userID, id)
}

func (uc *libraryUseCase) ListStatus(ctx context.Context, kind entity.ListKind, userID, contentID string, contentType content.Type) (*entity.Membership, error) {
	rules, err := uc.rules(kind)
	if err != nil {
		return nil, err
	}
	namespaced, err := content.Namespace(contentType, contentID)
	if err != nil {
		return nil, err
	}
	item, err := rules.repo.FindByContent(ctx, userID, namespaced)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return &entity.Membership{InList: false}, nil
	}
	return &entity.Membership{InList: true, Item: item}, nil
}
