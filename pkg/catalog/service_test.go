package catalog

import (
	"context"
	"testing"
	"time"

	"animov/pkg/apperr"
	"animov/pkg/content"
	"animov/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	details      map[string]*Item
	detailsCalls int
	lastQuery    string
	lastPage     int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Search(ctx context.Context, contentType content.Type, query string, page int) (*Page, error) {
	f.lastQuery = query
	f.lastPage = page
	return &Page{Page: page, Items: []Item{{ID: string(contentType) + "-1", Title: query}}}, nil
}

func (f *fakeProvider) Details(ctx context.Context, contentType content.Type, externalID string) (*Item, error) {
	f.detailsCalls++
	item, ok := f.details[externalID]
	if !ok {
		return nil, ErrNotFound
	}
	return item, nil
}

func (f *fakeProvider) Trending(ctx context.Context, contentType content.Type) (*Page, error) {
	return &Page{Page: 1}, nil
}

func newTestService(t *testing.T) (*Service, *fakeProvider, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	fake := &fakeProvider{details: map[string]*Item{
		"5114": {ID: "anime-5114", ExternalID: "5114", Type: content.TypeAnime, Title: "Fullmetal Alchemist: Brotherhood"},
	}}
	svc := NewService(map[content.Type]Provider{content.TypeAnime: fake}, rdb, time.Hour, logger.New())
	return svc, fake, mr
}

func TestService_Details_CachesResult(t *testing.T) {
	svc, fake, mr := newTestService(t)
	ctx := context.Background()

	item, err := svc.Details(ctx, "anime-5114")
	require.NoError(t, err)
	assert.Equal(t, "Fullmetal Alchemist: Brotherhood", item.Title)
	assert.True(t, mr.Exists("catalog:item:anime-5114"))

	again, err := svc.Details(ctx, "anime-5114")
	require.NoError(t, err)
	assert.Equal(t, item.Title, again.Title)
	assert.Equal(t, 1, fake.detailsCalls)

	mr.FastForward(2 * time.Hour)
	_, err = svc.Details(ctx, "anime-5114")
	require.NoError(t, err)
	assert.Equal(t, 2, fake.detailsCalls)
}

func TestService_Details_NotFoundIsNotCached(t *testing.T) {
	svc, _, mr := newTestService(t)

	_, err := svc.Details(context.Background(), "anime-1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.False(t, mr.Exists("catalog:item:anime-1"))
}

func TestService_Details_InvalidIDs(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Details(context.Background(), "nonsense")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Details(context.Background(), "movie-603")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestService_Search_Validation(t *testing.T) {
	svc, fake, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Search(ctx, content.TypeAnime, "   ", 1)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Search(ctx, content.TypeAnime, "naruto", maxPage+1)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	page, err := svc.Search(ctx, content.TypeAnime, "  naruto ", 0)
	require.NoError(t, err)
	assert.Equal(t, "naruto", fake.lastQuery)
	assert.Equal(t, 1, fake.lastPage)
	assert.Len(t, page.Items, 1)
}

func TestService_WithoutRedis(t *testing.T) {
	fake := &fakeProvider{details: map[string]*Item{"7": {ID: "anime-7"}}}
	svc := NewService(map[content.Type]Provider{content.TypeAnime: fake}, nil, time.Hour, nil)

	_, err := svc.Details(context.Background(), "anime-7")
	require.NoError(t, err)
	_, err = svc.Details(context.Background(), "anime-7")
	require.NoError(t, err)
	assert.Equal(t, 2, fake.detailsCalls)

	_, err = svc.Trending(context.Background(), content.TypeAnime)
	assert.NoError(t, err)
}
