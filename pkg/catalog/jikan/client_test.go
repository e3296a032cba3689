package jikan

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"animov/pkg/apperr"
	"animov/pkg/catalog"
	"animov/pkg/content"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, rate.NewLimiter(rate.Inf, 1))
}

func TestClient_Search(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/anime", r.URL.Path)
		assert.Equal(t, "frieren", r.URL.Query().Get("q"))
		assert.Equal(t, "true", r.URL.Query().Get("sfw"))
		w.Write([]byte(`{"pagination":{"current_page":1,"has_next_page":false,"items":{"total":1}},
			"data":[{"mal_id":52991,"title":"Sousou no Frieren","title_english":"Frieren: Beyond Journey's End",
			"score":9.3,"year":2023,"episodes":28,"images":{"jpg":{"image_url":"s.jpg","large_image_url":"l.jpg"}},
			"genres":[{"name":"Adventure"}]}]}`))
	})

	page, err := client.Search(context.Background(), content.TypeAnime, "frieren", 1)
	require.NoError(t, err)
	assert.False(t, page.HasNext)
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Items, 1)

	item := page.Items[0]
	assert.Equal(t, "anime-52991", item.ID)
	assert.Equal(t, "Frieren: Beyond Journey's End", item.Title)
	assert.Equal(t, 9.3, item.Rating)
	assert.Equal(t, 2023, item.Year)
	assert.Equal(t, 28, item.Episodes)
	assert.Equal(t, "l.jpg", item.PosterURL)
	assert.Equal(t, []string{"Adventure"}, item.Genres)
}

func TestClient_Details_MangaWithNulls(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/manga/2", r.URL.Path)
		w.Write([]byte(`{"data":{"mal_id":2,"title":"Berserk","score":null,"chapters":null,
			"published":{"from":"1989-08-25T00:00:00+00:00"},"authors":[{"name":"Miura, Kentarou"}],
			"images":{"jpg":{"image_url":"b.jpg"}}}}`))
	})

	item, err := client.Details(context.Background(), content.TypeManga, "2")
	require.NoError(t, err)
	assert.Equal(t, "manga-2", item.ID)
	assert.Equal(t, "Berserk", item.Title)
	assert.Zero(t, item.Rating)
	assert.Zero(t, item.Chapters)
	assert.Equal(t, 1989, item.Year)
	assert.Equal(t, "b.jpg", item.PosterURL)
	assert.Equal(t, []string{"Miura, Kentarou"}, item.Authors)
}

func TestClient_Details_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.Details(context.Background(), content.TypeAnime, "1")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestClient_Trending(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/top/manga", r.URL.Path)
		w.Write([]byte(`{"pagination":{"current_page":1,"has_next_page":true,"items":{"total":100}},"data":[]}`))
	})

	page, err := client.Trending(context.Background(), content.TypeManga)
	require.NoError(t, err)
	assert.True(t, page.HasNext)
	assert.Empty(t, page.Items)
}

func TestClient_RejectsForeignTypes(t *testing.T) {
	client := NewClient("", time.Second, nil)

	_, err := client.Trending(context.Background(), content.TypeBook)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = client.Details(context.Background(), content.TypeAnime, "not-a-number")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestClient_LimiterHonoursContext(t *testing.T) {
	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	require.True(t, limiter.Allow())

	client := NewClient("http://127.0.0.1:0", time.Second, limiter)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Details(ctx, content.TypeAnime, "1")
	assert.Error(t, err)
}
