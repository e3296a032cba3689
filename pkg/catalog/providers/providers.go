// Package providers assembles the catalog service from the configured
// upstream clients.
package providers

import (
	"animov/pkg/catalog"
	"animov/pkg/catalog/books"
	"animov/pkg/catalog/jikan"
	"animov/pkg/catalog/tmdb"
	"animov/pkg/config"
	"animov/pkg/content"
	"animov/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// New routes movie and tv to TMDB, anime and manga to Jikan, and books to
// Google Books. redisClient may be nil.
func New(cfg *config.Config, redisClient *redis.Client, log *logger.Logger) *catalog.Service {
	movies := tmdb.NewClient(cfg.TMDBBaseURL, cfg.TMDBAPIKey, cfg.CatalogTimeout)
	anime := jikan.NewClient(cfg.JikanBaseURL, cfg.CatalogTimeout, nil)
	bookClient := books.NewClient(cfg.GoogleBooksBaseURL, cfg.GoogleBooksAPIKey, cfg.CatalogTimeout)

	return catalog.NewService(map[content.Type]catalog.Provider{
		content.TypeMovie: movies,
		content.TypeTV:    movies,
		content.TypeAnime: anime,
		content.TypeManga: anime,
		content.TypeBook:  bookClient,
	}, redisClient, cfg.CatalogCacheTTL, log)
}
