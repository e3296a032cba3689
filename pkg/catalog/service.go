package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"animov/pkg/apperr"
	"animov/pkg/content"
	"animov/pkg/logger"
	"animov/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	maxQueryLength = 200
	maxPage        = 100
)

// Service routes catalog calls to the provider for each content type and
// caches detail lookups in Redis when a client is configured.
type Service struct {
	providers   map[content.Type]Provider
	redisClient *redis.Client
	cacheTTL    time.Duration
	logger      *logger.Logger
}

func NewService(providers map[content.Type]Provider, redisClient *redis.Client, cacheTTL time.Duration, log *logger.Logger) *Service {
	return &Service{
		providers:   providers,
		redisClient: redisClient,
		cacheTTL:    cacheTTL,
		logger:      log,
	}
}

func (s *Service) provider(contentType content.Type) (Provider, error) {
	p, ok := s.providers[contentType]
	if !ok {
		return nil, apperr.Kind(apperr.ErrValidation, "unsupported content type: "+string(contentType))
	}
	return p, nil
}

func (s *Service) Search(ctx context.Context, contentType content.Type, query string, page int) (*Page, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.Kind(apperr.ErrValidation, "query is required")
	}
	if len(query) > maxQueryLength {
		return nil, apperr.Kind(apperr.ErrValidation, "query is too long")
	}
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		return nil, apperr.Kind(apperr.ErrValidation, "page is out of range")
	}

	p, err := s.provider(contentType)
	if err != nil {
		return nil, err
	}
	return p.Search(ctx, contentType, query, page)
}

func (s *Service) Trending(ctx context.Context, contentType content.Type) (*Page, error) {
	p, err := s.provider(contentType)
	if err != nil {
		return nil, err
	}
	return p.Trending(ctx, contentType)
}

// Details resolves a namespaced content id ("anime-5114").
func (s *Service) Details(ctx context.Context, contentID string) (*Item, error) {
	contentType, externalID, err := content.Split(contentID)
	if err != nil {
		return nil, err
	}
	p, err := s.provider(contentType)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("catalog:item:%s", contentID)
	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, key).Bytes(); err == nil {
			var item Item
			if err := json.Unmarshal(cached, &item); err == nil {
				metrics.CatalogCacheHits.Inc()
				return &item, nil
			}
		}
		metrics.CatalogCacheMisses.Inc()
	}

	item, err := p.Details(ctx, contentType, externalID)
	if err != nil {
		return nil, err
	}

	if s.redisClient != nil && s.cacheTTL > 0 {
		if encoded, err := json.Marshal(item); err == nil {
			if err := s.redisClient.Set(ctx, key, encoded, s.cacheTTL).Err(); err != nil && s.logger != nil {
				s.logger.Warn("Failed to cache catalog item %s: %v", contentID, err)
			}
		}
	}
	return item, nil
}
