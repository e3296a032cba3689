package usecase

import (
	"context"

	"animov/pkg/catalog"
	"animov/pkg/logger"

	"golang.org/x/sync/errgroup"
)

const maxConcurrentLookups = 8

// Resolver looks up catalog details by namespaced content id. *catalog.Service
// satisfies it.
type Resolver interface {
	Details(ctx context.Context, contentID string) (*catalog.Item, error)
}

// expand resolves catalog details for every item concurrently. Each lookup
// writes only its own slot; items whose lookup failed are dropped and the
// survivors keep their original order.
func expand[T any](ctx context.Context, resolver Resolver, log *logger.Logger, items []T, contentID func(T) string, attach func(T, *catalog.Item)) []T {
	if len(items) == 0 {
		return items
	}

	details := make([]*catalog.Item, len(items))
	var g errgroup.Group
	g.SetLimit(maxConcurrentLookups)
	for i := range items {
		g.Go(func() error {
			id := contentID(items[i])
			item, err := resolver.Details(ctx, id)
			if err != nil {
				log.Warn("Dropping %s from expanded list: %v", id, err)
				return nil
			}
			details[i] = item
			return nil
		})
	}
	g.Wait()

	out := make([]T, 0, len(items))
	for i, item := range items {
		if details[i] == nil {
			continue
		}
		attach(item, details[i])
		out = append(out, item)
	}
	return out
}
