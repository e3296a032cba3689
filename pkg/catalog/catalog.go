// Package catalog normalizes the three third-party content catalogs (TMDB,
// Jikan, Google Books) behind one Item shape and dispatches by content type.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"animov/pkg/apperr"
	"animov/pkg/content"
	"animov/pkg/metrics"
)

var ErrNotFound = apperr.Kind(apperr.ErrNotFound, "content not found")

type Item struct {
	ID          string       `json:"id"`
	ExternalID  string       `json:"externalId"`
	Type        content.Type `json:"type"`
	Title       string       `json:"title"`
	Overview    string       `json:"overview,omitempty"`
	PosterURL   string       `json:"posterUrl,omitempty"`
	BackdropURL string       `json:"backdropUrl,omitempty"`
	Rating      float64      `json:"rating"`
	Year        int          `json:"year,omitempty"`
	Genres      []string     `json:"genres,omitempty"`
	Authors     []string     `json:"authors,omitempty"`
	Episodes    int          `json:"episodes,omitempty"`
	Chapters    int          `json:"chapters,omitempty"`
	Pages       int          `json:"pages,omitempty"`
}

type Page struct {
	Items   []Item `json:"items"`
	Page    int    `json:"page"`
	HasNext bool   `json:"hasNext"`
	Total   int    `json:"total"`
}

// Provider is one upstream catalog. A provider serves a fixed set of content
// types and returns ErrNotFound for unknown ids.
type Provider interface {
	Name() string
	Search(ctx context.Context, contentType content.Type, query string, page int) (*Page, error)
	Details(ctx context.Context, contentType content.Type, externalID string) (*Item, error)
	Trending(ctx context.Context, contentType content.Type) (*Page, error)
}

// GetJSON performs a GET against url and decodes a 2xx JSON body into out.
// A 404 becomes ErrNotFound; any other failure is an upstream error.
func GetJSON(ctx context.Context, client *http.Client, provider, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", provider, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		metrics.CatalogRequestsTotal.WithLabelValues(provider, "error").Inc()
		return fmt.Errorf("%s: request failed: %v: %w", provider, err, apperr.ErrUpstream)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		metrics.CatalogRequestsTotal.WithLabelValues(provider, "not_found").Inc()
		io.Copy(io.Discard, resp.Body)
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		metrics.CatalogRequestsTotal.WithLabelValues(provider, "error").Inc()
		io.Copy(io.Discard, resp.Body)
		return apperr.Kind(apperr.ErrUpstream, fmt.Sprintf("%s returned %d", provider, resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.CatalogRequestsTotal.WithLabelValues(provider, "error").Inc()
		return fmt.Errorf("%s: decode response: %v: %w", provider, err, apperr.ErrUpstream)
	}
	metrics.CatalogRequestsTotal.WithLabelValues(provider, "ok").Inc()
	return nil
}

// IsNotFound reports whether err means the upstream has no such item.
func IsNotFound(err error) bool {
	return errors.Is(err, apperr.ErrNotFound)
}
