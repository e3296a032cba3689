// Package tmdb is a thin client for The Movie Database v3 API (movies and TV).
package tmdb

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"animov/pkg/apperr"
	"animov/pkg/catalog"
	"animov/pkg/content"
)

const (
	DefaultBaseURL = "https://api.themoviedb.org/3"
	posterBase     = "https://image.tmdb.org/t/p/w500"
	backdropBase   = "https://image.tmdb.org/t/p/original"
	providerName   = "tmdb"
)

type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// Responses
type result struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`          // Movies
	Name         string  `json:"name"`           // TV
	ReleaseDate  string  `json:"release_date"`   // Movies
	FirstAirDate string  `json:"first_air_date"` // TV
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	VoteAverage  float64 `json:"vote_average"`
}

type listResponse struct {
	Page         int      `json:"page"`
	Results      []result `json:"results"`
	TotalPages   int      `json:"total_pages"`
	TotalResults int      `json:"total_results"`
}

type detailsResponse struct {
	result
	NumberOfEpisodes int `json:"number_of_episodes"`
	Genres           []struct {
		Name string `json:"name"`
	} `json:"genres"`
}

func (c *Client) Name() string { return providerName }

func segment(contentType content.Type) (string, error) {
	switch contentType {
	case content.TypeMovie:
		return "movie", nil
	case content.TypeTV:
		return "tv", nil
	}
	return "", apperr.Kind(apperr.ErrValidation, "tmdb does not serve "+string(contentType))
}

func (c *Client) endpoint(path string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	return c.baseURL + path + "?" + params.Encode()
}

func (c *Client) Search(ctx context.Context, contentType content.Type, query string, page int) (*catalog.Page, error) {
	seg, err := segment(contentType)
	if err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("include_adult", "false")

	var res listResponse
	if err := catalog.GetJSON(ctx, c.client, providerName, c.endpoint("/search/"+seg, params), &res); err != nil {
		return nil, err
	}
	return toPage(contentType, &res), nil
}

func (c *Client) Trending(ctx context.Context, contentType content.Type) (*catalog.Page, error) {
	seg, err := segment(contentType)
	if err != nil {
		return nil, err
	}

	var res listResponse
	if err := catalog.GetJSON(ctx, c.client, providerName, c.endpoint("/trending/"+seg+"/week", nil), &res); err != nil {
		return nil, err
	}
	return toPage(contentType, &res), nil
}

func (c *Client) Details(ctx context.Context, contentType content.Type, externalID string) (*catalog.Item, error) {
	seg, err := segment(contentType)
	if err != nil {
		return nil, err
	}
	if _, err := strconv.Atoi(externalID); err != nil {
		return nil, apperr.Kind(apperr.ErrValidation, fmt.Sprintf("invalid tmdb id %q", externalID))
	}

	var d detailsResponse
	if err := catalog.GetJSON(ctx, c.client, providerName, c.endpoint("/"+seg+"/"+externalID, nil), &d); err != nil {
		return nil, err
	}

	item := toItem(contentType, &d.result)
	for _, g := range d.Genres {
		item.Genres = append(item.Genres, g.Name)
	}
	item.Episodes = d.NumberOfEpisodes
	return &item, nil
}

func toPage(contentType content.Type, res *listResponse) *catalog.Page {
	page := &catalog.Page{
		Items:   make([]catalog.Item, 0, len(res.Results)),
		Page:    res.Page,
		HasNext: res.Page < res.TotalPages,
		Total:   res.TotalResults,
	}
	for i := range res.Results {
		page.Items = append(page.Items, toItem(contentType, &res.Results[i]))
	}
	return page
}

func toItem(contentType content.Type, r *result) catalog.Item {
	title := r.Title
	if title == "" {
		title = r.Name
	}
	date := r.ReleaseDate
	if date == "" {
		date = r.FirstAirDate
	}

	externalID := strconv.Itoa(r.ID)
	item := catalog.Item{
		ID:         string(contentType) + "-" + externalID,
		ExternalID: externalID,
		Type:       contentType,
		Title:      title,
		Overview:   r.Overview,
		Rating:     r.VoteAverage,
		Year:       yearOf(date),
	}
	if r.PosterPath != "" {
		item.PosterURL = posterBase + r.PosterPath
	}
	if r.BackdropPath != "" {
		item.BackdropURL = backdropBase + r.BackdropPath
	}
	return item
}

func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
