// Package books is a thin client for the Google Books v1 volumes API.
package books

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"animov/pkg/apperr"
	"animov/pkg/catalog"
	"animov/pkg/content"
)

const (
	DefaultBaseURL = "https://www.googleapis.com/books/v1"
	providerName   = "google_books"
	pageSize       = 20
	trendingQuery  = "subject:fiction"
)

type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient builds a client. apiKey is optional; Google Books serves
// unauthenticated reads at a lower quota.
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

type volume struct {
	ID         string `json:"id"`
	VolumeInfo struct {
		Title         string   `json:"title"`
		Subtitle      string   `json:"subtitle"`
		Authors       []string `json:"authors"`
		Description   string   `json:"description"`
		PublishedDate string   `json:"publishedDate"`
		Categories    []string `json:"categories"`
		AverageRating float64  `json:"averageRating"`
		PageCount     int      `json:"pageCount"`
		ImageLinks    struct {
			SmallThumbnail string `json:"smallThumbnail"`
			Thumbnail      string `json:"thumbnail"`
		} `json:"imageLinks"`
	} `json:"volumeInfo"`
}

type listResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []volume `json:"items"`
}

func (c *Client) Name() string { return providerName }

func checkType(contentType content.Type) error {
	if contentType != content.TypeBook {
		return apperr.Kind(apperr.ErrValidation, "google books does not serve "+string(contentType))
	}
	return nil
}

func (c *Client) endpoint(path string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}
	if len(params) == 0 {
		return c.baseURL + path
	}
	return c.baseURL + path + "?" + params.Encode()
}

func (c *Client) list(ctx context.Context, params url.Values, page int) (*catalog.Page, error) {
	startIndex := (page - 1) * pageSize
	params.Set("startIndex", strconv.Itoa(startIndex))
	params.Set("maxResults", strconv.Itoa(pageSize))
	params.Set("printType", "books")

	var res listResponse
	if err := catalog.GetJSON(ctx, c.client, providerName, c.endpoint("/volumes", params), &res); err != nil {
		return nil, err
	}

	out := &catalog.Page{
		Items:   make([]catalog.Item, 0, len(res.Items)),
		Page:    page,
		HasNext: startIndex+len(res.Items) < res.TotalItems,
		Total:   res.TotalItems,
	}
	for i := range res.Items {
		out.Items = append(out.Items, toItem(&res.Items[i]))
	}
	return out, nil
}

func (c *Client) Search(ctx context.Context, contentType content.Type, query string, page int) (*catalog.Page, error) {
	if err := checkType(contentType); err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("q", query)
	return c.list(ctx, params, page)
}

func (c *Client) Trending(ctx context.Context, contentType content.Type) (*catalog.Page, error) {
	if err := checkType(contentType); err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("q", trendingQuery)
	params.Set("orderBy", "newest")
	return c.list(ctx, params, 1)
}

func (c *Client) Details(ctx context.Context, contentType content.Type, externalID string) (*catalog.Item, error) {
	if err := checkType(contentType); err != nil {
		return nil, err
	}

	var v volume
	if err := catalog.GetJSON(ctx, c.client, providerName, c.endpoint("/volumes/"+url.PathEscape(externalID), nil), &v); err != nil {
		return nil, err
	}
	if v.ID == "" {
		return nil, catalog.ErrNotFound
	}
	item := toItem(&v)
	return &item, nil
}

func toItem(v *volume) catalog.Item {
	info := v.VolumeInfo
	title := info.Title
	if info.Subtitle != "" {
		title += ": " + info.Subtitle
	}
	poster := info.ImageLinks.Thumbnail
	if poster == "" {
		poster = info.ImageLinks.SmallThumbnail
	}
	poster = strings.Replace(poster, "http://", "https://", 1)

	item := catalog.Item{
		ID:         string(content.TypeBook) + "-" + v.ID,
		ExternalID: v.ID,
		Type:       content.TypeBook,
		Title:      title,
		Overview:   info.Description,
		PosterURL:  poster,
		// Google Books rates 0-5; the rest of the catalog uses 0-10.
		Rating:  info.AverageRating * 2,
		Genres:  info.Categories,
		Authors: info.Authors,
		Pages:   info.PageCount,
	}
	if len(info.PublishedDate) >= 4 {
		item.Year, _ = strconv.Atoi(info.PublishedDate[:4])
	}
	return item
}
