// Package jikan is a thin client for the Jikan v4 API (MyAnimeList anime and
// manga). Jikan allows roughly one request per second per caller, so every call
// first waits on a process-local limiter.
package jikan

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

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.jikan.moe/v4"
	providerName   = "jikan"
	pageSize       = 20
)

// DefaultLimiter admits one request per second with no burst.
func DefaultLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(time.Second), 1)
}

type Client struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewClient builds a client; a nil limiter means DefaultLimiter.
func NewClient(baseURL string, timeout time.Duration, limiter *rate.Limiter) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if limiter == nil {
		limiter = DefaultLimiter()
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		limiter: limiter,
	}
}

type image struct {
	ImageURL      string `json:"image_url"`
	LargeImageURL string `json:"large_image_url"`
}

type entry struct {
	MalID        int      `json:"mal_id"`
	Title        string   `json:"title"`
	TitleEnglish string   `json:"title_english"`
	Synopsis     string   `json:"synopsis"`
	Score        *float64 `json:"score"`
	Year         *int     `json:"year"`
	Episodes     *int     `json:"episodes"`
	Chapters     *int     `json:"chapters"`
	Images       struct {
		JPG image `json:"jpg"`
	} `json:"images"`
	Aired struct {
		From string `json:"from"`
	} `json:"aired"`
	Published struct {
		From string `json:"from"`
	} `json:"published"`
	Genres []struct {
		Name string `json:"name"`
	} `json:"genres"`
	Authors []struct {
		Name string `json:"name"`
	} `json:"authors"`
}

type pagination struct {
	CurrentPage int  `json:"current_page"`
	HasNextPage bool `json:"has_next_page"`
	Items       struct {
		Total int `json:"total"`
	} `json:"items"`
}

type listResponse struct {
	Data       []entry    `json:"data"`
	Pagination pagination `json:"pagination"`
}

type detailsResponse struct {
	Data entry `json:"data"`
}

func (c *Client) Name() string { return providerName }

func segment(contentType content.Type) (string, error) {
	switch contentType {
	case content.TypeAnime:
		return "anime", nil
	case content.TypeManga:
		return "manga", nil
	}
	return "", apperr.Kind(apperr.ErrValidation, "jikan does not serve "+string(contentType))
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("jikan: rate limiter: %w", err)
	}
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return catalog.GetJSON(ctx, c.client, providerName, u, out)
}

func (c *Client) Search(ctx context.Context, contentType content.Type, query string, page int) (*catalog.Page, error) {
	seg, err := segment(contentType)
	if err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(pageSize))
	params.Set("sfw", "true")

	var res listResponse
	if err := c.get(ctx, "/"+seg, params, &res); err != nil {
		return nil, err
	}
	return toPage(contentType, &res), nil
}

func (c *Client) Trending(ctx context.Context, contentType content.Type) (*catalog.Page, error) {
	seg, err := segment(contentType)
	if err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("limit", strconv.Itoa(pageSize))

	var res listResponse
	if err := c.get(ctx, "/top/"+seg, params, &res); err != nil {
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
		return nil, apperr.Kind(apperr.ErrValidation, fmt.Sprintf("invalid MyAnimeList id %q", externalID))
	}

	var res detailsResponse
	if err := c.get(ctx, "/"+seg+"/"+externalID, nil, &res); err != nil {
		return nil, err
	}
	item := toItem(contentType, &res.Data)
	return &item, nil
}

func toPage(contentType content.Type, res *listResponse) *catalog.Page {
	page := &catalog.Page{
		Items:   make([]catalog.Item, 0, len(res.Data)),
		Page:    res.Pagination.CurrentPage,
		HasNext: res.Pagination.HasNextPage,
		Total:   res.Pagination.Items.Total,
	}
	for i := range res.Data {
		page.Items = append(page.Items, toItem(contentType, &res.Data[i]))
	}
	return page
}

func toItem(contentType content.Type, e *entry) catalog.Item {
	title := e.TitleEnglish
	if title == "" {
		title = e.Title
	}
	poster := e.Images.JPG.LargeImageURL
	if poster == "" {
		poster = e.Images.JPG.ImageURL
	}

	externalID := strconv.Itoa(e.MalID)
	item := catalog.Item{
		ID:         string(contentType) + "-" + externalID,
		ExternalID: externalID,
		Type:       contentType,
		Title:      title,
		Overview:   e.Synopsis,
		PosterURL:  poster,
	}
	if e.Score != nil {
		item.Rating = *e.Score
	}
	if e.Episodes != nil {
		item.Episodes = *e.Episodes
	}
	if e.Chapters != nil {
		item.Chapters = *e.Chapters
	}

	switch {
	case e.Year != nil:
		item.Year = *e.Year
	case len(e.Aired.From) >= 4:
		item.Year, _ = strconv.Atoi(e.Aired.From[:4])
	case len(e.Published.From) >= 4:
		item.Year, _ = strconv.Atoi(e.Published.From[:4])
	}

	for _, g := range e.Genres {
		item.Genres = append(item.Genres, g.Name)
	}
	for _, a := range e.Authors {
		item.Authors = append(item.Authors, a.Name)
	}
	return item
}
