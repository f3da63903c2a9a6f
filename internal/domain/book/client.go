package book

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-faster/errors"
)

// UpstreamClient talks to the volumes API that supplies book metadata. The
// API is Google Books shaped: /volumes?q= for search, /volumes/{id} for a
// single volume.
type UpstreamClient struct {
	baseURL string
	http    *http.Client
}

// NewUpstreamClient creates a client for the given base URL, e.g.
// "https://www.googleapis.com/books/v1".
func NewUpstreamClient(baseURL string) *UpstreamClient {
	return &UpstreamClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Upstream wire types. Only the fields the catalog uses are declared.

type volumeInfo struct {
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	Description string   `json:"description"`
	ImageLinks  struct {
		Thumbnail string `json:"thumbnail"`
	} `json:"imageLinks"`
}

type volume struct {
	ID         string     `json:"id"`
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeList struct {
	Items []volume `json:"items"`
}

// Search queries the upstream for volumes matching q.
func (c *UpstreamClient) Search(ctx context.Context, q string, maxResults int) ([]Book, error) {
	u := c.baseURL + "/volumes?q=" + url.QueryEscape(q)
	if maxResults > 0 {
		u += "&maxResults=" + strconv.Itoa(maxResults)
	}

	var list volumeList
	if err := c.getJSON(ctx, u, &list); err != nil {
		return nil, err
	}

	books := make([]Book, len(list.Items))
	for i, v := range list.Items {
		books[i] = v.toBook()
	}
	return books, nil
}

// Get fetches a single volume by ID.
func (c *UpstreamClient) Get(ctx context.Context, id string) (*Book, error) {
	var v volume
	if err := c.getJSON(ctx, c.baseURL+"/volumes/"+url.PathEscape(id), &v); err != nil {
		return nil, err
	}
	if v.ID == "" {
		return nil, ErrNotFound
	}
	b := v.toBook()
	return &b, nil
}

func (c *UpstreamClient) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "build request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "upstream request")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("upstream status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode upstream response")
	}
	return nil
}

// toBook maps an upstream volume to a catalog entry, filling in the derived
// price and pseudo-random stock the upstream does not carry.
func (v volume) toBook() Book {
	desc := v.VolumeInfo.Description
	if desc == "" {
		desc = "No description available."
	}
	authors := v.VolumeInfo.Authors
	if authors == nil {
		authors = []string{}
	}
	return Book{
		ID:          v.ID,
		Title:       v.VolumeInfo.Title,
		Authors:     authors,
		Price:       PriceFromID(v.ID),
		Description: desc,
		Thumbnail:   v.VolumeInfo.ImageLinks.Thumbnail,
		Stock:       randomStock(),
	}
}
