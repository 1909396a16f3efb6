package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"github.com/ntandomods/wabot/pkg/wabot/download"
)

// Unsplash searches photos. Implements the commands.ImageSearcher contract.
type Unsplash struct {
	http *resty.Client
	key  string

	// searchURL is overridable in tests.
	searchURL string
}

// NewUnsplash creates an Unsplash provider. Returns nil when no key is
// configured so callers can wire the degraded path.
func NewUnsplash(key string) *Unsplash {
	if key == "" {
		return nil
	}
	return &Unsplash{
		http:      resty.New().SetTimeout(15 * time.Second),
		key:       key,
		searchURL: "https://api.unsplash.com/search/photos",
	}
}

// Search returns the regular-size URL of the top photo for the query.
func (u *Unsplash) Search(ctx context.Context, query string) (string, error) {
	if u == nil || u.key == "" {
		return "", ErrNotConfigured
	}

	resp, err := u.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"query":     query,
			"per_page":  "1",
			"client_id": u.key,
		}).
		Get(u.searchURL)
	if err != nil {
		return "", fmt.Errorf("unsplash request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("unsplash: unexpected status %d", resp.StatusCode())
	}

	url := gjson.Get(resp.String(), "results.0.urls.regular").String()
	if url == "" {
		return "", download.ErrNoResults
	}
	return url, nil
}
