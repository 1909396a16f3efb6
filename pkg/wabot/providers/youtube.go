// Package providers implements the external content collaborators: YouTube
// resolution/streaming, Unsplash image search, and Gemini text generation.
package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/kkdai/youtube/v2"
	"github.com/tidwall/gjson"

	"github.com/ntandomods/wabot/pkg/wabot/download"
)

// ErrNotConfigured means the provider credential is absent.
var ErrNotConfigured = errors.New("provider credential not configured")

// searchResultsPath walks ytInitialData to the first listed video ID.
const searchResultsPath = "contents.twoColumnSearchResultsRenderer.primaryContents." +
	"sectionListRenderer.contents.0.itemSectionRenderer.contents.#.videoRenderer.videoId"

// YouTube resolves queries via the public results page and streams media via
// the innertube API. Implements download.Resolver.
type YouTube struct {
	http *resty.Client
	yt   *youtube.Client

	// searchURL is overridable in tests.
	searchURL string
}

var _ download.Resolver = (*YouTube)(nil)

// NewYouTube creates a YouTube provider.
func NewYouTube() *YouTube {
	return &YouTube{
		http:      resty.New().SetTimeout(30 * time.Second),
		yt:        &youtube.Client{},
		searchURL: "https://www.youtube.com/results",
	}
}

// Search returns the watch URL of the first search result.
func (y *YouTube) Search(ctx context.Context, query string) (string, error) {
	resp, err := y.http.R().
		SetContext(ctx).
		SetQueryParam("search_query", query).
		Get(y.searchURL)
	if err != nil {
		return "", fmt.Errorf("youtube search request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("youtube search: unexpected status %d", resp.StatusCode())
	}

	data, err := extractInitialData(resp.String())
	if err != nil {
		return "", err
	}

	for _, id := range gjson.Get(data, searchResultsPath).Array() {
		if id.String() != "" {
			return "https://www.youtube.com/watch?v=" + id.String(), nil
		}
	}
	return "", download.ErrNoResults
}

// extractInitialData pulls the embedded ytInitialData JSON out of the
// results page HTML.
func extractInitialData(body string) (string, error) {
	const marker = "var ytInitialData = "
	start := strings.Index(body, marker)
	if start < 0 {
		return "", fmt.Errorf("youtube search: ytInitialData not found")
	}
	rest := body[start+len(marker):]
	end := strings.Index(rest, ";</script>")
	if end < 0 {
		return "", fmt.Errorf("youtube search: ytInitialData not terminated")
	}
	return rest[:end], nil
}

// Resolve fetches title and duration for a watch URL.
func (y *YouTube) Resolve(ctx context.Context, url string) (*download.MediaInfo, error) {
	video, err := y.yt.GetVideoContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetching video metadata: %w", err)
	}
	return &download.MediaInfo{
		URL:      url,
		Title:    video.Title,
		Duration: video.Duration,
	}, nil
}

// Stream opens the media content. Video picks the smallest combined format
// for WhatsApp size limits; audio picks an audio-only format.
func (y *YouTube) Stream(ctx context.Context, url string, kind download.Kind) (io.ReadCloser, error) {
	video, err := y.yt.GetVideoContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetching video for stream: %w", err)
	}

	format, err := pickFormat(video, kind)
	if err != nil {
		return nil, err
	}

	stream, _, err := y.yt.GetStreamContext(ctx, video, format)
	if err != nil {
		return nil, fmt.Errorf("opening stream: %w", err)
	}
	return stream, nil
}

func pickFormat(video *youtube.Video, kind download.Kind) (*youtube.Format, error) {
	if kind == download.KindAudio {
		formats := video.Formats.Type("audio")
		if len(formats) == 0 {
			return nil, fmt.Errorf("no audio formats available")
		}
		return &formats[0], nil
	}

	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return nil, fmt.Errorf("no combined video formats available")
	}
	// Formats are listed highest quality first; take the smallest.
	return &formats[len(formats)-1], nil
}
