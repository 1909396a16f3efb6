package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ntandomods/wabot/pkg/wabot/download"
)

func resultsPage(videoIDs ...string) string {
	items := ""
	for i, id := range videoIDs {
		if i > 0 {
			items += ","
		}
		items += fmt.Sprintf(`{"videoRenderer":{"videoId":%q}}`, id)
	}
	data := fmt.Sprintf(`{"contents":{"twoColumnSearchResultsRenderer":{"primaryContents":{"sectionListRenderer":{"contents":[{"itemSectionRenderer":{"contents":[%s]}}]}}}}}`, items)
	return `<html><script>var ytInitialData = ` + data + `;</script></html>`
}

func searchServer(t *testing.T, body string, status int) *YouTube {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("search_query") == "" {
			t.Error("search_query param missing")
		}
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)

	y := NewYouTube()
	y.searchURL = srv.URL
	return y
}

func TestSearchReturnsFirstResult(t *testing.T) {
	y := searchServer(t, resultsPage("abc123", "def456"), http.StatusOK)

	url, err := y.Search(context.Background(), "lofi beats")
	if err != nil {
		t.Fatal(err)
	}
	if url != "https://www.youtube.com/watch?v=abc123" {
		t.Errorf("url = %q", url)
	}
}

func TestSearchSkipsNonVideoEntries(t *testing.T) {
	// Ad and shelf entries have no videoRenderer; the first real ID wins.
	y := searchServer(t, resultsPage("", "real99"), http.StatusOK)

	url, err := y.Search(context.Background(), "lofi beats")
	if err != nil {
		t.Fatal(err)
	}
	if url != "https://www.youtube.com/watch?v=real99" {
		t.Errorf("url = %q", url)
	}
}

func TestSearchNoResults(t *testing.T) {
	y := searchServer(t, resultsPage(), http.StatusOK)

	_, err := y.Search(context.Background(), "zzzzzzz")
	if !errors.Is(err, download.ErrNoResults) {
		t.Errorf("err = %v, want ErrNoResults", err)
	}
}

func TestSearchHTTPError(t *testing.T) {
	y := searchServer(t, "slow down", http.StatusTooManyRequests)

	_, err := y.Search(context.Background(), "lofi beats")
	if err == nil {
		t.Fatal("expected error on non-2xx status")
	}
}

func TestExtractInitialData(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{
			name: "well formed",
			body: `<script>var ytInitialData = {"a":1};</script>`,
			want: `{"a":1}`,
		},
		{
			name:    "marker missing",
			body:    `<html>nothing here</html>`,
			wantErr: true,
		},
		{
			name:    "unterminated",
			body:    `var ytInitialData = {"a":1}`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractInitialData(tt.body)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
