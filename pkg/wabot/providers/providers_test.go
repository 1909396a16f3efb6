package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/ntandomods/wabot/pkg/wabot/download"
)

func TestNewUnsplashWithoutKeyIsNil(t *testing.T) {
	if NewUnsplash("") != nil {
		t.Error("expected nil provider without a key")
	}
	var u *Unsplash
	if _, err := u.Search(context.Background(), "cats"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

func TestUnsplashSearchTopHit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("client_id"); got != "test-key" {
			t.Errorf("client_id = %q", got)
		}
		if got := r.URL.Query().Get("query"); got != "cats" {
			t.Errorf("query = %q", got)
		}
		fmt.Fprint(w, `{"results":[{"urls":{"regular":"https://images.unsplash.com/cat.jpg"}}]}`)
	}))
	t.Cleanup(srv.Close)

	u := NewUnsplash("test-key")
	u.searchURL = srv.URL

	url, err := u.Search(context.Background(), "cats")
	if err != nil {
		t.Fatal(err)
	}
	if url != "https://images.unsplash.com/cat.jpg" {
		t.Errorf("url = %q", url)
	}
}

func TestUnsplashSearchNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"results":[]}`)
	}))
	t.Cleanup(srv.Close)

	u := NewUnsplash("test-key")
	u.searchURL = srv.URL

	_, err := u.Search(context.Background(), "zzzzzzz")
	if !errors.Is(err, download.ErrNoResults) {
		t.Errorf("err = %v, want ErrNoResults", err)
	}
}

func TestNewGeminiWithoutKeyIsNil(t *testing.T) {
	if NewGemini("") != nil {
		t.Error("expected nil provider without a key")
	}
	var g *Gemini
	if _, err := g.Ask(context.Background(), "hi"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

func TestGeminiAsk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("key = %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if q := gjson.GetBytes(body, "contents.0.parts.0.text").String(); q != "what is Go?" {
			t.Errorf("question = %q", q)
		}
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"A programming language."}]}}]}`)
	}))
	t.Cleanup(srv.Close)

	g := NewGemini("test-key")
	g.endpoint = srv.URL + "/models/%s:generateContent"

	answer, err := g.Ask(context.Background(), "what is Go?")
	if err != nil {
		t.Fatal(err)
	}
	if answer != "A programming language." {
		t.Errorf("answer = %q", answer)
	}
}

func TestGeminiSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"API key not valid"}}`)
	}))
	t.Cleanup(srv.Close)

	g := NewGemini("bad-key")
	g.endpoint = srv.URL + "/models/%s:generateContent"

	_, err := g.Ask(context.Background(), "hi")
	if err == nil {
		t.Fatal("expected error")
	}
}
