package commands

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
)

// countingAI fails the test if it is ever called.
type countingAI struct {
	calls atomic.Int32
}

func (c *countingAI) Ask(_ context.Context, _ string) (string, error) {
	c.calls.Add(1)
	return "forty-two", nil
}

func TestAIWithoutCredentialDegradesGracefully(t *testing.T) {
	client := &fakeClient{}
	rt, _, deps := newTestRig(t, client)
	deps.AI = nil // credential absent

	rt.Dispatch(context.Background(), inv("ai", "what", "is", "go"))

	texts := client.sentTexts()
	if len(texts) != 1 {
		t.Fatalf("replies = %d, want exactly the configuration-missing message", len(texts))
	}
	if texts[0] != aiNotConfigured {
		t.Errorf("reply = %q, want %q", texts[0], aiNotConfigured)
	}
}

func TestAIAnswersWhenConfigured(t *testing.T) {
	client := &fakeClient{}
	rt, _, deps := newTestRig(t, client)
	ai := &countingAI{}
	deps.AI = ai

	rt.Dispatch(context.Background(), inv("chat", "hello"))

	if got := ai.calls.Load(); got != 1 {
		t.Errorf("provider calls = %d, want 1", got)
	}
	if got := client.lastText(); !strings.Contains(got, "forty-two") {
		t.Errorf("reply = %q, want the provider answer", got)
	}
}

func TestAIRequiresQuestion(t *testing.T) {
	client := &fakeClient{}
	rt, _, deps := newTestRig(t, client)
	ai := &countingAI{}
	deps.AI = ai

	rt.Dispatch(context.Background(), inv("ai"))

	if got := ai.calls.Load(); got != 0 {
		t.Errorf("provider calls = %d, want 0 for empty question", got)
	}
	if got := client.lastText(); !strings.Contains(got, "provide a question") {
		t.Errorf("reply = %q, want usage notice", got)
	}
}

func TestImageWithoutCredentialDegradesGracefully(t *testing.T) {
	client := &fakeClient{}
	rt, _, deps := newTestRig(t, client)
	deps.Images = nil

	rt.Dispatch(context.Background(), inv("img", "sunset"))

	if got := client.lastText(); got != imgNotConfigured {
		t.Errorf("reply = %q, want %q", got, imgNotConfigured)
	}
	if len(client.images) != 0 {
		t.Error("image send attempted without a configured provider")
	}
}

type fakeImages struct{ url string }

func (f *fakeImages) Search(_ context.Context, _ string) (string, error) {
	return f.url, nil
}

func TestImageSearchSendsTopHit(t *testing.T) {
	client := &fakeClient{}
	rt, _, deps := newTestRig(t, client)
	deps.Images = &fakeImages{url: "https://images.example/sunset.jpg"}

	rt.Dispatch(context.Background(), inv("img", "sunset"))

	if len(client.images) != 1 || client.images[0] != "https://images.example/sunset.jpg" {
		t.Errorf("image sends = %v, want the top hit", client.images)
	}
}

func TestDownloadRequiresQuery(t *testing.T) {
	client := &fakeClient{}
	rt, _, _ := newTestRig(t, client)

	rt.Dispatch(context.Background(), inv("ytv"))

	if got := client.lastText(); !strings.Contains(got, "provide a URL or search query") {
		t.Errorf("reply = %q, want usage notice", got)
	}
}

func TestImagineIsPlaceholder(t *testing.T) {
	client := &fakeClient{}
	rt, _, _ := newTestRig(t, client)

	rt.Dispatch(context.Background(), inv("imagine", "a", "cat"))

	if got := client.lastText(); !strings.Contains(got, "placeholder") {
		t.Errorf("reply = %q, want placeholder notice", got)
	}
}
