package commands

import (
	"context"
	"errors"
	"strings"

	"github.com/ntandomods/wabot/pkg/wabot/download"
	"github.com/ntandomods/wabot/pkg/wabot/ingest"
)

const (
	aiNotConfigured  = "❌ AI feature not configured. Please set GOOGLE_AI_KEY environment variable."
	imgNotConfigured = "❌ Image search not configured. Please set UNSPLASH_ACCESS_KEY environment variable."
)

// downloadHandler builds ytv and yta. The pipeline owns temp-file lifetime
// and sends the media itself; the handler only maps failures to the
// kind-specific chat messages.
func (d *Deps) downloadHandler(kind download.Kind) HandlerFunc {
	progress := "⏳ Searching and downloading video..."
	failed := "❌ Failed to download video. Try a different video or use audio mode (!yta)"
	if kind == download.KindAudio {
		progress = "⏳ Searching and downloading audio..."
		failed = "❌ Failed to download audio."
	}

	return func(ctx context.Context, inv *ingest.Invocation) (string, error) {
		query := strings.Join(inv.Args, " ")
		if strings.TrimSpace(query) == "" {
			return "", Userf("❌ Please provide a URL or search query!")
		}

		if err := d.Client.SendText(ctx, inv.Chat, progress); err != nil {
			d.Logger.Warn("progress notice failed", "error", err)
		}

		if err := d.Downloads.Run(ctx, inv.Chat, query, kind); err != nil {
			if errors.Is(err, download.ErrNoResults) {
				return "", Userf("❌ No results found!")
			}
			d.Logger.Error("download failed", "kind", kind.String(), "query", query, "error", err)
			return "", Userf("%s", failed)
		}
		return "", nil
	}
}

func (d *Deps) imageHandler() HandlerFunc {
	return func(ctx context.Context, inv *ingest.Invocation) (string, error) {
		query := strings.Join(inv.Args, " ")
		if strings.TrimSpace(query) == "" {
			return "", Userf("❌ Please provide a search query!")
		}
		if d.Images == nil {
			return imgNotConfigured, nil
		}

		if err := d.Client.SendText(ctx, inv.Chat, "⏳ Searching for images..."); err != nil {
			d.Logger.Warn("progress notice failed", "error", err)
		}

		url, err := d.Images.Search(ctx, query)
		if err != nil {
			if errors.Is(err, download.ErrNoResults) {
				return "", Userf("❌ No images found!")
			}
			d.Logger.Error("image search failed", "query", query, "error", err)
			return "", Userf("❌ Error searching images. Please try again.")
		}

		if err := d.Client.SendImageURL(ctx, inv.Chat, url, "🖼️ *"+query+"*"); err != nil {
			d.Logger.Error("image send failed", "error", err)
			return "", Userf("❌ Error sending image. Please try again.")
		}
		return "", nil
	}
}

func (d *Deps) aiHandler() HandlerFunc {
	return func(ctx context.Context, inv *ingest.Invocation) (string, error) {
		question := strings.Join(inv.Args, " ")
		if strings.TrimSpace(question) == "" {
			return "", Userf("❌ Please provide a question!")
		}
		// Degrade before any provider call when the credential is absent.
		if d.AI == nil {
			return aiNotConfigured, nil
		}

		if err := d.Client.SendText(ctx, inv.Chat, "🤖 Thinking..."); err != nil {
			d.Logger.Warn("progress notice failed", "error", err)
		}

		answer, err := d.AI.Ask(ctx, question)
		if err != nil {
			d.Logger.Error("ai query failed", "error", err)
			return "", Userf("❌ Error getting AI response. Please check your API key and try again.")
		}
		return "🤖 *AI Response:*\n\n" + answer, nil
	}
}

func (d *Deps) imagineHandler() HandlerFunc {
	return func(_ context.Context, inv *ingest.Invocation) (string, error) {
		if len(inv.Args) == 0 {
			return "", Userf("❌ Please provide a description!")
		}
		return "🎨 Image generation requires additional API setup (DALL-E, Stability AI, etc.)\n\nThis is a placeholder for the feature.", nil
	}
}
