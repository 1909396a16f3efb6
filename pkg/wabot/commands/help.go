package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/ntandomods/wabot/pkg/wabot/ingest"
)

// helpHandler synthesizes the listing from registry metadata so it can never
// drift from what actually dispatches. The owner section only renders for
// the configured owner.
func (d *Deps) helpHandler(reg *Registry) HandlerFunc {
	return func(_ context.Context, inv *ingest.Invocation) (string, error) {
		sections := []struct {
			category string
			heading  string
		}{
			{categoryDownload, "📥 *Download Commands:*"},
			{categoryAI, "🤖 *AI Commands:*"},
			{categoryGroup, "👥 *Group Commands:* (Admin only)"},
			{categoryOwner, "👑 *Owner Commands:*"},
			{categoryGeneral, "ℹ️ *General:*"},
		}

		showOwner := d.Guard.IsOwner(inv.Sender)

		var b strings.Builder
		b.WriteString("🤖 *WhatsApp Bot Commands*\n")
		for _, sec := range sections {
			if sec.category == categoryOwner && !showOwner {
				continue
			}
			var lines []string
			for _, spec := range reg.List() {
				if spec.Category != sec.category {
					continue
				}
				lines = append(lines, fmt.Sprintf("%s - %s", spec.Usage, spec.Summary))
			}
			if len(lines) == 0 {
				continue
			}
			b.WriteString("\n" + sec.heading + "\n")
			b.WriteString(strings.Join(lines, "\n"))
			b.WriteString("\n")
		}
		b.WriteString("\nType any command to get started!")
		return b.String(), nil
	}
}
