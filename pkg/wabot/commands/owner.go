package commands

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/ntandomods/wabot/pkg/wabot/ingest"
)

// listGroupsLimit caps the !listgroups output.
const listGroupsLimit = 20

func (d *Deps) statsHandler() HandlerFunc {
	return func(_ context.Context, _ *ingest.Invocation) (string, error) {
		total, private, groups := d.Chats.Counts()

		uptime := time.Since(d.StartedAt)
		hours := int(uptime.Hours())
		minutes := int(uptime.Minutes()) % 60

		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)

		return fmt.Sprintf(
			"📊 *Bot Statistics*\n\n💬 *Chats:*\n• Total: %d\n• Private: %d\n• Groups: %d\n\n⏱️ *Uptime:* %dh %dm\n💾 *Memory:* %.2f MB\n🖥️ *Platform:* %s\n📦 *Runtime:* %s",
			total, private, groups,
			hours, minutes,
			float64(mem.HeapAlloc)/1024/1024,
			runtime.GOOS,
			runtime.Version(),
		), nil
	}
}

func (d *Deps) restartHandler() HandlerFunc {
	return func(ctx context.Context, inv *ingest.Invocation) (string, error) {
		exit := d.exit
		if exit == nil {
			exit = os.Exit
		}
		if err := d.Client.SendText(ctx, inv.Chat, "🔄 Restarting bot..."); err != nil {
			d.Logger.Error("restart notice failed", "error", err)
		}
		// The process supervisor brings the bot back up.
		time.AfterFunc(2*time.Second, func() { exit(0) })
		return "", nil
	}
}

func (d *Deps) clearTempHandler() HandlerFunc {
	return func(_ context.Context, _ *ingest.Invocation) (string, error) {
		n, err := d.Temp.Sweep()
		if err != nil {
			d.Logger.Error("cleartemp sweep failed", "error", err)
			return "", Userf("❌ Error clearing temp files.")
		}
		return fmt.Sprintf("✅ Cleared %d files!", n), nil
	}
}

func (d *Deps) broadcastHandler() HandlerFunc {
	return func(ctx context.Context, inv *ingest.Invocation) (string, error) {
		message := strings.Join(inv.Args, " ")
		if message == "" {
			return "", Userf("❌ Please provide a message to broadcast!")
		}

		groups, err := d.Client.JoinedGroups(ctx)
		if err != nil {
			d.Logger.Error("broadcast group listing failed", "error", err)
			return "", Userf("❌ Failed to list groups for broadcast.")
		}

		sent := 0
		for _, g := range groups {
			if err := d.Client.SendText(ctx, g.JID, "📢 *Broadcast*\n\n"+message); err != nil {
				d.Logger.Warn("broadcast send failed", "group", g.JID, "error", err)
				continue
			}
			sent++
		}
		return fmt.Sprintf("✅ Broadcast sent to %d of %d groups.", sent, len(groups)), nil
	}
}

func (d *Deps) blockHandler(block bool) HandlerFunc {
	verb := "block"
	done := "✅ User blocked."
	if !block {
		verb = "unblock"
		done = "✅ User unblocked."
	}
	return func(ctx context.Context, inv *ingest.Invocation) (string, error) {
		if len(inv.Mentions) == 0 {
			return "", Userf("❌ Please mention a user to %s!", verb)
		}
		if err := d.Client.SetBlocked(ctx, inv.Mentions[0], block); err != nil {
			d.Logger.Error("blocklist update failed", "block", block, "error", err)
			return "", Userf("❌ Failed to %s user.", verb)
		}
		return done, nil
	}
}

func (d *Deps) listGroupsHandler() HandlerFunc {
	return func(ctx context.Context, _ *ingest.Invocation) (string, error) {
		groups, err := d.Client.JoinedGroups(ctx)
		if err != nil {
			d.Logger.Error("listgroups failed", "error", err)
			return "", Userf("❌ Failed to list groups.")
		}

		var b strings.Builder
		fmt.Fprintf(&b, "👥 *Bot is in %d groups:*\n\n", len(groups))
		for i, g := range groups {
			if i >= listGroupsLimit {
				break
			}
			name := g.Subject
			if name == "" {
				name = "Unknown"
			}
			fmt.Fprintf(&b, "%d. %s\n", i+1, name)
			d.Chats.Upsert(g.JID, g.Subject, true)
		}
		return strings.TrimRight(b.String(), "\n"), nil
	}
}
