package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/ntandomods/wabot/pkg/wabot/ingest"
	"github.com/ntandomods/wabot/pkg/wabot/transport"
)

// participantHandler builds promote/demote/kick. The router has already
// verified the sender is a group admin; the handler adds the bot-admin
// precondition so the mutating call is never attempted without rights.
func (d *Deps) participantHandler(change transport.ParticipantChange) HandlerFunc {
	verbs := map[transport.ParticipantChange][2]string{
		transport.ParticipantPromote: {"promote", "✅ User promoted to admin!"},
		transport.ParticipantDemote:  {"demote", "✅ User demoted from admin!"},
		transport.ParticipantRemove:  {"remove", "✅ User removed from group!"},
	}

	return func(ctx context.Context, inv *ingest.Invocation) (string, error) {
		verb := verbs[change]

		if !d.Guard.IsGroupAdmin(ctx, inv.Chat, d.Client.SelfID()) {
			return "", errBotNotAdmin
		}
		if len(inv.Mentions) == 0 {
			return "", Userf("❌ Please mention a user to %s!", verb[0])
		}

		target := inv.Mentions[0]
		if err := d.Client.GroupParticipantsUpdate(ctx, inv.Chat, []string{target}, change); err != nil {
			d.Logger.Error("group participant update failed",
				"change", string(change), "group", inv.Chat, "error", err)
			return "", Userf("❌ Failed to %s user.", verb[0])
		}
		return verb[1], nil
	}
}

// tagAllHandler mentions every participant with an announcement.
func (d *Deps) tagAllHandler() HandlerFunc {
	return func(ctx context.Context, inv *ingest.Invocation) (string, error) {
		info, err := d.Client.GroupMetadata(ctx, inv.Chat)
		if err != nil {
			d.Logger.Error("tagall metadata fetch failed", "group", inv.Chat, "error", err)
			return "", Userf("❌ Failed to tag all members.")
		}

		message := strings.Join(inv.Args, " ")
		if message == "" {
			message = "Announcement"
		}

		mentions := make([]string, 0, len(info.Participants))
		tags := make([]string, 0, len(info.Participants))
		for _, p := range info.Participants {
			mentions = append(mentions, p.JID)
			tags = append(tags, "@"+strings.SplitN(p.JID, "@", 2)[0])
		}

		text := fmt.Sprintf("📢 *Group Announcement*\n\n%s\n\n%s", message, strings.Join(tags, " "))
		if err := d.Client.SendTextWithMentions(ctx, inv.Chat, text, mentions); err != nil {
			d.Logger.Error("tagall send failed", "group", inv.Chat, "error", err)
			return "", Userf("❌ Failed to tag all members.")
		}
		return "", nil
	}
}

// groupInfoHandler reports name, member and admin counts, and creation date.
func (d *Deps) groupInfoHandler() HandlerFunc {
	return func(ctx context.Context, inv *ingest.Invocation) (string, error) {
		info, err := d.Client.GroupMetadata(ctx, inv.Chat)
		if err != nil {
			d.Logger.Error("groupinfo metadata fetch failed", "group", inv.Chat, "error", err)
			return "", Userf("❌ Failed to get group information.")
		}

		admins := 0
		for _, p := range info.Participants {
			if p.Admin || p.SuperAdmin {
				admins++
			}
		}

		// Keep the subject fresh in the chat registry for !listgroups.
		d.Chats.Upsert(info.JID, info.Subject, true)

		return fmt.Sprintf(
			"👥 *Group Information*\n\n📝 *Name:* %s\n👤 *Members:* %d\n👑 *Admins:* %d\n📅 *Created:* %s",
			info.Subject,
			len(info.Participants),
			admins,
			info.Created.Format("2006-01-02"),
		), nil
	}
}
