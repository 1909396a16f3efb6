package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/ntandomods/wabot/pkg/wabot/chats"
	"github.com/ntandomods/wabot/pkg/wabot/download"
	"github.com/ntandomods/wabot/pkg/wabot/tempstore"
	"github.com/ntandomods/wabot/pkg/wabot/transport"
)

// ImageSearcher resolves a query to an image URL.
type ImageSearcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// AIProvider answers a free-text question.
type AIProvider interface {
	Ask(ctx context.Context, question string) (string, error)
}

// Deps carries the collaborators handlers close over. Images and AI are nil
// when their credential is absent; the matching commands degrade to a
// configuration-missing reply without any provider call.
type Deps struct {
	Client    transport.Client
	Guard     *Guard
	Chats     *chats.Registry
	Temp      *tempstore.Store
	Downloads *download.Pipeline
	Images    ImageSearcher
	AI        AIProvider
	OwnerJID  string
	StartedAt time.Time
	Logger    *slog.Logger

	// exit is swapped out in tests of !restart.
	exit func(code int)
}

// Categories used by the help listing, in display order.
const (
	categoryDownload = "download"
	categoryAI       = "ai"
	categoryGroup    = "group"
	categoryOwner    = "owner"
	categoryGeneral  = "general"
)

// RegisterAll wires every built-in command into the registry.
func RegisterAll(reg *Registry, d *Deps) error {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	specs := []Spec{
		{Name: "help", Summary: "Show this command list", Usage: "!help", Category: categoryGeneral,
			Run: d.helpHandler(reg)},
		{Name: "menu", Summary: "Alias for !help", Usage: "!menu", Category: categoryGeneral,
			Run: d.helpHandler(reg)},

		{Name: "ytv", Summary: "Download YouTube video", Usage: "!ytv <url/query>", Category: categoryDownload,
			Run: d.downloadHandler(download.KindVideo)},
		{Name: "yta", Summary: "Download YouTube audio", Usage: "!yta <url/query>", Category: categoryDownload,
			Run: d.downloadHandler(download.KindAudio)},
		{Name: "img", Summary: "Search and send an image", Usage: "!img <query>", Category: categoryDownload,
			Run: d.imageHandler()},

		{Name: "ai", Summary: "Ask AI anything", Usage: "!ai <question>", Category: categoryAI,
			Run: d.aiHandler()},
		{Name: "chat", Summary: "Chat with AI", Usage: "!chat <message>", Category: categoryAI,
			Run: d.aiHandler()},
		{Name: "imagine", Summary: "Generate AI image", Usage: "!imagine <prompt>", Category: categoryAI,
			Run: d.imagineHandler()},

		{Name: "promote", Summary: "Promote to admin", Usage: "!promote @user", Category: categoryGroup,
			Role: RoleGroupAdmin, GroupOnly: true,
			Run: d.participantHandler(transport.ParticipantPromote)},
		{Name: "demote", Summary: "Demote from admin", Usage: "!demote @user", Category: categoryGroup,
			Role: RoleGroupAdmin, GroupOnly: true,
			Run: d.participantHandler(transport.ParticipantDemote)},
		{Name: "kick", Summary: "Remove user", Usage: "!kick @user", Category: categoryGroup,
			Role: RoleGroupAdmin, GroupOnly: true,
			Run: d.participantHandler(transport.ParticipantRemove)},
		{Name: "tagall", Summary: "Tag everyone", Usage: "!tagall <message>", Category: categoryGroup,
			Role: RoleGroupAdmin, GroupOnly: true,
			Run: d.tagAllHandler()},
		{Name: "groupinfo", Summary: "Get group info", Usage: "!groupinfo", Category: categoryGroup,
			GroupOnly: true,
			Run: d.groupInfoHandler()},

		{Name: "stats", Summary: "Bot statistics", Usage: "!stats", Category: categoryOwner,
			Role: RoleOwner, Run: d.statsHandler()},
		{Name: "restart", Summary: "Restart bot", Usage: "!restart", Category: categoryOwner,
			Role: RoleOwner, Run: d.restartHandler()},
		{Name: "cleartemp", Summary: "Clear temp files", Usage: "!cleartemp", Category: categoryOwner,
			Role: RoleOwner, Run: d.clearTempHandler()},
		{Name: "broadcast", Summary: "Send to all groups", Usage: "!broadcast <msg>", Category: categoryOwner,
			Role: RoleOwner, Run: d.broadcastHandler()},
		{Name: "block", Summary: "Block user", Usage: "!block @user", Category: categoryOwner,
			Role: RoleOwner, Run: d.blockHandler(true)},
		{Name: "unblock", Summary: "Unblock user", Usage: "!unblock @user", Category: categoryOwner,
			Role: RoleOwner, Run: d.blockHandler(false)},
		{Name: "listgroups", Summary: "List all groups", Usage: "!listgroups", Category: categoryOwner,
			Role: RoleOwner, Run: d.listGroupsHandler()},
	}

	for _, s := range specs {
		if err := reg.Register(s); err != nil {
			return err
		}
	}
	return nil
}
