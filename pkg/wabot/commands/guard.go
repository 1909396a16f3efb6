package commands

import (
	"context"
	"log/slog"

	"github.com/ntandomods/wabot/pkg/wabot/transport"
)

// MetadataFetcher is the slice of the transport the guard needs.
type MetadataFetcher interface {
	GroupMetadata(ctx context.Context, chat string) (*transport.GroupInfo, error)
}

// Guard computes owner and group-admin authorization.
type Guard struct {
	meta   MetadataFetcher
	owner  string
	logger *slog.Logger
}

// NewGuard creates a Guard. owner is the configured operator JID.
func NewGuard(meta MetadataFetcher, owner string, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{
		meta:   meta,
		owner:  owner,
		logger: logger.With("component", "guard"),
	}
}

// IsOwner reports whether sender is the configured operator. An empty
// configured owner matches nobody.
func (g *Guard) IsOwner(sender string) bool {
	return g.owner != "" && sender == g.owner
}

// IsGroupAdmin reports whether member is an admin or superadmin of group.
// Fails closed: a metadata query error never grants elevated capability.
func (g *Guard) IsGroupAdmin(ctx context.Context, group, member string) bool {
	info, err := g.meta.GroupMetadata(ctx, group)
	if err != nil {
		g.logger.Warn("group metadata query failed, denying admin",
			"group", group, "member", member, "error", err)
		return false
	}
	for _, p := range info.Participants {
		if p.JID == member {
			return p.Admin || p.SuperAdmin
		}
	}
	return false
}
