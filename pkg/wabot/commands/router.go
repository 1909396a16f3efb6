package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ntandomods/wabot/pkg/wabot/ingest"
	"github.com/ntandomods/wabot/pkg/wabot/transport"
)

// Router resolves invocations to handlers, enforces roles, and isolates
// handler failures from the event loop.
type Router struct {
	reg    *Registry
	guard  *Guard
	client transport.Client
	logger *slog.Logger
}

// NewRouter creates a Router.
func NewRouter(reg *Registry, guard *Guard, client transport.Client, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		reg:    reg,
		guard:  guard,
		client: client,
		logger: logger.With("component", "router"),
	}
}

// Dispatch runs one invocation end to end. It never panics and never returns
// an error: every failure is either answered in chat or logged. Runs on its
// own goroutine per invocation.
func (rt *Router) Dispatch(ctx context.Context, inv *ingest.Invocation) {
	spec, ok := rt.reg.Lookup(inv.Name)
	if !ok {
		// Unmatched input is silently ignored, not an error.
		rt.logger.Debug("unknown command ignored", "name", inv.Name)
		return
	}

	logger := rt.logger.With("command", spec.Name, "chat", inv.Chat, "sender", inv.Sender)
	start := time.Now()

	if denied := rt.authorize(ctx, spec, inv); denied != "" {
		rt.reply(ctx, inv.Chat, denied)
		logger.Info("command denied", "role", spec.Role.String())
		return
	}

	reply, err := rt.execute(ctx, spec, inv)
	if err != nil {
		var ue *UserError
		if errors.As(err, &ue) {
			rt.reply(ctx, inv.Chat, ue.Msg)
		} else {
			logger.Error("command failed", "error", err)
			rt.reply(ctx, inv.Chat, genericFailure)
		}
		return
	}
	if reply != "" {
		rt.reply(ctx, inv.Chat, reply)
	}

	logger.Info("command processed", "duration_ms", time.Since(start).Milliseconds())
}

// authorize returns the denial reply, or empty when the invocation may run.
func (rt *Router) authorize(ctx context.Context, spec Spec, inv *ingest.Invocation) string {
	if spec.GroupOnly && !inv.IsGroup {
		return errGroupOnly.Msg
	}

	switch spec.Role {
	case RoleOwner:
		if !rt.guard.IsOwner(inv.Sender) {
			return errOwnerOnly.Msg
		}
	case RoleGroupAdmin:
		if !inv.IsGroup {
			return errGroupOnly.Msg
		}
		if !rt.guard.IsGroupAdmin(ctx, inv.Chat, inv.Sender) {
			return errAdminOnly.Msg
		}
	}
	return ""
}

// execute runs the handler with panic isolation.
func (rt *Router) execute(ctx context.Context, spec Spec, inv *ingest.Invocation) (reply string, err error) {
	defer func() {
		if r := recover(); r != nil {
			rt.logger.Error("command handler panicked", "command", spec.Name, "panic", r)
			reply = ""
			err = errors.New("handler panic")
		}
	}()
	return spec.Run(ctx, inv)
}

func (rt *Router) reply(ctx context.Context, chat, text string) {
	if err := rt.client.SendText(ctx, chat, text); err != nil {
		rt.logger.Error("failed to send reply", "chat", chat, "error", err)
	}
}
