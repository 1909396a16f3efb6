// Package bot wires the session manager, event ingest, command router, and
// supporting services into one runnable unit.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ntandomods/wabot/pkg/wabot/chats"
	"github.com/ntandomods/wabot/pkg/wabot/commands"
	"github.com/ntandomods/wabot/pkg/wabot/config"
	"github.com/ntandomods/wabot/pkg/wabot/download"
	"github.com/ntandomods/wabot/pkg/wabot/health"
	"github.com/ntandomods/wabot/pkg/wabot/ingest"
	"github.com/ntandomods/wabot/pkg/wabot/providers"
	"github.com/ntandomods/wabot/pkg/wabot/session"
	"github.com/ntandomods/wabot/pkg/wabot/tempstore"
	"github.com/ntandomods/wabot/pkg/wabot/transport"
)

// Bot is the top-level orchestrator.
// Event flow: transport events → session manager (connection) / ingest
// (messages) → router → handlers → transport.
type Bot struct {
	cfg     *config.Config
	conn    transport.Connector
	client  transport.Client
	session *session.Manager
	ingest  *ingest.Ingest
	router  *commands.Router
	chats   *chats.Registry
	temp    *tempstore.Store
	health  *health.Server
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// New builds the bot and registers every command.
func New(cfg *config.Config, conn transport.Connector, client transport.Client, logger *slog.Logger) (*Bot, error) {
	if logger == nil {
		logger = slog.Default()
	}

	temp, err := tempstore.New(cfg.TempDir, logger)
	if err != nil {
		return nil, err
	}

	chatReg := chats.NewRegistry()
	guard := commands.NewGuard(client, cfg.OwnerJID, logger)
	pipeline := download.NewPipeline(providers.NewYouTube(), temp, client, logger)

	deps := &commands.Deps{
		Client:    client,
		Guard:     guard,
		Chats:     chatReg,
		Temp:      temp,
		Downloads: pipeline,
		OwnerJID:  cfg.OwnerJID,
		StartedAt: time.Now(),
		Logger:    logger.With("component", "commands"),
	}
	// Leave the provider fields nil when unconfigured: the handlers answer
	// with the configuration-missing message without any provider call.
	if u := providers.NewUnsplash(cfg.UnsplashKey); u != nil {
		deps.Images = u
	}
	if g := providers.NewGemini(cfg.GeminiKey); g != nil {
		deps.AI = g
	}

	registry := commands.NewRegistry()
	if err := commands.RegisterAll(registry, deps); err != nil {
		return nil, fmt.Errorf("registering commands: %w", err)
	}

	return &Bot{
		cfg:     cfg,
		conn:    conn,
		client:  client,
		session: session.NewManager(conn, client, cfg.OwnerJID, logger),
		ingest:  ingest.New(logger),
		router:  commands.NewRouter(registry, guard, client, logger),
		chats:   chatReg,
		temp:    temp,
		health:  health.NewServer(cfg.Port, logger),
		logger:  logger.With("component", "bot"),
	}, nil
}

// Start brings up the health surface, sweeps temp leftovers, connects, and
// starts the event loop. Only the initial connect is allowed to fail the
// process.
func (b *Bot) Start(ctx context.Context) error {
	b.ctx, b.cancel = context.WithCancel(ctx)

	healthErr := b.health.Start()

	if n, err := b.temp.Sweep(); err != nil {
		b.logger.Warn("startup temp sweep failed", "error", err)
	} else if n > 0 {
		b.logger.Info("startup temp sweep", "removed", n)
	}
	b.temp.StartSweeper()

	if err := b.session.Start(b.ctx); err != nil {
		return err
	}

	go b.eventLoop(healthErr)

	b.logger.Info("bot started",
		"owner_configured", b.cfg.OwnerJID != "",
		"port", b.cfg.Port,
	)
	return nil
}

// Stop shuts everything down.
func (b *Bot) Stop() {
	b.logger.Info("stopping bot...")
	if b.cancel != nil {
		b.cancel()
	}
	b.temp.StopSweeper()
	b.conn.Disconnect()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := b.health.Shutdown(shutdownCtx); err != nil {
		b.logger.Warn("health server shutdown", "error", err)
	}
	b.logger.Info("bot stopped")
}

// eventLoop is the single consumer of the transport stream. Message handling
// is fanned out one goroutine per invocation so slow downloads never block
// ingestion.
func (b *Bot) eventLoop(healthErr <-chan error) {
	for {
		select {
		case ev, ok := <-b.conn.Events():
			if !ok {
				return
			}
			if ev.Message != nil {
				b.handleMessage(ev.Message)
				continue
			}
			b.session.Handle(ev)

		case err := <-healthErr:
			b.logger.Error("health server failed", "error", err)

		case <-b.ctx.Done():
			return
		}
	}
}

func (b *Bot) handleMessage(msg *transport.Message) {
	b.chats.Upsert(msg.Chat, "", msg.IsGroup)

	inv := b.ingest.Parse(msg)
	if inv == nil {
		return
	}
	go b.router.Dispatch(b.ctx, inv)
}

// Session exposes the session manager (state introspection for callers).
func (b *Bot) Session() *session.Manager {
	return b.session
}
