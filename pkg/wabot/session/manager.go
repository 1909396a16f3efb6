// Package session owns the connection lifecycle: the state machine, the
// reconnection policy, and the operator notification on first open.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ntandomods/wabot/pkg/wabot/transport"
)

// State is the session lifecycle state. Transitions happen only inside
// Manager in response to connection events.
type State int

const (
	Disconnected State = iota
	Connecting
	AwaitingAuthentication
	Open
	Closed
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case AwaitingAuthentication:
		return "awaiting_authentication"
	case Open:
		return "open"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

const (
	// DefaultReconnectDelay is a fixed 5 second wait between attempts,
	// unbounded retries, no backoff growth.
	DefaultReconnectDelay = 5 * time.Second

	// DefaultNotifyDelay is the wait before the one-time owner notification
	// after the first successful connect.
	DefaultNotifyDelay = 3 * time.Second
)

// TextSender is the slice of the transport needed for the owner notification.
type TextSender interface {
	SendText(ctx context.Context, chat, text string) error
}

// Manager drives the session state machine.
type Manager struct {
	conn     transport.Connector
	sender   TextSender
	ownerJID string
	logger   *slog.Logger

	// ReconnectDelay and NotifyDelay are settable before Start (tests use
	// short values).
	ReconnectDelay time.Duration
	NotifyDelay    time.Duration

	mu       sync.Mutex
	state    State
	attempt  int
	notified bool

	ctx context.Context
}

// NewManager creates a Manager in the Disconnected state.
func NewManager(conn transport.Connector, sender TextSender, ownerJID string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		conn:           conn,
		sender:         sender,
		ownerJID:       ownerJID,
		logger:         logger.With("component", "session"),
		ReconnectDelay: DefaultReconnectDelay,
		NotifyDelay:    DefaultNotifyDelay,
		state:          Disconnected,
	}
}

// State returns the current session state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// ReconnectAttempt returns the current reconnect counter.
func (m *Manager) ReconnectAttempt() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempt
}

// Start performs the initial connect. A failure here is the only fatal
// connection error in the process lifetime.
func (m *Manager) Start(ctx context.Context) error {
	m.ctx = ctx
	m.setState(Connecting)
	if err := m.conn.Connect(ctx); err != nil {
		m.setState(Disconnected)
		return fmt.Errorf("initial connect: %w", err)
	}
	return nil
}

// Handle applies a connection event to the state machine. Message events are
// not the manager's business and are ignored.
func (m *Manager) Handle(ev transport.Event) {
	switch {
	case ev.Pairing != nil:
		m.handlePairing(ev.Pairing)
	case ev.Connected != nil:
		m.handleConnected()
	case ev.Credentials != nil:
		// Persistence is done by the credential store inside the transport;
		// the manager just records that it happened.
		m.logger.Info("credentials updated and persisted")
	case ev.Disconnected != nil:
		m.handleDisconnected(ev.Disconnected)
	}
}

func (m *Manager) handlePairing(ev *transport.PairingEvent) {
	m.setState(AwaitingAuthentication)
	// The QR render itself happens in the transport; this is the operator
	// channel surface.
	m.logger.Info("pairing challenge issued, waiting for scan",
		"code_len", len(ev.Code))
}

func (m *Manager) handleConnected() {
	m.mu.Lock()
	m.state = Open
	m.attempt = 0
	first := !m.notified
	m.notified = true
	m.mu.Unlock()

	m.logger.Info("connection open", "state", Open.String())

	if first && m.ownerJID != "" && m.sender != nil {
		time.AfterFunc(m.NotifyDelay, m.notifyOwner)
	}
}

// notifyOwner sends the one-time startup message. Best-effort: failure is
// logged, not retried.
func (m *Manager) notifyOwner() {
	text := fmt.Sprintf("🤖 *Bot started successfully!*\n\n✅ All systems operational!\n⏰ %s",
		time.Now().Format("2006-01-02 15:04:05"))
	if err := m.sender.SendText(m.ctx, m.ownerJID, text); err != nil {
		m.logger.Error("failed to send owner notification", "error", err)
	}
}

func (m *Manager) handleDisconnected(ev *transport.DisconnectedEvent) {
	m.setState(Closed)

	if ev.Reason == transport.ReasonLoggedOut {
		m.logger.Error("logged out by remote, not reconnecting",
			"error", ev.Err,
			"hint", "delete the auth directory to pair again")
		return
	}

	m.mu.Lock()
	m.attempt++
	attempt := m.attempt
	m.mu.Unlock()

	m.logger.Warn("connection closed, reconnect scheduled",
		"reason", ev.Reason.String(),
		"error", ev.Err,
		"attempt", attempt,
		"delay", m.ReconnectDelay,
	)

	time.AfterFunc(m.ReconnectDelay, m.reconnect)
}

// reconnect runs a scheduled attempt. Any failure, including a panic from
// the transport, surfaces as another Closed transition instead of crashing.
func (m *Manager) reconnect() {
	defer func() {
		if r := recover(); r != nil {
			m.handleDisconnected(&transport.DisconnectedEvent{
				Reason: transport.ReasonConnectionLost,
				Err:    fmt.Errorf("panic during reconnect: %v", r),
			})
		}
	}()

	if m.ctx != nil && m.ctx.Err() != nil {
		return
	}

	m.setState(Connecting)
	if err := m.conn.Connect(m.ctx); err != nil {
		m.handleDisconnected(&transport.DisconnectedEvent{
			Reason: transport.ReasonConnectionLost,
			Err:    err,
		})
	}
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	old := m.state
	m.state = s
	m.mu.Unlock()
	if old != s {
		m.logger.Debug("session state change", "from", old.String(), "to", s.String())
	}
}
