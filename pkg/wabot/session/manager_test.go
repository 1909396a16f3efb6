package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ntandomods/wabot/pkg/wabot/transport"
)

// fakeConnector counts Connect calls and can be told to fail.
type fakeConnector struct {
	mu       sync.Mutex
	connects int
	failWith error
	events   chan transport.Event
}

func newFakeConnector() *fakeConnector {
	return &fakeConnector{events: make(chan transport.Event, 8)}
}

func (f *fakeConnector) Connect(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects++
	return f.failWith
}

func (f *fakeConnector) Disconnect() {}

func (f *fakeConnector) Events() <-chan transport.Event {
	return f.events
}

func (f *fakeConnector) connectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connects
}

// fakeSender records sent texts.
type fakeSender struct {
	mu    sync.Mutex
	sent  []string
	chats []string
}

func (f *fakeSender) SendText(_ context.Context, chat, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chats = append(f.chats, chat)
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func newTestManager(conn transport.Connector, sender TextSender) *Manager {
	m := NewManager(conn, sender, "owner@s.whatsapp.net", nil)
	m.ReconnectDelay = 20 * time.Millisecond
	m.NotifyDelay = time.Millisecond
	return m
}

func TestInitialConnectFailureIsFatal(t *testing.T) {
	conn := newFakeConnector()
	conn.failWith = errors.New("no network")

	m := newTestManager(conn, &fakeSender{})
	if err := m.Start(context.Background()); err == nil {
		t.Fatal("expected initial connect error")
	}
	if got := m.State(); got != Disconnected {
		t.Errorf("state = %s, want disconnected", got)
	}
}

func TestReconnectScheduledOnceOnRecoverableClose(t *testing.T) {
	conn := newFakeConnector()
	m := newTestManager(conn, &fakeSender{})
	if err := m.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	m.Handle(transport.Event{Connected: &transport.ConnectedEvent{}})

	m.Handle(transport.Event{Disconnected: &transport.DisconnectedEvent{
		Reason: transport.ReasonConnectionLost,
	}})

	if got := m.State(); got != Closed {
		t.Errorf("state after close = %s, want closed", got)
	}

	// Exactly one reconnect fires within the delay window.
	time.Sleep(3 * m.ReconnectDelay)
	if got := conn.connectCount(); got != 2 { // initial + one reconnect
		t.Errorf("connect calls = %d, want 2", got)
	}
	if got := m.ReconnectAttempt(); got != 1 {
		t.Errorf("reconnect attempt = %d, want 1", got)
	}
}

func TestNoReconnectAfterLoggedOut(t *testing.T) {
	conn := newFakeConnector()
	m := newTestManager(conn, &fakeSender{})
	if err := m.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	m.Handle(transport.Event{Connected: &transport.ConnectedEvent{}})

	m.Handle(transport.Event{Disconnected: &transport.DisconnectedEvent{
		Reason: transport.ReasonLoggedOut,
	}})

	time.Sleep(3 * m.ReconnectDelay)
	if got := conn.connectCount(); got != 1 {
		t.Errorf("connect calls = %d, want 1 (no reconnect after logout)", got)
	}
	if got := m.State(); got != Closed {
		t.Errorf("state = %s, want closed (terminal)", got)
	}
}

func TestReconnectFailureSurfacesAsAnotherClose(t *testing.T) {
	conn := newFakeConnector()
	m := newTestManager(conn, &fakeSender{})
	if err := m.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	m.Handle(transport.Event{Connected: &transport.ConnectedEvent{}})

	// Every future connect fails; each failure must schedule the next try.
	conn.mu.Lock()
	conn.failWith = errors.New("still down")
	conn.mu.Unlock()

	m.Handle(transport.Event{Disconnected: &transport.DisconnectedEvent{
		Reason: transport.ReasonConnectionLost,
	}})

	time.Sleep(5 * m.ReconnectDelay)
	if got := conn.connectCount(); got < 3 {
		t.Errorf("connect calls = %d, want repeated retries", got)
	}
	if got := m.ReconnectAttempt(); got < 2 {
		t.Errorf("reconnect attempt = %d, want >= 2", got)
	}
}

func TestOpenResetsAttemptAndNotifiesOwnerOnce(t *testing.T) {
	conn := newFakeConnector()
	sender := &fakeSender{}
	m := newTestManager(conn, sender)
	if err := m.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	m.Handle(transport.Event{Connected: &transport.ConnectedEvent{}})
	if got := m.State(); got != Open {
		t.Errorf("state = %s, want open", got)
	}

	m.Handle(transport.Event{Disconnected: &transport.DisconnectedEvent{
		Reason: transport.ReasonConnectionLost,
	}})
	time.Sleep(3 * m.ReconnectDelay)
	m.Handle(transport.Event{Connected: &transport.ConnectedEvent{}})

	if got := m.ReconnectAttempt(); got != 0 {
		t.Errorf("attempt after reopen = %d, want 0", got)
	}

	// Notification is one-time, even across reconnects.
	time.Sleep(20 * time.Millisecond)
	if got := sender.count(); got != 1 {
		t.Errorf("owner notifications = %d, want 1", got)
	}
	if len(sender.chats) == 1 && sender.chats[0] != "owner@s.whatsapp.net" {
		t.Errorf("notification sent to %s, want owner", sender.chats[0])
	}
}

func TestPairingChallengeState(t *testing.T) {
	conn := newFakeConnector()
	m := newTestManager(conn, &fakeSender{})
	if err := m.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	m.Handle(transport.Event{Pairing: &transport.PairingEvent{Code: "2@abc"}})
	if got := m.State(); got != AwaitingAuthentication {
		t.Errorf("state = %s, want awaiting_authentication", got)
	}

	m.Handle(transport.Event{Connected: &transport.ConnectedEvent{}})
	if got := m.State(); got != Open {
		t.Errorf("state = %s, want open", got)
	}
}
