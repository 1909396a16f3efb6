// Package transport defines the narrow contract between the bot core and the
// messaging network client, plus the whatsmeow-backed implementation.
//
// The core only ever sees string JIDs and the typed event stream below;
// protocol details (pairing, encryption, media upload) stay inside the
// adapter.
package transport

import (
	"context"
	"time"
)

// CloseReason classifies why the connection went away.
type CloseReason int

const (
	// ReasonConnectionLost covers every recoverable closure (network drop,
	// stream replaced, server restart). The session manager reconnects.
	ReasonConnectionLost CloseReason = iota

	// ReasonLoggedOut means the remote invalidated our credentials. Terminal:
	// the operator must clear the auth directory to pair again.
	ReasonLoggedOut
)

func (r CloseReason) String() string {
	if r == ReasonLoggedOut {
		return "logged_out"
	}
	return "connection_lost"
}

// Event is a typed connection or message event produced by the transport.
// Exactly one of the pointer fields is set.
type Event struct {
	Connected    *ConnectedEvent
	Disconnected *DisconnectedEvent
	Pairing      *PairingEvent
	Credentials  *CredentialsEvent
	Message      *Message
}

// ConnectedEvent signals the session is open.
type ConnectedEvent struct{}

// DisconnectedEvent signals the session closed, with a reason.
type DisconnectedEvent struct {
	Reason CloseReason
	Err    error
}

// PairingEvent carries a pairing challenge (QR payload) for the operator.
type PairingEvent struct {
	Code string
}

// CredentialsEvent signals the credential blob changed and was persisted.
type CredentialsEvent struct{}

// Message is a normalized inbound message. Text extraction (conversation vs.
// extended text vs. caption) is left to the ingest layer so the fallback
// order lives in one place.
type Message struct {
	// Chat is the conversation JID replies go to.
	Chat string
	// Sender is the author: the chat itself in DMs, the participant in groups.
	Sender string
	IsGroup  bool
	FromSelf bool

	// Candidate text payloads, in no particular order of preference.
	Conversation string
	ExtendedText string
	Caption      string

	// Mentions are the JIDs tagged in the message, if any.
	Mentions []string
}

// ParticipantChange is a group membership mutation.
type ParticipantChange string

const (
	ParticipantPromote ParticipantChange = "promote"
	ParticipantDemote  ParticipantChange = "demote"
	ParticipantRemove  ParticipantChange = "remove"
)

// GroupParticipant is one member of a group.
type GroupParticipant struct {
	JID        string
	Admin      bool
	SuperAdmin bool
}

// GroupInfo is the metadata the bot needs about a group.
type GroupInfo struct {
	JID          string
	Subject      string
	Created      time.Time
	Participants []GroupParticipant
}

// Client is the outbound surface handlers use. Implementations must be safe
// for concurrent use.
type Client interface {
	// SelfID returns the bot's own JID, empty before the first connect.
	SelfID() string

	SendText(ctx context.Context, chat, text string) error
	// SendTextWithMentions sends text that tags the given JIDs.
	SendTextWithMentions(ctx context.Context, chat, text string, mentions []string) error
	// SendVideo uploads the file at path and sends it with a caption.
	SendVideo(ctx context.Context, chat, path, caption string) error
	// SendAudio uploads the file at path and sends it as a playable audio.
	SendAudio(ctx context.Context, chat, path string) error
	// SendImageURL fetches the image at url and sends it with a caption.
	SendImageURL(ctx context.Context, chat, url, caption string) error

	GroupMetadata(ctx context.Context, chat string) (*GroupInfo, error)
	GroupParticipantsUpdate(ctx context.Context, chat string, users []string, change ParticipantChange) error
	JoinedGroups(ctx context.Context) ([]GroupInfo, error)

	SetBlocked(ctx context.Context, user string, blocked bool) error
}

// Connector owns the physical connection. Connect is non-blocking: progress
// and failures arrive on Events.
type Connector interface {
	Connect(ctx context.Context) error
	Disconnect()
	Events() <-chan Event
}
