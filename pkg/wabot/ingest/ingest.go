// Package ingest converts raw transport messages into command invocations.
package ingest

import (
	"log/slog"
	"strings"

	"github.com/ntandomods/wabot/pkg/wabot/transport"
)

// Prefix marks a message as a command.
const Prefix = "!"

// Invocation is a parsed, ready-to-dispatch command.
type Invocation struct {
	// Name is the lower-cased command token without the prefix.
	Name string
	// Args keep their original casing and order.
	Args []string

	// Chat is the conversation replies go to.
	Chat string
	// Sender is the author (participant JID in groups).
	Sender   string
	IsGroup  bool
	Mentions []string
}

// Ingest filters and tokenizes inbound messages.
type Ingest struct {
	logger *slog.Logger
}

// New creates an Ingest.
func New(logger *slog.Logger) *Ingest {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingest{logger: logger.With("component", "ingest")}
}

// Parse returns at most one invocation per message. Self-authored messages,
// messages without text, and messages without the command prefix yield nil.
func (in *Ingest) Parse(msg *transport.Message) *Invocation {
	if msg == nil || msg.FromSelf {
		return nil
	}

	text := extractText(msg)
	if text == "" {
		return nil
	}

	in.logger.Info("message received",
		"chat", msg.Chat,
		"is_group", msg.IsGroup,
		"preview", preview(text, 50),
	)

	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], Prefix) {
		// Non-command chatter is observed (logged above) but not dispatched.
		return nil
	}

	name := strings.ToLower(strings.TrimPrefix(fields[0], Prefix))
	if name == "" {
		return nil
	}

	return &Invocation{
		Name:     name,
		Args:     fields[1:],
		Chat:     msg.Chat,
		Sender:   msg.Sender,
		IsGroup:  msg.IsGroup,
		Mentions: msg.Mentions,
	}
}

// extractText falls through the payload shapes: plain conversation text,
// extended/quoted text, then media caption. First non-empty wins.
func extractText(msg *transport.Message) string {
	for _, candidate := range []string{msg.Conversation, msg.ExtendedText, msg.Caption} {
		if strings.TrimSpace(candidate) != "" {
			return strings.TrimSpace(candidate)
		}
	}
	return ""
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
