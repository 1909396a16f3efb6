package transport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mdp/qrterminal/v3"
	"go.mau.fi/whatsmeow"
	waE2E "go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"
)

// eventBuffer is the capacity of the outbound event channel. The consumer
// fans messages out to goroutines, so this only absorbs short bursts.
const eventBuffer = 64

// WhatsApp adapts a whatsmeow client to the Connector and Client contracts.
// Credential persistence is owned by whatsmeow's sqlstore container; every
// credential write surfaces as a CredentialsEvent.
type WhatsApp struct {
	client *whatsmeow.Client
	events chan Event
	logger *slog.Logger
}

var _ Connector = (*WhatsApp)(nil)
var _ Client = (*WhatsApp)(nil)

// NewWhatsApp opens (or creates) the credential store under authDir and
// builds a disconnected client. Connect starts the session.
func NewWhatsApp(ctx context.Context, authDir string, logger *slog.Logger) (*WhatsApp, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(authDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating auth dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on", filepath.Join(authDir, "session.db"))
	container, err := sqlstore.New(ctx, "sqlite3", dsn, waLog.Noop)
	if err != nil {
		return nil, fmt.Errorf("opening credential store: %w", err)
	}

	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading device credentials: %w", err)
	}

	w := &WhatsApp{
		client: whatsmeow.NewClient(device, waLog.Noop),
		events: make(chan Event, eventBuffer),
		logger: logger.With("component", "transport"),
	}
	// Reconnection policy belongs to the session manager, not the client.
	w.client.EnableAutoReconnect = false
	w.client.AddEventHandler(w.handleEvent)
	return w, nil
}

// Events returns the typed event stream.
func (w *WhatsApp) Events() <-chan Event {
	return w.events
}

// Connect establishes the socket. When no credentials exist yet it starts the
// QR pairing flow, surfacing each code as a PairingEvent and rendering it to
// the terminal for the operator.
func (w *WhatsApp) Connect(ctx context.Context) error {
	if w.client.IsConnected() {
		return nil
	}

	if w.client.Store.ID == nil {
		qrChan, err := w.client.GetQRChannel(ctx)
		if err != nil {
			return fmt.Errorf("requesting pairing channel: %w", err)
		}
		go w.consumeQR(qrChan)
	}

	if err := w.client.Connect(); err != nil {
		return fmt.Errorf("connecting: %w", err)
	}
	return nil
}

// Disconnect tears down the socket without touching stored credentials.
func (w *WhatsApp) Disconnect() {
	w.client.Disconnect()
}

func (w *WhatsApp) consumeQR(qrChan <-chan whatsmeow.QRChannelItem) {
	for item := range qrChan {
		switch item.Event {
		case "code":
			w.emit(Event{Pairing: &PairingEvent{Code: item.Code}})
			fmt.Fprintln(os.Stdout, "\nScan this QR code with WhatsApp:")
			qrterminal.GenerateHalfBlock(item.Code, qrterminal.L, os.Stdout)
		case "success":
			w.logger.Info("pairing complete")
		default:
			w.logger.Warn("pairing ended", "event", item.Event, "error", item.Error)
		}
	}
}

// handleEvent translates whatsmeow callbacks into the typed event stream.
func (w *WhatsApp) handleEvent(raw any) {
	switch evt := raw.(type) {
	case *events.Connected:
		w.emit(Event{Connected: &ConnectedEvent{}})

	case *events.PairSuccess:
		w.emit(Event{Credentials: &CredentialsEvent{}})

	case *events.Disconnected:
		w.emit(Event{Disconnected: &DisconnectedEvent{Reason: ReasonConnectionLost}})

	case *events.StreamReplaced:
		w.emit(Event{Disconnected: &DisconnectedEvent{
			Reason: ReasonConnectionLost,
			Err:    fmt.Errorf("stream replaced by another session"),
		}})

	case *events.LoggedOut:
		w.emit(Event{Disconnected: &DisconnectedEvent{
			Reason: ReasonLoggedOut,
			Err:    fmt.Errorf("logged out (reason %s)", evt.Reason),
		}})

	case *events.Message:
		w.emit(Event{Message: w.normalizeMessage(evt)})
	}
}

func (w *WhatsApp) normalizeMessage(evt *events.Message) *Message {
	msg := evt.Message
	ext := msg.GetExtendedTextMessage()

	caption := msg.GetImageMessage().GetCaption()
	if caption == "" {
		caption = msg.GetVideoMessage().GetCaption()
	}

	m := &Message{
		Chat:         evt.Info.Chat.String(),
		Sender:       evt.Info.Sender.ToNonAD().String(),
		IsGroup:      evt.Info.IsGroup,
		FromSelf:     evt.Info.IsFromMe,
		Conversation: msg.GetConversation(),
		ExtendedText: ext.GetText(),
		Caption:      caption,
	}
	for _, jid := range ext.GetContextInfo().GetMentionedJID() {
		m.Mentions = append(m.Mentions, jid)
	}
	return m
}

// emit pushes an event, dropping it if the consumer has stalled. Dropping a
// message is preferable to wedging the whatsmeow callback goroutine.
func (w *WhatsApp) emit(ev Event) {
	select {
	case w.events <- ev:
	default:
		w.logger.Warn("event channel full, dropping event")
	}
}

// SelfID returns the bot's own JID, empty before pairing.
func (w *WhatsApp) SelfID() string {
	if w.client.Store.ID == nil {
		return ""
	}
	return w.client.Store.ID.ToNonAD().String()
}

func (w *WhatsApp) SendText(ctx context.Context, chat, text string) error {
	jid, err := types.ParseJID(chat)
	if err != nil {
		return fmt.Errorf("parsing chat JID: %w", err)
	}
	_, err = w.client.SendMessage(ctx, jid, &waE2E.Message{
		Conversation: proto.String(text),
	})
	return err
}

func (w *WhatsApp) SendTextWithMentions(ctx context.Context, chat, text string, mentions []string) error {
	jid, err := types.ParseJID(chat)
	if err != nil {
		return fmt.Errorf("parsing chat JID: %w", err)
	}
	_, err = w.client.SendMessage(ctx, jid, &waE2E.Message{
		ExtendedTextMessage: &waE2E.ExtendedTextMessage{
			Text: proto.String(text),
			ContextInfo: &waE2E.ContextInfo{
				MentionedJID: mentions,
			},
		},
	})
	return err
}

func (w *WhatsApp) SendVideo(ctx context.Context, chat, path, caption string) error {
	jid, err := types.ParseJID(chat)
	if err != nil {
		return fmt.Errorf("parsing chat JID: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading video file: %w", err)
	}
	uploaded, err := w.client.Upload(ctx, data, whatsmeow.MediaVideo)
	if err != nil {
		return fmt.Errorf("uploading video: %w", err)
	}
	_, err = w.client.SendMessage(ctx, jid, &waE2E.Message{
		VideoMessage: &waE2E.VideoMessage{
			URL:           proto.String(uploaded.URL),
			DirectPath:    proto.String(uploaded.DirectPath),
			MediaKey:      uploaded.MediaKey,
			FileEncSHA256: uploaded.FileEncSHA256,
			FileSHA256:    uploaded.FileSHA256,
			FileLength:    proto.Uint64(uploaded.FileLength),
			Mimetype:      proto.String("video/mp4"),
			Caption:       proto.String(caption),
		},
	})
	return err
}

func (w *WhatsApp) SendAudio(ctx context.Context, chat, path string) error {
	jid, err := types.ParseJID(chat)
	if err != nil {
		return fmt.Errorf("parsing chat JID: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading audio file: %w", err)
	}
	uploaded, err := w.client.Upload(ctx, data, whatsmeow.MediaAudio)
	if err != nil {
		return fmt.Errorf("uploading audio: %w", err)
	}
	_, err = w.client.SendMessage(ctx, jid, &waE2E.Message{
		AudioMessage: &waE2E.AudioMessage{
			URL:           proto.String(uploaded.URL),
			DirectPath:    proto.String(uploaded.DirectPath),
			MediaKey:      uploaded.MediaKey,
			FileEncSHA256: uploaded.FileEncSHA256,
			FileSHA256:    uploaded.FileSHA256,
			FileLength:    proto.Uint64(uploaded.FileLength),
			Mimetype:      proto.String("audio/mp4"),
			PTT:           proto.Bool(false),
		},
	})
	return err
}

func (w *WhatsApp) SendImageURL(ctx context.Context, chat, url, caption string) error {
	jid, err := types.ParseJID(chat)
	if err != nil {
		return fmt.Errorf("parsing chat JID: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building image request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetching image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetching image: unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading image body: %w", err)
	}

	uploaded, err := w.client.Upload(ctx, data, whatsmeow.MediaImage)
	if err != nil {
		return fmt.Errorf("uploading image: %w", err)
	}
	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	_, err = w.client.SendMessage(ctx, jid, &waE2E.Message{
		ImageMessage: &waE2E.ImageMessage{
			URL:           proto.String(uploaded.URL),
			DirectPath:    proto.String(uploaded.DirectPath),
			MediaKey:      uploaded.MediaKey,
			FileEncSHA256: uploaded.FileEncSHA256,
			FileSHA256:    uploaded.FileSHA256,
			FileLength:    proto.Uint64(uploaded.FileLength),
			Mimetype:      proto.String(mimeType),
			Caption:       proto.String(caption),
		},
	})
	return err
}

func (w *WhatsApp) GroupMetadata(ctx context.Context, chat string) (*GroupInfo, error) {
	jid, err := types.ParseJID(chat)
	if err != nil {
		return nil, fmt.Errorf("parsing group JID: %w", err)
	}
	info, err := w.client.GetGroupInfo(ctx, jid)
	if err != nil {
		return nil, fmt.Errorf("fetching group metadata: %w", err)
	}
	return convertGroupInfo(info), nil
}

func (w *WhatsApp) GroupParticipantsUpdate(ctx context.Context, chat string, users []string, change ParticipantChange) error {
	jid, err := types.ParseJID(chat)
	if err != nil {
		return fmt.Errorf("parsing group JID: %w", err)
	}
	targets := make([]types.JID, 0, len(users))
	for _, u := range users {
		t, err := types.ParseJID(u)
		if err != nil {
			return fmt.Errorf("parsing participant JID %q: %w", u, err)
		}
		targets = append(targets, t)
	}
	_, err = w.client.UpdateGroupParticipants(ctx, jid, targets, whatsmeow.ParticipantChange(change))
	return err
}

func (w *WhatsApp) JoinedGroups(ctx context.Context) ([]GroupInfo, error) {
	groups, err := w.client.GetJoinedGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching joined groups: %w", err)
	}
	out := make([]GroupInfo, 0, len(groups))
	for _, g := range groups {
		out = append(out, *convertGroupInfo(g))
	}
	return out, nil
}

func (w *WhatsApp) SetBlocked(ctx context.Context, user string, blocked bool) error {
	jid, err := types.ParseJID(user)
	if err != nil {
		return fmt.Errorf("parsing user JID: %w", err)
	}
	action := events.BlocklistChangeActionBlock
	if !blocked {
		action = events.BlocklistChangeActionUnblock
	}
	_, err = w.client.UpdateBlocklist(ctx, jid, action)
	return err
}

func convertGroupInfo(info *types.GroupInfo) *GroupInfo {
	g := &GroupInfo{
		JID:     info.JID.String(),
		Subject: info.GroupName.Name,
		Created: info.GroupCreated,
	}
	for _, p := range info.Participants {
		g.Participants = append(g.Participants, GroupParticipant{
			JID:        p.JID.ToNonAD().String(),
			Admin:      p.IsAdmin,
			SuperAdmin: p.IsSuperAdmin,
		})
	}
	return g
}
