package host

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrBridgeClosed is returned by requests outstanding when the input stream
// ends.
var ErrBridgeClosed = errors.New("editor bridge closed")

// Message types on the wire.
const (
	MsgOpened   = "opened"
	MsgClosed   = "closed"
	MsgMoved    = "moved"
	MsgReply    = "reply"
	MsgCommand  = "command"
	MsgCloseAll = "closeAll"
	MsgOpen     = "open"
	MsgConfirm  = "confirm"
	MsgNotify   = "notify"
	MsgRefresh  = "refresh"
)

// Message is one line of the bridge protocol, in either direction.
type Message struct {
	Type     string   `json:"type"`
	ID       string   `json:"id,omitempty"`
	Scheme   string   `json:"scheme,omitempty"`
	Path     string   `json:"path,omitempty"`
	Position int      `json:"position,omitempty"`
	Message  string   `json:"message,omitempty"`
	Options  []string `json:"options,omitempty"`
	Answer   string   `json:"answer,omitempty"`
	Error    string   `json:"error,omitempty"`
	Command  string   `json:"command,omitempty"`
	Branch   string   `json:"branch,omitempty"`
}

// Bridge implements Editor over newline-delimited JSON. An editor plugin
// writes tab events, commands and replies to the bridge's input, and reads
// requests (open, closeAll, confirm) and notifications from its output.
type Bridge struct {
	in  io.Reader
	log zerolog.Logger

	wmu sync.Mutex
	enc *json.Encoder

	mu      sync.Mutex
	pending map[string]chan Message
	closed  chan struct{}

	seq      atomic.Uint64
	tabs     Emitter[TabEvent]
	commands Emitter[Command]
}

// NewBridge creates a bridge reading from in and writing to out.
func NewBridge(in io.Reader, out io.Writer, logger zerolog.Logger) *Bridge {
	return &Bridge{
		in:      in,
		enc:     json.NewEncoder(out),
		log:     logger.With().Str("component", "bridge").Logger(),
		pending: make(map[string]chan Message),
		closed:  make(chan struct{}),
	}
}

// OnTabEvent subscribes to tab events from the editor.
func (b *Bridge) OnTabEvent(fn func(TabEvent)) Subscription {
	return b.tabs.Subscribe(fn)
}

// Received returns the sequence number of the last tab event read.
func (b *Bridge) Received() uint64 {
	return b.seq.Load()
}

// OnCommand subscribes to commands from the editor.
func (b *Bridge) OnCommand(fn func(Command)) Subscription {
	return b.commands.Subscribe(fn)
}

// Serve reads messages until the input ends or ctx is cancelled. Tab events
// and commands are handed to post so that they run on the caller's event
// loop; replies are delivered directly to the waiting request.
func (b *Bridge) Serve(ctx context.Context, post func(func())) error {
	defer b.shutdown()

	lines := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(b.in)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if err != nil {
				return fmt.Errorf("failed to read editor input: %w", err)
			}
			return nil
		case line := <-lines:
			b.dispatch(line, post)
		}
	}
}

func (b *Bridge) dispatch(line []byte, post func(func())) {
	if len(line) == 0 {
		return
	}

	var msg Message
	if err := json.Unmarshal(line, &msg); err != nil {
		b.log.Warn().Err(err).Bytes("line", line).Msg("ignoring malformed message")
		return
	}

	switch msg.Type {
	case MsgOpened, MsgClosed, MsgMoved:
		ev := TabEvent{
			Kind:     EventKind(msg.Type),
			Scheme:   msg.Scheme,
			Path:     msg.Path,
			Position: msg.Position,
			Seq:      b.seq.Add(1),
		}
		post(func() { b.tabs.Emit(ev) })
	case MsgCommand:
		cmd := Command{Name: msg.Command, Branch: msg.Branch, Path: msg.Path}
		post(func() { b.commands.Emit(cmd) })
	case MsgReply:
		b.mu.Lock()
		ch, ok := b.pending[msg.ID]
		delete(b.pending, msg.ID)
		b.mu.Unlock()
		if !ok {
			b.log.Warn().Str("id", msg.ID).Msg("reply for unknown request")
			return
		}
		ch <- msg
	default:
		b.log.Warn().Str("type", msg.Type).Msg("ignoring unknown message type")
	}
}

func (b *Bridge) shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()
	select {
	case <-b.closed:
	default:
		close(b.closed)
	}
}

func (b *Bridge) send(msg Message) error {
	b.wmu.Lock()
	defer b.wmu.Unlock()
	if err := b.enc.Encode(msg); err != nil {
		return fmt.Errorf("failed to write %s message: %w", msg.Type, err)
	}
	return nil
}

// request sends msg with a fresh id and waits for the matching reply.
func (b *Bridge) request(ctx context.Context, msg Message) (Message, error) {
	msg.ID = uuid.NewString()
	ch := make(chan Message, 1)

	b.mu.Lock()
	select {
	case <-b.closed:
		b.mu.Unlock()
		return Message{}, ErrBridgeClosed
	default:
	}
	b.pending[msg.ID] = ch
	b.mu.Unlock()

	forget := func() {
		b.mu.Lock()
		delete(b.pending, msg.ID)
		b.mu.Unlock()
	}

	if err := b.send(msg); err != nil {
		forget()
		return Message{}, err
	}

	select {
	case reply := <-ch:
		if reply.Error != "" {
			return reply, fmt.Errorf("editor: %s", reply.Error)
		}
		return reply, nil
	case <-ctx.Done():
		forget()
		return Message{}, ctx.Err()
	case <-b.closed:
		forget()
		return Message{}, ErrBridgeClosed
	}
}

// CloseAll asks the editor to close every open editor.
func (b *Bridge) CloseAll(ctx context.Context) error {
	_, err := b.request(ctx, Message{Type: MsgCloseAll})
	return err
}

// Open asks the editor to show path in the given column.
func (b *Bridge) Open(ctx context.Context, path string, position int) error {
	_, err := b.request(ctx, Message{Type: MsgOpen, Path: path, Position: position})
	return err
}

// Confirm asks the user a question and returns the chosen option.
func (b *Bridge) Confirm(ctx context.Context, message string, options ...string) (string, error) {
	reply, err := b.request(ctx, Message{Type: MsgConfirm, Message: message, Options: options})
	if err != nil {
		return "", err
	}
	return reply.Answer, nil
}

// Notify shows an informational message.
func (b *Bridge) Notify(_ context.Context, message string) {
	if err := b.send(Message{Type: MsgNotify, Message: message}); err != nil {
		b.log.Warn().Err(err).Msg("failed to send notification")
	}
}

// Refresh tells the editor that stored branch memory changed.
func (b *Bridge) Refresh() {
	if err := b.send(Message{Type: MsgRefresh}); err != nil {
		b.log.Warn().Err(err).Msg("failed to send refresh")
	}
}
