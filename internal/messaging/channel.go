package messaging

import (
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/iudanet/gophsync/internal/event"
	"github.com/iudanet/gophsync/internal/record"
	"github.com/iudanet/gophsync/internal/session"
)

// echoHistory bounds the set of locally echoed message ids.
const echoHistory = 1024

//go:generate moq -out session_mock.go . Session

// Session is the part of session.Bus a Channel needs.
type Session interface {
	SendMessage(data []byte) error
	IsLocal(p *record.Participant) bool
	LocalIdentity() record.Participant
	MessageReceived() *event.Event[session.Message]
}

var _ Session = (*session.Bus)(nil)

// NetworkMessage is a decoded message delivered to subscribers.
//
// Data is the decoded payload: geom vectors and quaternions keep their type,
// anything else has the encoding/json generic form. Local is set for
// messages sent by this process.
type NetworkMessage struct {
	Sender record.Participant
	Data   any
	Raw    json.RawMessage
	Key    string
	Local  bool
}

// Unmarshal decodes the raw payload into v.
func (m NetworkMessage) Unmarshal(v any) error {
	if len(m.Raw) == 0 {
		return nil
	}
	return json.Unmarshal(m.Raw, v)
}

type sendOptions struct {
	noEcho bool
}

// SendOption configures Send.
type SendOption func(*sendOptions)

// WithoutLocalEcho skips the immediate local dispatch to OnAny subscribers.
func WithoutLocalEcho() SendOption {
	return func(o *sendOptions) { o.noEcho = true }
}

// Channel exchanges keyed messages addressed to a single network id over
// the shared raw message channel.
type Channel struct {
	session   Session
	logger    *slog.Logger
	networkID string

	remote Bus[NetworkMessage]
	all    Bus[NetworkMessage]

	echoed    map[string]struct{}
	echoOrder []string
	sub       event.Handle
	closed    bool
}

// NewChannel subscribes to raw messages for networkID.
func NewChannel(s Session, networkID string, logger *slog.Logger) *Channel {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Channel{
		session:   s,
		networkID: networkID,
		logger:    logger.With("network_id", networkID),
		echoed:    make(map[string]struct{}),
	}
	c.sub = s.MessageReceived().Add(c.receive)
	return c
}

// NetworkID returns the id messages are routed by.
func (c *Channel) NetworkID() string { return c.networkID }

// OnRemote is notified of messages sent by other participants only.
func (c *Channel) OnRemote() *Bus[NetworkMessage] { return &c.remote }

// OnAny is notified of every message, including local echoes, exactly once.
func (c *Channel) OnAny() *Bus[NetworkMessage] { return &c.all }

// Send broadcasts payload under key. Unless WithoutLocalEcho is given, OnAny
// subscribers receive the message synchronously before Send returns.
func (c *Channel) Send(key string, payload any, opts ...SendOption) error {
	if c.closed {
		return ErrChannelClosed
	}
	var o sendOptions
	for _, opt := range opts {
		opt(&o)
	}

	id := uuid.NewString()
	data, raw, err := encodeEnvelope(c.networkID, id, key, payload)
	if err != nil {
		c.logger.Error("Failed to encode message", "key", key, "error", err)
		return err
	}
	if err := c.session.SendMessage(data); err != nil {
		return err
	}
	if o.noEcho {
		return nil
	}

	decoded, err := decodePayload(raw)
	if err != nil {
		return err
	}
	c.remember(id)
	c.all.Trigger(key, NetworkMessage{
		Sender: c.session.LocalIdentity(),
		Key:    key,
		Data:   decoded,
		Raw:    raw,
		Local:  true,
	})
	return nil
}

// Close detaches from the session and drops all subscribers.
func (c *Channel) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.session.MessageReceived().Remove(c.sub)
	c.remote.Clear()
	c.all.Clear()
}

func (c *Channel) receive(msg session.Message) {
	env, err := decodeEnvelope(msg.Data, c.networkID)
	if err != nil {
		if !errors.Is(err, ErrForeignMessage) {
			c.logger.Debug("Dropping malformed message", "error", err)
		}
		return
	}
	data, err := decodePayload(env.Data)
	if err != nil {
		c.logger.Debug("Dropping message with malformed payload", "key", env.Message, "error", err)
		return
	}

	nm := NetworkMessage{
		Sender: msg.Sender,
		Key:    env.Message,
		Data:   data,
		Raw:    env.Data,
	}

	sender := msg.Sender
	if !c.session.IsLocal(&sender) {
		c.remote.Trigger(nm.Key, nm)
		c.all.Trigger(nm.Key, nm)
		return
	}

	// своё сообщение вернулось из транспорта: уже доставлено через локальное эхо
	if c.forget(env.ID) {
		return
	}
	nm.Local = true
	c.all.Trigger(nm.Key, nm)
}

func (c *Channel) remember(id string) {
	if len(c.echoOrder) >= echoHistory {
		delete(c.echoed, c.echoOrder[0])
		c.echoOrder = c.echoOrder[1:]
	}
	c.echoed[id] = struct{}{}
	c.echoOrder = append(c.echoOrder, id)
}

func (c *Channel) forget(id string) bool {
	if id == "" {
		return false
	}
	if _, ok := c.echoed[id]; !ok {
		return false
	}
	delete(c.echoed, id)
	for i, v := range c.echoOrder {
		if v == id {
			c.echoOrder = append(c.echoOrder[:i], c.echoOrder[i+1:]...)
			break
		}
	}
	return true
}
