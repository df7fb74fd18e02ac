package messaging

import (
	"log/slog"
	"os"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophsync/internal/event"
	"github.com/iudanet/gophsync/internal/geom"
	"github.com/iudanet/gophsync/internal/record"
	"github.com/iudanet/gophsync/internal/session"
)

var (
	alice = record.Participant{UserID: "u-alice", ConnectionID: "c-alice"}
	bob   = record.Participant{UserID: "u-bob", ConnectionID: "c-bob"}
)

type testSession struct {
	mock     *SessionMock
	received *event.Event[session.Message]
	sent     [][]byte
}

func newTestSession() *testSession {
	ts := &testSession{received: &event.Event[session.Message]{}}
	ts.mock = &SessionMock{
		IsLocalFunc: func(p *record.Participant) bool { return p.Is(&alice) },
		LocalIdentityFunc: func() record.Participant {
			return alice
		},
		MessageReceivedFunc: func() *event.Event[session.Message] {
			return ts.received
		},
		SendMessageFunc: func(data []byte) error {
			ts.sent = append(ts.sent, data)
			return nil
		},
	}
	return ts
}

// bounce delivers every sent message back as the transport would.
func (ts *testSession) bounce(from record.Participant) {
	sent := ts.sent
	ts.sent = nil
	for _, data := range sent {
		ts.received.Trigger(session.Message{Sender: from, Data: data})
	}
}

func newTestChannel(t *testing.T, ts *testSession, id string) *Channel {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return NewChannel(ts.mock, id, logger)
}

func TestChannel_RemoteEchoSuppression(t *testing.T) {
	ts := newTestSession()
	ch := newTestChannel(t, ts, "puck")

	var remote, all []NetworkMessage
	ch.OnRemote().AddAny(func(_ string, m NetworkMessage) { remote = append(remote, m) })
	ch.OnAny().AddAny(func(_ string, m NetworkMessage) { all = append(all, m) })

	require.NoError(t, ch.Send("goal", map[string]any{"team": "red"}))
	require.Len(t, all, 1, "local echo is synchronous")
	assert.True(t, all[0].Local)
	assert.Equal(t, alice, all[0].Sender)

	ts.bounce(alice)

	assert.Empty(t, remote, "own message is not remote")
	assert.Len(t, all, 1, "bounced message is not delivered twice")
}

func TestChannel_WithoutLocalEcho(t *testing.T) {
	ts := newTestSession()
	ch := newTestChannel(t, ts, "puck")

	var all []NetworkMessage
	ch.OnAny().Add("ping", func(m NetworkMessage) { all = append(all, m) })

	require.NoError(t, ch.Send("ping", nil, WithoutLocalEcho()))
	assert.Empty(t, all)

	ts.bounce(alice)
	require.Len(t, all, 1, "bounce is the only delivery")
	assert.Nil(t, all[0].Data)
}

func TestChannel_RemoteMessage(t *testing.T) {
	senderSession := newTestSession()
	sender := newTestChannel(t, senderSession, "puck")
	require.NoError(t, sender.Send("score", 7, WithoutLocalEcho()))
	require.Len(t, senderSession.sent, 1)

	ts := newTestSession()
	ch := newTestChannel(t, ts, "puck")
	var remote, all []NetworkMessage
	ch.OnRemote().Add("score", func(m NetworkMessage) { remote = append(remote, m) })
	ch.OnAny().Add("score", func(m NetworkMessage) { all = append(all, m) })

	ts.received.Trigger(session.Message{Sender: bob, Data: senderSession.sent[0]})

	require.Len(t, remote, 1)
	require.Len(t, all, 1)
	assert.Equal(t, bob, remote[0].Sender)
	assert.False(t, remote[0].Local)
	assert.Equal(t, 7.0, remote[0].Data)

	var score int
	require.NoError(t, remote[0].Unmarshal(&score))
	assert.Equal(t, 7, score)
}

func TestChannel_GeometricPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload any
	}{
		{name: "vec2", payload: geom.Vec2{1, 2}},
		{name: "vec3", payload: geom.Vec3{1, 2, 3}},
		{name: "vec4", payload: geom.Vec4{1, 2, 3, 4}},
		{name: "quat", payload: mgl64.QuatRotate(1, geom.Vec3{0, 0, 1})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestSession()
			ch := newTestChannel(t, ts, "puck")
			var got []NetworkMessage
			ch.OnRemote().Add("move", func(m NetworkMessage) { got = append(got, m) })

			require.NoError(t, ch.Send("move", tt.payload, WithoutLocalEcho()))
			ts.bounce(bob)

			require.Len(t, got, 1)
			assert.Equal(t, tt.payload, got[0].Data)
		})
	}
}

func TestChannel_IgnoresForeignAndMalformed(t *testing.T) {
	ts := newTestSession()
	ch := newTestChannel(t, ts, "puck")
	calls := 0
	ch.OnAny().AddAny(func(string, NetworkMessage) { calls++ })

	for _, data := range []string{
		`not json`,
		`{"_message":"x","_networkRootId":"other"}`,
		`{"_networkRootId":"puck"}`,
		`{"_message":"x","_networkRootId":"puck","_data":{"_type":"vec3","x":"bad"}}`,
		`{"unrelated":true}`,
	} {
		ts.received.Trigger(session.Message{Sender: bob, Data: []byte(data)})
	}

	assert.Zero(t, calls)
}

func TestChannel_SendErrors(t *testing.T) {
	ts := newTestSession()
	ts.mock.SendMessageFunc = func([]byte) error { return session.ErrNotReady }
	ch := newTestChannel(t, ts, "puck")
	echoed := false
	ch.OnAny().AddAny(func(string, NetworkMessage) { echoed = true })

	err := ch.Send("k", 1)
	require.ErrorIs(t, err, session.ErrNotReady)
	assert.False(t, echoed, "failed sends are not echoed")

	_, err = encodePayload(func() {})
	require.Error(t, err)
}

func TestChannel_Close(t *testing.T) {
	ts := newTestSession()
	ch := newTestChannel(t, ts, "puck")
	require.Equal(t, 1, ts.received.Len())

	ch.Close()
	ch.Close()

	assert.Zero(t, ts.received.Len())
	assert.ErrorIs(t, ch.Send("k", 1), ErrChannelClosed)
}

func TestChannel_EchoHistoryIsBounded(t *testing.T) {
	ts := newTestSession()
	ch := newTestChannel(t, ts, "puck")

	for i := 0; i < echoHistory+10; i++ {
		require.NoError(t, ch.Send("k", i))
	}

	assert.Len(t, ch.echoed, echoHistory)
	assert.Len(t, ch.echoOrder, echoHistory)
}
