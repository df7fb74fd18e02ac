package loopback

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophsync/internal/record"
	"github.com/iudanet/gophsync/internal/scheduler"
	"github.com/iudanet/gophsync/internal/session"
	"github.com/iudanet/gophsync/internal/storage"
	"github.com/iudanet/gophsync/internal/storage/boltdb"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

type peer struct {
	loop   *scheduler.Loop
	client *Client
	bus    *session.Bus
}

func connect(t *testing.T, hub *Hub, clock scheduler.Clock, name string) *peer {
	t.Helper()
	loop := scheduler.NewLoop(clock)
	client := hub.Connect(loop, name)
	bus := session.NewBus(client, testLogger())
	require.NoError(t, bus.Start())
	return &peer{loop: loop, client: client, bus: bus}
}

// settle ticks every peer until posted notifications are drained.
func settle(peers ...*peer) {
	for i := 0; i < 4; i++ {
		for _, p := range peers {
			p.loop.Tick()
		}
	}
}

func newTestHub(t *testing.T, opts ...HubOption) (*Hub, *scheduler.ManualClock) {
	t.Helper()
	clock := scheduler.NewManualClock()
	hub, err := NewHub(context.Background(), clock, append(opts, WithLogger(testLogger()))...)
	require.NoError(t, err)
	return hub, clock
}

func createRecord(t *testing.T, p *peer, opts record.CreateOptions) record.Record {
	t.Helper()
	var created record.Record
	p.bus.CreateRecord(opts, func(rec record.Record) { created = rec }, func(err error) {
		t.Fatalf("create %s: %v", opts.ID, err)
	})
	settle(p)
	require.NotNil(t, created)
	return created
}

func TestHub_ConnectAndSnapshot(t *testing.T) {
	hub, clock := newTestHub(t)
	alice := connect(t, hub, clock, "alice")
	settle(alice)
	require.True(t, alice.bus.IsReady())
	assert.True(t, alice.bus.IsHost())

	createRecord(t, alice, record.CreateOptions{
		ID:      "puck",
		Initial: map[string]record.Value{"score": {Tag: record.TypeInt, Data: int32(3)}},
	})

	bob := connect(t, hub, clock, "bob")
	settle(alice, bob)

	require.True(t, bob.bus.IsReady())
	assert.False(t, bob.bus.IsHost())
	assert.Equal(t, alice.client.Local(), bob.bus.Host())
	assert.Len(t, bob.bus.Users(), 2)
	assert.Len(t, alice.bus.Users(), 2, "alice saw bob join")

	rec, ok := bob.bus.LookupRecord("puck")
	require.True(t, ok)
	score, err := record.Read[int32](rec, record.TypeInt, "score")
	require.NoError(t, err)
	assert.Equal(t, int32(3), score)
}

func TestHub_CreateDuplicate(t *testing.T) {
	hub, clock := newTestHub(t)
	alice := connect(t, hub, clock, "alice")
	bob := connect(t, hub, clock, "bob")
	settle(alice, bob)

	createRecord(t, alice, record.CreateOptions{ID: "puck"})

	var createErr error
	bob.bus.CreateRecord(record.CreateOptions{ID: "puck"}, nil, func(err error) { createErr = err })
	settle(alice, bob)

	require.ErrorIs(t, createErr, record.ErrRecordExists)
	assert.Equal(t, []string{"puck"}, hub.RecordIDs())
}

func TestHub_CreateInvalid(t *testing.T) {
	hub, clock := newTestHub(t)
	alice := connect(t, hub, clock, "alice")
	settle(alice)

	var errs []error
	alice.bus.CreateRecord(record.CreateOptions{}, nil, func(err error) { errs = append(errs, err) })
	alice.bus.CreateRecord(record.CreateOptions{
		ID:      "bad",
		Initial: map[string]record.Value{"x": {Tag: record.TypeInt, Data: "nope"}},
	}, nil, func(err error) { errs = append(errs, err) })
	settle(alice)

	require.Len(t, errs, 2)
	assert.ErrorIs(t, errs[1], record.ErrTypeMismatch)
	assert.Empty(t, hub.RecordIDs())
}

func TestHub_OwnershipIsExclusive(t *testing.T) {
	hub, clock := newTestHub(t)
	alice := connect(t, hub, clock, "alice")
	bob := connect(t, hub, clock, "bob")
	settle(alice, bob)

	createRecord(t, alice, record.CreateOptions{ID: "puck"})
	settle(alice, bob)
	aliceRec, _ := alice.bus.LookupRecord("puck")
	bobRec, _ := bob.bus.LookupRecord("puck")

	var results []string
	alice.bus.RequestOwnership(aliceRec, func() { results = append(results, "alice") }, func(error) {
		results = append(results, "alice failed")
	})
	var bobErr error
	bob.bus.RequestOwnership(bobRec, func() { results = append(results, "bob") }, func(err error) {
		bobErr = err
	})
	settle(alice, bob)

	assert.Equal(t, []string{"alice"}, results)
	require.ErrorIs(t, bobErr, record.ErrNotOwner)

	owner, ok := hub.Owner("puck")
	require.True(t, ok)
	assert.True(t, owner.Is(ptr(alice.client.Local())))
	assert.True(t, bobRec.Owner().Is(ptr(alice.client.Local())), "bob's replica knows the owner")

	var clearErr error
	bob.bus.ClearOwnership(bobRec, nil, func(err error) { clearErr = err })
	settle(alice, bob)
	require.ErrorIs(t, clearErr, record.ErrNotOwner)

	alice.bus.ClearOwnership(aliceRec, nil, nil)
	settle(alice, bob)
	owner, _ = hub.Owner("puck")
	assert.Nil(t, owner)
	assert.Nil(t, bobRec.Owner())
}

func TestHub_OwnershipUnknownRecord(t *testing.T) {
	hub, clock := newTestHub(t)
	alice := connect(t, hub, clock, "alice")
	settle(alice)

	var reqErr error
	alice.bus.RequestOwnership(record.NewMemory("ghost", record.PersistenceSession), nil, func(err error) { reqErr = err })
	settle(alice)

	assert.ErrorIs(t, reqErr, record.ErrRecordNotFound)
}

func TestHub_WritesRequireOwnership(t *testing.T) {
	hub, clock := newTestHub(t)
	alice := connect(t, hub, clock, "alice")
	bob := connect(t, hub, clock, "bob")
	settle(alice, bob)

	aliceRec := createRecord(t, alice, record.CreateOptions{ID: "puck", Owned: true})
	settle(alice, bob)
	bobRec, ok := bob.bus.LookupRecord("puck")
	require.True(t, ok)

	var updates []session.RecordUpdate
	bob.bus.RecordUpdated().Add(func(u session.RecordUpdate) { updates = append(updates, u) })

	err := bobRec.Put(record.TypeInt, "score", int32(1))
	require.ErrorIs(t, err, record.ErrNotOwner)

	clock.Advance(2 * time.Second)
	require.NoError(t, aliceRec.Put(record.TypeInt, "score", int32(7)))
	settle(alice, bob)

	require.Len(t, updates, 1)
	assert.Equal(t, "score", updates[0].Key)
	assert.True(t, updates[0].Info.HasSentTime)
	assert.Equal(t, 2.0, updates[0].Info.SentServerTime)
	assert.Equal(t, alice.client.Local(), updates[0].Info.Sender)

	score, err := record.Read[int32](bobRec, record.TypeInt, "score")
	require.NoError(t, err)
	assert.Equal(t, int32(7), score)

	v, ok := hub.Value("puck", "score")
	require.True(t, ok)
	assert.Equal(t, int32(7), v.Data)
}

func TestHub_DeleteRecord(t *testing.T) {
	hub, clock := newTestHub(t)
	alice := connect(t, hub, clock, "alice")
	bob := connect(t, hub, clock, "bob")
	settle(alice, bob)

	aliceRec := createRecord(t, alice, record.CreateOptions{ID: "puck", Owned: true})
	settle(alice, bob)
	bobRec, _ := bob.bus.LookupRecord("puck")

	deleted := 0
	bob.bus.RecordDeleted().Add(func(session.RecordEvent) { deleted++ })

	bob.bus.DeleteRecord(bobRec)
	settle(alice, bob)
	assert.Equal(t, []string{"puck"}, hub.RecordIDs(), "non-owner cannot delete")

	alice.bus.DeleteRecord(aliceRec)
	settle(alice, bob)
	assert.Empty(t, hub.RecordIDs())
	assert.Equal(t, 1, deleted)
	_, ok := bob.bus.LookupRecord("puck")
	assert.False(t, ok)
}

func TestHub_LeaveCleansUpByPersistence(t *testing.T) {
	hub, clock := newTestHub(t)
	alice := connect(t, hub, clock, "alice")
	bob := connect(t, hub, clock, "bob")
	settle(alice, bob)

	createRecord(t, alice, record.CreateOptions{ID: "eph", Persistence: record.PersistenceEphemeral})
	createRecord(t, alice, record.CreateOptions{ID: "owned", Persistence: record.PersistenceOwner, Owned: true})
	createRecord(t, alice, record.CreateOptions{ID: "sess", Persistence: record.PersistenceSession})
	createRecord(t, alice, record.CreateOptions{ID: "sess-owned", Persistence: record.PersistenceSession, Owned: true})
	settle(alice, bob)

	var deleted []string
	var released []string
	var left []record.Participant
	var hosts []record.Participant
	bob.bus.RecordDeleted().Add(func(ev session.RecordEvent) { deleted = append(deleted, ev.Record.ID()) })
	bob.bus.OwnershipChanged().Add(func(c session.OwnershipChange) {
		if c.Owner == nil {
			released = append(released, c.Record.ID())
		}
	})
	bob.bus.UserLeft().Add(func(p record.Participant) { left = append(left, p) })
	bob.bus.HostUpdated().Add(func(p record.Participant) { hosts = append(hosts, p) })
	disconnected := false
	alice.bus.Disconnected().Add(func(error) { disconnected = true })

	alice.client.Close()
	settle(alice, bob)

	assert.ElementsMatch(t, []string{"eph", "owned"}, deleted)
	assert.Equal(t, []string{"sess-owned"}, released)
	assert.Equal(t, []string{"sess", "sess-owned"}, hub.RecordIDs())
	assert.Equal(t, []record.Participant{alice.client.Local()}, left)
	assert.Equal(t, []record.Participant{bob.client.Local()}, hosts)
	assert.True(t, bob.bus.IsHost())
	assert.True(t, disconnected)
	assert.False(t, alice.bus.IsReady())

	bob.client.Close()
	settle(bob)
	assert.Empty(t, hub.RecordIDs(), "session records end with the session")
}

func TestHub_DurableRecordsSurviveRestart(t *testing.T) {
	ctx := context.Background()
	store, err := boltdb.New(ctx, filepath.Join(t.TempDir(), "hub.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })

	hub, clock := newTestHub(t, WithStorage(store))
	alice := connect(t, hub, clock, "alice")
	settle(alice)
	rec := createRecord(t, alice, record.CreateOptions{
		ID:          "scoreboard",
		Persistence: record.PersistenceDurable,
		Initial:     map[string]record.Value{"score": {Tag: record.TypeInt, Data: int32(1)}},
	})
	createRecord(t, alice, record.CreateOptions{ID: "temp", Persistence: record.PersistenceSession})
	require.NoError(t, rec.Put(record.TypeInt, "score", int32(9)))
	alice.client.Close()
	settle(alice)

	restarted, err := NewHub(ctx, clock, WithStorage(store), WithLogger(testLogger()))
	require.NoError(t, err)
	assert.Equal(t, []string{"scoreboard"}, restarted.RecordIDs())

	bob := connect(t, restarted, clock, "bob")
	settle(bob)
	got, ok := bob.bus.LookupRecord("scoreboard")
	require.True(t, ok)
	score, err := record.Read[int32](got, record.TypeInt, "score")
	require.NoError(t, err)
	assert.Equal(t, int32(9), score)
	assert.Nil(t, got.Owner())
}

func TestHub_StorageErrors(t *testing.T) {
	loadErr := errors.New("disk on fire")
	failing := &storage.RecordStorageMock{
		GetAllRecordsFunc: func(ctx context.Context) ([]*storage.StoredRecord, error) {
			return nil, loadErr
		},
	}
	_, err := NewHub(context.Background(), scheduler.NewManualClock(), WithStorage(failing))
	require.ErrorIs(t, err, loadErr)

	saving := &storage.RecordStorageMock{
		GetAllRecordsFunc: func(ctx context.Context) ([]*storage.StoredRecord, error) {
			return nil, nil
		},
		SaveRecordFunc: func(ctx context.Context, rec *storage.StoredRecord) error {
			return loadErr
		},
	}
	hub, clock := newTestHub(t, WithStorage(saving))
	alice := connect(t, hub, clock, "alice")
	settle(alice)

	createRecord(t, alice, record.CreateOptions{ID: "d", Persistence: record.PersistenceDurable})
	assert.Len(t, saving.SaveRecordCalls(), 1)
	assert.Equal(t, []string{"d"}, hub.RecordIDs(), "storage failure does not block the session")
}

func TestHub_DeliveryDelay(t *testing.T) {
	hub, clock := newTestHub(t, WithDeliveryDelay(50*time.Millisecond))
	alice := connect(t, hub, clock, "alice")

	settle(alice)
	assert.False(t, alice.bus.IsReady(), "connection is delayed")

	clock.Advance(50 * time.Millisecond)
	settle(alice)
	assert.True(t, alice.bus.IsReady())
}

func TestHub_MessagesReachEveryone(t *testing.T) {
	hub, clock := newTestHub(t)
	alice := connect(t, hub, clock, "alice")
	bob := connect(t, hub, clock, "bob")
	settle(alice, bob)

	var got []string
	for _, p := range []*peer{alice, bob} {
		name := p.client.Local().DisplayName
		p.bus.MessageReceived().Add(func(m session.Message) {
			got = append(got, name+"<-"+m.Sender.DisplayName+":"+string(m.Data))
		})
	}

	require.NoError(t, alice.bus.SendMessage([]byte("hi")))
	settle(alice, bob)

	assert.ElementsMatch(t, []string{"alice<-alice:hi", "bob<-alice:hi"}, got)
}

func ptr[T any](v T) *T { return &v }
