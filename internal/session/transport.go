package session

import "github.com/iudanet/gophsync/internal/record"

//go:generate moq -out transport_mock.go . Transport

// Transport is the external session channel that creates, updates, deletes
// and arbitrates ownership of records over the network.
// All callbacks must be delivered on the caller's cooperative loop.
type Transport interface {
	// Start connects and begins delivering notifications to events
	Start(events Events)

	// ServerTime returns the shared session clock in seconds
	ServerTime() float64

	// CreateRecord creates a record; exactly one of the callbacks is invoked
	CreateRecord(opts record.CreateOptions, onSuccess func(record.Record), onError func(error))

	// DeleteRecord removes the record for every participant
	DeleteRecord(rec record.Record)

	// RequestOwnership makes the local participant the record owner
	RequestOwnership(rec record.Record, onSuccess func(), onError func(error))

	// ClearOwnership releases ownership held by the local participant
	ClearOwnership(rec record.Record, onSuccess func(), onError func(error))

	// SendMessage broadcasts an opaque payload to all participants
	SendMessage(data []byte)
}

// ConnectionInfo is the initial snapshot delivered on connect.
type ConnectionInfo struct {
	Local   record.Participant
	Host    record.Participant
	Users   []record.Participant
	Records []record.Record
}

// Events receives transport notifications.
type Events interface {
	OnConnected(info ConnectionInfo)
	OnDisconnected(err error)
	OnUserJoined(user record.Participant)
	OnUserLeft(user record.Participant)
	OnHostUpdated(host record.Participant)
	OnRecordCreated(rec record.Record, info record.UpdateInfo)
	OnRecordUpdated(rec record.Record, key string, info record.UpdateInfo)
	OnRecordDeleted(rec record.Record, info record.UpdateInfo)
	OnRecordOwnershipChanged(rec record.Record, owner *record.Participant)
	OnMessageReceived(sender record.Participant, data []byte)
}
