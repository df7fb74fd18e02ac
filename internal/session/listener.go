package session

import "github.com/iudanet/gophsync/internal/record"

// listener receives transport notifications on behalf of Bus without
// exposing the Events methods on Bus itself.
type listener Bus

var _ Events = (*listener)(nil)

func (l *listener) bus() *Bus { return (*Bus)(l) }

func (l *listener) OnConnected(info ConnectionInfo) {
	b := l.bus()

	b.local = info.Local
	b.host = info.Host
	b.registerUser(info.Local)
	for _, u := range info.Users {
		b.registerUser(u)
	}
	for _, rec := range info.Records {
		b.registerRecord(rec)
	}

	b.logger.Info("Session connected",
		"connection_id", info.Local.ConnectionID,
		"users", len(b.users),
		"records", len(b.records))

	b.ready = true

	queue := b.readyQueue
	b.readyQueue = nil
	for _, cb := range queue {
		cb()
	}
}

func (l *listener) OnDisconnected(err error) {
	b := l.bus()
	b.ready = false
	b.logger.Warn("Session disconnected", "error", err)
	b.disconnected.Trigger(err)
}

func (l *listener) OnUserJoined(user record.Participant) {
	b := l.bus()
	if !b.registerUser(user) {
		return
	}
	b.userJoined.Trigger(user)
}

func (l *listener) OnUserLeft(user record.Participant) {
	b := l.bus()
	if _, ok := b.users[user.ConnectionID]; !ok {
		return
	}
	delete(b.users, user.ConnectionID)
	b.userLeft.Trigger(user)
}

func (l *listener) OnHostUpdated(host record.Participant) {
	b := l.bus()
	b.host = host
	b.hostUpdated.Trigger(host)
}

func (l *listener) OnRecordCreated(rec record.Record, info record.UpdateInfo) {
	b := l.bus()
	b.registerRecord(rec)
	b.recordCreated.Trigger(RecordEvent{Record: rec, Info: info})
}

func (l *listener) OnRecordUpdated(rec record.Record, key string, info record.UpdateInfo) {
	b := l.bus()
	b.registerRecord(rec)
	b.recordUpdated.Trigger(RecordUpdate{Record: rec, Key: key, Info: info})
}

func (l *listener) OnRecordDeleted(rec record.Record, info record.UpdateInfo) {
	b := l.bus()
	delete(b.records, rec.ID())
	b.recordDeleted.Trigger(RecordEvent{Record: rec, Info: info})
}

func (l *listener) OnRecordOwnershipChanged(rec record.Record, owner *record.Participant) {
	l.bus().ownershipChanged.Trigger(OwnershipChange{Record: rec, Owner: owner})
}

func (l *listener) OnMessageReceived(sender record.Participant, data []byte) {
	l.bus().messageReceived.Trigger(Message{Sender: sender, Data: data})
}
