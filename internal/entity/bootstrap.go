package entity

import (
	"errors"

	"github.com/iudanet/gophsync/internal/record"
	"github.com/iudanet/gophsync/internal/session"
)

func (e *Entity) subscribe() {
	created := e.bus.RecordCreated().Add(func(ev session.RecordEvent) {
		if ev.Record.ID() == e.networkID {
			e.onRecordCreated(ev.Record, ev.Info)
		}
	})
	updated := e.bus.RecordUpdated().Add(func(u session.RecordUpdate) {
		if u.Record.ID() == e.networkID {
			e.onRecordUpdated(u)
		}
	})
	deleted := e.bus.RecordDeleted().Add(func(ev session.RecordEvent) {
		if ev.Record.ID() == e.networkID {
			e.destroyRemote()
		}
	})
	owner := e.bus.OwnershipChanged().Add(func(c session.OwnershipChange) {
		if c.Record.ID() == e.networkID && e.state == StateReady {
			e.setOwner(c.Owner)
		}
	})

	e.unsubs = append(e.unsubs,
		func() { e.bus.RecordCreated().Remove(created) },
		func() { e.bus.RecordUpdated().Remove(updated) },
		func() { e.bus.RecordDeleted().Remove(deleted) },
		func() { e.bus.OwnershipChanged().Remove(owner) },
	)
}

func (e *Entity) onSessionReady() {
	if e.state != StateAwaitingSession {
		return
	}
	e.state = StateAwaitingRecord

	if rec, ok := e.bus.LookupRecord(e.networkID); ok {
		e.logger.Debug("Adopting known record")
		e.adopt(rec, record.UpdateInfo{})
		return
	}
	if e.opts.SpawnedLocally {
		e.create()
		return
	}

	window := e.rt.adoptionWindow
	if e.opts.AdoptionWindow > 0 {
		window = e.opts.AdoptionWindow
	}
	e.adoptTimer = e.sched.RunAfter(window, func() {
		e.adoptTimer = nil
		if e.state == StateAwaitingRecord {
			e.create()
		}
	})
}

// create asks the transport for a new record. The 100ms adoption window is
// a heuristic: two participants can still both reach this point, the loser
// gets ErrRecordExists and waits for the winner's creation notification.
func (e *Entity) create() {
	e.logger.Debug("Creating record", "persistence", e.opts.Persistence)

	opts := record.CreateOptions{
		ID:          e.networkID,
		Persistence: e.opts.Persistence,
		Initial:     e.props.InitialValues(),
		Owned:       e.opts.ClaimOnCreate,
	}
	e.bus.CreateRecord(opts, func(rec record.Record) {
		if e.state == StateDestroyed {
			// уничтожили, пока запрос был в пути: запись никому не нужна
			e.logger.Info("Entity destroyed before its record was created, deleting record")
			e.bus.DeleteRecord(rec)
			return
		}
		local := e.bus.LocalIdentity()
		e.adopt(rec, record.UpdateInfo{Sender: local})
	}, func(err error) {
		if e.state == StateDestroyed {
			return
		}
		if errors.Is(err, record.ErrRecordExists) {
			e.logger.Info("Record was created by another participant, waiting to adopt it")
			if rec, ok := e.bus.LookupRecord(e.networkID); ok {
				e.adopt(rec, record.UpdateInfo{})
			}
			return
		}
		// запись может ещё появиться от другого участника, но ждать её
		// запросы на владение не должны
		e.logger.Error("Failed to create record, waiting for another participant to create it", "error", err)
		queue := e.queue
		e.queue = nil
		for _, req := range queue {
			req.fail(err)
		}
	})
}

func (e *Entity) onRecordCreated(rec record.Record, info record.UpdateInfo) {
	if e.state != StateAwaitingRecord {
		return
	}
	e.adopt(rec, info)
}

// adopt binds the entity to rec and makes it ready.
func (e *Entity) adopt(rec record.Record, info record.UpdateInfo) {
	if e.state != StateAwaitingRecord {
		return
	}
	if e.adoptTimer != nil {
		e.adoptTimer.Cancel()
		e.adoptTimer = nil
	}

	e.rec = rec
	e.owner = rec.Owner()

	if e.DoIOwnStore() {
		e.props.PushAll(rec)
	} else {
		e.props.PullAll(rec, info)
	}

	e.state = StateReady
	e.logger.Info("Entity ready", "owner", ownerID(e.owner), "owned_locally", e.DoIOwnStore())

	if e.owner != nil {
		e.ownerUpdated.Trigger(e.Owner())
	}
	e.drainQueue()

	queue := e.setupQueue
	e.setupQueue = nil
	for _, cb := range queue {
		if e.state != StateReady {
			break
		}
		cb()
	}

	if e.state == StateReady {
		e.ticker = e.sched.RunEveryTick(e.tick)
	}
}

func (e *Entity) onRecordUpdated(u session.RecordUpdate) {
	if e.state != StateReady {
		return
	}
	if e.DoIOwnStore() {
		return
	}
	sender := u.Info.Sender
	if e.bus.IsLocal(&sender) {
		return
	}
	// ошибка уже залогирована в наборе свойств
	_ = e.props.ApplyIncoming(e.rec, u.Key, u.Info)
}

// tick pushes dirty fields when we may write and applies smoothing when
// someone else may.
func (e *Entity) tick() {
	if e.state != StateReady {
		return
	}
	switch {
	case e.DoIOwnStore():
		e.props.PushChanges(e.rec)
	case e.owner != nil:
		e.props.ApplySmoothing()
	default:
		e.props.PushChanges(e.rec)
		e.props.ApplySmoothing()
	}
}
