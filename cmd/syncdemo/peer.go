package main

import (
	"fmt"
	"log/slog"

	"github.com/iudanet/gophsync/internal/config"
	"github.com/iudanet/gophsync/internal/entity"
	"github.com/iudanet/gophsync/internal/geom"
	"github.com/iudanet/gophsync/internal/messaging"
	"github.com/iudanet/gophsync/internal/property"
	"github.com/iudanet/gophsync/internal/record"
	"github.com/iudanet/gophsync/internal/scheduler"
	"github.com/iudanet/gophsync/internal/session"
	"github.com/iudanet/gophsync/internal/transport/loopback"
)

const (
	scoreKey    = "score"
	positionKey = "position"
	goalEvent   = "goal"

	// goalEvery is the number of driven frames between goals.
	goalEvery = 60
	// puckSpeed is in units per frame.
	puckSpeed = 0.05
)

// puck is the scene object both peers attach an entity to.
type puck struct {
	id        string
	pos       geom.Vec3
	destroyed bool
}

func (p *puck) ObjectID() string { return p.id }

func (p *puck) HierarchyPath() []string { return []string{"arena", "puck"} }

func (p *puck) Destroy() { p.destroyed = true }

// peer is one simulated process with its own loop and runtime.
type peer struct {
	name   string
	logger *slog.Logger
	loop   *scheduler.Loop
	client *loopback.Client
	bus    *session.Bus
	rt     *entity.Runtime

	puck     *puck
	entity   *entity.Entity
	score    *property.Property[int32]
	position *property.Property[geom.Vec3]
	goals    int
}

func newPeer(hub *loopback.Hub, clock scheduler.Clock, cfg config.Config, name, sceneID string, logger *slog.Logger) (*peer, error) {
	logger = logger.With("peer", name)
	loop := scheduler.NewLoop(clock)
	client := hub.Connect(loop, name)
	bus := session.NewBus(client, logger)
	if err := bus.Start(); err != nil {
		return nil, fmt.Errorf("start session for %s: %w", name, err)
	}

	p := &peer{
		name:   name,
		logger: logger,
		loop:   loop,
		client: client,
		bus:    bus,
		rt:     entity.NewRuntime(bus, loop, logger, entity.WithAdoptionWindow(cfg.Session.AdoptionWindow)),
		puck:   &puck{id: sceneID},
	}

	p.score = property.Manual(property.Int, scoreKey, 0)
	p.position = property.Auto(property.Vec3, positionKey,
		func() geom.Vec3 { return p.puck.pos },
		func(v geom.Vec3) { p.puck.pos = v },
	).SetSendsPerSecondLimit(cfg.Smoothing.SendsPerSecond)
	if err := p.position.EnableSmoothing(cfg.Smoothing.BufferSize, cfg.Smoothing.OffsetSeconds()); err != nil {
		return nil, err
	}

	e, err := p.rt.NewEntity(entity.Options{
		Host: p.puck,
		ID: entity.NetworkIDOptions{
			Mode:     cfg.Session.IDMode,
			Prefix:   cfg.Session.IDPrefix,
			CustomID: "puck",
		},
		Persistence: cfg.Session.Persistence,
	}, p.score, p.position)
	if err != nil {
		return nil, fmt.Errorf("create entity for %s: %w", name, err)
	}
	p.entity = e
	return p, nil
}

// drive takes ownership once the entity is set up and then moves the puck
// and scores goals.
func (p *peer) drive() {
	p.entity.OnSetupFinished(func() {
		p.entity.RequestOwnership(func() {
			p.logger.Info("Took ownership of the puck")
		}, func(err error) {
			p.logger.Error("Failed to take ownership", "error", err)
		})
	})

	frames := 0
	p.loop.RunEveryTick(func() {
		if !p.entity.DoIOwnStore() {
			return
		}
		frames++
		p.puck.pos = p.puck.pos.Add(geom.Vec3{puckSpeed, 0, 0})
		if frames%goalEvery != 0 {
			return
		}

		score := p.score.CurrentOrPendingValue() + 1
		p.score.SetPendingValue(score)
		p.puck.pos = geom.Vec3{}
		if err := p.entity.SendEvent(goalEvent, map[string]any{"scorer": p.name, "score": score}); err != nil {
			p.logger.Error("Failed to send goal event", "error", err)
		}
	})
}

// watch logs what arrives from the driver.
func (p *peer) watch() {
	p.score.OnRemoteChanged().Add(func(c property.Change[int32]) {
		p.logger.Info("Score changed", "score", c.Value, "from", c.Info.Sender.DisplayName)
	})
	p.entity.OnEvent().Add(goalEvent, func(m messaging.NetworkMessage) {
		p.goals++
		p.logger.Info("Goal", "from", m.Sender.DisplayName, "payload", m.Data)
	})
	p.entity.OnOwnerUpdated().Add(func(owner *record.Participant) {
		if owner == nil {
			p.logger.Info("Puck released")
			return
		}
		p.logger.Info("Puck owner changed", "owner", owner.DisplayName)
	})
}

func (p *peer) close() {
	p.rt.Close()
	p.client.Close()
}
