package server

import (
	"context"
	"encoding/binary"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codecat/go-enet"
	"github.com/google/uuid"

	. "PiwPew/internal/game"
	"PiwPew/internal/protocol"
	"PiwPew/pkg/logger"
)

// maxEventsPerTick bounds the network work a single tick will do, so a
// packet flood cannot starve the simulation.
const maxEventsPerTick = 1024

// newClientID folds a fresh UUID into the uint64 id space used on the wire.
func newClientID() ClientID {
	u := uuid.New()
	return binary.LittleEndian.Uint64(u[:8])
}

type app struct {
	cfg      Config
	world    *Map
	state    *State
	host     enet.Host
	sender   *enetSender
	handler  *Handler
	board    *StatusBoard
	sessions map[enet.Peer]ClientID
}

// Run boots the server and blocks until SIGINT or SIGTERM. Everything that
// touches game state runs on this goroutine: the tick loop drains network
// events, dispatches them, resolves the world and flushes the results, in
// that order, every tick.
func Run(cfg Config) error {
	world, err := LoadMap(cfg.MapPath)
	if err != nil {
		return err
	}
	logger.Log.Infof("loaded map %s (%d tiles)", cfg.MapPath, world.TileCount())

	enet.Initialize()
	defer enet.Deinitialize()

	host, err := enet.NewHost(enet.NewListenAddress(cfg.Port), uint64(cfg.MaxClients), protocol.ChannelCount, 0, 0)
	if err != nil {
		return err
	}
	defer host.Destroy()

	state := NewState()
	sender := newEnetSender()
	handler, err := NewHandler(world, state, sender, cfg.MaxClients)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{
		cfg:      cfg,
		world:    world,
		state:    state,
		host:     host,
		sender:   sender,
		handler:  handler,
		board:    NewStatusBoard(),
		sessions: make(map[enet.Peer]ClientID),
	}
	go serveDebug(ctx, cfg.DebugAddr, a.board)

	logger.Log.Infof("listening on udp port %d (max %d clients, tick %s)",
		cfg.Port, cfg.MaxClients, cfg.TickInterval)

	ticker := time.NewTicker(cfg.TickInterval)
	defer ticker.Stop()

	var tick uint64
	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("shutting down")
			a.disconnectAll()
			return nil
		case <-ticker.C:
			tick++
			start := time.Now()
			a.pumpNetwork()
			a.handler.EmitTick(a.state.Resolve(a.world))
			a.publish(tick, time.Since(start))
		}
	}
}

// pumpNetwork drains pending transport events. Connects mint a session id;
// the player itself only exists once the join message arrives.
func (a *app) pumpNetwork() {
	for i := 0; i < maxEventsPerTick; i++ {
		ev := a.host.Service(0)
		switch ev.GetType() {
		case enet.EventNone:
			return
		case enet.EventConnect:
			peer := ev.GetPeer()
			id := newClientID()
			a.sessions[peer] = id
			a.sender.attach(id, peer)
			logger.Log.WithField("client", id).Info("peer connected")
		case enet.EventDisconnect:
			peer := ev.GetPeer()
			id, ok := a.sessions[peer]
			if !ok {
				continue
			}
			delete(a.sessions, peer)
			a.sender.detach(id)
			a.handler.HandleDisconnect(id)
		case enet.EventReceive:
			pkt := ev.GetPacket()
			data := append([]byte(nil), pkt.GetData()...)
			pkt.Destroy()
			id, ok := a.sessions[ev.GetPeer()]
			if !ok {
				continue
			}
			a.handler.HandleMessage(id, protocol.Channel(ev.GetChannelID()), data)
		}
	}
	logger.Log.Warnf("event pump hit the %d-event tick cap", maxEventsPerTick)
}

func (a *app) disconnectAll() {
	for peer := range a.sessions {
		peer.DisconnectNow(0)
	}
}

// publish hands this tick's telemetry to the ops endpoints and warns when
// the work exceeded the tick budget.
func (a *app) publish(tick uint64, dur time.Duration) {
	budget := a.cfg.TickInterval
	if dur > budget {
		logger.Log.Warnf("slow tick %d: %s of %s budget", tick, dur, budget)
	}

	snap := WorldSnapshot{
		Stats: TickStats{
			Tick:        tick,
			DurationUS:  dur.Microseconds(),
			BudgetUS:    budget.Microseconds(),
			Players:     a.state.PlayerCount(),
			Projectiles: len(a.state.Projectiles),
			LoadPercent: 100 * float64(dur) / float64(budget),
		},
	}
	for _, p := range a.state.Players {
		snap.Players = append(snap.Players, PlayerSummary{
			ID:     p.ID,
			Name:   p.Name,
			X:      p.Pos.X,
			Y:      p.Pos.Y,
			Health: p.Health,
			Cash:   p.Cash,
		})
	}
	a.board.Publish(snap)
}
