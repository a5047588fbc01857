package server

import (
	"github.com/sirupsen/logrus"

	. "PiwPew/internal/game"
	"PiwPew/internal/protocol"
	"PiwPew/pkg/logger"
)

// Handler owns the session lifecycle and inbound message dispatch. Every
// method runs on the tick goroutine; the world is mutated nowhere else.
type Handler struct {
	World      *Map
	State      *State
	Out        Sender
	MaxClients int

	// level snapshot encoded once at startup, identical for every client
	mapPacket []byte
}

func NewHandler(world *Map, state *State, out Sender, maxClients int) (*Handler, error) {
	snapshot := protocol.WorldMap{Tiles: make([]protocol.TileRecord, 0, world.TileCount())}
	world.Each(func(c Cell, k TileKind) {
		snapshot.Tiles = append(snapshot.Tiles, protocol.TileRecord{
			X:    int32(c.X),
			Y:    int32(c.Y),
			Kind: uint8(k),
		})
	})
	mapPacket, err := protocol.Encode(protocol.KindWorldMap, snapshot)
	if err != nil {
		return nil, err
	}
	return &Handler{
		World:      world,
		State:      state,
		Out:        out,
		MaxClients: maxClients,
		mapPacket:  mapPacket,
	}, nil
}

// HandleJoin admits a named client into the world: spawn them, ship the
// level and the current roster, then announce them to everyone else.
func (h *Handler) HandleJoin(id ClientID, name string) {
	if _, ok := h.State.Players[id]; ok {
		logger.Log.WithField("client", id).Debug("duplicate join ignored")
		return
	}
	p := h.State.AddPlayer(id, name, h.World)
	logger.Log.WithFields(logrus.Fields{
		"client": id,
		"name":   name,
	}).Infof("client joined (%d/%d)", h.State.PlayerCount(), h.MaxClients)

	h.Out.Send(id, protocol.ChannelReliableOrdered, h.mapPacket)

	roster := protocol.WorldRoster{}
	for _, other := range h.State.Players {
		if other.ID == id {
			continue
		}
		roster.Players = append(roster.Players, playerState(other))
	}
	h.send(id, protocol.ChannelReliableOrdered, protocol.KindWorldRoster, roster)

	h.broadcastExcept(id, protocol.ChannelReliableOrdered, protocol.KindPlayerJoined,
		protocol.PlayerJoined{Player: playerState(p)})
}

// HandleDisconnect removes a client and tells the survivors. Their live
// projectiles stay in flight.
func (h *Handler) HandleDisconnect(id ClientID) {
	p := h.State.RemovePlayer(id)
	if p == nil {
		return
	}
	logger.Log.WithField("client", id).
		Infof("client disconnected (%d/%d)", h.State.PlayerCount(), h.MaxClients)
	h.broadcast(protocol.ChannelReliableUnordered, protocol.KindPlayerLeft,
		protocol.PlayerLeft{ID: id})
}

// HandleMessage dispatches one inbound packet. A kind arriving on the wrong
// channel is dropped, as is anything that fails to decode; a dead client
// cannot crash the tick loop with bytes.
func (h *Handler) HandleMessage(id ClientID, ch protocol.Channel, data []byte) {
	env, err := protocol.Decode(data)
	if err != nil {
		logger.Log.WithError(err).WithField("client", id).Debug("dropping undecodable packet")
		return
	}
	ok := false
	switch ch {
	case protocol.ChannelReliableOrdered:
		switch env.Kind {
		case protocol.KindPlayerJoin:
			ok = h.onJoin(id, env)
		case protocol.KindProjectileCreate:
			ok = h.onProjectileCreate(id, env)
		}
	case protocol.ChannelReliableUnordered:
		switch env.Kind {
		case protocol.KindWeaponPurchase:
			ok = h.onWeaponPurchase(id, env)
		case protocol.KindWeaponSelect:
			ok = h.onWeaponSelect(id, env)
		case protocol.KindPlayerPosition:
			ok = h.onPlayerPosition(id, env)
		case protocol.KindPlayerDied:
			// legacy client-side death report; death is computed here
			ok = true
		}
	case protocol.ChannelUnreliable:
		if env.Kind == protocol.KindPlayerOrientation {
			ok = h.onPlayerOrientation(id, env)
		}
	}
	if !ok {
		logger.Log.WithFields(logrus.Fields{
			"client":  id,
			"kind":    env.Kind.String(),
			"channel": ch,
		}).Debug("dropping packet")
	}
}

func (h *Handler) onJoin(id ClientID, env protocol.Envelope) bool {
	var join protocol.PlayerJoin
	if err := env.Unmarshal(&join); err != nil {
		return false
	}
	h.HandleJoin(id, join.DisplayName())
	return true
}

func (h *Handler) onPlayerPosition(id ClientID, env protocol.Envelope) bool {
	var msg protocol.PlayerPosition
	if err := env.Unmarshal(&msg); err != nil {
		return false
	}
	p := h.State.Players[id]
	if p == nil {
		return false
	}
	p.Pos = Vec2{X: msg.X, Y: msg.Y}
	// relay with the authoritative sender id, whatever the client claimed
	msg.ID = id
	h.broadcastExcept(id, protocol.ChannelReliableUnordered, protocol.KindPlayerPosition, msg)
	return true
}

func (h *Handler) onPlayerOrientation(id ClientID, env protocol.Envelope) bool {
	var msg protocol.PlayerOrientation
	if err := env.Unmarshal(&msg); err != nil {
		return false
	}
	p := h.State.Players[id]
	if p == nil {
		return false
	}
	p.Orientation = msg.Angle
	msg.ID = id
	h.broadcastExcept(id, protocol.ChannelUnreliable, protocol.KindPlayerOrientation, msg)
	return true
}

func (h *Handler) onWeaponPurchase(id ClientID, env protocol.Envelope) bool {
	var msg protocol.WeaponPurchase
	if err := env.Unmarshal(&msg); err != nil {
		return false
	}
	variant := WeaponVariant(msg.Variant)
	p, granted := h.State.Purchase(id, variant)
	if !granted {
		return false
	}
	slot := p.Arsenal[variant]
	h.send(id, protocol.ChannelReliableUnordered, protocol.KindWeaponGrant, protocol.WeaponGrant{
		Variant:  msg.Variant,
		Cash:     p.Cash,
		Magazine: slot.Magazine,
		Reserve:  slot.Reserve,
	})
	return true
}

func (h *Handler) onWeaponSelect(id ClientID, env protocol.Envelope) bool {
	var msg protocol.WeaponSelect
	if err := env.Unmarshal(&msg); err != nil {
		return false
	}
	if !h.State.SelectWeapon(id, WeaponVariant(msg.Variant)) {
		return false
	}
	msg.ID = id
	h.broadcastExcept(id, protocol.ChannelReliableUnordered, protocol.KindWeaponSelect, msg)
	return true
}

func (h *Handler) onProjectileCreate(id ClientID, env protocol.Envelope) bool {
	var msg protocol.ProjectileCreate
	if err := env.Unmarshal(&msg); err != nil {
		return false
	}
	p := h.State.Players[id]
	if p == nil {
		return false
	}
	pr := h.State.SpawnProjectile(p, msg.ID, Vec2{X: msg.X, Y: msg.Y}, msg.Orientation)
	if pr == nil {
		return false
	}
	// rebroadcast rebuilt from authoritative state: velocity, damage and
	// shooter come from this side, never from the client
	h.broadcast(protocol.ChannelReliableOrdered, protocol.KindProjectileCreate, protocol.ProjectileCreate{
		ID:          pr.ID,
		X:           pr.Pos.X,
		Y:           pr.Pos.Y,
		VelX:        pr.Vel.X,
		VelY:        pr.Vel.Y,
		GridX:       pr.Cell.X,
		GridY:       pr.Cell.Y,
		Orientation: pr.Orientation,
		Shooter:     pr.Shooter,
		Damage:      pr.Damage,
	})
	return true
}

// EmitTick publishes everything one resolver pass produced: impacts to
// everyone, respawns to everyone, rewards to the killer alone.
func (h *Handler) EmitTick(res TickResult) {
	for _, imp := range res.Impacts {
		h.broadcast(protocol.ChannelReliableUnordered, protocol.KindProjectileImpact, protocol.ProjectileImpact{
			ID:     imp.Projectile,
			Victim: imp.Victim,
			Damage: imp.Damage,
		})
	}
	for _, d := range res.Deaths {
		h.broadcast(protocol.ChannelReliableOrdered, protocol.KindPlayerRespawn, protocol.PlayerRespawn{
			ID:     d.Victim.ID,
			Player: playerState(d.Victim),
		})
		if d.Killer != nil {
			h.send(d.Killer.ID, protocol.ChannelReliableOrdered, protocol.KindKillReward,
				protocol.KillReward{Player: playerState(d.Killer)})
		}
	}
}

func (h *Handler) send(id ClientID, ch protocol.Channel, kind protocol.Kind, payload interface{}) {
	data, err := protocol.Encode(kind, payload)
	if err != nil {
		logger.Log.WithError(err).Error("encode failed")
		return
	}
	h.Out.Send(id, ch, data)
}

// broadcast addresses joined players only. A session that has connected
// but not sent its hello yet must not hear per-entity updates before its
// level and roster; the roster snapshot at join covers whatever it missed.
func (h *Handler) broadcast(ch protocol.Channel, kind protocol.Kind, payload interface{}) {
	data, err := protocol.Encode(kind, payload)
	if err != nil {
		logger.Log.WithError(err).Error("encode failed")
		return
	}
	for id := range h.State.Players {
		h.Out.Send(id, ch, data)
	}
}

func (h *Handler) broadcastExcept(except ClientID, ch protocol.Channel, kind protocol.Kind, payload interface{}) {
	data, err := protocol.Encode(kind, payload)
	if err != nil {
		logger.Log.WithError(err).Error("encode failed")
		return
	}
	for id := range h.State.Players {
		if id == except {
			continue
		}
		h.Out.Send(id, ch, data)
	}
}

// playerState flattens a player into its wire form. Weapon slots come out
// in variant order so snapshots are stable.
func playerState(p *Player) protocol.PlayerState {
	st := protocol.PlayerState{
		ID:           p.ID,
		Name:         p.Name,
		X:            p.Pos.X,
		Y:            p.Pos.Y,
		Orientation:  p.Orientation,
		Health:       p.Health,
		Cash:         p.Cash,
		Equipped:     uint8(p.Equipped),
		LastAttacker: p.LastAttacker,
	}
	for v := WeaponVariant(0); v.Valid(); v++ {
		w, ok := p.Arsenal[v]
		if !ok {
			continue
		}
		st.Weapons = append(st.Weapons, protocol.WeaponSlot{
			Variant:  uint8(w.Variant),
			Magazine: w.Magazine,
			Reserve:  w.Reserve,
		})
	}
	return st
}
