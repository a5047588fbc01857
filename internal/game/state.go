package game

import "math"

type ClientID = uint64
type ProjectileID = uint64

// Player is one connected client's authoritative state.
type Player struct {
	ID          ClientID
	Name        string
	Pos         Vec2
	Orientation float64
	Health      int
	Cash        int64
	Equipped    WeaponVariant
	Arsenal     map[WeaponVariant]*PlayerWeapon
	// LastAttacker is the most recent client to damage this player, nil if
	// nobody has since the last respawn. It may name a client that has
	// disconnected meanwhile; consumers must tolerate the absence.
	LastAttacker *ClientID
}

func NewPlayer(id ClientID, name string, spawn Vec2) *Player {
	p := &Player{
		ID:     id,
		Name:   name,
		Pos:    spawn,
		Health: MaxHealth,
		Cash:   StartCash,
	}
	p.resetLoadout()
	return p
}

// resetLoadout puts the player back on the default sidearm with full ammo,
// discarding everything purchased.
func (p *Player) resetLoadout() {
	p.Equipped = DefaultWeapon
	p.Arsenal = map[WeaponVariant]*PlayerWeapon{
		DefaultWeapon: DefaultWeapon.Instantiate(),
	}
}

func (p *Player) Owns(v WeaponVariant) bool {
	_, ok := p.Arsenal[v]
	return ok
}

// Hitbox is the player's world-space sprite footprint.
func (p *Player) Hitbox() Rect {
	return Rect{X: p.Pos.X, Y: p.Pos.Y, W: PlayerSize, H: PlayerSize}
}

// Projectile is one live shot. Velocity is fixed at creation; Cell is
// recomputed from position every tick. Age counts resolver passes
// survived.
type Projectile struct {
	ID          ProjectileID
	Pos         Vec2
	Vel         Vec2
	Cell        Cell
	Orientation float64
	Shooter     ClientID
	Damage      int
	Age         int
}

// State is the aggregate world registry. It is owned exclusively by the
// tick loop; nothing else mutates it.
type State struct {
	Players     map[ClientID]*Player
	Projectiles map[ProjectileID]*Projectile
}

func NewState() *State {
	return &State{
		Players:     make(map[ClientID]*Player),
		Projectiles: make(map[ProjectileID]*Projectile),
	}
}

func (s *State) PlayerCount() int { return len(s.Players) }

// AddPlayer spawns a new player on a random ground cell of m.
func (s *State) AddPlayer(id ClientID, name string, m *Map) *Player {
	cell := m.RandomGroundCell()
	spawn := Vec2{X: float64(cell.X) * TileSize, Y: float64(cell.Y) * TileSize}
	p := NewPlayer(id, name, spawn)
	s.Players[id] = p
	return p
}

// RemovePlayer deletes a player, returning it, or nil if unknown. Their
// live projectiles stay in flight and resolve normally.
func (s *State) RemovePlayer(id ClientID) *Player {
	p := s.Players[id]
	delete(s.Players, id)
	return p
}

// Purchase debits the player and grants the weapon. It is a silent no-op
// when the player is unknown, the variant invalid, the weapon already owned
// (idempotent grant: a retried request cannot double-charge), or the cash
// insufficient. Returns the buyer and whether the grant happened.
func (s *State) Purchase(id ClientID, v WeaponVariant) (*Player, bool) {
	p := s.Players[id]
	if p == nil || !v.Valid() || p.Owns(v) {
		return p, false
	}
	price := v.Stats().Price
	if p.Cash < price {
		return p, false
	}
	p.Cash = ClampCash(p.Cash - price)
	p.Arsenal[v] = v.Instantiate()
	return p, true
}

// SelectWeapon equips an owned weapon. Selecting a weapon the player does
// not own is a no-op, preserving the equipped-is-owned invariant.
func (s *State) SelectWeapon(id ClientID, v WeaponVariant) bool {
	p := s.Players[id]
	if p == nil || !p.Owns(v) {
		return false
	}
	p.Equipped = v
	return true
}

// SpawnProjectile creates a shot for the given player. Velocity comes from
// the fixed projectile speed and the firing orientation, damage from the
// shooter's equipped weapon; client-supplied values for either are ignored.
func (s *State) SpawnProjectile(shooter *Player, id ProjectileID, pos Vec2, orientation float64) *Projectile {
	if _, exists := s.Projectiles[id]; exists {
		return nil
	}
	pr := &Projectile{
		ID:  id,
		Pos: pos,
		Vel: Vec2{
			X: ProjectileSpeed * math.Cos(orientation),
			Y: ProjectileSpeed * math.Sin(orientation),
		},
		Cell:        CellAt(pos),
		Orientation: orientation,
		Shooter:     shooter.ID,
		Damage:      shooter.Equipped.Stats().Damage,
	}
	s.Projectiles[id] = pr
	return pr
}

// killAndRespawn settles a death: cash penalty, fresh spawn, default
// loadout, full health, cleared attribution. Returns the credited killer,
// or nil when the attacker is unrecorded, disconnected, or the victim
// themselves.
func (s *State) killAndRespawn(victim *Player, m *Map) *Player {
	victim.Cash = ClampCash(victim.Cash - DeathPenalty)
	cell := m.RandomGroundCell()
	victim.Pos = Vec2{X: float64(cell.X) * TileSize, Y: float64(cell.Y) * TileSize}
	victim.Health = MaxHealth
	victim.resetLoadout()

	attacker := victim.LastAttacker
	victim.LastAttacker = nil
	if attacker == nil {
		return nil
	}
	killer := s.Players[*attacker]
	if killer == nil || killer.ID == victim.ID {
		return nil
	}
	killer.Cash = ClampCash(killer.Cash + KillReward)
	return killer
}
