package game

// Impact is one projectile hit. Victim is nil for environment hits.
type Impact struct {
	Projectile ProjectileID
	Victim     *ClientID
	Damage     int
}

// Death is one settled kill. Victim carries the refreshed post-respawn
// state; Killer is nil when no connected attacker gets the reward.
type Death struct {
	Victim *Player
	Killer *Player
}

// TickResult is everything one resolver pass produced that clients need to
// hear about.
type TickResult struct {
	Impacts []Impact
	Deaths  []Death
}

// Resolve runs one collision-and-damage pass over every live projectile:
// integrate position, recompute the grid cell, broad-phase against the
// eight-neighborhood, narrow-phase circle-vs-rect against wall tiles and
// then against player hitboxes. Hits are collected and removed only after
// the iteration finishes so removal never perturbs it; deaths are settled
// last, once the registry is consistent.
func (s *State) Resolve(m *Map) TickResult {
	var res TickResult
	var hits []ProjectileID
	var dead []*Player

	for id, pr := range s.Projectiles {
		pr.Pos = pr.Pos.Add(pr.Vel)
		pr.Cell = CellAt(pr.Pos)
		muzzle := pr.Age == 0
		pr.Age++

		if !m.Contains(pr.Pos) {
			hits = append(hits, id)
			continue
		}

		if s.resolveWallHit(m, pr, &res) {
			hits = append(hits, id)
			continue
		}

		if victim := s.resolvePlayerHit(pr, muzzle, &res); victim != nil {
			hits = append(hits, id)
			if victim.Health == 0 {
				dead = append(dead, victim)
			}
		}
	}

	for _, id := range hits {
		delete(s.Projectiles, id)
	}

	for _, victim := range dead {
		killer := s.killAndRespawn(victim, m)
		res.Deaths = append(res.Deaths, Death{Victim: victim, Killer: killer})
	}
	return res
}

func (s *State) resolveWallHit(m *Map, pr *Projectile, res *TickResult) bool {
	for _, n := range m.Neighbors(pr.Cell) {
		if !n.Present || n.Kind == TileGround {
			continue
		}
		if CircleOverlapsRect(pr.Pos, ProjectileRadius, TileRect(n.Cell)) {
			res.Impacts = append(res.Impacts, Impact{Projectile: pr.ID, Damage: pr.Damage})
			return true
		}
	}
	return false
}

func (s *State) resolvePlayerHit(pr *Projectile, muzzle bool, res *TickResult) *Player {
	for _, p := range s.Players {
		if p.Health <= 0 {
			// already down this pass, awaiting respawn
			continue
		}
		if muzzle && p.ID == pr.Shooter {
			// the create position is client-supplied and usually inside
			// the shooter's own hitbox; the muzzle tick cannot self-hit.
			// Later ticks can, by walking into the shot's path.
			continue
		}
		if !CircleOverlapsRect(pr.Pos, ProjectileRadius, p.Hitbox()) {
			continue
		}
		p.Health = ClampInt(p.Health-pr.Damage, 0, MaxHealth)
		attacker := pr.Shooter
		p.LastAttacker = &attacker

		victimID := p.ID
		res.Impacts = append(res.Impacts, Impact{Projectile: pr.ID, Victim: &victimID, Damage: pr.Damage})
		return p
	}
	return nil
}
