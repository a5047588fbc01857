package game

import (
	"strings"
	"testing"
)

func testMap(t *testing.T) *Map {
	t.Helper()
	m, err := ParseMap(strings.NewReader(sampleLevel))
	if err != nil {
		t.Fatalf("ParseMap: %v", err)
	}
	return m
}

// TestAddPlayerDefaults checks a fresh player gets full health, starting
// cash and the default sidearm only.
func TestAddPlayerDefaults(t *testing.T) {
	s := NewState()
	m := testMap(t)

	p := s.AddPlayer(1, "dean", m)
	if p.Health != MaxHealth {
		t.Errorf("Health = %d, want %d", p.Health, MaxHealth)
	}
	if p.Cash != StartCash {
		t.Errorf("Cash = %d, want %d", p.Cash, StartCash)
	}
	if p.Equipped != DefaultWeapon {
		t.Errorf("Equipped = %v, want default", p.Equipped)
	}
	if len(p.Arsenal) != 1 || !p.Owns(DefaultWeapon) {
		t.Errorf("Arsenal = %v, want only the default weapon", p.Arsenal)
	}
	cell := CellAt(p.Pos)
	if kind, ok := m.TileAt(cell.X, cell.Y); !ok || kind != TileGround {
		t.Errorf("spawned on %v (kind %v), want ground", cell, kind)
	}
}

// TestPurchase walks the purchase edge cases: insufficient cash rejects with
// no debit, an affordable purchase debits exactly the price, and a repeated
// purchase of an owned weapon neither charges nor errors.
func TestPurchase(t *testing.T) {
	s := NewState()
	m := testMap(t)
	p := s.AddPlayer(1, "dean", m)

	p.Cash = 100
	if _, ok := s.Purchase(1, WeaponShotpew); ok {
		t.Error("purchase granted with insufficient cash")
	}
	if p.Cash != 100 {
		t.Errorf("Cash after rejected purchase = %d, want 100", p.Cash)
	}

	p.Cash = 2000
	if _, ok := s.Purchase(1, WeaponShotpew); !ok {
		t.Fatal("affordable purchase rejected")
	}
	want := 2000 - WeaponShotpew.Stats().Price
	if p.Cash != want {
		t.Errorf("Cash after purchase = %d, want %d", p.Cash, want)
	}
	if !p.Owns(WeaponShotpew) {
		t.Error("purchased weapon not in arsenal")
	}

	if _, ok := s.Purchase(1, WeaponShotpew); ok {
		t.Error("repeated purchase of owned weapon granted again")
	}
	if p.Cash != want {
		t.Errorf("Cash after repeated purchase = %d, want %d (no double charge)", p.Cash, want)
	}

	if _, ok := s.Purchase(1, WeaponVariant(99)); ok {
		t.Error("purchase of invalid variant granted")
	}
	if _, ok := s.Purchase(42, WeaponAka69); ok {
		t.Error("purchase by unknown client granted")
	}
}

// TestSelectWeapon checks equipping is restricted to owned weapons.
func TestSelectWeapon(t *testing.T) {
	s := NewState()
	m := testMap(t)
	p := s.AddPlayer(1, "dean", m)

	if s.SelectWeapon(1, WeaponPrrr) {
		t.Error("selected a weapon the player does not own")
	}
	p.Cash = MaxCash
	s.Purchase(1, WeaponPrrr)
	if !s.SelectWeapon(1, WeaponPrrr) {
		t.Error("failed to select an owned weapon")
	}
	if p.Equipped != WeaponPrrr {
		t.Errorf("Equipped = %v, want WeaponPrrr", p.Equipped)
	}
}

// TestSpawnProjectileAuthoritative checks velocity and damage come from the
// server's own tables, derived from orientation and the equipped weapon.
func TestSpawnProjectileAuthoritative(t *testing.T) {
	s := NewState()
	m := testMap(t)
	p := s.AddPlayer(1, "dean", m)

	pr := s.SpawnProjectile(p, 7, Vec2{X: TileSize, Y: TileSize}, 0)
	if pr == nil {
		t.Fatal("SpawnProjectile returned nil")
	}
	if pr.Vel.X != ProjectileSpeed || pr.Vel.Y != 0 {
		t.Errorf("Vel = %v, want {%v 0}", pr.Vel, ProjectileSpeed)
	}
	if pr.Damage != p.Equipped.Stats().Damage {
		t.Errorf("Damage = %d, want equipped weapon damage %d", pr.Damage, p.Equipped.Stats().Damage)
	}
	if pr.Shooter != p.ID {
		t.Errorf("Shooter = %d, want %d", pr.Shooter, p.ID)
	}

	if dup := s.SpawnProjectile(p, 7, Vec2{}, 0); dup != nil {
		t.Error("duplicate projectile id accepted")
	}
}

// TestKillAndRespawn checks the full death settlement: penalty, reward,
// loadout reset, health restored, attribution cleared.
func TestKillAndRespawn(t *testing.T) {
	s := NewState()
	m := testMap(t)
	victim := s.AddPlayer(1, "victim", m)
	shooter := s.AddPlayer(2, "shooter", m)

	victim.Cash = 1000
	victim.Health = 0
	attacker := shooter.ID
	victim.LastAttacker = &attacker
	victim.Cash = 1000
	victim.Arsenal[WeaponAka69] = WeaponAka69.Instantiate()
	victim.Equipped = WeaponAka69
	shooter.Cash = 1000

	killer := s.killAndRespawn(victim, m)
	if killer != shooter {
		t.Fatalf("killer = %v, want shooter", killer)
	}
	if victim.Cash != 1000-DeathPenalty {
		t.Errorf("victim Cash = %d, want %d", victim.Cash, 1000-DeathPenalty)
	}
	if shooter.Cash != 1000+KillReward {
		t.Errorf("shooter Cash = %d, want %d", shooter.Cash, 1000+KillReward)
	}
	if victim.Health != MaxHealth {
		t.Errorf("victim Health = %d, want %d", victim.Health, MaxHealth)
	}
	if victim.Equipped != DefaultWeapon || len(victim.Arsenal) != 1 {
		t.Error("victim loadout not reset to the default sidearm")
	}
	if victim.LastAttacker != nil {
		t.Error("LastAttacker not cleared after respawn")
	}
}

// TestKillAndRespawnDanglingAttacker checks a disconnect between the fatal
// hit and settlement: nobody is credited and nothing crashes.
func TestKillAndRespawnDanglingAttacker(t *testing.T) {
	s := NewState()
	m := testMap(t)
	victim := s.AddPlayer(1, "victim", m)
	shooter := s.AddPlayer(2, "shooter", m)

	victim.Health = 0
	attacker := shooter.ID
	victim.LastAttacker = &attacker
	s.RemovePlayer(shooter.ID)

	if killer := s.killAndRespawn(victim, m); killer != nil {
		t.Errorf("killer = %v, want nil for a disconnected attacker", killer)
	}
	if victim.Health != MaxHealth {
		t.Error("victim not respawned")
	}
}

// TestKillAndRespawnSelfKill checks no reward flows when a player dies to
// their own shot.
func TestKillAndRespawnSelfKill(t *testing.T) {
	s := NewState()
	m := testMap(t)
	p := s.AddPlayer(1, "solo", m)

	p.Health = 0
	p.Cash = 1000
	self := p.ID
	p.LastAttacker = &self

	if killer := s.killAndRespawn(p, m); killer != nil {
		t.Errorf("killer = %v, want nil for a self-kill", killer)
	}
	if p.Cash != 1000-DeathPenalty {
		t.Errorf("Cash = %d, want penalty applied without reward", p.Cash)
	}
}

// TestCashClamps checks the economy never leaves [0, MaxCash].
func TestCashClamps(t *testing.T) {
	s := NewState()
	m := testMap(t)
	victim := s.AddPlayer(1, "broke", m)
	shooter := s.AddPlayer(2, "rich", m)

	victim.Cash = 100 // below the penalty
	victim.Health = 0
	attacker := shooter.ID
	victim.LastAttacker = &attacker
	shooter.Cash = MaxCash - 100 // reward would overflow

	s.killAndRespawn(victim, m)
	if victim.Cash != 0 {
		t.Errorf("victim Cash = %d, want floor 0", victim.Cash)
	}
	if shooter.Cash != MaxCash {
		t.Errorf("shooter Cash = %d, want ceiling %d", shooter.Cash, MaxCash)
	}
}

// TestRemovePlayerKeepsProjectiles checks a leaver's shots stay in flight.
func TestRemovePlayerKeepsProjectiles(t *testing.T) {
	s := NewState()
	m := testMap(t)
	p := s.AddPlayer(1, "dean", m)
	s.SpawnProjectile(p, 1, Vec2{X: TileSize, Y: TileSize}, 0)

	s.RemovePlayer(1)
	if len(s.Projectiles) != 1 {
		t.Errorf("projectile count = %d after disconnect, want 1", len(s.Projectiles))
	}
	if s.PlayerCount() != 0 {
		t.Errorf("PlayerCount = %d, want 0", s.PlayerCount())
	}
}
