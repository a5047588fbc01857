// Package protocol defines the wire contract: the message taxonomy, the
// delivery channel each kind rides, and the MessagePack envelope codec.
package protocol

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Channel is a logical ENet channel. Each has its own ordering scope, so
// reliable-unordered traffic never stalls behind reliable-ordered traffic.
type Channel uint8

const (
	ChannelReliableOrdered   Channel = 0
	ChannelReliableUnordered Channel = 1
	ChannelUnreliable        Channel = 2
	ChannelCount                     = 3
)

// Kind tags the payload type inside an envelope.
type Kind uint8

const (
	KindWorldMap Kind = iota
	KindWorldRoster
	KindPlayerJoin
	KindPlayerJoined
	KindPlayerLeft
	KindPlayerPosition
	KindPlayerOrientation
	KindPlayerDied
	KindPlayerRespawn
	KindKillReward
	KindWeaponPurchase
	KindWeaponGrant
	KindWeaponSelect
	KindProjectileCreate
	KindProjectileImpact
	kindCount
)

var kindNames = [kindCount]string{
	KindWorldMap:          "world_map",
	KindWorldRoster:       "world_roster",
	KindPlayerJoin:        "player_join",
	KindPlayerJoined:      "player_joined",
	KindPlayerLeft:        "player_left",
	KindPlayerPosition:    "player_position",
	KindPlayerOrientation: "player_orientation",
	KindPlayerDied:        "player_died",
	KindPlayerRespawn:     "player_respawn",
	KindKillReward:        "kill_reward",
	KindWeaponPurchase:    "weapon_purchase",
	KindWeaponGrant:       "weapon_grant",
	KindWeaponSelect:      "weapon_select",
	KindProjectileCreate:  "projectile_create",
	KindProjectileImpact:  "projectile_impact",
}

func (k Kind) Valid() bool { return k < kindCount }

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
	return kindNames[k]
}

// Envelope wraps every message on the wire: a kind tag and the raw payload
// bytes, decoded lazily once the kind is known.
type Envelope struct {
	Kind    Kind               `msgpack:"kind"`
	Payload msgpack.RawMessage `msgpack:"payload"`
}

// Encode marshals a payload and wraps it in an envelope.
func Encode(kind Kind, payload interface{}) ([]byte, error) {
	raw, err := msgpack.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", kind, err)
	}
	data, err := msgpack.Marshal(Envelope{Kind: kind, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("encode %s envelope: %w", kind, err)
	}
	return data, nil
}

// Decode unwraps an envelope without touching the payload.
func Decode(data []byte) (Envelope, error) {
	var e Envelope
	if err := msgpack.Unmarshal(data, &e); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if !e.Kind.Valid() {
		return Envelope{}, fmt.Errorf("decode envelope: unknown kind %d", uint8(e.Kind))
	}
	return e, nil
}

// Unmarshal decodes the envelope payload into v.
func (e Envelope) Unmarshal(v interface{}) error {
	if err := msgpack.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Kind, err)
	}
	return nil
}

// NameBufferSize is the fixed join-payload name buffer length.
const NameBufferSize = 256

// TileRecord is one cell of the level snapshot.
type TileRecord struct {
	X    int32 `msgpack:"x"`
	Y    int32 `msgpack:"y"`
	Kind uint8 `msgpack:"kind"`
}

// WorldMap is the full level, sent once to each joining client.
type WorldMap struct {
	Tiles []TileRecord `msgpack:"tiles"`
}

// WeaponSlot is one owned weapon with its ammo counters.
type WeaponSlot struct {
	Variant  uint8 `msgpack:"variant"`
	Magazine int   `msgpack:"magazine"`
	Reserve  int   `msgpack:"reserve"`
}

// PlayerState is the full public state of one player.
type PlayerState struct {
	ID           uint64       `msgpack:"id"`
	Name         string       `msgpack:"name"`
	X            float64      `msgpack:"x"`
	Y            float64      `msgpack:"y"`
	Orientation  float64      `msgpack:"orientation"`
	Health       int          `msgpack:"health"`
	Cash         int64        `msgpack:"cash"`
	Equipped     uint8        `msgpack:"equipped"`
	Weapons      []WeaponSlot `msgpack:"weapons"`
	LastAttacker *uint64      `msgpack:"last_attacker"`
}

// WorldRoster lists every already-connected player, sent once on join.
type WorldRoster struct {
	Players []PlayerState `msgpack:"players"`
}

// PlayerJoin is the client's hello: a fixed 256-byte NUL-terminated name
// buffer, oversized names truncated.
type PlayerJoin struct {
	Name []byte `msgpack:"name"`
}

// NewPlayerJoin builds a join payload from a display name.
func NewPlayerJoin(name string) PlayerJoin {
	buf := make([]byte, NameBufferSize)
	copy(buf[:NameBufferSize-1], name)
	return PlayerJoin{Name: buf}
}

// DisplayName decodes the name buffer up to the first NUL.
func (p PlayerJoin) DisplayName() string {
	if i := bytes.IndexByte(p.Name, 0); i >= 0 {
		return string(p.Name[:i])
	}
	return string(p.Name)
}

type PlayerJoined struct {
	Player PlayerState `msgpack:"player"`
}

type PlayerLeft struct {
	ID uint64 `msgpack:"id"`
}

type PlayerPosition struct {
	ID uint64  `msgpack:"id"`
	X  float64 `msgpack:"x"`
	Y  float64 `msgpack:"y"`
}

type PlayerOrientation struct {
	ID    uint64  `msgpack:"id"`
	Angle float64 `msgpack:"angle"`
}

// PlayerDied is a legacy client-side death report. The server derives death
// from damage itself and discards these.
type PlayerDied struct {
	ID uint64 `msgpack:"id"`
}

// PlayerRespawn announces a settled death: the victim id plus their fresh
// post-respawn state.
type PlayerRespawn struct {
	ID     uint64      `msgpack:"id"`
	Player PlayerState `msgpack:"player"`
}

// KillReward carries the credited killer's refreshed state, sent to the
// killer only.
type KillReward struct {
	Player PlayerState `msgpack:"player"`
}

type WeaponPurchase struct {
	Variant uint8 `msgpack:"variant"`
}

// WeaponGrant confirms a purchase to the buyer: the granted weapon, its
// fresh ammo and the remaining cash.
type WeaponGrant struct {
	Variant  uint8 `msgpack:"variant"`
	Cash     int64 `msgpack:"cash"`
	Magazine int   `msgpack:"magazine"`
	Reserve  int   `msgpack:"reserve"`
}

type WeaponSelect struct {
	ID      uint64 `msgpack:"id"`
	Variant uint8  `msgpack:"variant"`
}

type ProjectileCreate struct {
	ID          uint64  `msgpack:"id"`
	X           float64 `msgpack:"x"`
	Y           float64 `msgpack:"y"`
	VelX        float64 `msgpack:"vel_x"`
	VelY        float64 `msgpack:"vel_y"`
	GridX       int     `msgpack:"grid_x"`
	GridY       int     `msgpack:"grid_y"`
	Orientation float64 `msgpack:"orientation"`
	Shooter     uint64  `msgpack:"shooter"`
	Damage      int     `msgpack:"damage"`
}

// ProjectileImpact reports a resolved hit. Victim is nil for environment
// impacts.
type ProjectileImpact struct {
	ID     uint64  `msgpack:"id"`
	Victim *uint64 `msgpack:"victim"`
	Damage int     `msgpack:"damage"`
}
