package game

import "time"

type WeaponVariant uint8

const (
	WeaponDean1911 WeaponVariant = iota
	WeaponAka69
	WeaponShotpew
	WeaponPrrr
	weaponCount
)

// DefaultWeapon is the sidearm every player spawns and respawns with.
const DefaultWeapon = WeaponDean1911

func (v WeaponVariant) Valid() bool { return v < weaponCount }

func (v WeaponVariant) String() string { return v.Stats().Name }

type Accuracy uint8

const (
	AccuracyLow Accuracy = iota
	AccuracyModerate
	AccuracyHigh
)

// WeaponStats is the static description of one weapon variant. The table is
// never mutated at runtime; per-player ammo lives in PlayerWeapon.
type WeaponStats struct {
	Name           string
	Damage         int
	Accuracy       Accuracy
	FireInterval   time.Duration
	ReloadInterval time.Duration
	MagSize        int
	Mags           int
	Price          int64
}

var weaponTable = [weaponCount]WeaponStats{
	WeaponDean1911: {
		Name:           "DEAN 1911",
		Damage:         25,
		Accuracy:       AccuracyHigh,
		FireInterval:   300 * time.Millisecond,
		ReloadInterval: 1100 * time.Millisecond,
		MagSize:        7,
		Mags:           4,
		Price:          700,
	},
	WeaponAka69: {
		Name:           "AKA-69",
		Damage:         40,
		Accuracy:       AccuracyModerate,
		FireInterval:   100 * time.Millisecond,
		ReloadInterval: 1500 * time.Millisecond,
		MagSize:        30,
		Mags:           4,
		Price:          1500,
	},
	WeaponShotpew: {
		Name:           "PUMP Shotpew",
		Damage:         25,
		Accuracy:       AccuracyLow,
		FireInterval:   1000 * time.Millisecond,
		ReloadInterval: 2000 * time.Millisecond,
		MagSize:        5,
		Mags:           5,
		Price:          1100,
	},
	WeaponPrrr: {
		Name:           "PRRR",
		Damage:         45,
		Accuracy:       AccuracyLow,
		FireInterval:   50 * time.Millisecond,
		ReloadInterval: 2500 * time.Millisecond,
		MagSize:        30,
		Mags:           4,
		Price:          2200,
	},
}

// Stats is total over the closed variant set; out-of-range values fall back
// to the default weapon so a decoded byte can never index out of bounds.
func (v WeaponVariant) Stats() WeaponStats {
	if !v.Valid() {
		v = DefaultWeapon
	}
	return weaponTable[v]
}

// PlayerWeapon is one owned weapon with its mutable ammo counters.
type PlayerWeapon struct {
	Variant  WeaponVariant
	Magazine int
	Reserve  int
}

// Instantiate produces a fresh per-player ammo state from the static table:
// full magazine, full reserve.
func (v WeaponVariant) Instantiate() *PlayerWeapon {
	st := v.Stats()
	return &PlayerWeapon{
		Variant:  v,
		Magazine: st.MagSize,
		Reserve:  st.MagSize * st.Mags,
	}
}
