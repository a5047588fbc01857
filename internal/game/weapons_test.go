package game

import "testing"

// TestStatsTotal checks the stats lookup never indexes out of bounds: an
// invalid decoded byte falls back to the default sidearm.
func TestStatsTotal(t *testing.T) {
	if got := WeaponVariant(200).Stats(); got != DefaultWeapon.Stats() {
		t.Errorf("Stats for invalid variant = %+v, want default weapon stats", got)
	}
	if WeaponVariant(200).Valid() {
		t.Error("Valid accepted an out-of-range variant")
	}
	for v := WeaponVariant(0); v < weaponCount; v++ {
		st := v.Stats()
		if st.Name == "" || st.Damage <= 0 || st.MagSize <= 0 {
			t.Errorf("variant %d has incomplete stats: %+v", v, st)
		}
	}
}

// TestInstantiateAmmo checks a freshly granted weapon starts with a full
// magazine and MagSize*Mags rounds in reserve.
func TestInstantiateAmmo(t *testing.T) {
	w := WeaponAka69.Instantiate()
	st := WeaponAka69.Stats()
	if w.Magazine != st.MagSize {
		t.Errorf("Magazine = %d, want %d", w.Magazine, st.MagSize)
	}
	if w.Reserve != st.MagSize*st.Mags {
		t.Errorf("Reserve = %d, want %d", w.Reserve, st.MagSize*st.Mags)
	}
}

// TestDefaultWeaponAffordableNever asserts the spawn sidearm is the cheapest
// entry, so losing everything on death still leaves a working loadout.
func TestDefaultWeaponAffordableNever(t *testing.T) {
	def := DefaultWeapon.Stats().Price
	for v := WeaponVariant(0); v < weaponCount; v++ {
		if v == DefaultWeapon {
			continue
		}
		if v.Stats().Price <= def {
			t.Errorf("variant %s priced %d at or below default %d", v, v.Stats().Price, def)
		}
	}
}
