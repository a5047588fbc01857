package game

const (
	// TileSize is the side of one grid cell in world units. Player and
	// projectile geometry derive from it.
	TileSize   = 70.0
	PlayerSize = TileSize * 0.8

	ProjectileRadius = 2.0
	// ProjectileSpeed is displacement per tick. The tick interval is the
	// unit of simulation time; there is no fractional time step.
	ProjectileSpeed = 50.0

	MaxHealth = 100
	MaxCash   = 16000

	StartCash    = 200
	KillReward   = 500
	DeathPenalty = 500
)
