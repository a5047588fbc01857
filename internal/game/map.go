package game

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
)

type TileKind uint8

const (
	TileGround TileKind = iota
	TileWallSide
	TileWallTop
)

// Cell is an integer grid coordinate.
type Cell struct{ X, Y int }

// CellAt maps a world position to the grid cell it rounds into.
func CellAt(pos Vec2) Cell {
	return Cell{
		X: int(roundHalfAway(pos.X / TileSize)),
		Y: int(roundHalfAway(pos.Y / TileSize)),
	}
}

func roundHalfAway(v float64) float64 {
	if v < 0 {
		return float64(int(v - 0.5))
	}
	return float64(int(v + 0.5))
}

// TileRect is the world-space bounding box of a cell.
func TileRect(c Cell) Rect {
	return Rect{X: float64(c.X) * TileSize, Y: float64(c.Y) * TileSize, W: TileSize, H: TileSize}
}

// Neighbor is one entry of the eight-connected neighborhood around a cell.
// Present is false for coordinates outside the map.
type Neighbor struct {
	Cell    Cell
	Kind    TileKind
	Present bool
}

// neighborOffsets enumerates the eight-connected neighborhood, matching the
// broad-phase order the collision pass walks.
var neighborOffsets = [8]Cell{
	{0, 1}, {1, 1}, {1, 0}, {1, -1}, {0, -1}, {-1, -1}, {-1, 0}, {-1, 1},
}

// Map is the immutable tile grid. Loaded once at startup and shared
// read-only by every subsystem afterwards.
type Map struct {
	tiles  map[Cell]TileKind
	ground []Cell
	cols   int
	rows   int
}

// ErrNoGround means a level has no walkable tile and therefore no spawn
// point; the server refuses to start on such a map.
var ErrNoGround = errors.New("map has no ground tiles")

// LoadMap reads a level file. Missing or unreadable files are fatal startup
// errors for the caller; there is no degraded mode without a map.
func LoadMap(path string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open map %q: %w", path, err)
	}
	defer f.Close()

	m, err := ParseMap(f)
	if err != nil {
		return nil, fmt.Errorf("parse map %q: %w", path, err)
	}
	return m, nil
}

// ParseMap parses the textual level format: one line per row, one character
// per column. 'S' is a wall side, 'T' a wall top, anything else ground.
func ParseMap(r io.Reader) (*Map, error) {
	m := &Map{tiles: make(map[Cell]TileKind)}

	scanner := bufio.NewScanner(r)
	y := 0
	for scanner.Scan() {
		line := scanner.Text()
		for x, symbol := range line {
			var kind TileKind
			switch symbol {
			case 'S':
				kind = TileWallSide
			case 'T':
				kind = TileWallTop
			default:
				kind = TileGround
			}
			cell := Cell{X: x, Y: y}
			m.tiles[cell] = kind
			if kind == TileGround {
				m.ground = append(m.ground, cell)
			}
			if x+1 > m.cols {
				m.cols = x + 1
			}
		}
		y++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	m.rows = y

	if len(m.tiles) == 0 {
		return nil, errors.New("map is empty")
	}
	if len(m.ground) == 0 {
		return nil, ErrNoGround
	}
	return m, nil
}

// TileAt returns the tile at a grid coordinate. Coordinates absent from the
// map are out of bounds and report ok=false.
func (m *Map) TileAt(x, y int) (TileKind, bool) {
	kind, ok := m.tiles[Cell{X: x, Y: y}]
	return kind, ok
}

// Neighbors returns the eight-connected neighborhood around c.
func (m *Map) Neighbors(c Cell) [8]Neighbor {
	var out [8]Neighbor
	for i, off := range neighborOffsets {
		nc := Cell{X: c.X + off.X, Y: c.Y + off.Y}
		kind, ok := m.tiles[nc]
		out[i] = Neighbor{Cell: nc, Kind: kind, Present: ok}
	}
	return out
}

// RandomGroundCell picks a uniformly random ground cell. ParseMap guarantees
// at least one exists.
func (m *Map) RandomGroundCell() Cell {
	return m.ground[rand.Intn(len(m.ground))]
}

// Contains reports whether a world position lies inside the level bounds.
func (m *Map) Contains(pos Vec2) bool {
	return pos.X >= 0 && pos.X <= float64(m.cols)*TileSize &&
		pos.Y >= 0 && pos.Y <= float64(m.rows)*TileSize
}

// TileCount returns how many cells the level occupies.
func (m *Map) TileCount() int { return len(m.tiles) }

// Each visits every occupied cell; used to build the map snapshot sent to
// joining clients.
func (m *Map) Each(fn func(Cell, TileKind)) {
	for c, k := range m.tiles {
		fn(c, k)
	}
}
