package menger

import (
	"MengerSponge/internal/geometry"
	"MengerSponge/internal/logger"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// FloorConfig describes the tiled floor. Tiles start every Stride units over
// [-Extent, Extent) on X and Z and are TileSize wide, at height Height.
type FloorConfig struct {
	Extent   float32 `json:"extent" yaml:"extent"`
	TileSize float32 `json:"tile_size" yaml:"tile_size"`
	Stride   float32 `json:"stride" yaml:"stride"`
	Height   float32 `json:"height" yaml:"height"`
}

// DefaultFloorConfig returns a 1000x1000 floor of 5 unit tiles two units below the sponge
func DefaultFloorConfig() FloorConfig {
	return FloorConfig{
		Extent:   500,
		TileSize: 5,
		Stride:   5,
		Height:   -2,
	}
}

// MaxFloorTiles caps the tiles a floor may emit, about 6.3M vertices
const MaxFloorTiles = 1 << 20

// TilesPerAxis returns how many tiles start in [-Extent, Extent) on each axis.
// It returns ErrInvalidFloor for a non-positive extent, tile size or stride and
// ErrFloorTooLarge when the floor would exceed MaxFloorTiles.
func (c FloorConfig) TilesPerAxis() (int, error) {
	if !(c.Extent > 0) || !(c.TileSize > 0) || !(c.Stride > 0) {
		return 0, fmt.Errorf("%w: extent=%v tile_size=%v stride=%v",
			ErrInvalidFloor, c.Extent, c.TileSize, c.Stride)
	}

	ratio := math.Ceil(float64(2*c.Extent) / float64(c.Stride))
	if !(ratio <= MaxFloorTiles) {
		return 0, fmt.Errorf("%w: %v tiles per axis (max %d tiles)", ErrFloorTooLarge, ratio, MaxFloorTiles)
	}

	// Count the float32 tile starts below Extent, not the float64 quotient
	n := int(ratio)
	for n > 0 && c.tileStart(n-1) >= c.Extent {
		n--
	}
	for c.tileStart(n) < c.Extent {
		n++
	}

	if n > MaxFloorTiles/n {
		return 0, fmt.Errorf("%w: %d tiles (max %d)", ErrFloorTooLarge, n*n, MaxFloorTiles)
	}
	return n, nil
}

// tileStart is the min x (or z) of the i-th tile along an axis
func (c FloorConfig) tileStart(i int) float32 {
	return -c.Extent + float32(float32(i)*c.Stride)
}

// Floor is a flat tiled plane. It is generated once and never changes.
type Floor struct {
	config     FloorConfig
	tilesPerAx int
	mesh       *geometry.Buffers
}

// NewFloor tiles the floor described by cfg
func NewFloor(cfg FloorConfig) (*Floor, error) {
	tiles, err := cfg.TilesPerAxis()
	if err != nil {
		logger.Log.Warn("Rejected floor config", zap.Error(err))
		return nil, err
	}

	f := &Floor{
		config:     cfg,
		tilesPerAx: tiles,
		mesh:       geometry.NewBuffers(tiles * tiles * 6),
	}

	for i := 0; i < tiles; i++ {
		x := cfg.tileStart(i)
		for j := 0; j < tiles; j++ {
			f.emitTile(x, cfg.tileStart(j))
		}
	}

	logger.Log.Info("Floor generated",
		zap.Int("tiles", f.TileCount()),
		zap.Int("triangles", f.mesh.TriangleCount()))
	return f, nil
}

// emitTile appends the two upward-facing triangles of the tile whose min corner is x, z
func (f *Floor) emitTile(x, z float32) {
	l := f.config.TileSize
	y := f.config.Height
	f.mesh.AppendTriangles(
		mgl32.Vec3{x, y, z}, mgl32.Vec3{x, y, z + l}, mgl32.Vec3{x + l, y, z},
		mgl32.Vec3{x + l, y, z + l}, mgl32.Vec3{x + l, y, z}, mgl32.Vec3{x, y, z + l},
	)
}

// Config returns the config the floor was built from
func (f *Floor) Config() FloorConfig {
	return f.config
}

// TileCount returns the number of tiles emitted
func (f *Floor) TileCount() int {
	return f.tilesPerAx * f.tilesPerAx
}

// PositionsFlat returns x, y, z, 1 for every vertex
func (f *Floor) PositionsFlat() []float32 {
	return f.mesh.Positions
}

// NormalsFlat returns the (0, TileSize^2, 0, 0) normal of every vertex
func (f *Floor) NormalsFlat() []float32 {
	return f.mesh.Normals
}

// IndicesFlat returns 0..n-1, one index per vertex
func (f *Floor) IndicesFlat() []uint32 {
	return f.mesh.Indices
}

// UMatrix returns the floor's model matrix
func (f *Floor) UMatrix() mgl32.Mat4 {
	return mgl32.Ident4()
}
