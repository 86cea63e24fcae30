package menger

import (
	"MengerSponge/internal/geometry"
	"MengerSponge/internal/logger"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// parallelMinLevel is the lowest level worth splitting across workers
const parallelMinLevel = 3

// Sponge generates the surface of a Menger sponge and tracks whether the
// generated buffers changed since the consumer last acknowledged them.
//
// The slices returned by the flat accessors are owned by the Sponge and stay
// valid until the next level change. Callers must not modify them.
type Sponge struct {
	mu sync.RWMutex

	level int
	dirty bool
	mesh  *geometry.Buffers

	rootMin  mgl32.Vec3
	rootEdge float32
	maxLevel int
	workers  int
}

// NewSponge creates a sponge generated at level. The sponge starts dirty.
func NewSponge(level int, opts ...Option) (*Sponge, error) {
	s := &Sponge{
		level:    -1, // nothing generated yet
		mesh:     geometry.NewBuffers(0),
		rootMin:  mgl32.Vec3{DefaultRootMin, DefaultRootMin, DefaultRootMin},
		rootEdge: DefaultRootEdge,
		maxLevel: DefaultMaxLevel,
		workers:  1,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if err := s.SetLevel(level); err != nil {
		return nil, err
	}
	return s, nil
}

// SetLevel regenerates the sponge at level. Setting the current level again
// does nothing. Level 0 is an empty mesh. A rejected level leaves the sponge untouched.
func (s *Sponge) SetLevel(level int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if level < 0 {
		logger.Log.Warn("Rejected sponge level", zap.Int("level", level))
		return fmt.Errorf("%w: %d", ErrInvalidLevel, level)
	}
	if level == s.level {
		return nil
	}
	if level > s.maxLevel {
		logger.Log.Warn("Rejected sponge level",
			zap.Int("level", level),
			zap.Int("max_level", s.maxLevel),
			zap.Uint64("vertices", VertexCount(level)))
		return fmt.Errorf("%w: level %d needs %d vertices (max level %d)",
			ErrLevelTooHigh, level, VertexCount(level), s.maxLevel)
	}

	logger.Log.Debug("Regenerating sponge", zap.Int("from", s.level), zap.Int("to", level))
	start := time.Now()

	mesh := geometry.NewBuffers(int(VertexCount(level)))
	if level > 0 {
		if err := s.generate(mesh, level); err != nil {
			return fmt.Errorf("failed to generate level %d: %w", level, err)
		}
	}

	s.mesh = mesh
	s.level = level
	s.dirty = true

	logger.Log.Info("Sponge generated",
		zap.Int("level", level),
		zap.Int("vertices", mesh.VertexCount()),
		zap.Int("triangles", mesh.TriangleCount()),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

func (s *Sponge) generate(mesh *geometry.Buffers, level int) error {
	if s.workers > 1 && level >= parallelMinLevel {
		return buildParallel(mesh, level, s.rootMin, s.rootEdge, s.workers)
	}
	build(mesh, level, s.rootMin, s.rootEdge)
	return nil
}

// build appends the sponge of the given level occupying [origin, origin+edge]
func build(mesh *geometry.Buffers, level int, origin mgl32.Vec3, edge float32) {
	if level == 1 {
		EmitCube(mesh, origin, edge)
		return
	}
	if level < 1 {
		return
	}

	child := edge / 3
	for _, offset := range SubcubeOrigins(child) {
		build(mesh, level-1, origin.Add(offset), child)
	}
}

// buildParallel builds the 20 top-level branches concurrently and joins them
// in table order, so the result matches build exactly.
func buildParallel(mesh *geometry.Buffers, level int, origin mgl32.Vec3, edge float32, workers int) error {
	pool := pond.NewPool(workers)
	defer pool.StopAndWait()

	child := edge / 3
	perBranch := int(VertexCount(level - 1))
	branches := make([]*geometry.Buffers, SubcubeCount)

	group := pool.NewGroup()
	for i, offset := range SubcubeOrigins(child) {
		group.Submit(func() {
			branch := geometry.NewBuffers(perBranch)
			build(branch, level-1, origin.Add(offset), child)
			branches[i] = branch
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	for _, branch := range branches {
		mesh.Append(branch)
	}
	return nil
}

// Level returns the level the current buffers were generated for
func (s *Sponge) Level() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.level
}

// MaxLevel returns the highest level SetLevel accepts
func (s *Sponge) MaxLevel() int {
	return s.maxLevel
}

// IsDirty reports whether the buffers changed since the last SetClean
func (s *Sponge) IsDirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// SetClean acknowledges the current buffers
func (s *Sponge) SetClean() {
	s.mu.Lock()
	s.dirty = false
	s.mu.Unlock()
}

// PositionsFlat returns x, y, z, 1 for every vertex
func (s *Sponge) PositionsFlat() []float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mesh.Positions
}

// NormalsFlat returns nx, ny, nz, 0 for every vertex
func (s *Sponge) NormalsFlat() []float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mesh.Normals
}

// IndicesFlat returns 0..n-1, one index per vertex
func (s *Sponge) IndicesFlat() []uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mesh.Indices
}

// UMatrix returns the sponge's model matrix
func (s *Sponge) UMatrix() mgl32.Mat4 {
	return mgl32.Ident4()
}

// VertexCount returns the number of vertices a sponge of the given level emits,
// saturating at math.MaxUint64
func VertexCount(level int) uint64 {
	if level < 1 {
		return 0
	}
	n := uint64(CubeVertexCount)
	for i := 1; i < level; i++ {
		if n > math.MaxUint64/SubcubeCount {
			return math.MaxUint64
		}
		n *= SubcubeCount
	}
	return n
}

// TriangleCount returns 12 * 20^(level-1), or 0 below level 1
func TriangleCount(level int) uint64 {
	return VertexCount(level) / 3
}
