package menger

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// DefaultMaxLevel keeps a sponge under roughly 6M vertices
	DefaultMaxLevel = 5
	// HardMaxLevel is the deepest level whose vertex count still fits a uint32 index.
	// It is not a memory bound; see WithMaxLevel.
	HardMaxLevel = 7
	// DefaultRootEdge and DefaultRootMin place a unit sponge centered on the origin
	DefaultRootEdge float32 = 1.0
	DefaultRootMin  float32 = -0.5
)

// Option configures a Sponge in NewSponge
type Option func(*Sponge) error

// WithMaxLevel caps the level SetLevel accepts. It must be within [1, HardMaxLevel].
// Every level costs 32 bytes per vertex across positions and normals plus a
// 4 byte index: level 5 needs about 200 MB, level 6 about 4 GB and level 7
// about 83 GB.
func WithMaxLevel(maxLevel int) Option {
	return func(s *Sponge) error {
		if maxLevel < 1 || maxLevel > HardMaxLevel {
			return fmt.Errorf("%w: max level %d outside [1, %d]", ErrInvalidOption, maxLevel, HardMaxLevel)
		}
		s.maxLevel = maxLevel
		return nil
	}
}

// WithRoot sets the min corner and edge length of the level 1 cube.
// Every level fills the same bounding cube.
func WithRoot(min mgl32.Vec3, edge float32) Option {
	return func(s *Sponge) error {
		if !(edge > 0) {
			return fmt.Errorf("%w: root edge must be positive, got %v", ErrInvalidOption, edge)
		}
		s.rootMin = min
		s.rootEdge = edge
		return nil
	}
}

// WithWorkers builds the top-level branches on n goroutines. 1 builds serially.
func WithWorkers(n int) Option {
	return func(s *Sponge) error {
		if n < 1 {
			return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidOption, n)
		}
		s.workers = n
		return nil
	}
}
