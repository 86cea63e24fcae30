package menger

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func newTestSponge(t *testing.T, level int, opts ...Option) *Sponge {
	t.Helper()
	s, err := NewSponge(level, opts...)
	if err != nil {
		t.Fatalf("NewSponge(%d) failed: %v", level, err)
	}
	return s
}

func TestSpongeBufferSizes(t *testing.T) {
	s := newTestSponge(t, 1)
	for level := 1; level <= 3; level++ {
		if err := s.SetLevel(level); err != nil {
			t.Fatalf("SetLevel(%d) failed: %v", level, err)
		}
		cubes := int(math.Pow(20, float64(level-1)))
		wantVerts := 36 * cubes

		if got := len(s.PositionsFlat()); got != 4*wantVerts {
			t.Errorf("Level %d positions: got %d, want %d", level, got, 4*wantVerts)
		}
		if got := len(s.NormalsFlat()); got != 4*wantVerts {
			t.Errorf("Level %d normals: got %d, want %d", level, got, 4*wantVerts)
		}
		if got := len(s.IndicesFlat()); got != wantVerts {
			t.Errorf("Level %d indices: got %d, want %d", level, got, wantVerts)
		}
		if VertexCount(level) != uint64(wantVerts) {
			t.Errorf("VertexCount(%d): got %d, want %d", level, VertexCount(level), wantVerts)
		}
		if TriangleCount(level) != uint64(12*cubes) {
			t.Errorf("TriangleCount(%d): got %d, want %d", level, TriangleCount(level), 12*cubes)
		}
	}
}

func TestSpongeLevelOne(t *testing.T) {
	s := newTestSponge(t, 1)

	indices := s.IndicesFlat()
	if len(indices) != 36 {
		t.Fatalf("Index count mismatch: got %d, want %d", len(indices), 36)
	}
	for i, idx := range indices {
		if idx != uint32(i) {
			t.Errorf("Index %d: got %d, want %d", i, idx, i)
		}
	}
	if len(s.PositionsFlat())/4/3 != 12 {
		t.Errorf("Expected 12 triangles, got %d", len(s.PositionsFlat())/4/3)
	}
}

func TestSpongeIndicesAreIdentity(t *testing.T) {
	s := newTestSponge(t, 3)
	for i, idx := range s.IndicesFlat() {
		if idx != uint32(i) {
			t.Fatalf("Index %d: got %d, want %d", i, idx, i)
		}
	}
}

func TestSpongeFlatShading(t *testing.T) {
	s := newTestSponge(t, 2)
	normals := s.NormalsFlat()

	for tri := 0; tri < len(normals)/12; tri++ {
		base := tri * 12
		for v := 1; v < 3; v++ {
			for c := 0; c < 4; c++ {
				if normals[base+c] != normals[base+v*4+c] {
					t.Fatalf("Triangle %d vertex %d normal differs from vertex 0", tri, v)
				}
			}
		}
		if normals[base+3] != 0 {
			t.Errorf("Triangle %d normal w: got %f, want 0", tri, normals[base+3])
		}
	}
}

func TestSpongeLevelTwoBlocksAreTranslatedCubes(t *testing.T) {
	one := newTestSponge(t, 1)
	two := newTestSponge(t, 2)

	p1 := one.PositionsFlat()
	p2 := two.PositionsFlat()
	if len(p2) != 720*4 {
		t.Fatalf("Level 2 positions: got %d, want %d", len(p2), 720*4)
	}

	rootMin := mgl32.Vec3{DefaultRootMin, DefaultRootMin, DefaultRootMin}
	child := DefaultRootEdge / 3
	const eps = 1e-5

	for block, offset := range SubcubeOrigins(child) {
		origin := rootMin.Add(offset)
		for v := 0; v < CubeVertexCount; v++ {
			i := (block*CubeVertexCount + v) * 4
			got := mgl32.Vec3{p2[i], p2[i+1], p2[i+2]}.Sub(origin).Mul(3)
			want := mgl32.Vec3{p1[v*4], p1[v*4+1], p1[v*4+2]}.Sub(rootMin)
			if !got.ApproxEqualThreshold(want, eps) {
				t.Fatalf("Block %d vertex %d: got %v, want %v", block, v, got, want)
			}
		}
	}
}

func TestSpongeBoundingVolumeIsStable(t *testing.T) {
	s := newTestSponge(t, 1)
	for level := 1; level <= 3; level++ {
		if err := s.SetLevel(level); err != nil {
			t.Fatalf("SetLevel(%d) failed: %v", level, err)
		}
		pos := s.PositionsFlat()
		lo := float32(math.MaxFloat32)
		hi := float32(-math.MaxFloat32)
		for i := 0; i < len(pos); i += 4 {
			for c := 0; c < 3; c++ {
				lo = float32(math.Min(float64(lo), float64(pos[i+c])))
				hi = float32(math.Max(float64(hi), float64(pos[i+c])))
			}
		}
		if math.Abs(float64(lo+0.5)) > 1e-5 || math.Abs(float64(hi-0.5)) > 1e-5 {
			t.Errorf("Level %d bounds: got [%f, %f], want [-0.5, 0.5]", level, lo, hi)
		}
	}
}

func TestSpongeDirtyLifecycle(t *testing.T) {
	s := newTestSponge(t, 1)
	if !s.IsDirty() {
		t.Error("Sponge must be dirty on creation")
	}

	s.SetClean()
	if s.IsDirty() {
		t.Error("Sponge should be clean after SetClean")
	}
	s.SetClean()
	if s.IsDirty() {
		t.Error("SetClean should be idempotent")
	}

	_ = s.PositionsFlat()
	_ = s.NormalsFlat()
	_ = s.IndicesFlat()
	if s.IsDirty() {
		t.Error("Reading buffers must not mark the sponge dirty")
	}

	if err := s.SetLevel(2); err != nil {
		t.Fatalf("SetLevel(2) failed: %v", err)
	}
	if !s.IsDirty() {
		t.Error("Sponge must be dirty after a level change")
	}
}

func TestSpongeSameLevelIsNoop(t *testing.T) {
	s := newTestSponge(t, 2)
	s.SetClean()
	before := s.PositionsFlat()

	if err := s.SetLevel(2); err != nil {
		t.Fatalf("SetLevel(2) failed: %v", err)
	}
	if s.IsDirty() {
		t.Error("Setting the same level must not mark the sponge dirty")
	}
	after := s.PositionsFlat()
	if len(after) != len(before) || &after[0] != &before[0] {
		t.Error("Setting the same level must not regenerate the buffers")
	}
}

func TestSpongeLevelChangeReplacesBuffers(t *testing.T) {
	s := newTestSponge(t, 3)
	s.SetClean()

	if err := s.SetLevel(1); err != nil {
		t.Fatalf("SetLevel(1) failed: %v", err)
	}
	if !s.IsDirty() {
		t.Error("Sponge must be dirty after a level change")
	}
	if len(s.PositionsFlat()) != 36*4 || len(s.NormalsFlat()) != 36*4 || len(s.IndicesFlat()) != 36 {
		t.Errorf("Level 1 after level 3 left residue: %d positions, %d normals, %d indices",
			len(s.PositionsFlat()), len(s.NormalsFlat()), len(s.IndicesFlat()))
	}

	fresh := newTestSponge(t, 1)
	assertSameMesh(t, s, fresh)
}

func TestSpongeDeterministic(t *testing.T) {
	a := newTestSponge(t, 3)
	b := newTestSponge(t, 3)
	assertSameMesh(t, a, b)

	// Round trip through another level
	if err := a.SetLevel(2); err != nil {
		t.Fatal(err)
	}
	if err := a.SetLevel(3); err != nil {
		t.Fatal(err)
	}
	assertSameMesh(t, a, b)
}

func TestSpongeParallelMatchesSerial(t *testing.T) {
	serial := newTestSponge(t, 3)
	parallel := newTestSponge(t, 3, WithWorkers(4))
	assertSameMesh(t, serial, parallel)

	if err := parallel.SetLevel(4); err != nil {
		t.Fatalf("SetLevel(4) failed: %v", err)
	}
	if err := serial.SetLevel(4); err != nil {
		t.Fatalf("SetLevel(4) failed: %v", err)
	}
	assertSameMesh(t, serial, parallel)
}

func TestSpongeLevelZeroIsEmpty(t *testing.T) {
	s := newTestSponge(t, 0)
	if !s.IsDirty() {
		t.Error("Sponge must be dirty on creation, even at level 0")
	}
	if len(s.PositionsFlat()) != 0 || len(s.NormalsFlat()) != 0 || len(s.IndicesFlat()) != 0 {
		t.Error("Level 0 should produce no geometry")
	}

	if err := s.SetLevel(1); err != nil {
		t.Fatal(err)
	}
	s.SetClean()
	if err := s.SetLevel(0); err != nil {
		t.Fatalf("SetLevel(0) failed: %v", err)
	}
	if !s.IsDirty() || len(s.PositionsFlat()) != 0 {
		t.Error("Switching to level 0 should clear the mesh and mark dirty")
	}
}

func TestSpongeRejectsNegativeLevel(t *testing.T) {
	if _, err := NewSponge(-1); !errors.Is(err, ErrInvalidLevel) {
		t.Errorf("NewSponge(-1): expected ErrInvalidLevel, got %v", err)
	}

	s := newTestSponge(t, 2)
	s.SetClean()
	before := s.PositionsFlat()

	err := s.SetLevel(-3)
	if !errors.Is(err, ErrInvalidLevel) {
		t.Errorf("Expected ErrInvalidLevel, got %v", err)
	}
	if s.Level() != 2 || s.IsDirty() || &s.PositionsFlat()[0] != &before[0] {
		t.Error("A rejected level must leave the sponge untouched")
	}
}

func TestSpongeRejectsExcessiveLevel(t *testing.T) {
	s := newTestSponge(t, 1, WithMaxLevel(2))
	s.SetClean()

	err := s.SetLevel(3)
	if !errors.Is(err, ErrLevelTooHigh) {
		t.Errorf("Expected ErrLevelTooHigh, got %v", err)
	}
	if s.Level() != 1 || s.IsDirty() || len(s.IndicesFlat()) != 36 {
		t.Error("A rejected level must leave the sponge untouched")
	}

	if err := s.SetLevel(9); !errors.Is(err, ErrLevelTooHigh) {
		t.Errorf("Expected ErrLevelTooHigh for level 9, got %v", err)
	}
	if s.MaxLevel() != 2 {
		t.Errorf("MaxLevel: got %d, want %d", s.MaxLevel(), 2)
	}
}

func TestSpongeOptions(t *testing.T) {
	cases := []struct {
		name string
		opt  Option
	}{
		{"max level zero", WithMaxLevel(0)},
		{"max level above hard limit", WithMaxLevel(HardMaxLevel + 1)},
		{"zero edge", WithRoot(mgl32.Vec3{}, 0)},
		{"negative edge", WithRoot(mgl32.Vec3{}, -1)},
		{"no workers", WithWorkers(0)},
	}
	for _, tc := range cases {
		if _, err := NewSponge(1, tc.opt); !errors.Is(err, ErrInvalidOption) {
			t.Errorf("%s: expected ErrInvalidOption, got %v", tc.name, err)
		}
	}

	s := newTestSponge(t, 1, WithRoot(mgl32.Vec3{1, 2, 3}, 3))
	pos := s.PositionsFlat()
	if pos[0] != 1 || pos[1] != 2 || pos[2] != 3 {
		t.Errorf("First vertex should sit on the root min corner, got %v", pos[:3])
	}
}

func TestSpongeUMatrix(t *testing.T) {
	s := newTestSponge(t, 1)
	if s.UMatrix() != mgl32.Ident4() {
		t.Error("UMatrix should be the identity")
	}
}

func TestVertexCountEdges(t *testing.T) {
	if VertexCount(0) != 0 || VertexCount(-2) != 0 {
		t.Error("VertexCount below level 1 should be 0")
	}
	if VertexCount(HardMaxLevel) > math.MaxUint32 {
		t.Errorf("HardMaxLevel vertex count %d does not fit uint32", VertexCount(HardMaxLevel))
	}
	if VertexCount(HardMaxLevel+1) <= math.MaxUint32 {
		t.Error("HardMaxLevel should be the last level that fits uint32 indices")
	}
	if VertexCount(100) != math.MaxUint64 {
		t.Errorf("VertexCount should saturate, got %d", VertexCount(100))
	}
}

func assertSameMesh(t *testing.T, a, b *Sponge) {
	t.Helper()
	compareFloats(t, "positions", a.PositionsFlat(), b.PositionsFlat())
	compareFloats(t, "normals", a.NormalsFlat(), b.NormalsFlat())

	ai, bi := a.IndicesFlat(), b.IndicesFlat()
	if len(ai) != len(bi) {
		t.Fatalf("indices length mismatch: got %d, want %d", len(ai), len(bi))
	}
	for i := range ai {
		if ai[i] != bi[i] {
			t.Fatalf("indices[%d]: got %d, want %d", i, ai[i], bi[i])
		}
	}
}

func compareFloats(t *testing.T, name string, a, b []float32) {
	t.Helper()
	if len(a) != len(b) {
		t.Fatalf("%s length mismatch: got %d, want %d", name, len(a), len(b))
	}
	for i := range a {
		if math.Float32bits(a[i]) != math.Float32bits(b[i]) {
			t.Fatalf("%s[%d]: got %v, want %v", name, i, a[i], b[i])
		}
	}
}
