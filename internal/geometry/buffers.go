package geometry

import (
	"github.com/go-gl/mathgl/mgl32"
)

// CoordDim is the number of floats stored per vertex in Positions and Normals
const CoordDim = 4

// Buffers holds flat, non-indexed triangle data ready for a vertex buffer upload.
// Every triangle owns its three vertices, so Indices is always 0..n-1.
type Buffers struct {
	Positions []float32 // x, y, z, 1 per vertex
	Normals   []float32 // nx, ny, nz, 0 per vertex
	Indices   []uint32  // one entry per vertex
}

// NewBuffers returns empty buffers with room for vertexCapacity vertices
func NewBuffers(vertexCapacity int) *Buffers {
	if vertexCapacity < 0 {
		vertexCapacity = 0
	}
	return &Buffers{
		Positions: make([]float32, 0, vertexCapacity*CoordDim),
		Normals:   make([]float32, 0, vertexCapacity*CoordDim),
		Indices:   make([]uint32, 0, vertexCapacity),
	}
}

// VertexCount returns the number of vertices appended so far
func (b *Buffers) VertexCount() int {
	return len(b.Positions) / CoordDim
}

// TriangleCount returns the number of complete triangles
func (b *Buffers) TriangleCount() int {
	return b.VertexCount() / 3
}

// AppendTriangles appends a run of triangles given as consecutive vertex triples.
// The normal of each triangle is taken from its winding and written to all three
// of its vertices. A trailing partial triangle is ignored.
func (b *Buffers) AppendTriangles(vertices ...mgl32.Vec3) {
	n := len(vertices) - len(vertices)%3
	if n == 0 {
		return
	}

	for i := 0; i < n; i += 3 {
		v0, v1, v2 := vertices[i], vertices[i+1], vertices[i+2]
		normal := FaceNormal(v0, v1, v2)
		for _, v := range [3]mgl32.Vec3{v0, v1, v2} {
			b.Positions = append(b.Positions, v.X(), v.Y(), v.Z(), 1.0)
			b.Normals = append(b.Normals, normal.X(), normal.Y(), normal.Z(), 0.0)
		}
	}

	offset := uint32(b.VertexCount() - n)
	for i := 0; i < n; i++ {
		b.Indices = append(b.Indices, offset+uint32(i))
	}
}

// Append concatenates other onto b, shifting its indices past b's vertices
func (b *Buffers) Append(other *Buffers) {
	if other == nil {
		return
	}
	offset := uint32(b.VertexCount())
	b.Positions = append(b.Positions, other.Positions...)
	b.Normals = append(b.Normals, other.Normals...)
	for _, idx := range other.Indices {
		b.Indices = append(b.Indices, idx+offset)
	}
}

// Vertex returns the position of vertex i without its w component
func (b *Buffers) Vertex(i int) mgl32.Vec3 {
	p := b.Positions[i*CoordDim:]
	return mgl32.Vec3{p[0], p[1], p[2]}
}

// Normal returns the normal stored for vertex i
func (b *Buffers) Normal(i int) mgl32.Vec3 {
	n := b.Normals[i*CoordDim:]
	return mgl32.Vec3{n[0], n[1], n[2]}
}
