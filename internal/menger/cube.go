package menger

import (
	"MengerSponge/internal/geometry"

	"github.com/go-gl/mathgl/mgl32"
)

// CubeVertexCount is the number of vertices EmitCube appends (6 faces, 2 triangles each)
const CubeVertexCount = 36

// cubeCorners lists the unit cube's triangles as corner offsets.
// Each face is a quad a,b,c,d wound counter-clockwise seen from outside,
// split into a,b,c and a,c,d.
var cubeCorners = [CubeVertexCount]mgl32.Vec3{
	// -X
	{0, 0, 0}, {0, 0, 1}, {0, 1, 1},
	{0, 0, 0}, {0, 1, 1}, {0, 1, 0},
	// +X
	{1, 0, 0}, {1, 1, 0}, {1, 1, 1},
	{1, 0, 0}, {1, 1, 1}, {1, 0, 1},
	// -Y
	{0, 0, 0}, {1, 0, 0}, {1, 0, 1},
	{0, 0, 0}, {1, 0, 1}, {0, 0, 1},
	// +Y
	{0, 1, 0}, {0, 1, 1}, {1, 1, 1},
	{0, 1, 0}, {1, 1, 1}, {1, 1, 0},
	// -Z
	{0, 0, 0}, {0, 1, 0}, {1, 1, 0},
	{0, 0, 0}, {1, 1, 0}, {1, 0, 0},
	// +Z
	{0, 0, 1}, {1, 0, 1}, {1, 1, 1},
	{0, 0, 1}, {1, 1, 1}, {0, 1, 1},
}

// EmitCube appends the 12 outward-facing triangles of the axis-aligned cube
// spanning origin to origin+edge on every axis.
//
// A non-positive edge is not rejected: zero gives zero-area triangles with zero
// normals and a negative edge mirrors the cube, turning its faces inward.
func EmitCube(buf *geometry.Buffers, origin mgl32.Vec3, edge float32) {
	var vertices [CubeVertexCount]mgl32.Vec3
	for i, c := range cubeCorners {
		vertices[i] = origin.Add(c.Mul(edge))
	}
	buf.AppendTriangles(vertices[:]...)
}
