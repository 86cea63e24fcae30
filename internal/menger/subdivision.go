package menger

import "github.com/go-gl/mathgl/mgl32"

// SubcubeCount is the number of sub-cubes kept at each subdivision step
const SubcubeCount = 20

// subcubePattern holds the kept cells of the 3x3x3 grid, layer by layer along Y.
// The body center and the six face centers are absent.
var subcubePattern = [SubcubeCount]mgl32.Vec3{
	{0, 0, 0}, {1, 0, 0}, {2, 0, 0},
	{0, 0, 1}, {2, 0, 1},
	{0, 0, 2}, {1, 0, 2}, {2, 0, 2},

	{0, 1, 0}, {2, 1, 0},
	{0, 1, 2}, {2, 1, 2},

	{0, 2, 0}, {1, 2, 0}, {2, 2, 0},
	{0, 2, 1}, {2, 2, 1},
	{0, 2, 2}, {1, 2, 2}, {2, 2, 2},
}

// SubcubeOrigins returns the min-corner offsets of the 20 kept sub-cubes,
// relative to the parent's min corner, for sub-cubes of edge subEdge.
func SubcubeOrigins(subEdge float32) [SubcubeCount]mgl32.Vec3 {
	var origins [SubcubeCount]mgl32.Vec3
	for i, cell := range subcubePattern {
		origins[i] = cell.Mul(subEdge)
	}
	return origins
}
