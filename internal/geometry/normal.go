package geometry

import "github.com/go-gl/mathgl/mgl32"

// FaceNormal returns (b-a) x (c-a). The result is left unnormalized; its
// direction follows the counter-clockwise winding of a, b, c.
func FaceNormal(a, b, c mgl32.Vec3) mgl32.Vec3 {
	return b.Sub(a).Cross(c.Sub(a))
}
