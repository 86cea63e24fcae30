package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Mesh is flat, non-indexed triangle data with a model matrix.
// Positions and normals use 4 floats per vertex.
type Mesh interface {
	PositionsFlat() []float32
	NormalsFlat() []float32
	IndicesFlat() []uint32
	UMatrix() mgl32.Mat4
}

// DirtyMesh is a Mesh that can be regenerated. IsDirty stays true until the
// consumer acknowledges the new buffers with SetClean.
type DirtyMesh interface {
	Mesh
	IsDirty() bool
	SetClean()
}

// Uploader receives buffer data destined for the rendering backend
type Uploader interface {
	UploadPositions(data []float32) error
	UploadNormals(data []float32) error
	UploadIndices(data []uint32) error
}
