package renderer

import (
	"MengerSponge/internal/logger"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

const coordDim = 4

// Model binds a generated mesh to the buffers a backend draws from
type Model struct {
	ModelMatrix          mgl32.Mat4 // Refreshed from the mesh on every sync
	IndexCount           int        // Number of indices in the last upload
	BoundingSphereCenter mgl32.Vec3 // For frustum culling
	BoundingSphereRadius float32    // For frustum culling
	Uploads              int        // Number of completed uploads

	Name   string
	Source Mesh
}

// NewModel wraps a mesh. Nothing is uploaded until the first Sync.
func NewModel(name string, source Mesh) *Model {
	return &Model{
		Name:        name,
		Source:      source,
		ModelMatrix: mgl32.Ident4(),
	}
}

// NeedsUpload reports whether the next Sync will upload
func (m *Model) NeedsUpload() bool {
	if m.Uploads == 0 {
		return true
	}
	if dm, ok := m.Source.(DirtyMesh); ok {
		return dm.IsDirty()
	}
	return false
}

// Sync uploads the mesh buffers when they changed since the last upload and
// then marks the source clean. Static meshes are uploaded once.
// A failed upload leaves the source dirty so the next Sync retries.
// Sync must not overlap a regeneration of the source.
func (m *Model) Sync(u Uploader) (bool, error) {
	m.ModelMatrix = m.Source.UMatrix()
	if !m.NeedsUpload() {
		return false, nil
	}

	positions := m.Source.PositionsFlat()
	normals := m.Source.NormalsFlat()
	indices := m.Source.IndicesFlat()

	if err := u.UploadPositions(positions); err != nil {
		return false, fmt.Errorf("upload %s positions: %w", m.Name, err)
	}
	if err := u.UploadNormals(normals); err != nil {
		return false, fmt.Errorf("upload %s normals: %w", m.Name, err)
	}
	if err := u.UploadIndices(indices); err != nil {
		return false, fmt.Errorf("upload %s indices: %w", m.Name, err)
	}

	m.IndexCount = len(indices)
	m.Uploads++
	m.CalculateBoundingSphere()

	if dm, ok := m.Source.(DirtyMesh); ok {
		dm.SetClean()
	}

	logger.Log.Debug("Mesh uploaded",
		zap.String("model", m.Name),
		zap.Int("indices", m.IndexCount),
		zap.Int("uploads", m.Uploads))
	return true, nil
}

// CalculateBoundingSphere fits a sphere around the mesh in world space,
// centered on the vertex average
func (m *Model) CalculateBoundingSphere() {
	positions := m.Source.PositionsFlat()
	numVertices := len(positions) / coordDim
	if numVertices == 0 {
		m.BoundingSphereCenter = mgl32.Vec3{}
		m.BoundingSphereRadius = 0
		return
	}

	var center mgl32.Vec3
	for i := 0; i < numVertices; i++ {
		center = center.Add(m.worldVertex(positions, i))
	}
	center = center.Mul(1.0 / float32(numVertices))

	var maxDistanceSq float32
	for i := 0; i < numVertices; i++ {
		distanceSq := m.worldVertex(positions, i).Sub(center).LenSqr()
		if distanceSq > maxDistanceSq {
			maxDistanceSq = distanceSq
		}
	}

	m.BoundingSphereCenter = center
	m.BoundingSphereRadius = float32(math.Sqrt(float64(maxDistanceSq)))
}

func (m *Model) worldVertex(positions []float32, i int) mgl32.Vec3 {
	p := positions[i*coordDim:]
	return m.ModelMatrix.Mul4x1(mgl32.Vec4{p[0], p[1], p[2], p[3]}).Vec3()
}
