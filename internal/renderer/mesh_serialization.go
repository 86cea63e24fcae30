package renderer

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	meshMagic   uint32 = 0x4D455348 // "MESH"
	meshVersion uint32 = 1

	// Largest element count accepted per array, enough for uint32-indexed vertices
	maxMeshElements = uint64(math.MaxUint32) * coordDim
	readChunk       = 1 << 16
)

// ErrCorruptMesh is returned when decoded arrays break the flat buffer layout
var ErrCorruptMesh = errors.New("corrupt mesh data")

// SerializedMesh contains the flat buffers of one mesh
type SerializedMesh struct {
	Positions []float32 `json:"positions,omitempty"`
	Normals   []float32 `json:"normals,omitempty"`
	Indices   []uint32  `json:"indices,omitempty"`
}

// SerializedModel is the JSON descriptor written next to a binary mesh
type SerializedModel struct {
	Name string `json:"name"`
	Type string `json:"type"` // "procedural" or "static"

	Level         *int   `json:"level,omitempty"`
	VertexCount   int    `json:"vertex_count"`
	TriangleCount int    `json:"triangle_count"`
	MeshDataFile  string `json:"mesh_data_file,omitempty"`

	ModelMatrix          [16]float32 `json:"model_matrix"`
	BoundingSphereCenter [3]float32  `json:"bounding_sphere_center"`
	BoundingSphereRadius float32     `json:"bounding_sphere_radius"`
}

// SerializeMesh copies a mesh's buffers
func SerializeMesh(mesh Mesh) *SerializedMesh {
	return &SerializedMesh{
		Positions: append([]float32(nil), mesh.PositionsFlat()...),
		Normals:   append([]float32(nil), mesh.NormalsFlat()...),
		Indices:   append([]uint32(nil), mesh.IndicesFlat()...),
	}
}

// Validate checks the stride-4, one-index-per-vertex layout
func (s *SerializedMesh) Validate() error {
	if len(s.Positions)%coordDim != 0 {
		return fmt.Errorf("%w: %d position floats is not a multiple of %d", ErrCorruptMesh, len(s.Positions), coordDim)
	}
	if len(s.Normals) != len(s.Positions) {
		return fmt.Errorf("%w: %d normal floats for %d position floats", ErrCorruptMesh, len(s.Normals), len(s.Positions))
	}
	if len(s.Indices) != len(s.Positions)/coordDim {
		return fmt.Errorf("%w: %d indices for %d vertices", ErrCorruptMesh, len(s.Indices), len(s.Positions)/coordDim)
	}
	return nil
}

// PositionsFlat, NormalsFlat, IndicesFlat and UMatrix let a decoded mesh be
// synced like a generated one.
func (s *SerializedMesh) PositionsFlat() []float32 { return s.Positions }
func (s *SerializedMesh) NormalsFlat() []float32   { return s.Normals }
func (s *SerializedMesh) IndicesFlat() []uint32    { return s.Indices }
func (s *SerializedMesh) UMatrix() mgl32.Mat4      { return mgl32.Ident4() }

// EncodeMeshBinary encodes mesh data to compressed binary format
func EncodeMeshBinary(mesh *SerializedMesh) ([]byte, error) {
	if err := mesh.Validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := WriteMeshBinary(&buf, mesh); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteMeshBinary streams the compressed binary format to w
func WriteMeshBinary(w io.Writer, mesh *SerializedMesh) error {
	gzWriter := gzip.NewWriter(w)

	header := [2]uint32{meshMagic, meshVersion}
	if err := binary.Write(gzWriter, binary.LittleEndian, header); err != nil {
		return err
	}
	if err := writeSlice(gzWriter, mesh.Positions); err != nil {
		return err
	}
	if err := writeSlice(gzWriter, mesh.Normals); err != nil {
		return err
	}
	if err := writeSlice(gzWriter, mesh.Indices); err != nil {
		return err
	}

	return gzWriter.Close()
}

// DecodeMeshBinary decodes compressed binary mesh data
func DecodeMeshBinary(data []byte) (*SerializedMesh, error) {
	return ReadMeshBinary(bytes.NewReader(data))
}

// ReadMeshBinary reads the compressed binary format from r
func ReadMeshBinary(r io.Reader) (*SerializedMesh, error) {
	gzReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzReader.Close()

	var header [2]uint32
	if err := binary.Read(gzReader, binary.LittleEndian, &header); err != nil {
		return nil, err
	}
	if header[0] != meshMagic {
		return nil, fmt.Errorf("invalid mesh file magic: %x", header[0])
	}
	if header[1] != meshVersion {
		return nil, fmt.Errorf("unsupported mesh version: %d", header[1])
	}

	mesh := &SerializedMesh{}
	if mesh.Positions, err = readSlice[float32](gzReader); err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}
	if mesh.Normals, err = readSlice[float32](gzReader); err != nil {
		return nil, fmt.Errorf("read normals: %w", err)
	}
	if mesh.Indices, err = readSlice[uint32](gzReader); err != nil {
		return nil, fmt.Errorf("read indices: %w", err)
	}

	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	return mesh, nil
}

func writeSlice[T float32 | uint32](w io.Writer, data []T) error {
	if err := binary.Write(w, binary.LittleEndian, uint64(len(data))); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return binary.Write(w, binary.LittleEndian, data)
}

// readSlice grows the result chunk by chunk so a corrupt count cannot force a huge allocation
func readSlice[T float32 | uint32](r io.Reader) ([]T, error) {
	var count uint64
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, err
	}
	if count > maxMeshElements {
		return nil, fmt.Errorf("%w: %d elements", ErrCorruptMesh, count)
	}

	data := make([]T, 0, min(count, readChunk))
	chunk := make([]T, readChunk)
	for remaining := count; remaining > 0; {
		n := min(remaining, readChunk)
		if err := binary.Read(r, binary.LittleEndian, chunk[:n]); err != nil {
			return nil, err
		}
		data = append(data, chunk[:n]...)
		remaining -= n
	}
	return data, nil
}

// SerializeModelToJSON creates the JSON descriptor of a synced model
func SerializeModelToJSON(model *Model, meshDataFile string) ([]byte, error) {
	positions := model.Source.PositionsFlat()
	serialized := SerializedModel{
		Name:                 model.Name,
		Type:                 "static",
		VertexCount:          len(positions) / coordDim,
		TriangleCount:        len(positions) / coordDim / 3,
		MeshDataFile:         meshDataFile,
		ModelMatrix:          model.ModelMatrix,
		BoundingSphereCenter: model.BoundingSphereCenter,
		BoundingSphereRadius: model.BoundingSphereRadius,
	}

	if _, ok := model.Source.(DirtyMesh); ok {
		serialized.Type = "procedural"
	}
	if leveled, ok := model.Source.(interface{ Level() int }); ok {
		level := leveled.Level()
		serialized.Level = &level
	}

	return json.MarshalIndent(serialized, "", "  ")
}
