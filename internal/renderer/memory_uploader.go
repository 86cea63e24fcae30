package renderer

// MemoryUploader is a headless Uploader that keeps a copy of the last upload
type MemoryUploader struct {
	Positions []float32
	Normals   []float32
	Indices   []uint32

	Uploads int   // Number of buffer uploads, three per mesh sync
	Bytes   int64 // Total bytes uploaded
}

// NewMemoryUploader returns an empty uploader
func NewMemoryUploader() *MemoryUploader {
	return &MemoryUploader{}
}

func (u *MemoryUploader) UploadPositions(data []float32) error {
	u.Positions = append(u.Positions[:0], data...)
	u.record(len(data) * 4)
	return nil
}

func (u *MemoryUploader) UploadNormals(data []float32) error {
	u.Normals = append(u.Normals[:0], data...)
	u.record(len(data) * 4)
	return nil
}

func (u *MemoryUploader) UploadIndices(data []uint32) error {
	u.Indices = append(u.Indices[:0], data...)
	u.record(len(data) * 4)
	return nil
}

func (u *MemoryUploader) record(n int) {
	u.Uploads++
	u.Bytes += int64(n)
}
