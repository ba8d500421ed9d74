package camera

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUFrameUniform is the GPU-aligned representation of the per-frame uniform
// buffer bound at group 0. Matches the WGSL FrameUniforms struct layout
// exactly. Size: 96 bytes (std140 / WGSL aligned).
type GPUFrameUniform struct {
	ViewProj       [16]float32 // offset  0: combined view-projection matrix (mat4x4<f32>)
	CameraPosition [4]float32  // offset 64: world-space camera position, w unused (vec4<f32>)
	WorldOffset    [4]float32  // offset 80: offset added to vertex positions, w unused (vec4<f32>)
}

// Size returns the size of the GPUFrameUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (96)
func (g *GPUFrameUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUFrameUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUFrameUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.ViewProj[i]))
	}
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(g.CameraPosition[i]))
	}
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[80+i*4:], math.Float32bits(g.WorldOffset[i]))
	}
	return buf
}

// BuildFrameUniform assembles the per-frame uniform block from a camera's
// current matrices and a world offset applied to vertex positions before
// projection.
//
// Parameters:
//   - c: the camera whose view-projection and position to capture
//   - worldOffset: the offset added to vertex positions in the vertex stage
//
// Returns:
//   - GPUFrameUniform: the assembled uniform block
func BuildFrameUniform(c Camera, worldOffset [3]float32) GPUFrameUniform {
	position := c.Position()
	return GPUFrameUniform{
		ViewProj:       c.ViewProjectionMatrix(),
		CameraPosition: [4]float32{position[0], position[1], position[2], 0},
		WorldOffset:    [4]float32{worldOffset[0], worldOffset[1], worldOffset[2], 0},
	}
}
