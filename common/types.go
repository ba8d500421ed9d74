// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// TextureStagingData holds RGBA pixel data for a texture binding pending GPU upload.
// The asset pipeline decodes tag bitmaps into this form before any GPU object exists;
// the renderer consumes it to create the texture and view for a binding slot.
type TextureStagingData struct {
	// Pixels is the raw pixel data in RGBA format, 4 bytes per pixel. For cubemaps
	// the six faces are packed consecutively (+X, -X, +Y, -Y, +Z, -Z).
	Pixels []byte
	// Width is the width of the texture (or of one cubemap face) in pixels.
	Width uint32
	// Height is the height of the texture (or of one cubemap face) in pixels.
	Height uint32
	// Layers is 1 for planar textures and 6 for cubemaps.
	Layers uint32
	// Cube indicates the view should be created as a cube view rather than 2D.
	Cube bool
}

// SamplerStagingData holds the configuration for a sampler binding pending GPU creation.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range in each dimension (U, V, W).
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail (LOD) for mipmapping.
	LodMinClamp, LodMaxClamp float32
	// Compare specifies the comparison function for comparison samplers, used in shadow mapping and similar techniques.
	Compare wgpu.CompareFunction
	// MaxAnisotropy specifies the maximum anisotropy level for anisotropic filtering.
	MaxAnisotropy uint16
}

// MeshData holds externally-extracted geometry pending GPU upload: interleaved
// vertex bytes plus 32-bit index bytes. The vertex layout must match the
// attribute layout of the shader group the mesh is drawn with.
type MeshData struct {
	// VertexData is the interleaved vertex attribute bytes.
	VertexData []byte
	// IndexData is the uint32 index bytes.
	IndexData []byte
	// IndexCount is the number of indices, used for draw calls.
	IndexCount int
}
