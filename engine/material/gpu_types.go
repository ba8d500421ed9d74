package material

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/GlitchSlayed/magellanicus/engine/fog"
)

// GPULayerTransform is the GPU-aligned per-layer slice of the chicago uniform
// block. Matches the WGSL LayerTransform struct layout exactly.
// Size: 32 bytes (uniform array stride aligned).
type GPULayerTransform struct {
	UVOffset      [2]float32 // offset  0: uv translation (vec2<f32>)
	UVScale       [2]float32 // offset  8: uv scale (vec2<f32>)
	ColorFunction uint32     // offset 16: CombineFunction for RGB
	AlphaFunction uint32     // offset 20: CombineFunction for alpha
	_             [2]float32 // offset 24: padding to 32 bytes
}

// GPUChicagoUniform is the GPU-aligned representation of the chicago material
// uniform buffer. Matches the WGSL ChicagoUniforms struct layout exactly.
// Size: 144 bytes.
type GPUChicagoUniform struct {
	Maps           [MaxLayers]GPULayerTransform // offset   0: per-layer transforms and functions
	FirstMapType   uint32                       // offset 128: SamplingMode of layer 0
	MapCount       uint32                       // offset 132: declared layer count
	Premultiply    uint32                       // offset 136: 1 when RGB is fog-premultiplied
	AlphaReplicate uint32                       // offset 140: per-layer alpha-replicate bits
}

// Size returns the size of the GPUChicagoUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (144)
func (g *GPUChicagoUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUChicagoUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUChicagoUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	off := 0
	for i := range g.Maps {
		m := &g.Maps[i]
		putF32(buf, &off, m.UVOffset[0], m.UVOffset[1], m.UVScale[0], m.UVScale[1])
		putU32(buf, &off, m.ColorFunction, m.AlphaFunction, 0, 0)
	}
	putU32(buf, &off, g.FirstMapType, g.MapCount, g.Premultiply, g.AlphaReplicate)
	return buf
}

// BuildChicagoUniform populates a GPUChicagoUniform from a material's layer
// stack. Undeclared layers stay zeroed; the shader skips them via MapCount.
//
// Parameters:
//   - m: the material to read layers and flags from
//
// Returns:
//   - GPUChicagoUniform: the uniform data ready to marshal
func BuildChicagoUniform(m Material) GPUChicagoUniform {
	var g GPUChicagoUniform
	layers := m.Layers()
	for i := range layers {
		if i >= MaxLayers {
			break
		}
		g.Maps[i] = GPULayerTransform{
			UVOffset:      layers[i].UVOffset,
			UVScale:       layers[i].UVScale,
			ColorFunction: uint32(layers[i].ColorFunction),
			AlphaFunction: uint32(layers[i].AlphaFunction),
		}
	}
	if len(layers) > 0 {
		g.FirstMapType = uint32(layers[0].SamplingMode)
	}
	g.MapCount = uint32(len(layers))
	if m.Capabilities().Has(CapabilityPremultipliedAlpha) {
		g.Premultiply = 1
	}
	g.AlphaReplicate = m.AlphaReplicateMask()
	return g
}

// GPUEnvironmentUniform is the GPU-aligned representation of the environment
// material uniform buffer. Matches the WGSL EnvironmentUniforms struct layout
// exactly. Size: 64 bytes.
type GPUEnvironmentUniform struct {
	PrimaryDetailScale   float32    // offset  0
	SecondaryDetailScale float32    // offset  4
	MicroDetailScale     float32    // offset  8
	BumpScale            float32    // offset 12
	Flags                uint32     // offset 16: bit 0 alpha tested, bit 1 bump is specular mask
	Type                 uint32     // offset 20: EnvironmentType
	DetailFunction       uint32     // offset 24: EnvironmentMapFunction
	MicroDetailFunction  uint32     // offset 28: EnvironmentMapFunction
	PerpendicularColor   [4]float32 // offset 32: rgb + brightness
	ParallelColor        [4]float32 // offset 48: rgb + brightness
}

// Size returns the size of the GPUEnvironmentUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (g *GPUEnvironmentUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUEnvironmentUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUEnvironmentUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	off := 0
	putF32(buf, &off, g.PrimaryDetailScale, g.SecondaryDetailScale, g.MicroDetailScale, g.BumpScale)
	putU32(buf, &off, g.Flags, g.Type, g.DetailFunction, g.MicroDetailFunction)
	putF32(buf, &off, g.PerpendicularColor[:]...)
	putF32(buf, &off, g.ParallelColor[:]...)
	return buf
}

// BuildEnvironmentUniform populates a GPUEnvironmentUniform from a material's
// environment parameters and layer scales. Layer order: base, primary detail,
// secondary detail, micro detail; each detail scale is taken from the layer's
// UVScale.
//
// Parameters:
//   - m: the material to read environment parameters from
//
// Returns:
//   - GPUEnvironmentUniform: the uniform data ready to marshal
func BuildEnvironmentUniform(m Material) GPUEnvironmentUniform {
	var g GPUEnvironmentUniform
	layers := m.Layers()
	scale := func(i int) float32 {
		if i < len(layers) {
			return layers[i].UVScale[0]
		}
		return 1
	}
	g.PrimaryDetailScale = scale(1)
	g.SecondaryDetailScale = scale(2)
	g.MicroDetailScale = scale(3)

	if env := m.Environment(); env != nil {
		g.BumpScale = env.BumpScale
		if env.AlphaTested {
			g.Flags |= 1 << 0
		}
		if env.BumpIsSpecularMask {
			g.Flags |= 1 << 1
		}
		g.Type = uint32(env.Type)
		g.DetailFunction = uint32(env.DetailFunction)
		g.MicroDetailFunction = uint32(env.MicroDetailFunction)
		g.PerpendicularColor = env.PerpendicularColor
		g.ParallelColor = env.ParallelColor
	}
	return g
}

// GPUModelUniform is the GPU-aligned representation of the model material
// uniform buffer. Size: 16 bytes.
type GPUModelUniform struct {
	BaseColor [4]float32 // offset 0: diffuse modulation color
}

// Size returns the size of the GPUModelUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (16)
func (g *GPUModelUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUModelUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUModelUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	off := 0
	putF32(buf, &off, g.BaseColor[:]...)
	return buf
}

// GPUFallbackUniform is the GPU-aligned representation of the fallback
// pipeline's uniform buffer. Size: 16 bytes.
type GPUFallbackUniform struct {
	Color [4]float32 // offset 0: solid output color
}

// Size returns the size of the GPUFallbackUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (16)
func (g *GPUFallbackUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUFallbackUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUFallbackUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	off := 0
	putF32(buf, &off, g.Color[:]...)
	return buf
}

// GPUFogUniform is the GPU-aligned representation of the fog uniform buffer.
// Matches the WGSL FogUniforms struct layout exactly. Size: 48 bytes.
type GPUFogUniform struct {
	SkyColor   [4]float32 // offset  0
	FadeStart  float32    // offset 16
	FadeEnd    float32    // offset 20
	MinOpacity float32    // offset 24
	MaxOpacity float32    // offset 28
	Model      uint32     // offset 32: fog.Model
	_          [3]uint32  // offset 36: padding to 48 bytes
}

// Size returns the size of the GPUFogUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (48)
func (g *GPUFogUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUFogUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUFogUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	off := 0
	putF32(buf, &off, g.SkyColor[:]...)
	putF32(buf, &off, g.FadeStart, g.FadeEnd, g.MinOpacity, g.MaxOpacity)
	putU32(buf, &off, g.Model, 0, 0, 0)
	return buf
}

// BuildFogUniform populates a GPUFogUniform from a fog profile.
//
// Parameters:
//   - p: the fog profile (must not be nil)
//
// Returns:
//   - GPUFogUniform: the uniform data ready to marshal
func BuildFogUniform(p *fog.Profile) GPUFogUniform {
	return GPUFogUniform{
		SkyColor:   p.SkyColor,
		FadeStart:  p.FadeStart,
		FadeEnd:    p.FadeEnd,
		MinOpacity: p.MinOpacity,
		MaxOpacity: p.MaxOpacity,
		Model:      uint32(p.Model),
	}
}

func putF32(buf []byte, off *int, vals ...float32) {
	for _, v := range vals {
		binary.LittleEndian.PutUint32(buf[*off:], math.Float32bits(v))
		*off += 4
	}
}

func putU32(buf []byte, off *int, vals ...uint32) {
	for _, v := range vals {
		binary.LittleEndian.PutUint32(buf[*off:], v)
		*off += 4
	}
}
