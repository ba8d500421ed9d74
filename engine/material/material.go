// package material defines the resolved, validated per-instance shader
// parameters loaded from tag data: the shader group, its static capability
// flags, the ordered texture layer stack, and the fog profile reference.
// Materials are immutable once built; draw requests reference them without
// owning them.
package material

import (
	"errors"
	"fmt"

	"github.com/GlitchSlayed/magellanicus/common"
	"github.com/GlitchSlayed/magellanicus/engine/fog"
)

// MaxLayers is the maximum number of texture layers a chicago-style material
// may declare.
const MaxLayers = 4

// Shape validation errors, reported at material build time so malformed
// descriptors never reach the permutation resolver.
var (
	ErrUnknownShaderGroup     = errors.New("unknown shader group")
	ErrTooManyLayers          = errors.New("layer count exceeds maximum")
	ErrNoLayers               = errors.New("transparent material declares no layers")
	ErrCubemapAfterFirstLayer = errors.New("only layer 0 may sample a cubemap")
	ErrUnknownCombineFunction = errors.New("unknown combine function")
	ErrMissingFogProfile      = errors.New("fog capability set without a fog profile")
)

// ShaderGroup categorizes a material's behavior. Each group has its own
// combine/blend semantics and pipeline family.
type ShaderGroup uint8

const (
	// GroupEnvironment renders opaque BSP surfaces: base map, up to three
	// detail maps, bump map, and cube reflection, modulated by lightmaps.
	GroupEnvironment ShaderGroup = iota

	// GroupTransparentChicago renders the multi-layer transparent combiner
	// stack with a per-material framebuffer blend function.
	GroupTransparentChicago

	// GroupTransparentGeneric is tag-compatible with chicago but currently
	// renders via the fallback pipeline.
	GroupTransparentGeneric

	// GroupTransparentGlass currently renders via the fallback pipeline.
	GroupTransparentGlass

	// GroupTransparentMeter currently renders via the fallback pipeline.
	GroupTransparentMeter

	// GroupTransparentPlasma currently renders via the fallback pipeline.
	GroupTransparentPlasma

	// GroupTransparentWater currently renders via the fallback pipeline.
	GroupTransparentWater

	// GroupModel renders object geometry with a single diffuse map.
	GroupModel

	// GroupFallback renders solid unshaded color. It is also the designated
	// substitute when a pipeline build fails or a group is unimplemented.
	GroupFallback

	shaderGroupCount
)

// Valid reports whether g is a known shader group value.
//
// Returns:
//   - bool: true if g is within the known range
func (g ShaderGroup) Valid() bool {
	return g < shaderGroupCount
}

// Transparent reports whether this group requires back-to-front draw ordering
// and framebuffer blending rather than opaque depth-tested drawing.
//
// Returns:
//   - bool: true for the transparent groups
func (g ShaderGroup) Transparent() bool {
	return g >= GroupTransparentChicago && g <= GroupTransparentWater
}

func (g ShaderGroup) String() string {
	switch g {
	case GroupEnvironment:
		return "environment"
	case GroupTransparentChicago:
		return "transparent_chicago"
	case GroupTransparentGeneric:
		return "transparent_generic"
	case GroupTransparentGlass:
		return "transparent_glass"
	case GroupTransparentMeter:
		return "transparent_meter"
	case GroupTransparentPlasma:
		return "transparent_plasma"
	case GroupTransparentWater:
		return "transparent_water"
	case GroupModel:
		return "model"
	case GroupFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// CapabilityFlags is the set of static capabilities that shape a material's
// pipeline: which optional resources exist and which shading paths compile in.
type CapabilityFlags uint8

const (
	// CapabilityFog gates the fog uniform block and fog attenuation math.
	CapabilityFog CapabilityFlags = 1 << iota

	// CapabilityLightmap gates the lightmap sampler/texture pair.
	CapabilityLightmap

	// CapabilityTangentSpace gates normal/binormal/tangent vertex attributes
	// and tangent-space sampling (bump maps, cube reflection directions).
	// Chicago variants carry the tangent basis regardless of this flag.
	CapabilityTangentSpace

	// CapabilityPremultipliedAlpha scales RGB by the fog attenuation applied
	// to alpha. Derived from the framebuffer function for transparent groups.
	CapabilityPremultipliedAlpha
)

// Has reports whether all the given flags are set.
//
// Parameters:
//   - flags: the flags to test for
//
// Returns:
//   - bool: true if every flag in flags is set on c
func (c CapabilityFlags) Has(flags CapabilityFlags) bool {
	return c&flags == flags
}

// SamplingMode selects how a texture layer is addressed.
type SamplingMode uint8

const (
	// SamplingPlanar2D samples a 2D texture by UV.
	SamplingPlanar2D SamplingMode = iota

	// SamplingCubemap samples a cube texture by a direction derived from the
	// fragment's tangent basis. Only layer 0 may use this mode.
	SamplingCubemap
)

// TextureLayer is one texture unit in the compositing stack.
type TextureLayer struct {
	// UVOffset translates the layer's texture coordinates.
	UVOffset [2]float32

	// UVScale scales the layer's texture coordinates.
	UVScale [2]float32

	// ColorFunction merges this layer's RGB into the accumulator.
	ColorFunction CombineFunction

	// AlphaFunction merges this layer's alpha into the accumulator.
	AlphaFunction CombineFunction

	// SamplingMode is Planar2D for all layers except possibly layer 0.
	SamplingMode SamplingMode

	// AlphaReplicate broadcasts the layer's alpha across its RGB channels
	// before combination.
	AlphaReplicate bool

	// Texture is the decoded pixel data for this layer, pending GPU upload.
	Texture common.TextureStagingData
}

// EnvironmentType selects the environment group's detail blending variant.
type EnvironmentType uint32

const (
	EnvironmentNormal EnvironmentType = iota
	EnvironmentBlended
	EnvironmentBlendedBaseSpecular
)

// EnvironmentMapFunction selects how a detail map modulates the base map.
type EnvironmentMapFunction uint32

const (
	EnvironmentDoubleBiasedMultiply EnvironmentMapFunction = iota
	EnvironmentMultiply
	EnvironmentDoubleBiasedAdd
)

// EnvironmentParams carries the environment group's extra parameters beyond
// the shared layer stack.
type EnvironmentParams struct {
	Type                EnvironmentType
	DetailFunction      EnvironmentMapFunction
	MicroDetailFunction EnvironmentMapFunction

	// BumpScale scales the bump map's texture coordinates.
	BumpScale float32

	// PerpendicularColor is RGB plus brightness in the fourth component,
	// applied where the surface faces the viewer.
	PerpendicularColor [4]float32

	// ParallelColor is RGB plus brightness in the fourth component, applied
	// where the surface is edge-on to the viewer.
	ParallelColor [4]float32

	AlphaTested        bool
	BumpIsSpecularMask bool

	// BumpMap and ReflectionCube are present only with CapabilityTangentSpace.
	BumpMap        common.TextureStagingData
	ReflectionCube common.TextureStagingData
}

// material is the implementation of the Material interface.
type material struct {
	name         string
	group        ShaderGroup
	capabilities CapabilityFlags
	layers       []TextureLayer
	fogProfile   *fog.Profile
	framebuffer  FramebufferFunction
	twoSided     bool
	environment  *EnvironmentParams
	lightmap     *common.TextureStagingData
}

// Material defines the interface for a resolved shader-tag instance: the
// validated, immutable parameters that drive permutation resolution, resource
// binding, and per-draw uniform data. All accessors are read-only; a Material
// never changes after New returns it.
type Material interface {
	// Name retrieves the material identifier (typically the tag path).
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// Group retrieves the shader group this material belongs to.
	//
	// Returns:
	//   - ShaderGroup: the shader group
	Group() ShaderGroup

	// Capabilities retrieves the static capability flags that shape this
	// material's pipeline.
	//
	// Returns:
	//   - CapabilityFlags: the capability flag set
	Capabilities() CapabilityFlags

	// Layers retrieves the ordered texture layer stack. The returned slice
	// must not be modified.
	//
	// Returns:
	//   - []TextureLayer: the layers in combination order
	Layers() []TextureLayer

	// LayerCount retrieves the number of declared layers.
	//
	// Returns:
	//   - int: the layer count
	LayerCount() int

	// FogProfile retrieves the fog profile, or nil when CapabilityFog is not
	// set.
	//
	// Returns:
	//   - *fog.Profile: the shared fog profile reference, or nil
	FogProfile() *fog.Profile

	// FramebufferFunction retrieves the framebuffer blend function. Only
	// meaningful for transparent groups.
	//
	// Returns:
	//   - FramebufferFunction: the framebuffer function
	FramebufferFunction() FramebufferFunction

	// TwoSided reports whether back-face culling is disabled for this
	// material.
	//
	// Returns:
	//   - bool: true if the material renders both faces
	TwoSided() bool

	// Environment retrieves the environment group's extra parameters, or nil
	// for other groups.
	//
	// Returns:
	//   - *EnvironmentParams: the environment parameters, or nil
	Environment() *EnvironmentParams

	// Lightmap retrieves the lightmap staging data, or nil when
	// CapabilityLightmap is not set.
	//
	// Returns:
	//   - *common.TextureStagingData: the lightmap pixel data, or nil
	Lightmap() *common.TextureStagingData

	// AlphaReplicateMask retrieves the per-layer alpha-replicate bits packed
	// into a single word, bit i for layer i.
	//
	// Returns:
	//   - uint32: the packed alpha-replicate mask
	AlphaReplicateMask() uint32
}

var _ Material = &material{}

// New creates a validated Material. Shape errors (too many layers, cubemap
// past layer 0, unknown enum values, missing fog profile) are rejected here
// so they never surface during drawing.
//
// Parameters:
//   - name: the material identifier, typically the tag path
//   - group: the shader group
//   - options: variadic list of MaterialOption functions to configure the material
//
// Returns:
//   - Material: the immutable material, or nil on error
//   - error: a shape validation error, or nil
func New(name string, group ShaderGroup, options ...MaterialOption) (Material, error) {
	m := &material{
		name:  name,
		group: group,
	}
	for _, opt := range options {
		opt(m)
	}

	if !group.Valid() {
		return nil, fmt.Errorf("material %q: %w (%d)", name, ErrUnknownShaderGroup, group)
	}
	if len(m.layers) > MaxLayers {
		return nil, fmt.Errorf("material %q: %w (%d > %d)", name, ErrTooManyLayers, len(m.layers), MaxLayers)
	}
	if group.Transparent() && len(m.layers) == 0 {
		return nil, fmt.Errorf("material %q: %w", name, ErrNoLayers)
	}
	if !m.framebuffer.Valid() {
		return nil, fmt.Errorf("material %q: invalid framebuffer function %d", name, m.framebuffer)
	}
	for i, layer := range m.layers {
		if i > 0 && layer.SamplingMode != SamplingPlanar2D {
			return nil, fmt.Errorf("material %q layer %d: %w", name, i, ErrCubemapAfterFirstLayer)
		}
		if !layer.ColorFunction.Valid() {
			return nil, fmt.Errorf("material %q layer %d color: %w (%d)", name, i, ErrUnknownCombineFunction, layer.ColorFunction)
		}
		if !layer.AlphaFunction.Valid() {
			return nil, fmt.Errorf("material %q layer %d alpha: %w (%d)", name, i, ErrUnknownCombineFunction, layer.AlphaFunction)
		}
	}
	if m.capabilities.Has(CapabilityFog) {
		if m.fogProfile == nil {
			return nil, fmt.Errorf("material %q: %w", name, ErrMissingFogProfile)
		}
		if err := m.fogProfile.Validate(); err != nil {
			return nil, fmt.Errorf("material %q: %w", name, err)
		}
	}

	// Additive and subtractive framebuffer blending requires the fog
	// attenuation folded into RGB.
	if group.Transparent() && m.framebuffer.Premultiplies() {
		m.capabilities |= CapabilityPremultipliedAlpha
	}

	return m, nil
}

func (m *material) Name() string {
	return m.name
}

func (m *material) Group() ShaderGroup {
	return m.group
}

func (m *material) Capabilities() CapabilityFlags {
	return m.capabilities
}

func (m *material) Layers() []TextureLayer {
	return m.layers
}

func (m *material) LayerCount() int {
	return len(m.layers)
}

func (m *material) FogProfile() *fog.Profile {
	return m.fogProfile
}

func (m *material) FramebufferFunction() FramebufferFunction {
	return m.framebuffer
}

func (m *material) TwoSided() bool {
	return m.twoSided
}

func (m *material) Environment() *EnvironmentParams {
	return m.environment
}

func (m *material) Lightmap() *common.TextureStagingData {
	return m.lightmap
}

func (m *material) AlphaReplicateMask() uint32 {
	var mask uint32
	for i, layer := range m.layers {
		if layer.AlphaReplicate {
			mask |= 1 << uint32(i)
		}
	}
	return mask
}
