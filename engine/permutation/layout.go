package permutation

import (
	"errors"
	"fmt"

	"github.com/GlitchSlayed/magellanicus/engine/material"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrUnsupportedShaderGroup is returned by LayoutFor when the key's group has
// no implemented pipeline family. Callers substitute FallbackKey.
var ErrUnsupportedShaderGroup = errors.New("shader group has no implemented pipeline")

// FrameUniformSize is the byte size of the per-frame uniform block bound at
// group 0 binding 0 of every variant: view matrix, projection matrix composed
// into one, camera world position, and world offset.
const FrameUniformSize = 96

// SlotKind is the GPU resource class a binding slot accepts.
type SlotKind uint8

const (
	SlotUniformBuffer SlotKind = iota
	SlotSampler
	SlotTexture2D
	SlotTextureCube
)

func (k SlotKind) String() string {
	switch k {
	case SlotUniformBuffer:
		return "uniform_buffer"
	case SlotSampler:
		return "sampler"
	case SlotTexture2D:
		return "texture_2d"
	case SlotTextureCube:
		return "texture_cube"
	default:
		return "unknown"
	}
}

// SlotRole names what the shader reads from a binding slot. Roles let the
// binder select the right resource from a material without positional
// guesswork.
type SlotRole uint8

const (
	RoleFrameUniform SlotRole = iota
	RoleMaterialUniform
	RoleLayerSampler
	RoleLayerCube
	RoleLayerTexture
	RoleBumpTexture
	RoleReflectionCube
	RoleLightmapSampler
	RoleLightmapTexture
	RoleFogUniform
)

func (r SlotRole) String() string {
	switch r {
	case RoleFrameUniform:
		return "frame_uniform"
	case RoleMaterialUniform:
		return "material_uniform"
	case RoleLayerSampler:
		return "layer_sampler"
	case RoleLayerCube:
		return "layer_cube"
	case RoleLayerTexture:
		return "layer_texture"
	case RoleBumpTexture:
		return "bump_texture"
	case RoleReflectionCube:
		return "reflection_cube"
	case RoleLightmapSampler:
		return "lightmap_sampler"
	case RoleLightmapTexture:
		return "lightmap_texture"
	case RoleFogUniform:
		return "fog_uniform"
	default:
		return "unknown"
	}
}

// Slot is one binding in a variant's resource layout.
type Slot struct {
	// Group is the bind group index.
	Group uint32

	// Binding is the binding index within the group.
	Binding uint32

	// Kind is the resource class this slot accepts.
	Kind SlotKind

	// Role is what the shader reads from this slot.
	Role SlotRole

	// Layer is the texture layer index for RoleLayerTexture slots, -1
	// otherwise.
	Layer int

	// UniformSize is the required byte size for SlotUniformBuffer slots, 0
	// otherwise.
	UniformSize uint64
}

// ResourceLayout is the complete binding and vertex-input contract of one
// pipeline variant. Slot order and binding indices are a fixed function of the
// key; they never depend on a material's numeric contents.
type ResourceLayout struct {
	// Key is the variant this layout belongs to.
	Key Key

	// Slots are the binding slots in (group, binding) order.
	Slots []Slot

	// Vertex is the single interleaved vertex buffer layout.
	Vertex wgpu.VertexBufferLayout
}

// LayoutFor enumerates the binding slots and vertex attributes of the variant
// identified by key. Group 0 holds the per-frame uniforms at binding 0; group
// 1 holds the material uniform at binding 0, the shared sampler at binding 1,
// then textures in layer order (the chicago cube view precedes the 2D layer
// maps), then the bump/reflection pair with tangent space, the lightmap
// sampler/texture pair with lightmaps, and the fog uniform last when fogged.
//
// Parameters:
//   - key: the variant key to lay out
//
// Returns:
//   - ResourceLayout: the fixed binding and vertex contract for the key
//   - error: ErrUnsupportedShaderGroup when the group has no pipeline family
func LayoutFor(key Key) (ResourceLayout, error) {
	layout := ResourceLayout{Key: key}

	switch key.Group {
	case material.GroupEnvironment, material.GroupTransparentChicago, material.GroupModel, material.GroupFallback:
	default:
		return ResourceLayout{}, fmt.Errorf("%w: %s", ErrUnsupportedShaderGroup, key.Group)
	}

	layout.Slots = append(layout.Slots, Slot{
		Group:       0,
		Binding:     0,
		Kind:        SlotUniformBuffer,
		Role:        RoleFrameUniform,
		Layer:       -1,
		UniformSize: FrameUniformSize,
	})

	binding := uint32(0)
	push := func(kind SlotKind, role SlotRole, layer int, size uint64) {
		layout.Slots = append(layout.Slots, Slot{
			Group:       1,
			Binding:     binding,
			Kind:        kind,
			Role:        role,
			Layer:       layer,
			UniformSize: size,
		})
		binding++
	}

	push(SlotUniformBuffer, RoleMaterialUniform, -1, materialUniformSize(key.Group))

	if key.Group == material.GroupFallback {
		layout.Vertex = vertexLayoutFor(key)
		return layout, nil
	}

	push(SlotSampler, RoleLayerSampler, -1, 0)

	switch key.Group {
	case material.GroupTransparentChicago:
		// The cube view is always part of the chicago layout; the first-map
		// type uniform decides at shade time whether it or the layer 0 2D map
		// is sampled. Keeps the binding set a pure function of the key.
		push(SlotTextureCube, RoleLayerCube, 0, 0)
		for i := 0; i < int(key.LayerCount); i++ {
			push(SlotTexture2D, RoleLayerTexture, i, 0)
		}
	case material.GroupEnvironment:
		for i := 0; i < int(key.LayerCount); i++ {
			push(SlotTexture2D, RoleLayerTexture, i, 0)
		}
		if key.Flags.Has(material.CapabilityTangentSpace) {
			push(SlotTexture2D, RoleBumpTexture, -1, 0)
			push(SlotTextureCube, RoleReflectionCube, -1, 0)
		}
	case material.GroupModel:
		push(SlotTexture2D, RoleLayerTexture, 0, 0)
	}

	if key.Flags.Has(material.CapabilityLightmap) {
		push(SlotSampler, RoleLightmapSampler, -1, 0)
		push(SlotTexture2D, RoleLightmapTexture, -1, 0)
	}
	if key.Flags.Has(material.CapabilityFog) {
		push(SlotUniformBuffer, RoleFogUniform, -1, uint64((&material.GPUFogUniform{}).Size()))
	}

	layout.Vertex = vertexLayoutFor(key)
	return layout, nil
}

// materialUniformSize returns the byte size of the group-specific uniform
// block at group 1 binding 0.
func materialUniformSize(g material.ShaderGroup) uint64 {
	switch g {
	case material.GroupEnvironment:
		return uint64((&material.GPUEnvironmentUniform{}).Size())
	case material.GroupTransparentChicago:
		return uint64((&material.GPUChicagoUniform{}).Size())
	case material.GroupModel:
		return uint64((&material.GPUModelUniform{}).Size())
	default:
		return uint64((&material.GPUFallbackUniform{}).Size())
	}
}

// Vertex attribute shader locations, shared with the WGSL templates. Unused
// locations are simply absent from a variant's layout; present ones keep
// these indices so one mesh layout serves every variant it can feed.
const (
	locPosition   = 0
	locTexCoord   = 1
	locNormal     = 2
	locBinormal   = 3
	locTangent    = 4
	locLightmapUV = 5
)

// vertexLayoutFor builds the interleaved vertex buffer layout for a key:
// position always, texture coordinates for every textured group, the tangent
// basis per Key.TangentBasis, lightmap coordinates with CapabilityLightmap.
func vertexLayoutFor(key Key) wgpu.VertexBufferLayout {
	attrs := make([]wgpu.VertexAttribute, 0, 6)
	var offset uint64

	add := func(format wgpu.VertexFormat, size uint64, location uint32) {
		attrs = append(attrs, wgpu.VertexAttribute{
			Format:         format,
			Offset:         offset,
			ShaderLocation: location,
		})
		offset += size
	}

	add(wgpu.VertexFormatFloat32x3, 12, locPosition)
	if key.Group != material.GroupFallback {
		add(wgpu.VertexFormatFloat32x2, 8, locTexCoord)
	}
	if key.TangentBasis() {
		add(wgpu.VertexFormatFloat32x3, 12, locNormal)
		add(wgpu.VertexFormatFloat32x3, 12, locBinormal)
		add(wgpu.VertexFormatFloat32x3, 12, locTangent)
	}
	if key.Flags.Has(material.CapabilityLightmap) {
		add(wgpu.VertexFormatFloat32x2, 8, locLightmapUV)
	}

	return wgpu.VertexBufferLayout{
		ArrayStride: offset,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attrs,
	}
}

// BindGroupLayoutDescriptors converts the layout's slots into per-group
// wgpu bind group layout descriptors, entries sorted by binding index.
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: layout descriptors keyed by group index
func (l ResourceLayout) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	groups := make(map[int][]wgpu.BindGroupLayoutEntry)
	for _, slot := range l.Slots {
		entry := wgpu.BindGroupLayoutEntry{
			Binding:    slot.Binding,
			Visibility: slotVisibility(slot),
		}
		switch slot.Kind {
		case SlotUniformBuffer:
			entry.Buffer.Type = wgpu.BufferBindingTypeUniform
			entry.Buffer.MinBindingSize = slot.UniformSize
		case SlotSampler:
			entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
		case SlotTexture2D:
			entry.Texture.SampleType = wgpu.TextureSampleTypeFloat
			entry.Texture.ViewDimension = wgpu.TextureViewDimension2D
		case SlotTextureCube:
			entry.Texture.SampleType = wgpu.TextureSampleTypeFloat
			entry.Texture.ViewDimension = wgpu.TextureViewDimensionCube
		}
		groups[int(slot.Group)] = append(groups[int(slot.Group)], entry)
	}

	result := make(map[int]wgpu.BindGroupLayoutDescriptor, len(groups))
	for g, entries := range groups {
		result[g] = wgpu.BindGroupLayoutDescriptor{
			Label:   fmt.Sprintf("%s group %d", l.Key, g),
			Entries: entries,
		}
	}
	return result
}

// slotVisibility returns the shader stages a slot is visible to. Frame
// uniforms feed the vertex transform and the fragment fog distance; everything
// else is fragment-only.
func slotVisibility(slot Slot) wgpu.ShaderStage {
	if slot.Role == RoleFrameUniform {
		return wgpu.ShaderStageVertex | wgpu.ShaderStageFragment
	}
	return wgpu.ShaderStageFragment
}
