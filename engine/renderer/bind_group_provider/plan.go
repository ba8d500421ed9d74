package bind_group_provider

import (
	"fmt"

	"github.com/GlitchSlayed/magellanicus/common"
	"github.com/GlitchSlayed/magellanicus/engine/material"
	"github.com/GlitchSlayed/magellanicus/engine/permutation"
	"github.com/cogentcore/webgpu/wgpu"
)

// LayoutMismatchError is returned by Plan when a material's resolved shape
// diverges from the layout it is being bound against. It is a programming or
// data error; the scheduler treats it as fatal for the draw, not the frame.
type LayoutMismatchError struct {
	// Material is the name of the offending material.
	Material string

	// Slot is the layout slot that could not be satisfied. Zero when the
	// mismatch is at the key level.
	Slot permutation.Slot

	// Reason describes the divergence.
	Reason string
}

func (e *LayoutMismatchError) Error() string {
	return fmt.Sprintf("material %q does not satisfy layout slot %d/%d (%s): %s",
		e.Material, e.Slot.Group, e.Slot.Binding, e.Slot.Role, e.Reason)
}

// PlannedBinding assigns one layout slot the CPU-side resource that will back
// it: uniform bytes to upload, texture staging data, or a sampler
// configuration. Exactly one of the resource fields is set, matched to the
// slot's kind; the frame uniform slot carries nothing because the renderer
// owns that buffer.
type PlannedBinding struct {
	Slot        permutation.Slot
	UniformData []byte
	Texture     *common.TextureStagingData
	Sampler     *common.SamplerStagingData
}

// BindingPlan is the validated, GPU-free description of how one material
// fills one variant layout. The renderer realizes it into providers; tests
// inspect it directly.
type BindingPlan struct {
	// Material is the planned material's name.
	Material string

	// Key is the variant the plan binds against.
	Key permutation.Key

	// Bindings covers every slot of the layout, in slot order.
	Bindings []PlannedBinding
}

// placeholder staging for layout slots the material has no data for: the
// chicago layout always carries both a cube and a 2D view of layer 0, and
// only one of them is real.
var (
	whitePixel    = []byte{0xff, 0xff, 0xff, 0xff}
	placeholder2D = common.TextureStagingData{
		Pixels: whitePixel,
		Width:  1,
		Height: 1,
		Layers: 1,
	}
	placeholderCube = common.TextureStagingData{
		Pixels: repeatPixels(whitePixel, 6),
		Width:  1,
		Height: 1,
		Layers: 6,
		Cube:   true,
	}
)

func repeatPixels(p []byte, n int) []byte {
	out := make([]byte, 0, len(p)*n)
	for i := 0; i < n; i++ {
		out = append(out, p...)
	}
	return out
}

// defaultSampler is the repeat-addressed trilinear sampler every layer stack
// samples with.
var defaultSampler = common.SamplerStagingData{
	AddressModeU:  wgpu.AddressModeRepeat,
	AddressModeV:  wgpu.AddressModeRepeat,
	AddressModeW:  wgpu.AddressModeRepeat,
	MagFilter:     wgpu.FilterModeLinear,
	MinFilter:     wgpu.FilterModeLinear,
	MipmapFilter:  wgpu.MipmapFilterModeLinear,
	LodMaxClamp:   32,
	MaxAnisotropy: 1,
}

// Plan validates a material against a variant layout and assigns every slot
// its backing resource. The material must resolve to the layout's key, except
// when binding against the fallback layout, which accepts any material.
//
// Parameters:
//   - m: the material to bind
//   - layout: the variant layout to bind against
//
// Returns:
//   - BindingPlan: the per-slot resource assignments
//   - error: a *LayoutMismatchError describing the first divergence, or nil
func Plan(m material.Material, layout permutation.ResourceLayout) (BindingPlan, error) {
	plan := BindingPlan{
		Material: m.Name(),
		Key:      layout.Key,
	}

	if layout.Key.Group != material.GroupFallback {
		if resolved := permutation.Resolve(m); resolved != layout.Key {
			return BindingPlan{}, &LayoutMismatchError{
				Material: m.Name(),
				Reason:   fmt.Sprintf("material resolves to %s, layout is %s", resolved, layout.Key),
			}
		}
	}

	layers := m.Layers()
	for _, slot := range layout.Slots {
		binding := PlannedBinding{Slot: slot}

		switch slot.Role {
		case permutation.RoleFrameUniform:
			// Owned by the renderer's per-frame ring.

		case permutation.RoleMaterialUniform:
			binding.UniformData = materialUniformData(m, layout.Key.Group)
			if uint64(len(binding.UniformData)) != slot.UniformSize {
				return BindingPlan{}, mismatch(m, slot, fmt.Sprintf("uniform is %d bytes, slot wants %d", len(binding.UniformData), slot.UniformSize))
			}

		case permutation.RoleLayerSampler, permutation.RoleLightmapSampler:
			if slot.Role == permutation.RoleLightmapSampler && m.Lightmap() == nil {
				return BindingPlan{}, mismatch(m, slot, "material has no lightmap")
			}
			s := defaultSampler
			binding.Sampler = &s

		case permutation.RoleLayerTexture:
			if slot.Layer >= len(layers) {
				return BindingPlan{}, mismatch(m, slot, fmt.Sprintf("material declares %d layers", len(layers)))
			}
			layer := layers[slot.Layer]
			if layer.SamplingMode == material.SamplingCubemap {
				// The real data lives behind the cube slot; keep the 2D view
				// bindable.
				binding.Texture = &placeholder2D
			} else {
				if layer.Texture.Cube {
					return BindingPlan{}, mismatch(m, slot, "planar layer carries cube staging data")
				}
				t := layer.Texture
				binding.Texture = &t
			}

		case permutation.RoleLayerCube:
			if len(layers) > 0 && layers[0].SamplingMode == material.SamplingCubemap {
				if !layers[0].Texture.Cube {
					return BindingPlan{}, mismatch(m, slot, "cubemap layer carries planar staging data")
				}
				t := layers[0].Texture
				binding.Texture = &t
			} else {
				binding.Texture = &placeholderCube
			}

		case permutation.RoleBumpTexture:
			env := m.Environment()
			if env == nil {
				return BindingPlan{}, mismatch(m, slot, "material has no environment parameters")
			}
			t := env.BumpMap
			binding.Texture = &t

		case permutation.RoleReflectionCube:
			env := m.Environment()
			if env == nil {
				return BindingPlan{}, mismatch(m, slot, "material has no environment parameters")
			}
			if !env.ReflectionCube.Cube {
				return BindingPlan{}, mismatch(m, slot, "reflection map is not a cube")
			}
			t := env.ReflectionCube
			binding.Texture = &t

		case permutation.RoleLightmapTexture:
			lightmap := m.Lightmap()
			if lightmap == nil {
				return BindingPlan{}, mismatch(m, slot, "material has no lightmap")
			}
			binding.Texture = lightmap

		case permutation.RoleFogUniform:
			profile := m.FogProfile()
			if profile == nil {
				return BindingPlan{}, mismatch(m, slot, "material has no fog profile")
			}
			u := material.BuildFogUniform(profile)
			binding.UniformData = u.Marshal()
		}

		plan.Bindings = append(plan.Bindings, binding)
	}

	return plan, nil
}

func mismatch(m material.Material, slot permutation.Slot, reason string) *LayoutMismatchError {
	return &LayoutMismatchError{Material: m.Name(), Slot: slot, Reason: reason}
}

// materialUniformData marshals the group-specific uniform block. Fallback
// plans get solid magenta so substituted draws are visible.
func materialUniformData(m material.Material, g material.ShaderGroup) []byte {
	switch g {
	case material.GroupEnvironment:
		u := material.BuildEnvironmentUniform(m)
		return u.Marshal()
	case material.GroupTransparentChicago:
		u := material.BuildChicagoUniform(m)
		return u.Marshal()
	case material.GroupModel:
		u := material.GPUModelUniform{BaseColor: [4]float32{1, 1, 1, 1}}
		return u.Marshal()
	default:
		u := material.GPUFallbackUniform{Color: [4]float32{1, 0, 1, 1}}
		return u.Marshal()
	}
}
