package shader

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/GlitchSlayed/magellanicus/engine/material"
	"github.com/GlitchSlayed/magellanicus/engine/permutation"
)

//go:embed wgsl/common.wgsl
var commonSource string

//go:embed wgsl/environment.wgsl
var environmentSource string

//go:embed wgsl/transparent_chicago.wgsl
var chicagoSource string

//go:embed wgsl/model.wgsl
var modelSource string

//go:embed wgsl/fallback.wgsl
var fallbackSource string

// Generate assembles the complete WGSL source for one pipeline variant: the
// shared library, the family library, the binding declarations derived from
// the layout's slots, and the stage entry points. Binding indices in the
// generated source always agree with the layout because both come from the
// same slots.
//
// Parameters:
//   - layout: the resolved binding and vertex contract to generate against
//
// Returns:
//   - string: the complete WGSL source
//   - error: an error when the key's group has no family source
func Generate(layout permutation.ResourceLayout) (string, error) {
	family, err := familySource(layout.Key.Group)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(commonSource)
	b.WriteString("\n")
	b.WriteString(family)
	b.WriteString("\n")

	writeDeclarations(&b, layout)
	writeVertexIO(&b, layout.Key)
	writeVertexMain(&b, layout.Key)
	writeFragmentMain(&b, layout)

	return b.String(), nil
}

func familySource(g material.ShaderGroup) (string, error) {
	switch g {
	case material.GroupEnvironment:
		return environmentSource, nil
	case material.GroupTransparentChicago:
		return chicagoSource, nil
	case material.GroupModel:
		return modelSource, nil
	case material.GroupFallback:
		return fallbackSource, nil
	default:
		return "", fmt.Errorf("%w: %s", permutation.ErrUnsupportedShaderGroup, g)
	}
}

// BindingVarName returns the WGSL variable name the generator declares for a
// slot. The binder and tests use it to correlate slots with source.
//
// Parameters:
//   - slot: the layout slot to name
//
// Returns:
//   - string: the generated variable name
func BindingVarName(slot permutation.Slot) string {
	switch slot.Role {
	case permutation.RoleFrameUniform:
		return "frame_uniforms"
	case permutation.RoleMaterialUniform:
		return "material_uniforms"
	case permutation.RoleLayerSampler:
		return "layer_sampler"
	case permutation.RoleLayerCube:
		return "cube_map"
	case permutation.RoleLayerTexture:
		return fmt.Sprintf("map%d", slot.Layer)
	case permutation.RoleBumpTexture:
		return "bump_map"
	case permutation.RoleReflectionCube:
		return "reflection_cube"
	case permutation.RoleLightmapSampler:
		return "lightmap_sampler"
	case permutation.RoleLightmapTexture:
		return "lightmap_texture"
	case permutation.RoleFogUniform:
		return "fog_uniforms"
	default:
		return fmt.Sprintf("binding_%d_%d", slot.Group, slot.Binding)
	}
}

func materialUniformType(g material.ShaderGroup) string {
	switch g {
	case material.GroupEnvironment:
		return "EnvironmentUniforms"
	case material.GroupTransparentChicago:
		return "ChicagoUniforms"
	case material.GroupModel:
		return "ModelUniforms"
	default:
		return "FallbackUniforms"
	}
}

func writeDeclarations(b *strings.Builder, layout permutation.ResourceLayout) {
	for _, slot := range layout.Slots {
		name := BindingVarName(slot)
		switch slot.Kind {
		case permutation.SlotUniformBuffer:
			varType := "FogUniforms"
			switch slot.Role {
			case permutation.RoleFrameUniform:
				varType = "FrameUniforms"
			case permutation.RoleMaterialUniform:
				varType = materialUniformType(layout.Key.Group)
			}
			fmt.Fprintf(b, "@group(%d) @binding(%d) var<uniform> %s: %s;\n", slot.Group, slot.Binding, name, varType)
		case permutation.SlotSampler:
			fmt.Fprintf(b, "@group(%d) @binding(%d) var %s: sampler;\n", slot.Group, slot.Binding, name)
		case permutation.SlotTexture2D:
			fmt.Fprintf(b, "@group(%d) @binding(%d) var %s: texture_2d<f32>;\n", slot.Group, slot.Binding, name)
		case permutation.SlotTextureCube:
			fmt.Fprintf(b, "@group(%d) @binding(%d) var %s: texture_cube<f32>;\n", slot.Group, slot.Binding, name)
		}
	}
	b.WriteString("\n")
}

func writeVertexIO(b *strings.Builder, key permutation.Key) {
	b.WriteString("struct VertexInput {\n")
	b.WriteString("    @location(0) position: vec3<f32>,\n")
	if key.Group != material.GroupFallback {
		b.WriteString("    @location(1) uv: vec2<f32>,\n")
	}
	if key.TangentBasis() {
		b.WriteString("    @location(2) normal: vec3<f32>,\n")
		b.WriteString("    @location(3) binormal: vec3<f32>,\n")
		b.WriteString("    @location(4) tangent: vec3<f32>,\n")
	}
	if key.Flags.Has(material.CapabilityLightmap) {
		b.WriteString("    @location(5) lightmap_uv: vec2<f32>,\n")
	}
	b.WriteString("};\n\n")

	b.WriteString("struct VertexOutput {\n")
	b.WriteString("    @builtin(position) clip_position: vec4<f32>,\n")
	b.WriteString("    @location(0) world_position: vec3<f32>,\n")
	if key.Group != material.GroupFallback {
		b.WriteString("    @location(1) uv: vec2<f32>,\n")
	}
	if key.TangentBasis() {
		b.WriteString("    @location(2) normal: vec3<f32>,\n")
		b.WriteString("    @location(3) binormal: vec3<f32>,\n")
		b.WriteString("    @location(4) tangent: vec3<f32>,\n")
	}
	if key.Flags.Has(material.CapabilityLightmap) {
		b.WriteString("    @location(5) lightmap_uv: vec2<f32>,\n")
	}
	b.WriteString("};\n\n")
}

func writeVertexMain(b *strings.Builder, key permutation.Key) {
	b.WriteString("@vertex\n")
	b.WriteString("fn vs_main(in: VertexInput) -> VertexOutput {\n")
	b.WriteString("    var out: VertexOutput;\n")
	b.WriteString("    let world = in.position + frame_uniforms.world_offset.xyz;\n")
	b.WriteString("    out.clip_position = frame_uniforms.view_projection * vec4<f32>(world, 1.0);\n")
	b.WriteString("    out.world_position = world;\n")
	if key.Group != material.GroupFallback {
		b.WriteString("    out.uv = in.uv;\n")
	}
	if key.TangentBasis() {
		b.WriteString("    out.normal = in.normal;\n")
		b.WriteString("    out.binormal = in.binormal;\n")
		b.WriteString("    out.tangent = in.tangent;\n")
	}
	if key.Flags.Has(material.CapabilityLightmap) {
		b.WriteString("    out.lightmap_uv = in.lightmap_uv;\n")
	}
	b.WriteString("    return out;\n")
	b.WriteString("}\n\n")
}

func writeFragmentMain(b *strings.Builder, layout permutation.ResourceLayout) {
	key := layout.Key
	b.WriteString("@fragment\n")
	b.WriteString("fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {\n")

	switch key.Group {
	case material.GroupFallback:
		b.WriteString("    return material_uniforms.color;\n")
	case material.GroupModel:
		b.WriteString("    let diffuse = textureSample(map0, layer_sampler, in.uv);\n")
		b.WriteString("    var color = model_color(material_uniforms, diffuse);\n")
		writeOpaqueFog(b, key)
		b.WriteString("    return color;\n")
	case material.GroupTransparentChicago:
		writeChicagoFragment(b, key)
	case material.GroupEnvironment:
		writeEnvironmentFragment(b, key)
	}

	b.WriteString("}\n")
}

// writeOpaqueFog mixes an opaque fragment toward the sky color by density.
func writeOpaqueFog(b *strings.Builder, key permutation.Key) {
	if !key.Flags.Has(material.CapabilityFog) {
		return
	}
	b.WriteString("    let density = fog_density(fog_uniforms, distance(in.world_position, frame_uniforms.camera_position.xyz));\n")
	b.WriteString("    color = vec4<f32>(mix(color.rgb, fog_uniforms.sky_color.rgb, density), color.a);\n")
}

func writeChicagoFragment(b *strings.Builder, key permutation.Key) {
	b.WriteString("    var samples: array<vec4<f32>, 4>;\n")
	for i := 0; i < int(key.LayerCount); i++ {
		fmt.Fprintf(b, "    let uv%d = in.uv * material_uniforms.maps[%d].uv_scale + material_uniforms.maps[%d].uv_offset;\n", i, i, i)
		fmt.Fprintf(b, "    samples[%d] = textureSample(map%d, layer_sampler, uv%d);\n", i, i, i)
	}
	// The cube is sampled unconditionally to keep control flow uniform; the
	// first-map type selects which sample wins. The sample direction is the
	// fixed reference vector rotated through the fragment's tangent frame,
	// with layer 0's uv transform applied in direction space.
	b.WriteString("    let tangent_frame = mat3x3<f32>(normalize(in.tangent), normalize(in.binormal), normalize(in.normal));\n")
	b.WriteString("    let ref_dir = tangent_frame * vec3<f32>(0.0, 0.0, 1.0);\n")
	b.WriteString("    let cube_dir = ref_dir * vec3<f32>(material_uniforms.maps[0].uv_scale, 1.0) + vec3<f32>(material_uniforms.maps[0].uv_offset, 0.0);\n")
	b.WriteString("    let cube_sample = textureSample(cube_map, layer_sampler, normalize(cube_dir));\n")
	b.WriteString("    if material_uniforms.first_map_type == 1u {\n")
	b.WriteString("        samples[0] = cube_sample;\n")
	b.WriteString("    }\n")
	b.WriteString("    var color = chicago_combine(material_uniforms, samples);\n")
	if key.Flags.Has(material.CapabilityFog) {
		b.WriteString("    let density = fog_density(fog_uniforms, distance(in.world_position, frame_uniforms.camera_position.xyz));\n")
		b.WriteString("    color = chicago_fog(material_uniforms, color, density);\n")
	}
	b.WriteString("    return clamp(color, vec4<f32>(0.0), vec4<f32>(1.0));\n")
}

func writeEnvironmentFragment(b *strings.Builder, key permutation.Key) {
	b.WriteString("    let base = textureSample(map0, layer_sampler, in.uv);\n")

	neutral := "vec4<f32>(0.5, 0.5, 0.5, 1.0)"
	for i, name := range []string{"primary_detail", "secondary_detail", "micro_detail"} {
		layer := i + 1
		if layer < int(key.LayerCount) {
			fmt.Fprintf(b, "    let %s = textureSample(map%d, layer_sampler, in.uv * material_uniforms.%s_scale);\n", name, layer, name)
		} else {
			fmt.Fprintf(b, "    let %s = %s;\n", name, neutral)
		}
	}

	if key.Flags.Has(material.CapabilityTangentSpace) {
		b.WriteString("    let bump = textureSample(bump_map, layer_sampler, in.uv * material_uniforms.bump_scale).xyz * 2.0 - 1.0;\n")
		b.WriteString("    let normal = normalize(bump.x * in.tangent + bump.y * in.binormal + bump.z * in.normal);\n")
		b.WriteString("    let view_dir = normalize(in.world_position - frame_uniforms.camera_position.xyz);\n")
		b.WriteString("    let reflection = textureSample(reflection_cube, layer_sampler, reflect(view_dir, normal));\n")
		b.WriteString("    let facing = dot(-view_dir, normal);\n")
	} else {
		b.WriteString("    let reflection = vec4<f32>(0.0);\n")
		b.WriteString("    let facing = 1.0;\n")
	}

	if key.Flags.Has(material.CapabilityLightmap) {
		b.WriteString("    let lightmap = textureSample(lightmap_texture, lightmap_sampler, in.lightmap_uv).rgb;\n")
	} else {
		b.WriteString("    let lightmap = vec3<f32>(1.0);\n")
	}

	b.WriteString("    var color = environment_color(material_uniforms, base, primary_detail, secondary_detail, micro_detail, reflection, lightmap, facing);\n")
	writeOpaqueFog(b, key)
	b.WriteString("    return color;\n")
}
