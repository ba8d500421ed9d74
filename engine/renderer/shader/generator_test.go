package shader

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/GlitchSlayed/magellanicus/engine/material"
	"github.com/GlitchSlayed/magellanicus/engine/permutation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bindingDeclRegex matches @group(N) @binding(M) var declarations and
// captures group, binding and variable name.
var bindingDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<[^>]*>)?\s+(\w+)\s*:`)

func mustLayout(t *testing.T, key permutation.Key) permutation.ResourceLayout {
	t.Helper()
	layout, err := permutation.LayoutFor(key)
	require.NoError(t, err)
	return layout
}

func TestGenerateDeclarationsMatchLayout(t *testing.T) {
	layout := mustLayout(t, permutation.Key{
		Group:      material.GroupTransparentChicago,
		Flags:      material.CapabilityFog,
		LayerCount: 2,
	})

	source, err := Generate(layout)
	require.NoError(t, err)

	declared := map[string]string{}
	for _, m := range bindingDeclRegex.FindAllStringSubmatch(source, -1) {
		declared[m[1]+"/"+m[2]] = m[3]
	}

	require.Len(t, declared, len(layout.Slots))
	for _, slot := range layout.Slots {
		key := fmt.Sprintf("%d/%d", slot.Group, slot.Binding)
		assert.Equal(t, BindingVarName(slot), declared[key], "slot %s", key)
	}
}

func TestGenerateEntryPoints(t *testing.T) {
	layout := mustLayout(t, permutation.FallbackKey())
	source, err := Generate(layout)
	require.NoError(t, err)

	s := NewShader(layout.Key.String(), source)
	assert.Equal(t, "vs_main", s.EntryPoint(ShaderTypeVertex))
	assert.Equal(t, "fs_main", s.EntryPoint(ShaderTypeFragment))
	assert.Equal(t, source, s.Source())
	require.NotNil(t, s.Module())
	assert.Equal(t, source, s.Module().WGSLDescriptor.Code)
}

func TestGenerateUnsupportedGroup(t *testing.T) {
	_, err := Generate(permutation.ResourceLayout{
		Key: permutation.Key{Group: material.GroupTransparentWater, LayerCount: 1},
	})
	assert.ErrorIs(t, err, permutation.ErrUnsupportedShaderGroup)
}

func TestGenerateFallbackSamplesNothing(t *testing.T) {
	source, err := Generate(mustLayout(t, permutation.FallbackKey()))
	require.NoError(t, err)

	assert.NotContains(t, source, "textureSample")
	assert.Contains(t, source, "material_uniforms.color")
}

func TestGenerateChicagoSamplesEveryLayer(t *testing.T) {
	source, err := Generate(mustLayout(t, permutation.Key{
		Group:      material.GroupTransparentChicago,
		LayerCount: 3,
	}))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		assert.Contains(t, source, fmt.Sprintf("textureSample(map%d, layer_sampler, uv%d)", i, i))
	}
	assert.NotContains(t, source, "map3")
	assert.Contains(t, source, "cube_map")
	// No fog flag: the fog uniform must not be referenced.
	assert.NotContains(t, source, "fog_uniforms")
}

func TestGenerateChicagoCubeDirectionFromTangentFrame(t *testing.T) {
	source, err := Generate(mustLayout(t, permutation.Key{
		Group:      material.GroupTransparentChicago,
		LayerCount: 2,
	}))
	require.NoError(t, err)

	// The tangent frame rides the vertex stream even without the explicit
	// tangent-space capability flag.
	for _, want := range []string{
		"@location(2) normal: vec3<f32>",
		"@location(3) binormal: vec3<f32>",
		"@location(4) tangent: vec3<f32>",
		"out.tangent = in.tangent;",
	} {
		assert.Contains(t, source, want)
	}

	// The cube direction is the reference vector rotated through the tangent
	// frame with layer 0's uv transform applied in direction space, not a
	// camera-relative view vector.
	assert.Contains(t, source, "let tangent_frame = mat3x3<f32>(normalize(in.tangent), normalize(in.binormal), normalize(in.normal));")
	assert.Contains(t, source, "let ref_dir = tangent_frame * vec3<f32>(0.0, 0.0, 1.0);")
	assert.Contains(t, source, "let cube_dir = ref_dir * vec3<f32>(material_uniforms.maps[0].uv_scale, 1.0) + vec3<f32>(material_uniforms.maps[0].uv_offset, 0.0);")
	assert.Contains(t, source, "textureSample(cube_map, layer_sampler, normalize(cube_dir))")
	assert.NotContains(t, source, "frame_uniforms.camera_position")
}

func TestGenerateEnvironmentOmitsAbsentFeatures(t *testing.T) {
	source, err := Generate(mustLayout(t, permutation.Key{
		Group:      material.GroupEnvironment,
		LayerCount: 2,
	}))
	require.NoError(t, err)

	assert.NotContains(t, source, "lightmap_texture")
	assert.NotContains(t, source, "bump_map")
	assert.NotContains(t, source, "reflection_cube")
	// Base and primary detail sampled, the rest neutral.
	assert.Contains(t, source, "textureSample(map1, layer_sampler, in.uv * material_uniforms.primary_detail_scale)")
	assert.Contains(t, source, "let secondary_detail = vec4<f32>(0.5, 0.5, 0.5, 1.0);")
}

func TestGenerateEnvironmentFullFeatures(t *testing.T) {
	source, err := Generate(mustLayout(t, permutation.Key{
		Group:      material.GroupEnvironment,
		Flags:      material.CapabilityTangentSpace | material.CapabilityLightmap | material.CapabilityFog,
		LayerCount: 4,
	}))
	require.NoError(t, err)

	for _, want := range []string{
		"@location(2) normal: vec3<f32>",
		"@location(3) binormal: vec3<f32>",
		"@location(4) tangent: vec3<f32>",
		"@location(5) lightmap_uv: vec2<f32>",
		"textureSample(lightmap_texture, lightmap_sampler, in.lightmap_uv)",
		"reflect(view_dir, normal)",
		"fog_density(fog_uniforms",
	} {
		assert.Contains(t, source, want)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	layout := mustLayout(t, permutation.Key{
		Group:      material.GroupTransparentChicago,
		Flags:      material.CapabilityFog,
		LayerCount: 4,
	})
	a, err := Generate(layout)
	require.NoError(t, err)
	b, err := Generate(layout)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGenerateIncludesFamilyLibraries(t *testing.T) {
	chicago, err := Generate(mustLayout(t, permutation.Key{
		Group:      material.GroupTransparentChicago,
		LayerCount: 1,
	}))
	require.NoError(t, err)
	assert.Contains(t, chicago, "fn chicago_combine")
	assert.Contains(t, chicago, "fn combine(")
	assert.Equal(t, 1, strings.Count(chicago, "struct ChicagoUniforms"))

	env, err := Generate(mustLayout(t, permutation.Key{
		Group:      material.GroupEnvironment,
		LayerCount: 1,
	}))
	require.NoError(t, err)
	assert.Contains(t, env, "fn environment_color")
	assert.NotContains(t, env, "chicago_combine")
}
