package bind_group_provider

import (
	"errors"
	"fmt"
	"testing"

	"github.com/GlitchSlayed/magellanicus/common"
	"github.com/GlitchSlayed/magellanicus/engine/fog"
	"github.com/GlitchSlayed/magellanicus/engine/material"
	"github.com/GlitchSlayed/magellanicus/engine/permutation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planarStaging() common.TextureStagingData {
	return common.TextureStagingData{
		Pixels: make([]byte, 4*4*4),
		Width:  4,
		Height: 4,
		Layers: 1,
	}
}

func cubeStaging() common.TextureStagingData {
	return common.TextureStagingData{
		Pixels: make([]byte, 4*4*4*6),
		Width:  4,
		Height: 4,
		Layers: 6,
		Cube:   true,
	}
}

func chicagoMaterial(t *testing.T, layers int, opts ...material.MaterialOption) material.Material {
	t.Helper()
	stack := make([]material.TextureLayer, layers)
	for i := range stack {
		stack[i] = material.TextureLayer{
			UVScale:       [2]float32{1, 1},
			ColorFunction: material.CombineMultiply,
			AlphaFunction: material.CombineCurrent,
			Texture:       planarStaging(),
		}
	}
	opts = append([]material.MaterialOption{material.WithLayers(stack...)}, opts...)
	m, err := material.New("test/chicago", material.GroupTransparentChicago, opts...)
	require.NoError(t, err)
	return m
}

func layoutFor(t *testing.T, m material.Material) permutation.ResourceLayout {
	t.Helper()
	layout, err := permutation.LayoutFor(permutation.Resolve(m))
	require.NoError(t, err)
	return layout
}

func TestPlanCoversEverySlot(t *testing.T) {
	m := chicagoMaterial(t, 2)
	layout := layoutFor(t, m)

	plan, err := Plan(m, layout)
	require.NoError(t, err)

	require.Len(t, plan.Bindings, len(layout.Slots))
	for i, b := range plan.Bindings {
		assert.Equal(t, layout.Slots[i], b.Slot, "binding %d", i)
		switch b.Slot.Kind {
		case permutation.SlotUniformBuffer:
			if b.Slot.Role != permutation.RoleFrameUniform {
				assert.Len(t, b.UniformData, int(b.Slot.UniformSize), "binding %d", i)
			}
		case permutation.SlotSampler:
			assert.NotNil(t, b.Sampler, "binding %d", i)
		case permutation.SlotTexture2D, permutation.SlotTextureCube:
			assert.NotNil(t, b.Texture, "binding %d", i)
		}
	}
}

func TestPlanKeyMismatch(t *testing.T) {
	m := chicagoMaterial(t, 2)
	// Layout resolved for a different layer count.
	layout, err := permutation.LayoutFor(permutation.Key{
		Group:      material.GroupTransparentChicago,
		LayerCount: 3,
	})
	require.NoError(t, err)

	_, err = Plan(m, layout)
	var mismatch *LayoutMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "test/chicago", mismatch.Material)
	assert.Contains(t, mismatch.Reason, "resolves to")
}

func TestPlanLightmapFlagWithoutData(t *testing.T) {
	// The lightmap capability can be forced without lightmap staging data;
	// the mismatch must surface at bind time.
	m := chicagoMaterial(t, 1, material.WithCapabilities(material.CapabilityLightmap))
	layout := layoutFor(t, m)

	_, err := Plan(m, layout)
	var mismatch *LayoutMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Contains(t, mismatch.Reason, "no lightmap")
}

func TestPlanCubeFirstLayer(t *testing.T) {
	stack := []material.TextureLayer{
		{
			SamplingMode:  material.SamplingCubemap,
			ColorFunction: material.CombineCurrent,
			AlphaFunction: material.CombineCurrent,
			Texture:       cubeStaging(),
		},
		{
			UVScale:       [2]float32{1, 1},
			ColorFunction: material.CombineAdd,
			AlphaFunction: material.CombineCurrent,
			Texture:       planarStaging(),
		},
	}
	m, err := material.New("test/cube", material.GroupTransparentChicago, material.WithLayers(stack...))
	require.NoError(t, err)

	plan, err := Plan(m, layoutFor(t, m))
	require.NoError(t, err)

	byRole := map[string]PlannedBinding{}
	for _, b := range plan.Bindings {
		byRole[fmt.Sprintf("%s/%d", b.Slot.Role, b.Slot.Layer)] = b
	}

	// The cube slot carries the real staging data; the layer 0 2D slot gets
	// the placeholder so the bind group stays complete.
	cube := byRole["layer_cube/0"]
	require.NotNil(t, cube.Texture)
	assert.True(t, cube.Texture.Cube)
	assert.Equal(t, uint32(6), cube.Texture.Layers)

	flat := byRole["layer_texture/0"]
	require.NotNil(t, flat.Texture)
	assert.False(t, flat.Texture.Cube)
	assert.Equal(t, uint32(1), flat.Texture.Width)
}

func TestPlanPlanarFirstLayerGetsPlaceholderCube(t *testing.T) {
	m := chicagoMaterial(t, 1)
	plan, err := Plan(m, layoutFor(t, m))
	require.NoError(t, err)

	for _, b := range plan.Bindings {
		if b.Slot.Role == permutation.RoleLayerCube {
			require.NotNil(t, b.Texture)
			assert.True(t, b.Texture.Cube)
			assert.Equal(t, uint32(1), b.Texture.Width)
		}
	}
}

func TestPlanFogUniform(t *testing.T) {
	profile := &fog.Profile{
		SkyColor:   [4]float32{0.2, 0.3, 0.5, 1},
		FadeStart:  10,
		FadeEnd:    200,
		MaxOpacity: 0.8,
		Model:      fog.ModelPolynomial,
	}
	m := chicagoMaterial(t, 1, material.WithFogProfile(profile))
	plan, err := Plan(m, layoutFor(t, m))
	require.NoError(t, err)

	found := false
	for _, b := range plan.Bindings {
		if b.Slot.Role == permutation.RoleFogUniform {
			found = true
			assert.Len(t, b.UniformData, 48)
		}
	}
	assert.True(t, found)
}

func TestPlanFallbackAcceptsAnyMaterial(t *testing.T) {
	m := chicagoMaterial(t, 3)
	layout, err := permutation.LayoutFor(permutation.FallbackKey())
	require.NoError(t, err)

	plan, err := Plan(m, layout)
	require.NoError(t, err)
	require.Len(t, plan.Bindings, 2)
	assert.Len(t, plan.Bindings[1].UniformData, 16)
}

func TestFrameRing(t *testing.T) {
	ring, err := NewFrameRing(3, func(slot int) (BindGroupProvider, error) {
		return NewBindGroupProvider(fmt.Sprintf("frame-%d", slot)), nil
	})
	require.NoError(t, err)

	assert.Equal(t, 3, ring.Len())
	assert.Equal(t, "frame-0", ring.Provider(0).Label())
	assert.Equal(t, "frame-1", ring.Provider(1).Label())
	assert.Equal(t, "frame-0", ring.Provider(3).Label())
	assert.Same(t, ring.Provider(2), ring.Provider(5))
}

func TestFrameRingRejectsEmpty(t *testing.T) {
	_, err := NewFrameRing(0, func(int) (BindGroupProvider, error) {
		return NewBindGroupProvider(""), nil
	})
	assert.Error(t, err)
}
