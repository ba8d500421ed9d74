package material

import (
	"testing"

	"github.com/GlitchSlayed/magellanicus/engine/fog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chicagoLayers(n int) []TextureLayer {
	layers := make([]TextureLayer, n)
	for i := range layers {
		layers[i] = TextureLayer{
			UVScale:       [2]float32{1, 1},
			ColorFunction: CombineMultiply,
			AlphaFunction: CombineCurrent,
		}
	}
	return layers
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		group   ShaderGroup
		options []MaterialOption
		wantErr error
	}{
		{
			name:  "valid chicago",
			group: GroupTransparentChicago,
			options: []MaterialOption{
				WithLayers(chicagoLayers(2)...),
			},
		},
		{
			name:    "unknown group",
			group:   ShaderGroup(200),
			wantErr: ErrUnknownShaderGroup,
		},
		{
			name:  "too many layers",
			group: GroupTransparentChicago,
			options: []MaterialOption{
				WithLayers(chicagoLayers(5)...),
			},
			wantErr: ErrTooManyLayers,
		},
		{
			name:    "transparent with no layers",
			group:   GroupTransparentChicago,
			wantErr: ErrNoLayers,
		},
		{
			name:  "cubemap past layer zero",
			group: GroupTransparentChicago,
			options: []MaterialOption{
				WithLayers(
					TextureLayer{ColorFunction: CombineCurrent, AlphaFunction: CombineCurrent},
					TextureLayer{SamplingMode: SamplingCubemap, ColorFunction: CombineCurrent, AlphaFunction: CombineCurrent},
				),
			},
			wantErr: ErrCubemapAfterFirstLayer,
		},
		{
			name:  "unknown combine function",
			group: GroupTransparentChicago,
			options: []MaterialOption{
				WithLayers(TextureLayer{ColorFunction: CombineFunction(99), AlphaFunction: CombineCurrent}),
			},
			wantErr: ErrUnknownCombineFunction,
		},
		{
			name:  "fog capability without profile",
			group: GroupTransparentChicago,
			options: []MaterialOption{
				WithLayers(chicagoLayers(1)...),
				WithCapabilities(CapabilityFog),
			},
			wantErr: ErrMissingFogProfile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.name, tt.group, tt.options...)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, m)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, m)
		})
	}
}

func TestCubemapFirstLayerAllowed(t *testing.T) {
	m, err := New("glow", GroupTransparentChicago, WithLayers(
		TextureLayer{SamplingMode: SamplingCubemap, ColorFunction: CombineCurrent, AlphaFunction: CombineCurrent},
		TextureLayer{ColorFunction: CombineAdd, AlphaFunction: CombineCurrent},
	))
	require.NoError(t, err)
	assert.Equal(t, SamplingCubemap, m.Layers()[0].SamplingMode)
}

func TestPremultiplyDerivedFromFramebufferFunction(t *testing.T) {
	for fb, want := range map[FramebufferFunction]bool{
		FramebufferAlphaBlend: false,
		FramebufferMultiply:   false,
		FramebufferAdd:        true,
		FramebufferSubtract:   true,
	} {
		m, err := New("fb", GroupTransparentChicago,
			WithLayers(chicagoLayers(1)...),
			WithFramebufferFunction(fb),
		)
		require.NoError(t, err)
		assert.Equal(t, want, m.Capabilities().Has(CapabilityPremultipliedAlpha), "framebuffer %v", fb)
	}
}

func TestAlphaReplicateMask(t *testing.T) {
	layers := chicagoLayers(4)
	layers[0].AlphaReplicate = true
	layers[2].AlphaReplicate = true

	m, err := New("mask", GroupTransparentChicago, WithLayers(layers...))
	require.NoError(t, err)
	assert.Equal(t, uint32(0b0101), m.AlphaReplicateMask())
}

func TestFogProfileImpliesCapability(t *testing.T) {
	profile := &fog.Profile{FadeStart: 0, FadeEnd: 100, MaxOpacity: 1}
	m, err := New("foggy", GroupTransparentChicago,
		WithLayers(chicagoLayers(1)...),
		WithFogProfile(profile),
	)
	require.NoError(t, err)
	assert.True(t, m.Capabilities().Has(CapabilityFog))
	assert.Same(t, profile, m.FogProfile())
}

func TestBuildChicagoUniform(t *testing.T) {
	layers := chicagoLayers(2)
	layers[0].SamplingMode = SamplingCubemap
	layers[0].UVOffset = [2]float32{0.25, 0.5}
	layers[1].AlphaReplicate = true

	m, err := New("u", GroupTransparentChicago,
		WithLayers(layers...),
		WithFramebufferFunction(FramebufferAdd),
	)
	require.NoError(t, err)

	g := BuildChicagoUniform(m)
	assert.Equal(t, uint32(SamplingCubemap), g.FirstMapType)
	assert.Equal(t, uint32(2), g.MapCount)
	assert.Equal(t, uint32(1), g.Premultiply)
	assert.Equal(t, uint32(0b10), g.AlphaReplicate)
	assert.Equal(t, [2]float32{0.25, 0.5}, g.Maps[0].UVOffset)
	// Undeclared layers stay zeroed.
	assert.Equal(t, GPULayerTransform{}, g.Maps[3])
}

func TestUniformMarshalSizes(t *testing.T) {
	chicago := GPUChicagoUniform{}
	assert.Equal(t, 144, chicago.Size())
	assert.Len(t, chicago.Marshal(), 144)

	env := GPUEnvironmentUniform{}
	assert.Equal(t, 64, env.Size())
	assert.Len(t, env.Marshal(), 64)

	f := GPUFogUniform{}
	assert.Equal(t, 48, f.Size())
	assert.Len(t, f.Marshal(), 48)
}
