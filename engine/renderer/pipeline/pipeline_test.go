package pipeline

import (
	"testing"

	"github.com/GlitchSlayed/magellanicus/engine/material"
	"github.com/GlitchSlayed/magellanicus/engine/permutation"
	"github.com/GlitchSlayed/magellanicus/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildPipeline(t *testing.T, key permutation.Key, opts ...PipelineBuilderOption) Pipeline {
	t.Helper()
	layout, err := permutation.LayoutFor(key)
	require.NoError(t, err)
	source, err := shader.Generate(layout)
	require.NoError(t, err)
	return NewPipeline(layout, shader.NewShader(key.String(), source), opts...)
}

func TestOpaqueDefaults(t *testing.T) {
	p := buildPipeline(t, permutation.Key{Group: material.GroupModel, LayerCount: 1})

	assert.True(t, p.DepthTestEnabled())
	assert.True(t, p.DepthWriteEnabled())
	assert.False(t, p.BlendEnabled())
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, p.Topology())
	assert.Equal(t, wgpu.ColorWriteMaskAll, p.WriteMask())
}

func TestTransparentDefaults(t *testing.T) {
	p := buildPipeline(t, permutation.Key{
		Group:       material.GroupTransparentChicago,
		LayerCount:  1,
		Framebuffer: material.FramebufferAdd,
	})

	assert.True(t, p.DepthTestEnabled())
	assert.False(t, p.DepthWriteEnabled())
	assert.True(t, p.BlendEnabled())
	require.NotNil(t, p.BlendState())
	assert.Equal(t, wgpu.BlendFactorOne, p.BlendState().Color.SrcFactor)
	assert.Equal(t, wgpu.BlendFactorOne, p.BlendState().Color.DstFactor)
}

func TestOptionsOverrideDefaults(t *testing.T) {
	custom := &wgpu.BlendState{}
	p := buildPipeline(t, permutation.Key{Group: material.GroupModel, LayerCount: 1},
		WithDepthWriteEnabled(false),
		WithCullMode(wgpu.CullModeBack),
		WithBlendState(custom),
	)

	assert.False(t, p.DepthWriteEnabled())
	assert.Equal(t, wgpu.CullModeBack, p.CullMode())
	assert.Same(t, custom, p.BlendState())
}

func TestBlendStateMapping(t *testing.T) {
	oneOne := func(op wgpu.BlendOperation) wgpu.BlendComponent {
		return wgpu.BlendComponent{SrcFactor: wgpu.BlendFactorOne, DstFactor: wgpu.BlendFactorOne, Operation: op}
	}
	tests := []struct {
		name      string
		fn        material.FramebufferFunction
		wantColor wgpu.BlendComponent
		wantAlpha wgpu.BlendComponent
	}{
		{
			name:      "alpha blend",
			fn:        material.FramebufferAlphaBlend,
			wantColor: wgpu.BlendComponent{SrcFactor: wgpu.BlendFactorSrcAlpha, DstFactor: wgpu.BlendFactorOneMinusSrcAlpha, Operation: wgpu.BlendOperationAdd},
			wantAlpha: wgpu.BlendComponent{SrcFactor: wgpu.BlendFactorOne, DstFactor: wgpu.BlendFactorOneMinusSrcAlpha, Operation: wgpu.BlendOperationAdd},
		},
		{
			// out = src*src + dst*(1-src), not a plain dst multiply
			name:      "multiply",
			fn:        material.FramebufferMultiply,
			wantColor: wgpu.BlendComponent{SrcFactor: wgpu.BlendFactorSrc, DstFactor: wgpu.BlendFactorOneMinusSrc, Operation: wgpu.BlendOperationAdd},
			wantAlpha: wgpu.BlendComponent{SrcFactor: wgpu.BlendFactorSrcAlpha, DstFactor: wgpu.BlendFactorOneMinusSrcAlpha, Operation: wgpu.BlendOperationAdd},
		},
		{
			name:      "add",
			fn:        material.FramebufferAdd,
			wantColor: oneOne(wgpu.BlendOperationAdd),
			wantAlpha: oneOne(wgpu.BlendOperationAdd),
		},
		{
			// src - dst, applied to the alpha channel too
			name:      "subtract",
			fn:        material.FramebufferSubtract,
			wantColor: oneOne(wgpu.BlendOperationSubtract),
			wantAlpha: oneOne(wgpu.BlendOperationSubtract),
		},
		{
			name:      "component min",
			fn:        material.FramebufferComponentMin,
			wantColor: oneOne(wgpu.BlendOperationMin),
			wantAlpha: oneOne(wgpu.BlendOperationMin),
		},
		{
			name:      "component max",
			fn:        material.FramebufferComponentMax,
			wantColor: oneOne(wgpu.BlendOperationMax),
			wantAlpha: oneOne(wgpu.BlendOperationMax),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BlendStateFor(tt.fn)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantColor, got.Color)
			assert.Equal(t, tt.wantAlpha, got.Alpha)
		})
	}
}

func TestBlendStateAliases(t *testing.T) {
	assert.Equal(t, BlendStateFor(material.FramebufferMultiply), BlendStateFor(material.FramebufferDoubleMultiply))
	assert.Equal(t, BlendStateFor(material.FramebufferAlphaBlend), BlendStateFor(material.FramebufferAlphaMultiplyAdd))
}
