// package pipeline wraps one compiled render pipeline variant: the generated
// shader module, the resolved binding/vertex layout, and the fixed-function
// state derived from the variant key.
package pipeline

import (
	"github.com/GlitchSlayed/magellanicus/engine/permutation"
	"github.com/GlitchSlayed/magellanicus/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// pipeline is the implementation of the Pipeline interface.
// It holds the underlying WebGPU pipeline object and the configuration used to create it.
type pipeline struct {
	// key is the variant this pipeline renders, used for caching and lookups
	key permutation.Key
	// layout is the resolved binding and vertex contract for the key
	layout permutation.ResourceLayout
	// shader holds the generated WGSL module with both stage entry points
	shader shader.Shader

	// renderPipeline is the compiled GPU pipeline, set by the backend after creation
	renderPipeline *wgpu.RenderPipeline

	// The following properties configure the pipeline during creation and can be toggled/set with the builder options.

	depthTestEnabled  bool
	depthWriteEnabled bool
	blendEnabled      bool
	cullMode          wgpu.CullMode
	topology          wgpu.PrimitiveTopology
	frontFace         wgpu.FrontFace
	writeMask         wgpu.ColorWriteMask
	blendState        *wgpu.BlendState
}

// Pipeline defines the interface for one render pipeline variant. It holds
// the variant key, the resolved layout, the shader module, and all
// fixed-function state required for pipeline creation.
type Pipeline interface {
	// Key returns the variant key this pipeline renders.
	//
	// Returns:
	//   - permutation.Key: the variant key, used for caching and lookups
	Key() permutation.Key

	// Layout returns the resolved binding and vertex contract for this pipeline.
	//
	// Returns:
	//   - permutation.ResourceLayout: the layout the pipeline was built against
	Layout() permutation.ResourceLayout

	// Shader retrieves the generated shader module for this pipeline.
	//
	// Returns:
	//   - shader.Shader: the shader holding both stage entry points
	Shader() shader.Shader

	// Pipeline returns the underlying compiled pipeline object, or nil before
	// the backend compiles it.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the compiled GPU pipeline
	Pipeline() *wgpu.RenderPipeline

	// DepthTestEnabled returns whether depth testing is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if depth testing is enabled, false otherwise
	DepthTestEnabled() bool

	// DepthWriteEnabled returns whether depth writing is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if depth writing is enabled, false otherwise
	DepthWriteEnabled() bool

	// BlendEnabled returns whether blending is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if blending is enabled, false otherwise
	BlendEnabled() bool

	// CullMode returns the cull mode configured for this pipeline.
	//
	// Returns:
	//   - wgpu.CullMode: the cull mode for this pipeline
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology configured for this pipeline.
	//
	// Returns:
	//   - wgpu.PrimitiveTopology: the primitive topology for this pipeline
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the front face winding order configured for this pipeline.
	//
	// Returns:
	//   - wgpu.FrontFace: the front face winding order for this pipeline
	FrontFace() wgpu.FrontFace

	// WriteMask returns the color write mask configured for this pipeline.
	//
	// Returns:
	//   - wgpu.ColorWriteMask: the color write mask for this pipeline
	WriteMask() wgpu.ColorWriteMask

	// BlendState returns the blend state configured for this pipeline.
	//
	// Returns:
	//   - *wgpu.BlendState: the blend state for this pipeline
	BlendState() *wgpu.BlendState

	// SetRenderPipeline sets the compiled render pipeline.
	//
	// Parameters:
	//   - p: the WebGPU render pipeline to set
	SetRenderPipeline(p *wgpu.RenderPipeline)
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a Pipeline for a resolved variant. Transparent variants
// default to blending enabled with the blend state mapped from the key's
// framebuffer function and depth writes disabled; opaque variants default to
// depth-tested, depth-writing, blend-free state. Options override defaults.
//
// Parameters:
//   - layout: the resolved binding and vertex contract for the variant
//   - s: the generated shader module for the variant
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance with the specified configuration
func NewPipeline(layout permutation.ResourceLayout, s shader.Shader, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		key:               layout.Key,
		layout:            layout,
		shader:            s,
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		blendEnabled:      false,
		cullMode:          wgpu.CullModeNone,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
		blendState:        BlendStateFor(layout.Key.Framebuffer),
	}
	if layout.Key.Transparent() {
		// Transparent surfaces read depth but never write it; they draw
		// back-to-front after opaques.
		p.blendEnabled = true
		p.depthWriteEnabled = false
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) Key() permutation.Key {
	return p.key
}

func (p *pipeline) Layout() permutation.ResourceLayout {
	return p.layout
}

func (p *pipeline) Shader() shader.Shader {
	return p.shader
}

func (p *pipeline) Pipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}
