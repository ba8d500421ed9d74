package renderer

import (
	"fmt"
	"sync"

	"github.com/GlitchSlayed/magellanicus/common"
	"github.com/GlitchSlayed/magellanicus/engine/material"
	"github.com/GlitchSlayed/magellanicus/engine/permutation"
	"github.com/GlitchSlayed/magellanicus/engine/renderer/bind_group_provider"
	"github.com/GlitchSlayed/magellanicus/engine/renderer/pipeline"
	"github.com/GlitchSlayed/magellanicus/engine/renderer/scheduler"
	"github.com/GlitchSlayed/magellanicus/engine/renderer/shader"
	"github.com/GlitchSlayed/magellanicus/engine/window"
)

// defaultFramesInFlight is the number of per-frame uniform buffer slots the
// renderer rotates through so a submitted frame's uniforms are never
// overwritten by the next frame's writes.
const defaultFramesInFlight = 2

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	cache     PipelineCache
	scheduler scheduler.Scheduler

	frameRing    bind_group_provider.FrameRing
	frameCounter uint64

	backendType RendererBackendType
	backend     RendererBackend

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
	framesInFlight       int
}

// Renderer defines the interface for the rendering system.
//
// This is a high-level API designed to simplify rendering tasks into a streamlined and idiomatic flow.
// The Renderer compiles pipeline variants on demand, caches them by variant key, and orders each
// frame's draws through a scheduler. The Renderer also implements a backend which allows for
// multiple backend API implementations to exist.
type Renderer interface {
	// Pipeline retrieves the compiled pipeline variant for a key, building it
	// on first use. Concurrent callers requesting the same key share a single
	// build. When the variant cannot be built, the solid-color fallback
	// variant is substituted so the draw stays visible.
	//
	// Parameters:
	//   - key: the variant key to resolve
	//
	// Returns:
	//   - pipeline.Pipeline: the compiled variant, or the fallback variant after a build failure
	//   - permutation.Key: the key of the returned pipeline (the fallback key when substituted)
	//   - error: an error when even the fallback could not be built
	Pipeline(key permutation.Key) (pipeline.Pipeline, permutation.Key, error)

	// WarmPipelines builds the pipeline variants for the given keys ahead of
	// first use. Build failures are collected, not fatal; draws against a
	// failed variant fall back at Pipeline time.
	//
	// Parameters:
	//   - keys: the variant keys to compile
	//
	// Returns:
	//   - error: the first build error encountered, or nil
	WarmPipelines(keys ...permutation.Key) error

	// InitMaterial validates a material against its resolved variant layout
	// and realizes the binding plan into GPU resources on a provider: textures,
	// samplers, uniform buffers, and the group 1 bind group.
	//
	// Parameters:
	//   - m: the material to realize
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the provider holding the material's GPU resources
	//   - permutation.Key: the variant key the material resolved to
	//   - error: a *bind_group_provider.LayoutMismatchError when the material does not satisfy
	//     its layout, or a GPU error
	InitMaterial(m material.Material) (bind_group_provider.BindGroupProvider, permutation.Key, error)

	// InitFallbackMaterial realizes a material against the fallback layout:
	// a solid-color binding set that any material satisfies. Draws whose
	// variant pipeline fails to build bind this set instead.
	//
	// Parameters:
	//   - m: the material to realize
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the provider holding the fallback resources
	//   - error: an error if GPU resource creation fails
	InitFallbackMaterial(m material.Material) (bind_group_provider.BindGroupProvider, error)

	// InitMesh uploads mesh data into GPU vertex and index buffers held by a
	// new provider.
	//
	// Parameters:
	//   - label: the provider label, used for GPU object names
	//   - mesh: the interleaved vertex bytes, index bytes, and index count
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the provider holding the mesh buffers
	//   - error: an error if buffer creation fails
	InitMesh(label string, mesh common.MeshData) (bind_group_provider.BindGroupProvider, error)

	// Submit queues one draw request for the current frame. Opaque draws are
	// grouped by variant at flush; transparent draws render after opaques,
	// back-to-front by depth.
	//
	// Parameters:
	//   - req: the draw request to queue
	Submit(req scheduler.DrawRequest)

	// WriteFrameUniforms writes the per-frame uniform block (view projection,
	// camera position, world offset) into the current frame's uniform slot.
	// Must be called between BeginFrame and Flush.
	//
	// Parameters:
	//   - data: the marshaled frame uniform bytes
	WriteFrameUniforms(data []byte)

	// BeginFrame acquires the swapchain texture and begins the main render pass.
	// Must be paired with EndFrame after Flush.
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	BeginFrame() error

	// Flush encodes the queued draw requests into the current render pass in
	// scheduler order. Requests whose pipeline variant is not compiled are
	// skipped for the frame.
	Flush()

	// EndFrame ends the current render pass and submits the command buffer to the GPU.
	// Does not present the surface — call Present() after EndFrame to display the frame.
	EndFrame()

	// Present presents the surface to the display, releases the swapchain
	// texture, and advances the frame counter.
	Present()

	// Resize configures the underlying backend to handle a new surface size
	// and invalidates the pipeline cache, since compiled pipelines reference
	// the old surface configuration. Variants are rebuilt on demand.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode sets the surface present mode which controls how frames are delivered to the display.
	// A call to Resize is required after changing this for the new mode to take effect.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	//
	// Parameters:
	//   - writes: a slice of BufferWrite structs describing the data to write
	WriteBuffers(writes []bind_group_provider.BufferWrite)
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer instance with the specified backend type and window.
// The window provides the platform-specific surface descriptor for surface creation.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - window: the window whose surface the renderer draws to
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
//   - error: an error if the frame uniform ring could not be created
func NewRenderer(backendType RendererBackendType, window window.Window, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:             &sync.Mutex{},
		scheduler:      scheduler.NewScheduler(),
		backendType:    backendType,
		framesInFlight: defaultFramesInFlight,
	}
	r.cache = NewPipelineCache(r.compile)

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	msaa := MSAA4x // default
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(window.SurfaceDescriptor(), r.forceFallbackAdapter, msaa)
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}

	r.backend.ConfigureSurface(window.Width(), window.Height())

	ring, err := r.buildFrameRing()
	if err != nil {
		return nil, err
	}
	r.frameRing = ring

	return r, nil
}

// buildFrameRing creates the per-frame uniform providers. Every variant shares
// the same group 0 layout, so the fallback layout's descriptor serves.
func (r *renderer) buildFrameRing() (bind_group_provider.FrameRing, error) {
	layout, err := permutation.LayoutFor(permutation.FallbackKey())
	if err != nil {
		return nil, err
	}
	descriptor := layout.BindGroupLayoutDescriptors()[0]

	return bind_group_provider.NewFrameRing(r.framesInFlight, func(slot int) (bind_group_provider.BindGroupProvider, error) {
		provider := bind_group_provider.NewBindGroupProvider(fmt.Sprintf("frame-%d", slot))
		if err := r.backend.InitBindGroup(provider, descriptor); err != nil {
			provider.Release()
			return nil, err
		}
		return provider, nil
	})
}

// compile builds one pipeline variant end to end: resolve the layout, generate
// the WGSL module, wrap it, and register the GPU pipeline.
func (r *renderer) compile(key permutation.Key) (pipeline.Pipeline, error) {
	layout, err := permutation.LayoutFor(key)
	if err != nil {
		return nil, err
	}
	source, err := shader.Generate(layout)
	if err != nil {
		return nil, err
	}
	p := pipeline.NewPipeline(layout, shader.NewShader(key.String(), source))
	if err := r.backend.RegisterRenderPipeline(p); err != nil {
		return nil, fmt.Errorf("register pipeline %s: %w", key, err)
	}
	return p, nil
}

func (r *renderer) Pipeline(key permutation.Key) (pipeline.Pipeline, permutation.Key, error) {
	p, err := r.cache.GetOrBuild(key)
	if err == nil {
		return p, key, nil
	}

	fallback := permutation.FallbackKey()
	if key == fallback {
		return nil, key, err
	}
	fb, fbErr := r.cache.GetOrBuild(fallback)
	if fbErr != nil {
		return nil, fallback, fmt.Errorf("variant %s failed (%v); fallback failed: %w", key, err, fbErr)
	}
	return fb, fallback, nil
}

func (r *renderer) WarmPipelines(keys ...permutation.Key) error {
	var firstErr error
	for _, key := range keys {
		if _, err := r.cache.GetOrBuild(key); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *renderer) InitMaterial(m material.Material) (bind_group_provider.BindGroupProvider, permutation.Key, error) {
	key := permutation.Resolve(m)
	layout, err := permutation.LayoutFor(key)
	if err != nil {
		// Unsupported shader group: bind against the fallback layout so the
		// geometry still draws.
		key = permutation.FallbackKey()
		layout, err = permutation.LayoutFor(key)
		if err != nil {
			return nil, key, err
		}
	}

	plan, err := bind_group_provider.Plan(m, layout)
	if err != nil {
		return nil, key, err
	}

	provider, err := r.realizePlan(plan, layout, plan.Material)
	if err != nil {
		return nil, key, err
	}
	return provider, key, nil
}

// realizePlan turns a validated binding plan into GPU resources on a new
// provider: textures and samplers first, then the bind group, then the
// uniform uploads. The frame uniform slot is skipped; the renderer's frame
// ring owns it.
func (r *renderer) realizePlan(plan bind_group_provider.BindingPlan, layout permutation.ResourceLayout, label string) (bind_group_provider.BindGroupProvider, error) {
	provider := bind_group_provider.NewBindGroupProvider(label)

	var writes []bind_group_provider.BufferWrite
	for _, binding := range plan.Bindings {
		if binding.Slot.Group != 1 {
			continue
		}
		key := int(binding.Slot.Binding)
		switch {
		case binding.Texture != nil:
			if err := r.backend.InitTextureView(provider, key, *binding.Texture); err != nil {
				provider.Release()
				return nil, err
			}
		case binding.Sampler != nil:
			if err := r.backend.InitSampler(provider, key, *binding.Sampler); err != nil {
				provider.Release()
				return nil, err
			}
		case binding.UniformData != nil:
			writes = append(writes, bind_group_provider.BufferWrite{
				Provider: provider,
				Binding:  key,
				Data:     binding.UniformData,
			})
		}
	}

	if err := r.backend.InitBindGroup(provider, layout.BindGroupLayoutDescriptors()[1]); err != nil {
		provider.Release()
		return nil, err
	}
	r.backend.WriteBuffers(writes)

	return provider, nil
}

func (r *renderer) InitFallbackMaterial(m material.Material) (bind_group_provider.BindGroupProvider, error) {
	layout, err := permutation.LayoutFor(permutation.FallbackKey())
	if err != nil {
		return nil, err
	}
	plan, err := bind_group_provider.Plan(m, layout)
	if err != nil {
		return nil, err
	}
	// A distinct label keeps the scheduler from grouping fallback draws with
	// the material's real binding set.
	return r.realizePlan(plan, layout, plan.Material+"/fallback")
}

func (r *renderer) InitMesh(label string, mesh common.MeshData) (bind_group_provider.BindGroupProvider, error) {
	provider := bind_group_provider.NewBindGroupProvider(label)
	if err := r.backend.InitMeshBuffers(provider, mesh.VertexData, mesh.IndexData, mesh.IndexCount); err != nil {
		provider.Release()
		return nil, err
	}
	return provider, nil
}

func (r *renderer) Submit(req scheduler.DrawRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scheduler.Submit(req)
}

func (r *renderer) WriteFrameUniforms(data []byte) {
	provider := r.frameRing.Provider(r.frameCounter)
	r.backend.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: provider, Binding: 0, Data: data},
	})
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Every variant shares the group 0 layout, so the frame bind group stays
	// valid across pipeline changes and binds once per pass.
	r.backend.SetBindGroup(0, r.frameRing.Provider(r.frameCounter))
	r.scheduler.Flush(&backendStream{renderer: r})
}

func (r *renderer) EndFrame() {
	r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
	r.frameCounter++
}

func (r *renderer) Resize(width, height int) {
	r.backend.ConfigureSurface(width, height)
	r.cache.Invalidate()
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.backend.WriteBuffers(writes)
}

// backendStream adapts the backend's render pass encoding to the scheduler's
// command stream. Draws against variants that are not compiled yet are
// dropped for the frame; the next Pipeline call rebuilds them.
type backendStream struct {
	renderer *renderer
	skip     bool
}

func (s *backendStream) SetPipeline(key permutation.Key) {
	p, ok := s.renderer.cache.Cached(key)
	if !ok {
		s.skip = true
		return
	}
	s.skip = false
	s.renderer.backend.SetPipeline(p)
}

func (s *backendStream) SetBindGroup(group int, provider bind_group_provider.BindGroupProvider) {
	if s.skip {
		return
	}
	s.renderer.backend.SetBindGroup(uint32(group), provider)
}

func (s *backendStream) Draw(mesh bind_group_provider.BindGroupProvider) {
	if s.skip {
		return
	}
	s.renderer.backend.Draw(mesh)
}
