package scene

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/GlitchSlayed/magellanicus/common"
	"github.com/GlitchSlayed/magellanicus/engine/camera"
	"github.com/GlitchSlayed/magellanicus/engine/fog"
	"github.com/GlitchSlayed/magellanicus/engine/material"
	"github.com/GlitchSlayed/magellanicus/engine/permutation"
	"github.com/GlitchSlayed/magellanicus/engine/renderer"
	"github.com/GlitchSlayed/magellanicus/engine/renderer/bind_group_provider"
	"github.com/GlitchSlayed/magellanicus/engine/renderer/scheduler"
)

// Sky carries the atmosphere a map renders under: one fog profile for indoor
// clusters and one for outdoor clusters. Either may be nil when the map
// defines no fog for that side.
type Sky struct {
	IndoorFog  *fog.Profile
	OutdoorFog *fog.Profile
}

// materialEntry is one row of the scene's material table: the immutable
// descriptor, its resolved variant key, and the realized binding sets.
type materialEntry struct {
	material material.Material
	key      permutation.Key

	// provider is the binding set for the resolved variant; fallback is the
	// solid-color set bound when the variant pipeline fails to build.
	provider bind_group_provider.BindGroupProvider
	fallback bind_group_provider.BindGroupProvider
}

// geometryInstance is one placed mesh referencing a material table entry.
type geometryInstance struct {
	id           uint64
	materialPath string
	mesh         bind_group_provider.BindGroupProvider

	// center is the world-space centroid used to order transparent draws.
	center [3]float32
}

type scene struct {
	mu *sync.RWMutex

	name   string
	active bool

	cam camera.Camera
	r   renderer.Renderer

	materials map[string]*materialEntry
	geometry  []*geometryInstance
	nextID    uint64

	sky         Sky
	indoors     bool
	worldOffset [3]float32

	// warmPool manages a bounded set of reusable goroutines for warming the
	// pipeline cache across material variants ahead of the first frame.
	warmPool    worker.DynamicWorkerPool
	warmWorkers int
}

// Scene defines the interface for a renderable map: an immutable material
// table keyed by tag path, placed geometry referencing it, the current sky,
// and per-frame draw-list building against the renderer.
type Scene interface {
	// Name returns the scene's name.
	//
	// Returns:
	//   - string: the scene name
	Name() string

	// Active reports whether the scene is drawn by the engine loop.
	//
	// Returns:
	//   - bool: true when active
	Active() bool

	// SetActive marks the scene active or inactive.
	//
	// Parameters:
	//   - active: the new active state
	SetActive(active bool)

	// Camera returns the attached camera.
	//
	// Returns:
	//   - camera.Camera: the scene camera
	Camera() camera.Camera

	// AddMaterial realizes a material's GPU binding sets and adds it to the
	// material table under its name. The table is append-only; adding a name
	// twice is an error.
	//
	// Parameters:
	//   - m: the material to add
	//
	// Returns:
	//   - error: a binding or GPU error, or an error if the name is taken
	AddMaterial(m material.Material) error

	// Material looks up a material table entry by tag path.
	//
	// Parameters:
	//   - path: the material's name
	//
	// Returns:
	//   - material.Material: the material, or nil when absent
	Material(path string) material.Material

	// AddGeometry uploads a mesh and places it in the scene bound to a
	// material table entry.
	//
	// Parameters:
	//   - label: the mesh label, used for GPU object names
	//   - materialPath: the name of the material table entry to draw with
	//   - mesh: the mesh data to upload
	//   - center: the world-space centroid, used to order transparent draws
	//
	// Returns:
	//   - uint64: the instance id, usable with RemoveGeometry
	//   - error: an error when the material is unknown or upload fails
	AddGeometry(label, materialPath string, mesh common.MeshData, center [3]float32) (uint64, error)

	// RemoveGeometry removes a placed mesh and releases its buffers.
	//
	// Parameters:
	//   - id: the instance id returned by AddGeometry
	RemoveGeometry(id uint64)

	// Count reports the number of placed geometry instances.
	//
	// Returns:
	//   - int: the instance count
	Count() int

	// SetSky replaces the scene's sky.
	//
	// Parameters:
	//   - sky: the indoor and outdoor fog profiles
	SetSky(sky Sky)

	// SetIndoors switches the viewport between the sky's indoor and outdoor
	// fog profiles.
	//
	// Parameters:
	//   - indoors: true to select the indoor profile
	SetIndoors(indoors bool)

	// CurrentFog returns the fog profile the viewport is currently under:
	// the indoor profile when indoors, else the outdoor profile. Nil when
	// the selected side defines no fog.
	//
	// Returns:
	//   - *fog.Profile: the active fog profile or nil
	CurrentFog() *fog.Profile

	// SetWorldOffset sets the offset added to vertex positions before
	// projection, used to recenter large maps around the camera.
	//
	// Parameters:
	//   - offset: the world offset
	SetWorldOffset(offset [3]float32)

	// WarmPipelines builds the pipeline variants of every material table
	// entry (plus the fallback) across the scene's worker pool, so first
	// draws don't stall on shader compilation. Safe to call concurrently
	// with itself; builds for the same key are shared.
	//
	// Returns:
	//   - error: the first build error encountered, or nil
	WarmPipelines() error

	// Draw updates the camera, uploads the frame uniforms, and submits one
	// draw request per geometry instance to the renderer's scheduler.
	// Variants that failed to build are submitted against the fallback
	// binding set. Call between the renderer's BeginFrame and Flush.
	//
	// Returns:
	//   - error: an error when a pipeline cannot be resolved at all
	Draw() error
}

var _ Scene = &scene{}

// NewScene creates a Scene bound to a camera and renderer. Both are required
// and NewScene panics if either is nil.
//
// Parameters:
//   - name: the name of the scene
//   - cam: the camera to attach (must not be nil)
//   - r: the renderer to attach (must not be nil)
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, cam camera.Camera, r renderer.Renderer, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}
	if r == nil {
		panic("scene: NewScene requires a non-nil Renderer")
	}

	s := &scene{
		mu:          &sync.RWMutex{},
		name:        name,
		active:      false,
		cam:         cam,
		r:           r,
		materials:   make(map[string]*materialEntry),
		nextID:      1,
		warmWorkers: max(runtime.NumCPU()-1, 1),
	}

	for _, option := range options {
		option(s)
	}

	// Initialize the warm pool after options so WithWarmWorkers can override
	// the default. Queue size of 256 accommodates typical variant counts
	// with headroom.
	s.warmPool = worker.NewDynamicWorkerPool(s.warmWorkers, 256, 1*time.Second)

	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cam
}

func (s *scene) AddMaterial(m material.Material) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.materials[m.Name()]; exists {
		return fmt.Errorf("scene %q: material %q already in table", s.name, m.Name())
	}

	provider, key, err := s.r.InitMaterial(m)
	if err != nil {
		return err
	}
	fallback, err := s.r.InitFallbackMaterial(m)
	if err != nil {
		provider.Release()
		return err
	}

	s.materials[m.Name()] = &materialEntry{
		material: m,
		key:      key,
		provider: provider,
		fallback: fallback,
	}
	return nil
}

func (s *scene) Material(path string) material.Material {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry := s.materials[path]
	if entry == nil {
		return nil
	}
	return entry.material
}

func (s *scene) AddGeometry(label, materialPath string, mesh common.MeshData, center [3]float32) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.materials[materialPath]; !exists {
		return 0, fmt.Errorf("scene %q: no material %q in table", s.name, materialPath)
	}

	provider, err := s.r.InitMesh(label, mesh)
	if err != nil {
		return 0, err
	}

	id := s.nextID
	s.nextID++
	s.geometry = append(s.geometry, &geometryInstance{
		id:           id,
		materialPath: materialPath,
		mesh:         provider,
		center:       center,
	})
	return id, nil
}

func (s *scene) RemoveGeometry(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, g := range s.geometry {
		if g.id == id {
			g.mesh.Release()
			s.geometry = append(s.geometry[:i], s.geometry[i+1:]...)
			return
		}
	}
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.geometry)
}

func (s *scene) SetSky(sky Sky) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sky = sky
}

func (s *scene) SetIndoors(indoors bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indoors = indoors
}

func (s *scene) CurrentFog() *fog.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.indoors {
		return s.sky.IndoorFog
	}
	return s.sky.OutdoorFog
}

func (s *scene) SetWorldOffset(offset [3]float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.worldOffset = offset
}

func (s *scene) WarmPipelines() error {
	s.mu.RLock()
	keys := make(map[permutation.Key]struct{}, len(s.materials)+1)
	for _, entry := range s.materials {
		keys[entry.key] = struct{}{}
	}
	keys[permutation.FallbackKey()] = struct{}{}
	s.mu.RUnlock()

	// Each variant builds on a pool worker; the cache collapses duplicate
	// keys to a single build. A WaitGroup provides the barrier since
	// pool.Wait() blocks until workers idle-exit.
	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		firstErr error
	)
	taskID := 0
	for key := range keys {
		wg.Add(1)
		k := key
		s.warmPool.SubmitTask(worker.Task{
			ID: taskID,
			Do: func() (any, error) {
				defer wg.Done()
				if err := s.r.WarmPipelines(k); err != nil {
					errMu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					errMu.Unlock()
				}
				return nil, nil
			},
		})
		taskID++
	}
	wg.Wait()
	return firstErr
}

func (s *scene) Draw() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.cam.Update()
	uniform := camera.BuildFrameUniform(s.cam, s.worldOffset)
	s.r.WriteFrameUniforms(uniform.Marshal())

	cameraPosition := s.cam.Position()
	for _, g := range s.geometry {
		entry := s.materials[g.materialPath]

		_, key, err := s.r.Pipeline(entry.key)
		if err != nil {
			return fmt.Errorf("scene %q: material %q: %w", s.name, g.materialPath, err)
		}

		bindings := entry.provider
		if key != entry.key {
			bindings = entry.fallback
		}

		s.r.Submit(scheduler.DrawRequest{
			Key:      key,
			Mesh:     g.mesh,
			Bindings: bindings,
			Depth:    common.Distance3(cameraPosition, g.center),
		})
	}
	return nil
}
