package scene

import (
	"errors"
	"sync"
	"testing"

	"github.com/GlitchSlayed/magellanicus/common"
	"github.com/GlitchSlayed/magellanicus/engine/camera"
	"github.com/GlitchSlayed/magellanicus/engine/fog"
	"github.com/GlitchSlayed/magellanicus/engine/material"
	"github.com/GlitchSlayed/magellanicus/engine/permutation"
	"github.com/GlitchSlayed/magellanicus/engine/renderer"
	"github.com/GlitchSlayed/magellanicus/engine/renderer/bind_group_provider"
	"github.com/GlitchSlayed/magellanicus/engine/renderer/pipeline"
	"github.com/GlitchSlayed/magellanicus/engine/renderer/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRenderer records scheduler submissions and pipeline requests without
// touching the GPU. Keys in failKeys resolve to the fallback variant.
type fakeRenderer struct {
	mu        sync.Mutex
	failKeys  map[permutation.Key]bool
	warmed    []permutation.Key
	submitted []scheduler.DrawRequest
	frameData []byte
}

var _ renderer.Renderer = &fakeRenderer{}

func (f *fakeRenderer) Pipeline(key permutation.Key) (pipeline.Pipeline, permutation.Key, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failKeys[key] {
		return nil, permutation.FallbackKey(), nil
	}
	return nil, key, nil
}

func (f *fakeRenderer) WarmPipelines(keys ...permutation.Key) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.warmed = append(f.warmed, keys...)
	return nil
}

func (f *fakeRenderer) InitMaterial(m material.Material) (bind_group_provider.BindGroupProvider, permutation.Key, error) {
	return bind_group_provider.NewBindGroupProvider(m.Name()), permutation.Resolve(m), nil
}

func (f *fakeRenderer) InitFallbackMaterial(m material.Material) (bind_group_provider.BindGroupProvider, error) {
	return bind_group_provider.NewBindGroupProvider(m.Name() + "/fallback"), nil
}

func (f *fakeRenderer) InitMesh(label string, mesh common.MeshData) (bind_group_provider.BindGroupProvider, error) {
	return bind_group_provider.NewBindGroupProvider(label), nil
}

func (f *fakeRenderer) Submit(req scheduler.DrawRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, req)
}

func (f *fakeRenderer) WriteFrameUniforms(data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frameData = data
}

func (f *fakeRenderer) BeginFrame() error { return nil }
func (f *fakeRenderer) Flush()            {}
func (f *fakeRenderer) EndFrame()         {}
func (f *fakeRenderer) Present()          {}
func (f *fakeRenderer) Resize(width, height int) {
}
func (f *fakeRenderer) SetPresentMode(mode renderer.PresentMode)              {}
func (f *fakeRenderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {}

func testCamera() camera.Camera {
	return camera.NewCamera(camera.WithController(camera.NewFlyController()))
}

func testMaterial(t *testing.T, name string) material.Material {
	t.Helper()
	m, err := material.New(name, material.GroupTransparentChicago, material.WithLayers(material.TextureLayer{
		UVScale:       [2]float32{1, 1},
		ColorFunction: material.CombineMultiply,
		AlphaFunction: material.CombineCurrent,
		Texture: common.TextureStagingData{
			Pixels: make([]byte, 4),
			Width:  1,
			Height: 1,
			Layers: 1,
		},
	}))
	require.NoError(t, err)
	return m
}

func TestAddMaterialRejectsDuplicates(t *testing.T) {
	s := NewScene("test", testCamera(), &fakeRenderer{})

	require.NoError(t, s.AddMaterial(testMaterial(t, "levels/a/glass")))
	err := s.AddMaterial(testMaterial(t, "levels/a/glass"))
	assert.Error(t, err)
	assert.NotNil(t, s.Material("levels/a/glass"))
}

func TestAddGeometryRequiresKnownMaterial(t *testing.T) {
	s := NewScene("test", testCamera(), &fakeRenderer{})

	_, err := s.AddGeometry("mesh", "levels/a/missing", common.MeshData{}, [3]float32{})
	assert.Error(t, err)
}

func TestDrawSubmitsPerGeometry(t *testing.T) {
	r := &fakeRenderer{}
	s := NewScene("test", testCamera(), r)

	m := testMaterial(t, "levels/a/glass")
	require.NoError(t, s.AddMaterial(m))
	_, err := s.AddGeometry("pane1", "levels/a/glass", common.MeshData{}, [3]float32{0, 0, -10})
	require.NoError(t, err)
	_, err = s.AddGeometry("pane2", "levels/a/glass", common.MeshData{}, [3]float32{0, 0, -20})
	require.NoError(t, err)

	require.NoError(t, s.Draw())

	require.Len(t, r.submitted, 2)
	key := permutation.Resolve(m)
	assert.Equal(t, key, r.submitted[0].Key)
	assert.Equal(t, "levels/a/glass", r.submitted[0].Bindings.Label())
	assert.InDelta(t, 10, r.submitted[0].Depth, 1e-5)
	assert.InDelta(t, 20, r.submitted[1].Depth, 1e-5)
	assert.NotEmpty(t, r.frameData)
}

func TestDrawFallsBackWhenVariantFails(t *testing.T) {
	m := testMaterial(t, "levels/a/glass")
	r := &fakeRenderer{failKeys: map[permutation.Key]bool{permutation.Resolve(m): true}}
	s := NewScene("test", testCamera(), r)

	require.NoError(t, s.AddMaterial(m))
	_, err := s.AddGeometry("pane", "levels/a/glass", common.MeshData{}, [3]float32{})
	require.NoError(t, err)

	require.NoError(t, s.Draw())

	require.Len(t, r.submitted, 1)
	assert.Equal(t, permutation.FallbackKey(), r.submitted[0].Key)
	assert.Equal(t, "levels/a/glass/fallback", r.submitted[0].Bindings.Label())
}

func TestCurrentFogFollowsViewport(t *testing.T) {
	indoor := &fog.Profile{MaxOpacity: 1}
	outdoor := &fog.Profile{MaxOpacity: 0.5}
	s := NewScene("test", testCamera(), &fakeRenderer{}, WithSky(Sky{
		IndoorFog:  indoor,
		OutdoorFog: outdoor,
	}))

	assert.Same(t, outdoor, s.CurrentFog())
	s.SetIndoors(true)
	assert.Same(t, indoor, s.CurrentFog())
}

func TestWarmPipelinesCoversTableAndFallback(t *testing.T) {
	r := &fakeRenderer{}
	s := NewScene("test", testCamera(), r, WithWarmWorkers(2))

	m := testMaterial(t, "levels/a/glass")
	require.NoError(t, s.AddMaterial(m))
	require.NoError(t, s.WarmPipelines())

	warmed := map[permutation.Key]bool{}
	for _, k := range r.warmed {
		warmed[k] = true
	}
	assert.True(t, warmed[permutation.Resolve(m)])
	assert.True(t, warmed[permutation.FallbackKey()])
}

func TestRemoveGeometry(t *testing.T) {
	s := NewScene("test", testCamera(), &fakeRenderer{})
	require.NoError(t, s.AddMaterial(testMaterial(t, "levels/a/glass")))

	id, err := s.AddGeometry("pane", "levels/a/glass", common.MeshData{}, [3]float32{})
	require.NoError(t, err)
	require.Equal(t, 1, s.Count())

	s.RemoveGeometry(id)
	assert.Equal(t, 0, s.Count())
}

func TestDrawReportsUnbuildableVariant(t *testing.T) {
	// A renderer that cannot even build the fallback surfaces the error.
	r := &errRenderer{fakeRenderer: &fakeRenderer{}}
	s := NewScene("test", testCamera(), r)

	require.NoError(t, s.AddMaterial(testMaterial(t, "levels/a/glass")))
	_, err := s.AddGeometry("pane", "levels/a/glass", common.MeshData{}, [3]float32{})
	require.NoError(t, err)

	assert.Error(t, s.Draw())
}

type errRenderer struct {
	*fakeRenderer
}

func (e *errRenderer) Pipeline(key permutation.Key) (pipeline.Pipeline, permutation.Key, error) {
	return nil, key, errors.New("device lost")
}
