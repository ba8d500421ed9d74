package renderer

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/GlitchSlayed/magellanicus/engine/material"
	"github.com/GlitchSlayed/magellanicus/engine/permutation"
	"github.com/GlitchSlayed/magellanicus/engine/renderer/pipeline"
	"github.com/GlitchSlayed/magellanicus/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testCompile builds a real (uncompiled) pipeline for a key and counts calls.
func testCompile(builds *atomic.Int64) CompileFunc {
	return func(key permutation.Key) (pipeline.Pipeline, error) {
		builds.Add(1)
		layout, err := permutation.LayoutFor(key)
		if err != nil {
			return nil, err
		}
		source, err := shader.Generate(layout)
		if err != nil {
			return nil, err
		}
		return pipeline.NewPipeline(layout, shader.NewShader(key.String(), source)), nil
	}
}

func TestGetOrBuildIdempotent(t *testing.T) {
	var builds atomic.Int64
	cache := NewPipelineCache(testCompile(&builds))
	key := permutation.Key{Group: material.GroupModel, LayerCount: 1}

	first, err := cache.GetOrBuild(key)
	require.NoError(t, err)
	second, err := cache.GetOrBuild(key)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int64(1), builds.Load())
	assert.Equal(t, 1, cache.Len())
}

func TestConcurrentCallersShareOneBuild(t *testing.T) {
	var builds atomic.Int64
	cache := NewPipelineCache(testCompile(&builds))
	key := permutation.Key{Group: material.GroupTransparentChicago, LayerCount: 4}

	const callers = 32
	results := make([]pipeline.Pipeline, callers)
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			p, err := cache.GetOrBuild(key)
			require.NoError(t, err)
			results[i] = p
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), builds.Load())
	for i := 1; i < callers; i++ {
		assert.Same(t, results[0], results[i], "caller %d", i)
	}
}

func TestDistinctKeysBuildSeparately(t *testing.T) {
	var builds atomic.Int64
	cache := NewPipelineCache(testCompile(&builds))

	_, err := cache.GetOrBuild(permutation.Key{Group: material.GroupModel, LayerCount: 1})
	require.NoError(t, err)
	_, err = cache.GetOrBuild(permutation.Key{Group: material.GroupTransparentChicago, LayerCount: 2})
	require.NoError(t, err)

	assert.Equal(t, int64(2), builds.Load())
	assert.Equal(t, 2, cache.Len())
}

func TestFailedBuildsRetry(t *testing.T) {
	var calls atomic.Int64
	buildErr := errors.New("device lost")
	var real CompileFunc
	cache := NewPipelineCache(func(key permutation.Key) (pipeline.Pipeline, error) {
		if calls.Add(1) == 1 {
			return nil, buildErr
		}
		return real(key)
	})
	var builds atomic.Int64
	real = testCompile(&builds)

	key := permutation.Key{Group: material.GroupModel, LayerCount: 1}
	_, err := cache.GetOrBuild(key)
	assert.ErrorIs(t, err, buildErr)
	assert.Equal(t, 0, cache.Len())

	p, err := cache.GetOrBuild(key)
	require.NoError(t, err)
	assert.NotNil(t, p)
	assert.Equal(t, int64(2), calls.Load())
}

func TestUnsupportedGroupErrorNotCached(t *testing.T) {
	var builds atomic.Int64
	cache := NewPipelineCache(testCompile(&builds))

	_, err := cache.GetOrBuild(permutation.Key{Group: material.GroupTransparentWater, LayerCount: 1})
	assert.ErrorIs(t, err, permutation.ErrUnsupportedShaderGroup)
	assert.Equal(t, 0, cache.Len())
}

func TestInvalidateForcesRebuild(t *testing.T) {
	var builds atomic.Int64
	cache := NewPipelineCache(testCompile(&builds))
	key := permutation.Key{Group: material.GroupModel, LayerCount: 1}

	first, err := cache.GetOrBuild(key)
	require.NoError(t, err)

	cache.Invalidate()
	assert.Equal(t, 0, cache.Len())

	second, err := cache.GetOrBuild(key)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, int64(2), builds.Load())
}

func TestCachedDoesNotBuild(t *testing.T) {
	var builds atomic.Int64
	cache := NewPipelineCache(testCompile(&builds))
	key := permutation.Key{Group: material.GroupModel, LayerCount: 1}

	_, ok := cache.Cached(key)
	assert.False(t, ok)
	assert.Equal(t, int64(0), builds.Load())

	p, err := cache.GetOrBuild(key)
	require.NoError(t, err)
	got, ok := cache.Cached(key)
	assert.True(t, ok)
	assert.Same(t, p, got)
}
