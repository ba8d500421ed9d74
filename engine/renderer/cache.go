package renderer

import (
	"sync"

	"github.com/GlitchSlayed/magellanicus/engine/permutation"
	"github.com/GlitchSlayed/magellanicus/engine/renderer/pipeline"
)

// CompileFunc builds the pipeline for a variant key. The cache guarantees it
// runs at most once concurrently per key.
type CompileFunc func(key permutation.Key) (pipeline.Pipeline, error)

// cacheEntry is one in-flight or completed build. Waiters block on done; the
// builder fills p/err before closing it.
type cacheEntry struct {
	done chan struct{}
	p    pipeline.Pipeline
	err  error
}

// pipelineCache is the implementation of the PipelineCache interface.
type pipelineCache struct {
	mu      sync.Mutex
	entries map[permutation.Key]*cacheEntry
	compile CompileFunc
}

// PipelineCache defines the interface for the at-most-one-build-per-key
// pipeline store. Concurrent requests for the same uncached key share a
// single compilation; the losers wait for the winner's result. Failed builds
// are not cached, so a later request retries the build.
type PipelineCache interface {
	// GetOrBuild retrieves the cached pipeline for a key, building it first
	// if needed. Safe for concurrent use.
	//
	// Parameters:
	//   - key: the variant key to look up
	//
	// Returns:
	//   - pipeline.Pipeline: the cached or freshly built pipeline, or nil on error
	//   - error: the build error, or nil
	GetOrBuild(key permutation.Key) (pipeline.Pipeline, error)

	// Cached retrieves a completed pipeline without triggering a build.
	//
	// Parameters:
	//   - key: the variant key to look up
	//
	// Returns:
	//   - pipeline.Pipeline: the cached pipeline, or nil
	//   - bool: true if a completed pipeline exists for the key
	Cached(key permutation.Key) (pipeline.Pipeline, bool)

	// Invalidate drops every completed entry, forcing rebuilds on next use.
	// Called when the surface format or sample count changes. In-flight
	// builds complete against the old entries and are dropped with them.
	Invalidate()

	// Len reports the number of completed entries.
	//
	// Returns:
	//   - int: the completed entry count
	Len() int
}

var _ PipelineCache = &pipelineCache{}

// NewPipelineCache creates a PipelineCache around a compile function.
//
// Parameters:
//   - compile: the function that builds a pipeline for a key
//
// Returns:
//   - PipelineCache: a new empty cache
func NewPipelineCache(compile CompileFunc) PipelineCache {
	return &pipelineCache{
		entries: make(map[permutation.Key]*cacheEntry),
		compile: compile,
	}
}

func (c *pipelineCache) GetOrBuild(key permutation.Key) (pipeline.Pipeline, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.mu.Unlock()
		<-e.done
		return e.p, e.err
	}

	e := &cacheEntry{done: make(chan struct{})}
	c.entries[key] = e
	c.mu.Unlock()

	e.p, e.err = c.compile(key)
	if e.err != nil {
		// Failed builds are not cached; the next request retries.
		c.mu.Lock()
		if c.entries[key] == e {
			delete(c.entries, key)
		}
		c.mu.Unlock()
	}
	close(e.done)
	return e.p, e.err
}

func (c *pipelineCache) Cached(key permutation.Key) (pipeline.Pipeline, bool) {
	c.mu.Lock()
	e, ok := c.entries[key]
	c.mu.Unlock()
	if !ok {
		return nil, false
	}
	select {
	case <-e.done:
		return e.p, e.err == nil
	default:
		return nil, false
	}
}

func (c *pipelineCache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[permutation.Key]*cacheEntry)
	c.mu.Unlock()
}

func (c *pipelineCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, e := range c.entries {
		select {
		case <-e.done:
			if e.err == nil {
				n++
			}
		default:
		}
	}
	return n
}
