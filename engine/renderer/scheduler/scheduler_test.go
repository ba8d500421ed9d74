package scheduler

import (
	"testing"

	"github.com/GlitchSlayed/magellanicus/engine/material"
	"github.com/GlitchSlayed/magellanicus/engine/permutation"
	"github.com/GlitchSlayed/magellanicus/engine/renderer/bind_group_provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder captures the encoded command sequence for assertions.
type recorder struct {
	ops []string
}

func (r *recorder) SetPipeline(key permutation.Key) {
	r.ops = append(r.ops, "pipeline:"+key.String())
}

func (r *recorder) SetBindGroup(group int, provider bind_group_provider.BindGroupProvider) {
	r.ops = append(r.ops, "bind:"+provider.Label())
}

func (r *recorder) Draw(mesh bind_group_provider.BindGroupProvider) {
	r.ops = append(r.ops, "draw:"+mesh.Label())
}

func provider(label string) bind_group_provider.BindGroupProvider {
	return bind_group_provider.NewBindGroupProvider(label)
}

var (
	modelKey   = permutation.Key{Group: material.GroupModel, LayerCount: 1}
	envKey     = permutation.Key{Group: material.GroupEnvironment, LayerCount: 2}
	chicagoKey = permutation.Key{
		Group:       material.GroupTransparentChicago,
		LayerCount:  2,
		Framebuffer: material.FramebufferAdd,
	}
)

func TestOpaqueGroupedByKey(t *testing.T) {
	s := NewScheduler()
	bindA := provider("a")
	bindB := provider("b")

	// Interleaved submissions across two variants.
	s.Submit(DrawRequest{Key: modelKey, Mesh: provider("m1"), Bindings: bindA})
	s.Submit(DrawRequest{Key: envKey, Mesh: provider("e1"), Bindings: bindB})
	s.Submit(DrawRequest{Key: modelKey, Mesh: provider("m2"), Bindings: bindA})
	s.Submit(DrawRequest{Key: envKey, Mesh: provider("e2"), Bindings: bindB})

	rec := &recorder{}
	s.Flush(rec)

	assert.Equal(t, []string{
		"pipeline:" + envKey.String(),
		"bind:b",
		"draw:e1",
		"draw:e2",
		"pipeline:" + modelKey.String(),
		"bind:a",
		"draw:m1",
		"draw:m2",
	}, rec.ops)
}

func TestBindGroupReboundOnlyOnChange(t *testing.T) {
	s := NewScheduler()
	bindA := provider("a")
	bindB := provider("b")

	s.Submit(DrawRequest{Key: modelKey, Mesh: provider("m1"), Bindings: bindA})
	s.Submit(DrawRequest{Key: modelKey, Mesh: provider("m2"), Bindings: bindB})
	s.Submit(DrawRequest{Key: modelKey, Mesh: provider("m3"), Bindings: bindA})

	rec := &recorder{}
	s.Flush(rec)

	// One pipeline bind; binding sets grouped so each is bound once.
	pipelines, binds := 0, 0
	for _, op := range rec.ops {
		switch op[0] {
		case 'p':
			pipelines++
		case 'b':
			binds++
		}
	}
	assert.Equal(t, 1, pipelines)
	assert.Equal(t, 2, binds)
}

func TestTransparentAfterOpaque(t *testing.T) {
	s := NewScheduler()
	s.Submit(DrawRequest{Key: chicagoKey, Mesh: provider("glass"), Bindings: provider("t"), Depth: 5})
	s.Submit(DrawRequest{Key: modelKey, Mesh: provider("crate"), Bindings: provider("o")})

	rec := &recorder{}
	s.Flush(rec)

	require.Len(t, rec.ops, 6)
	assert.Equal(t, "draw:crate", rec.ops[2])
	assert.Equal(t, "draw:glass", rec.ops[5])
}

func TestTransparentBackToFront(t *testing.T) {
	s := NewScheduler()
	bind := provider("t")
	s.Submit(DrawRequest{Key: chicagoKey, Mesh: provider("near"), Bindings: bind, Depth: 1})
	s.Submit(DrawRequest{Key: chicagoKey, Mesh: provider("far"), Bindings: bind, Depth: 100})
	s.Submit(DrawRequest{Key: chicagoKey, Mesh: provider("mid"), Bindings: bind, Depth: 50})

	rec := &recorder{}
	s.Flush(rec)

	var draws []string
	for _, op := range rec.ops {
		if op[0] == 'd' {
			draws = append(draws, op)
		}
	}
	assert.Equal(t, []string{"draw:far", "draw:mid", "draw:near"}, draws)
}

func TestTransparentNotReorderedByKey(t *testing.T) {
	// Depth ordering wins over variant grouping for transparent draws, even
	// when that forces extra pipeline binds.
	other := permutation.Key{
		Group:       material.GroupTransparentChicago,
		LayerCount:  1,
		Framebuffer: material.FramebufferAlphaBlend,
	}
	s := NewScheduler()
	s.Submit(DrawRequest{Key: chicagoKey, Mesh: provider("a"), Bindings: provider("ba"), Depth: 10})
	s.Submit(DrawRequest{Key: other, Mesh: provider("b"), Bindings: provider("bb"), Depth: 20})
	s.Submit(DrawRequest{Key: chicagoKey, Mesh: provider("c"), Bindings: provider("bc"), Depth: 30})

	rec := &recorder{}
	s.Flush(rec)

	var draws []string
	for _, op := range rec.ops {
		if op[0] == 'd' {
			draws = append(draws, op)
		}
	}
	assert.Equal(t, []string{"draw:c", "draw:b", "draw:a"}, draws)

	pipelines := 0
	for _, op := range rec.ops {
		if op[0] == 'p' {
			pipelines++
		}
	}
	assert.Equal(t, 3, pipelines)
}

func TestEqualDepthKeepsSubmissionOrder(t *testing.T) {
	s := NewScheduler()
	bind := provider("t")
	s.Submit(DrawRequest{Key: chicagoKey, Mesh: provider("first"), Bindings: bind, Depth: 10})
	s.Submit(DrawRequest{Key: chicagoKey, Mesh: provider("second"), Bindings: bind, Depth: 10})

	rec := &recorder{}
	s.Flush(rec)

	var draws []string
	for _, op := range rec.ops {
		if op[0] == 'd' {
			draws = append(draws, op)
		}
	}
	assert.Equal(t, []string{"draw:first", "draw:second"}, draws)
}

func TestFlushClearsQueues(t *testing.T) {
	s := NewScheduler()
	s.Submit(DrawRequest{Key: modelKey, Mesh: provider("m"), Bindings: provider("a")})
	require.Equal(t, 1, s.Len())

	s.Flush(&recorder{})
	assert.Equal(t, 0, s.Len())

	rec := &recorder{}
	s.Flush(rec)
	assert.Empty(t, rec.ops)
}
