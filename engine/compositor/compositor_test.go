package compositor

import (
	"testing"

	"github.com/GlitchSlayed/magellanicus/engine/fog"
	"github.com/GlitchSlayed/magellanicus/engine/material"
	"github.com/stretchr/testify/assert"
)

func TestSingleMapPassthrough(t *testing.T) {
	// With map_count = 1, later stack slots are skipped entirely.
	in := Input{
		Layers: []LayerSample{
			{Color: [4]float32{0.3, 0.4, 0.5, 0.6}},
			{Color: [4]float32{1, 1, 1, 1}, ColorFunction: material.CombineAdd, AlphaFunction: material.CombineAdd},
		},
		MapCount: 1,
	}
	assert.Equal(t, [4]float32{0.3, 0.4, 0.5, 0.6}, Composite(in))
}

func TestCombineFunctionTable(t *testing.T) {
	current := [4]float32{0.5, 0.5, 0.5, 0.25}
	next := [4]float32{0.4, 0.4, 0.4, 0.75}

	tests := []struct {
		fn    material.CombineFunction
		wantC float32 // expected value of each color channel
		wantA float32 // expected alpha when the same function drives alpha
	}{
		{material.CombineCurrent, 0.5, 0.25},
		{material.CombineNextMap, 0.4, 0.75},
		{material.CombineMultiply, 0.2, 0.1875},
		{material.CombineDoubleMultiply, 0.4, 0.375},
		{material.CombineAdd, 0.9, 1.0},
		{material.CombineAddSignedCurrent, 0, 0},
		{material.CombineAddSignedNextMap, 0, 0},
		{material.CombineSubtractCurrent, 0, 0},
		{material.CombineSubtractNextMap, 0.1, 0},
		// lerp(current, next, current_alpha=0.25)
		{material.CombineBlendCurrentAlpha, 0.475, 0.375},
		// lerp(next, current, current_alpha=0.25)
		{material.CombineBlendCurrentAlphaInverse, 0.425, 0.625},
		// lerp(current, next, next_alpha=0.75)
		{material.CombineBlendNextMapAlpha, 0.425, 0.625},
		// lerp(next, current, next_alpha=0.75)
		{material.CombineBlendNextMapAlphaInverse, 0.475, 0.375},
	}

	for _, tt := range tests {
		t.Run(tt.fn.String(), func(t *testing.T) {
			in := Input{
				Layers: []LayerSample{
					{Color: current},
					{Color: next, ColorFunction: tt.fn, AlphaFunction: tt.fn},
				},
				MapCount: 2,
			}
			got := Composite(in)
			for c := 0; c < 3; c++ {
				assert.InDelta(t, tt.wantC, got[c], 1e-6, "channel %d", c)
			}
			assert.InDelta(t, tt.wantA, got[3], 1e-6, "alpha")
		})
	}
}

func TestCombineCurrentIgnoresNewLayer(t *testing.T) {
	in := Input{
		Layers: []LayerSample{
			{Color: [4]float32{0.2, 0.3, 0.4, 0.5}},
			{Color: [4]float32{0.9, 0.8, 0.7, 0.6}, ColorFunction: material.CombineCurrent, AlphaFunction: material.CombineCurrent},
		},
		MapCount: 2,
	}
	assert.Equal(t, [4]float32{0.2, 0.3, 0.4, 0.5}, Composite(in))
}

func TestAlphaReplicate(t *testing.T) {
	// Layer 1's replicate bit broadcasts its alpha across RGB before the
	// multiply, so the result is current.rgb * next.a.
	in := Input{
		Layers: []LayerSample{
			{Color: [4]float32{1, 1, 1, 1}},
			{Color: [4]float32{0.9, 0.8, 0.7, 0.5}, ColorFunction: material.CombineMultiply, AlphaFunction: material.CombineCurrent},
		},
		MapCount:           2,
		AlphaReplicateMask: 0b10,
	}
	got := Composite(in)
	assert.InDelta(t, 0.5, got[0], 1e-6)
	assert.InDelta(t, 0.5, got[1], 1e-6)
	assert.InDelta(t, 0.5, got[2], 1e-6)
	assert.InDelta(t, 1.0, got[3], 1e-6)
}

func TestFogAttenuatesAlphaOnly(t *testing.T) {
	profile := &fog.Profile{FadeStart: 0, FadeEnd: 100, MaxOpacity: 1}
	in := Input{
		Layers:   []LayerSample{{Color: [4]float32{0.8, 0.6, 0.4, 1}}},
		MapCount: 1,
		Fog:      profile,
		Distance: 50, // density 0.5
	}
	got := Composite(in)
	assert.InDelta(t, 0.8, got[0], 1e-6)
	assert.InDelta(t, 0.6, got[1], 1e-6)
	assert.InDelta(t, 0.4, got[2], 1e-6)
	assert.InDelta(t, 0.5, got[3], 1e-6)
}

func TestFogPremultipliesRGB(t *testing.T) {
	profile := &fog.Profile{FadeStart: 0, FadeEnd: 100, MaxOpacity: 1}
	in := Input{
		Layers:      []LayerSample{{Color: [4]float32{0.8, 0.6, 0.4, 1}}},
		MapCount:    1,
		Fog:         profile,
		Distance:    50,
		Premultiply: true,
	}
	got := Composite(in)
	assert.InDelta(t, 0.4, got[0], 1e-6)
	assert.InDelta(t, 0.3, got[1], 1e-6)
	assert.InDelta(t, 0.2, got[2], 1e-6)
	assert.InDelta(t, 0.5, got[3], 1e-6)
}

func TestOutputClamped(t *testing.T) {
	in := Input{
		Layers: []LayerSample{
			{Color: [4]float32{0.9, 0.9, 0.9, 0.9}},
			{Color: [4]float32{0.9, 0.9, 0.9, 0.9}, ColorFunction: material.CombineAdd, AlphaFunction: material.CombineSubtractNextMap},
		},
		MapCount: 2,
	}
	got := Composite(in)
	assert.Equal(t, float32(1), got[0])
	assert.Equal(t, float32(1), got[1])
	assert.Equal(t, float32(1), got[2])
	assert.Equal(t, float32(0), got[3]) // 0.9 - 0.9 = 0
}

func TestChicagoMultiplyEndToEnd(t *testing.T) {
	// Two-layer chicago material: map0 red, map1 green, multiply color,
	// current alpha. The channels cancel to black with full alpha.
	in := Input{
		Layers: []LayerSample{
			{Color: [4]float32{1, 0, 0, 1}},
			{Color: [4]float32{0, 1, 0, 1}, ColorFunction: material.CombineMultiply, AlphaFunction: material.CombineCurrent},
		},
		MapCount: 2,
	}
	assert.Equal(t, [4]float32{0, 0, 0, 1}, Composite(in))
}

func TestEmptyInput(t *testing.T) {
	assert.Equal(t, [4]float32{}, Composite(Input{}))
}
