// package compositor reimplements the legacy fixed-function multi-texture
// combiner as a pure, table-testable function: given the sampled layer colors
// and each layer's declared combine functions, it produces the fragment color
// the GPU shaders compute. The WGSL pipelines encode the same math; this
// package is the reference the shader variants are checked against.
package compositor

import (
	"github.com/GlitchSlayed/magellanicus/common"
	"github.com/GlitchSlayed/magellanicus/engine/fog"
	"github.com/GlitchSlayed/magellanicus/engine/material"
)

// LayerSample is one layer's sampled texel plus the combine rules merging it
// into the running accumulator. Layer 0's functions are ignored; its sample
// seeds the accumulator.
type LayerSample struct {
	// Color is the sampled RGBA texel.
	Color [4]float32

	// ColorFunction merges R, G and B independently.
	ColorFunction material.CombineFunction

	// AlphaFunction merges A.
	AlphaFunction material.CombineFunction
}

// Input is one full fragment evaluation request.
type Input struct {
	// Layers are the sampled layers in combination order. Layers at index >=
	// MapCount are skipped.
	Layers []LayerSample

	// MapCount is the material's declared layer count.
	MapCount int

	// AlphaReplicateMask broadcasts a layer's alpha across its RGB before
	// combination, bit i for layer i.
	AlphaReplicateMask uint32

	// Premultiply scales RGB by the fog attenuation applied to alpha.
	Premultiply bool

	// Fog is the fog profile, or nil for unfogged materials.
	Fog *fog.Profile

	// Distance is the camera-space distance used for fog attenuation.
	Distance float32
}

// Composite runs the combiner stack over the input and returns the final
// fragment color, clamped component-wise to [0, 1].
//
// Parameters:
//   - in: the layer samples and material state to evaluate
//
// Returns:
//   - [4]float32: the composited RGBA color
func Composite(in Input) [4]float32 {
	if len(in.Layers) == 0 {
		return [4]float32{}
	}

	current := in.Layers[0].Color
	if in.AlphaReplicateMask&1 != 0 {
		current = replicateAlpha(current)
	}

	for i := 1; i < len(in.Layers); i++ {
		if i >= in.MapCount {
			// Fewer declared maps than stack slots: pass through unchanged.
			continue
		}
		next := in.Layers[i].Color
		if in.AlphaReplicateMask&(1<<uint32(i)) != 0 {
			next = replicateAlpha(next)
		}

		// Both functions read the alphas as they were before this step.
		currentAlpha := current[3]
		nextAlpha := next[3]

		var out [4]float32
		for c := 0; c < 3; c++ {
			out[c] = combine(in.Layers[i].ColorFunction, current[c], next[c], currentAlpha, nextAlpha)
		}
		out[3] = combine(in.Layers[i].AlphaFunction, current[3], next[3], currentAlpha, nextAlpha)
		current = out
	}

	if in.Fog != nil {
		attenuation := 1 - in.Fog.Density(in.Distance)
		current[3] *= attenuation
		if in.Premultiply {
			current[0] *= attenuation
			current[1] *= attenuation
			current[2] *= attenuation
		}
	}

	for c := range current {
		current[c] = common.Saturate(current[c])
	}
	return current
}

// combine merges one channel of a new layer into the accumulator. The
// AddSigned*/SubtractCurrent cases reproduce the legacy combiner's degenerate
// results on purpose; do not "fix" them.
func combine(f material.CombineFunction, current, next, currentAlpha, nextAlpha float32) float32 {
	switch f {
	case material.CombineCurrent:
		return current
	case material.CombineNextMap:
		return next
	case material.CombineMultiply:
		return current * next
	case material.CombineDoubleMultiply:
		return current * next * 2
	case material.CombineAdd:
		return current + next
	case material.CombineAddSignedCurrent, material.CombineAddSignedNextMap, material.CombineSubtractCurrent:
		return 0
	case material.CombineSubtractNextMap:
		return current - next
	case material.CombineBlendCurrentAlpha:
		return common.Lerp(current, next, currentAlpha)
	case material.CombineBlendCurrentAlphaInverse:
		return common.Lerp(next, current, currentAlpha)
	case material.CombineBlendNextMapAlpha:
		return common.Lerp(current, next, nextAlpha)
	case material.CombineBlendNextMapAlphaInverse:
		return common.Lerp(next, current, nextAlpha)
	default:
		return current
	}
}

func replicateAlpha(c [4]float32) [4]float32 {
	return [4]float32{c[3], c[3], c[3], c[3]}
}
