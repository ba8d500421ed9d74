package material

// CombineFunction is one per-channel rule of the legacy fixed-function texture
// combiner: it merges a new layer's sample into the running accumulator.
// Values follow the tag data's on-disk order and must not be renumbered.
type CombineFunction uint32

const (
	// CombineCurrent keeps the running accumulator unchanged.
	CombineCurrent CombineFunction = iota

	// CombineNextMap replaces the accumulator with the new layer's sample.
	CombineNextMap

	// CombineMultiply multiplies the accumulator by the sample.
	CombineMultiply

	// CombineDoubleMultiply multiplies the accumulator by the sample, doubled.
	CombineDoubleMultiply

	// CombineAdd adds the sample to the accumulator.
	CombineAdd

	// CombineAddSignedCurrent is degenerate in the legacy combiner and
	// produces 0. Kept as-is; see the renderer design notes.
	CombineAddSignedCurrent

	// CombineAddSignedNextMap is degenerate and produces 0.
	CombineAddSignedNextMap

	// CombineSubtractCurrent is degenerate and produces 0.
	CombineSubtractCurrent

	// CombineSubtractNextMap subtracts the sample from the accumulator.
	CombineSubtractNextMap

	// CombineBlendCurrentAlpha lerps from the accumulator to the sample by the
	// accumulator's alpha.
	CombineBlendCurrentAlpha

	// CombineBlendCurrentAlphaInverse lerps from the sample to the accumulator
	// by the accumulator's alpha.
	CombineBlendCurrentAlphaInverse

	// CombineBlendNextMapAlpha lerps from the accumulator to the sample by the
	// sample's alpha.
	CombineBlendNextMapAlpha

	// CombineBlendNextMapAlphaInverse lerps from the sample to the accumulator
	// by the sample's alpha.
	CombineBlendNextMapAlphaInverse

	combineFunctionCount
)

// Valid reports whether f is a known combine function value.
//
// Returns:
//   - bool: true if f is within the known range
func (f CombineFunction) Valid() bool {
	return f < combineFunctionCount
}

func (f CombineFunction) String() string {
	switch f {
	case CombineCurrent:
		return "current"
	case CombineNextMap:
		return "next_map"
	case CombineMultiply:
		return "multiply"
	case CombineDoubleMultiply:
		return "double_multiply"
	case CombineAdd:
		return "add"
	case CombineAddSignedCurrent:
		return "add_signed_current"
	case CombineAddSignedNextMap:
		return "add_signed_next_map"
	case CombineSubtractCurrent:
		return "subtract_current"
	case CombineSubtractNextMap:
		return "subtract_next_map"
	case CombineBlendCurrentAlpha:
		return "blend_current_alpha"
	case CombineBlendCurrentAlphaInverse:
		return "blend_current_alpha_inverse"
	case CombineBlendNextMapAlpha:
		return "blend_next_map_alpha"
	case CombineBlendNextMapAlphaInverse:
		return "blend_next_map_alpha_inverse"
	default:
		return "unknown"
	}
}

// FramebufferFunction selects how a transparent material's final pixel is
// blended into the framebuffer. Each value maps to a fixed GPU blend state;
// the value is part of a material's pipeline shape.
type FramebufferFunction uint32

const (
	// FramebufferAlphaBlend: framebuffer.rgb = mix(framebuffer.rgb, pixel.rgb, pixel.a)
	FramebufferAlphaBlend FramebufferFunction = iota

	// FramebufferMultiply: framebuffer.rgb *= pixel.rgb
	FramebufferMultiply

	// FramebufferDoubleMultiply is aliased to the multiply blend state, as the
	// legacy renderer does.
	FramebufferDoubleMultiply

	// FramebufferAdd: framebuffer.rgb += pixel.rgb
	FramebufferAdd

	// FramebufferSubtract: framebuffer.rgb -= pixel.rgb
	FramebufferSubtract

	// FramebufferComponentMin: framebuffer.rgb = min(framebuffer.rgb, pixel.rgb)
	FramebufferComponentMin

	// FramebufferComponentMax: framebuffer.rgb = max(framebuffer.rgb, pixel.rgb)
	FramebufferComponentMax

	// FramebufferAlphaMultiplyAdd is aliased to the alpha-blend state, as the
	// legacy renderer does.
	FramebufferAlphaMultiplyAdd

	framebufferFunctionCount
)

// Valid reports whether f is a known framebuffer function value.
//
// Returns:
//   - bool: true if f is within the known range
func (f FramebufferFunction) Valid() bool {
	return f < framebufferFunctionCount
}

// Premultiplies reports whether this framebuffer function requires the
// fragment's RGB to be scaled by the same fog attenuation applied to alpha.
// Additive and subtractive blending have no destination alpha term, so fog
// must be folded into the color channels directly.
//
// Returns:
//   - bool: true if RGB must be premultiplied by fog attenuation
func (f FramebufferFunction) Premultiplies() bool {
	return f == FramebufferAdd || f == FramebufferSubtract
}

func (f FramebufferFunction) String() string {
	switch f {
	case FramebufferAlphaBlend:
		return "alpha_blend"
	case FramebufferMultiply:
		return "multiply"
	case FramebufferDoubleMultiply:
		return "double_multiply"
	case FramebufferAdd:
		return "add"
	case FramebufferSubtract:
		return "subtract"
	case FramebufferComponentMin:
		return "component_min"
	case FramebufferComponentMax:
		return "component_max"
	case FramebufferAlphaMultiplyAdd:
		return "alpha_multiply_add"
	default:
		return "unknown"
	}
}
