// package fog implements atmospheric fog attenuation: a pure mapping from
// camera distance to fog density, plus color application. Two falloff models
// are supported: a linear ramp and a quartic curve fitted to the legacy
// engine's planar fog falloff.
package fog

import (
	"fmt"

	"github.com/GlitchSlayed/magellanicus/common"
	"github.com/chewxy/math32"
)

// Model selects the density falloff algorithm for a fog profile.
type Model int

const (
	// ModelLinear ramps density linearly between FadeStart and FadeEnd.
	ModelLinear Model = iota

	// ModelPolynomial evaluates a fixed quartic curve over the normalized
	// interpolation factor. The curve is an empirical fit to the legacy
	// engine's indoor/planar fog falloff and its coefficients must not be
	// altered.
	ModelPolynomial
)

// Quartic curve coefficients for ModelPolynomial, highest order first.
// y = 1.47892x^4 - 5.18239x^3 + 5.00783x^2 - 0.30246x - 0.00072
const (
	curveX4 = 1.47892
	curveX3 = -5.18239
	curveX2 = 5.00783
	curveX1 = -0.30246
	curveX0 = -0.00072
)

// Profile describes one fog definition. Profiles are immutable once built and
// shared by reference across all materials using the same fog definition.
type Profile struct {
	// SkyColor is the color fog fades toward, as RGBA.
	SkyColor [4]float32

	// FadeStart is the distance at which fog begins to apply.
	FadeStart float32

	// FadeEnd is the distance at which fog reaches full opacity.
	// Must be >= FadeStart.
	FadeEnd float32

	// MinOpacity floors the density for any distance beyond FadeStart.
	MinOpacity float32

	// MaxOpacity caps the density. At 1.0 geometry past FadeEnd is fully
	// replaced by SkyColor.
	MaxOpacity float32

	// Model selects the falloff algorithm.
	Model Model
}

// Validate checks that the profile's fields are finite, ordered, and in range.
//
// Returns:
//   - error: a description of the first invalid field, or nil
func (p *Profile) Validate() error {
	for i, c := range p.SkyColor {
		if c < 0 || c > 1 || math32.IsNaN(c) || math32.IsInf(c, 0) {
			return fmt.Errorf("invalid fog sky color channel %d: %v", i, c)
		}
	}
	if p.FadeStart < 0 || math32.IsNaN(p.FadeStart) || math32.IsInf(p.FadeStart, 0) {
		return fmt.Errorf("invalid fog fade start %v", p.FadeStart)
	}
	if p.FadeEnd < p.FadeStart || math32.IsNaN(p.FadeEnd) || math32.IsInf(p.FadeEnd, 0) {
		return fmt.Errorf("invalid fog fade end %v (fade start %v)", p.FadeEnd, p.FadeStart)
	}
	if p.MinOpacity < 0 || p.MinOpacity > 1 || math32.IsNaN(p.MinOpacity) {
		return fmt.Errorf("invalid fog min opacity %v", p.MinOpacity)
	}
	if p.MaxOpacity < p.MinOpacity || p.MaxOpacity > 1 || math32.IsNaN(p.MaxOpacity) {
		return fmt.Errorf("invalid fog max opacity %v (min opacity %v)", p.MaxOpacity, p.MinOpacity)
	}
	return nil
}

// Normalize clamps all fields into their valid ranges in place. Useful when
// consuming tag data that is known to be sloppy rather than rejecting it.
func (p *Profile) Normalize() {
	for i := range p.SkyColor {
		p.SkyColor[i] = common.Saturate(p.SkyColor[i])
	}
	p.FadeStart = common.Clamp(p.FadeStart, 0, math32.MaxFloat32)
	p.FadeEnd = common.Clamp(p.FadeEnd, p.FadeStart, math32.MaxFloat32)
	p.MinOpacity = common.Saturate(p.MinOpacity)
	p.MaxOpacity = common.Clamp(p.MaxOpacity, p.MinOpacity, 1)
}

// Density maps a camera distance to a fog density in [0, 1].
//
// Distances at or below FadeStart produce 0; distances at or beyond FadeEnd
// produce MaxOpacity. In between, the normalized factor is run through the
// profile's falloff model, clamped, scaled by MaxOpacity, and floored by
// MinOpacity. A degenerate range (FadeEnd == FadeStart) behaves as a step
// function rather than dividing by zero: the boundary distance itself is
// already at MaxOpacity.
//
// Parameters:
//   - distance: camera-space distance to the fragment
//
// Returns:
//   - float32: the fog density in [0, MaxOpacity]
func (p *Profile) Density(distance float32) float32 {
	// The FadeEnd check runs first so the degenerate step function returns
	// MaxOpacity at the shared boundary. The non-degenerate ramp is 0 at
	// FadeStart either way.
	if distance >= p.FadeEnd {
		return p.MaxOpacity
	}
	if distance <= p.FadeStart {
		return 0
	}

	x := (distance - p.FadeStart) / (p.FadeEnd - p.FadeStart)

	var y float32
	switch p.Model {
	case ModelPolynomial:
		y = common.Saturate(Curve(x))
	default:
		y = common.Saturate(x)
	}

	d := y * p.MaxOpacity
	if d < p.MinOpacity {
		d = p.MinOpacity
	}
	return common.Clamp(d, 0, p.MaxOpacity)
}

// Apply fogs a color: linear interpolation from base toward the profile's
// SkyColor by Density(distance).
//
// Parameters:
//   - distance: camera-space distance to the fragment
//   - base: the unfogged RGBA color
//
// Returns:
//   - [4]float32: the fogged RGBA color
func (p *Profile) Apply(distance float32, base [4]float32) [4]float32 {
	d := p.Density(distance)
	var out [4]float32
	for i := range out {
		out[i] = common.Lerp(base[i], p.SkyColor[i], d)
	}
	return out
}

// Curve evaluates the raw quartic falloff curve at x without clamping. The
// value dips slightly negative at x=0 and collapses back toward zero exactly
// at x=1; callers clamp the result to [0, 1].
//
// Parameters:
//   - x: the normalized interpolation factor
//
// Returns:
//   - float32: the raw curve value
func Curve(x float32) float32 {
	x2 := x * x
	x3 := x2 * x
	x4 := x3 * x
	return curveX4*x4 + curveX3*x3 + curveX2*x2 + curveX1*x + curveX0
}
