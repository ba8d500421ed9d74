package fog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProfile(model Model) *Profile {
	return &Profile{
		SkyColor:   [4]float32{0.5, 0.6, 0.7, 1},
		FadeStart:  100,
		FadeEnd:    500,
		MinOpacity: 0,
		MaxOpacity: 1,
		Model:      model,
	}
}

func TestDensityBoundaries(t *testing.T) {
	for _, model := range []Model{ModelLinear, ModelPolynomial} {
		p := testProfile(model)
		p.MaxOpacity = 0.8

		assert.Equal(t, float32(0), p.Density(0))
		assert.Equal(t, float32(0), p.Density(p.FadeStart))
		assert.Equal(t, p.MaxOpacity, p.Density(p.FadeEnd))
		assert.Equal(t, p.MaxOpacity, p.Density(p.FadeEnd*10))
	}
}

func TestDensityMonotonic(t *testing.T) {
	for _, model := range []Model{ModelLinear, ModelPolynomial} {
		p := testProfile(model)

		prev := float32(0)
		for d := p.FadeStart; d <= p.FadeStart+(p.FadeEnd-p.FadeStart)*0.95; d += 20 {
			cur := p.Density(d)
			assert.GreaterOrEqual(t, cur, prev, "model %v at distance %v", model, d)
			assert.GreaterOrEqual(t, cur, float32(0))
			assert.LessOrEqual(t, cur, p.MaxOpacity)
			prev = cur
		}
	}
}

func TestDensityDegenerateRange(t *testing.T) {
	p := testProfile(ModelLinear)
	p.FadeEnd = p.FadeStart
	p.MaxOpacity = 0.75

	// Step function: no divide-by-zero, max opacity from the boundary on.
	assert.Equal(t, float32(0), p.Density(p.FadeStart-1))
	assert.Equal(t, float32(0.75), p.Density(p.FadeStart))
	assert.Equal(t, float32(0.75), p.Density(p.FadeStart+0.001))
}

func TestDensityMinOpacityFloor(t *testing.T) {
	p := testProfile(ModelLinear)
	p.MinOpacity = 0.25

	// Below FadeStart the floor does not apply.
	assert.Equal(t, float32(0), p.Density(p.FadeStart))
	// Just past FadeStart the raw ramp is ~0 but the floor kicks in.
	assert.Equal(t, float32(0.25), p.Density(p.FadeStart+1))
}

func TestCurveSpotChecks(t *testing.T) {
	// Raw quartic endpoints and midpoint against the literal polynomial.
	assert.InDelta(t, -0.00072, float64(Curve(0)), 1e-6)
	assert.InDelta(t, 1.47892-5.18239+5.00783-0.30246-0.00072, float64(Curve(1)), 1e-5)

	x := float32(0.5)
	want := 1.47892*0.0625 - 5.18239*0.125 + 5.00783*0.25 - 0.30246*0.5 - 0.00072
	assert.InDelta(t, want, float64(Curve(x)), 1e-5)
}

func TestApply(t *testing.T) {
	p := testProfile(ModelLinear)
	base := [4]float32{1, 0, 0, 1}

	// At the midpoint density is 0.5; color is halfway to sky.
	mid := (p.FadeStart + p.FadeEnd) / 2
	got := p.Apply(mid, base)
	assert.InDelta(t, 0.75, float64(got[0]), 1e-5)
	assert.InDelta(t, 0.3, float64(got[1]), 1e-5)
	assert.InDelta(t, 0.35, float64(got[2]), 1e-5)

	// No fog before FadeStart.
	assert.Equal(t, base, p.Apply(0, base))
	// Full fog past FadeEnd with MaxOpacity 1.
	assert.Equal(t, p.SkyColor, p.Apply(p.FadeEnd, base))
}

func TestValidate(t *testing.T) {
	p := testProfile(ModelLinear)
	require.NoError(t, p.Validate())

	bad := *p
	bad.FadeEnd = bad.FadeStart - 1
	assert.Error(t, bad.Validate())

	bad = *p
	bad.SkyColor[1] = 1.5
	assert.Error(t, bad.Validate())

	bad = *p
	bad.MaxOpacity = 0.1
	bad.MinOpacity = 0.5
	assert.Error(t, bad.Validate())
}

func TestNormalize(t *testing.T) {
	p := &Profile{
		SkyColor:   [4]float32{-0.5, 2, 0.5, 1},
		FadeStart:  100,
		FadeEnd:    50,
		MinOpacity: 0.9,
		MaxOpacity: 0.2,
	}
	p.Normalize()
	require.NoError(t, p.Validate())
	assert.Equal(t, float32(0), p.SkyColor[0])
	assert.Equal(t, float32(1), p.SkyColor[1])
	assert.Equal(t, p.FadeStart, p.FadeEnd)
	assert.Equal(t, p.MinOpacity, p.MaxOpacity)
}
