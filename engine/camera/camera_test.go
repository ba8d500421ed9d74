package camera

import (
	"math"
	"testing"

	"github.com/GlitchSlayed/magellanicus/engine/permutation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameUniformSizeMatchesLayout(t *testing.T) {
	u := &GPUFrameUniform{}
	assert.Equal(t, int(permutation.FrameUniformSize), u.Size())
	assert.Len(t, u.Marshal(), u.Size())
}

func TestBuildFrameUniform(t *testing.T) {
	ctrl := NewFlyController(WithPosition([3]float32{1, 2, 3}))
	cam := NewCamera(WithController(ctrl), WithAspect(16.0/9.0))
	cam.Update()

	u := BuildFrameUniform(cam, [3]float32{10, 0, -5})
	assert.Equal(t, [4]float32{1, 2, 3, 0}, u.CameraPosition)
	assert.Equal(t, [4]float32{10, 0, -5, 0}, u.WorldOffset)
	assert.Equal(t, cam.ViewProjectionMatrix(), u.ViewProj)
}

func TestFlyControllerDefaultsLookDownNegativeZ(t *testing.T) {
	ctrl := NewFlyController()
	target := ctrl.Target()
	assert.InDelta(t, 0, target[0], 1e-6)
	assert.InDelta(t, 0, target[1], 1e-6)
	assert.InDelta(t, -1, target[2], 1e-6)
}

func TestFlyControllerMoveForward(t *testing.T) {
	ctrl := NewFlyController(WithMoveSpeed(2))
	ctrl.MoveForward(3)

	pos := ctrl.Position()
	assert.InDelta(t, 0, pos[0], 1e-6)
	assert.InDelta(t, 0, pos[1], 1e-6)
	assert.InDelta(t, -6, pos[2], 1e-6)
}

func TestFlyControllerStrafePerpendicularToView(t *testing.T) {
	ctrl := NewFlyController()
	ctrl.MoveRight(1)

	pos := ctrl.Position()
	assert.InDelta(t, 1, pos[0], 1e-6)
	assert.InDelta(t, 0, pos[2], 1e-6)
}

func TestFlyControllerPitchClamped(t *testing.T) {
	ctrl := NewFlyController(WithLookSensitivity(1))
	ctrl.Turn(0, 10)
	assert.Less(t, ctrl.Pitch(), float32(math.Pi/2))

	ctrl.Turn(0, -20)
	assert.Greater(t, ctrl.Pitch(), float32(-math.Pi/2))
}

func TestCameraUpdateRecomputesMatrices(t *testing.T) {
	ctrl := NewFlyController()
	cam := NewCamera(WithController(ctrl))
	cam.Update()
	before := cam.ViewProjectionMatrix()

	ctrl.SetPosition([3]float32{0, 50, 0})
	cam.Update()
	after := cam.ViewProjectionMatrix()

	require.NotEqual(t, before, after)
}
