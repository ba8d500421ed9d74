package common

import (
	"unsafe"

	"github.com/chewxy/math32"
)

// Mul4 multiplies two 4x4 matrices and stores the result in out.
// All matrices are stored in column-major order (WebGPU convention).
// Result: out = a * b
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - a: left-hand matrix (16 elements)
//   - b: right-hand matrix (16 elements)
func Mul4(out, a, b []float32) {
	var tmp [16]float32
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += a[k*4+row] * b[col*4+k]
			}
			tmp[col*4+row] = sum
		}
	}
	copy(out, tmp[:])
}

// Perspective builds a right-handed perspective projection matrix with a [0,1]
// depth range, stored column-major in out.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - fovY: vertical field of view in radians
//   - aspect: width / height ratio
//   - near: near clip distance
//   - far: far clip distance
func Perspective(out []float32, fovY, aspect, near, far float32) {
	f := 1.0 / math32.Tan(fovY/2)
	for i := range out[:16] {
		out[i] = 0
	}
	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1
	out[14] = (near * far) / (near - far)
}

// LookAt builds a right-handed view matrix looking from eye toward center,
// stored column-major in out.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - eye: camera world position (3 elements)
//   - center: target world position (3 elements)
//   - up: world up vector (3 elements)
func LookAt(out []float32, eye, center, up [3]float32) {
	fwd := [3]float32{center[0] - eye[0], center[1] - eye[1], center[2] - eye[2]}
	fl := math32.Sqrt(fwd[0]*fwd[0] + fwd[1]*fwd[1] + fwd[2]*fwd[2])
	if fl > 0 {
		fwd[0], fwd[1], fwd[2] = fwd[0]/fl, fwd[1]/fl, fwd[2]/fl
	}

	// right = normalize(fwd × up)
	right := [3]float32{
		fwd[1]*up[2] - fwd[2]*up[1],
		fwd[2]*up[0] - fwd[0]*up[2],
		fwd[0]*up[1] - fwd[1]*up[0],
	}
	rl := math32.Sqrt(right[0]*right[0] + right[1]*right[1] + right[2]*right[2])
	if rl > 0 {
		right[0], right[1], right[2] = right[0]/rl, right[1]/rl, right[2]/rl
	}

	// trueUp = right × fwd
	trueUp := [3]float32{
		right[1]*fwd[2] - right[2]*fwd[1],
		right[2]*fwd[0] - right[0]*fwd[2],
		right[0]*fwd[1] - right[1]*fwd[0],
	}

	out[0], out[4], out[8] = right[0], right[1], right[2]
	out[1], out[5], out[9] = trueUp[0], trueUp[1], trueUp[2]
	out[2], out[6], out[10] = -fwd[0], -fwd[1], -fwd[2]
	out[3], out[7], out[11] = 0, 0, 0
	out[12] = -(right[0]*eye[0] + right[1]*eye[1] + right[2]*eye[2])
	out[13] = -(trueUp[0]*eye[0] + trueUp[1]*eye[1] + trueUp[2]*eye[2])
	out[14] = fwd[0]*eye[0] + fwd[1]*eye[1] + fwd[2]*eye[2]
	out[15] = 1
}

// Clamp constrains v to the inclusive range [lo, hi].
//
// Parameters:
//   - v: the value to constrain
//   - lo: the lower bound
//   - hi: the upper bound
//
// Returns:
//   - float32: v constrained to [lo, hi]
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Saturate constrains v to [0, 1].
//
// Parameters:
//   - v: the value to constrain
//
// Returns:
//   - float32: v constrained to [0, 1]
func Saturate(v float32) float32 {
	return Clamp(v, 0, 1)
}

// Lerp linearly interpolates from a to b by factor t. t is not clamped.
//
// Parameters:
//   - a: the start value (returned when t == 0)
//   - b: the end value (returned when t == 1)
//   - t: the interpolation factor
//
// Returns:
//   - float32: the interpolated value
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// Distance3 returns the euclidean distance between two points in 3D space.
//
// Parameters:
//   - a: the first point (3 elements)
//   - b: the second point (3 elements)
//
// Returns:
//   - float32: the distance between a and b
func Distance3(a, b [3]float32) float32 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	dz := a[2] - b[2]
	return math32.Sqrt(dx*dx + dy*dy + dz*dz)
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}
