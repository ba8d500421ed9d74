// package permutation maps a material's static shape onto the pipeline variant
// that renders it: a comparable Key identifying the variant, and the fixed
// binding/vertex layout every material resolving to that Key must satisfy.
// Resolution is pure; two materials with the same group, capability flags and
// layer count always share a Key no matter what their numeric parameters are.
package permutation

import (
	"fmt"

	"github.com/GlitchSlayed/magellanicus/engine/material"
)

// Key identifies one pipeline variant. It is a plain comparable value usable
// directly as a map key.
type Key struct {
	// Group is the material's shader group.
	Group material.ShaderGroup

	// Flags are the pipeline-shaping capability flags.
	Flags material.CapabilityFlags

	// LayerCount is the declared texture layer count.
	LayerCount uint8

	// Framebuffer selects the blend state for transparent groups. Always
	// FramebufferAlphaBlend for opaque groups so they collapse to one variant
	// per shape.
	Framebuffer material.FramebufferFunction
}

// Resolve derives the pipeline variant key from a material's static shape.
// The result depends only on the group, capability flags, layer count and
// (for transparent groups) the framebuffer function; per-layer transforms,
// combine functions, colors and textures never influence it.
//
// Parameters:
//   - m: the material to resolve
//
// Returns:
//   - Key: the pipeline variant key
func Resolve(m material.Material) Key {
	k := Key{
		Group:      m.Group(),
		Flags:      m.Capabilities(),
		LayerCount: uint8(m.LayerCount()),
	}
	if m.Group().Transparent() {
		k.Framebuffer = normalizeFramebuffer(m.FramebufferFunction())
	}
	return k
}

// FallbackKey retrieves the key of the solid-color fallback pipeline, the
// designated substitute when a variant fails to build or its group is
// unimplemented.
//
// Returns:
//   - Key: the fallback pipeline key
func FallbackKey() Key {
	return Key{Group: material.GroupFallback}
}

// Transparent reports whether this variant draws in the transparent pass.
//
// Returns:
//   - bool: true when the group blends back-to-front
func (k Key) Transparent() bool {
	return k.Group.Transparent()
}

// TangentBasis reports whether the variant's vertex stream carries the
// normal/binormal/tangent attributes. Chicago variants always do, with or
// without CapabilityTangentSpace: the first-map cube direction is derived
// from the fragment's tangent frame, and whether the first map is a cube is
// a material parameter the key cannot see.
//
// Returns:
//   - bool: true when the vertex layout includes the tangent basis
func (k Key) TangentBasis() bool {
	return k.Group == material.GroupTransparentChicago || k.Flags.Has(material.CapabilityTangentSpace)
}

func (k Key) String() string {
	if k.Group.Transparent() {
		return fmt.Sprintf("%s/flags=%04b/layers=%d/%s", k.Group, k.Flags, k.LayerCount, k.Framebuffer)
	}
	return fmt.Sprintf("%s/flags=%04b/layers=%d", k.Group, k.Flags, k.LayerCount)
}

// normalizeFramebuffer folds the aliased framebuffer functions onto the blend
// state they share, so aliases land on the same cached pipeline.
func normalizeFramebuffer(f material.FramebufferFunction) material.FramebufferFunction {
	switch f {
	case material.FramebufferDoubleMultiply:
		return material.FramebufferMultiply
	case material.FramebufferAlphaMultiplyAdd:
		return material.FramebufferAlphaBlend
	default:
		return f
	}
}
