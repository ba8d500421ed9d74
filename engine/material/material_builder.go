package material

import (
	"github.com/GlitchSlayed/magellanicus/common"
	"github.com/GlitchSlayed/magellanicus/engine/fog"
)

// MaterialOption is a functional option used to configure a Material during construction.
type MaterialOption func(*material)

// WithLayers sets the ordered texture layer stack for this material.
//
// Parameters:
//   - layers: the layers in combination order (at most MaxLayers)
//
// Returns:
//   - MaterialOption: a function that sets the layers for this material
func WithLayers(layers ...TextureLayer) MaterialOption {
	return func(m *material) {
		m.layers = layers
	}
}

// WithCapabilities sets the static capability flags for this material.
//
// Parameters:
//   - flags: the capability flag set
//
// Returns:
//   - MaterialOption: a function that sets the capabilities for this material
func WithCapabilities(flags CapabilityFlags) MaterialOption {
	return func(m *material) {
		m.capabilities = flags
	}
}

// WithFogProfile sets the fog profile reference and implies CapabilityFog.
//
// Parameters:
//   - profile: the shared fog profile
//
// Returns:
//   - MaterialOption: a function that sets the fog profile for this material
func WithFogProfile(profile *fog.Profile) MaterialOption {
	return func(m *material) {
		m.fogProfile = profile
		if profile != nil {
			m.capabilities |= CapabilityFog
		}
	}
}

// WithFramebufferFunction sets the framebuffer blend function used by
// transparent groups.
//
// Parameters:
//   - f: the framebuffer function
//
// Returns:
//   - MaterialOption: a function that sets the framebuffer function for this material
func WithFramebufferFunction(f FramebufferFunction) MaterialOption {
	return func(m *material) {
		m.framebuffer = f
	}
}

// WithTwoSided disables back-face culling for this material.
//
// Parameters:
//   - twoSided: true to render both faces
//
// Returns:
//   - MaterialOption: a function that sets the two-sided flag for this material
func WithTwoSided(twoSided bool) MaterialOption {
	return func(m *material) {
		m.twoSided = twoSided
	}
}

// WithEnvironmentParams sets the environment group's extra parameters.
//
// Parameters:
//   - params: the environment parameters
//
// Returns:
//   - MaterialOption: a function that sets the environment parameters for this material
func WithEnvironmentParams(params EnvironmentParams) MaterialOption {
	return func(m *material) {
		m.environment = &params
	}
}

// WithLightmap sets the lightmap staging data and implies CapabilityLightmap.
//
// Parameters:
//   - lightmap: the lightmap pixel data pending GPU upload
//
// Returns:
//   - MaterialOption: a function that sets the lightmap for this material
func WithLightmap(lightmap common.TextureStagingData) MaterialOption {
	return func(m *material) {
		m.lightmap = &lightmap
		m.capabilities |= CapabilityLightmap
	}
}
