// package shader generates and wraps the WGSL source of each pipeline
// variant. Binding and vertex layouts are not parsed back out of the source;
// they come from the permutation resolver, and the generator emits
// declarations that match them by construction.
package shader

import (
	"regexp"

	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies a shader stage entry point within a variant's module.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex stage entry point.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment stage entry point.
	ShaderTypeFragment
)

var (
	// vertexEntryRegex matches @vertex functions and captures the entry point name
	vertexEntryRegex = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)

	// fragmentEntryRegex matches @fragment functions and captures the entry point name
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)
)

// shader is the implementation of the Shader interface. One shader holds a
// complete variant module: both stage entry points share the source.
type shader struct {
	key           string
	source        string
	vertexEntry   string
	fragmentEntry string
	module        *wgpu.ShaderModuleDescriptor
}

// Shader defines the interface for one pipeline variant's WGSL module. It
// exposes the variant key, the generated source, the per-stage entry point
// names, and the module descriptor handed to pipeline creation.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the WGSL shader source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// EntryPoint retrieves the entry point name for a shader stage.
	//
	// Parameters:
	//   - shaderType: the stage to look up (vertex or fragment)
	//
	// Returns:
	//   - string: the entry point name, or an empty string if the stage is absent
	EntryPoint(shaderType ShaderType) string

	// Module returns the wgpu.ShaderModuleDescriptor for this shader.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the shader module descriptor containing the WGSL code and label
	Module() *wgpu.ShaderModuleDescriptor
}

var _ Shader = &shader{}

// NewShader wraps generated WGSL source as a Shader. Entry point names are
// parsed from the source.
//
// Parameters:
//   - key: a unique identifier for the shader, used for caching and lookups
//   - source: the complete WGSL source containing the stage entry points
//
// Returns:
//   - Shader: a new Shader instance wrapping the source
func NewShader(key, source string) Shader {
	s := &shader{
		key:    key,
		source: source,
		module: &wgpu.ShaderModuleDescriptor{
			Label: key,
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
				Code: source,
			},
		},
	}
	if m := vertexEntryRegex.FindStringSubmatch(source); m != nil {
		s.vertexEntry = m[1]
	}
	if m := fragmentEntryRegex.FindStringSubmatch(source); m != nil {
		s.fragmentEntry = m[1]
	}
	return s
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) EntryPoint(shaderType ShaderType) string {
	switch shaderType {
	case ShaderTypeVertex:
		return s.vertexEntry
	case ShaderTypeFragment:
		return s.fragmentEntry
	default:
		return ""
	}
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}
