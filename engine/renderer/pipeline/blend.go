package pipeline

import (
	"github.com/GlitchSlayed/magellanicus/engine/material"
	"github.com/cogentcore/webgpu/wgpu"
)

// BlendStateFor maps a framebuffer function to its GPU blend state. The
// factor/operation pairs reproduce the source data's fixed blend table
// literally, including the multiply formulation
// out = src*src + dst*(1-src) and the One/One subtract/min/max alpha
// channels. The DoubleMultiply and AlphaMultiplyAdd aliases land on the
// multiply and alpha-blend states respectively.
//
// Parameters:
//   - f: the framebuffer function to map
//
// Returns:
//   - *wgpu.BlendState: the blend state implementing the function
func BlendStateFor(f material.FramebufferFunction) *wgpu.BlendState {
	switch f {
	case material.FramebufferMultiply, material.FramebufferDoubleMultiply:
		// framebuffer = pixel*pixel + framebuffer*(1 - pixel)
		return &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrc,
				DstFactor: wgpu.BlendFactorOneMinusSrc,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		}
	case material.FramebufferAdd:
		// framebuffer += pixel, rgb premultiplied by fog attenuation
		return &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOne,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOne,
				Operation: wgpu.BlendOperationAdd,
			},
		}
	case material.FramebufferSubtract:
		// framebuffer = pixel - framebuffer
		return &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOne,
				Operation: wgpu.BlendOperationSubtract,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOne,
				Operation: wgpu.BlendOperationSubtract,
			},
		}
	case material.FramebufferComponentMin:
		return &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOne,
				Operation: wgpu.BlendOperationMin,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOne,
				Operation: wgpu.BlendOperationMin,
			},
		}
	case material.FramebufferComponentMax:
		return &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOne,
				Operation: wgpu.BlendOperationMax,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOne,
				Operation: wgpu.BlendOperationMax,
			},
		}
	default:
		// AlphaBlend and its AlphaMultiplyAdd alias:
		// framebuffer.rgb = mix(framebuffer.rgb, pixel.rgb, pixel.a)
		return &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		}
	}
}
