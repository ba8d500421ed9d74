// package scheduler orders a frame's draw requests before encoding: opaque
// draws grouped by pipeline variant and binding set to minimize state
// changes, transparent draws after them, back-to-front by camera depth.
// A scheduler is single-threaded within a frame; build the request list,
// flush it into a command stream, reuse it next frame.
package scheduler

import (
	"sort"

	"github.com/GlitchSlayed/magellanicus/engine/permutation"
	"github.com/GlitchSlayed/magellanicus/engine/renderer/bind_group_provider"
)

// DrawRequest is one mesh draw with its resolved variant and bindings. Key is
// the post-fallback variant key; the scheduler never resolves or substitutes.
type DrawRequest struct {
	// Key is the pipeline variant to draw with.
	Key permutation.Key

	// Mesh holds the vertex and index buffers.
	Mesh bind_group_provider.BindGroupProvider

	// Bindings holds the material bind group (group 1).
	Bindings bind_group_provider.BindGroupProvider

	// Depth is the camera-space depth used to order transparent draws.
	Depth float32
}

// CommandStream receives the ordered draw sequence. The wgpu backend encodes
// it into the frame's render pass; tests record it.
type CommandStream interface {
	// SetPipeline binds the pipeline variant for subsequent draws.
	//
	// Parameters:
	//   - key: the variant key to bind
	SetPipeline(key permutation.Key)

	// SetBindGroup binds a provider's bind group at a group index for
	// subsequent draws.
	//
	// Parameters:
	//   - group: the bind group index
	//   - provider: the provider whose bind group to bind
	SetBindGroup(group int, provider bind_group_provider.BindGroupProvider)

	// Draw encodes one indexed draw of the mesh with the current pipeline
	// and bind groups.
	//
	// Parameters:
	//   - mesh: the provider holding vertex and index buffers
	Draw(mesh bind_group_provider.BindGroupProvider)
}

// scheduler is the implementation of the Scheduler interface.
type scheduler struct {
	opaque      []DrawRequest
	transparent []DrawRequest
}

// Scheduler defines the interface for per-frame draw ordering. Submit
// requests while building the frame, then Flush them into a command stream.
type Scheduler interface {
	// Submit queues one draw request for the current frame. Transparent
	// variants are routed to the transparent pass automatically.
	//
	// Parameters:
	//   - req: the draw request to queue
	Submit(req DrawRequest)

	// Flush encodes the frame's requests into the stream in render order:
	// opaque draws grouped by variant key then binding set, then transparent
	// draws back-to-front by depth. The queues are cleared afterwards.
	// Pipeline and bind group changes are emitted only when they differ from
	// the previous draw.
	//
	// Parameters:
	//   - stream: the command stream to encode into
	Flush(stream CommandStream)

	// Len reports the number of queued requests.
	//
	// Returns:
	//   - int: the queued request count
	Len() int
}

var _ Scheduler = &scheduler{}

// NewScheduler creates an empty Scheduler.
//
// Returns:
//   - Scheduler: a new scheduler with no queued requests
func NewScheduler() Scheduler {
	return &scheduler{}
}

func (s *scheduler) Submit(req DrawRequest) {
	if req.Key.Transparent() {
		s.transparent = append(s.transparent, req)
	} else {
		s.opaque = append(s.opaque, req)
	}
}

func (s *scheduler) Len() int {
	return len(s.opaque) + len(s.transparent)
}

func (s *scheduler) Flush(stream CommandStream) {
	// Opaque draws are free to reorder; sort them so every variant's draws
	// are contiguous and, within a variant, draws sharing a binding set are
	// adjacent.
	sort.SliceStable(s.opaque, func(i, j int) bool {
		if c := compareKeys(s.opaque[i].Key, s.opaque[j].Key); c != 0 {
			return c < 0
		}
		return bindingIdentity(s.opaque[i]) < bindingIdentity(s.opaque[j])
	})

	// Transparent draws must render farthest-first for the blend math to
	// stack correctly; stable so equal depths keep submission order.
	sort.SliceStable(s.transparent, func(i, j int) bool {
		return s.transparent[i].Depth > s.transparent[j].Depth
	})

	var (
		boundKey   permutation.Key
		keyBound   bool
		boundGroup bind_group_provider.BindGroupProvider
	)
	encode := func(req DrawRequest) {
		if !keyBound || req.Key != boundKey {
			stream.SetPipeline(req.Key)
			boundKey = req.Key
			keyBound = true
			boundGroup = nil
		}
		if req.Bindings != boundGroup {
			stream.SetBindGroup(1, req.Bindings)
			boundGroup = req.Bindings
		}
		stream.Draw(req.Mesh)
	}

	for _, req := range s.opaque {
		encode(req)
	}
	for _, req := range s.transparent {
		encode(req)
	}

	s.opaque = s.opaque[:0]
	s.transparent = s.transparent[:0]
}

// compareKeys imposes an arbitrary but stable total order over variant keys
// for opaque grouping.
func compareKeys(a, b permutation.Key) int {
	switch {
	case a.Group != b.Group:
		return int(a.Group) - int(b.Group)
	case a.Flags != b.Flags:
		return int(a.Flags) - int(b.Flags)
	case a.LayerCount != b.LayerCount:
		return int(a.LayerCount) - int(b.LayerCount)
	default:
		return int(a.Framebuffer) - int(b.Framebuffer)
	}
}

// bindingIdentity groups draws that share a binding set. Providers are
// labeled per material, so the label doubles as the set identity.
func bindingIdentity(req DrawRequest) string {
	if req.Bindings == nil {
		return ""
	}
	return req.Bindings.Label()
}
