package bind_group_provider

import "fmt"

// frameRing is the implementation of the FrameRing interface.
type frameRing struct {
	providers []BindGroupProvider
}

// FrameRing rotates a fixed set of providers across frames in flight so
// uniform data written for the current frame never rewrites descriptor state
// a previous frame's submitted command buffer still references. Callers index
// it with a monotonically increasing frame counter.
type FrameRing interface {
	// Provider retrieves the provider slot for a frame counter value.
	//
	// Parameters:
	//   - frame: the monotonically increasing frame index
	//
	// Returns:
	//   - BindGroupProvider: the provider owning that frame's buffers
	Provider(frame uint64) BindGroupProvider

	// Len reports the number of frames in flight the ring covers.
	//
	// Returns:
	//   - int: the ring size
	Len() int

	// Release releases the GPU resources of every slot.
	Release()
}

var _ FrameRing = &frameRing{}

// NewFrameRing builds a ring of per-frame providers.
//
// Parameters:
//   - frames: the number of frames in flight (must be at least 1)
//   - build: constructs the provider for one slot index
//
// Returns:
//   - FrameRing: the populated ring
//   - error: the first build error, or nil
func NewFrameRing(frames int, build func(slot int) (BindGroupProvider, error)) (FrameRing, error) {
	if frames < 1 {
		return nil, fmt.Errorf("frame ring needs at least one slot, got %d", frames)
	}
	r := &frameRing{providers: make([]BindGroupProvider, frames)}
	for i := range r.providers {
		p, err := build(i)
		if err != nil {
			r.Release()
			return nil, fmt.Errorf("frame ring slot %d: %w", i, err)
		}
		r.providers[i] = p
	}
	return r, nil
}

func (r *frameRing) Provider(frame uint64) BindGroupProvider {
	return r.providers[frame%uint64(len(r.providers))]
}

func (r *frameRing) Len() int {
	return len(r.providers)
}

func (r *frameRing) Release() {
	for _, p := range r.providers {
		if p != nil {
			p.Release()
		}
	}
}
