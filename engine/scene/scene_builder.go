package scene

type SceneBuilderOption func(*scene)

// WithActive sets the scene's initial active state.
//
// Parameters:
//   - active: true to start the scene active
//
// Returns:
//   - SceneBuilderOption: a function that sets the active state
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithSky sets the scene's sky.
//
// Parameters:
//   - sky: the indoor and outdoor fog profiles
//
// Returns:
//   - SceneBuilderOption: a function that sets the sky
func WithSky(sky Sky) SceneBuilderOption {
	return func(s *scene) {
		s.sky = sky
	}
}

// WithWorldOffset sets the offset added to vertex positions before projection.
//
// Parameters:
//   - offset: the world offset
//
// Returns:
//   - SceneBuilderOption: a function that sets the world offset
func WithWorldOffset(offset [3]float32) SceneBuilderOption {
	return func(s *scene) {
		s.worldOffset = offset
	}
}

// WithWarmWorkers overrides the number of pool workers used by WarmPipelines.
// The default is NumCPU-1, minimum 1.
//
// Parameters:
//   - workers: the worker count (values below 1 are ignored)
//
// Returns:
//   - SceneBuilderOption: a function that sets the warm worker count
func WithWarmWorkers(workers int) SceneBuilderOption {
	return func(s *scene) {
		if workers >= 1 {
			s.warmWorkers = workers
		}
	}
}
