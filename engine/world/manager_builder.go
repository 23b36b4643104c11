package world

type ManagerBuilderOption func(*Manager)

// WithLoadRadius sets the chunk radius meshed around the viewer. Negative values are ignored.
func WithLoadRadius(radius int) ManagerBuilderOption {
	return func(m *Manager) {
		if radius >= 0 {
			m.radius = radius
		}
	}
}

// WithWorkers sets the maximum number of concurrent populate and mesh workers.
func WithWorkers(n int) ManagerBuilderOption {
	return func(m *Manager) {
		if n > 0 {
			m.workers = n
		}
	}
}

// WithProgress registers a callback invoked once per finished chunk mesh during Update.
// Calls are serialised.
//
// Parameters:
//   - fn: receives the number of meshes just finished (always 1) and the total being built
//
// Returns:
//   - ManagerBuilderOption: a function that sets the progress callback
func WithProgress(fn func(done, total int)) ManagerBuilderOption {
	return func(m *Manager) {
		m.progress = fn
	}
}
