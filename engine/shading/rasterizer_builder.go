package shading

import "image/color"

type RasterizerBuilderOption func(*Rasterizer)

// WithClearColour sets the colour Clear fills the colour buffer with. The default is opaque black.
func WithClearColour(c color.RGBA) RasterizerBuilderOption {
	return func(r *Rasterizer) {
		r.clear = c
	}
}

// WithWorkers sets the maximum number of concurrent band workers.
//
// Parameters:
//   - n: the worker count, values below 1 are ignored
//
// Returns:
//   - RasterizerBuilderOption: a function that sets the worker count
func WithWorkers(n int) RasterizerBuilderOption {
	return func(r *Rasterizer) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithBandRows sets how many rows one worker task shades.
func WithBandRows(rows int) RasterizerBuilderOption {
	return func(r *Rasterizer) {
		if rows > 0 {
			r.bandRows = rows
		}
	}
}
