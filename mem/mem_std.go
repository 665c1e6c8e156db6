//go:build !goexperiment.arenas

// SPDX-License-Identifier: MIT
package mem

import "sync"

// Manager allocates using the regular Go heap in this build.
type Manager struct{}

// NewManager returns a Manager using standard allocation.
func NewManager() Manager { return Manager{} }

// Generic helpers (package-level functions).
func New[T any](m Manager) *T               { return new(T) }
func MakeSlice[T any](m Manager, n int) []T { return make([]T, n) }

// FreeAll is a no-op on the heap build.
func (Manager) FreeAll() {}

var pixelPool = sync.Pool{
	New: func() any {
		s := make([]float32, 0)
		return &s
	},
}

// Pixels returns an RGBA float32 working buffer of n pixels. The buffer is
// pooled; hand it back with Recycle once the caller is done with it.
func Pixels(m Manager, n int) []float32 {
	p := pixelPool.Get().(*[]float32)
	if cap(*p) < n*4 {
		*p = make([]float32, n*4)
	}
	return (*p)[:n*4]
}

// Recycle returns a buffer obtained from Pixels to the pool.
func Recycle(m Manager, buf []float32) {
	pixelPool.Put(&buf)
}
