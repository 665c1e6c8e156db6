//go:build goexperiment.arenas

// SPDX-License-Identifier: MIT
package mem

import "arena"

// Manager carries an optional arena for bulk lattice and domain buffers.
type Manager struct {
	A *arena.Arena
}

// NewManager returns a heap-backed Manager.
func NewManager() Manager { return Manager{} }

// NewArena returns an arena-backed Manager; FreeAll releases everything
// allocated through it at once.
func NewArena() Manager { return Manager{A: arena.NewArena()} }

func New[T any](m Manager) *T {
	if m.A != nil {
		return arena.New[T](m.A)
	}
	return new(T)
}

func MakeSlice[T any](m Manager, n int) []T {
	if m.A != nil {
		return arena.MakeSlice[T](m.A, n, n)
	}
	return make([]T, n)
}

func (m Manager) FreeAll() {
	if m.A != nil {
		m.A.Free()
	}
}

// Pixels returns an RGBA float32 working buffer of n pixels.
func Pixels(m Manager, n int) []float32 {
	return MakeSlice[float32](m, n*4)
}

// Recycle is a no-op on the arena build; FreeAll reclaims in bulk.
func Recycle(m Manager, buf []float32) {}
