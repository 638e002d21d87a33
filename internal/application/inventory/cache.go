package inventory

import (
	"slices"
	"sync"
)

// versionedCache cache de lectura indexada por (clave, versión).
// La versión sube en cada mutación confirmada; las entradas de versiones anteriores no se sirven.
type versionedCache[T any] struct {
	mu      sync.RWMutex
	version uint64
	entries map[string]cacheEntry[T]
}

type cacheEntry[T any] struct {
	version uint64
	value   []T
}

func newVersionedCache[T any]() *versionedCache[T] {
	return &versionedCache[T]{entries: make(map[string]cacheEntry[T])}
}

// Version devuelve la versión vigente; tomarla antes de leer del almacenamiento.
func (c *versionedCache[T]) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Get devuelve una copia del valor si existe para la versión vigente.
func (c *versionedCache[T]) Get(key string) ([]T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || e.version != c.version {
		return nil, false
	}
	return slices.Clone(e.value), true
}

// Put guarda el valor leído en la versión readVersion. Si hubo una mutación entretanto, se descarta.
func (c *versionedCache[T]) Put(key string, readVersion uint64, value []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if readVersion != c.version {
		return
	}
	c.entries[key] = cacheEntry[T]{version: readVersion, value: slices.Clone(value)}
}

// Invalidate incrementa la versión y descarta todas las entradas.
func (c *versionedCache[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version++
	clear(c.entries)
}
