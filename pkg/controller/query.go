package controller

import (
	"maps"
	"slices"
)

// Get returns the object with the given vid.
func (c *Controller[T]) Get(vid int) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	obj, ok := c.items[vid]
	return obj, ok
}

// Contains reports whether vid is cached.
func (c *Controller[T]) Contains(vid int) bool {
	_, ok := c.Get(vid)
	return ok
}

// Len returns the number of cached objects.
func (c *Controller[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// KnownIDs returns the cached vids, sorted.
func (c *Controller[T]) KnownIDs() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Sorted(maps.Keys(c.items))
}

// All returns the cached objects ordered by vid.
func (c *Controller[T]) All() []T {
	return c.Filter(func(T) bool { return true })
}

// Filter returns the cached objects matching pred, ordered by vid. pred
// runs with the cache locked and must not call back into the controller.
func (c *Controller[T]) Filter(pred func(T) bool) []T {
	c.mu.Lock()
	defer c.mu.Unlock()

	var objs []T
	for _, vid := range slices.Sorted(maps.Keys(c.items)) {
		if obj := c.items[vid]; pred(obj) {
			objs = append(objs, obj)
		}
	}
	return objs
}

// First returns the first object, by vid, matching pred. pred runs with the
// cache locked.
func (c *Controller[T]) First(pred func(T) bool) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, vid := range slices.Sorted(maps.Keys(c.items)) {
		if obj := c.items[vid]; pred(obj) {
			return obj, true
		}
	}
	var zero T
	return zero, false
}
