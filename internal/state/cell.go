// Package state provides observable value containers.
package state

import "sync"

// Cell holds a value and notifies subscribers after every write.
// Subscribers run on the writing goroutine, outside the lock, once per write.
type Cell[T any] struct {
	mu     sync.RWMutex
	value  T
	nextID int
	subs   map[int]func(T)
}

func NewCell[T any](initial T) *Cell[T] {
	return &Cell[T]{value: initial, subs: make(map[int]func(T))}
}

func (c *Cell[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

func (c *Cell[T]) Set(v T) {
	c.mu.Lock()
	c.value = v
	subs := c.snapshotSubs()
	c.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
}

// Update applies fn to the current value atomically with respect to other writers.
func (c *Cell[T]) Update(fn func(T) T) T {
	c.mu.Lock()
	c.value = fn(c.value)
	v := c.value
	subs := c.snapshotSubs()
	c.mu.Unlock()

	for _, s := range subs {
		s(v)
	}
	return v
}

// Subscribe registers fn and returns a function that cancels the subscription.
func (c *Cell[T]) Subscribe(fn func(T)) (cancel func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

func (c *Cell[T]) snapshotSubs() []func(T) {
	if len(c.subs) == 0 {
		return nil
	}
	out := make([]func(T), 0, len(c.subs))
	for _, fn := range c.subs {
		out = append(out, fn)
	}
	return out
}
