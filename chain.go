// File: strata/chain.go
package strata

import (
	"fmt"
	"iter"
	"strings"
	"sync"
)

// Chain is an ordered collection of Sources defining search precedence:
// the earlier a source sits in the chain, the higher its priority.
// No two sources may share a name; every mutating operation removes an
// existing source with the same name before inserting.
//
// The backing list is copy-on-write. Writers build a fresh list and
// swap it in under the write lock, so snapshots handed to readers are
// never mutated and iteration is unaffected by concurrent changes.
type Chain struct {
	mu      sync.RWMutex
	sources []Source
}

// NewChain creates an empty chain.
func NewChain() *Chain {
	return &Chain{}
}

// NewChainFrom creates a chain holding the same sources as other, in
// the same order. Subsequent mutations of either chain are independent.
func NewChainFrom(other *Chain) *Chain {
	return &Chain{sources: other.Snapshot()}
}

// Snapshot returns the current source list. The returned slice is a
// stable snapshot: later mutations of the chain never alter it.
func (c *Chain) Snapshot() []Source {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sources
}

// All returns an iterator over a snapshot taken when iteration starts.
func (c *Chain) All() iter.Seq[Source] {
	return func(yield func(Source) bool) {
		for _, source := range c.Snapshot() {
			if !yield(source) {
				return
			}
		}
	}
}

// AddFirst inserts source with the highest precedence, removing any
// existing source with the same name first.
func (c *Chain) AddFirst(source Source) {
	c.mu.Lock()
	defer c.mu.Unlock()

	trimmed := removeByName(c.sources, source.Name())
	next := make([]Source, 0, len(trimmed)+1)
	next = append(next, source)
	c.sources = append(next, trimmed...)
}

// AddLast appends source with the lowest precedence, removing any
// existing source with the same name first.
func (c *Chain) AddLast(source Source) {
	c.mu.Lock()
	defer c.mu.Unlock()

	trimmed := removeByName(c.sources, source.Name())
	next := make([]Source, 0, len(trimmed)+1)
	next = append(next, trimmed...)
	c.sources = append(next, source)
}

// AddBefore inserts source immediately above the source named anchor.
// It fails with ErrSourceNotFound if anchor is absent and with
// ErrInvalidArgument if source would be positioned relative to itself.
func (c *Chain) AddBefore(anchor string, source Source) error {
	return c.addRelative(anchor, source, 0)
}

// AddAfter inserts source immediately below the source named anchor.
// It fails with ErrSourceNotFound if anchor is absent and with
// ErrInvalidArgument if source would be positioned relative to itself.
func (c *Chain) AddAfter(anchor string, source Source) error {
	return c.addRelative(anchor, source, 1)
}

func (c *Chain) addRelative(anchor string, source Source, offset int) error {
	if source.Name() == anchor {
		return fmt.Errorf("%w: source %q cannot be added relative to itself", ErrInvalidArgument, anchor)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	trimmed := removeByName(c.sources, source.Name())
	index := indexOfName(trimmed, anchor)
	if index < 0 {
		return fmt.Errorf("%w: %q", ErrSourceNotFound, anchor)
	}

	at := index + offset
	next := make([]Source, 0, len(trimmed)+1)
	next = append(next, trimmed[:at]...)
	next = append(next, source)
	next = append(next, trimmed[at:]...)
	c.sources = next
	return nil
}

// Remove deletes the source named name from the chain and returns it,
// or nil if no such source exists.
func (c *Chain) Remove(name string) Source {
	c.mu.Lock()
	defer c.mu.Unlock()

	index := indexOfName(c.sources, name)
	if index < 0 {
		return nil
	}

	removed := c.sources[index]
	next := make([]Source, 0, len(c.sources)-1)
	next = append(next, c.sources[:index]...)
	c.sources = append(next, c.sources[index+1:]...)
	return removed
}

// Replace substitutes source for the existing source named name,
// keeping its position. It fails with ErrSourceNotFound if name is
// absent.
func (c *Chain) Replace(name string, source Source) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	index := indexOfName(c.sources, name)
	if index < 0 {
		return fmt.Errorf("%w: %q", ErrSourceNotFound, name)
	}

	next := make([]Source, len(c.sources))
	copy(next, c.sources)
	next[index] = source
	c.sources = next
	return nil
}

// Get returns the source named name, or nil if absent.
func (c *Chain) Get(name string) Source {
	for _, source := range c.Snapshot() {
		if source.Name() == name {
			return source
		}
	}
	return nil
}

// Contains reports whether the chain holds a source named name.
func (c *Chain) Contains(name string) bool {
	return c.Get(name) != nil
}

// PrecedenceOf returns the position of source in the chain (0 is the
// highest precedence), or -1 if source is nil or not present.
func (c *Chain) PrecedenceOf(source Source) int {
	if source == nil {
		return -1
	}
	return indexOfName(c.Snapshot(), source.Name())
}

// Len returns the number of sources in the chain.
func (c *Chain) Len() int {
	return len(c.Snapshot())
}

// String lists the source names in precedence order.
func (c *Chain) String() string {
	snapshot := c.Snapshot()
	names := make([]string, len(snapshot))
	for i, source := range snapshot {
		names[i] = source.Name()
	}
	return "[" + strings.Join(names, ", ") + "]"
}

func indexOfName(sources []Source, name string) int {
	for i, source := range sources {
		if source.Name() == name {
			return i
		}
	}
	return -1
}

// removeByName returns a copy of sources without the named source.
// The input slice is never modified.
func removeByName(sources []Source, name string) []Source {
	index := indexOfName(sources, name)
	if index < 0 {
		out := make([]Source, len(sources))
		copy(out, sources)
		return out
	}
	out := make([]Source, 0, len(sources)-1)
	out = append(out, sources[:index]...)
	return append(out, sources[index+1:]...)
}
