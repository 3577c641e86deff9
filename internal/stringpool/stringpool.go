// Package stringpool manages a pool of interned strings and issues a stable
// integer handle for each entry. Handles are used throughout the compiler in
// place of string values: identifier comparison is integer comparison, and the
// pool is the single owner of the underlying string storage.
package stringpool

import (
	"fmt"
	"sync"
)

// Handle identifies a pooled string. The zero handle is never issued and
// denotes "no string".
type Handle uint32

// InvalidHandle is the reserved null handle.
const InvalidHandle Handle = 0

// Pool is a bidirectional handle/string map. All operations acquire a single
// lock; callers must not retain references into the pool's storage across
// calls that may mutate it.
type Pool struct {
	mu      sync.Mutex
	strings map[Handle]string
	handles map[string]Handle
	next    Handle
}

// NewPool creates an empty string pool.
func NewPool() *Pool {
	return &Pool{
		strings: make(map[Handle]string),
		handles: make(map[string]Handle),
	}
}

// Pool interns a string, disallowing duplicate entries. If an entry with
// matching content already exists its handle is returned, otherwise a newly
// allocated handle is returned.
func (p *Pool) Pool(s string) Handle {
	p.mu.Lock()
	defer p.mu.Unlock()

	if h, ok := p.handles[s]; ok {
		return h
	}
	return p.poolFastLocked(s)
}

// PoolFast adds a string to the pool without checking for duplicates. The
// entry is added regardless of content and its freshly allocated handle is
// returned. Later Pool calls with the same content resolve to the first
// pooled occurrence.
func (p *Pool) PoolFast(s string) Handle {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.poolFastLocked(s)
}

// PoolFastDestructive adds a string to the pool without duplicate checking,
// taking ownership of the caller's string. The caller's copy is cleared so
// that accidental reuse is caught early.
func (p *Pool) PoolFastDestructive(s *string) Handle {
	p.mu.Lock()
	defer p.mu.Unlock()

	h := p.poolFastLocked(*s)
	*s = ""
	return h
}

// PoolAt assigns the given handle to a string entry. Replacing an existing
// entry with a different value is not permitted.
func (p *Pool) PoolAt(h Handle, s string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if existing, ok := p.strings[h]; ok {
		if existing != s {
			return fmt.Errorf("stringpool: handle %d already pooled with different content", h)
		}
		return nil
	}
	p.strings[h] = s
	if _, ok := p.handles[s]; !ok {
		p.handles[s] = h
	}
	if p.next < h {
		p.next = h
	}
	return nil
}

func (p *Pool) poolFastLocked(s string) Handle {
	p.next++
	h := p.next
	p.strings[h] = s
	if _, ok := p.handles[s]; !ok {
		p.handles[s] = h
	}
	return h
}

// Lookup returns the handle previously pooled for the given content, if any.
func (p *Pool) Lookup(s string) (Handle, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	h, ok := p.handles[s]
	return h, ok
}

// Get returns the string pooled under the given handle.
func (p *Pool) Get(h Handle) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.strings[h]
	return s, ok
}

// MustGet returns the string pooled under the given handle and panics if the
// handle was never issued. Use only where the handle provably originates from
// this pool.
func (p *Pool) MustGet(h Handle) string {
	s, ok := p.Get(h)
	if !ok {
		panic(fmt.Sprintf("stringpool: handle %d does not correspond to any pooled string", h))
	}
	return s
}

// GarbageCollect discards every entry whose handle is not in the given live
// set. Handles remain stable: surviving entries keep their handles and the
// allocation counter is not rewound.
func (p *Pool) GarbageCollect(live map[Handle]struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for h, s := range p.strings {
		if _, ok := live[h]; !ok {
			delete(p.strings, h)
			if p.handles[s] == h {
				delete(p.handles, s)
			}
		}
	}
}

// Len reports the number of pooled entries.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.strings)
}
