package symbol

import (
	"sync"
	"sync/atomic"
)

const poolBucketCount = 64

// Pool is the symbol interner (spec §5, §9): a single object whose lifetime
// spans the whole driver run, passed explicitly to every pass that needs it
// (no ambient/process-wide state). Writes are guarded by fine-grained
// per-bucket locking; reads are lock-free once the pool is warmed, via a
// copy-on-write snapshot published with atomic.Pointer.
type Pool struct {
	buckets [poolBucketCount]typeBucket
}

type typeBucket struct {
	mu       sync.Mutex
	snapshot atomic.Pointer[map[string]Type]
}

func NewPool() *Pool {
	p := &Pool{}
	for i := range p.buckets {
		empty := map[string]Type{}
		p.buckets[i].snapshot.Store(&empty)
	}
	return p
}

func bucketIndex(descriptor string) uint32 {
	h := uint32(2166136261)
	for i := 0; i < len(descriptor); i++ {
		h ^= uint32(descriptor[i])
		h *= 16777619
	}
	return h % poolBucketCount
}

// Intern returns the unique Type for descriptor, creating it if this is the
// first time descriptor has been seen. Calling Intern twice with the same
// descriptor returns Types that compare equal via Type.Equal.
func (p *Pool) Intern(descriptor string, kind Kind) Type {
	b := &p.buckets[bucketIndex(descriptor)]

	// lock-free fast path: most lookups hit an already-warmed pool.
	if m := b.snapshot.Load(); m != nil {
		if t, ok := (*m)[descriptor]; ok {
			return t
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	// re-check under the lock: another writer may have interned it first.
	current := b.snapshot.Load()
	if t, ok := (*current)[descriptor]; ok {
		return t
	}
	t := Type{entry: &typeEntry{descriptor: descriptor, kind: kind}}
	next := make(map[string]Type, len(*current)+1)
	for k, v := range *current {
		next[k] = v
	}
	next[descriptor] = t
	b.snapshot.Store(&next)
	return t
}

// Lookup returns the Type already interned for descriptor, if any, without
// creating one.
func (p *Pool) Lookup(descriptor string) (Type, bool) {
	b := &p.buckets[bucketIndex(descriptor)]
	m := b.snapshot.Load()
	if m == nil {
		return Type{}, false
	}
	t, ok := (*m)[descriptor]
	return t, ok
}

// Len reports the total number of interned types, mainly for tests and metrics.
func (p *Pool) Len() int {
	n := 0
	for i := range p.buckets {
		if m := p.buckets[i].snapshot.Load(); m != nil {
			n += len(*m)
		}
	}
	return n
}
