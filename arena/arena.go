// Package arena provides the byte-provider collaborator consumed by
// package malloc: a monotone, brk-style extender over a fixed-size,
// process-private backing region.
package arena

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/bytedance/gopkg/lang/mcache"

	"github.com/SuperiorPython/operating-systems-spring-2026-project-2-memory-allocation-checkpoint-memory-allocator-template/cache/mempool"
)

const (
	// MaxSize is the hard cap on cumulative growth, matching the fixed
	// 8 MiB backing region the allocator is specified against.
	MaxSize = 8 * 1024 * 1024

	// DefaultPageSize is the advisory page size returned by PageSize.
	DefaultPageSize = 4096
)

// Arena is the sbrk-like service consumed by malloc.TagAllocator: a
// monotone heap extender plus bounds/size queries.
type Arena interface {
	// Extend advances the break by n bytes and returns the address at
	// which the newly committed region begins (the old break). n must
	// be >= 0; cumulative growth beyond MaxSize fails.
	Extend(n int32) (unsafe.Pointer, error)

	// Lo returns the address of the first byte ever committed.
	Lo() unsafe.Pointer

	// Hi returns the current break: the address one past the last
	// committed byte.
	Hi() unsafe.Pointer

	// Size returns the number of bytes committed so far.
	Size() uintptr

	// PageSize is an advisory hint only.
	PageSize() uintptr
}

type slabSource int

const (
	sourceMCache slabSource = iota
	sourceMempool
	sourceExternal
)

// MemArena is a fixed-size, process-private Arena backed by a single
// preallocated slab. It never grows its backing storage; Extend only
// moves a break cursor within the slab already reserved at construction.
type MemArena struct {
	mu   sync.Mutex
	slab []byte
	base unsafe.Pointer
	used int32
	src  slabSource
}

// New creates a MemArena whose backing slab is pulled from mcache,
// bytedance/gopkg's pooled byte allocator. Call Close to return the slab
// to the pool.
func New() *MemArena {
	slab := mcache.Malloc(MaxSize)
	return newMemArena(slab, sourceMCache)
}

// NewFromMempool creates a MemArena whose backing slab comes from this
// module's own cache/mempool pool instead of mcache, trading mcache's
// size-class-per-slot pooling for mempool's footer-tagged, power-of-two
// buckets. Call Close to return the slab to mempool.
func NewFromMempool() *MemArena {
	slab := mempool.Malloc(MaxSize)
	return newMemArena(slab, sourceMempool)
}

// NewFromSlab creates a MemArena over caller-provided storage, which must
// be at least MaxSize bytes. The caller retains ownership; Close does not
// release storage for arenas constructed this way.
func NewFromSlab(slab []byte) (*MemArena, error) {
	if len(slab) < MaxSize {
		return nil, fmt.Errorf("arena: slab too small: have %d, need %d", len(slab), MaxSize)
	}
	return newMemArena(slab[:MaxSize], sourceExternal), nil
}

func newMemArena(slab []byte, src slabSource) *MemArena {
	return &MemArena{
		slab: slab,
		base: unsafe.Pointer(&slab[0]),
		src:  src,
	}
}

// Extend implements Arena.
func (a *MemArena) Extend(n int32) (unsafe.Pointer, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if n < 0 {
		return nil, fmt.Errorf("arena: negative extend size %d", n)
	}
	next := int64(a.used) + int64(n)
	if next > MaxSize {
		return nil, fmt.Errorf("arena: exhausted: used=%d requested=%d cap=%d", a.used, n, MaxSize)
	}

	old := a.used
	a.used = int32(next)
	return unsafe.Add(a.base, int(old)), nil
}

// Lo implements Arena.
func (a *MemArena) Lo() unsafe.Pointer { return a.base }

// Hi implements Arena.
func (a *MemArena) Hi() unsafe.Pointer {
	a.mu.Lock()
	defer a.mu.Unlock()
	return unsafe.Add(a.base, int(a.used))
}

// Size implements Arena.
func (a *MemArena) Size() uintptr {
	a.mu.Lock()
	defer a.mu.Unlock()
	return uintptr(a.used)
}

// PageSize implements Arena.
func (a *MemArena) PageSize() uintptr { return DefaultPageSize }

// Reset rewinds the break to zero without releasing the slab, emulating
// the teardown+fresh-init cycle test harnesses run between cases.
func (a *MemArena) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.used = 0
}

// Close returns a pooled slab to whichever pool it came from. For arenas
// built with NewFromSlab no storage is released, since those do not own
// it. In every case the arena drops its slab and is unusable afterwards.
func (a *MemArena) Close() {
	switch a.src {
	case sourceMCache:
		if a.slab != nil {
			mcache.Free(a.slab)
		}
	case sourceMempool:
		if a.slab != nil {
			mempool.Free(a.slab)
		}
	}
	a.slab = nil
	a.base = nil
}
