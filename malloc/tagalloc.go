// Package malloc implements TagAllocator, a boundary-tag, explicit-
// free-list allocator with byte-grained split/coalesce, intended as the
// engine behind a drop-in malloc/free replacement.
package malloc

import (
	"errors"
	"unsafe"

	"github.com/SuperiorPython/operating-systems-spring-2026-project-2-memory-allocation-checkpoint-memory-allocator-template/arena"
)

var (
	// ErrExhausted is returned when the backing arena cannot satisfy a
	// heap extension.
	ErrExhausted = errors.New("malloc: arena exhausted")

	// ErrAlreadyInitialized is returned by Init if called twice on the
	// same TagAllocator without an intervening Reset of the arena.
	ErrAlreadyInitialized = errors.New("malloc: already initialized")
)

// TagAllocator is a single-threaded boundary-tag allocator over a
// fixed-size, contiguous, process-private arena. Blocks tile the arena
// with no gaps; each carries a 4-byte header and footer encoding
// (size|alloc). Free blocks are threaded into one doubly linked,
// LIFO-ordered explicit free list per TagAllocator; Malloc walks it first-fit and
// splits on placement; Free performs immediate bidirectional coalescing.
//
// Callers must serialize all access externally — TagAllocator does no
// internal locking.
type TagAllocator struct {
	arena arena.Arena
	base  unsafe.Pointer // cached arena.Lo(), for bounds checks

	heapListp    unsafe.Pointer // anchor at the prologue payload, just past the prologue header
	freeListHead unsafe.Pointer // nil when the free list is empty
}

// New binds a TagAllocator to arena a. Init must be called once before
// any other method.
func New(a arena.Arena) *TagAllocator {
	return &TagAllocator{arena: a}
}

// Init lays down the prologue and epilogue sentinels and performs the
// first heap extension. Calling Init again requires the arena to be
// reset by the caller first.
func (h *TagAllocator) Init() error {
	if h.heapListp != nil && h.arena.Size() != 0 {
		return ErrAlreadyInitialized
	}

	addr, err := h.arena.Extend(4 * wordSize)
	if err != nil {
		return ErrExhausted
	}
	h.base = h.arena.Lo()

	// offset 0: alignment pad; 4: prologue header; 8: prologue footer;
	// 12: epilogue header.
	*(*uint32)(unsafe.Add(addr, 0)) = 0
	*(*uint32)(unsafe.Add(addr, 4)) = packWord(dsize, 1)
	*(*uint32)(unsafe.Add(addr, 8)) = packWord(dsize, 1)
	*(*uint32)(unsafe.Add(addr, 12)) = packWord(0, 1)

	h.heapListp = unsafe.Add(addr, 8)
	h.freeListHead = nil

	if _, err := h.extendHeap(chunkSize / wordSize); err != nil {
		return ErrExhausted
	}
	return nil
}

// adjust maps a user-requested payload size to an internal block size: 0
// signals "reject"; everything else rounds (n + header/footer overhead)
// up to a multiple of 8, floored at minBlockSize. The floor is required,
// not cosmetic: every block on the free list must have room for both
// link fields, so a block smaller than minBlockSize can never be freed
// safely once it leaves the allocator.
func adjust(n int) int {
	if n == 0 {
		return 0
	}
	size := align8(n + dsize)
	if size < minBlockSize() {
		size = minBlockSize()
	}
	return size
}

// Malloc returns a pointer to a payload of at least n bytes, 8-byte
// aligned, or nil if n is zero or the arena cannot satisfy the request.
func (h *TagAllocator) Malloc(n int) unsafe.Pointer {
	asize := adjust(n)
	if asize == 0 {
		return nil
	}

	if b := h.findFit(asize); b != nil {
		h.place(b, asize)
		return b
	}

	grow := asize
	if grow < chunkSize {
		grow = chunkSize
	}
	b, err := h.extendHeap(grow / wordSize)
	if err != nil {
		return nil
	}
	h.place(b, asize)
	return b
}

// Free returns p, a pointer previously handed back by Malloc or Realloc,
// to the allocator. Freeing nil is a silent no-op.
func (h *TagAllocator) Free(p unsafe.Pointer) {
	if p == nil {
		return
	}
	size := blockSize(p)
	writeTags(p, size, 0)
	h.coalesce(p)
}

// Realloc resizes the allocation at p to n bytes. p == nil behaves like
// Malloc(n); n == 0 behaves like Free(p) and returns nil. On success the
// first min(n, old payload size) bytes of the result equal p's contents
// at the time of the call; the original block is freed.
func (h *TagAllocator) Realloc(p unsafe.Pointer, n int) unsafe.Pointer {
	if p == nil {
		return h.Malloc(n)
	}
	if n == 0 {
		h.Free(p)
		return nil
	}

	q := h.Malloc(n)
	if q == nil {
		return nil
	}

	oldPayload := blockSize(p) - dsize
	copySize := n
	if oldPayload < copySize {
		copySize = oldPayload
	}
	if copySize > 0 {
		src := unsafe.Slice((*byte)(p), copySize)
		dst := unsafe.Slice((*byte)(q), copySize)
		copy(dst, src)
	}
	h.Free(p)
	return q
}

// Available returns the total free payload bytes currently on the free
// list, i.e. the bytes Malloc could hand out without growing the arena.
func (h *TagAllocator) Available() int {
	total := 0
	for b := h.freeListHead; b != nil; b = nextLink(b) {
		total += blockSize(b) - dsize
	}
	return total
}
