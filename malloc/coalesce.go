package malloc

import "unsafe"

// coalesce merges a just-freed block b — already tagged free, but not yet
// threaded into the free list — with any immediately adjacent free
// neighbors, then inserts the surviving block at the free-list head.
// It is the sole inserter for newly freed blocks; Free never calls
// addToFreeList directly.
func (h *TagAllocator) coalesce(b unsafe.Pointer) unsafe.Pointer {
	next := nextBlkp(b)

	// prevBlkp must be resolved before any write touches b's footer,
	// since it reads the word immediately preceding b's header.
	prevAlloc := blockAlloc(prevBlkp(b)) == 1
	nextAlloc := blockAlloc(next) == 1

	switch {
	case prevAlloc && nextAlloc:
		// no merge

	case prevAlloc && !nextAlloc:
		size := blockSize(b) + blockSize(next)
		h.removeFromFreeList(next)
		writeTags(b, size, 0)

	case !prevAlloc && nextAlloc:
		prev := prevBlkp(b)
		h.removeFromFreeList(prev)
		size := blockSize(prev) + blockSize(b)
		writeTags(prev, size, 0)
		b = prev

	default: // both neighbors free
		prev := prevBlkp(b)
		nextSize := blockSize(next)
		h.removeFromFreeList(prev)
		h.removeFromFreeList(next)
		size := blockSize(prev) + blockSize(b) + nextSize
		writeTags(prev, size, 0)
		b = prev
	}

	h.addToFreeList(b)
	return b
}
