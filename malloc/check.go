package malloc

import (
	"fmt"
	"unsafe"
)

// Check walks the whole heap and the whole free list, validating every
// block-format invariant documented for TagAllocator. It returns nil when
// clean and the first violation found otherwise; there is no automatic
// recovery from corruption.
func (h *TagAllocator) Check() error {
	if h.heapListp == nil {
		return fmt.Errorf("malloc: check: not initialized")
	}

	free := make(map[unsafe.Pointer]bool)
	var prevB unsafe.Pointer
	var epilogue unsafe.Pointer

	for b := nextBlkp(h.heapListp); ; b = nextBlkp(b) {
		hdr := *headerPtr(b)
		size := sizeOf(hdr)
		if size == 0 {
			epilogue = b
			break
		}
		if size%dsize != 0 {
			return fmt.Errorf("malloc: check: block %p size %d is not a multiple of %d", b, size, dsize)
		}
		if ftr := *footerPtr(b, size); hdr != ftr {
			return fmt.Errorf("malloc: check: block %p header %#x != footer %#x", b, hdr, ftr)
		}
		if uintptr(b) < uintptr(h.base) || uintptr(unsafe.Add(b, size)) > uintptr(h.arena.Hi()) {
			return fmt.Errorf("malloc: check: block %p extends outside the arena", b)
		}
		if prevB != nil && allocOf(hdr) == 0 && allocOf(*headerPtr(prevB)) == 0 {
			return fmt.Errorf("malloc: check: adjacent free blocks at %p and %p", prevB, b)
		}
		if allocOf(hdr) == 0 {
			free[b] = true
		}
		prevB = b
	}

	if uintptr(epilogue) != uintptr(h.arena.Hi()) {
		return fmt.Errorf("malloc: check: epilogue at %p, expected arena high water mark %p", epilogue, h.arena.Hi())
	}

	seen := make(map[unsafe.Pointer]bool)
	var prevLinkWant unsafe.Pointer
	for b := h.freeListHead; b != nil; b = nextLink(b) {
		if seen[b] {
			return fmt.Errorf("malloc: check: free list has a cycle at %p", b)
		}
		seen[b] = true
		if blockAlloc(b) != 0 {
			return fmt.Errorf("malloc: check: free-list member %p is marked allocated", b)
		}
		if prevLink(b) != prevLinkWant {
			return fmt.Errorf("malloc: check: free-list back link mismatch at %p", b)
		}
		if !free[b] {
			return fmt.Errorf("malloc: check: free-list member %p missing from heap walk", b)
		}
		prevLinkWant = b
	}

	if len(seen) != len(free) {
		return fmt.Errorf("malloc: check: heap walk found %d free blocks, free list has %d", len(free), len(seen))
	}

	return nil
}
