package malloc

import "unsafe"

// The explicit free list is threaded through the payloads of free blocks:
// next at payload offset 0, prev at payload offset ptrSize. Both fields
// are undefined once a block is unlinked or allocated.

func nextLink(bp unsafe.Pointer) unsafe.Pointer {
	return *(*unsafe.Pointer)(bp)
}

func setNextLink(bp, v unsafe.Pointer) {
	*(*unsafe.Pointer)(bp) = v
}

func prevLink(bp unsafe.Pointer) unsafe.Pointer {
	return *(*unsafe.Pointer)(unsafe.Add(bp, ptrSize))
}

func setPrevLink(bp, v unsafe.Pointer) {
	*(*unsafe.Pointer)(unsafe.Add(bp, ptrSize)) = v
}

// addToFreeList inserts b at the head of the free list (LIFO).
func (h *TagAllocator) addToFreeList(b unsafe.Pointer) {
	setNextLink(b, h.freeListHead)
	setPrevLink(b, nil)
	if h.freeListHead != nil {
		setPrevLink(h.freeListHead, b)
	}
	h.freeListHead = b
}

// removeFromFreeList unlinks b in O(1). Callers must not read b's link
// fields afterward.
func (h *TagAllocator) removeFromFreeList(b unsafe.Pointer) {
	p := prevLink(b)
	q := nextLink(b)
	if p == nil {
		h.freeListHead = q
	} else {
		setNextLink(p, q)
	}
	if q != nil {
		setPrevLink(q, p)
	}
}
