package malloc

import "unsafe"

// extendHeap grows the arena by words 4-byte words, rounded up to an even
// count so the new extent stays 8-aligned, formats the fresh region as one
// free block, rewrites the epilogue past it, and coalesces backward in
// case the block that used to precede the old epilogue was free.
func (h *TagAllocator) extendHeap(words int) (unsafe.Pointer, error) {
	if words < 0 {
		words = 0
	}
	if words%2 != 0 {
		words++
	}
	bytes := words * wordSize
	if bytes == 0 {
		return nil, ErrExhausted
	}

	addr, err := h.arena.Extend(int32(bytes))
	if err != nil {
		return nil, ErrExhausted
	}

	// addr is the payload pointer of the new block; the word just
	// before it is the old epilogue header, correctly overwritten below.
	bp := addr
	writeTags(bp, bytes, 0)
	*headerPtr(nextBlkp(bp)) = packWord(0, 1) // new epilogue

	return h.coalesce(bp), nil
}
