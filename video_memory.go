// video_memory.go - Guest-visible video RAM with dirty page tracking

/*
(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/CEPBoard
License: GPLv3 or later
*/

package main

import (
	"encoding/binary"
	"math/bits"
)

const (
	VRAM_PAGE_SHIFT = 12
	VRAM_PAGE_SIZE  = 1 << VRAM_PAGE_SHIFT
)

// VideoMemory is device-owned pixel storage. Guest stores go through Write
// and set the dirty bit of every touched page; the compositor consumes the
// bits with SnapshotAndClearDirty once per tick.
type VideoMemory struct {
	data  []byte
	dirty []uint64 // one bit per page
}

func NewVideoMemory(size int) *VideoMemory {
	pages := (size + VRAM_PAGE_SIZE - 1) >> VRAM_PAGE_SHIFT
	return &VideoMemory{
		data:  make([]byte, size),
		dirty: make([]uint64, (pages+63)/64),
	}
}

func (m *VideoMemory) Size() int { return len(m.data) }

// Bytes exposes the backing store for composition. Callers must not write.
func (m *VideoMemory) Bytes() []byte { return m.data }

// Read returns a little-endian value of size bytes. Out of range bytes read
// as zero.
func (m *VideoMemory) Read(offset uint32, size int) uint64 {
	var v uint64
	for i := size - 1; i >= 0; i-- {
		v <<= 8
		if o := int(offset) + i; o < len(m.data) {
			v |= uint64(m.data[o])
		}
	}
	return v
}

// Write stores a little-endian value of size bytes. Out of range bytes are
// dropped.
func (m *VideoMemory) Write(offset uint32, value uint64, size int) {
	if size == 4 && int(offset)+4 <= len(m.data) {
		binary.LittleEndian.PutUint32(m.data[offset:], uint32(value))
		m.MarkDirty(int(offset), 4)
		return
	}
	for i := range size {
		if o := int(offset) + i; o < len(m.data) {
			m.data[o] = byte(value >> (8 * i))
		}
	}
	m.MarkDirty(int(offset), size)
}

// WriteBytes copies p at offset, truncating at the end of memory.
func (m *VideoMemory) WriteBytes(offset int, p []byte) int {
	if offset >= len(m.data) {
		return 0
	}
	n := copy(m.data[offset:], p)
	m.MarkDirty(offset, n)
	return n
}

// MarkDirty flags every page overlapping [offset, offset+length).
func (m *VideoMemory) MarkDirty(offset, length int) {
	if length <= 0 || offset >= len(m.data) {
		return
	}
	end := min(offset+length, len(m.data)) - 1
	for p := offset >> VRAM_PAGE_SHIFT; p <= end>>VRAM_PAGE_SHIFT; p++ {
		m.dirty[p>>6] |= 1 << (p & 63)
	}
}

// IsDirty reports whether any page overlapping the range was written since
// the last snapshot.
func (m *VideoMemory) IsDirty(offset, length int) bool {
	if length <= 0 || offset >= len(m.data) {
		return false
	}
	end := min(offset+length, len(m.data)) - 1
	for p := offset >> VRAM_PAGE_SHIFT; p <= end>>VRAM_PAGE_SHIFT; p++ {
		if m.dirty[p>>6]&(1<<(p&63)) != 0 {
			return true
		}
	}
	return false
}

// SnapshotAndClearDirty reports whether [offset, offset+length) is dirty and
// clears the dirty bits of the whole memory.
func (m *VideoMemory) SnapshotAndClearDirty(offset, length int) bool {
	dirty := m.IsDirty(offset, length)
	clear(m.dirty)
	return dirty
}

// DirtyPages counts the pages currently flagged.
func (m *VideoMemory) DirtyPages() int {
	n := 0
	for _, w := range m.dirty {
		n += bits.OnesCount64(w)
	}
	return n
}

// Clear zeroes the contents and marks everything dirty.
func (m *VideoMemory) Clear() {
	clear(m.data)
	m.MarkDirty(0, len(m.data))
}
