package bplus

import "fmt"

// slotArena addresses the fixed-size slots that follow the header. Callers
// only ever see slot indexes; byte offsets stay in here.
type slotArena struct {
	data     []byte
	slotSize int
	capacity int
}

func newSlotArena(data []byte, slotSize int) slotArena {
	return slotArena{
		data:     data,
		slotSize: slotSize,
		capacity: (len(data) - HeaderSize) / slotSize,
	}
}

func (a slotArena) slot(i int) []byte {
	a.check(i, 1)
	off := HeaderSize + i*a.slotSize
	return a.data[off : off+a.slotSize : off+a.slotSize]
}

// span is n consecutive slots starting at i.
func (a slotArena) span(i, n int) []byte {
	a.check(i, n)
	off := HeaderSize + i*a.slotSize
	return a.data[off : off+n*a.slotSize]
}

// shiftRight opens slot i by moving [i, size) up one slot.
func (a slotArena) shiftRight(i, size int) {
	if i >= size {
		return
	}
	a.check(i, size-i+1)
	copy(a.span(i+1, size-i), a.span(i, size-i))
}

// shiftLeft closes slot i by moving [i+1, size) down one slot.
func (a slotArena) shiftLeft(i, size int) {
	if i+1 >= size {
		return
	}
	copy(a.span(i, size-i-1), a.span(i+1, size-i-1))
}

func (a slotArena) check(i, n int) {
	if i < 0 || n < 0 || i+n > a.capacity {
		panic(fmt.Sprintf("bplus: slot range [%d, %d) outside arena of %d slots", i, i+n, a.capacity))
	}
}
