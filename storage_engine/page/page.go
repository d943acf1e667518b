package page

import (
	"StrataDB/types"
	"sync"
)

const (
	// PageTypeOffset is the byte the disk manager stamps with the page type on every write.
	PageTypeOffset = 8
)

/*
Page is one buffer pool frame's content plus its bookkeeping.

The byte layout of Data belongs to whoever owns the page kind: B+ tree nodes
for PageTypeBPlusNode, the index header for PageTypeMetadata. Only the page
type stamp at PageTypeOffset is shared by every kind.

PinCount and IsDirty are maintained by the buffer pool under its own latch;
the RWMutex is the page latch callers take while reading or writing Data.
*/

type Page struct {
	ID       int64
	FileID   uint32
	Data     []byte
	IsDirty  bool
	PinCount int32
	PageType types.PageType
	mu       sync.RWMutex
}

func (p *Page) Lock() {
	p.mu.Lock()
}

func (p *Page) Unlock() {
	p.mu.Unlock()
}

func (p *Page) RLock() {
	p.mu.RLock()
}

func (p *Page) RUnlock() {
	p.mu.RUnlock()
}

// Reset zeroes the frame so it can host another page.
func (p *Page) Reset() {
	p.ID = types.InvalidPageID
	p.FileID = 0
	p.IsDirty = false
	p.PinCount = 0
	p.PageType = types.PageTypeUnknown
	clear(p.Data)
}
