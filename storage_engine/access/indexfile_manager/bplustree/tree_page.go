package bplus

import (
	"StrataDB/types"
	"encoding/binary"
)

// NewTreePage views a page's bytes through the shared header.
func NewTreePage(data []byte) *TreePage {
	return &TreePage{data: data}
}

func (p *TreePage) PageID() int64 {
	return int64(binary.LittleEndian.Uint64(p.data[offsetPageID:]))
}

func (p *TreePage) setPageID(id int64) {
	binary.LittleEndian.PutUint64(p.data[offsetPageID:], uint64(id))
}

func (p *TreePage) Kind() IndexPageKind {
	return IndexPageKind(p.data[offsetKind])
}

func (p *TreePage) setKind(kind IndexPageKind) {
	p.data[offsetKind] = byte(kind)
}

func (p *TreePage) IsLeaf() bool {
	return p.Kind() == LeafIndexPage
}

// KeyWidth is the fixed byte width of every key on the page.
func (p *TreePage) KeyWidth() int {
	return int(binary.LittleEndian.Uint16(p.data[offsetKeyWidth:]))
}

func (p *TreePage) setKeyWidth(width int) {
	binary.LittleEndian.PutUint16(p.data[offsetKeyWidth:], uint16(width))
}

func (p *TreePage) Size() int {
	return int(int32(binary.LittleEndian.Uint32(p.data[offsetSize:])))
}

func (p *TreePage) SetSize(size int) {
	binary.LittleEndian.PutUint32(p.data[offsetSize:], uint32(int32(size)))
}

func (p *TreePage) IncreaseSize(delta int) {
	p.SetSize(p.Size() + delta)
}

func (p *TreePage) MaxSize() int {
	return int(int32(binary.LittleEndian.Uint32(p.data[offsetMaxSize:])))
}

func (p *TreePage) setMaxSize(size int) {
	binary.LittleEndian.PutUint32(p.data[offsetMaxSize:], uint32(int32(size)))
}

// MinSize is the occupancy floor of a non-root page: ceil(maxSize/2).
func (p *TreePage) MinSize() int {
	return (p.MaxSize() + 1) / 2
}

func (p *TreePage) ParentPageID() int64 {
	return int64(binary.LittleEndian.Uint64(p.data[offsetParent:]))
}

func (p *TreePage) SetParentPageID(id int64) {
	binary.LittleEndian.PutUint64(p.data[offsetParent:], uint64(id))
}

func (p *TreePage) IsRoot() bool {
	return p.ParentPageID() == types.InvalidPageID
}

// init writes a fresh header. The next link starts unset on both kinds.
func (p *TreePage) init(kind IndexPageKind, pageID, parentID int64, maxSize, keyWidth int) {
	p.setPageID(pageID)
	p.setKind(kind)
	p.setKeyWidth(keyWidth)
	p.SetSize(0)
	p.setMaxSize(maxSize)
	p.SetParentPageID(parentID)
	p.setNext(types.InvalidPageID)
}

func (p *TreePage) next() int64 {
	return int64(binary.LittleEndian.Uint64(p.data[offsetNext:]))
}

func (p *TreePage) setNext(id int64) {
	binary.LittleEndian.PutUint64(p.data[offsetNext:], uint64(id))
}

// MaxSlots is the physical slot count of a page kind at a key width. Usable
// max sizes are strictly smaller, leaving room for the overflow slot.
func MaxSlots(kind IndexPageKind, keyWidth int) int {
	return (types.PageSize - HeaderSize) / slotSize(kind, keyWidth)
}

func slotSize(kind IndexPageKind, keyWidth int) int {
	if kind == LeafIndexPage {
		return keyWidth + types.RIDSize
	}
	return keyWidth + childIDSize
}
