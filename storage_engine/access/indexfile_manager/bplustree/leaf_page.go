package bplus

import (
	"StrataDB/types"
	"bytes"
	"encoding/binary"
	"fmt"
)

// NewLeafPage views data as a leaf page. The key width is read from the
// header, so call Init first on a fresh page.
func NewLeafPage(data []byte, cmp Comparator) *LeafPage {
	p := &LeafPage{TreePage: TreePage{data: data}, cmp: cmp}
	p.keyWidth = p.KeyWidth()
	return p
}

// Init formats the page as an empty leaf with no next leaf.
func (p *LeafPage) Init(pageID, parentID int64, maxSize, keyWidth int) error {
	if !ValidKeyWidth(keyWidth) {
		return fmt.Errorf("leaf page %d: %w: %d", pageID, ErrInvalidKeyWidth, keyWidth)
	}
	if maxSize < 2 || maxSize >= MaxSlots(LeafIndexPage, keyWidth) {
		return fmt.Errorf("leaf page %d: %w: %d", pageID, ErrInvalidMaxSize, maxSize)
	}
	p.init(LeafIndexPage, pageID, parentID, maxSize, keyWidth)
	p.keyWidth = keyWidth
	return nil
}

func (p *LeafPage) slots() slotArena {
	return newSlotArena(p.data, p.keyWidth+types.RIDSize)
}

func (p *LeafPage) NextPageID() int64 {
	return p.next()
}

func (p *LeafPage) SetNextPageID(id int64) {
	p.setNext(id)
}

func (p *LeafPage) keyRef(index int) []byte {
	return p.slots().slot(index)[:p.keyWidth]
}

// KeyAt returns a copy of the key in slot index.
func (p *LeafPage) KeyAt(index int) []byte {
	return bytes.Clone(p.keyRef(index))
}

// ValueAt returns the record id in slot index.
func (p *LeafPage) ValueAt(index int) types.RID {
	raw := p.slots().slot(index)[p.keyWidth:]
	return types.RID{
		PageID: int64(binary.LittleEndian.Uint64(raw[0:8])),
		Slot:   binary.LittleEndian.Uint32(raw[8:12]),
	}
}

// Item returns slot index as a key/record id pair.
func (p *LeafPage) Item(index int) ([]byte, types.RID) {
	return p.KeyAt(index), p.ValueAt(index)
}

func (p *LeafPage) setEntry(index int, key []byte, rid types.RID) {
	if len(key) != p.keyWidth {
		panic(fmt.Sprintf("bplus: key of %d bytes on page with key width %d", len(key), p.keyWidth))
	}
	slot := p.slots().slot(index)
	copy(slot, key)
	binary.LittleEndian.PutUint64(slot[p.keyWidth:], uint64(rid.PageID))
	binary.LittleEndian.PutUint32(slot[p.keyWidth+8:], rid.Slot)
}

// KeyIndex is the first slot whose key is >= key, or Size() when key sorts
// after every stored key.
func (p *LeafPage) KeyIndex(key []byte) int {
	return lowerBound(0, p.Size(), p.keyRef, key, p.cmp)
}

// Insert adds (key, rid) in order and returns the new size. An equal key
// already on the page leaves it untouched and the size unchanged.
func (p *LeafPage) Insert(key []byte, rid types.RID) int {
	size := p.Size()
	idx := p.KeyIndex(key)
	if idx < size && p.cmp(p.keyRef(idx), key) == 0 {
		return size
	}
	p.slots().shiftRight(idx, size)
	p.setEntry(idx, key, rid)
	p.IncreaseSize(1)
	return size + 1
}

// LookUp returns the record id stored under key.
func (p *LeafPage) LookUp(key []byte) (types.RID, bool) {
	idx := p.KeyIndex(key)
	if idx == p.Size() || p.cmp(p.keyRef(idx), key) != 0 {
		return types.RID{}, false
	}
	return p.ValueAt(idx), true
}

// RemoveAndDeleteRecord removes key if present and returns the resulting
// size. Underflow is the caller's to handle.
func (p *LeafPage) RemoveAndDeleteRecord(key []byte) int {
	size := p.Size()
	idx := p.KeyIndex(key)
	if idx == size || p.cmp(p.keyRef(idx), key) != 0 {
		return size
	}
	p.slots().shiftLeft(idx, size)
	p.IncreaseSize(-1)
	return size - 1
}

// MoveHalfTo keeps [0, MinSize()) and moves the rest to recipient, a freshly
// initialized sibling. Relinking the leaf chain is left to the caller.
func (p *LeafPage) MoveHalfTo(recipient *LeafPage) {
	keep := p.MinSize()
	recipient.copyNFrom(p, keep, p.Size()-keep)
	p.SetSize(keep)
}

// MoveAllTo appends every entry to recipient, the left sibling, and hands
// this page's next link over to it. The page is left empty.
func (p *LeafPage) MoveAllTo(recipient *LeafPage) {
	recipient.copyNFrom(p, 0, p.Size())
	recipient.SetNextPageID(p.NextPageID())
	p.SetSize(0)
}

// MoveFirstToEndOf lends this page's first entry to recipient, its left
// sibling, and returns this page's new first key: the new separator.
func (p *LeafPage) MoveFirstToEndOf(recipient *LeafPage) []byte {
	key, rid := p.Item(0)
	p.slots().shiftLeft(0, p.Size())
	p.IncreaseSize(-1)

	recipient.setEntry(recipient.Size(), key, rid)
	recipient.IncreaseSize(1)
	return p.KeyAt(0)
}

// MoveLastToFrontOf lends this page's last entry to recipient, its right
// sibling, and returns the moved key: the new separator.
func (p *LeafPage) MoveLastToFrontOf(recipient *LeafPage) []byte {
	key, rid := p.Item(p.Size() - 1)
	p.IncreaseSize(-1)

	recipient.slots().shiftRight(0, recipient.Size())
	recipient.setEntry(0, key, rid)
	recipient.IncreaseSize(1)
	return key
}

func (p *LeafPage) copyNFrom(src *LeafPage, start, n int) {
	if n <= 0 {
		return
	}
	copy(p.slots().span(p.Size(), n), src.slots().span(start, n))
	p.IncreaseSize(n)
}

func (p *LeafPage) String() string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "leaf %d (parent %d, next %d, %d/%d): [", p.PageID(), p.ParentPageID(), p.NextPageID(), p.Size(), p.MaxSize())
	for i := 0; i < p.Size(); i++ {
		fmt.Fprintf(&b, " %s=%s", FormatKey(p.keyRef(i)), p.ValueAt(i))
	}
	b.WriteString(" ]")
	return b.String()
}
