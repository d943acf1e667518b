package bplus

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

/*
Internal page operations.

Slot i holds (key_i, child_i). key_0 is never compared: child_0 covers every
key below key_1, child_i covers [key_i, key_i+1). Splits and merges that move
children to another page repoint each moved child's parent link through the
PagePinner; the page itself is never latched here.
*/

// NewInternalPage views data as an internal page. The key width is read from
// the header, so call Init first on a fresh page.
func NewInternalPage(data []byte, cmp Comparator) *InternalPage {
	p := &InternalPage{TreePage: TreePage{data: data}, cmp: cmp}
	p.keyWidth = p.KeyWidth()
	return p
}

// Init formats the page as an empty internal node.
func (p *InternalPage) Init(pageID, parentID int64, maxSize, keyWidth int) error {
	if !ValidKeyWidth(keyWidth) {
		return fmt.Errorf("internal page %d: %w: %d", pageID, ErrInvalidKeyWidth, keyWidth)
	}
	if maxSize < 2 || maxSize >= MaxSlots(InternalIndexPage, keyWidth) {
		return fmt.Errorf("internal page %d: %w: %d", pageID, ErrInvalidMaxSize, maxSize)
	}
	p.init(InternalIndexPage, pageID, parentID, maxSize, keyWidth)
	p.keyWidth = keyWidth
	return nil
}

func (p *InternalPage) slots() slotArena {
	return newSlotArena(p.data, p.keyWidth+childIDSize)
}

// keyRef aliases the page bytes; only for comparisons.
func (p *InternalPage) keyRef(index int) []byte {
	return p.slots().slot(index)[:p.keyWidth]
}

// KeyAt returns a copy of the key in slot index.
func (p *InternalPage) KeyAt(index int) []byte {
	return bytes.Clone(p.keyRef(index))
}

func (p *InternalPage) SetKeyAt(index int, key []byte) {
	if len(key) != p.keyWidth {
		panic(fmt.Sprintf("bplus: key of %d bytes on page with key width %d", len(key), p.keyWidth))
	}
	copy(p.slots().slot(index), key)
}

// ValueAt returns the child page id in slot index.
func (p *InternalPage) ValueAt(index int) int64 {
	return int64(binary.LittleEndian.Uint64(p.slots().slot(index)[p.keyWidth:]))
}

func (p *InternalPage) SetValueAt(index int, child int64) {
	binary.LittleEndian.PutUint64(p.slots().slot(index)[p.keyWidth:], uint64(child))
}

func (p *InternalPage) setEntry(index int, key []byte, child int64) {
	p.SetKeyAt(index, key)
	p.SetValueAt(index, child)
}

// ValueIndex finds the slot holding child. It returns Size() when absent.
func (p *InternalPage) ValueIndex(child int64) int {
	size := p.Size()
	for i := 0; i < size; i++ {
		if p.ValueAt(i) == child {
			return i
		}
	}
	return size
}

// LookUp returns the child whose range covers key: the child of the greatest
// key <= key among [1, size), or child 0 when key is below all of them.
func (p *InternalPage) LookUp(key []byte) int64 {
	idx := upperBound(1, p.Size(), p.keyRef, key, p.cmp)
	return p.ValueAt(idx - 1)
}

// PopulateNewRoot fills a fresh root with two children split by key.
func (p *InternalPage) PopulateNewRoot(oldChild int64, key []byte, newChild int64) {
	p.SetValueAt(0, oldChild)
	p.setEntry(1, key, newChild)
	p.SetSize(2)
}

// InsertNodeAfter threads (key, newChild) in right after oldChild and
// returns the new size. oldChild must be on the page.
func (p *InternalPage) InsertNodeAfter(oldChild int64, key []byte, newChild int64) int {
	idx := p.ValueIndex(oldChild) + 1
	p.slots().shiftRight(idx, p.Size())
	p.setEntry(idx, key, newChild)
	p.IncreaseSize(1)
	return p.Size()
}

// Remove drops slot index, shifting later slots left.
func (p *InternalPage) Remove(index int) {
	p.slots().shiftLeft(index, p.Size())
	p.IncreaseSize(-1)
}

// RemoveAndReturnOnlyChild empties a root left with one child and returns
// that child, which becomes the new root.
func (p *InternalPage) RemoveAndReturnOnlyChild() int64 {
	child := p.ValueAt(0)
	p.SetSize(0)
	return child
}

// MoveHalfTo moves slots [ceil(size/2), size) to the end of recipient, a
// freshly initialized sibling. recipient.KeyAt(0) afterwards is the key the
// caller pushes up to the parent.
func (p *InternalPage) MoveHalfTo(recipient *InternalPage, pinner PagePinner) error {
	size := p.Size()
	start := (size + 1) / 2
	moved := recipient.copyNFrom(p, start, size-start)
	p.SetSize(start)
	return recipient.adoptAll(moved, pinner)
}

// MoveAllTo appends every slot to recipient, the left sibling, with
// middleKey (the separator pulled down from the parent) as the first moved
// key. The page is left empty; deallocating it is up to the caller.
func (p *InternalPage) MoveAllTo(recipient *InternalPage, middleKey []byte, pinner PagePinner) error {
	p.SetKeyAt(0, middleKey)
	moved := recipient.copyNFrom(p, 0, p.Size())
	p.SetSize(0)
	return recipient.adoptAll(moved, pinner)
}

// MoveFirstToEndOf lends this page's first child to recipient, its left
// sibling. middleKey is the parent's separator between the two and becomes
// the key of the moved slot. The returned key replaces that separator.
func (p *InternalPage) MoveFirstToEndOf(recipient *InternalPage, middleKey []byte, pinner PagePinner) ([]byte, error) {
	child := p.ValueAt(0)
	separator := p.KeyAt(1)
	p.Remove(0)

	end := recipient.Size()
	recipient.setEntry(end, middleKey, child)
	recipient.IncreaseSize(1)

	return separator, adoptChild(pinner, child, recipient.PageID())
}

// MoveLastToFrontOf lends this page's last child to recipient, its right
// sibling. middleKey is the parent's separator between the two and becomes
// the key guarding recipient's old first child. The returned key replaces
// that separator.
func (p *InternalPage) MoveLastToFrontOf(recipient *InternalPage, middleKey []byte, pinner PagePinner) ([]byte, error) {
	last := p.Size() - 1
	separator := p.KeyAt(last)
	child := p.ValueAt(last)
	p.IncreaseSize(-1)

	recipient.SetKeyAt(0, middleKey)
	recipient.slots().shiftRight(0, recipient.Size())
	recipient.setEntry(0, separator, child)
	recipient.IncreaseSize(1)

	return separator, adoptChild(pinner, child, recipient.PageID())
}

// copyNFrom appends n slots of src starting at start and returns the
// children that arrived.
func (p *InternalPage) copyNFrom(src *InternalPage, start, n int) []int64 {
	if n <= 0 {
		return nil
	}
	end := p.Size()
	copy(p.slots().span(end, n), src.slots().span(start, n))
	p.IncreaseSize(n)

	moved := make([]int64, 0, n)
	for i := end; i < end+n; i++ {
		moved = append(moved, p.ValueAt(i))
	}
	return moved
}

func (p *InternalPage) adoptAll(children []int64, pinner PagePinner) error {
	parentID := p.PageID()
	for _, child := range children {
		if err := adoptChild(pinner, child, parentID); err != nil {
			return err
		}
	}
	return nil
}

// Children lists the child page ids in slot order.
func (p *InternalPage) Children() []int64 {
	children := make([]int64, p.Size())
	for i := range children {
		children[i] = p.ValueAt(i)
	}
	return children
}

func (p *InternalPage) String() string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "internal %d (parent %d, %d/%d): [", p.PageID(), p.ParentPageID(), p.Size(), p.MaxSize())
	for i := 0; i < p.Size(); i++ {
		if i > 0 {
			fmt.Fprintf(&b, " %s", FormatKey(p.keyRef(i)))
		}
		fmt.Fprintf(&b, " <%d>", p.ValueAt(i))
	}
	b.WriteString(" ]")
	return b.String()
}
