package bplus

import (
	"StrataDB/storage_engine/page"
	"StrataDB/types"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

var errFakeUnpin = errors.New("fake unpin failure")

// fakePinner is an in-memory PagePinner that counts every fetch and unpin.
type fakePinner struct {
	pages       map[int64]*page.Page
	pins        map[int64]int
	fetches     int
	unpins      int
	dirtyUnpins int
	failUnpin   bool
}

func newFakePinner() *fakePinner {
	return &fakePinner{
		pages: make(map[int64]*page.Page),
		pins:  make(map[int64]int),
	}
}

func (f *fakePinner) FetchPage(pageID int64) (*page.Page, error) {
	pg, ok := f.pages[pageID]
	if !ok {
		return nil, fmt.Errorf("page %d not allocated", pageID)
	}
	f.fetches++
	f.pins[pageID]++
	return pg, nil
}

func (f *fakePinner) UnpinPage(pageID int64, isDirty bool) error {
	if f.pins[pageID] == 0 {
		return fmt.Errorf("page %d not pinned", pageID)
	}
	f.pins[pageID]--
	f.unpins++
	if isDirty {
		f.dirtyUnpins++
	}
	if f.failUnpin {
		return errFakeUnpin
	}
	return nil
}

// leaked reports pages still pinned.
func (f *fakePinner) leaked() []int64 {
	var ids []int64
	for id, n := range f.pins {
		if n != 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// addChild registers a leaf page whose parent is parentID.
func (f *fakePinner) addChild(t *testing.T, pageID, parentID int64) {
	t.Helper()
	pg := &page.Page{ID: pageID, Data: make([]byte, types.PageSize)}
	require.NoError(t, NewLeafPage(pg.Data, CompareKeys).Init(pageID, parentID, 4, 8))
	f.pages[pageID] = pg
}

func (f *fakePinner) parentOf(pageID int64) int64 {
	return NewTreePage(f.pages[pageID].Data).ParentPageID()
}

func key(v int64) []byte {
	return EncodeIntegerKey(v, 8)
}

func newInternal(t *testing.T, pageID int64, maxSize int) *InternalPage {
	t.Helper()
	p := NewInternalPage(make([]byte, types.PageSize), CompareKeys)
	require.NoError(t, p.Init(pageID, types.InvalidPageID, maxSize, 8))
	return p
}

func newLeaf(t *testing.T, pageID int64, maxSize int) *LeafPage {
	t.Helper()
	p := NewLeafPage(make([]byte, types.PageSize), CompareKeys)
	require.NoError(t, p.Init(pageID, types.InvalidPageID, maxSize, 8))
	return p
}

// fillInternal builds children[0] | keys[0] children[1] | ... on p and
// registers every child with the pinner.
func fillInternal(t *testing.T, f *fakePinner, p *InternalPage, children []int64, keys []int64) {
	t.Helper()
	require.Len(t, keys, len(children)-1)
	for _, c := range children {
		f.addChild(t, c, p.PageID())
	}
	p.PopulateNewRoot(children[0], key(keys[0]), children[1])
	for i := 2; i < len(children); i++ {
		p.InsertNodeAfter(children[i-1], key(keys[i-1]), children[i])
	}
}

func internalKeys(p *InternalPage) []int64 {
	var keys []int64
	for i := 1; i < p.Size(); i++ {
		keys = append(keys, DecodeIntegerKey(p.KeyAt(i)))
	}
	return keys
}

func leafKeys(p *LeafPage) []int64 {
	var keys []int64
	for i := 0; i < p.Size(); i++ {
		keys = append(keys, DecodeIntegerKey(p.KeyAt(i)))
	}
	return keys
}
