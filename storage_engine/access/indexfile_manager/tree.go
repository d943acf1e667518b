package indexfile

import (
	bplus "StrataDB/storage_engine/access/indexfile_manager/bplustree"
	"StrataDB/storage_engine/page"
	"StrataDB/types"
	"errors"
	"fmt"
)

var (
	ErrEmptyIndex    = errors.New("index is empty")
	ErrIndexNotEmpty = errors.New("index is not empty")
	ErrKeyWidth      = errors.New("key width mismatch")
	ErrUnsorted      = errors.New("entries not strictly ascending")
)

// CreateIndex registers an empty tree. A max size of 0 picks the largest
// size a page of that key width can hold.
func (f *IndexFile) CreateIndex(name string, keyWidth, leafMaxSize, internalMaxSize int) (HeaderRecord, error) {
	if !bplus.ValidKeyWidth(keyWidth) {
		return HeaderRecord{}, fmt.Errorf("index %s: %w: %d", name, bplus.ErrInvalidKeyWidth, keyWidth)
	}
	if leafMaxSize == 0 {
		leafMaxSize = bplus.MaxSlots(bplus.LeafIndexPage, keyWidth) - 1
	}
	if internalMaxSize == 0 {
		internalMaxSize = bplus.MaxSlots(bplus.InternalIndexPage, keyWidth) - 1
	}
	if leafMaxSize < 2 || leafMaxSize >= bplus.MaxSlots(bplus.LeafIndexPage, keyWidth) {
		return HeaderRecord{}, fmt.Errorf("index %s: leaf %w: %d", name, bplus.ErrInvalidMaxSize, leafMaxSize)
	}
	if internalMaxSize < 3 || internalMaxSize >= bplus.MaxSlots(bplus.InternalIndexPage, keyWidth) {
		return HeaderRecord{}, fmt.Errorf("index %s: internal %w: %d", name, bplus.ErrInvalidMaxSize, internalMaxSize)
	}

	rec := HeaderRecord{
		Name:            name,
		RootPageID:      types.InvalidPageID,
		KeyWidth:        keyWidth,
		LeafMaxSize:     leafMaxSize,
		InternalMaxSize: internalMaxSize,
	}
	if err := f.InsertRecord(rec); err != nil {
		return HeaderRecord{}, err
	}
	f.log.Debug("index created", "tree", name, "key_width", keyWidth, "leaf_max", leafMaxSize, "internal_max", internalMaxSize)
	return rec, nil
}

// Search descends from the root to the leaf covering key.
func (f *IndexFile) Search(name string, key []byte) (types.RID, bool, error) {
	rec, err := f.GetRecord(name)
	if err != nil {
		return types.RID{}, false, err
	}
	if len(key) != rec.KeyWidth {
		return types.RID{}, false, fmt.Errorf("index %s: %w: got %d bytes, want %d", name, ErrKeyWidth, len(key), rec.KeyWidth)
	}
	if rec.RootPageID == types.InvalidPageID {
		return types.RID{}, false, nil
	}

	var (
		rid   types.RID
		found bool
		done  bool
	)
	pageID := rec.RootPageID
	for !done {
		err := f.readPage(pageID, func(pg *page.Page) error {
			switch bplus.NewTreePage(pg.Data).Kind() {
			case bplus.LeafIndexPage:
				rid, found = bplus.NewLeafPage(pg.Data, bplus.CompareKeys).LookUp(key)
				done = true
			case bplus.InternalIndexPage:
				pageID = bplus.NewInternalPage(pg.Data, bplus.CompareKeys).LookUp(key)
			default:
				return fmt.Errorf("page %d: %w", pg.ID, bplus.ErrWrongPageKind)
			}
			return nil
		})
		if err != nil {
			return types.RID{}, false, err
		}
	}
	return rid, found, nil
}

// Walk visits every page of the tree depth first, parents before children.
// Pages are pinned only for the duration of their callback.
func (f *IndexFile) Walk(name string, fn func(Node) error) error {
	rec, err := f.GetRecord(name)
	if err != nil {
		return err
	}
	if rec.RootPageID == types.InvalidPageID {
		return nil
	}
	return f.walk(rec.RootPageID, 0, fn)
}

func (f *IndexFile) walk(pageID int64, depth int, fn func(Node) error) error {
	var children []int64
	err := f.readPage(pageID, func(pg *page.Page) error {
		node := Node{Depth: depth}
		switch bplus.NewTreePage(pg.Data).Kind() {
		case bplus.LeafIndexPage:
			node.Leaf = bplus.NewLeafPage(pg.Data, bplus.CompareKeys)
		case bplus.InternalIndexPage:
			node.Internal = bplus.NewInternalPage(pg.Data, bplus.CompareKeys)
			children = node.Internal.Children()
		default:
			return fmt.Errorf("page %d: %w", pg.ID, bplus.ErrWrongPageKind)
		}
		return fn(node)
	})
	if err != nil {
		return err
	}

	for _, child := range children {
		if err := f.walk(child, depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}

// Scan calls fn for every entry in key order by following the leaf chain
// from the leftmost leaf.
func (f *IndexFile) Scan(name string, fn func(key []byte, rid types.RID) error) error {
	rec, err := f.GetRecord(name)
	if err != nil {
		return err
	}
	if rec.RootPageID == types.InvalidPageID {
		return nil
	}

	pageID := rec.RootPageID
	atLeaf := false
	for !atLeaf {
		err := f.readPage(pageID, func(pg *page.Page) error {
			switch bplus.NewTreePage(pg.Data).Kind() {
			case bplus.LeafIndexPage:
				atLeaf = true
			case bplus.InternalIndexPage:
				pageID = bplus.NewInternalPage(pg.Data, bplus.CompareKeys).ValueAt(0)
			default:
				return fmt.Errorf("page %d: %w", pg.ID, bplus.ErrWrongPageKind)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	for pageID != types.InvalidPageID {
		err := f.readPage(pageID, func(pg *page.Page) error {
			leaf := bplus.NewLeafPage(pg.Data, bplus.CompareKeys)
			for i := 0; i < leaf.Size(); i++ {
				if err := fn(leaf.Item(i)); err != nil {
					return err
				}
			}
			pageID = leaf.NextPageID()
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// readPage pins pageID and holds its read latch while fn looks at the bytes.
func (f *IndexFile) readPage(pageID int64, fn func(*page.Page) error) error {
	return bplus.WithPinnedPage(f.bufferPool, pageID, false, func(pg *page.Page) error {
		pg.RLock()
		defer pg.RUnlock()
		return fn(pg)
	})
}
