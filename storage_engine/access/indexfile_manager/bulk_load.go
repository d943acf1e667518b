package indexfile

import (
	bplus "StrataDB/storage_engine/access/indexfile_manager/bplustree"
	"StrataDB/storage_engine/bufferpool"
	"StrataDB/storage_engine/page"
	"StrataDB/types"
	"fmt"
	"time"
)

/*
BulkLoad builds a tree by appending sorted entries to its rightmost leaf.

A leaf that overflows splits with MoveHalfTo and threads the new leaf's first
key into its parent; an overflowing parent splits the same way, up to a new
root. Only the rightmost path is ever touched, so at most two pages per level
are pinned and write latched at once.

The header is only updated once every entry is in. A failed load leaves its
pages allocated but unreachable.
*/

type bulkLoader struct {
	bp       *bufferpool.BufferPool
	fileID   uint32
	rec      HeaderRecord
	root     int64
	leaf     int64 // rightmost leaf
	newPages int
}

// BulkLoad fills the empty tree name with entries, which must be strictly
// ascending under bplus.CompareKeys.
func (f *IndexFile) BulkLoad(name string, entries []Entry) error {
	rec, err := f.GetRecord(name)
	if err != nil {
		return err
	}
	if rec.RootPageID != types.InvalidPageID {
		return fmt.Errorf("bulk load %s: %w", name, ErrIndexNotEmpty)
	}
	for i, e := range entries {
		if len(e.Key) != rec.KeyWidth {
			return fmt.Errorf("bulk load %s: entry %d: %w: got %d bytes, want %d", name, i, ErrKeyWidth, len(e.Key), rec.KeyWidth)
		}
		if i > 0 && bplus.CompareKeys(entries[i-1].Key, e.Key) >= 0 {
			return fmt.Errorf("bulk load %s: entry %d: %w", name, i, ErrUnsorted)
		}
	}
	if len(entries) == 0 {
		return nil
	}

	start := time.Now()
	l := &bulkLoader{
		bp:     f.bufferPool,
		fileID: f.FileID,
		rec:    rec,
		root:   types.InvalidPageID,
		leaf:   types.InvalidPageID,
	}
	for _, e := range entries {
		if err := l.add(e); err != nil {
			return fmt.Errorf("bulk load %s: %w", name, err)
		}
	}
	if err := f.UpdateRoot(name, l.root); err != nil {
		return err
	}

	f.log.Info("bulk load complete",
		"tree", name,
		"entries", len(entries),
		"pages", l.newPages,
		"root", l.root,
		"elapsed", time.Since(start))
	return nil
}

func (l *bulkLoader) add(e Entry) error {
	if l.leaf == types.InvalidPageID {
		err := l.withNewPage(func(pg *page.Page) error {
			leaf := bplus.NewLeafPage(pg.Data, bplus.CompareKeys)
			l.leaf = pg.ID
			return leaf.Init(pg.ID, types.InvalidPageID, l.rec.LeafMaxSize, l.rec.KeyWidth)
		})
		if err != nil {
			return err
		}
		l.root = l.leaf
	}

	return l.writePage(l.leaf, func(pg *page.Page) error {
		leaf := bplus.NewLeafPage(pg.Data, bplus.CompareKeys)
		leaf.Insert(e.Key, e.RID)
		if leaf.Size() <= leaf.MaxSize() {
			return nil
		}
		return l.splitLeaf(leaf)
	})
}

func (l *bulkLoader) splitLeaf(leaf *bplus.LeafPage) error {
	return l.withNewPage(func(pg *page.Page) error {
		sibling := bplus.NewLeafPage(pg.Data, bplus.CompareKeys)
		if err := sibling.Init(pg.ID, leaf.ParentPageID(), leaf.MaxSize(), l.rec.KeyWidth); err != nil {
			return err
		}
		leaf.MoveHalfTo(sibling)
		sibling.SetNextPageID(leaf.NextPageID())
		leaf.SetNextPageID(sibling.PageID())
		l.leaf = sibling.PageID()

		return l.insertIntoParent(&leaf.TreePage, sibling.KeyAt(0), &sibling.TreePage)
	})
}

// insertIntoParent threads (key, right) in after left, which just split.
// Both pages are pinned by the caller.
func (l *bulkLoader) insertIntoParent(left *bplus.TreePage, key []byte, right *bplus.TreePage) error {
	if left.IsRoot() {
		return l.withNewPage(func(pg *page.Page) error {
			root := bplus.NewInternalPage(pg.Data, bplus.CompareKeys)
			if err := root.Init(pg.ID, types.InvalidPageID, l.rec.InternalMaxSize, l.rec.KeyWidth); err != nil {
				return err
			}
			root.PopulateNewRoot(left.PageID(), key, right.PageID())
			left.SetParentPageID(root.PageID())
			right.SetParentPageID(root.PageID())
			l.root = root.PageID()
			return nil
		})
	}

	return l.writePage(left.ParentPageID(), func(pg *page.Page) error {
		parent := bplus.NewInternalPage(pg.Data, bplus.CompareKeys)
		parent.InsertNodeAfter(left.PageID(), key, right.PageID())
		right.SetParentPageID(parent.PageID())
		if parent.Size() <= parent.MaxSize() {
			return nil
		}

		return l.withNewPage(func(spg *page.Page) error {
			sibling := bplus.NewInternalPage(spg.Data, bplus.CompareKeys)
			if err := sibling.Init(spg.ID, parent.ParentPageID(), parent.MaxSize(), l.rec.KeyWidth); err != nil {
				return err
			}
			if err := parent.MoveHalfTo(sibling, l.bp); err != nil {
				return err
			}
			return l.insertIntoParent(&parent.TreePage, sibling.KeyAt(0), &sibling.TreePage)
		})
	})
}

// withNewPage allocates a tree page, pinned for fn and unpinned dirty.
func (l *bulkLoader) withNewPage(fn func(*page.Page) error) (err error) {
	pg, err := l.bp.NewPage(l.fileID, types.PageTypeBPlusNode)
	if err != nil {
		return err
	}
	defer func() {
		if uerr := l.bp.UnpinPage(pg.ID, true); uerr != nil && err == nil {
			err = uerr
		}
	}()
	l.newPages++

	pg.Lock()
	defer pg.Unlock()
	return fn(pg)
}

// writePage pins pageID and holds its write latch for fn. Parent fixups of
// moved children do not latch.
func (l *bulkLoader) writePage(pageID int64, fn func(*page.Page) error) error {
	return bplus.WithPinnedPage(l.bp, pageID, true, func(pg *page.Page) error {
		pg.Lock()
		defer pg.Unlock()
		return fn(pg)
	})
}
