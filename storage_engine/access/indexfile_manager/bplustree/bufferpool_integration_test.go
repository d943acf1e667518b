package bplus

import (
	"StrataDB/storage_engine/bufferpool"
	diskmanager "StrataDB/storage_engine/disk_manager"
	"StrataDB/storage_engine/page"
	"StrataDB/types"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The buffer pool is the production PagePinner: a split must leave every
// child unpinned with its new parent persisted.
func TestInternalSplitThroughBufferPool(t *testing.T) {
	dm, err := diskmanager.NewDiskManager(0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = dm.CloseAll() })
	fileID, err := dm.OpenFile(filepath.Join(t.TempDir(), "split.idx"))
	require.NoError(t, err)

	// fewer frames than pages, so fixups go through eviction and reload
	bp, err := bufferpool.NewBufferPool(4, dm)
	require.NoError(t, err)

	leftPg, err := bp.NewPage(fileID, types.PageTypeBPlusNode)
	require.NoError(t, err)
	rightPg, err := bp.NewPage(fileID, types.PageTypeBPlusNode)
	require.NoError(t, err)

	left := NewInternalPage(leftPg.Data, CompareKeys)
	require.NoError(t, left.Init(leftPg.ID, types.InvalidPageID, 4, 8))
	right := NewInternalPage(rightPg.Data, CompareKeys)
	require.NoError(t, right.Init(rightPg.ID, types.InvalidPageID, 4, 8))

	var children []int64
	for i := 0; i < 5; i++ {
		pg, err := bp.NewPage(fileID, types.PageTypeBPlusNode)
		require.NoError(t, err)
		require.NoError(t, NewLeafPage(pg.Data, CompareKeys).Init(pg.ID, left.PageID(), 4, 8))
		children = append(children, pg.ID)
		require.NoError(t, bp.UnpinPage(pg.ID, true))
	}
	left.PopulateNewRoot(children[0], key(10), children[1])
	for i := 2; i < len(children); i++ {
		left.InsertNodeAfter(children[i-1], key(int64(i*10)), children[i])
	}

	require.NoError(t, left.MoveHalfTo(right, bp))

	for i, c := range children {
		assert.LessOrEqual(t, bp.PinCount(c), int32(0), "child %d", c)
		want := left.PageID()
		if i >= 3 {
			want = right.PageID()
		}
		err := WithPinnedPage(bp, c, false, func(pg *page.Page) error {
			assert.Equal(t, want, NewTreePage(pg.Data).ParentPageID(), "child %d", c)
			return nil
		})
		require.NoError(t, err)
	}

	require.NoError(t, bp.UnpinPage(leftPg.ID, true))
	require.NoError(t, bp.UnpinPage(rightPg.ID, true))
	require.NoError(t, bp.FlushAllPages())
}
