package bufferpool

import (
	"StrataDB/config"
	diskmanager "StrataDB/storage_engine/disk_manager"
	"StrataDB/types"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPool(t *testing.T, capacity int) (*BufferPool, uint32) {
	t.Helper()
	cfg := config.Default()
	cfg.PoolSize = capacity
	return newTestPoolFromConfig(t, cfg)
}

func newTestPoolFromConfig(t *testing.T, cfg config.Config) (*BufferPool, uint32) {
	t.Helper()
	dm, err := diskmanager.NewDiskManager(cfg.BlockCacheBytes)
	require.NoError(t, err)
	t.Cleanup(func() { _ = dm.CloseAll() })

	fileID, err := dm.OpenFile(filepath.Join(t.TempDir(), "pool.idx"))
	require.NoError(t, err)

	bp, err := NewBufferPoolFromConfig(cfg, dm)
	require.NoError(t, err)
	return bp, fileID
}

func TestNewPageIsPinnedAndDirty(t *testing.T) {
	bp, fileID := newTestPool(t, 2)

	pg, err := bp.NewPage(fileID, types.PageTypeBPlusNode)
	require.NoError(t, err)
	assert.Equal(t, int32(1), pg.PinCount)
	assert.True(t, pg.IsDirty)
	assert.Equal(t, 1, bp.Size())

	same, err := bp.FetchPage(pg.ID)
	require.NoError(t, err)
	assert.Same(t, pg, same)
	assert.Equal(t, int32(2), bp.PinCount(pg.ID))

	require.NoError(t, bp.UnpinPage(pg.ID, false))
	require.NoError(t, bp.UnpinPage(pg.ID, false))
	assert.ErrorIs(t, bp.UnpinPage(pg.ID, false), ErrPageNotPinned)
	assert.ErrorIs(t, bp.UnpinPage(12345, false), ErrPageNotResident)
}

func TestAllFramesPinned(t *testing.T) {
	bp, fileID := newTestPool(t, 2)
	for i := 0; i < 2; i++ {
		_, err := bp.NewPage(fileID, types.PageTypeBPlusNode)
		require.NoError(t, err)
	}
	_, err := bp.NewPage(fileID, types.PageTypeBPlusNode)
	assert.ErrorIs(t, err, ErrNoFreeFrame)

	stats := bp.GetStats()
	assert.Equal(t, 2, stats.PinnedPages)
	assert.Equal(t, 2, stats.TotalPages)
}

func TestDirtyVictimRoundTrips(t *testing.T) {
	bp, fileID := newTestPool(t, 1)

	first, err := bp.NewPage(fileID, types.PageTypeBPlusNode)
	require.NoError(t, err)
	firstID := first.ID
	copy(first.Data[64:], "payload")
	require.NoError(t, bp.UnpinPage(firstID, true))

	// evicts the first page, writing it out
	second, err := bp.NewPage(fileID, types.PageTypeBPlusNode)
	require.NoError(t, err)
	assert.Nil(t, bp.GetPage(firstID))
	require.NoError(t, bp.UnpinPage(second.ID, false))

	again, err := bp.FetchPage(firstID)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(again.Data[64:71]))
	assert.Equal(t, types.PageTypeBPlusNode, again.PageType)
	require.NoError(t, bp.UnpinPage(firstID, false))
}

func TestEvictionFollowsReplacer(t *testing.T) {
	bp, fileID := newTestPool(t, 3)

	ids := make([]int64, 3)
	for i := range ids {
		pg, err := bp.NewPage(fileID, types.PageTypeBPlusNode)
		require.NoError(t, err)
		ids[i] = pg.ID
		require.NoError(t, bp.UnpinPage(pg.ID, false))
	}
	// pages 0 and 2 reach k=2 accesses; page 1 stays at one access
	for _, id := range []int64{ids[0], ids[2]} {
		_, err := bp.FetchPage(id)
		require.NoError(t, err)
		require.NoError(t, bp.UnpinPage(id, false))
	}

	_, err := bp.NewPage(fileID, types.PageTypeBPlusNode)
	require.NoError(t, err)
	assert.Nil(t, bp.GetPage(ids[1]))
	assert.NotNil(t, bp.GetPage(ids[0]))
	assert.NotNil(t, bp.GetPage(ids[2]))
}

func TestLRUPolicy(t *testing.T) {
	cfg := config.Default()
	cfg.PoolSize = 2
	cfg.ReplacerPolicy = config.PolicyLRU
	bp, fileID := newTestPoolFromConfig(t, cfg)

	a, err := bp.NewPage(fileID, types.PageTypeBPlusNode)
	require.NoError(t, err)
	b, err := bp.NewPage(fileID, types.PageTypeBPlusNode)
	require.NoError(t, err)
	// frames are reused, so keep the ids rather than the pages
	aID, bID := a.ID, b.ID
	require.NoError(t, bp.UnpinPage(bID, false))
	require.NoError(t, bp.UnpinPage(aID, false))

	c, err := bp.NewPage(fileID, types.PageTypeBPlusNode)
	require.NoError(t, err)
	assert.NotEqual(t, bID, c.ID)
	assert.Nil(t, bp.GetPage(bID), "b was unpinned first")
	assert.NotNil(t, bp.GetPage(aID))
	assert.Same(t, c, bp.GetPage(c.ID))
}

func TestDeletePage(t *testing.T) {
	bp, fileID := newTestPool(t, 2)
	pg, err := bp.NewPage(fileID, types.PageTypeBPlusNode)
	require.NoError(t, err)
	id := pg.ID

	assert.ErrorIs(t, bp.DeletePage(id), ErrPagePinned)
	require.NoError(t, bp.UnpinPage(id, true))
	require.NoError(t, bp.DeletePage(id))
	assert.Nil(t, bp.GetPage(id))
	assert.Equal(t, 0, bp.Size())

	_, err = bp.FetchPage(id)
	assert.ErrorIs(t, err, diskmanager.ErrPageNotFound)
}

func TestEvictFile(t *testing.T) {
	bp, fileID := newTestPool(t, 4)
	pg, err := bp.NewPage(fileID, types.PageTypeBPlusNode)
	require.NoError(t, err)
	id := pg.ID
	pg.Data[100] = 0xAB

	assert.ErrorIs(t, bp.EvictFile(fileID), ErrPagePinned)
	assert.Equal(t, 1, bp.Size())

	require.NoError(t, bp.UnpinPage(id, true))
	require.NoError(t, bp.EvictFile(fileID))
	assert.Equal(t, 0, bp.Size())
	assert.Nil(t, bp.GetPage(id))

	again, err := bp.FetchPage(id)
	require.NoError(t, err)
	assert.Equal(t, byte(0xAB), again.Data[100])
	require.NoError(t, bp.UnpinPage(id, false))
}

func TestFlushAllPages(t *testing.T) {
	bp, fileID := newTestPool(t, 4)
	for i := 0; i < 4; i++ {
		pg, err := bp.NewPage(fileID, types.PageTypeBPlusNode)
		require.NoError(t, err)
		pg.Data[500] = byte(i)
		require.NoError(t, bp.UnpinPage(pg.ID, true))
	}
	assert.Equal(t, 4, bp.GetStats().DirtyPages)

	require.NoError(t, bp.FlushAllPages())
	assert.Equal(t, 0, bp.GetStats().DirtyPages)
}

func TestStatsString(t *testing.T) {
	bp, fileID := newTestPool(t, 4)
	pg, err := bp.NewPage(fileID, types.PageTypeBPlusNode)
	require.NoError(t, err)
	_, err = bp.FetchPage(pg.ID)
	require.NoError(t, err)

	stats := bp.GetStats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Contains(t, stats.String(), "1/4 frames (4.0 KiB resident)")
}
