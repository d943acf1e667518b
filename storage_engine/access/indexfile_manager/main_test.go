package indexfile

import (
	bplus "StrataDB/storage_engine/access/indexfile_manager/bplustree"
	"StrataDB/storage_engine/bufferpool"
	diskmanager "StrataDB/storage_engine/disk_manager"
	"StrataDB/types"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, dir string) (*IndexFileManager, *bufferpool.BufferPool) {
	t.Helper()
	dm, err := diskmanager.NewDiskManager(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = dm.CloseAll() })

	bp, err := bufferpool.NewBufferPool(32, dm)
	require.NoError(t, err)

	ifm, err := NewIndexFileManager(dir, dm, bp)
	require.NoError(t, err)
	return ifm, bp
}

func intEntries(keys ...int64) []Entry {
	entries := make([]Entry, len(keys))
	for i, k := range keys {
		entries[i] = Entry{
			Key: bplus.EncodeIntegerKey(k, 8),
			RID: types.RID{PageID: k / 10, Slot: uint32(k % 10)},
		}
	}
	return entries
}

func TestOpenCreatesHeaderPage(t *testing.T) {
	ifm, bp := newTestManager(t, t.TempDir())

	f, err := ifm.OpenIndexFile("users")
	require.NoError(t, err)
	assert.Equal(t, diskmanager.GlobalPageID(f.FileID, 0), f.HeaderPageID)

	records, err := f.Records()
	require.NoError(t, err)
	assert.Empty(t, records)

	same, err := ifm.OpenIndexFile("users")
	require.NoError(t, err)
	assert.Same(t, f, same)
	assert.Equal(t, []string{"users"}, ifm.OpenFiles())
	assert.Equal(t, 0, bp.GetStats().PinnedPages)
}

func TestHeaderRecords(t *testing.T) {
	ifm, _ := newTestManager(t, t.TempDir())
	f, err := ifm.OpenIndexFile("orders")
	require.NoError(t, err)

	_, err = f.CreateIndex("by_id", 8, 0, 0)
	require.NoError(t, err)
	_, err = f.CreateIndex("by_date", 16, 10, 10)
	require.NoError(t, err)
	_, err = f.CreateIndex("by_id", 8, 0, 0)
	assert.ErrorIs(t, err, ErrIndexExists)

	rec, err := f.GetRecord("by_id")
	require.NoError(t, err)
	assert.Equal(t, types.InvalidPageID, rec.RootPageID)
	assert.Equal(t, bplus.MaxSlots(bplus.LeafIndexPage, 8)-1, rec.LeafMaxSize)

	require.NoError(t, f.UpdateRoot("by_id", 42))
	rec, err = f.GetRecord("by_id")
	require.NoError(t, err)
	assert.Equal(t, int64(42), rec.RootPageID)

	records, err := f.Records()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "by_date", records[0].Name)

	require.NoError(t, f.DeleteRecord("by_date"))
	_, err = f.GetRecord("by_date")
	assert.ErrorIs(t, err, ErrIndexNotFound)
	assert.ErrorIs(t, f.DeleteRecord("by_date"), ErrIndexNotFound)
	assert.ErrorIs(t, f.UpdateRoot("missing", 1), ErrIndexNotFound)
}

func TestCreateIndexValidates(t *testing.T) {
	ifm, _ := newTestManager(t, t.TempDir())
	f, err := ifm.OpenIndexFile("v")
	require.NoError(t, err)

	_, err = f.CreateIndex("a", 12, 0, 0)
	assert.ErrorIs(t, err, bplus.ErrInvalidKeyWidth)
	_, err = f.CreateIndex("b", 8, 1, 0)
	assert.ErrorIs(t, err, bplus.ErrInvalidMaxSize)
	_, err = f.CreateIndex("c", 8, 0, bplus.MaxSlots(bplus.InternalIndexPage, 8))
	assert.ErrorIs(t, err, bplus.ErrInvalidMaxSize)
}

func TestHeaderSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ifm, _ := newTestManager(t, dir)
	f, err := ifm.OpenIndexFile("persist")
	require.NoError(t, err)
	_, err = f.CreateIndex("pk", 8, 4, 4)
	require.NoError(t, err)
	require.NoError(t, f.BulkLoad("pk", intEntries(1, 2, 3, 4, 5, 6, 7, 8, 9)))
	require.NoError(t, ifm.CloseIndexFile("persist"))
	assert.Empty(t, ifm.OpenFiles())

	other, _ := newTestManager(t, dir)
	f, err = other.OpenIndexFile("persist")
	require.NoError(t, err)

	rec, err := f.GetRecord("pk")
	require.NoError(t, err)
	assert.NotEqual(t, types.InvalidPageID, rec.RootPageID)

	rid, ok, err := f.Search("pk", bplus.EncodeIntegerKey(7, 8))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, types.RID{PageID: 0, Slot: 7}, rid)
}

func TestHeaderFull(t *testing.T) {
	ifm, _ := newTestManager(t, t.TempDir())
	f, err := ifm.OpenIndexFile("crowded")
	require.NoError(t, err)

	var lastErr error
	for i := 0; i < 200 && lastErr == nil; i++ {
		_, lastErr = f.CreateIndex(fmt.Sprintf("%s_%d", strings.Repeat("x", 60), i), 8, 0, 0)
	}
	assert.ErrorIs(t, lastErr, ErrHeaderFull)

	// the failed insert left the header readable
	_, err = f.Records()
	require.NoError(t, err)
}
