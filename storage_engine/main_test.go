package storageengine

import (
	"StrataDB/config"
	indexfile "StrataDB/storage_engine/access/indexfile_manager"
	bplus "StrataDB/storage_engine/access/indexfile_manager/bplustree"
	"StrataDB/types"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineRoundTrip(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	cfg.PoolSize = 16
	cfg.ReplacerPolicy = config.PolicyLRU

	se, err := NewStorageEngine(root, cfg)
	require.NoError(t, err)

	f, err := se.IndexManager.OpenIndexFile("accounts")
	require.NoError(t, err)
	_, err = f.CreateIndex("pk", 8, 8, 8)
	require.NoError(t, err)

	var entries []indexfile.Entry
	for k := int64(0); k < 200; k++ {
		entries = append(entries, indexfile.Entry{Key: bplus.EncodeIntegerKey(k, 8), RID: types.RID{PageID: k, Slot: 1}})
	}
	require.NoError(t, f.BulkLoad("pk", entries))
	require.NoError(t, se.Close())

	_, err = os.Stat(filepath.Join(root, "accounts.idx"))
	require.NoError(t, err)

	se, err = NewStorageEngine(root, config.Default())
	require.NoError(t, err)
	defer se.Close()

	f, err = se.IndexManager.OpenIndexFile("accounts")
	require.NoError(t, err)
	rid, ok, err := f.Search("pk", bplus.EncodeIntegerKey(123, 8))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, types.RID{PageID: 123, Slot: 1}, rid)
}

func TestEngineRejectsBadConfig(t *testing.T) {
	cfg := config.Default()
	cfg.ReplacerPolicy = "clock"
	_, err := NewStorageEngine(t.TempDir(), cfg)
	assert.Error(t, err)
}
