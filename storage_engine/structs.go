package storageengine

import (
	"StrataDB/config"
	indexfile "StrataDB/storage_engine/access/indexfile_manager"
	"StrataDB/storage_engine/bufferpool"
	diskmanager "StrataDB/storage_engine/disk_manager"
	"log/slog"
)

// StorageEngine wires the disk manager, the buffer pool and the index files
// of one database directory.
type StorageEngine struct {
	BufferPool   *bufferpool.BufferPool
	DiskManager  *diskmanager.DiskManager
	IndexManager *indexfile.IndexFileManager

	DbRoot string
	Config config.Config
	log    *slog.Logger
}
