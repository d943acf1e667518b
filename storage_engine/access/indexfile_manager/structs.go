package indexfile

import (
	bplus "StrataDB/storage_engine/access/indexfile_manager/bplustree"
	"StrataDB/storage_engine/bufferpool"
	diskmanager "StrataDB/storage_engine/disk_manager"
	"StrataDB/types"
	"log/slog"
	"sync"
)

type IndexFileManager struct {
	baseDir     string                // e.g., /data/mydb/indexes
	files       map[string]*IndexFile // file name → open index file
	bufferPool  *bufferpool.BufferPool
	diskManager *diskmanager.DiskManager
	log         *slog.Logger
	mu          sync.RWMutex
}

// IndexFile is one open .idx file. Its first page is the header page listing
// the trees stored in the file.
type IndexFile struct {
	Name         string
	Path         string
	FileID       uint32
	HeaderPageID int64
	bufferPool   *bufferpool.BufferPool
	log          *slog.Logger
	mu           sync.Mutex
}

// HeaderRecord describes one tree in an index file.
type HeaderRecord struct {
	Name            string `msgpack:"name"`
	RootPageID      int64  `msgpack:"root"`
	KeyWidth        int    `msgpack:"key_width"`
	LeafMaxSize     int    `msgpack:"leaf_max"`
	InternalMaxSize int    `msgpack:"internal_max"`
}

// Entry is one key/record id pair handed to BulkLoad.
type Entry struct {
	Key []byte
	RID types.RID
}

// Node is a page visited by Walk. Exactly one of Internal and Leaf is set,
// and both views are only valid inside the callback.
type Node struct {
	Depth    int
	Internal *bplus.InternalPage
	Leaf     *bplus.LeafPage
}
