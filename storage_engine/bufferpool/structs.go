package bufferpool

import (
	diskmanager "StrataDB/storage_engine/disk_manager"
	"StrataDB/storage_engine/hashdir"
	"StrataDB/storage_engine/page"
	"StrataDB/storage_engine/replacer"
	"StrataDB/types"
	"log/slog"
	"sync"
)

// ############################################# BUFFER POOL #############################################

// BufferPool caches pages in a fixed set of frames. The page table maps page
// ids to frames; the replacer picks which unpinned frame is reused.
type BufferPool struct {
	frames      []*page.Page
	freeList    []types.FrameID
	pageTable   *hashdir.Directory[int64, types.FrameID]
	replacer    replacer.Replacer
	diskManager *diskmanager.DiskManager
	hits        uint64
	misses      uint64
	log         *slog.Logger
	mu          sync.Mutex
}

// BufferPoolStats is a point-in-time snapshot of the pool.
type BufferPoolStats struct {
	TotalPages  int
	PinnedPages int
	DirtyPages  int
	Capacity    int
	Hits        uint64
	Misses      uint64
	HitRate     float64
}
