package bufferpool

import (
	"StrataDB/storage_engine/page"
	"StrataDB/types"
	"fmt"

	"github.com/dustin/go-humanize"
)

/*
This file holds helper functions for the bufferpool
*/

// GetStats returns current buffer pool statistics
func (bp *BufferPool) GetStats() BufferPoolStats {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	stats := BufferPoolStats{
		Capacity: len(bp.frames),
		Hits:     bp.hits,
		Misses:   bp.misses,
	}
	if total := bp.hits + bp.misses; total > 0 {
		stats.HitRate = float64(bp.hits) / float64(total)
	}

	for _, pg := range bp.frames {
		if pg.ID == types.InvalidPageID {
			continue
		}
		stats.TotalPages++
		if pg.PinCount > 0 {
			stats.PinnedPages++
		}
		if pg.IsDirty {
			stats.DirtyPages++
		}
	}

	return stats
}

func (s BufferPoolStats) String() string {
	return fmt.Sprintf("%d/%d frames (%s resident), %d pinned, %d dirty, %s hits, %s misses, hit rate %.1f%%",
		s.TotalPages, s.Capacity,
		humanize.IBytes(uint64(s.TotalPages)*types.PageSize),
		s.PinnedPages, s.DirtyPages,
		humanize.Comma(int64(s.Hits)), humanize.Comma(int64(s.Misses)),
		s.HitRate*100)
}

// Size returns the current number of pages in the buffer pool
func (bp *BufferPool) Size() int {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	return len(bp.frames) - len(bp.freeList)
}

// Capacity returns the number of frames
func (bp *BufferPool) Capacity() int {
	return len(bp.frames)
}

// GetPage returns a resident page without pinning it, or nil.
func (bp *BufferPool) GetPage(pageID int64) *page.Page {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	frameID, ok := bp.pageTable.Find(pageID)
	if !ok {
		return nil
	}
	return bp.frames[frameID]
}

// PinCount returns the pin count of a resident page, or -1.
func (bp *BufferPool) PinCount(pageID int64) int32 {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	frameID, ok := bp.pageTable.Find(pageID)
	if !ok {
		return -1
	}
	return bp.frames[frameID].PinCount
}

// MarkDirty marks a resident page as modified
func (bp *BufferPool) MarkDirty(pageID int64) error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	frameID, ok := bp.pageTable.Find(pageID)
	if !ok {
		return fmt.Errorf("page %d: %w", pageID, ErrPageNotResident)
	}
	bp.frames[frameID].IsDirty = true
	return nil
}
