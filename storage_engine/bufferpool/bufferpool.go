package bufferpool

import (
	"StrataDB/config"
	diskmanager "StrataDB/storage_engine/disk_manager"
	"StrataDB/storage_engine/hashdir"
	"StrataDB/storage_engine/logging"
	"StrataDB/storage_engine/page"
	"StrataDB/storage_engine/replacer"
	"StrataDB/types"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

/*
This file is the main file of the bufferpool.

A page is looked up in the page table (an extendible hash directory). On a
miss a frame comes from the free list, or failing that from the replacer;
a dirty victim is written through the disk manager before its frame is reused.

Every fetch records an access with the replacer. A frame is evictable exactly
while its pin count is zero.
*/

var (
	ErrNoFreeFrame     = errors.New("all frames are pinned")
	ErrPageNotResident = errors.New("page not in buffer pool")
	ErrPageNotPinned   = errors.New("page is not pinned")
	ErrPagePinned      = errors.New("page is pinned")
)

// NewBufferPool creates a pool of capacity frames with the default LRU-K replacer.
func NewBufferPool(capacity int, diskManager *diskmanager.DiskManager) (*BufferPool, error) {
	cfg := config.Default()
	cfg.PoolSize = capacity
	return NewBufferPoolFromConfig(cfg, diskManager)
}

// NewBufferPoolFromConfig creates a pool sized and tuned by cfg.
func NewBufferPoolFromConfig(cfg config.Config, diskManager *diskmanager.DiskManager) (*BufferPool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if diskManager == nil {
		return nil, fmt.Errorf("disk manager not set")
	}

	rep, err := replacer.New(cfg.ReplacerPolicy, cfg.PoolSize, cfg.ReplacerK)
	if err != nil {
		return nil, fmt.Errorf("failed to create replacer: %w", err)
	}

	bp := &BufferPool{
		frames:      make([]*page.Page, cfg.PoolSize),
		freeList:    make([]types.FrameID, 0, cfg.PoolSize),
		pageTable:   hashdir.New[int64, types.FrameID](cfg.PageTableBucketSize, hashdir.IntegerHasher[int64]()),
		replacer:    rep,
		diskManager: diskManager,
		log:         logging.WithComponent("bufferpool"),
	}
	for i := range bp.frames {
		bp.frames[i] = diskmanager.NewPage(types.InvalidPageID, 0, types.PageTypeUnknown)
		bp.freeList = append(bp.freeList, types.FrameID(i))
	}
	return bp, nil
}

// FetchPage returns the page pinned, reading it from disk on a miss.
func (bp *BufferPool) FetchPage(pageID int64) (*page.Page, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if frameID, ok := bp.pageTable.Find(pageID); ok {
		pg := bp.frames[frameID]
		bp.hits++
		bp.log.Debug("page hit", "page_id", pageID, "pin_count", pg.PinCount)
		bp.pin(frameID)
		return pg, nil
	}

	bp.misses++
	bp.log.Debug("page miss", "page_id", pageID)

	frameID, err := bp.acquireFrame()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page %d: %w", pageID, err)
	}

	loaded, err := bp.diskManager.ReadPage(pageID)
	if err != nil {
		bp.freeList = append(bp.freeList, frameID)
		return nil, fmt.Errorf("failed to read page %d from disk: %w", pageID, err)
	}

	pg := bp.frames[frameID]
	pg.ID = loaded.ID
	pg.FileID = loaded.FileID
	pg.PageType = loaded.PageType
	pg.IsDirty = false
	copy(pg.Data, loaded.Data)

	bp.pageTable.Insert(pageID, frameID)
	bp.pin(frameID)
	return pg, nil
}

// NewPage allocates a fresh page in fileID and returns it pinned and dirty.
func (bp *BufferPool) NewPage(fileID uint32, pageType types.PageType) (*page.Page, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	frameID, err := bp.acquireFrame()
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	pageID, err := bp.diskManager.AllocatePage(fileID, pageType)
	if err != nil {
		bp.freeList = append(bp.freeList, frameID)
		return nil, fmt.Errorf("failed to allocate page: %w", err)
	}

	pg := bp.frames[frameID]
	pg.ID = pageID
	pg.FileID = fileID
	pg.PageType = pageType
	pg.IsDirty = true // new pages are dirty by default

	bp.pageTable.Insert(pageID, frameID)
	bp.pin(frameID)
	return pg, nil
}

// UnpinPage drops one pin. The page becomes evictable when no pins remain.
func (bp *BufferPool) UnpinPage(pageID int64, isDirty bool) error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	frameID, ok := bp.pageTable.Find(pageID)
	if !ok {
		return fmt.Errorf("page %d: %w", pageID, ErrPageNotResident)
	}
	pg := bp.frames[frameID]
	if pg.PinCount <= 0 {
		return fmt.Errorf("page %d: %w", pageID, ErrPageNotPinned)
	}

	pg.PinCount--
	if isDirty {
		pg.IsDirty = true
	}
	if pg.PinCount == 0 {
		bp.replacer.SetEvictable(frameID, true)
	}
	return nil
}

// FlushPage writes a resident page to disk if it is dirty.
func (bp *BufferPool) FlushPage(pageID int64) error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	frameID, ok := bp.pageTable.Find(pageID)
	if !ok {
		return fmt.Errorf("page %d: %w", pageID, ErrPageNotResident)
	}
	pg := bp.frames[frameID]
	if !pg.IsDirty {
		return nil
	}
	if err := bp.diskManager.WritePage(pg); err != nil {
		return fmt.Errorf("failed to flush page %d: %w", pageID, err)
	}
	return nil
}

// FlushAllPages writes every dirty resident page to disk.
func (bp *BufferPool) FlushAllPages() error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	var g errgroup.Group
	g.SetLimit(4)
	flushed := 0
	for _, pg := range bp.frames {
		if pg.ID == types.InvalidPageID || !pg.IsDirty {
			continue
		}
		pg := pg
		flushed++
		g.Go(func() error {
			if err := bp.diskManager.WritePage(pg); err != nil {
				return fmt.Errorf("failed to flush page %d: %w", pg.ID, err)
			}
			return nil
		})
	}
	err := g.Wait()
	bp.log.Debug("flushed all pages", "dirty", flushed)
	return err
}

// DeletePage drops an unpinned page from the pool and deallocates it on disk.
// Deleting a page that is not resident only deallocates it.
func (bp *BufferPool) DeletePage(pageID int64) error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if frameID, ok := bp.pageTable.Find(pageID); ok {
		pg := bp.frames[frameID]
		if pg.PinCount > 0 {
			return fmt.Errorf("cannot delete page %d: %w", pageID, ErrPagePinned)
		}
		bp.pageTable.Remove(pageID)
		bp.replacer.Remove(frameID)
		pg.Reset()
		bp.freeList = append(bp.freeList, frameID)
	}

	if err := bp.diskManager.DeallocatePage(pageID); err != nil {
		return fmt.Errorf("failed to deallocate page %d: %w", pageID, err)
	}
	return nil
}

// pin adds a pin and shields the frame from eviction. Assumes bp.mu is held.
func (bp *BufferPool) pin(frameID types.FrameID) {
	bp.frames[frameID].PinCount++
	bp.replacer.RecordAccess(frameID)
	bp.replacer.SetEvictable(frameID, false)
}

// acquireFrame returns an empty frame, evicting a victim if the free list is
// exhausted. Assumes bp.mu is held.
func (bp *BufferPool) acquireFrame() (types.FrameID, error) {
	if n := len(bp.freeList); n > 0 {
		frameID := bp.freeList[n-1]
		bp.freeList = bp.freeList[:n-1]
		return frameID, nil
	}

	frameID, ok := bp.replacer.Evict()
	if !ok {
		return types.InvalidFrameID, ErrNoFreeFrame
	}

	victim := bp.frames[frameID]
	bp.log.Debug("evict", "page_id", victim.ID, "frame_id", frameID, "dirty", victim.IsDirty)
	if victim.IsDirty {
		if err := bp.diskManager.WritePage(victim); err != nil {
			logging.WithPage(victim.ID).Warn("eviction write failed", "frame_id", frameID, "err", err)
			// the victim stays resident and evictable
			bp.replacer.RecordAccess(frameID)
			bp.replacer.SetEvictable(frameID, true)
			return types.InvalidFrameID, fmt.Errorf("failed to write page %d during eviction: %w", victim.ID, err)
		}
	}
	bp.pageTable.Remove(victim.ID)
	victim.Reset()
	return frameID, nil
}

// EvictFile writes back and drops every resident page of fileID, so the file
// can be closed. It fails without dropping anything if one of them is pinned.
func (bp *BufferPool) EvictFile(fileID uint32) error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	var victims []types.FrameID
	for i, pg := range bp.frames {
		if pg.ID == types.InvalidPageID || pg.FileID != fileID {
			continue
		}
		if pg.PinCount > 0 {
			return fmt.Errorf("cannot evict file %d: page %d: %w", fileID, pg.ID, ErrPagePinned)
		}
		victims = append(victims, types.FrameID(i))
	}

	for _, frameID := range victims {
		pg := bp.frames[frameID]
		if pg.IsDirty {
			if err := bp.diskManager.WritePage(pg); err != nil {
				return fmt.Errorf("failed to flush page %d: %w", pg.ID, err)
			}
		}
		bp.pageTable.Remove(pg.ID)
		bp.replacer.Remove(frameID)
		pg.Reset()
		bp.freeList = append(bp.freeList, frameID)
	}
	bp.log.Debug("evicted file", "file_id", fileID, "pages", len(victims))
	return nil
}
