package diskmanager

import (
	"StrataDB/storage_engine/logging"
	"StrataDB/storage_engine/page"
	"StrataDB/types"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dgraph-io/ristretto/v2"
)

/*
This is main file for disk manager
It owns:
File descriptors (os.File)
Reading/writing raw bytes at specific offsets (ReadAt, WriteAt)
Page allocation and deallocation (NextPageID and a free list per file)
The globalPageID <-> (fileID, localPage) mapping

Page ID encoding:
globalPageID = int64(fileID) << 32 | localPageNum
This makes global IDs deterministic, the same on every restart regardless of file load order.

Reads go through an optional block cache of raw page images. Writes and
deallocations invalidate the cached image before touching the file.
*/

var (
	ErrFileNotFound = errors.New("file not found")
	ErrPageNotFound = errors.New("page not allocated")
	ErrFileClosed   = errors.New("file is closed")
)

// NewDiskManager creates a disk manager. blockCacheBytes bounds the block
// cache; 0 disables it.
func NewDiskManager(blockCacheBytes int64) (*DiskManager, error) {
	dm := &DiskManager{
		files:         make(map[uint32]*FileDescriptor),
		globalPageMap: make(map[int64]uint32),
		localToGlobal: make(map[PageKey]int64),
		nextFileID:    1,
		log:           logging.WithComponent("diskmanager"),
	}

	if blockCacheBytes > 0 {
		numCounters := blockCacheBytes / types.PageSize * 10
		if numCounters < 100 {
			numCounters = 100
		}
		cache, err := ristretto.NewCache(&ristretto.Config[int64, []byte]{
			NumCounters: numCounters,
			MaxCost:     blockCacheBytes,
			BufferItems: 64,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create block cache: %w", err)
		}
		dm.blockCache = cache
	}

	return dm, nil
}

func NewPage(pageID int64, fileID uint32, pageType types.PageType) *page.Page {
	return &page.Page{
		ID:       pageID,
		FileID:   fileID,
		Data:     make([]byte, types.PageSize),
		IsDirty:  false,
		PinCount: 0,
		PageType: pageType,
	}
}

/*
Why two OpenFile variants:
OpenFileWithID: the caller owns the id (index files named in a catalog, stable across restarts)
OpenFile: the disk manager assigns the next id (session-scoped files, tests)
*/
func (dm *DiskManager) OpenFileWithID(filePath string, fileID uint32) (uint32, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	for id, fd := range dm.files {
		if fd.FilePath == filePath {
			return id, nil
		}
	}
	if _, taken := dm.files[fileID]; taken {
		return 0, fmt.Errorf("file id %d already in use", fileID)
	}

	if err := dm.openLocked(filePath, fileID); err != nil {
		return 0, err
	}
	if fileID >= dm.nextFileID {
		dm.nextFileID = fileID + 1
	}
	return fileID, nil
}

// OpenFile opens or creates a file and returns its file ID
func (dm *DiskManager) OpenFile(filePath string) (uint32, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	for id, fd := range dm.files {
		if fd.FilePath == filePath {
			return id, nil
		}
	}

	fileID := dm.nextFileID
	if err := dm.openLocked(filePath, fileID); err != nil {
		return 0, err
	}
	dm.nextFileID++
	return fileID, nil
}

// openLocked opens the file and registers every page already on disk.
// Assumes dm.mu is held.
func (dm *DiskManager) openLocked(filePath string, fileID uint32) error {
	file, err := os.OpenFile(filePath, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", filePath, err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to stat file: %w", err)
	}
	numPages := stat.Size() / int64(types.PageSize)

	dm.files[fileID] = &FileDescriptor{
		FileID:     fileID,
		FilePath:   filePath,
		File:       file,
		NextPageID: numPages,
	}
	for local := int64(0); local < numPages; local++ {
		dm.registerLocked(fileID, local)
	}

	dm.log.Debug("file opened", "path", filePath, "file_id", fileID, "pages", numPages)
	return nil
}

// ReadPage reads a page from the block cache or from disk
func (dm *DiskManager) ReadPage(globalPageID int64) (*page.Page, error) {
	dm.mu.RLock()
	fileID, exists := dm.globalPageMap[globalPageID]
	fd, fileOpen := dm.files[fileID]
	dm.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("page %d: %w", globalPageID, ErrPageNotFound)
	}
	if !fileOpen {
		return nil, fmt.Errorf("file %d: %w", fileID, ErrFileNotFound)
	}

	fd.mu.RLock()
	defer fd.mu.RUnlock()

	if fd.File == nil {
		return nil, fmt.Errorf("file %d: %w", fileID, ErrFileClosed)
	}

	pg := NewPage(globalPageID, fileID, types.PageTypeUnknown)

	if image, ok := dm.cacheGet(globalPageID); ok {
		copy(pg.Data, image)
	} else {
		localPageID := LocalPageID(globalPageID)
		offset := localPageID * int64(types.PageSize)

		// an allocated page that was never flushed reads as zeros
		n, err := fd.File.ReadAt(pg.Data, offset)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read page %d from file %d: %w", localPageID, fileID, err)
		}
		// Pad with zeros if partial read
		for i := n; i < types.PageSize; i++ {
			pg.Data[i] = 0
		}
		// the set happens under fd's read lock, so it is ordered before any
		// invalidation issued by a writer of this page
		dm.cacheSet(globalPageID, pg.Data)
	}

	pg.PageType = types.PageType(pg.Data[page.PageTypeOffset])
	return pg, nil
}

// WritePage writes a page to disk
func (dm *DiskManager) WritePage(pg *page.Page) error {
	dm.mu.RLock()
	fd, exists := dm.files[pg.FileID]
	dm.mu.RUnlock()

	if !exists {
		return fmt.Errorf("file %d: %w", pg.FileID, ErrFileNotFound)
	}

	fd.mu.Lock()
	defer fd.mu.Unlock()

	if fd.File == nil {
		return fmt.Errorf("file %d: %w", pg.FileID, ErrFileClosed)
	}
	if len(pg.Data) != types.PageSize {
		return fmt.Errorf("page data size %d does not match page size %d", len(pg.Data), types.PageSize)
	}

	pg.Data[page.PageTypeOffset] = byte(pg.PageType)

	localPageID := LocalPageID(pg.ID)
	offset := localPageID * int64(types.PageSize)

	dm.cacheDel(pg.ID)
	if _, err := fd.File.WriteAt(pg.Data, offset); err != nil {
		return fmt.Errorf("failed to write page %d to file %d: %w", localPageID, pg.FileID, err)
	}

	if localPageID >= fd.NextPageID {
		fd.NextPageID = localPageID + 1
	}

	pg.IsDirty = false
	return nil
}

// AllocatePage reserves a page ID for a file, reusing a deallocated page
// first. It does NOT write anything to disk; the buffer pool flushes the page
// when it is evicted or flushed.
func (dm *DiskManager) AllocatePage(fileID uint32, pageType types.PageType) (int64, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	fd, exists := dm.files[fileID]
	if !exists {
		return 0, fmt.Errorf("file %d: %w", fileID, ErrFileNotFound)
	}

	fd.mu.Lock()
	defer fd.mu.Unlock()

	if fd.File == nil {
		return 0, fmt.Errorf("file %d: %w", fileID, ErrFileClosed)
	}

	var localPageNum int64
	if n := len(fd.FreePages); n > 0 {
		localPageNum = fd.FreePages[n-1]
		fd.FreePages = fd.FreePages[:n-1]
	} else {
		localPageNum = fd.NextPageID
		fd.NextPageID++
	}

	globalPageID := dm.registerLocked(fileID, localPageNum)
	dm.log.Debug("page allocated", "page_id", globalPageID, "type", pageType)
	return globalPageID, nil
}

// DeallocatePage returns a page to its file's free list. Its contents on disk
// are left in place until the page is reused.
func (dm *DiskManager) DeallocatePage(globalPageID int64) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	fileID, exists := dm.globalPageMap[globalPageID]
	if !exists {
		return fmt.Errorf("page %d: %w", globalPageID, ErrPageNotFound)
	}
	fd, exists := dm.files[fileID]
	if !exists {
		return fmt.Errorf("file %d: %w", fileID, ErrFileNotFound)
	}

	fd.mu.Lock()
	defer fd.mu.Unlock()

	local := LocalPageID(globalPageID)
	delete(dm.globalPageMap, globalPageID)
	delete(dm.localToGlobal, PageKey{FileID: fileID, LocalNum: local})
	fd.FreePages = append(fd.FreePages, local)
	dm.cacheDel(globalPageID)

	dm.log.Debug("page deallocated", "page_id", globalPageID)
	return nil
}

// IsAllocated reports whether the page id is currently allocated.
func (dm *DiskManager) IsAllocated(globalPageID int64) bool {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	_, ok := dm.globalPageMap[globalPageID]
	return ok
}

// registerLocked records an allocated page. Assumes dm.mu is held.
func (dm *DiskManager) registerLocked(fileID uint32, localPageNum int64) int64 {
	globalPageID := GlobalPageID(fileID, localPageNum)
	dm.globalPageMap[globalPageID] = fileID
	dm.localToGlobal[PageKey{FileID: fileID, LocalNum: localPageNum}] = globalPageID
	return globalPageID
}

// GlobalPageID combines a file id and a page number within that file.
func GlobalPageID(fileID uint32, localPageNum int64) int64 {
	return int64(fileID)<<32 | localPageNum
}

// LocalPageID extracts the page number within its file.
func LocalPageID(globalPageID int64) int64 {
	return globalPageID & 0xFFFFFFFF
}

// FileIDOf extracts the file id of a global page id.
func FileIDOf(globalPageID int64) uint32 {
	return uint32(globalPageID >> 32)
}

// Sync flushes all file buffers to disk
func (dm *DiskManager) Sync() error {
	dm.mu.RLock()
	defer dm.mu.RUnlock()

	for _, fd := range dm.files {
		fd.mu.Lock()
		if fd.File != nil {
			if err := fd.File.Sync(); err != nil {
				fd.mu.Unlock()
				return fmt.Errorf("failed to sync file %d: %w", fd.FileID, err)
			}
		}
		fd.mu.Unlock()
	}

	return nil
}

// CloseFile syncs and closes a specific file
func (dm *DiskManager) CloseFile(fileID uint32) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	fd, exists := dm.files[fileID]
	if !exists {
		return fmt.Errorf("file %d: %w", fileID, ErrFileNotFound)
	}

	fd.mu.Lock()
	defer fd.mu.Unlock()

	if fd.File != nil {
		if err := fd.File.Sync(); err != nil {
			return fmt.Errorf("failed to sync before close: %w", err)
		}
		if err := fd.File.Close(); err != nil {
			return fmt.Errorf("failed to close file: %w", err)
		}
		fd.File = nil
	}

	dm.forgetLocked(fileID)
	return nil
}

// CloseAll closes all open files and releases the block cache
func (dm *DiskManager) CloseAll() error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	var lastErr error
	for fileID, fd := range dm.files {
		fd.mu.Lock()
		if fd.File != nil {
			if err := fd.File.Sync(); err != nil {
				lastErr = err
			}
			if err := fd.File.Close(); err != nil {
				lastErr = err
			}
			fd.File = nil
		}
		fd.mu.Unlock()
		dm.forgetLocked(fileID)
	}

	if dm.blockCache != nil {
		dm.blockCache.Close()
		dm.blockCache = nil
	}
	return lastErr
}

// forgetLocked drops the file and its page registrations. Assumes dm.mu is held.
func (dm *DiskManager) forgetLocked(fileID uint32) {
	for key, globalPageID := range dm.localToGlobal {
		if key.FileID == fileID {
			delete(dm.localToGlobal, key)
			delete(dm.globalPageMap, globalPageID)
			dm.cacheDel(globalPageID)
		}
	}
	delete(dm.files, fileID)
}

// GetFileDescriptor returns the file descriptor for a given file ID
func (dm *DiskManager) GetFileDescriptor(fileID uint32) (*FileDescriptor, error) {
	dm.mu.RLock()
	defer dm.mu.RUnlock()

	fd, exists := dm.files[fileID]
	if !exists {
		return nil, fmt.Errorf("file %d: %w", fileID, ErrFileNotFound)
	}

	return fd, nil
}

// TotalPages returns the total number of pages across all files
func (dm *DiskManager) TotalPages() int64 {
	dm.mu.RLock()
	defer dm.mu.RUnlock()

	total := int64(0)
	for _, fd := range dm.files {
		fd.mu.RLock()
		total += fd.NextPageID
		fd.mu.RUnlock()
	}
	return total
}
