package indexfile

import (
	"StrataDB/storage_engine/bufferpool"
	diskmanager "StrataDB/storage_engine/disk_manager"
	"StrataDB/storage_engine/logging"
	"StrataDB/types"
	"fmt"
	"os"
	"path/filepath"
)

/*
This file is the main file for Index File Manager that deals with the Index pages
It shares the disk manager and buffer pool with the rest of the engine

Every index file starts with a header page naming the B+ trees it holds and
their root pages; the tree pages themselves follow in any order
*/

func NewIndexFileManager(baseDir string, diskManager *diskmanager.DiskManager, bufferPool *bufferpool.BufferPool) (*IndexFileManager, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create indexes directory: %w", err)
	}

	return &IndexFileManager{
		baseDir:     baseDir,
		files:       make(map[string]*IndexFile),
		bufferPool:  bufferPool,
		diskManager: diskManager,
		log:         logging.WithComponent("indexfile"),
	}, nil
}

// OpenIndexFile returns the index file baseDir/name.idx, creating it with an
// empty header page if it does not exist. Open files are cached by name.
func (ifm *IndexFileManager) OpenIndexFile(name string) (*IndexFile, error) {
	ifm.mu.RLock()
	f, exists := ifm.files[name]
	ifm.mu.RUnlock()

	if exists {
		return f, nil
	}

	ifm.mu.Lock()
	defer ifm.mu.Unlock()

	// Double-check after acquiring write lock.
	if f, exists := ifm.files[name]; exists {
		return f, nil
	}

	path := filepath.Join(ifm.baseDir, name+".idx")
	fileID, err := ifm.diskManager.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open index file '%s': %w", name, err)
	}

	f = &IndexFile{
		Name:         name,
		Path:         path,
		FileID:       fileID,
		HeaderPageID: diskmanager.GlobalPageID(fileID, 0),
		bufferPool:   ifm.bufferPool,
		log:          logging.WithIndex(name),
	}

	if !ifm.diskManager.IsAllocated(f.HeaderPageID) {
		if err := ifm.createHeaderPage(f); err != nil {
			_ = ifm.diskManager.CloseFile(fileID)
			return nil, err
		}
		ifm.log.Info("index file created", "name", name, "path", path)
	}

	if _, err := f.Records(); err != nil {
		_ = ifm.bufferPool.EvictFile(fileID)
		_ = ifm.diskManager.CloseFile(fileID)
		return nil, fmt.Errorf("failed to read header of index file '%s': %w", name, err)
	}

	ifm.files[name] = f
	return f, nil
}

func (ifm *IndexFileManager) createHeaderPage(f *IndexFile) error {
	pg, err := ifm.bufferPool.NewPage(f.FileID, types.PageTypeMetadata)
	if err != nil {
		return fmt.Errorf("failed to allocate header page: %w", err)
	}
	if pg.ID != f.HeaderPageID {
		_ = ifm.bufferPool.UnpinPage(pg.ID, false)
		return fmt.Errorf("header page of %s allocated at %d, want %d", f.Name, pg.ID, f.HeaderPageID)
	}
	if err := encodeHeader(pg, nil); err != nil {
		_ = ifm.bufferPool.UnpinPage(pg.ID, true)
		return err
	}
	if err := ifm.bufferPool.UnpinPage(pg.ID, true); err != nil {
		return err
	}
	return ifm.bufferPool.FlushPage(pg.ID)
}

// CloseIndexFile writes back and drops the file's pages, then closes it.
func (ifm *IndexFileManager) CloseIndexFile(name string) error {
	ifm.mu.Lock()
	defer ifm.mu.Unlock()

	f, exists := ifm.files[name]
	if !exists {
		return nil // not open, nothing to do
	}
	if err := ifm.closeLocked(f); err != nil {
		return fmt.Errorf("failed to close index file '%s': %w", name, err)
	}
	delete(ifm.files, name)
	return nil
}

// CloseAll closes every open index file.
func (ifm *IndexFileManager) CloseAll() error {
	ifm.mu.Lock()
	defer ifm.mu.Unlock()

	var lastErr error
	for name, f := range ifm.files {
		if err := ifm.closeLocked(f); err != nil {
			lastErr = fmt.Errorf("failed to close index file '%s': %w", name, err)
			continue
		}
		delete(ifm.files, name)
	}
	return lastErr
}

func (ifm *IndexFileManager) closeLocked(f *IndexFile) error {
	if err := ifm.bufferPool.EvictFile(f.FileID); err != nil {
		return err
	}
	return ifm.diskManager.CloseFile(f.FileID)
}

// OpenFiles lists the names of the open index files.
func (ifm *IndexFileManager) OpenFiles() []string {
	ifm.mu.RLock()
	defer ifm.mu.RUnlock()

	names := make([]string, 0, len(ifm.files))
	for name := range ifm.files {
		names = append(names, name)
	}
	return names
}
