package storageengine

import (
	"StrataDB/config"
	indexfile "StrataDB/storage_engine/access/indexfile_manager"
	"StrataDB/storage_engine/bufferpool"
	diskmanager "StrataDB/storage_engine/disk_manager"
	"StrataDB/storage_engine/logging"
	"errors"
	"fmt"
	"os"
)

/*
The main file of storage engine, that initializes the disk manager, the
buffer pool on top of it and the index file manager on top of both
Index files live directly under dbRoot as <name>.idx
*/

func NewStorageEngine(dbRoot string, cfg config.Config) (*StorageEngine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dbRoot, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db root: %w", err)
	}

	diskManager, err := diskmanager.NewDiskManager(cfg.BlockCacheBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to init disk manager: %w", err)
	}

	bufferPool, err := bufferpool.NewBufferPoolFromConfig(cfg, diskManager)
	if err != nil {
		_ = diskManager.CloseAll()
		return nil, fmt.Errorf("failed to init buffer pool: %w", err)
	}

	indexManager, err := indexfile.NewIndexFileManager(dbRoot, diskManager, bufferPool)
	if err != nil {
		_ = diskManager.CloseAll()
		return nil, fmt.Errorf("failed to init index file manager: %w", err)
	}

	se := &StorageEngine{
		BufferPool:   bufferPool,
		DiskManager:  diskManager,
		IndexManager: indexManager,
		DbRoot:       dbRoot,
		Config:       cfg,
		log:          logging.WithComponent("storage"),
	}
	se.log.Debug("storage engine ready",
		"root", dbRoot,
		"pool_size", cfg.PoolSize,
		"policy", cfg.ReplacerPolicy,
		"block_cache", cfg.BlockCacheBytes)
	return se, nil
}

// Close writes back every index file and releases all file handles.
func (se *StorageEngine) Close() error {
	var errs []error
	if err := se.IndexManager.CloseAll(); err != nil {
		errs = append(errs, err)
	}
	if err := se.BufferPool.FlushAllPages(); err != nil {
		errs = append(errs, err)
	}
	if err := se.DiskManager.CloseAll(); err != nil {
		errs = append(errs, err)
	}
	se.log.Debug("storage engine closed", "stats", se.BufferPool.GetStats().String())
	return errors.Join(errs...)
}
