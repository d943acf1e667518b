package diskmanager

// The block cache is best effort: a dropped Set only costs a disk read.

func (dm *DiskManager) cacheGet(globalPageID int64) ([]byte, bool) {
	if dm.blockCache == nil {
		return nil, false
	}
	return dm.blockCache.Get(globalPageID)
}

func (dm *DiskManager) cacheSet(globalPageID int64, data []byte) {
	if dm.blockCache == nil {
		return
	}
	image := make([]byte, len(data))
	copy(image, data)
	dm.blockCache.Set(globalPageID, image, int64(len(image)))
}

func (dm *DiskManager) cacheDel(globalPageID int64) {
	if dm.blockCache == nil {
		return
	}
	dm.blockCache.Del(globalPageID)
}

// WaitCache blocks until pending cache writes are applied. Tests use it to
// make cache hits deterministic.
func (dm *DiskManager) WaitCache() {
	if dm.blockCache != nil {
		dm.blockCache.Wait()
	}
}
