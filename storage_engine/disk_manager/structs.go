package diskmanager

import (
	"log/slog"
	"os"
	"sync"

	"github.com/dgraph-io/ristretto/v2"
)

// ############################################# FILE DESCRIPTOR ###########################################

type PageKey struct {
	FileID   uint32
	LocalNum int64
}

// FileDescriptor represents an open file managed by the disk manager
type FileDescriptor struct {
	FileID     uint32
	FilePath   string
	File       *os.File
	NextPageID int64   // Next never-used page number within this file
	FreePages  []int64 // deallocated local page numbers, reused before growing the file
	mu         sync.RWMutex
}

// ############################################# DISK MANAGER #############################################

// DiskManager manages all disk I/O operations and file handles
type DiskManager struct {
	files      map[uint32]*FileDescriptor // fileID -> file descriptor
	nextFileID uint32
	// globalPageID -> fileID for every allocated page
	globalPageMap map[int64]uint32
	localToGlobal map[PageKey]int64 // (fileID, localNum) -> globalPageID

	// blockCache holds raw page images keyed by global page id; nil when disabled.
	blockCache *ristretto.Cache[int64, []byte]
	log        *slog.Logger
	mu         sync.RWMutex
}
