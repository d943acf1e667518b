package types

const (
	PageSize = 4096 // 4KB page
)

type PageType uint8

const (
	PageTypeUnknown PageType = iota
	PageTypeHeapData
	PageTypeBPlusNode
	PageTypeMetadata
)

// InvalidPageID marks an absent page reference (no parent, no next leaf).
const InvalidPageID int64 = -1

// FrameID identifies an in-memory slot of the buffer pool.
type FrameID int32

// InvalidFrameID is returned by eviction when there is no victim.
const InvalidFrameID FrameID = -1
