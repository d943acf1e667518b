package replacer

import (
	"StrataDB/types"
	"sync"

	lru "github.com/hashicorp/golang-lru"
)

// Replacer decides which buffer pool frame is reclaimed under memory pressure.
// Every call is serialized by the implementation's own latch.
type Replacer interface {
	// RecordAccess notes that the frame was touched now.
	RecordAccess(frameID types.FrameID)
	// Evict removes and returns the victim, or (InvalidFrameID, false).
	Evict() (types.FrameID, bool)
	// SetEvictable marks whether the frame may be chosen as a victim.
	SetEvictable(frameID types.FrameID, evictable bool)
	// Remove drops an evictable frame's history.
	Remove(frameID types.FrameID)
	// Size is the number of evictable frames.
	Size() int
}

// ############################################# LRU-K #############################################

// LRUKReplacer evicts the evictable frame with the largest backward k-distance.
// Frames with fewer than k recorded accesses have infinite distance and lose
// ties to each other by their oldest retained access.
type LRUKReplacer struct {
	frames           map[types.FrameID]*frameRecord
	numFrames        int    // tracked-frame capacity
	k                int    // history depth
	currentTimestamp uint64 // logical clock, one tick per recorded access
	evictable        int    // frames with evictable set
	mu               sync.Mutex
}

type frameRecord struct {
	history   []uint64 // oldest first, at most k entries
	evictable bool
}

// ############################################# LRU #############################################

// LRUReplacer is the classic least-recently-unpinned policy.
type LRUReplacer struct {
	tracked   map[types.FrameID]bool // frameID -> evictable
	order     *lru.Cache             // evictable frames, oldest at the back
	numFrames int
	mu        sync.Mutex
}
