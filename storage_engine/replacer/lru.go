package replacer

import (
	"StrataDB/types"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
)

// NewLRUReplacer creates an LRU replacer tracking at most numFrames frames.
func NewLRUReplacer(numFrames int) (*LRUReplacer, error) {
	order, err := lru.New(numFrames)
	if err != nil {
		return nil, fmt.Errorf("lru replacer: %w", err)
	}
	return &LRUReplacer{
		tracked:   make(map[types.FrameID]bool, numFrames),
		order:     order,
		numFrames: numFrames,
	}, nil
}

// RecordAccess refreshes an evictable frame's recency and starts tracking a
// new frame. New frames are ignored once numFrames frames are tracked.
func (r *LRUReplacer) RecordAccess(frameID types.FrameID) {
	if frameID < 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	evictable, exists := r.tracked[frameID]
	if !exists {
		if len(r.tracked) >= r.numFrames {
			return
		}
		r.tracked[frameID] = false
		return
	}
	if evictable {
		r.order.Get(frameID)
	}
}

// Evict removes the least recently used evictable frame.
func (r *LRUReplacer) Evict() (types.FrameID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key, _, ok := r.order.RemoveOldest()
	if !ok {
		return types.InvalidFrameID, false
	}
	frameID := key.(types.FrameID)
	delete(r.tracked, frameID)
	return frameID, true
}

// SetEvictable moves the frame in or out of the eviction order. A frame that
// becomes evictable counts as most recently used.
func (r *LRUReplacer) SetEvictable(frameID types.FrameID, evictable bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	was, exists := r.tracked[frameID]
	if !exists || was == evictable {
		return
	}
	r.tracked[frameID] = evictable
	if evictable {
		r.order.Add(frameID, struct{}{})
	} else {
		r.order.Remove(frameID)
	}
}

// Remove drops an evictable frame. Unknown and pinned frames are ignored.
func (r *LRUReplacer) Remove(frameID types.FrameID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if evictable, exists := r.tracked[frameID]; !exists || !evictable {
		return
	}
	r.order.Remove(frameID)
	delete(r.tracked, frameID)
}

// Size returns the number of evictable frames.
func (r *LRUReplacer) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.order.Len()
}
