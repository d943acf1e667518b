package replacer

import "StrataDB/types"

/*
LRU-K replacement.

Each tracked frame keeps the timestamps of its last k accesses. The victim is
chosen among evictable frames:
  - a frame with fewer than k accesses (infinite k-distance) beats one with k,
  - inside either class the frame whose oldest retained timestamp is smallest wins.

Timestamps come from a counter owned by the replacer, so two replacers never
share a clock. Eviction scans every tracked frame.
*/

// NewLRUKReplacer creates a replacer tracking at most numFrames frames with
// history depth k.
func NewLRUKReplacer(numFrames, k int) *LRUKReplacer {
	if k < 1 {
		k = 1
	}
	return &LRUKReplacer{
		frames:    make(map[types.FrameID]*frameRecord, numFrames),
		numFrames: numFrames,
		k:         k,
	}
}

// RecordAccess appends the current timestamp to the frame's history. A new
// frame is ignored when the replacer already tracks numFrames frames.
func (r *LRUKReplacer) RecordAccess(frameID types.FrameID) {
	if frameID < 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, exists := r.frames[frameID]
	if !exists {
		if len(r.frames) >= r.numFrames {
			return
		}
		rec = &frameRecord{history: make([]uint64, 0, r.k)}
		r.frames[frameID] = rec
	}

	if len(rec.history) == r.k {
		copy(rec.history, rec.history[1:])
		rec.history = rec.history[:r.k-1]
	}
	rec.history = append(rec.history, r.currentTimestamp)
	r.currentTimestamp++
}

// Evict removes the frame with the largest backward k-distance.
func (r *LRUKReplacer) Evict() (types.FrameID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	victim := types.InvalidFrameID
	var best *frameRecord
	for id, rec := range r.frames {
		if !rec.evictable {
			continue
		}
		if best == nil || r.beats(rec, best) {
			victim, best = id, rec
		}
	}
	if best == nil {
		return types.InvalidFrameID, false
	}

	delete(r.frames, victim)
	r.evictable--
	return victim, true
}

// beats reports whether a should be evicted before b.
func (r *LRUKReplacer) beats(a, b *frameRecord) bool {
	aInf, bInf := len(a.history) < r.k, len(b.history) < r.k
	if aInf != bInf {
		return aInf
	}
	return a.history[0] < b.history[0]
}

// SetEvictable toggles the frame's evictable flag. Unknown frames are ignored.
func (r *LRUKReplacer) SetEvictable(frameID types.FrameID, evictable bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, exists := r.frames[frameID]
	if !exists {
		return
	}
	if !rec.evictable && evictable {
		r.evictable++
	} else if rec.evictable && !evictable {
		r.evictable--
	}
	rec.evictable = evictable
}

// Remove drops the frame's history if it is evictable. Unknown and pinned
// frames are left alone and the caller cannot tell the two apart.
func (r *LRUKReplacer) Remove(frameID types.FrameID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, exists := r.frames[frameID]
	if !exists || !rec.evictable {
		return
	}
	delete(r.frames, frameID)
	r.evictable--
}

// Size returns the number of evictable frames.
func (r *LRUKReplacer) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.evictable
}

// K returns the history depth.
func (r *LRUKReplacer) K() int {
	return r.k
}

// Tracked returns the number of frames with recorded history, evictable or not.
func (r *LRUKReplacer) Tracked() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}
