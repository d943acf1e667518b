package replacer

import "fmt"

// Policy names accepted by New.
const (
	PolicyLRUK = "lru-k"
	PolicyLRU  = "lru"
)

// New builds the replacer named by policy for a pool of numFrames frames.
func New(policy string, numFrames, k int) (Replacer, error) {
	if numFrames <= 0 {
		return nil, fmt.Errorf("replacer: frame count must be positive, got %d", numFrames)
	}
	switch policy {
	case PolicyLRUK, "":
		return NewLRUKReplacer(numFrames, k), nil
	case PolicyLRU:
		return NewLRUReplacer(numFrames)
	default:
		return nil, fmt.Errorf("replacer: unknown policy %q", policy)
	}
}
