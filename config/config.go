package config

import (
	"fmt"
	"strings"
)

// Replacement policies understood by the buffer pool.
const (
	PolicyLRUK = "lru-k"
	PolicyLRU  = "lru"
)

// Config holds the tunables of the storage substrate.
type Config struct {
	PoolSize            int    // number of frames in the buffer pool
	ReplacerPolicy      string // "lru-k" or "lru"
	ReplacerK           int    // history depth for lru-k
	PageTableBucketSize int    // bucket capacity of the page table directory
	BlockCacheBytes     int64  // disk manager block cache budget, 0 disables it
	LogLevel            string // DEBUG, INFO, WARN, ERROR
	LogFormat           string // "text" or "json"
	LogPath             string // empty for stderr
}

// Default returns the configuration used by the CLIs when no flag overrides it.
func Default() Config {
	return Config{
		PoolSize:            64,
		ReplacerPolicy:      PolicyLRUK,
		ReplacerK:           2,
		PageTableBucketSize: 8,
		BlockCacheBytes:     4 << 20,
		LogLevel:            "INFO",
		LogFormat:           "text",
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.PoolSize <= 0 {
		return fmt.Errorf("config: pool size must be positive, got %d", c.PoolSize)
	}
	switch c.ReplacerPolicy {
	case PolicyLRUK:
		if c.ReplacerK <= 0 {
			return fmt.Errorf("config: replacer k must be positive, got %d", c.ReplacerK)
		}
	case PolicyLRU:
	default:
		return fmt.Errorf("config: unknown replacer policy %q", c.ReplacerPolicy)
	}
	if c.PageTableBucketSize <= 0 {
		return fmt.Errorf("config: page table bucket size must be positive, got %d", c.PageTableBucketSize)
	}
	if c.BlockCacheBytes < 0 {
		return fmt.Errorf("config: block cache size cannot be negative")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("config: unknown log level %q", c.LogLevel)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("config: unknown log format %q", c.LogFormat)
	}
	return nil
}
