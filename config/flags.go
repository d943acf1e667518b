package config

import (
	"StrataDB/storage_engine/logging"
	"flag"
)

// BindFlags registers the engine tunables on fs, defaulting to c's values.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.PoolSize, "pool", c.PoolSize, "buffer pool frames")
	fs.StringVar(&c.ReplacerPolicy, "policy", c.ReplacerPolicy, "replacement policy: lru-k or lru")
	fs.IntVar(&c.ReplacerK, "k", c.ReplacerK, "history depth of the lru-k replacer")
	fs.IntVar(&c.PageTableBucketSize, "bucket", c.PageTableBucketSize, "page table bucket capacity")
	fs.Int64Var(&c.BlockCacheBytes, "block-cache", c.BlockCacheBytes, "block cache budget in bytes, 0 disables it")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "DEBUG, INFO, WARN or ERROR")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "text or json")
	fs.StringVar(&c.LogPath, "log-file", c.LogPath, "log file, empty for stderr")
}

// Logging is the logger configuration carried by c.
func (c Config) Logging() logging.Config {
	return logging.Config{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		OutputPath: c.LogPath,
	}
}
