// Package logging provides the process-wide structured logger of the storage
// substrate.
//
// The logger wraps [log/slog]. Call Init once at startup (the CLIs do this
// from their flags); packages that log before that get a lazily created
// stderr logger at INFO level. Components obtain child loggers through
// WithComponent so every record carries its origin:
//
//	log := logging.WithComponent("bufferpool")
//	log.Debug("page hit", "page_id", pageID)
//
// The replacer, the hash directory and the tree node operations do not log.
package logging
