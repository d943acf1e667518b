// Seed program: bulk loads N integer keys into a tree of an index file, then
// checks every key can be found again.
// Run: go run ./cmd/seed_idx -n 100000 databases/demo/accounts.idx
// Then inspect: go run ./cmd/inspect_idx -summary databases/demo/accounts.idx
package main

import (
	"StrataDB/config"
	storageengine "StrataDB/storage_engine"
	indexfile "StrataDB/storage_engine/access/indexfile_manager"
	bplus "StrataDB/storage_engine/access/indexfile_manager/bplustree"
	"StrataDB/storage_engine/logging"
	"StrataDB/types"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"
)

type seedOptions struct {
	n           int64
	tree        string
	keyWidth    int
	leafMax     int
	internalMax int
}

func main() {
	cfg := config.Default()
	cfg.BindFlags(flag.CommandLine)

	var opts seedOptions
	flag.Int64Var(&opts.n, "n", 10000, "number of keys")
	flag.StringVar(&opts.tree, "tree", "pk", "tree name inside the file")
	flag.IntVar(&opts.keyWidth, "key-width", 8, "key width in bytes: 4, 8, 16, 32 or 64")
	flag.IntVar(&opts.leafMax, "leaf-max", 0, "leaf max size, 0 for as many as fit")
	flag.IntVar(&opts.internalMax, "internal-max", 0, "internal max size, 0 for as many as fit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <index.idx>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}
	if err := run(cfg, flag.Arg(0), opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, path string, opts seedOptions) error {
	if err := logging.Init(cfg.Logging()); err != nil {
		return err
	}
	defer logging.Close()

	if opts.keyWidth == 4 && opts.n > 1<<31 {
		return fmt.Errorf("%d keys do not fit in 4 byte keys", opts.n)
	}

	se, err := storageengine.NewStorageEngine(filepath.Dir(path), cfg)
	if err != nil {
		return err
	}
	defer se.Close()

	f, err := se.IndexManager.OpenIndexFile(strings.TrimSuffix(filepath.Base(path), ".idx"))
	if err != nil {
		return err
	}
	if _, err := f.CreateIndex(opts.tree, opts.keyWidth, opts.leafMax, opts.internalMax); err != nil {
		return err
	}

	entries := make([]indexfile.Entry, opts.n)
	for k := range entries {
		entries[k] = indexfile.Entry{
			Key: bplus.EncodeIntegerKey(int64(k), opts.keyWidth),
			RID: ridFor(int64(k)),
		}
	}

	start := time.Now()
	if err := f.BulkLoad(opts.tree, entries); err != nil {
		return err
	}
	fmt.Printf("loaded %s keys into %s/%s in %s\n", humanize.Comma(opts.n), path, opts.tree, time.Since(start).Round(time.Millisecond))

	start = time.Now()
	if err := verify(f, opts.tree, entries); err != nil {
		return err
	}
	fmt.Printf("verified %s keys in %s\n", humanize.Comma(opts.n), time.Since(start).Round(time.Millisecond))
	fmt.Printf("buffer pool: %s\n", se.BufferPool.GetStats())
	return nil
}

func ridFor(k int64) types.RID {
	return types.RID{PageID: k / 100, Slot: uint32(k % 100)}
}

// verify looks every key up again, spread over a few workers.
func verify(f *indexfile.IndexFile, tree string, entries []indexfile.Entry) error {
	workers := runtime.NumCPU()
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			for i := w; i < len(entries); i += workers {
				rid, ok, err := f.Search(tree, entries[i].Key)
				if err != nil {
					return err
				}
				if !ok || rid != entries[i].RID {
					return fmt.Errorf("key %d: got %v (found %t), want %v", i, rid, ok, entries[i].RID)
				}
			}
			return nil
		})
	}
	return g.Wait()
}
