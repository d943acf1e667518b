package indexfile

import (
	"StrataDB/storage_engine/page"
	"StrataDB/types"
	"encoding/binary"
	"errors"
	"fmt"
	"slices"

	"github.com/vmihailenco/msgpack/v5"
)

/*
Header page layout:

	0-7    page id
	8      page type stamp
	12-15  payload length
	16-    msgpack encoded []HeaderRecord, sorted by name
*/

const (
	headerLengthOffset  = 12
	headerPayloadOffset = 16
	maxHeaderPayload    = types.PageSize - headerPayloadOffset
)

var (
	ErrHeaderFull    = errors.New("header page full")
	ErrIndexExists   = errors.New("index already exists")
	ErrIndexNotFound = errors.New("index not found")
	ErrNotHeaderPage = errors.New("not an index header page")
)

func decodeHeader(pg *page.Page) ([]HeaderRecord, error) {
	if pg.PageType != types.PageTypeMetadata {
		return nil, fmt.Errorf("page %d: %w", pg.ID, ErrNotHeaderPage)
	}
	n := int(binary.LittleEndian.Uint32(pg.Data[headerLengthOffset:]))
	if n == 0 {
		return nil, nil
	}
	if n > maxHeaderPayload {
		return nil, fmt.Errorf("page %d: header payload of %d bytes is corrupt", pg.ID, n)
	}

	var records []HeaderRecord
	if err := msgpack.Unmarshal(pg.Data[headerPayloadOffset:headerPayloadOffset+n], &records); err != nil {
		return nil, fmt.Errorf("failed to decode header page %d: %w", pg.ID, err)
	}
	return records, nil
}

func encodeHeader(pg *page.Page, records []HeaderRecord) error {
	slices.SortFunc(records, func(a, b HeaderRecord) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})

	payload, err := msgpack.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode header page %d: %w", pg.ID, err)
	}
	if len(payload) > maxHeaderPayload {
		return fmt.Errorf("page %d: %d records: %w", pg.ID, len(records), ErrHeaderFull)
	}

	binary.LittleEndian.PutUint64(pg.Data[0:], uint64(pg.ID))
	binary.LittleEndian.PutUint32(pg.Data[headerLengthOffset:], uint32(len(payload)))
	copy(pg.Data[headerPayloadOffset:], payload)
	clear(pg.Data[headerPayloadOffset+len(payload):])
	pg.PageType = types.PageTypeMetadata
	return nil
}

// withHeader runs fn on the decoded records. When fn reports a change the
// records are written back and the header page is unpinned dirty.
func (f *IndexFile) withHeader(fn func(records []HeaderRecord) ([]HeaderRecord, bool, error)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	pg, err := f.bufferPool.FetchPage(f.HeaderPageID)
	if err != nil {
		return fmt.Errorf("failed to fetch header page of %s: %w", f.Name, err)
	}
	dirty := false
	defer func() { _ = f.bufferPool.UnpinPage(pg.ID, dirty) }()

	pg.Lock()
	defer pg.Unlock()

	records, err := decodeHeader(pg)
	if err != nil {
		return err
	}
	records, changed, err := fn(records)
	if err != nil || !changed {
		return err
	}
	if err := encodeHeader(pg, records); err != nil {
		return err
	}
	dirty = true
	return nil
}

// InsertRecord adds a tree to the header.
func (f *IndexFile) InsertRecord(rec HeaderRecord) error {
	return f.withHeader(func(records []HeaderRecord) ([]HeaderRecord, bool, error) {
		if slices.ContainsFunc(records, func(r HeaderRecord) bool { return r.Name == rec.Name }) {
			return nil, false, fmt.Errorf("%s in %s: %w", rec.Name, f.Name, ErrIndexExists)
		}
		return append(records, rec), true, nil
	})
}

// UpdateRoot records a tree's new root page.
func (f *IndexFile) UpdateRoot(name string, rootPageID int64) error {
	return f.withHeader(func(records []HeaderRecord) ([]HeaderRecord, bool, error) {
		i := slices.IndexFunc(records, func(r HeaderRecord) bool { return r.Name == name })
		if i < 0 {
			return nil, false, fmt.Errorf("%s in %s: %w", name, f.Name, ErrIndexNotFound)
		}
		records[i].RootPageID = rootPageID
		return records, true, nil
	})
}

// GetRecord looks a tree up by name.
func (f *IndexFile) GetRecord(name string) (HeaderRecord, error) {
	var found HeaderRecord
	err := f.withHeader(func(records []HeaderRecord) ([]HeaderRecord, bool, error) {
		i := slices.IndexFunc(records, func(r HeaderRecord) bool { return r.Name == name })
		if i < 0 {
			return nil, false, fmt.Errorf("%s in %s: %w", name, f.Name, ErrIndexNotFound)
		}
		found = records[i]
		return records, false, nil
	})
	return found, err
}

// DeleteRecord removes a tree from the header. Its pages are not reclaimed.
func (f *IndexFile) DeleteRecord(name string) error {
	return f.withHeader(func(records []HeaderRecord) ([]HeaderRecord, bool, error) {
		i := slices.IndexFunc(records, func(r HeaderRecord) bool { return r.Name == name })
		if i < 0 {
			return nil, false, fmt.Errorf("%s in %s: %w", name, f.Name, ErrIndexNotFound)
		}
		return slices.Delete(records, i, i+1), true, nil
	})
}

// Records lists every tree in the file, sorted by name.
func (f *IndexFile) Records() ([]HeaderRecord, error) {
	var out []HeaderRecord
	err := f.withHeader(func(records []HeaderRecord) ([]HeaderRecord, bool, error) {
		out = slices.Clone(records)
		return records, false, nil
	})
	return out, err
}
