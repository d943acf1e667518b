package bplus

import (
	"StrataDB/storage_engine/page"
	"errors"
	"fmt"
)

var ErrPageUnavailable = errors.New("page unavailable")

// WithPinnedPage pins pageID for the duration of fn and unpins it on every
// exit path, exactly once. The unpin carries dirty regardless of fn's result.
func WithPinnedPage(pinner PagePinner, pageID int64, dirty bool, fn func(*page.Page) error) (err error) {
	pg, err := pinner.FetchPage(pageID)
	if err != nil {
		return fmt.Errorf("fetch page %d: %w", pageID, err)
	}
	if pg == nil {
		return fmt.Errorf("fetch page %d: %w", pageID, ErrPageUnavailable)
	}
	defer func() {
		if uerr := pinner.UnpinPage(pageID, dirty); uerr != nil && err == nil {
			err = fmt.Errorf("unpin page %d: %w", pageID, uerr)
		}
	}()
	return fn(pg)
}

// adoptChild points childID's parent link at parentID.
func adoptChild(pinner PagePinner, childID, parentID int64) error {
	return WithPinnedPage(pinner, childID, true, func(pg *page.Page) error {
		NewTreePage(pg.Data).SetParentPageID(parentID)
		return nil
	})
}
