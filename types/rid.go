package types

import "fmt"

// RID locates a record: the page holding it and the slot within that page.
// Leaf pages store RIDs opaquely.
type RID struct {
	PageID int64
	Slot   uint32
}

// RIDSize is the on-page width of an encoded RID.
const RIDSize = 12

func (r RID) String() string {
	return fmt.Sprintf("(%d,%d)", r.PageID, r.Slot)
}
