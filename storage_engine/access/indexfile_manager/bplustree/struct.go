// Structure of B+ Tree pages
/*
Tree
 ├── Internal page (separator keys + child page ids)
 │      └── Child internal pages ...
 │             └── Leaf pages (keys + record ids + next page id)

- pages are views over a buffer pool frame's bytes; every mutation is in place
- internal page: size slots of (key, child); slot 0's key is a sentinel,
  keys [1, size) ascend strictly, children [0, size) are valid
- leaf page: size slots of (key, rid), keys ascend strictly
- leaves are chained left to right through next page id for range scans
- a page holds one more slot than its max size so the tree driver can insert
  into a full page before splitting it

Layout (little endian):

	Header (40 bytes):
	  pageID       int64  (0-7)
	  page type    uint8  (8)      stamped by the disk manager on write
	  kind         uint8  (9)      1=leaf, 2=internal
	  keyWidth     uint16 (10-11)
	  size         int32  (12-15)
	  maxSize      int32  (16-19)
	  parent       int64  (20-27)  -1 if root
	  next         int64  (28-35)  leaf only, -1 if last
	  reserved            (36-39)

	Slots from byte 40:
	  internal: [ key keyWidth | child int64 ]
	  leaf:     [ key keyWidth | rid.pageID int64 | rid.slot uint32 ]

Nodes never lock, log, or check their own size bounds: the tree driver holds
the page latches and decides when to split, merge or borrow.
*/
package bplus

import (
	"StrataDB/storage_engine/page"
)

// IndexPageKind tells leaf pages from internal pages.
type IndexPageKind uint8

const (
	InvalidIndexPage IndexPageKind = iota
	LeafIndexPage
	InternalIndexPage
)

const (
	offsetPageID   = 0
	offsetKind     = 9
	offsetKeyWidth = 10
	offsetSize     = 12
	offsetMaxSize  = 16
	offsetParent   = 20
	offsetNext     = 28

	HeaderSize = 40

	childIDSize = 8
)

// Comparator orders two keys of the same width: negative, zero or positive.
type Comparator func(a, b []byte) int

// PagePinner is the slice of the buffer pool the node operations need to
// repoint children at their new parent.
type PagePinner interface {
	// FetchPage pins the page; it fails for unallocated or invalid ids.
	FetchPage(pageID int64) (*page.Page, error)
	// UnpinPage releases exactly one pin taken by FetchPage.
	UnpinPage(pageID int64, isDirty bool) error
}

// TreePage is the header shared by both page kinds.
type TreePage struct {
	data []byte
}

// InternalPage routes searches: size children separated by size-1 keys.
type InternalPage struct {
	TreePage
	keyWidth int
	cmp      Comparator
}

// LeafPage holds key/record id pairs and the link to the next leaf.
type LeafPage struct {
	TreePage
	keyWidth int
	cmp      Comparator
}
