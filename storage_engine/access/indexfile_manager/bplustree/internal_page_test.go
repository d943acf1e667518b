package bplus

import (
	"StrataDB/types"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInternalInitRejectsBadArguments(t *testing.T) {
	p := NewInternalPage(make([]byte, types.PageSize), CompareKeys)

	assert.ErrorIs(t, p.Init(1, types.InvalidPageID, 4, 12), ErrInvalidKeyWidth)
	assert.ErrorIs(t, p.Init(1, types.InvalidPageID, 1, 8), ErrInvalidMaxSize)
	assert.ErrorIs(t, p.Init(1, types.InvalidPageID, MaxSlots(InternalIndexPage, 8), 8), ErrInvalidMaxSize)
	require.NoError(t, p.Init(1, types.InvalidPageID, MaxSlots(InternalIndexPage, 8)-1, 8))

	assert.Equal(t, int64(1), p.PageID())
	assert.Equal(t, InternalIndexPage, p.Kind())
	assert.False(t, p.IsLeaf())
	assert.True(t, p.IsRoot())
	assert.Equal(t, 0, p.Size())
	assert.Equal(t, 8, p.KeyWidth())
}

func TestInternalHeaderSurvivesNewView(t *testing.T) {
	p := newInternal(t, 7, 5)
	p.SetParentPageID(3)
	p.PopulateNewRoot(10, key(100), 11)

	view := NewInternalPage(p.data, CompareKeys)
	assert.Equal(t, int64(7), view.PageID())
	assert.Equal(t, int64(3), view.ParentPageID())
	assert.Equal(t, 2, view.Size())
	assert.Equal(t, 5, view.MaxSize())
	assert.Equal(t, 3, view.MinSize())
	assert.Equal(t, int64(11), view.LookUp(key(100)))
}

func TestInternalInsertNodeAfterThenLookUp(t *testing.T) {
	p := newInternal(t, 1, 8)
	p.PopulateNewRoot(10, key(100), 11)
	assert.Equal(t, 3, p.InsertNodeAfter(11, key(200), 12))
	assert.Equal(t, 4, p.InsertNodeAfter(10, key(50), 13))

	assert.Equal(t, []int64{10, 13, 11, 12}, p.Children())
	assert.Equal(t, []int64{50, 100, 200}, internalKeys(p))

	cases := map[int64]int64{
		-5:  10,
		49:  10,
		50:  13,
		99:  13,
		100: 11,
		150: 11,
		200: 12,
		999: 12,
	}
	for k, want := range cases {
		assert.Equal(t, want, p.LookUp(key(k)), "key %d", k)
	}
}

func TestInternalValueIndexAbsentIsSize(t *testing.T) {
	p := newInternal(t, 1, 4)
	p.PopulateNewRoot(10, key(100), 11)

	assert.Equal(t, 0, p.ValueIndex(10))
	assert.Equal(t, 1, p.ValueIndex(11))
	assert.Equal(t, p.Size(), p.ValueIndex(99))
}

func TestInternalRemove(t *testing.T) {
	p := newInternal(t, 1, 8)
	p.PopulateNewRoot(10, key(100), 11)
	p.InsertNodeAfter(11, key(200), 12)

	p.Remove(1)
	assert.Equal(t, []int64{10, 12}, p.Children())
	assert.Equal(t, []int64{200}, internalKeys(p))

	p.Remove(1)
	assert.Equal(t, 1, p.Size())
	assert.Equal(t, int64(10), p.RemoveAndReturnOnlyChild())
	assert.Equal(t, 0, p.Size())
}

func TestInternalMoveHalfTo(t *testing.T) {
	f := newFakePinner()
	left := newInternal(t, 1, 4)
	fillInternal(t, f, left, []int64{100, 101, 102, 103, 104}, []int64{10, 20, 30, 40})
	require.Equal(t, 5, left.Size())

	right := newInternal(t, 2, 4)
	require.NoError(t, left.MoveHalfTo(right, f))

	assert.Equal(t, 3, left.Size())
	assert.Equal(t, 2, right.Size())
	for _, p := range []*InternalPage{left, right} {
		assert.GreaterOrEqual(t, p.Size(), p.MinSize())
		assert.LessOrEqual(t, p.Size(), p.MaxSize())
	}

	assert.Equal(t, []int64{100, 101, 102}, left.Children())
	assert.Equal(t, []int64{103, 104}, right.Children())
	assert.Equal(t, int64(30), DecodeIntegerKey(right.KeyAt(0)))
	assert.Equal(t, []int64{10, 20}, internalKeys(left))
	assert.Equal(t, []int64{40}, internalKeys(right))

	for _, c := range []int64{100, 101, 102} {
		assert.Equal(t, int64(1), f.parentOf(c))
	}
	for _, c := range []int64{103, 104} {
		assert.Equal(t, int64(2), f.parentOf(c))
	}
	assert.Equal(t, 2, f.fetches)
	assert.Equal(t, 2, f.unpins)
	assert.Equal(t, 2, f.dirtyUnpins)
	assert.Empty(t, f.leaked())
}

func TestInternalMoveAllTo(t *testing.T) {
	f := newFakePinner()
	left := newInternal(t, 1, 6)
	fillInternal(t, f, left, []int64{100, 101}, []int64{10})
	right := newInternal(t, 2, 6)
	fillInternal(t, f, right, []int64{200, 201}, []int64{30})

	require.NoError(t, right.MoveAllTo(left, key(20), f))

	assert.Equal(t, 0, right.Size())
	assert.Equal(t, []int64{100, 101, 200, 201}, left.Children())
	assert.Equal(t, []int64{10, 20, 30}, internalKeys(left))
	assert.Equal(t, int64(1), f.parentOf(200))
	assert.Equal(t, int64(1), f.parentOf(201))
	assert.Equal(t, f.fetches, f.unpins)
	assert.Equal(t, 2, f.dirtyUnpins)
	assert.Empty(t, f.leaked())
}

func TestInternalMoveFirstToEndOf(t *testing.T) {
	f := newFakePinner()
	left := newInternal(t, 1, 6)
	fillInternal(t, f, left, []int64{100, 101}, []int64{10})
	right := newInternal(t, 2, 6)
	fillInternal(t, f, right, []int64{200, 201, 202}, []int64{30, 40})

	separator, err := right.MoveFirstToEndOf(left, key(20), f)
	require.NoError(t, err)

	assert.Equal(t, int64(30), DecodeIntegerKey(separator))
	assert.Equal(t, []int64{100, 101, 200}, left.Children())
	assert.Equal(t, []int64{10, 20}, internalKeys(left))
	assert.Equal(t, []int64{201, 202}, right.Children())
	assert.Equal(t, []int64{40}, internalKeys(right))
	assert.Equal(t, int64(1), f.parentOf(200))
	assert.Equal(t, 1, f.dirtyUnpins)
	assert.Empty(t, f.leaked())
}

func TestInternalMoveLastToFrontOf(t *testing.T) {
	f := newFakePinner()
	left := newInternal(t, 1, 6)
	fillInternal(t, f, left, []int64{100, 101, 102}, []int64{10, 20})
	right := newInternal(t, 2, 6)
	fillInternal(t, f, right, []int64{200, 201}, []int64{40})

	separator, err := left.MoveLastToFrontOf(right, key(30), f)
	require.NoError(t, err)

	assert.Equal(t, int64(20), DecodeIntegerKey(separator))
	assert.Equal(t, []int64{100, 101}, left.Children())
	assert.Equal(t, []int64{10}, internalKeys(left))
	assert.Equal(t, []int64{102, 200, 201}, right.Children())
	assert.Equal(t, []int64{30, 40}, internalKeys(right))
	assert.Equal(t, int64(2), f.parentOf(102))
	assert.Equal(t, int64(102), right.LookUp(key(25)))
	assert.Equal(t, int64(200), right.LookUp(key(30)))
	assert.Empty(t, f.leaked())
}

func TestInternalFixupFailures(t *testing.T) {
	t.Run("missing child", func(t *testing.T) {
		f := newFakePinner()
		left := newInternal(t, 1, 4)
		fillInternal(t, f, left, []int64{100, 101, 102, 103, 104}, []int64{10, 20, 30, 40})
		delete(f.pages, 104)

		right := newInternal(t, 2, 4)
		err := left.MoveHalfTo(right, f)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fetch page 104")
		assert.Equal(t, f.fetches, f.unpins)
		assert.Empty(t, f.leaked())
	})

	t.Run("unpin fails", func(t *testing.T) {
		f := newFakePinner()
		left := newInternal(t, 1, 6)
		fillInternal(t, f, left, []int64{100, 101}, []int64{10})
		right := newInternal(t, 2, 6)
		fillInternal(t, f, right, []int64{200, 201}, []int64{30})
		f.failUnpin = true

		err := right.MoveAllTo(left, key(20), f)
		assert.ErrorIs(t, err, errFakeUnpin)
		assert.Equal(t, 1, f.fetches)
		assert.Equal(t, 1, f.unpins)
		assert.Empty(t, f.leaked())
	})
}

func TestInternalSetKeyAtWrongWidthPanics(t *testing.T) {
	p := newInternal(t, 1, 4)
	assert.Panics(t, func() { p.SetKeyAt(1, []byte{1, 2, 3}) })
}
