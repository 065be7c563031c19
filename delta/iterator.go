package delta

import "math"

// infinity is the length reported by an exhausted Iterator's Peek. It
// stands in for the synthetic "retain(∞)" sentinel from spec.md §4.3:
// compose/transform pad the shorter side against it so both walks
// terminate together.
const infinity = math.MaxInt / 2

// Iterator is a stateful, single-pass cursor over a Delta's
// operations. It never mutates or exposes the underlying ops for
// mutation; Next splits an operation on the fly when the caller asks
// for fewer units than remain in it.
type Iterator struct {
	ops    []Op
	index  int
	offset int
}

// newIterator returns an Iterator positioned at the start of ops.
func newIterator(ops []Op) *Iterator {
	return &Iterator{ops: ops}
}

// HasNext reports whether any content remains.
func (it *Iterator) HasNext() bool {
	return it.PeekLength() < infinity
}

// PeekLength returns the remaining length of the current operation,
// or infinity if the iterator is exhausted.
func (it *Iterator) PeekLength() int {
	if it.index >= len(it.ops) {
		return infinity
	}
	return it.ops[it.index].Length() - it.offset
}

// PeekType returns the Kind of the current operation. An exhausted
// iterator reports KindRetain, matching the synthetic infinite-retain
// sentinel.
func (it *Iterator) PeekType() Kind {
	if it.index >= len(it.ops) {
		return KindRetain
	}
	return it.ops[it.index].Kind
}

// Peek returns the current operation without advancing, or the zero
// Op if exhausted.
func (it *Iterator) Peek() (Op, bool) {
	if it.index >= len(it.ops) {
		return Op{}, false
	}
	return it.ops[it.index], true
}

// Next returns an operation of at most n units starting at the
// cursor, advancing it. n <= 0 means "take the rest of the current
// operation". A string insert is sliced at UTF-16 code-unit
// boundaries; retain/delete are length-split; embeds (length 1) are
// always returned whole.
func (it *Iterator) Next(n int) Op {
	if n <= 0 {
		n = infinity
	}
	if it.index >= len(it.ops) {
		return retainOp(infinity, nil)
	}
	op := it.ops[it.index]
	offset := it.offset
	remaining := op.Length() - offset

	if n >= remaining {
		n = remaining
		it.index++
		it.offset = 0
	} else {
		it.offset += n
	}

	switch op.Kind {
	case KindDelete:
		return deleteOp(n)
	case KindRetain:
		if op.Embed != nil {
			return retainEmbedOp(op.Embed, op.Attrs)
		}
		return retainOp(n, op.Attrs)
	case KindInsert:
		if op.Embed != nil {
			return insertEmbedOp(op.Embed, op.Attrs)
		}
		return insertOp(utf16Slice(op.Text, offset, offset+n), op.Attrs)
	default:
		return Op{}
	}
}

// Rest drains and returns every remaining full operation, without
// splitting the current one further than its existing offset.
func (it *Iterator) Rest() []Op {
	if !it.HasNext() {
		return nil
	}
	if it.offset == 0 {
		rest := append([]Op(nil), it.ops[it.index:]...)
		it.index = len(it.ops)
		return rest
	}
	offset := it.offset
	index := it.index
	first := it.Next(0)
	rest := append([]Op{first}, it.ops[index+1:]...)
	_ = offset
	it.index = len(it.ops)
	return rest
}
