package delta

// Delta is a canonical, ordered sequence of operations describing
// either a document (insert-only) or a change to one. Deltas are
// value objects: every algebraic operator in this package returns a
// new Delta and never mutates its inputs. The builder methods
// (Insert/Retain/Delete/Push) are the only mutators, and are meant to
// be used single-threaded during construction before a Delta is
// shared (spec.md §5).
type Delta struct {
	ops []Op
}

// New returns an empty Delta.
func New() *Delta {
	return &Delta{}
}

// FromOps builds a Delta by pushing each op through normalization, in
// order. Use this to construct a Delta from a decoded or
// hand-assembled operation list without bypassing invariants.
func FromOps(ops []Op) *Delta {
	d := New()
	for _, op := range ops {
		d.Push(op)
	}
	return d
}

// Ops returns the Delta's operations. The caller must not mutate the
// returned slice; it aliases the Delta's internal storage.
func (d *Delta) Ops() []Op {
	return d.ops
}

// Insert appends an insert of text with the given attributes
// (attrs may be nil). A zero-length insert is a silent no-op.
func (d *Delta) Insert(text string, attrs Attrs) *Delta {
	if text == "" {
		return d
	}
	return d.Push(insertOp(text, attrs))
}

// InsertEmbed appends an insert of a single-key embed object.
func (d *Delta) InsertEmbed(embed Embed, attrs Attrs) *Delta {
	if len(embed) == 0 {
		return d
	}
	return d.Push(insertEmbedOp(embed, attrs))
}

// Retain appends a retain of n units with the given attributes. A
// zero-length retain is a silent no-op.
func (d *Delta) Retain(n int, attrs Attrs) *Delta {
	if n <= 0 {
		return d
	}
	return d.Push(retainOp(n, attrs))
}

// RetainEmbed appends a length-1 retain carrying an embed payload,
// used to transform an embed's own sub-content.
func (d *Delta) RetainEmbed(embed Embed, attrs Attrs) *Delta {
	if len(embed) == 0 {
		return d
	}
	return d.Push(retainEmbedOp(embed, attrs))
}

// Delete appends a delete of n units. A zero-length delete is a
// silent no-op.
func (d *Delta) Delete(n int) *Delta {
	if n <= 0 {
		return d
	}
	return d.Push(deleteOp(n))
}

// Push adds one operation to the end of the Delta, performing the
// push-time normalization from spec.md §4.2: merging with a
// compatible tail operation, and re-ordering an insert to sit before
// a trailing delete.
func (d *Delta) Push(op Op) *Delta {
	if op.IsZero() {
		return d
	}
	if len(d.ops) == 0 {
		d.ops = append(d.ops, op)
		return d
	}

	lastIdx := len(d.ops) - 1
	last := d.ops[lastIdx]

	switch op.Kind {
	case KindInsert:
		if last.Kind == KindDelete {
			if lastIdx >= 1 {
				prev := d.ops[lastIdx-1]
				if op.Embed == nil && prev.Kind == KindInsert && prev.Embed == nil &&
					prev.Attrs.Equal(op.Attrs) {
					d.ops[lastIdx-1] = insertOp(prev.Text+op.Text, prev.Attrs)
					return d
				}
			}
			// Inserts always sort before a trailing delete so that
			// repeated insert/delete pushes keep merging (invariant 4).
			d.ops = append(d.ops, last)
			d.ops[lastIdx] = op
			return d
		}
		if last.Kind == KindInsert && last.Embed == nil && op.Embed == nil &&
			last.Attrs.Equal(op.Attrs) {
			d.ops[lastIdx] = insertOp(last.Text+op.Text, last.Attrs)
			return d
		}
	case KindRetain:
		if op.Embed == nil && last.Kind == KindRetain && last.Embed == nil &&
			last.Attrs.Equal(op.Attrs) {
			d.ops[lastIdx] = retainOp(last.Len+op.Len, last.Attrs)
			return d
		}
	case KindDelete:
		if last.Kind == KindDelete {
			d.ops[lastIdx] = deleteOp(last.Len + op.Len)
			return d
		}
	}

	d.ops = append(d.ops, op)
	return d
}

// PushAll pushes each op from other in order.
func (d *Delta) PushAll(other []Op) *Delta {
	for _, op := range other {
		d.Push(op)
	}
	return d
}

// Chop drops a trailing bare retain (no attributes), which is a
// no-op at the tail of a change (spec invariant 3).
func (d *Delta) Chop() *Delta {
	if len(d.ops) == 0 {
		return d
	}
	last := d.ops[len(d.ops)-1]
	if last.Kind == KindRetain && last.Embed == nil && len(last.Attrs) == 0 {
		d.ops = d.ops[:len(d.ops)-1]
	}
	return d
}

// Length returns the sum of every operation's length.
func (d *Delta) Length() int {
	n := 0
	for _, op := range d.ops {
		n += op.Length()
	}
	return n
}

// ChangeLength returns the net document-length delta this change
// would apply: total insert length minus total delete length.
func (d *Delta) ChangeLength() int {
	n := 0
	for _, op := range d.ops {
		switch op.Kind {
		case KindInsert:
			n += op.Length()
		case KindDelete:
			n -= op.Length()
		}
	}
	return n
}

// IsDocument reports whether the Delta contains only insert
// operations, the precondition for Diff.
func (d *Delta) IsDocument() bool {
	for _, op := range d.ops {
		if op.Kind != KindInsert {
			return false
		}
	}
	return true
}

// Iterator returns a fresh cursor over the Delta's operations.
func (d *Delta) Iterator() *Iterator {
	return newIterator(d.ops)
}

// Equal reports whether two Deltas have the same operations in the
// same order, comparing each op with Op.Equal.
func (d *Delta) Equal(other *Delta) bool {
	if d == nil || other == nil {
		return d == other
	}
	if len(d.ops) != len(other.ops) {
		return false
	}
	for i := range d.ops {
		if !d.ops[i].Equal(other.ops[i]) {
			return false
		}
	}
	return true
}

// Slice returns the operations covering [start, end) in
// document-length space, splitting inserts/retains/deletes at the
// boundaries as needed; embeds are never split.
func (d *Delta) Slice(start, end int) *Delta {
	result := New()
	it := d.Iterator()
	index := 0
	for index < end && it.HasNext() {
		if index < start {
			op := it.Next(start - index)
			index += op.Length()
			continue
		}
		op := it.Next(end - index)
		index += op.Length()
		result.Push(op)
	}
	return result
}

// Clone returns a deep-enough copy of d; operations are value types
// aside from Attrs/Embed maps, which are copied.
func (d *Delta) Clone() *Delta {
	out := New()
	for _, op := range d.ops {
		cp := op
		cp.Attrs = op.Attrs.clone()
		if op.Embed != nil {
			e := make(Embed, len(op.Embed))
			for k, v := range op.Embed {
				e[k] = v
			}
			cp.Embed = e
		}
		out.ops = append(out.ops, cp)
	}
	return out
}
