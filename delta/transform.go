package delta

// Transform rebases b so it can be applied after a, preserving
// intent — the core OT primitive. priority selects which side wins
// when both a and b insert at the same position. A nil registry uses
// the default embed fallback behavior from spec.md §6. See spec.md
// §4.5.
func Transform(a, b *Delta, priority bool, reg *Registry) (*Delta, error) {
	ai := a.Iterator()
	bi := b.Iterator()
	result := New()

	for ai.HasNext() || bi.HasNext() {
		if ai.PeekType() == KindInsert && (priority || bi.PeekType() != KindInsert) {
			result.Retain(ai.Next(0).Length(), nil)
			continue
		}
		if bi.PeekType() == KindInsert {
			result.Push(bi.Next(0))
			continue
		}

		n := min(ai.PeekLength(), bi.PeekLength())
		if n <= 0 {
			// Both operands report positive length or infinity by
			// construction; zero here means the iterators desynced.
			return nil, ErrInvariant
		}
		thisOp := ai.Next(n)
		otherOp := bi.Next(n)

		switch {
		case thisOp.Kind == KindDelete:
			// a already erases this content; b's op on it is moot.
		case otherOp.Kind == KindDelete:
			result.Push(otherOp)
		default:
			attrs := transformAttrs(thisOp.Attrs, otherOp.Attrs, priority)
			if thisOp.Embed != nil && otherOp.Embed != nil {
				embed, err := transformEmbeds(reg, thisOp.Embed, otherOp.Embed, priority)
				if err != nil {
					return nil, err
				}
				result.Push(retainEmbedOp(embed, attrs))
			} else {
				result.Retain(n, attrs)
			}
		}
	}

	return result.Chop(), nil
}

// TransformPosition rebases a caret/cursor position given change a.
// priority resolves ties when a inserts exactly at index: false moves
// the position past the insert, true leaves it in place.
func TransformPosition(a *Delta, index int, priority bool) int {
	it := a.Iterator()
	offset := 0
	for it.HasNext() && offset <= index {
		length := it.PeekLength()
		kind := it.PeekType()
		it.Next(0)
		switch {
		case kind == KindDelete:
			index -= min(length, index-offset)
			continue
		case kind == KindInsert && (offset < index || !priority):
			index += length
		}
		offset += length
	}
	return index
}
