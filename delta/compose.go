package delta

// Compose returns a Delta equivalent to applying a, then b. See
// spec.md §4.4. A nil registry uses the default embed fallback
// behavior from spec.md §6.
func Compose(a, b *Delta, reg *Registry) (*Delta, error) {
	ai := a.Iterator()
	bi := b.Iterator()
	result := New()

	for ai.HasNext() || bi.HasNext() {
		switch {
		case bi.PeekType() == KindInsert:
			result.Push(bi.Next(0))
			continue
		case ai.PeekType() == KindDelete:
			result.Push(ai.Next(0))
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
		case otherOp.Kind == KindRetain:
			var newOp Op
			switch {
			case thisOp.Kind == KindRetain && otherOp.Embed != nil:
				embed, err := composeEmbeds(reg, thisOp.Embed, otherOp.Embed)
				if err != nil {
					return nil, err
				}
				newOp = retainEmbedOp(embed, composeAttrs(thisOp.Attrs, otherOp.Attrs, true))
			case thisOp.Kind == KindRetain:
				newOp = retainOp(n, composeAttrs(thisOp.Attrs, otherOp.Attrs, true))
			case thisOp.Embed != nil: // thisOp is an insert-embed
				newOp = insertEmbedOp(thisOp.Embed, composeAttrs(thisOp.Attrs, otherOp.Attrs, false))
			default: // thisOp is a string insert
				newOp = insertOp(thisOp.Text, composeAttrs(thisOp.Attrs, otherOp.Attrs, false))
			}
			result.Push(newOp)
		case otherOp.Kind == KindDelete && thisOp.Kind == KindRetain:
			result.Push(deleteOp(n))
			// otherwise: thisOp is insert, otherOp is delete — net cancellation.
		}
	}

	return result.Chop(), nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
