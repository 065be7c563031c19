package delta

import "github.com/alimasry/deltadoc/internal/myers"

// embedToken is the flattened token standing in for any embed insert
// when diffing two documents' content. All embeds share one token,
// matching the reference behavior: diff treats two different embeds
// at the same position as an unrelated delete+insert pair rather than
// inspecting their payloads (spec.md §4.7 leaves embed-aware diffing
// as future work; see DESIGN.md).
const embedToken = -1

// Diff returns the minimal change that transforms document a into
// document b: a sequence of retain/insert/delete built from the
// shortest edit script between their flattened contents, with
// attribute changes folded into matching retains. Both arguments must
// be documents (insert-only Deltas); otherwise Diff returns
// ErrExpectedDocument. See spec.md §4.7.
func Diff(a, b *Delta) (*Delta, error) {
	if !a.IsDocument() || !b.IsDocument() {
		return nil, ErrExpectedDocument
	}

	at, err := flattenDocument(a)
	if err != nil {
		return nil, err
	}
	bt, err := flattenDocument(b)
	if err != nil {
		return nil, err
	}

	result := New()
	ai := a.Iterator()
	bi := b.Iterator()

	for _, chunk := range myers.Diff(at, bt) {
		remaining := chunk.Len
		switch chunk.Op {
		case myers.Equal:
			for remaining > 0 {
				n := min(ai.PeekLength(), min(bi.PeekLength(), remaining))
				if n <= 0 {
					// Both iterators report positive length or infinity by
					// construction; zero here means they desynced from the
					// Myers chunk they're supposed to be walking together.
					return nil, ErrInvariant
				}
				thisOp := ai.Next(n)
				otherOp := bi.Next(n)
				if thisOp.Kind == KindInsert && otherOp.Kind == KindInsert && sameOperation(thisOp, otherOp) {
					result.Push(retainOp(n, diffAttrs(thisOp.Attrs, otherOp.Attrs)))
				} else {
					result.Push(otherOp)
					result.Delete(n)
				}
				remaining -= n
			}
		case myers.Delete:
			for remaining > 0 {
				n := min(ai.PeekLength(), remaining)
				ai.Next(n)
				result.Delete(n)
				remaining -= n
			}
		case myers.Insert:
			for remaining > 0 {
				n := min(bi.PeekLength(), remaining)
				result.Push(bi.Next(n))
				remaining -= n
			}
		}
	}

	return result.Chop(), nil
}

// flattenDocument converts a document's inserts into a sequence of
// UTF-16 code units, one embedToken per embed, for diffing.
func flattenDocument(d *Delta) ([]int32, error) {
	out := make([]int32, 0, d.Length())
	for _, op := range d.Ops() {
		if op.Kind != KindInsert {
			return nil, ErrExpectedDocument
		}
		if op.Embed != nil {
			out = append(out, embedToken)
			continue
		}
		for _, r := range op.Text {
			if r > 0xFFFF {
				r -= 0x10000
				out = append(out, int32(0xD800+(r>>10)), int32(0xDC00+(r&0x3FF)))
			} else {
				out = append(out, r)
			}
		}
	}
	return out, nil
}
