package delta

// Invert returns the change that undoes change's effect on base, such
// that Compose(Compose(base, change), Invert(change, base)) equals
// base. change must not require more of base than base contains,
// otherwise Invert returns ErrBaseTooShort. A nil registry uses the
// default embed fallback behavior from spec.md §6. See spec.md §4.6.
func Invert(change, base *Delta, reg *Registry) (*Delta, error) {
	required := 0
	for _, op := range change.Ops() {
		if op.Kind != KindInsert {
			required += op.Length()
		}
	}
	if required > base.Length() {
		return nil, ErrBaseTooShort
	}

	inverted := New()
	baseIndex := 0

	for _, op := range change.Ops() {
		switch {
		case op.Kind == KindInsert:
			inverted.Delete(op.Length())
		case op.Kind == KindRetain && op.Embed == nil && len(op.Attrs) == 0:
			inverted.Retain(op.Length(), nil)
			baseIndex += op.Length()
		default:
			length := op.Length()
			slice := base.Slice(baseIndex, baseIndex+length)
			for _, baseOp := range slice.Ops() {
				switch op.Kind {
				case KindDelete:
					inverted.Push(baseOp)
				case KindRetain:
					if baseOp.Embed != nil && op.Embed != nil {
						embed, err := invertEmbeds(reg, op.Embed, baseOp.Embed)
						if err != nil {
							return nil, err
						}
						inverted.Push(retainEmbedOp(embed, invertAttrs(op.Attrs, baseOp.Attrs)))
					} else {
						inverted.Push(retainOp(baseOp.Length(), invertAttrs(op.Attrs, baseOp.Attrs)))
					}
				}
			}
			baseIndex += length
		}
	}

	return inverted.Chop(), nil
}
