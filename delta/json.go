package delta

import "encoding/json"

// MarshalJSON encodes d in the canonical wire form from spec.md §3:
// {"ops":[{"insert"|"retain"|"delete":...,"attributes"?:{...}}, ...]}.
func (d *Delta) MarshalJSON() ([]byte, error) {
	ops := d.ops
	if ops == nil {
		ops = []Op{}
	}
	return json.Marshal(struct {
		Ops []Op `json:"ops"`
	}{Ops: ops})
}

// UnmarshalJSON decodes the canonical wire form into d, pushing each
// operation through Push so the result satisfies every canonicalization
// invariant regardless of how the input was arranged. It returns
// ErrMalformedOp for any op object that isn't exactly one of
// insert/retain/delete, or whose value doesn't match that op's shape.
func (d *Delta) UnmarshalJSON(data []byte) error {
	var wire struct {
		Ops []json.RawMessage `json:"ops"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	nd := New()
	for _, raw := range wire.Ops {
		op, err := decodeOp(raw)
		if err != nil {
			return err
		}
		nd.Push(op)
	}
	*d = *nd
	return nil
}

// MarshalJSON encodes o as a single op object.
func (o Op) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, 2)
	switch o.Kind {
	case KindInsert:
		if o.Embed != nil {
			m["insert"] = map[string]any(o.Embed)
		} else {
			m["insert"] = o.Text
		}
	case KindRetain:
		if o.Embed != nil {
			m["retain"] = map[string]any(o.Embed)
		} else {
			m["retain"] = o.Len
		}
	case KindDelete:
		m["delete"] = o.Len
	}
	if len(o.Attrs) > 0 {
		m["attributes"] = map[string]any(o.Attrs)
	}
	return json.Marshal(m)
}

func decodeOp(raw json.RawMessage) (Op, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Op{}, ErrMalformedOp
	}

	var attrs Attrs
	if a, ok := fields["attributes"]; ok {
		if err := json.Unmarshal(a, &attrs); err != nil {
			return Op{}, ErrMalformedOp
		}
	}

	insertRaw, hasInsert := fields["insert"]
	retainRaw, hasRetain := fields["retain"]
	deleteRaw, hasDelete := fields["delete"]
	count := 0
	for _, has := range []bool{hasInsert, hasRetain, hasDelete} {
		if has {
			count++
		}
	}
	if count != 1 {
		return Op{}, ErrMalformedOp
	}

	switch {
	case hasInsert:
		var s string
		if err := json.Unmarshal(insertRaw, &s); err == nil {
			return insertOp(s, attrs), nil
		}
		embed, err := decodeEmbed(insertRaw)
		if err != nil {
			return Op{}, err
		}
		return insertEmbedOp(embed, attrs), nil
	case hasRetain:
		var n int
		if err := json.Unmarshal(retainRaw, &n); err == nil {
			if n < 0 {
				return Op{}, ErrMalformedOp
			}
			return retainOp(n, attrs), nil
		}
		embed, err := decodeEmbed(retainRaw)
		if err != nil {
			return Op{}, err
		}
		return retainEmbedOp(embed, attrs), nil
	default:
		var n int
		if err := json.Unmarshal(deleteRaw, &n); err != nil {
			return Op{}, ErrMalformedOp
		}
		if n < 0 {
			return Op{}, ErrMalformedOp
		}
		return deleteOp(n), nil
	}
}

func decodeEmbed(raw json.RawMessage) (Embed, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, ErrMalformedOp
	}
	if len(m) != 1 {
		return nil, ErrMalformedOp
	}
	return Embed(m), nil
}
