package delta

import "sort"

// Attrs is an unordered mapping from attribute name to a JSON-shaped
// value: string, float64, bool, nil, map[string]any or []any. A nil
// value on a retain or on a second insert means "unset this
// attribute"; on a document-building insert it is equivalent to the
// attribute being absent. Compose strips nil values from an insert it
// formats with a retain; Insert, InsertEmbed, Push and the JSON
// decoder keep a nil value on an insert as given.
type Attrs map[string]any

// clone returns a shallow copy. Attribute values are treated as
// immutable once stored, so a shallow copy is sufficient.
func (a Attrs) clone() Attrs {
	if len(a) == 0 {
		return nil
	}
	out := make(Attrs, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// nonEmpty returns a nil map for an empty map, so that "an op with
// attributes" always means a non-empty map (spec invariant 5).
func (a Attrs) nonEmpty() Attrs {
	if len(a) == 0 {
		return nil
	}
	return a
}

// valueEqual reports whether two attribute values are structurally
// equal. JSON-decoded numbers are float64; callers building Attrs by
// hand may use any Go numeric type, so numeric comparisons normalize
// both sides to float64.
func valueEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return af == bf
		}
		return false
	}
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bvv, ok := bv[k]
			if !ok || !valueEqual(v, bvv) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valueEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// Equal reports whether two attribute maps are structurally equal,
// set-like and order-independent.
func (a Attrs) Equal(b Attrs) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		bv, ok := b[k]
		if !ok || !valueEqual(v, bv) {
			return false
		}
	}
	return true
}

// sortedKeys returns the keys of a in lexicographic order, used only
// to produce deterministic JSON output (spec.md §9: insertion order is
// not semantic, but encoding should be stable).
func (a Attrs) sortedKeys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// composeAttrs starts from a copy of b; for every key in a not
// present in b, copies it in. If keepNull is false, strips keys whose
// final value is nil.
func composeAttrs(a, b Attrs, keepNull bool) Attrs {
	out := make(Attrs, len(a)+len(b))
	for k, v := range b {
		out[k] = v
	}
	for k, v := range a {
		if _, ok := b[k]; !ok {
			out[k] = v
		}
	}
	if !keepNull {
		for k, v := range out {
			if v == nil {
				delete(out, k)
			}
		}
	}
	return out.nonEmpty()
}

// diffAttrs returns, for every key present in either map, an entry
// iff a[k] != b[k]; the value is b[k] if present, otherwise nil
// (signalling removal).
func diffAttrs(a, b Attrs) Attrs {
	out := make(Attrs)
	seen := make(map[string]bool, len(a)+len(b))
	for k := range a {
		seen[k] = true
	}
	for k := range b {
		seen[k] = true
	}
	for k := range seen {
		av, aok := a[k]
		bv, bok := b[k]
		if aok == bok && valueEqual(av, bv) {
			continue
		}
		if bok {
			out[k] = bv
		} else {
			out[k] = nil
		}
	}
	return out.nonEmpty()
}

// transformAttrs rebases b against a. If priority is true, a wins:
// the result is the subset of b whose keys are absent from a. If
// false, b is returned unchanged.
func transformAttrs(a, b Attrs, priority bool) Attrs {
	if !priority {
		return b.nonEmpty()
	}
	if len(a) == 0 {
		return b.nonEmpty()
	}
	out := make(Attrs, len(b))
	for k, v := range b {
		if _, ok := a[k]; !ok {
			out[k] = v
		}
	}
	return out.nonEmpty()
}

// invertAttrs computes the attribute map that undoes attr when
// applied on top of base: for each key in attr whose value differs
// from base, restore base's value (or nil if base lacks the key);
// keys equal in both are omitted.
func invertAttrs(attr, base Attrs) Attrs {
	out := make(Attrs)
	for k, v := range base {
		if av, ok := attr[k]; ok && !valueEqual(v, av) {
			out[k] = v
		}
	}
	for k := range attr {
		if _, ok := base[k]; !ok {
			out[k] = nil
		}
	}
	return out.nonEmpty()
}
