package delta

import (
	"encoding/json"
	"sort"
)

// Embed is a single-key object standing in for one non-textual atom
// of length 1, e.g. {"image": "http://..."}. The JSON decoder rejects
// any shape other than exactly one key with ErrMalformedOp; the
// builder methods only reject an empty embed, and Equal never reports
// a multi-key embed as equal.
type Embed map[string]any

// Kind returns the embed's single key, or "" for a nil/empty embed.
func (e Embed) Kind() string {
	for k := range e {
		return k
	}
	return ""
}

// Value returns the payload under the embed's key.
func (e Embed) Value() any {
	return e[e.Kind()]
}

// Equal reports whether two embeds share the same kind and their
// payloads are structurally equal JSON values.
func (e Embed) Equal(other Embed) bool {
	if len(e) != 1 || len(other) != 1 {
		return false
	}
	k := e.Kind()
	if k != other.Kind() {
		return false
	}
	return valueEqual(e[k], other[k])
}

// sentinelKey returns a stable string key identifying e's (kind,
// payload) class. Diff does not use it: it flattens every embed to the
// single shared embedToken, so embeds are not told apart by class
// during the edit-script search.
func (e Embed) sentinelKey() string {
	k := e.Kind()
	b, err := json.Marshal(canonicalize(e[k]))
	if err != nil {
		return k
	}
	return k + "\x00" + string(b)
}

// canonicalize recursively sorts map keys so that json.Marshal
// produces a byte-stable representation for structurally-equal
// values, since Go's encoding/json already sorts map[string]any keys
// on marshal — this exists mainly to normalize nested map ordering
// explicitly and to document the guarantee we depend on.
func canonicalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(map[string]any, len(t))
		for _, k := range keys {
			out[k] = canonicalize(t[k])
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = canonicalize(e)
		}
		return out
	default:
		return v
	}
}

// EmbedHandler lets a caller give a specific embed kind (e.g. an
// "image" or "mention" atom) its own compose/transform/invert
// semantics instead of the package's default treat-as-opaque-atom
// fallback described in spec.md §6.
type EmbedHandler interface {
	// Compose returns the result of applying b on top of a.
	Compose(a, b any, keepNull bool) (any, error)
	// Transform rebases b against a; priority breaks insert/insert ties.
	Transform(a, b any, priority bool) (any, error)
	// Invert returns the payload that undoes a's effect given base.
	Invert(a, base any) (any, error)
}

// Registry holds EmbedHandlers keyed by embed kind. It is an explicit
// value passed to operators, never a package-level global — spec.md
// §9 calls out hidden singletons as something to avoid so that tests
// can run with independent registries.
type Registry struct {
	handlers map[string]EmbedHandler
}

// NewRegistry returns an empty embed handler registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]EmbedHandler)}
}

// Register installs handler for the given embed kind, replacing any
// previous handler for that kind.
func (r *Registry) Register(kind string, handler EmbedHandler) {
	if r.handlers == nil {
		r.handlers = make(map[string]EmbedHandler)
	}
	r.handlers[kind] = handler
}

func (r *Registry) lookup(kind string) EmbedHandler {
	if r == nil {
		return nil
	}
	return r.handlers[kind]
}

// composeEmbeds implements spec.md §6's fallback: if no handler is
// registered for the embed's kind, the second embed fully overwrites
// the first.
func composeEmbeds(reg *Registry, a, b Embed) (Embed, error) {
	kind := b.Kind()
	if kind == "" {
		kind = a.Kind()
	}
	if h := reg.lookup(kind); h != nil {
		v, err := h.Compose(a.Value(), b.Value(), true)
		if err != nil {
			return nil, err
		}
		return Embed{kind: v}, nil
	}
	return b, nil
}

// transformEmbeds implements spec.md §6's fallback: priority chooses
// which embed wins.
func transformEmbeds(reg *Registry, a, b Embed, priority bool) (Embed, error) {
	kind := b.Kind()
	if kind == "" {
		kind = a.Kind()
	}
	if h := reg.lookup(kind); h != nil {
		v, err := h.Transform(a.Value(), b.Value(), priority)
		if err != nil {
			return nil, err
		}
		return Embed{kind: v}, nil
	}
	if priority {
		return a, nil
	}
	return b, nil
}

// invertEmbeds implements spec.md §6's fallback: restore base.
func invertEmbeds(reg *Registry, attr, base Embed) (Embed, error) {
	kind := base.Kind()
	if kind == "" {
		kind = attr.Kind()
	}
	if h := reg.lookup(kind); h != nil {
		v, err := h.Invert(attr.Value(), base.Value())
		if err != nil {
			return nil, err
		}
		return Embed{kind: v}, nil
	}
	return base, nil
}
