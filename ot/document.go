package ot

import (
	"fmt"

	"github.com/alimasry/deltadoc/delta"
)

// Document represents a collaborative document with its full change
// history, expressed as Deltas rather than raw text.
type Document struct {
	Content *delta.Delta
	Version int
	History []*delta.Delta
}

// NewDocument creates a new document with the given initial content.
// A nil content starts from an empty document.
func NewDocument(content *delta.Delta) *Document {
	if content == nil {
		content = delta.New()
	}
	return &Document{Content: content}
}

// Apply composes change onto the document, appending it to history.
// It first checks that change does not retain or delete past the end
// of the document's current content, mirroring the base-length check
// a transformed op should always satisfy by construction; a mismatch
// means the change was built against the wrong revision. A registry
// may be nil to use the default embed fallback behavior.
func (d *Document) Apply(change *delta.Delta, reg *delta.Registry) error {
	if change == nil || isNoopChange(change) {
		return nil
	}
	if required := baseLength(change); required > d.Content.Length() {
		return fmt.Errorf("apply to document v%d: change requires %d base units, have %d", d.Version, required, d.Content.Length())
	}
	result, err := delta.Compose(d.Content, change, reg)
	if err != nil {
		return fmt.Errorf("apply to document v%d: %w", d.Version, err)
	}
	d.Content = result
	d.Version++
	d.History = append(d.History, change)
	return nil
}

// baseLength returns the number of base-document units change reads,
// i.e. the sum of its retain and delete lengths.
func baseLength(change *delta.Delta) int {
	n := 0
	for _, op := range change.Ops() {
		if op.Kind != delta.KindInsert {
			n += op.Length()
		}
	}
	return n
}

// isNoopChange reports whether change has no observable effect: only
// bare, unattributed retains, no inserts, deletes or embed retains.
func isNoopChange(change *delta.Delta) bool {
	for _, op := range change.Ops() {
		if op.Kind != delta.KindRetain || op.Embed != nil || len(op.Attrs) > 0 {
			return false
		}
	}
	return true
}
