package store

import (
	"context"
	"errors"
	"time"

	"github.com/alimasry/deltadoc/delta"
)

// ErrNotDocument is returned by MemoryStore's Create/UpdateContent (and
// by CachedStore's, which write through a MemoryStore cache) when the
// given content contains a retain or delete op — a document's stored
// content must always be insert-only, per delta.Delta.IsDocument.
var ErrNotDocument = errors.New("store: content must be a document (insert-only delta)")

// DocumentInfo holds document metadata and content.
type DocumentInfo struct {
	ID        string
	Content   *delta.Delta
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DocumentStore abstracts document persistence.
// Implementations: MemoryStore (phase 1), CachedStore (write-behind),
// FirestoreStore (durable backing store).
type DocumentStore interface {
	Create(ctx context.Context, id string, content *delta.Delta) error
	Get(ctx context.Context, id string) (*DocumentInfo, error)
	List(ctx context.Context) ([]DocumentInfo, error)
	UpdateContent(ctx context.Context, id string, content *delta.Delta, version int) error
	AppendChange(ctx context.Context, id string, change *delta.Delta, version int) error
	GetChanges(ctx context.Context, id string, fromVersion int) ([]*delta.Delta, error)
}
