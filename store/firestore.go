package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/alimasry/deltadoc/delta"
)

// FirestoreStore is a Firestore-backed implementation of DocumentStore.
// Content and changes are stored as their canonical Delta JSON encoding
// (spec.md §3), since Firestore's own document model has no native
// notion of an ordered, mixed insert/retain/delete operation list.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreStore creates a new FirestoreStore using the given Firestore client.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{
		client:     client,
		collection: "documents",
	}
}

func (s *FirestoreStore) docRef(id string) *firestore.DocumentRef {
	return s.client.Collection(s.collection).Doc(id)
}

func (s *FirestoreStore) changesCollection(docID string) *firestore.CollectionRef {
	return s.docRef(docID).Collection("changes")
}

func zeroPad(version int) string {
	return fmt.Sprintf("%010d", version)
}

func encodeDelta(d *delta.Delta) (string, error) {
	if d == nil {
		d = delta.New()
	}
	b, err := d.MarshalJSON()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeDelta(s string) (*delta.Delta, error) {
	d := delta.New()
	if s == "" {
		return d, nil
	}
	if err := d.UnmarshalJSON([]byte(s)); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *FirestoreStore) Create(ctx context.Context, id string, content *delta.Delta) error {
	encoded, err := encodeDelta(content)
	if err != nil {
		return err
	}
	now := time.Now()
	_, err = s.docRef(id).Create(ctx, map[string]interface{}{
		"content":   encoded,
		"version":   0,
		"createdAt": now,
		"updatedAt": now,
	})
	if status.Code(err) == codes.AlreadyExists {
		return fmt.Errorf("document %q already exists", id)
	}
	return err
}

func (s *FirestoreStore) Get(ctx context.Context, id string) (*DocumentInfo, error) {
	snap, err := s.docRef(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, fmt.Errorf("document %q not found", id)
	}
	if err != nil {
		return nil, err
	}
	return snapshotToDocInfo(id, snap)
}

func snapshotToDocInfo(id string, snap *firestore.DocumentSnapshot) (*DocumentInfo, error) {
	data := snap.Data()
	encoded, _ := data["content"].(string)
	content, err := decodeDelta(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode content for document %q: %w", id, err)
	}
	version, _ := data["version"].(int64)
	createdAt, _ := data["createdAt"].(time.Time)
	updatedAt, _ := data["updatedAt"].(time.Time)
	return &DocumentInfo{
		ID:        id,
		Content:   content,
		Version:   int(version),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

func (s *FirestoreStore) List(ctx context.Context) ([]DocumentInfo, error) {
	iter := s.client.Collection(s.collection).Documents(ctx)
	defer iter.Stop()

	var result []DocumentInfo
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		info, err := snapshotToDocInfo(snap.Ref.ID, snap)
		if err != nil {
			return nil, err
		}
		result = append(result, *info)
	}
	return result, nil
}

func (s *FirestoreStore) UpdateContent(ctx context.Context, id string, content *delta.Delta, version int) error {
	encoded, err := encodeDelta(content)
	if err != nil {
		return err
	}
	_, err = s.docRef(id).Update(ctx, []firestore.Update{
		{Path: "content", Value: encoded},
		{Path: "version", Value: version},
		{Path: "updatedAt", Value: time.Now()},
	})
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("document %q not found", id)
	}
	return err
}

func (s *FirestoreStore) AppendChange(ctx context.Context, id string, change *delta.Delta, version int) error {
	encoded, err := encodeDelta(change)
	if err != nil {
		return err
	}

	// Store with 0-based index: version 1 -> index 0, matching MemoryStore's
	// history slice semantics where GetChanges(fromVersion) returns history[fromVersion:].
	index := version - 1
	_, err = s.changesCollection(id).Doc(zeroPad(index)).Set(ctx, map[string]interface{}{
		"change":  encoded,
		"version": version,
	})
	return err
}

func (s *FirestoreStore) GetChanges(ctx context.Context, id string, fromVersion int) ([]*delta.Delta, error) {
	// Verify document exists.
	_, err := s.docRef(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, fmt.Errorf("document %q not found", id)
	}
	if err != nil {
		return nil, err
	}

	iter := s.changesCollection(id).
		OrderBy(firestore.DocumentID, firestore.Asc).
		StartAt(zeroPad(fromVersion)).
		Documents(ctx)
	defer iter.Stop()

	var changes []*delta.Delta
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		change, err := snapshotToChange(snap)
		if err != nil {
			return nil, err
		}
		changes = append(changes, change)
	}
	return changes, nil
}

func snapshotToChange(snap *firestore.DocumentSnapshot) (*delta.Delta, error) {
	data := snap.Data()
	encoded, ok := data["change"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid change field in document %s", snap.Ref.ID)
	}
	change, err := decodeDelta(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode change %s: %w", snap.Ref.ID, err)
	}
	return change, nil
}
