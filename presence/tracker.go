// Package presence tracks which clients are actively viewing a
// document, backed by Redis so the participant list survives across
// multiple collaboration-server instances.
package presence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "presence:doc:"

func docKey(docID string) string {
	return keyPrefix + docID + ":"
}

// Member describes a client currently present in a document.
type Member struct {
	ClientID string
	Name     string
}

// redisClient is the subset of *redis.Client used by Tracker, kept
// narrow so tests can supply a fake without a live Redis server.
type redisClient interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
}

// Tracker records (docID, clientID) -> display name heartbeats in
// Redis with a TTL, and lists the currently alive members of a document.
type Tracker struct {
	rdb redisClient
	ttl time.Duration
}

// NewTracker creates a Tracker using rdb, with members expiring after
// ttl if not refreshed by a call to Heartbeat.
func NewTracker(rdb *redis.Client, ttl time.Duration) *Tracker {
	return &Tracker{rdb: rdb, ttl: ttl}
}

// Heartbeat marks clientID as present in docID, refreshing its TTL.
func (t *Tracker) Heartbeat(ctx context.Context, docID, clientID, name string) error {
	key := docKey(docID) + clientID
	if err := t.rdb.Set(ctx, key, name, t.ttl).Err(); err != nil {
		return fmt.Errorf("presence heartbeat %s/%s: %w", docID, clientID, err)
	}
	return nil
}

// Leave removes clientID from docID's presence set immediately,
// instead of waiting for its TTL to expire.
func (t *Tracker) Leave(ctx context.Context, docID, clientID string) error {
	key := docKey(docID) + clientID
	if err := t.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("presence leave %s/%s: %w", docID, clientID, err)
	}
	return nil
}

// Members returns the clients currently present in docID. Expired
// heartbeats are absent because Redis has already evicted their keys.
func (t *Tracker) Members(ctx context.Context, docID string) ([]Member, error) {
	prefix := docKey(docID)
	var keys []string
	var cursor uint64
	for {
		batch, next, err := t.rdb.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("presence scan %s: %w", docID, err)
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if len(keys) == 0 {
		return nil, nil
	}

	values, err := t.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("presence mget %s: %w", docID, err)
	}
	members := make([]Member, 0, len(keys))
	for i, key := range keys {
		if values[i] == nil {
			continue
		}
		name, _ := values[i].(string)
		members = append(members, Member{
			ClientID: strings.TrimPrefix(key, prefix),
			Name:     name,
		})
	}
	return members, nil
}
