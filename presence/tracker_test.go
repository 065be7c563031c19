package presence

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// fakeRedis is an in-memory stand-in for the narrow redisClient
// interface Tracker depends on, so these tests run without a live
// Redis server.
type fakeRedis struct {
	values map[string]string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: make(map[string]string)}
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	f.values[key] = value.(string)
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	var n int64
	for _, k := range keys {
		if _, ok := f.values[k]; ok {
			delete(f.values, k)
			n++
		}
	}
	cmd.SetVal(n)
	return cmd
}

func (f *fakeRedis) Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd {
	cmd := redis.NewScanCmd(ctx, nil)
	prefix := match[:len(match)-1] // strip trailing "*"
	var keys []string
	for k := range f.values {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	cmd.SetVal(keys, 0)
	return cmd
}

func (f *fakeRedis) MGet(ctx context.Context, keys ...string) *redis.SliceCmd {
	cmd := redis.NewSliceCmd(ctx)
	vals := make([]interface{}, len(keys))
	for i, k := range keys {
		if v, ok := f.values[k]; ok {
			vals[i] = v
		}
	}
	cmd.SetVal(vals)
	return cmd
}

func newTestTracker() (*Tracker, *fakeRedis) {
	fr := newFakeRedis()
	return &Tracker{rdb: fr, ttl: time.Minute}, fr
}

func TestTracker_HeartbeatAndMembers(t *testing.T) {
	tr, _ := newTestTracker()
	ctx := context.Background()

	if err := tr.Heartbeat(ctx, "doc1", "c1", "Alice"); err != nil {
		t.Fatal(err)
	}
	if err := tr.Heartbeat(ctx, "doc1", "c2", "Bob"); err != nil {
		t.Fatal(err)
	}

	members, err := tr.Members(ctx, "doc1")
	if err != nil {
		t.Fatal(err)
	}
	if len(members) != 2 {
		t.Fatalf("got %d members, want 2", len(members))
	}

	byID := make(map[string]string)
	for _, m := range members {
		byID[m.ClientID] = m.Name
	}
	if byID["c1"] != "Alice" || byID["c2"] != "Bob" {
		t.Errorf("unexpected members: %+v", members)
	}
}

func TestTracker_MembersEmpty(t *testing.T) {
	tr, _ := newTestTracker()
	members, err := tr.Members(context.Background(), "nonexistent")
	if err != nil {
		t.Fatal(err)
	}
	if len(members) != 0 {
		t.Errorf("got %d members, want 0", len(members))
	}
}

func TestTracker_Leave(t *testing.T) {
	tr, _ := newTestTracker()
	ctx := context.Background()

	tr.Heartbeat(ctx, "doc1", "c1", "Alice")
	tr.Heartbeat(ctx, "doc1", "c2", "Bob")

	if err := tr.Leave(ctx, "doc1", "c1"); err != nil {
		t.Fatal(err)
	}

	members, err := tr.Members(ctx, "doc1")
	if err != nil {
		t.Fatal(err)
	}
	if len(members) != 1 || members[0].ClientID != "c2" {
		t.Errorf("unexpected members after leave: %+v", members)
	}
}

func TestTracker_ScopedPerDocument(t *testing.T) {
	tr, _ := newTestTracker()
	ctx := context.Background()

	tr.Heartbeat(ctx, "doc1", "c1", "Alice")
	tr.Heartbeat(ctx, "doc2", "c1", "Alice")

	m1, _ := tr.Members(ctx, "doc1")
	m2, _ := tr.Members(ctx, "doc2")
	if len(m1) != 1 || len(m2) != 1 {
		t.Fatalf("expected 1 member in each document, got %d and %d", len(m1), len(m2))
	}
}
