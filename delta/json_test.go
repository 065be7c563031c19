package delta

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestJSON_MarshalRoundTrip(t *testing.T) {
	d := New().Insert("Hello", Attrs{"bold": true}).Retain(3, nil).Delete(2)
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got Delta
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !got.Equal(d) {
		t.Errorf("round trip = %v, want %v", got.Ops(), d.Ops())
	}
}

func TestJSON_CanonicalShape(t *testing.T) {
	d := New().Insert("Hi", Attrs{"bold": true}).Delete(2)
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var wire struct {
		Ops []map[string]any `json:"ops"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(wire.Ops) != 2 {
		t.Fatalf("expected 2 wire ops, got %d: %v", len(wire.Ops), wire.Ops)
	}
	if wire.Ops[0]["insert"] != "Hi" {
		t.Errorf("insert field = %v, want %q", wire.Ops[0]["insert"], "Hi")
	}
	attrs, ok := wire.Ops[0]["attributes"].(map[string]any)
	if !ok || attrs["bold"] != true {
		t.Errorf("attributes field = %v, want bold:true", wire.Ops[0]["attributes"])
	}
	if wire.Ops[1]["delete"] != float64(2) {
		t.Errorf("delete field = %v, want 2", wire.Ops[1]["delete"])
	}
}

func TestJSON_EmptyDeltaMarshalsToEmptyOpsArray(t *testing.T) {
	data, err := json.Marshal(New())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"ops":[]}` {
		t.Errorf("marshal = %s, want %s", data, `{"ops":[]}`)
	}
}

func TestJSON_EmbedInsertRoundTrips(t *testing.T) {
	d := New().InsertEmbed(Embed{"image": "http://x/y.png"}, nil)
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got Delta
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !got.Equal(d) {
		t.Errorf("round trip = %v, want %v", got.Ops(), d.Ops())
	}
}

func TestJSON_UnmarshalNormalizesViaPush(t *testing.T) {
	raw := `{"ops":[{"insert":"a"},{"insert":"b"},{"retain":0}]}`
	var got Delta
	if err := json.Unmarshal([]byte(raw), &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := New().Insert("ab", nil)
	if !got.Equal(want) {
		t.Errorf("unmarshal normalized = %v, want %v", got.Ops(), want.Ops())
	}
}

func TestJSON_MalformedOpMissingKind(t *testing.T) {
	raw := `{"ops":[{"attributes":{"bold":true}}]}`
	var got Delta
	if err := json.Unmarshal([]byte(raw), &got); !errors.Is(err, ErrMalformedOp) {
		t.Errorf("expected ErrMalformedOp, got %v", err)
	}
}

func TestJSON_MalformedOpMultipleKinds(t *testing.T) {
	raw := `{"ops":[{"insert":"a","delete":1}]}`
	var got Delta
	if err := json.Unmarshal([]byte(raw), &got); !errors.Is(err, ErrMalformedOp) {
		t.Errorf("expected ErrMalformedOp, got %v", err)
	}
}

func TestJSON_MalformedEmbedNotSingleKey(t *testing.T) {
	raw := `{"ops":[{"insert":{"image":"x","caption":"y"}}]}`
	var got Delta
	if err := json.Unmarshal([]byte(raw), &got); !errors.Is(err, ErrMalformedOp) {
		t.Errorf("expected ErrMalformedOp for multi-key embed, got %v", err)
	}
}

func TestJSON_NegativeRetainIsMalformed(t *testing.T) {
	raw := `{"ops":[{"retain":-5}]}`
	var got Delta
	if err := json.Unmarshal([]byte(raw), &got); !errors.Is(err, ErrMalformedOp) {
		t.Errorf("expected ErrMalformedOp for negative retain, got %v", err)
	}
}

func TestJSON_NegativeDeleteIsMalformed(t *testing.T) {
	raw := `{"ops":[{"delete":-1}]}`
	var got Delta
	if err := json.Unmarshal([]byte(raw), &got); !errors.Is(err, ErrMalformedOp) {
		t.Errorf("expected ErrMalformedOp for negative delete, got %v", err)
	}
}

func TestJSON_ZeroRetainIsSilentNoop(t *testing.T) {
	raw := `{"ops":[{"insert":"a"},{"retain":0}]}`
	var got Delta
	if err := json.Unmarshal([]byte(raw), &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := New().Insert("a", nil)
	if !got.Equal(want) {
		t.Errorf("unmarshal = %v, want %v", got.Ops(), want.Ops())
	}
}

func TestJSON_RetainEmbedDecodes(t *testing.T) {
	raw := `{"ops":[{"retain":{"counter":3}}]}`
	var got Delta
	if err := json.Unmarshal([]byte(raw), &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := New().RetainEmbed(Embed{"counter": float64(3)}, nil)
	if !got.Equal(want) {
		t.Errorf("unmarshal = %v, want %v", got.Ops(), want.Ops())
	}
}
