package delta

import "testing"

func TestIterator_PeekAndNextAdvance(t *testing.T) {
	d := New().Insert("Hello", nil).Retain(3, nil)
	it := d.Iterator()

	if got := it.PeekLength(); got != 5 {
		t.Fatalf("PeekLength = %d, want 5", got)
	}
	if got := it.PeekType(); got != KindInsert {
		t.Fatalf("PeekType = %v, want insert", got)
	}

	op := it.Next(3)
	if op.Text != "Hel" {
		t.Errorf("Next(3).Text = %q, want %q", op.Text, "Hel")
	}
	if got := it.PeekLength(); got != 2 {
		t.Errorf("PeekLength after partial Next = %d, want 2", got)
	}

	op = it.Next(0)
	if op.Text != "lo" {
		t.Errorf("Next(0) (take rest) = %q, want %q", op.Text, "lo")
	}

	if got := it.PeekType(); got != KindRetain {
		t.Fatalf("PeekType = %v, want retain", got)
	}
	op = it.Next(10)
	if op.Len != 3 {
		t.Errorf("Next(10) on a 3-length retain = %d, want 3", op.Len)
	}

	if it.HasNext() {
		t.Error("expected iterator to be exhausted")
	}
}

func TestIterator_ExhaustedReportsInfiniteRetain(t *testing.T) {
	it := New().Iterator()
	if it.HasNext() {
		t.Fatal("expected empty delta's iterator to report no next")
	}
	if got := it.PeekType(); got != KindRetain {
		t.Errorf("PeekType on exhausted iterator = %v, want retain", got)
	}
	op := it.Next(5)
	if op.Kind != KindRetain || op.Len < infinity {
		t.Errorf("Next on exhausted iterator = %v, want an infinite retain", op)
	}
}

func TestIterator_NextSplitsSurrogatePairsCorrectly(t *testing.T) {
	d := New().Insert("a\U0001F600b", nil)
	it := d.Iterator()
	first := it.Next(1)
	if first.Text != "a" {
		t.Errorf("first = %q, want %q", first.Text, "a")
	}
	middle := it.Next(2)
	if middle.Text != "\U0001F600" {
		t.Errorf("middle = %q, want the emoji rune", middle.Text)
	}
	last := it.Next(1)
	if last.Text != "b" {
		t.Errorf("last = %q, want %q", last.Text, "b")
	}
}

func TestIterator_NextNeverSplitsAnEmbed(t *testing.T) {
	d := New().InsertEmbed(Embed{"image": "x"}, nil)
	it := d.Iterator()
	op := it.Next(1)
	if op.Embed.Kind() != "image" {
		t.Errorf("expected embed to survive Next(1) whole, got %v", op)
	}
	if it.HasNext() {
		t.Error("expected iterator exhausted after taking the whole embed")
	}
}

func TestIterator_RestDrainsRemainingOps(t *testing.T) {
	d := New().Insert("abc", nil).Retain(2, nil).Delete(1)
	it := d.Iterator()
	it.Next(1)
	rest := it.Rest()
	if len(rest) != 3 {
		t.Fatalf("expected 3 ops from Rest, got %d: %v", len(rest), rest)
	}
	if rest[0].Text != "bc" {
		t.Errorf("first rest op = %q, want %q", rest[0].Text, "bc")
	}
	if it.HasNext() {
		t.Error("expected iterator to be exhausted after Rest")
	}
}

func TestIterator_RestOnExhaustedIsNil(t *testing.T) {
	it := New().Iterator()
	if rest := it.Rest(); rest != nil {
		t.Errorf("expected nil rest for exhausted iterator, got %v", rest)
	}
}
