package delta

import "testing"

func mustCompose(t *testing.T, a, b *Delta) *Delta {
	t.Helper()
	got, err := Compose(a, b, nil)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	return got
}

func TestCompose_InsertsMerge(t *testing.T) {
	a := New().Insert("Hello", nil)
	b := New().Retain(5, nil).Insert(" World", nil)
	got := mustCompose(t, a, b)
	want := New().Insert("Hello World", nil)
	if !got.Equal(want) {
		t.Errorf("compose = %v, want %v", got.Ops(), want.Ops())
	}
}

func TestCompose_DeleteRemovesInsertedText(t *testing.T) {
	a := New().Insert("Hello World", nil)
	b := New().Retain(5, nil).Delete(6)
	got := mustCompose(t, a, b)
	want := New().Insert("Hello", nil)
	if !got.Equal(want) {
		t.Errorf("compose = %v, want %v", got.Ops(), want.Ops())
	}
}

func TestCompose_RetainWithAttributesFormats(t *testing.T) {
	a := New().Insert("Hello", nil)
	b := New().Retain(5, Attrs{"bold": true})
	got := mustCompose(t, a, b)
	want := New().Insert("Hello", Attrs{"bold": true})
	if !got.Equal(want) {
		t.Errorf("compose = %v, want %v", got.Ops(), want.Ops())
	}
}

func TestCompose_AttributeCompositionOnInsert(t *testing.T) {
	a := New().Insert("Hello", Attrs{"bold": true})
	b := New().Retain(5, Attrs{"color": "red"})
	got := mustCompose(t, a, b)
	want := New().Insert("Hello", Attrs{"bold": true, "color": "red"})
	if !got.Equal(want) {
		t.Errorf("compose = %v, want %v", got.Ops(), want.Ops())
	}
}

func TestCompose_AttributeRemovalViaNull(t *testing.T) {
	a := New().Insert("Hello", Attrs{"bold": true})
	b := New().Retain(5, Attrs{"bold": nil})
	got := mustCompose(t, a, b)
	if len(got.Ops()) != 1 || got.Ops()[0].Attrs != nil {
		t.Errorf("expected bold to be stripped, got %v", got.Ops())
	}
}

func TestCompose_InsertThenDeleteCancels(t *testing.T) {
	a := New().Insert("X", nil)
	b := New().Delete(1)
	got := mustCompose(t, a, b)
	if len(got.Ops()) != 0 {
		t.Errorf("expected insert-then-delete to cancel, got %v", got.Ops())
	}
}

func TestCompose_TrailingRetainIsChopped(t *testing.T) {
	a := New().Insert("Hello", nil)
	b := New().Retain(5, nil)
	got := mustCompose(t, a, b)
	want := New().Insert("Hello", nil)
	if !got.Equal(want) {
		t.Errorf("compose = %v, want %v", got.Ops(), want.Ops())
	}
}

func TestCompose_EmbedRetainWithHandler(t *testing.T) {
	reg := NewRegistry()
	reg.Register("counter", counterHandler{})
	a := New().RetainEmbed(Embed{"counter": 1.0}, nil).Retain(3, nil)
	b := New().RetainEmbed(Embed{"counter": 4.0}, nil)
	got, err := Compose(a, b, reg)
	if err != nil {
		t.Fatal(err)
	}
	want := New().RetainEmbed(Embed{"counter": 5.0}, nil)
	if !got.Equal(want) {
		t.Errorf("compose = %v, want %v", got.Ops(), want.Ops())
	}
}

func TestCompose_PlainRetainAgainstEmbedRetainKeepsBEmbed(t *testing.T) {
	a := New().Retain(1, nil)
	b := New().RetainEmbed(Embed{"image": "http://x"}, nil)
	got := mustCompose(t, a, b)
	want := New().RetainEmbed(Embed{"image": "http://x"}, nil)
	if !got.Equal(want) {
		t.Errorf("compose = %v, want %v", got.Ops(), want.Ops())
	}
}

// counterHandler treats an embed payload as a running numeric total,
// used to exercise the Registry hook in tests.
type counterHandler struct{}

func (counterHandler) Compose(a, b any, keepNull bool) (any, error) {
	return a.(float64) + b.(float64), nil
}

func (counterHandler) Transform(a, b any, priority bool) (any, error) {
	if priority {
		return a, nil
	}
	return b, nil
}

func (counterHandler) Invert(a, base any) (any, error) {
	return base, nil
}
