package memory

import (
	"context"
	"testing"
)

func TestBackendRoundtrip(t *testing.T) {
	ctx := context.Background()
	b := New()

	if got, err := b.Get(ctx, "missing"); err != nil || got != nil {
		t.Fatalf("Get(missing) = %v, %v; want nil, nil", got, err)
	}

	if err := b.Set(ctx, "records", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := b.Get(ctx, "records")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != `{"a":1}` {
		t.Errorf("Get() = %s, want %s", got, `{"a":1}`)
	}

	if err := b.Remove(ctx, "records"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if got, _ := b.Get(ctx, "records"); got != nil {
		t.Errorf("Get() after Remove = %s, want nil", got)
	}
}

func TestBackendClear(t *testing.T) {
	ctx := context.Background()
	b := New()

	_ = b.Set(ctx, "a", []byte("1"))
	_ = b.Set(ctx, "b", []byte("2"))

	if err := b.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	for _, key := range []string{"a", "b"} {
		if got, _ := b.Get(ctx, key); got != nil {
			t.Errorf("Get(%q) after Clear = %s, want nil", key, got)
		}
	}
}

func TestBackendCopiesValues(t *testing.T) {
	ctx := context.Background()
	b := New()

	value := []byte("original")
	_ = b.Set(ctx, "k", value)
	value[0] = 'X'

	got, _ := b.Get(ctx, "k")
	if string(got) != "original" {
		t.Errorf("stored value mutated through caller slice: %s", got)
	}
}
