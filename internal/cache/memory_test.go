package cache

import (
	"context"
	"testing"

	"winkclass/internal/model"
)

func TestMemoryTranscriptStore_RoundTrip(t *testing.T) {
	store := NewMemoryTranscriptStore()
	ctx := context.Background()

	turns, err := store.Get(ctx, 1, "default")
	if err != nil || turns != nil {
		t.Fatalf("empty store Get = %v, %v", turns, err)
	}

	want := []model.Turn{
		{Role: model.RoleUser, Content: "hi"},
		{Role: model.RoleAssistant, Content: "hello"},
	}
	if err := store.Set(ctx, 1, "default", want); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := store.Get(ctx, 1, "default")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got) != 2 || got[0].Content != "hi" || got[1].Content != "hello" {
		t.Errorf("transcript = %+v", got)
	}
}

func TestMemoryTranscriptStore_KeysAreIsolated(t *testing.T) {
	store := NewMemoryTranscriptStore()
	ctx := context.Background()

	store.Set(ctx, 1, "a", []model.Turn{{Role: model.RoleUser, Content: "one"}})
	store.Set(ctx, 2, "a", []model.Turn{{Role: model.RoleUser, Content: "two"}})

	got, _ := store.Get(ctx, 1, "a")
	if len(got) != 1 || got[0].Content != "one" {
		t.Errorf("instructor 1 transcript = %+v", got)
	}
	if got, _ := store.Get(ctx, 1, "b"); got != nil {
		t.Errorf("unknown session transcript = %+v", got)
	}
}

func TestMemoryTranscriptStore_CallersCannotMutateStoredState(t *testing.T) {
	store := NewMemoryTranscriptStore()
	ctx := context.Background()

	input := []model.Turn{{Role: model.RoleUser, Content: "original"}}
	store.Set(ctx, 1, "default", input)
	input[0].Content = "mutated after set"

	got, _ := store.Get(ctx, 1, "default")
	if got[0].Content != "original" {
		t.Fatalf("stored turn = %q, caller mutation leaked in", got[0].Content)
	}

	got[0].Content = "mutated after get"
	again, _ := store.Get(ctx, 1, "default")
	if again[0].Content != "original" {
		t.Fatalf("stored turn = %q, returned slice aliases storage", again[0].Content)
	}
}

func TestMemoryTranscriptStore_Delete(t *testing.T) {
	store := NewMemoryTranscriptStore()
	ctx := context.Background()

	store.Set(ctx, 1, "default", []model.Turn{{Role: model.RoleUser, Content: "x"}})
	if err := store.Delete(ctx, 1, "default"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if got, _ := store.Get(ctx, 1, "default"); got != nil {
		t.Errorf("transcript after delete = %+v", got)
	}

	if err := store.Delete(ctx, 9, "missing"); err != nil {
		t.Errorf("deleting a missing key failed: %v", err)
	}
}
