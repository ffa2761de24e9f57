package app

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"winkclass/internal/ai"
	"winkclass/internal/cache"
	"winkclass/internal/model"
	"winkclass/internal/repository"
)

func newChatFixture(t *testing.T, gen Generator) (*ChatService, *model.Instructor) {
	t.Helper()

	db := newTestDB(t)
	repo := repository.NewInstructorRepository(db)
	instructor := &model.Instructor{
		Email:         "prof@school.edu",
		Slug:          "prof",
		VectorStoreID: "vs_prof",
	}
	if err := repo.Create(instructor); err != nil {
		t.Fatalf("seed instructor failed: %v", err)
	}

	composer := NewAnswerComposer(gen, ai.ChatConfig{Model: "test-model"}, "")
	svc := NewChatService(repo, cache.NewMemoryTranscriptStore(), composer, 30)
	return svc, instructor
}

func staticGenerator(reply string) *fakeGenerator {
	return &fakeGenerator{resp: &ai.Response{OutputText: reply}}
}

func TestSendMessage_AppendsBothTurns(t *testing.T) {
	svc, _ := newChatFixture(t, staticGenerator("hello there"))
	ctx := context.Background()

	result, err := svc.SendMessage(ctx, "prof", "", "hi")
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if result.Reply != "hello there" {
		t.Errorf("reply = %q", result.Reply)
	}
	if len(result.Transcript) != 2 {
		t.Fatalf("transcript length = %d, want 2", len(result.Transcript))
	}
	if result.Transcript[0].Role != model.RoleUser || result.Transcript[1].Role != model.RoleAssistant {
		t.Errorf("unexpected roles: %+v", result.Transcript)
	}
}

func TestSendMessage_BlankMessage(t *testing.T) {
	svc, _ := newChatFixture(t, staticGenerator("x"))

	_, err := svc.SendMessage(context.Background(), "prof", "", "   \n\t ")
	if !errors.Is(err, ErrMessageEmpty) {
		t.Errorf("err = %v, want ErrMessageEmpty", err)
	}
}

func TestSendMessage_UnknownSlug(t *testing.T) {
	svc, _ := newChatFixture(t, staticGenerator("x"))

	_, err := svc.SendMessage(context.Background(), "ghost", "", "hi")
	if !errors.Is(err, ErrInstructorNotFound) {
		t.Errorf("err = %v, want ErrInstructorNotFound", err)
	}
}

func TestAppendUserTurn_BlankIsNoOp(t *testing.T) {
	svc, _ := newChatFixture(t, staticGenerator("x"))
	ctx := context.Background()

	if err := svc.AppendUserTurn(ctx, "prof", "", "  "); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	transcript, err := svc.History(ctx, "prof", "")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(transcript) != 0 {
		t.Errorf("transcript length = %d, want 0", len(transcript))
	}
}

func TestTranscript_BoundedAtThirtyTurns(t *testing.T) {
	svc, _ := newChatFixture(t, staticGenerator("ack"))
	ctx := context.Background()

	// 31 user/assistant pairs, 62 turns total.
	for i := 0; i < 31; i++ {
		if _, err := svc.SendMessage(ctx, "prof", "", fmt.Sprintf("question %d", i)); err != nil {
			t.Fatalf("send %d failed: %v", i, err)
		}
	}

	transcript, err := svc.History(ctx, "prof", "")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(transcript) != 30 {
		t.Fatalf("transcript length = %d, want 30", len(transcript))
	}

	// The oldest 32 turns are gone; the newest 30 keep their order, so the
	// first surviving turn is the user turn of pair 16.
	if transcript[0].Role != model.RoleUser || transcript[0].Content != "question 16" {
		t.Errorf("first kept turn = %+v, want user question 16", transcript[0])
	}
	last := transcript[len(transcript)-1]
	if last.Role != model.RoleAssistant {
		t.Errorf("last kept turn role = %q, want assistant", last.Role)
	}
	for i := 0; i < len(transcript)-1; i += 2 {
		if transcript[i].Role != model.RoleUser || transcript[i+1].Role != model.RoleAssistant {
			t.Fatalf("turn order broken at %d: %+v", i, transcript[i:i+2])
		}
	}
}

func TestTranscript_BoundAfterEachAppend(t *testing.T) {
	svc, _ := newChatFixture(t, staticGenerator("ack"))
	ctx := context.Background()

	for i := 0; i < 40; i++ {
		if err := svc.AppendUserTurn(ctx, "prof", "", fmt.Sprintf("m%d", i)); err != nil {
			t.Fatalf("append %d failed: %v", i, err)
		}
		transcript, err := svc.History(ctx, "prof", "")
		if err != nil {
			t.Fatalf("history failed: %v", err)
		}
		want := i + 1
		if want > 30 {
			want = 30
		}
		if len(transcript) != want {
			t.Fatalf("after %d appends length = %d, want %d", i+1, len(transcript), want)
		}
	}
}

func TestReset_ClearsTranscript(t *testing.T) {
	svc, _ := newChatFixture(t, staticGenerator("ack"))
	ctx := context.Background()

	if _, err := svc.SendMessage(ctx, "prof", "", "hi"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if err := svc.Reset(ctx, "prof", ""); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	transcript, err := svc.History(ctx, "prof", "")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(transcript) != 0 {
		t.Errorf("transcript length after reset = %d, want 0", len(transcript))
	}
}

func TestTranscript_SessionKeysAreIndependent(t *testing.T) {
	svc, _ := newChatFixture(t, staticGenerator("ack"))
	ctx := context.Background()

	if _, err := svc.SendMessage(ctx, "prof", "student-1", "hi from one"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if _, err := svc.SendMessage(ctx, "prof", "student-2", "hi from two"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if err := svc.Reset(ctx, "prof", "student-1"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	one, _ := svc.History(ctx, "prof", "student-1")
	two, _ := svc.History(ctx, "prof", "student-2")
	if len(one) != 0 {
		t.Errorf("student-1 transcript = %d turns, want 0", len(one))
	}
	if len(two) != 2 {
		t.Errorf("student-2 transcript = %d turns, want 2", len(two))
	}
}
