package app

import (
	"context"
	"errors"
	"testing"

	"winkclass/internal/ai"
	"winkclass/internal/model"
)

func TestCompose_PromptSkipsBlankAndForeignRoles(t *testing.T) {
	gen := staticGenerator("ok")
	composer := NewAnswerComposer(gen, ai.ChatConfig{Model: "m"}, "")

	transcript := []model.Turn{
		{Role: model.RoleUser, Content: "first"},
		{Role: "system", Content: "should be dropped"},
		{Role: model.RoleAssistant, Content: "   "},
		{Role: model.RoleAssistant, Content: "second"},
	}
	composer.Compose(context.Background(), &model.Instructor{}, transcript)

	if len(gen.gotMessages) != 3 {
		t.Fatalf("prompt length = %d, want 3 (system + 2 kept turns)", len(gen.gotMessages))
	}
	if gen.gotMessages[0].Role != "system" {
		t.Errorf("first message role = %q, want system", gen.gotMessages[0].Role)
	}
	if gen.gotMessages[1].Content != "first" || gen.gotMessages[2].Content != "second" {
		t.Errorf("kept turns wrong: %+v", gen.gotMessages[1:])
	}
}

func TestCompose_RetrievalScope(t *testing.T) {
	tests := []struct {
		name       string
		instructor *model.Instructor
		commonID   string
		want       int
	}{
		{"private and common", &model.Instructor{VectorStoreID: "vs_a"}, "vs_common", 2},
		{"private only", &model.Instructor{VectorStoreID: "vs_a"}, "", 1},
		{"common only", &model.Instructor{}, "vs_common", 1},
		{"neither", &model.Instructor{}, "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := staticGenerator("ok")
			composer := NewAnswerComposer(gen, ai.ChatConfig{Model: "m"}, tt.commonID)

			composer.Compose(context.Background(), tt.instructor, []model.Turn{
				{Role: model.RoleUser, Content: "q"},
			})
			if len(gen.gotStoreIDs) != tt.want {
				t.Errorf("scope = %v, want %d ids", gen.gotStoreIDs, tt.want)
			}
		})
	}
}

func TestCompose_StructuredOutputExtraction(t *testing.T) {
	gen := &fakeGenerator{resp: &ai.Response{
		Output: []ai.OutputItem{
			{Type: "message", Content: []ai.ContentItem{
				{Type: "output_text", Text: "part one "},
				{Type: "output_text", Text: "part two"},
			}},
		},
	}}
	composer := NewAnswerComposer(gen, ai.ChatConfig{Model: "m"}, "")

	got := composer.Compose(context.Background(), &model.Instructor{}, nil)
	if got != "part one part two" {
		t.Errorf("answer = %q", got)
	}
}

func TestCompose_NeverReturnsEmpty(t *testing.T) {
	tests := []struct {
		name string
		gen  *fakeGenerator
	}{
		{"empty convenience text", &fakeGenerator{resp: &ai.Response{OutputText: "   "}}},
		{"empty structured output", &fakeGenerator{resp: &ai.Response{Output: []ai.OutputItem{}}}},
		{"provider failure", &fakeGenerator{err: errors.New("quota exceeded")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			composer := NewAnswerComposer(tt.gen, ai.ChatConfig{Model: "m"}, "")
			got := composer.Compose(context.Background(), &model.Instructor{}, []model.Turn{
				{Role: model.RoleUser, Content: "q"},
			})
			if got == "" {
				t.Error("Compose returned an empty answer")
			}
		})
	}
}

func TestCompose_ProviderFailureIsAMessageNotAnError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("connection refused")}
	composer := NewAnswerComposer(gen, ai.ChatConfig{Model: "m"}, "")

	got := composer.Compose(context.Background(), &model.Instructor{}, nil)
	if got != providerFailureAnswer {
		t.Errorf("answer = %q, want the provider failure message", got)
	}
}
