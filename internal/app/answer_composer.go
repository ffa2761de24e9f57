package app

import (
	"context"
	"log"
	"strings"

	"winkclass/internal/ai"
	"winkclass/internal/model"
)

const (
	systemPrompt = "You are WINK, a friendly teaching assistant. Answer student questions " +
		"using the course materials when they are relevant, and keep answers short and clear."

	emptyAnswerFallback = "I couldn't come up with an answer for that. Could you rephrase your question?"

	providerFailureAnswer = "I'm having trouble reaching the assistant service right now. " +
		"Please try again in a moment."
)

// Generator is the external generation provider.
type Generator interface {
	Generate(ctx context.Context, cfg ai.ChatConfig, messages []ai.ChatMessage, vectorStoreIDs []string) (*ai.Response, error)
}

// AnswerComposer turns a transcript into a single assistant reply. It never
// returns an error and never returns an empty string: a chat surface always
// shows the student something.
type AnswerComposer struct {
	client        Generator
	cfg           ai.ChatConfig
	commonStoreID string
}

func NewAnswerComposer(client Generator, cfg ai.ChatConfig, commonStoreID string) *AnswerComposer {
	return &AnswerComposer{
		client:        client,
		cfg:           cfg,
		commonStoreID: commonStoreID,
	}
}

func (a *AnswerComposer) Compose(ctx context.Context, instructor *model.Instructor, transcript []model.Turn) string {
	messages := buildPromptMessages(transcript)
	storeIDs := a.retrievalScope(instructor)

	resp, err := a.client.Generate(ctx, a.cfg, messages, storeIDs)
	if err != nil {
		log.Printf("answer generation failed: %v", err)
		return providerFailureAnswer
	}

	text := ai.ExtractText(resp)
	if text == "" {
		return emptyAnswerFallback
	}
	return text
}

// retrievalScope collects the vector stores to search: the instructor's
// private store plus the shared one. Either may be absent; with neither the
// model answers from the prompt alone.
func (a *AnswerComposer) retrievalScope(instructor *model.Instructor) []string {
	var ids []string
	if instructor != nil && instructor.VectorStoreID != "" {
		ids = append(ids, instructor.VectorStoreID)
	}
	if a.commonStoreID != "" {
		ids = append(ids, a.commonStoreID)
	}
	return ids
}

// buildPromptMessages maps the transcript onto the provider's message list,
// keeping only user/assistant turns with real content.
func buildPromptMessages(transcript []model.Turn) []ai.ChatMessage {
	messages := make([]ai.ChatMessage, 0, len(transcript)+1)
	messages = append(messages, ai.ChatMessage{
		Role:    "system",
		Content: systemPrompt,
	})
	for _, turn := range transcript {
		if turn.Role != model.RoleUser && turn.Role != model.RoleAssistant {
			continue
		}
		content := strings.TrimSpace(turn.Content)
		if content == "" {
			continue
		}
		messages = append(messages, ai.ChatMessage{
			Role:    turn.Role,
			Content: content,
		})
	}
	return messages
}
