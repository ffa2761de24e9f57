package app

import (
	"context"
	"errors"
	"strings"

	"winkclass/internal/model"
	"winkclass/internal/repository"
)

const defaultSessionKey = "default"

var ErrMessageEmpty = errors.New("message content is empty")

// TranscriptStore keeps the bounded per-(instructor, student session)
// transcript. Backends are pluggable: Redis in production, an in-memory
// map in tests and redis-less deployments.
type TranscriptStore interface {
	Get(ctx context.Context, instructorID uint, sessionKey string) ([]model.Turn, error)
	Set(ctx context.Context, instructorID uint, sessionKey string, turns []model.Turn) error
	Delete(ctx context.Context, instructorID uint, sessionKey string) error
}

type ChatService struct {
	instructorRepo *repository.InstructorRepository
	transcripts    TranscriptStore
	composer       *AnswerComposer
	maxTurns       int
}

type ChatResult struct {
	Reply      string       `json:"reply"`
	Transcript []model.Turn `json:"transcript"`
}

func NewChatService(
	instructorRepo *repository.InstructorRepository,
	transcripts TranscriptStore,
	composer *AnswerComposer,
	maxTurns int,
) *ChatService {
	if maxTurns <= 0 {
		maxTurns = 30
	}
	return &ChatService{
		instructorRepo: instructorRepo,
		transcripts:    transcripts,
		composer:       composer,
		maxTurns:       maxTurns,
	}
}

// AppendUserTurn records a student utterance without requesting an answer.
// Blank input is a no-op.
func (s *ChatService) AppendUserTurn(ctx context.Context, slug, sessionKey, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}

	instructor, err := s.resolveInstructor(slug)
	if err != nil {
		return err
	}
	sessionKey = normalizeSessionKey(sessionKey)

	transcript, err := s.transcripts.Get(ctx, instructor.ID, sessionKey)
	if err != nil {
		return err
	}
	transcript = append(transcript, model.Turn{Role: model.RoleUser, Content: content})
	transcript = trimTranscript(transcript, s.maxTurns)
	return s.transcripts.Set(ctx, instructor.ID, sessionKey, transcript)
}

// RequestAnswer composes a reply over the current transcript and appends it
// as an assistant turn.
func (s *ChatService) RequestAnswer(ctx context.Context, slug, sessionKey string) (*ChatResult, error) {
	instructor, err := s.resolveInstructor(slug)
	if err != nil {
		return nil, err
	}
	sessionKey = normalizeSessionKey(sessionKey)

	transcript, err := s.transcripts.Get(ctx, instructor.ID, sessionKey)
	if err != nil {
		return nil, err
	}

	reply := s.composer.Compose(ctx, instructor, transcript)
	transcript = append(transcript, model.Turn{Role: model.RoleAssistant, Content: reply})
	transcript = trimTranscript(transcript, s.maxTurns)
	if err := s.transcripts.Set(ctx, instructor.ID, sessionKey, transcript); err != nil {
		return nil, err
	}

	return &ChatResult{Reply: reply, Transcript: transcript}, nil
}

// SendMessage is the one-shot chat turn: append the student's message, then
// answer it. Unlike AppendUserTurn, a blank message here is a caller error.
func (s *ChatService) SendMessage(ctx context.Context, slug, sessionKey, content string) (*ChatResult, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrMessageEmpty
	}
	if err := s.AppendUserTurn(ctx, slug, sessionKey, content); err != nil {
		return nil, err
	}
	return s.RequestAnswer(ctx, slug, sessionKey)
}

func (s *ChatService) History(ctx context.Context, slug, sessionKey string) ([]model.Turn, error) {
	instructor, err := s.resolveInstructor(slug)
	if err != nil {
		return nil, err
	}
	return s.transcripts.Get(ctx, instructor.ID, normalizeSessionKey(sessionKey))
}

// Reset clears the transcript, returning the session to its empty state.
func (s *ChatService) Reset(ctx context.Context, slug, sessionKey string) error {
	instructor, err := s.resolveInstructor(slug)
	if err != nil {
		return err
	}
	return s.transcripts.Delete(ctx, instructor.ID, normalizeSessionKey(sessionKey))
}

func (s *ChatService) resolveInstructor(slug string) (*model.Instructor, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrInvalidInput
	}
	instructor, err := s.instructorRepo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if instructor == nil {
		return nil, ErrInstructorNotFound
	}
	return instructor, nil
}

func normalizeSessionKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return defaultSessionKey
	}
	return key
}

// trimTranscript drops the oldest turns once the transcript outgrows the
// bound, preserving the order of the kept suffix.
func trimTranscript(turns []model.Turn, max int) []model.Turn {
	if max <= 0 || len(turns) <= max {
		return turns
	}
	return turns[len(turns)-max:]
}
