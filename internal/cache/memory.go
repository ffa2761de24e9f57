package cache

import (
	"context"
	"fmt"
	"sync"

	"winkclass/internal/model"
)

// MemoryTranscriptStore is the in-process transcript backend, used when no
// Redis is configured and in tests. Copies in and out keep callers from
// mutating stored slices.
type MemoryTranscriptStore struct {
	mu          sync.Mutex
	transcripts map[string][]model.Turn
}

func NewMemoryTranscriptStore() *MemoryTranscriptStore {
	return &MemoryTranscriptStore{
		transcripts: make(map[string][]model.Turn),
	}
}

func (s *MemoryTranscriptStore) Get(ctx context.Context, instructorID uint, sessionKey string) ([]model.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns, ok := s.transcripts[memoryKey(instructorID, sessionKey)]
	if !ok {
		return nil, nil
	}
	out := make([]model.Turn, len(turns))
	copy(out, turns)
	return out, nil
}

func (s *MemoryTranscriptStore) Set(ctx context.Context, instructorID uint, sessionKey string, turns []model.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]model.Turn, len(turns))
	copy(stored, turns)
	s.transcripts[memoryKey(instructorID, sessionKey)] = stored
	return nil
}

func (s *MemoryTranscriptStore) Delete(ctx context.Context, instructorID uint, sessionKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.transcripts, memoryKey(instructorID, sessionKey))
	return nil
}

func memoryKey(instructorID uint, sessionKey string) string {
	return fmt.Sprintf("%d:%s", instructorID, sessionKey)
}
