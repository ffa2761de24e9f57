package app

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"winkclass/internal/ai"
	"winkclass/internal/model"
	"winkclass/internal/vectorstore"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&model.Instructor{}, &model.InstructorFile{}, &model.AuditEvent{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return db
}

// fakeIndexCreator provisions vector store ids without a network.
type fakeIndexCreator struct {
	fail    bool
	created []string
	nextID  int
}

func (f *fakeIndexCreator) CreateVectorStore(ctx context.Context, name string) (string, error) {
	if f.fail {
		return "", &vectorstore.ServiceError{Status: 500, Message: "boom"}
	}
	f.nextID++
	f.created = append(f.created, name)
	return fmt.Sprintf("vs_%d", f.nextID), nil
}

// fakeIndexClient is an in-memory remote index: attachments per store,
// plus switches to force failures at each step.
type fakeIndexClient struct {
	fakeIndexCreator

	uploadErr   error
	attachErr   error
	removeErr   error
	listErr     error
	metadataErr error

	uploadedNames []string
	nextFile      int
	attachments   map[string][]vectorstore.StoreFile
	metadata      map[string]string
}

func newFakeIndexClient() *fakeIndexClient {
	return &fakeIndexClient{
		attachments: make(map[string][]vectorstore.StoreFile),
		metadata:    make(map[string]string),
	}
}

func (f *fakeIndexClient) UploadFile(ctx context.Context, path, filename string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.nextFile++
	f.uploadedNames = append(f.uploadedNames, filename)
	id := fmt.Sprintf("file_%d", f.nextFile)
	f.metadata[id] = filename
	return id, nil
}

func (f *fakeIndexClient) AddFile(ctx context.Context, storeID, fileID string) error {
	if f.attachErr != nil {
		return f.attachErr
	}
	f.attachments[storeID] = append(f.attachments[storeID], vectorstore.StoreFile{
		ID:       fileID,
		Filename: f.metadata[fileID],
	})
	return nil
}

func (f *fakeIndexClient) RemoveFile(ctx context.Context, storeID, fileID string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	kept := f.attachments[storeID][:0]
	for _, entry := range f.attachments[storeID] {
		if entry.ID != fileID {
			kept = append(kept, entry)
		}
	}
	f.attachments[storeID] = kept
	return nil
}

func (f *fakeIndexClient) ListFiles(ctx context.Context, storeID string) ([]vectorstore.StoreFile, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.attachments[storeID], nil
}

func (f *fakeIndexClient) FileMetadata(ctx context.Context, fileID string) (*vectorstore.FileInfo, error) {
	if f.metadataErr != nil {
		return nil, f.metadataErr
	}
	name, ok := f.metadata[fileID]
	if !ok {
		return nil, errors.New("unknown file")
	}
	return &vectorstore.FileInfo{ID: fileID, Filename: name}, nil
}

// fakeAudit records published events.
type fakeAudit struct {
	events []model.AuditEvent
}

func (f *fakeAudit) Publish(ctx context.Context, event model.AuditEvent) error {
	f.events = append(f.events, event)
	return nil
}

// fakeGenerator plays the generation provider.
type fakeGenerator struct {
	resp *ai.Response
	err  error

	gotMessages []ai.ChatMessage
	gotStoreIDs []string
}

func (f *fakeGenerator) Generate(ctx context.Context, cfg ai.ChatConfig, messages []ai.ChatMessage, vectorStoreIDs []string) (*ai.Response, error) {
	f.gotMessages = messages
	f.gotStoreIDs = vectorStoreIDs
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}
