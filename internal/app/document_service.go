package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"winkclass/internal/model"
	"winkclass/internal/pkg/pdfextract"
	"winkclass/internal/repository"
	"winkclass/internal/vectorstore"
)

const previewMaxRunes = 280

var (
	ErrNoFiles      = errors.New("no files provided")
	ErrFileTooLarge = errors.New("file exceeds the upload size limit")
)

// IndexClient is the slice of the remote index surface the attachment
// workflow needs.
type IndexClient interface {
	UploadFile(ctx context.Context, path, filename string) (string, error)
	AddFile(ctx context.Context, storeID, fileID string) error
	RemoveFile(ctx context.Context, storeID, fileID string) error
	ListFiles(ctx context.Context, storeID string) ([]vectorstore.StoreFile, error)
	FileMetadata(ctx context.Context, fileID string) (*vectorstore.FileInfo, error)
}

type DocumentService struct {
	fileRepo       *repository.InstructorFileRepository
	indexes        IndexClient
	audit          AuditEventPublisher
	uploadDir      string
	maxUploadBytes int64
	commonStoreID  string
}

type FileUpload struct {
	Filename string
	Size     int64
	Reader   io.Reader
}

type FileError struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

type AttachBatchResult struct {
	Attached []model.InstructorFile `json:"attached"`
	Errors   []FileError            `json:"errors,omitempty"`
}

func NewDocumentService(
	fileRepo *repository.InstructorFileRepository,
	indexes IndexClient,
	audit AuditEventPublisher,
	uploadDir string,
	maxUploadMB int,
	commonStoreID string,
) *DocumentService {
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	if maxUploadMB <= 0 {
		maxUploadMB = 25
	}
	return &DocumentService{
		fileRepo:       fileRepo,
		indexes:        indexes,
		audit:          audit,
		uploadDir:      uploadDir,
		maxUploadBytes: int64(maxUploadMB) << 20,
		commonStoreID:  commonStoreID,
	}
}

// Attach runs the full upload pipeline for one file: sanitize the name,
// spool the bytes to a temp file, upload, attach to the instructor's store,
// and only then persist the local record. The temp file is removed no
// matter how far the pipeline got.
func (s *DocumentService) Attach(ctx context.Context, instructor *model.Instructor, upload FileUpload) (*model.InstructorFile, error) {
	if instructor == nil || upload.Reader == nil {
		return nil, ErrInvalidInput
	}
	if upload.Size > s.maxUploadBytes {
		return nil, ErrFileTooLarge
	}
	filename := sanitizeFilename(upload.Filename)

	tempPath, err := s.spoolToTemp(upload.Reader)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tempPath)

	fileID, err := s.indexes.UploadFile(ctx, tempPath, filename)
	if err != nil {
		return nil, fmt.Errorf("upload %q failed: %w", filename, err)
	}
	if err := s.indexes.AddFile(ctx, instructor.VectorStoreID, fileID); err != nil {
		return nil, fmt.Errorf("attach %q to vector store failed: %w", filename, err)
	}

	record := &model.InstructorFile{
		InstructorID: instructor.ID,
		FileID:       fileID,
		Filename:     filename,
		Preview:      extractPreview(tempPath, filename),
		UploadedAt:   time.Now(),
	}
	if err := s.fileRepo.Create(record); err != nil {
		return nil, err
	}

	if s.audit != nil {
		_ = s.audit.Publish(ctx, model.AuditEvent{
			Action:       model.AuditDocumentAttached,
			InstructorID: instructor.ID,
			FileID:       fileID,
			Filename:     filename,
		})
	}
	return record, nil
}

// AttachAll processes each upload independently. One failed file does not
// abort the rest; the caller gets every success plus one error per failure.
func (s *DocumentService) AttachAll(ctx context.Context, instructor *model.Instructor, uploads []FileUpload) (*AttachBatchResult, error) {
	if instructor == nil {
		return nil, ErrInvalidInput
	}
	if len(uploads) == 0 {
		return nil, ErrNoFiles
	}

	result := &AttachBatchResult{}
	for _, upload := range uploads {
		record, err := s.Attach(ctx, instructor, upload)
		if err != nil {
			result.Errors = append(result.Errors, FileError{
				Filename: sanitizeFilename(upload.Filename),
				Error:    err.Error(),
			})
			continue
		}
		result.Attached = append(result.Attached, *record)
	}
	return result, nil
}

// Detach removes the file from the instructor's vector store and then
// deletes the local record. The remote side is detached first: a local row
// must never outlive its remote attachment, so on remote failure the row is
// kept and the error surfaced. A missing local row still triggers the
// remote detach, since the remote index decides what the assistant sees.
func (s *DocumentService) Detach(ctx context.Context, instructor *model.Instructor, fileID string) error {
	if instructor == nil || strings.TrimSpace(fileID) == "" {
		return ErrInvalidInput
	}

	record, err := s.fileRepo.GetByFileID(instructor.ID, fileID)
	if err != nil {
		return err
	}

	if err := s.indexes.RemoveFile(ctx, instructor.VectorStoreID, fileID); err != nil {
		return fmt.Errorf("detach file from vector store failed: %w", err)
	}

	if record != nil {
		if err := s.fileRepo.DeleteByFileID(instructor.ID, fileID); err != nil {
			return err
		}
	}

	if s.audit != nil {
		filename := ""
		if record != nil {
			filename = record.Filename
		}
		_ = s.audit.Publish(ctx, model.AuditEvent{
			Action:       model.AuditDocumentDetached,
			InstructorID: instructor.ID,
			FileID:       fileID,
			Filename:     filename,
		})
	}
	return nil
}

func (s *DocumentService) ListVisible(instructorID uint) ([]model.InstructorFile, error) {
	if instructorID == 0 {
		return nil, ErrInvalidInput
	}
	return s.fileRepo.ListByInstructorID(instructorID)
}

// ListCommonFilenames lists the shared store's filenames for display. It is
// advisory: an unconfigured store or any remote failure yields an empty
// list, never an error. Entries whose filename cannot be resolved (listing
// omits it and the per-file metadata lookup fails too) are skipped.
func (s *DocumentService) ListCommonFilenames(ctx context.Context) []string {
	if s.commonStoreID == "" {
		return nil
	}

	entries, err := s.indexes.ListFiles(ctx, s.commonStoreID)
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var names []string
	for _, entry := range entries {
		name := entry.Filename
		if name == "" {
			id := entry.ID
			if id == "" {
				id = entry.FileID
			}
			if id == "" {
				continue
			}
			meta, metaErr := s.indexes.FileMetadata(ctx, id)
			if metaErr != nil || meta == nil {
				continue
			}
			name = meta.Filename
		}
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *DocumentService) spoolToTemp(r io.Reader) (string, error) {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir failed: %w", err)
	}

	tempPath := filepath.Join(s.uploadDir, "up-"+uuid.NewString())
	f, err := os.Create(tempPath)
	if err != nil {
		return "", fmt.Errorf("create temp upload failed: %w", err)
	}

	_, copyErr := io.Copy(f, io.LimitReader(r, s.maxUploadBytes+1))
	closeErr := f.Close()
	if copyErr != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("write temp upload failed: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("close temp upload failed: %w", closeErr)
	}

	info, err := os.Stat(tempPath)
	if err == nil && info.Size() > s.maxUploadBytes {
		os.Remove(tempPath)
		return "", ErrFileTooLarge
	}
	return tempPath, nil
}

// sanitizeFilename strips directories and control characters from a
// client-supplied name. The remote client receives only the result.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)

	var b strings.Builder
	for _, r := range name {
		if unicode.IsControl(r) || r == '/' || r == '\\' {
			continue
		}
		b.WriteRune(r)
	}
	cleaned := strings.TrimSpace(b.String())
	if cleaned == "" || cleaned == "." || cleaned == ".." {
		return "upload"
	}
	return cleaned
}

// extractPreview pulls a short plain-text snippet out of PDF uploads for
// the file manager. Extraction failures are ignored.
func extractPreview(path, filename string) string {
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return ""
	}
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	preview, err := pdfextract.ExtractPreview(f, previewMaxRunes)
	if err != nil {
		return ""
	}
	return preview
}
