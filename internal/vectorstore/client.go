package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"
)

// ErrNoAPIKey is returned before any network call when the client has no
// credential to attach.
var ErrNoAPIKey = errors.New("vector store api key is not set")

// ServiceError carries the HTTP status the remote index service answered
// with. Callers classify on Status; there is no retry behind it.
type ServiceError struct {
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("vector store service status %d: %s", e.Status, e.Message)
}

// NotFound reports whether err is a ServiceError for a missing resource.
func NotFound(err error) bool {
	var svcErr *ServiceError
	return errors.As(err, &svcErr) && svcErr.Status == http.StatusNotFound
}

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// StoreFile is one entry of a vector store listing. Filename may be empty;
// the service does not always include it.
type StoreFile struct {
	ID       string `json:"id"`
	FileID   string `json:"file_id"`
	Filename string `json:"filename"`
}

type FileInfo struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
}

// Client is a stateless adapter for the hosted vector-store service.
// Every call is a single blocking HTTP request bounded by the configured
// timeout.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// CreateVectorStore creates a new store and returns its identifier.
func (c *Client) CreateVectorStore(ctx context.Context, name string) (string, error) {
	var parsed struct {
		ID string `json:"id"`
	}
	body := map[string]interface{}{"name": name}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/vector_stores", body, &parsed); err != nil {
		return "", err
	}
	if parsed.ID == "" {
		return "", &ServiceError{Status: http.StatusBadGateway, Message: "create vector store returned no id"}
	}
	return parsed.ID, nil
}

// UploadFile uploads the file at path under the given filename and returns
// the remote file identifier. The filename is passed through opaque: the
// caller sanitizes it first.
func (c *Client) UploadFile(ctx context.Context, path, filename string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", ErrNoAPIKey
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open upload file failed: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("build multipart form failed: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("copy upload bytes failed: %w", err)
	}
	if err := writer.WriteField("purpose", "assistants"); err != nil {
		return "", fmt.Errorf("write purpose field failed: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart form failed: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/v1/files"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return "", fmt.Errorf("build upload request failed: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read upload response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", &ServiceError{Status: resp.StatusCode, Message: string(raw)}
	}

	var parsed struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse upload response failed: %w", err)
	}
	if parsed.ID == "" {
		return "", &ServiceError{Status: http.StatusBadGateway, Message: "upload returned no file id"}
	}
	return parsed.ID, nil
}

// AddFile attaches a file to a vector store. Attaching a file that is
// already attached succeeds the same way a fresh attach does.
func (c *Client) AddFile(ctx context.Context, storeID, fileID string) error {
	path := fmt.Sprintf("/v1/vector_stores/%s/file_batches", storeID)
	body := map[string]interface{}{"file_ids": []string{fileID}}
	return c.doJSON(ctx, http.MethodPost, path, body, nil)
}

// RemoveFile detaches a file from a vector store. A missing attachment is
// treated as success: the desired end state already holds.
func (c *Client) RemoveFile(ctx context.Context, storeID, fileID string) error {
	path := fmt.Sprintf("/v1/vector_stores/%s/files/%s", storeID, fileID)
	err := c.doJSON(ctx, http.MethodDelete, path, nil, nil)
	if err != nil && NotFound(err) {
		return nil
	}
	return err
}

// ListFiles returns the files attached to a vector store.
func (c *Client) ListFiles(ctx context.Context, storeID string) ([]StoreFile, error) {
	var parsed struct {
		Data []StoreFile `json:"data"`
	}
	path := fmt.Sprintf("/v1/vector_stores/%s/files?limit=100", storeID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &parsed); err != nil {
		return nil, err
	}
	return parsed.Data, nil
}

// FileMetadata looks up a file by id. Used as a best-effort fallback when a
// listing entry carries no filename.
func (c *Client) FileMetadata(ctx context.Context, fileID string) (*FileInfo, error) {
	var parsed FileInfo
	if err := c.doJSON(ctx, http.MethodGet, "/v1/files/"+fileID, nil, &parsed); err != nil {
		return nil, err
	}
	return &parsed, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	if c.cfg.APIKey == "" {
		return ErrNoAPIKey
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body failed: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build request failed: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("OpenAI-Beta", "assistants=v2")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("vector store request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read vector store response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return &ServiceError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse vector store response failed: %w", err)
	}
	return nil
}
