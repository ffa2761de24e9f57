package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"winkclass/internal/app"
	"winkclass/internal/model"
	"winkclass/internal/transport/http/response"
	"winkclass/internal/vectorstore"
)

type FileHandler struct {
	instructorService *app.InstructorService
	documentService   *app.DocumentService
}

func NewFileHandler(instructorService *app.InstructorService, documentService *app.DocumentService) *FileHandler {
	return &FileHandler{
		instructorService: instructorService,
		documentService:   documentService,
	}
}

// Upload accepts one or many multipart files under the "files" field and
// attaches each to the caller's private vector store. Per-file failures are
// reported alongside the successes.
func (h *FileHandler) Upload(c *gin.Context) {
	instructor, ok := h.currentInstructor(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid multipart form")
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "no files selected")
		return
	}

	uploads := make([]app.FileUpload, 0, len(headers))
	opened := make([]interface{ Close() error }, 0, len(headers))
	defer func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}()
	for _, header := range headers {
		f, openErr := header.Open()
		if openErr != nil {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "read uploaded file failed")
			return
		}
		opened = append(opened, f)
		uploads = append(uploads, app.FileUpload{
			Filename: header.Filename,
			Size:     header.Size,
			Reader:   f,
		})
	}

	result, err := h.documentService.AttachAll(c.Request.Context(), instructor, uploads)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNoFiles), errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "upload failed")
		}
		return
	}

	response.OK(c, gin.H{
		"attached_count": len(result.Attached),
		"attached":       result.Attached,
		"errors":         result.Errors,
	})
}

func (h *FileHandler) List(c *gin.Context) {
	instructor, ok := h.currentInstructor(c)
	if !ok {
		return
	}

	files, err := h.documentService.ListVisible(instructor.ID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list files failed")
		return
	}
	response.OK(c, files)
}

func (h *FileHandler) Delete(c *gin.Context) {
	instructor, ok := h.currentInstructor(c)
	if !ok {
		return
	}

	fileID := c.Param("file_id")
	if err := h.documentService.Detach(c.Request.Context(), instructor, fileID); err != nil {
		var svcErr *vectorstore.ServiceError
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.As(err, &svcErr):
			response.Error(c, http.StatusBadGateway, response.CodeRemoteServiceFailed, "the document index rejected the delete; the file was kept")
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete file failed")
		}
		return
	}

	response.OK(c, gin.H{"deleted_file_id": fileID})
}

func (h *FileHandler) currentInstructor(c *gin.Context) (*model.Instructor, bool) {
	instructorID, ok := getInstructorIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return nil, false
	}

	instructor, err := h.instructorService.GetByID(instructorID)
	if err != nil || instructor == nil {
		response.Error(c, http.StatusNotFound, response.CodeInstructorNotFound, "instructor not found")
		return nil, false
	}
	return instructor, true
}
