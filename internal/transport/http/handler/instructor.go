package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"winkclass/internal/app"
	"winkclass/internal/transport/http/middleware"
	"winkclass/internal/transport/http/response"
)

type InstructorHandler struct {
	instructorService *app.InstructorService
	documentService   *app.DocumentService
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Name     string `json:"name" binding:"max=255"`
	Passcode string `json:"passcode" binding:"max=128"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Passcode string `json:"passcode" binding:"max=128"`
}

type UpdateProfileRequest struct {
	Name           *string `json:"name"`
	LeftColumnHTML *string `json:"left_column_html"`
}

func NewInstructorHandler(instructorService *app.InstructorService, documentService *app.DocumentService) *InstructorHandler {
	return &InstructorHandler{
		instructorService: instructorService,
		documentService:   documentService,
	}
}

func (h *InstructorHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.instructorService.Register(c.Request.Context(), app.RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Passcode: req.Passcode,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrEmailExists):
			response.Error(c, http.StatusBadRequest, response.CodeEmailExists, err.Error())
		default:
			response.Error(c, http.StatusBadGateway, response.CodeRemoteServiceFailed, "register failed: could not provision the document index")
		}
		return
	}

	response.OK(c, gin.H{
		"token":      result.Token,
		"instructor": result.Instructor,
	})
}

func (h *InstructorHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.instructorService.Login(app.LoginInput{
		Email:    req.Email,
		Passcode: req.Passcode,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrInstructorNotFound):
			response.Error(c, http.StatusNotFound, response.CodeInstructorNotFound, err.Error())
		case errors.Is(err, app.ErrInvalidPasscode):
			response.Error(c, http.StatusUnauthorized, response.CodeInvalidPasscode, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "login failed")
		}
		return
	}

	response.OK(c, gin.H{
		"token":      result.Token,
		"instructor": result.Instructor,
	})
}

// List is the public instructor directory, newest first.
func (h *InstructorHandler) List(c *gin.Context) {
	instructors, err := h.instructorService.ListAll()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list instructors failed")
		return
	}

	items := make([]gin.H, 0, len(instructors))
	for _, instructor := range instructors {
		items = append(items, gin.H{
			"slug":       instructor.Slug,
			"name":       instructor.Name,
			"created_at": instructor.CreatedAt,
		})
	}
	response.OK(c, items)
}

// Profile is the public page payload for one instructor: presentation HTML
// plus the shared resource filenames (advisory, may be empty).
func (h *InstructorHandler) Profile(c *gin.Context) {
	instructor, err := h.instructorService.GetBySlug(c.Param("slug"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "load instructor failed")
		return
	}
	if instructor == nil {
		response.Error(c, http.StatusNotFound, response.CodeInstructorNotFound, "instructor not found")
		return
	}

	response.OK(c, gin.H{
		"slug":             instructor.Slug,
		"name":             instructor.Name,
		"left_column_html": app.LeftColumn(instructor),
		"common_files":     h.documentService.ListCommonFilenames(c.Request.Context()),
	})
}

func (h *InstructorHandler) Me(c *gin.Context) {
	instructorID, ok := getInstructorIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	instructor, err := h.instructorService.GetByID(instructorID)
	if err != nil || instructor == nil {
		response.Error(c, http.StatusNotFound, response.CodeInstructorNotFound, "instructor not found")
		return
	}
	response.OK(c, instructor)
}

func (h *InstructorHandler) UpdateMe(c *gin.Context) {
	instructorID, ok := getInstructorIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	instructor, err := h.instructorService.UpdateProfile(instructorID, app.UpdateProfileInput{
		Name:           req.Name,
		LeftColumnHTML: req.LeftColumnHTML,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInstructorNotFound):
			response.Error(c, http.StatusNotFound, response.CodeInstructorNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "update profile failed")
		}
		return
	}
	response.OK(c, instructor)
}

// AuditTrail lists the caller's recent index mutations.
func (h *InstructorHandler) AuditTrail(c *gin.Context) {
	instructorID, ok := getInstructorIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	events, err := h.instructorService.AuditTrail(instructorID, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list audit events failed")
		return
	}
	response.OK(c, events)
}

func getInstructorIDFromContext(c *gin.Context) (uint, bool) {
	idAny, exists := c.Get(middleware.ContextInstructorIDKey)
	if !exists {
		return 0, false
	}
	id, ok := idAny.(uint)
	return id, ok
}
