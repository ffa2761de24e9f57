package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"winkclass/internal/app"
	"winkclass/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
}

type SendMessageRequest struct {
	SessionKey string `json:"session_key" binding:"max=128"`
	Message    string `json:"message" binding:"required"`
}

type ResetRequest struct {
	SessionKey string `json:"session_key" binding:"max=128"`
}

func NewChatHandler(chatService *app.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Send handles one student chat turn against the instructor named by slug.
func (h *ChatHandler) Send(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.chatService.SendMessage(c.Request.Context(), c.Param("slug"), req.SessionKey, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrMessageEmpty), errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrInstructorNotFound):
			response.Error(c, http.StatusNotFound, response.CodeInstructorNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "send message failed")
		}
		return
	}

	response.OK(c, result)
}

func (h *ChatHandler) History(c *gin.Context) {
	transcript, err := h.chatService.History(c.Request.Context(), c.Param("slug"), c.Query("session_key"))
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInstructorNotFound):
			response.Error(c, http.StatusNotFound, response.CodeInstructorNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "get history failed")
		}
		return
	}
	response.OK(c, transcript)
}

func (h *ChatHandler) Reset(c *gin.Context) {
	// body is optional: no session key means the default session
	var req ResetRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.chatService.Reset(c.Request.Context(), c.Param("slug"), req.SessionKey); err != nil {
		switch {
		case errors.Is(err, app.ErrInstructorNotFound):
			response.Error(c, http.StatusNotFound, response.CodeInstructorNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "reset chat failed")
		}
		return
	}
	response.OK(c, gin.H{"reset": true})
}
