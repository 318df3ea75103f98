package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pageza/preflight/backend/internal/middleware"
	"github.com/pageza/preflight/backend/internal/service"
	"github.com/pageza/preflight/backend/internal/types"
)

type CommentHandler struct {
	commentService service.ICommentService
}

func NewCommentHandler(commentService service.ICommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

func (h *CommentHandler) RegisterRoutes(router *gin.RouterGroup, writeLimit gin.HandlerFunc) {
	router.GET("/feedback/:id/comments", h.ListComments)
	router.POST("/feedback/:id/comments", writeLimit, h.CreateComment)
}

// ListComments returns the comment thread oldest first
func (h *CommentHandler) ListComments(c *gin.Context) {
	comments, err := h.commentService.ListComments(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": comments})
}

// CreateComment adds a comment as the session user or the supplied email
func (h *CommentHandler) CreateComment(c *gin.Context) {
	var req types.CreateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.commentService.CreateComment(c.Request.Context(), middleware.GetSession(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": comment})
}
