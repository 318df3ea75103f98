package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pageza/preflight/backend/internal/middleware"
	"github.com/pageza/preflight/backend/internal/service"
	"github.com/pageza/preflight/backend/internal/types"
)

type FeedbackHandler struct {
	feedbackService service.IFeedbackService
}

func NewFeedbackHandler(feedbackService service.IFeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

// RegisterRoutes mounts the feedback routes. writeLimit guards the public writes.
func (h *FeedbackHandler) RegisterRoutes(router *gin.RouterGroup, writeLimit gin.HandlerFunc) {
	feedback := router.Group("/feedback")
	{
		feedback.POST("", writeLimit, h.CreateFeedback)                             // Optional session
		feedback.GET("", h.ListFeedback)                                            // Public
		feedback.GET("/:id", h.GetFeedback)                                         // Public
		feedback.PATCH("/:id/status", middleware.RequireAdmin(), h.UpdateStatus)    // Admin only
		feedback.POST("/:id/upvote", writeLimit, h.Upvote)                          // Public
	}
}

// CreateFeedback stores a new submission
func (h *FeedbackHandler) CreateFeedback(c *gin.Context) {
	var req types.CreateFeedbackRequest
	if !bindJSON(c, &req) {
		return
	}

	created, err := h.feedbackService.CreateFeedback(c.Request.Context(), middleware.GetSession(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, types.CreateFeedbackResponse{Success: true, ID: created.ID.String()})
}

// ListFeedback returns the ranked board, optionally filtered by status
func (h *FeedbackHandler) ListFeedback(c *gin.Context) {
	list, err := h.feedbackService.ListFeedback(c.Request.Context(), c.Query("sort"), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetFeedback returns one decoded item
func (h *FeedbackHandler) GetFeedback(c *gin.Context) {
	item, err := h.feedbackService.GetFeedback(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// UpdateStatus moves an item to another workflow status (admin only)
func (h *FeedbackHandler) UpdateStatus(c *gin.Context) {
	var req types.UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	status, err := h.feedbackService.UpdateFeedbackStatus(c.Request.Context(), middleware.GetSession(c), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "status": status})
}

// Upvote adds one vote
func (h *FeedbackHandler) Upvote(c *gin.Context) {
	upvotes, err := h.feedbackService.Upvote(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "upvotes": upvotes})
}
