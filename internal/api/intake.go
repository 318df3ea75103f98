package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pageza/preflight/backend/internal/middleware"
	"github.com/pageza/preflight/backend/internal/service"
	"github.com/pageza/preflight/backend/internal/types"
)

type IntakeHandler struct {
	intakeService service.IIntakeService
}

func NewIntakeHandler(intakeService service.IIntakeService) *IntakeHandler {
	return &IntakeHandler{intakeService: intakeService}
}

// RegisterRoutes mounts the intake log. Every route is admin only.
func (h *IntakeHandler) RegisterRoutes(router *gin.RouterGroup) {
	intake := router.Group("/intake")
	intake.Use(middleware.RequireAdmin())
	{
		intake.GET("", h.ListIntake)
		intake.POST("", h.CreateIntake)
		intake.POST("/:id/convert", h.ConvertIntake)
		intake.POST("/:id/link", h.LinkIntake)
	}
}

// ListIntake returns recent events, newest first
func (h *IntakeHandler) ListIntake(c *gin.Context) {
	limit := service.DefaultIntakeLimit
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	events, err := h.intakeService.ListIntake(c.Request.Context(), middleware.GetSession(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": events})
}

// CreateIntake logs an external report
func (h *IntakeHandler) CreateIntake(c *gin.Context) {
	var req types.CreateIntakeRequest
	if !bindJSON(c, &req) {
		return
	}

	event, duplicate, err := h.intakeService.CreateIntake(c.Request.Context(), middleware.GetSession(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	if duplicate {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"item": event, "duplicate": duplicate})
}

// ConvertIntake turns an event into a feedback item
func (h *IntakeHandler) ConvertIntake(c *gin.Context) {
	feedbackID, err := h.intakeService.ConvertIntake(c.Request.Context(), middleware.GetSession(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"feedback_id": feedbackID.String()})
}

// LinkIntake attaches an event to an existing feedback item
func (h *IntakeHandler) LinkIntake(c *gin.Context) {
	var req types.LinkIntakeRequest
	if !bindJSON(c, &req) {
		return
	}

	linked, err := h.intakeService.LinkIntake(c.Request.Context(), middleware.GetSession(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": linked})
}
