package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pageza/preflight/backend/internal/middleware"
	"github.com/pageza/preflight/backend/internal/service"
	"github.com/pageza/preflight/backend/internal/types"
)

type PreferencesHandler struct {
	preferenceService service.IPreferenceService
}

func NewPreferencesHandler(preferenceService service.IPreferenceService) *PreferencesHandler {
	return &PreferencesHandler{preferenceService: preferenceService}
}

func (h *PreferencesHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/feedback/:id/notification-preferences", h.GetPreferences)
	router.POST("/feedback/:id/notification-preferences", h.SavePreferences)
}

func (h *PreferencesHandler) GetPreferences(c *gin.Context) {
	prefs, err := h.preferenceService.GetPreferences(c.Request.Context(), middleware.GetSession(c), c.Param("id"), c.Query("email"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

func (h *PreferencesHandler) SavePreferences(c *gin.Context) {
	var req types.NotificationPreferencesRequest
	if !bindJSON(c, &req) {
		return
	}

	prefs, err := h.preferenceService.SavePreferences(c.Request.Context(), middleware.GetSession(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}
