package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/domain"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/port"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/transport/http/middleware"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/usecase"
)

// ViolationHandler serves the violation audit views.
type ViolationHandler struct {
	violations *usecase.ViolationService
}

// NewViolationHandler constructs ViolationHandler.
func NewViolationHandler(violations *usecase.ViolationService) *ViolationHandler {
	return &ViolationHandler{violations: violations}
}

// RegisterRoutes binds the authenticated self-service view.
func (h *ViolationHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/me", h.mine)
}

// RegisterAdminRoutes binds the administrative listing.
func (h *ViolationHandler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.GET("", h.list)
}

func (h *ViolationHandler) mine(c *gin.Context) {
	filter := port.ViolationFilter{UserID: middleware.GetUserID(c)}
	h.respond(c, filter)
}

func (h *ViolationHandler) list(c *gin.Context) {
	filter := port.ViolationFilter{
		UserID: c.Query("user_id"),
		Type:   domain.ViolationType(c.Query("type")),
	}
	h.respond(c, filter)
}

func (h *ViolationHandler) respond(c *gin.Context, filter port.ViolationFilter) {
	if limit := c.Query("limit"); limit != "" {
		parsed, err := strconv.Atoi(limit)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid limit"))
			return
		}
		filter.Limit = parsed
	}

	violations, err := h.violations.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "could not list violations"))
		return
	}

	views := make([]ViolationView, 0, len(violations))
	for _, violation := range violations {
		views = append(views, newViolationView(violation))
	}
	c.JSON(http.StatusOK, views)
}
