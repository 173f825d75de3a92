package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/transport/http/middleware"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/usecase"
)

// UsageHandler accepts metering reports and serves usage views.
type UsageHandler struct {
	usage *usecase.UsageService
}

// NewUsageHandler constructs UsageHandler.
func NewUsageHandler(usage *usecase.UsageService) *UsageHandler {
	return &UsageHandler{usage: usage}
}

// RegisterRoutes binds the authenticated usage views.
func (h *UsageHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/today", h.current)
	r.GET("/history", h.history)
}

// RegisterAdminRoutes binds the metering ingest and per-user views. Reports
// arrive from the enforcement point, not from end users.
func (h *UsageHandler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.POST("", h.report)
	r.GET("/user/:userID", h.byUser)
}

func (h *UsageHandler) report(c *gin.Context) {
	var req UsageReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request body"))
		return
	}

	err := h.usage.AddUsage(c.Request.Context(), usecase.AddUsageInput{
		UserID:      req.UserID,
		SessionID:   req.SessionID,
		Date:        req.Date,
		DataBytes:   req.DataBytes,
		TimeMinutes: req.TimeMinutes,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidUsage) {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "could not record usage"))
		return
	}

	c.JSON(http.StatusAccepted, MessageResponse{Message: "usage recorded"})
}

func (h *UsageHandler) current(c *gin.Context) {
	h.respondUsage(c, middleware.GetUserID(c))
}

func (h *UsageHandler) byUser(c *gin.Context) {
	h.respondUsage(c, c.Param("userID"))
}

func (h *UsageHandler) respondUsage(c *gin.Context, userID string) {
	record, err := h.usage.GetUsage(c.Request.Context(), userID, c.Query("date"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "could not load usage"))
		return
	}

	c.JSON(http.StatusOK, newUsageView(record))
}

func (h *UsageHandler) history(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))

	records, err := h.usage.History(c.Request.Context(), middleware.GetUserID(c), days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "could not load usage history"))
		return
	}

	views := make([]UsageView, 0, len(records))
	for i := range records {
		views = append(views, newUsageView(&records[i]))
	}
	c.JSON(http.StatusOK, views)
}
