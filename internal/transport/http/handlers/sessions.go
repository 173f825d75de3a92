package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/domain"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/transport/http/middleware"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/usecase"
)

// SessionHandler exposes the session views and the disconnect operation.
type SessionHandler struct {
	sessions  *usecase.SessionService
	decisions *usecase.DecisionService
	usage     *usecase.UsageService
}

// NewSessionHandler constructs SessionHandler. decisions and usage enrich the
// current-session view and may be nil in minimal wirings.
func NewSessionHandler(sessions *usecase.SessionService, decisions *usecase.DecisionService, usage *usecase.UsageService) *SessionHandler {
	return &SessionHandler{sessions: sessions, decisions: decisions, usage: usage}
}

// RegisterRoutes binds the authenticated session routes.
func (h *SessionHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/current", h.current)
	r.GET("/history", h.history)
	r.POST("/:id/disconnect", h.disconnect)
}

// RegisterAdminRoutes binds the administrative listing.
func (h *SessionHandler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.GET("", h.list)
}

// current reports the caller's active session together with a fresh policy
// evaluation and today's usage.
func (h *SessionHandler) current(c *gin.Context) {
	userID := middleware.GetUserID(c)

	session, err := h.sessions.GetActive(c.Request.Context(), userID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrSessionNotFound, Status: http.StatusNotFound, Message: "no active session"},
		}, http.StatusInternalServerError, "could not load session")
		return
	}

	resp := CurrentSessionResponse{Session: newSessionView(session)}

	if h.decisions != nil {
		decision, err := h.decisions.Evaluate(c.Request.Context(), usecase.EvaluateInput{
			UserID:    userID,
			SessionID: &session.ID,
		})
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, NewErrorResponse(c, "evaluation unavailable"))
			return
		}
		resp.Decision = newDecisionResponse(decision)
	}

	if h.usage != nil {
		record, err := h.usage.GetUsage(c.Request.Context(), userID, "")
		if err != nil {
			c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "could not load usage"))
			return
		}
		view := newUsageView(record)
		resp.Usage = &view
	}

	c.JSON(http.StatusOK, resp)
}

func (h *SessionHandler) history(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	sessions, err := h.sessions.ListByUser(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "could not load sessions"))
		return
	}

	views := make([]SessionView, 0, len(sessions))
	for i := range sessions {
		views = append(views, newSessionView(&sessions[i]))
	}
	c.JSON(http.StatusOK, views)
}

// disconnect closes a session. Users may end their own session; administrators
// may end anyone's.
func (h *SessionHandler) disconnect(c *gin.Context) {
	sessionID := c.Param("id")

	session, err := h.sessions.Get(c.Request.Context(), sessionID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrSessionNotFound, Status: http.StatusNotFound, Message: "session not found"},
		}, http.StatusInternalServerError, "could not load session")
		return
	}

	if session.UserID != middleware.GetUserID(c) && middleware.GetRoleName(c) != domain.RoleAdmin {
		c.JSON(http.StatusForbidden, NewErrorResponse(c, "insufficient permissions"))
		return
	}

	ended, err := h.sessions.End(c.Request.Context(), sessionID, domain.SessionEndReasonDisconnect)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "could not end session"))
		return
	}

	c.JSON(http.StatusOK, newSessionView(ended))
}

func (h *SessionHandler) list(c *gin.Context) {
	filter := domain.SessionFilter{RoleName: c.Query("role")}
	if active := c.Query("active"); active != "" {
		parsed, err := strconv.ParseBool(active)
		if err != nil {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid active filter"))
			return
		}
		filter.Active = &parsed
	}
	if limit := c.Query("limit"); limit != "" {
		parsed, err := strconv.Atoi(limit)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid limit"))
			return
		}
		filter.Limit = parsed
	}

	sessions, err := h.sessions.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "could not list sessions"))
		return
	}

	views := make([]SessionView, 0, len(sessions))
	for i := range sessions {
		views = append(views, newSessionView(&sessions[i]))
	}
	c.JSON(http.StatusOK, views)
}
