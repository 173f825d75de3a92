package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/domain"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/transport/http/middleware"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/usecase"
)

// AccessHandler exposes the policy evaluation endpoint used by enforcement
// points (gateway, proxy) to gate traffic.
type AccessHandler struct {
	decisions *usecase.DecisionService
}

// NewAccessHandler constructs AccessHandler.
func NewAccessHandler(decisions *usecase.DecisionService) *AccessHandler {
	return &AccessHandler{decisions: decisions}
}

// RegisterRoutes binds the evaluation route.
func (h *AccessHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/evaluate", h.evaluate)
}

// evaluate returns the verdict for one access attempt. A denial is a valid
// 200 response; only malformed requests and storage faults are errors. The
// attempt is evaluated for the caller's own identity unless the caller holds
// the admin role, which enforcement points authenticate as to evaluate on
// behalf of any principal.
func (h *AccessHandler) evaluate(c *gin.Context) {
	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid evaluation payload"))
		return
	}

	callerID := middleware.GetUserID(c)
	if req.UserID == "" {
		req.UserID = callerID
	}
	if req.UserID != callerID && middleware.GetRoleName(c) != domain.RoleAdmin {
		c.JSON(http.StatusForbidden, NewErrorResponse(c, "cannot evaluate another user"))
		return
	}

	decision, err := h.decisions.Evaluate(c.Request.Context(), usecase.EvaluateInput{
		UserID:    req.UserID,
		SessionID: req.SessionID,
		Resource:  req.Resource,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidEvaluation) {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid evaluation payload"))
			return
		}
		c.JSON(http.StatusServiceUnavailable, NewErrorResponse(c, "evaluation unavailable"))
		return
	}

	c.JSON(http.StatusOK, newDecisionResponse(decision))
}
