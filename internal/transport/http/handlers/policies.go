package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/domain"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/transport/http/middleware"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/usecase"
)

// PolicyHandler exposes policy listings and the administrative update.
type PolicyHandler struct {
	policies *usecase.PolicyService
}

// NewPolicyHandler constructs PolicyHandler.
func NewPolicyHandler(policies *usecase.PolicyService) *PolicyHandler {
	return &PolicyHandler{policies: policies}
}

// RegisterRoutes binds the authenticated read routes.
func (h *PolicyHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.list)
	r.GET("/roles", h.roles)
	r.GET("/role/:roleID", h.getByRole)
}

// RegisterAdminRoutes binds the administrative update route.
func (h *PolicyHandler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.PUT("/:id", h.update)
}

func (h *PolicyHandler) list(c *gin.Context) {
	policies, err := h.policies.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "could not list policies"))
		return
	}

	views := make([]PolicyView, 0, len(policies))
	for i := range policies {
		views = append(views, newPolicyView(&policies[i]))
	}
	c.JSON(http.StatusOK, views)
}

func (h *PolicyHandler) roles(c *gin.Context) {
	roles, err := h.policies.Roles(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "could not list roles"))
		return
	}

	views := make([]RoleView, 0, len(roles))
	for _, role := range roles {
		views = append(views, newRoleView(role))
	}
	c.JSON(http.StatusOK, views)
}

func (h *PolicyHandler) getByRole(c *gin.Context) {
	policy, err := h.policies.GetByRole(c.Request.Context(), c.Param("roleID"))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrPolicyNotFound, Status: http.StatusNotFound, Message: "policy not found"},
		}, http.StatusInternalServerError, "could not load policy")
		return
	}

	c.JSON(http.StatusOK, newPolicyView(policy))
}

func (h *PolicyHandler) update(c *gin.Context) {
	update, err := parsePolicyUpdate(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, err.Error()))
		return
	}

	policy, err := h.policies.Update(c.Request.Context(), c.Param("id"), update, middleware.GetUserID(c))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrPolicyNotFound, Status: http.StatusNotFound, Message: "policy not found"},
			{Err: usecase.ErrInvalidPolicy, Status: http.StatusBadRequest, Message: err.Error()},
		}, http.StatusInternalServerError, "could not update policy")
		return
	}

	c.JSON(http.StatusOK, newPolicyView(policy))
}

// parsePolicyUpdate decodes the patch body key by key. Limits are nullable:
// an explicit JSON null clears the limit, an absent key leaves it untouched.
// Plain encoding/json struct binding cannot express that distinction, so the
// body is read as a raw key map.
func parsePolicyUpdate(c *gin.Context) (domain.PolicyUpdate, error) {
	var body map[string]json.RawMessage
	if err := c.ShouldBindJSON(&body); err != nil {
		return domain.PolicyUpdate{}, fmt.Errorf("invalid request body")
	}

	var update domain.PolicyUpdate
	for key, raw := range body {
		var err error
		switch key {
		case "bandwidth_down_mbps":
			update.BandwidthDownMbps, err = decodeValue[float64](key, raw)
		case "bandwidth_up_mbps":
			update.BandwidthUpMbps, err = decodeValue[float64](key, raw)
		case "daily_quota_bytes":
			update.DailyQuotaBytes, err = decodeNullable[int64](key, raw)
		case "session_time_limit_minutes":
			update.SessionTimeLimitMinutes, err = decodeNullable[int](key, raw)
		case "allowed_hours_start":
			update.AllowedHoursStart, err = decodeClockTime(key, raw)
		case "allowed_hours_end":
			update.AllowedHoursEnd, err = decodeClockTime(key, raw)
		case "access_24x7":
			update.Access24x7, err = decodeValue[bool](key, raw)
		case "blocked_categories":
			update.BlockedCategories, err = decodeValue[[]string](key, raw)
		default:
			err = fmt.Errorf("unknown field %q", key)
		}
		if err != nil {
			return domain.PolicyUpdate{}, err
		}
	}
	return update, nil
}

func decodeValue[T any](key string, raw json.RawMessage) (*T, error) {
	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("invalid value for %q", key)
	}
	return &value, nil
}

func decodeNullable[T any](key string, raw json.RawMessage) (**T, error) {
	if string(raw) == "null" {
		cleared := (*T)(nil)
		return &cleared, nil
	}
	value, err := decodeValue[T](key, raw)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func decodeClockTime(key string, raw json.RawMessage) (**domain.ClockTime, error) {
	if string(raw) == "null" {
		cleared := (*domain.ClockTime)(nil)
		return &cleared, nil
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return nil, fmt.Errorf("invalid value for %q", key)
	}
	parsed, err := domain.ParseClockTime(text)
	if err != nil {
		return nil, fmt.Errorf("invalid value for %q: expected HH:MM:SS", key)
	}
	value := &parsed
	return &value, nil
}
