package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/core/domain"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/usecase"
)

// UserHandler serves the administrative account views. Blocking takes effect
// immediately, so a misbehaving device loses access without waiting for its
// session to lapse.
type UserHandler struct {
	users *usecase.UserService
}

// NewUserHandler constructs UserHandler.
func NewUserHandler(users *usecase.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// RegisterAdminRoutes binds the administrative account routes.
func (h *UserHandler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.GET("", h.list)
	r.GET("/:id", h.get)
	r.POST("/:id/block", h.block)
	r.POST("/:id/unblock", h.unblock)
}

func (h *UserHandler) list(c *gin.Context) {
	filter := domain.UserFilter{RoleName: c.Query("role")}

	if active := c.Query("active"); active != "" {
		parsed, err := strconv.ParseBool(active)
		if err != nil {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid active flag"))
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

	users, err := h.users.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "could not list users"))
		return
	}

	views := make([]UserView, 0, len(users))
	for i := range users {
		views = append(views, newUserView(&users[i]))
	}
	c.JSON(http.StatusOK, views)
}

func (h *UserHandler) get(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, NewErrorResponse(c, "user not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "could not load user"))
		return
	}
	c.JSON(http.StatusOK, newUserView(user))
}

func (h *UserHandler) block(c *gin.Context) {
	h.setActive(c, false)
}

func (h *UserHandler) unblock(c *gin.Context) {
	h.setActive(c, true)
}

func (h *UserHandler) setActive(c *gin.Context, active bool) {
	userID := c.Param("id")

	var err error
	if active {
		err = h.users.Unblock(c.Request.Context(), userID)
	} else {
		err = h.users.Block(c.Request.Context(), userID)
	}
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, NewErrorResponse(c, "user not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "could not update user"))
		return
	}

	message := "user blocked"
	if active {
		message = "user unblocked"
	}
	c.JSON(http.StatusOK, MessageResponse{Message: message})
}
