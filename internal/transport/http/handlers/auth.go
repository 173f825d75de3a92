package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/transport/http/middleware"
	"github.com/shivayellanki/Role-Based-Access-Usage-Control-for-Campus-Enterprise-Wi-Fi/internal/usecase"
)

// AuthHandler exposes the captive portal login endpoints.
type AuthHandler struct {
	auth  *usecase.AuthService
	isDev bool
}

// NewAuthHandler constructs AuthHandler. isDev exposes one-time codes in
// responses instead of delivering them out of band.
func NewAuthHandler(auth *usecase.AuthService, isDev bool) *AuthHandler {
	return &AuthHandler{auth: auth, isDev: isDev}
}

// RegisterRoutes binds authentication routes. authMiddleware guards logout;
// loginMiddlewares (rate limiting) run ahead of the credential endpoints.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, authMiddleware gin.HandlerFunc, loginMiddlewares ...gin.HandlerFunc) {
	withLimit := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		chain := append([]gin.HandlerFunc{}, loginMiddlewares...)
		return append(chain, handler)
	}

	r.POST("/login", withLimit(h.login)...)
	r.POST("/guest/request-otp", withLimit(h.requestGuestOTP)...)
	r.POST("/guest/verify-otp", withLimit(h.verifyGuestOTP)...)
	if authMiddleware != nil {
		r.POST("/logout", authMiddleware, h.logout)
	}
}

func (h *AuthHandler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	result, err := h.auth.Login(c.Request.Context(), usecase.LoginInput{
		Identifier: req.Identifier,
		Password:   req.Password,
		IPAddress:  c.ClientIP(),
		MACAddress: req.MACAddress,
	})
	if err != nil {
		h.respondLoginError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.newLoginResponse(result))
}

func (h *AuthHandler) requestGuestOTP(c *gin.Context) {
	var req GuestOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "a valid email is required"))
		return
	}

	code, ttl, err := h.auth.RequestGuestOTP(c.Request.Context(), req.Email, c.ClientIP())
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusBadRequest, Message: "a valid email is required"},
		}, http.StatusInternalServerError, "could not issue a code")
		return
	}

	resp := GuestOTPResponse{
		Message:   "verification code sent",
		ExpiresIn: int(ttl.Seconds()),
	}
	if h.isDev {
		resp.DevCode = &code
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) verifyGuestOTP(c *gin.Context) {
	var req GuestVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid verification payload"))
		return
	}

	result, err := h.auth.VerifyGuestOTP(c.Request.Context(), usecase.GuestVerifyInput{
		Email:      req.Email,
		Code:       req.Code,
		IPAddress:  c.ClientIP(),
		MACAddress: req.MACAddress,
	})
	if err != nil {
		h.respondLoginError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.newLoginResponse(result))
}

func (h *AuthHandler) logout(c *gin.Context) {
	sessionID := middleware.GetSessionID(c)
	if sessionID == "" {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "no session bound to this token"))
		return
	}

	if err := h.auth.Logout(c.Request.Context(), sessionID); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrSessionNotFound, Status: http.StatusNotFound, Message: "session not found"},
		}, http.StatusInternalServerError, "logout failed")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "logged out"})
}

func (h *AuthHandler) respondLoginError(c *gin.Context, err error) {
	var denied *usecase.AccessDeniedError
	if errors.As(err, &denied) {
		c.JSON(http.StatusForbidden, NewErrorResponse(c, denied.Reason))
		return
	}

	RespondWithMappedError(c, err, []ErrorCase{
		{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "invalid credentials"},
		{Err: usecase.ErrInvalidOTP, Status: http.StatusUnauthorized, Message: "invalid or expired code"},
		{Err: usecase.ErrPasswordLogin, Status: http.StatusBadRequest, Message: "account does not support password login"},
	}, http.StatusInternalServerError, "login failed")
}

func (h *AuthHandler) newLoginResponse(result *usecase.LoginResult) LoginResponse {
	resp := LoginResponse{
		AccessToken: result.Token,
		TokenType:   "Bearer",
		ExpiresAt:   result.ExpiresAt,
		User:        newUserSummary(result.User),
		Session:     newSessionView(result.Session),
	}
	if result.Decision != nil {
		resp.Policy = newPolicyState(result.Decision.Snapshot)
	}
	return resp
}
