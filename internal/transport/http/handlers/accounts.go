package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/msubchak/online-cinema/internal/core/domain"
	"github.com/msubchak/online-cinema/internal/transport/http/middleware"
	"github.com/msubchak/online-cinema/internal/usecase"
)

// AccountHandler exposes registration, activation, authentication, and
// password lifecycle endpoints.
type AccountHandler struct {
	accounts *usecase.AccountService
}

func NewAccountHandler(accounts *usecase.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// Register handles POST /accounts/register.
func (h *AccountHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "a valid email and a password are required"))
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidEmail, Status: http.StatusBadRequest, Message: "A valid email address is required."},
			{Err: usecase.ErrEmailTaken, Status: http.StatusConflict, Message: "A user with this email already exists."},
			{Err: usecase.ErrPasswordPolicyViolation, Status: http.StatusBadRequest, Message: "Password does not meet complexity requirements."},
		}, http.StatusInternalServerError, "Registration failed.")
		return
	}

	c.JSON(http.StatusCreated, toUserResponse(user))
}

// Activate handles POST /accounts/activate.
func (h *AccountHandler) Activate(c *gin.Context) {
	var req ActivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "email and token are required"))
		return
	}

	if err := h.accounts.Activate(c.Request.Context(), req.Email, req.Token); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrTokenInvalidOrExpired, Status: http.StatusBadRequest, Message: "Invalid or expired activation token."},
			{Err: usecase.ErrAccountAlreadyActive, Status: http.StatusBadRequest, Message: "Account is already active."},
		}, http.StatusInternalServerError, "Activation failed.")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Account activated successfully."})
}

// ResendActivation handles POST /accounts/activate/resend. The response
// does not reveal whether the email exists.
func (h *AccountHandler) ResendActivation(c *gin.Context) {
	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "email is required"))
		return
	}

	if err := h.accounts.ResendActivation(c.Request.Context(), req.Email); err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "Could not resend activation email."))
		return
	}

	c.JSON(http.StatusOK, MessageResponse{
		Message: "If you have an account that is not yet active, an activation email has been sent.",
	})
}

// Login handles POST /accounts/login.
func (h *AccountHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "email and password are required"))
		return
	}

	pair, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "Invalid email or password."},
			{Err: usecase.ErrAccountNotActive, Status: http.StatusForbidden, Message: "Account is not activated."},
		}, http.StatusInternalServerError, "Login failed.")
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int(h.accounts.AccessTokenTTL().Seconds()),
	})
}

// Logout handles POST /accounts/logout.
func (h *AccountHandler) Logout(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "refresh_token is required"))
		return
	}

	if err := h.accounts.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrTokenInvalidOrExpired, Status: http.StatusBadRequest, Message: "Invalid refresh token."},
		}, http.StatusInternalServerError, "Logout failed.")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Logged out successfully."})
}

// Refresh handles POST /accounts/refresh.
func (h *AccountHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "refresh_token is required"))
		return
	}

	access, err := h.accounts.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrRefreshTokenInvalid, Status: http.StatusBadRequest, Message: "Invalid or expired refresh token."},
			{Err: usecase.ErrRefreshTokenRevoked, Status: http.StatusUnauthorized, Message: "Refresh token is revoked."},
		}, http.StatusInternalServerError, "Token refresh failed.")
		return
	}

	c.JSON(http.StatusOK, AccessTokenResponse{
		AccessToken: access,
		TokenType:   "bearer",
		ExpiresIn:   int(h.accounts.AccessTokenTTL().Seconds()),
	})
}

// RequestPasswordReset handles POST /accounts/password-reset/request. The
// response is identical whether or not the email exists.
func (h *AccountHandler) RequestPasswordReset(c *gin.Context) {
	var req EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "email is required"))
		return
	}

	if err := h.accounts.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "Could not process password reset request."))
		return
	}

	c.JSON(http.StatusOK, MessageResponse{
		Message: "If you are registered, you will receive an email with instructions.",
	})
}

// CompletePasswordReset handles POST /accounts/password-reset/complete.
func (h *AccountHandler) CompletePasswordReset(c *gin.Context) {
	var req PasswordResetCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "email, token, and password are required"))
		return
	}

	err := h.accounts.CompletePasswordReset(c.Request.Context(), req.Email, req.Token, req.Password)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrTokenInvalidOrExpired, Status: http.StatusBadRequest, Message: "Invalid email or token."},
			{Err: usecase.ErrPasswordPolicyViolation, Status: http.StatusBadRequest, Message: "Password does not meet complexity requirements."},
		}, http.StatusInternalServerError, "Password reset failed.")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Password reset successfully."})
}

// ChangePassword handles POST /accounts/password/change for authenticated
// users.
func (h *AccountHandler) ChangePassword(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "old_password and new_password are required"))
		return
	}

	err := h.accounts.ChangePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusBadRequest, Message: "Old password is incorrect."},
			{Err: usecase.ErrPasswordPolicyViolation, Status: http.StatusBadRequest, Message: "Password does not meet complexity requirements."},
		}, http.StatusInternalServerError, "Password change failed.")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Password changed successfully."})
}

// Me handles GET /accounts/me.
func (h *AccountHandler) Me(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	user, err := h.accounts.GetUser(c.Request.Context(), userID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "User not found."},
		}, http.StatusInternalServerError, "Could not load account.")
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

// ChangeGroup handles PATCH /accounts/:id/group. Admin only.
func (h *AccountHandler) ChangeGroup(c *gin.Context) {
	targetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || targetID < 1 {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid user id"))
		return
	}

	var req ChangeGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "group is required"))
		return
	}

	err = h.accounts.ChangeGroup(c.Request.Context(), targetID, domain.GroupName(req.Group))
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidGroup, Status: http.StatusNotFound, Message: "Group not found."},
			{Err: usecase.ErrGroupUnchanged, Status: http.StatusBadRequest, Message: "User is already in this group."},
			{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "User not found."},
		}, http.StatusInternalServerError, "Group change failed.")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "User group updated."})
}
