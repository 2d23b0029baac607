package handler

import (
	"net/http"

	"aspire-wishlist/internal/usecase/account"
	"aspire-wishlist/internal/usecase/passwordreset"
	"aspire-wishlist/internal/usecase/verification"
	"aspire-wishlist/pkg/utils"

	"github.com/gin-gonic/gin"
)

type confirmEmailRequest struct {
	Token string `json:"token"`
}

type AccountHandler struct {
	accounts      *account.Service
	verifications *verification.Service
	resets        *passwordreset.Service
}

func NewAccountHandler(accounts *account.Service, verifications *verification.Service, resets *passwordreset.Service) *AccountHandler {
	return &AccountHandler{
		accounts:      accounts,
		verifications: verifications,
		resets:        resets,
	}
}

// RegisterPublicRoutes mounts the credential endpoints that need no token.
func (h *AccountHandler) RegisterPublicRoutes(router *gin.RouterGroup) {
	accountGroup := router.Group("/account")
	{
		accountGroup.POST("/register", h.Register)
		accountGroup.POST("/login", h.Login)
		accountGroup.POST("/confirm-email", h.ConfirmEmail)
		accountGroup.POST("/forgot-password", h.ForgotPassword)
		accountGroup.POST("/reset-password", h.ResetPassword)
	}
}

func (h *AccountHandler) RegisterProfileRoutes(router *gin.RouterGroup) {
	accountGroup := router.Group("/account")
	{
		accountGroup.GET("/me", h.GetProfile)
		accountGroup.POST("/change-password", h.ChangePassword)
		accountGroup.POST("/resend-verification", h.ResendVerification)
	}
}

func (h *AccountHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	admin := router.Group("")
	{
		admin.GET("/users", h.GetAllUsers)
		admin.DELETE("/users/:user_id", h.DeleteUser)
		admin.POST("/users/:user_id/confirm-email", h.AdminConfirmEmail)
	}
}

func (h *AccountHandler) Register(c *gin.Context) {
	var req account.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithBindError(c)
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "User registered successfully. Please check your email to confirm it.", account.ToUserResponse(user))
}

func (h *AccountHandler) Login(c *gin.Context) {
	var req account.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithBindError(c)
		return
	}

	authResponse, err := h.accounts.Login(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Login successful", authResponse)
}

func (h *AccountHandler) ConfirmEmail(c *gin.Context) {
	var req confirmEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithBindError(c)
		return
	}

	user, err := h.verifications.Redeem(c.Request.Context(), req.Token)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Email confirmed successfully", account.ToUserResponse(user))
}

func (h *AccountHandler) ForgotPassword(c *gin.Context) {
	var req passwordreset.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithBindError(c)
		return
	}

	if err := h.resets.Start(c.Request.Context(), &req); err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "If the email is registered, a password reset link has been sent", nil)
}

func (h *AccountHandler) ResetPassword(c *gin.Context) {
	var req passwordreset.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithBindError(c)
		return
	}

	if err := h.resets.Confirm(c.Request.Context(), &req); err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Password reset successfully", nil)
}

func (h *AccountHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	profile, err := h.accounts.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Profile retrieved successfully", profile)
}

func (h *AccountHandler) ChangePassword(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req account.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithBindError(c)
		return
	}

	if err := h.accounts.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Password changed successfully", nil)
}

func (h *AccountHandler) ResendVerification(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.verifications.Resend(c.Request.Context(), userID); err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Verification email sent", nil)
}

func (h *AccountHandler) GetAllUsers(c *gin.Context) {
	users, err := h.accounts.GetAllUsers(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Users retrieved successfully", users)
}

func (h *AccountHandler) DeleteUser(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	if err := h.accounts.DeleteUser(c.Request.Context(), userID); err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "User deleted successfully", nil)
}

func (h *AccountHandler) AdminConfirmEmail(c *gin.Context) {
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	if err := h.accounts.ConfirmEmail(c.Request.Context(), userID); err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Email confirmed successfully", nil)
}
