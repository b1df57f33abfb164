package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/volcanion-labs/ssr-dispatcher/internal/auth"
	"github.com/volcanion-labs/ssr-dispatcher/internal/middleware"
)

// AuthHandler issues and manages credentials for the admin API: JWT login
// for the seed admin account, and API keys for service-to-service callers.
type AuthHandler struct {
	jwtService      *auth.JWTService
	apiKeyService   *auth.APIKeyService
	userRepo        auth.UserRepository
	passwordService *auth.PasswordService
}

// NewAuthHandler builds an AuthHandler backed by userRepo.
func NewAuthHandler(jwtService *auth.JWTService, apiKeyService *auth.APIKeyService, userRepo auth.UserRepository) *AuthHandler {
	return &AuthHandler{
		jwtService:      jwtService,
		apiKeyService:   apiKeyService,
		userRepo:        userRepo,
		passwordService: auth.NewPasswordService(),
	}
}

// Login handles POST /api/auth/login: exchanges a username/password for a JWT.
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, passwordHash, err := h.userRepo.GetByUsername(req.Username)
	if err != nil {
		// Generic error to avoid leaking which usernames exist.
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if err := h.passwordService.VerifyPassword(req.Password, passwordHash); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, expiresAt, err := h.jwtService.GenerateToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, auth.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      *user,
	})
}

// CreateAPIKey handles POST /api/auth/api-keys for the authenticated caller.
func (h *AuthHandler) CreateAPIKey(c *gin.Context) {
	var req auth.CreateAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	apiKey, err := h.apiKeyService.CreateAPIKey(userID, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create API key"})
		return
	}

	c.JSON(http.StatusCreated, apiKey)
}

// ListAPIKeys handles GET /api/auth/api-keys for the authenticated caller.
func (h *AuthHandler) ListAPIKeys(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	keys := h.apiKeyService.ListAPIKeys(userID)
	c.JSON(http.StatusOK, gin.H{
		"api_keys": keys,
		"count":    len(keys),
	})
}

// RevokeAPIKey handles DELETE /api/auth/api-keys/:id.
func (h *AuthHandler) RevokeAPIKey(c *gin.Context) {
	keyID := c.Param("id")

	if err := h.apiKeyService.RevokeAPIKey(keyID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "API key not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "API key revoked successfully"})
}

func userIDFromContext(c *gin.Context) (string, bool) {
	raw, exists := c.Get(middleware.AuthUserKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return "", false
	}
	userID, ok := raw.(string)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid user ID"})
		return "", false
	}
	return userID, true
}
