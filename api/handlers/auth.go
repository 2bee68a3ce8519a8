// File: api/handlers/auth.go

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/XZXY-AI/reddit-crawler/internal/observability"
	"github.com/XZXY-AI/reddit-crawler/internal/services"
	"github.com/XZXY-AI/reddit-crawler/internal/session"
)

// Authenticator is the part of the OAuth service the handlers need
type Authenticator interface {
	AuthorizationURL(state string) string
	ExchangeCode(ctx context.Context, code string) (string, error)
}

type AuthHandler struct {
	auth                Authenticator
	frontendRedirectURI string
	logger              *slog.Logger
}

func NewAuthHandler(auth Authenticator, frontendRedirectURI string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:                auth,
		frontendRedirectURI: frontendRedirectURI,
		logger:              logger,
	}
}

// HandleAuthURL stores a fresh state nonce in the session and returns the
// Reddit consent URL bound to it.
func (h *AuthHandler) HandleAuthURL(c *gin.Context) {
	logger := observability.LoggerFromContext(c.Request.Context(), h.logger)

	sess, ok := session.FromContext(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
		return
	}

	state, err := services.NewState()
	if err != nil {
		logger.Error("failed to generate oauth state", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	sess.Set(session.KeyState, state)
	if err := sess.Save(c.Request.Context()); err != nil {
		logger.Error("failed to save session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": h.auth.AuthorizationURL(state)})
}

// HandleCallback completes the authorization-code flow. The access token is
// kept in the session and never written to the response.
func (h *AuthHandler) HandleCallback(c *gin.Context) {
	logger := observability.LoggerFromContext(c.Request.Context(), h.logger)

	sess, ok := session.FromContext(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
		return
	}

	providerErr := c.Query("error")
	code := c.Query("code")
	expected, _ := sess.Get(session.KeyState)

	if err := services.CheckCallback(providerErr, code, c.Query("state"), expected); err != nil {
		logger.Warn("oauth callback rejected", "error", err)
		switch {
		case errors.Is(err, services.ErrOAuthDenied):
			c.JSON(http.StatusBadRequest, gin.H{"error": providerErr})
		case errors.Is(err, services.ErrMissingCode):
			c.JSON(http.StatusBadRequest, gin.H{"error": "No code provided"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid state"})
		}
		return
	}

	token, err := h.auth.ExchangeCode(c.Request.Context(), code)
	if err != nil {
		logger.Warn("token exchange failed", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to get access token"})
		return
	}

	// the nonce is single use
	sess.Remove(session.KeyState)
	sess.Set(session.KeyAccessToken, token)
	if err := sess.Save(c.Request.Context()); err != nil {
		logger.Error("failed to save session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Redirect(http.StatusFound, h.frontendRedirectURI)
}
