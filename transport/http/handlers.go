package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/layer-3/tollgate/core"
	"github.com/layer-3/tollgate/metrics"
	"github.com/layer-3/tollgate/service"
)

// AuthHandlers contains HTTP handlers for the auth endpoints
type AuthHandlers struct {
	authService  *service.AuthService
	sessionTTL   time.Duration
	cookieSecure bool
}

// NewAuthHandlers creates new auth handlers. sessionTTL bounds the session
// cookie lifetime and must match the tokenizer's TTL.
func NewAuthHandlers(authService *service.AuthService, sessionTTL time.Duration, cookieSecure bool) *AuthHandlers {
	return &AuthHandlers{
		authService:  authService,
		sessionTTL:   sessionTTL,
		cookieSecure: cookieSecure,
	}
}

// ChallengeResponse carries a freshly minted challenge
type ChallengeResponse struct {
	Nonce     string `json:"nonce"`
	Message   string `json:"message"`
	ExpiresAt int64  `json:"expiresAt"`
}

// LoginRequest carries a signed challenge
type LoginRequest struct {
	Nonce     string `json:"nonce" binding:"required"`
	Signature string `json:"signature" binding:"required"`
	Address   string `json:"address" binding:"required"`
}

// LoginResponse carries the issued session token
type LoginResponse struct {
	Token     string `json:"token"`
	Address   string `json:"address"`
	ExpiresAt int64  `json:"expiresAt"`
}

// Challenge handles the challenge request
func (h *AuthHandlers) Challenge(c *gin.Context) {
	challenge, err := h.authService.CreateChallenge(c.Request.Context())
	if err != nil {
		h.renderError(c, core.KindServerError, "Failed to create challenge")
		return
	}

	metrics.ChallengesIssuedTotal.Inc()

	c.JSON(http.StatusOK, ChallengeResponse{
		Nonce:     challenge.Nonce,
		Message:   challenge.Message,
		ExpiresAt: challenge.ExpiresAt.Unix(),
	})
}

// Login handles the login request and sets the session cookie
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.renderError(c, core.KindInvalidRequest, "Missing challenge fields")
		return
	}

	token, payload, err := h.authService.Login(c.Request.Context(), req.Nonce, req.Signature, req.Address)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()

		switch {
		case errors.Is(err, core.ErrInvalidAddress), errors.Is(err, core.ErrInvalidChallenge):
			h.renderError(c, core.KindInvalidRequest, err.Error())
		case errors.Is(err, core.ErrInvalidSignature):
			h.renderError(c, core.KindAuthInvalid, "Signature verification failed")
		default:
			h.renderError(c, core.KindServerError, "Authentication failed")
		}
		return
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, int(h.sessionTTL.Seconds()), "/", "", h.cookieSecure, true)

	c.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		Address:   payload.WalletAddress,
		ExpiresAt: payload.ExpiresAt.Unix(),
	})
}

// Logout clears the session cookie and announces the logout. The cookie is
// cleared even when the announcement fails, so the client never stays
// signed in past a transient broker error.
func (h *AuthHandlers) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", h.cookieSecure, true)

	if token := ExtractSessionToken(c.Request); token != "" {
		if err := h.authService.Logout(c.Request.Context(), token); err != nil {
			h.renderError(c, core.KindServerError, "Failed to logout")
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me returns the wallet the gate attached to the request
func (h *AuthHandlers) Me(c *gin.Context) {
	address, exists := c.Get(ContextWalletKey)
	if !exists {
		h.renderError(c, core.KindServerError, "Wallet not found in context")
		return
	}

	c.JSON(http.StatusOK, gin.H{"address": address})
}

func (h *AuthHandlers) renderError(c *gin.Context, kind core.ErrorKind, message string) {
	if message == "" {
		message = kind.DefaultMessage()
	}
	c.AbortWithStatusJSON(kind.Status(), ErrorBody{
		Error:     true,
		Code:      kind,
		Message:   message,
		Retryable: kind.Retryable(),
	})
}
