package http

import (
	"net/http"
	"strings"
)

const (
	// SessionCookieName is the cookie carrying the session token
	SessionCookieName = "session_token"

	// SessionHeaderName is the fallback header for clients unable to use
	// cookies or the Authorization header
	SessionHeaderName = "X-Session-Token"

	// WalletHeaderName carries the verified wallet address to downstream
	// handlers
	WalletHeaderName = "X-Wallet-Address"

	// ContextWalletKey is the gin context key holding the verified wallet
	ContextWalletKey = "walletAddress"
)

// ExtractSessionToken pulls the session token from the request. Precedence:
// Authorization bearer header, then the session cookie, then the fallback
// header. First non-empty match wins.
func ExtractSessionToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		if token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")); token != "" {
			return token
		}
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return r.Header.Get(SessionHeaderName)
}
