package core

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidAddress is returned when a wallet address is malformed
	ErrInvalidAddress = errors.New("invalid wallet address")

	// ErrInvalidSignature is returned when a signature does not recover the claimed wallet
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrInvalidChallenge is returned when a challenge is absent, expired or already consumed
	ErrInvalidChallenge = errors.New("invalid challenge")

	// ErrInvalidToken is returned when a session token fails verification
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired is returned when a session token has expired
	ErrTokenExpired = errors.New("token has expired")

	// ErrStoreOperationFailed is returned when a challenge store operation fails
	ErrStoreOperationFailed = errors.New("store operation failed")
)

// ErrorKind is the closed set of failure classifications the pipeline can
// produce. Every kind carries a fixed HTTP status and retryability.
type ErrorKind string

const (
	// KindAuthMissing means no session token was presented.
	KindAuthMissing ErrorKind = "AUTH_MISSING"

	// KindAuthInvalid means the token was invalid, expired, or carried a
	// malformed wallet address.
	KindAuthInvalid ErrorKind = "AUTH_INVALID"

	// KindTokenMissing means the wallet holds none of the required token.
	KindTokenMissing ErrorKind = "TOKEN_MISSING"

	// KindTokenInsufficient means the balance is positive but below the
	// required amount.
	KindTokenInsufficient ErrorKind = "TOKEN_INSUFFICIENT"

	// KindTokenExpired means a previously valid holding has lapsed, as
	// reported by the ledger.
	KindTokenExpired ErrorKind = "TOKEN_EXPIRED"

	// KindContractError means the ledger query failed or timed out.
	KindContractError ErrorKind = "CONTRACT_ERROR"

	// KindServerError means an unexpected internal failure.
	KindServerError ErrorKind = "SERVER_ERROR"

	// KindInvalidRequest means malformed caller input.
	KindInvalidRequest ErrorKind = "INVALID_REQUEST"
)

// Status returns the HTTP status associated with the kind.
func (k ErrorKind) Status() int {
	switch k {
	case KindAuthMissing, KindAuthInvalid:
		return http.StatusUnauthorized
	case KindTokenMissing, KindTokenInsufficient, KindTokenExpired:
		return http.StatusForbidden
	case KindInvalidRequest:
		return http.StatusBadRequest
	case KindContractError, KindServerError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether the caller may retry the same request without
// first taking a remediation action.
func (k ErrorKind) Retryable() bool {
	return k != KindServerError
}

// TokenKind reports whether the kind concerns the access-token balance, as
// opposed to authentication or infrastructure.
func (k ErrorKind) TokenKind() bool {
	switch k {
	case KindTokenMissing, KindTokenInsufficient, KindTokenExpired:
		return true
	default:
		return false
	}
}

// DefaultMessage returns the human-readable description for the kind.
func (k ErrorKind) DefaultMessage() string {
	switch k {
	case KindAuthMissing:
		return "Authentication required"
	case KindAuthInvalid:
		return "Session is invalid or has expired"
	case KindTokenMissing:
		return "Access token not held by this wallet"
	case KindTokenInsufficient:
		return "Access token balance is below the required amount"
	case KindTokenExpired:
		return "Access token holding has lapsed"
	case KindContractError:
		return "Failed to query the token ledger"
	case KindInvalidRequest:
		return "Malformed request"
	case KindServerError:
		return "Internal server error"
	default:
		return "Internal server error"
	}
}
