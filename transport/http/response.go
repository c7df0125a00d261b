package http

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/layer-3/tollgate/core"
)

// PurchaseOption is one way for a caller to acquire the access token
type PurchaseOption struct {
	Method   string          `json:"method"`
	Provider string          `json:"provider"`
	URL      string          `json:"url"`
	Price    decimal.Decimal `json:"price"`
}

// ResolutionStep is one ordered remediation action
type ResolutionStep struct {
	Step        int    `json:"step"`
	Action      string `json:"action"`
	Description string `json:"description"`
}

// Resolution tells an API caller how to regain access
type Resolution struct {
	Cause           string           `json:"cause"`
	Steps           []ResolutionStep `json:"steps"`
	PurchaseOptions []PurchaseOption `json:"purchaseOptions,omitempty"`
}

// ErrorBody is the JSON failure shape for API callers
type ErrorBody struct {
	Error       bool           `json:"error"`
	Code        core.ErrorKind `json:"code"`
	Message     string         `json:"message"`
	Retryable   bool           `json:"retryable"`
	Resolution  *Resolution    `json:"resolution,omitempty"`
	OperationID string         `json:"operationId,omitempty"`
}

// ResponseBuilder maps failure classifications to API error bodies or page
// redirects. It is the single place failures become user-visible.
type ResponseBuilder struct {
	loginPath       string
	tokenPath       string
	errorPath       string
	purchaseOptions []PurchaseOption
}

// NewResponseBuilder creates a response builder with the given purchase
// options attached to token-related resolutions.
func NewResponseBuilder(purchaseOptions []PurchaseOption) *ResponseBuilder {
	return &ResponseBuilder{
		loginPath:       "/login",
		tokenPath:       "/token-required",
		errorPath:       "/error",
		purchaseOptions: purchaseOptions,
	}
}

// Render writes the failure for the request and aborts the handler chain.
// API mode gets a JSON body, page mode gets a redirect; both carry enough to
// resume after remediation.
func (b *ResponseBuilder) Render(c *gin.Context, mctx core.RequestContext, kind core.ErrorKind, message string) {
	if message == "" {
		message = kind.DefaultMessage()
	}

	if mctx.Mode == core.ModeAPI {
		c.AbortWithStatusJSON(kind.Status(), b.Body(kind, message, mctx))
		return
	}

	c.Redirect(http.StatusFound, b.redirectTarget(kind, message, mctx))
	c.Abort()
}

// Body builds the API error body for a failure
func (b *ResponseBuilder) Body(kind core.ErrorKind, message string, mctx core.RequestContext) ErrorBody {
	body := ErrorBody{
		Error:       true,
		Code:        kind,
		Message:     message,
		Retryable:   kind.Retryable(),
		OperationID: mctx.OperationID,
	}
	if kind.TokenKind() {
		body.Resolution = b.resolution(kind)
	}
	return body
}

func (b *ResponseBuilder) resolution(kind core.ErrorKind) *Resolution {
	second := ResolutionStep{Step: 2}
	switch kind {
	case core.KindTokenMissing:
		second.Action = "purchase"
		second.Description = "Acquire the access token through one of the purchase options"
	case core.KindTokenInsufficient:
		second.Action = "upgrade"
		second.Description = "Increase the wallet's holding to the required amount"
	default: // core.KindTokenExpired
		second.Action = "renew"
		second.Description = "Renew the lapsed access token holding"
	}

	return &Resolution{
		Cause: kind.DefaultMessage(),
		Steps: []ResolutionStep{
			{Step: 1, Action: "authenticate", Description: "Sign in with the wallet that holds the access token"},
			second,
		},
		PurchaseOptions: b.purchaseOptions,
	}
}

func (b *ResponseBuilder) redirectTarget(kind core.ErrorKind, message string, mctx core.RequestContext) string {
	params := url.Values{}

	var target string
	switch {
	case kind == core.KindAuthMissing || kind == core.KindAuthInvalid:
		target = b.loginPath
	case kind.TokenKind():
		target = b.tokenPath
		var tokenID uint64
		if mctx.Requirement != nil {
			tokenID = mctx.Requirement.TokenID
		}
		params.Set("tokenId", strconv.FormatUint(tokenID, 10))
		params.Set("error", string(kind))
		params.Set("message", message)
	default:
		target = b.errorPath
		params.Set("code", string(kind))
		params.Set("message", message)
	}

	// Callers resume where they left off after remediation.
	params.Set("returnUrl", mctx.Path)

	return target + "?" + params.Encode()
}
