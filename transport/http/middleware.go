package http

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	slogctx "github.com/veqryn/slog-context"

	"github.com/layer-3/tollgate/core"
	"github.com/layer-3/tollgate/metrics"
	"github.com/layer-3/tollgate/ports"
	"github.com/layer-3/tollgate/service"
)

// DefaultExcludedPrefixes are paths the gate never inspects: the auth
// endpoints themselves, the remediation pages it redirects to, and static
// assets.
var DefaultExcludedPrefixes = []string{
	"/auth/",
	"/login",
	"/token-required",
	"/error",
	"/healthz",
	"/metrics",
	"/static/",
	"/assets/",
	"/favicon.ico",
}

// GateConfig tunes the orchestrator middleware
type GateConfig struct {
	// ExcludedPrefixes bypass the gate entirely. Nil means the defaults.
	ExcludedPrefixes []string

	// APIPrefixes mark paths whose failures render as JSON instead of
	// redirects. Nil means "/api".
	APIPrefixes []string
}

// Gate is the per-request authorization state machine: excluded check →
// protection check → session check → balance check → pass-through with the
// wallet attached.
type Gate struct {
	resolver  *service.RequirementResolver
	tokenizer ports.Tokenizer
	validator *service.TokenValidator
	events    ports.EventPublisher
	responses *ResponseBuilder
	excluded  []string
	api       []string
}

// NewGate creates the orchestrator middleware
func NewGate(
	resolver *service.RequirementResolver,
	tokenizer ports.Tokenizer,
	validator *service.TokenValidator,
	events ports.EventPublisher,
	responses *ResponseBuilder,
	cfg GateConfig,
) *Gate {
	excluded := cfg.ExcludedPrefixes
	if excluded == nil {
		excluded = DefaultExcludedPrefixes
	}
	api := cfg.APIPrefixes
	if api == nil {
		api = []string{"/api"}
	}

	return &Gate{
		resolver:  resolver,
		tokenizer: tokenizer,
		validator: validator,
		events:    events,
		responses: responses,
		excluded:  excluded,
		api:       api,
	}
}

// Handler returns the gin middleware enforcing the gate.
func (g *Gate) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		if g.excludedPath(path) {
			metrics.GateDecisionsTotal.WithLabelValues("excluded", "none").Inc()
			c.Next()
			return
		}

		mctx := core.RequestContext{
			Path:        path,
			Mode:        g.mode(c),
			OperationID: uuid.New().String(),
		}

		ctx := slogctx.With(c.Request.Context(), "operation_id", mctx.OperationID, "path", path)
		c.Request = c.Request.WithContext(ctx)

		result, state := g.decide(c, &mctx)

		if result.Code == "" {
			metrics.GateDecisionsTotal.WithLabelValues(state, "none").Inc()
			if result.Authenticated {
				c.Set(ContextWalletKey, result.WalletAddress)
				c.Request.Header.Set(WalletHeaderName, result.WalletAddress)
				c.Request = c.Request.WithContext(slogctx.With(c.Request.Context(), "wallet", result.WalletAddress))
			}
			c.Next()
			return
		}

		metrics.GateDecisionsTotal.WithLabelValues(state, string(result.Code)).Inc()
		slogctx.Info(ctx, "access denied", "state", state, "code", string(result.Code))

		if err := g.events.PublishDenied(ctx, result.WalletAddress, path, result.Code); err != nil {
			slogctx.Warn(ctx, "failed to publish denied event", "error", err)
		}

		g.responses.Render(c, mctx, result.Code, result.Message)
	}
}

// decide runs the protection, session and balance checks. Any panic inside
// the checks terminates in SERVER_ERROR rather than escaping to the caller.
func (g *Gate) decide(c *gin.Context, mctx *core.RequestContext) (result core.Result, state string) {
	defer func() {
		if r := recover(); r != nil {
			slogctx.Error(c.Request.Context(), "panic in auth gate", "panic", r)
			result = core.Result{Code: core.KindServerError}
			state = "server_error"
		}
	}()

	if !g.resolver.Protected(mctx.Path) {
		return core.Result{}, "pass_through"
	}
	mctx.Protected = true

	token := ExtractSessionToken(c.Request)
	if token == "" {
		return core.Result{Code: core.KindAuthMissing}, "unauthenticated"
	}

	payload, err := g.tokenizer.Verify(token)
	if err != nil {
		return core.Result{Code: core.KindAuthInvalid}, "unauthenticated"
	}

	requirement := g.resolver.Resolve(mctx.Path)
	mctx.Requirement = &requirement

	validation := g.validator.Validate(c.Request.Context(), payload.WalletAddress, requirement)
	if !validation.Valid {
		return core.Result{
			WalletAddress: payload.WalletAddress,
			Code:          validation.Code,
			Message:       validation.Message,
		}, "unauthorized"
	}

	return core.Result{Authenticated: true, WalletAddress: payload.WalletAddress}, "authenticated"
}

func (g *Gate) excludedPath(path string) bool {
	for _, prefix := range g.excluded {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (g *Gate) mode(c *gin.Context) core.Mode {
	path := c.Request.URL.Path
	for _, prefix := range g.api {
		if strings.HasPrefix(path, prefix) {
			return core.ModeAPI
		}
	}
	if strings.Contains(c.GetHeader("Accept"), "application/json") {
		return core.ModeAPI
	}
	return core.ModePage
}
