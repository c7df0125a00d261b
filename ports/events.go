package ports

import (
	"context"

	"github.com/layer-3/tollgate/core"
)

// EventPublisher publishes auth lifecycle events to notify other instances
type EventPublisher interface {
	PublishLogin(ctx context.Context, address string, tokenID string) error
	PublishLogout(ctx context.Context, address string, tokenID string) error
	PublishDenied(ctx context.Context, address string, path string, code core.ErrorKind) error
}
