package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/layer-3/tollgate/core"
	"github.com/layer-3/tollgate/ports"
)

const (
	// LoginTopic carries successful wallet authentications
	LoginTopic = "tollgate.login"

	// LogoutTopic carries session invalidations
	LogoutTopic = "tollgate.logout"

	// DeniedTopic carries access denials on protected paths
	DeniedTopic = "tollgate.denied"
)

// LoginEvent represents a successful authentication
type LoginEvent struct {
	Address string `json:"address"`
	TokenID string `json:"token_id"`
}

// LogoutEvent represents a session invalidation
type LogoutEvent struct {
	Address string `json:"address"`
	TokenID string `json:"token_id"`
}

// DeniedEvent represents a denied request on a protected path
type DeniedEvent struct {
	Address string `json:"address,omitempty"`
	Path    string `json:"path"`
	Code    string `json:"code"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) *WatermillPublisher {
	return &WatermillPublisher{publisher: publisher}
}

var _ ports.EventPublisher = (*WatermillPublisher)(nil)

// PublishLogin publishes a login event
func (p *WatermillPublisher) PublishLogin(ctx context.Context, address, tokenID string) error {
	return p.publish(LoginTopic, tokenID, LoginEvent{Address: address, TokenID: tokenID})
}

// PublishLogout publishes a logout event
func (p *WatermillPublisher) PublishLogout(ctx context.Context, address, tokenID string) error {
	return p.publish(LogoutTopic, tokenID, LogoutEvent{Address: address, TokenID: tokenID})
}

// PublishDenied publishes an access-denied event
func (p *WatermillPublisher) PublishDenied(ctx context.Context, address, path string, code core.ErrorKind) error {
	return p.publish(DeniedTopic, uuid.New().String(), DeniedEvent{Address: address, Path: path, Code: string(code)})
}

func (p *WatermillPublisher) publish(topic, id string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(id, payload)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
