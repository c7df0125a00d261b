package ports

import (
	"context"

	"github.com/layer-3/tollgate/core"
)

// ChallengeStore issues and consumes one-time authentication challenges.
//
// Consume is an atomic check-and-delete: of any number of concurrent calls
// for the same nonce, exactly one observes the challenge and every other
// observes nil. Absence and expiry are normal outcomes communicated as a nil
// challenge with a nil error; a non-nil error means the backing store itself
// failed.
type ChallengeStore interface {
	Generate(ctx context.Context) (*core.Challenge, error)
	Consume(ctx context.Context, nonce string) (*core.Challenge, error)
}
