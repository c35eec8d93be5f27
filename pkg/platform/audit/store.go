package audit

import (
	"context"

	id "presale/pkg/domain"
)

// Store persists or forwards audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByUser(ctx context.Context, userID id.UserID) ([]Event, error)
}

// Emitter is what services depend on.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}
