package ports

import (
	"context"
	"time"

	"github.com/yamdb/reviewhub/internal/core/domain"
)

// Identity is what a bearer token proves: who, not what role.
type Identity struct {
	UserID   int64
	Username string
}

// TokenIssuer issues and verifies opaque bearer tokens.
type TokenIssuer interface {
	Issue(id Identity) (string, error)
	Verify(token string) (Identity, error)
}

// CodeGenerator makes confirmation codes bound to a snapshot of the user's
// mutable state; any change to that state invalidates earlier codes.
type CodeGenerator interface {
	Make(u *domain.User, now time.Time) string
	Check(u *domain.User, code string, now time.Time) bool
}

// Notifier delivers a message to an email address.
type Notifier interface {
	Send(ctx context.Context, recipient, subject, body string) error
}
