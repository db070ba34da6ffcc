// Package policy decides who may do what to which resource. Decisions are
// pure functions of the actor, the action and the resource ownership.
package policy

import (
	"fmt"

	"github.com/yamdb/reviewhub/internal/core/domain"
)

type Action string

const (
	Read   Action = "read"
	Create Action = "create"
	Update Action = "update"
	Delete Action = "delete"
)

type Kind string

const (
	KindCategory Kind = "category"
	KindGenre    Kind = "genre"
	KindTitle    Kind = "title"
	KindReview   Kind = "review"
	KindComment  Kind = "comment"
	// KindProfile is the actor's own account reached through "me".
	KindProfile Kind = "profile"
	// KindUser is any account reached through user management.
	KindUser Kind = "user"
)

// Resource identifies the target of an action. OwnerID is the author of a
// review or comment, or the account id of a profile.
type Resource struct {
	Kind    Kind
	OwnerID int64
}

func (r Resource) String() string {
	if r.OwnerID == 0 {
		return string(r.Kind)
	}
	return fmt.Sprintf("%s(owner=%d)", r.Kind, r.OwnerID)
}

// Can reports whether actor may perform action on res.
func Can(actor domain.Actor, action Action, res Resource) bool {
	switch res.Kind {
	case KindCategory, KindGenre, KindTitle:
		if action == Read {
			return true
		}
		return actor.Authenticated() && actor.Role.AtLeast(domain.RoleAdmin)

	case KindReview, KindComment:
		switch action {
		case Read:
			return true
		case Create:
			return actor.Authenticated()
		case Update, Delete:
			if !actor.Authenticated() {
				return false
			}
			return actor.UserID == res.OwnerID || actor.Role.AtLeast(domain.RoleModerator)
		}
		return false

	case KindProfile:
		if action != Read && action != Update {
			return false
		}
		return actor.Authenticated() && actor.UserID == res.OwnerID

	case KindUser:
		// Moderators rank above users but never manage accounts.
		return actor.Authenticated() && actor.Role == domain.RoleAdmin
	}
	return false
}

// Authorize is Can as an error: ErrUnauthenticated for anonymous actors,
// ErrForbidden for everyone else.
func Authorize(actor domain.Actor, action Action, res Resource) error {
	if Can(actor, action, res) {
		return nil
	}
	if !actor.Authenticated() {
		return fmt.Errorf("%s %s: %w", action, res, domain.ErrUnauthenticated)
	}
	return fmt.Errorf("%s %s: %w", action, res, domain.ErrForbidden)
}
