package policy

import (
	"errors"
	"testing"

	"github.com/yamdb/reviewhub/internal/core/domain"
)

var (
	anon      = domain.Actor{}
	alice     = domain.Actor{UserID: 1, Username: "alice", Role: domain.RoleUser}
	bob       = domain.Actor{UserID: 2, Username: "bob", Role: domain.RoleUser}
	moderator = domain.Actor{UserID: 3, Username: "mod", Role: domain.RoleModerator}
	admin     = domain.Actor{UserID: 4, Username: "root", Role: domain.RoleAdmin}
)

func TestCan(t *testing.T) {
	tests := []struct {
		name   string
		actor  domain.Actor
		action Action
		res    Resource
		want   bool
	}{
		// ---- catalog
		{"anonymous reads titles", anon, Read, Resource{Kind: KindTitle}, true},
		{"anonymous cannot create genre", anon, Create, Resource{Kind: KindGenre}, false},
		{"user cannot create category", alice, Create, Resource{Kind: KindCategory}, false},
		{"moderator cannot delete title", moderator, Delete, Resource{Kind: KindTitle}, false},
		{"admin creates title", admin, Create, Resource{Kind: KindTitle}, true},
		{"admin deletes genre", admin, Delete, Resource{Kind: KindGenre}, true},

		// ---- reviews and comments
		{"anonymous reads reviews", anon, Read, Resource{Kind: KindReview, OwnerID: 1}, true},
		{"anonymous cannot post review", anon, Create, Resource{Kind: KindReview}, false},
		{"user posts comment", alice, Create, Resource{Kind: KindComment}, true},
		{"author edits own review", alice, Update, Resource{Kind: KindReview, OwnerID: 1}, true},
		{"author deletes own comment", alice, Delete, Resource{Kind: KindComment, OwnerID: 1}, true},
		{"user cannot delete other comment", bob, Delete, Resource{Kind: KindComment, OwnerID: 1}, false},
		{"moderator deletes other comment", moderator, Delete, Resource{Kind: KindComment, OwnerID: 1}, true},
		{"moderator edits other review", moderator, Update, Resource{Kind: KindReview, OwnerID: 1}, true},
		{"admin deletes other review", admin, Delete, Resource{Kind: KindReview, OwnerID: 1}, true},

		// ---- own profile
		{"owner reads profile", alice, Read, Resource{Kind: KindProfile, OwnerID: 1}, true},
		{"owner updates profile", alice, Update, Resource{Kind: KindProfile, OwnerID: 1}, true},
		{"anonymous has no profile", anon, Read, Resource{Kind: KindProfile}, false},
		{"profile cannot be deleted", alice, Delete, Resource{Kind: KindProfile, OwnerID: 1}, false},

		// ---- user management
		{"user cannot list users", alice, Read, Resource{Kind: KindUser}, false},
		{"moderator cannot change roles", moderator, Update, Resource{Kind: KindUser, OwnerID: 1}, false},
		{"admin creates users", admin, Create, Resource{Kind: KindUser}, true},
		{"admin deletes users", admin, Delete, Resource{Kind: KindUser, OwnerID: 1}, true},

		{"unknown kind", admin, Read, Resource{Kind: "invoice"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Can(tt.actor, tt.action, tt.res); got != tt.want {
				t.Errorf("Can(%+v, %s, %s) = %v, want %v", tt.actor, tt.action, tt.res, got, tt.want)
			}
		})
	}
}

func TestAuthorize_Errors(t *testing.T) {
	if err := Authorize(admin, Create, Resource{Kind: KindTitle}); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}

	err := Authorize(anon, Create, Resource{Kind: KindReview})
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated for anonymous actor, got %v", err)
	}

	err = Authorize(bob, Delete, Resource{Kind: KindComment, OwnerID: 1})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("expected ErrForbidden for non-owner, got %v", err)
	}
}
