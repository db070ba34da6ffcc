package domain

import (
	"errors"
	"testing"
)

func TestParseRole(t *testing.T) {
	for _, s := range []string{"user", "moderator", "admin"} {
		r, err := ParseRole(s)
		if err != nil {
			t.Fatalf("ParseRole(%q): unexpected error %v", s, err)
		}
		if string(r) != s {
			t.Errorf("ParseRole(%q) = %q", s, r)
		}
	}

	for _, s := range []string{"", "Admin", "superuser"} {
		if _, err := ParseRole(s); !errors.Is(err, ErrValidation) {
			t.Errorf("ParseRole(%q): expected ErrValidation, got %v", s, err)
		}
	}
}

func TestRole_AtLeast(t *testing.T) {
	if !RoleAdmin.AtLeast(RoleModerator) || !RoleModerator.AtLeast(RoleUser) {
		t.Error("expected admin >= moderator >= user")
	}
	if RoleUser.AtLeast(RoleModerator) {
		t.Error("user must not rank as moderator")
	}
	if Role("").AtLeast(RoleUser) {
		t.Error("anonymous must rank below user")
	}
}

func TestUser_EffectiveRole(t *testing.T) {
	u := &User{Role: RoleUser, IsStaff: true}
	if u.EffectiveRole() != RoleAdmin {
		t.Errorf("staff user should act as admin, got %s", u.EffectiveRole())
	}
}

func TestValidateUsername(t *testing.T) {
	valid := []string{"alice", "a.b@c+d-e_f", "Me", "ME"}
	for _, u := range valid {
		if err := ValidateUsername(u); err != nil {
			t.Errorf("ValidateUsername(%q): unexpected error %v", u, err)
		}
	}

	invalid := []string{"", "me", "has space", "semi;colon"}
	for _, u := range invalid {
		if err := ValidateUsername(u); !errors.Is(err, ErrValidation) {
			t.Errorf("ValidateUsername(%q): expected ErrValidation, got %v", u, err)
		}
	}
}

func TestNotFoundVariantsMatchErrNotFound(t *testing.T) {
	for _, err := range []error{ErrUserNotFound, ErrTitleNotFound, ErrGenreNotFound, ErrCommentNotFound} {
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("%v should match ErrNotFound", err)
		}
	}
	if errors.Is(ErrTitleNotFound, ErrReviewNotFound) {
		t.Error("distinct not-found variants must not match each other")
	}
}

func TestValidationError_Fields(t *testing.T) {
	verr := (&ValidationError{}).Add("score", "too high").Add("text", "required")
	if verr.Error() != "score: too high; text: required" {
		t.Errorf("unexpected message %q", verr.Error())
	}
	if (&ValidationError{}).OrNil() != nil {
		t.Error("empty ValidationError should collapse to nil")
	}
}
