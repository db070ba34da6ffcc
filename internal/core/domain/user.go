package domain

import (
	"fmt"
	"net/mail"
	"regexp"
	"time"
	"unicode/utf8"
)

// Role is the authorization tier of a user.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// roleRank orders roles; anonymous (the empty role) ranks lowest.
var roleRank = map[Role]int{
	"":            0,
	RoleUser:      1,
	RoleModerator: 2,
	RoleAdmin:     3,
}

// ParseRole rejects anything outside the closed role set.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return r, nil
	}
	return "", NewValidationError("role", fmt.Sprintf("unknown role %q", s))
}

// AtLeast reports whether r is at or above min in the role order.
func (r Role) AtLeast(min Role) bool {
	return roleRank[r] >= roleRank[min]
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

const (
	UsernameMaxLength = 150
	EmailMaxLength    = 254
	NameMaxLength     = 150
	// ReservedUsername is the path segment of the self-profile endpoint.
	ReservedUsername = "me"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// User is an account. Password storage does not exist; access goes through
// confirmation codes.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Bio       string    `json:"bio"`
	Role      Role      `json:"role"`
	IsStaff   bool      `json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
	LastLogin time.Time `json:"-"`
}

// EffectiveRole folds the staff flag into the admin tier.
func (u *User) EffectiveRole() Role {
	if u.IsStaff {
		return RoleAdmin
	}
	return u.Role
}

// ValidateUsername checks the pattern, length and reserved name.
func ValidateUsername(username string) error {
	switch {
	case username == "":
		return NewValidationError("username", "this field is required")
	case utf8.RuneCountInString(username) > UsernameMaxLength:
		return NewValidationError("username", fmt.Sprintf("must be at most %d characters", UsernameMaxLength))
	case !usernamePattern.MatchString(username):
		return NewValidationError("username", "may contain only letters, digits and @/./+/-/_")
	case IsReservedUsername(username):
		return NewValidationError("username", fmt.Sprintf("%q is reserved", ReservedUsername))
	}
	return nil
}

// IsReservedUsername reports whether username is the self-profile segment.
// The match is exact: "Me" is an ordinary username.
func IsReservedUsername(username string) bool {
	return username == ReservedUsername
}

// ValidateEmail checks the address syntax and length.
func ValidateEmail(email string) error {
	if email == "" {
		return NewValidationError("email", "this field is required")
	}
	if len(email) > EmailMaxLength {
		return NewValidationError("email", fmt.Sprintf("must be at most %d characters", EmailMaxLength))
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return NewValidationError("email", "enter a valid email address")
	}
	return nil
}

// Validate checks every user-supplied field.
func (u *User) Validate() error {
	verr := &ValidationError{}
	if err := ValidateUsername(u.Username); err != nil {
		mergeInto(verr, err)
	}
	if err := ValidateEmail(u.Email); err != nil {
		mergeInto(verr, err)
	}
	if utf8.RuneCountInString(u.FirstName) > NameMaxLength {
		verr.Add("first_name", fmt.Sprintf("must be at most %d characters", NameMaxLength))
	}
	if utf8.RuneCountInString(u.LastName) > NameMaxLength {
		verr.Add("last_name", fmt.Sprintf("must be at most %d characters", NameMaxLength))
	}
	if !u.Role.Valid() {
		verr.Add("role", fmt.Sprintf("unknown role %q", u.Role))
	}
	return verr.OrNil()
}

func mergeInto(dst *ValidationError, err error) {
	if v, ok := err.(*ValidationError); ok {
		for k, msg := range v.Fields {
			dst.Add(k, msg)
		}
	}
}

// Now returns the current UTC time at the precision every store keeps.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
