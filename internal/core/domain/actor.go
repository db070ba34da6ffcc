package domain

// Actor is the party performing a request. The zero value is anonymous.
type Actor struct {
	UserID   int64
	Username string
	Role     Role
}

// ActorFor builds the actor for an authenticated user using the user's
// current role.
func ActorFor(u *User) Actor {
	return Actor{UserID: u.ID, Username: u.Username, Role: u.EffectiveRole()}
}

func (a Actor) Authenticated() bool { return a.UserID != 0 }
