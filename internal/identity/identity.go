// Package identity defines who is making a request and what they may do.
//
// An Identity is either anonymous or an authenticated user; callers must
// handle both. The authorization predicates are pure functions over an
// Identity and an entity, with no side effects, so every access rule in the
// system is exhaustively testable.
package identity

// Identity represents the requester resolved from the session token.
// The zero value is anonymous.
type Identity struct {
	UserID       uint
	IsSuperAdmin bool

	authenticated bool
}

// Anonymous returns the identity of an unauthenticated request.
func Anonymous() Identity {
	return Identity{}
}

// Authenticated returns the identity of a signed-in user.
func Authenticated(userID uint, isSuperAdmin bool) Identity {
	return Identity{
		UserID:        userID,
		IsSuperAdmin:  isSuperAdmin,
		authenticated: true,
	}
}

// IsAuthenticated reports whether the requester has a valid session.
func (i Identity) IsAuthenticated() bool {
	return i.authenticated
}
