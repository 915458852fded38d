package domain

// Identity is the resolved actor for a request: either anonymous or a
// specific authenticated user with its permission flags snapshot. It is
// threaded explicitly through the service layer rather than read from
// ambient request state.
type Identity struct {
	// UserID is the authenticated user's ID, zero for anonymous.
	UserID int64

	// IsAdmin mirrors the user's admin flag at resolution time.
	IsAdmin bool

	// CanComment mirrors the user's comment privilege at resolution time.
	CanComment bool
}

// Anonymous returns the identity of an unauthenticated request.
func Anonymous() Identity {
	return Identity{}
}

// Authenticated returns the identity of a resolved user.
func Authenticated(user *User) Identity {
	return Identity{
		UserID:     user.ID,
		IsAdmin:    user.IsAdmin,
		CanComment: user.CanComment,
	}
}

// IsAnonymous reports whether the identity carries no authenticated user.
func (i Identity) IsAnonymous() bool {
	return i.UserID == 0
}
