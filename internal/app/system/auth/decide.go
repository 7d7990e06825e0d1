package auth

// Decision is the outcome of checking a user against a route's requirements.
type Decision int

const (
	Unauthenticated Decision = iota
	Unauthorized
	Authorized
)

func (d Decision) String() string {
	switch d {
	case Unauthenticated:
		return "unauthenticated"
	case Unauthorized:
		return "unauthorized"
	case Authorized:
		return "authorized"
	default:
		return "unknown"
	}
}

// Decide reports whether u may see a route. adminOnly routes additionally
// require the admin role.
func Decide(u *SessionUser, adminOnly bool) Decision {
	if u == nil {
		return Unauthenticated
	}
	if adminOnly && !u.IsAdmin() {
		return Unauthorized
	}
	return Authorized
}

// Redirect returns where a denied request should go: the login page for
// Unauthenticated, the home page for Unauthorized, "" when Authorized.
func (d Decision) Redirect() string {
	switch d {
	case Unauthenticated:
		return "/login"
	case Unauthorized:
		return "/"
	default:
		return ""
	}
}
