package domain

// Identity is the signed-in user as supplied by the session layer. It is
// read-only for the duration of a session. Subject is the account id the
// session was issued for.
type Identity struct {
	Subject  string
	Role     Role
	Name     string
	Sambhag  string
	District string
	Block    string
}

// DisplayName returns the name used for authored responses.
func (i Identity) DisplayName() string {
	if i.Name == "" {
		return DefaultResponder
	}
	return i.Name
}

// ScopeKey identifies the slice of data the identity is entitled to see.
func (i Identity) ScopeKey() string {
	return string(i.Role) + "|" + i.Sambhag + "|" + i.District + "|" + i.Block
}

// Session is the state of session resolution at the time of a render.
type Session struct {
	Loading       bool
	Authenticated bool
	User          *Identity
}

// AnonymousSession is a resolved session without a signed-in user.
func AnonymousSession() Session {
	return Session{}
}

// AuthenticatedSession wraps a resolved identity.
func AuthenticatedSession(identity Identity) Session {
	return Session{Authenticated: true, User: &identity}
}

// LoadingSession is a session whose resolution is still pending.
func LoadingSession() Session {
	return Session{Loading: true}
}
