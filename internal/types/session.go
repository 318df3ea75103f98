package types

// Session is the resolved caller identity for one request. The zero value is an
// anonymous caller.
type Session struct {
	Email   string
	IsAdmin bool
}

// Authenticated reports whether the request carried a valid token
func (s Session) Authenticated() bool {
	return s.Email != ""
}
