package uploadclient

import "strings"

// Session is the auth context the upload form is built with. It is either
// Authenticated (carries a bearer token) or Unauthenticated.
type Session interface {
	Token() (string, bool)
}

type Authenticated struct {
	token string
}

func (a Authenticated) Token() (string, bool) {
	return a.token, true
}

type Unauthenticated struct{}

func (Unauthenticated) Token() (string, bool) {
	return "", false
}

// NewSession returns Authenticated for a non-empty token.
func NewSession(token string) Session {
	token = strings.TrimSpace(token)
	if token == "" {
		return Unauthenticated{}
	}
	return Authenticated{token: token}
}
