package session

import "gitaid/internal/model"

// Status is the lifecycle state of the user's session.
type Status int

const (
	StatusLoading Status = iota
	StatusAuthenticated
	StatusUnauthenticated
)

// Session is the authenticated identity context for the current user. It is
// created by the identity lookup on startup, read-only afterwards, and
// destroyed on sign-out.
type Session struct {
	Status      Status
	User        model.User
	AccessToken string // hosting-API credential
}

// Authenticated reports whether the session carries a signed-in user.
func (s Session) Authenticated() bool {
	return s.Status == StatusAuthenticated && s.User.ID != ""
}
