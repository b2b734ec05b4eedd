// Package session carries who is making a request. A Session is a plain
// value: it is signed into a token at login and parsed back per request.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Role is what a session may do.
type Role string

const (
	RoleStudent Role = "student"
	RoleWarden  Role = "warden"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleWarden
}

// Session is the identity attached to one request.
type Session struct {
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// ErrInvalidSession is returned for sessions without a name or with an
// unknown role.
var ErrInvalidSession = errors.New("invalid session")

// Validate checks that s has a name and a known role.
func (s Session) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidSession)
	}
	if !s.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidSession, s.Role)
	}
	return nil
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored in ctx, if any.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(contextKey{}).(Session)
	return s, ok
}
