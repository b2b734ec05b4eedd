package session

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	iss := NewIssuer([]byte("test-secret"), time.Hour)

	tok, err := iss.Issue(Session{Name: "Priya", Role: RoleStudent})
	require.NoError(t, err)

	s, err := iss.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, Session{Name: "Priya", Role: RoleStudent}, s)
}

func TestIssueRejectsInvalidSession(t *testing.T) {
	iss := NewIssuer([]byte("test-secret"), time.Hour)

	_, err := iss.Issue(Session{Name: " ", Role: RoleWarden})
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = iss.Issue(Session{Name: "x", Role: "admin"})
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestParseRejectsTampering(t *testing.T) {
	iss := NewIssuer([]byte("test-secret"), time.Hour)
	tok, err := iss.Issue(Session{Name: "Sam", Role: RoleStudent})
	require.NoError(t, err)

	other := NewIssuer([]byte("another-secret"), time.Hour)
	_, err = other.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	_, err = iss.Parse(parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2])))
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = iss.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	iss := NewIssuer([]byte("test-secret"), time.Minute)
	issuedAt := time.Now().Add(-time.Hour)
	iss.now = func() time.Time { return issuedAt }

	tok, err := iss.Issue(Session{Name: "Sam", Role: RoleWarden})
	require.NoError(t, err)

	iss.now = time.Now
	_, err = iss.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestContextRoundTrip(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := NewContext(context.Background(), Session{Name: "W", Role: RoleWarden})
	s, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, RoleWarden, s.Role)
}

func TestNewIssuerFromEnv(t *testing.T) {
	t.Setenv("WELLCHECK_SESSION_SECRET", "")
	a, err := NewIssuerFromEnv()
	require.NoError(t, err)
	b, err := NewIssuerFromEnv()
	require.NoError(t, err)

	tok, err := a.Issue(Session{Name: "Sam", Role: RoleStudent})
	require.NoError(t, err)
	_, err = b.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken, "random secrets differ per issuer")

	t.Setenv("WELLCHECK_SESSION_SECRET", "shared")
	a, _ = NewIssuerFromEnv()
	b, _ = NewIssuerFromEnv()
	tok, err = a.Issue(Session{Name: "Sam", Role: RoleStudent})
	require.NoError(t, err)
	_, err = b.Parse(tok)
	assert.NoError(t, err)
}
