package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-calendar/internal/domain"
)

func TestIssueAndValidate(t *testing.T) {
	t.Parallel()

	iss := NewIssuer("super-secret", time.Hour)
	sess, err := iss.Issue(&domain.User{ID: 42, DisplayName: "Alice"})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, int64(42), sess.UserID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), sess.ExpiresAt, 5*time.Second)

	id, err := iss.Validate(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: 42, DisplayName: "Alice"}, id)
}

func TestIssue_RequiresUserID(t *testing.T) {
	t.Parallel()

	_, err := NewIssuer("k", time.Hour).Issue(&domain.User{})
	require.Error(t, err)
	_, err = NewIssuer("k", time.Hour).Issue(nil)
	require.Error(t, err)
}

func TestValidate_Failures(t *testing.T) {
	t.Parallel()

	iss := NewIssuer("right-secret", time.Hour)
	good, err := iss.Issue(&domain.User{ID: 1, DisplayName: "u"})
	require.NoError(t, err)

	expiredIssuer := NewIssuer("right-secret", time.Hour)
	expiredIssuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredIssuer.Issue(&domain.User{ID: 1, DisplayName: "u"})
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	foreignIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("right-secret"))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer, Subject: "1"},
	}).SignedString([]byte("right-secret"))
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   "not-a-number",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("right-secret"))
	require.NoError(t, err)

	tests := map[string]struct {
		issuer *Issuer
		token  string
	}{
		"empty":          {iss, ""},
		"malformed":      {iss, "not.a.jwt"},
		"wrong secret":   {NewIssuer("wrong-secret", time.Hour), good.Token},
		"expired":        {iss, expired.Token},
		"alg none":       {iss, noneToken},
		"foreign issuer": {iss, foreignIssuer},
		"no expiry":      {iss, noExpiry},
		"bad subject":    {iss, badSubject},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := tt.issuer.Validate(tt.token)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrUnauthenticated))
		})
	}
}
