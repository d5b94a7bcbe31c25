package token

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret-with-plenty-of-entropy"

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(testSecret, time.Hour)
}

func TestIssueRoundTripsClaims(t *testing.T) {
	mgr := newTestManager(t)

	identity := Identity{
		Username:    "jdoe",
		Role:        "PROFESSOR",
		UserID:      42,
		Email:       "jdoe@nexis.edu",
		FirstName:   "Jane",
		LastName:    "Doe",
		PhoneNumber: "555-0100",
		Enabled:     true,
	}

	signed, expiresAt, err := mgr.Issue(identity)
	require.NoError(t, err)
	require.True(t, expiresAt.After(time.Now()))

	require.True(t, mgr.Validate(signed))
	require.Equal(t, "jdoe", mgr.ExtractSubject(signed))
	require.Equal(t, "PROFESSOR", mgr.ExtractRole(signed))

	id, ok := mgr.ExtractUserID(signed)
	require.True(t, ok)
	require.Equal(t, int64(42), id)
	require.Equal(t, "jdoe@nexis.edu", mgr.ExtractEmail(signed))

	claims := mgr.ExtractClaims(signed)
	require.NotNil(t, claims)
	require.Equal(t, "jdoe", claims.Subject)
	require.Equal(t, "PROFESSOR", claims.Role)
	require.Equal(t, "Jane", claims.FirstName)
	require.NotNil(t, claims.Enabled)
	require.True(t, *claims.Enabled)
	require.True(t, claims.ExpiresAt.After(claims.IssuedAt.Time))
}

func TestIssueWithoutRoleDegradesToSubjectOnly(t *testing.T) {
	mgr := newTestManager(t)

	signed, _, err := mgr.Issue(Identity{Username: "jdoe", UserID: 42, Email: "jdoe@nexis.edu"})
	require.NoError(t, err)

	require.True(t, mgr.Validate(signed))
	require.Equal(t, RoleUnknown, mgr.ExtractRole(signed))

	claims := mgr.ExtractClaims(signed)
	require.NotNil(t, claims)
	require.Nil(t, claims.UserID)
	require.Empty(t, claims.Email)
}

func TestIssueSubjectCarriesOnlySubjectAndTimestamps(t *testing.T) {
	mgr := newTestManager(t)

	signed, _, err := mgr.IssueSubject("jdoe")
	require.NoError(t, err)

	claims := mgr.ExtractClaims(signed)
	require.NotNil(t, claims)
	require.Equal(t, "jdoe", claims.Subject)
	require.Empty(t, claims.Role)
	require.Nil(t, claims.UserID)
	require.Nil(t, claims.Enabled)
	require.Equal(t, RoleUnknown, mgr.ExtractRole(signed))
}

func TestValidateRejectsForeignSecret(t *testing.T) {
	mgr := newTestManager(t)
	other := NewManager("a-completely-different-secret", time.Hour)

	signed, _, err := other.Issue(Identity{Username: "jdoe", Role: "STUDENT", UserID: 1})
	require.NoError(t, err)

	require.False(t, mgr.Validate(signed))
	require.Equal(t, RoleUnknown, mgr.ExtractRole(signed))
	require.Empty(t, mgr.ExtractSubject(signed))
}

func TestValidateRejectsMalformedTokens(t *testing.T) {
	mgr := newTestManager(t)

	for _, tok := range []string{"", "garbage", "a.b.c", "Bearer abc"} {
		require.False(t, mgr.Validate(tok), "token %q should be invalid", tok)
		require.Equal(t, RoleUnknown, mgr.ExtractRole(tok))
		require.Nil(t, mgr.ExtractClaims(tok))
	}
}

func TestValidateRejectsExpiredAtBoundary(t *testing.T) {
	mgr := newTestManager(t)

	// exp set to issuance instant: by the time Validate runs, now >= exp,
	// which the contract treats as expired.
	now := time.Now()
	claims := &Claims{
		Role: "ADMIN",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "jdoe",
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	require.False(t, mgr.Validate(signed))
	require.Nil(t, mgr.ExtractClaims(signed))
	require.Equal(t, RoleUnknown, mgr.ExtractRole(signed))
}

func TestValidateRejectsUnexpectedSigningMethod(t *testing.T) {
	mgr := newTestManager(t)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "jdoe",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	require.False(t, mgr.Validate(signed))
}

func TestFromAuthorizationHeader(t *testing.T) {
	require.Equal(t, "abc.def.ghi", FromAuthorizationHeader("Bearer abc.def.ghi"))
	require.Empty(t, FromAuthorizationHeader(""))
	require.Empty(t, FromAuthorizationHeader("Basic dXNlcjpwYXNz"))
	require.Empty(t, FromAuthorizationHeader("bearer lowercase-scheme"))
	require.Empty(t, FromAuthorizationHeader("abc.def.ghi"))
}
