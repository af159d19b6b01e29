package auth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anindta/task-management-project/internal/auth"
	"github.com/anindta/task-management-project/internal/config"
	"github.com/anindta/task-management-project/internal/testutil"
)

func newTokens(t *testing.T) *auth.TokenService {
	t.Helper()

	ts, err := auth.NewTokenService(testutil.Config().Token)
	require.NoError(t, err)

	return ts
}

func TestNewTokenServiceKeyLength(t *testing.T) {
	_, err := auth.NewTokenService(config.Token{Key: "short"})
	require.ErrorIs(t, err, auth.ErrTokenKeyTooShort)

	ts, err := auth.NewTokenService(config.Token{Key: testutil.TokenKey})
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, ts.Expiry())
}

func TestIssueAndVerify(t *testing.T) {
	ts := newTokens(t)
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	ts.SetClock(func() time.Time { return now })

	token, err := ts.Issue(auth.Identity{UserID: 7, Username: "alice", RoleName: "Admin"})
	require.NoError(t, err)

	claims, err := ts.Verify(token)
	require.NoError(t, err)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint64(7), id)
	assert.Equal(t, "alice", claims.Name)
	assert.Equal(t, "Admin", claims.Role)
	assert.True(t, now.Add(24*time.Hour).Equal(claims.ExpiresAt.Time))
	assert.NotEmpty(t, claims.ID)

	// the header names the algorithm
	parsed, _, err := jwt.NewParser().ParseUnverified(token, &auth.Claims{})
	require.NoError(t, err)
	assert.Equal(t, "HS512", parsed.Method.Alg())
}

func TestIssueDefaultRole(t *testing.T) {
	ts := newTokens(t)

	token, err := ts.Issue(auth.Identity{UserID: 1, Username: "x"})
	require.NoError(t, err)

	claims, err := ts.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "Employee", claims.Role)
}

func TestVerifyExpired(t *testing.T) {
	ts := newTokens(t)
	issued := time.Now()
	ts.SetClock(func() time.Time { return issued })

	token, err := ts.Issue(auth.Identity{UserID: 1, Username: "alice"})
	require.NoError(t, err)

	ts.SetClock(func() time.Time { return issued.Add(24*time.Hour + time.Second) })

	_, err = ts.Verify(token)
	require.ErrorIs(t, err, auth.ErrTokenExpired)

	// still fine a second before expiry
	ts.SetClock(func() time.Time { return issued.Add(24*time.Hour - time.Second) })

	_, err = ts.Verify(token)
	require.NoError(t, err)
}

func TestVerifyTampered(t *testing.T) {
	ts := newTokens(t)

	token, err := ts.Issue(auth.Identity{UserID: 1, Username: "alice", RoleName: "Employee"})
	require.NoError(t, err)

	// re-sign the claims with a foreign key
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS512, auth.Claims{
		Name: "alice",
		Role: "Admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			Issuer:    testutil.Config().Token.Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(strings.Repeat("x", 64)))
	require.NoError(t, err)

	// swap the payload of a genuine token
	parts := strings.Split(token, ".")
	forgedParts := strings.Split(forged, ".")
	spliced := parts[0] + "." + forgedParts[1] + "." + parts[2]

	testCases := []struct {
		name          string
		token         string
		expectedError error
	}{
		{name: "foreign key", token: forged, expectedError: auth.ErrInvalidSignature},
		{name: "payload swapped", token: spliced, expectedError: auth.ErrInvalidSignature},
		{name: "garbage", token: "not.a.token", expectedError: auth.ErrTokenMalformed},
		{name: "empty", token: "", expectedError: auth.ErrTokenMalformed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ts.Verify(tc.token)
			require.ErrorIs(t, err, tc.expectedError)
			assert.True(t, auth.IsTokenError(err))
		})
	}
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	ts := newTokens(t)

	hs256, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			Issuer:    testutil.Config().Token.Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testutil.TokenKey))
	require.NoError(t, err)

	_, err = ts.Verify(hs256)
	require.Error(t, err)
	assert.True(t, auth.IsTokenError(err))
}

func TestVerifyRequiresUserSubject(t *testing.T) {
	ts := newTokens(t)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			Issuer:    testutil.Config().Token.Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testutil.TokenKey))
	require.NoError(t, err)

	_, err = ts.Verify(token)
	require.ErrorIs(t, err, auth.ErrTokenMalformed)
}
