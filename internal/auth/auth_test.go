package auth

import (
	"context"
	"testing"
	"time"

	"ecoreport/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestIssuer(t *testing.T, now *time.Time) *Issuer {
	t.Helper()

	issuer, err := NewIssuer([]byte(testSecret), "test", "ecoreport-test", WithClock(func() time.Time { return *now }))
	require.NoError(t, err)
	return issuer
}

func TestHashAndVerify(t *testing.T) {
	digest, err := Hash(context.Background(), "Sup3rSecret")
	require.NoError(t, err)

	assert.NotEqual(t, "Sup3rSecret", digest)
	assert.True(t, Verify("Sup3rSecret", digest))
	assert.False(t, Verify("sup3rsecret", digest))
	assert.False(t, Verify("Sup3rSecret", "not-a-bcrypt-digest"))
	assert.False(t, Verify("Sup3rSecret", ""))
}

func TestHashIsSalted(t *testing.T) {
	first, err := Hash(context.Background(), "Sup3rSecret")
	require.NoError(t, err)
	second, err := Hash(context.Background(), "Sup3rSecret")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestHashHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Hash(ctx, "Sup3rSecret")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewIssuerRejectsShortSecret(t *testing.T) {
	_, err := NewIssuer([]byte("too-short"), "test", "ecoreport-test")
	assert.Error(t, err)
}

func TestTTLFor(t *testing.T) {
	assert.Equal(t, 86400*time.Second, TTLFor(false))
	assert.Equal(t, 2592000*time.Second, TTLFor(true))
}

func TestIssueAndVerifyToken(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	issuer := newTestIssuer(t, &now)

	raw, issued, err := issuer.IssueToken("acct_1", "ana@example.com", types.RoleExpert, SessionTTL)
	require.NoError(t, err)
	assert.Equal(t, SessionTTL, issued.ExpiresAt.Sub(issued.IssuedAt))

	claims, err := issuer.VerifyToken(raw)
	require.NoError(t, err)

	assert.Equal(t, "acct_1", claims.AccountID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, types.RoleExpert, claims.Role)
	assert.True(t, claims.IssuedAt.Equal(now))
	assert.True(t, claims.ExpiresAt.Equal(now.Add(SessionTTL)))
}

func TestVerifyTokenExpiry(t *testing.T) {
	base := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	now := base
	issuer := newTestIssuer(t, &now)

	raw, _, err := issuer.IssueToken("acct_1", "ana@example.com", types.RoleUser, SessionTTL)
	require.NoError(t, err)

	now = base.Add(86399 * time.Second)
	_, err = issuer.VerifyToken(raw)
	require.NoError(t, err)

	now = base.Add(86401 * time.Second)
	_, err = issuer.VerifyToken(raw)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.NotErrorIs(t, err, ErrInvalidToken)
}

func TestRememberMeTokenOutlivesSession(t *testing.T) {
	base := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	now := base
	issuer := newTestIssuer(t, &now)

	raw, _, err := issuer.IssueToken("acct_1", "ana@example.com", types.RoleUser, RememberMeTTL)
	require.NoError(t, err)

	now = base.Add(29 * 24 * time.Hour)
	_, err = issuer.VerifyToken(raw)
	assert.NoError(t, err)

	now = base.Add(RememberMeTTL + time.Minute)
	_, err = issuer.VerifyToken(raw)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerifyTokenRejectsForeignTokens(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	issuer := newTestIssuer(t, &now)

	other, err := NewIssuer([]byte("fedcba9876543210fedcba9876543210"), "test", "ecoreport-test", WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	foreign, _, err := other.IssueToken("acct_1", "ana@example.com", types.RoleUser, SessionTTL)
	require.NoError(t, err)

	otherIssuer, err := NewIssuer([]byte(testSecret), "test", "someone-else", WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	wrongIss, _, err := otherIssuer.IssueToken("acct_1", "ana@example.com", types.RoleUser, SessionTTL)
	require.NoError(t, err)

	tests := map[string]string{
		"empty":          "",
		"garbage":        "not.a.token",
		"wrong secret":   foreign,
		"wrong issuer":   wrongIss,
		"truncated body": foreign[:len(foreign)-5],
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := issuer.VerifyToken(raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
