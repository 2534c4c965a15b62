package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Enabled:         true,
		Secret:          "test-secret-key-at-least-32-chars",
		Issuer:          "inventory-test",
		TokenExpiration: 15 * time.Minute,
	})
}

func TestIssueServiceToken(t *testing.T) {
	svc := newTestJWTService()

	tok, err := svc.IssueServiceToken("order-sweeper", ScopeMaintenance)
	require.NoError(t, err)

	assert.NotEmpty(t, tok.Token)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), tok.ExpiresAt, 5*time.Second)

	claims, err := svc.ValidateToken(tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "order-sweeper", claims.Service)
	assert.Equal(t, "order-sweeper", claims.Subject)
	assert.Equal(t, "inventory-test", claims.Issuer)
	assert.True(t, claims.HasScope(ScopeMaintenance))
	assert.False(t, claims.HasScope(ScopeReserve))
	assert.NotEmpty(t, claims.ID)
}

func TestIssueServiceToken_RequiresService(t *testing.T) {
	_, err := newTestJWTService().IssueServiceToken("")
	assert.ErrorIs(t, err, ErrMissingService)
}

func TestValidateToken_Expired(t *testing.T) {
	svc := newTestJWTService()
	issuedAt := time.Now().Add(-time.Hour)
	svc.now = func() time.Time { return issuedAt }

	tok, err := svc.IssueServiceToken("cron", ScopeMaintenance)
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(tok.Token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_NotYetValid(t *testing.T) {
	svc := newTestJWTService()
	svc.now = func() time.Time { return time.Now().Add(time.Hour) }

	tok, err := svc.IssueServiceToken("cron", ScopeMaintenance)
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateToken(tok.Token)
	assert.ErrorIs(t, err, ErrTokenNotYetValid)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	tok, err := newTestJWTService().IssueServiceToken("cron", ScopeMaintenance)
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{
		Secret:          "another-secret-key-of-32-characters",
		Issuer:          "inventory-test",
		TokenExpiration: time.Minute,
	})
	_, err = other.ValidateToken(tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_WrongIssuer(t *testing.T) {
	tok, err := newTestJWTService().IssueServiceToken("cron", ScopeMaintenance)
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{
		Secret:          "test-secret-key-at-least-32-chars",
		Issuer:          "someone-else",
		TokenExpiration: time.Minute,
	})
	_, err = other.ValidateToken(tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_RejectsNoneAlgorithm(t *testing.T) {
	svc := newTestJWTService()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "inventory-test",
			Audience:  jwt.ClaimStrings{"inventory-test"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
		Service: "attacker",
		Scopes:  []string{ScopeMaintenance},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Garbage(t *testing.T) {
	_, err := newTestJWTService().ValidateToken("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
