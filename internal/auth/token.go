package auth

import (
	"errors"
	"fmt"
	"time"

	"ecoreport/pkg/types"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

const (
	SessionTTL    = 24 * time.Hour
	RememberMeTTL = 30 * 24 * time.Hour
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Claims is the identity carried by a session token.
type Claims struct {
	AccountID string
	Email     string
	Role      types.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TTLFor picks the session tier.
func TTLFor(rememberMe bool) time.Duration {
	if rememberMe {
		return RememberMeTTL
	}
	return SessionTTL
}

type Issuer struct {
	key    jwk.Key
	issuer string
	now    func() time.Time
}

type Option func(*Issuer)

// WithClock overrides the time source used for iat/exp and validation.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		i.now = now
	}
}

func NewIssuer(secret []byte, keyID, issuer string, opts ...Option) (*Issuer, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("token secret must be at least 32 bytes, got %d", len(secret))
	}

	key, err := jwk.Import(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to import signing key: %w", err)
	}

	if err := key.Set(jwk.KeyIDKey, keyID); err != nil {
		return nil, fmt.Errorf("failed to set key id: %w", err)
	}

	if err := key.Set(jwk.AlgorithmKey, jwa.HS256()); err != nil {
		return nil, fmt.Errorf("failed to set key algorithm: %w", err)
	}

	i := &Issuer{
		key:    key,
		issuer: issuer,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(i)
	}

	return i, nil
}

// IssueToken signs claims that expire ttl from now.
func (i *Issuer) IssueToken(accountID, email string, role types.Role, ttl time.Duration) (string, *Claims, error) {
	now := i.now().Truncate(time.Second)
	expires := now.Add(ttl)

	token, err := jwt.NewBuilder().
		Issuer(i.issuer).
		Subject(accountID).
		IssuedAt(now).
		Expiration(expires).
		Claim("email", email).
		Claim("role", string(role)).
		Build()
	if err != nil {
		return "", nil, fmt.Errorf("failed to build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), i.key))
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return string(signed), &Claims{
		AccountID: accountID,
		Email:     email,
		Role:      role,
		IssuedAt:  now,
		ExpiresAt: expires,
	}, nil
}

// VerifyToken checks signature, issuer and expiry. Expired tokens return
// ErrExpiredToken; every other failure returns ErrInvalidToken.
func (i *Issuer) VerifyToken(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrInvalidToken
	}

	token, err := jwt.Parse(
		[]byte(raw),
		jwt.WithKey(jwa.HS256(), i.key),
		jwt.WithValidate(true),
		jwt.WithIssuer(i.issuer),
		jwt.WithClock(jwt.ClockFunc(i.now)),
	)
	if err != nil {
		if errors.Is(err, jwt.TokenExpiredError()) {
			return nil, fmt.Errorf("%w: %s", ErrExpiredToken, err)
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, err)
	}

	claims := &Claims{}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	claims.AccountID = subject

	if err := token.Get("email", &claims.Email); err != nil {
		return nil, fmt.Errorf("%w: missing email claim", ErrInvalidToken)
	}

	var role string
	if err := token.Get("role", &role); err != nil || !types.Role(role).Valid() {
		return nil, fmt.Errorf("%w: missing or unknown role claim", ErrInvalidToken)
	}
	claims.Role = types.Role(role)

	claims.IssuedAt, _ = token.IssuedAt()
	claims.ExpiresAt, _ = token.Expiration()

	return claims, nil
}
