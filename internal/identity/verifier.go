// Package identity verifies bearer tokens issued by the external identity
// provider and resolves them to a stable subject identifier.
package identity

import (
	"alcyxob/workout-tracker/internal/config"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrTokenInvalid        = errors.New("invalid or expired token")
	ErrUpstreamUnavailable = errors.New("identity provider unavailable")
)

// Verifier resolves a bearer token to the subject it was issued for.
type Verifier interface {
	Verify(ctx context.Context, token string) (subject string, err error)
}

// KeySource returns the key a token's signature must verify against. It is
// also responsible for rejecting unexpected signing methods.
type KeySource interface {
	Key(ctx context.Context, token *jwt.Token) (interface{}, error)
}

// claims mirrors what the provider puts in ID tokens. Firebase duplicates the
// subject as user_id; self-issued tokens carry uid.
type claims struct {
	UID    string `json:"uid,omitempty"`
	UserID string `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

func (c *claims) subject() string {
	switch {
	case c.UID != "":
		return c.UID
	case c.Subject != "":
		return c.Subject
	default:
		return c.UserID
	}
}

// JWTVerifier checks signature, expiry and optionally issuer and audience.
type JWTVerifier struct {
	keys     KeySource
	issuer   string
	audience string
	timeout  time.Duration
}

// NewJWTVerifier creates a verifier. A zero timeout means the caller's
// context alone bounds verification.
func NewJWTVerifier(keys KeySource, issuer, audience string, timeout time.Duration) *JWTVerifier {
	return &JWTVerifier{keys: keys, issuer: issuer, audience: audience, timeout: timeout}
}

// FromConfig builds the verifier selected by identity.mode.
func FromConfig(cfg config.IdentityConfig, client *http.Client) (*JWTVerifier, error) {
	var keys KeySource
	switch cfg.Mode {
	case config.IdentityModeHMAC:
		if cfg.Secret == "" {
			return nil, errors.New("identity secret cannot be empty")
		}
		keys = HMACKey(cfg.Secret)
	case config.IdentityModeX509:
		keys = NewCertSource(cfg.CertURL, client)
	default:
		return nil, fmt.Errorf("unknown identity mode %q", cfg.Mode)
	}
	return NewJWTVerifier(keys, cfg.Issuer, cfg.Audience, cfg.Timeout), nil
}

// Verify parses and validates tokenString. Failures wrap ErrTokenInvalid or
// ErrUpstreamUnavailable.
func (v *JWTVerifier) Verify(ctx context.Context, tokenString string) (string, error) {
	if v.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}

	var keyErr error
	c := &claims{}
	token, err := jwt.ParseWithClaims(tokenString, c, func(token *jwt.Token) (interface{}, error) {
		key, err := v.keys.Key(ctx, token)
		keyErr = err
		return key, err
	})
	if keyErr != nil && errors.Is(keyErr, ErrUpstreamUnavailable) {
		return "", keyErr
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, ctxErr)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return "", ErrTokenInvalid
	}

	if v.issuer != "" && !c.VerifyIssuer(v.issuer, true) {
		return "", fmt.Errorf("%w: unexpected issuer %q", ErrTokenInvalid, c.Issuer)
	}
	if v.audience != "" && !c.VerifyAudience(v.audience, true) {
		return "", fmt.Errorf("%w: unexpected audience", ErrTokenInvalid)
	}
	// Tokens without an expiry never lapse; the provider always sets one.
	if c.ExpiresAt == nil {
		return "", fmt.Errorf("%w: missing exp claim", ErrTokenInvalid)
	}

	subject := c.subject()
	if subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}
	return subject, nil
}

// HMACKey is a shared secret for HS256/384/512 tokens.
type HMACKey []byte

// Key implements KeySource.
func (k HMACKey) Key(_ context.Context, token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("%w: unexpected signing method: %v", ErrTokenInvalid, token.Header["alg"])
	}
	return []byte(k), nil
}
