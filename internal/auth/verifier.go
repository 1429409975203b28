package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DevSubject is the fixed subject of claims produced by the development bypass.
const DevSubject = "dev|local"

// Claims is the decoded payload of a verified token. Raw holds every claim
// exactly as it was signed.
type Claims struct {
	Subject  string
	Email    string
	Name     string
	Nickname string
	Scope    string
	Raw      map[string]any
}

// DisplayName returns the name claim, falling back to the nickname.
func (c Claims) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Nickname
}

// KeySource resolves signing keys by key id.
type KeySource interface {
	Key(ctx context.Context, kid string) (JSONWebKey, error)
}

// VerifierConfig fixes the accepted issuer and audience and the bypass policy.
type VerifierConfig struct {
	Issuer   string
	Audience string
	Leeway   time.Duration

	DevBypass    bool
	DevUserEmail string
	DevUserName  string
	DevUserScope string

	// Now overrides the clock used for exp/nbf/iat checks.
	Now func() time.Time
}

// Verifier validates bearer tokens issued by the identity provider.
type Verifier struct {
	keys   KeySource
	cfg    VerifierConfig
	parser *jwt.Parser
}

// NewVerifier constructs a Verifier. Only RS256 tokens are accepted.
func NewVerifier(keys KeySource, cfg VerifierConfig) *Verifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithAudience(cfg.Audience),
		jwt.WithIssuedAt(),
	}
	if cfg.Leeway > 0 {
		opts = append(opts, jwt.WithLeeway(cfg.Leeway))
	}
	if cfg.Now != nil {
		opts = append(opts, jwt.WithTimeFunc(cfg.Now))
	}

	return &Verifier{
		keys:   keys,
		cfg:    cfg,
		parser: jwt.NewParser(opts...),
	}
}

// Verify checks the Authorization header value and returns the token claims.
// With the bypass enabled, an absent header yields synthetic developer claims.
func (v *Verifier) Verify(ctx context.Context, authorization string) (Claims, error) {
	authorization = strings.TrimSpace(authorization)
	if authorization == "" {
		if v.cfg.DevBypass {
			return v.devClaims(), nil
		}
		return Claims{}, fmt.Errorf("%w: missing authorization header", ErrUnauthenticated)
	}

	scheme, token, ok := strings.Cut(authorization, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" || strings.ContainsRune(token, ' ') {
		return Claims{}, fmt.Errorf("%w: authorization header must be 'Bearer <token>'", ErrUnauthenticated)
	}

	mapClaims := jwt.MapClaims{}
	_, err := v.parser.ParseWithClaims(token, mapClaims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("%w: token header missing kid", ErrUnauthenticated)
		}
		key, err := v.keys.Key(ctx, kid)
		if err != nil {
			return nil, err
		}
		return rsaPublicKey(key)
	})
	if err != nil {
		return Claims{}, classify(err)
	}

	return claimsFromMap(mapClaims), nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, ErrKeyFetch):
		return err
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	case errors.Is(err, ErrUnauthenticated):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
}

func (v *Verifier) devClaims() Claims {
	raw := map[string]any{
		"sub":   DevSubject,
		"email": v.cfg.DevUserEmail,
		"name":  v.cfg.DevUserName,
		"scope": v.cfg.DevUserScope,
	}
	return Claims{
		Subject: DevSubject,
		Email:   v.cfg.DevUserEmail,
		Name:    v.cfg.DevUserName,
		Scope:   v.cfg.DevUserScope,
		Raw:     raw,
	}
}

func claimsFromMap(m jwt.MapClaims) Claims {
	str := func(key string) string {
		s, _ := m[key].(string)
		return s
	}
	raw := make(map[string]any, len(m))
	for k, val := range m {
		raw[k] = val
	}
	return Claims{
		Subject:  str("sub"),
		Email:    str("email"),
		Name:     str("name"),
		Nickname: str("nickname"),
		Scope:    str("scope"),
		Raw:      raw,
	}
}
