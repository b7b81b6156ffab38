package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/upb/rbac-dashboard/models"
)

// Typed verification failures. The middleware adapter is the only component
// that translates these into HTTP responses; handlers never see them.
var (
	// ErrExpired indicates a well-formed token whose expiry has passed
	ErrExpired = errors.New("token expired")

	// ErrInvalidSignature indicates a token whose signature does not match
	ErrInvalidSignature = errors.New("token signature invalid")

	// ErrMalformed indicates a token that could not be parsed or whose
	// claims fail structural checks (issuer, audience, signing method)
	ErrMalformed = errors.New("token malformed")
)

// Claims is the claim set carried by a session token
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Principal returns the identity embedded in the claim set
func (c *Claims) Principal() *models.Principal {
	return &models.Principal{
		ID:    c.Subject,
		Email: c.Email,
		Role:  models.Role(c.Role),
	}
}

// Config holds token service configuration
type Config struct {
	Secret   []byte
	TTL      time.Duration
	Issuer   string
	Audience string
}

// Service issues and verifies signed session tokens. It is stateless: no
// revocation list is kept and expiry is evaluated lazily at verification time.
// Safe for concurrent use.
type Service struct {
	secret   []byte
	ttl      time.Duration
	issuer   string
	audience string
	now      func() time.Time
}

// NewService creates a token service from config. TTL defaults to 10 minutes.
func NewService(cfg Config) (*Service, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token secret is required")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Service{
		secret:   cfg.Secret,
		ttl:      ttl,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		now:      time.Now,
	}, nil
}

// WithClock overrides the service clock. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// TTL returns the fixed token lifetime
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue creates a signed session token for an authenticated principal.
// The claim set embeds subject, email, role and an expiry exactly one TTL
// after issuance, scoped to this system via issuer and audience.
func (s *Service) Issue(p models.Principal) (string, error) {
	if p.ID == "" || p.Email == "" || p.Role == "" {
		return "", fmt.Errorf("incomplete principal: id=%q email=%q role=%q", p.ID, p.Email, p.Role)
	}

	now := s.now()
	claims := Claims{
		Email: p.Email,
		Role:  string(p.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify decodes a token, checks signature, structure, issuer, audience and
// expiry, and returns the embedded principal. Failures are typed: ErrExpired
// for a well-formed token past its expiry, ErrInvalidSignature for a signature
// mismatch, ErrMalformed for anything else. A token verified at or after its
// expiry instant yields ErrExpired; one instant before succeeds.
func (s *Service) Verify(tokenStr string) (*models.Principal, error) {
	claims, err := s.parse(tokenStr)
	if err != nil {
		return nil, err
	}
	return claims.Principal(), nil
}

// DecodeUnverified parses the claim payload without checking the signature.
// It exists solely for client-side display (role rendering, proactive expiry
// warnings) and must never back an authorization decision; enforcement goes
// through Verify. It needs no signing secret and is usable by clients that
// never see one.
func DecodeUnverified(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return nil, ErrMalformed
	}
	return claims, nil
}

// DecodeUnverified parses the claim payload without checking the signature.
// See the package-level DecodeUnverified.
func (s *Service) DecodeUnverified(tokenStr string) (*Claims, error) {
	return DecodeUnverified(tokenStr)
}

// IsExpiringSoon reports whether the token expires within the given window.
// Purely advisory: the payload is decoded without signature verification and
// undecodable tokens report false.
func (s *Service) IsExpiringSoon(tokenStr string, window time.Duration) bool {
	claims, err := s.DecodeUnverified(tokenStr)
	if err != nil || claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Time.Sub(s.now()) < window
}

func (s *Service) parse(tokenStr string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	if s.audience != "" {
		opts = append(opts, jwt.WithAudience(s.audience))
	}

	parsed, err := jwt.NewParser(opts...).ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrMalformed
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformed
	}
	if claims.Subject == "" || claims.Email == "" || claims.Role == "" {
		return nil, ErrMalformed
	}
	return claims, nil
}
