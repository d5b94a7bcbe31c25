// Package token is the canonical JWT issue/verify library shared by the
// gateway and every backend service. There is deliberately a single
// implementation: the per-service re-validation required for defense in
// depth links this package rather than forking it, so the duplicated checks
// cannot drift apart.
package token

import (
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// RoleUnknown is the sentinel returned when a role claim is missing or
// cannot be extracted. Callers rely on a non-empty value to fail
// authorization checks safely; extraction never signals failure by absence.
const RoleUnknown = "UNKNOWN"

// Claims is the token payload. Subject carries the username; the remaining
// profile fields are echoes embedded at full-login issuance and absent on
// subject-only (refresh) tokens.
type Claims struct {
	Role        string `json:"role,omitempty"`
	UserID      *int64 `json:"id,omitempty"`
	Email       string `json:"email,omitempty"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Enabled     *bool  `json:"enabled,omitempty"`
	jwt.RegisteredClaims
}

// Identity is the verified account data handed to the issuer after a
// successful credential check.
type Identity struct {
	Username    string
	Role        string
	UserID      int64
	Email       string
	FirstName   string
	LastName    string
	PhoneNumber string
	Enabled     bool
}

// Manager issues and validates JWT tokens with a shared symmetric secret.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager builds a manager. A non-positive ttl falls back to 24h.
func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{secret: []byte(secret), ttl: ttl}
}

// TTL returns the configured token lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a token embedding the full identity claim set. An identity
// without a role degrades to subject-only issuance; that is the documented
// fallback path, not an error.
func (m *Manager) Issue(identity Identity) (string, time.Time, error) {
	if identity.Role == "" {
		return m.IssueSubject(identity.Username)
	}

	now := time.Now()
	expiresAt := now.Add(m.ttl)
	enabled := identity.Enabled
	claims := &Claims{
		Role:        identity.Role,
		UserID:      &identity.UserID,
		Email:       identity.Email,
		FirstName:   identity.FirstName,
		LastName:    identity.LastName,
		PhoneNumber: identity.PhoneNumber,
		Enabled:     &enabled,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	return m.sign(claims, expiresAt)
}

// IssueSubject signs a token carrying only the subject and timestamps.
// Refresh tokens use this path so renewal never widens the trust surface.
func (m *Manager) IssueSubject(username string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(m.ttl)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	return m.sign(claims, expiresAt)
}

func (m *Manager) sign(claims *Claims, expiresAt time.Time) (string, time.Time, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Validate reports whether the signature and expiry checks both pass. Every
// parse or crypto failure maps to false; nothing propagates to the caller.
func (m *Manager) Validate(tokenStr string) bool {
	return m.parse(tokenStr) != nil
}

// ExtractClaims returns the verified claim set, or nil when the token fails
// validation. Callers needing several fields use this to avoid re-parsing.
func (m *Manager) ExtractClaims(tokenStr string) *Claims {
	return m.parse(tokenStr)
}

// ExtractSubject returns the username claim, or "" when unavailable.
func (m *Manager) ExtractSubject(tokenStr string) string {
	claims := m.parse(tokenStr)
	if claims == nil {
		return ""
	}
	return claims.Subject
}

// ExtractRole returns the role claim. It never returns an empty value: any
// missing claim or extraction failure yields RoleUnknown so downstream
// authorization fails closed instead of tripping over an absent role.
func (m *Manager) ExtractRole(tokenStr string) string {
	claims := m.parse(tokenStr)
	if claims == nil || claims.Role == "" {
		return RoleUnknown
	}
	return claims.Role
}

// ExtractUserID returns the numeric id claim when present.
func (m *Manager) ExtractUserID(tokenStr string) (int64, bool) {
	claims := m.parse(tokenStr)
	if claims == nil || claims.UserID == nil {
		return 0, false
	}
	return *claims.UserID, true
}

// ExtractEmail returns the email claim, or "" when unavailable.
func (m *Manager) ExtractEmail(tokenStr string) string {
	claims := m.parse(tokenStr)
	if claims == nil {
		return ""
	}
	return claims.Email
}

// parse validates and returns claims, or nil on any failure. jwt/v5 treats
// now == exp as expired, which matches the expiry boundary contract.
func (m *Manager) parse(tokenStr string) *Claims {
	if tokenStr == "" {
		return nil
	}
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil
	}
	return claims
}

// FromAuthorizationHeader extracts the bearer token from an Authorization
// header value. The format must be exactly "Bearer <token>"; any other
// scheme or an empty header is treated as absent.
func FromAuthorizationHeader(header string) string {
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}
