package auth

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"schallwerk/apperr"
	"schallwerk/model"
)

// Manager signs and verifies the per-role session cookies. Every role has
// its own secret, so a token minted for one role can never verify on another
// role's routes even if the claims were forged to match.
type Manager struct {
	secrets map[model.Role][]byte
	ttl     time.Duration
}

// NewManager builds a Manager from per-role secrets.
func NewManager(secrets map[model.Role]string, ttl time.Duration) *Manager {
	m := &Manager{
		secrets: make(map[model.Role][]byte, len(secrets)),
		ttl:     ttl,
	}
	for role, secret := range secrets {
		m.secrets[role] = []byte(secret)
	}
	return m
}

// CookieName returns the cookie a role's session travels in.
func CookieName(role model.Role) string {
	return "sw_" + string(role) + "_session"
}

type sessionClaims struct {
	Role    string `json:"role"`
	EventID string `json:"eventId,omitempty"`
	Email   string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken mints a signed session token for the given role.
func (m *Manager) GenerateToken(role model.Role, subjectID, eventID, email string) (string, error) {
	secret, ok := m.secrets[role]
	if !ok || len(secret) == 0 {
		return "", apperr.Ef(apperr.KindInternal, "no session secret configured for role %s", role)
	}

	now := time.Now()
	claims := sessionClaims{
		Role:    string(role),
		EventID: eventID,
		Email:   email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "failed to sign session token", err)
	}
	return signed, nil
}

// ParseToken verifies a token against the role's secret and returns the
// session. Any failure (bad signature, expiry, wrong role claim) comes back
// as an Unauthorized error; callers treat that uniformly as "no session".
func (m *Manager) ParseToken(role model.Role, tokenString string) (*model.Session, error) {
	secret, ok := m.secrets[role]
	if !ok || len(secret) == 0 {
		return nil, apperr.E(apperr.KindUnauthorized, "Unauthorized")
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperr.E(apperr.KindUnauthorized, "Unauthorized")
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperr.E(apperr.KindUnauthorized, "Unauthorized")
	}

	// The role claim must match the secret that verified it.
	if claims.Role != string(role) {
		return nil, apperr.E(apperr.KindUnauthorized, "Unauthorized")
	}

	sess := &model.Session{
		Role:      role,
		SubjectID: claims.Subject,
		EventID:   claims.EventID,
		Email:     claims.Email,
	}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	return sess, nil
}

// SessionFromRequest extracts and verifies the role cookie on a request.
// Missing cookie, bad signature and expiry all degrade to an Unauthorized
// error; nothing is thrown past this boundary.
func (m *Manager) SessionFromRequest(r *http.Request, role model.Role) (*model.Session, error) {
	cookie, err := r.Cookie(CookieName(role))
	if err != nil || cookie.Value == "" {
		return nil, apperr.E(apperr.KindUnauthorized, "Unauthorized")
	}
	return m.ParseToken(role, cookie.Value)
}

// SessionCookie builds the HttpOnly cookie carrying a freshly minted token.
func (m *Manager) SessionCookie(role model.Role, token string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName(role),
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(m.ttl.Seconds()),
	}
}

// ClearCookie expires a role's session cookie.
func ClearCookie(role model.Role) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName(role),
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	}
}
