package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session errors
var (
	ErrNoSession      = errors.New("no session")
	ErrInvalidSession = errors.New("invalid session")
	ErrExpiredSession = errors.New("session expired")
)

// SessionConfig defines session cookie settings
type SessionConfig struct {
	Secret     string
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Session is what a valid cookie proves: who the caller is, nothing about their role
type Session struct {
	UserID    int64
	Username  string
	ExpiresAt time.Time
}

type sessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// SessionManager signs and verifies the session cookie
type SessionManager struct {
	config SessionConfig
	now    func() time.Time
}

// NewSessionManager creates a new session manager
func NewSessionManager(config SessionConfig) *SessionManager {
	return &SessionManager{config: config, now: time.Now}
}

// CookieName returns the configured cookie name
func (m *SessionManager) CookieName() string {
	return m.config.CookieName
}

// Issue writes a fresh session cookie for the user
func (m *SessionManager) Issue(w http.ResponseWriter, userID int64, username string) error {
	now := m.now()
	expiresAt := now.Add(m.config.TTL)

	claims := &sessionClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.config.Secret))
	if err != nil {
		return fmt.Errorf("failed to sign session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.config.CookieName,
		Value:    signed,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(m.config.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Parse validates the session cookie on r
func (m *SessionManager) Parse(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(m.config.CookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrNoSession
	}
	return m.ParseToken(cookie.Value)
}

// ParseToken validates a raw signed session value
func (m *SessionManager) ParseToken(value string) (*Session, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(value, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.config.Secret), nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredSession
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if !token.Valid {
		return nil, ErrInvalidSession
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return nil, ErrInvalidSession
	}

	session := &Session{UserID: userID, Username: claims.Username}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}

// Clear expires the session cookie
func (m *SessionManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.config.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
