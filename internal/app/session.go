package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	// SessionCookieName holds the signed session token.
	SessionCookieName = "wisata_session"
	// DefaultSessionTTL bounds how long a session token is accepted.
	DefaultSessionTTL = 24 * time.Hour
)

// SessionState is what a client carries between requests: the id of the
// last result set it created and the city it searched for. CacheID is a
// weak reference; the entry may have expired.
type SessionState struct {
	CacheID  string
	LastCity string
}

type sessionClaims struct {
	CacheID  string `json:"cid,omitempty"`
	LastCity string `json:"kota,omitempty"`
	jwt.RegisteredClaims
}

// SessionBinder stores SessionState in an HS256-signed cookie.
type SessionBinder struct {
	secret []byte
	ttl    time.Duration
	secure bool
	log    *zap.Logger
	now    func() time.Time
}

// NewSessionBinder creates a binder. secret must be non-empty.
func NewSessionBinder(secret string, ttl time.Duration, secure bool, log *zap.Logger) (*SessionBinder, error) {
	if secret == "" {
		return nil, errors.New("session: signing secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionBinder{
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure,
		log:    log,
		now:    time.Now,
	}, nil
}

// Load returns the state carried by r. A missing or invalid token gives
// an empty state.
func (b *SessionBinder) Load(r *http.Request) SessionState {
	c, err := r.Cookie(SessionCookieName)
	if err != nil || c.Value == "" {
		return SessionState{}
	}
	st, err := b.Decode(c.Value)
	if err != nil {
		b.log.Debug("Ignoring invalid session token", zap.Error(err))
		return SessionState{}
	}
	return st
}

// Save signs st and sets it as the session cookie on w.
func (b *SessionBinder) Save(w http.ResponseWriter, st SessionState) error {
	token, err := b.Encode(st)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(b.ttl / time.Second),
		HttpOnly: true,
		Secure:   b.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Encode signs st into a token string.
func (b *SessionBinder) Encode(st SessionState) (string, error) {
	now := b.now()
	claims := sessionClaims{
		CacheID:  st.CacheID,
		LastCity: st.LastCity,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(b.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.secret)
}

// Decode verifies token and returns the state it carries.
func (b *SessionBinder) Decode(token string) (SessionState, error) {
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		return b.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(b.now),
	)
	if err != nil {
		return SessionState{}, err
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return SessionState{}, errors.New("session: invalid token")
	}
	return SessionState{CacheID: claims.CacheID, LastCity: claims.LastCity}, nil
}
