// Package session emite y valida los tokens de sesión firmados que
// materializan el sign-in (post sign-up o post vínculo de provider).
package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/socialsignin/socialguard/internal/security/authn"
)

// DefaultCookieName es el nombre de cookie por defecto para la sesión.
const DefaultCookieName = "sg_session"

var (
	// ErrInvalidToken indica un token ilegible, mal firmado o expirado.
	ErrInvalidToken = errors.New("session: invalid token")
)

// Claims son los claims de un token de sesión.
type Claims struct {
	Authorities []string `json:"authorities"`
	jwt.RegisteredClaims
}

// Issuer firma y valida tokens de sesión HS256.
type Issuer struct {
	secret     []byte
	issuer     string
	ttl        time.Duration
	CookieName string
	Secure     bool
}

// NewIssuer construye el issuer. El secret debe tener al menos 32 bytes.
func NewIssuer(secret []byte, issuer string, ttl time.Duration) (*Issuer, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("session: secret must be at least 32 bytes, got %d", len(secret))
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{
		secret:     secret,
		issuer:     issuer,
		ttl:        ttl,
		CookieName: DefaultCookieName,
	}, nil
}

// Issue emite un token para la autenticación dada, incluyendo todas sus
// authorities (las de providers recién vinculados incluidas).
func (i *Issuer) Issue(a authn.Authentication) (string, error) {
	if !a.Authenticated() {
		return "", errors.New("session: cannot issue a token for an anonymous authentication")
	}
	now := time.Now().UTC()
	authorities := a.Authorities()
	strs := make([]string, len(authorities))
	for j, auth := range authorities {
		strs[j] = string(auth)
	}
	claims := Claims{
		Authorities: strs,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   a.Principal(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Parse valida un token y reconstruye la Authentication que representa.
func (i *Issuer) Parse(token string) (authn.Authentication, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithIssuer(i.issuer), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return authn.Anonymous(), ErrInvalidToken
	}

	authorities := make([]authn.Authority, len(claims.Authorities))
	for j, s := range claims.Authorities {
		authorities[j] = authn.Authority(s)
	}
	return authn.New(claims.Subject, authorities...), nil
}

// WriteCookie setea la cookie de sesión en la respuesta.
func (i *Issuer) WriteCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     i.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(i.ttl.Seconds()),
		HttpOnly: true,
		Secure:   i.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// FromRequest extrae y valida la autenticación del request (cookie o header
// Authorization: Bearer). Retorna Anonymous si no hay sesión válida.
func (i *Issuer) FromRequest(r *http.Request) authn.Authentication {
	var raw string
	if c, err := r.Cookie(i.CookieName); err == nil {
		raw = c.Value
	}
	if raw == "" {
		const prefix = "Bearer "
		if h := r.Header.Get("Authorization"); len(h) > len(prefix) && h[:len(prefix)] == prefix {
			raw = h[len(prefix):]
		}
	}
	if raw == "" {
		return authn.Anonymous()
	}
	a, err := i.Parse(raw)
	if err != nil {
		return authn.Anonymous()
	}
	return a
}
