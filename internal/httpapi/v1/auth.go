package v1

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/tinoosan/bookkeeper/internal/config"
)

// publicPaths stay reachable without a token.
var publicPaths = map[string]bool{
	"/healthz":          true,
	"/readyz":           true,
	"/metrics":          true,
	"/v1/account-types": true,
}

type JWTClaims struct {
	Issuer    string `json:"iss,omitempty"`
	Subject   string `json:"sub,omitempty"`
	Audience  any    `json:"aud,omitempty"` // string or []string
	ExpiresAt int64  `json:"exp,omitempty"`
	NotBefore int64  `json:"nbf,omitempty"`
	IssuedAt  int64  `json:"iat,omitempty"`
}

func parseBearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, tok, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}

func verifyHS256(token, secret string) (JWTClaims, error) {
	var empty JWTClaims
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return empty, errors.New("invalid token format")
	}
	// JWT uses base64url without padding
	headerB, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return empty, errors.New("bad header b64")
	}
	payloadB, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return empty, errors.New("bad payload b64")
	}
	sigB, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return empty, errors.New("bad signature b64")
	}

	var hdr struct{ Alg, Typ string }
	if err := json.Unmarshal(headerB, &hdr); err != nil {
		return empty, errors.New("bad header json")
	}
	if !strings.EqualFold(hdr.Alg, "HS256") {
		return empty, errors.New("unsupported alg")
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(parts[0] + "." + parts[1]))
	if !hmac.Equal(sigB, mac.Sum(nil)) {
		return empty, errors.New("invalid signature")
	}

	var claims JWTClaims
	if err := json.Unmarshal(payloadB, &claims); err != nil {
		return empty, errors.New("bad claims json")
	}
	return claims, nil
}

func audContains(aud any, expected string) bool {
	if expected == "" {
		return true
	}
	switch v := aud.(type) {
	case string:
		return strings.EqualFold(v, expected)
	case []any:
		for _, it := range v {
			if s, ok := it.(string); ok && strings.EqualFold(s, expected) {
				return true
			}
		}
	}
	return false
}

// checkClaims applies the time window and the optional issuer and audience.
func checkClaims(c JWTClaims, cfg config.AuthConfig, now time.Time) error {
	ts := now.Unix()
	if c.NotBefore != 0 && ts < c.NotBefore {
		return errors.New("token not yet valid")
	}
	if c.ExpiresAt != 0 && ts >= c.ExpiresAt {
		return errors.New("token expired")
	}
	if cfg.Issuer != "" && !strings.EqualFold(c.Issuer, cfg.Issuer) {
		return errors.New("issuer mismatch")
	}
	if !audContains(c.Audience, cfg.Audience) {
		return errors.New("audience mismatch")
	}
	return nil
}

// authJWT returns a middleware that enforces Authorization: Bearer JWT (HS256)
// when a secret is configured, or nil when auth is off.
func authJWT(cfg config.AuthConfig) func(http.Handler) http.Handler {
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			tok, ok := parseBearerToken(r)
			if !ok {
				writeErr(w, http.StatusUnauthorized, "missing bearer token", "unauthorized")
				return
			}
			claims, err := verifyHS256(tok, secret)
			if err == nil {
				err = checkClaims(claims, cfg, now())
			}
			if err != nil {
				writeErr(w, http.StatusUnauthorized, err.Error(), "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
