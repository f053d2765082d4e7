package security

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Options controls signing and TTL parameters.
type Options struct {
	Secret []byte        // HMAC key; load from env in production
	Alg    string        // HS256/HS384/HS512 (default HS256)
	TTL    time.Duration // token lifetime (default 2h)
}

type JWTClaims struct {
	jwtlib.MapClaims
}

// UserID returns the subject claim, empty if absent.
func (c *JWTClaims) UserID() string {
	sub, _ := c.MapClaims["sub"].(string)
	return sub
}

func DefaultOptions(secret []byte) Options {
	return Options{Secret: secret, Alg: "HS256", TTL: 2 * time.Hour}
}

func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "sha256:" + hex.EncodeToString(sum[:])
}

func Generate(opts Options, userID string) (token string, tokenHash string, expireAt time.Time, err error) {
	method, err := signingMethod(opts.Alg)
	if err != nil {
		return "", "", time.Time{}, err
	}
	if opts.TTL <= 0 {
		opts.TTL = 2 * time.Hour
	}
	now := time.Now()
	exp := now.Add(opts.TTL)

	claims := jwtlib.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": exp.Unix(),
	}

	tok := jwtlib.NewWithClaims(method, claims)
	signed, err := tok.SignedString(opts.Secret)
	if err != nil {
		return "", "", time.Time{}, err
	}
	return signed, HashToken(signed), exp, nil
}

func Verify(opts Options, token string) (*JWTClaims, error) {
	if _, err := signingMethod(opts.Alg); err != nil {
		return nil, err
	}
	parsed, err := jwtlib.Parse(token, func(t *jwtlib.Token) (interface{}, error) {
		// HMAC family only
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected alg: %v", t.Header["alg"])
		}
		return opts.Secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	claims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.New("claims type mismatch")
	}
	return &JWTClaims{claims}, nil
}

// IsExpired reports whether verification failed specifically because the
// token lifetime ran out.
func IsExpired(err error) bool {
	return errors.Is(err, jwtlib.ErrTokenExpired)
}

func signingMethod(alg string) (jwtlib.SigningMethod, error) {
	switch strings.ToUpper(strings.TrimSpace(alg)) {
	case "", "HS256":
		return jwtlib.SigningMethodHS256, nil
	case "HS384":
		return jwtlib.SigningMethodHS384, nil
	case "HS512":
		return jwtlib.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("unsupported alg: %s (use HS256/HS384/HS512)", alg)
	}
}
