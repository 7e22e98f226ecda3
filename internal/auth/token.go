package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "voxelkeep"

// Claims identify one player. The host signs them; the server trusts the
// player name and admin flag only through a valid signature.
type Claims struct {
	PlayerName string `json:"player_name"`
	Admin      bool   `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

// Signer issues and validates HS256 tokens with a shared secret.
type Signer struct {
	key    []byte
	expiry time.Duration
	now    func() time.Time
}

var ErrNoSecret = errors.New("auth: empty secret")

func NewSigner(secret string, expiry time.Duration) (*Signer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrNoSecret
	}
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &Signer{key: []byte(secret), expiry: expiry, now: time.Now}, nil
}

func (s *Signer) Issue(player string, admin bool) (string, error) {
	if player == "" {
		return "", fmt.Errorf("auth: empty player name")
	}
	now := s.now()
	claims := Claims{
		PlayerName: player,
		Admin:      admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   player,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			Issuer:    issuer,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

func (s *Signer) Validate(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.key, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.PlayerName == "" {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// BearerToken extracts the token from an "Authorization: Bearer" header value.
func BearerToken(header string) string {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// GenerateSecret returns a random hex secret suitable for -jwt_secret.
func GenerateSecret() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
