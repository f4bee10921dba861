package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AlibekovAA/bloglist/backend/internal/common/clock"
	"github.com/AlibekovAA/bloglist/backend/internal/common/jwtverify"
	userdomain "github.com/AlibekovAA/bloglist/backend/internal/user/domain"
)

// TokenIssuer signs session tokens. With a zero ttl tokens carry no exp
// claim and stay valid for as long as the secret does.
type TokenIssuer struct {
	jwtSecret []byte
	clock     clock.Clock
	ttl       time.Duration
}

func NewTokenIssuer(jwtSecret string, ttl time.Duration, clock clock.Clock) *TokenIssuer {
	return &TokenIssuer{
		jwtSecret: []byte(jwtSecret),
		clock:     clock,
		ttl:       ttl,
	}
}

func (ti *TokenIssuer) Issue(user userdomain.User) (string, error) {
	now := ti.clock.Now()
	claims := jwt.MapClaims{
		jwtverify.ClaimSubject:  string(user.ID),
		jwtverify.ClaimUsername: user.Username,
		jwtverify.ClaimIssuedAt: now.Unix(),
	}
	if ti.ttl > 0 {
		claims[jwtverify.ClaimExpires] = now.Add(ti.ttl).Unix()
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := t.SignedString(ti.jwtSecret)
	if err != nil {
		return "", err
	}

	incrementSessionTokensIssued()
	return tokenString, nil
}
