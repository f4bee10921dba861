package jwtverify

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	commoncrypto "github.com/AlibekovAA/bloglist/backend/internal/common/crypto"
	commonerrors "github.com/AlibekovAA/bloglist/backend/internal/common/errors"
	"github.com/AlibekovAA/bloglist/backend/internal/observability/metrics"
)

var (
	// Both messages contain "invalid token"; the code tells them apart.
	ErrMissingToken = commonerrors.NewDomainError(
		"MISSING_TOKEN",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"missing or invalid token",
	)

	ErrInvalidToken = commonerrors.NewDomainError(
		"INVALID_TOKEN",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"invalid token",
	)
)

const (
	ClaimSubject  = "sub"
	ClaimUsername = "usr"
	ClaimIssuedAt = "iat"
	ClaimExpires  = "exp"
)

type Claims struct {
	UserID   string
	Username string
}

// Validator recovers the identity carried by a session token. It is a pure
// function of the token and the signing secret: no lookup is made, so a
// token stays valid until the secret changes or its optional exp passes.
type Validator struct {
	secret []byte
	parser *jwt.Parser
}

func NewValidator(secret string) *Validator {
	return &Validator{
		secret: []byte(secret),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}
}

func (v *Validator) Validate(rawToken string) (Claims, error) {
	metrics.JWTValidationsTotal.Inc()

	if rawToken == "" {
		metrics.JWTValidationsFailed.WithLabelValues("missing").Inc()
		return Claims{}, ErrMissingToken
	}

	claims, err := v.parse(rawToken)
	if err != nil {
		metrics.JWTValidationsFailed.WithLabelValues("invalid").Inc()
		return Claims{}, ErrInvalidToken.WithCause(err)
	}

	return claims, nil
}

func (v *Validator) parse(rawToken string) (Claims, error) {
	mapClaims := jwt.MapClaims{}
	parsed, err := v.parser.ParseWithClaims(rawToken, mapClaims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return Claims{}, err
	}
	if !parsed.Valid {
		return Claims{}, jwt.ErrTokenUnverifiable
	}

	sub, _ := mapClaims[ClaimSubject].(string)
	username, _ := mapClaims[ClaimUsername].(string)
	if sub == "" {
		return Claims{}, jwt.ErrTokenRequiredClaimMissing
	}
	if !commoncrypto.IsValidID(sub) {
		return Claims{}, fmt.Errorf("%w: sub is not a user id", jwt.ErrTokenInvalidClaims)
	}

	return Claims{
		UserID:   sub,
		Username: username,
	}, nil
}

// BearerToken returns the token of an "Authorization: Bearer <token>"
// header value, or "" when the header is absent or uses another scheme.
func BearerToken(header string) string {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func ExtractTokenFromHeader(r *http.Request) (string, bool) {
	token := BearerToken(r.Header.Get("Authorization"))
	return token, token != ""
}
