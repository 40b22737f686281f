package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AlibekovAA/chat-accounts/internal/account/domain"
	"github.com/AlibekovAA/chat-accounts/internal/common/constants"
	commoncrypto "github.com/AlibekovAA/chat-accounts/internal/common/crypto"
)

type sessionClaims struct {
	Username string `json:"usr"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 session tokens. It holds no mutable
// state, so one instance serves all requests.
type TokenIssuer struct {
	secret      []byte
	idGenerator commoncrypto.IDGenerator
	ttl         time.Duration
	parser      *jwt.Parser
}

func NewTokenIssuer(secret string, idGenerator commoncrypto.IDGenerator, ttl time.Duration) (*TokenIssuer, error) {
	if len(secret) < constants.JWTSecretMinLength {
		return nil, ErrSigningKeyUnavailable.WithMessage(
			fmt.Sprintf("signing key must be at least %d bytes", constants.JWTSecretMinLength),
		)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %v", ttl)
	}

	return &TokenIssuer{
		secret:      []byte(secret),
		idGenerator: idGenerator,
		ttl:         ttl,
		// expiry is checked against the caller's clock in Validate; each
		// signature has exactly one accepted encoding
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
			jwt.WithStrictDecoding(),
		),
	}, nil
}

func (ti *TokenIssuer) TTL() time.Duration {
	return ti.ttl
}

func (ti *TokenIssuer) Issue(user domain.User, now time.Time) (domain.IssuedToken, error) {
	jti, err := ti.idGenerator.NewID()
	if err != nil {
		return domain.IssuedToken{}, fmt.Errorf("generate token id: %w", err)
	}

	issuedAt := jwt.NewNumericDate(now)
	expiresAt := jwt.NewNumericDate(now.Add(ti.ttl))

	claims := sessionClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(user.ID),
			ID:        jti,
			IssuedAt:  issuedAt,
			ExpiresAt: expiresAt,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.secret)
	if err != nil {
		return domain.IssuedToken{}, ErrSigningKeyUnavailable.WithCause(err)
	}

	incrementSessionTokensIssued()

	return domain.IssuedToken{
		Token:     signed,
		TokenID:   jti,
		ExpiresAt: expiresAt.Time,
	}, nil
}

// Validate checks structure, then signature, then expiry. Claims are only
// read after the signature has been verified.
func (ti *TokenIssuer) Validate(token string, now time.Time) (domain.Claims, error) {
	if !wellFormed(token) {
		return domain.Claims{}, ErrTokenMalformed
	}

	var claims sessionClaims
	_, err := ti.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return ti.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return domain.Claims{}, ErrTokenBadSignature
		default:
			return domain.Claims{}, ErrTokenMalformed.WithCause(err)
		}
	}

	if claims.Subject == "" || claims.Username == "" || claims.ID == "" || claims.ExpiresAt == nil {
		return domain.Claims{}, ErrTokenMalformed
	}

	if !now.Before(claims.ExpiresAt.Time) {
		return domain.Claims{}, ErrTokenExpired
	}

	result := domain.Claims{
		UserID:    domain.UserID(claims.Subject),
		Username:  claims.Username,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Time
	}
	return result, nil
}

func wellFormed(token string) bool {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
	}
	return true
}
