package service

import (
	"fmt"
	"time"

	"github.com/dom/tickify/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the payload of an access token.
type Claims struct {
	Email       string  `json:"email"`
	AccountName *string `json:"accountName"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 access tokens. Verification is
// stateless: signature, algorithm and expiry only.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (i *TokenIssuer) Issue(account *domain.Account) (string, error) {
	now := i.now()
	claims := Claims{
		Email:       account.Email,
		AccountName: account.AccountName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate returns the identity carried by tokenString. Every failure wraps
// domain.ErrUnauthorized.
func (i *TokenIssuer) Validate(tokenString string) (*domain.Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			return i.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid or expired token", domain.ErrUnauthorized)
	}

	accountID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid token subject", domain.ErrUnauthorized)
	}

	return &domain.Identity{
		AccountID:   accountID,
		Email:       claims.Email,
		AccountName: claims.AccountName,
	}, nil
}
