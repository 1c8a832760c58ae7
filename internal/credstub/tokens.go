package credstub

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var ErrInvalidToken = errors.New("credstub: invalid token")

// TokenIssuer mints and verifies HS256 tokens. The "typ" claim keeps access
// and refresh tokens from being swapped for each other.
type TokenIssuer struct {
	Secret     []byte
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type tokenClaims struct {
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

// MintPair issues an access and refresh token for a user.
func (i *TokenIssuer) MintPair(userID string) (accessToken, refreshToken string, err error) {
	accessToken, err = i.mint(userID, tokenTypeAccess, i.AccessTTL)
	if err != nil {
		return "", "", err
	}
	refreshToken, err = i.mint(userID, tokenTypeRefresh, i.RefreshTTL)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// MintAccess issues a new access token, used on refresh.
func (i *TokenIssuer) MintAccess(userID string) (string, error) {
	return i.mint(userID, tokenTypeAccess, i.AccessTTL)
}

func (i *TokenIssuer) mint(userID, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    i.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.Secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyAccess validates an access token and returns its subject.
func (i *TokenIssuer) VerifyAccess(token string) (string, error) {
	return i.verify(token, tokenTypeAccess)
}

// VerifyRefresh validates a refresh token and returns its subject.
func (i *TokenIssuer) VerifyRefresh(token string) (string, error) {
	return i.verify(token, tokenTypeRefresh)
}

func (i *TokenIssuer) verify(tokenString, wantType string) (string, error) {
	var claims tokenClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.Secret, nil
	}, jwt.WithIssuer(i.Issuer), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Type != wantType {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
