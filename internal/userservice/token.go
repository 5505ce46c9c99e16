package userservice

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// AccessTokenTime is the lifetime of an issued bearer token.
	AccessTokenTime = 7 * 24 * time.Hour

	tokenIssuer = "postify"
)

var (
	// ErrMissingSecret signals a server misconfiguration: tokens can neither
	// be issued nor verified without a signing secret.
	ErrMissingSecret = errors.New("token signing secret is not configured")

	ErrInvalidToken = errors.New("invalid or expired token")
)

// TokenService signs and verifies the stateless bearer tokens. The secret is
// injected once at startup; business code never reads it from the environment.
type TokenService struct {
	secret []byte
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Sign issues an HS256 token carrying the user id as subject and the user's
// role, expiring after AccessTokenTime.
func (s *TokenService) Sign(user *User) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrMissingSecret
	}

	now := time.Now()

	claims := tokenClaims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(user.ID),
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenTime)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks the signature and expiry of a bearer token and returns the
// user id from the subject claim.
func (s *TokenService) Verify(token string) (int, error) {
	if len(s.secret) == 0 {
		return 0, ErrMissingSecret
	}

	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return 0, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return 0, ErrInvalidToken
	}

	id, err := strconv.Atoi(claims.Subject)
	if err != nil || id < 1 {
		return 0, ErrInvalidToken
	}

	return id, nil
}
