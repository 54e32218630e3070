package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/harmonia-media/harmonia/config"
)

var (
	// ErrTokenExpired marks a correctly signed token past its validity window.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid marks a tampered, malformed or wrongly signed token.
	ErrTokenInvalid = errors.New("token invalid")
)

// AuthClaims is the claim set embedded in access and refresh tokens: the
// user identity plus a snapshot of the flattened permission sets.
type AuthClaims struct {
	Id                      string   `json:"id"`
	Username                string   `json:"username,omitempty"`
	IsAdmin                 bool     `json:"isAdmin,omitempty"`
	ServerPermissions       []string `json:"serverPermissions,omitempty"`
	ServerFolderPermissions []string `json:"serverFolderPermissions,omitempty"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies access and refresh tokens with a shared
// HS256 secret. Signing is pure; there are no side effects here.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenService() *TokenService {
	return &TokenService{
		secret:     config.GetTokenSecret(),
		accessTTL:  config.GetAccessTokenTTL(),
		refreshTTL: config.GetRefreshTokenTTL(),
	}
}

// NewTokenServiceWith builds a token service with explicit parameters,
// bypassing the environment. Used by tests and the CLI.
func NewTokenServiceWith(secret []byte, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{secret: secret, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// IssueAccessToken mints a short-lived access token for the given claims.
func (s *TokenService) IssueAccessToken(claims AuthClaims) (string, error) {
	return s.sign(claims, s.accessTTL)
}

// IssueRefreshToken mints a long-lived refresh token for the given claims.
func (s *TokenService) IssueRefreshToken(claims AuthClaims) (string, error) {
	return s.sign(claims, s.refreshTTL)
}

func (s *TokenService) sign(claims AuthClaims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		// unique per token, so two logins in the same second still mint
		// distinct ledger entries
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Parse verifies a token's signature and expiry and returns its claims.
// Expired tokens fail with ErrTokenExpired, every other failure with
// ErrTokenInvalid, so callers can tell revocable-but-stale apart from forged.
func (s *TokenService) Parse(tokenStr string) (*AuthClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenStr, &AuthClaims{}, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
