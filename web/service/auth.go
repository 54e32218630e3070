package service

import (
	"github.com/harmonia-media/harmonia/config"
	"github.com/harmonia-media/harmonia/database/model"
	"github.com/harmonia-media/harmonia/logger"
	"github.com/harmonia-media/harmonia/web/entity"
)

// LoginResult is what a successful login returns to the client: the user
// record plus a freshly minted token pair.
type LoginResult struct {
	User         *model.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

// AuthService orchestrates login, registration, logout and refresh over the
// credential store, the token issuer and the refresh-token ledger.
type AuthService struct {
	users         *UserService
	tokens        *TokenService
	refreshTokens *RefreshTokenService
	bcryptCost    int
}

func NewAuthService(users *UserService, tokens *TokenService, refreshTokens *RefreshTokenService) *AuthService {
	return &AuthService{
		users:         users,
		tokens:        tokens,
		refreshTokens: refreshTokens,
		bcryptCost:    config.GetBcryptCost(),
	}
}

// Login validates credentials, mints an access+refresh token pair carrying
// a snapshot of the user's flattened permissions, and records the refresh
// token in the ledger. A disabled account can still log in; enablement is
// enforced per request by the authentication middleware.
func (s *AuthService) Login(username, password string) (*LoginResult, error) {
	user, err := s.users.FindByUsername(username)
	if err != nil {
		return nil, err
	}

	if !checkPassword(user.Password, password) {
		return nil, entity.Unauthorized("Invalid credentials.")
	}

	claims, err := s.buildClaims(user)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.tokens.IssueAccessToken(claims)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.tokens.IssueRefreshToken(claims)
	if err != nil {
		return nil, err
	}

	if err := s.refreshTokens.Persist(refreshToken, user.Id); err != nil {
		return nil, err
	}

	logger.Infof("%s logged in successfully", user.Username)

	return &LoginResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Register hashes the password and persists a disabled account. The account
// must be enabled by an administrator before its tokens pass the middleware.
func (s *AuthService) Register(username, password string) (*model.User, error) {
	hash, err := hashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user, err := s.users.CreateUser(username, hash)
	if err != nil {
		return nil, err
	}

	logger.Infof("registered new account %s (disabled)", user.Username)
	return user, nil
}

// Logout revokes every outstanding refresh token of the user in a single
// bulk delete. Already-issued access tokens stay valid until expiry; the
// ledger check stops any further refresh.
func (s *AuthService) Logout(userId string) error {
	return s.refreshTokens.RevokeAllForUser(userId)
}

// Refresh exchanges a refresh token for a new access token. The token must
// both verify cryptographically and still be present in the ledger; either
// failure is Unauthorized. No refresh-token rotation takes place.
func (s *AuthService) Refresh(refreshToken string) (string, error) {
	claims, err := s.tokens.Parse(refreshToken)
	if err != nil {
		return "", entity.Unauthorized("Invalid refresh token.")
	}

	exists, err := s.refreshTokens.Exists(refreshToken)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", entity.Unauthorized("Invalid refresh token.")
	}

	user, err := s.users.FindById(claims.Id)
	if err != nil {
		return "", entity.Unauthorized("Invalid refresh token.")
	}

	newClaims, err := s.buildClaims(user)
	if err != nil {
		return "", err
	}
	return s.tokens.IssueAccessToken(newClaims)
}

// buildClaims loads the user's grants and flattens them into the token
// claim snapshot.
func (s *AuthService) buildClaims(user *model.User) (AuthClaims, error) {
	serverPerms, err := s.users.GetServerPermissions(user.Id)
	if err != nil {
		return AuthClaims{}, err
	}
	folderPerms, err := s.users.GetServerFolderPermissions(user.Id)
	if err != nil {
		return AuthClaims{}, err
	}

	return AuthClaims{
		Id:                      user.Id,
		Username:                user.Username,
		IsAdmin:                 user.IsAdmin,
		ServerPermissions:       FlattenServerPermissions(serverPerms),
		ServerFolderPermissions: FlattenServerFolderPermissions(folderPerms),
	}, nil
}
