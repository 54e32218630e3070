package service

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/harmonia-media/harmonia/database"
	"github.com/harmonia-media/harmonia/database/model"
	"github.com/harmonia-media/harmonia/web/entity"
)

func setupDB(t *testing.T) {
	t.Helper()
	// keep bcrypt cheap in tests
	t.Setenv("HARMONIA_BCRYPT_COST", "4")
	dbPath := filepath.Join(t.TempDir(), "harmonia-test.db")
	if err := database.InitDB(dbPath); err != nil {
		t.Fatalf("init db: %v", err)
	}
	t.Cleanup(func() {
		_ = database.CloseDB()
	})
}

func newAuthStack() (*AuthService, *UserService, *RefreshTokenService, *TokenService) {
	users := NewUserService()
	tokens := NewTokenServiceWith([]byte("test-secret"), 15*time.Minute, 30*24*time.Hour)
	refreshTokens := NewRefreshTokenService()
	return NewAuthService(users, tokens, refreshTokens), users, refreshTokens, tokens
}

func apiStatus(t *testing.T, err error) int {
	t.Helper()
	var apiErr *entity.ApiError
	require.True(t, errors.As(err, &apiErr), "expected ApiError, got %v", err)
	return apiErr.StatusCode
}

func TestRegisterStoresHashedPassword(t *testing.T) {
	setupDB(t)
	auth, users, _, _ := newAuthStack()

	created, err := auth.Register("alice", "pw1")
	require.NoError(t, err)
	assert.False(t, created.Enabled)
	assert.False(t, created.IsAdmin)

	stored, err := users.FindByUsername("alice")
	require.NoError(t, err)
	assert.NotEqual(t, "pw1", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("pw1")))
	assert.True(t, strings.HasPrefix(stored.DeviceId, "alice_"))
	assert.Len(t, stored.DeviceId, len("alice_")+10)
}

func TestRegisterDuplicateUsernameConflicts(t *testing.T) {
	setupDB(t)
	auth, users, _, _ := newAuthStack()

	_, err := auth.Register("alice", "pw1")
	require.NoError(t, err)

	_, err = auth.Register("alice", "pw2")
	assert.Equal(t, http.StatusConflict, apiStatus(t, err))

	var count int64
	require.NoError(t, users.DB.Model(&model.User{}).Where("username = ?", "alice").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestLoginUnknownUserNotFound(t *testing.T) {
	setupDB(t)
	auth, _, _, _ := newAuthStack()

	_, err := auth.Login("nobody", "pw1")
	assert.Equal(t, http.StatusNotFound, apiStatus(t, err))
}

func TestLoginWrongPasswordUnauthorized(t *testing.T) {
	setupDB(t)
	auth, _, _, _ := newAuthStack()

	_, err := auth.Register("alice", "pw1")
	require.NoError(t, err)

	_, err = auth.Login("alice", "wrong")
	assert.Equal(t, http.StatusUnauthorized, apiStatus(t, err))
}

func TestLoginIssuesTokensAndLedgerRow(t *testing.T) {
	setupDB(t)
	auth, _, refreshTokens, tokens := newAuthStack()

	// login is allowed while disabled; enablement is a middleware concern
	created, err := auth.Register("alice", "pw1")
	require.NoError(t, err)

	result, err := auth.Login("alice", "pw1")
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)

	claims, err := tokens.Parse(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, created.Id, claims.Id)
	assert.Equal(t, "alice", claims.Username)

	count, err := refreshTokens.CountForUser(created.Id)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestLoginClaimsCarryFlattenedPermissions(t *testing.T) {
	setupDB(t)
	auth, users, _, tokens := newAuthStack()

	created, err := auth.Register("alice", "pw1")
	require.NoError(t, err)

	// duplicate server grants must flatten to a single id
	_, err = users.GrantServerPermission(created.Id, "srv-1")
	require.NoError(t, err)
	_, err = users.GrantServerPermission(created.Id, "srv-1")
	require.NoError(t, err)
	_, err = users.GrantServerPermission(created.Id, "srv-2")
	require.NoError(t, err)
	_, err = users.GrantServerFolderPermission(created.Id, "folder-1")
	require.NoError(t, err)

	result, err := auth.Login("alice", "pw1")
	require.NoError(t, err)

	claims, err := tokens.Parse(result.AccessToken)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"srv-1", "srv-2"}, claims.ServerPermissions)
	assert.ElementsMatch(t, []string{"folder-1"}, claims.ServerFolderPermissions)
}

func TestLogoutRevokesAllRefreshTokens(t *testing.T) {
	setupDB(t)
	auth, _, refreshTokens, _ := newAuthStack()

	created, err := auth.Register("alice", "pw1")
	require.NoError(t, err)

	first, err := auth.Login("alice", "pw1")
	require.NoError(t, err)
	second, err := auth.Login("alice", "pw1")
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	count, err := refreshTokens.CountForUser(created.Id)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	require.NoError(t, auth.Logout(created.Id))

	count, err = refreshTokens.CountForUser(created.Id)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	// the signatures still verify, the ledger check must reject anyway
	_, err = auth.Refresh(first.RefreshToken)
	assert.Equal(t, http.StatusUnauthorized, apiStatus(t, err))
	_, err = auth.Refresh(second.RefreshToken)
	assert.Equal(t, http.StatusUnauthorized, apiStatus(t, err))
}

func TestRefreshIssuesNewAccessToken(t *testing.T) {
	setupDB(t)
	auth, _, refreshTokens, tokens := newAuthStack()

	created, err := auth.Register("alice", "pw1")
	require.NoError(t, err)

	result, err := auth.Login("alice", "pw1")
	require.NoError(t, err)

	accessToken, err := auth.Refresh(result.RefreshToken)
	require.NoError(t, err)

	claims, err := tokens.Parse(accessToken)
	require.NoError(t, err)
	assert.Equal(t, created.Id, claims.Id)

	// no rotation: the original refresh token stays in the ledger
	exists, err := refreshTokens.Exists(result.RefreshToken)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRefreshRejectsForeignSignature(t *testing.T) {
	setupDB(t)
	auth, _, _, _ := newAuthStack()

	created, err := auth.Register("alice", "pw1")
	require.NoError(t, err)

	foreign := NewTokenServiceWith([]byte("other-secret"), 15*time.Minute, 30*24*time.Hour)
	forged, err := foreign.IssueRefreshToken(AuthClaims{Id: created.Id, Username: "alice"})
	require.NoError(t, err)

	_, err = auth.Refresh(forged)
	assert.Equal(t, http.StatusUnauthorized, apiStatus(t, err))
}

func TestRefreshRejectsUnpersistedToken(t *testing.T) {
	setupDB(t)
	auth, _, _, tokens := newAuthStack()

	created, err := auth.Register("alice", "pw1")
	require.NoError(t, err)

	// correctly signed, never persisted
	stray, err := tokens.IssueRefreshToken(AuthClaims{Id: created.Id, Username: "alice"})
	require.NoError(t, err)

	_, err = auth.Refresh(stray)
	assert.Equal(t, http.StatusUnauthorized, apiStatus(t, err))
}

func TestPruneKeepsRecentLedgerRows(t *testing.T) {
	setupDB(t)
	auth, _, refreshTokens, _ := newAuthStack()

	_, err := auth.Register("alice", "pw1")
	require.NoError(t, err)
	result, err := auth.Login("alice", "pw1")
	require.NoError(t, err)

	pruned, err := refreshTokens.DeleteCreatedBefore(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 0, pruned)

	pruned, err = refreshTokens.DeleteCreatedBefore(time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, pruned)

	_, err = auth.Refresh(result.RefreshToken)
	assert.Equal(t, http.StatusUnauthorized, apiStatus(t, err))
}
