package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundtrip(t *testing.T) {
	tokens := NewTokenServiceWith([]byte("test-secret"), 15*time.Minute, 24*time.Hour)

	issued, err := tokens.IssueAccessToken(AuthClaims{
		Id:                      "user-1",
		Username:                "alice",
		IsAdmin:                 true,
		ServerPermissions:       []string{"srv-1", "srv-2"},
		ServerFolderPermissions: []string{"folder-1"},
	})
	require.NoError(t, err)

	claims, err := tokens.Parse(issued)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Id)
	assert.Equal(t, "alice", claims.Username)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, []string{"srv-1", "srv-2"}, claims.ServerPermissions)
	assert.Equal(t, []string{"folder-1"}, claims.ServerFolderPermissions)
}

func TestParseRejectsForeignSecret(t *testing.T) {
	signer := NewTokenServiceWith([]byte("secret-a"), 15*time.Minute, 24*time.Hour)
	verifier := NewTokenServiceWith([]byte("secret-b"), 15*time.Minute, 24*time.Hour)

	issued, err := signer.IssueAccessToken(AuthClaims{Id: "user-1"})
	require.NoError(t, err)

	_, err = verifier.Parse(issued)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseRejectsTamperedPayload(t *testing.T) {
	tokens := NewTokenServiceWith([]byte("test-secret"), 15*time.Minute, 24*time.Hour)

	issued, err := tokens.IssueAccessToken(AuthClaims{Id: "user-1"})
	require.NoError(t, err)

	parts := strings.Split(issued, ".")
	require.Len(t, parts, 3)
	payload := []byte(parts[1])
	if payload[10] == 'A' {
		payload[10] = 'B'
	} else {
		payload[10] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	_, err = tokens.Parse(tampered)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseDistinguishesExpiredFromInvalid(t *testing.T) {
	// negative TTL mints an already expired but correctly signed token
	expiredIssuer := NewTokenServiceWith([]byte("test-secret"), -time.Minute, -time.Minute)
	verifier := NewTokenServiceWith([]byte("test-secret"), 15*time.Minute, 24*time.Hour)

	issued, err := expiredIssuer.IssueAccessToken(AuthClaims{Id: "user-1"})
	require.NoError(t, err)

	_, err = verifier.Parse(issued)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.NotErrorIs(t, err, ErrTokenInvalid)

	_, err = verifier.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestIssuedTokensAreUnique(t *testing.T) {
	tokens := NewTokenServiceWith([]byte("test-secret"), 15*time.Minute, 24*time.Hour)

	first, err := tokens.IssueRefreshToken(AuthClaims{Id: "user-1"})
	require.NoError(t, err)
	second, err := tokens.IssueRefreshToken(AuthClaims{Id: "user-1"})
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
