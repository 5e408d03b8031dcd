package auth_test

import (
	"testing"
	"time"

	"github.com/avesovich/reporting-with-rss-news/internal/auth"
	"github.com/avesovich/reporting-with-rss-news/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_IssueAndValidate(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)

	token, err := issuer.Issue("user-1", "Dana", model.RoleEditor)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := issuer.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "Dana", claims.Name)
	assert.Equal(t, model.RoleEditor, claims.Role)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestTokenIssuer_RejectsExpired(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", -time.Minute)

	token, err := issuer.Issue("user-1", "Dana", model.RoleEditor)
	require.NoError(t, err)

	_, err = issuer.Validate(token)
	assert.Error(t, err)
}

func TestTokenIssuer_RejectsWrongSecret(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	other := auth.NewTokenIssuer("different-secret", time.Hour)

	token, err := issuer.Issue("user-1", "Dana", model.RoleEditor)
	require.NoError(t, err)

	_, err = other.Validate(token)
	assert.Error(t, err)
}

func TestTokenIssuer_RejectsGarbage(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)

	_, err := issuer.Validate("not.a.token")
	assert.Error(t, err)

	_, err = issuer.Validate("")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("correct-horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse", hash)

	assert.True(t, auth.CheckPassword(hash, "correct-horse"))
	assert.False(t, auth.CheckPassword(hash, "wrong"))
	assert.False(t, auth.CheckPassword("", "correct-horse"))
}
