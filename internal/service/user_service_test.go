package service

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/vanish/config"
	"github.com/d60-Lab/vanish/internal/repository"
)

func TestRegisterAndLogin(t *testing.T) {
	db := setupDB(t)
	svc := NewUserService(repository.NewUserRepository(db), config.AuthConfig{JWTSecret: "test-secret"})
	ctx := context.Background()

	userID, err := svc.Register(ctx, "alice", "alice@example.com", "s3cret-pass")
	require.NoError(t, err)
	require.NotEmpty(t, userID)

	// 重名被唯一键拦下
	_, err = svc.Register(ctx, "alice", "other@example.com", "whatever-pw")
	assert.ErrorIs(t, err, ErrUserExists)

	token, err := svc.Login(ctx, "alice", "s3cret-pass")
	require.NoError(t, err)

	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(*jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, userID, parsed.Claims.(*jwt.RegisteredClaims).Subject)

	_, err = svc.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
