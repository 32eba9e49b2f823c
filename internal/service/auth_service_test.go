package service_test

import (
	"context"
	"testing"

	"panaderia/internal/config"
	"panaderia/internal/dto"
	"panaderia/internal/middleware"
	"panaderia/internal/model"
	"panaderia/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuth(t *testing.T) service.AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secreto123"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := newStubUsuarioRepo(&model.Usuario{
		ID:           7,
		Username:     "gerente",
		PasswordHash: string(hash),
		Rol:          model.RolAdmin,
		Sedes:        []model.Sede{{ID: 1}, {ID: 3}},
	})
	return service.NewAuthService(repo, &config.Config{JWTSecret: "test-secret", JWTExpirationHours: 8})
}

func TestLogin_TokenCompatibleConMiddleware(t *testing.T) {
	svc := newAuth(t)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "gerente", Password: "secreto123"})
	require.NoError(t, err)

	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 8*3600, resp.ExpiresIn)
	assert.Equal(t, []uint{1, 3}, resp.User.SedeIDs)

	claims := &middleware.JWTClaims{}
	_, err = jwt.ParseWithClaims(resp.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, model.RolAdmin, claims.Rol)
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	svc := newAuth(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, dto.LoginRequest{Username: "gerente", Password: "otra"})
	assert.ErrorIs(t, err, service.ErrCredenciales)

	_, err = svc.Login(ctx, dto.LoginRequest{Username: "nadie", Password: "secreto123"})
	assert.ErrorIs(t, err, service.ErrCredenciales)
}
