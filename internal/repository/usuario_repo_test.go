package repository_test

import (
	"context"
	"testing"

	"panaderia/internal/model"
	"panaderia/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUsuarioRepository(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewUsuarioRepository(db)
	ctx := context.Background()

	u := &model.Usuario{
		Username:     "gerente",
		PasswordHash: "hash",
		Rol:          model.RolAdmin,
		Sedes:        []model.Sede{{Nombre: "Panadería Centro"}, {Nombre: "Panadería Plaza"}},
	}
	require.NoError(t, repo.Create(ctx, u))
	require.NotZero(t, u.ID)

	byName, err := repo.FindByUsername(ctx, "gerente")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)
	assert.True(t, byName.EsAdmin())
	assert.Len(t, byName.Sedes, 2)

	byID, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "gerente", byID.Username)
	assert.Len(t, byID.Sedes, 2)

	_, err = repo.FindByUsername(ctx, "nadie")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
