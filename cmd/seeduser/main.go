// Command seeduser crea o actualiza el usuario administrador.
// Uso: go run ./cmd/seeduser -username admin -password secreto
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"panaderia/internal/config"
	"panaderia/internal/infra"
	"panaderia/internal/model"
	"panaderia/internal/repository"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	username := flag.String("username", "admin", "nombre de usuario")
	password := flag.String("password", "", "contraseña (obligatoria)")
	rol := flag.String("rol", model.RolAdmin, "rol: admin | usuario")
	flag.Parse()

	if *password == "" {
		log.Fatal().Msg("-password es obligatorio")
	}
	if *rol != model.RolAdmin && *rol != model.RolUsuario {
		log.Fatal().Str("rol", *rol).Msg("rol invalido")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect error")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt error")
	}

	ctx := context.Background()
	repo := repository.NewUsuarioRepository(db)
	u, err := repo.FindByUsername(ctx, *username)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		u = &model.Usuario{Username: *username, PasswordHash: string(hash), Rol: *rol}
		if err := repo.Create(ctx, u); err != nil {
			log.Fatal().Err(err).Msg("insert error")
		}
	case err != nil:
		log.Fatal().Err(err).Msg("query error")
	default:
		err := db.WithContext(ctx).Model(u).Updates(map[string]interface{}{
			"password_hash": string(hash),
			"rol":           *rol,
		}).Error
		if err != nil {
			log.Fatal().Err(err).Msg("update error")
		}
	}
	fmt.Printf("Usuario '%s' (%s) creado/actualizado\n", *username, *rol)
}
