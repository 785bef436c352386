package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/ipelms/ipelms/internal/app/models"
	"github.com/ipelms/ipelms/internal/app/repositories"
	"github.com/ipelms/ipelms/internal/pkg/apperrors"
	"github.com/ipelms/ipelms/internal/pkg/auth"
)

const (
	defaultAdminEmail    = "admin@ipelms.local"
	defaultAdminPassword = "admin123"
)

// CreateDefaultAdmin creates the default admin account if no user holds its
// email yet. Idempotent; returns nil when the admin already exists.
func CreateDefaultAdmin(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	userRepo := repositories.NewUserRepository(dbPool)

	hash, err := auth.HashPassword(defaultAdminPassword)
	if err != nil {
		return err
	}

	admin := &models.User{
		Name:         "Administrator",
		Email:        defaultAdminEmail,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}

	err = userRepo.Create(ctx, admin)
	if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
		lgr.Debug().Str("email", defaultAdminEmail).Msg("Default admin already present")
		return nil
	}
	if err != nil {
		return err
	}

	lgr.Info().Str("email", defaultAdminEmail).Msg("Default admin account created; change its password")
	return nil
}
