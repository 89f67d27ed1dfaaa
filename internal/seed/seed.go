package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appModels "github.com/danielotaviano/miniprova-api/internal/app/models"
	appRepos "github.com/danielotaviano/miniprova-api/internal/app/repositories"
	"github.com/danielotaviano/miniprova-api/internal/pkg/auth"
)

const defaultAdminEmail = "admin@miniprova.app"

// CreateDefaultData inserts the role catalog and a bootstrap admin user
// if they don't exist. Safe to run on every startup.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	userRepo := appRepos.NewUserRepository(dbPool)

	lgr.Info().Msg("Checking/Creating default data (roles/admin)...")
	var finalErr error

	// --- Role catalog --- //
	for _, role := range appModels.AllRoles {
		_, err := dbPool.Exec(ctx,
			`INSERT INTO roles (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`,
			string(role))
		if err != nil {
			lgr.Error().Err(err).Str("role", string(role)).Msg("Error creating role")
			finalErr = errors.Join(finalErr, err)
		}
	}

	// --- Default Admin User --- //
	existing, err := userRepo.GetByEmail(ctx, defaultAdminEmail)
	if err != nil {
		lgr.Error().Err(err).Msg("Error checking if admin user exists")
		return errors.Join(finalErr, err)
	}
	if existing != nil {
		lgr.Info().Msg("Admin user already exists, skipping creation")
		return finalErr
	}

	lgr.Info().Msg("Creating default admin user...")

	hashedPassword, err := auth.HashPassword("Admin123!")
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing admin password")
		return errors.Join(finalErr, err)
	}

	admin := &appModels.User{
		Name:     "System Administrator",
		Email:    defaultAdminEmail,
		Password: hashedPassword,
	}
	if err := userRepo.CreateWithRoles(ctx, admin, []appModels.RoleType{appModels.RoleAdmin}); err != nil {
		lgr.Error().Err(err).Msg("Error creating admin user")
		return errors.Join(finalErr, err)
	}

	lgr.Info().Int64("adminID", admin.ID).Msg("Default admin user created successfully")
	return finalErr
}
