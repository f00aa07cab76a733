package seeders

import (
	"context"

	"github.com/vastrahub/vastra/app/models"
	"github.com/vastrahub/vastra/app/repositories"
	"github.com/vastrahub/vastra/config"
	"github.com/vastrahub/vastra/pkg/auth"
)

func init() {
	Register("admin-user", SeedAdminUser)
}

// SeedAdminUser creates the initial admin account when none exists.
// Credentials come from ADMIN_EMAIL / ADMIN_PASSWORD.
func SeedAdminUser(ctx context.Context) error {
	repo := repositories.NewUserRepository()

	email := config.Get("ADMIN_EMAIL", "admin@vastra.shop")
	existing, err := repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hash, err := auth.HashPassword(config.Get("ADMIN_PASSWORD", "change-me-now"))
	if err != nil {
		return err
	}
	return repo.Create(ctx, &models.User{
		Name:     "Store Admin",
		Email:    email,
		Password: hash,
		Role:     models.RoleAdmin,
	})
}
