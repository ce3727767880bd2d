// seed-admin creates or updates the back-office admin user.
//
// Usage (from backend directory):
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-admin
//
// Override credentials with SEED_ADMIN_USERNAME / SEED_ADMIN_PASSWORD.
package main

import (
	"context"
	"fmt"
	"os"

	"bitbucket.org/distextil/telas_backend/config"
	"bitbucket.org/distextil/telas_backend/models"
	"bitbucket.org/distextil/telas_backend/utils"
	"gorm.io/gorm"
)

const (
	defaultAdminUsername = "telasAdmin"
	defaultAdminName     = "Telas Admin"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	models.MigrateTable()

	username := os.Getenv("SEED_ADMIN_USERNAME")
	if username == "" {
		username = defaultAdminUsername
	}
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		fmt.Fprintln(os.Stderr, "SEED_ADMIN_PASSWORD is required.")
		os.Exit(2)
	}

	var existing models.User
	err := db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Take(&existing).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		fmt.Fprintf(os.Stderr, "failed to look up user: %v\n", err)
		os.Exit(1)
	}

	if err == gorm.ErrRecordNotFound {
		user, err := models.CreateUser(ctx, &models.NewUser{
			Username: username,
			Name:     defaultAdminName,
			Password: password,
			Role:     models.UserRoleMajorAdmin,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create admin user: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("created admin user %s (id=%d)\n", user.Username, user.ID)
		return
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}
	isActive := true
	updates := map[string]interface{}{
		"password":  string(hashed),
		"role":      models.UserRoleMajorAdmin,
		"is_active": &isActive,
	}
	if err := db.WithContext(ctx).Model(&models.User{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to update admin user: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("updated admin user %s (id=%d)\n", username, existing.ID)
}
