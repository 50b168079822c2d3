// Command create-admin seeds an admin account.
//
//	create-admin -name "Site Admin" -email admin@example.com -password secret123
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"attendance_backend/internal/config"
	"attendance_backend/internal/database"
	"attendance_backend/internal/repositories"
	"attendance_backend/internal/services"
	"attendance_backend/pkg/utils"

	"github.com/rs/zerolog/log"
)

func main() {
	name := flag.String("name", "", "admin display name")
	email := flag.String("email", "", "admin login email")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "admin password (defaults to $ADMIN_PASSWORD)")
	flag.Parse()

	utils.InitLogger("info", true)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.InitDB(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	authService := services.NewAuthService(repositories.NewAdminRepository(db), repositories.NewEmployeeRepository(db))
	admin, err := authService.CreateAdmin(ctx, services.CreateAdminRequest{Name: *name, Email: *email, Password: *password})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create admin")
	}

	utils.LogInfo("Admin created", map[string]interface{}{"id": admin.ID, "email": admin.Email})
}
