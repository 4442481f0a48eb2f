package main

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"noctuai/internal/config"
	"noctuai/internal/db"
	"noctuai/internal/model"
	"noctuai/internal/repository"
)

// demoUser describes one seeded account.
type demoUser struct {
	Email    string
	Password string
	Name     string
	Plan     model.Plan
}

var demoUsers = []demoUser{
	{Email: "free@example.com", Password: "password123", Name: "Free Demo", Plan: model.PlanFree},
	{Email: "premium@example.com", Password: "password123", Name: "Premium Demo", Plan: model.PlanPremium},
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}, &model.Creation{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	userRepo := repository.NewUserRepository(gormDB)
	creationRepo := repository.NewCreationRepository(gormDB)
	ctx := context.Background()

	seeded, skipped, err := seedUsers(ctx, userRepo, creationRepo)
	if err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - New users created: %d", seeded)
	log.Printf("  - Existing users skipped: %d", skipped)
}

// seedUsers creates the demo users and a couple of published creations so the
// community feed is not empty on a fresh install.
func seedUsers(ctx context.Context, userRepo repository.UserRepository, creationRepo repository.CreationRepository) (seeded int, skipped int, err error) {
	for _, demo := range demoUsers {
		existing, err := userRepo.FindByEmail(ctx, demo.Email)
		if err != nil && err != gorm.ErrRecordNotFound {
			return seeded, skipped, fmt.Errorf("error checking user %s: %w", demo.Email, err)
		}
		if existing != nil {
			skipped++
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(demo.Password), 10)
		if err != nil {
			return seeded, skipped, fmt.Errorf("error hashing password for %s: %w", demo.Email, err)
		}

		user := &model.User{
			Email:        demo.Email,
			PasswordHash: string(hash),
			Name:         demo.Name,
			Plan:         demo.Plan,
		}
		if err := userRepo.Create(ctx, user); err != nil {
			return seeded, skipped, fmt.Errorf("error creating user %s: %w", demo.Email, err)
		}
		seeded++

		if demo.Plan != model.PlanPremium {
			continue
		}
		creation := &model.Creation{
			UserID:  user.ID,
			Prompt:  "A lighthouse on a cliff at sunset",
			Content: "https://cdn.example.com/noctuai-creations/demo-lighthouse.png",
			Type:    model.CreationTypeImage,
			Publish: true,
		}
		if err := creationRepo.Create(ctx, creation); err != nil {
			return seeded, skipped, fmt.Errorf("error creating demo creation: %w", err)
		}
	}

	return seeded, skipped, nil
}
