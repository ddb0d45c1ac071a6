package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/forumkit/lottery-draw-backend/internal/config"
	"github.com/forumkit/lottery-draw-backend/internal/models"
	mongorepo "github.com/forumkit/lottery-draw-backend/internal/repositories/mongodb"
	"github.com/forumkit/lottery-draw-backend/pkg/mongodb"
	"golang.org/x/crypto/bcrypt"
)

// Creates the first operator account. Run once against a fresh database:
//
//	go run ./cmd/scripts -email admin@example.com -password secret
func main() {
	email := flag.String("email", "", "operator email")
	password := flag.String("password", "", "operator password")
	role := flag.String("role", "admin", "operator role")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("both -email and -password are required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	client, err := mongodb.NewClient(cfg.MongoDB.URI)
	if err != nil {
		log.Fatalf("failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo := mongorepo.NewAdminUserRepository(client.Database(cfg.MongoDB.Database))
	adminUser := &models.AdminUser{
		Email:    *email,
		Password: string(hash),
		Role:     *role,
	}
	if err := repo.Create(ctx, adminUser); err != nil {
		log.Fatalf("failed to create admin user: %v", err)
	}

	log.Printf("admin user %s created with id %s", adminUser.Email, adminUser.ID.Hex())
}
