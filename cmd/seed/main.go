package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/hoadb/memberwall/internal/config"
	"github.com/hoadb/memberwall/internal/database"
	"github.com/hoadb/memberwall/internal/models"
	"github.com/hoadb/memberwall/internal/services"
	"github.com/hoadb/memberwall/internal/validation"
)

// placeholderPhoto is a PNG signature, enough to pass the upload check.
var placeholderPhoto = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := database.Connect(cfg.DatabasePath)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}
	fmt.Println("✓ Database migrated successfully")

	users := services.NewUserService(db)
	posts := services.NewPostService(db)
	auth, err := services.NewAuthService(users, services.NewBcryptHasher(services.DefaultBcryptCost), nil)
	if err != nil {
		log.Fatal("Failed to prepare auth service:", err)
	}

	created, generated, err := auth.EnsureAdmin(cfg.AdminEmail, cfg.AdminPassword)
	switch {
	case err != nil:
		log.Fatal("Failed to seed admin:", err)
	case created && generated != "":
		fmt.Printf("✓ Created admin %s with password %s\n", cfg.AdminEmail, generated)
	case created:
		fmt.Printf("✓ Created admin %s\n", cfg.AdminEmail)
	default:
		fmt.Println("  Admin already exists")
	}

	password := os.Getenv("SEED_MEMBER_PASSWORD")
	if password == "" {
		password = "Member-Pass-123!"
	}

	members := []validation.Registration{
		{Name: "Maria Clara", Email: "maria@example.com", Password: password, Phone: "09171234567"},
		{Name: "Jose Rizal", Email: "jose@example.com", Password: password, Phone: "9181234567"},
		{Name: "Andres Bonifacio", Email: "andres@example.com", Password: password, Phone: "09191234567"},
	}
	for _, m := range members {
		u, err := auth.Register(services.RegisterInput{
			Registration: m,
			Photo: services.Photo{
				Name:        "placeholder.png",
				ContentType: "image/png",
				Data:        placeholderPhoto,
				Size:        int64(len(placeholderPhoto)),
			},
		})
		switch {
		case err == nil:
			fmt.Printf("✓ Created member: %s\n", u.Email)
			if err := posts.Insert(&models.Post{AuthorID: u.ID, UserType: u.UserType, Name: u.Name, Body: "Hello from " + u.Name}); err != nil {
				log.Printf("Failed to create post for %s: %v", u.Email, err)
			}
		case errors.Is(err, services.ErrEmailExists):
			fmt.Printf("  Member already exists: %s\n", m.Email)
		default:
			log.Fatalf("Failed to create member %s: %v", m.Email, err)
		}
	}

	fmt.Println("\n✓ Database seeding completed successfully!")
}
