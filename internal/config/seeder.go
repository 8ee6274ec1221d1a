package config

import (
	"log"

	"bloodlink-api/internal/adapters/persistence/models"
	"bloodlink-api/internal/core/domain"
	"bloodlink-api/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		log.Printf("Warning: admin seeder skipped: %v", err)
	}

	log.Println("Database seeding completed")
	return nil
}

// seedAdminUser seeds the default admin account.
// For development only; production admins are created through a secure process.
func (s *Seeder) seedAdminUser() error {
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", string(domain.RoleAdmin)).Count(&count)
	if count > 0 {
		return nil // Admin already exists
	}

	hashedPassword, err := password.Hash(getEnv("ADMIN_PASSWORD", "admin123456"))
	if err != nil {
		return err
	}

	admin := &models.User{
		Code:     uuid.New().String(),
		Username: "admin",
		Email:    getEnv("ADMIN_EMAIL", "admin@bloodlink.org"),
		Password: hashedPassword,
		Role:     string(domain.RoleAdmin),
		Status:   string(domain.AccountActive),
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("Seeded admin user: %s", admin.Username)
	return nil
}
