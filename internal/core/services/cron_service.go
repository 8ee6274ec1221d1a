package services

import (
	"context"
	"log"

	"bloodlink-api/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// CronService runs scheduled background jobs
type CronService struct {
	cron             *cron.Cron
	refreshTokenRepo repositories.RefreshTokenRepository
}

// NewCronService creates a new cron service
func NewCronService(refreshTokenRepo repositories.RefreshTokenRepository) *CronService {
	return &CronService{
		cron:             cron.New(),
		refreshTokenRepo: refreshTokenRepo,
	}
}

// Start registers jobs and starts the scheduler
func (s *CronService) Start() {
	// Purge expired refresh tokens daily at 03:30
	if _, err := s.cron.AddFunc("30 3 * * *", s.cleanupExpiredTokens); err != nil {
		log.Printf("Failed to register token cleanup job: %v", err)
		return
	}

	s.cron.Start()
	log.Println("Cron service started")
}

// Stop stops the scheduler, waiting for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Cron service stopped")
}

func (s *CronService) cleanupExpiredTokens() {
	deleted, err := s.refreshTokenRepo.DeleteExpired(context.Background())
	if err != nil {
		log.Printf("Token cleanup error: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("Token cleanup removed %d expired refresh tokens", deleted)
	}
}
