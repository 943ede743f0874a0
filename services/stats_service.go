package services

import (
	"context"

	"github.com/aryngazy/fest-system/models"
	"github.com/aryngazy/fest-system/repositories"
	"golang.org/x/sync/errgroup"
)

// DashboardStats — всё, что рисует админ-дашборд одним экраном.
type DashboardStats struct {
	UserCount         int                   `json:"user_count"`
	RegistrationCount int                   `json:"registration_count"`
	Users             []models.User         `json:"users"`
	Registrations     []models.Registration `json:"registrations"`
}

type StatsService struct {
	userRepo repositories.UserRepository
	regRepo  repositories.RegistrationRepository
}

func NewStatsService(userRepo repositories.UserRepository, regRepo repositories.RegistrationRepository) *StatsService {
	return &StatsService{userRepo: userRepo, regRepo: regRepo}
}

// Dashboard собирает четыре независимых запроса параллельно.
func (s *StatsService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		count, err := s.userRepo.Count(gCtx)
		stats.UserCount = count
		return err
	})
	g.Go(func() error {
		count, err := s.regRepo.Count(gCtx)
		stats.RegistrationCount = count
		return err
	})
	g.Go(func() error {
		users, err := s.userRepo.List(gCtx)
		stats.Users = users
		return err
	})
	g.Go(func() error {
		regs, err := s.regRepo.List(gCtx)
		stats.Registrations = regs
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}
