package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aryngazy/fest-system/live"
	"github.com/aryngazy/fest-system/models"
	"github.com/aryngazy/fest-system/repositories"
)

// ReviewAction — действие модератора над заявкой.
type ReviewAction string

const (
	ActionApprove ReviewAction = "approve"
	ActionReject  ReviewAction = "reject"
)

type AdminService struct {
	regRepo repositories.RegistrationRepository
	hub     *live.Hub
	logger  *slog.Logger
}

func NewAdminService(regRepo repositories.RegistrationRepository, hub *live.Hub, logger *slog.Logger) *AdminService {
	return &AdminService{regRepo: regRepo, hub: hub, logger: logger}
}

// SetStatus переводит заявку в approved/rejected. Обновление безусловное:
// повторный approve идемпотентен, переходов обратно в pending нет, но и
// approve после reject не запрещается — так решает модератор.
func (s *AdminService) SetStatus(ctx context.Context, registrationID int, action ReviewAction) (*models.Registration, error) {
	var status models.RegistrationStatus
	switch action {
	case ActionApprove:
		status = models.RegistrationApproved
	case ActionReject:
		status = models.RegistrationRejected
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownReviewAction, action)
	}

	reg, err := s.regRepo.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to load registration %d: %w", registrationID, err)
	}

	if err := s.regRepo.UpdateStatus(ctx, registrationID, status); err != nil {
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to update registration %d status: %w", registrationID, err)
	}
	reg.Status = status

	s.logger.Info("registration status updated",
		slog.Int("registration_id", registrationID),
		slog.String("status", string(status)),
	)
	if s.hub != nil {
		s.hub.Broadcast(live.EventStatusUpdated, reg)
	}
	return reg, nil
}
