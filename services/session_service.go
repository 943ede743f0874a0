package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aryngazy/fest-system/auth"
	"github.com/aryngazy/fest-system/models"
	"github.com/aryngazy/fest-system/repositories"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type SessionService struct {
	sessionRepo repositories.SessionRepository
	logger      *slog.Logger

	adminEmails       map[string]struct{}
	adminPasswordHash string
}

func NewSessionService(
	sessionRepo repositories.SessionRepository,
	adminEmails []string,
	adminPasswordHash string,
	logger *slog.Logger,
) *SessionService {
	emails := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		emails[NormalizeEmail(e)] = struct{}{}
	}
	return &SessionService{
		sessionRepo:       sessionRepo,
		logger:            logger,
		adminEmails:       emails,
		adminPasswordHash: adminPasswordHash,
	}
}

// CreateAnonymous заводит сессию без пользователя — нужна, чтобы запомнить
// return-to URL до похода к OAuth-провайдеру.
func (s *SessionService) CreateAnonymous(ctx context.Context, returnTo string) (*models.Session, error) {
	session := &models.Session{
		ID:        uuid.NewString(),
		ReturnTo:  returnTo,
		ExpiresAt: time.Now().Add(auth.SessionTTL),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Login связывает сессию с пользователем после OAuth-колбэка. Если живой
// сессии не было, создаёт новую. Админство определяется allow-list'ом.
func (s *SessionService) Login(ctx context.Context, sessionID string, user *models.User) (*models.Session, error) {
	isAdmin := s.isAdminEmail(user.Email)

	if sessionID != "" {
		err := s.sessionRepo.SetUser(ctx, sessionID, user.ID, isAdmin)
		if err == nil {
			return s.sessionRepo.GetByID(ctx, sessionID)
		}
		if !errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, err
		}
	}

	session := &models.Session{
		ID:        uuid.NewString(),
		UserID:    &user.ID,
		IsAdmin:   isAdmin,
		ExpiresAt: time.Now().Add(auth.SessionTTL),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}
	session.User = user
	return session, nil
}

// Get возвращает живую сессию; истёкшие считаются отсутствующими.
func (s *SessionService) Get(ctx context.Context, id string) (*models.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Expired(time.Now()) {
		_ = s.sessionRepo.Delete(ctx, id)
		return nil, repositories.ErrSessionNotFound
	}
	return session, nil
}

func (s *SessionService) RememberReturnTo(ctx context.Context, id string, returnTo string) error {
	return s.sessionRepo.SetReturnTo(ctx, id, returnTo)
}

func (s *SessionService) TakeReturnTo(ctx context.Context, id string) string {
	returnTo, err := s.sessionRepo.TakeReturnTo(ctx, id)
	if err != nil {
		return ""
	}
	return returnTo
}

func (s *SessionService) Logout(ctx context.Context, id string) {
	if err := s.sessionRepo.Delete(ctx, id); err != nil && !errors.Is(err, repositories.ErrSessionNotFound) {
		s.logger.Warn("failed to delete session on logout", slog.Any("error", err))
	}
}

// ElevateWithPassword — общий админ-пароль как фолбэк для аккаунтов вне
// allow-list'а. Хэш bcrypt приходит из конфигурации.
func (s *SessionService) ElevateWithPassword(ctx context.Context, sessionID string, password string) error {
	if s.adminPasswordHash == "" {
		return ErrAdminLoginDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.adminPasswordHash), []byte(password)); err != nil {
		return ErrAdminPasswordInvalid
	}
	return s.sessionRepo.SetAdmin(ctx, sessionID, true)
}

// RunCleanup периодически удаляет истёкшие сессии до отмены контекста.
func (s *SessionService) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.sessionRepo.DeleteExpired(ctx)
			if err != nil {
				s.logger.Error("session cleanup failed", slog.Any("error", err))
				continue
			}
			if deleted > 0 {
				s.logger.Info("expired sessions removed", slog.Int64("count", deleted))
			}
		}
	}
}

func (s *SessionService) isAdminEmail(email string) bool {
	_, ok := s.adminEmails[NormalizeEmail(email)]
	return ok
}
