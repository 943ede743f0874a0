package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/aryngazy/fest-system/models"
	"github.com/aryngazy/fest-system/oauth"
	"github.com/aryngazy/fest-system/repositories"
)

// UserService — «справочник пользователей»: единственное место, где сырой
// OAuth-профиль превращается в нормализованную запись.
type UserService struct {
	userRepo repositories.UserRepository
}

func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// UpsertFromProfile вызывается на каждом логине: создаёт пользователя при
// первом входе, дальше обновляет профиль и last_login.
func (s *UserService) UpsertFromProfile(ctx context.Context, profile *oauth.Profile) (*models.User, error) {
	email := NormalizeEmail(profile.Email)
	if email == "" {
		return nil, fmt.Errorf("oauth profile has no email")
	}

	name := strings.TrimSpace(profile.Name)
	if name == "" {
		// Провайдер может не отдать имя; локальная часть email лучше пустоты.
		name = strings.SplitN(email, "@", 2)[0]
	}

	user := &models.User{
		Email:     email,
		Name:      name,
		AvatarURL: profile.AvatarURL,
		Provider:  profile.Provider,
	}
	if err := s.userRepo.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to upsert user from oauth profile: %w", err)
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id int) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}
