package service

import (
	"context"
	"fmt"

	"github.com/ekabrahmaa/prakriti-bot/internal/domain/entities"
)

type UserService struct {
	repository UserRepository
}

func NewUserService(repository UserRepository) *UserService {
	return &UserService{repository: repository}
}

// EnsureUser registers the user on first contact and records the visit otherwise.
// It reports whether the user is new.
func (s *UserService) EnsureUser(ctx context.Context, userID, chatID int64, firstName string) (bool, error) {
	created, err := s.repository.Upsert(ctx, entities.NewUser(userID, chatID, firstName))
	if err != nil {
		return false, fmt.Errorf("ensure user: %w", err)
	}

	return created, nil
}
