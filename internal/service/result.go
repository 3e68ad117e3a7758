package service

import (
	"context"
	"errors"

	"github.com/ekabrahmaa/prakriti-bot/internal/domain/entities"
	"github.com/ekabrahmaa/prakriti-bot/internal/repository"
)

var ErrNoResult = errors.New("no result yet")

type ResultService struct {
	repository ResultRepository
}

func NewResultService(repository ResultRepository) *ResultService {
	return &ResultService{repository: repository}
}

// Latest returns the most recent stored result of the user.
func (s *ResultService) Latest(ctx context.Context, userID int64) (*entities.Result, error) {
	res, err := s.repository.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrResultNotFound) {
			return nil, ErrNoResult
		}
		return nil, err
	}
	return res, nil
}
