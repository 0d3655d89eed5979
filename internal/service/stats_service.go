package service

import (
	"context"
	"socialhub/internal/models"
	"socialhub/internal/repository"
)

type StatsService interface {
	GetStats(ctx context.Context) (*models.Stats, error)
}

type statsService struct {
	userRepo repository.UserRepository
	postRepo repository.PostRepository
}

func NewStatsService(userRepo repository.UserRepository, postRepo repository.PostRepository) StatsService {
	return &statsService{userRepo: userRepo, postRepo: postRepo}
}

func (s *statsService) GetStats(ctx context.Context) (*models.Stats, error) {
	users, err := s.userRepo.CountUsers(ctx)
	if err != nil {
		return nil, err
	}

	posts, err := s.postRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	return &models.Stats{Users: users, Posts: posts}, nil
}
