package service

import (
	"socialhub/internal/cache"
	"socialhub/internal/config"
	"socialhub/internal/events"
	"socialhub/internal/repository"
	"socialhub/internal/storage"
)

type Service struct {
	User      UserService
	Post      PostService
	Auth      AuthService
	Stats     StatsService
	Reconcile ReconcileService
}

func NewService(
	rep *repository.Repository,
	cfg *config.Config,
	storage storage.Storage,
	profiles cache.ProfileCache,
	publisher events.Publisher,
) *Service {
	if profiles == nil {
		profiles = cache.NewNoop()
	}
	if publisher == nil {
		publisher = events.NewNoop()
	}

	return &Service{
		User:      NewUserService(rep.User, rep.Post, storage, profiles, publisher, cfg),
		Post:      NewPostService(rep.Post, rep.User, storage, profiles, publisher, cfg),
		Auth:      NewAuthService(rep.User, cfg),
		Stats:     NewStatsService(rep.User, rep.Post),
		Reconcile: NewReconcileService(rep.User, rep.Post, profiles),
	}
}
