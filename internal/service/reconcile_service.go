package service

import (
	"context"
	"fmt"
	"log"
	"socialhub/internal/cache"
	"socialhub/internal/repository"
	"time"

	"github.com/robfig/cron/v3"
)

type ReconcileService interface {
	ReconcilePostCounts(ctx context.Context) (int, error)
}

type reconcileService struct {
	userRepo repository.UserRepository
	postRepo repository.PostRepository
	profiles cache.ProfileCache
}

func NewReconcileService(userRepo repository.UserRepository, postRepo repository.PostRepository, profiles cache.ProfileCache) ReconcileService {
	return &reconcileService{userRepo: userRepo, postRepo: postRepo, profiles: profiles}
}

// ReconcilePostCounts rewrites every stored postsCount that differs from the
// real number of posts and returns how many users were fixed.
// Stored counts are read before posts are counted and written back only if
// unchanged, so a counter that moved during the run is left for the next one.
// A post whose counter increment lands after the write leaves the count off by one
// until the following run.
func (s *reconcileService) ReconcilePostCounts(ctx context.Context) (int, error) {
	stored, err := s.userRepo.GetPostsCounts(ctx)
	if err != nil {
		return 0, err
	}

	actual, err := s.postRepo.CountByAuthor(ctx)
	if err != nil {
		return 0, err
	}

	fixed := 0
	for userID, count := range stored {
		if actual[userID] == count {
			continue
		}
		updated, err := s.userRepo.SetPostsCount(ctx, userID, count, actual[userID])
		if err != nil {
			return fixed, err
		}
		if !updated {
			continue
		}
		s.profiles.Invalidate(userID)
		fixed++
	}

	return fixed, nil
}

// StartReconciler schedules ReconcilePostCounts with a cron expression such as "@hourly".
func StartReconciler(reconciler ReconcileService, schedule string) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		fixed, err := reconciler.ReconcilePostCounts(ctx)
		if err != nil {
			log.Printf("Сверка счетчиков постов завершилась ошибкой: %v", err)
			return
		}
		if fixed > 0 {
			log.Printf("Сверка счетчиков постов: исправлено пользователей: %d", fixed)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("неверное расписание сверки %q: %w", schedule, err)
	}

	c.Start()
	return c, nil
}
