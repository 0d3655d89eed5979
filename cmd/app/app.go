package app

import (
	"fmt"
	"io"
	"log"
	"socialhub/internal/cache"
	"socialhub/internal/config"
	"socialhub/internal/database"
	"socialhub/internal/events"
	"socialhub/internal/repository"
	"socialhub/internal/service"
	"socialhub/internal/storage"

	"github.com/robfig/cron/v3"
)

// App owns every long-lived dependency of the API process.
type App struct {
	Health     database.Checker
	Repository *repository.Repository
	Services   *service.Service

	closers    []io.Closer
	publisher  events.Publisher
	reconciler *cron.Cron
}

func New(cfg *config.Config) (*App, error) {
	a := &App{}

	// connection DB
	switch cfg.DBDriver {
	case config.DriverPostgres:
		db, err := database.ConnectDB(cfg)
		if err != nil {
			return nil, fmt.Errorf("не удалось подключиться к PostgreSQL: %w", err)
		}
		a.Health = db
		a.Repository = repository.NewRepository(db.DB)
		a.closers = append(a.closers, db)
	default:
		m, err := database.ConnectMongo(cfg)
		if err != nil {
			return nil, fmt.Errorf("не удалось подключиться к MongoDB: %w", err)
		}
		a.Health = m
		a.Repository = repository.NewMongoRepository(m.Database)
		a.closers = append(a.closers, m)
	}

	// connection MinIO; the API still serves everything except uploads without it
	var images storage.Storage
	minioClient, err := storage.NewMinIOClient(cfg)
	if err != nil {
		log.Printf("MinIO недоступен, загрузка изображений отключена: %v", err)
	} else {
		images = minioClient
	}

	profiles := cache.NewNoop()
	if cfg.Memcached.Addr != "" {
		profiles = cache.NewMemcached(cfg.Memcached.Addr, cfg.Memcached.TTL)
	}

	a.publisher = events.NewNoop()
	if cfg.NATS.URL != "" {
		publisher, err := events.NewNATS(cfg.NATS.URL, cfg.NATS.SubjectPrefix)
		if err != nil {
			log.Printf("NATS недоступен, события не публикуются: %v", err)
		} else {
			a.publisher = publisher
		}
	}

	a.Services = service.NewService(a.Repository, cfg, images, profiles, a.publisher)

	if cfg.ReconcileSchedule != "" {
		a.reconciler, err = service.StartReconciler(a.Services.Reconcile, cfg.ReconcileSchedule)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("неверное расписание сверки %q: %w", cfg.ReconcileSchedule, err)
		}
	}

	return a, nil
}

// Close stops background work and releases connections in reverse order.
func (a *App) Close() {
	if a.reconciler != nil {
		<-a.reconciler.Stop().Done()
	}
	if a.publisher != nil {
		a.publisher.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			log.Printf("Ошибка закрытия соединения: %v", err)
		}
	}
}
