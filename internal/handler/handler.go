package handlers

import (
	"reflect"
	"socialhub/internal/config"
	"socialhub/internal/database"
	"socialhub/internal/service"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Handlers struct {
	UserService  service.UserService
	AuthService  service.AuthService
	PostService  service.PostService
	StatsService service.StatsService
	Health       database.Checker
	Cfg          *config.Config
	Validate     *validator.Validate
}

func NewHandlers(service *service.Service, health database.Checker, config *config.Config) *Handlers {
	return &Handlers{
		UserService:  service.User,
		AuthService:  service.Auth,
		PostService:  service.Post,
		StatsService: service.Stats,
		Health:       health,
		Cfg:          config,
		Validate:     NewValidator(),
	}
}

// NewValidator reports fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
