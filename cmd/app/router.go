package app

import (
	"net/http"
	handlers "socialhub/internal/handler"
	"socialhub/internal/middleware"

	"github.com/gorilla/mux"
)

// NewRouter registers every route. Only auth, health, stats, metrics and the banner are reachable without a token.
func NewRouter(h *handlers.Handlers, metrics *middleware.Metrics) *mux.Router {
	r := mux.NewRouter()
	r.Use(metrics.Middleware)

	r.HandleFunc("/", h.Home).Methods(http.MethodGet)
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/stats", h.Stats).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/api/auth/register", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/login", h.Login).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(mux.MiddlewareFunc(middleware.AuthMiddleware(h.AuthService)))

	api.HandleFunc("/auth/me", h.Me).Methods(http.MethodGet)

	api.HandleFunc("/posts", h.GetFeed).Methods(http.MethodGet)
	api.HandleFunc("/posts", h.CreatePost).Methods(http.MethodPost)
	api.HandleFunc("/posts/{id}", h.GetPost).Methods(http.MethodGet)
	api.HandleFunc("/posts/{id}", h.DeletePost).Methods(http.MethodDelete)
	api.HandleFunc("/posts/{id}/like", h.LikePost).Methods(http.MethodPost)
	api.HandleFunc("/posts/{id}/comment", h.AddComment).Methods(http.MethodPost)
	api.HandleFunc("/posts/{id}/comments/{commentId}", h.EditComment).Methods(http.MethodPut)

	api.HandleFunc("/users", h.ListUsers).Methods(http.MethodGet)
	api.HandleFunc("/users/profile", h.UpdateProfile).Methods(http.MethodPut)
	api.HandleFunc("/users/profile/picture", h.UploadProfilePicture).Methods(http.MethodPost)
	api.HandleFunc("/users/{id}", h.GetUser).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}/posts", h.GetUserPosts).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}/follow", h.FollowUser).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, "Route not found", http.StatusNotFound)
	})

	return r
}
