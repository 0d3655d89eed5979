package handlers

import (
	"net/http"
	"socialhub/internal/service"
	"strings"

	"github.com/gorilla/mux"
)

type UpdateProfileRequest struct {
	Name string `json:"name" validate:"required,max=50"`
	Bio  string `json:"bio" validate:"max=160"`
}

func (req *UpdateProfileRequest) normalize() {
	req.Name = strings.TrimSpace(req.Name)
	req.Bio = strings.TrimSpace(req.Bio)
}

func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	users, err := h.UserService.ListUsers(r.Context(), userID, service.UserQuery{
		Search: query.Get("search"),
		Sort:   query.Get("sort"),
		Limit:  queryInt(r, "limit"),
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, users, http.StatusOK)
}

func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	profile, err := h.UserService.GetProfile(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, profile, http.StatusOK)
}

func (h *Handlers) GetUserPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.PostService.ListByAuthor(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, posts, http.StatusOK)
}

func (h *Handlers) FollowUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	result, err := h.UserService.ToggleFollow(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, result, http.StatusOK)
}

func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	profile, err := h.UserService.UpdateProfile(r.Context(), userID, service.UpdateProfileInput{
		Name: req.Name,
		Bio:  req.Bio,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, profile, http.StatusOK)
}

func (h *Handlers) UploadProfilePicture(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	if !isMultipart(r) {
		WriteError(w, "Expected multipart/form-data", http.StatusBadRequest)
		return
	}

	upload, closer, ok := h.parseUpload(w, r, "picture")
	if !ok {
		return
	}
	if upload == nil {
		WriteError(w, "No file uploaded", http.StatusBadRequest)
		return
	}
	defer closer.Close()

	profile, err := h.UserService.UpdateProfilePicture(r.Context(), userID, *upload)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, profile, http.StatusOK)
}
