package handlers

import (
	"net/http"
	"socialhub/internal/service"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
)

type CreatePostRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
	Image   string `json:"image" validate:"max=2048"`
}

func (req *CreatePostRequest) normalize() {
	req.Content = strings.TrimSpace(req.Content)
	req.Image = strings.TrimSpace(req.Image)
}

type CommentRequest struct {
	Text string `json:"text" validate:"required,max=500"`
}

func (req *CommentRequest) normalize() {
	req.Text = strings.TrimSpace(req.Text)
}

func queryInt(r *http.Request, key string) int {
	value, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return value
}

func (h *Handlers) GetFeed(w http.ResponseWriter, r *http.Request) {
	page, err := h.PostService.Feed(r.Context(), queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, page, http.StatusOK)
}

func (h *Handlers) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.PostService.GetPost(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, post, http.StatusOK)
}

// CreatePost accepts either a JSON body or a multipart form with an optional "image" file.
func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req CreatePostRequest
	input := service.CreatePostInput{AuthorID: userID}

	if isMultipart(r) {
		upload, closer, ok := h.parseUpload(w, r, "image")
		if !ok {
			return
		}
		if closer != nil {
			defer closer.Close()
		}

		req.Content = r.FormValue("content")
		req.Image = r.FormValue("image")
		req.normalize()
		if err := h.Validate.Struct(&req); err != nil {
			WriteError(w, validationMessage(err), http.StatusBadRequest)
			return
		}
		input.Upload = upload
	} else if !h.decodeAndValidate(w, r, &req) {
		return
	}

	input.Content = req.Content
	input.Image = req.Image

	post, err := h.PostService.CreatePost(r.Context(), input)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, post, http.StatusCreated)
}

func (h *Handlers) LikePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	result, err := h.PostService.ToggleLike(r.Context(), mux.Vars(r)["id"], userID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, result, http.StatusOK)
}

func (h *Handlers) AddComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req CommentRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	post, err := h.PostService.AddComment(r.Context(), mux.Vars(r)["id"], userID, req.Text)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, post, http.StatusOK)
}

func (h *Handlers) EditComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req CommentRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	vars := mux.Vars(r)
	post, err := h.PostService.EditComment(r.Context(), vars["id"], vars["commentId"], userID, req.Text)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, post, http.StatusOK)
}

func (h *Handlers) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	if err := h.PostService.DeletePost(r.Context(), mux.Vars(r)["id"], userID); err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, MessageResponse{Message: "Post deleted successfully"}, http.StatusOK)
}
