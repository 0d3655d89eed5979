package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"socialhub/internal/service"
	"socialhub/internal/storage"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
)

// ErrorResponse - стандартный ответ с ошибкой
type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// WriteError - универсальная функция для отправки ошибок
func WriteError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, ErrorResponse{Error: message}, statusCode)
}

func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Ошибка записи ответа: %v", err)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrUserExists),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrSelfFollow),
		errors.Is(err, service.ErrInvalidSort),
		errors.Is(err, storage.ErrUnsupportedImage):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrPostNotFound),
		errors.Is(err, service.ErrCommentNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, service.ErrUploadsDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError maps domain errors to their status; anything unknown is a 500 with the raw message.
func (h *Handlers) writeServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)

	message := err.Error()
	switch {
	case errors.Is(err, storage.ErrUnsupportedImage):
		message = "Only JPEG, PNG, GIF and WebP images are allowed"
	case errors.Is(err, storage.ErrImageTooLarge):
		message = h.tooLargeMessage()
	case status == http.StatusInternalServerError:
		log.Printf("Внутренняя ошибка: %v", err)
	}

	WriteError(w, message, status)
}

func (h *Handlers) tooLargeMessage() string {
	return fmt.Sprintf("Image must be at most %s", humanize.IBytes(uint64(h.Cfg.MaxUploadSize)))
}

// validationMessage turns the first failed rule into a client-facing sentence.
func validationMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return "Invalid request data"
	}

	fe := validationErrors[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// decodeAndValidate reads a JSON body into req and runs the validator on it.
func (h *Handlers) decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{ normalize() }) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		WriteError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}

	req.normalize()

	if err := h.Validate.Struct(req); err != nil {
		WriteError(w, validationMessage(err), http.StatusBadRequest)
		return false
	}

	return true
}

func (h *Handlers) currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		WriteError(w, "Authorization required", http.StatusUnauthorized)
	}
	return userID, ok
}
