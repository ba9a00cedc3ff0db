package recipes

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/fdg312/mealcraft/internal/storage"
)

// Handler handles HTTP requests for recipes.
type Handler struct {
	service *Service
}

// NewHandler creates a new recipes handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleList handles GET /recipes
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list recipes")
		return
	}

	writeJSON(w, http.StatusOK, ListResponse{Status: "success", Count: len(list), Recipes: list})
}

// HandleGet handles GET /recipes/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	recipe, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err, id, "Failed to get recipe")
		return
	}

	writeJSON(w, http.StatusOK, RecipeResponse{Status: "success", Recipe: recipe})
}

// HandleCreate handles POST /recipes
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	recipe, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err, 0, "Failed to create recipe")
		return
	}

	writeJSON(w, http.StatusCreated, RecipeResponse{Status: "success", Recipe: recipe})
}

// HandleUpdate handles PATCH /recipes/{id}
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req UpdateRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	recipe, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.writeServiceError(w, err, id, "Failed to update recipe")
		return
	}

	writeJSON(w, http.StatusOK, RecipeResponse{Status: "success", Recipe: recipe})
}

// HandleDelete handles DELETE /recipes/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, err, id, "Failed to delete recipe")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Status: "success", Message: fmt.Sprintf("Recipe %d deleted", id)})
}

// HandleUploadPhoto handles POST /recipes/{id}/photo with a raw image body.
func (h *Handler) HandleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	limit := h.service.MaxPhotoBytes()
	data, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Failed to read request body")
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Empty body")
		return
	}

	recipe, err := h.service.AttachPhoto(r.Context(), id, data, r.Header.Get("Content-Type"))
	if err != nil {
		h.writeServiceError(w, err, id, "Failed to upload photo")
		return
	}

	writeJSON(w, http.StatusOK, RecipeResponse{Status: "success", Recipe: recipe})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error, id int64, fallback string) {
	switch {
	case errors.Is(err, ErrValidation):
		writeError(w, http.StatusBadRequest, "invalid_request", strings.TrimPrefix(err.Error(), ErrValidation.Error()+": "))
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", fmt.Sprintf("Recipe with ID %d not found", id))
	case errors.Is(err, ErrPhotosDisabled):
		writeError(w, http.StatusNotImplemented, "photos_disabled", "Photo upload is disabled (BLOB_MODE=local)")
	case errors.Is(err, ErrUnsupportedMedia):
		writeError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", err.Error())
	case errors.Is(err, ErrPhotoTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "Photo exceeds upload limit")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", fallback)
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "id must be a positive integer")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
