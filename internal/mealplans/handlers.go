package mealplans

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/fdg312/mealcraft/internal/export"
	"github.com/fdg312/mealcraft/internal/storage"
)

// Handler handles HTTP requests for meal plans.
type Handler struct {
	service *Service
}

// NewHandler creates a new meal plans handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleList handles GET /meal-plans?week_start=YYYY-MM-DD
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.ListWeek(r.Context(), r.URL.Query().Get("week_start"))
	if err != nil {
		if errors.Is(err, ErrValidation) {
			writeError(w, http.StatusBadRequest, "invalid_request", validationMessage(err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "Error retrieving meal plan")
		return
	}

	writeJSON(w, http.StatusOK, ListResponse{Status: "success", Entries: entries})
}

// HandleCreate handles POST /meal-plans
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	entry, err := h.service.AddEntry(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			writeError(w, http.StatusBadRequest, "invalid_request", validationMessage(err))
		case errors.Is(err, storage.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found", fmt.Sprintf("Recipe with ID %d not found", req.RecipeID))
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", "Error creating meal plan entry")
		}
		return
	}

	writeJSON(w, http.StatusCreated, EntryResponse{Status: "success", Entry: entry})
}

// HandleDelete handles DELETE /meal-plans/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "id must be a positive integer")
		return
	}

	if err := h.service.DeleteEntry(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", fmt.Sprintf("Meal plan entry with ID %d not found", id))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "Error deleting meal plan entry")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Status: "success", Message: fmt.Sprintf("Meal plan entry %d deleted", id)})
}

// HandleExport handles GET /meal-plans/export?week_start=&format=pdf|csv|html
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	weekStart := r.URL.Query().Get("week_start")
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "format must be one of pdf, csv, html")
		return
	}

	data, err := h.service.ExportWeek(r.Context(), weekStart, format)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			writeError(w, http.StatusBadRequest, "invalid_request", validationMessage(err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to export meal plan")
		return
	}

	w.Header().Set("Content-Type", export.ContentType(format))
	if format != export.FormatHTML {
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="meal-plan-%s.%s"`, weekStart, format))
	}
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func validationMessage(err error) string {
	return strings.TrimPrefix(err.Error(), ErrValidation.Error()+": ")
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
