package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/promptloom/internal/apperr"
	"github.com/starford/promptloom/internal/composer"
	"github.com/starford/promptloom/internal/drafts"
)

// maxBody caps request bodies.
const maxBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Message string       `json:"message" validate:"required"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// FieldError describes one invalid request field.
type FieldError struct {
	Field   string `json:"field" example:"title"`
	Message string `json:"message" example:"the length must be between 3 and 200"`
}

func errorBody(msg string) errResponse {
	return errResponse{Message: msg}
}

func validationBody(verrs validation.Errors) errResponse {
	fields := make([]string, 0, len(verrs))
	for f := range verrs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	body := errResponse{Message: "Validation error: " + verrs.Error()}
	for _, f := range fields {
		body.Errors = append(body.Errors, FieldError{Field: f, Message: verrs[f].Error()})
	}
	return body
}

// decodeJSON reads a JSON request body into dst, answering 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

// pathID parses the named URL parameter as an entity id. It answers
// 400 "Invalid <entity> ID" when the value is not a positive integer.
func pathID(w http.ResponseWriter, r *http.Request, param, entity string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorBody(apperr.InvalidID(entity).Error()))
		return 0, false
	}
	return id, true
}

// writeError maps a service error onto a status code and body.
func writeError(w http.ResponseWriter, op string, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		writeJSON(w, http.StatusBadRequest, validationBody(verrs))
	case errors.Is(err, apperr.ErrInvalidID):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrAlreadyExists), errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody(err.Error()))
	case errors.Is(err, composer.ErrEmptyName),
		errors.Is(err, composer.ErrEmptyComposition),
		errors.Is(err, composer.ErrNoValidIDs),
		errors.Is(err, composer.ErrEmptyItem):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, drafts.ErrLimit):
		writeJSON(w, http.StatusTooManyRequests, errorBody(err.Error()))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
