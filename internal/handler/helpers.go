package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/casadocigano/fidelidade-api/internal/domain"

	"go.uber.org/zap"
)

// ============================================================
// Shared helper functions
// ============================================================

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func parsePagination(r *http.Request) (page, perPage int) {
	page = 1
	perPage = 10
	if v := r.URL.Query().Get("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			page = p
		}
	}
	if v := r.URL.Query().Get("per_page"); v != "" {
		if pp, err := strconv.Atoi(v); err == nil && pp > 0 && pp <= 100 {
			perPage = pp
		}
	}
	return
}

// goalNotReachedResponse mirrors the refused-redemption contract: the
// caller gets the current balance alongside the error.
type goalNotReachedResponse struct {
	Error         string `json:"error"`
	VisitsCount   int64  `json:"visits_count"`
	GoalThreshold int    `json:"goal_threshold"`
}

// handleServiceError maps domain errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var unauthorized *domain.ErrUnauthorized
	var forbidden *domain.ErrForbidden
	var notFound *domain.ErrNotFound
	var conflict *domain.ErrConflict
	var validation *domain.ErrValidation
	var goalNotReached *domain.ErrGoalNotReached

	switch {
	case errors.As(err, &unauthorized):
		logger.Debug("unauthorized", zap.String("error", err.Error()))
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.As(err, &forbidden):
		logger.Warn("forbidden access", zap.String("error", err.Error()))
		writeError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &notFound):
		logger.Debug("not found", zap.String("error", err.Error()))
		msg := err.Error()
		if notFound.Resource == "cliente" {
			msg = "Cliente não encontrado"
		}
		writeError(w, http.StatusNotFound, msg)
	case errors.As(err, &conflict):
		// Duplicates are reported as plain bad requests, the message
		// carries the detail ("CPF já cadastrado", "email já existe").
		logger.Debug("conflict", zap.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &goalNotReached):
		logger.Debug("goal not reached",
			zap.Int64("visits_count", goalNotReached.VisitsCount),
			zap.Int("goal_threshold", goalNotReached.GoalThreshold),
		)
		writeJSON(w, http.StatusBadRequest, goalNotReachedResponse{
			Error:         "Cliente ainda não atingiu a meta",
			VisitsCount:   goalNotReached.VisitsCount,
			GoalThreshold: goalNotReached.GoalThreshold,
		})
	default:
		logger.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
