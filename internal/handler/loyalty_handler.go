package handler

import (
	"encoding/json"
	"net/http"

	"github.com/casadocigano/fidelidade-api/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Visitas e Resgates
// ============================================================

type visitRequest struct {
	CPF string `json:"cpf"`
}

type redeemRequest struct {
	CPF      string `json:"cpf"`
	GiftName string `json:"gift_name"`
}

func registerVisitHandler(loyaltySvc *service.LoyaltyService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/visitas")
		defer span.End()

		var req visitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		outcome, err := loyaltySvc.RegisterVisit(ctx, IdentityFromContext(ctx), req.CPF)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, outcome)
	}
}

func redeemHandler(loyaltySvc *service.LoyaltyService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/resgates")
		defer span.End()

		var req redeemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		outcome, err := loyaltySvc.Redeem(ctx, IdentityFromContext(ctx), req.CPF, req.GiftName)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, outcome)
	}
}
