package handler

import (
	"net/http"

	"github.com/casadocigano/fidelidade-api/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Dashboard
// ============================================================

func kpisHandler(dashSvc *service.DashboardService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/dashboard/kpis")
		defer span.End()

		kpis, err := dashSvc.KPIs(ctx, IdentityFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, kpis)
	}
}

func birthdaysHandler(dashSvc *service.DashboardService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/dashboard/aniversariantes")
		defer span.End()

		birthdays, err := dashSvc.Birthdays(ctx, IdentityFromContext(ctx))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, birthdays)
	}
}
