package handler

import (
	"net/http"

	"github.com/casadocigano/fidelidade-api/internal/port"

	"go.uber.org/zap"
)

// ============================================================
// Health & Seed
// ============================================================

func healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// seedHandler provisions the default catalog and accounts. Idempotent, so
// it answers GET as well as POST.
func seedHandler(seeder port.Seeder, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/_setup/seed")
		defer span.End()

		result, err := seeder.Seed(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}
