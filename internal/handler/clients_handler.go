package handler

import (
	"encoding/json"
	"net/http"

	"github.com/casadocigano/fidelidade-api/internal/domain"
	"github.com/casadocigano/fidelidade-api/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Clientes
// ============================================================

func createClientHandler(clientSvc *service.ClientService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/clientes")
		defer span.End()

		var req domain.CreateClientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		client, err := clientSvc.CreateClient(ctx, IdentityFromContext(ctx), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]uint{"id": client.ID})
	}
}

func listClientsHandler(clientSvc *service.ClientService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /api/clientes")
		defer span.End()

		page, perPage := parsePagination(r)
		cpf := r.URL.Query().Get("cpf")

		result, err := clientSvc.ListClients(ctx, IdentityFromContext(ctx), cpf, page, perPage)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}
