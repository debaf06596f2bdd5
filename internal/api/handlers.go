package api

import (
	"encoding/json"
	"net/http"

	"github.com/kerkhofftech/autotask-sync/internal/logging"

	aterrors "github.com/kerkhofftech/autotask-sync/internal/errors"
)

// ticketCallback is the webhook payload sent when a ticket changes.
type ticketCallback struct {
	ID int64 `json:"id"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleTicketCallback resyncs the changed ticket synchronously and
// answers 204 so the remote system stops redelivering.
func (s *Server) handleTicketCallback(w http.ResponseWriter, r *http.Request) {
	var payload ticketCallback
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid callback payload")
		return
	}
	if payload.ID <= 0 {
		writeError(w, http.StatusBadRequest, "callback payload carries no ticket id")
		return
	}

	ctx := logging.WithLogger(r.Context(), s.logger)
	if err := s.resyncer.ResyncTicket(ctx, payload.ID); err != nil {
		s.logger.Error().Err(err).Int64("ticket", payload.ID).Msg("ticket resync failed")
		if aterrors.IsClientError(err) {
			writeError(w, http.StatusBadGateway, "remote system rejected the ticket fetch")
			return
		}
		writeError(w, http.StatusInternalServerError, "ticket resync failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
