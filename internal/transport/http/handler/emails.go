package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/admin-console-api/internal/application/dispatch"
	"github.com/admin-console-api/internal/domain"
)

// EmailHandler handles notification dispatch endpoints.
type EmailHandler struct {
	svc dispatch.Service
}

func NewEmailHandler(svc dispatch.Service) *EmailHandler {
	return &EmailHandler{svc: svc}
}

func (h *EmailHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req domain.SendEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	messageID, err := h.svc.Send(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrBadRequest) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusInternalServerError, MessageEnvelope{
			Error:   "Failed to send email",
			Details: err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, SendResultEnvelope{
		Message:   "Email sent successfully",
		MessageID: messageID,
	})
}

func (h *EmailHandler) SendBulk(w http.ResponseWriter, r *http.Request) {
	var req domain.BulkEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	results, err := h.svc.SendBulk(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BulkResultEnvelope{
		Message: "Bulk email operation completed",
		Results: results,
	})
}
