package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/clipcal/clipcal/internal/admission"
	apperrors "github.com/clipcal/clipcal/internal/errors"
	"github.com/clipcal/clipcal/internal/observability"
	servermw "github.com/clipcal/clipcal/internal/server/middleware"
)

// AdminHandler serves the operator endpoints. Both require the shared
// secret as a bearer credential; the routes are not registered at all
// when no token is configured.
type AdminHandler struct {
	Controller *admission.Controller
	Token      string
}

// NewAdminHandler wires the admission controller into the operator
// endpoints.
func NewAdminHandler(controller *admission.Controller, token string) *AdminHandler {
	return &AdminHandler{Controller: controller, Token: token}
}

// StatsResponse is the body of GET /api/v1/admin/stats.
type StatsResponse struct {
	Client admission.ClientCounters `json:"client"`
	Limits admission.Limits         `json:"limits"`
}

// ResetRequest is the body of POST /api/v1/admin/reset.
type ResetRequest struct {
	ClientID string `json:"clientId"`
}

// Stats returns the calling client's counters together with the
// configured limits.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		respondWithError(w, r, apperrors.NewUnauthorizedError("Unauthorized"))
		return
	}

	clientID := servermw.ClientID(r)
	respondJSON(w, http.StatusOK, StatsResponse{
		Client: h.Controller.Store().Counters(clientID),
		Limits: h.Controller.Limits(),
	})
}

// Reset clears one client's counters. Emergency use, for operators who
// need to unblock a legitimate client mid-window.
func (h *AdminHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		respondWithError(w, r, apperrors.NewUnauthorizedError("Unauthorized"))
		return
	}

	var req ResetRequest
	if err := decodeJSON(w, r, &req); err != nil || req.ClientID == "" {
		respondWithError(w, r, apperrors.NewInvalidInputError("clientId is required"))
		return
	}

	h.Controller.Store().Reset(req.ClientID)

	if logger := observability.ServerLogger; logger != nil {
		logger.Info("Client counters reset",
			zap.String("client_id", req.ClientID),
			zap.String("requested_by", servermw.ClientID(r)))
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "reset", "clientId": req.ClientID})
}

func (h *AdminHandler) authorized(r *http.Request) bool {
	if h.Token == "" {
		return false
	}
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.Token)) == 1
}
