package handlers

import (
	"net/http"
	"time"

	"github.com/clipcal/clipcal/internal/admission"
	apperrors "github.com/clipcal/clipcal/internal/errors"
	servermw "github.com/clipcal/clipcal/internal/server/middleware"
)

// maxTimezoneLength caps the identifier before it reaches the tz database
// lookup.
const maxTimezoneLength = 50

// TimezoneRequest is the body of POST /api/v1/timezone/validate.
type TimezoneRequest struct {
	Timezone string `json:"timezone"`
}

// TimezoneResponse echoes the validated identifier.
type TimezoneResponse struct {
	Timezone string `json:"timezone"`
}

// TimezoneHandler validates an IANA timezone identifier against the host
// tz database. Requests pass the same admission checks as extraction,
// minus the content screen and the AI limits, and every outcome is
// recorded.
type TimezoneHandler struct {
	Controller *admission.Controller
}

// NewTimezoneHandler wires the admission controller into the timezone
// validation endpoint.
func NewTimezoneHandler(controller *admission.Controller) *TimezoneHandler {
	return &TimezoneHandler{Controller: controller}
}

func (h *TimezoneHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	clientID := servermw.ClientID(r)

	result := h.Controller.Admit(admission.Request{
		ClientID:  clientID,
		Endpoint:  r.URL.Path,
		UserAgent: r.Header.Get("User-Agent"),
		Referer:   r.Header.Get("Referer"),
		Host:      r.Host,
	})
	if !result.Allowed {
		if result.Suspicious {
			respondWithError(w, r, apperrors.NewForbiddenError(result.Reason))
			return
		}
		if result.RetryAfter > 0 {
			respondWithError(w, r, apperrors.NewRateLimitedError(result.Reason, result.RetryAfter))
			return
		}
		respondWithError(w, r, apperrors.NewInvalidInputError(result.Reason))
		return
	}

	var req TimezoneRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.Controller.RecordOutcome(clientID, r.URL.Path, false, false)
		respondWithError(w, r, apperrors.NewInvalidInputError("Request body must be JSON with a timezone field"))
		return
	}

	if req.Timezone == "" || len(req.Timezone) > maxTimezoneLength {
		h.Controller.RecordOutcome(clientID, r.URL.Path, false, false)
		respondWithError(w, r, apperrors.NewInvalidInputError("Invalid timezone"))
		return
	}

	if _, err := time.LoadLocation(req.Timezone); err != nil {
		h.Controller.RecordOutcome(clientID, r.URL.Path, false, false)
		respondWithError(w, r, apperrors.NewInvalidInputError("Invalid timezone"))
		return
	}

	h.Controller.RecordOutcome(clientID, r.URL.Path, true, false)
	respondJSON(w, http.StatusOK, TimezoneResponse{Timezone: req.Timezone})
}
