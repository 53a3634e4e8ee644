package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/clipcal/clipcal/internal/admission"
	apperrors "github.com/clipcal/clipcal/internal/errors"
	"github.com/clipcal/clipcal/internal/extract"
	"github.com/clipcal/clipcal/internal/observability"
	servermw "github.com/clipcal/clipcal/internal/server/middleware"
)

// maxRequestBody bounds the request body read. The content screen enforces
// the 50k character cap; this only protects the JSON decoder from
// pathological payloads.
const maxRequestBody = 1 << 20

// ExtractRequest is the body of POST /api/v1/events/extract.
type ExtractRequest struct {
	Content string `json:"content"`
}

// ExtractResponse wraps the extracted event.
type ExtractResponse struct {
	Event extract.Event `json:"event"`
}

// ExtractHandler admits, sanitizes, and extracts an event from pasted text.
type ExtractHandler struct {
	Controller   *admission.Controller
	Orchestrator *extract.Orchestrator
}

// NewExtractHandler wires the admission controller and extraction
// orchestrator into the HTTP endpoint.
func NewExtractHandler(controller *admission.Controller, orchestrator *extract.Orchestrator) *ExtractHandler {
	return &ExtractHandler{Controller: controller, Orchestrator: orchestrator}
}

func (h *ExtractHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	clientID := servermw.ClientID(r)

	var req ExtractRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, r, apperrors.NewInvalidInputError("Request body must be JSON with a content field"))
		return
	}
	if req.Content == "" {
		respondWithError(w, r, apperrors.NewInvalidInputError("Content is required"))
		return
	}

	result := h.Controller.Admit(admission.Request{
		ClientID:   clientID,
		Endpoint:   r.URL.Path,
		AIRequest:  true,
		Content:    req.Content,
		HasContent: true,
		UserAgent:  r.Header.Get("User-Agent"),
		Referer:    r.Header.Get("Referer"),
		Host:       r.Host,
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

	event, err := h.Orchestrator.Process(r.Context(), result.Sanitized)
	if err != nil {
		h.Controller.RecordOutcome(clientID, r.URL.Path, false, true)
		if errors.Is(err, extract.ErrNoUsableContent) {
			respondWithError(w, r, apperrors.NewExtractionFailedError(err.Error()))
			return
		}
		respondWithError(w, r, apperrors.WrapInternal(r.Context(), err, "Event extraction failed"))
		return
	}

	h.Controller.RecordOutcome(clientID, r.URL.Path, true, true)

	if logger := observability.ServerLogger; logger != nil {
		logger.Info("Event extracted",
			zap.String("client_id", clientID),
			zap.String("title", event.Title),
			zap.Duration("duration", time.Since(start)))
	}

	respondJSON(w, http.StatusOK, ExtractResponse{Event: event})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer func() {
		_, _ = io.Copy(io.Discard, body)
	}()
	dec := json.NewDecoder(body)
	return dec.Decode(dst)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
