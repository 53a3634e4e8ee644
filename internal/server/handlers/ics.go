package handlers

import (
	"fmt"
	"net/http"

	apperrors "github.com/clipcal/clipcal/internal/errors"
	"github.com/clipcal/clipcal/internal/extract"
	"github.com/clipcal/clipcal/internal/ics"
)

// ICSHandler renders a fully-populated event as an iCalendar file. It is
// a pure formatting endpoint: no admission pass, no extraction.
func ICSHandler(w http.ResponseWriter, r *http.Request) {
	var event extract.Event
	if err := decodeJSON(w, r, &event); err != nil {
		respondWithError(w, r, apperrors.NewInvalidInputError("Request body must be an event JSON object"))
		return
	}

	if event.Title == "" || event.Date == "" || event.StartTime == "" {
		respondWithError(w, r, apperrors.NewInvalidInputError("Event must have title, date, and startTime"))
		return
	}

	rendered, err := ics.Render(event)
	if err != nil {
		respondWithError(w, r, apperrors.NewInvalidInputError("Event could not be rendered: "+err.Error()))
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ics.Filename(event.Title)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(rendered))
}
