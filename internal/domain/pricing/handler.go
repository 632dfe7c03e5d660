package pricing

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/snaplink/snaplink-api/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Quote prices a prospective session without creating anything.
// GET /pricing/quote?photographer_id=...&location_id=...&start=...&end=...
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	photographerID, err := uuid.Parse(q.Get("photographer_id"))
	if err != nil {
		response.BadRequest(w, "invalid photographer_id")
		return
	}

	var locationID uuid.NullUUID
	if raw := q.Get("location_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "invalid location_id")
			return
		}
		locationID = uuid.NullUUID{UUID: id, Valid: true}
	}

	start, err := time.Parse(time.RFC3339, q.Get("start"))
	if err != nil {
		response.BadRequest(w, "invalid start, expected RFC3339")
		return
	}
	end, err := time.Parse(time.RFC3339, q.Get("end"))
	if err != nil {
		response.BadRequest(w, "invalid end, expected RFC3339")
		return
	}

	quote, err := h.svc.QuoteSession(r.Context(), photographerID, locationID, start, end)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInterval):
			response.BadRequest(w, "end must be after start")
		case errors.Is(err, ErrRateNotFound):
			response.NotFound(w, "photographer or location not found")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, quote)
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/quote", h.Quote)
	return r
}
