package booking

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/snaplink/snaplink-api/internal/domain/availability"
	"github.com/snaplink/snaplink-api/internal/domain/pricing"
	"github.com/snaplink/snaplink-api/internal/middleware"
	"github.com/snaplink/snaplink-api/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type createRequest struct {
	PhotographerID  string    `json:"photographer_id"`
	LocationID      string    `json:"location_id"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	SpecialRequests string    `json:"special_requests"`
}

type updateRequest struct {
	StartTime       *time.Time `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	SpecialRequests *string    `json:"special_requests"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	customerID := middleware.GetUserID(r.Context())

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}

	photographerID, err := uuid.Parse(req.PhotographerID)
	if err != nil {
		response.BadRequest(w, "invalid photographer_id")
		return
	}

	var locationID uuid.NullUUID
	if req.LocationID != "" {
		id, err := uuid.Parse(req.LocationID)
		if err != nil {
			response.BadRequest(w, "invalid location_id")
			return
		}
		locationID = uuid.NullUUID{UUID: id, Valid: true}
	}

	b, err := h.svc.Create(r.Context(), customerID, CreateParams{
		PhotographerID:  photographerID,
		LocationID:      locationID,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Created(w, b)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "bookingID"))
	if err != nil {
		response.BadRequest(w, "invalid booking id")
		return
	}

	actorID := middleware.GetUserID(r.Context())
	role := middleware.GetRole(r.Context())
	isStaff := role == middleware.RoleModerator || role == middleware.RoleAdmin

	b, err := h.svc.Get(r.Context(), actorID, isStaff, id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, b)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	asPhotographer := r.URL.Query().Get("as") == "photographer"

	bookings, err := h.svc.ListForUser(r.Context(), userID, asPhotographer)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]interface{}{"bookings": bookings})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "bookingID"))
	if err != nil {
		response.BadRequest(w, "invalid booking id")
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}

	b, err := h.svc.Update(r.Context(), middleware.GetUserID(r.Context()), id, UpdateParams{
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, b)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Cancel)
}

func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Complete)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, actorID uuid.UUID, isStaff bool, id uuid.UUID) (*Booking, error)) {
	id, err := uuid.Parse(chi.URLParam(r, "bookingID"))
	if err != nil {
		response.BadRequest(w, "invalid booking id")
		return
	}

	actorID := middleware.GetUserID(r.Context())
	role := middleware.GetRole(r.Context())
	isStaff := role == middleware.RoleModerator || role == middleware.RoleAdmin

	b, err := fn(r.Context(), actorID, isStaff, id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, b)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInterval):
		response.BadRequest(w, "end time must be after start time and in the future")
	case errors.Is(err, ErrTimeConflict):
		response.Conflict(w, "interval overlaps an existing booking")
	case errors.Is(err, availability.ErrOutsideWindows):
		response.Conflict(w, "interval is outside the photographer's availability")
	case errors.Is(err, availability.ErrInvalidWindow):
		response.BadRequest(w, "end time must be after start time")
	case errors.Is(err, pricing.ErrRateNotFound):
		response.NotFound(w, "photographer or location not found")
	case errors.Is(err, pricing.ErrInvalidInterval):
		response.BadRequest(w, "end time must be after start time")
	case errors.Is(err, ErrBookingNotFound):
		response.NotFound(w, "booking not found")
	case errors.Is(err, ErrNotParticipant):
		response.Forbidden(w, "booking belongs to another user")
	case errors.Is(err, ErrInvalidTransition):
		response.Conflict(w, "booking status does not allow this action")
	case errors.Is(err, ErrNotFinished):
		response.Conflict(w, "booking has not reached its end time")
	case errors.Is(err, ErrInvalidReference):
		response.BadRequest(w, "referenced photographer or location does not exist")
	default:
		response.InternalError(w)
	}
}

func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.With(middleware.RequireRole(middleware.RoleCustomer)).Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{bookingID}", h.Get)
	r.Put("/{bookingID}", h.Update)
	r.Post("/{bookingID}/cancel", h.Cancel)
	r.Post("/{bookingID}/complete", h.Complete)
	return r
}
