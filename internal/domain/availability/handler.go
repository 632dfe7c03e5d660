package availability

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/snaplink/snaplink-api/internal/middleware"
	"github.com/snaplink/snaplink-api/internal/pkg/response"
	"github.com/snaplink/snaplink-api/internal/pkg/timeutil"
	"github.com/snaplink/snaplink-api/internal/pkg/validator"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type slotRequest struct {
	DayOfWeek int    `json:"day_of_week" validate:"day_of_week"`
	Start     string `json:"start" validate:"required"`
	End       string `json:"end" validate:"required"`
	Status    string `json:"status" validate:"omitempty,oneof=active disabled"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	photographerID := middleware.GetUserID(r.Context())

	req, startMin, endMin, ok := h.decodeSlot(w, r)
	if !ok {
		return
	}

	slot, err := h.svc.AddSlot(r.Context(), photographerID, req.DayOfWeek, startMin, endMin)
	if err != nil {
		h.writeSlotError(w, err)
		return
	}
	response.Created(w, slot)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	photographerID := middleware.GetUserID(r.Context())

	slotID, err := uuid.Parse(chi.URLParam(r, "slotID"))
	if err != nil {
		response.BadRequest(w, "invalid slot id")
		return
	}

	req, startMin, endMin, ok := h.decodeSlot(w, r)
	if !ok {
		return
	}

	slot, err := h.svc.UpdateSlot(r.Context(), photographerID, slotID, req.DayOfWeek, startMin, endMin, SlotStatus(req.Status))
	if err != nil {
		h.writeSlotError(w, err)
		return
	}
	response.OK(w, slot)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	photographerID := middleware.GetUserID(r.Context())

	slotID, err := uuid.Parse(chi.URLParam(r, "slotID"))
	if err != nil {
		response.BadRequest(w, "invalid slot id")
		return
	}

	if err := h.svc.DeleteSlot(r.Context(), photographerID, slotID); err != nil {
		h.writeSlotError(w, err)
		return
	}
	response.OK(w, map[string]interface{}{"deleted": true})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	photographerID := middleware.GetUserID(r.Context())

	slots, err := h.svc.ListSlots(r.Context(), photographerID)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]interface{}{"slots": slots})
}

// Schedule shows one day of a photographer's calendar to anyone.
func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	photographerID, err := uuid.Parse(chi.URLParam(r, "photographerID"))
	if err != nil {
		response.BadRequest(w, "invalid photographer id")
		return
	}

	date, err := time.Parse("2006-01-02", r.URL.Query().Get("date"))
	if err != nil {
		response.BadRequest(w, "invalid date, expected YYYY-MM-DD")
		return
	}

	schedule, err := h.svc.Schedule(r.Context(), photographerID, date)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, schedule)
}

// Check answers whether a photographer can take a session over
// [start, end). Advisory only; booking creation re-checks under lock.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	photographerID, err := uuid.Parse(chi.URLParam(r, "photographerID"))
	if err != nil {
		response.BadRequest(w, "invalid photographer id")
		return
	}

	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		response.BadRequest(w, "invalid start, expected RFC3339")
		return
	}
	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if err != nil {
		response.BadRequest(w, "invalid end, expected RFC3339")
		return
	}

	switch err := h.svc.CheckInterval(r.Context(), photographerID, start, end); {
	case err == nil:
		response.OK(w, map[string]interface{}{"available": true})
	case errors.Is(err, ErrInvalidWindow):
		response.BadRequest(w, "end must be after start")
	case errors.Is(err, ErrOutsideWindows):
		response.OK(w, map[string]interface{}{"available": false})
	default:
		response.InternalError(w)
	}
}

func (h *Handler) decodeSlot(w http.ResponseWriter, r *http.Request) (*slotRequest, int, int, bool) {
	var req slotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return nil, 0, 0, false
	}
	if errs := validator.Validate(req); errs != nil {
		response.ValidationError(w, errs)
		return nil, 0, 0, false
	}

	startMin, err := timeutil.ParseClock(req.Start)
	if err != nil {
		response.BadRequest(w, "invalid start, expected HH:MM")
		return nil, 0, 0, false
	}
	endMin, err := timeutil.ParseClock(req.End)
	if err != nil {
		response.BadRequest(w, "invalid end, expected HH:MM")
		return nil, 0, 0, false
	}
	return &req, startMin, endMin, true
}

func (h *Handler) writeSlotError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidWindow):
		response.BadRequest(w, "slot end must be after slot start")
	case errors.Is(err, ErrSlotOverlap):
		response.Conflict(w, "slot overlaps an existing slot")
	case errors.Is(err, ErrSlotNotFound):
		response.NotFound(w, "slot not found")
	case errors.Is(err, ErrNotSlotOwner):
		response.Forbidden(w, "slot belongs to another photographer")
	default:
		response.InternalError(w)
	}
}

func (h *Handler) Routes(authMiddleware, photographerOnly func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Use(photographerOnly)
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{slotID}", h.Update)
	r.Delete("/{slotID}", h.Delete)
	return r
}
