package payment

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/snaplink/snaplink-api/internal/domain/booking"
	"github.com/snaplink/snaplink-api/internal/middleware"
	"github.com/snaplink/snaplink-api/internal/pkg/payos"
	"github.com/snaplink/snaplink-api/internal/pkg/response"
)

const maxWebhookBody = 1 << 20

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type createRequest struct {
	BookingID string `json:"booking_id"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	customerID := middleware.GetUserID(r.Context())

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		response.BadRequest(w, "invalid booking_id")
		return
	}

	p, err := h.svc.CreateForBooking(r.Context(), customerID, bookingID)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrBookingNotFound):
			response.NotFound(w, "booking not found")
		case errors.Is(err, booking.ErrNotParticipant):
			response.Forbidden(w, "booking belongs to another user")
		case errors.Is(err, ErrNotPayable):
			response.Conflict(w, "booking is not awaiting payment")
		case errors.Is(err, ErrAlreadyPaid):
			response.Conflict(w, "booking already paid")
		case errors.Is(err, ErrGateway):
			response.InternalError(w)
		default:
			response.InternalError(w)
		}
		return
	}
	response.Created(w, p)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "paymentID"))
	if err != nil {
		response.BadRequest(w, "invalid payment id")
		return
	}

	role := middleware.GetRole(r.Context())
	isStaff := role == middleware.RoleModerator || role == middleware.RoleAdmin

	p, err := h.svc.Get(r.Context(), middleware.GetUserID(r.Context()), isStaff, id)
	if err != nil {
		response.NotFound(w, "payment not found")
		return
	}
	response.OK(w, p)
}

// Webhook receives gateway callbacks. The gateway retries on non-2xx,
// so everything already handled answers 200; only a bad signature or
// a processing failure asks for redelivery.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		response.BadRequest(w, "unreadable body")
		return
	}

	if err := h.svc.ProcessWebhook(r.Context(), payload); err != nil {
		switch {
		case errors.Is(err, payos.ErrInvalidSignature):
			log.Warn().Msg("webhook rejected: bad signature")
			response.Unauthorized(w, "invalid signature")
		case errors.Is(err, ErrPaymentNotFound):
			// Unknown order codes are acknowledged so the gateway
			// stops retrying events that are not ours.
			response.OK(w, map[string]interface{}{"received": true})
		default:
			log.Error().Err(err).Msg("webhook processing failed")
			response.InternalError(w)
		}
		return
	}
	response.OK(w, map[string]interface{}{"received": true})
}

func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Post("/", h.Create)
	r.Get("/{paymentID}", h.Get)
	return r
}

func (h *Handler) WebhookRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/payos", h.Webhook)
	return r
}
