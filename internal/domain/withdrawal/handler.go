package withdrawal

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/snaplink/snaplink-api/internal/domain/wallet"
	"github.com/snaplink/snaplink-api/internal/middleware"
	"github.com/snaplink/snaplink-api/internal/pkg/response"
	"github.com/snaplink/snaplink-api/internal/pkg/validator"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type createRequest struct {
	Amount        int64  `json:"amount" validate:"required,gt=0"`
	BankName      string `json:"bank_name" validate:"required"`
	BankAccount   string `json:"bank_account" validate:"required,bank_account"`
	AccountHolder string `json:"account_holder" validate:"required"`
}

type moderationRequest struct {
	ProofRef string `json:"proof_ref"`
	Reason   string `json:"reason"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	photographerID := middleware.GetUserID(r.Context())

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	out, err := h.svc.Create(r.Context(), photographerID, CreateParams{
		Amount:        req.Amount,
		BankName:      req.BankName,
		BankAccount:   req.BankAccount,
		AccountHolder: req.AccountHolder,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.Created(w, out)
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	requests, err := h.svc.ListMine(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]interface{}{"requests": requests})
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "requestID"))
	if err != nil {
		response.BadRequest(w, "invalid request id")
		return
	}

	req, err := h.svc.Cancel(r.Context(), middleware.GetUserID(r.Context()), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, req)
}

func (h *Handler) Queue(w http.ResponseWriter, r *http.Request) {
	status := Status(r.URL.Query().Get("status"))
	if status == "" {
		status = StatusPending
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	requests, err := h.svc.ListQueue(r.Context(), status, limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]interface{}{"requests": requests})
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, func(moderatorID, id uuid.UUID, req moderationRequest) (*Request, error) {
		return h.svc.Approve(r.Context(), moderatorID, id, req.ProofRef)
	})
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, func(moderatorID, id uuid.UUID, req moderationRequest) (*Request, error) {
		return h.svc.Reject(r.Context(), moderatorID, id, req.Reason)
	})
}

func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, func(moderatorID, id uuid.UUID, req moderationRequest) (*Request, error) {
		return h.svc.Process(r.Context(), moderatorID, id)
	})
}

func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, func(moderatorID, id uuid.UUID, req moderationRequest) (*Request, error) {
		return h.svc.Complete(r.Context(), moderatorID, id)
	})
}

func (h *Handler) moderate(w http.ResponseWriter, r *http.Request, fn func(moderatorID, id uuid.UUID, req moderationRequest) (*Request, error)) {
	id, err := uuid.Parse(chi.URLParam(r, "requestID"))
	if err != nil {
		response.BadRequest(w, "invalid request id")
		return
	}

	var req moderationRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid JSON body")
			return
		}
	}

	out, err := fn(middleware.GetUserID(r.Context()), id, req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, out)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBelowMinimum):
		response.BadRequest(w, "amount is below the withdrawal minimum")
	case errors.Is(err, ErrAboveMaximum):
		response.BadRequest(w, "amount is above the withdrawal maximum")
	case errors.Is(err, ErrReasonRequired):
		response.BadRequest(w, "rejection requires a reason")
	case errors.Is(err, wallet.ErrInsufficientFunds):
		response.Conflict(w, "insufficient wallet balance")
	case errors.Is(err, ErrRequestNotFound):
		response.NotFound(w, "withdrawal request not found")
	case errors.Is(err, ErrNotRequester):
		response.Forbidden(w, "request belongs to another photographer")
	case errors.Is(err, ErrInvalidTransition):
		response.Conflict(w, "withdrawal status does not allow this action")
	default:
		response.InternalError(w)
	}
}

func (h *Handler) Routes(authMiddleware, photographerOnly func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Use(photographerOnly)
	r.Post("/", h.Create)
	r.Get("/", h.ListMine)
	r.Post("/{requestID}/cancel", h.Cancel)
	return r
}

func (h *Handler) AdminRoutes(authMiddleware, moderatorOnly func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Use(moderatorOnly)
	r.Get("/", h.Queue)
	r.Post("/{requestID}/approve", h.Approve)
	r.Post("/{requestID}/reject", h.Reject)
	r.Post("/{requestID}/process", h.Process)
	r.Post("/{requestID}/complete", h.Complete)
	return r
}
