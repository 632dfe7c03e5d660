package subscription

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/snaplink/snaplink-api/internal/middleware"
	"github.com/snaplink/snaplink-api/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Packages(w http.ResponseWriter, r *http.Request) {
	ownerType := OwnerType(r.URL.Query().Get("owner_type"))
	if ownerType == "" {
		ownerType = OwnerTypePhotographer
	}

	packages, err := h.svc.ListPackages(r.Context(), ownerType)
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]interface{}{"packages": packages})
}

type purchaseRequest struct {
	PackageID string `json:"package_id"`
}

func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	packageID, err := uuid.Parse(req.PackageID)
	if err != nil {
		response.BadRequest(w, "invalid package_id")
		return
	}

	result, err := h.svc.Purchase(r.Context(), middleware.GetUserID(r.Context()), middleware.GetRole(r.Context()), packageID)
	if err != nil {
		switch {
		case errors.Is(err, ErrPackageNotFound):
			response.NotFound(w, "package not found")
		case errors.Is(err, ErrWrongOwnerType):
			response.Forbidden(w, "package is not available for this account type")
		case errors.Is(err, ErrAlreadySubscribed):
			response.Conflict(w, "an active subscription already exists")
		default:
			response.InternalError(w)
		}
		return
	}
	response.Created(w, result)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	sub, err := h.svc.Current(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) {
			response.OK(w, map[string]interface{}{"subscription": nil})
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]interface{}{"subscription": sub})
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "subscriptionID"))
	if err != nil {
		response.BadRequest(w, "invalid subscription id")
		return
	}

	sub, err := h.svc.Cancel(r.Context(), middleware.GetUserID(r.Context()), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrSubscriptionNotFound):
			response.NotFound(w, "subscription not found")
		case errors.Is(err, ErrNotOwner):
			response.Forbidden(w, "subscription belongs to another user")
		case errors.Is(err, ErrNotCancellable):
			response.Conflict(w, "subscription status does not allow cancellation")
		default:
			response.InternalError(w)
		}
		return
	}
	response.OK(w, sub)
}

// Sweep lets staff trigger the expiry pass manually, on top of the
// recurring worker.
func (h *Handler) Sweep(w http.ResponseWriter, r *http.Request) {
	count, err := h.svc.Sweep(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]interface{}{"expired": count})
}

func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/packages", h.Packages)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/purchase", h.Purchase)
		r.Get("/me", h.Me)
		r.Post("/{subscriptionID}/cancel", h.Cancel)
	})
	return r
}

func (h *Handler) AdminRoutes(authMiddleware, moderatorOnly func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Use(moderatorOnly)
	r.Post("/sweep", h.Sweep)
	return r
}
