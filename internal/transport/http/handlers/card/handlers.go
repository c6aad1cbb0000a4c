package cardhandler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"luchwallet/internal/domain/wallet"
	"luchwallet/internal/transport/http/api"
	authhandler "luchwallet/internal/transport/http/handlers/auth"
	"luchwallet/internal/transport/http/middleware"
)

// Handler serves the employee's own wallet card. Routes under it are
// mounted behind EmployeeAuth, so the identity in the request context is
// the only employee the caller can see.
type Handler struct {
	Wallet *wallet.Service
	Now    func() time.Time
}

func NewHandler(walletSvc *wallet.Service) *Handler {
	return &Handler{Wallet: walletSvc, Now: time.Now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/employee", h.handleCard)
	r.Get("/employee/payments", h.handlePayments)
	r.Get("/employee/months", h.handleMonths)
}

func (h *Handler) identity(w http.ResponseWriter, r *http.Request) (middleware.Identity, bool) {
	id, ok := middleware.GetIdentity(r.Context())
	if !ok || id.EmployeeID == 0 {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return middleware.Identity{}, false
	}
	return id, true
}

// handleCard accrues up to the current hour and returns the same card
// payload the login endpoint builds, so refreshing the mini app stays cheap.
func (h *Handler) handleCard(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	e, err := h.Wallet.AccrueBalance(r.Context(), id.EmployeeID, h.Now())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "card_failed", "failed to load wallet card", reqID)
		return
	}

	months, err := h.Wallet.ListMonthStats(r.Context(), id.EmployeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "card_failed", "failed to load wallet card", reqID)
		return
	}
	api.Success(w, authhandler.EmployeeData(e, months), reqID)
}

func (h *Handler) handlePayments(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	payments, err := h.Wallet.ListPayments(r.Context(), id.EmployeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payments_failed", "failed to list payments", reqID)
		return
	}
	api.Success(w, payments, reqID)
}

func (h *Handler) handleMonths(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id, ok := h.identity(w, r)
	if !ok {
		return
	}

	months, err := h.Wallet.ListMonthStats(r.Context(), id.EmployeeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "months_failed", "failed to load month stats", reqID)
		return
	}
	api.Success(w, months, reqID)
}
