package authhandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"luchwallet/internal/domain/auth"
	"luchwallet/internal/domain/wallet"
	"luchwallet/internal/transport/http/api"
	"luchwallet/internal/transport/http/middleware"
)

type Handler struct {
	Wallet    *wallet.Service
	Admins    *auth.Store
	JWTSecret string
	TokenTTL  time.Duration
	Now       func() time.Time
}

func NewHandler(walletSvc *wallet.Service, admins *auth.Store, jwtSecret string, tokenTTL time.Duration) *Handler {
	return &Handler{
		Wallet:    walletSvc,
		Admins:    admins,
		JWTSecret: jwtSecret,
		TokenTTL:  tokenTTL,
		Now:       time.Now,
	}
}

type loginPayload struct {
	Role     string `json:"role"`
	Login    string `json:"login"`
	Password string `json:"password"`
}

type loginResponse struct {
	Role  string         `json:"role"`
	Login string         `json:"login"`
	Data  map[string]any `json:"data"`
	Token string         `json:"token,omitempty"`
}

// HandleLogin authenticates either role. Employee login runs the lazy
// accrual first, so the returned balance is current as of this request.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload loginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	login := strings.ToLower(strings.TrimSpace(payload.Login))

	switch strings.ToLower(payload.Role) {
	case auth.RoleEmployee:
		e, err := h.Wallet.GetEmployeeByLogin(r.Context(), login)
		if err != nil || auth.CheckPassword(e.PasswordHash, payload.Password) != nil {
			api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid login or password", reqID)
			return
		}

		e, err = h.Wallet.AccrueBalance(r.Context(), e.ID, h.Now())
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "accrual_failed", "failed to refresh balance", reqID)
			return
		}

		months, err := h.Wallet.ListMonthStats(r.Context(), e.ID)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "months_failed", "failed to load month stats", reqID)
			return
		}

		token, err := h.token(login, auth.RoleEmployee)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "token_failed", "failed to issue token", reqID)
			return
		}

		api.Success(w, loginResponse{
			Role:  auth.RoleEmployee,
			Login: login,
			Data:  EmployeeData(e, months),
			Token: token,
		}, reqID)

	case auth.RoleAdmin:
		adm, err := h.Admins.Authenticate(r.Context(), login, payload.Password)
		if err != nil {
			if !errors.Is(err, auth.ErrAdminNotFound) {
				api.Fail(w, http.StatusInternalServerError, "login_failed", "failed to check credentials", reqID)
				return
			}
			api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid login or password", reqID)
			return
		}

		token, err := h.token(login, auth.RoleAdmin)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "token_failed", "failed to issue token", reqID)
			return
		}

		api.Success(w, loginResponse{
			Role:  auth.RoleAdmin,
			Login: login,
			Data:  map[string]any{"name": adm.Name},
			Token: token,
		}, reqID)

	default:
		api.Fail(w, http.StatusBadRequest, "unknown_role", "unknown user role", reqID)
	}
}

func (h *Handler) token(login, role string) (string, error) {
	if h.JWTSecret == "" {
		return "", nil
	}
	return auth.GenerateToken(h.JWTSecret, auth.Claims{Login: login, Role: role}, h.TokenTTL)
}

// EmployeeData shapes the card-UI payload the way the original API did.
func EmployeeData(e *wallet.Employee, months []wallet.MonthStat) map[string]any {
	monthList := make([]map[string]any, 0, len(months))
	for _, m := range months {
		monthList = append(monthList, map[string]any{
			"key":       fmt.Sprintf("%04d-%02d", m.Year, m.Month),
			"year":      m.Year,
			"month":     m.Month,
			"income":    m.Income,
			"salary":    m.SalaryTotal,
			"hours":     m.Hours,
			"penalties": m.Penalties,
			"absences":  m.Absences,
		})
	}

	return map[string]any{
		"initials":    e.Initials,
		"name":        e.Name,
		"position":    e.Position,
		"rate":        e.Rate,
		"experience":  e.Experience,
		"status":      e.Status,
		"salary":      e.Salary,
		"balance":     e.Balance,
		"hours":       e.Hours,
		"hoursDetail": e.HoursDetail,
		"penalties":   e.Penalties,
		"absences":    e.Absences,
		"errorText":   e.ErrorText,
		"photo_url":   e.PhotoURL,
		"months":      monthList,
	}
}
