package middleware

import (
	"context"
	"net/http"
	"strings"

	"luchwallet/internal/domain/auth"
	"luchwallet/internal/domain/wallet"
	"luchwallet/internal/transport/http/api"
)

type ctxKey string

const ctxKeyIdentity ctxKey = "identity"

// Identity is the authenticated caller: either an admin or an employee.
type Identity struct {
	Role       string
	Login      string
	Name       string
	EmployeeID int64
}

type AdminAuthenticator interface {
	Authenticate(ctx context.Context, login, password string) (*auth.Admin, error)
}

type EmployeeAuthenticator interface {
	GetEmployeeByLogin(ctx context.Context, login string) (*wallet.Employee, error)
}

func GetIdentity(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKeyIdentity).(Identity)
	return id, ok
}

func withIdentity(r *http.Request, id Identity) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), ctxKeyIdentity, id))
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
}

// AdminAuth guards the admin API. The primary scheme mirrors the original
// front-end: X-Admin-Login / X-Admin-Password on every request. A bearer
// token issued at login is accepted as an alternative.
func AdminAuth(admins AdminAuthenticator, jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := bearerToken(r); token != "" && jwtSecret != "" {
				claims, err := auth.ParseToken(jwtSecret, token)
				if err == nil && claims.Role == auth.RoleAdmin {
					next.ServeHTTP(w, withIdentity(r, Identity{Role: auth.RoleAdmin, Login: claims.Login}))
					return
				}
			}

			login := r.Header.Get("X-Admin-Login")
			password := r.Header.Get("X-Admin-Password")
			if login == "" || password == "" {
				unauthorized(w, r)
				return
			}

			adm, err := admins.Authenticate(r.Context(), login, password)
			if err != nil {
				unauthorized(w, r)
				return
			}
			next.ServeHTTP(w, withIdentity(r, Identity{Role: auth.RoleAdmin, Login: adm.Login, Name: adm.Name}))
		})
	}
}

// EmployeeAuth guards the employee-facing wallet endpoints the same way,
// with X-Employee-Login / X-Employee-Password or a bearer token.
func EmployeeAuth(employees EmployeeAuthenticator, jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := bearerToken(r); token != "" && jwtSecret != "" {
				claims, err := auth.ParseToken(jwtSecret, token)
				if err == nil && claims.Role == auth.RoleEmployee {
					e, err := employees.GetEmployeeByLogin(r.Context(), claims.Login)
					if err == nil {
						next.ServeHTTP(w, withIdentity(r, Identity{
							Role: auth.RoleEmployee, Login: e.Login, Name: e.Name, EmployeeID: e.ID,
						}))
						return
					}
				}
			}

			login := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Employee-Login")))
			password := r.Header.Get("X-Employee-Password")
			if login == "" || password == "" {
				unauthorized(w, r)
				return
			}

			e, err := employees.GetEmployeeByLogin(r.Context(), login)
			if err != nil || auth.CheckPassword(e.PasswordHash, password) != nil {
				unauthorized(w, r)
				return
			}
			next.ServeHTTP(w, withIdentity(r, Identity{
				Role: auth.RoleEmployee, Login: e.Login, Name: e.Name, EmployeeID: e.ID,
			}))
		})
	}
}
