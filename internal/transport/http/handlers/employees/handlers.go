package employeehandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"luchwallet/internal/domain/audit"
	"luchwallet/internal/domain/auth"
	"luchwallet/internal/domain/wallet"
	"luchwallet/internal/transport/http/api"
	authhandler "luchwallet/internal/transport/http/handlers/auth"
	"luchwallet/internal/transport/http/middleware"
)

type Handler struct {
	Wallet           *wallet.Service
	Audit            *audit.Service
	UploadDir        string
	PublicUploadPath string
	Now              func() time.Time
}

func NewHandler(walletSvc *wallet.Service, auditSvc *audit.Service, uploadDir, publicUploadPath string) *Handler {
	return &Handler{
		Wallet:           walletSvc,
		Audit:            auditSvc,
		UploadDir:        uploadDir,
		PublicUploadPath: publicUploadPath,
		Now:              time.Now,
	}
}

// record writes an audit event without failing the request. A lost audit
// row is logged and the mutation stands.
func (h *Handler) record(r *http.Request, action, entityType string, entityID int64, before, after any) {
	if h.Audit == nil {
		return
	}
	actor := ""
	if id, ok := middleware.GetIdentity(r.Context()); ok {
		actor = id.Login
	}
	reqID := middleware.GetRequestID(r.Context())
	if err := h.Audit.Record(r.Context(), actor, action, entityType, entityID, reqID, before, after); err != nil {
		slog.Warn("audit record failed", "action", action, "error", err)
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/export", h.handleExportExcel)
		r.Route("/{employeeID}", func(r chi.Router) {
			r.Get("/", h.handleGet)
			r.Put("/", h.handleUpdate)
			r.Delete("/", h.handleDelete)
			r.Post("/photo", h.handleUploadPhoto)
			r.Get("/statement", h.handleStatementPDF)
			r.Get("/months", h.handleListMonths)
			r.Get("/payments", h.handleListPayments)
			r.Post("/payments", h.handleCreatePayment)
			r.Delete("/payments/{paymentID}", h.handleDeletePayment)
		})
	})
}

func employeeID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "employeeID"), 10, 64)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	employees, err := h.Wallet.ListEmployees(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employees_failed", "failed to list employees", reqID)
		return
	}
	api.Success(w, employees, reqID)
}

type createPayload struct {
	Login    string `json:"login"`
	Password string `json:"password"`
	wallet.Employee
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var payload createPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if strings.TrimSpace(payload.Login) == "" || payload.Password == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "login and password are required", reqID)
		return
	}

	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_create_failed", "failed to create employee", reqID)
		return
	}

	e := payload.Employee
	e.Login = payload.Login
	e.PasswordHash = hash

	created, err := h.Wallet.CreateEmployee(r.Context(), &e, h.Now())
	if err != nil {
		if errors.Is(err, wallet.ErrLoginTaken) {
			api.Fail(w, http.StatusBadRequest, "login_taken", "login already taken", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "employee_create_failed", "failed to create employee", reqID)
		return
	}
	h.record(r, "employee.create", audit.EntityEmployee, created.ID, nil, created)
	api.Created(w, created, reqID)
}

// handleGet runs the lazy accrual before returning the record, so the admin
// always sees a balance current as of this request.
func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id, err := employeeID(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid employee id", reqID)
		return
	}

	e, err := h.Wallet.AccrueBalance(r.Context(), id, h.Now())
	if err != nil {
		if errors.Is(err, wallet.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "employee_failed", "failed to load employee", reqID)
		return
	}

	months, err := h.Wallet.ListMonthStats(r.Context(), id)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "months_failed", "failed to load month stats", reqID)
		return
	}

	detail := authhandler.EmployeeData(e, months)
	detail["id"] = e.ID
	detail["login"] = e.Login
	detail["isActive"] = e.IsActive
	api.Success(w, detail, reqID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id, err := employeeID(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid employee id", reqID)
		return
	}

	var patch wallet.EmployeePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	var passwordHash string
	if patch.Password != nil && *patch.Password != "" {
		passwordHash, err = auth.HashPassword(*patch.Password)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "employee_update_failed", "failed to update employee", reqID)
			return
		}
	}

	e, err := h.Wallet.UpdateEmployee(r.Context(), id, patch, passwordHash)
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
		case errors.Is(err, wallet.ErrLoginTaken):
			api.Fail(w, http.StatusBadRequest, "login_taken", "login already taken", reqID)
		default:
			api.Fail(w, http.StatusInternalServerError, "employee_update_failed", "failed to update employee", reqID)
		}
		return
	}
	h.record(r, "employee.update", audit.EntityEmployee, e.ID, nil, e)
	api.Success(w, e, reqID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id, err := employeeID(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid employee id", reqID)
		return
	}

	if err := h.Wallet.DeleteEmployee(r.Context(), id); err != nil {
		if errors.Is(err, wallet.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "employee_delete_failed", "failed to delete employee", reqID)
		return
	}
	h.record(r, "employee.delete", audit.EntityEmployee, id, nil, nil)
	api.Success(w, map[string]any{"status": "deleted", "id": id}, reqID)
}

func (h *Handler) handleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id, err := employeeID(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid employee id", reqID)
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "photo file is required", reqID)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "unsupported image type", reqID)
		return
	}

	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		api.Fail(w, http.StatusInternalServerError, "photo_failed", "failed to store photo", reqID)
		return
	}

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(h.UploadDir, name))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "photo_failed", "failed to store photo", reqID)
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		api.Fail(w, http.StatusInternalServerError, "photo_failed", "failed to store photo", reqID)
		return
	}

	photoURL := strings.TrimRight(h.PublicUploadPath, "/") + "/" + name
	if err := h.Wallet.SetPhoto(r.Context(), id, photoURL); err != nil {
		if errors.Is(err, wallet.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "photo_failed", "failed to store photo", reqID)
		return
	}
	h.record(r, "employee.photo", audit.EntityEmployee, id, nil, map[string]string{"photoUrl": photoURL})
	api.Success(w, map[string]string{"photoUrl": photoURL}, reqID)
}

func (h *Handler) handleListMonths(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id, err := employeeID(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid employee id", reqID)
		return
	}

	months, err := h.Wallet.ListMonthStats(r.Context(), id)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "months_failed", "failed to load month stats", reqID)
		return
	}
	api.Success(w, months, reqID)
}

func (h *Handler) handleListPayments(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id, err := employeeID(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid employee id", reqID)
		return
	}

	payments, err := h.Wallet.ListPayments(r.Context(), id)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payments_failed", "failed to list payments", reqID)
		return
	}
	api.Success(w, payments, reqID)
}

type paymentPayload struct {
	Type    string `json:"type"`
	Amount  int64  `json:"amount"`
	Comment string `json:"comment"`
}

func (h *Handler) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id, err := employeeID(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid employee id", reqID)
		return
	}

	var payload paymentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	if payload.Type == "" || payload.Amount == 0 {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "type and a non-zero amount are required", reqID)
		return
	}

	p, err := h.Wallet.AddPayment(r.Context(), id, payload.Type, payload.Amount, payload.Comment, h.Now())
	if err != nil {
		if errors.Is(err, wallet.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "payment_create_failed", "failed to create payment", reqID)
		return
	}
	h.record(r, "payment.create", audit.EntityPayment, p.ID, nil, p)
	api.Created(w, p, reqID)
}

func (h *Handler) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	paymentID, err := strconv.ParseInt(chi.URLParam(r, "paymentID"), 10, 64)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid payment id", reqID)
		return
	}

	if err := h.Wallet.RemovePayment(r.Context(), paymentID); err != nil {
		if errors.Is(err, wallet.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "payment not found", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "payment_delete_failed", "failed to delete payment", reqID)
		return
	}
	h.record(r, "payment.delete", audit.EntityPayment, paymentID, nil, nil)
	api.Success(w, map[string]string{"status": "deleted"}, reqID)
}

func (h *Handler) handleExportExcel(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	shorts, err := h.Wallet.ListEmployees(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to export employees", reqID)
		return
	}

	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Employees"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Login", "Name", "Position", "Rate", "Experience", "Status", "Salary", "Balance", "Hours", "Active"}
	for i, title := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, title)
	}

	row := 2
	for _, short := range shorts {
		e, err := h.Wallet.GetEmployee(r.Context(), short.ID)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to export employees", reqID)
			return
		}
		values := []any{e.ID, e.Login, e.Name, e.Position, e.Rate, e.Experience, e.Status, e.Salary, e.Balance, e.Hours, e.IsActive}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		row++
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="employees.xlsx"`)
	// Headers are already sent at this point, so a write error is terminal.
	_ = f.Write(w)
}

func (h *Handler) handleStatementPDF(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	id, err := employeeID(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_id", "invalid employee id", reqID)
		return
	}

	e, err := h.Wallet.GetEmployee(r.Context(), id)
	if err != nil {
		if errors.Is(err, wallet.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "statement_failed", "failed to build statement", reqID)
		return
	}

	months, err := h.Wallet.ListMonthStats(r.Context(), id)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "statement_failed", "failed to build statement", reqID)
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Balance statement")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", e.Login))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Balance: %d RUB", e.Balance))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(40, 8, "Month")
	pdf.Cell(45, 8, "Income")
	pdf.Cell(45, 8, "Salary")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 12)
	for _, m := range months {
		pdf.Cell(40, 8, fmt.Sprintf("%04d-%02d", m.Year, m.Month))
		pdf.Cell(45, 8, fmt.Sprintf("%d RUB", m.Income))
		pdf.Cell(45, 8, fmt.Sprintf("%d RUB", m.SalaryTotal))
		pdf.Ln(8)
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="statement.pdf"`)
	_ = pdf.Output(w)
}
