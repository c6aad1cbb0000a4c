package wallet

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

// Service owns every write path to employee balances, the payment ledger
// and the month aggregates. Keeping it the sole writer is what lets the
// aggregator trust incremental deltas instead of recomputing from entries.
type Service struct {
	store StoreAPI
	log   *slog.Logger
}

func NewService(store StoreAPI, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, log: logger}
}

func (s *Service) rollback(ctx context.Context, tx Tx) {
	if err := tx.Rollback(ctx); err != nil {
		s.log.Warn("wallet tx rollback failed", "err", err)
	}
}

// AccrueBalance runs the accrual engine for one employee and persists the
// result. Returns the refreshed employee. Safe to call on every login and
// balance fetch: when nothing accrued it is a read plus a no-op write skip.
func (s *Service) AccrueBalance(ctx context.Context, employeeID int64, now time.Time) (*Employee, error) {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}

	e, err := s.store.GetEmployeeTx(ctx, tx, employeeID)
	if err != nil {
		s.rollback(ctx, tx)
		return nil, err
	}

	if e.ScheduleType == ScheduleOffice && (e.HourlyRate == nil || *e.HourlyRate <= 0) {
		s.log.Warn("office employee has no usable hourly rate, accrual skipped",
			"employeeID", e.ID)
	}

	before := e.LastBalanceUpdate
	Accrue(e, now)
	if sameCheckpoint(before, e.LastBalanceUpdate) {
		// nothing moved; skip the write but release the row lock
		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}
		return e, nil
	}

	if err := s.store.SaveBalanceTx(ctx, tx, e.ID, e.Balance, e.Salary, e.LastBalanceUpdate); err != nil {
		s.rollback(ctx, tx)
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

func sameCheckpoint(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// AddPayment appends a ledger entry, credits the employee's balance and
// feeds the month aggregate, all in one transaction.
func (s *Service) AddPayment(ctx context.Context, employeeID int64, ptype string, amount int64, comment string, now time.Time) (*Payment, error) {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}

	e, err := s.store.GetEmployeeTx(ctx, tx, employeeID)
	if err != nil {
		s.rollback(ctx, tx)
		return nil, err
	}

	p := &Payment{
		EmployeeID: employeeID,
		Type:       ptype,
		Amount:     amount,
		Comment:    comment,
		CreatedAt:  now,
	}
	p.ID, err = s.store.InsertPaymentTx(ctx, tx, p)
	if err != nil {
		s.rollback(ctx, tx)
		return nil, err
	}

	balance := e.Balance + amount
	if err := s.store.SaveBalanceTx(ctx, tx, employeeID, balance, FormatAmount(balance), e.LastBalanceUpdate); err != nil {
		s.rollback(ctx, tx)
		return nil, err
	}

	if err := s.applyMonthDelta(ctx, tx, employeeID, amount, p.CreatedAt, ptype, false); err != nil {
		s.rollback(ctx, tx)
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// RemovePayment deletes a ledger entry and exactly reverses its effect on
// the balance and the month aggregate of the entry's original month.
func (s *Service) RemovePayment(ctx context.Context, paymentID int64) error {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return err
	}

	p, err := s.store.GetPaymentTx(ctx, tx, paymentID)
	if err != nil {
		s.rollback(ctx, tx)
		return err
	}

	e, err := s.store.GetEmployeeTx(ctx, tx, p.EmployeeID)
	if err != nil {
		s.rollback(ctx, tx)
		return err
	}

	balance := e.Balance - p.Amount
	if err := s.store.SaveBalanceTx(ctx, tx, p.EmployeeID, balance, FormatAmount(balance), e.LastBalanceUpdate); err != nil {
		s.rollback(ctx, tx)
		return err
	}

	if err := s.applyMonthDelta(ctx, tx, p.EmployeeID, p.Amount, p.CreatedAt, p.Type, true); err != nil {
		s.rollback(ctx, tx)
		return err
	}

	if err := s.store.DeletePaymentTx(ctx, tx, paymentID); err != nil {
		s.rollback(ctx, tx)
		return err
	}

	return tx.Commit(ctx)
}

// applyMonthDelta folds one signed amount into the (employee, year, month)
// aggregate. Forward mode creates the month record lazily; reverse mode on
// a missing record is a best-effort no-op, logged as a consistency gap
// rather than failing the enclosing transaction.
func (s *Service) applyMonthDelta(ctx context.Context, tx Tx, employeeID int64, amount int64, createdAt time.Time, ptype string, reverse bool) error {
	year, month := createdAt.Year(), int(createdAt.Month())

	stat, err := s.store.GetMonthStatTx(ctx, tx, employeeID, year, month)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if stat == nil {
		if reverse {
			s.log.Warn("month stat missing on reversal",
				"employeeID", employeeID, "year", year, "month", month)
			return nil
		}
		if err := s.store.InsertMonthStatTx(ctx, tx, &MonthStat{
			EmployeeID: employeeID,
			Year:       year,
			Month:      month,
		}); err != nil {
			return err
		}
	}

	delta := amount
	if reverse {
		delta = -amount
	}
	var salaryDelta int64
	if ptype == PaymentTypeSalary {
		salaryDelta = delta
	}
	return s.store.AddMonthDeltaTx(ctx, tx, employeeID, year, month, delta, salaryDelta)
}

// CreateEmployee seeds the balance from the display salary and pins the
// accrual checkpoint to now, per the one-time initialization rule.
func (s *Service) CreateEmployee(ctx context.Context, e *Employee, now time.Time) (*Employee, error) {
	e.Login = strings.ToLower(strings.TrimSpace(e.Login))
	e.Balance = ParseAmount(e.Salary)
	e.LastBalanceUpdate = &now
	e.IsActive = true

	id, err := s.store.CreateEmployee(ctx, e)
	if err != nil {
		return nil, err
	}
	return s.store.GetEmployee(ctx, id)
}

// UpdateEmployee applies a partial update. A salary edit re-initializes the
// balance from the string; passwordHash is empty unless the patch carried a
// new password (hashing happens at the transport layer).
func (s *Service) UpdateEmployee(ctx context.Context, id int64, patch EmployeePatch, passwordHash string) (*Employee, error) {
	if patch.Login != nil {
		lowered := strings.ToLower(strings.TrimSpace(*patch.Login))
		patch.Login = &lowered
	}

	var balance *int64
	var salary *string
	if patch.Salary != nil {
		b := ParseAmount(*patch.Salary)
		f := FormatAmount(b)
		balance, salary = &b, &f
	}

	if err := s.store.UpdateEmployee(ctx, id, patch, passwordHash, balance, salary); err != nil {
		return nil, err
	}
	return s.store.GetEmployee(ctx, id)
}

func (s *Service) DeleteEmployee(ctx context.Context, id int64) error {
	return s.store.DeleteEmployee(ctx, id)
}

func (s *Service) GetEmployee(ctx context.Context, id int64) (*Employee, error) {
	return s.store.GetEmployee(ctx, id)
}

func (s *Service) GetEmployeeByLogin(ctx context.Context, login string) (*Employee, error) {
	return s.store.GetEmployeeByLogin(ctx, login)
}

func (s *Service) ListEmployees(ctx context.Context) ([]EmployeeShort, error) {
	return s.store.ListEmployees(ctx)
}

func (s *Service) SetPhoto(ctx context.Context, id int64, photoURL string) error {
	return s.store.SetPhotoURL(ctx, id, photoURL)
}

func (s *Service) ListPayments(ctx context.Context, employeeID int64) ([]Payment, error) {
	return s.store.ListPayments(ctx, employeeID)
}

func (s *Service) ListMonthStats(ctx context.Context, employeeID int64) ([]MonthStat, error) {
	return s.store.ListMonthStats(ctx, employeeID)
}
