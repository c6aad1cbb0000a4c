package wallet

import (
	"context"
	"time"
)

// Tx is the minimal transaction handle the service needs. The Postgres
// store hands out pgx transactions behind it; tests use an in-memory fake.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// StoreAPI is everything the wallet service asks of persistence. The ...Tx
// methods run inside the given transaction; the Postgres implementation
// locks the employee row on GetEmployeeTx so concurrent accrual and ledger
// calls for one employee serialize instead of racing.
type StoreAPI interface {
	BeginTx(ctx context.Context) (Tx, error)

	GetEmployee(ctx context.Context, id int64) (*Employee, error)
	GetEmployeeByLogin(ctx context.Context, login string) (*Employee, error)
	ListEmployees(ctx context.Context) ([]EmployeeShort, error)
	CreateEmployee(ctx context.Context, e *Employee) (int64, error)
	UpdateEmployee(ctx context.Context, id int64, patch EmployeePatch, passwordHash string, balance *int64, salary *string) error
	DeleteEmployee(ctx context.Context, id int64) error
	SetPhotoURL(ctx context.Context, id int64, photoURL string) error

	GetEmployeeTx(ctx context.Context, tx Tx, id int64) (*Employee, error)
	SaveBalanceTx(ctx context.Context, tx Tx, id int64, balance int64, salary string, lastUpdate *time.Time) error

	InsertPaymentTx(ctx context.Context, tx Tx, p *Payment) (int64, error)
	GetPaymentTx(ctx context.Context, tx Tx, id int64) (*Payment, error)
	DeletePaymentTx(ctx context.Context, tx Tx, id int64) error
	ListPayments(ctx context.Context, employeeID int64) ([]Payment, error)

	GetMonthStatTx(ctx context.Context, tx Tx, employeeID int64, year, month int) (*MonthStat, error)
	InsertMonthStatTx(ctx context.Context, tx Tx, stat *MonthStat) error
	AddMonthDeltaTx(ctx context.Context, tx Tx, employeeID int64, year, month int, incomeDelta, salaryDelta int64) error
	ListMonthStats(ctx context.Context, employeeID int64) ([]MonthStat, error)
}
