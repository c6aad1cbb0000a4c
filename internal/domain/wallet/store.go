package wallet

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the Postgres implementation of StoreAPI.
type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) BeginTx(ctx context.Context) (Tx, error) {
	return s.DB.BeginTx(ctx, pgx.TxOptions{})
}

// pgtx unwraps the opaque handle back to a pgx transaction. Store and
// service always travel together, so a foreign Tx here is a programming
// error worth panicking on.
func pgtx(tx Tx) pgx.Tx {
	return tx.(pgx.Tx)
}

const employeeColumns = `
    id, login, password_hash, initials, name, position,
    COALESCE(rate, ''), COALESCE(experience, ''), COALESCE(status, ''),
    COALESCE(salary, ''), COALESCE(hours, ''), COALESCE(hours_detail, ''),
    COALESCE(penalties_json, ''), COALESCE(absences_json, ''),
    COALESCE(error_text, ''), COALESCE(photo_url, ''),
    balance, contract_hours, hourly_rate, COALESCE(schedule_type, ''),
    work_start_hour, work_end_hour, last_balance_update,
    is_active, created_at`

func scanEmployee(row pgx.Row) (*Employee, error) {
	var e Employee
	var penaltiesJSON, absencesJSON string
	err := row.Scan(
		&e.ID, &e.Login, &e.PasswordHash, &e.Initials, &e.Name, &e.Position,
		&e.Rate, &e.Experience, &e.Status,
		&e.Salary, &e.Hours, &e.HoursDetail,
		&penaltiesJSON, &absencesJSON,
		&e.ErrorText, &e.PhotoURL,
		&e.Balance, &e.ContractHours, &e.HourlyRate, &e.ScheduleType,
		&e.WorkStartHour, &e.WorkEndHour, &e.LastBalanceUpdate,
		&e.IsActive, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	e.Penalties = DecodeNotes(penaltiesJSON)
	e.Absences = DecodeNotes(absencesJSON)
	return &e, nil
}

func (s *Store) GetEmployee(ctx context.Context, id int64) (*Employee, error) {
	return scanEmployee(s.DB.QueryRow(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE id = $1", id))
}

func (s *Store) GetEmployeeByLogin(ctx context.Context, login string) (*Employee, error) {
	return scanEmployee(s.DB.QueryRow(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE login = $1",
		strings.ToLower(strings.TrimSpace(login))))
}

// GetEmployeeTx locks the employee row for the rest of the transaction, so
// concurrent ledger and accrual writes for one employee serialize.
func (s *Store) GetEmployeeTx(ctx context.Context, tx Tx, id int64) (*Employee, error) {
	return scanEmployee(pgtx(tx).QueryRow(ctx,
		"SELECT "+employeeColumns+" FROM employees WHERE id = $1 FOR UPDATE", id))
}

func (s *Store) ListEmployees(ctx context.Context) ([]EmployeeShort, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, login, name, position, is_active, COALESCE(photo_url, '')
    FROM employees
    ORDER BY id
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EmployeeShort
	for rows.Next() {
		var e EmployeeShort
		if err := rows.Scan(&e.ID, &e.Login, &e.Name, &e.Position, &e.IsActive, &e.PhotoURL); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) CreateEmployee(ctx context.Context, e *Employee) (int64, error) {
	var id int64
	err := s.DB.QueryRow(ctx, `
    INSERT INTO employees (
      login, password_hash, initials, name, position,
      rate, experience, status, salary, hours, hours_detail,
      penalties_json, absences_json, error_text, photo_url,
      balance, contract_hours, hourly_rate, schedule_type,
      work_start_hour, work_end_hour, last_balance_update, is_active
    ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)
    RETURNING id
  `,
		strings.ToLower(strings.TrimSpace(e.Login)), e.PasswordHash, e.Initials, e.Name, e.Position,
		e.Rate, e.Experience, e.Status, e.Salary, e.Hours, e.HoursDetail,
		EncodeNotes(e.Penalties), EncodeNotes(e.Absences), e.ErrorText, e.PhotoURL,
		e.Balance, e.ContractHours, e.HourlyRate, e.ScheduleType,
		e.WorkStartHour, e.WorkEndHour, e.LastBalanceUpdate, e.IsActive,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrLoginTaken
		}
		return 0, err
	}
	return id, nil
}

// UpdateEmployee applies the patch field by field; nil fields stay as they
// are. balance/salary arrive pre-computed when the patch edited the display
// salary, and passwordHash is non-empty only for a password change.
func (s *Store) UpdateEmployee(ctx context.Context, id int64, patch EmployeePatch, passwordHash string, balance *int64, salary *string) error {
	var sets []string
	var args []any

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}

	if patch.Login != nil {
		add("login", strings.ToLower(strings.TrimSpace(*patch.Login)))
	}
	if passwordHash != "" {
		add("password_hash", passwordHash)
	}
	if patch.Initials != nil {
		add("initials", *patch.Initials)
	}
	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Position != nil {
		add("position", *patch.Position)
	}
	if patch.Rate != nil {
		add("rate", *patch.Rate)
	}
	if patch.Experience != nil {
		add("experience", *patch.Experience)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if salary != nil {
		add("salary", *salary)
	}
	if balance != nil {
		add("balance", *balance)
	}
	if patch.Hours != nil {
		add("hours", *patch.Hours)
	}
	if patch.HoursDetail != nil {
		add("hours_detail", *patch.HoursDetail)
	}
	if patch.Penalties != nil {
		add("penalties_json", EncodeNotes(*patch.Penalties))
	}
	if patch.Absences != nil {
		add("absences_json", EncodeNotes(*patch.Absences))
	}
	if patch.ErrorText != nil {
		add("error_text", *patch.ErrorText)
	}
	if patch.PhotoURL != nil {
		add("photo_url", *patch.PhotoURL)
	}
	if patch.ContractHours != nil {
		add("contract_hours", *patch.ContractHours)
	}
	if patch.HourlyRate != nil {
		add("hourly_rate", *patch.HourlyRate)
	}
	if patch.ScheduleType != nil {
		add("schedule_type", *patch.ScheduleType)
	}
	if patch.WorkStartHour != nil {
		add("work_start_hour", *patch.WorkStartHour)
	}
	if patch.WorkEndHour != nil {
		add("work_end_hour", *patch.WorkEndHour)
	}
	if patch.IsActive != nil {
		add("is_active", *patch.IsActive)
	}

	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := "UPDATE employees SET " + strings.Join(sets, ", ") + " WHERE id = $" + strconv.Itoa(len(args))
	tag, err := s.DB.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrLoginTaken
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteEmployee(ctx context.Context, id int64) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM employees WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) SetPhotoURL(ctx context.Context, id int64, photoURL string) error {
	tag, err := s.DB.Exec(ctx, "UPDATE employees SET photo_url = $1 WHERE id = $2", photoURL, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) SaveBalanceTx(ctx context.Context, tx Tx, id int64, balance int64, salary string, lastUpdate *time.Time) error {
	_, err := pgtx(tx).Exec(ctx, `
    UPDATE employees
    SET balance = $1, salary = $2, last_balance_update = $3
    WHERE id = $4
  `, balance, salary, lastUpdate, id)
	return err
}

func (s *Store) InsertPaymentTx(ctx context.Context, tx Tx, p *Payment) (int64, error) {
	var id int64
	err := pgtx(tx).QueryRow(ctx, `
    INSERT INTO payments (employee_id, type, amount, comment, created_at)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id
  `, p.EmployeeID, p.Type, p.Amount, p.Comment, p.CreatedAt).Scan(&id)
	return id, err
}

func (s *Store) GetPaymentTx(ctx context.Context, tx Tx, id int64) (*Payment, error) {
	var p Payment
	err := pgtx(tx).QueryRow(ctx, `
    SELECT id, employee_id, type, amount, COALESCE(comment, ''), created_at
    FROM payments
    WHERE id = $1
  `, id).Scan(&p.ID, &p.EmployeeID, &p.Type, &p.Amount, &p.Comment, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) DeletePaymentTx(ctx context.Context, tx Tx, id int64) error {
	tag, err := pgtx(tx).Exec(ctx, "DELETE FROM payments WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListPayments(ctx context.Context, employeeID int64) ([]Payment, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, type, amount, COALESCE(comment, ''), created_at
    FROM payments
    WHERE employee_id = $1
    ORDER BY created_at DESC, id DESC
  `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]Payment, 0)
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.EmployeeID, &p.Type, &p.Amount, &p.Comment, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (s *Store) GetMonthStatTx(ctx context.Context, tx Tx, employeeID int64, year, month int) (*MonthStat, error) {
	var stat MonthStat
	var penaltiesJSON, absencesJSON string
	err := pgtx(tx).QueryRow(ctx, `
    SELECT id, employee_id, year, month, income, salary,
           hours, COALESCE(penalties_json, ''), COALESCE(absences_json, '')
    FROM employee_month_stats
    WHERE employee_id = $1 AND year = $2 AND month = $3
  `, employeeID, year, month).Scan(
		&stat.ID, &stat.EmployeeID, &stat.Year, &stat.Month, &stat.Income, &stat.SalaryTotal,
		&stat.Hours, &penaltiesJSON, &absencesJSON,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	stat.Penalties = DecodeNotes(penaltiesJSON)
	stat.Absences = DecodeNotes(absencesJSON)
	return &stat, nil
}

func (s *Store) InsertMonthStatTx(ctx context.Context, tx Tx, stat *MonthStat) error {
	return pgtx(tx).QueryRow(ctx, `
    INSERT INTO employee_month_stats (employee_id, year, month, income, salary, hours, penalties_json, absences_json)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    RETURNING id
  `, stat.EmployeeID, stat.Year, stat.Month, stat.Income, stat.SalaryTotal,
		stat.Hours, EncodeNotes(stat.Penalties), EncodeNotes(stat.Absences),
	).Scan(&stat.ID)
}

func (s *Store) AddMonthDeltaTx(ctx context.Context, tx Tx, employeeID int64, year, month int, incomeDelta, salaryDelta int64) error {
	_, err := pgtx(tx).Exec(ctx, `
    UPDATE employee_month_stats
    SET income = income + $1, salary = salary + $2
    WHERE employee_id = $3 AND year = $4 AND month = $5
  `, incomeDelta, salaryDelta, employeeID, year, month)
	return err
}

func (s *Store) ListMonthStats(ctx context.Context, employeeID int64) ([]MonthStat, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, year, month, income, salary,
           hours, COALESCE(penalties_json, ''), COALESCE(absences_json, '')
    FROM employee_month_stats
    WHERE employee_id = $1
    ORDER BY year, month
  `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make([]MonthStat, 0)
	for rows.Next() {
		var stat MonthStat
		var penaltiesJSON, absencesJSON string
		if err := rows.Scan(
			&stat.ID, &stat.EmployeeID, &stat.Year, &stat.Month, &stat.Income, &stat.SalaryTotal,
			&stat.Hours, &penaltiesJSON, &absencesJSON,
		); err != nil {
			return nil, err
		}
		stat.Penalties = DecodeNotes(penaltiesJSON)
		stat.Absences = DecodeNotes(absencesJSON)
		stats = append(stats, stat)
	}
	return stats, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
