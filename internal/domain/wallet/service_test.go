package wallet

import (
	"context"
	"fmt"
	"testing"
	"time"
)

// fakeStore keeps everything in memory. Transactions are a formality here:
// service tests exercise the orchestration logic, not pgx.
type fakeStore struct {
	employees map[int64]*Employee
	payments  map[int64]*Payment
	stats     map[string]*MonthStat
	nextID    int64
}

type fakeTx struct{}

func (fakeTx) Commit(context.Context) error   { return nil }
func (fakeTx) Rollback(context.Context) error { return nil }

func newFakeStore() *fakeStore {
	return &fakeStore{
		employees: map[int64]*Employee{},
		payments:  map[int64]*Payment{},
		stats:     map[string]*MonthStat{},
		nextID:    1,
	}
}

func statKey(employeeID int64, year, month int) string {
	return fmt.Sprintf("%d/%d-%02d", employeeID, year, month)
}

func (f *fakeStore) id() int64 {
	id := f.nextID
	f.nextID++
	return id
}

func (f *fakeStore) BeginTx(context.Context) (Tx, error) { return fakeTx{}, nil }

func (f *fakeStore) GetEmployee(_ context.Context, id int64) (*Employee, error) {
	e, ok := f.employees[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *e
	return &clone, nil
}

func (f *fakeStore) GetEmployeeByLogin(_ context.Context, login string) (*Employee, error) {
	for _, e := range f.employees {
		if e.Login == login {
			clone := *e
			return &clone, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeStore) ListEmployees(context.Context) ([]EmployeeShort, error) { return nil, nil }

func (f *fakeStore) CreateEmployee(_ context.Context, e *Employee) (int64, error) {
	clone := *e
	clone.ID = f.id()
	f.employees[clone.ID] = &clone
	return clone.ID, nil
}

func (f *fakeStore) UpdateEmployee(_ context.Context, id int64, patch EmployeePatch, passwordHash string, balance *int64, salary *string) error {
	e, ok := f.employees[id]
	if !ok {
		return ErrNotFound
	}
	if balance != nil {
		e.Balance = *balance
	}
	if salary != nil {
		e.Salary = *salary
	}
	return nil
}

func (f *fakeStore) DeleteEmployee(_ context.Context, id int64) error {
	delete(f.employees, id)
	return nil
}

func (f *fakeStore) SetPhotoURL(_ context.Context, id int64, url string) error {
	if e, ok := f.employees[id]; ok {
		e.PhotoURL = url
	}
	return nil
}

func (f *fakeStore) GetEmployeeTx(ctx context.Context, _ Tx, id int64) (*Employee, error) {
	return f.GetEmployee(ctx, id)
}

func (f *fakeStore) SaveBalanceTx(_ context.Context, _ Tx, id int64, balance int64, salary string, last *time.Time) error {
	e, ok := f.employees[id]
	if !ok {
		return ErrNotFound
	}
	e.Balance = balance
	e.Salary = salary
	e.LastBalanceUpdate = last
	return nil
}

func (f *fakeStore) InsertPaymentTx(_ context.Context, _ Tx, p *Payment) (int64, error) {
	clone := *p
	clone.ID = f.id()
	f.payments[clone.ID] = &clone
	return clone.ID, nil
}

func (f *fakeStore) GetPaymentTx(_ context.Context, _ Tx, id int64) (*Payment, error) {
	p, ok := f.payments[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (f *fakeStore) DeletePaymentTx(_ context.Context, _ Tx, id int64) error {
	if _, ok := f.payments[id]; !ok {
		return ErrNotFound
	}
	delete(f.payments, id)
	return nil
}

func (f *fakeStore) ListPayments(_ context.Context, employeeID int64) ([]Payment, error) {
	var out []Payment
	for _, p := range f.payments {
		if p.EmployeeID == employeeID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeStore) GetMonthStatTx(_ context.Context, _ Tx, employeeID int64, year, month int) (*MonthStat, error) {
	stat, ok := f.stats[statKey(employeeID, year, month)]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *stat
	return &clone, nil
}

func (f *fakeStore) InsertMonthStatTx(_ context.Context, _ Tx, stat *MonthStat) error {
	clone := *stat
	clone.ID = f.id()
	f.stats[statKey(stat.EmployeeID, stat.Year, stat.Month)] = &clone
	return nil
}

func (f *fakeStore) AddMonthDeltaTx(_ context.Context, _ Tx, employeeID int64, year, month int, incomeDelta, salaryDelta int64) error {
	stat, ok := f.stats[statKey(employeeID, year, month)]
	if !ok {
		return ErrNotFound
	}
	stat.Income += incomeDelta
	stat.SalaryTotal += salaryDelta
	return nil
}

func (f *fakeStore) ListMonthStats(_ context.Context, employeeID int64) ([]MonthStat, error) {
	var out []MonthStat
	for _, stat := range f.stats {
		if stat.EmployeeID == employeeID {
			out = append(out, *stat)
		}
	}
	return out, nil
}

func (f *fakeStore) monthStat(t *testing.T, employeeID int64, year, month int) *MonthStat {
	t.Helper()
	stat, ok := f.stats[statKey(employeeID, year, month)]
	if !ok {
		t.Fatalf("no month stat for employee %d %d-%02d", employeeID, year, month)
	}
	return stat
}

func newTestService(t *testing.T) (*Service, *fakeStore, int64) {
	t.Helper()
	store := newFakeStore()
	rate := int64(580)
	last := time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)
	id, err := store.CreateEmployee(context.Background(), &Employee{
		Login:             "anna",
		Name:              "Антонова Анна Петровна",
		Balance:           74300,
		Salary:            FormatAmount(74300),
		HourlyRate:        &rate,
		ScheduleType:      ScheduleOffice,
		LastBalanceUpdate: &last,
		IsActive:          true,
	})
	if err != nil {
		t.Fatalf("seed employee: %v", err)
	}
	return NewService(store, nil), store, id
}

func TestAddPaymentUpdatesBalanceAndMonth(t *testing.T) {
	svc, store, empID := newTestService(t)
	ctx := context.Background()
	when := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

	p, err := svc.AddPayment(ctx, empID, "bonus", 1500, "quarter bonus", when)
	if err != nil {
		t.Fatalf("AddPayment: %v", err)
	}
	if p.ID == 0 {
		t.Fatal("payment id not assigned")
	}

	e := store.employees[empID]
	if e.Balance != 75800 {
		t.Fatalf("expected balance 75800, got %d", e.Balance)
	}
	if e.Salary != FormatAmount(75800) {
		t.Fatalf("display salary not refreshed: %q", e.Salary)
	}

	stat := store.monthStat(t, empID, 2024, 6)
	if stat.Income != 1500 {
		t.Fatalf("expected month income 1500, got %d", stat.Income)
	}
	if stat.SalaryTotal != 0 {
		t.Fatalf("bonus must not feed the salary subtotal, got %d", stat.SalaryTotal)
	}
}

func TestSalaryPaymentFeedsSalarySubtotal(t *testing.T) {
	svc, store, empID := newTestService(t)
	ctx := context.Background()
	when := time.Date(2024, 6, 28, 10, 0, 0, 0, time.UTC)

	if _, err := svc.AddPayment(ctx, empID, PaymentTypeSalary, 50000, "", when); err != nil {
		t.Fatalf("AddPayment: %v", err)
	}

	stat := store.monthStat(t, empID, 2024, 6)
	if stat.Income != 50000 || stat.SalaryTotal != 50000 {
		t.Fatalf("expected income and salary subtotal 50000, got %d/%d", stat.Income, stat.SalaryTotal)
	}
}

func TestRemovePaymentReversesExactly(t *testing.T) {
	svc, store, empID := newTestService(t)
	ctx := context.Background()
	when := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

	balanceBefore := store.employees[empID].Balance

	fine, err := svc.AddPayment(ctx, empID, "fine", -500, "late", when)
	if err != nil {
		t.Fatalf("AddPayment: %v", err)
	}
	if store.employees[empID].Balance != balanceBefore-500 {
		t.Fatalf("fine not applied, balance %d", store.employees[empID].Balance)
	}

	if err := svc.RemovePayment(ctx, fine.ID); err != nil {
		t.Fatalf("RemovePayment: %v", err)
	}

	if got := store.employees[empID].Balance; got != balanceBefore {
		t.Fatalf("balance not restored: want %d, got %d", balanceBefore, got)
	}
	if stat := store.monthStat(t, empID, 2024, 6); stat.Income != 0 {
		t.Fatalf("month income not restored, got %d", stat.Income)
	}
	if _, err := svc.ListPayments(ctx, empID); err != nil {
		t.Fatalf("ListPayments: %v", err)
	}
	if len(store.payments) != 0 {
		t.Fatalf("payment row not deleted, %d left", len(store.payments))
	}
}

func TestRemovePaymentNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	if err := svc.RemovePayment(context.Background(), 999); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLedgerSequenceRestoresBalance(t *testing.T) {
	svc, store, empID := newTestService(t)
	ctx := context.Background()
	before := store.employees[empID].Balance

	entries := []struct {
		ptype  string
		amount int64
		when   time.Time
	}{
		{PaymentTypeSalary, 50000, time.Date(2024, 5, 31, 12, 0, 0, 0, time.UTC)},
		{"bonus", 7000, time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC)},
		{"fine", -1200, time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)},
		{PaymentTypeSalary, 50000, time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)},
	}

	var ids []int64
	for _, entry := range entries {
		p, err := svc.AddPayment(ctx, empID, entry.ptype, entry.amount, "", entry.when)
		if err != nil {
			t.Fatalf("AddPayment: %v", err)
		}
		ids = append(ids, p.ID)
	}

	june := store.monthStat(t, empID, 2024, 6)
	if june.Income != 55800 {
		t.Fatalf("expected June income 55800, got %d", june.Income)
	}
	if june.SalaryTotal != 50000 {
		t.Fatalf("expected June salary subtotal 50000, got %d", june.SalaryTotal)
	}
	may := store.monthStat(t, empID, 2024, 5)
	if may.Income != 50000 {
		t.Fatalf("expected May income 50000, got %d", may.Income)
	}

	for _, id := range ids {
		if err := svc.RemovePayment(ctx, id); err != nil {
			t.Fatalf("RemovePayment(%d): %v", id, err)
		}
	}

	if got := store.employees[empID].Balance; got != before {
		t.Fatalf("balance after full reversal: want %d, got %d", before, got)
	}
	if june.Income != 0 || june.SalaryTotal != 0 {
		t.Fatalf("June aggregate not reversed: income %d, salary %d", june.Income, june.SalaryTotal)
	}
	if may := store.monthStat(t, empID, 2024, 5); may.Income != 0 {
		t.Fatalf("May aggregate not reversed: %d", may.Income)
	}
}

func TestAggregateKeepsSeededBaseline(t *testing.T) {
	svc, store, empID := newTestService(t)
	ctx := context.Background()

	// pre-seeded historical month with a baseline income
	if err := store.InsertMonthStatTx(ctx, fakeTx{}, &MonthStat{
		EmployeeID: empID,
		Year:       2024,
		Month:      6,
		Income:     30000,
	}); err != nil {
		t.Fatalf("seed stat: %v", err)
	}

	when := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	p, err := svc.AddPayment(ctx, empID, "bonus", 2000, "", when)
	if err != nil {
		t.Fatalf("AddPayment: %v", err)
	}
	if stat := store.monthStat(t, empID, 2024, 6); stat.Income != 32000 {
		t.Fatalf("expected baseline plus entry, got %d", stat.Income)
	}

	if err := svc.RemovePayment(ctx, p.ID); err != nil {
		t.Fatalf("RemovePayment: %v", err)
	}
	if stat := store.monthStat(t, empID, 2024, 6); stat.Income != 30000 {
		t.Fatalf("baseline must survive reversal, got %d", stat.Income)
	}
}

func TestReversalOnMissingMonthIsNoOp(t *testing.T) {
	svc, store, empID := newTestService(t)
	ctx := context.Background()

	// a payment row whose month record was never created
	orphan := &Payment{
		EmployeeID: empID,
		Type:       "bonus",
		Amount:     900,
		CreatedAt:  time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC),
	}
	id, err := store.InsertPaymentTx(ctx, fakeTx{}, orphan)
	if err != nil {
		t.Fatalf("insert orphan: %v", err)
	}

	if err := svc.RemovePayment(ctx, id); err != nil {
		t.Fatalf("RemovePayment must tolerate a missing month record: %v", err)
	}
	if _, ok := store.stats[statKey(empID, 2023, 12)]; ok {
		t.Fatal("reversal must not create a month record")
	}
}

func TestAccrueBalancePersists(t *testing.T) {
	svc, store, empID := newTestService(t)
	ctx := context.Background()

	now := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC) // Monday noon
	e, err := svc.AccrueBalance(ctx, empID, now)
	if err != nil {
		t.Fatalf("AccrueBalance: %v", err)
	}
	if e.Balance != 76620 {
		t.Fatalf("expected accrued balance 76620, got %d", e.Balance)
	}

	stored := store.employees[empID]
	if stored.Balance != 76620 || !stored.LastBalanceUpdate.Equal(now) {
		t.Fatalf("accrual not persisted: balance %d, checkpoint %v", stored.Balance, stored.LastBalanceUpdate)
	}

	// second call with the same now must not move anything
	if _, err := svc.AccrueBalance(ctx, empID, now); err != nil {
		t.Fatalf("AccrueBalance repeat: %v", err)
	}
	if store.employees[empID].Balance != 76620 {
		t.Fatalf("repeat accrual changed balance to %d", store.employees[empID].Balance)
	}
}

func TestCreateEmployeeSeedsBalance(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	now := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)

	e, err := svc.CreateEmployee(ctx, &Employee{
		Login:  "petrov",
		Name:   "Петров Пётр Петрович",
		Salary: "68 900 ₽",
	}, now)
	if err != nil {
		t.Fatalf("CreateEmployee: %v", err)
	}

	if e.Balance != 68900 {
		t.Fatalf("expected balance seeded to 68900, got %d", e.Balance)
	}
	stored := store.employees[e.ID]
	if stored.LastBalanceUpdate == nil || !stored.LastBalanceUpdate.Equal(now) {
		t.Fatalf("expected checkpoint pinned at creation, got %v", stored.LastBalanceUpdate)
	}
	if !stored.IsActive {
		t.Fatal("new employee should be active")
	}
}
