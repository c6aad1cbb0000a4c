package wallet

import "time"

const (
	// ScheduleOffice marks employees whose balance accrues automatically
	// per worked hour. Everyone else is paid by manual ledger entries only.
	ScheduleOffice = "office"

	DefaultWorkStartHour = 8
	DefaultWorkEndHour   = 19
)

// PaymentTypeSalary feeds the per-month salary subtotal in addition to income.
const PaymentTypeSalary = "salary"

type Employee struct {
	ID           int64    `json:"id"`
	Login        string   `json:"login"`
	PasswordHash string   `json:"-"`
	Initials     string   `json:"initials"`
	Name         string   `json:"name"`
	Position     string   `json:"position"`
	Rate         string   `json:"rate,omitempty"`
	Experience   string   `json:"experience,omitempty"`
	Status       string   `json:"status,omitempty"`
	Salary       string   `json:"salary,omitempty"`
	Hours        string   `json:"hours,omitempty"`
	HoursDetail  string   `json:"hoursDetail,omitempty"`
	Penalties    []string `json:"penalties"`
	Absences     []string `json:"absences"`
	ErrorText    string   `json:"errorText"`
	PhotoURL     string   `json:"photoUrl,omitempty"`

	Balance           int64      `json:"balance"`
	ContractHours     *int       `json:"contractHours,omitempty"`
	HourlyRate        *int64     `json:"hourlyRate,omitempty"`
	ScheduleType      string     `json:"scheduleType,omitempty"`
	WorkStartHour     *int       `json:"workStartHour,omitempty"`
	WorkEndHour       *int       `json:"workEndHour,omitempty"`
	LastBalanceUpdate *time.Time `json:"lastBalanceUpdate,omitempty"`

	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// EmployeeShort is the list-view projection for the admin UI.
type EmployeeShort struct {
	ID       int64  `json:"id"`
	Login    string `json:"login"`
	Name     string `json:"name"`
	Position string `json:"position"`
	IsActive bool   `json:"isActive"`
	PhotoURL string `json:"photoUrl,omitempty"`
}

// Payment is one signed ledger entry. Amount, Type and CreatedAt are
// immutable after creation; the only supported mutation is deletion.
type Payment struct {
	ID         int64     `json:"id"`
	EmployeeID int64     `json:"employeeId"`
	Type       string    `json:"type"`
	Amount     int64     `json:"amount"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// MonthStat is the running aggregate for one (employee, year, month).
// Income tracks the signed sum of all currently existing ledger entries for
// the month plus any seeded baseline; SalaryTotal restricts the sum to
// entries typed "salary". Hours and the note lists are snapshots carried by
// seed data and never touched by the ledger.
type MonthStat struct {
	ID          int64    `json:"-"`
	EmployeeID  int64    `json:"-"`
	Year        int      `json:"year"`
	Month       int      `json:"month"`
	Income      int64    `json:"income"`
	SalaryTotal int64    `json:"salary"`
	Hours       *int     `json:"hours,omitempty"`
	Penalties   []string `json:"penalties,omitempty"`
	Absences    []string `json:"absences,omitempty"`
}

// EmployeePatch carries a partial update: nil means "leave the field alone".
// Login and Password get special handling (uniqueness re-check, re-hashing);
// Salary re-initializes the balance from the display string, the one
// sanctioned path from string to balance after creation.
type EmployeePatch struct {
	Login    *string `json:"login,omitempty"`
	Password *string `json:"password,omitempty"`

	Initials    *string   `json:"initials,omitempty"`
	Name        *string   `json:"name,omitempty"`
	Position    *string   `json:"position,omitempty"`
	Rate        *string   `json:"rate,omitempty"`
	Experience  *string   `json:"experience,omitempty"`
	Status      *string   `json:"status,omitempty"`
	Salary      *string   `json:"salary,omitempty"`
	Hours       *string   `json:"hours,omitempty"`
	HoursDetail *string   `json:"hoursDetail,omitempty"`
	Penalties   *[]string `json:"penalties,omitempty"`
	Absences    *[]string `json:"absences,omitempty"`
	ErrorText   *string   `json:"errorText,omitempty"`
	PhotoURL    *string   `json:"photoUrl,omitempty"`

	ContractHours *int    `json:"contractHours,omitempty"`
	HourlyRate    *int64  `json:"hourlyRate,omitempty"`
	ScheduleType  *string `json:"scheduleType,omitempty"`
	WorkStartHour *int    `json:"workStartHour,omitempty"`
	WorkEndHour   *int    `json:"workEndHour,omitempty"`
	IsActive      *bool   `json:"isActive,omitempty"`
}
