package wallet

import (
	"testing"
	"time"
)

func officeEmployee(balance int64, rate int64, last time.Time) *Employee {
	start, end := 8, 19
	return &Employee{
		ID:                1,
		Login:             "anna",
		Salary:            FormatAmount(balance),
		Balance:           balance,
		HourlyRate:        &rate,
		ScheduleType:      ScheduleOffice,
		WorkStartHour:     &start,
		WorkEndHour:       &end,
		LastBalanceUpdate: &last,
	}
}

func TestAccrueMondayMorning(t *testing.T) {
	monday8 := time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)
	e := officeEmployee(74300, 580, monday8)

	now := monday8.Add(4 * time.Hour) // Monday 12:00
	Accrue(e, now)

	if e.Balance != 76620 {
		t.Fatalf("expected balance 76620 after four work hours, got %d", e.Balance)
	}
	if e.Salary != FormatAmount(76620) {
		t.Fatalf("salary string not refreshed: %q", e.Salary)
	}
	if !e.LastBalanceUpdate.Equal(now) {
		t.Fatalf("expected checkpoint %v, got %v", now, e.LastBalanceUpdate)
	}
}

func TestAccrueIdempotentForSameNow(t *testing.T) {
	monday8 := time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)
	e := officeEmployee(74300, 580, monday8)
	now := monday8.Add(4 * time.Hour)

	Accrue(e, now)
	first := e.Balance
	Accrue(e, now)
	if e.Balance != first {
		t.Fatalf("second accrual with same now changed balance: %d -> %d", first, e.Balance)
	}
}

func TestAccrueSkipsWeekend(t *testing.T) {
	// Friday 18:00 through Saturday 12:00: one work hour (18-19 Friday).
	friday18 := time.Date(2024, 6, 7, 18, 0, 0, 0, time.UTC)
	e := officeEmployee(10000, 580, friday18)

	saturday12 := time.Date(2024, 6, 8, 12, 0, 0, 0, time.UTC)
	Accrue(e, saturday12)

	if e.Balance != 10580 {
		t.Fatalf("expected one paid hour over the weekend span, got balance %d", e.Balance)
	}
	if !e.LastBalanceUpdate.Equal(saturday12) {
		t.Fatalf("expected checkpoint %v, got %v", saturday12, e.LastBalanceUpdate)
	}
}

func TestAccrueWholeWeekendAddsNothing(t *testing.T) {
	saturday0 := time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC)
	e := officeEmployee(5000, 580, saturday0)

	Accrue(e, saturday0.Add(30*time.Hour)) // Sunday 06:00
	if e.Balance != 5000 {
		t.Fatalf("weekend hours must not accrue, got balance %d", e.Balance)
	}
}

func TestAccrueLeavesPartialHourPending(t *testing.T) {
	monday8 := time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)
	e := officeEmployee(0, 100, monday8)

	Accrue(e, monday8.Add(90*time.Minute)) // Monday 09:30
	if e.Balance != 100 {
		t.Fatalf("expected exactly one full hour paid, got %d", e.Balance)
	}
	want := monday8.Add(time.Hour)
	if !e.LastBalanceUpdate.Equal(want) {
		t.Fatalf("checkpoint should stop at the reached hour boundary %v, got %v", want, e.LastBalanceUpdate)
	}

	// the half hour 09:00-09:30 is paid once 10:00 arrives
	Accrue(e, monday8.Add(2*time.Hour))
	if e.Balance != 200 {
		t.Fatalf("trailing hour not paid on the later call, balance %d", e.Balance)
	}
}

func TestAccrueNoOpWithoutOfficeSchedule(t *testing.T) {
	monday8 := time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)
	e := officeEmployee(1000, 580, monday8)
	e.ScheduleType = ""

	Accrue(e, monday8.Add(5*time.Hour))
	if e.Balance != 1000 || !e.LastBalanceUpdate.Equal(monday8) {
		t.Fatalf("non-office employee must not accrue: balance %d, checkpoint %v", e.Balance, e.LastBalanceUpdate)
	}
}

func TestAccrueNoOpWithoutRate(t *testing.T) {
	monday8 := time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)
	e := officeEmployee(1000, 580, monday8)
	e.HourlyRate = nil

	Accrue(e, monday8.Add(5*time.Hour))
	if e.Balance != 1000 {
		t.Fatalf("rate-less employee must not accrue, got %d", e.Balance)
	}

	zero := int64(0)
	e.HourlyRate = &zero
	Accrue(e, monday8.Add(5*time.Hour))
	if e.Balance != 1000 {
		t.Fatalf("zero-rate employee must not accrue, got %d", e.Balance)
	}
}

func TestAccrueFirstRunSeedsFromSalary(t *testing.T) {
	rate := int64(580)
	e := &Employee{
		Salary:       "92 430 ₽",
		HourlyRate:   &rate,
		ScheduleType: ScheduleOffice,
	}

	now := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
	Accrue(e, now)

	if e.Balance != 92430 {
		t.Fatalf("expected balance seeded from salary string, got %d", e.Balance)
	}
	if e.LastBalanceUpdate == nil || !e.LastBalanceUpdate.Equal(now) {
		t.Fatalf("expected checkpoint pinned to now, got %v", e.LastBalanceUpdate)
	}

	// no hours were paid on the initialization call
	if e.Salary != FormatAmount(92430) {
		t.Fatalf("salary string not normalized: %q", e.Salary)
	}
}

func TestAccrueDefaultsWorkWindow(t *testing.T) {
	monday7 := time.Date(2024, 6, 3, 7, 0, 0, 0, time.UTC)
	rate := int64(100)
	e := &Employee{
		Balance:           0,
		Salary:            FormatAmount(0),
		HourlyRate:        &rate,
		ScheduleType:      ScheduleOffice,
		LastBalanceUpdate: &monday7,
	}

	// 07:00-20:00 with the default 8-19 window pays 11 hours
	Accrue(e, monday7.Add(13*time.Hour))
	if e.Balance != 1100 {
		t.Fatalf("expected 11 default-window hours, got balance %d", e.Balance)
	}
}

func TestAccrueHalfHourOffsetZone(t *testing.T) {
	// In a +05:30 zone the wall-clock hour boundary sits half an hour off
	// the UTC epoch grid; the cursor must still land on the local hour so
	// the work window classifies the right hours.
	ist := time.FixedZone("UTC+0530", 5*3600+1800)
	monday8 := time.Date(2024, 6, 3, 8, 0, 0, 0, ist)
	e := officeEmployee(74300, 580, monday8)

	now := monday8.Add(4 * time.Hour) // Monday 12:00 local
	Accrue(e, now)

	if e.Balance != 76620 {
		t.Fatalf("expected balance 76620 after four local work hours, got %d", e.Balance)
	}
	if !e.LastBalanceUpdate.Equal(now) {
		t.Fatalf("expected checkpoint %v, got %v", now, e.LastBalanceUpdate)
	}
	if got := e.LastBalanceUpdate.In(ist).Minute(); got != 0 {
		t.Fatalf("checkpoint must sit on the local hour boundary, got minute %d", got)
	}
}

func TestHourStartKeepsLocation(t *testing.T) {
	ist := time.FixedZone("UTC+0530", 5*3600+1800)
	at := time.Date(2024, 6, 3, 9, 45, 17, 0, ist)

	got := hourStart(at)
	want := time.Date(2024, 6, 3, 9, 0, 0, 0, ist)
	if !got.Equal(want) {
		t.Fatalf("hourStart = %v, want %v", got, want)
	}
	if got.Location() != ist {
		t.Fatalf("hourStart changed location to %v", got.Location())
	}
}
