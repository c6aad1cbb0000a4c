package wallet

import "time"

// Accrue advances the employee's balance from the last checkpoint to now,
// paying HourlyRate for every full work hour in between. It mutates the
// employee in place; the caller persists balance, salary and checkpoint in
// one transaction.
//
// Only office-schedule employees with a positive hourly rate accrue. On the
// first call (no checkpoint yet) the checkpoint is pinned to now and a zero
// balance is seeded from the legacy display salary; no hours are paid.
//
// The iteration cursor is the checkpoint truncated down to its hour, so a
// trailing partial hour is left unpaid until a later call sees it complete.
// Calling twice with the same now pays only once.
func Accrue(e *Employee, now time.Time) {
	if e.ScheduleType != ScheduleOffice {
		return
	}
	if e.HourlyRate == nil || *e.HourlyRate <= 0 {
		return
	}

	if e.LastBalanceUpdate == nil {
		checkpoint := now
		e.LastBalanceUpdate = &checkpoint
		if e.Balance == 0 {
			e.Balance = ParseAmount(e.Salary)
		}
		e.Salary = FormatAmount(e.Balance)
		return
	}

	cursor := hourStart(*e.LastBalanceUpdate)
	if !cursor.Before(now) {
		return
	}

	startHour, endHour := DefaultWorkStartHour, DefaultWorkEndHour
	if e.WorkStartHour != nil {
		startHour = *e.WorkStartHour
	}
	if e.WorkEndHour != nil {
		endHour = *e.WorkEndHour
	}

	var pending int64
	for !cursor.Add(time.Hour).After(now) {
		if IsWorkHour(cursor, startHour, endHour) {
			pending += *e.HourlyRate
		}
		cursor = cursor.Add(time.Hour)
	}

	e.Balance += pending
	e.Salary = FormatAmount(e.Balance)
	e.LastBalanceUpdate = &cursor
}

// hourStart floors t to its hour in t's own location. Truncate would floor
// against the UTC epoch, which lands off the wall-clock hour in zones with
// a non-whole-hour offset while the work window classifies by wall clock.
func hourStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}
