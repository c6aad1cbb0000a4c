package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"luchwallet/internal/domain/auth"
	"luchwallet/internal/domain/wallet"
	"luchwallet/internal/platform/config"
)

// Seed provisions the admin account and, when enabled, the demo employees
// with a few months of history so the income chart has something to show.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if err := ensureAdmin(ctx, pool, cfg.SeedAdminLogin, cfg.SeedAdminPassword, cfg.SeedAdminName); err != nil {
		return err
	}

	if !cfg.SeedDemoData {
		return nil
	}

	now := time.Now()
	hourlyRate := int64(580)
	workStart, workEnd := 8, 19

	ivan := demoEmployee{
		login:    "ivan",
		password: "1234",
		employee: wallet.Employee{
			Initials:    "ИИ",
			Name:        "Иванов Иван Иванович",
			Position:    "Водитель грузового автомобиля · Колонна № 3",
			Rate:        "1 850 ₽/смена",
			Experience:  "4 года 7 мес.",
			Status:      "Активен · Основное место",
			Salary:      "92 430 ₽",
			Hours:       "152 ч",
			HoursDetail: "Переработка: 18 ч · Ночные: 12 ч.",
			Penalties: []string{
				"Штрафов: 1 — превышение времени стоянки",
				"Прогулы: нет",
				"Замечания: отсутствуют",
			},
			Absences: []string{
				"Больничные: 3 дня (ОРВИ)",
				"Отпуск: 14/28 дней",
				"Отсутствия: 1 день за свой счёт",
			},
		},
		months: []wallet.MonthStat{
			monthAgo(now, 2, 88200, 88200, 160),
			monthAgo(now, 1, 90150, 90150, 156),
		},
	}

	anna := demoEmployee{
		login:    "anna",
		password: "qwerty",
		employee: wallet.Employee{
			Initials:      "АП",
			Name:          "Антонова Анна Петровна",
			Position:      "Диспетчер смен · Офис № 2",
			Rate:          "2 050 ₽/смена",
			Experience:    "2 года 3 мес.",
			Status:        "Активна · Совместительство",
			Salary:        "74 300 ₽",
			Hours:         "128 ч",
			HoursDetail:   "Переработка: 6 ч · Ночные: 4 ч.",
			ScheduleType:  wallet.ScheduleOffice,
			HourlyRate:    &hourlyRate,
			WorkStartHour: &workStart,
			WorkEndHour:   &workEnd,
			Penalties: []string{
				"Штрафов: нет",
				"Прогулы: нет",
				"Замечания: 1 — опоздание на планёрку",
			},
			Absences: []string{
				"Больничные: не было",
				"Отпуск: 7/28 дней",
				"Отсутствия: нет",
			},
		},
		months: []wallet.MonthStat{
			monthAgo(now, 2, 71900, 71900, 132),
			monthAgo(now, 1, 73400, 73400, 130),
		},
	}

	for _, demo := range []demoEmployee{ivan, anna} {
		if err := ensureDemoEmployee(ctx, pool, demo, now); err != nil {
			return err
		}
	}

	return nil
}

type demoEmployee struct {
	login    string
	password string
	employee wallet.Employee
	months   []wallet.MonthStat
}

func monthAgo(now time.Time, back int, income, salary int64, hours int) wallet.MonthStat {
	t := now.AddDate(0, -back, 0)
	return wallet.MonthStat{
		Year:        t.Year(),
		Month:       int(t.Month()),
		Income:      income,
		SalaryTotal: salary,
		Hours:       &hours,
	}
}

func ensureAdmin(ctx context.Context, pool *pgxpool.Pool, login, password, name string) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM admins WHERE login = $1", login).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx,
		"INSERT INTO admins (login, password_hash, name) VALUES ($1, $2, $3)",
		login, hash, name)
	return err
}

func ensureDemoEmployee(ctx context.Context, pool *pgxpool.Pool, demo demoEmployee, now time.Time) error {
	var count int
	if err := pool.QueryRow(ctx, "SELECT COUNT(1) FROM employees WHERE login = $1", demo.login).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(demo.password)
	if err != nil {
		return err
	}

	e := demo.employee
	e.Login = demo.login
	e.PasswordHash = hash
	e.Balance = wallet.ParseAmount(e.Salary)
	e.LastBalanceUpdate = &now
	e.IsActive = true

	store := wallet.NewStore(pool)
	id, err := store.CreateEmployee(ctx, &e)
	if err != nil {
		return err
	}

	for _, stat := range demo.months {
		_, err := pool.Exec(ctx, `
      INSERT INTO employee_month_stats (employee_id, year, month, income, salary, hours, penalties_json, absences_json)
      VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
      ON CONFLICT (employee_id, year, month) DO NOTHING
    `, id, stat.Year, stat.Month, stat.Income, stat.SalaryTotal, stat.Hours,
			wallet.EncodeNotes(stat.Penalties), wallet.EncodeNotes(stat.Absences))
		if err != nil {
			return err
		}
	}

	return nil
}
