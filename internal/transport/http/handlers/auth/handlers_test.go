package authhandler

import (
	"testing"
	"time"

	"luchwallet/internal/domain/wallet"
)

func TestEmployeeDataShape(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	e := &wallet.Employee{
		ID:                7,
		Login:             "ivan",
		Initials:          "ИП",
		Name:              "Иван Петров",
		Position:          "курьер",
		Salary:            "74 300 ₽",
		Balance:           74300,
		Penalties:         []string{"опоздание"},
		Absences:          []string{},
		LastBalanceUpdate: &now,
	}
	months := []wallet.MonthStat{
		{EmployeeID: 7, Year: 2025, Month: 3, Income: 5000, SalaryTotal: 2000},
	}

	data := EmployeeData(e, months)

	if data["name"] != "Иван Петров" {
		t.Fatalf("unexpected name: %v", data["name"])
	}
	if data["balance"] != int64(74300) {
		t.Fatalf("unexpected balance: %v", data["balance"])
	}
	if data["salary"] != "74 300 ₽" {
		t.Fatalf("unexpected salary: %v", data["salary"])
	}

	monthList, ok := data["months"].([]map[string]any)
	if !ok || len(monthList) != 1 {
		t.Fatalf("expected one month entry, got %v", data["months"])
	}
	if monthList[0]["key"] != "2025-03" {
		t.Fatalf("unexpected month key: %v", monthList[0]["key"])
	}
	if monthList[0]["income"] != int64(5000) {
		t.Fatalf("unexpected month income: %v", monthList[0]["income"])
	}
}

func TestEmployeeDataEmptyMonths(t *testing.T) {
	data := EmployeeData(&wallet.Employee{Login: "anna"}, nil)

	monthList, ok := data["months"].([]map[string]any)
	if !ok {
		t.Fatalf("months must always be a list, got %T", data["months"])
	}
	if len(monthList) != 0 {
		t.Fatalf("expected empty month list, got %d entries", len(monthList))
	}
}
