package core

import (
	"fmt"
	"testing"
	"time"
)

func TestNewEmptyStore(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	store := NewEmptyStore(now)

	if store.Version != StoreVersion {
		t.Fatalf("version = %d", store.Version)
	}
	if store.SelectedMonth != "2025-06" {
		t.Fatalf("selectedMonth = %q", store.SelectedMonth)
	}
	month, ok := store.Months["2025-06"]
	if !ok {
		t.Fatal("missing current month")
	}
	if len(month.Payments) != 0 || month.Cofrinho != nil {
		t.Fatalf("month not empty: %+v", month)
	}
}

func TestNewMonthFromPrevious(t *testing.T) {
	now := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	seq := 0
	newID := func() string {
		seq++
		return fmt.Sprintf("fresh-%d", seq)
	}

	previous := FinanceMonth{
		Competence: "2025-06",
		ValorFixo:  "R$ 5.000,00",
		RendaExtra: "R$ 300,00",
		Cofrinho:   &CofrinhoConfig{Enabled: true, Value: "R$ 200,00", Goal: "R$ 2.000,00"},
		Payments: []Payment{
			{ID: "a", Descricao: "Aluguel", Valor: "R$ 1.500,00", Recorrente: true, Pago: true},
			{ID: "b", Descricao: "Presente", Valor: "R$ 80,00"},
			{ID: "c", Descricao: "Internet", Valor: "R$ 99,00", Recorrente: true},
		},
	}

	month := NewMonthFromPrevious("2025-07", previous, now, newID)

	if month.Competence != "2025-07" {
		t.Fatalf("competence = %q", month.Competence)
	}
	if month.ValorFixo != "R$ 5.000,00" {
		t.Fatalf("valorFixo not carried: %q", month.ValorFixo)
	}
	if month.RendaExtra != "R$ 0,00" {
		t.Fatalf("rendaExtra must reset, got %q", month.RendaExtra)
	}
	if len(month.Payments) != 2 {
		t.Fatalf("only recurring payments carry over, got %+v", month.Payments)
	}
	for i, p := range month.Payments {
		if p.ID == "a" || p.ID == "c" {
			t.Fatalf("carried payment %d kept its old identity", i)
		}
	}
	if month.Payments[0].Descricao != "Aluguel" || month.Payments[1].Descricao != "Internet" {
		t.Fatalf("carried payments out of order: %+v", month.Payments)
	}

	// The savings config is copied, not shared.
	month.Cofrinho.Value = "R$ 999,00"
	if previous.Cofrinho.Value != "R$ 200,00" {
		t.Fatal("cofrinho aliased between months")
	}
}

func TestSortedMonthKeys(t *testing.T) {
	months := map[string]FinanceMonth{
		"2025-01": {},
		"2024-12": {},
		"2025-03": {},
	}
	keys := SortedMonthKeys(months)
	if len(keys) != 3 || keys[0] != "2024-12" || keys[2] != "2025-03" {
		t.Fatalf("keys = %v", keys)
	}
	if LatestMonthKey(months) != "2025-03" {
		t.Fatalf("latest = %q", LatestMonthKey(months))
	}
	if LatestMonthKey(nil) != "" {
		t.Fatal("latest of empty map must be empty")
	}
}

func TestCloneIsDeep(t *testing.T) {
	store := NewEmptyStore(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	month := store.Months["2025-06"]
	month.Payments = append(month.Payments, Payment{ID: "p1", Descricao: "Conta"})
	month.Cofrinho = &CofrinhoConfig{Enabled: true, Value: "R$ 10,00"}
	store.Months["2025-06"] = month

	clone := store.Clone()
	clone.Months["2025-06"].Payments[0].Descricao = "Mudou"
	clone.Months["2025-06"].Cofrinho.Value = "R$ 99,00"

	if store.Months["2025-06"].Payments[0].Descricao != "Conta" {
		t.Fatal("payments aliased through clone")
	}
	if store.Months["2025-06"].Cofrinho.Value != "R$ 10,00" {
		t.Fatal("cofrinho aliased through clone")
	}
}
