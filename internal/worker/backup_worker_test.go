package worker

import (
	"context"
	"errors"
	"strings"
	"testing"

	"financeiro/internal/amqp"
	"financeiro/internal/backup"
	backupmem "financeiro/internal/backup/memory"
	"financeiro/internal/storage"
)

const testDocument = `{
	"version": 2,
	"selectedMonth": "2025-06",
	"months": {
		"2025-05": {
			"competence": "2025-05",
			"valorFixo": "R$ 2.000,00",
			"rendaExtra": "",
			"cofrinho": null,
			"payments": [],
			"createdAt": "2025-05-01T00:00:00Z",
			"updatedAt": "2025-05-01T00:00:00Z"
		},
		"2025-06": {
			"competence": "2025-06",
			"valorFixo": "R$ 1.000,00",
			"rendaExtra": "R$ 0,00",
			"cofrinho": {"enabled": true, "value": "R$ 50,00"},
			"payments": [
				{"id": "a", "descricao": "Internet", "valor": "R$ 100,00", "vencimento": "05/06/2025", "pago": true},
				{"id": "b", "descricao": "Mercado", "valor": "R$ 200,00", "vencimento": "10/06/2025", "pago": false}
			],
			"createdAt": "2025-06-01T00:00:00Z",
			"updatedAt": "2025-06-15T12:00:00Z"
		}
	},
	"statusFilter": "todos",
	"sortOrder": "vencimento-asc"
}`

func seededState(t *testing.T, doc string) *storage.MemoryStore {
	t.Helper()
	state := storage.NewMemoryStore()
	if err := state.Save(context.Background(), []byte(doc)); err != nil {
		t.Fatalf("seed state: %v", err)
	}
	return state
}

func TestHandleMonthSync(t *testing.T) {
	dest := backupmem.New()
	w := NewBackupWorker(seededState(t, testDocument), dest)

	msg := &amqp.MonthSyncMessage{Competence: "2025-06", UpdatedAt: "2025-06-15T12:00:00Z"}
	if err := w.HandleMonthSync(context.Background(), msg); err != nil {
		t.Fatalf("handle month sync: %v", err)
	}

	summary, ok := dest.Summary("2025-06")
	if !ok {
		t.Fatal("summary not written")
	}
	if summary.ValorFixo != "R$ 1.000,00" {
		t.Fatalf("valorFixo = %q", summary.ValorFixo)
	}
	if summary.Totals.TotalPagos != 100 || summary.Totals.TotalAbertos != 200 {
		t.Fatalf("totals = %+v", summary.Totals)
	}
	if summary.Totals.TotalCofrinho != 50 {
		t.Fatalf("totalCofrinho = %v", summary.Totals.TotalCofrinho)
	}
	if summary.PaymentCount != 2 || summary.PaymentsAbertos != 1 {
		t.Fatalf("counts = %d/%d", summary.PaymentCount, summary.PaymentsAbertos)
	}
	if summary.UpdatedAt != "2025-06-15T12:00:00Z" {
		t.Fatalf("updatedAt = %q", summary.UpdatedAt)
	}
}

func TestHandleMonthSyncUnknownCompetenceSkips(t *testing.T) {
	dest := backupmem.New()
	w := NewBackupWorker(seededState(t, testDocument), dest)

	msg := &amqp.MonthSyncMessage{Competence: "1999-01"}
	if err := w.HandleMonthSync(context.Background(), msg); err != nil {
		t.Fatalf("stale competence must not error: %v", err)
	}
	if dest.Writes() != 0 {
		t.Fatal("stale competence must not write a summary")
	}
}

func TestHandleMonthSyncNoDocument(t *testing.T) {
	w := NewBackupWorker(storage.NewMemoryStore(), backupmem.New())

	err := w.HandleMonthSync(context.Background(), &amqp.MonthSyncMessage{Competence: "2025-06"})
	if err == nil {
		t.Fatal("expected error when no document is persisted")
	}
	if !strings.Contains(err.Error(), "load finance document") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestResyncAll(t *testing.T) {
	dest := backupmem.New()
	w := NewBackupWorker(seededState(t, testDocument), dest)

	if err := w.ResyncAll(context.Background()); err != nil {
		t.Fatalf("resync: %v", err)
	}
	if dest.Writes() != 2 {
		t.Fatalf("expected 2 summaries, got %d", dest.Writes())
	}
	if _, ok := dest.Summary("2025-05"); !ok {
		t.Fatal("2025-05 summary missing")
	}
}

func TestSyncSkipsUnchangedMonths(t *testing.T) {
	ctx := context.Background()
	dest := backupmem.New()
	state := seededState(t, testDocument)
	w := NewBackupWorker(state, dest)

	msg := &amqp.MonthSyncMessage{Competence: "2025-06", UpdatedAt: "2025-06-15T12:00:00Z"}
	if err := w.HandleMonthSync(ctx, msg); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if err := w.HandleMonthSync(ctx, msg); err != nil {
		t.Fatalf("repeat sync: %v", err)
	}
	if dest.Writes() != 1 {
		t.Fatalf("repeat of same revision must not rewrite, got %d writes", dest.Writes())
	}

	// Resync writes only the month that has not been mirrored yet.
	if err := w.ResyncAll(ctx); err != nil {
		t.Fatalf("resync: %v", err)
	}
	if dest.Writes() != 2 {
		t.Fatalf("resync should add only 2025-05, got %d writes", dest.Writes())
	}

	// A new revision of the month forces a rewrite.
	bumped := strings.Replace(testDocument, "2025-06-15T12:00:00Z", "2025-06-16T08:00:00Z", 1)
	if err := state.Save(ctx, []byte(bumped)); err != nil {
		t.Fatalf("reseed state: %v", err)
	}
	if err := w.HandleMonthSync(ctx, msg); err != nil {
		t.Fatalf("sync after bump: %v", err)
	}
	if dest.Writes() != 3 {
		t.Fatalf("changed month must rewrite, got %d writes", dest.Writes())
	}
	summary, _ := dest.Summary("2025-06")
	if summary.UpdatedAt != "2025-06-16T08:00:00Z" {
		t.Fatalf("updatedAt = %q", summary.UpdatedAt)
	}
}

type alwaysFailWriter struct{}

func (alwaysFailWriter) WriteMonthSummary(context.Context, backup.MonthSummary) (string, error) {
	return "", errors.New("unreachable")
}

func TestResyncAllReportsFailures(t *testing.T) {
	w := NewBackupWorker(seededState(t, testDocument), alwaysFailWriter{})

	err := w.ResyncAll(context.Background())
	if err == nil {
		t.Fatal("expected error when every month fails")
	}
	if !strings.Contains(err.Error(), "2 of 2 months failed") {
		t.Fatalf("unexpected error: %v", err)
	}
}
