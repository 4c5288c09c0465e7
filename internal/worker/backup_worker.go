// Package worker mirrors monthly ledgers from local storage into the
// backup destination.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"financeiro/internal/amqp"
	"financeiro/internal/backup"
	"financeiro/internal/cache"
	"financeiro/internal/core"
	"financeiro/internal/id"
	"financeiro/internal/storage"
)

// seenTTL bounds how long a skipped month can go without a fresh write.
// After expiry the next resync rewrites the row even when nothing changed.
const seenTTL = 24 * time.Hour

// BackupWorker reads the persisted finance document and writes month
// summaries through the SummaryWriter port. Months whose updatedAt has
// not moved since the last successful write are skipped, so the periodic
// resync stays cheap on an idle ledger.
type BackupWorker struct {
	state  storage.StateStore
	writer backup.SummaryWriter
	norm   core.Normalizer
	seen   *cache.LRUCache[string]
}

func NewBackupWorker(state storage.StateStore, writer backup.SummaryWriter) *BackupWorker {
	return &BackupWorker{
		state:  state,
		writer: writer,
		norm:   core.Normalizer{NewID: id.New, Now: time.Now},
		seen:   cache.NewLRUCache[string](240, seenTTL),
	}
}

// HandleMonthSync processes one month sync message. A competence that no
// longer exists in the document is skipped, not retried: the message is
// stale, the periodic resync covers anything it missed.
func (w *BackupWorker) HandleMonthSync(ctx context.Context, msg *amqp.MonthSyncMessage) error {
	store, err := w.loadStore(ctx)
	if err != nil {
		return fmt.Errorf("load finance document: %w", err)
	}

	month, ok := store.Months[msg.Competence]
	if !ok {
		slog.WarnContext(ctx, "Month sync for unknown competence, skipping",
			"competence", msg.Competence)
		return nil
	}

	if err := w.syncMonth(ctx, month); err != nil {
		return fmt.Errorf("write month summary: %w", err)
	}
	return nil
}

// ResyncAll rewrites the summary of every month in the document. It is
// the safety net for lost messages; per-month failures are logged and the
// remaining months still sync.
func (w *BackupWorker) ResyncAll(ctx context.Context) error {
	store, err := w.loadStore(ctx)
	if err != nil {
		return fmt.Errorf("load finance document: %w", err)
	}

	synced := 0
	failed := 0
	for _, key := range core.SortedMonthKeys(store.Months) {
		if err := w.syncMonth(ctx, store.Months[key]); err != nil {
			slog.ErrorContext(ctx, "Failed to sync month summary",
				"competence", key, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Resync completed",
		"total", len(store.Months),
		"synced", synced,
		"errors", failed)

	if failed > 0 {
		return fmt.Errorf("resync: %d of %d months failed", failed, len(store.Months))
	}
	return nil
}

// RunPeriodicResync calls ResyncAll on the given interval until ctx is
// cancelled.
func (w *BackupWorker) RunPeriodicResync(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.ResyncAll(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic resync failed", "error", err)
			}
			w.seen.CleanExpired()
		}
	}
}

// syncMonth writes one month's summary unless the destination already has
// this revision. The cache entry is only set after a successful write, so
// a failed write is always retried.
func (w *BackupWorker) syncMonth(ctx context.Context, month core.FinanceMonth) error {
	if last, ok := w.seen.Get(month.Competence); ok && last == month.UpdatedAt && month.UpdatedAt != "" {
		slog.DebugContext(ctx, "Month summary unchanged, skipping",
			"competence", month.Competence, "updated_at", month.UpdatedAt)
		return nil
	}

	ref, err := w.writer.WriteMonthSummary(ctx, Summarize(month))
	if err != nil {
		return err
	}
	w.seen.Set(month.Competence, month.UpdatedAt)

	slog.InfoContext(ctx, "Month summary synced",
		"competence", month.Competence,
		"sheets_ref", ref)
	return nil
}

// Summarize condenses a month into its backup row.
func Summarize(month core.FinanceMonth) backup.MonthSummary {
	open := 0
	for _, p := range month.Payments {
		if !p.Pago {
			open++
		}
	}

	return backup.MonthSummary{
		Competence:      month.Competence,
		ValorFixo:       month.ValorFixo,
		RendaExtra:      month.RendaExtra,
		Totals:          core.CalculateTotals(month.ValorFixo, month.RendaExtra, month.Cofrinho, month.Payments),
		PaymentCount:    len(month.Payments),
		PaymentsAbertos: open,
		UpdatedAt:       month.UpdatedAt,
	}
}

func (w *BackupWorker) loadStore(ctx context.Context) (core.FinanceStore, error) {
	data, ok, err := w.state.Load(ctx)
	if err != nil {
		return core.FinanceStore{}, err
	}
	if !ok {
		return core.FinanceStore{}, fmt.Errorf("no persisted finance document")
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return core.FinanceStore{}, fmt.Errorf("decode finance document: %w", err)
	}

	normalized, ok := w.norm.Store(raw)
	if !ok {
		return core.FinanceStore{}, core.ErrInvalidDocument
	}
	return normalized.Store, nil
}
