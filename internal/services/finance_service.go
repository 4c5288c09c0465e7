// Package services orchestrates the finance document: persistence with
// debounced saves, month lifecycle, payment edits and import/export.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"financeiro/internal/core"
	"financeiro/internal/id"
	"financeiro/internal/storage"
)

// Publisher notifies downstream consumers that a month changed. The AMQP
// client satisfies it; a nil Publisher disables notifications.
type Publisher interface {
	PublishMonthSync(ctx context.Context, competence, updatedAt string) error
}

// ExportFilename is the suggested name for a downloaded backup.
const ExportFilename = "financeiro.json"

// storeDocument is the persisted JSON shape: the store plus the display
// preferences that ride along with it.
type storeDocument struct {
	core.FinanceStore
	StatusFilter core.StatusFilter `json:"statusFilter"`
	SortOrder    core.SortOrder    `json:"sortOrder"`
}

// UpdatePaymentParams is a partial payment edit. Nil fields are left
// untouched; non-nil fields pass through their sanitizer before landing.
type UpdatePaymentParams struct {
	Descricao  *string
	Valor      *string
	Vencimento *string
	Pago       *bool
	Recorrente *bool
}

// StateSnapshot is a consistent read of the whole service state.
type StateSnapshot struct {
	Store        core.FinanceStore `json:"store"`
	StatusFilter core.StatusFilter `json:"statusFilter"`
	SortOrder    core.SortOrder    `json:"sortOrder"`
}

// FinanceService owns the in-memory document and mediates every mutation.
// Writes are debounced: each mutation restarts the timer and only the
// state current when it fires is persisted.
type FinanceService struct {
	state     storage.StateStore
	publisher Publisher
	debounce  time.Duration

	mu     sync.Mutex
	store  core.FinanceStore
	filter core.StatusFilter
	order  core.SortOrder
	timer  *time.Timer

	norm  core.Normalizer
	newID func() string
	now   func() time.Time
}

func NewFinanceService(state storage.StateStore, publisher Publisher, debounce time.Duration) *FinanceService {
	s := &FinanceService{
		state:     state,
		publisher: publisher,
		debounce:  debounce,
		newID:     id.New,
		now:       time.Now,
	}
	s.norm = core.Normalizer{NewID: func() string { return s.newID() }, Now: func() time.Time { return s.now() }}
	s.store = core.NewEmptyStore(s.now())
	s.filter = core.FilterTodos
	s.order = core.SortVencimentoAsc
	return s
}

// Restore loads the persisted snapshot. A missing, unreadable or
// unrecognizable snapshot falls back to a fresh document; restore never
// fails the startup.
func (s *FinanceService) Restore(ctx context.Context) error {
	data, ok, err := s.state.Load(ctx)
	if err != nil {
		return fmt.Errorf("load finance state: %w", err)
	}
	if !ok {
		slog.InfoContext(ctx, "No persisted finance state, starting fresh")
		return nil
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		slog.WarnContext(ctx, "Persisted finance state is not valid JSON, starting fresh", "error", err)
		return nil
	}

	normalized, ok := s.norm.Store(raw)
	if !ok {
		slog.WarnContext(ctx, "Persisted finance state is unrecognizable, starting fresh")
		return nil
	}

	s.mu.Lock()
	s.store = normalized.Store
	s.filter = prefOr(normalized.StatusFilter, core.FilterTodos)
	s.order = prefOr(normalized.SortOrder, core.SortVencimentoAsc)
	s.mu.Unlock()

	slog.InfoContext(ctx, "Finance state restored",
		"months", len(normalized.Store.Months),
		"selected", normalized.Store.SelectedMonth)
	return nil
}

// Snapshot returns a deep copy of the current state.
func (s *FinanceService) Snapshot() StateSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StateSnapshot{
		Store:        s.store.Clone(),
		StatusFilter: s.filter,
		SortOrder:    s.order,
	}
}

// SelectedMonth returns a copy of the currently selected ledger.
func (s *FinanceService) SelectedMonth() core.FinanceMonth {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Months[s.store.SelectedMonth].Clone()
}

// SelectMonth switches the selected competence. Selection does not touch
// the month's updatedAt. A missing ledger is only ever synthesized during
// restore, so an unknown key is an error here.
func (s *FinanceService) SelectMonth(ctx context.Context, key string) (core.FinanceMonth, error) {
	if !core.IsMonthKey(key) {
		return core.FinanceMonth{}, fmt.Errorf("%w: %q", core.ErrMonthNotFound, key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	month, ok := s.store.Months[key]
	if !ok {
		return core.FinanceMonth{}, fmt.Errorf("%w: %q", core.ErrMonthNotFound, key)
	}
	s.store.SelectedMonth = key
	s.scheduleSaveLocked()
	return month.Clone(), nil
}

// AddMonth creates the month after the latest one, carrying forward fixed
// income, savings config and recurring payments, and selects it.
func (s *FinanceService) AddMonth(ctx context.Context) (core.FinanceMonth, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	latest := core.LatestMonthKey(s.store.Months)
	key := core.NextMonthKey(latest, s.now())
	for {
		if _, exists := s.store.Months[key]; !exists {
			break
		}
		key = core.NextMonthKey(key, s.now())
	}

	var month core.FinanceMonth
	if previous, ok := s.store.Months[latest]; ok {
		month = core.NewMonthFromPrevious(key, previous, s.now(), s.newID)
	} else {
		month = core.NewEmptyMonth(key, s.now())
	}

	s.store.Months[key] = month
	s.store.SelectedMonth = key
	s.scheduleSaveLocked()

	slog.InfoContext(ctx, "Month created", "competence", key, "from", latest)
	return month.Clone(), nil
}

// SetValorFixo updates the selected month's fixed income.
func (s *FinanceService) SetValorFixo(ctx context.Context, input string) core.FinanceMonth {
	return s.editSelected(func(m *core.FinanceMonth) {
		m.ValorFixo = core.FormatCurrencyInput(input)
	})
}

// SetRendaExtra updates the selected month's extra income.
func (s *FinanceService) SetRendaExtra(ctx context.Context, input string) core.FinanceMonth {
	return s.editSelected(func(m *core.FinanceMonth) {
		m.RendaExtra = core.FormatCurrencyInput(input)
	})
}

// SetCofrinho updates the selected month's savings allocation. An
// all-empty config clears it.
func (s *FinanceService) SetCofrinho(ctx context.Context, value, goal string) core.FinanceMonth {
	formattedValue := core.FormatCurrencyInput(value)
	formattedGoal := core.FormatCurrencyInput(goal)
	return s.editSelected(func(m *core.FinanceMonth) {
		if formattedValue == "" && formattedGoal == "" {
			m.Cofrinho = nil
			return
		}
		m.Cofrinho = &core.CofrinhoConfig{
			Enabled: true,
			Value:   formattedValue,
			Goal:    formattedGoal,
		}
	})
}

// AddPayment appends a sanitized payment to the selected month.
func (s *FinanceService) AddPayment(ctx context.Context, descricao, valor, vencimento string, recorrente bool) core.Payment {
	payment := core.Payment{
		ID:         s.newID(),
		Descricao:  core.SanitizeText(descricao),
		Valor:      core.FormatCurrencyInput(valor),
		Vencimento: core.SanitizeDate(vencimento),
		Recorrente: recorrente,
	}

	s.editSelected(func(m *core.FinanceMonth) {
		m.Payments = append(m.Payments, payment)
	})

	slog.InfoContext(ctx, "Payment added",
		"payment_id", payment.ID,
		"description", payment.Descricao)
	return payment
}

// UpdatePayment applies a partial edit to one payment of the selected
// month.
func (s *FinanceService) UpdatePayment(ctx context.Context, paymentID string, params UpdatePaymentParams) (core.Payment, error) {
	var updated core.Payment
	found := false

	s.editSelected(func(m *core.FinanceMonth) {
		for i := range m.Payments {
			if m.Payments[i].ID != paymentID {
				continue
			}
			p := &m.Payments[i]
			if params.Descricao != nil {
				p.Descricao = core.SanitizeText(*params.Descricao)
			}
			if params.Valor != nil {
				p.Valor = core.FormatCurrencyInput(*params.Valor)
			}
			if params.Vencimento != nil {
				p.Vencimento = core.SanitizeDate(*params.Vencimento)
			}
			if params.Pago != nil {
				p.Pago = *params.Pago
			}
			if params.Recorrente != nil {
				p.Recorrente = *params.Recorrente
			}
			updated = *p
			found = true
			return
		}
	})

	if !found {
		return core.Payment{}, fmt.Errorf("%w: %q", core.ErrPaymentNotFound, paymentID)
	}
	return updated, nil
}

// RemovePayment deletes one payment of the selected month.
func (s *FinanceService) RemovePayment(ctx context.Context, paymentID string) error {
	found := false
	s.editSelected(func(m *core.FinanceMonth) {
		for i := range m.Payments {
			if m.Payments[i].ID == paymentID {
				m.Payments = append(m.Payments[:i], m.Payments[i+1:]...)
				found = true
				return
			}
		}
	})

	if !found {
		return fmt.Errorf("%w: %q", core.ErrPaymentNotFound, paymentID)
	}
	return nil
}

// SetPreferences updates the display filter and sort order.
func (s *FinanceService) SetPreferences(ctx context.Context, filter core.StatusFilter, order core.SortOrder) error {
	if !filter.IsValid() {
		return fmt.Errorf("invalid status filter %q", filter)
	}
	if !order.IsValid() {
		return fmt.Errorf("invalid sort order %q", order)
	}

	s.mu.Lock()
	s.filter = filter
	s.order = order
	s.scheduleSaveLocked()
	s.mu.Unlock()
	return nil
}

// Totals computes the derived metrics of the selected month.
func (s *FinanceService) Totals() core.Totals {
	s.mu.Lock()
	month := s.store.Months[s.store.SelectedMonth]
	s.mu.Unlock()
	return core.CalculateTotals(month.ValorFixo, month.RendaExtra, month.Cofrinho, month.Payments)
}

// VisiblePayments returns the selected month's payments under the current
// filter and sort order.
func (s *FinanceService) VisiblePayments() []core.Payment {
	s.mu.Lock()
	month := s.store.Months[s.store.SelectedMonth]
	filter, order := s.filter, s.order
	s.mu.Unlock()
	return core.VisiblePayments(month.Payments, filter, order)
}

// Export renders the current document as an indented JSON backup.
func (s *FinanceService) Export() (string, []byte, error) {
	s.mu.Lock()
	doc := storeDocument{
		FinanceStore: s.store.Clone(),
		StatusFilter: s.filter,
		SortOrder:    s.order,
	}
	s.mu.Unlock()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", nil, fmt.Errorf("marshal export: %w", err)
	}
	return ExportFilename, data, nil
}

// Import replaces state from an uploaded backup. The file is rejected
// outright when it cannot be normalized; on success imported months
// overwrite same-key months and the file's preferences take effect.
func (s *FinanceService) Import(ctx context.Context, data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return core.ErrInvalidDocument
	}

	normalized, ok := s.norm.Store(raw)
	if !ok {
		return core.ErrInvalidDocument
	}

	s.mu.Lock()
	for key, month := range normalized.Store.Months {
		s.store.Months[key] = month
	}
	s.store.SelectedMonth = normalized.Store.SelectedMonth
	s.store.Version = core.StoreVersion
	s.filter = prefOr(normalized.StatusFilter, core.FilterTodos)
	s.order = prefOr(normalized.SortOrder, core.SortVencimentoAsc)
	s.scheduleSaveLocked()
	s.mu.Unlock()

	slog.InfoContext(ctx, "Finance state imported",
		"months", len(normalized.Store.Months),
		"selected", normalized.Store.SelectedMonth)
	return nil
}

// Flush persists any pending debounced write immediately.
func (s *FinanceService) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	return s.persist(ctx)
}

// Close flushes pending state. The underlying store is closed by its
// owner.
func (s *FinanceService) Close() error {
	return s.Flush(context.Background())
}

// editSelected applies fn to a copy of the selected month, stamps it and
// swaps it in, then schedules a save.
func (s *FinanceService) editSelected(fn func(*core.FinanceMonth)) core.FinanceMonth {
	s.mu.Lock()
	defer s.mu.Unlock()

	month := s.store.Months[s.store.SelectedMonth].Clone()
	fn(&month)
	month.UpdatedAt = core.TimestampAt(s.now())
	s.store.Months[s.store.SelectedMonth] = month
	s.scheduleSaveLocked()
	return month.Clone()
}

// scheduleSaveLocked restarts the debounce timer. Must be called with mu
// held. Earlier pending writes are discarded so only the newest state
// reaches storage.
func (s *FinanceService) scheduleSaveLocked() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		if err := s.persist(context.Background()); err != nil {
			slog.Error("Debounced save failed", "error", err)
		}
	})
}

// persist writes the current document and notifies the publisher.
func (s *FinanceService) persist(ctx context.Context) error {
	s.mu.Lock()
	doc := storeDocument{
		FinanceStore: s.store.Clone(),
		StatusFilter: s.filter,
		SortOrder:    s.order,
	}
	s.mu.Unlock()

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal finance state: %w", err)
	}
	if err := s.state.Save(ctx, data); err != nil {
		return fmt.Errorf("save finance state: %w", err)
	}

	selected, ok := doc.Months[doc.SelectedMonth]
	if ok {
		s.publishMonthSync(ctx, selected.Competence, selected.UpdatedAt)
	}
	return nil
}

func (s *FinanceService) publishMonthSync(ctx context.Context, competence, updatedAt string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishMonthSync(ctx, competence, updatedAt); err != nil {
		// The document is already saved locally, a lost notification only
		// delays the backup until the next resync.
		slog.ErrorContext(ctx, "Failed to publish month sync",
			"competence", competence, "error", err)
	}
}

func prefOr[T interface {
	core.StatusFilter | core.SortOrder
}](value, fallback T) T {
	if value == "" {
		return fallback
	}
	return value
}
