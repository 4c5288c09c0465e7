// Package core holds the domain model and the pure functions of the
// ledger: input sanitizing, date validation, derived totals and the
// normalization of untrusted persisted documents.
package core

import "errors"

// StoreVersion is the current schema version of the persisted document.
const StoreVersion = 2

type (
	// StatusFilter selects which payments are visible by paid state.
	StatusFilter string

	// SortOrder is one of the fixed display orderings for a payment list.
	SortOrder string

	// Payment is a single entry of a monthly ledger. Valor and Vencimento
	// are display strings (locale money and dd/mm/yyyy); both may be empty
	// while the entry is being typed, but never carry garbage once
	// normalized.
	Payment struct {
		ID         string `json:"id"`
		Descricao  string `json:"descricao"`
		Valor      string `json:"valor"`
		Vencimento string `json:"vencimento"`
		Pago       bool   `json:"pago"`
		Recorrente bool   `json:"recorrente,omitempty"`
	}

	// CofrinhoConfig is the savings allocation of a month. A month carries
	// nil instead of an all-empty config.
	CofrinhoConfig struct {
		Enabled bool   `json:"enabled"`
		Value   string `json:"value"`
		Goal    string `json:"goal,omitempty"`
	}

	// FinanceMonth is one monthly ledger keyed by its competence (yyyy-mm).
	FinanceMonth struct {
		Competence string          `json:"competence"`
		ValorFixo  string          `json:"valorFixo"`
		RendaExtra string          `json:"rendaExtra"`
		Cofrinho   *CofrinhoConfig `json:"cofrinho"`
		Payments   []Payment       `json:"payments"`
		CreatedAt  string          `json:"createdAt"`
		UpdatedAt  string          `json:"updatedAt"`
	}

	// FinanceStore is the whole persisted document. Every key of Months is
	// a valid month key equal to its month's Competence, and SelectedMonth
	// always resolves to an existing entry after normalization.
	FinanceStore struct {
		Version       int                     `json:"version"`
		SelectedMonth string                  `json:"selectedMonth"`
		Months        map[string]FinanceMonth `json:"months"`
	}

	// Totals are the derived financial metrics of a single month.
	Totals struct {
		TotalPagos       float64 `json:"totalPagos"`
		TotalAbertos     float64 `json:"totalAbertos"`
		TotalCofrinho    float64 `json:"totalCofrinho"`
		ValorUtilizavel  float64 `json:"valorUtilizavel"`
		RestanteCofrinho float64 `json:"restanteCofrinho"`
	}
)

const (
	FilterTodos   StatusFilter = "todos"
	FilterAbertos StatusFilter = "abertos"
	FilterPagos   StatusFilter = "pagos"
)

const (
	SortVencimentoAsc  SortOrder = "vencimento-asc"
	SortVencimentoDesc SortOrder = "vencimento-desc"
	SortValorAsc       SortOrder = "valor-asc"
	SortValorDesc      SortOrder = "valor-desc"
	SortStatusAbertos  SortOrder = "status-abertos"
	SortStatusPagos    SortOrder = "status-pagos"
	SortNenhum         SortOrder = "nenhum"
)

var (
	ErrInvalidDocument = errors.New("invalid document")
	ErrMonthNotFound   = errors.New("month not found")
	ErrPaymentNotFound = errors.New("payment not found")
)

// IsValid reports whether f is one of the three enumerated filters.
func (f StatusFilter) IsValid() bool {
	switch f {
	case FilterTodos, FilterAbertos, FilterPagos:
		return true
	}
	return false
}

// IsValid reports whether o is one of the seven enumerated orders.
func (o SortOrder) IsValid() bool {
	switch o {
	case SortVencimentoAsc, SortVencimentoDesc, SortValorAsc, SortValorDesc,
		SortStatusAbertos, SortStatusPagos, SortNenhum:
		return true
	}
	return false
}

// Clone returns a deep copy of the month. Mutations are applied to whole
// copies so readers never observe a partially edited month.
func (m FinanceMonth) Clone() FinanceMonth {
	out := m
	if m.Cofrinho != nil {
		c := *m.Cofrinho
		out.Cofrinho = &c
	}
	out.Payments = append([]Payment(nil), m.Payments...)
	return out
}

// Clone returns a deep copy of the store.
func (s FinanceStore) Clone() FinanceStore {
	out := s
	out.Months = make(map[string]FinanceMonth, len(s.Months))
	for k, v := range s.Months {
		out.Months[k] = v.Clone()
	}
	return out
}
