package core

import "time"

// Normalizer repairs untrusted decoded JSON (persisted state or an
// imported file) into a well-formed document. The policy is fail closed at
// the shape level, repair leniently within a recognized shape: a document
// that cannot be classified as either the multi-month or the legacy
// single-month form is rejected outright, while individual defective
// fields inside a recognized form are silently replaced with sane
// defaults.
//
// The zero value is not usable; collaborators for identity and time are
// injected so normalization stays deterministic under test.
type Normalizer struct {
	NewID func() string
	Now   func() time.Time
}

// NormalizedStore is the outcome of a successful normalization: the
// canonical store plus whichever display preferences survived validation
// (empty when absent or out of set).
type NormalizedStore struct {
	Store        FinanceStore
	StatusFilter StatusFilter
	SortOrder    SortOrder
}

// Payment repairs one untrusted payment record. Only a non-record input is
// rejected; every field defect is repaired in place.
func (n Normalizer) Payment(v any) (Payment, bool) {
	record, ok := v.(map[string]any)
	if !ok || record == nil {
		return Payment{}, false
	}

	id := ""
	if s, ok := record["id"].(string); ok && trimNotBlank(s) {
		id = s
	} else {
		id = n.NewID()
	}

	return Payment{
		ID:         id,
		Descricao:  normalizeTextValue(record["descricao"]),
		Valor:      normalizeMoneyValue(record["valor"]),
		Vencimento: normalizeDateValue(record["vencimento"]),
		Pago:       truthy(record["pago"]),
		Recorrente: truthy(record["recorrente"]),
	}, true
}

// Cofrinho repairs a savings config, collapsing an all-empty one to nil.
func (n Normalizer) Cofrinho(v any) *CofrinhoConfig {
	record, ok := v.(map[string]any)
	if !ok || record == nil {
		return nil
	}

	enabled := truthy(record["enabled"])
	value := normalizeMoneyValue(record["value"])
	goal := ""
	if _, present := record["goal"]; present {
		goal = normalizeMoneyValue(record["goal"])
	}

	if !enabled && value == "" && goal == "" {
		return nil
	}
	return &CofrinhoConfig{Enabled: enabled, Value: value, Goal: goal}
}

// Month repairs one month entry of the multi-month shape. The payment
// array is accepted under either the current "payments" name or the legacy
// "pagamentos" alias; a legacy scalar "destinado" becomes an enabled
// savings config. The provided key replaces an invalid or missing
// competence field.
func (n Normalizer) Month(key string, v any) (FinanceMonth, bool) {
	record, ok := v.(map[string]any)
	if !ok || record == nil {
		return FinanceMonth{}, false
	}

	var rawPayments []any
	if arr, ok := record["payments"].([]any); ok {
		rawPayments = arr
	} else if arr, ok := record["pagamentos"].([]any); ok {
		rawPayments = arr
	}
	payments := make([]Payment, 0, len(rawPayments))
	for _, item := range rawPayments {
		if p, ok := n.Payment(item); ok {
			payments = append(payments, p)
		}
	}

	var cofrinho *CofrinhoConfig
	if raw, present := record["cofrinho"]; present {
		cofrinho = n.Cofrinho(raw)
	} else if raw, present := record["destinado"]; present {
		cofrinho = &CofrinhoConfig{Enabled: true, Value: normalizeMoneyValue(raw)}
	}

	competence := key
	if s, ok := record["competence"].(string); ok && IsMonthKey(s) {
		competence = s
	}

	ts := TimestampAt(n.Now())
	return FinanceMonth{
		Competence: competence,
		ValorFixo:  normalizeMoneyValue(record["valorFixo"]),
		RendaExtra: normalizeMoneyValue(record["rendaExtra"]),
		Cofrinho:   cofrinho,
		Payments:   payments,
		CreatedAt:  stringOr(record["createdAt"], ts),
		UpdatedAt:  stringOr(record["updatedAt"], ts),
	}, true
}

// Store classifies and repairs a whole decoded document. The second return
// is false when the input is unrecoverable; callers must then leave any
// existing state untouched.
func (n Normalizer) Store(v any) (*NormalizedStore, bool) {
	record, ok := v.(map[string]any)
	if !ok || record == nil {
		return nil, false
	}

	if rawMonths, ok := record["months"].(map[string]any); ok {
		return n.multiMonth(record, rawMonths), true
	}
	return n.legacy(record)
}

// multiMonth handles the current shape: entries under malformed keys or
// that fail month repair are discarded, the selected competence is
// re-resolved and, when it points at nothing, an empty month is
// synthesized so the selection invariant holds.
func (n Normalizer) multiMonth(record map[string]any, rawMonths map[string]any) *NormalizedStore {
	months := make(map[string]FinanceMonth)
	for key, value := range rawMonths {
		if !IsMonthKey(key) {
			continue
		}
		if month, ok := n.Month(key, value); ok {
			months[key] = month
		}
	}

	selected := ""
	if s, ok := record["selectedMonth"].(string); ok && IsMonthKey(s) {
		selected = s
	} else if latest := LatestMonthKey(months); latest != "" {
		selected = latest
	} else {
		selected = MonthKeyAt(n.Now())
	}

	if _, ok := months[selected]; !ok {
		months[selected] = NewEmptyMonth(selected, n.Now())
	}

	return &NormalizedStore{
		Store: FinanceStore{
			Version:       StoreVersion,
			SelectedMonth: selected,
			Months:        months,
		},
		StatusFilter: recoverFilter(record["statusFilter"]),
		SortOrder:    recoverOrder(record["sortOrder"]),
	}
}

// legacy handles the version-1 single-month shape. Unlike the current
// shape, out-of-set enumerated fields or a non-array payment list reject
// the whole document.
func (n Normalizer) legacy(record map[string]any) (*NormalizedStore, bool) {
	if raw, present := record["statusFilter"]; present {
		if s, ok := raw.(string); !ok || !StatusFilter(s).IsValid() {
			return nil, false
		}
	}
	if raw, present := record["sortOrder"]; present {
		if s, ok := raw.(string); !ok || !SortOrder(s).IsValid() {
			return nil, false
		}
	}

	var rawPayments []any
	if raw, present := record["pagamentos"]; present {
		arr, ok := raw.([]any)
		if !ok {
			return nil, false
		}
		rawPayments = arr
	}

	payments := make([]Payment, 0, len(rawPayments))
	for _, item := range rawPayments {
		if p, ok := n.Payment(item); ok {
			payments = append(payments, p)
		}
	}

	key := MonthKeyAt(n.Now())
	month := NewEmptyMonth(key, n.Now())
	month.ValorFixo = normalizeMoneyValue(record["valorFixo"])
	month.RendaExtra = normalizeMoneyValue(record["rendaExtra"])
	month.Cofrinho = &CofrinhoConfig{Enabled: true, Value: normalizeMoneyValue(record["destinado"])}
	month.Payments = payments

	return &NormalizedStore{
		Store: FinanceStore{
			Version:       StoreVersion,
			SelectedMonth: key,
			Months:        map[string]FinanceMonth{key: month},
		},
		StatusFilter: recoverFilter(record["statusFilter"]),
		SortOrder:    recoverOrder(record["sortOrder"]),
	}, true
}

func normalizeMoneyValue(v any) string {
	switch value := v.(type) {
	case float64:
		return FormatBRL(value)
	case int:
		return FormatBRL(float64(value))
	case int64:
		return FormatBRL(float64(value))
	case string:
		return FormatCurrencyInput(value)
	}
	return ""
}

func normalizeTextValue(v any) string {
	if s, ok := v.(string); ok {
		return SanitizeText(s)
	}
	return ""
}

func normalizeDateValue(v any) string {
	if s, ok := v.(string); ok {
		return SanitizeDate(s)
	}
	return ""
}

func recoverFilter(v any) StatusFilter {
	if s, ok := v.(string); ok && StatusFilter(s).IsValid() {
		return StatusFilter(s)
	}
	return ""
}

func recoverOrder(v any) SortOrder {
	if s, ok := v.(string); ok && SortOrder(s).IsValid() {
		return SortOrder(s)
	}
	return ""
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fallback
}

func trimNotBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return true
		}
	}
	return false
}

// truthy mirrors loose boolean coercion for flag fields arriving from
// hand-edited or legacy JSON: absent, false, 0, "" and null are false,
// everything else is true.
func truthy(v any) bool {
	switch value := v.(type) {
	case nil:
		return false
	case bool:
		return value
	case string:
		return value != ""
	case float64:
		return value != 0
	}
	return true
}
