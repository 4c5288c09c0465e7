package core

import (
	"sort"
	"time"
)

// TimestampAt renders t as the ISO-8601 string stored in the document.
func TimestampAt(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// NewEmptyMonth builds a blank ledger for the given competence.
func NewEmptyMonth(key string, now time.Time) FinanceMonth {
	ts := TimestampAt(now)
	return FinanceMonth{
		Competence: key,
		ValorFixo:  "",
		RendaExtra: "",
		Cofrinho:   nil,
		Payments:   []Payment{},
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
}

// NewMonthFromPrevious carries a ledger forward into a new competence:
// fixed income and the savings config are copied, extra income resets to
// zero and only recurring payments survive, each under a fresh identity.
func NewMonthFromPrevious(key string, previous FinanceMonth, now time.Time, newID func() string) FinanceMonth {
	ts := TimestampAt(now)

	var carried []Payment
	for _, p := range previous.Payments {
		if !p.Recorrente {
			continue
		}
		copied := p
		copied.ID = newID()
		carried = append(carried, copied)
	}
	if carried == nil {
		carried = []Payment{}
	}

	var cofrinho *CofrinhoConfig
	if previous.Cofrinho != nil {
		c := *previous.Cofrinho
		cofrinho = &c
	}

	return FinanceMonth{
		Competence: key,
		ValorFixo:  previous.ValorFixo,
		RendaExtra: FormatCurrencyInput("0"),
		Cofrinho:   cofrinho,
		Payments:   carried,
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
}

// NewEmptyStore builds the initial document: the current calendar month,
// empty and selected.
func NewEmptyStore(now time.Time) FinanceStore {
	key := MonthKeyAt(now)
	return FinanceStore{
		Version:       StoreVersion,
		SelectedMonth: key,
		Months: map[string]FinanceMonth{
			key: NewEmptyMonth(key, now),
		},
	}
}

// SortedMonthKeys returns the competence keys in chronological order;
// lexicographic order of yyyy-mm keys is chronological.
func SortedMonthKeys(months map[string]FinanceMonth) []string {
	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LatestMonthKey returns the chronologically last competence, or "" for an
// empty map.
func LatestMonthKey(months map[string]FinanceMonth) string {
	keys := SortedMonthKeys(months)
	if len(keys) == 0 {
		return ""
	}
	return keys[len(keys)-1]
}
