package core

import "sort"

// VisiblePayments filters a payment list by paid status and stable-sorts
// it per the requested order. The input slice is never mutated.
//
// Every ordering pushes entries without a usable key (invalid date, empty
// or unparseable amount) after all entries with one, regardless of
// direction, so half-typed rows never crowd the top of the list.
// SortNenhum keeps the filtered list in insertion order.
func VisiblePayments(payments []Payment, filter StatusFilter, order SortOrder) []Payment {
	filtered := make([]Payment, 0, len(payments))
	for _, p := range payments {
		switch filter {
		case FilterPagos:
			if !p.Pago {
				continue
			}
		case FilterAbertos:
			if p.Pago {
				continue
			}
		}
		filtered = append(filtered, p)
	}

	if order == SortNenhum {
		return filtered
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return compare(filtered[i], filtered[j], order) < 0
	})
	return filtered
}

func compare(a, b Payment, order SortOrder) int {
	switch order {
	case SortVencimentoAsc:
		return compareDates(a, b, true)
	case SortVencimentoDesc:
		return compareDates(a, b, false)
	case SortValorAsc:
		return compareAmounts(a, b, true)
	case SortValorDesc:
		return compareAmounts(a, b, false)
	case SortStatusAbertos:
		if a.Pago != b.Pago {
			if !a.Pago {
				return -1
			}
			return 1
		}
		return compareDates(a, b, true)
	case SortStatusPagos:
		if a.Pago != b.Pago {
			if a.Pago {
				return -1
			}
			return 1
		}
		return compareDates(a, b, true)
	}
	return 0
}

func compareDates(a, b Payment, asc bool) int {
	ak, aok := DateSortKey(a.Vencimento)
	bk, bok := DateSortKey(b.Vencimento)
	if c, decided := missingLast(aok, bok); decided {
		return c
	}
	return direction(float64(ak), float64(bk), asc)
}

func compareAmounts(a, b Payment, asc bool) int {
	av, aok := amountKey(a)
	bv, bok := amountKey(b)
	if c, decided := missingLast(aok, bok); decided {
		return c
	}
	return direction(av, bv, asc)
}

// amountKey treats an empty valor as missing so blank rows sort last; a
// non-empty string that yields no number (lone currency symbol remnants)
// is missing as well.
func amountKey(p Payment) (float64, bool) {
	if p.Valor == "" {
		return 0, false
	}
	return parseAmount(p.Valor)
}

// missingLast decides a comparison purely from key presence: both missing
// compare equal, a missing key always loses to a present one.
func missingLast(aok, bok bool) (int, bool) {
	switch {
	case aok && bok:
		return 0, false
	case !aok && !bok:
		return 0, true
	case !aok:
		return 1, true
	default:
		return -1, true
	}
}

func direction(a, b float64, asc bool) int {
	if a == b {
		return 0
	}
	if (a < b) == asc {
		return -1
	}
	return 1
}
