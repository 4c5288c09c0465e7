package core

import "strings"

// savingsKeyword classifies a payment as savings-directed when its label
// mentions the piggy bank. Matching is a plain case-insensitive substring
// on the free-text description; the predicate is deliberately independent
// from the paid flag.
const savingsKeyword = "cofrinho"

// IsSavingsLabel reports whether a payment description counts toward the
// savings total.
func IsSavingsLabel(text string) bool {
	return strings.Contains(strings.ToLower(text), savingsKeyword)
}

// CalculateTotals derives the financial summary of one month. It is pure
// and deterministic; money strings that do not parse contribute zero.
//
// ValorUtilizavel and RestanteCofrinho are floored at zero so an
// over-spent month never renders a negative balance. RendaExtra is
// accepted (and persisted by callers) but does not participate in either
// formula; the original product never folded it in and that behavior is
// kept until decided otherwise.
//
// A payment whose label names the piggy bank counts toward TotalCofrinho
// regardless of its paid state, so a single open payment can contribute to
// both TotalAbertos and TotalCofrinho at once.
func CalculateTotals(valorFixo, rendaExtra string, cofrinho *CofrinhoConfig, payments []Payment) Totals {
	_ = rendaExtra

	var totals Totals
	for _, p := range payments {
		amount := ToNumber(p.Valor)
		if p.Pago {
			totals.TotalPagos += amount
		} else {
			totals.TotalAbertos += amount
		}
		if IsSavingsLabel(p.Descricao) {
			totals.TotalCofrinho += amount
		}
	}

	destinado := ""
	if cofrinho != nil {
		destinado = cofrinho.Value
	}

	totals.ValorUtilizavel = max(ToNumber(valorFixo)-totals.TotalPagos, 0)
	totals.RestanteCofrinho = max(ToNumber(destinado)+totals.TotalCofrinho, 0)
	return totals
}
