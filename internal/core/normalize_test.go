package core

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"
)

func testNormalizer() Normalizer {
	seq := 0
	return Normalizer{
		NewID: func() string {
			seq++
			return fmt.Sprintf("gen-%d", seq)
		},
		Now: func() time.Time {
			return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
		},
	}
}

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}
	return v
}

func TestNormalizePayment(t *testing.T) {
	n := testNormalizer()

	cases := []struct {
		name string
		in   string
		want Payment
	}{
		{
			name: "well formed",
			in:   `{"id":"p1","descricao":"Conta de luz","valor":"R$ 120,00","vencimento":"10/07/2025","pago":true}`,
			want: Payment{ID: "p1", Descricao: "Conta de luz", Valor: "R$ 120,00", Vencimento: "10/07/2025", Pago: true},
		},
		{
			name: "numeric valor",
			in:   `{"id":"p2","descricao":"Mercado","valor":1234.5,"vencimento":"","pago":false}`,
			want: Payment{ID: "p2", Descricao: "Mercado", Valor: "R$ 1.234,50"},
		},
		{
			name: "blank id replaced",
			in:   `{"id":"   ","descricao":"x1!","valor":null,"vencimento":null}`,
			want: Payment{ID: "gen-1", Descricao: "x"},
		},
		{
			name: "missing fields repaired",
			in:   `{}`,
			want: Payment{ID: "gen-2"},
		},
		{
			name: "truthy flags",
			in:   `{"id":"p3","pago":"sim","recorrente":1}`,
			want: Payment{ID: "p3", Pago: true, Recorrente: true},
		},
	}
	for _, tc := range cases {
		got, ok := n.Payment(decode(t, tc.in))
		if !ok {
			t.Fatalf("%s: unexpected rejection", tc.name)
		}
		if got != tc.want {
			t.Fatalf("%s: got %+v, want %+v", tc.name, got, tc.want)
		}
	}
}

func TestNormalizePaymentRejectsNonRecords(t *testing.T) {
	n := testNormalizer()
	for _, raw := range []string{`null`, `"texto"`, `42`, `[1,2]`} {
		if _, ok := n.Payment(decode(t, raw)); ok {
			t.Fatalf("expected %s to be rejected", raw)
		}
	}
}

func TestNormalizeCofrinho(t *testing.T) {
	n := testNormalizer()

	if got := n.Cofrinho(decode(t, `{"enabled":false,"value":"","goal":""}`)); got != nil {
		t.Fatalf("all-empty config must collapse to nil, got %+v", got)
	}
	if got := n.Cofrinho(decode(t, `null`)); got != nil {
		t.Fatalf("null must stay nil, got %+v", got)
	}

	got := n.Cofrinho(decode(t, `{"enabled":true,"value":"20000","goal":500}`))
	if got == nil || !got.Enabled || got.Value != "R$ 200,00" || got.Goal != "R$ 500,00" {
		t.Fatalf("got %+v", got)
	}
}

func TestNormalizeMonthLegacyAliases(t *testing.T) {
	n := testNormalizer()
	raw := `{
		"competence": "not-a-key",
		"valorFixo": "500000",
		"destinado": "20000",
		"pagamentos": [
			{"id":"p1","descricao":"Conta","valor":"10000","vencimento":"01072025","pago":false},
			"corrupted"
		]
	}`

	month, ok := n.Month("2025-07", decode(t, raw))
	if !ok {
		t.Fatal("unexpected rejection")
	}
	if month.Competence != "2025-07" {
		t.Fatalf("competence = %q, want fallback key", month.Competence)
	}
	if month.ValorFixo != "R$ 5.000,00" {
		t.Fatalf("valorFixo = %q", month.ValorFixo)
	}
	if month.Cofrinho == nil || !month.Cofrinho.Enabled || month.Cofrinho.Value != "R$ 200,00" {
		t.Fatalf("cofrinho = %+v", month.Cofrinho)
	}
	if len(month.Payments) != 1 {
		t.Fatalf("corrupted entry not dropped: %+v", month.Payments)
	}
	if month.Payments[0].Vencimento != "01/07/2025" {
		t.Fatalf("vencimento = %q", month.Payments[0].Vencimento)
	}
	if month.CreatedAt != "2025-06-15T12:00:00Z" {
		t.Fatalf("createdAt = %q", month.CreatedAt)
	}
}

func TestNormalizeStoreMultiMonth(t *testing.T) {
	n := testNormalizer()
	raw := `{
		"version": 2,
		"selectedMonth": "2024-02",
		"months": {
			"2024-02": {"competence":"2024-02","valorFixo":"100000","payments":[]},
			"not-a-key": {"valorFixo":"1"},
			"2024-03": "corrupted"
		},
		"statusFilter": "pagos",
		"sortOrder": "valor-desc"
	}`

	got, ok := n.Store(decode(t, raw))
	if !ok {
		t.Fatal("unexpected rejection")
	}
	if len(got.Store.Months) != 1 {
		t.Fatalf("months = %v", SortedMonthKeys(got.Store.Months))
	}
	if got.Store.SelectedMonth != "2024-02" {
		t.Fatalf("selectedMonth = %q", got.Store.SelectedMonth)
	}
	if got.Store.Version != StoreVersion {
		t.Fatalf("version = %d", got.Store.Version)
	}
	if got.StatusFilter != FilterPagos || got.SortOrder != SortValorDesc {
		t.Fatalf("prefs = %q %q", got.StatusFilter, got.SortOrder)
	}
}

// A selected month that resolves to nothing gets an empty ledger
// synthesized under the same key; selection never dangles.
func TestNormalizeStoreSynthesizesSelectedMonth(t *testing.T) {
	n := testNormalizer()
	raw := `{
		"selectedMonth": "2024-01",
		"months": {
			"2024-02": {"competence":"2024-02"}
		}
	}`

	got, ok := n.Store(decode(t, raw))
	if !ok {
		t.Fatal("unexpected rejection")
	}
	if got.Store.SelectedMonth != "2024-01" {
		t.Fatalf("selectedMonth = %q, want 2024-01", got.Store.SelectedMonth)
	}
	synthesized, present := got.Store.Months["2024-01"]
	if !present {
		t.Fatal("expected an empty month under 2024-01")
	}
	if len(synthesized.Payments) != 0 || synthesized.ValorFixo != "" {
		t.Fatalf("synthesized month not empty: %+v", synthesized)
	}
	if _, present := got.Store.Months["2024-02"]; !present {
		t.Fatal("existing month lost")
	}
}

func TestNormalizeStoreSelectedFallbacks(t *testing.T) {
	n := testNormalizer()

	// No usable selectedMonth: latest surviving month wins.
	got, ok := n.Store(decode(t, `{"months":{"2024-01":{},"2024-05":{},"2024-03":{}}}`))
	if !ok || got.Store.SelectedMonth != "2024-05" {
		t.Fatalf("selected = %q, want 2024-05", got.Store.SelectedMonth)
	}

	// Nothing survives: current calendar month, synthesized empty.
	got, ok = n.Store(decode(t, `{"months":{}}`))
	if !ok || got.Store.SelectedMonth != "2025-06" {
		t.Fatalf("selected = %q, want 2025-06", got.Store.SelectedMonth)
	}
	if _, present := got.Store.Months["2025-06"]; !present {
		t.Fatal("expected synthesized current month")
	}
}

func TestNormalizeStoreLegacyShape(t *testing.T) {
	n := testNormalizer()
	raw := `{
		"valorFixo": "300000",
		"destinado": "50000",
		"rendaExtra": "10000",
		"pagamentos": [
			{"id":"p1","descricao":"Internet","valor":"9900","vencimento":"05072025","pago":true}
		],
		"statusFilter": "abertos",
		"sortOrder": "nenhum"
	}`

	got, ok := n.Store(decode(t, raw))
	if !ok {
		t.Fatal("unexpected rejection")
	}
	month, present := got.Store.Months["2025-06"]
	if !present || got.Store.SelectedMonth != "2025-06" {
		t.Fatalf("expected single month under current key, got %+v", got.Store)
	}
	if month.ValorFixo != "R$ 3.000,00" || month.RendaExtra != "R$ 100,00" {
		t.Fatalf("month = %+v", month)
	}
	if month.Cofrinho == nil || !month.Cofrinho.Enabled || month.Cofrinho.Value != "R$ 500,00" {
		t.Fatalf("cofrinho = %+v", month.Cofrinho)
	}
	if len(month.Payments) != 1 || month.Payments[0].Valor != "R$ 99,00" {
		t.Fatalf("payments = %+v", month.Payments)
	}
	if got.StatusFilter != FilterAbertos || got.SortOrder != SortNenhum {
		t.Fatalf("prefs = %q %q", got.StatusFilter, got.SortOrder)
	}
}

// The legacy shape fails closed: an out-of-set enum or a non-array payment
// list rejects the whole document instead of producing a partial repair.
func TestNormalizeStoreLegacyRejections(t *testing.T) {
	n := testNormalizer()
	cases := []string{
		`{"valorFixo":"1000","sortOrder":"invalid-order"}`,
		`{"valorFixo":"1000","statusFilter":"metade"}`,
		`{"valorFixo":"1000","pagamentos":"not-an-array"}`,
		`{"valorFixo":"1000","pagamentos":{}}`,
	}
	for _, raw := range cases {
		if _, ok := n.Store(decode(t, raw)); ok {
			t.Fatalf("expected rejection for %s", raw)
		}
	}
}

func TestNormalizeStoreRejectsUnrecognized(t *testing.T) {
	n := testNormalizer()
	for _, raw := range []string{`null`, `"texto"`, `7`, `[]`} {
		if _, ok := n.Store(decode(t, raw)); ok {
			t.Fatalf("expected rejection for %s", raw)
		}
	}
}

// Filter and sort preferences in the multi-month shape are recovered only
// when in set; out-of-set values degrade to empty instead of rejecting.
func TestNormalizeStoreMultiMonthPrefLeniency(t *testing.T) {
	n := testNormalizer()
	got, ok := n.Store(decode(t, `{"months":{},"statusFilter":"metade","sortOrder":"caos"}`))
	if !ok {
		t.Fatal("multi-month shape must not fail on bad prefs")
	}
	if got.StatusFilter != "" || got.SortOrder != "" {
		t.Fatalf("prefs = %q %q, want empty", got.StatusFilter, got.SortOrder)
	}
}
