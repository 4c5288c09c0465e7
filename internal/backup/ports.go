// Package backup defines the outbound ports of the month backup
// pipeline.
package backup

import (
	"context"

	"financeiro/internal/core"
)

// MonthSummary is one month's condensed ledger as written to the backup
// destination.
type MonthSummary struct {
	Competence      string
	ValorFixo       string
	RendaExtra      string
	Totals          core.Totals
	PaymentCount    int
	PaymentsAbertos int
	UpdatedAt       string
}

// SummaryWriter upserts a month summary row in the backup destination.
type SummaryWriter interface {
	WriteMonthSummary(ctx context.Context, summary MonthSummary) (rowRef string, err error)
}
