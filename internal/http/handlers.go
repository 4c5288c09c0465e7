package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"financeiro/internal/core"
	"financeiro/internal/services"
)

type stateResponse struct {
	Store        core.FinanceStore `json:"store"`
	StatusFilter core.StatusFilter `json:"statusFilter"`
	SortOrder    core.SortOrder    `json:"sortOrder"`
	Totals       core.Totals       `json:"totals"`
}

func (s *Server) stateResponse() stateResponse {
	snap := s.finance.Snapshot()
	return stateResponse{
		Store:        snap.Store,
		StatusFilter: snap.StatusFilter,
		SortOrder:    snap.SortOrder,
		Totals:       s.finance.Totals(),
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	writeJSON(w, http.StatusOK, s.stateResponse())
}

func (s *Server) handlePrefs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, "PUT")
		return
	}

	var body struct {
		StatusFilter core.StatusFilter `json:"statusFilter"`
		SortOrder    core.SortOrder    `json:"sortOrder"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}

	if err := s.finance.SetPreferences(r.Context(), body.StatusFilter, body.SortOrder); err != nil {
		writeError(w, http.StatusBadRequest, "filtro ou ordenação inválidos")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"statusFilter": body.StatusFilter,
		"sortOrder":    body.SortOrder,
	})
}

func (s *Server) handleMonths(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	month, err := s.finance.AddMonth(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Add month failed", "error", err)
		writeError(w, http.StatusInternalServerError, "erro ao criar mês")
		return
	}
	writeJSON(w, http.StatusCreated, month)
}

func (s *Server) handleSelectMonth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, "PUT")
		return
	}

	var body struct {
		Competence string `json:"competence"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}

	month, err := s.finance.SelectMonth(r.Context(), body.Competence)
	if errors.Is(err, core.ErrMonthNotFound) {
		writeError(w, http.StatusNotFound, "mês não encontrado")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "erro ao selecionar mês")
		return
	}
	writeJSON(w, http.StatusOK, month)
}

// handleEditMonth updates income and savings fields of the selected month.
func (s *Server) handleEditMonth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, "PUT")
		return
	}

	var body struct {
		ValorFixo  *string `json:"valorFixo"`
		RendaExtra *string `json:"rendaExtra"`
		Cofrinho   *struct {
			Value string `json:"value"`
			Goal  string `json:"goal"`
		} `json:"cofrinho"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}

	ctx := r.Context()
	month := s.finance.SelectedMonth()
	if body.ValorFixo != nil {
		month = s.finance.SetValorFixo(ctx, *body.ValorFixo)
	}
	if body.RendaExtra != nil {
		month = s.finance.SetRendaExtra(ctx, *body.RendaExtra)
	}
	if body.Cofrinho != nil {
		month = s.finance.SetCofrinho(ctx, body.Cofrinho.Value, body.Cofrinho.Goal)
	}
	writeJSON(w, http.StatusOK, month)
}

func (s *Server) handlePayments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listPayments(w, r)
	case http.MethodPost:
		s.createPayment(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

// listPayments returns the visible payments, with optional status and
// sort query overrides on top of the stored preferences.
func (s *Server) listPayments(w http.ResponseWriter, r *http.Request) {
	snap := s.finance.Snapshot()
	filter := snap.StatusFilter
	order := snap.SortOrder

	if v := r.URL.Query().Get("status"); v != "" {
		f := core.StatusFilter(v)
		if !f.IsValid() {
			writeError(w, http.StatusBadRequest, "filtro inválido")
			return
		}
		filter = f
	}
	if v := r.URL.Query().Get("sort"); v != "" {
		o := core.SortOrder(v)
		if !o.IsValid() {
			writeError(w, http.StatusBadRequest, "ordenação inválida")
			return
		}
		order = o
	}

	month := snap.Store.Months[snap.Store.SelectedMonth]
	payments := core.VisiblePayments(month.Payments, filter, order)
	writeJSON(w, http.StatusOK, payments)
}

func (s *Server) createPayment(w http.ResponseWriter, r *http.Request) {
	// An empty body appends a blank entry, mirroring the form's add-row.
	var body struct {
		Descricao  string `json:"descricao"`
		Valor      string `json:"valor"`
		Vencimento string `json:"vencimento"`
		Recorrente bool   `json:"recorrente"`
	}
	if r.ContentLength > 0 {
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "corpo da requisição inválido")
			return
		}
	}

	payment := s.finance.AddPayment(r.Context(), body.Descricao, body.Valor, body.Vencimento, body.Recorrente)
	writeJSON(w, http.StatusCreated, payment)
}

func (s *Server) handlePaymentByID(w http.ResponseWriter, r *http.Request) {
	paymentID := strings.TrimPrefix(r.URL.Path, "/api/payments/")
	if paymentID == "" || strings.Contains(paymentID, "/") {
		writeError(w, http.StatusNotFound, "pagamento não encontrado")
		return
	}

	switch r.Method {
	case http.MethodPut:
		s.updatePayment(w, r, paymentID)
	case http.MethodDelete:
		s.deletePayment(w, r, paymentID)
	default:
		methodNotAllowed(w, "PUT, DELETE")
	}
}

func (s *Server) updatePayment(w http.ResponseWriter, r *http.Request, paymentID string) {
	var body struct {
		Descricao  *string `json:"descricao"`
		Valor      *string `json:"valor"`
		Vencimento *string `json:"vencimento"`
		Pago       *bool   `json:"pago"`
		Recorrente *bool   `json:"recorrente"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}

	payment, err := s.finance.UpdatePayment(r.Context(), paymentID, services.UpdatePaymentParams{
		Descricao:  body.Descricao,
		Valor:      body.Valor,
		Vencimento: body.Vencimento,
		Pago:       body.Pago,
		Recorrente: body.Recorrente,
	})
	if errors.Is(err, core.ErrPaymentNotFound) {
		writeError(w, http.StatusNotFound, "pagamento não encontrado")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "erro ao atualizar pagamento")
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

func (s *Server) deletePayment(w http.ResponseWriter, r *http.Request, paymentID string) {
	err := s.finance.RemovePayment(r.Context(), paymentID)
	if errors.Is(err, core.ErrPaymentNotFound) {
		writeError(w, http.StatusNotFound, "pagamento não encontrado")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "erro ao remover pagamento")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	writeJSON(w, http.StatusOK, s.finance.Totals())
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	name, data, err := s.finance.Export()
	if err != nil {
		slog.ErrorContext(r.Context(), "Export failed", "error", err)
		writeError(w, http.StatusInternalServerError, "erro ao exportar")
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleImport accepts either a multipart upload (field "file") or a raw
// JSON body.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	data, err := importPayload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "corpo da requisição inválido")
		return
	}

	if err := s.finance.Import(r.Context(), data); err != nil {
		if errors.Is(err, core.ErrInvalidDocument) {
			writeError(w, http.StatusUnprocessableEntity, "arquivo inválido")
			return
		}
		slog.ErrorContext(r.Context(), "Import failed", "error", err)
		writeError(w, http.StatusInternalServerError, "erro ao importar")
		return
	}

	writeJSON(w, http.StatusOK, s.stateResponse())
}

func importPayload(r *http.Request) ([]byte, error) {
	contentType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err == nil && contentType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return nil, fmt.Errorf("parse multipart form: %w", err)
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("read form file: %w", err)
		}
		defer file.Close()
		return io.ReadAll(io.LimitReader(file, maxBodyBytes))
	}

	return io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
}
