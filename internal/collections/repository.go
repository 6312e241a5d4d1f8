package collections

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"terraprime/internal/gateway"
	"terraprime/internal/payments"
	"terraprime/internal/sales"
)

// Repository is the backend surface for cobranza.
type Repository interface {
	Debtors(ctx context.Context, creds gateway.Credentials, f Filter) (*DebtorList, error)
	Installments(ctx context.Context, creds gateway.Credentials, clientID string) ([]sales.Installment, error)
	PayInstallment(ctx context.Context, creds gateway.Credentials, installmentID string, in InstallmentPayment, receipt payments.Receipt) (*sales.Installment, error)
}

type HTTPRepository struct {
	gw *gateway.Client
}

func NewHTTPRepository(gw *gateway.Client) *HTTPRepository {
	return &HTTPRepository{gw: gw}
}

func (r *HTTPRepository) Debtors(ctx context.Context, creds gateway.Credentials, f Filter) (*DebtorList, error) {
	q := f.Page.Query()
	if f.Search != "" {
		q["search"] = f.Search
	}
	if f.OverdueOnly {
		q["overdueOnly"] = "true"
	}
	page, err := gateway.Call[DebtorList](ctx, r.gw, creds, gateway.Request{
		Method: http.MethodGet,
		Path:   "/collections/clients",
		Query:  q,
	})
	if err != nil {
		return nil, fmt.Errorf("list debtors: %w", err)
	}
	return &page, nil
}

func (r *HTTPRepository) Installments(ctx context.Context, creds gateway.Credentials, clientID string) ([]sales.Installment, error) {
	list, err := gateway.Call[[]sales.Installment](ctx, r.gw, creds, gateway.Request{
		Method: http.MethodGet,
		Path:   "/collections/clients/" + url.PathEscape(clientID) + "/installments",
	})
	if err != nil {
		return nil, fmt.Errorf("list installments of client %s: %w", clientID, err)
	}
	return list, nil
}

// PayInstallment uploads one voucher as multipart: its metadata as plain
// fields and the receipt as the "file" part.
func (r *HTTPRepository) PayInstallment(ctx context.Context, creds gateway.Credentials, installmentID string, in InstallmentPayment, receipt payments.Receipt) (*sales.Installment, error) {
	inst, err := gateway.Call[sales.Installment](ctx, r.gw, creds, gateway.Request{
		Method: http.MethodPost,
		Path:   "/collections/installments/" + url.PathEscape(installmentID) + "/payments",
		Form: map[string]string{
			"bankName":             in.BankName,
			"transactionReference": in.TransactionReference,
			"transactionDate":      in.TransactionDate.Format("2006-01-02"),
			"amount":               strconv.FormatFloat(in.Amount, 'f', 2, 64),
		},
		Files: []gateway.File{{Param: "file", Name: receipt.Name, Data: receipt.Data}},
	})
	if err != nil {
		return nil, fmt.Errorf("pay installment %s: %w", installmentID, err)
	}
	return &inst, nil
}
