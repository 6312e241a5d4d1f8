package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"terraprime/internal/gateway"
)

// Repository is the backend surface for payments.
type Repository interface {
	Submit(ctx context.Context, creds gateway.Credentials, sub Submission) (*Payment, error)
	List(ctx context.Context, creds gateway.Credentials, f Filter) (*PaymentList, error)
	Get(ctx context.Context, creds gateway.Credentials, id string) (*Payment, error)
	Approve(ctx context.Context, creds gateway.Credentials, id string) (*Payment, error)
	Reject(ctx context.Context, creds gateway.Credentials, id, reason string) (*Payment, error)
	Complete(ctx context.Context, creds gateway.Credentials, id string) (*Payment, error)
}

// HTTPRepository implements Repository over the backend gateway.
type HTTPRepository struct {
	gw *gateway.Client
}

// NewHTTPRepository creates a new HTTPRepository.
func NewHTTPRepository(gw *gateway.Client) *HTTPRepository {
	return &HTTPRepository{gw: gw}
}

// Submit uploads the vouchers as multipart: a "payments" JSON field and one
// "files" part per voucher, in the same order.
func (r *HTTPRepository) Submit(ctx context.Context, creds gateway.Credentials, sub Submission) (*Payment, error) {
	meta, err := json.Marshal(sub.Vouchers)
	if err != nil {
		return nil, fmt.Errorf("encode vouchers: %w", err)
	}

	files := make([]gateway.File, len(sub.Files))
	for i, f := range sub.Files {
		files[i] = gateway.File{Param: "files", Name: f.Name, Data: f.Data}
	}

	payment, err := gateway.Call[Payment](ctx, r.gw, creds, gateway.Request{
		Method: http.MethodPost,
		Path:   "/sales/" + url.PathEscape(sub.SaleID) + "/payments",
		Form:   map[string]string{"payments": string(meta)},
		Files:  files,
	})
	if err != nil {
		return nil, fmt.Errorf("submit payments for sale %s: %w", sub.SaleID, err)
	}
	return &payment, nil
}

func (r *HTTPRepository) List(ctx context.Context, creds gateway.Credentials, f Filter) (*PaymentList, error) {
	q := f.Page.Query()
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.SaleID != "" {
		q["saleId"] = f.SaleID
	}
	page, err := gateway.Call[PaymentList](ctx, r.gw, creds, gateway.Request{
		Method: http.MethodGet,
		Path:   "/payments",
		Query:  q,
	})
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return &page, nil
}

func (r *HTTPRepository) Get(ctx context.Context, creds gateway.Credentials, id string) (*Payment, error) {
	return r.call(ctx, creds, http.MethodGet, "/payments/"+url.PathEscape(id), nil)
}

func (r *HTTPRepository) Approve(ctx context.Context, creds gateway.Credentials, id string) (*Payment, error) {
	return r.call(ctx, creds, http.MethodPost, "/payments/"+url.PathEscape(id)+"/approve", nil)
}

func (r *HTTPRepository) Reject(ctx context.Context, creds gateway.Credentials, id, reason string) (*Payment, error) {
	return r.call(ctx, creds, http.MethodPost, "/payments/"+url.PathEscape(id)+"/reject", map[string]string{"reason": reason})
}

func (r *HTTPRepository) Complete(ctx context.Context, creds gateway.Credentials, id string) (*Payment, error) {
	return r.call(ctx, creds, http.MethodPost, "/payments/"+url.PathEscape(id)+"/complete", nil)
}

func (r *HTTPRepository) call(ctx context.Context, creds gateway.Credentials, method, path string, body any) (*Payment, error) {
	payment, err := gateway.Call[Payment](ctx, r.gw, creds, gateway.Request{
		Method: method,
		Path:   path,
		Body:   body,
	})
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return &payment, nil
}
