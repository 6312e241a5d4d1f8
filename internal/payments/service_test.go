package payments

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"terraprime/internal/gateway"
	"terraprime/internal/session"
)

var testSession = session.New("tok", session.Claims{UserID: "admin-1"})

func newBackendService(t *testing.T, h http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	logger := zaptest.NewLogger(t)
	return NewService(NewHTTPRepository(gateway.New(gateway.Options{BaseURL: srv.URL}, logger)), logger)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestSubmit_MultipartContract(t *testing.T) {
	svc := newBackendService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sales/s1/payments", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		var vouchers []VoucherInput
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("payments")), &vouchers))
		require.Len(t, vouchers, 2)
		assert.Equal(t, 0, vouchers[0].FileIndex)
		assert.Equal(t, 1, vouchers[1].FileIndex)

		files := r.MultipartForm.File["files"]
		require.Len(t, files, 2)
		assert.Equal(t, "a.jpg", files[0].Filename)
		assert.Equal(t, "b.jpg", files[1].Filename)
		f, err := files[1].Open()
		require.NoError(t, err)
		data, _ := io.ReadAll(f)
		assert.Equal(t, "BBB", string(data))

		writeJSON(w, http.StatusCreated, Payment{ID: "p1", SaleID: "s1", Status: StatusPending, Amount: 1000})
	})

	payment, err := svc.Submit(context.Background(), testSession, Submission{
		SaleID: "s1",
		Vouchers: []VoucherInput{
			{BankName: "BCP", TransactionReference: "op-1", TransactionDate: time.Now(), Amount: 400, FileIndex: 0},
			{BankName: "BBVA", TransactionReference: "op-2", TransactionDate: time.Now(), Amount: 600, FileIndex: 1},
		},
		Files: []Receipt{{Name: "a.jpg", Data: []byte("AAA")}, {Name: "b.jpg", Data: []byte("BBB")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "p1", payment.ID)
}

func TestSubmit_LocalChecks(t *testing.T) {
	svc := newBackendService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("backend must not be called")
	})

	_, err := svc.Submit(context.Background(), testSession, Submission{SaleID: "s1"})
	assert.ErrorIs(t, err, ErrEmptySubmission)

	_, err = svc.Submit(context.Background(), testSession, Submission{
		SaleID:   "s1",
		Vouchers: []VoucherInput{{Amount: 1}},
	})
	assert.ErrorIs(t, err, ErrFileMismatch)

	_, err = svc.Submit(context.Background(), testSession, Submission{
		SaleID:   "s1",
		Vouchers: []VoucherInput{{Amount: 1, FileIndex: 1}},
		Files:    []Receipt{{Name: "x"}},
	})
	assert.ErrorIs(t, err, ErrFileMismatch)
}

func TestReview(t *testing.T) {
	svc := newBackendService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		switch r.URL.Path {
		case "/payments/p1/approve":
			writeJSON(w, http.StatusOK, Payment{ID: "p1", Status: StatusApproved, Reviewer: &Reviewer{ID: "admin-1"}})
		case "/payments/p1/reject":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			writeJSON(w, http.StatusOK, Payment{ID: "p1", Status: StatusRejected, RejectionReason: body["reason"]})
		case "/payments/p1/complete":
			writeJSON(w, http.StatusOK, Payment{ID: "p1", Status: StatusCompleted})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	p, err := svc.Approve(ctx, testSession, "p1")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, p.Status)

	_, err = svc.Reject(ctx, testSession, "p1", "   ")
	assert.ErrorIs(t, err, ErrMissingReason)

	p, err = svc.Reject(ctx, testSession, "p1", "illegible voucher")
	require.NoError(t, err)
	assert.Equal(t, "illegible voucher", p.RejectionReason)

	p, err = svc.Complete(ctx, testSession, "p1")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, p.Status)

	_, err = svc.Approve(ctx, testSession, "missing")
	assert.Equal(t, http.StatusNotFound, gateway.StatusOf(err))
}

func TestList_InvalidStatus(t *testing.T) {
	svc := newBackendService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("backend must not be called")
	})

	_, err := svc.List(context.Background(), testSession, Filter{Status: "LOST"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
