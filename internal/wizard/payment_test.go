package wizard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"terraprime/internal/payments"
	"terraprime/internal/session"
)

var testSession = session.New("tok", session.Claims{UserID: "vendor-1"})

// fakeSubmitter records every submission it receives.
type fakeSubmitter struct {
	mu      sync.Mutex
	calls   []payments.Submission
	err     error
	block   chan struct{}
	started chan struct{}
}

func (f *fakeSubmitter) Submit(ctx context.Context, sess session.Session, sub payments.Submission) (*payments.Payment, error) {
	f.mu.Lock()
	f.calls = append(f.calls, sub)
	f.mu.Unlock()
	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	return &payments.Payment{ID: "pay-1", SaleID: sub.SaleID, Status: payments.StatusPending}, nil
}

func (f *fakeSubmitter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func receipt(name string) *payments.Receipt {
	return &payments.Receipt{Name: name, Data: []byte(name)}
}

func draft(amount float64, file *payments.Receipt) Draft {
	return Draft{
		BankName:             "BCP",
		TransactionReference: "op",
		TransactionDate:      time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		Amount:               amount,
		File:                 file,
	}
}

func assertContiguous(t *testing.T, w *PaymentWizard) {
	t.Helper()
	for i, d := range w.Payments() {
		assert.Equal(t, i, d.FileIndex, "fileIndex must match position")
	}
}

func TestPaymentWizard_ExampleScenario(t *testing.T) {
	sub := &fakeSubmitter{}
	w := NewPaymentWizard("sale-1", 1000, sub, zaptest.NewLogger(t))

	w.AddPayment(draft(400, receipt("A")))
	w.AddPayment(draft(600, receipt("B")))
	assert.Equal(t, 1000.0, w.TotalPaid())
	assert.True(t, w.IsPaymentComplete())

	require.NoError(t, w.EditPayment(0, draft(700, receipt("A"))))
	assert.Equal(t, 1300.0, w.TotalPaid())

	res := w.HandleAction(context.Background(), testSession)
	assert.False(t, res.OK())
	assert.ErrorIs(t, res.Reason(), ErrOverpayment)
	assert.Equal(t, 0, sub.callCount(), "overpayment must not reach the backend")

	require.NoError(t, w.DeletePayment(1))
	list := w.Payments()
	require.Len(t, list, 1)
	assert.Equal(t, 0, list[0].FileIndex)
	assert.Equal(t, 700.0, w.TotalPaid())
	assert.Equal(t, 300.0, w.RemainingAmount())
}

func TestPaymentWizard_FileIndexFollowsPosition(t *testing.T) {
	w := NewPaymentWizard("sale-1", 1000, &fakeSubmitter{}, nil)

	for i := 0; i < 6; i++ {
		idx := w.AddPayment(draft(float64(i+1), nil))
		assert.Equal(t, i, idx)
		assertContiguous(t, w)
	}

	require.NoError(t, w.DeletePayment(2))
	assertContiguous(t, w)
	require.NoError(t, w.DeletePayment(0))
	assertContiguous(t, w)
	require.NoError(t, w.DeletePayment(3))
	assertContiguous(t, w)

	amounts := []float64{}
	for _, d := range w.Payments() {
		amounts = append(amounts, d.Amount)
	}
	assert.Equal(t, []float64{2, 4, 5}, amounts, "relative order must be preserved")
}

func TestPaymentWizard_AddIgnoresCallerFileIndex(t *testing.T) {
	w := NewPaymentWizard("sale-1", 100, &fakeSubmitter{}, nil)
	d := draft(10, nil)
	d.FileIndex = 42
	w.AddPayment(d)
	assert.Equal(t, 0, w.Payments()[0].FileIndex)
}

func TestPaymentWizard_EditKeepsFileIndex(t *testing.T) {
	w := NewPaymentWizard("sale-1", 100, &fakeSubmitter{}, nil)
	w.AddPayment(draft(10, nil))
	w.AddPayment(draft(20, nil))

	d := draft(99, nil)
	d.FileIndex = 7
	require.NoError(t, w.EditPayment(1, d))

	got := w.Payments()[1]
	assert.Equal(t, 1, got.FileIndex)
	assert.Equal(t, 99.0, got.Amount)
}

func TestPaymentWizard_IndexOutOfRange(t *testing.T) {
	w := NewPaymentWizard("sale-1", 100, &fakeSubmitter{}, nil)
	w.AddPayment(draft(10, nil))

	assert.ErrorIs(t, w.DeletePayment(1), ErrIndexOutOfRange)
	assert.ErrorIs(t, w.DeletePayment(-1), ErrIndexOutOfRange)
	assert.ErrorIs(t, w.EditPayment(5, draft(1, nil)), ErrIndexOutOfRange)
	assert.Len(t, w.Payments(), 1)
}

func TestPaymentWizard_TotalsAreExactAndStable(t *testing.T) {
	w := NewPaymentWizard("sale-1", 0.3, &fakeSubmitter{}, nil)
	w.AddPayment(draft(0.1, nil))
	w.AddPayment(draft(0.2, nil))

	for i := 0; i < 3; i++ {
		assert.Equal(t, 0.3, w.TotalPaid())
	}
	assert.True(t, w.IsPaymentComplete(), "0.1 + 0.2 must match 0.3 exactly")
	assert.Equal(t, 0.0, w.RemainingAmount())
}

func TestPaymentWizard_CompleteVersusReached(t *testing.T) {
	w := NewPaymentWizard("sale-1", 500, &fakeSubmitter{}, nil)
	assert.False(t, w.IsAmountReached())
	assert.False(t, w.IsPaymentComplete(), "empty wizard is never complete")
	assert.Equal(t, 500.0, w.RemainingAmount())

	w.AddPayment(draft(200, nil))
	assert.False(t, w.IsAmountReached())
	assert.False(t, w.IsPaymentComplete())

	w.AddPayment(draft(300, nil))
	assert.True(t, w.IsAmountReached())
	assert.True(t, w.IsPaymentComplete())

	w.AddPayment(draft(50, nil))
	assert.True(t, w.IsAmountReached())
	assert.False(t, w.IsPaymentComplete(), "overpayment is reached but not complete")
	assert.Equal(t, 0.0, w.RemainingAmount())
}

func TestPaymentWizard_ZeroRequiredEmptyIsNotComplete(t *testing.T) {
	w := NewPaymentWizard("sale-1", 0, &fakeSubmitter{}, nil)
	assert.True(t, w.IsAmountReached())
	assert.False(t, w.IsPaymentComplete())
}

func TestHandleAction_SkipsDraftsWithoutFile(t *testing.T) {
	sub := &fakeSubmitter{}
	w := NewPaymentWizard("sale-1", 1000, sub, zaptest.NewLogger(t))
	w.AddPayment(draft(100, receipt("A")))
	w.AddPayment(draft(200, nil))
	w.AddPayment(draft(300, receipt("C")))

	res := w.HandleAction(context.Background(), testSession)
	require.True(t, res.OK())
	assert.Equal(t, "pay-1", res.Value().ID)

	require.Equal(t, 1, sub.callCount())
	got := sub.calls[0]
	assert.Equal(t, "sale-1", got.SaleID)
	require.Len(t, got.Vouchers, 2)
	require.Len(t, got.Files, 2)
	assert.Equal(t, 100.0, got.Vouchers[0].Amount)
	assert.Equal(t, 0, got.Vouchers[0].FileIndex)
	assert.Equal(t, "A", got.Files[0].Name)
	assert.Equal(t, 300.0, got.Vouchers[1].Amount)
	assert.Equal(t, 1, got.Vouchers[1].FileIndex)
	assert.Equal(t, "C", got.Files[1].Name)

	assert.Len(t, w.Payments(), 3, "submitting does not consume the drafts")
}

func TestHandleAction_SubmitterErrorIsAbsorbed(t *testing.T) {
	boom := errors.New("backend down")
	sub := &fakeSubmitter{err: boom}
	w := NewPaymentWizard("sale-1", 100, sub, zaptest.NewLogger(t))
	w.AddPayment(draft(100, receipt("A")))

	res := w.HandleAction(context.Background(), testSession)
	assert.False(t, res.OK())
	assert.ErrorIs(t, res.Reason(), boom)
	assert.False(t, w.IsSubmitting())
	assert.Len(t, w.Payments(), 1, "state is kept for a retry")

	sub.err = nil
	assert.True(t, w.HandleAction(context.Background(), testSession).OK())
	assert.Equal(t, 2, sub.callCount())
}

func TestHandleAction_RejectsReentry(t *testing.T) {
	sub := &fakeSubmitter{block: make(chan struct{}), started: make(chan struct{})}
	w := NewPaymentWizard("sale-1", 100, sub, zaptest.NewLogger(t))
	w.AddPayment(draft(100, receipt("A")))

	done := make(chan bool)
	go func() {
		done <- w.HandleAction(context.Background(), testSession).OK()
	}()

	<-sub.started
	assert.True(t, w.IsSubmitting())

	second := w.HandleAction(context.Background(), testSession)
	assert.False(t, second.OK())
	assert.ErrorIs(t, second.Reason(), ErrSubmissionInProgress)

	close(sub.block)
	assert.True(t, <-done)
	assert.False(t, w.IsSubmitting())
	assert.Equal(t, 1, sub.callCount())
}

func TestHandleAction_SubmitsOnce(t *testing.T) {
	sub := &fakeSubmitter{}
	w := NewPaymentWizard("sale-1", 100, sub, zaptest.NewLogger(t))
	w.AddPayment(draft(100, receipt("A")))

	require.True(t, w.HandleAction(context.Background(), testSession).OK())
	assert.True(t, w.Submitted())

	again := w.HandleAction(context.Background(), testSession)
	assert.False(t, again.OK())
	assert.ErrorIs(t, again.Reason(), ErrAlreadySubmitted)
	assert.Equal(t, 1, sub.callCount())
}

func TestPaymentWizard_EditPaymentDetailsKeepsReceipt(t *testing.T) {
	w := NewPaymentWizard("sale-1", 1000, &fakeSubmitter{}, nil)
	w.AddPayment(draft(100, receipt("A")))
	w.AddPayment(draft(200, receipt("B")))

	require.NoError(t, w.EditPaymentDetails(1, draft(250, nil)))
	list := w.Payments()
	require.NotNil(t, list[1].File)
	assert.Equal(t, "B", list[1].File.Name)
	assert.Equal(t, 250.0, list[1].Amount)

	require.NoError(t, w.EditPaymentDetails(1, draft(250, receipt("C"))))
	assert.Equal(t, "C", w.Payments()[1].File.Name)

	require.NoError(t, w.EditPayment(1, draft(250, nil)))
	assert.False(t, w.Payments()[1].HasFile())

	assert.ErrorIs(t, w.EditPaymentDetails(5, draft(1, nil)), ErrIndexOutOfRange)
}

func TestPaymentWizard_SnapshotIsConsistent(t *testing.T) {
	w := NewPaymentWizard("sale-1", 1000, &fakeSubmitter{}, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			w.AddPayment(draft(5, nil))
			if i%3 == 0 {
				_ = w.DeletePayment(0)
			}
		}
	}()

	for i := 0; i < 200; i++ {
		snap := w.Snapshot()
		var sum float64
		for _, d := range snap.Payments {
			sum += d.Amount
		}
		assert.InDelta(t, sum, snap.TotalPaid, 0.001)
		assert.InDelta(t, max(0, snap.RequiredAmount-snap.TotalPaid), snap.RemainingAmount, 0.001)
	}
	wg.Wait()
}
