package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexis/campus-services/internal/domain"
	"github.com/nexis/campus-services/internal/events"
)

type fakeInvoiceRepo struct {
	invoices map[int64]*domain.Invoice
	nextID   int64
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{invoices: map[int64]*domain.Invoice{}, nextID: 1}
}

func (r *fakeInvoiceRepo) Create(_ context.Context, invoice *domain.Invoice) error {
	invoice.ID = r.nextID
	r.nextID++
	copied := *invoice
	r.invoices[invoice.ID] = &copied
	return nil
}

func (r *fakeInvoiceRepo) GetByID(_ context.Context, id int64) (*domain.Invoice, error) {
	invoice, ok := r.invoices[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *invoice
	return &copied, nil
}

func (r *fakeInvoiceRepo) ListByStudent(_ context.Context, studentID int64) ([]*domain.Invoice, error) {
	var out []*domain.Invoice
	for _, invoice := range r.invoices {
		if invoice.StudentID == studentID {
			copied := *invoice
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeInvoiceRepo) UpdateStatus(_ context.Context, id int64, status domain.InvoiceStatus) error {
	invoice, ok := r.invoices[id]
	if !ok {
		return pgx.ErrNoRows
	}
	invoice.Status = status
	return nil
}

type fakePaymentRepo struct {
	payments []*domain.Payment
	nextID   int64
}

func (r *fakePaymentRepo) Create(_ context.Context, payment *domain.Payment) error {
	r.nextID++
	payment.ID = r.nextID
	payment.PaymentDate = time.Now()
	copied := *payment
	r.payments = append(r.payments, &copied)
	return nil
}

func (r *fakePaymentRepo) ListByInvoice(_ context.Context, invoiceID int64) ([]*domain.Payment, error) {
	var out []*domain.Payment
	for _, payment := range r.payments {
		if payment.InvoiceID == invoiceID {
			copied := *payment
			out = append(out, &copied)
		}
	}
	return out, nil
}

func newBillingFixture(t *testing.T) (*BillingService, *fakeInvoiceRepo, *fakePaymentRepo) {
	t.Helper()
	invoices := newFakeInvoiceRepo()
	payments := &fakePaymentRepo{}
	svc := NewBillingService(invoices, payments, nil, events.NewInMemoryDispatcher(nil))
	return svc, invoices, payments
}

func TestCreateInvoiceRejectsNonPositiveAmount(t *testing.T) {
	svc, _, _ := newBillingFixture(t)

	_, err := svc.CreateInvoice(context.Background(), 1, 0, "tuition", time.Now().AddDate(0, 1, 0))
	require.Error(t, err)

	_, err = svc.CreateInvoice(context.Background(), 1, -500, "tuition", time.Now().AddDate(0, 1, 0))
	require.Error(t, err)
}

func TestCreateInvoiceAssignsNumberAndStatus(t *testing.T) {
	svc, _, _ := newBillingFixture(t)

	invoice, err := svc.CreateInvoice(context.Background(), 1, 150000, "tuition", time.Now().AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPending, invoice.Status)
	assert.True(t, strings.HasPrefix(invoice.InvoiceNumber, "INV-"), "invoice number %q", invoice.InvoiceNumber)
	assert.NotZero(t, invoice.ID)
}

func TestRecordPaymentMarksInvoicePaidWhenCovered(t *testing.T) {
	svc, invoices, _ := newBillingFixture(t)

	invoice, err := svc.CreateInvoice(context.Background(), 1, 1000, "lab fee", time.Now().AddDate(0, 1, 0))
	require.NoError(t, err)

	_, err = svc.RecordPayment(context.Background(), invoice.ID, 400, "CASH", "")
	require.NoError(t, err)

	stored, err := invoices.GetByID(context.Background(), invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPending, stored.Status, "partial payment keeps PENDING")

	_, err = svc.RecordPayment(context.Background(), invoice.ID, 600, "CARD", "txn-1")
	require.NoError(t, err)

	stored, err = invoices.GetByID(context.Background(), invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, stored.Status)
}

func TestRecordPaymentRejectsCancelledInvoice(t *testing.T) {
	svc, invoices, _ := newBillingFixture(t)

	invoice, err := svc.CreateInvoice(context.Background(), 1, 1000, "lab fee", time.Now().AddDate(0, 1, 0))
	require.NoError(t, err)
	require.NoError(t, invoices.UpdateStatus(context.Background(), invoice.ID, domain.InvoiceStatusCancelled))

	_, err = svc.RecordPayment(context.Background(), invoice.ID, 1000, "CASH", "")
	require.Error(t, err)
}

func TestRecordPaymentGeneratesTransactionID(t *testing.T) {
	svc, _, _ := newBillingFixture(t)

	invoice, err := svc.CreateInvoice(context.Background(), 1, 1000, "lab fee", time.Now().AddDate(0, 1, 0))
	require.NoError(t, err)

	payment, err := svc.RecordPayment(context.Background(), invoice.ID, 100, "TRANSFER", "")
	require.NoError(t, err)
	assert.NotEmpty(t, payment.TransactionID)
}

func TestRecordPaymentRejectsUnknownMethod(t *testing.T) {
	svc, _, _ := newBillingFixture(t)

	invoice, err := svc.CreateInvoice(context.Background(), 1, 1000, "lab fee", time.Now().AddDate(0, 1, 0))
	require.NoError(t, err)

	_, err = svc.RecordPayment(context.Background(), invoice.ID, 100, "BARTER", "")
	require.Error(t, err)
}

func TestOutstandingBalanceExcludesCancelled(t *testing.T) {
	svc, invoices, _ := newBillingFixture(t)

	first, err := svc.CreateInvoice(context.Background(), 9, 2000, "tuition", time.Now().AddDate(0, 1, 0))
	require.NoError(t, err)
	second, err := svc.CreateInvoice(context.Background(), 9, 3000, "housing", time.Now().AddDate(0, 1, 0))
	require.NoError(t, err)
	require.NoError(t, invoices.UpdateStatus(context.Background(), second.ID, domain.InvoiceStatusCancelled))

	_, err = svc.RecordPayment(context.Background(), first.ID, 500, "CASH", "")
	require.NoError(t, err)

	balance, err := svc.OutstandingBalance(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), balance.TotalCents)
	assert.Equal(t, int64(500), balance.PaidCents)
	assert.Equal(t, int64(1500), balance.BalanceCents)
}

func TestPaymentHistoryAcrossInvoices(t *testing.T) {
	svc, _, _ := newBillingFixture(t)

	first, err := svc.CreateInvoice(context.Background(), 9, 2000, "tuition", time.Now().AddDate(0, 1, 0))
	require.NoError(t, err)
	second, err := svc.CreateInvoice(context.Background(), 9, 3000, "housing", time.Now().AddDate(0, 1, 0))
	require.NoError(t, err)

	_, err = svc.RecordPayment(context.Background(), first.ID, 500, "CASH", "")
	require.NoError(t, err)
	_, err = svc.RecordPayment(context.Background(), second.ID, 700, "CARD", "")
	require.NoError(t, err)

	history, err := svc.PaymentHistory(context.Background(), 9)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}
