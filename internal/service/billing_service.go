package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/nexis/campus-services/internal/domain"
	"github.com/nexis/campus-services/internal/events"
	"github.com/nexis/campus-services/internal/persistence"
	"github.com/nexis/campus-services/internal/repository"
	apperrors "github.com/nexis/campus-services/pkg/util"
)

// Balance summarizes a student's billing position.
type Balance struct {
	StudentID    int64
	TotalCents   int64
	PaidCents    int64
	BalanceCents int64
}

// BillingService coordinates invoices and payments.
type BillingService struct {
	invoices   repository.InvoiceRepository
	payments   repository.PaymentRepository
	sequences  *persistence.Redis
	dispatcher events.Dispatcher
}

// NewBillingService builds the service.
func NewBillingService(invoices repository.InvoiceRepository, payments repository.PaymentRepository, sequences *persistence.Redis, dispatcher events.Dispatcher) *BillingService {
	return &BillingService{
		invoices:   invoices,
		payments:   payments,
		sequences:  sequences,
		dispatcher: dispatcher,
	}
}

// CreateInvoice issues a new PENDING invoice for a student.
func (s *BillingService) CreateInvoice(ctx context.Context, studentID, amountCents int64, description string, dueDate time.Time) (*domain.Invoice, error) {
	if amountCents <= 0 {
		return nil, apperrors.NewValidationError("amount must be positive", nil)
	}

	invoice := &domain.Invoice{
		InvoiceNumber: s.nextInvoiceNumber(ctx),
		StudentID:     studentID,
		AmountCents:   amountCents,
		Description:   description,
		DueDate:       dueDate,
		Status:        domain.InvoiceStatusPending,
	}
	if err := s.invoices.Create(ctx, invoice); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventInvoiceCreated, invoice.InvoiceNumber, events.InvoiceCreatedPayload{
		InvoiceID:     invoice.ID,
		InvoiceNumber: invoice.InvoiceNumber,
		StudentID:     invoice.StudentID,
		AmountCents:   invoice.AmountCents,
	})
	return invoice, nil
}

// GetInvoice fetches a single invoice.
func (s *BillingService) GetInvoice(ctx context.Context, id int64) (*domain.Invoice, error) {
	return s.invoices.GetByID(ctx, id)
}

// StudentInvoices lists all invoices of a student.
func (s *BillingService) StudentInvoices(ctx context.Context, studentID int64) ([]*domain.Invoice, error) {
	return s.invoices.ListByStudent(ctx, studentID)
}

// RecordPayment registers a payment against an invoice. Cancelled invoices
// reject payments; when the accumulated payments cover the invoice amount
// the invoice transitions to PAID.
func (s *BillingService) RecordPayment(ctx context.Context, invoiceID, amountCents int64, method, transactionID string) (*domain.Payment, error) {
	if amountCents <= 0 {
		return nil, apperrors.NewValidationError("amount must be positive", nil)
	}

	invoice, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status == domain.InvoiceStatusCancelled {
		return nil, apperrors.NewConflict("cannot pay cancelled invoice", nil)
	}

	parsedMethod, ok := domain.ParsePaymentMethod(method)
	if !ok {
		return nil, apperrors.NewValidationError("unknown payment method", map[string]any{"method": method})
	}
	if transactionID == "" {
		transactionID = uuid.NewString()
	}

	payment := &domain.Payment{
		InvoiceID:     invoiceID,
		AmountCents:   amountCents,
		Method:        parsedMethod,
		TransactionID: transactionID,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}

	paid, err := s.paidTotal(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if paid >= invoice.AmountCents && invoice.Status != domain.InvoiceStatusPaid {
		if err := s.invoices.UpdateStatus(ctx, invoiceID, domain.InvoiceStatusPaid); err != nil {
			return nil, err
		}
	}

	s.publish(ctx, events.EventPaymentRecorded, invoice.InvoiceNumber, events.PaymentRecordedPayload{
		InvoiceID:     invoiceID,
		AmountCents:   amountCents,
		Method:        string(parsedMethod),
		TransactionID: transactionID,
	})
	return payment, nil
}

// PaymentHistory lists every payment across a student's invoices.
func (s *BillingService) PaymentHistory(ctx context.Context, studentID int64) ([]*domain.Payment, error) {
	invoices, err := s.invoices.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	var history []*domain.Payment
	for _, invoice := range invoices {
		payments, err := s.payments.ListByInvoice(ctx, invoice.ID)
		if err != nil {
			return nil, err
		}
		history = append(history, payments...)
	}
	return history, nil
}

// OutstandingBalance computes total charges (excluding cancelled invoices)
// minus total payments for a student.
func (s *BillingService) OutstandingBalance(ctx context.Context, studentID int64) (*Balance, error) {
	invoices, err := s.invoices.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	balance := &Balance{StudentID: studentID}
	for _, invoice := range invoices {
		if invoice.Status == domain.InvoiceStatusCancelled {
			continue
		}
		balance.TotalCents += invoice.AmountCents

		payments, err := s.payments.ListByInvoice(ctx, invoice.ID)
		if err != nil {
			return nil, err
		}
		for _, payment := range payments {
			balance.PaidCents += payment.AmountCents
		}
	}
	balance.BalanceCents = balance.TotalCents - balance.PaidCents
	return balance, nil
}

// nextInvoiceNumber allocates INV-<year>-<seq> from a Redis counter. When
// Redis is unreachable it falls back to a uuid-suffixed number so invoice
// creation keeps working.
func (s *BillingService) nextInvoiceNumber(ctx context.Context) string {
	year := time.Now().Year()
	if s.sequences != nil && s.sequences.Client != nil {
		seq, err := s.sequences.Client.Incr(ctx, "billing:invoice:seq:"+strconv.Itoa(year)).Result()
		if err == nil {
			return fmt.Sprintf("INV-%d-%06d", year, seq)
		}
	}
	return fmt.Sprintf("INV-%d-%s", year, uuid.NewString()[:8])
}

func (s *BillingService) paidTotal(ctx context.Context, invoiceID int64) (int64, error) {
	payments, err := s.payments.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, payment := range payments {
		total += payment.AmountCents
	}
	return total, nil
}

func (s *BillingService) publish(ctx context.Context, eventType events.EventType, subject string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Subject:   subject,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
