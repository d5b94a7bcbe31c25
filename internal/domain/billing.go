package domain

import "time"

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "PENDING"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusOverdue   InvoiceStatus = "OVERDUE"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// PaymentMethod enumerates accepted payment channels.
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodCard     PaymentMethod = "CARD"
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
	PaymentMethodCheck    PaymentMethod = "CHECK"
)

// ParsePaymentMethod validates an untrusted payment method string.
func ParsePaymentMethod(value string) (PaymentMethod, bool) {
	switch PaymentMethod(value) {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer, PaymentMethodCheck:
		return PaymentMethod(value), true
	default:
		return "", false
	}
}

// Invoice is a charge issued to a student. Amounts are stored in cents to
// avoid floating point drift in balance arithmetic.
type Invoice struct {
	ID            int64
	InvoiceNumber string
	StudentID     int64
	AmountCents   int64
	Description   string
	DueDate       time.Time
	Status        InvoiceStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Payment records money received against an invoice.
type Payment struct {
	ID            int64
	InvoiceID     int64
	AmountCents   int64
	Method        PaymentMethod
	TransactionID string
	Notes         string
	PaymentDate   time.Time
}
