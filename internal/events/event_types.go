package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventStudentRegistered EventType = "student_registered"
	EventStudentEnrolled   EventType = "student_enrolled"
	EventStudentRemoved    EventType = "student_removed"
	EventInvoiceCreated    EventType = "invoice_created"
	EventPaymentRecorded   EventType = "payment_recorded"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Subject   string      `json:"subject"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// StudentRegisteredPayload payload.
type StudentRegisteredPayload struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// EnrollmentPayload payload for enroll/remove events.
type EnrollmentPayload struct {
	CourseID  int64 `json:"course_id"`
	StudentID int64 `json:"student_id"`
}

// InvoiceCreatedPayload payload.
type InvoiceCreatedPayload struct {
	InvoiceID     int64  `json:"invoice_id"`
	InvoiceNumber string `json:"invoice_number"`
	StudentID     int64  `json:"student_id"`
	AmountCents   int64  `json:"amount_cents"`
}

// PaymentRecordedPayload payload.
type PaymentRecordedPayload struct {
	InvoiceID     int64  `json:"invoice_id"`
	AmountCents   int64  `json:"amount_cents"`
	Method        string `json:"method"`
	TransactionID string `json:"transaction_id"`
}
