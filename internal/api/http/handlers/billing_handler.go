package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/nexis/campus-services/internal/auth"
	"github.com/nexis/campus-services/internal/domain"
	"github.com/nexis/campus-services/internal/service"
	apperrors "github.com/nexis/campus-services/pkg/util"
)

// BillingHandler exposes the REST companions to the billing SOAP endpoint.
type BillingHandler struct {
	billing *service.BillingService
}

// NewBillingHandler constructs handler.
func NewBillingHandler(billing *service.BillingService) *BillingHandler {
	return &BillingHandler{billing: billing}
}

type invoiceJSON struct {
	ID            int64  `json:"id"`
	InvoiceNumber string `json:"invoiceNumber"`
	StudentID     int64  `json:"studentId"`
	AmountCents   int64  `json:"amountCents"`
	Description   string `json:"description"`
	DueDate       string `json:"dueDate"`
	Status        string `json:"status"`
}

type paymentJSON struct {
	ID            int64  `json:"id"`
	InvoiceID     int64  `json:"invoiceId"`
	AmountCents   int64  `json:"amountCents"`
	Method        string `json:"method"`
	TransactionID string `json:"transactionId"`
}

func newInvoiceJSON(invoice *domain.Invoice) invoiceJSON {
	return invoiceJSON{
		ID:            invoice.ID,
		InvoiceNumber: invoice.InvoiceNumber,
		StudentID:     invoice.StudentID,
		AmountCents:   invoice.AmountCents,
		Description:   invoice.Description,
		DueDate:       invoice.DueDate.Format("2006-01-02"),
		Status:        string(invoice.Status),
	}
}

// GetInvoice handles GET /api/billing/invoice/:id.
func (h *BillingHandler) GetInvoice(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	invoice, err := h.billing.GetInvoice(c.UserContext(), id)
	if err != nil {
		return err
	}
	if err := requireInvoiceAccess(c, invoice.StudentID); err != nil {
		return err
	}
	return c.JSON(newInvoiceJSON(invoice))
}

// RecordPayment handles POST /api/billing/payment.
func (h *BillingHandler) RecordPayment(c *fiber.Ctx) error {
	var req struct {
		InvoiceID     int64  `json:"invoiceId"`
		AmountCents   int64  `json:"amountCents"`
		Method        string `json:"method"`
		TransactionID string `json:"transactionId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	// students may only pay their own invoices
	invoice, err := h.billing.GetInvoice(c.UserContext(), req.InvoiceID)
	if err != nil {
		return err
	}
	if err := requireInvoiceAccess(c, invoice.StudentID); err != nil {
		return err
	}

	payment, err := h.billing.RecordPayment(c.UserContext(), req.InvoiceID, req.AmountCents, req.Method, req.TransactionID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(paymentJSON{
		ID:            payment.ID,
		InvoiceID:     payment.InvoiceID,
		AmountCents:   payment.AmountCents,
		Method:        string(payment.Method),
		TransactionID: payment.TransactionID,
	})
}

// ListPayments handles GET /api/billing/payments/:studentId.
func (h *BillingHandler) ListPayments(c *fiber.Ctx) error {
	studentID, err := pathID(c, "studentId")
	if err != nil {
		return err
	}
	payments, err := h.billing.PaymentHistory(c.UserContext(), studentID)
	if err != nil {
		return err
	}
	out := make([]paymentJSON, 0, len(payments))
	for _, payment := range payments {
		out = append(out, paymentJSON{
			ID:            payment.ID,
			InvoiceID:     payment.InvoiceID,
			AmountCents:   payment.AmountCents,
			Method:        string(payment.Method),
			TransactionID: payment.TransactionID,
		})
	}
	return c.JSON(out)
}

// requireInvoiceAccess applies the same ownership rule as the SOAP endpoint:
// staff act on any student's records, students on their own only.
func requireInvoiceAccess(c *fiber.Ctx, studentID int64) error {
	claims, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	switch domain.ParseRole(claims.Role) {
	case domain.RoleAdmin, domain.RoleProfessor:
		return nil
	case domain.RoleStudent:
		if claims.UserID != nil && *claims.UserID == studentID {
			return nil
		}
		return apperrors.NewForbidden("students may only access their own billing records")
	default:
		return apperrors.NewForbidden("unknown role")
	}
}

func pathID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid "+name, nil)
	}
	return id, nil
}
