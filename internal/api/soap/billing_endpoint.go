package soap

import (
	"encoding/xml"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/nexis/campus-services/internal/domain"
	"github.com/nexis/campus-services/internal/service"
	"github.com/nexis/campus-services/internal/token"
	apperrors "github.com/nexis/campus-services/pkg/util"
)

type invoiceXML struct {
	ID            int64  `xml:"id"`
	InvoiceNumber string `xml:"invoiceNumber"`
	StudentID     int64  `xml:"studentId"`
	AmountCents   int64  `xml:"amountCents"`
	Description   string `xml:"description"`
	DueDate       string `xml:"dueDate"`
	Status        string `xml:"status"`
	CreatedAt     string `xml:"createdAt"`
}

type paymentXML struct {
	ID            int64  `xml:"id"`
	InvoiceID     int64  `xml:"invoiceId"`
	AmountCents   int64  `xml:"amountCents"`
	Method        string `xml:"method"`
	TransactionID string `xml:"transactionId"`
	PaymentDate   string `xml:"paymentDate"`
}

func invoiceToXML(invoice *domain.Invoice) invoiceXML {
	return invoiceXML{
		ID:            invoice.ID,
		InvoiceNumber: invoice.InvoiceNumber,
		StudentID:     invoice.StudentID,
		AmountCents:   invoice.AmountCents,
		Description:   invoice.Description,
		DueDate:       invoice.DueDate.Format(time.RFC3339),
		Status:        string(invoice.Status),
		CreatedAt:     invoice.CreatedAt.Format(time.RFC3339),
	}
}

func invoicesToXML(invoices []*domain.Invoice) []invoiceXML {
	out := make([]invoiceXML, 0, len(invoices))
	for _, invoice := range invoices {
		out = append(out, invoiceToXML(invoice))
	}
	return out
}

func paymentsToXML(payments []*domain.Payment) []paymentXML {
	out := make([]paymentXML, 0, len(payments))
	for _, payment := range payments {
		out = append(out, paymentXML{
			ID:            payment.ID,
			InvoiceID:     payment.InvoiceID,
			AmountCents:   payment.AmountCents,
			Method:        string(payment.Method),
			TransactionID: payment.TransactionID,
			PaymentDate:   payment.PaymentDate.Format(time.RFC3339),
		})
	}
	return out
}

type createInvoiceRequest struct {
	StudentID   int64  `xml:"studentId"`
	AmountCents int64  `xml:"amountCents"`
	Description string `xml:"description"`
	DueDate     string `xml:"dueDate"`
}

type invoiceIDRequest struct {
	InvoiceID int64 `xml:"invoiceId"`
}

type studentIDRequest struct {
	StudentID int64 `xml:"studentId"`
}

type recordPaymentRequest struct {
	InvoiceID     int64  `xml:"invoiceId"`
	AmountCents   int64  `xml:"amountCents"`
	Method        string `xml:"method"`
	TransactionID string `xml:"transactionId"`
}

type createInvoiceResponse struct {
	XMLName xml.Name   `xml:"createInvoiceResponse"`
	Invoice invoiceXML `xml:"invoice"`
}

type getInvoiceResponse struct {
	XMLName xml.Name   `xml:"getInvoiceResponse"`
	Invoice invoiceXML `xml:"invoice"`
}

type studentInvoicesResponse struct {
	XMLName  xml.Name     `xml:"getStudentInvoicesResponse"`
	Invoices []invoiceXML `xml:"invoices>invoice"`
}

type recordPaymentResponse struct {
	XMLName xml.Name   `xml:"recordPaymentResponse"`
	Payment paymentXML `xml:"payment"`
}

type paymentHistoryResponse struct {
	XMLName  xml.Name     `xml:"getPaymentHistoryResponse"`
	Payments []paymentXML `xml:"payments>payment"`
}

type outstandingBalanceResponse struct {
	XMLName      xml.Name `xml:"getOutstandingBalanceResponse"`
	StudentID    int64    `xml:"studentId"`
	TotalCents   int64    `xml:"totalCents"`
	PaidCents    int64    `xml:"paidCents"`
	BalanceCents int64    `xml:"balanceCents"`
}

// RegisterBillingEndpoint binds every billing operation onto the server.
func RegisterBillingEndpoint(server *Server, billing *service.BillingService) {
	server.Register("createInvoice", func(c *fiber.Ctx, claims *token.Claims, decoder *xml.Decoder, start xml.StartElement) (interface{}, error) {
		if err := requireRoles(claims, domain.RoleAdmin); err != nil {
			return nil, err
		}
		var req createInvoiceRequest
		if err := decodeRequest(decoder, start, &req); err != nil {
			return nil, err
		}
		dueDate, err := time.Parse(time.RFC3339, req.DueDate)
		if err != nil {
			return nil, apperrors.NewValidationError("dueDate must be RFC3339", nil)
		}
		invoice, err := billing.CreateInvoice(c.UserContext(), req.StudentID, req.AmountCents, req.Description, dueDate)
		if err != nil {
			return nil, err
		}
		return createInvoiceResponse{Invoice: invoiceToXML(invoice)}, nil
	})

	server.Register("getInvoice", func(c *fiber.Ctx, claims *token.Claims, decoder *xml.Decoder, start xml.StartElement) (interface{}, error) {
		var req invoiceIDRequest
		if err := decodeRequest(decoder, start, &req); err != nil {
			return nil, err
		}
		invoice, err := billing.GetInvoice(c.UserContext(), req.InvoiceID)
		if err != nil {
			return nil, err
		}
		if err := requireSelfOrStaff(claims, invoice.StudentID); err != nil {
			return nil, err
		}
		return getInvoiceResponse{Invoice: invoiceToXML(invoice)}, nil
	})

	server.Register("getStudentInvoices", func(c *fiber.Ctx, claims *token.Claims, decoder *xml.Decoder, start xml.StartElement) (interface{}, error) {
		var req studentIDRequest
		if err := decodeRequest(decoder, start, &req); err != nil {
			return nil, err
		}
		if err := requireSelfOrStaff(claims, req.StudentID); err != nil {
			return nil, err
		}
		invoices, err := billing.StudentInvoices(c.UserContext(), req.StudentID)
		if err != nil {
			return nil, err
		}
		return studentInvoicesResponse{Invoices: invoicesToXML(invoices)}, nil
	})

	server.Register("recordPayment", func(c *fiber.Ctx, claims *token.Claims, decoder *xml.Decoder, start xml.StartElement) (interface{}, error) {
		if err := requireRoles(claims, domain.RoleAdmin, domain.RoleStudent); err != nil {
			return nil, err
		}
		var req recordPaymentRequest
		if err := decodeRequest(decoder, start, &req); err != nil {
			return nil, err
		}
		// students may only pay their own invoices
		invoice, err := billing.GetInvoice(c.UserContext(), req.InvoiceID)
		if err != nil {
			return nil, err
		}
		if err := requireSelfOrStaff(claims, invoice.StudentID); err != nil {
			return nil, err
		}
		payment, err := billing.RecordPayment(c.UserContext(), req.InvoiceID, req.AmountCents, req.Method, req.TransactionID)
		if err != nil {
			return nil, err
		}
		return recordPaymentResponse{Payment: paymentsToXML([]*domain.Payment{payment})[0]}, nil
	})

	server.Register("getPaymentHistory", func(c *fiber.Ctx, claims *token.Claims, decoder *xml.Decoder, start xml.StartElement) (interface{}, error) {
		var req studentIDRequest
		if err := decodeRequest(decoder, start, &req); err != nil {
			return nil, err
		}
		if err := requireSelfOrStaff(claims, req.StudentID); err != nil {
			return nil, err
		}
		payments, err := billing.PaymentHistory(c.UserContext(), req.StudentID)
		if err != nil {
			return nil, err
		}
		return paymentHistoryResponse{Payments: paymentsToXML(payments)}, nil
	})

	server.Register("getOutstandingBalance", func(c *fiber.Ctx, claims *token.Claims, decoder *xml.Decoder, start xml.StartElement) (interface{}, error) {
		var req studentIDRequest
		if err := decodeRequest(decoder, start, &req); err != nil {
			return nil, err
		}
		if err := requireSelfOrStaff(claims, req.StudentID); err != nil {
			return nil, err
		}
		balance, err := billing.OutstandingBalance(c.UserContext(), req.StudentID)
		if err != nil {
			return nil, err
		}
		return outstandingBalanceResponse{
			StudentID:    balance.StudentID,
			TotalCents:   balance.TotalCents,
			PaidCents:    balance.PaidCents,
			BalanceCents: balance.BalanceCents,
		}, nil
	})
}
