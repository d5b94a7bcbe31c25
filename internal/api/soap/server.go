package soap

import (
	"encoding/xml"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/nexis/campus-services/internal/token"
	apperrors "github.com/nexis/campus-services/pkg/util"
)

// OperationHandler decodes its typed request from the positioned decoder and
// returns the response body payload.
type OperationHandler func(c *fiber.Ctx, claims *token.Claims, decoder *xml.Decoder, start xml.StartElement) (interface{}, error)

// Server dispatches SOAP operations arriving at a single endpoint. Requests
// authenticate via the HTTP Authorization header or, failing that, an
// Authorization element in the SOAP header. GET requests serve the service
// metadata document without credentials.
type Server struct {
	name       string
	tokens     *token.Manager
	logger     *zap.Logger
	operations map[string]OperationHandler
}

// NewServer builds a dispatcher for one SOAP endpoint.
func NewServer(name string, tokens *token.Manager, logger *zap.Logger) *Server {
	return &Server{
		name:       name,
		tokens:     tokens,
		logger:     logger,
		operations: make(map[string]OperationHandler),
	}
}

// Register binds an operation name to its handler.
func (s *Server) Register(operation string, handler OperationHandler) {
	s.operations[operation] = handler
}

// Metadata serves the service description for GET requests. Metadata
// discovery is deliberately unauthenticated.
func (s *Server) Metadata(c *fiber.Ctx) error {
	operations := make([]string, 0, len(s.operations))
	for op := range s.operations {
		operations = append(operations, op)
	}
	return c.JSON(fiber.Map{
		"service":    s.name,
		"transport":  "soap",
		"operations": operations,
	})
}

// Handle processes a SOAP POST: authenticate, locate the operation element,
// dispatch, and wrap the result in a response envelope.
func (s *Server) Handle(c *fiber.Ctx) error {
	raw := c.Body()

	claims, err := s.authenticate(c, raw)
	if err != nil {
		return s.fault(c, err)
	}

	decoder, start, err := BodyElement(raw)
	if err != nil {
		return s.fault(c, apperrors.NewValidationError("malformed soap envelope", nil))
	}

	handler, ok := s.operations[start.Name.Local]
	if !ok {
		return s.fault(c, apperrors.NewValidationError("unknown operation", map[string]any{"operation": start.Name.Local}))
	}

	result, err := handler(c, claims, decoder, start)
	if err != nil {
		return s.fault(c, err)
	}
	return s.respond(c, http.StatusOK, NewEnvelope(result))
}

// authenticate resolves the caller from the HTTP header first and the SOAP
// header second. Either form may carry a Bearer prefix or the bare token.
func (s *Server) authenticate(c *fiber.Ctx, raw []byte) (*token.Claims, error) {
	tokenStr := token.FromAuthorizationHeader(c.Get(fiber.HeaderAuthorization))
	if tokenStr == "" {
		tokenStr = NormalizeToken(c.Get(fiber.HeaderAuthorization))
	}
	if tokenStr == "" {
		tokenStr = ExtractAuthorization(raw)
	}
	if tokenStr == "" {
		return nil, apperrors.NewUnauthorized("missing authorization token")
	}

	claims := s.tokens.ExtractClaims(tokenStr)
	if claims == nil {
		return nil, apperrors.NewUnauthorized("invalid or expired token")
	}
	return claims, nil
}

func (s *Server) fault(c *fiber.Ctx, err error) error {
	domainErr := apperrors.ToDomainError(err)
	code := "soapenv:Server"
	if domainErr.HTTPStatus < 500 {
		code = "soapenv:Client"
	} else {
		s.logger.Error("soap operation failed", zap.String("service", s.name), zap.Error(domainErr))
	}
	return s.respond(c, domainErr.HTTPStatus, NewEnvelope(Fault{
		Code:    code,
		Message: domainErr.Message,
	}))
}

func (s *Server) respond(c *fiber.Ctx, status int, envelope Envelope) error {
	out, err := xml.Marshal(envelope)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return c.SendString("marshal failure")
	}
	c.Set(fiber.HeaderContentType, "text/xml; charset=utf-8")
	c.Status(status)
	return c.Send(append([]byte(xml.Header), out...))
}
