package gateway

import (
	"encoding/xml"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nexis/campus-services/internal/api/soap"
	"github.com/nexis/campus-services/internal/token"
)

type wsAckResponse struct {
	XMLName xml.Name `xml:"ackResponse"`
	OK      bool     `xml:"ok"`
}

func ackOperation(hit *bool) soap.OperationHandler {
	return func(c *fiber.Ctx, claims *token.Claims, decoder *xml.Decoder, start xml.StartElement) (interface{}, error) {
		*hit = true
		return wsAckResponse{OK: true}, nil
	}
}

// newSoapGatewayApp wires the full middleware chain in front of SOAP
// dispatchers mounted the way the course and billing binaries mount them.
func newSoapGatewayApp(t *testing.T) (*fiber.App, *token.Manager, map[string]*bool) {
	t.Helper()
	tokens := token.NewManager(testSecret, time.Hour)
	logger := zap.NewNop()

	hits := map[string]*bool{
		"listAllCourses": new(bool),
		"deleteCourse":   new(bool),
		"createInvoice":  new(bool),
		"recordPayment":  new(bool),
	}

	courseWS := soap.NewServer("course-service", tokens, logger)
	courseWS.Register("listAllCourses", ackOperation(hits["listAllCourses"]))
	courseWS.Register("deleteCourse", ackOperation(hits["deleteCourse"]))

	billingWS := soap.NewServer("billing-service", tokens, logger)
	billingWS.Register("createInvoice", ackOperation(hits["createInvoice"]))
	billingWS.Register("recordPayment", ackOperation(hits["recordPayment"]))

	app := fiber.New()
	app.Use(StripTrustedHeaders())
	app.Use(Authentication(tokens, logger))
	app.Use(Authorization(DefaultPolicy(), logger))
	app.Post("/api/ws/course", courseWS.Handle)
	app.Post("/api/ws/course/*", courseWS.Handle)
	app.Post("/api/ws/billing", billingWS.Handle)
	app.Post("/api/ws/billing/*", billingWS.Handle)
	return app, tokens, hits
}

func studentToken(t *testing.T, tokens *token.Manager) string {
	t.Helper()
	signed, _, err := tokens.Issue(token.Identity{
		Username: "jane.doe",
		Role:     "STUDENT",
		UserID:   7,
		Enabled:  true,
	})
	require.NoError(t, err)
	return signed
}

func postEnvelope(t *testing.T, app *fiber.App, path, bearer, operation string) (int, string) {
	t.Helper()
	body := `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">` +
		`<soapenv:Body><` + operation + `/></soapenv:Body></soapenv:Envelope>`
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "text/xml")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(raw)
}

func TestGatewayCarriesOperationSuffixedSoapPath(t *testing.T) {
	app, tokens, hits := newSoapGatewayApp(t)

	status, body := postEnvelope(t, app, "/api/ws/course/listAllCourses", adminToken(t, tokens), "listAllCourses")
	assert.Equal(t, 200, status)
	assert.True(t, *hits["listAllCourses"])
	assert.Contains(t, body, "ackResponse")
}

func TestGatewayCarriesBareSoapEndpointPath(t *testing.T) {
	app, tokens, hits := newSoapGatewayApp(t)

	status, _ := postEnvelope(t, app, "/api/ws/course", adminToken(t, tokens), "listAllCourses")
	assert.Equal(t, 200, status)
	assert.True(t, *hits["listAllCourses"])
}

func TestGatewayDeniesStudentOnDeleteCoursePath(t *testing.T) {
	app, tokens, hits := newSoapGatewayApp(t)

	status, _ := postEnvelope(t, app, "/api/ws/course/deleteCourse", studentToken(t, tokens), "deleteCourse")
	assert.Equal(t, 403, status)
	assert.False(t, *hits["deleteCourse"], "denied request must never reach the dispatcher")
}

func TestGatewayBillingSoapPathRoles(t *testing.T) {
	app, tokens, hits := newSoapGatewayApp(t)

	status, _ := postEnvelope(t, app, "/api/ws/billing/createInvoice", studentToken(t, tokens), "createInvoice")
	assert.Equal(t, 403, status)
	assert.False(t, *hits["createInvoice"])

	status, _ = postEnvelope(t, app, "/api/ws/billing/createInvoice", adminToken(t, tokens), "createInvoice")
	assert.Equal(t, 200, status)
	assert.True(t, *hits["createInvoice"])

	status, _ = postEnvelope(t, app, "/api/ws/billing/recordPayment", studentToken(t, tokens), "recordPayment")
	assert.Equal(t, 200, status)
	assert.True(t, *hits["recordPayment"])
}

func TestGatewaySoapPathMissingTokenRejected(t *testing.T) {
	app, _, hits := newSoapGatewayApp(t)

	status, _ := postEnvelope(t, app, "/api/ws/course/listAllCourses", "", "listAllCourses")
	assert.Equal(t, 401, status)
	assert.False(t, *hits["listAllCourses"])
}
