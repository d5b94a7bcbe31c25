package soap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const envelopeWithAuth = `<?xml version="1.0"?>
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
  <soapenv:Header>
    <Authorization>Bearer abc.def.ghi</Authorization>
  </soapenv:Header>
  <soapenv:Body>
    <getCourseById><courseId>4</courseId></getCourseById>
  </soapenv:Body>
</soapenv:Envelope>`

const envelopeBareAuth = `<?xml version="1.0"?>
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
  <soapenv:Header>
    <Authorization>  abc.def.ghi  </Authorization>
  </soapenv:Header>
  <soapenv:Body/>
</soapenv:Envelope>`

const envelopeNoHeader = `<?xml version="1.0"?>
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">
  <soapenv:Body>
    <listAllCourses/>
  </soapenv:Body>
</soapenv:Envelope>`

func TestExtractAuthorizationBearerForm(t *testing.T) {
	assert.Equal(t, "abc.def.ghi", ExtractAuthorization([]byte(envelopeWithAuth)))
}

func TestExtractAuthorizationBareForm(t *testing.T) {
	assert.Equal(t, "abc.def.ghi", ExtractAuthorization([]byte(envelopeBareAuth)))
}

func TestExtractAuthorizationAbsent(t *testing.T) {
	assert.Equal(t, "", ExtractAuthorization([]byte(envelopeNoHeader)))
	assert.Equal(t, "", ExtractAuthorization([]byte("not xml at all")))
	assert.Equal(t, "", ExtractAuthorization(nil))
}

func TestNormalizeToken(t *testing.T) {
	assert.Equal(t, "tok", NormalizeToken("Bearer tok"))
	assert.Equal(t, "tok", NormalizeToken("tok"))
	assert.Equal(t, "tok", NormalizeToken("  Bearer tok  "))
	assert.Equal(t, "", NormalizeToken("   "))
}

func TestBodyElementFindsOperation(t *testing.T) {
	_, start, err := BodyElement([]byte(envelopeWithAuth))
	require.NoError(t, err)
	assert.Equal(t, "getCourseById", start.Name.Local)

	_, start, err = BodyElement([]byte(envelopeNoHeader))
	require.NoError(t, err)
	assert.Equal(t, "listAllCourses", start.Name.Local)
}

func TestBodyElementMalformed(t *testing.T) {
	_, _, err := BodyElement([]byte("<broken"))
	require.Error(t, err)
}
