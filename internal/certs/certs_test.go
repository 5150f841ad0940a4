package certs

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelfSigned(t *testing.T) {
	cert, err := SelfSigned("hedgedoc.example.com", []string{"www.example.com"}, 24*time.Hour)
	require.NoError(t, err)

	_, err = tls.X509KeyPair([]byte(cert.CertificatePEM), []byte(cert.PrivateKeyPEM))
	require.NoError(t, err)

	block, _ := pem.Decode([]byte(cert.CertificatePEM))
	require.NotNil(t, block)
	parsed, err := x509.ParseCertificate(block.Bytes)
	require.NoError(t, err)

	assert.Equal(t, "hedgedoc.example.com", parsed.Subject.CommonName)
	assert.ElementsMatch(t, []string{"www.example.com", "hedgedoc.example.com"}, parsed.DNSNames)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), parsed.NotAfter, 2*time.Minute)
	assert.Contains(t, parsed.ExtKeyUsage, x509.ExtKeyUsageServerAuth)
}

func TestSelfSigned_DefaultsAndErrors(t *testing.T) {
	_, err := SelfSigned("", nil, 0)
	assert.Error(t, err)

	cert, err := SelfSigned("lb.example.com", []string{"lb.example.com"}, 0)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(DefaultValidity), cert.NotAfter, 2*time.Minute)
}
