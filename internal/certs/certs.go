// Package certs generates self-signed TLS certificates for load balancer
// listeners that have no real domain.
package certs

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"time"
)

// KeyBits is the RSA key size of generated certificates.
const KeyBits = 2048

// DefaultValidity is how long generated certificates stay valid.
const DefaultValidity = 365 * 24 * time.Hour

// Certificate is a PEM-encoded certificate and its private key.
type Certificate struct {
	CertificatePEM string
	PrivateKeyPEM  string
	NotAfter       time.Time
}

// SelfSigned creates a certificate for commonName. dnsNames are added as
// subject alternative names; commonName is always included.
func SelfSigned(commonName string, dnsNames []string, validity time.Duration) (*Certificate, error) {
	if commonName == "" {
		return nil, fmt.Errorf("certs: common name is required")
	}
	if validity <= 0 {
		validity = DefaultValidity
	}

	key, err := rsa.GenerateKey(rand.Reader, KeyBits)
	if err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, fmt.Errorf("generating serial: %w", err)
	}

	notBefore := time.Now().Add(-time.Minute).UTC()
	tmpl := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: commonName, Organization: []string{"HedgeDoc"}},
		DNSNames:              appendUnique(dnsNames, commonName),
		NotBefore:             notBefore,
		NotAfter:              notBefore.Add(validity),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		return nil, fmt.Errorf("creating certificate: %w", err)
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})

	return &Certificate{
		CertificatePEM: string(certPEM),
		PrivateKeyPEM:  string(keyPEM),
		NotAfter:       tmpl.NotAfter,
	}, nil
}

func appendUnique(names []string, name string) []string {
	for _, n := range names {
		if n == name {
			return names
		}
	}
	return append(append([]string(nil), names...), name)
}
