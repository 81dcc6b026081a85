// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	x509certs "github.com/H0llyW00dzZ/tls-root-ca-resolver/src/internal/x509/certs"
)

// Trust labels reported per certificate by the renderers.
const (
	TrustAnchor     = "anchor"
	TrustVerified   = "verified"
	TrustUnverified = "unverified"
)

// RenderASCIITree renders the presented chain as an ASCII tree diagram.
//
// Certificates that are configured anchors, or part of the last verified
// chain, are marked with a check; the rest with a cross.
//
// Returns:
//   - string: ASCII tree representation of the certificate chain
//
// Thread Safety: Safe for concurrent use.
func (ch *Chain) RenderASCIITree() string {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	if len(ch.Certs) == 0 {
		return "No certificates in chain"
	}

	var result strings.Builder
	for i, cert := range ch.Certs {
		connector := "├── "
		if i == len(ch.Certs)-1 {
			connector = "└── "
		}

		statusIcon := "✓"
		if ch.trustLabelLocked(cert) == TrustUnverified {
			statusIcon = "✗"
		}

		certInfo := fmt.Sprintf("[%s] %s", statusIcon, displayName(cert))
		if role := ch.getCertificateRole(i); role != "" {
			certInfo += fmt.Sprintf(" (%s)", role)
		}

		result.WriteString(connector + certInfo + "\n")
	}

	return result.String()
}

// RenderTable renders the presented chain as a markdown table.
//
// Returns:
//   - string: Markdown table representation of the certificate chain
//
// Thread Safety: Safe for concurrent use.
func (ch *Chain) RenderTable() string {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	if len(ch.Certs) == 0 {
		return "No certificates to display"
	}

	var buf strings.Builder
	table := tablewriter.NewTable(&buf,
		tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
	)

	table.Header([]string{"🔢 #", "🏷️ Role", "📛 Subject", "🏢 Issuer", "📅 Valid Until", "🔐 Key", "✅ Trust"})

	var rows [][]string
	for i, cert := range ch.Certs {
		algo, size := keyInfo(cert)
		key := algo
		if size > 0 {
			key = fmt.Sprintf("%d-bit %s", size, algo)
		}

		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			ch.getCertificateRole(i),
			displayName(cert),
			cert.Issuer.CommonName,
			cert.NotAfter.Format("2006-01-02"),
			key,
			ch.trustLabelLocked(cert),
		})
	}

	table.Bulk(rows)
	table.Render()
	return buf.String()
}

// ToVisualizationJSON converts the presented chain to structured JSON.
//
// Returns:
//   - []byte: JSON representation of the certificate chain
//   - error: Error if JSON marshaling fails
//
// Thread Safety: Safe for concurrent use.
func (ch *Chain) ToVisualizationJSON() ([]byte, error) {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	type CertificateVizData struct {
		Index              int       `json:"index"`
		Role               string    `json:"role"`
		Subject            string    `json:"subject"`
		Issuer             string    `json:"issuer"`
		SerialNumber       string    `json:"serialNumber"`
		FingerprintSHA256  string    `json:"fingerprintSha256"`
		SignatureAlgorithm string    `json:"signatureAlgorithm"`
		PublicKeyAlgorithm string    `json:"publicKeyAlgorithm"`
		KeySize            int       `json:"keySize"`
		NotBefore          time.Time `json:"notBefore"`
		NotAfter           time.Time `json:"notAfter"`
		IsCA               bool      `json:"isCA"`
		Trust              string    `json:"trust"`
		PEM                string    `json:"pem"`
	}

	type VisualizationData struct {
		Timestamp    string               `json:"timestamp"`
		Host         string               `json:"host"`
		ChainLength  int                  `json:"chainLength"`
		AnchorsOnly  bool                 `json:"anchorsOnly"`
		Anchors      []string             `json:"anchors"`
		Certificates []CertificateVizData `json:"certificates"`
	}

	data := VisualizationData{
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Host:         ch.DNSName,
		ChainLength:  len(ch.Certs),
		AnchorsOnly:  ch.anchorsOnly,
		Anchors:      make([]string, 0, len(ch.anchors)),
		Certificates: make([]CertificateVizData, len(ch.Certs)),
	}

	for _, a := range ch.anchors {
		data.Anchors = append(data.Anchors, x509certs.Fingerprint(a))
	}

	for i, cert := range ch.Certs {
		algo, size := keyInfo(cert)
		data.Certificates[i] = CertificateVizData{
			Index:              i,
			Role:               ch.getCertificateRole(i),
			Subject:            displayName(cert),
			Issuer:             cert.Issuer.CommonName,
			SerialNumber:       cert.SerialNumber.String(),
			FingerprintSHA256:  x509certs.Fingerprint(cert),
			SignatureAlgorithm: cert.SignatureAlgorithm.String(),
			PublicKeyAlgorithm: algo,
			KeySize:            size,
			NotBefore:          cert.NotBefore,
			NotAfter:           cert.NotAfter,
			IsCA:               cert.IsCA,
			Trust:              ch.trustLabelLocked(cert),
			PEM:                string(ch.EncodePEM(cert)),
		}
	}

	return json.MarshalIndent(data, "", "  ")
}

// trustLabelLocked classifies cert for display. Callers hold ch.mu.
func (ch *Chain) trustLabelLocked(cert *x509.Certificate) string {
	if ch.isAnchorLocked(cert) {
		return TrustAnchor
	}
	for _, chain := range ch.verified {
		for _, c := range chain {
			if c.Equal(cert) {
				return TrustVerified
			}
		}
	}
	return TrustUnverified
}

// getCertificateRole determines the role of a certificate in the chain.
//
// Parameters:
//   - index: Zero-based position of the certificate in the chain
//
// Returns:
//   - string: Role description
func (ch *Chain) getCertificateRole(index int) string {
	total := len(ch.Certs)
	switch {
	case total == 1 && ch.IsSelfSigned(ch.Certs[0]):
		return "Self-Signed Certificate"
	case index == 0:
		return "End-Entity (Server/Leaf) Certificate"
	case index == total-1 && ch.IsSelfSigned(ch.Certs[index]):
		return "Root CA Certificate"
	default:
		return "Intermediate CA Certificate"
	}
}

// displayName prefers the subject common name and falls back to the first SAN.
func displayName(cert *x509.Certificate) string {
	if cert.Subject.CommonName != "" {
		return cert.Subject.CommonName
	}
	if len(cert.DNSNames) > 0 {
		return cert.DNSNames[0]
	}
	if len(cert.IPAddresses) > 0 {
		return cert.IPAddresses[0].String()
	}
	return cert.Subject.String()
}

func keyInfo(cert *x509.Certificate) (string, int) {
	switch pub := cert.PublicKey.(type) {
	case *rsa.PublicKey:
		return "RSA", pub.Size() * 8
	case *ecdsa.PublicKey:
		return "ECDSA", pub.Curve.Params().BitSize
	case ed25519.PublicKey:
		return "Ed25519", 256
	default:
		return "unknown", 0
	}
}
