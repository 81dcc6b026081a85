// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"crypto/x509"
	"errors"
	"sync"
	"time"

	x509certs "github.com/H0llyW00dzZ/tls-root-ca-resolver/src/internal/x509/certs"
)

// ErrEmptyChain is returned by [Chain.Evaluate] when no certificates were presented.
var ErrEmptyChain = errors.New("x509chain: no certificates presented")

// Chain holds the [X.509] certificates a server presented during a single
// TLS handshake and evaluates trust for them.
//
// A nil *Chain is a valid empty chain for the trust methods: anchor setters
// do nothing and Evaluate fails with [ErrEmptyChain].
//
// It is the transient evaluation handle passed to the resolver: anchors set
// on it only affect this one evaluation.
//
// [X.509]: https://grokipedia.com/page/X.509
type Chain struct {
	mu    sync.RWMutex
	Certs []*x509.Certificate
	*x509certs.Certificate

	// DNSName is the host the leaf must be valid for. Empty skips the check.
	DNSName string
	// Roots is the pool used for default evaluation. Nil means the system pool.
	Roots *x509.CertPool
	// CurrentTime overrides the clock for validity checks when non-zero.
	CurrentTime time.Time

	anchors     []*x509.Certificate
	anchorsOnly bool
	verified    [][]*x509.Certificate
}

// New creates a Chain from the certificates presented by a server.
//
// Parameters:
//   - certs: Presented certificates, leaf first
//   - dnsName: Host name the leaf is expected to cover
//
// Returns:
//   - *Chain: New Chain instance
func New(certs []*x509.Certificate, dnsName string) *Chain {
	return &Chain{
		Certs:       append([]*x509.Certificate(nil), certs...),
		Certificate: x509certs.New(),
		DNSName:     dnsName,
	}
}

// SetAnchorCertificates replaces the set of anchors used by [Chain.Evaluate].
//
// Thread Safety: Safe for concurrent use.
func (ch *Chain) SetAnchorCertificates(anchors []*x509.Certificate) {
	if ch == nil {
		return
	}
	ch.mu.Lock()
	defer ch.mu.Unlock()

	ch.anchors = append([]*x509.Certificate(nil), anchors...)
}

// SetAnchorCertificatesOnly controls whether evaluation trusts only the
// configured anchors (true) or the default roots in addition to them (false).
//
// Thread Safety: Safe for concurrent use.
func (ch *Chain) SetAnchorCertificatesOnly(only bool) {
	if ch == nil {
		return
	}
	ch.mu.Lock()
	defer ch.mu.Unlock()

	ch.anchorsOnly = only
}

// IsAnchor reports whether cert is one of the configured anchors.
//
// Thread Safety: Safe for concurrent use.
func (ch *Chain) IsAnchor(cert *x509.Certificate) bool {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	return ch.isAnchorLocked(cert)
}

func (ch *Chain) isAnchorLocked(cert *x509.Certificate) bool {
	for _, a := range ch.anchors {
		if a.Equal(cert) {
			return true
		}
	}
	return false
}

// Leaf returns the end-entity certificate, or nil for an empty chain.
//
// Thread Safety: Safe for concurrent use.
func (ch *Chain) Leaf() *x509.Certificate {
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	if len(ch.Certs) == 0 {
		return nil
	}
	return ch.Certs[0]
}

// Evaluate verifies the presented chain for DNSName.
//
// The roots used depend on the anchor configuration:
//   - no anchors: Roots (system pool when nil)
//   - anchors, anchors-only: exactly the anchors
//   - anchors, not anchors-only: Roots (or system pool) plus the anchors
//
// Every presented certificate after the leaf is offered as an intermediate.
// On success the verified chains are kept for [Chain.VerifiedChains].
//
// Returns:
//   - error: Error from [x509.Certificate.Verify], or [ErrEmptyChain]
//
// Thread Safety: Safe for concurrent use.
func (ch *Chain) Evaluate() error {
	if ch == nil {
		return ErrEmptyChain
	}
	ch.mu.Lock()
	defer ch.mu.Unlock()

	ch.verified = nil
	if len(ch.Certs) == 0 {
		return ErrEmptyChain
	}

	roots, err := ch.rootsLocked()
	if err != nil {
		return err
	}

	intermediates := x509.NewCertPool()
	for _, cert := range ch.Certs[1:] {
		intermediates.AddCert(cert)
	}

	opts := x509.VerifyOptions{
		DNSName:       ch.DNSName,
		Roots:         roots,
		Intermediates: intermediates,
		CurrentTime:   ch.CurrentTime,
	}

	chains, err := ch.Certs[0].Verify(opts)
	if err != nil {
		return err
	}

	ch.verified = chains
	return nil
}

// rootsLocked builds the root pool for one evaluation. Callers hold ch.mu.
func (ch *Chain) rootsLocked() (*x509.CertPool, error) {
	if len(ch.anchors) == 0 {
		return ch.Roots, nil
	}

	var pool *x509.CertPool
	switch {
	case ch.anchorsOnly:
		pool = x509.NewCertPool()
	case ch.Roots != nil:
		pool = ch.Roots.Clone()
	default:
		sys, err := x509.SystemCertPool()
		if err != nil {
			return nil, err
		}
		pool = sys
	}

	for _, a := range ch.anchors {
		pool.AddCert(a)
	}
	return pool, nil
}

// VerifiedChains returns the chains built by the last successful evaluation.
//
// Thread Safety: Safe for concurrent use.
func (ch *Chain) VerifiedChains() [][]*x509.Certificate {
	if ch == nil {
		return nil
	}
	ch.mu.RLock()
	defer ch.mu.RUnlock()

	return ch.verified
}

// IsSelfSigned checks if a certificate is self-signed.
//
// Parameters:
//   - cert: Certificate to check
//
// Returns:
//   - bool: true if self-signed, false otherwise
func (ch *Chain) IsSelfSigned(cert *x509.Certificate) bool {
	return cert.CheckSignatureFrom(cert) == nil
}

// EncodeMultiplePEM encodes certs as a concatenated PEM bundle.
func (ch *Chain) EncodeMultiplePEM(certs []*x509.Certificate) []byte {
	var out []byte
	for _, cert := range certs {
		out = append(out, ch.EncodePEM(cert)...)
	}
	return out
}
