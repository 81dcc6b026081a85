// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package resolver

import (
	"crypto/x509"
	"fmt"

	x509certs "github.com/H0llyW00dzZ/tls-root-ca-resolver/src/internal/x509/certs"
	"github.com/H0llyW00dzZ/tls-root-ca-resolver/src/logger"
)

// Resolver resolves server-trust challenges for a single host, optionally
// pinning the connection to one root CA certificate.
//
// A Resolver holds no mutable state and is safe for concurrent use by
// multiple goroutines.
type Resolver struct {
	host   string
	pinned *x509.Certificate
	strict bool
	log    logger.Logger
}

// Option configures a [Resolver] at construction time.
type Option func(*Resolver)

// WithStrictPinning makes a failed evaluation against the pinned certificate
// yield [Reject] instead of [PerformDefaultHandling].
func WithStrictPinning() Option {
	return func(r *Resolver) { r.strict = true }
}

// WithLogger logs every decision to l. Resolvers are silent by default.
func WithLogger(l logger.Logger) Option {
	return func(r *Resolver) { r.log = l }
}

// New creates a Resolver for host.
//
// pinned is the certificate the server's chain must be rooted in, usually
// DER; PEM and PKCS7 are accepted too. A nil pinned means no certificate is
// pinned and any trust presented for host is accepted.
//
// Parameters:
//   - host: Host to trust, compared exactly against each challenge
//   - pinned: Optional certificate to ensure trust with
//   - opts: Optional behaviour such as [WithStrictPinning]
//
// Returns:
//   - *Resolver: New Resolver instance
//   - error: [ErrInvalidHost], [ErrInvalidCertificateData], or [ErrInvalidCertificate]
func New(host string, pinned []byte, opts ...Option) (*Resolver, error) {
	if host == "" {
		return nil, ErrInvalidHost
	}
	if pinned != nil && len(pinned) == 0 {
		return nil, ErrInvalidCertificateData
	}

	r := &Resolver{host: host}
	for _, opt := range opts {
		opt(r)
	}

	if pinned != nil {
		cert, err := x509certs.New().Decode(pinned)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCertificate, err)
		}
		r.pinned = cert
	}

	return r, nil
}

// Host returns the host the resolver was built for.
func (r *Resolver) Host() string { return r.host }

// PinnedCertificate returns the pinned certificate, or nil when none is configured.
func (r *Resolver) PinnedCertificate() *x509.Certificate { return r.pinned }

// Strict reports whether [WithStrictPinning] was applied.
func (r *Resolver) Strict() bool { return r.strict }

// Resolve decides how the transport should handle ch.
//
// Only server-trust challenges for exactly the configured host, carrying a
// trust context, are considered; everything else gets default handling.
// Without a pinned certificate the presented trust is accepted as is. With
// one, the trust context's anchors are replaced by the pinned certificate
// alone and the chain is evaluated; success accepts the connection and
// failure falls back to default handling, or rejects in strict mode.
//
// Resolve never returns an error and keeps no state between calls.
func (r *Resolver) Resolve(ch Challenge) Decision {
	if ch.AuthenticationMethod != MethodServerTrust {
		return r.decide(ch, defaultHandling(), "unsupported authentication method")
	}
	if ch.Trust == nil {
		return r.decide(ch, defaultHandling(), "no trust to evaluate")
	}
	if ch.Host != r.host {
		return r.decide(ch, defaultHandling(), "host mismatch")
	}

	if r.pinned == nil {
		return r.decide(ch, useCredential(ch.Trust), "no pinned certificate")
	}

	ch.Trust.SetAnchorCertificates([]*x509.Certificate{r.pinned})
	ch.Trust.SetAnchorCertificatesOnly(true)
	if err := ch.Trust.Evaluate(); err != nil {
		reason := fmt.Sprintf("pinned certificate evaluation failed: %v", err)
		if r.strict {
			return r.decide(ch, reject(), reason)
		}
		return r.decide(ch, defaultHandling(), reason)
	}

	return r.decide(ch, useCredential(ch.Trust), "trusted by pinned certificate")
}

func (r *Resolver) decide(ch Challenge, d Decision, reason string) Decision {
	if r.log != nil {
		r.log.Printf("resolver: host=%q challenge_host=%q method=%s decision=%s reason=%s",
			r.host, ch.Host, ch.AuthenticationMethod, d.Disposition, reason)
	}
	return d
}
