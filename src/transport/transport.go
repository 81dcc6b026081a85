// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package transport

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"

	x509chain "github.com/H0llyW00dzZ/tls-root-ca-resolver/src/internal/x509/chain"
	"github.com/H0llyW00dzZ/tls-root-ca-resolver/src/logger"
	"github.com/H0llyW00dzZ/tls-root-ca-resolver/src/resolver"
)

var (
	// ErrTrustRejected is returned from the handshake when the resolver rejects the server.
	ErrTrustRejected = errors.New("transport: server trust rejected")

	// ErrNoPeerCertificates is returned when the server presented no certificate.
	ErrNoPeerCertificates = x509chain.ErrNoPeerCertificates

	// ErrNoServerName is returned when no host is known to verify the server
	// against, such as an IP literal dialled without a server name.
	ErrNoServerName = errors.New("transport: no server name to verify against")
)

// Config returns a copy of base whose handshakes are decided by r.
//
// serverName is the host the challenge is raised for and the name the chain
// must be valid for; when empty base.ServerName and then the negotiated SNI
// are used. A handshake for which none of them is known fails with
// [ErrNoServerName] unless base.InsecureSkipVerify is set. base may be nil.
// base.RootCAs (system pool when nil) serves default handling, and
// base.InsecureSkipVerify turns default handling into acceptance, matching
// what crypto/tls would have done without the resolver.
func Config(r *resolver.Resolver, serverName string, base *tls.Config) *tls.Config {
	return configWithLogger(r, serverName, base, nil)
}

func configWithLogger(r *resolver.Resolver, serverName string, base *tls.Config, log logger.Logger) *tls.Config {
	var cfg *tls.Config
	if base != nil {
		cfg = base.Clone()
	} else {
		cfg = &tls.Config{}
	}
	if cfg.ServerName == "" {
		cfg.ServerName = serverName
	}

	v := &verifier{
		resolver:    r,
		serverName:  cfg.ServerName,
		roots:       cfg.RootCAs,
		skipDefault: cfg.InsecureSkipVerify,
		next:        cfg.VerifyConnection,
		log:         log,
	}

	// VerifyConnection also runs for resumed sessions.
	cfg.InsecureSkipVerify = true
	cfg.VerifyConnection = v.verifyConnection
	return cfg
}

// verifier enforces resolver decisions for one tls.Config.
type verifier struct {
	resolver    *resolver.Resolver
	serverName  string
	roots       *x509.CertPool
	skipDefault bool
	next        func(tls.ConnectionState) error
	log         logger.Logger
}

func (v *verifier) verifyConnection(cs tls.ConnectionState) error {
	if err := v.decide(cs); err != nil {
		if v.log != nil {
			v.log.Printf("transport: handshake with %q refused: %v", v.host(cs), err)
		}
		return err
	}
	if v.next != nil {
		return v.next(cs)
	}
	return nil
}

func (v *verifier) host(cs tls.ConnectionState) string {
	if v.serverName != "" {
		return v.serverName
	}
	return cs.ServerName
}

func (v *verifier) decide(cs tls.ConnectionState) error {
	if len(cs.PeerCertificates) == 0 {
		return ErrNoPeerCertificates
	}

	host := v.host(cs)
	if host == "" {
		if v.skipDefault {
			return nil
		}
		return ErrNoServerName
	}
	trust := v.newChain(cs, host)

	d := v.resolver.Resolve(resolver.ServerTrust(host, trust))
	switch d.Disposition {
	case resolver.UseCredential:
		return v.acceptCredential(d.Credential, cs, host)
	case resolver.Reject:
		return fmt.Errorf("%w for %s", ErrTrustRejected, host)
	default:
		return v.defaultHandling(cs, host)
	}
}

// acceptCredential accepts trust the resolver has already evaluated and
// evaluates it against the default roots otherwise.
func (v *verifier) acceptCredential(cred *resolver.Credential, cs tls.ConnectionState, host string) error {
	if cred != nil {
		if chain, ok := cred.Trust.(*x509chain.Chain); ok && len(chain.VerifiedChains()) > 0 {
			return nil
		}
	}
	if err := v.newChain(cs, host).Evaluate(); err != nil {
		return fmt.Errorf("transport: trust evaluation for %s failed: %w", host, err)
	}
	return nil
}

func (v *verifier) defaultHandling(cs tls.ConnectionState, host string) error {
	if v.skipDefault {
		return nil
	}
	if err := v.newChain(cs, host).Evaluate(); err != nil {
		return fmt.Errorf("transport: default verification for %s failed: %w", host, err)
	}
	return nil
}

func (v *verifier) newChain(cs tls.ConnectionState, host string) *x509chain.Chain {
	chain := x509chain.New(cs.PeerCertificates, host)
	chain.Roots = v.roots
	return chain
}

// Dialer dials TLS connections whose trust is decided by Resolver.
type Dialer struct {
	Resolver *resolver.Resolver
	// NetDialer is used for the underlying TCP connection. Nil uses a zero net.Dialer.
	NetDialer *net.Dialer
	// Config is the base TLS configuration; see [Config].
	Config *tls.Config
	// Logger receives refused handshakes. Nil disables logging.
	Logger logger.Logger
}

// DialContext connects to addr and performs the TLS handshake. The host part
// of addr is the host the challenge is raised for.
func (d *Dialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}

	td := &tls.Dialer{
		NetDialer: d.NetDialer,
		Config:    configWithLogger(d.Resolver, host, d.Config, d.Logger),
	}
	return td.DialContext(ctx, network, addr)
}
