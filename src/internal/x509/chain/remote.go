// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

// ErrNoPeerCertificates is returned when the server completes the handshake
// without presenting any certificate.
var ErrNoPeerCertificates = errors.New("x509chain: no certificates received from server")

// FetchRemoteChain establishes a TLS connection to the target host and
// returns a Chain built from the certificates presented during the
// handshake. No verification is performed here; the returned Chain is meant
// to be evaluated by the caller. Its DNSName is set to hostname.
func FetchRemoteChain(ctx context.Context, hostname string, port int, timeout time.Duration) (*Chain, error) {
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: timeout},
		Config: &tls.Config{
			ServerName: hostname,
			// We just want the presented chain; trust is decided by the resolver.
			InsecureSkipVerify: true,
		},
	}

	addr := net.JoinHostPort(hostname, strconv.Itoa(port))
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	defer conn.Close()

	peerCerts := conn.(*tls.Conn).ConnectionState().PeerCertificates
	if len(peerCerts) == 0 {
		return nil, ErrNoPeerCertificates
	}

	return New(peerCerts, hostname), nil
}
