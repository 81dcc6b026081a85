// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package transport

import (
	"crypto/tls"
	"crypto/x509"
	"net"
	"net/http"
	"time"

	"github.com/H0llyW00dzZ/tls-root-ca-resolver/src/logger"
	"github.com/H0llyW00dzZ/tls-root-ca-resolver/src/resolver"
)

// DefaultTimeout is the request timeout of clients built without [WithTimeout].
const DefaultTimeout = 30 * time.Second

// Option configures clients built by [NewHTTPClient].
type Option func(*clientOptions)

type clientOptions struct {
	timeout   time.Duration
	tlsConfig *tls.Config
	rootCAs   *x509.CertPool
	netDialer *net.Dialer
	log       logger.Logger
}

// WithTimeout sets the overall request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.timeout = d }
}

// WithTLSConfig sets the base TLS configuration cloned for every connection.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(o *clientOptions) { o.tlsConfig = cfg }
}

// WithRootCAs sets the roots used for default handling, overriding any
// RootCAs in the base TLS configuration.
func WithRootCAs(pool *x509.CertPool) Option {
	return func(o *clientOptions) { o.rootCAs = pool }
}

// WithNetDialer sets the dialer used for the underlying TCP connections.
func WithNetDialer(d *net.Dialer) Option {
	return func(o *clientOptions) { o.netDialer = d }
}

// WithLogger logs refused handshakes to l.
func WithLogger(l logger.Logger) Option {
	return func(o *clientOptions) { o.log = l }
}

// NewHTTPClient returns an HTTP client whose TLS trust is decided by r.
//
// The client negotiates HTTP/2 over ALPN unless the base configuration from
// [WithTLSConfig] sets its own NextProtos.
func NewHTTPClient(r *resolver.Resolver, opts ...Option) *http.Client {
	o := &clientOptions{
		timeout:   DefaultTimeout,
		netDialer: &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(o)
	}

	var base *tls.Config
	if o.tlsConfig != nil {
		base = o.tlsConfig.Clone()
	} else {
		base = &tls.Config{}
	}
	if o.rootCAs != nil {
		base.RootCAs = o.rootCAs
	}
	// DialTLSContext bypasses the transport's own ALPN setup.
	if len(base.NextProtos) == 0 {
		base.NextProtos = []string{"h2", "http/1.1"}
	}

	d := &Dialer{
		Resolver:  r,
		NetDialer: o.netDialer,
		Config:    base,
		Logger:    o.log,
	}

	// DialTLSContext covers direct HTTPS; TLSClientConfig covers requests
	// tunnelled through a proxy, where the challenge host comes from SNI.
	// Proxied requests to IP literals carry no SNI and fail with ErrNoServerName.
	tr := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           o.netDialer.DialContext,
		DialTLSContext:        d.DialContext,
		TLSClientConfig:       configWithLogger(r, "", base, o.log),
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Transport: tr,
		Timeout:   o.timeout,
	}
}

// NewHTTPClientForHost builds a [resolver.Resolver] for host and an optional
// pinned certificate and returns a client using it.
//
// Returns:
//   - *http.Client: Configured HTTP client
//   - error: Construction error from [resolver.New]
func NewHTTPClientForHost(host string, pinned []byte, opts ...Option) (*http.Client, error) {
	r, err := resolver.New(host, pinned)
	if err != nil {
		return nil, err
	}
	return NewHTTPClient(r, opts...), nil
}
