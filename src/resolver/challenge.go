// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package resolver

import "crypto/x509"

// AuthenticationMethod identifies the kind of authentication a challenge asks for.
type AuthenticationMethod int

const (
	// MethodOther is any challenge that is not a server-trust evaluation,
	// such as client certificates or HTTP authentication.
	MethodOther AuthenticationMethod = iota
	// MethodServerTrust asks the client to accept or reject the server's chain.
	MethodServerTrust
)

// String returns the method name.
func (m AuthenticationMethod) String() string {
	switch m {
	case MethodServerTrust:
		return "server-trust"
	default:
		return "other"
	}
}

// TrustContext is the per-handshake trust evaluation handle.
//
// Implementations hold the chain presented by the server and perform the
// cryptographic validation. A TrustContext is transient: the resolver
// mutates its anchors for the single evaluation it is handed to.
//
// Only a nil interface value counts as "no trust". A non-nil interface
// holding a nil pointer is passed to the methods, so implementations with
// pointer receivers must handle a nil receiver, as *x509chain.Chain does.
type TrustContext interface {
	// SetAnchorCertificates replaces the anchors used by Evaluate.
	SetAnchorCertificates(anchors []*x509.Certificate)
	// SetAnchorCertificatesOnly restricts Evaluate to the configured anchors
	// when only is true.
	SetAnchorCertificatesOnly(only bool)
	// Evaluate validates the presented chain, returning nil when trusted.
	Evaluate() error
}

// Challenge is a single authentication challenge raised during a handshake.
type Challenge struct {
	AuthenticationMethod AuthenticationMethod
	// Host is the host the connection is being made to.
	Host string
	// Trust is the evaluation handle for the presented chain. Nil means the
	// transport has nothing to evaluate.
	Trust TrustContext
}

// ServerTrust is shorthand for a server-trust challenge for host.
func ServerTrust(host string, trust TrustContext) Challenge {
	return Challenge{
		AuthenticationMethod: MethodServerTrust,
		Host:                 host,
		Trust:                trust,
	}
}

// Disposition is the action a transport takes for a challenge.
type Disposition int

const (
	// PerformDefaultHandling hands the challenge to the transport's default policy.
	PerformDefaultHandling Disposition = iota
	// UseCredential accepts the connection using the supplied credential.
	UseCredential
	// Reject aborts the connection.
	Reject
)

// String returns the disposition name.
func (d Disposition) String() string {
	switch d {
	case UseCredential:
		return "use-credential"
	case Reject:
		return "reject"
	default:
		return "perform-default-handling"
	}
}

// Credential carries the trust the connection is accepted with.
type Credential struct {
	Trust TrustContext
}

// Decision is the outcome of resolving a challenge.
type Decision struct {
	Disposition Disposition
	// Credential is non-nil only when Disposition is UseCredential.
	Credential *Credential
}

func useCredential(trust TrustContext) Decision {
	return Decision{Disposition: UseCredential, Credential: &Credential{Trust: trust}}
}

func defaultHandling() Decision { return Decision{Disposition: PerformDefaultHandling} }

func reject() Decision { return Decision{Disposition: Reject} }
