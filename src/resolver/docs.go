// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package resolver decides whether a TLS client should trust the server it is
// talking to, for one configured host and an optional pinned root CA.
//
// A [Resolver] is built once with [New] and is immutable afterwards, so a
// single value may be shared by every connection to the host. For each
// server-trust [Challenge] the transport calls [Resolver.Resolve] and acts on
// the returned [Decision]:
//
//	r, err := resolver.New("api.example.com", pinnedDER)
//	if err != nil {
//		return err
//	}
//
//	switch d := r.Resolve(ch); d.Disposition {
//	case resolver.UseCredential:
//		// accept the connection
//	case resolver.PerformDefaultHandling:
//		// run the transport's usual verification
//	case resolver.Reject:
//		// abort the handshake
//	}
//
// The resolver only defines policy. Cryptographic chain validation is
// delegated to the [TrustContext] carried by the challenge; the
// transport package supplies one backed by crypto/x509.
//
// When a pinned certificate fails to validate the resolver falls back to
// default handling rather than rejecting. Use [WithStrictPinning] to reject
// instead.
package resolver
