// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package transport plugs a [resolver.Resolver] into crypto/tls and net/http.
//
// Every handshake raises a server-trust challenge for the dialled host and
// the resolver's decision is enforced:
//   - use-credential: the connection is accepted once its trust has been
//     evaluated (against the pinned certificate, or the default roots when
//     nothing is pinned)
//   - perform-default-handling: the chain is verified against the configured
//     RootCAs, or the system pool when none are set
//   - reject: the handshake fails with [ErrTrustRejected]
//
// A client pinned to a self-signed root CA:
//
//	client, err := transport.NewHTTPClientForHost("api.example.com", rootDER,
//		transport.WithTimeout(10*time.Second))
//	if err != nil {
//		return err
//	}
//	resp, err := client.Get("https://api.example.com/status")
package transport
