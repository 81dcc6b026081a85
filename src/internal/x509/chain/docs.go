// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509chain evaluates trust for the [X.509] certificate chain a
// server presents during a TLS handshake.
//
// A [Chain] is the per-handshake evaluation handle handed to the resolver. It
// provides capabilities to:
//   - Replace the trust anchors for a single evaluation, optionally excluding
//     every other root.
//   - Verify the presented chain for a host against those anchors or the
//     default roots.
//   - Capture the chain presented by a remote TLS endpoint for diagnostics.
//   - Render the chain as an ASCII tree, markdown table, or JSON.
//
// Chain construction from AIA URLs and revocation checking are left to the
// platform TLS stack.
//
// [X.509]: https://grokipedia.com/page/X.509
package x509chain
