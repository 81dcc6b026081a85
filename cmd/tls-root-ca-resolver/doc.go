// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// tls-root-ca-resolver is a command-line tool for checking whether a TLS
// server would be trusted when a single pinned certificate is the only
// acceptable trust anchor for its host.
//
// # Installation
//
//	go install github.com/H0llyW00dzZ/tls-root-ca-resolver/cmd/tls-root-ca-resolver@latest
//
// # Usage
//
//	tls-root-ca-resolver -H HOST [FLAGS]
//
// # Flags
//
//	-H, --host       Host to connect to and pin for [required unless set in --config]
//	-p, --port       TLS port (default 443)
//	-c, --cert       Pinned certificate file (PEM, DER, or PKCS#7)
//	    --root-cas   PEM bundle used instead of the system roots for default handling
//	    --strict     Reject instead of falling back on a pin mismatch
//	    --timeout    Dial and request timeout in seconds (default 10)
//	    --config     JSON or YAML configuration file ($TLS_ROOT_CA_RESOLVER_CONFIG)
//	-t, --tree       Display the presented chain as an ASCII tree
//	    --table      Display the presented chain as a markdown table
//	-j, --json       Emit a JSON report
//	    --pem        Append the presented chain as a PEM bundle
//	    --log-json   Write diagnostics as JSON lines to stderr
//	    --probe      Perform an HTTPS GET through the resolver
//
// # Examples
//
// Check a server against a private root:
//
//	tls-root-ca-resolver -H internal.example.com -c root.pem --tree
//
// Refuse to fall back to the system roots:
//
//	tls-root-ca-resolver -H internal.example.com -c root.pem --strict --probe
//
// The process exits with status 1 when the server would not be trusted.
package main
