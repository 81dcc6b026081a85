// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package cli provides the command-line interface for the TLS root CA trust resolver.
// It implements a Cobra-based CLI that connects to a server, captures the presented
// certificate chain, runs the resolver against it with an optional pinned certificate,
// and reports the decision as text, JSON, an ASCII tree, or a markdown table.
// Settings may come from a JSON or YAML configuration file, with flags taking precedence.
// The optional probe performs a real HTTPS request through the resolver-backed transport.
package cli
