// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package posix provides [POSIX]-compliant helper functions for cross-platform compatibility.
//
// Key functions:
//   - GetExecutableName: Returns the executable name without extension for CLI usage
//
// The root command of the resolver CLI uses it for its usage line and examples:
//
//	rootCmd := &cobra.Command{
//	    Use:     posix.GetExecutableName(),
//	    Example: fmt.Sprintf("  %s -H example.com -c root.pem", posix.GetExecutableName()),
//	}
//
// Cross-Platform Behavior:
//
//   - Linux/macOS: "/usr/bin/myapp" → "myapp"
//   - Windows: "C:\bin\myapp.exe" → "myapp"
//   - Fallback: Empty args → "tls-root-ca-resolver"
//
// [POSIX]: https://grokipedia.com/page/POSIX
package posix
