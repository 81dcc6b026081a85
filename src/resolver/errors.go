// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package resolver

import "errors"

var (
	// ErrInvalidHost indicates that the resolver was built with an empty host.
	ErrInvalidHost = errors.New("resolver: a valid host is required")

	// ErrInvalidCertificateData indicates that certificate bytes were supplied but empty.
	ErrInvalidCertificateData = errors.New("resolver: trust certificate must contain data")

	// ErrInvalidCertificate indicates that the certificate bytes could not be parsed.
	ErrInvalidCertificate = errors.New("resolver: invalid trust certificate")
)
