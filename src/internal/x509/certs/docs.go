// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509certs decodes and encodes the [X.509] certificates that the
// resolver pins as trust anchors. It accepts [PEM], DER, and [PKCS7] input,
// decodes root CA bundles into pools for default trust handling, and computes
// fingerprints for logging.
//
// [X.509]: https://grokipedia.com/page/X.509
// [PKCS7]: https://grokipedia.com/page/PKCS_7
// [PEM]: https://grokipedia.com/page/PEM#privacy-enhanced-mail
package x509certs
