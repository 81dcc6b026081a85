// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli_test

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/tls-root-ca-resolver/src/cli"
	"github.com/H0llyW00dzZ/tls-root-ca-resolver/src/internal/helper/testcert"
	"github.com/H0llyW00dzZ/tls-root-ca-resolver/src/logger"
	"github.com/H0llyW00dzZ/tls-root-ca-resolver/src/resolver"
)

const version = "1.3.3.7-testing"

type fixture struct {
	port      string
	rootFile  string
	otherFile string
	derFile   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	root, err := testcert.NewAuthority("CLI Root CA")
	require.NoError(t, err)
	leaf, err := root.Issue([]string{"127.0.0.1"})
	require.NoError(t, err)
	other, err := testcert.NewAuthority("CLI Other CA")
	require.NoError(t, err)

	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	srv.TLS = &tls.Config{Certificates: []tls.Certificate{leaf.TLSCertificate()}}
	srv.StartTLS()
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	f := &fixture{
		port:      strconv.Itoa(srv.Listener.Addr().(*net.TCPAddr).Port),
		rootFile:  filepath.Join(dir, "root.pem"),
		otherFile: filepath.Join(dir, "other.pem"),
		derFile:   filepath.Join(dir, "root.der"),
	}
	require.NoError(t, os.WriteFile(f.rootFile, testcert.PEM(root.Cert), 0o600))
	require.NoError(t, os.WriteFile(f.otherFile, testcert.PEM(other.Cert), 0o600))
	require.NoError(t, os.WriteFile(f.derFile, root.Cert.Raw, 0o600))
	return f
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, logs bytes.Buffer
	cmd := cli.NewRootCommand(version, logger.NewJSONLogger(&logs, false))
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestExecute_NoHost(t *testing.T) {
	t.Setenv(cli.ConfigEnv, "")

	origArgs := os.Args
	defer func() { os.Args = origArgs }()
	os.Args = []string{"cmd"}

	err := cli.Execute(context.Background(), version, logger.NewJSONLogger(io.Discard, true))
	assert.ErrorIs(t, err, cli.ErrHostRequired)
	assert.False(t, cli.OperationPerformed)
}

func TestRootCommand(t *testing.T) {
	t.Setenv(cli.ConfigEnv, "")
	f := newFixture(t)

	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Pinned Root Trusted",
			testFunc: func(t *testing.T) {
				out, err := execute(t, "-H", "127.0.0.1", "-p", f.port, "-c", f.rootFile)
				require.NoError(t, err)
				assert.Contains(t, out, "Decision: use-credential")
				assert.Contains(t, out, "Trusted:  true")
				assert.Contains(t, out, "Anchor:   ", "the pinned root should be reported as the anchor")
				assert.True(t, cli.OperationPerformedSuccessfully)
			},
		},
		{
			name: "Pinned DER Root With Tree",
			testFunc: func(t *testing.T) {
				out, err := execute(t, "-H", "127.0.0.1", "-p", f.port, "-c", f.derFile, "--tree")
				require.NoError(t, err)
				assert.Contains(t, out, "[✓]")
			},
		},
		{
			name: "Pin Mismatch Falls Back And Fails",
			testFunc: func(t *testing.T) {
				out, err := execute(t, "-H", "127.0.0.1", "-p", f.port, "-c", f.otherFile)
				require.ErrorIs(t, err, cli.ErrUntrusted)
				assert.Contains(t, out, "Decision: perform-default-handling")
				assert.Contains(t, out, "default verification failed")
				assert.True(t, cli.OperationPerformed)
				assert.False(t, cli.OperationPerformedSuccessfully)
			},
		},
		{
			name: "Pin Mismatch Trusted By Root CAs",
			testFunc: func(t *testing.T) {
				out, err := execute(t, "-H", "127.0.0.1", "-p", f.port, "-c", f.otherFile, "--root-cas", f.rootFile)
				require.NoError(t, err)
				assert.Contains(t, out, "Decision: perform-default-handling")
				assert.Contains(t, out, "Trusted:  true")
				assert.NotContains(t, out, "Anchor:", "the pin played no part in the trust")
			},
		},
		{
			name: "Strict Pin Mismatch Rejects",
			testFunc: func(t *testing.T) {
				out, err := execute(t, "-H", "127.0.0.1", "-p", f.port, "-c", f.otherFile, "--root-cas", f.rootFile, "--strict")
				require.ErrorIs(t, err, cli.ErrUntrusted)
				assert.Contains(t, out, "Decision: reject")
			},
		},
		{
			name: "JSON Report",
			testFunc: func(t *testing.T) {
				out, err := execute(t, "-H", "127.0.0.1", "-p", f.port, "-c", f.rootFile, "--json")
				require.NoError(t, err)

				var rep struct {
					Host     string `json:"host"`
					Decision string `json:"decision"`
					Trusted  bool   `json:"trusted"`
					Pinned   string `json:"pinnedFingerprintSha256"`
					Anchor   string `json:"anchoredBySha256"`
					Chain    struct {
						ChainLength  int `json:"chainLength"`
						Certificates []struct {
							Trust string `json:"trust"`
						} `json:"certificates"`
					} `json:"chain"`
				}
				require.NoError(t, json.Unmarshal([]byte(out), &rep), "output should be valid JSON")
				assert.Equal(t, "127.0.0.1", rep.Host)
				assert.Equal(t, "use-credential", rep.Decision)
				assert.True(t, rep.Trusted)
				assert.NotEmpty(t, rep.Pinned)
				assert.Equal(t, rep.Pinned, rep.Anchor)
				assert.Equal(t, 1, rep.Chain.ChainLength)
				require.Len(t, rep.Chain.Certificates, 1)
				assert.Equal(t, "verified", rep.Chain.Certificates[0].Trust)
			},
		},
		{
			name: "PEM Bundle",
			testFunc: func(t *testing.T) {
				out, err := execute(t, "-H", "127.0.0.1", "-p", f.port, "-c", f.rootFile, "--pem")
				require.NoError(t, err)

				_, rest, found := strings.Cut(out, "-----BEGIN CERTIFICATE-----")
				require.True(t, found, "output should carry the presented chain")
				block, _ := pem.Decode([]byte("-----BEGIN CERTIFICATE-----" + rest))
				require.NotNil(t, block)
				cert, err := x509.ParseCertificate(block.Bytes)
				require.NoError(t, err)
				assert.Equal(t, "127.0.0.1", cert.IPAddresses[0].String())
			},
		},
		{
			name: "Table",
			testFunc: func(t *testing.T) {
				out, err := execute(t, "-H", "127.0.0.1", "-p", f.port, "-c", f.rootFile, "--table")
				require.NoError(t, err)
				assert.Contains(t, out, "|")
			},
		},
		{
			name: "Probe",
			testFunc: func(t *testing.T) {
				out, err := execute(t, "-H", "127.0.0.1", "-p", f.port, "-c", f.rootFile, "--probe")
				require.NoError(t, err)
				assert.Contains(t, out, "Probe:    204 No Content")
			},
		},
		{
			name: "Config File With Flag Override",
			testFunc: func(t *testing.T) {
				cfg := filepath.Join(t.TempDir(), "resolver.yaml")
				content := "host: 127.0.0.1\nport: " + f.port + "\ncertificate: " + f.otherFile + "\n"
				require.NoError(t, os.WriteFile(cfg, []byte(content), 0o600))

				out, err := execute(t, "--config", cfg, "-c", f.rootFile)
				require.NoError(t, err, "--cert should override the configured certificate")
				assert.Contains(t, out, "Decision: use-credential")
			},
		},
		{
			name: "Invalid Certificate File",
			testFunc: func(t *testing.T) {
				bad := filepath.Join(t.TempDir(), "invalid.cer")
				require.NoError(t, os.WriteFile(bad, []byte("invalid data"), 0o600))

				_, err := execute(t, "-H", "127.0.0.1", "-p", f.port, "-c", bad)
				assert.ErrorIs(t, err, resolver.ErrInvalidCertificate)
			},
		},
		{
			name: "Non-Existent Certificate File",
			testFunc: func(t *testing.T) {
				_, err := execute(t, "-H", "127.0.0.1", "-c", filepath.Join(t.TempDir(), "missing.cer"))
				assert.ErrorIs(t, err, os.ErrNotExist)
			},
		},
		{
			name: "Unexpected Argument",
			testFunc: func(t *testing.T) {
				_, err := execute(t, "-H", "127.0.0.1", "extra")
				assert.Error(t, err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}
