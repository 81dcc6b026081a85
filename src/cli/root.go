// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"context"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/tls-root-ca-resolver/src/internal/helper/gc"
	"github.com/H0llyW00dzZ/tls-root-ca-resolver/src/internal/helper/posix"
	x509certs "github.com/H0llyW00dzZ/tls-root-ca-resolver/src/internal/x509/certs"
	x509chain "github.com/H0llyW00dzZ/tls-root-ca-resolver/src/internal/x509/chain"
	"github.com/H0llyW00dzZ/tls-root-ca-resolver/src/logger"
	"github.com/H0llyW00dzZ/tls-root-ca-resolver/src/resolver"
	"github.com/H0llyW00dzZ/tls-root-ca-resolver/src/transport"
)

var (
	// ErrHostRequired is returned when neither --host nor the configuration names a host.
	ErrHostRequired = errors.New("host is required (use --host or a config file)")

	// ErrUntrusted is returned when the server would not be trusted.
	ErrUntrusted = errors.New("server is not trusted")
)

var (
	// OperationPerformed reports whether a trust resolution was attempted.
	OperationPerformed bool
	// OperationPerformedSuccessfully reports whether the last resolution trusted the server.
	OperationPerformedSuccessfully bool
)

// options holds the flag values of one root command.
type options struct {
	configFile string
	host       string
	port       int
	cert       string
	rootCAs    string
	strict     bool
	timeout    int
	tree       bool
	table      bool
	json       bool
	pem        bool
	logJSON    bool
	probe      bool
}

// report is the outcome of a single resolution.
type report struct {
	Host        string          `json:"host"`
	Port        int             `json:"port"`
	Pinned      string          `json:"pinnedFingerprintSha256,omitempty"`
	Strict      bool            `json:"strict"`
	Leaf        string          `json:"leaf"`
	AnchoredBy  string          `json:"anchoredBySha256,omitempty"`
	Decision    string          `json:"decision"`
	Trusted     bool            `json:"trusted"`
	Error       string          `json:"error,omitempty"`
	ProbeStatus int             `json:"probeStatus,omitempty"`
	Chain       json.RawMessage `json:"chain,omitempty"`
}

// Execute runs the root command with os.Args, handling any errors that occur during execution.
//
// Parameters:
//   - ctx: Context for cancellation of network operations
//   - version: Version string reported by --version
//   - log: Logger for diagnostics
//
// Returns:
//   - error: Error if the command failed or the server is not trusted
func Execute(ctx context.Context, version string, log logger.Logger) error {
	rootCmd := NewRootCommand(version, log)
	rootCmd.SetArgs(os.Args[1:])
	return rootCmd.ExecuteContext(ctx)
}

// NewRootCommand builds the root command. Output is written to the
// command's standard output, see [cobra.Command.SetOut].
func NewRootCommand(version string, log logger.Logger) *cobra.Command {
	opts := &options{}
	exeName := posix.GetExecutableName()

	rootCmd := &cobra.Command{
		Use:   exeName,
		Short: "TLS root CA trust resolver",
		Long: `Connects to a TLS server, captures the certificate chain it presents,
and decides whether the connection would be trusted when the given pinned
certificate is the only acceptable trust anchor for the host.`,
		Example: fmt.Sprintf(`  %[1]s -H example.com -c root.pem
  %[1]s -H example.com -c root.pem --strict --tree
  %[1]s -H 10.0.0.5 -p 8443 -c ca.der --root-cas corp-bundle.pem --probe
  %[1]s --config resolver.yaml --json`, exeName),
		Version:      version,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts, log)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVar(&opts.configFile, "config", "", "configuration file (.json, .yaml, .yml); defaults to $"+ConfigEnv)
	flags.StringVarP(&opts.host, "host", "H", "", "host to connect to and pin for")
	flags.IntVarP(&opts.port, "port", "p", defaultPort, "TLS port")
	flags.StringVarP(&opts.cert, "cert", "c", "", "pinned certificate file (PEM, DER, or PKCS#7)")
	flags.StringVar(&opts.rootCAs, "root-cas", "", "PEM bundle used instead of the system roots for default handling")
	flags.BoolVar(&opts.strict, "strict", false, "reject instead of falling back to default handling on a pin mismatch")
	flags.IntVar(&opts.timeout, "timeout", defaultTimeout, "dial and request timeout in seconds")
	flags.BoolVarP(&opts.tree, "tree", "t", false, "display the presented chain as an ASCII tree")
	flags.BoolVar(&opts.table, "table", false, "display the presented chain as a markdown table")
	flags.BoolVarP(&opts.json, "json", "j", false, "emit a JSON report")
	flags.BoolVar(&opts.pem, "pem", false, "append the presented chain as a PEM bundle")
	flags.BoolVar(&opts.logJSON, "log-json", false, "write diagnostics as JSON lines to stderr")
	flags.BoolVar(&opts.probe, "probe", false, "perform an HTTPS GET through the resolver")

	return rootCmd
}

// run resolves trust for one host and writes the report.
func run(cmd *cobra.Command, opts *options, log logger.Logger) error {
	OperationPerformed = false
	OperationPerformedSuccessfully = false

	if opts.logJSON {
		log = logger.NewJSONLogger(cmd.ErrOrStderr(), false)
	}

	cfg, err := loadConfig(opts.configFile)
	if err != nil {
		return err
	}
	applyFlags(cmd, opts, cfg)

	if cfg.Host == "" {
		return ErrHostRequired
	}

	r, err := newResolver(cfg, log)
	if err != nil {
		return err
	}

	roots, err := loadRoots(cfg.RootCAs)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	timeout := time.Duration(cfg.Timeout) * time.Second

	OperationPerformed = true

	chain, err := x509chain.FetchRemoteChain(ctx, cfg.Host, cfg.Port, timeout)
	if err != nil {
		return fmt.Errorf("error fetching certificate chain: %w", err)
	}
	chain.Roots = roots

	rep := &report{
		Host:   cfg.Host,
		Port:   cfg.Port,
		Strict: r.Strict(),
	}
	if pinned := r.PinnedCertificate(); pinned != nil {
		rep.Pinned = x509certs.Fingerprint(pinned)
	}

	d := r.Resolve(resolver.ServerTrust(cfg.Host, chain))
	rep.Decision = d.Disposition.String()
	if err := outcome(d, chain, roots); err != nil {
		rep.Error = err.Error()
	} else {
		rep.Trusted = true
	}
	rep.Leaf = chain.Leaf().Subject.String()
	rep.AnchoredBy = anchoredBy(chain)

	if opts.probe && rep.Trusted {
		status, err := probe(ctx, r, cfg, roots, timeout, log)
		if err != nil {
			rep.Error = err.Error()
			rep.Trusted = false
		}
		rep.ProbeStatus = status
	}

	if err := write(cmd.OutOrStdout(), opts, rep, chain); err != nil {
		return err
	}

	if !rep.Trusted {
		return fmt.Errorf("%w: %s", ErrUntrusted, rep.Error)
	}

	OperationPerformedSuccessfully = true
	return nil
}

// applyFlags overrides cfg with every flag set on the command line.
func applyFlags(cmd *cobra.Command, opts *options, cfg *Config) {
	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Host = opts.host
	}
	if flags.Changed("port") {
		cfg.Port = opts.port
	}
	if flags.Changed("cert") {
		cfg.Certificate = opts.cert
	}
	if flags.Changed("root-cas") {
		cfg.RootCAs = opts.rootCAs
	}
	if flags.Changed("strict") {
		cfg.Strict = opts.strict
	}
	if flags.Changed("timeout") {
		cfg.Timeout = opts.timeout
	}
}

func newResolver(cfg *Config, log logger.Logger) (*resolver.Resolver, error) {
	var pinned []byte
	if cfg.Certificate != "" {
		data, err := gc.ReadFile(cfg.Certificate)
		if err != nil {
			return nil, fmt.Errorf("error reading certificate file: %w", err)
		}
		pinned = data
	}

	resolverOpts := []resolver.Option{resolver.WithLogger(log)}
	if cfg.Strict {
		resolverOpts = append(resolverOpts, resolver.WithStrictPinning())
	}
	return resolver.New(cfg.Host, pinned, resolverOpts...)
}

// loadRoots returns nil, meaning the system pool, when path is empty.
func loadRoots(path string) (*x509.CertPool, error) {
	if path == "" {
		return nil, nil
	}

	data, err := gc.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading root CAs file: %w", err)
	}

	pool, err := x509certs.New().NewPool(data)
	if err != nil {
		return nil, fmt.Errorf("error decoding root CAs: %w", err)
	}
	return pool, nil
}

// outcome reports whether the connection would be established after d,
// acting on the decision the same way the transport package does.
func outcome(d resolver.Decision, chain *x509chain.Chain, roots *x509.CertPool) error {
	switch d.Disposition {
	case resolver.Reject:
		return transport.ErrTrustRejected
	case resolver.UseCredential:
		if len(chain.VerifiedChains()) > 0 {
			return nil
		}
	}

	fallback := x509chain.New(chain.Certs, chain.DNSName)
	fallback.Roots = roots
	if err := fallback.Evaluate(); err != nil {
		return fmt.Errorf("default verification failed: %w", err)
	}
	return nil
}

// anchoredBy returns the fingerprint of the pinned anchor the chain verified
// against, or "" when the pin played no part.
func anchoredBy(chain *x509chain.Chain) string {
	for _, verified := range chain.VerifiedChains() {
		root := verified[len(verified)-1]
		if chain.IsAnchor(root) {
			return x509certs.Fingerprint(root)
		}
	}
	return ""
}

// probe performs an HTTPS GET through a client whose trust is decided by r.
func probe(ctx context.Context, r *resolver.Resolver, cfg *Config, roots *x509.CertPool, timeout time.Duration, log logger.Logger) (int, error) {
	client := transport.NewHTTPClient(r,
		transport.WithTimeout(timeout),
		transport.WithRootCAs(roots),
		transport.WithLogger(log),
	)

	url := "https://" + net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)) + "/"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("probe failed: %w", err)
	}
	defer resp.Body.Close()

	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return resp.StatusCode, fmt.Errorf("probe failed: %w", err)
	}
	return resp.StatusCode, nil
}

func write(w io.Writer, opts *options, rep *report, chain *x509chain.Chain) error {
	if opts.json {
		data, err := chain.ToVisualizationJSON()
		if err != nil {
			return fmt.Errorf("error encoding chain: %w", err)
		}
		rep.Chain = data

		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}

	buf := gc.Default.Get()
	defer func() {
		buf.Reset()
		gc.Default.Put(buf)
	}()

	fmt.Fprintf(buf, "Host:     %s:%d\n", rep.Host, rep.Port)
	fmt.Fprintf(buf, "Leaf:     %s\n", rep.Leaf)
	if rep.Pinned != "" {
		fmt.Fprintf(buf, "Pinned:   %s\n", rep.Pinned)
	} else {
		buf.WriteString("Pinned:   none\n")
	}
	fmt.Fprintf(buf, "Strict:   %t\n", rep.Strict)
	fmt.Fprintf(buf, "Decision: %s\n", rep.Decision)
	if rep.AnchoredBy != "" {
		fmt.Fprintf(buf, "Anchor:   %s\n", rep.AnchoredBy)
	}
	fmt.Fprintf(buf, "Trusted:  %t\n", rep.Trusted)
	if rep.ProbeStatus != 0 {
		fmt.Fprintf(buf, "Probe:    %d %s\n", rep.ProbeStatus, http.StatusText(rep.ProbeStatus))
	}
	if rep.Error != "" {
		fmt.Fprintf(buf, "Error:    %s\n", rep.Error)
	}

	switch {
	case opts.tree:
		buf.WriteByte('\n')
		buf.WriteString(chain.RenderASCIITree())
	case opts.table:
		buf.WriteByte('\n')
		buf.WriteString(chain.RenderTable())
	}

	if opts.pem {
		buf.WriteByte('\n')
		buf.Write(chain.EncodeMultiplePEM(chain.Certs))
	}

	_, err := w.Write(buf.Bytes())
	return err
}
