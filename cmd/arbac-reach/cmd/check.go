package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/Sentinel-Gate/arbac-reach/internal/adapter/outbound/yamlparser"
	"github.com/Sentinel-Gate/arbac-reach/internal/config"
	"github.com/Sentinel-Gate/arbac-reach/internal/metrics"
	"github.com/Sentinel-Gate/arbac-reach/internal/service"
	"github.com/Sentinel-Gate/arbac-reach/internal/telemetry"
)

// Exit codes. Fixed by spec: never add a new one, never reuse one for
// a different meaning.
const (
	exitDecision     = 0
	exitUsage        = 1
	exitFileNotFound = 2
	exitParseError   = 3
)

var (
	checkVerbose     bool
	checkTrace       bool
	checkMetricsAddr string
	checkLogFormat   string
	checkLogLevel    string
	checkTimeout     string
)

var checkCmd = &cobra.Command{
	Use:   "check [policy-file]",
	Short: "Decide whether the goal role in a policy is reachable",
	Long: `check reads an ARBAC policy document (from the given file, or
stdin when no file is given), prunes it to a fixed point, searches for
a sequence of rule applications reaching the goal role, and prints
"Reachable" or "Not reachable".`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkVerbose, "verbose", false, "print input and sliced problem summaries before the verdict")
	checkCmd.Flags().BoolVar(&checkTrace, "trace", false, "enable the stdout OpenTelemetry trace exporter")
	checkCmd.Flags().StringVar(&checkMetricsAddr, "metrics-addr", "", "serve /metrics on this address for the run's duration")
	checkCmd.Flags().StringVar(&checkLogFormat, "log-format", "", "log format: text or json (overrides config)")
	checkCmd.Flags().StringVar(&checkLogLevel, "log-level", "", "log level: debug, info, warn, or error (overrides config)")
	checkCmd.Flags().StringVar(&checkTimeout, "timeout", "", "deadline set on the decision's context, e.g. 30s (the pruner and searcher do not poll it)")
	rootCmd.AddCommand(checkCmd)
}

// runCheck implements the §6.2 exit-code contract. cobra's own argument
// errors (e.g. too many args) are unclassified and map to exitUsage via
// ExitCode. Within this function, config, tracing and --timeout errors
// map to exitUsage, an unopenable policy file to exitFileNotFound, and
// a policy that fails to parse or validate to exitParseError.
func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return exitErr(exitUsage, fmt.Errorf("load config: %w", err))
	}
	applyFlagOverrides(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return exitErr(exitUsage, fmt.Errorf("config: %w", err))
	}

	logger := buildLogger(cfg)

	var tracer *telemetry.Provider
	if cfg.Trace.Enabled {
		var err error
		tracer, err = telemetry.NewStdout(cmd.ErrOrStderr())
		if err != nil {
			return exitErr(exitUsage, fmt.Errorf("init tracing: %w", err))
		}
		defer func() { _ = tracer.Shutdown(context.Background()) }()
	}

	var m *metrics.Metrics
	if cfg.Metrics.Addr != "" {
		reg := prometheus.NewRegistry()
		m = metrics.New(reg)
		srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: metrics.Handler(reg)}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("metrics server stopped", "error", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	r, readErr := openPolicyInput(args)
	if readErr != nil {
		return exitErr(exitFileNotFound, readErr)
	}
	if closer, ok := r.(io.Closer); ok {
		defer closer.Close()
	}

	problem, err := yamlparser.Parse(r)
	if err != nil {
		return exitErr(exitParseError, fmt.Errorf("parse policy: %w", err))
	}

	ctx := context.Background()
	if cfg.Search.Timeout != "" {
		d, err := time.ParseDuration(cfg.Search.Timeout)
		if err != nil {
			return exitErr(exitUsage, fmt.Errorf("--timeout: %w", err))
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	svc := service.NewReachabilityService(logger, tracer, m)
	result, err := svc.Decide(ctx, problem)
	if err != nil {
		return exitErr(exitParseError, fmt.Errorf("invalid policy: %w", err))
	}

	if checkVerbose {
		fmt.Fprintf(cmd.OutOrStdout(), "roles: %d -> %d, can_assign: %d -> %d, can_revoke: %d -> %d\n",
			result.OriginalStats.Roles, result.SlicedStats.Roles,
			result.OriginalStats.CanAssign, result.SlicedStats.CanAssign,
			result.OriginalStats.CanRevoke, result.SlicedStats.CanRevoke)
		fmt.Fprintf(cmd.OutOrStdout(), "states explored: %d, duration: %s\n", result.StatesExplored, result.Duration)
	}

	if result.Verdict {
		fmt.Fprintln(cmd.OutOrStdout(), "Reachable")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "Not reachable")
	}
	return nil
}

// openPolicyInput returns stdin when no file argument was given, or
// opens the named file. A missing file is reported distinctly from a
// parse error so the caller can map it to exitFileNotFound.
func openPolicyInput(args []string) (io.Reader, error) {
	if len(args) == 0 {
		return os.Stdin, nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, err
	}
	return f, nil
}

// applyFlagOverrides layers explicitly-set CLI flags over the loaded
// config. Flags win, but the caller must still re-run cfg.Validate
// afterward since a flag value can be just as malformed as a config one.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("log-format") {
		cfg.Log.Format = checkLogFormat
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = checkLogLevel
	}
	if flags.Changed("trace") {
		cfg.Trace.Enabled = checkTrace
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Addr = checkMetricsAddr
		cfg.Metrics.Enabled = true
	}
	if flags.Changed("timeout") {
		cfg.Search.Timeout = checkTimeout
	}
}

func buildLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// exitCodeError carries a specific process exit code alongside the
// underlying error message, per §6.2's fixed exit-code contract.
type exitCodeError struct {
	code int
	err  error
}

func (e *exitCodeError) Error() string { return e.err.Error() }
func (e *exitCodeError) Unwrap() error { return e.err }

func exitErr(code int, err error) error {
	return &exitCodeError{code: code, err: err}
}

// ExitCode extracts the process exit code a returned error should map
// to, defaulting to exitUsage for any error check didn't classify.
func ExitCode(err error) int {
	if err == nil {
		return exitDecision
	}
	var ece *exitCodeError
	if errors.As(err, &ece) {
		return ece.code
	}
	return exitUsage
}
