package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/wfaudit/wfaudit/internal/observability"
	"github.com/wfaudit/wfaudit/internal/observability/logging"
	otelobs "github.com/wfaudit/wfaudit/internal/observability/otel"
	"github.com/wfaudit/wfaudit/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "wfaudit",
	Short: "Security smell scanner for CI workflows",
	Long: `wfaudit: static analyzer for GitHub Actions workflows.
Reports floating action references, missing job timeouts, and broad
permission grants without executing anything.`,
	Version:           version.BuildVersion(),
	PersistentPreRunE: setupObservability,
	PersistentPostRun: teardownObservability,
}

var (
	logFormatFlag string
	logLevelFlag  string
	logOutputFlag string

	otelEnabledFlag  bool
	otelEndpointFlag string
	otelProtocolFlag string
	otelInsecureFlag bool
	otelSampleFlag   float64
)

// Set by setupObservability, released by teardownObservability.
var (
	activeLogger logging.Logger
	activeOtel   *otelobs.Handle
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&logFormatFlag, "log-format", "pretty", "Log format: pretty (no-op) or jsonl")
	pf.StringVar(&logLevelFlag, "log-level", "info", "Log level: debug, info, warn, error")
	pf.StringVar(&logOutputFlag, "log-output", "stderr", "Log output: stderr or a file path")
	pf.BoolVar(&otelEnabledFlag, "otel", false, "Enable OpenTelemetry tracing")
	pf.StringVar(&otelEndpointFlag, "otel-endpoint", "", "OTLP endpoint (defaults per protocol)")
	pf.StringVar(&otelProtocolFlag, "otel-protocol", otelobs.ProtocolHTTP, "OTLP protocol: otlphttp or otlpgrpc")
	pf.BoolVar(&otelInsecureFlag, "otel-insecure", false, "Allow insecure OTLP connections")
	pf.Float64Var(&otelSampleFlag, "otel-sample-ratio", 1.0, "Trace sample ratio, 0..1")

	rootCmd.AddCommand(GetScanCmd())
	rootCmd.AddCommand(GetCheckCmd())
	rootCmd.AddCommand(GetPolicyCmd())
	rootCmd.AddCommand(GetDiffCmd())
}

// setupObservability installs op_id, logger, and optional OTel handle into
// the command context, where every command retrieves them.
func setupObservability(cmd *cobra.Command, args []string) error {
	ctx := observability.WithOpID(cmd.Context())

	logger, err := logging.NewLogger(logging.Config{
		Format: logFormatFlag,
		Level:  logLevelFlag,
		Output: logOutputFlag,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	activeLogger = logger
	ctx = logging.WithLogger(ctx, logger)

	if otelEnabledFlag {
		handle, otelErr := otelobs.Init(ctx, otelobs.Config{
			Enabled:     true,
			Endpoint:    otelEndpointFlag,
			Protocol:    otelProtocolFlag,
			Insecure:    otelInsecureFlag,
			ServiceName: "wfaudit",
			SampleRatio: otelSampleFlag,
		})
		if otelErr != nil {
			return fmt.Errorf("failed to initialize tracing: %w", otelErr)
		}
		activeOtel = handle
		ctx = otelobs.WithHandle(ctx, handle)
	}

	cmd.SetContext(ctx)
	return nil
}

func teardownObservability(cmd *cobra.Command, args []string) {
	if activeOtel != nil {
		_ = activeOtel.Shutdown(cmd.Context())
		activeOtel = nil
	}
	if activeLogger != nil {
		_ = activeLogger.Close()
		activeLogger = nil
	}
}

func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
