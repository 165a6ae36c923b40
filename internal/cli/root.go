package cli

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/spf13/cobra"

	"github.com/stackcheck/stackcheck/internal/checks/api"
	"github.com/stackcheck/stackcheck/internal/checks/container"
	"github.com/stackcheck/stackcheck/internal/checks/live"
	"github.com/stackcheck/stackcheck/internal/checks/surface"
	"github.com/stackcheck/stackcheck/internal/config"
)

// ErrVerificationFailed signals a non-zero verdict without extra output;
// main translates it into exit code 1.
var ErrVerificationFailed = errors.New("verification failed")

// registerOnce guards the global suite registry: the CLI is one run per
// process, so suites bind the first loaded config.
var registerOnce sync.Once

// NewRootCmd wires the cobra command tree.
func NewRootCmd() *cobra.Command {
	var (
		cfgPath   string
		outputFmt string
		verbose   bool
		orch      *Orchestrator
	)

	root := &cobra.Command{
		Use:           "stackcheck",
		Short:         "Deployment verification harness for the product-catalog stack",
		Long:          "stackcheck verifies that the multi-container product-catalog deployment satisfies its declared contracts: command surface, image and compose hygiene, API behavior, and live topology.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			registerOnce.Do(func() { RegisterSuites(cfg) })
			orch = NewOrchestrator(cfg, log)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to a stackcheck config file (default: ./stackcheck.yaml if present)")
	root.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "Output format: text or json")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging on stderr")

	emit := func(cmd *cobra.Command, report RunReport) error {
		if outputFmt == "json" {
			if err := FormatJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}
		} else {
			FormatText(cmd.OutOrStdout(), report)
		}
		if report.ExitCode() != 0 {
			return ErrVerificationFailed
		}
		return nil
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "commands",
			Short: "Validate the declared command surface (static)",
			RunE: func(cmd *cobra.Command, args []string) error {
				return emit(cmd, orch.RunSuites(cmd.Context(), surface.SuiteName))
			},
		},
		&cobra.Command{
			Use:   "containers",
			Short: "Validate build and compose descriptors (static)",
			RunE: func(cmd *cobra.Command, args []string) error {
				return emit(cmd, orch.RunSuites(cmd.Context(), container.SuiteName))
			},
		},
		&cobra.Command{
			Use:   "api",
			Short: "Validate the public API contract (requires a running deployment)",
			RunE: func(cmd *cobra.Command, args []string) error {
				return emit(cmd, orch.RunLiveSuites(cmd.Context(), api.SuiteName))
			},
		},
		&cobra.Command{
			Use:   "live",
			Short: "Validate the live topology (requires a running deployment)",
			RunE: func(cmd *cobra.Command, args []string) error {
				return emit(cmd, orch.RunLiveSuites(cmd.Context(), live.SuiteName))
			},
		},
		&cobra.Command{
			Use:   "all",
			Short: "Run every suite, skipping live suites when no deployment is detected",
			RunE: func(cmd *cobra.Command, args []string) error {
				return emit(cmd, orch.RunAll(cmd.Context()))
			},
		},
	)

	return root
}
