package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/exam-scheduler-api/pkg/config"
	"github.com/noah-isme/exam-scheduler-api/pkg/logger"
)

var (
	flagSnapshot string
	flagOutput   string
	flagLogLevel string

	cfg    *config.Config
	logr   *zap.Logger
	stdout io.Writer
)

// NewRootCmd creates the examctl command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "examctl",
		Short: "Offline exam scheduling and conflict auditing",
		Long:  "examctl runs the exam scheduler and conflict detector against a snapshot file and mints development tokens for the API.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if flagLogLevel != "" {
				loaded.Log.Level = flagLogLevel
			}
			l, err := logger.New(loaded)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			cfg, logr, stdout = loaded, l, cmd.OutOrStdout()
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logr != nil {
				_ = logr.Sync()
			}
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagSnapshot, "snapshot", "snapshot.yaml", "Snapshot file holding courses, instructors, rooms, students and exams (YAML or JSON)")
	root.PersistentFlags().StringVarP(&flagOutput, "output", "o", "json", "Output format (json, yaml)")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newConflictsCmd(),
		newScheduleCmd(),
		newTokenCmd(),
	)

	return root
}

func printResult(v interface{}) error {
	switch flagOutput {
	case "yaml":
		enc := yaml.NewEncoder(stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	case "json", "":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unsupported output %q (json, yaml)", flagOutput)
	}
}
