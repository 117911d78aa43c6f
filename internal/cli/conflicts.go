package cli

import (
	"github.com/spf13/cobra"

	"github.com/noah-isme/exam-scheduler-api/internal/service"
)

func newConflictsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "conflicts",
		Short: "Audit the exams of a snapshot for conflicts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := loadSnapshotFile(flagSnapshot)
			if err != nil {
				return err
			}
			svc := service.NewConflictService(file.stores(), nil, nil, 0, logr)
			report, _, err := svc.Report(cmd.Context())
			if err != nil {
				return err
			}
			return printResult(report)
		},
	}
}
