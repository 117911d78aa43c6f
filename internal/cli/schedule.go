package cli

import (
	"github.com/spf13/cobra"

	"github.com/noah-isme/exam-scheduler-api/internal/dto"
	"github.com/noah-isme/exam-scheduler-api/internal/service"
)

func newScheduleCmd() *cobra.Command {
	var (
		req   dto.AutoScheduleRequest
		write bool
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Schedule the pending courses of a snapshot",
		Long:  "Runs the exam scheduler against the snapshot. With --write the new exams and recomputed instructor loads are saved back to the snapshot file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := loadSnapshotFile(flagSnapshot)
			if err != nil {
				return err
			}
			svc := service.NewSchedulingService(file.stores(), nil, nil, nil, logr, service.SchedulingConfig{
				MidtermStartWeek: cfg.Scheduler.MidtermStartWeek,
				FinalStartWeek:   cfg.Scheduler.FinalStartWeek,
				MidtermWeeks:     cfg.Scheduler.MidtermWeeks,
				FinalWeeks:       cfg.Scheduler.FinalWeeks,
				DefaultMaxLoad:   cfg.Scheduler.DefaultMaxLoad,
				SnugMargin:       cfg.Scheduler.SnugMargin,
			})

			var result *dto.ScheduleRunResponse
			if write {
				result, err = svc.Run(cmd.Context(), req)
			} else {
				result, err = svc.Preview(cmd.Context(), req)
			}
			if err != nil {
				return err
			}
			if result.Persisted {
				if err := file.save(); err != nil {
					return err
				}
				logr.Sugar().Infow("snapshot updated", "path", file.path, "scheduled", result.ScheduledCount)
			}
			return printResult(result)
		},
	}

	cmd.Flags().StringVar(&req.ExamType, "type", "midterm", "Exam type (midterm, final)")
	cmd.Flags().StringVar(&req.SemesterStart, "semester-start", "", "First day of the semester (YYYY-MM-DD)")
	cmd.Flags().Float64Var(&req.ExamDuration, "duration", 2, "Exam duration in hours")
	cmd.Flags().IntVar(&req.Weeks, "weeks", 0, "Override the exam window length in weeks")
	cmd.Flags().BoolVar(&write, "write", false, "Save the scheduled exams back to the snapshot file")
	_ = cmd.MarkFlagRequired("semester-start")

	return cmd
}
