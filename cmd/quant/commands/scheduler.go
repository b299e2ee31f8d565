package commands

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wonny/twstrategy/internal/scheduler"
	"github.com/wonny/twstrategy/internal/scheduler/jobs"
	"github.com/wonny/twstrategy/pkg/config"
	"github.com/wonny/twstrategy/pkg/logger"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `Inspect or run the scheduled jobs.

Jobs:
  snapshot_refresh - reload directory + flow, publish leaderboard (REFRESH_SCHEDULE)
  cache_cleanup    - drop expired snapshots (every 5 minutes)

Example:
  go run ./cmd/quant scheduler list
  go run ./cmd/quant scheduler run snapshot_refresh`,
}

var (
	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJobOnce,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

// newScheduler wires a fresh app and registers its jobs
func newScheduler(cfg *config.Config, log *logger.Logger) (*scheduler.Scheduler, error) {
	a, err := newApp(cfg, log)
	if err != nil {
		return nil, err
	}
	return newAppScheduler(a, cfg, log)
}

// newAppScheduler registers the refresh and cleanup jobs of an app
func newAppScheduler(a *app, cfg *config.Config, log *logger.Logger) (*scheduler.Scheduler, error) {
	sched := scheduler.New(log, a.location)
	if err := sched.AddJob(jobs.NewSnapshotRefreshJob(a.orchestrator, cfg.Snapshot.RefreshSchedule, log)); err != nil {
		return nil, fmt.Errorf("add refresh job: %w", err)
	}
	if err := sched.AddJob(jobs.NewCacheCleanupJob(a.orchestrator, log)); err != nil {
		return nil, fmt.Errorf("add cleanup job: %w", err)
	}
	return sched, nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadRuntime()
	if err != nil {
		return err
	}

	sched, err := newScheduler(cfg, log)
	if err != nil {
		return err
	}

	stats := sched.GetJobStats()
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	PrintHeader("Scheduled jobs", "Time zone: "+sched.Location().String())
	widths := []int{18, 16}
	PrintTableHeader([]string{"Job", "Schedule"}, widths)
	for _, name := range names {
		PrintTableRow([]string{name, stats[name].Schedule}, widths)
	}
	fmt.Println()
	return nil
}

func runJobOnce(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadRuntime()
	if err != nil {
		return err
	}

	sched, err := newScheduler(cfg, log)
	if err != nil {
		return err
	}

	result, err := sched.RunJobSync(args[0])
	if err != nil {
		PrintError(err.Error())
		return err
	}

	if jsonOutput {
		return PrintJSON(result)
	}

	PrintHeader("Job "+result.JobName, "")
	PrintKeyValue("Attempts", strconv.Itoa(result.Attempts), 10)
	PrintKeyValue("Duration", result.Duration.String(), 10)
	if !result.Success {
		PrintError(result.Error)
		return fmt.Errorf("job %s failed", result.JobName)
	}
	PrintSuccess("Job completed")
	return nil
}
