package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/johnquangdev/meeting-insights/internal/app"
	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
	"github.com/johnquangdev/meeting-insights/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-insights/internal/usecase/analysis"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var lockFile string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Run one queue processing pass and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if lockFile != "" {
				lock := flock.New(lockFile)
				ok, err := lock.TryLock()
				if err != nil {
					return fmt.Errorf("acquire lock: %w", err)
				}
				if !ok {
					return fmt.Errorf("another process run holds %s", lockFile)
				}
				defer lock.Unlock()
			}

			return ctx.withApp(cmd.Context(), func(a *app.App) error {
				report, err := a.Processor.ProcessQueue(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, report)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderRunReport(report))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&lockFile, "lock-file", "", "Skip the run if another process on this host holds this lock file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the run report as JSON")
	return cmd
}

func newRequeueCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "requeue",
		Short: "Move retryable failed items back to pending",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(a *app.App) error {
				report, err := a.Requeuer.RequeueFailed(cmd.Context(), force)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Requeued %d of %d failed items (%d not retryable, %d waiting for backoff)\n",
					report.Requeued, report.Considered, report.NotRetryable, report.TooRecent)
				if report.StaleReset > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Released %d stale processing claims\n", report.StaleReset)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Ignore error classification and backoff, and release stale processing claims; the retry budget still applies")
	return cmd
}

func newQueueCommand(ctx *commandContext) *cobra.Command {
	var status string
	var limit int

	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Show queue counts, or items with --status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(a *app.App) error {
				out := cmd.OutOrStdout()
				counts, err := a.Dashboard.QueueStats(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(out, renderQueueStats(counts))

				if status == "" {
					return nil
				}
				items, err := a.Dashboard.QueueItems(cmd.Context(), entities.QueueStatus(status), limit)
				if err != nil {
					return err
				}
				if len(items) == 0 {
					fmt.Fprintf(out, "No %s items\n", status)
					return nil
				}
				fmt.Fprintln(out, renderQueueItems(items))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "List items in this status (pending, processing, completed, failed)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum items to list")
	return cmd
}

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply SQL migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.Database.MigrationsDir
			}
			db, err := database.NewPostgresDB(cmd.Context(), cfg, ctx.logger)
			if err != nil {
				return err
			}
			defer database.CloseDB(db)

			n, err := database.Migrate(db, dir, ctx.logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migrations from %s\n", n, dir)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Migrations directory (defaults to DB_MIGRATIONS_DIR)")
	return cmd
}

func newSeedPromptsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed-prompts <file.toml>",
		Short: "Create or update prompt configs from a TOML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd.Context(), func(a *app.App) error {
				report, err := a.SeedPromptsFromFile(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Prompts: %d created, %d updated\n", report.Created, report.Updated)
				return nil
			})
		},
	}
	return cmd
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderRunReport(r *analysis.RunReport) string {
	cross := "skipped"
	switch {
	case r.CrossRoomError != "":
		cross = "failed: " + r.CrossRoomError
	case r.CrossRoomRan:
		cross = fmt.Sprintf("%d insights", r.CrossRoomInsights)
	}
	rows := [][]string{
		{"Run", r.RunID},
		{"Claimed", strconv.Itoa(r.Processed)},
		{"Groups", fmt.Sprintf("%d (%d completed, %d failed, %d degraded)", r.Groups, r.CompletedGroups, r.FailedGroups, r.DegradedGroups)},
		{"Orphaned", strconv.Itoa(r.OrphanedItems)},
		{"Cross-room", cross},
		{"Duration", r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String()},
	}
	return renderTable([]string{"Field", "Value"}, rows, nil)
}

var queueStatusOrder = []entities.QueueStatus{
	entities.QueueStatusPending,
	entities.QueueStatusProcessing,
	entities.QueueStatusCompleted,
	entities.QueueStatusFailed,
}

func renderQueueStats(counts map[entities.QueueStatus]int64) string {
	var total int64
	rows := make([][]string, 0, len(queueStatusOrder)+1)
	for _, s := range queueStatusOrder {
		total += counts[s]
		rows = append(rows, []string{string(s), strconv.FormatInt(counts[s], 10)})
	}
	rows = append(rows, []string{"total", strconv.FormatInt(total, 10)})
	return renderTable([]string{"Status", "Items"}, rows, []columnAlignment{alignLeft, alignRight})
}

func renderQueueItems(items []*entities.AnalysisQueueItem) string {
	rows := make([][]string, 0, len(items))
	for _, q := range items {
		errMsg := ""
		if q.ErrorMessage != nil {
			errMsg = truncate(*q.ErrorMessage, 60)
		}
		rows = append(rows, []string{
			q.ID.String()[:8],
			q.MeetingID,
			analysis.RoomLabel(q.RoomNumber),
			strconv.Itoa(q.Priority),
			strconv.Itoa(q.RetryCount),
			q.CreatedAt.Format(time.RFC3339),
			errMsg,
		})
	}
	return renderTable(
		[]string{"ID", "Meeting", "Room", "Priority", "Retries", "Created", "Error"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
	)
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
