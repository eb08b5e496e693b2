package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"storyforge/internal/api"
	"storyforge/internal/notifications"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show item counts per stage",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withReader(func(svc *api.ItemService) error {
				counts, err := svc.Distribution(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, counts)
				}

				rows := make([][]string, 0, len(counts))
				total := 0
				for _, sc := range counts {
					rows = append(rows, []string{sc.Name, strconv.Itoa(sc.Count)})
					total += sc.Count
				}
				out := renderTable(
					[]string{"Stage", "Count"},
					rows,
					[]columnAlignment{alignLeft, alignRight},
				)
				fmt.Fprintln(cmd.OutOrStdout(), out)
				fmt.Fprintf(cmd.OutOrStdout(), "Total: %d\n", total)
				return nil
			})
		},
	}
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show an aggregate pipeline summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withReader(func(svc *api.ItemService) error {
				health, err := svc.Health(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, health)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Total: %d\nProcessing: %d\nCompleted: %d\nFailed: %d\nRejected: %d\n",
					health.Total,
					health.Processing,
					health.Completed,
					health.Failed,
					health.Rejected,
				)
				return nil
			})
		},
	}
}

func newStuckCommand(ctx *commandContext) *cobra.Command {
	var thresholdHours int
	var notify bool

	cmd := &cobra.Command{
		Use:   "stuck",
		Short: "Report items sitting in a processing stage too long",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			hours := thresholdHours
			if hours <= 0 {
				hours = cfg.Workflow.StuckThresholdHours
			}
			threshold := time.Duration(hours) * time.Hour

			return ctx.withReader(func(svc *api.ItemService) error {
				items, err := svc.Stuck(cmd.Context(), threshold)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					if err := writeJSON(cmd, items); err != nil {
						return err
					}
				} else if len(items) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No items stuck beyond %s\n", threshold)
				} else {
					rows := make([][]string, 0, len(items))
					for _, item := range items {
						rows = append(rows, []string{
							shortID(item.ID),
							truncate(item.Title, 40),
							item.Stage,
							formatAge(parseViewTime(item.UpdatedAt)),
						})
					}
					out := renderTable(
						[]string{"ID", "Title", "Stage", "Stuck For"},
						rows,
						[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
					)
					fmt.Fprintln(cmd.OutOrStdout(), out)
				}

				if notify && len(items) > 0 {
					oldest := time.Since(parseViewTime(items[0].UpdatedAt))
					notifier := notifications.NewService(cfg)
					if err := notifier.NotifyStuckItems(cmd.Context(), len(items), oldest); err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "notification failed: %v\n", err)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&thresholdHours, "threshold", 0, "Override the configured threshold (hours)")
	cmd.Flags().BoolVar(&notify, "notify", false, "Send a notification when stuck items are found")
	return cmd
}
