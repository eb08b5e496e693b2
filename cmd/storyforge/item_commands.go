package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"storyforge/internal/api"
	"storyforge/internal/pipeline"
	"storyforge/internal/transition"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var content string
	var contentFile string
	var source string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Ingest a new content item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := content
			if path := strings.TrimSpace(contentFile); path != "" {
				raw, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read content file: %w", err)
				}
				body = string(raw)
			}

			return ctx.withWriter(func(store *pipeline.Store, _ *transition.Service) error {
				item, err := store.NewItem(cmd.Context(), args[0], body, source)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, api.FromItem(item))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s) in stage %s\n", item.Title, item.ID, item.Stage)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&content, "content", "", "Item content body")
	cmd.Flags().StringVar(&contentFile, "content-file", "", "Read the content body from a file")
	cmd.Flags().StringVarP(&source, "source", "s", "", "Where the item came from")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <itemID>",
		Short: "Show one item in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withReader(func(svc *api.ItemService) error {
				view, err := svc.Describe(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, view)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ID:      %s\n", view.ID)
				fmt.Fprintf(out, "Title:   %s\n", view.Title)
				fmt.Fprintf(out, "Stage:   %s (%s)\n", view.Stage, view.StageName)
				if view.Source != "" {
					fmt.Fprintf(out, "Source:  %s\n", view.Source)
				}
				fmt.Fprintf(out, "Created: %s\n", view.CreatedAt)
				fmt.Fprintf(out, "Updated: %s\n", view.UpdatedAt)
				if view.Content != "" {
					fmt.Fprintf(out, "\n%s\n", view.Content)
				}
				return nil
			})
		},
	}
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var stageFilters []string
	var page int
	var pageSize int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List items, optionally filtered by stage",
		RunE: func(cmd *cobra.Command, args []string) error {
			stages, err := parseStages(stageFilters)
			if err != nil {
				return err
			}

			return ctx.withReader(func(svc *api.ItemService) error {
				// Pagination is only defined for a single-stage listing.
				if len(stages) == 1 && (page > 0 || pageSize > 0) {
					if page < 1 {
						page = 1
					}
					view, err := svc.Page(cmd.Context(), stages[0], page, pageSize)
					if err != nil {
						return err
					}
					if ctx.jsonOutput() {
						return writeJSON(cmd, view)
					}
					renderItemTable(cmd, view.Items)
					fmt.Fprintf(cmd.OutOrStdout(), "Page %d of %d items (more: %v)\n", page, view.TotalCount, view.HasMore)
					return nil
				}

				views, err := svc.List(cmd.Context(), stages...)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, views)
				}
				renderItemTable(cmd, views)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&stageFilters, "stage", "s", nil, "Filter by stage (repeatable)")
	cmd.Flags().IntVar(&page, "page", 0, "Page number for single-stage listings")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "Items per page")
	return cmd
}

func renderItemTable(cmd *cobra.Command, items []api.ItemView) {
	if len(items) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No items")
		return
	}
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
		[]string{"ID", "Title", "Stage", "Updated"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
	)
	fmt.Fprintln(cmd.OutOrStdout(), out)
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history <itemID>",
		Short: "Show the audit trail for one item, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withReader(func(svc *api.ItemService) error {
				entries, err := svc.History(cmd.Context(), args[0], limit)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, entries)
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No history")
					return nil
				}
				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					from := entry.OldStage
					if from == "" {
						from = "-"
					}
					rows = append(rows, []string{
						entry.CreatedAt,
						from,
						entry.NewStage,
						entry.TriggerEvent,
						entry.CreatedBy,
					})
				}
				out := renderTable(
					[]string{"When", "From", "To", "Trigger", "By"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum entries to show")
	return cmd
}
