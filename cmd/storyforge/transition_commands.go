package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"storyforge/internal/api"
	"storyforge/internal/pipeline"
	"storyforge/internal/transition"
)

const defaultTrigger = "manual"

func newMoveCommand(ctx *commandContext) *cobra.Command {
	var trigger string
	var actor string

	cmd := &cobra.Command{
		Use:   "move <itemID> <stage>",
		Short: "Move an item along the lifecycle graph",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := api.ParseStage(args[1])
			if err != nil {
				return err
			}

			return ctx.withWriter(func(_ *pipeline.Store, svc *transition.Service) error {
				res, err := svc.Transition(cmd.Context(), transition.Request{
					ItemID:  args[0],
					Target:  target,
					Trigger: trigger,
					Actor:   actor,
				})
				if ctx.jsonOutput() {
					if jsonErr := writeJSON(cmd, res); jsonErr != nil {
						return jsonErr
					}
					return err
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Moved %s: %s -> %s\n", res.ItemID, res.OldStage, res.NewStage)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&trigger, "trigger", "t", defaultTrigger, "Event that caused this transition")
	cmd.Flags().StringVarP(&actor, "actor", "a", "", "Who requested the transition")
	return cmd
}

func newForceCommand(ctx *commandContext) *cobra.Command {
	var reason string
	var actor string

	cmd := &cobra.Command{
		Use:   "force <itemID> <stage>",
		Short: "Force an item to a stage, bypassing graph validation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := api.ParseStage(args[1])
			if err != nil {
				return err
			}

			return ctx.withWriter(func(_ *pipeline.Store, svc *transition.Service) error {
				res, err := svc.ForceTransition(cmd.Context(), args[0], target, reason, actor)
				if ctx.jsonOutput() {
					if jsonErr := writeJSON(cmd, res); jsonErr != nil {
						return jsonErr
					}
					return err
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Forced %s: %s -> %s (%s)\n", res.ItemID, res.OldStage, res.NewStage, reason)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&reason, "reason", "r", "", "Why the override is necessary (required)")
	cmd.Flags().StringVarP(&actor, "actor", "a", "", "Who requested the override")
	_ = cmd.MarkFlagRequired("reason")
	return cmd
}

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var file string
	var trigger string
	var actor string

	cmd := &cobra.Command{
		Use:   "batch [itemID=stage ...]",
		Short: "Apply an ordered set of transitions in one transaction",
		Long: `Apply an ordered set of transitions atomically. Requests come from
positional itemID=stage arguments or from a file (one per line, # comments
allowed). The first invalid request rolls back the entire batch.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			specs := args
			if path := strings.TrimSpace(file); path != "" {
				fromFile, err := readBatchFile(path)
				if err != nil {
					return err
				}
				specs = append(fromFile, specs...)
			}
			if len(specs) == 0 {
				return fmt.Errorf("no transitions given; pass itemID=stage arguments or --file")
			}

			requests := make([]transition.Request, 0, len(specs))
			for _, spec := range specs {
				id, rawStage, ok := strings.Cut(spec, "=")
				if !ok {
					return fmt.Errorf("invalid request %q, want itemID=stage", spec)
				}
				target, err := api.ParseStage(rawStage)
				if err != nil {
					return fmt.Errorf("request %q: %w", spec, err)
				}
				requests = append(requests, transition.Request{
					ItemID:  strings.TrimSpace(id),
					Target:  target,
					Trigger: trigger,
					Actor:   actor,
				})
			}

			return ctx.withWriter(func(_ *pipeline.Store, svc *transition.Service) error {
				results, err := svc.ApplyBatch(cmd.Context(), requests)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, results)
				}
				for _, res := range results {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %s\n", res.ItemID, res.OldStage, res.NewStage)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Applied %d transitions\n", len(results))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read itemID=stage lines from a file")
	cmd.Flags().StringVarP(&trigger, "trigger", "t", defaultTrigger, "Event recorded for every request")
	cmd.Flags().StringVarP(&actor, "actor", "a", "", "Who requested the batch")
	return cmd
}

func readBatchFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open batch file: %w", err)
	}
	defer f.Close()

	var specs []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		specs = append(specs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read batch file: %w", err)
	}
	return specs, nil
}

func newNextCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "next <itemID>",
		Short: "Show the stages an item may move to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withReadService(func(svc *transition.Service) error {
				stages, err := svc.AllowedNextStages(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, stages)
				}
				if len(stages) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No further stages (terminal)")
					return nil
				}
				for _, st := range stages {
					fmt.Fprintln(cmd.OutOrStdout(), st)
				}
				return nil
			})
		},
	}
}
