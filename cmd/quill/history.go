package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/zen-systems/quill/pkg/history"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded pipeline runs",
	}
	cmd.AddCommand(historyListCmd())
	cmd.AddCommand(historyShowCmd())
	return cmd
}

func historyListCmd() *cobra.Command {
	var opts history.ListOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("No runs recorded.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPIPELINE\tSTATUS\tWHEN\tSEED")
			for _, run := range runs {
				status := run.Status
				if run.FailedStage != "" {
					status += " at " + run.FailedStage
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					shortID(run.ID), run.Pipeline, status,
					run.CreatedAt.Local().Format(time.DateTime), oneLine(seedSummary(run.Seed), 60))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&opts.Pipeline, "pipeline", "", "only runs of this pipeline")
	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "only runs whose seed contains this text")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum number of runs")
	return cmd
}

func historyShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show one run with its stage outputs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Run:      %s\n", run.ID)
			fmt.Printf("Pipeline: %s\n", run.Pipeline)
			fmt.Printf("Status:   %s\n", run.Status)
			fmt.Printf("When:     %s (%s)\n", run.CreatedAt.Local().Format(time.DateTime), run.Duration.Round(time.Millisecond))
			for _, k := range sortedSeedKeys(run.Seed) {
				fmt.Printf("Seed:     %s = %s\n", k, oneLine(run.Seed[k], 80))
			}
			if run.Error != "" {
				fmt.Printf("Error:    %s\n", run.Error)
			}
			for _, stage := range run.Stages {
				fmt.Printf("\n--- [%d] %s -> %s (%s/%s, %s)\n", stage.Index+1, stage.Name, stage.Output, stage.Adapter, stage.Model, stage.Duration.Round(time.Millisecond))
				fmt.Println(stage.Content)
			}
			if run.Output != "" && len(run.Stages) == 0 {
				fmt.Printf("\n%s\n", run.Output)
			}
			return nil
		},
	}
}

func openHistory() (*history.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return history.Open(cfg.Defaults.HistoryDB)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func sortedSeedKeys(seed map[string]string) []string {
	keys := make([]string, 0, len(seed))
	for k := range seed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func seedSummary(seed map[string]string) string {
	keys := sortedSeedKeys(seed)
	if len(keys) == 1 {
		return seed[keys[0]]
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+seed[k])
	}
	return strings.Join(parts, " ")
}

// oneLine collapses whitespace and truncates to limit runes.
func oneLine(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if limit > 3 && len(runes) > limit {
		return string(runes[:limit-3]) + "..."
	}
	return s
}
