package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zen-systems/quill/pkg/config"
)

var (
	adapterFlag  string
	modelFlag    string
	evidenceFlag string
	verboseFlag  bool
	noHistory    bool
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "quill",
		Short: "Linear generative rewriting pipelines",
		Long: `Quill runs short, fixed pipelines of generative rewriting stages.

Built-in pipelines write an academic essay from a topic, paraphrase a
passage, or draft thesis statements. Custom linear pipelines can be
described in YAML and run with "quill run -f".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verboseFlag {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	root.PersistentFlags().StringVar(&adapterFlag, "adapter", "", "adapter to use (google, anthropic, openai, deepseek, mock)")
	root.PersistentFlags().StringVar(&modelFlag, "model", "", "model name or alias")
	root.PersistentFlags().StringVar(&evidenceFlag, "evidence", "", "directory for per-run evidence records")
	root.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&noHistory, "no-history", false, "do not record the run in the history database")

	root.AddCommand(essayCmd())
	root.AddCommand(paraphraseCmd())
	root.AddCommand(thesisCmd())
	root.AddCommand(runCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(pipelinesCmd())
	root.AddCommand(graphCmd())
	root.AddCommand(historyCmd())
	root.AddCommand(modelsCmd())
	return root
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// signalContext returns a context that is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(ch)
		select {
		case <-ch:
			fmt.Fprintln(os.Stderr, "\n[quill] interrupted, cancelling pipeline")
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
