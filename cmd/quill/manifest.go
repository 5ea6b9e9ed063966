package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zen-systems/quill/pkg/catalog"
	"github.com/zen-systems/quill/pkg/pipeline"
)

func runCmd() *cobra.Command {
	var pipelineFile string
	var seedFlags map[string]string
	var inputFlag string
	var outFile string

	cmd := &cobra.Command{
		Use:   "run [pipeline]",
		Short: "Execute a pipeline",
		Long: `Runs a built-in pipeline by name or a custom pipeline manifest given
with -f.

Seed fields are given with --seed name=value. A pipeline with exactly one
seed field also accepts --input, or reads it from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) == 1 {
				name = args[0]
			}
			p, err := loadPipeline(name, pipelineFile)
			if err != nil {
				return err
			}

			seed, err := buildSeed(p, seedFlags, inputFlag, cmd.InOrStdin())
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			adapters, err := createAdapters(cfg)
			if err != nil {
				return fmt.Errorf("failed to create adapters: %w", err)
			}
			bound, err := bindPipeline(cfg, p, adapters, flagSelection())
			if err != nil {
				return err
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			result, err := execute(ctx, cfg, bound, seed)
			if err != nil {
				return err
			}
			return writeOutput(outFile, result.Output())
		},
	}

	cmd.Flags().StringVarP(&pipelineFile, "file", "f", "", "pipeline manifest (YAML)")
	cmd.Flags().StringToStringVar(&seedFlags, "seed", nil, "seed field as name=value (repeatable)")
	cmd.Flags().StringVar(&inputFlag, "input", "", "value of the single seed field")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "write the terminal field to a file instead of stdout")
	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [pipeline.yaml]",
		Short: "Validate a pipeline manifest",
		Long:  "Validates pipeline YAML without executing.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := pipeline.LoadManifest(args[0])
			if err != nil {
				return err
			}
			if err := p.Validate(); err != nil {
				return err
			}
			fmt.Printf("Pipeline %s is valid (%d stages, terminal field %s).\n", p.Name, len(p.Stages), p.TerminalField())
			return nil
		},
	}
}

func pipelinesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pipelines",
		Short: "List built-in pipelines",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSEEDS\tSTAGES\tOUTPUT")
			for _, name := range catalog.Names() {
				p, err := catalog.ByName(name)
				if err != nil {
					return err
				}
				stages := make([]string, 0, len(p.Stages))
				for _, s := range p.Stages {
					stages = append(stages, s.Name)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Name, strings.Join(p.Seeds, ","), strings.Join(stages, " -> "), p.TerminalField())
			}
			return w.Flush()
		},
	}
}

func graphCmd() *cobra.Command {
	var pipelineFile string

	cmd := &cobra.Command{
		Use:   "graph [pipeline]",
		Short: "Print a pipeline's field flow as Graphviz DOT",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			if len(args) == 1 {
				name = args[0]
			}
			p, err := loadPipeline(name, pipelineFile)
			if err != nil {
				return err
			}
			dot, err := p.DOT()
			if err != nil {
				return err
			}
			fmt.Print(dot)
			return nil
		},
	}

	cmd.Flags().StringVarP(&pipelineFile, "file", "f", "", "pipeline manifest (YAML)")
	return cmd
}

// loadPipeline resolves a built-in pipeline name or a manifest path.
func loadPipeline(name, file string) (*pipeline.Pipeline, error) {
	switch {
	case name != "" && file != "":
		return nil, fmt.Errorf("give either a pipeline name or --file, not both")
	case file != "":
		return pipeline.LoadManifest(file)
	case name != "":
		return catalog.ByName(name)
	default:
		return nil, fmt.Errorf("pipeline name or --file is required")
	}
}

// buildSeed assembles the seed from --seed pairs, falling back to --input or
// stdin when the pipeline declares a single seed field that was not given.
func buildSeed(p *pipeline.Pipeline, pairs map[string]string, input string, stdin io.Reader) (map[string]string, error) {
	seed := make(map[string]string, len(pairs)+1)
	for k, v := range pairs {
		seed[k] = v
	}

	if len(p.Seeds) != 1 {
		if input != "" {
			return nil, fmt.Errorf("--input needs a pipeline with exactly one seed field; use --seed")
		}
		return seed, nil
	}

	field := p.Seeds[0]
	if _, ok := seed[field]; ok {
		return seed, nil
	}
	if input == "" && stdin != nil {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		input = strings.TrimSpace(string(data))
	}
	seed[field] = input
	return seed, nil
}
