package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/zen-systems/quill/pkg/catalog"
	"github.com/zen-systems/quill/pkg/config"
	"github.com/zen-systems/quill/pkg/export"
	"github.com/zen-systems/quill/pkg/extract"
	"github.com/zen-systems/quill/pkg/pipeline"
	"github.com/zen-systems/quill/pkg/search"
	"github.com/zen-systems/quill/pkg/textstat"
)

func essayCmd() *cobra.Command {
	var exportDir string
	var outFile string

	cmd := &cobra.Command{
		Use:   "essay [topic]",
		Short: "Write an academic essay on a topic",
		Long: `Generates a structured academic essay on the topic, rewrites it to read
naturally and corrects its grammar.

Use --export to also write the essay as an HTML document named after the
topic.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			topic := strings.Join(args, " ")

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			result, err := runBuiltin(ctx, catalog.EssayName, map[string]string{"topic": topic})
			if err != nil {
				return err
			}

			essay := result.Output()
			if err := writeOutput(outFile, essay); err != nil {
				return err
			}
			if exportDir != "" {
				path, err := export.ToFile(exportDir, topic, essay)
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "Exported to %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&exportDir, "export", "", "directory to write an HTML copy of the essay")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "write the essay to a file instead of stdout")
	return cmd
}

func paraphraseCmd() *cobra.Command {
	var inputFile string
	var outFile string

	cmd := &cobra.Command{
		Use:   "paraphrase [text]",
		Short: "Paraphrase a passage",
		Long: `Rephrases a passage, rewrites it to read naturally and corrects its
grammar.

The passage is taken from the arguments, from --file (PDF, Markdown or plain
text) or from stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readPassage(inputFile, args, cmd.InOrStdin())
			if err != nil {
				return err
			}

			detector := textstat.NewDetector()
			in := textstat.Analyze(text, detector)
			fmt.Fprintf(os.Stderr, "Input: %s\n", describeStats(in))

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			result, err := runBuiltin(ctx, catalog.ParaphraserName, map[string]string{"input_paragraph": text})
			if err != nil {
				return err
			}

			output := result.Output()
			fmt.Fprintf(os.Stderr, "Output: %s\n", describeStats(textstat.Analyze(output, detector)))
			return writeOutput(outFile, output)
		},
	}

	cmd.Flags().StringVarP(&inputFile, "file", "f", "", "read the passage from a PDF, Markdown or text file")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "write the result to a file instead of stdout")
	return cmd
}

func thesisCmd() *cobra.Command {
	var idea, reason, audience string
	var searchFlag string
	var outFile string

	cmd := &cobra.Command{
		Use:   "thesis [topic]",
		Short: "Draft thesis statements for a topic",
		Long: `Generates ten thesis statements for the topic, rewrites them to read
naturally and corrects their grammar.

Related research papers are looked up at the same time when a search
provider is configured (--search google|tavily|none). Search failures are
reported as warnings.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			topic := strings.Join(args, " ")
			seedTopic := catalog.ThesisTopic(topic, idea, reason, audience)

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			p, err := preparePipeline(cfg, catalog.ThesisName)
			if err != nil {
				return err
			}
			searcher, err := newSearcher(cmd.Context(), cfg, searchFlag)
			if err != nil {
				slog.Warn("related search disabled", "error", err)
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			var result *pipeline.RunResult
			var links []search.Link
			var g errgroup.Group
			g.Go(func() error {
				var err error
				result, err = execute(ctx, cfg, p, map[string]string{"topic": seedTopic})
				return err
			})
			if searcher != nil && strings.TrimSpace(topic) != "" {
				g.Go(func() error {
					found, err := search.Related(ctx, searcher, topic)
					if err != nil {
						slog.Warn("related search failed", "error", err)
						return nil
					}
					links = found
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			output := result.Output()
			if formatted := search.FormatLinks(links); len(formatted) > 0 {
				output += "\n\nRelated articles:\n" + strings.Join(formatted, "\n")
			}
			return writeOutput(outFile, output)
		},
	}

	cmd.Flags().StringVar(&idea, "idea", "", "main idea to develop")
	cmd.Flags().StringVar(&reason, "reason", "", "reason supporting the main idea")
	cmd.Flags().StringVar(&audience, "audience", "", "intended audience")
	cmd.Flags().StringVar(&searchFlag, "search", "auto", "related article search: auto, google, tavily or none")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "write the result to a file instead of stdout")
	return cmd
}

// runBuiltin loads config, binds the named catalog pipeline and runs it.
func runBuiltin(ctx context.Context, name string, seed map[string]string) (*pipeline.RunResult, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	p, err := preparePipeline(cfg, name)
	if err != nil {
		return nil, err
	}
	return execute(ctx, cfg, p, seed)
}

func preparePipeline(cfg *config.Config, name string) (*pipeline.Pipeline, error) {
	p, err := catalog.ByName(name)
	if err != nil {
		return nil, err
	}
	adapters, err := createAdapters(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create adapters: %w", err)
	}
	return bindPipeline(cfg, p, adapters, flagSelection())
}

// newSearcher picks a related-content searcher. "auto" prefers Google
// Custom Search and falls back to Tavily; it returns nil, nil when neither
// is configured.
func newSearcher(ctx context.Context, cfg *config.Config, provider string) (search.Searcher, error) {
	google := func() (search.Searcher, error) {
		if cfg.GoogleSearchAPIKey == "" || cfg.GoogleCSEID == "" {
			return nil, fmt.Errorf("google: %w", search.ErrNotConfigured)
		}
		s, err := search.NewGoogleSearcher(ctx, cfg.GoogleSearchAPIKey, cfg.GoogleCSEID)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	tavily := func() (search.Searcher, error) {
		if cfg.TavilyAPIKey == "" {
			return nil, fmt.Errorf("tavily: %w", search.ErrNotConfigured)
		}
		s, err := search.NewTavilySearcher(cfg.TavilyAPIKey)
		if err != nil {
			return nil, err
		}
		return s, nil
	}

	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", "auto":
		if cfg.GoogleSearchAPIKey != "" && cfg.GoogleCSEID != "" {
			return google()
		}
		if cfg.TavilyAPIKey != "" {
			return tavily()
		}
		return nil, nil
	case "google":
		return google()
	case "tavily":
		return tavily()
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown search provider %q", provider)
	}
}

// readPassage returns text from a file, the arguments or r, in that order.
func readPassage(path string, args []string, r io.Reader) (string, error) {
	var text string
	switch {
	case path != "":
		extracted, err := extract.File(path)
		if err != nil {
			return "", err
		}
		text = extracted
	case len(args) > 0:
		text = strings.Join(args, " ")
	default:
		data, err := io.ReadAll(r)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(data)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("no text to paraphrase")
	}
	return text, nil
}

func describeStats(s textstat.Stats) string {
	out := fmt.Sprintf("%d words, %d characters", s.Words, s.Characters)
	if s.Language != "" {
		out += fmt.Sprintf(", %s (%s)", s.Language, s.ISO)
	}
	return out
}

func writeOutput(path, content string) error {
	if path == "" {
		fmt.Println(content)
		return nil
	}
	if err := os.WriteFile(path, []byte(content+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", path)
	return nil
}
