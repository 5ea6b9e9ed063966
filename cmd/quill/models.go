package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List available adapters, models and aliases",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ADAPTER\tSTATUS\tMODELS")
			for _, provider := range cfg.Aliases.ListProviders() {
				status := "not configured"
				if cfg.HasAdapter(provider) {
					status = "available"
				}
				if provider == cfg.Defaults.Adapter {
					status += " (default)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", provider, status, strings.Join(cfg.Aliases.Providers[provider], ", "))
			}

			fmt.Fprintln(w)
			fmt.Fprintln(w, "ALIAS\tMODEL\t")
			names := make([]string, 0, len(cfg.Aliases.Aliases))
			for name := range cfg.Aliases.Aliases {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(w, "%s\t%s\t\n", name, cfg.Aliases.Aliases[name])
			}
			return w.Flush()
		},
	}
}
