package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zen-systems/quill/pkg/adapter"
	"github.com/zen-systems/quill/pkg/config"
	"github.com/zen-systems/quill/pkg/pipeline"
)

// selection is the adapter/model pair requested on the command line.
type selection struct {
	Adapter string
	Model   string
}

func flagSelection() selection {
	return selection{Adapter: strings.TrimSpace(adapterFlag), Model: strings.TrimSpace(modelFlag)}
}

func createAdapters(cfg *config.Config) (map[string]adapter.Adapter, error) {
	adapters := make(map[string]adapter.Adapter)

	if cfg.GoogleAPIKey != "" {
		a, err := adapter.NewGoogleAdapter(cfg.GoogleAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create google adapter: %w", err)
		}
		adapters["google"] = adapter.WithTimeout(a, cfg.Defaults.Timeout)
	}

	if cfg.AnthropicAPIKey != "" {
		a, err := adapter.NewAnthropicAdapter(cfg.AnthropicAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create anthropic adapter: %w", err)
		}
		adapters["anthropic"] = adapter.WithTimeout(a, cfg.Defaults.Timeout)
	}

	if cfg.OpenAIAPIKey != "" {
		a, err := adapter.NewOpenAIAdapter(cfg.OpenAIAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create openai adapter: %w", err)
		}
		adapters["openai"] = adapter.WithTimeout(a, cfg.Defaults.Timeout)
	}

	if cfg.DeepSeekAPIKey != "" {
		a, err := adapter.NewDeepSeekAdapter(cfg.DeepSeekAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create deepseek adapter: %w", err)
		}
		adapters["deepseek"] = adapter.WithTimeout(a, cfg.Defaults.Timeout)
	}

	adapters["mock"] = adapter.NewMockAdapter()

	return adapters, nil
}

// bindPipeline returns a copy of p with its default adapter and model
// chosen from the command line, the pipeline itself and the config, in that
// order, with per-stage overrides from the config applied. Every adapter a
// stage will use must be present in adapters.
func bindPipeline(cfg *config.Config, p *pipeline.Pipeline, adapters map[string]adapter.Adapter, sel selection) (*pipeline.Pipeline, error) {
	aliases := cfg.Aliases
	out := *p

	if sel.Adapter != "" {
		out.DefaultAdapter = sel.Adapter
		out.DefaultModel = ""
	}
	if sel.Model != "" {
		out.DefaultModel = aliases.Resolve(sel.Model)
		if sel.Adapter == "" {
			if provider := aliases.ProviderForModel(out.DefaultModel); provider != "" {
				out.DefaultAdapter = provider
			}
		}
	}
	if out.DefaultAdapter == "" {
		out.DefaultAdapter = cfg.Defaults.Adapter
		if out.DefaultModel == "" {
			model := aliases.Resolve(cfg.Defaults.Model)
			if provider := aliases.ProviderForModel(model); provider == "" || provider == out.DefaultAdapter {
				out.DefaultModel = model
			}
		}
	}
	out.DefaultModel = aliases.Resolve(out.DefaultModel)

	out.Stages = make([]*pipeline.Stage, len(p.Stages))
	for i, stage := range p.Stages {
		s := *stage
		if target, ok := cfg.StageOverride(p.Name, s.Name); ok {
			if target.Adapter != "" {
				s.Adapter = target.Adapter
			}
			if target.Model != "" {
				s.Model = target.Model
			}
		}
		s.Model = aliases.Resolve(s.Model)
		if s.Adapter == "" && s.Model != "" && s.Model != out.DefaultModel {
			if provider := aliases.ProviderForModel(s.Model); provider != "" {
				s.Adapter = provider
			}
		}
		out.Stages[i] = &s
	}

	var missing []string
	seen := make(map[string]bool)
	for _, stage := range out.Stages {
		name := stage.Adapter
		if name == "" {
			name = out.DefaultAdapter
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		if _, ok := adapters[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("adapter %s not available; set the API key or choose another with --adapter", strings.Join(quoteAll(missing), ", "))
	}

	return out.WithAdapters(adapters), nil
}

func quoteAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprintf("%q", v)
	}
	return out
}
