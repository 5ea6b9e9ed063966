package config

import (
	"fmt"
	"sort"
)

// ModelAliases manages model alias resolution and validation.
type ModelAliases struct {
	Aliases   map[string]string
	Providers map[string][]string
}

// DefaultAliases returns the built-in aliases and provider model lists.
func DefaultAliases() *ModelAliases {
	return &ModelAliases{
		Aliases: map[string]string{
			"flash":    "gemini-2.0-flash",
			"pro":      "gemini-2.5-pro",
			"sonnet":   "claude-sonnet-4-20250514",
			"opus":     "claude-opus-4-20250514",
			"gpt":      "gpt-4o",
			"mini":     "gpt-4o-mini",
			"cheap":    "deepseek-chat",
			"reasoner": "deepseek-reasoner",
		},
		Providers: map[string][]string{
			"google":    {"gemini-2.0-flash", "gemini-2.5-flash", "gemini-2.5-pro"},
			"anthropic": {"claude-sonnet-4-20250514", "claude-opus-4-20250514"},
			"openai":    {"gpt-4o", "gpt-4o-mini", "gpt-4.1"},
			"deepseek":  {"deepseek-chat", "deepseek-reasoner"},
			"mock":      {"mock-1"},
		},
	}
}

// Merge returns a copy with extra aliases layered on top.
func (a *ModelAliases) Merge(extra map[string]string) *ModelAliases {
	out := &ModelAliases{
		Aliases:   make(map[string]string, len(a.Aliases)+len(extra)),
		Providers: make(map[string][]string, len(a.Providers)),
	}
	for k, v := range a.Aliases {
		out.Aliases[k] = v
	}
	for k, v := range extra {
		out.Aliases[k] = v
	}
	for k, v := range a.Providers {
		out.Providers[k] = append([]string(nil), v...)
	}
	return out
}

// Resolve returns the canonical model name for an alias.
// If the input is not an alias, it returns the input unchanged.
func (a *ModelAliases) Resolve(modelOrAlias string) string {
	if a == nil || a.Aliases == nil {
		return modelOrAlias
	}
	if canonical, ok := a.Aliases[modelOrAlias]; ok {
		return canonical
	}
	return modelOrAlias
}

// ValidateModel checks if a model exists in the provider's list.
func (a *ModelAliases) ValidateModel(adapter, model string) error {
	if a == nil || a.Providers == nil {
		return nil
	}

	models, ok := a.Providers[adapter]
	if !ok {
		return fmt.Errorf("unknown adapter %q", adapter)
	}
	for _, m := range models {
		if m == model {
			return nil
		}
	}
	return fmt.Errorf("model %q not in %s provider list", model, adapter)
}

// ProviderForModel returns the provider name for a canonical model.
func (a *ModelAliases) ProviderForModel(model string) string {
	if a == nil {
		return ""
	}
	for _, provider := range a.ListProviders() {
		for _, m := range a.Providers[provider] {
			if m == model {
				return provider
			}
		}
	}
	return ""
}

// ListProviders returns a sorted list of provider names.
func (a *ModelAliases) ListProviders() []string {
	if a == nil || a.Providers == nil {
		return nil
	}
	providers := make([]string, 0, len(a.Providers))
	for p := range a.Providers {
		providers = append(providers, p)
	}
	sort.Strings(providers)
	return providers
}
