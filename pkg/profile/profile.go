// Package profile maps named model profiles to concrete adapters and hook
// pipelines. Profiles are declared in YAML; resolution is strict, with no
// fallback profile. A caller naming a missing or incomplete profile gets an
// error, never a silently substituted model.
package profile

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"langops/pkg/hooks"
	"langops/pkg/llm"
	"langops/pkg/llm/provider"
)

// Resolution errors. Callers distinguish a typo (not found) from a profile
// that names a provider but lacks the pieces to build it (incomplete).
var (
	ErrProfileNotFound   = errors.New("profile not found")
	ErrProfileIncomplete = errors.New("profile incomplete")
)

// Definition is the YAML shape of one profile entry.
type Definition struct {
	Provider    string   `yaml:"provider"`
	Model       string   `yaml:"model"`
	Temperature float32  `yaml:"temperature"`
	MaxTokens   int      `yaml:"max_tokens"`
	BeforeHooks []string `yaml:"before_hooks"`
	AfterHooks  []string `yaml:"after_hooks"`
}

// Profile is a fully resolved profile: the adapter is constructed and the
// hook names are bound to registered implementations. Resolution happens
// once; requests using the profile cannot fail on a missing hook later.
type Profile struct {
	Name        string
	Provider    string
	Model       string
	Temperature float32
	MaxTokens   int
	Adapter     llm.Adapter
	BeforeHooks []hooks.Hook
	AfterHooks  []hooks.Hook
}

// Resolver turns profile names into resolved Profiles.
type Resolver struct {
	definitions map[string]Definition
	registry    *hooks.Registry
	providerCfg provider.Config
	middlewares []llm.Middleware
}

// NewResolver creates a resolver over a set of profile definitions. The
// middlewares are applied to every adapter the resolver constructs, in the
// order given.
func NewResolver(defs map[string]Definition, registry *hooks.Registry, providerCfg provider.Config, middlewares ...llm.Middleware) *Resolver {
	return &Resolver{
		definitions: defs,
		registry:    registry,
		providerCfg: providerCfg,
		middlewares: middlewares,
	}
}

// LoadDefinitions reads profile definitions from a YAML file mapping profile
// names to their settings.
func LoadDefinitions(path string) (map[string]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles file %s: %w", path, err)
	}

	var defs map[string]Definition
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("failed to parse profiles file %s: %w", path, err)
	}
	return defs, nil
}

// Names returns the sorted names of all known profiles.
func (r *Resolver) Names() []string {
	names := make([]string, 0, len(r.definitions))
	for name := range r.definitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve binds a profile name to an adapter and hook pipeline. Everything
// that can fail is checked here, so a resolved profile is safe to use for
// the lifetime of the process.
func (r *Resolver) Resolve(name string) (*Profile, error) {
	def, ok := r.definitions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", ErrProfileNotFound, name, r.Names())
	}

	if def.Provider == "" {
		return nil, fmt.Errorf("%w: %q has no provider", ErrProfileIncomplete, name)
	}
	if def.Model == "" {
		return nil, fmt.Errorf("%w: %q has no model", ErrProfileIncomplete, name)
	}

	adapter, err := provider.New(def.Provider, def.Model, r.providerCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrProfileIncomplete, name, err)
	}
	adapter = llm.Chain(adapter, r.middlewares...)

	before, err := r.registry.Resolve(def.BeforeHooks)
	if err != nil {
		return nil, fmt.Errorf("%w: %q before hooks: %v", ErrProfileIncomplete, name, err)
	}
	after, err := r.registry.Resolve(def.AfterHooks)
	if err != nil {
		return nil, fmt.Errorf("%w: %q after hooks: %v", ErrProfileIncomplete, name, err)
	}

	maxTokens := def.MaxTokens
	if maxTokens <= 0 {
		maxTokens = llm.DefaultMaxTokens
	}

	return &Profile{
		Name:        name,
		Provider:    def.Provider,
		Model:       def.Model,
		Temperature: def.Temperature,
		MaxTokens:   maxTokens,
		Adapter:     adapter,
		BeforeHooks: before,
		AfterHooks:  after,
	}, nil
}
