// Package config loads the weaver configuration file (cilgraft.yml) the
// CLI and importer consult before starting a session: read file,
// yaml.Unmarshal, then validate before returning.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ResolverPolicyKind selects which resolver policy an import session
// uses to decide which source assemblies are mergeable.
type ResolverPolicyKind string

const (
	PolicyAssemblyList   ResolverPolicyKind = "assembly-list"
	PolicyLocalReference ResolverPolicyKind = "local-reference"
)

// NamespaceDecoratorRule names one of the namespace-remapping shapes a
// clone's top-level namespace can be rewritten with, applied as a pure
// function rather than hidden static state.
type NamespaceDecoratorRule string

const (
	DecoratorNone    NamespaceDecoratorRule = "none"
	DecoratorPrefix  NamespaceDecoratorRule = "prefix"
	DecoratorReplace NamespaceDecoratorRule = "replace"
)

// Config is the weaver configuration loaded from cilgraft.yml.
type Config struct {
	HideImportedTypes     bool                   `yaml:"hide_imported_types"`
	NamespaceDecoratorRule NamespaceDecoratorRule `yaml:"namespace_decorator"`
	NamespaceDecoratorArg  string                 `yaml:"namespace_decorator_arg"`
	ResolverPolicy        ResolverPolicyKind     `yaml:"resolver_policy"`
	AssemblyAllowList     []string               `yaml:"assembly_allow_list"`
	TargetModule          string                 `yaml:"target_module"`
	SourceModules         []string               `yaml:"source_modules"`
}

// Load reads and parses a YAML configuration file, then validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the fields that the rest of the package assumes are
// well-formed, returning a wrapped error describing the first bad field.
func (c *Config) Validate() error {
	if c.TargetModule == "" {
		return fmt.Errorf("config: target_module is required")
	}
	switch c.ResolverPolicy {
	case PolicyAssemblyList, PolicyLocalReference, "":
	default:
		return fmt.Errorf("config: resolver_policy %q is not one of %q, %q", c.ResolverPolicy, PolicyAssemblyList, PolicyLocalReference)
	}
	switch c.NamespaceDecoratorRule {
	case DecoratorNone, DecoratorPrefix, DecoratorReplace, "":
	default:
		return fmt.Errorf("config: namespace_decorator %q is not one of %q, %q, %q", c.NamespaceDecoratorRule, DecoratorNone, DecoratorPrefix, DecoratorReplace)
	}
	if c.ResolverPolicy == PolicyAssemblyList && len(c.AssemblyAllowList) == 0 {
		return fmt.Errorf("config: resolver_policy %q requires a non-empty assembly_allow_list", PolicyAssemblyList)
	}
	return nil
}

// Decorator builds the pure namespace-rewrite function described by the
// config's rule, or nil for "none" (meaning: do not decorate).
func (c *Config) Decorator() func(string) string {
	switch c.NamespaceDecoratorRule {
	case DecoratorPrefix:
		prefix := c.NamespaceDecoratorArg
		return func(n string) string { return prefix + n }
	case DecoratorReplace:
		replacement := c.NamespaceDecoratorArg
		return func(string) string { return replacement }
	default:
		return nil
	}
}
