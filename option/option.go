// Copyright 2026 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package option implements the Option descriptor and property-merging
// rules of spec §4.3: a strict hierarchical prefix scheme for configuration
// keys, and a 4-step resolution order producing an immutable per-block
// effective config.
package option

import (
	"os"
	"strings"
)

// Option describes one configurable property (spec §4.3 "An Option is
// {name, description, default, choices[]}").
type Option struct {
	Name        string
	Description string
	Default     string
	Choices     []string
}

// IsValidChoice reports whether v is acceptable for this option: any value
// when Choices is empty, otherwise exact membership.
func (o Option) IsValidChoice(v string) bool {
	if len(o.Choices) == 0 {
		return true
	}
	for _, c := range o.Choices {
		if c == v {
			return true
		}
	}
	return false
}

// Defaults builds a default_config map from a set of Option descriptors,
// the starting point of the resolution order (spec §4.3 step 1).
func Defaults(opts []Option) map[string]string {
	m := make(map[string]string, len(opts))
	for _, o := range opts {
		m[o.Name] = o.Default
	}
	return m
}

// Config is the resolved, immutable effective configuration for one block
// (spec §4.3 "the resolved config is immutable for that block").
type Config map[string]string

// Get returns the value for name, or "" with ok=false if unset.
func (c Config) Get(name string) (string, bool) {
	v, ok := c[name]
	return v, ok
}

// GetOr returns the value for name, or def if unset.
func (c Config) GetOr(name, def string) string {
	if v, ok := c[name]; ok {
		return v
	}
	return def
}

// StripPrefix extracts every key of props that begins with prefix+".",
// stripping the prefix (spec §4.3 step 2 "overlay of connection_properties
// matching the extension prefix: strip prefix, then set").
func StripPrefix(props map[string]string, prefix string) map[string]string {
	p := prefix + "."
	out := make(map[string]string)
	for k, v := range props {
		if strings.HasPrefix(k, p) {
			out[strings.TrimPrefix(k, p)] = v
		}
	}
	return out
}

// Merge builds the effective config for one block following the 4-step
// resolution order of spec §4.3: extension defaults, then connectionProps
// (already prefix-stripped by the caller via StripPrefix), then block-local
// opts. Later overlays win on name collision.
func Merge(defaults map[string]string, connectionProps map[string]string, blockOpts map[string]string) Config {
	cfg := make(Config, len(defaults)+len(connectionProps)+len(blockOpts))
	for k, v := range defaults {
		cfg[k] = v
	}
	for k, v := range connectionProps {
		cfg[k] = v
	}
	for k, v := range blockOpts {
		cfg[k] = v
	}
	return cfg
}

// EnvKey builds the environment-variable / system-property override key for
// (prefix, option): "<PREFIX>_<OPTION>", uppercased, with '.' mapped to '_'
// (spec §4.3 step 4).
func EnvKey(prefix, name string) string {
	raw := prefix + "_" + name
	raw = strings.ReplaceAll(raw, ".", "_")
	return strings.ToUpper(raw)
}

// ApplyEnvOverrides overrides defaults in-place with any environment
// variables matching EnvKey(prefix, option). This is applied once, at
// extension-registration time only, never per block (spec §4.3 step 4 "may
// override defaults at registration time only").
func ApplyEnvOverrides(defaults map[string]string, prefix string, lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for name := range defaults {
		if v, ok := lookup(EnvKey(prefix, name)); ok {
			defaults[name] = v
		}
	}
}
