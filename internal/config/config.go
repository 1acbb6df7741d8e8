// Package config loads and validates the generator's JSON configuration:
// the interarrival distribution, the named emitters, the state machine,
// and the output target.
//
// Grounded on the teacher's pkg/config.Config (Load/Save/Validate,
// os.ExpandEnv pre-expansion of the raw file before unmarshal), restructured
// around this domain's own schema.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// EmitterSpec is a named, ordered list of dimension specs. States bind to an
// emitter by name to define their record shape.
type EmitterSpec struct {
	Name       string                   `json:"name"`
	Dimensions []map[string]interface{} `json:"dimensions"`
}

// TransitionSpec is one weighted edge out of a state. Next is either another
// state's name or the literal "stop" (case-insensitive).
type TransitionSpec struct {
	Next        string  `json:"next"`
	Probability float64 `json:"probability"`
}

// StateSpec describes one node of the state graph before it is compiled
// against its emitter's dimensions.
type StateSpec struct {
	Name        string                   `json:"name"`
	Emitter     string                   `json:"emitter"`
	Delay       map[string]interface{}   `json:"delay"`
	Transitions []TransitionSpec         `json:"transitions"`
	Variables   []map[string]interface{} `json:"variables"`
}

// Config is the decoded shape of the generator's JSON configuration file.
type Config struct {
	Interarrival map[string]interface{} `json:"interarrival"`
	Emitters     []EmitterSpec          `json:"emitters"`
	States       []StateSpec            `json:"states"`
	Target       map[string]interface{} `json:"target"`
}

// Load reads path, expands ${VAR}/$VAR environment references in the raw
// bytes (so e.g. a kafka target's "endpoint" can be supplied via the
// environment), decodes it as JSON, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := json.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadTarget reads a standalone target override file (the -t flag), the
// same way Load reads the generator config, but returns just the raw target
// map — it is merged into (and replaces) Config.Target by the caller.
func LoadTarget(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading target override %s: %w", path, err)
	}
	expanded := os.ExpandEnv(string(data))

	var target map[string]interface{}
	if err := json.Unmarshal([]byte(expanded), &target); err != nil {
		return nil, fmt.Errorf("config: parsing target override %s: %w", path, err)
	}
	return target, nil
}

// Validate checks the structural invariants that don't require building
// distributions or dimensions: at least one state, every emitter reference
// resolves, every transition target is either "stop" or a defined state,
// and state names are unique. Per-dimension validation (cardinality without
// a cardinality_distribution, unknown distribution/dimension kinds) happens
// when internal/engine compiles these specs, since it requires the
// distributions and dimensions packages.
func (c *Config) Validate() error {
	if len(c.States) == 0 {
		return fmt.Errorf("no states defined")
	}

	emitterNames := make(map[string]bool, len(c.Emitters))
	for _, e := range c.Emitters {
		if e.Name == "" {
			return fmt.Errorf("an emitter is missing its \"name\"")
		}
		emitterNames[e.Name] = true
	}

	stateNames := make(map[string]bool, len(c.States))
	for _, s := range c.States {
		if s.Name == "" {
			return fmt.Errorf("a state is missing its \"name\"")
		}
		if stateNames[s.Name] {
			return fmt.Errorf("duplicate state name %q", s.Name)
		}
		stateNames[s.Name] = true
	}

	for _, s := range c.States {
		if s.Emitter == "" {
			return fmt.Errorf("state %q is missing its \"emitter\"", s.Name)
		}
		if !emitterNames[s.Emitter] {
			return fmt.Errorf("state %q references unknown emitter %q", s.Name, s.Emitter)
		}
		if len(s.Transitions) == 0 {
			return fmt.Errorf("state %q has no transitions", s.Name)
		}
		for _, t := range s.Transitions {
			if isStop(t.Next) {
				continue
			}
			if !stateNames[t.Next] {
				return fmt.Errorf("state %q references unknown state %q in a transition", s.Name, t.Next)
			}
		}
	}

	return nil
}

// isStop reports whether a transition target names the literal "stop"
// state, case-insensitively. Kept in sync with internal/engine's own
// isStop (engine.Compile can't import this package's validation-only
// helper without an import cycle, since internal/engine already imports
// internal/config), both implemented the same way over strings.EqualFold.
func isStop(name string) bool {
	return strings.EqualFold(name, "stop")
}
