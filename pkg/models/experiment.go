// Package models defines the shared domain types for the experiment pipeline.
package models

import "fmt"

// Validation identifies how a deliverable is checked after a run.
type Validation string

const (
	// ValidationExists checks only that the deliverable path exists.
	ValidationExists Validation = "exists"
	// ValidationContainsKeys parses the deliverable as structured data and
	// checks that all required keys are present at the top level.
	ValidationContainsKeys Validation = "contains_keys"
)

// Deliverable declares an expected output of a training command.
type Deliverable struct {
	// Type is the identifier used as the key in the result's deliverable
	// status map. Types must be unique within a config.
	Type string `json:"type" yaml:"type"`
	// Path is the location of the deliverable, relative to the run's
	// working directory.
	Path string `json:"path" yaml:"path"`
	// Validation selects the check applied to the deliverable.
	// Unknown values fall back to an existence check.
	Validation Validation `json:"validation,omitempty" yaml:"validation"`
	// RequiredKeys lists the top-level keys a contains_keys deliverable
	// must provide, in the order they should be reported when missing.
	RequiredKeys []string `json:"required_keys,omitempty" yaml:"required_keys"`
}

// Param is a single training parameter. Parameters keep the order they
// appear in the configuration document so rendered flags are stable.
type Param struct {
	// Key is the parameter name, rendered as --key.
	Key string `json:"key"`
	// Value is the parameter value. Booleans render as bare flags
	// (true) or are omitted (false); everything else renders as
	// --key value using the value's string form.
	Value interface{} `json:"value"`
}

// ExperimentConfig describes a single experiment: the command to run, its
// parameters, and the deliverables expected afterward. Configs are built
// once per run and are immutable thereafter.
type ExperimentConfig struct {
	// Name is the human-readable experiment name.
	Name string `json:"name"`
	// Description explains what the experiment is for.
	Description string `json:"description,omitempty"`
	// Command is the training command as ordered argument tokens.
	Command []string `json:"command"`
	// Parameters are rendered as flags after the command tokens.
	Parameters []Param `json:"parameters,omitempty"`
	// Deliverables are the outputs validated after the command exits.
	Deliverables []Deliverable `json:"deliverables,omitempty"`
	// Metadata is carried through to the persisted result untouched.
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Validate checks the config invariants that can be verified without
// running anything: a non-empty command and unique deliverable types.
func (c *ExperimentConfig) Validate() error {
	if len(c.Command) == 0 {
		return fmt.Errorf("experiment %q: no training command specified", c.Name)
	}
	seen := make(map[string]bool, len(c.Deliverables))
	for _, d := range c.Deliverables {
		if seen[d.Type] {
			return fmt.Errorf("experiment %q: duplicate deliverable type %q", c.Name, d.Type)
		}
		seen[d.Type] = true
	}
	return nil
}
