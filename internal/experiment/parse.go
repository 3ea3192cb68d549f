// Package experiment loads experiment configurations from YAML documents
// and renders them into runnable commands.
package experiment

import (
	"fmt"
	"os"

	"github.com/kballard/go-shellquote"
	"gopkg.in/yaml.v3"

	"github.com/nomadicsynth/orp/pkg/models"
)

// DefaultName is used when a config does not name its experiment.
const DefaultName = "unnamed"

// commandTokens accepts either a shell-style string or a YAML sequence
// of argument tokens. The sequence form is preferred; the string form is
// split with shell quoting rules.
type commandTokens []string

func (c *commandTokens) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		if s == "" {
			*c = nil
			return nil
		}
		tokens, err := shellquote.Split(s)
		if err != nil {
			return fmt.Errorf("split training script: %w", err)
		}
		*c = tokens
		return nil
	case yaml.SequenceNode:
		var tokens []string
		if err := node.Decode(&tokens); err != nil {
			return err
		}
		*c = tokens
		return nil
	case 0:
		*c = nil
		return nil
	default:
		return fmt.Errorf("training script must be a string or a list of tokens")
	}
}

// document mirrors the top-level sections of an experiment config file.
type document struct {
	Experiment struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
	} `yaml:"experiment"`
	Training struct {
		Script commandTokens `yaml:"script"`
		Config yaml.Node     `yaml:"config"`
	} `yaml:"training"`
	Deliverables []models.Deliverable   `yaml:"deliverables"`
	Metadata     map[string]interface{} `yaml:"metadata"`
}

// Parse decodes an experiment configuration document. Parameter order is
// preserved from the document so rendered flags are stable. Duplicate
// deliverable types are rejected here, at config-validation time.
func Parse(data []byte) (*models.ExperimentConfig, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse experiment config: %w", err)
	}

	params, err := decodeParams(&doc.Training.Config)
	if err != nil {
		return nil, fmt.Errorf("parse training config: %w", err)
	}

	cfg := &models.ExperimentConfig{
		Name:         doc.Experiment.Name,
		Description:  doc.Experiment.Description,
		Command:      doc.Training.Script,
		Parameters:   params,
		Deliverables: doc.Deliverables,
		Metadata:     doc.Metadata,
	}
	if cfg.Name == "" {
		cfg.Name = DefaultName
	}

	seen := make(map[string]bool, len(cfg.Deliverables))
	for _, d := range cfg.Deliverables {
		if seen[d.Type] {
			return nil, fmt.Errorf("duplicate deliverable type %q", d.Type)
		}
		seen[d.Type] = true
	}

	return cfg, nil
}

// Load reads and parses an experiment configuration file.
func Load(path string) (*models.ExperimentConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read experiment config: %w", err)
	}
	return Parse(data)
}

// decodeParams walks a YAML mapping node, keeping document order.
func decodeParams(node *yaml.Node) ([]models.Param, error) {
	if node == nil || node.Kind == 0 || node.Tag == "!!null" {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("training config must be a mapping")
	}

	params := make([]models.Param, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var key string
		if err := node.Content[i].Decode(&key); err != nil {
			return nil, err
		}
		var value interface{}
		if err := node.Content[i+1].Decode(&value); err != nil {
			return nil, err
		}
		params = append(params, models.Param{Key: key, Value: value})
	}
	return params, nil
}
