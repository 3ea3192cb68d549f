package tracker

import (
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/nomadicsynth/orp/internal/experiment"
	"github.com/nomadicsynth/orp/pkg/models"
)

// metadataBlockRe matches the embedded metadata block in a work item
// body: a YAML document delimited by a pair of --- marker lines.
var metadataBlockRe = regexp.MustCompile(`(?s)---\s*\n(.*?)\n---`)

// MetadataBlock extracts the raw interior of the metadata block from a
// work item body. Returns false when no block is present.
func MetadataBlock(body string) (string, bool) {
	m := metadataBlockRe.FindStringSubmatch(body)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ParseMetadata parses the metadata block into a mapping. A missing
// block or a parse failure yields an empty mapping, not an error.
func ParseMetadata(body string) map[string]interface{} {
	block, ok := MetadataBlock(body)
	if !ok {
		return map[string]interface{}{}
	}

	meta := make(map[string]interface{})
	if err := yaml.Unmarshal([]byte(block), &meta); err != nil {
		return map[string]interface{}{}
	}
	return meta
}

// ConfigFromItem translates a work item into an experiment config by
// parsing its embedded metadata block as a configuration document. When
// the block does not name the experiment, the item's title is used.
//
// Translation never fails: a missing or unparseable block degrades to an
// empty config, which the runner then rejects as a config error. That
// keeps a claimed item on the normal failure path (failed result, failed
// label projected back) instead of stranding it mid-claim.
func ConfigFromItem(item *models.WorkItem) *models.ExperimentConfig {
	block, _ := MetadataBlock(item.Body)

	cfg, err := experiment.Parse([]byte(block))
	if err != nil {
		cfg = &models.ExperimentConfig{Name: experiment.DefaultName}
	}
	if cfg.Name == experiment.DefaultName && item.Title != "" {
		cfg.Name = item.Title
	}
	return cfg
}
