package experiment

import (
	"github.com/spf13/cast"

	"github.com/nomadicsynth/orp/pkg/models"
)

// RenderCommand produces the full argument vector for a config: the base
// command tokens followed by parameter-derived flags in config order.
//
// Boolean parameters render as bare flags when true and are omitted when
// false. All other values render as --key value using the value's string
// form.
func RenderCommand(cfg *models.ExperimentConfig) []string {
	args := make([]string, 0, len(cfg.Command)+2*len(cfg.Parameters))
	args = append(args, cfg.Command...)

	for _, p := range cfg.Parameters {
		if b, ok := p.Value.(bool); ok {
			if b {
				args = append(args, "--"+p.Key)
			}
			continue
		}
		args = append(args, "--"+p.Key, cast.ToString(p.Value))
	}
	return args
}
