package experiment

import (
	"strings"
	"testing"

	"github.com/nomadicsynth/orp/pkg/models"
)

func TestRenderCommand(t *testing.T) {
	tests := []struct {
		name   string
		config models.ExperimentConfig
		want   string
	}{
		{
			name: "no parameters",
			config: models.ExperimentConfig{
				Command: []string{"python", "train.py"},
			},
			want: "python train.py",
		},
		{
			name: "value parameters in config order",
			config: models.ExperimentConfig{
				Command: []string{"python", "train.py"},
				Parameters: []models.Param{
					{Key: "learning_rate", Value: 0.001},
					{Key: "epochs", Value: 3},
					{Key: "name", Value: "run-1"},
				},
			},
			want: "python train.py --learning_rate 0.001 --epochs 3 --name run-1",
		},
		{
			name: "true boolean renders as bare flag",
			config: models.ExperimentConfig{
				Command: []string{"train"},
				Parameters: []models.Param{
					{Key: "verbose", Value: true},
					{Key: "epochs", Value: 1},
				},
			},
			want: "train --verbose --epochs 1",
		},
		{
			name: "false boolean is omitted",
			config: models.ExperimentConfig{
				Command: []string{"train"},
				Parameters: []models.Param{
					{Key: "verbose", Value: false},
					{Key: "epochs", Value: 1},
				},
			},
			want: "train --epochs 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strings.Join(RenderCommand(&tt.config), " ")
			if got != tt.want {
				t.Errorf("RenderCommand() = %q, want %q", got, tt.want)
			}
		})
	}
}
