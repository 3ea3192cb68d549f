package experiment

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParse(t *testing.T) {
	data := []byte(`
experiment:
  name: "test_experiment"
  description: "A test experiment"
training:
  script: "python train.py"
  config:
    learning_rate: 0.001
    epochs: 3
deliverables:
  - type: "model"
    path: "output/model"
metadata:
  owner: "research"
`)

	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Name != "test_experiment" {
		t.Errorf("name = %q, want test_experiment", cfg.Name)
	}
	if cfg.Description != "A test experiment" {
		t.Errorf("description = %q", cfg.Description)
	}

	wantCommand := []string{"python", "train.py"}
	if len(cfg.Command) != len(wantCommand) {
		t.Fatalf("command = %v, want %v", cfg.Command, wantCommand)
	}
	for i, tok := range wantCommand {
		if cfg.Command[i] != tok {
			t.Errorf("command[%d] = %q, want %q", i, cfg.Command[i], tok)
		}
	}

	if len(cfg.Parameters) != 2 {
		t.Fatalf("got %d parameters, want 2", len(cfg.Parameters))
	}
	if cfg.Parameters[0].Key != "learning_rate" || cfg.Parameters[1].Key != "epochs" {
		t.Errorf("parameter order = [%s %s], want [learning_rate epochs]",
			cfg.Parameters[0].Key, cfg.Parameters[1].Key)
	}

	if len(cfg.Deliverables) != 1 || cfg.Deliverables[0].Type != "model" {
		t.Errorf("deliverables = %+v", cfg.Deliverables)
	}
	if cfg.Metadata["owner"] != "research" {
		t.Errorf("metadata = %v", cfg.Metadata)
	}
}

func TestParseCommandForms(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []string
	}{
		{
			name: "shell string with quoting",
			doc: `
training:
  script: 'python train.py --tag "my run"'
`,
			want: []string{"python", "train.py", "--tag", "my run"},
		},
		{
			name: "token list",
			doc: `
training:
  script: ["python", "train.py"]
`,
			want: []string{"python", "train.py"},
		},
		{
			name: "absent script",
			doc:  `experiment: {name: bare}`,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.doc))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if len(cfg.Command) != len(tt.want) {
				t.Fatalf("command = %v, want %v", cfg.Command, tt.want)
			}
			for i := range tt.want {
				if cfg.Command[i] != tt.want[i] {
					t.Errorf("command[%d] = %q, want %q", i, cfg.Command[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseDefaultsNameToUnnamed(t *testing.T) {
	cfg, err := Parse([]byte(`training: {script: "true"}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Name != DefaultName {
		t.Errorf("name = %q, want %q", cfg.Name, DefaultName)
	}
}

func TestParseParameterOrderPreserved(t *testing.T) {
	// Keys chosen so document order differs from sorted order.
	data := []byte(`
training:
  script: "true"
  config:
    zeta: 1
    alpha: 2
    mid: 3
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := []string{"zeta", "alpha", "mid"}
	if len(cfg.Parameters) != len(want) {
		t.Fatalf("got %d parameters, want %d", len(cfg.Parameters), len(want))
	}
	for i, key := range want {
		if cfg.Parameters[i].Key != key {
			t.Errorf("parameter[%d] = %q, want %q", i, cfg.Parameters[i].Key, key)
		}
	}
}

func TestParseRejectsDuplicateDeliverableTypes(t *testing.T) {
	data := []byte(`
training:
  script: "true"
deliverables:
  - type: "metrics"
    path: "a.json"
  - type: "metrics"
    path: "b.json"
`)
	if _, err := Parse(data); err == nil {
		t.Fatal("expected duplicate deliverable types to be rejected")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "exp.yaml")
	content := `
experiment:
  name: "from_file"
training:
  script: "python train.py"
  config:
    learning_rate: 0.001
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Name != "from_file" {
		t.Errorf("name = %q, want from_file", cfg.Name)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
