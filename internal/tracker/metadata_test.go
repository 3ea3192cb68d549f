package tracker

import (
	"testing"

	"github.com/nomadicsynth/orp/pkg/models"
)

const itemBody = `Run the baseline sweep before Friday.

---
experiment:
  name: "baseline-sweep"
training:
  script: "python train.py"
  config:
    learning_rate: 0.001
deliverables:
  - type: "metrics"
    path: "output/metrics.json"
---

cc @research-team
`

func TestMetadataBlock(t *testing.T) {
	block, ok := MetadataBlock(itemBody)
	if !ok {
		t.Fatal("expected a metadata block")
	}
	if block == "" || block[0] != 'e' {
		t.Errorf("block = %q, want YAML starting at experiment:", block)
	}

	if _, ok := MetadataBlock("no block here"); ok {
		t.Error("expected no block in plain text")
	}
}

func TestParseMetadata(t *testing.T) {
	meta := ParseMetadata(itemBody)
	if _, ok := meta["experiment"]; !ok {
		t.Errorf("metadata = %v, want experiment key", meta)
	}

	// Missing block and malformed YAML both yield an empty mapping.
	if got := ParseMetadata("plain text"); len(got) != 0 {
		t.Errorf("metadata = %v, want empty", got)
	}
	if got := ParseMetadata("---\n{not yaml\n---"); len(got) != 0 {
		t.Errorf("metadata = %v, want empty", got)
	}
}

func TestConfigFromItem(t *testing.T) {
	item := &models.WorkItem{ID: 42, Title: "Baseline sweep", Body: itemBody}

	cfg := ConfigFromItem(item)
	if cfg.Name != "baseline-sweep" {
		t.Errorf("name = %q, want baseline-sweep", cfg.Name)
	}
	if len(cfg.Command) == 0 || cfg.Command[0] != "python" {
		t.Errorf("command = %v", cfg.Command)
	}
	if len(cfg.Deliverables) != 1 || cfg.Deliverables[0].Type != "metrics" {
		t.Errorf("deliverables = %+v", cfg.Deliverables)
	}
}

func TestConfigFromItemTitleFallback(t *testing.T) {
	item := &models.WorkItem{
		ID:    43,
		Title: "Unnamed experiment run",
		Body:  "---\ntraining:\n  script: \"true\"\n---",
	}

	cfg := ConfigFromItem(item)
	if cfg.Name != "Unnamed experiment run" {
		t.Errorf("name = %q, want title fallback", cfg.Name)
	}
}

func TestConfigFromItemUnparseableBlock(t *testing.T) {
	// A broken metadata block must degrade to an empty config rather
	// than error, so a claimed item still reaches the failure path.
	item := &models.WorkItem{
		ID:    44,
		Title: "Broken metadata",
		Body:  "intro\n---\n{broken: [yaml\n---\nrest",
	}

	cfg := ConfigFromItem(item)
	if cfg == nil {
		t.Fatal("ConfigFromItem() = nil")
	}
	if cfg.Name != "Broken metadata" {
		t.Errorf("name = %q, want title fallback", cfg.Name)
	}
	if len(cfg.Command) != 0 {
		t.Errorf("command = %v, want empty", cfg.Command)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("empty config must fail validation as a config error")
	}
}
