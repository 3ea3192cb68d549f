package runner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nomadicsynth/orp/pkg/models"
)

// validateDeliverables checks every declared deliverable against the
// working directory and reports a status per deliverable type.
//
// Validation is purely observational: no outcome aborts the run, and
// every deliverable is checked before packaging begins.
func validateDeliverables(deliverables []models.Deliverable, workDir string) map[string]models.DeliverableStatus {
	status := make(map[string]models.DeliverableStatus, len(deliverables))

	for _, d := range deliverables {
		fullPath := filepath.Join(workDir, d.Path)

		switch d.Validation {
		case models.ValidationContainsKeys:
			status[d.Type] = validateContainsKeys(d, fullPath)
		default:
			// Unknown validation kinds fall back to an existence
			// check, matching the exists default.
			exists := pathExists(fullPath)
			status[d.Type] = models.DeliverableStatus{
				Status:    deliveryState(exists),
				Path:      fullPath,
				Validated: exists,
			}
		}
	}
	return status
}

// validateContainsKeys parses a structured deliverable and checks that
// every required key is present at the top level. The target must exist
// and carry a recognized structured-data extension; otherwise it is
// reported missing.
func validateContainsKeys(d models.Deliverable, fullPath string) models.DeliverableStatus {
	if !pathExists(fullPath) || !structuredExtension(fullPath) {
		return models.DeliverableStatus{
			Status:    models.DeliverableMissing,
			Path:      fullPath,
			Validated: false,
		}
	}

	doc, err := parseStructured(fullPath)
	if err != nil {
		return models.DeliverableStatus{
			Status:    models.DeliverableError,
			Path:      fullPath,
			Validated: false,
			Error:     err.Error(),
		}
	}

	var missing []string
	for _, key := range d.RequiredKeys {
		if _, ok := doc[key]; !ok {
			missing = append(missing, key)
		}
	}

	return models.DeliverableStatus{
		Status:      models.DeliverableDelivered,
		Path:        fullPath,
		Validated:   len(missing) == 0,
		MissingKeys: missing,
	}
}

// structuredExtension reports whether the file can be parsed as a
// key-value document.
func structuredExtension(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// parseStructured reads a structured deliverable into a top-level map.
func parseStructured(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	doc := make(map[string]interface{})
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
		}
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
		}
	}
	return doc, nil
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func deliveryState(exists bool) models.DeliverableState {
	if exists {
		return models.DeliverableDelivered
	}
	return models.DeliverableMissing
}
