package langid

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// modelConfig is the subset of a HuggingFace config.json the identifier
// needs.
type modelConfig struct {
	ID2Label map[string]string `json:"id2label"`
}

// loadLabels reads the label table from a HuggingFace-style config.json and
// returns language codes indexed by class id. Class ids must form a dense
// 0..n-1 range.
func loadLabels(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model config: %w", err)
	}

	var cfg modelConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing model config: %w", err)
	}
	if len(cfg.ID2Label) == 0 {
		return nil, fmt.Errorf("model config %s: missing id2label table", path)
	}

	labels := make([]string, len(cfg.ID2Label))
	for key, lang := range cfg.ID2Label {
		id, err := strconv.Atoi(key)
		if err != nil || id < 0 || id >= len(labels) {
			return nil, fmt.Errorf("model config %s: bad label id %q", path, key)
		}
		if lang == "" {
			return nil, fmt.Errorf("model config %s: empty label for id %d", path, id)
		}
		labels[id] = lang
	}
	for id, lang := range labels {
		if lang == "" {
			return nil, fmt.Errorf("model config %s: no label for id %d", path, id)
		}
	}
	return labels, nil
}
