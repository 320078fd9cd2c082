package workflow

import (
	"fmt"
	"log/slog"
	"os"

	"marketbot/internal/domain"

	"gopkg.in/yaml.v3"
)

// LoadRules reads delivery rules from a YAML file. File order is preserved:
// it is the match priority. Entries missing a match or response are skipped
// with a warning rather than failing the whole file.
func LoadRules(path string, logger *slog.Logger) ([]domain.DeliveryRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read delivery rules: %w", err)
	}

	var raw []domain.DeliveryRule
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse delivery rules %s: %w", path, err)
	}

	rules := make([]domain.DeliveryRule, 0, len(raw))
	for i, r := range raw {
		if r.Match == "" || r.Response == "" {
			logger.Warn("skipping incomplete delivery rule", "path", path, "index", i)
			continue
		}
		rules = append(rules, r)
	}

	logger.Info("loaded delivery rules", "path", path, "count", len(rules))
	return rules, nil
}
