package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/prepline/prepline/pkg/models"
	"github.com/prepline/prepline/pkg/persistence"
	"github.com/prepline/prepline/pkg/rules"
)

// RuleRepository handles validation rule file operations. Every document is
// checked against the rule schema on the way in and on the way out; a
// malformed file on disk is skipped with a warning rather than failing the
// whole load, so one corrupt rule cannot take validation down.
type RuleRepository struct {
	root   string
	logger *slog.Logger
}

func NewRuleRepository(root string, logger *slog.Logger) *RuleRepository {
	return &RuleRepository{root: root, logger: logger}
}

func (rr *RuleRepository) dir() string {
	return filepath.Join(rr.root, "rules")
}

// All returns every stored rule that passes schema validation, sorted by name.
func (rr *RuleRepository) All(_ context.Context) ([]models.ValidationRule, error) {
	root := os.DirFS(rr.dir())

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list rule files: %w", err)
	}

	ruleSet := make([]models.ValidationRule, 0, len(jsonFiles))

	for _, name := range jsonFiles {
		data, err := fs.ReadFile(root, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read rule file %s: %w", name, err)
		}

		if err := rules.ValidateDocument(data); err != nil {
			rr.logger.Warn("Skipping malformed rule document", "file", name, "error", err)

			continue
		}

		var rule models.ValidationRule
		if err := json.Unmarshal(data, &rule); err != nil {
			rr.logger.Warn("Skipping undecodable rule document", "file", name, "error", err)

			continue
		}

		ruleSet = append(ruleSet, rule)
	}

	sort.Slice(ruleSet, func(i, j int) bool {
		return ruleSet[i].Name < ruleSet[j].Name
	})

	return ruleSet, nil
}

// GetByID loads one rule by identifier.
func (rr *RuleRepository) GetByID(_ context.Context, id string) (*models.ValidationRule, error) {
	data, err := os.ReadFile(filepath.Join(rr.dir(), id+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.ErrRuleNotFound
		}

		return nil, fmt.Errorf("failed to read rule %s: %w", id, err)
	}

	var rule models.ValidationRule
	if err := json.Unmarshal(data, &rule); err != nil {
		return nil, fmt.Errorf("failed to decode rule %s: %w", id, err)
	}

	return &rule, nil
}

// Save validates the rule document against the schema and writes it.
func (rr *RuleRepository) Save(_ context.Context, rule *models.ValidationRule) error {
	data, err := json.MarshalIndent(rule, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode rule %s: %w", rule.ID, err)
	}

	if err := rules.ValidateDocument(data); err != nil {
		return err
	}

	if err := os.MkdirAll(rr.dir(), 0o755); err != nil {
		return fmt.Errorf("failed to create rules directory: %w", err)
	}

	path := filepath.Join(rr.dir(), rule.ID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write rule %s: %w", rule.ID, err)
	}

	return nil
}

// Delete removes the rule's JSON file.
func (rr *RuleRepository) Delete(_ context.Context, id string) error {
	err := os.Remove(filepath.Join(rr.dir(), id+".json"))
	if os.IsNotExist(err) {
		return persistence.ErrRuleNotFound
	}

	return err
}
