package policy

import (
	"fmt"
	"os"
	"sort"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"sentinel-hq/janus/pkg/canonical"
)

// MaxSetFileSize bounds policy set files. Sets are pure data tables; anything
// larger indicates a misdirected file.
const MaxSetFileSize = 4 * 1024 * 1024

// knownOperators is the closed operator vocabulary accepted at load time.
var knownOperators = map[Operator]bool{
	OperatorEqual:        true,
	OperatorNotEqual:     true,
	OperatorGreaterThan:  true,
	OperatorGreaterEqual: true,
	OperatorLessThan:     true,
	OperatorLessEqual:    true,
	OperatorIn:           true,
	OperatorContains:     true,
	OperatorMatches:      true,
}

// LoadFile reads, validates, and seals a policy set from a YAML file.
func LoadFile(path string) (*Set, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &LoadError{Source: path, Message: "failed to access file", Cause: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &LoadError{Source: path, Message: "not a regular file"}
	}
	if info.Size() > MaxSetFileSize {
		return nil, &LoadError{Source: path,
			Message: fmt.Sprintf("file size %d bytes exceeds maximum %d bytes", info.Size(), MaxSetFileSize)}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Source: path, Message: "failed to read file", Cause: err}
	}
	set, err := Load(data)
	if err != nil {
		if le, ok := err.(*LoadError); ok {
			le.Source = path
		}
		return nil, err
	}
	return set, nil
}

// Load parses, validates, and seals a policy set from YAML bytes. The
// returned Set is immutable: rule order is fixed and RefHash is computed over
// the sealed content.
func Load(data []byte) (*Set, error) {
	if !utf8.Valid(data) {
		return nil, &LoadError{Source: "<memory>", Message: "policy set contains invalid UTF-8"}
	}

	var set Set
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, &LoadError{Source: "<memory>", Message: "failed to parse YAML", Cause: err}
	}
	if err := validateSet(&set); err != nil {
		return nil, err
	}
	seal(&set)

	refHash, err := canonical.HashJSON(&set)
	if err != nil {
		return nil, &LoadError{Source: "<memory>", Message: "failed to hash policy set", Cause: err}
	}
	set.RefHash = refHash

	return &set, nil
}

// validateSet enforces the structural rules a set must satisfy before it can
// be published: identity, an explicit default, and well-formed rules.
func validateSet(set *Set) error {
	if set.SetID == "" {
		return &LoadError{Source: "<memory>", Message: "setId is required"}
	}
	if set.Version == "" {
		return &LoadError{Source: "<memory>", Message: "version is required"}
	}
	// The default decision is versioned policy content, not a hidden
	// constant; a set without one is rejected outright.
	if set.Default == "" {
		return &LoadError{Source: "<memory>", Message: "default decision is required"}
	}
	if !set.Default.Valid() {
		return &LoadError{Source: "<memory>",
			Message: fmt.Sprintf("default decision %q is not one of permit/suppress/halt", set.Default)}
	}

	seen := make(map[string]bool, len(set.Rules))
	for i := range set.Rules {
		rule := &set.Rules[i]
		if rule.ID == "" {
			return &LoadError{Source: "<memory>", Message: fmt.Sprintf("rule %d has no id", i)}
		}
		if seen[rule.ID] {
			return &LoadError{Source: "<memory>", Message: fmt.Sprintf("duplicate rule id %q", rule.ID)}
		}
		seen[rule.ID] = true
		if !rule.Decision.Valid() {
			return &LoadError{Source: "<memory>",
				Message: fmt.Sprintf("rule %q decision %q is not one of permit/suppress/halt", rule.ID, rule.Decision)}
		}
		for j := range rule.When {
			cond := &rule.When[j]
			if cond.Field == "" {
				return &LoadError{Source: "<memory>",
					Message: fmt.Sprintf("rule %q condition %d has no field", rule.ID, j)}
			}
			if !knownOperators[cond.Operator] {
				return &LoadError{Source: "<memory>",
					Message: fmt.Sprintf("rule %q condition %d has unknown operator %q", rule.ID, j, cond.Operator)}
			}
		}
	}
	return nil
}

// seal fixes the evaluation order: priority descending, rule id ascending as
// the tie-break. Sealing at load time makes rule order a property of the
// published set rather than of the evaluator.
func seal(set *Set) {
	sort.SliceStable(set.Rules, func(i, j int) bool {
		if set.Rules[i].Priority != set.Rules[j].Priority {
			return set.Rules[i].Priority > set.Rules[j].Priority
		}
		return set.Rules[i].ID < set.Rules[j].ID
	})
}
