package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"sentinel-hq/janus/pkg/policy"
)

var lintFlags struct {
	file   string
	dir    string
	format string
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate policy-set files",
	Long: `Validate policy-set files for syntax and semantic errors.

The lint command loads policy sets exactly the way the server does:
  - YAML syntax validation
  - Required fields (setId, version, explicit default)
  - Rule validation (unique ids, known decisions and operators)

Examples:
  # Lint a single file
  janus lint --file policies/v1.yaml

  # Lint a directory
  janus lint --dir policies/

  # JSON output for CI/CD
  janus lint --dir policies/ --format json`,
	RunE: lintPolicies,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.file, "file", "f", "", "policy-set file to validate")
	lintCmd.Flags().StringVarP(&lintFlags.dir, "dir", "d", "", "directory of policy-set files")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
}

type lintResult struct {
	File    string `json:"file"`
	Valid   bool   `json:"valid"`
	SetID   string `json:"setId,omitempty"`
	Version string `json:"version,omitempty"`
	Rules   int    `json:"rules,omitempty"`
	Error   string `json:"error,omitempty"`
}

func lintPolicies(cmd *cobra.Command, args []string) error {
	if lintFlags.file == "" && lintFlags.dir == "" {
		return fmt.Errorf("either --file or --dir must be specified")
	}

	var files []string
	if lintFlags.file != "" {
		files = append(files, lintFlags.file)
	}
	if lintFlags.dir != "" {
		for _, pattern := range []string{"*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(lintFlags.dir, pattern))
			if err != nil {
				return fmt.Errorf("failed to list policy files: %w", err)
			}
			files = append(files, matches...)
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("no policy files found")
	}

	results := make([]lintResult, 0, len(files))
	failed := 0
	for _, file := range files {
		set, err := policy.LoadFile(file)
		if err != nil {
			results = append(results, lintResult{File: file, Error: err.Error()})
			failed++
			continue
		}
		results = append(results, lintResult{
			File:    file,
			Valid:   true,
			SetID:   set.SetID,
			Version: set.Version,
			Rules:   len(set.Rules),
		})
	}

	if lintFlags.format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Valid {
				fmt.Printf("✓ %s (%s version %s, %d rules)\n", r.File, r.SetID, r.Version, r.Rules)
			} else {
				fmt.Printf("✗ %s: %s\n", r.File, r.Error)
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d policy files failed validation", failed, len(files))
	}
	return nil
}
