package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"patra/internal/ruleset"
	"patra/pkg/domain"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Work with rule documents",
}

var rulesValidateCmd = &cobra.Command{
	Use:   "validate <file|dir>",
	Short: "Parse and validate rule documents",
	Long: `Parses every rule document at the given path and reports each one
individually, so a directory with several broken documents shows every
problem in one run.`,
	Args: cobra.ExactArgs(1),
	RunE: runRulesValidate,
}

func init() {
	rulesCmd.AddCommand(rulesValidateCmd)
	rootCmd.AddCommand(rulesCmd)
}

func runRulesValidate(cmd *cobra.Command, args []string) error {
	paths, err := collectDocuments(args[0])
	if err != nil {
		return err
	}

	seen := make(map[domain.SchemeCode]string, len(paths))
	var bad int
	for _, p := range paths {
		name := filepath.Base(p)
		rs, err := ruleset.LoadFile(p)
		if err != nil {
			bad++
			cmd.Printf("%s: %v\n", name, err)
			continue
		}
		if prev, dup := seen[rs.SchemeCode]; dup {
			bad++
			cmd.Printf("%s: scheme %s already declared by %s\n", name, rs.SchemeCode, prev)
			continue
		}
		seen[rs.SchemeCode] = name
		cmd.Printf("%s: ok (scheme %s, version %s)\n", name, rs.SchemeCode, rs.Version)
	}

	if bad > 0 {
		return fmt.Errorf("%d of %d documents invalid", bad, len(paths))
	}
	cmd.Printf("%d document(s) valid\n", len(paths))
	return nil
}

func collectDocuments(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".yaml", ".yml", ".json":
			out = append(out, filepath.Join(path, entry.Name()))
		}
	}
	sort.Strings(out)
	if len(out) == 0 {
		return nil, fmt.Errorf("no rule documents in %s", path)
	}
	return out, nil
}
