package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"patra/internal/applicant"
	"patra/internal/engine"
	"patra/internal/ruleset"
	"patra/pkg/domain"
)

var (
	checkRules     string
	checkApplicant string
	checkScheme    string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate an applicant record offline",
	Long: `Loads rule documents and one applicant record, evaluates eligibility
and prints the full decision as JSON. Nothing is persisted and no server
is contacted.

Exit code 0 means eligible, 1 ineligible, 2 any error.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkRules, "rules", "rulesets", "rule document file or directory")
	checkCmd.Flags().StringVar(&checkApplicant, "applicant", "", "applicant record JSON file, - for stdin")
	checkCmd.Flags().StringVar(&checkScheme, "scheme", "", "scheme code to evaluate against")
	_ = checkCmd.MarkFlagRequired("applicant")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	rs, err := resolveRuleSet(checkRules, checkScheme)
	if err != nil {
		return err
	}

	data, err := readInput(cmd, checkApplicant)
	if err != nil {
		return err
	}
	rec, err := applicant.ParseRecord(data)
	if err != nil {
		return err
	}

	decision := engine.Evaluate(rs, applicant.BuildFacts(rec), time.Now().UTC())

	out, err := json.MarshalIndent(decision, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(out))

	if !decision.Eligible {
		return &exitCodeError{code: 1}
	}
	return nil
}

// resolveRuleSet loads a rule document file or directory and picks the
// requested scheme. With exactly one candidate the scheme flag is optional.
func resolveRuleSet(path, scheme string) (*ruleset.RuleSet, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}

	if !info.IsDir() {
		rs, err := ruleset.LoadFile(path)
		if err != nil {
			return nil, err
		}
		if scheme != "" && string(rs.SchemeCode) != scheme {
			return nil, fmt.Errorf("document %s holds scheme %s, not %s", path, rs.SchemeCode, scheme)
		}
		return rs, nil
	}

	sets, err := ruleset.LoadDir(path)
	if err != nil {
		return nil, err
	}
	if scheme == "" {
		if len(sets) == 1 {
			for _, rs := range sets {
				return rs, nil
			}
		}
		return nil, fmt.Errorf("--scheme is required, %s holds %d schemes", path, len(sets))
	}

	code, err := domain.ParseSchemeCode(scheme)
	if err != nil {
		return nil, err
	}
	rs, ok := sets[code]
	if !ok {
		return nil, fmt.Errorf("no ruleset for scheme %s in %s", scheme, path)
	}
	return rs, nil
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("applicant: %w", err)
	}
	return data, nil
}
