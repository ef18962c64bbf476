package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDoc = `
scheme_code: pm-kisan
name: PM-KISAN
version: "2024.1"
requirements:
  - field: age
    checks:
      - op: between
        values: [18, 120]
`

const eligibleApplicant = `{"name": "Ramesh Kumar", "age": 45, "state": "uttar pradesh"}`
const ineligibleApplicant = `{"name": "Arjun Kumar", "age": 10}`

// execute runs the root command with the given arguments and returns the
// combined output. Flag values leak between runs, so the ones tests set are
// reset afterwards.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()

	rootCmd.SetArgs(nil)
	rootCmd.SetIn(nil)
	checkScheme = ""
	return buf.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestExecuteExitCodes(t *testing.T) {
	dir := t.TempDir()
	rules := writeFile(t, dir, "pm-kisan.yaml", validDoc)

	t.Run("eligible exits zero", func(t *testing.T) {
		applicant := writeFile(t, dir, "eligible.json", eligibleApplicant)
		rootCmd.SetOut(new(bytes.Buffer))
		rootCmd.SetErr(new(bytes.Buffer))
		rootCmd.SetArgs([]string{"check", "--rules", rules, "--applicant", applicant})
		defer rootCmd.SetArgs(nil)

		assert.Equal(t, 0, Execute())
	})

	t.Run("ineligible exits one", func(t *testing.T) {
		applicant := writeFile(t, dir, "ineligible.json", ineligibleApplicant)
		rootCmd.SetOut(new(bytes.Buffer))
		rootCmd.SetErr(new(bytes.Buffer))
		rootCmd.SetArgs([]string{"check", "--rules", rules, "--applicant", applicant})
		defer rootCmd.SetArgs(nil)

		assert.Equal(t, 1, Execute())
	})

	t.Run("errors exit two", func(t *testing.T) {
		errOut := new(bytes.Buffer)
		rootCmd.SetOut(new(bytes.Buffer))
		rootCmd.SetErr(errOut)
		rootCmd.SetArgs([]string{"check", "--rules", filepath.Join(dir, "missing.yaml"), "--applicant", rules})
		defer rootCmd.SetArgs(nil)

		assert.Equal(t, 2, Execute())
		assert.Contains(t, errOut.String(), "Error:")
	})
}
