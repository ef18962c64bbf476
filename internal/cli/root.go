// Package cli implements the patra command line: offline eligibility
// checks, rule document validation and API client bootstrap.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "patra",
	Short: "Eligibility engine for government welfare schemes",
	Long: `patra evaluates applicant records against versioned scheme rules.

The check and rules commands work entirely offline from rule documents on
disk; clients create needs the database configured through DATABASE_URL.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// exitCodeError carries a process exit code through cobra without being
// printed as an error. An ineligible determination is a result, not a
// failure, but scripts need to tell the two apart.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}

// Execute runs the command line and returns the process exit code: 0 on
// success, 1 when a check finds the applicant ineligible, 2 on any error.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		var ec *exitCodeError
		if errors.As(err, &ec) {
			return ec.code
		}
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
		return 2
	}
	return 0
}
