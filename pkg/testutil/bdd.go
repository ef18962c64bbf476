package testutil

import "testing"

// Given, When and Then wrap subtests so a scenario's structure is visible in
// test output without a BDD framework. The heavyweight Gherkin suite lives
// under e2e/; these are for in-process tests that read better as scenarios.
func Given(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	t.Run("Given "+desc, fn)
}

func When(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	t.Run("When "+desc, fn)
}

func Then(t *testing.T, desc string, fn func(t *testing.T)) {
	t.Helper()
	t.Run("Then "+desc, fn)
}
