//go:build integration

// Package integration runs the reviewer-workflow feature suite.
package integration

import (
	"os"
	"testing"

	"github.com/cucumber/godog"
	"github.com/cucumber/godog/colors"

	"github.com/sales-backoffice/backend/test/integration/steps"
)

// TestFeatures drives every scenario under features/ against a server wired
// on the shared in-memory database. Scenarios run sequentially and in file
// order; they share one database that is wiped between scenarios.
func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		Name:                 "sales-backoffice-api",
		ScenarioInitializer:  steps.InitializeScenario,
		TestSuiteInitializer: steps.InitializeTestSuite,
		Options: &godog.Options{
			Format:      "pretty",
			Paths:       []string{"features"},
			Output:      colors.Colored(os.Stdout),
			Concurrency: 1,
			Strict:      true,
			Tags:        os.Getenv("GODOG_TAGS"),
			TestingT:    t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
