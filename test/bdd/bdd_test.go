package bdd

import (
	"fmt"
	"os"
	"testing"

	"github.com/cucumber/godog"
	"github.com/cucumber/godog/colors"

	"github.com/andrescamacho/tradeup-bot/test/bdd/steps"
	"github.com/andrescamacho/tradeup-bot/test/helpers"
)

// Scenarios share one in-memory journal database; each scenario starts by emptying it
func TestMain(m *testing.M) {
	if err := helpers.InitializeSharedTestDB(); err != nil {
		fmt.Fprintln(os.Stderr, "bdd:", err)
		os.Exit(1)
	}
	code := m.Run()
	helpers.CloseSharedTestDB()
	os.Exit(code)
}

// TestFeatures runs every feature file. GODOG_TAGS narrows the run, e.g. GODOG_TAGS=@ledger.
func TestFeatures(t *testing.T) {
	opts := godog.Options{
		Format:   "pretty",
		Output:   colors.Colored(os.Stdout),
		Paths:    []string{"features/domain", "features/application"},
		Tags:     os.Getenv("GODOG_TAGS"),
		Strict:   true,
		TestingT: t,
	}

	status := godog.TestSuite{
		Name:                "tradeup-bot",
		ScenarioInitializer: InitializeScenario,
		Options:             &opts,
	}.Run()
	if status != 0 {
		t.Fatalf("godog exited with status %d", status)
	}
}

func InitializeScenario(sc *godog.ScenarioContext) {
	// Wear steps go first: their plain value assertions must win over the broader trading patterns
	steps.InitializeWearScenario(sc)
	steps.InitializeTradeUpScenario(sc)
}
