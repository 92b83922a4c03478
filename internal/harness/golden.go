package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/standlog/standlog/internal/report"
)

// snapshotCanonical serializes a run's journal and final state to
// canonical JSON. Canonical encoding makes the snapshot byte-stable, so
// golden comparison needs no normalization step.
func snapshotCanonical(scenarioName string, result *Result) ([]byte, error) {
	entries := make([]any, len(result.Journal))
	for i, e := range result.Journal {
		entries[i] = e.CanonicalMap()
	}
	reports := make([]any, len(result.Reports))
	for i, r := range result.Reports {
		reports[i] = r.CanonicalMap()
	}
	return report.MarshalCanonical(map[string]any{
		"scenario_name": scenarioName,
		"journal":       entries,
		"final": map[string]any{
			"greeting": result.Greeting,
			"reports":  reports,
		},
	})
}

// RunWithGolden executes a scenario and compares its trace against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Step expectations and assertions still apply: a run that diverges from
// its expect clauses fails even when the golden file matches.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}

	trace, err := snapshotCanonical(scenario.Name, result)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, trace)

	return result, nil
}
