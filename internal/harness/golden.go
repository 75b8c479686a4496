package harness

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden runs scenario and compares a text snapshot of the generated
// SQL, its arguments and the matched messages against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if the scenario could not be executed. Mismatches against
// the golden file and failed expectations fail t.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return err
	}
	for _, e := range result.Errors {
		t.Errorf("%s: %s", scenario.Name, e)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, []byte(Snapshot(scenario, result)))
	return nil
}

// Snapshot renders result as stable text.
func Snapshot(scenario *Scenario, result *Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "scenario: %s\n", scenario.Name)
	fmt.Fprintf(&sb, "serializer: %s\n", scenario.Serializer)
	fmt.Fprintf(&sb, "messages: %d\n", len(scenario.Messages))
	for _, q := range result.Queries {
		fmt.Fprintf(&sb, "\n== %s ==\n", q.Name)
		fmt.Fprintf(&sb, "%s\n", q.SQL)
		fmt.Fprintf(&sb, "args: %s\n", formatArgs(q.Args))
		fmt.Fprintf(&sb, "matched: %v\n", q.Matched)
	}
	return sb.String()
}

func formatArgs(args []any) string {
	if len(args) == 0 {
		return "(none)"
	}
	parts := make([]string, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case time.Time:
			parts[i] = v.Format(time.RFC3339Nano)
		case string:
			parts[i] = fmt.Sprintf("%q", v)
		default:
			parts[i] = fmt.Sprint(v)
		}
	}
	return strings.Join(parts, ", ")
}
