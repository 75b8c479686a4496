package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_Scenarios(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)
			require.NoError(t, RunWithGolden(t, scenario))
		})
	}
}

func TestRun_ReportsUnexpectedMatches(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: wrong_expectation
description: "expects the wrong message"
messages:
  - type: command
    content_type: Orders.Create
    content: {}
  - type: event
    content_type: Orders.Created
    content: {}
queries:
  - name: events
    filter:
      type: event
    expect: [1]
`))
	require.NoError(t, err)

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "events: expected messages [1], got [2]", result.Errors[0])
	require.Len(t, result.Queries, 1)
	assert.Equal(t, []int{2}, result.Queries[0].Matched)
}

func TestRun_MissingExpectMeansNoMatches(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: empty
description: "no messages at all"
queries:
  - name: anything
    filter: {}
`))
	require.NoError(t, err)

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass)
	assert.Empty(t, result.Queries[0].Matched)
}

func TestRun_FailedMessagesDefaultToFailedStatus(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: failures
description: "an error without a status is a failure"
messages:
  - type: command
    content_type: Orders.Create
    content: {}
    error: { type: "*orders.Error", message: "boom" }
queries:
  - name: failed
    filter: { status: failed }
    expect: [1]
  - name: completed
    filter: { status: completed }
    expect: []
`))
	require.NoError(t, err)

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
}

func TestSnapshot_FormatsArguments(t *testing.T) {
	scenario := &Scenario{Name: "s", Serializer: "json"}
	result := &Result{Queries: []QueryResult{{
		Name:    "q",
		SQL:     "SELECT 1",
		Args:    []any{"Orders.%", int16(3)},
		Matched: []int{},
	}}}

	want := "scenario: s\nserializer: json\nmessages: 0\n\n== q ==\nSELECT 1\nargs: \"Orders.%\", 3\nmatched: []\n"
	assert.Equal(t, want, Snapshot(scenario, result))
}
