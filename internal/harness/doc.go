// Package harness runs declarative store scenarios.
//
// A scenario lists messages to record and queries over them, each with the
// messages it must return. Run executes a scenario against an in-memory
// SQLite store; RunWithGolden also snapshots the generated SQL so changes to
// the filter scripts show up as golden file diffs.
//
// # Scenario Format
//
//	name: failed_orders
//	description: "Failed order commands are found by error type prefix"
//	serializer: json
//	messages:
//	  - type: command
//	    content_type: Orders.Create
//	    content: { id: 1 }
//	    created: 0s
//	    duration: 25ms
//	  - type: command
//	    content_type: Orders.Create
//	    content: { id: 2 }
//	    error: { type: "*orders.ValidationError", message: "missing sku" }
//	    created: 1m
//	    duration: 3ms
//	queries:
//	  - name: validation failures
//	    filter:
//	      error_type: "*orders."
//	      status: failed
//	    expect: [2]
//
// Messages are numbered from 1 in file order. Times (created, created_from,
// created_to) are offsets from testutil.Epoch. Unknown keys are rejected.
package harness
