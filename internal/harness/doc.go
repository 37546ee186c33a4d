// Package harness runs conformance scenarios against the rewrite engine.
//
// A scenario is a YAML file describing one rewrite attempt end to end:
// a fixture schema, a host instance, a rule spelled out as instance
// literals with leg component maps, match selection options, and the
// expected outcome.
//
// # Scenario Format
//
//	name: delete-isolated-vertex
//	description: "Deletes the only vertex without incident edges"
//	schema: graph
//	host:
//	  counts: {V: 3, E: 1}
//	  homs:
//	    src: [1]
//	    tgt: [2]
//	rule:
//	  name: delete-vertex
//	  pattern:
//	    counts: {V: 1}
//	  interface: {}
//	  replacement: {}
//	expect:
//	  outcome: applied
//	  counts: {V: 2, E: 1}
//	assertions:
//	  - type: result_hom
//	    column: src
//	    values: [1]
//	  - type: valid_matches
//	    count: 1
//
// # Assertion Types
//
//   - result_counts: per-sort element counts of the result
//   - result_hom: one foreign-key column of the result, in full
//   - result_attr: one attribute column of the result, in full
//   - valid_matches: how many applicable matches the search found
//   - condition: the applicability verdict for an explicitly given match
//
// # Deterministic Testing
//
// Every run stamps its trace with a testutil.TraceClock and a fixed run
// token, so the same scenario always produces byte-identical canonical
// trace snapshots. RunWithGolden compares snapshots against
// testdata/golden/<name>.golden via goldie; `go test ./internal/harness
// -update` regenerates them.
//
// ARCHITECTURE:
//
//	YAML file --LoadScenario--> Scenario --Build--> Bundle{Schema, Host, Rule}
//	Bundle --Run--> Result{Pass, Trace, Errors} --Snapshot--> golden bytes
package harness
