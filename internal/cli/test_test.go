package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// appliedScenarioYAML deletes the one isolated vertex of a three-vertex
// host; the other two vertices anchor the edge and are rejected by the
// dangling condition.
const appliedScenarioYAML = `
name: delete-isolated-vertex
description: remove a vertex no edge touches
schema: graph
host:
  counts: {V: 3, E: 1}
  homs:
    src: [1]
    tgt: [2]
rule:
  name: delete-vertex
  interface: {}
  pattern:
    counts: {V: 1}
  replacement: {}
expect:
  outcome: applied
  counts: {V: 2, E: 1}
assertions:
  - type: valid_matches
    count: 1
`

// blockedScenarioYAML has no applicable match: both vertices anchor the
// edge, so deleting either would dangle.
const blockedScenarioYAML = `
name: delete-vertex-blocked
description: every candidate dangles
schema: graph
host:
  counts: {V: 2, E: 1}
  homs:
    src: [1]
    tgt: [2]
rule:
  name: delete-vertex
  interface: {}
  pattern:
    counts: {V: 1}
  replacement: {}
expect:
  outcome: no-result
`

// failingScenarioYAML expects no result although the rule applies.
const failingScenarioYAML = `
name: wrong-expectation
description: expectation contradicts the host
schema: graph
host:
  counts: {V: 1}
rule:
  interface: {}
  pattern:
    counts: {V: 1}
  replacement: {}
expect:
  outcome: no-result
`

func writeScenario(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0644))
	return path
}

// newTestCommandForTest returns an output buffer and a runner that
// executes a fresh test command against it.
func newTestCommandForTest(format string) (*bytes.Buffer, func(args ...string) error) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: format}
	run := func(args ...string) error {
		cmd := NewTestCommand(rootOpts)
		cmd.SetOut(buf)
		cmd.SetErr(buf)
		cmd.SetArgs(args)
		return cmd.Execute()
	}
	return buf, run
}

func TestTestCommandMissingArgs(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTestCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentDir(t *testing.T) {
	_, run := newTestCommandForTest("text")

	err := run("/nonexistent/scenarios")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenarios directory not found")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommandEmptyDir(t *testing.T) {
	dir := t.TempDir()
	buf, run := newTestCommandForTest("text")

	err := run(dir)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No scenarios found")
}

func TestTestCommandEmptyDirJSON(t *testing.T) {
	dir := t.TempDir()
	buf, run := newTestCommandForTest("json")

	err := run(dir)
	require.NoError(t, err)

	var response CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &response))
	assert.Equal(t, "ok", response.Status)
}

func TestTestCommandAllPassing(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "delete-isolated-vertex.yaml", appliedScenarioYAML)
	writeScenario(t, dir, "delete-vertex-blocked.yaml", blockedScenarioYAML)

	buf, run := newTestCommandForTest("text")
	err := run(dir)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "✓ delete-isolated-vertex")
	assert.Contains(t, output, "✓ delete-vertex-blocked")
	assert.Contains(t, output, "Test Summary: 2 passed, 0 failed, 2 total")
	assert.Contains(t, output, "✓ All scenarios passed")
}

func TestTestCommandFailingScenario(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "delete-isolated-vertex.yaml", appliedScenarioYAML)
	writeScenario(t, dir, "wrong-expectation.yaml", failingScenarioYAML)

	buf, run := newTestCommandForTest("text")
	err := run(dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	output := buf.String()
	assert.Contains(t, output, "✓ delete-isolated-vertex")
	assert.Contains(t, output, "✗ wrong-expectation")
	assert.Contains(t, output, `outcome "no-result"`)
	assert.Contains(t, output, "Test Summary: 1 passed, 1 failed, 2 total")
}

func TestTestCommandJSONOutput(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "delete-isolated-vertex.yaml", appliedScenarioYAML)
	writeScenario(t, dir, "wrong-expectation.yaml", failingScenarioYAML)

	buf, run := newTestCommandForTest("json")
	err := run(dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var response struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &response))
	assert.Equal(t, "error", response.Status)
	require.NotNil(t, response.Error)
	assert.Equal(t, ErrCodeTestFailed, response.Error.Code)
	assert.Equal(t, 1, response.Data.Passed)
	assert.Equal(t, 1, response.Data.Failed)
	assert.Equal(t, 2, response.Data.Total)
	require.Len(t, response.Data.Scenarios, 2)
	assert.Equal(t, "delete-isolated-vertex", response.Data.Scenarios[0].Name)
	assert.Equal(t, "wrong-expectation", response.Data.Scenarios[1].Name)
}

func TestTestCommandUpdateThenCompare(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "delete-isolated-vertex.yaml", appliedScenarioYAML)

	buf, run := newTestCommandForTest("text")
	require.NoError(t, run(dir, "--update"))
	assert.Contains(t, buf.String(), "✓ delete-isolated-vertex (golden updated)")

	goldenPath := filepath.Join(dir, "golden", "delete-isolated-vertex.golden")
	data, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"scenario_name":"delete-isolated-vertex"`)

	// A fresh run must reproduce the recorded trace byte for byte.
	buf2, run2 := newTestCommandForTest("text")
	require.NoError(t, run2(dir))
	assert.Contains(t, buf2.String(), "✓ delete-isolated-vertex")
	assert.Contains(t, buf2.String(), "All scenarios passed")
}

func TestTestCommandGoldenMismatch(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "delete-isolated-vertex.yaml", appliedScenarioYAML)

	goldenDir := filepath.Join(dir, "golden")
	require.NoError(t, os.MkdirAll(goldenDir, 0755))
	stale := filepath.Join(goldenDir, "delete-isolated-vertex.golden")
	require.NoError(t, os.WriteFile(stale, []byte(`{"scenario_name":"stale"}`), 0644))

	buf, run := newTestCommandForTest("text")
	err := run(dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "trace does not match golden file")
}

func TestTestCommandFilter(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "delete-isolated-vertex.yaml", appliedScenarioYAML)
	writeScenario(t, dir, "wrong-expectation.yaml", failingScenarioYAML)

	buf, run := newTestCommandForTest("text")
	err := run(dir, "--filter", "delete-*")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Test Summary: 1 passed, 0 failed, 1 total")
}

func TestTestCommandRepoScenarios(t *testing.T) {
	// The shipped scenarios carry golden files in the layout the test
	// command expects, so the full conformance suite runs through the
	// CLI surface.
	buf, run := newTestCommandForTest("text")
	err := run(filepath.Join("..", "..", "testdata", "scenarios"))
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "✓ delete-isolated-vertex")
	assert.Contains(t, output, "✓ subdivide-edge")
	assert.Contains(t, output, "✓ relabel-vertex")
	assert.Contains(t, output, "✓ unlink-source-blocked")
	assert.Contains(t, output, "Test Summary: 4 passed, 0 failed, 4 total")
}

func TestTestCommandLoadErrorIsScenarioFailure(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "broken.yaml", "name: broken\nnot-a-field: {")

	buf, run := newTestCommandForTest("text")
	err := run(dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "✗ broken.yaml")
	assert.Contains(t, buf.String(), "failed to load scenario")
}

func TestFindScenarioFiles(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "test1.yaml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test2.yml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignore.txt"), []byte(""), 0644))

	files, err := findScenarioFiles(dir, "")
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestFindScenarioFilesWithFilter(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "delete-vertex.yaml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "delete-edge.yaml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "subdivide-edge.yaml"), []byte(""), 0644))

	files, err := findScenarioFiles(dir, "delete-*")
	require.NoError(t, err)
	require.Len(t, files, 2)

	for _, f := range files {
		assert.Contains(t, filepath.Base(f), "delete-")
	}
}

func TestFindScenarioFilesSubdirectories(t *testing.T) {
	dir := t.TempDir()
	subDir := filepath.Join(dir, "subdir")
	require.NoError(t, os.MkdirAll(subDir, 0755))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "root.yaml"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(subDir, "sub.yaml"), []byte(""), 0644))

	files, err := findScenarioFiles(dir, "")
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestFindScenarioFilesInvalidFilter(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(""), 0644))

	_, err := findScenarioFiles(dir, "[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter pattern")
}

func TestGoldenFilePath(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"/path/to/scenario.yaml", "/path/to/golden/scenario.golden"},
		{"/path/to/scenario.yml", "/path/to/golden/scenario.golden"},
		{"scenarios/test.yaml", "scenarios/golden/test.golden"},
	}

	for _, tc := range testCases {
		result := goldenFilePath(tc.input)
		assert.Equal(t, tc.expected, result)
	}
}

func TestTestHelpText(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTestCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "conformance")
	assert.Contains(t, output, "--update")
	assert.Contains(t, output, "--filter")
	assert.Contains(t, output, "scenarios-dir")
}
