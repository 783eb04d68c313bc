package cli

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cdhideferrors "github.com/idekerlab/cdhidef-go/pkg/errors"
)

func newTestCLI() *CLI {
	return New(io.Discard, LogInfo)
}

// execute runs the root command with the given args and returns the
// resulting error.
func execute(t *testing.T, c *CLI, args ...string) error {
	t.Helper()
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

// fakeFinderScript writes a shell stand-in for hidef_finder.py that
// emits fixed nodes/edges output.
func fakeFinderScript(t *testing.T, dir, nodes, edges string) string {
	t.Helper()
	script := filepath.Join(dir, "fake_hidef.sh")
	body := "#!/bin/sh\nout=\"\"\nwhile [ $# -gt 0 ]; do\n" +
		"  if [ \"$1\" = \"--o\" ]; then out=\"$2\"; shift; fi\n  shift\ndone\n" +
		"printf '" + nodes + "' > \"$out.nodes\"\n" +
		"printf '" + edges + "' > \"$out.edges\"\n"
	if err := os.WriteFile(script, []byte(body), 0755); err != nil {
		t.Fatal(err)
	}
	return script
}

func missingConfig(t *testing.T, dir string) string {
	t.Helper()
	return filepath.Join(dir, "no-such-config.toml")
}

func TestRootCommandStructure(t *testing.T) {
	root := newTestCLI().RootCommand()

	want := []string{"run", "convert", "serve", "cache", "completion"}
	for _, name := range want {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command is missing subcommand %q", name)
		}
	}
}

func TestRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)

	input := filepath.Join(dir, "input.txt")
	if err := os.WriteFile(input, []byte("10\t11\t1.0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	script := fakeFinderScript(t, dir,
		`A\t2\t10 11\t5\nB\t1\t3\t2\n`,
		`A\tB\tdefault\n`)
	output := filepath.Join(dir, "out.json")

	err := execute(t, newTestCLI(), "run", input,
		"--config", missingConfig(t, dir),
		"--hidef-cmd", script,
		"--tempdir", dir,
		"--no-cache",
		"--output", output)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if doc["communityDetectionResult"] != "12,10,c-m;12,11,c-m;13,3,c-m;12,13,c-c;" {
		t.Errorf("communityDetectionResult = %v", doc["communityDetectionResult"])
	}
}

func TestRunMissingInput(t *testing.T) {
	dir := t.TempDir()

	err := execute(t, newTestCLI(), "run", filepath.Join(dir, "nope.txt"),
		"--config", missingConfig(t, dir))
	var exitError *ExitError
	if !errors.As(err, &exitError) {
		t.Fatalf("error = %v, want *ExitError", err)
	}
	if exitError.Status != ExitMissingInput {
		t.Errorf("status = %d, want %d", exitError.Status, ExitMissingInput)
	}
}

func TestRunEmptyInput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(input, nil, 0644); err != nil {
		t.Fatal(err)
	}

	err := execute(t, newTestCLI(), "run", input,
		"--config", missingConfig(t, dir))
	var exitError *ExitError
	if !errors.As(err, &exitError) {
		t.Fatalf("error = %v, want *ExitError", err)
	}
	if exitError.Status != ExitEmptyInput {
		t.Errorf("status = %d, want %d", exitError.Status, ExitEmptyInput)
	}
}

func TestRunClusteringFailure(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)
	input := filepath.Join(dir, "input.txt")
	if err := os.WriteFile(input, []byte("10\t11\t1.0\n"), 0644); err != nil {
		t.Fatal(err)
	}

	err := execute(t, newTestCLI(), "run", input,
		"--config", missingConfig(t, dir),
		"--hidef-cmd", "false",
		"--tempdir", dir,
		"--no-cache")
	var exitError *ExitError
	if !errors.As(err, &exitError) {
		t.Fatalf("error = %v, want *ExitError", err)
	}
	if exitError.Status != ExitClusteringFailed {
		t.Errorf("status = %d, want %d", exitError.Status, ExitClusteringFailed)
	}
}

func TestRunNoHidefOutput(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)
	input := filepath.Join(dir, "input.txt")
	if err := os.WriteFile(input, []byte("10\t11\t1.0\n"), 0644); err != nil {
		t.Fatal(err)
	}

	// "true" exits cleanly without writing the output pair.
	err := execute(t, newTestCLI(), "run", input,
		"--config", missingConfig(t, dir),
		"--hidef-cmd", "true",
		"--tempdir", dir,
		"--no-cache")
	var exitError *ExitError
	if !errors.As(err, &exitError) {
		t.Fatalf("error = %v, want *ExitError", err)
	}
	if exitError.Status != ExitNoOutput {
		t.Errorf("status = %d, want %d", exitError.Status, ExitNoOutput)
	}
}

func TestConvertEndToEnd(t *testing.T) {
	dir := t.TempDir()
	nodes := filepath.Join(dir, "x.nodes")
	edges := filepath.Join(dir, "x.edges")
	if err := os.WriteFile(nodes, []byte("A\t2\t10 11\t0.88\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(edges, nil, 0644); err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(dir, "out.txt")

	err := execute(t, newTestCLI(), "convert", nodes, edges,
		"--config", missingConfig(t, dir),
		"--plain",
		"--output", output)
	if err != nil {
		t.Fatalf("convert error: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimRight(string(data), "\n"); got != "12,10,c-m;12,11,c-m;" {
		t.Errorf("relations = %q, want %q", got, "12,10,c-m;12,11,c-m;")
	}
}

func TestConvertMissingNodesFile(t *testing.T) {
	dir := t.TempDir()
	edges := filepath.Join(dir, "x.edges")
	if err := os.WriteFile(edges, nil, 0644); err != nil {
		t.Fatal(err)
	}

	err := execute(t, newTestCLI(), "convert", filepath.Join(dir, "nope.nodes"), edges,
		"--config", missingConfig(t, dir))
	var exitError *ExitError
	if !errors.As(err, &exitError) {
		t.Fatalf("error = %v, want *ExitError", err)
	}
	if exitError.Status != ExitMissingInput {
		t.Errorf("status = %d, want %d", exitError.Status, ExitMissingInput)
	}
}

func TestRunExitStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"clustering failed", cdhideferrors.New(cdhideferrors.ErrCodeClusteringFailed, "boom"), ExitClusteringFailed},
		{"no output", cdhideferrors.New(cdhideferrors.ErrCodeMissingInput, "no nodes file"), ExitNoOutput},
		{"empty", cdhideferrors.New(cdhideferrors.ErrCodeEmptyInput, "empty"), ExitEmptyInput},
		{"other", cdhideferrors.New(cdhideferrors.ErrCodeInternal, "weird"), ExitUnexpected},
		{"uncoded", errors.New("plain"), ExitUnexpected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := runExitStatus(tt.err); got != tt.want {
				t.Errorf("runExitStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCachePath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)

	err := execute(t, newTestCLI(), "cache", "path",
		"--config", missingConfig(t, dir))
	if err != nil {
		t.Fatalf("cache path error: %v", err)
	}
}

func TestCacheClearEmpty(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "does-not-exist"))

	err := execute(t, newTestCLI(), "cache", "clear",
		"--config", missingConfig(t, dir))
	if err != nil {
		t.Fatalf("cache clear error: %v", err)
	}
}
