package hidef

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/idekerlab/cdhidef-go/pkg/errors"
)

// writeInput writes a temp input file and returns its path.
func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestMaxNodeID(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{
			name:    "single row",
			content: "Cluster1-0\t2\t10 11\t0.9\n",
			want:    11,
		},
		{
			name:    "max in later row",
			content: "A\t2\t10 11\t0.9\nB\t3\t5 99 7\t0.5\n",
			want:    99,
		},
		{
			name:    "zero is a valid id",
			content: "A\t1\t0\t1\n",
			want:    0,
		},
		{
			name:    "no trailing newline",
			content: "A\t2\t3 4\t2",
			want:    4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeInput(t, "x.nodes", tt.content)
			got, err := MaxNodeID(path)
			if err != nil {
				t.Fatalf("MaxNodeID() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("MaxNodeID() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMaxNodeIDEmptyFile(t *testing.T) {
	path := writeInput(t, "x.nodes", "")
	_, err := MaxNodeID(path)
	if err == nil {
		t.Fatal("MaxNodeID() on empty file should error")
	}
	if !errors.Is(err, errors.ErrCodeEmptyInput) {
		t.Errorf("error code = %v, want EMPTY_INPUT", errors.GetCode(err))
	}
}

func TestMaxNodeIDMissingFile(t *testing.T) {
	_, err := MaxNodeID(filepath.Join(t.TempDir(), "nope.nodes"))
	if !errors.Is(err, errors.ErrCodeMissingInput) {
		t.Errorf("error code = %v, want MISSING_INPUT", errors.GetCode(err))
	}
}

func TestMaxNodeIDMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "non-integer member", content: "A\t2\t10 abc\t0.9\n"},
		{name: "too few fields", content: "A\t2\n"},
		{name: "empty member list", content: "A\t0\t\t0.9\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeInput(t, "x.nodes", tt.content)
			_, err := MaxNodeID(path)
			if !errors.Is(err, errors.ErrCodeMalformedRow) {
				t.Errorf("error code = %v, want MALFORMED_ROW", errors.GetCode(err))
			}
		})
	}
}

func TestRegistryFirstSeenAllocation(t *testing.T) {
	r := NewRegistry(11)

	if id := r.Resolve("A"); id != 12 {
		t.Errorf("Resolve(A) = %d, want 12", id)
	}
	if id := r.Resolve("B"); id != 13 {
		t.Errorf("Resolve(B) = %d, want 13", id)
	}
	// Repeated resolution is memoized, never reallocated.
	if id := r.Resolve("A"); id != 12 {
		t.Errorf("Resolve(A) again = %d, want 12", id)
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}

	if _, ok := r.Lookup("C"); ok {
		t.Error("Lookup(C) should miss")
	}

	names := r.Names()
	if len(names) != 2 || names[0] != "A" || names[1] != "B" {
		t.Errorf("Names() = %v, want [A B]", names)
	}
}

func TestConvertMembership(t *testing.T) {
	// Scenario: one cluster with members 10 and 11; max id 11 gives the
	// cluster id 12.
	nodes := writeInput(t, "x.nodes", "A\t2\t10 11\t0.9\n")
	edges := writeInput(t, "x.edges", "")

	res, err := Convert(nodes, edges)
	if err != nil {
		t.Fatalf("Convert() error: %v", err)
	}

	if got := RelationString(res); got != "12,10,c-m;12,11,c-m;" {
		t.Errorf("RelationString() = %q, want %q", got, "12,10,c-m;12,11,c-m;")
	}
	if res.MaxNodeID != 11 {
		t.Errorf("MaxNodeID = %d, want 11", res.MaxNodeID)
	}
	if res.Empty {
		t.Error("Empty = true, want false")
	}
}

func TestConvertContainment(t *testing.T) {
	nodes := writeInput(t, "x.nodes", "A\t2\t10 11\t0.9\nB\t1\t5\t0.5\n")
	edges := writeInput(t, "x.edges", "A\tB\tdefault\n")

	res, err := Convert(nodes, edges)
	if err != nil {
		t.Fatalf("Convert() error: %v", err)
	}

	want := "12,10,c-m;12,11,c-m;13,5,c-m;12,13,c-c;"
	if got := RelationString(res); got != want {
		t.Errorf("RelationString() = %q, want %q", got, want)
	}
	if got := res.MembershipCount(); got != 3 {
		t.Errorf("MembershipCount() = %d, want 3", got)
	}
	if got := res.ContainmentCount(); got != 1 {
		t.Errorf("ContainmentCount() = %d, want 1", got)
	}
}

func TestConvertEmptyNodesFile(t *testing.T) {
	nodes := writeInput(t, "x.nodes", "")
	edges := writeInput(t, "x.edges", "")

	res, err := Convert(nodes, edges)
	if err != nil {
		t.Fatalf("Convert() on empty nodes file should not error, got: %v", err)
	}
	if !res.Empty {
		t.Error("Empty = false, want true")
	}
	if len(res.Relations) != 0 {
		t.Errorf("Relations = %v, want none", res.Relations)
	}
}

func TestConvertDanglingReference(t *testing.T) {
	nodes := writeInput(t, "x.nodes", "A\t2\t10 11\t0.9\n")
	edges := writeInput(t, "x.edges", "A\tGhost\tdefault\n")

	_, err := Convert(nodes, edges)
	if !errors.Is(err, errors.ErrCodeDanglingReference) {
		t.Fatalf("error code = %v, want DANGLING_REFERENCE", errors.GetCode(err))
	}
	// The missing cluster must be named for diagnostics.
	if msg := err.Error(); !strings.Contains(msg, "Ghost") {
		t.Errorf("error %q should name the missing cluster", msg)
	}
}

func TestConvertMissingEdgesFile(t *testing.T) {
	nodes := writeInput(t, "x.nodes", "A\t2\t10 11\t0.9\n")
	_, err := Convert(nodes, filepath.Join(t.TempDir(), "nope.edges"))
	if !errors.Is(err, errors.ErrCodeMissingInput) {
		t.Errorf("error code = %v, want MISSING_INPUT", errors.GetCode(err))
	}
}

func TestConvertDuplicateMembersPreserved(t *testing.T) {
	// Duplicate member ids in a row are emitted twice, matching upstream
	// behavior. No sorting, no de-duplication.
	nodes := writeInput(t, "x.nodes", "A\t3\t7 7 3\t0.9\n")
	edges := writeInput(t, "x.edges", "")

	res, err := Convert(nodes, edges)
	if err != nil {
		t.Fatalf("Convert() error: %v", err)
	}
	want := "8,7,c-m;8,7,c-m;8,3,c-m;"
	if got := RelationString(res); got != want {
		t.Errorf("RelationString() = %q, want %q", got, want)
	}
}

func TestConvertDuplicateClusterRows(t *testing.T) {
	// A cluster name on two rows keeps one id; both rows emit members but
	// only the first row's score is recorded.
	nodes := writeInput(t, "x.nodes", "A\t1\t1\t5\nA\t1\t2\t9\n")
	edges := writeInput(t, "x.edges", "")

	res, err := Convert(nodes, edges)
	if err != nil {
		t.Fatalf("Convert() error: %v", err)
	}
	want := "3,1,c-m;3,2,c-m;"
	if got := RelationString(res); got != want {
		t.Errorf("RelationString() = %q, want %q", got, want)
	}
	if score, ok := res.Persistence.Score(3); !ok || score != "5" {
		t.Errorf("Score(3) = %q, %v; want \"5\", true", score, ok)
	}
	if res.Persistence.Len() != 1 {
		t.Errorf("Persistence.Len() = %d, want 1", res.Persistence.Len())
	}
}

func TestConvertDeterministic(t *testing.T) {
	nodes := writeInput(t, "x.nodes", "C3\t2\t1 2\t4\nC1\t2\t3 4\t2\nC2\t1\t0\t7\n")
	edges := writeInput(t, "x.edges", "C3\tC1\tdefault\nC3\tC2\tdefault\n")

	first, err := Convert(nodes, edges)
	if err != nil {
		t.Fatalf("Convert() error: %v", err)
	}
	second, err := Convert(nodes, edges)
	if err != nil {
		t.Fatalf("Convert() error: %v", err)
	}
	if RelationString(first) != RelationString(second) {
		t.Errorf("repeated conversion differs:\n%q\n%q",
			RelationString(first), RelationString(second))
	}
}

func TestConvertIDSpaces(t *testing.T) {
	// Every cluster id is strictly above the max original node id.
	nodes := writeInput(t, "x.nodes", "A\t2\t10 11\t1\nB\t2\t0 5\t2\nC\t1\t7\t3\n")
	edges := writeInput(t, "x.edges", "A\tB\tdefault\n")

	res, err := Convert(nodes, edges)
	if err != nil {
		t.Fatalf("Convert() error: %v", err)
	}
	for _, name := range res.Registry.Names() {
		id, _ := res.Registry.Lookup(name)
		if id <= res.MaxNodeID {
			t.Errorf("cluster %s id %d not above max node id %d", name, id, res.MaxNodeID)
		}
	}
}

func TestConvertRowWithoutScore(t *testing.T) {
	nodes := writeInput(t, "x.nodes", "A\t2\t10 11\n")
	edges := writeInput(t, "x.edges", "")

	res, err := Convert(nodes, edges)
	if err != nil {
		t.Fatalf("Convert() error: %v", err)
	}
	if res.Persistence.Len() != 0 {
		t.Errorf("Persistence.Len() = %d, want 0", res.Persistence.Len())
	}
	if got := RelationString(res); got != "12,10,c-m;12,11,c-m;" {
		t.Errorf("RelationString() = %q", got)
	}
}

func TestPersistenceTrackerFirstWins(t *testing.T) {
	tr := NewPersistenceTracker()
	tr.Record(12, "5")
	tr.Record(12, "9")
	tr.Record(13, "")

	if score, ok := tr.Score(12); !ok || score != "5" {
		t.Errorf("Score(12) = %q, %v; want \"5\", true", score, ok)
	}
	if _, ok := tr.Score(13); ok {
		t.Error("empty score token should not be recorded")
	}
	if tr.Len() != 1 {
		t.Errorf("Len() = %d, want 1", tr.Len())
	}
}
