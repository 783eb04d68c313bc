package hidef

import (
	"fmt"
	"strings"

	"github.com/idekerlab/cdhidef-go/pkg/errors"
)

// RelationKind tags a relation in the interchange document.
type RelationKind string

// Relation kinds of the COMMUNITYDETECTRESULT grammar.
const (
	// KindMember links a cluster to a direct member node.
	KindMember RelationKind = "c-m"

	// KindContainment links a cluster to a cluster it contains.
	KindContainment RelationKind = "c-c"
)

// Relation is one entry of the interchange document's relation section.
// Source is always a synthetic cluster id. Target is kept textual: for
// membership it is the member token exactly as it appeared in the nodes
// file, for containment it is the formatted target cluster id.
type Relation struct {
	Source int
	Target string
	Kind   RelationKind
}

// String encodes the relation in the interchange grammar:
// <left-id>,<right-id>,<kind>;
func (r Relation) String() string {
	return fmt.Sprintf("%d,%s,%s;", r.Source, r.Target, r.Kind)
}

// ParseRelations decodes a relation string back into relations. Used by
// consumers that want the triples rather than the flat grammar, and by
// round-trip checks.
func ParseRelations(s string) ([]Relation, error) {
	if s == "" {
		return nil, nil
	}
	if !strings.HasSuffix(s, ";") {
		return nil, errors.New(errors.ErrCodeInvalidInput, "relation string missing terminator: %q", s)
	}
	entries := strings.Split(strings.TrimSuffix(s, ";"), ";")
	rels := make([]Relation, 0, len(entries))
	for _, e := range entries {
		parts := strings.Split(e, ",")
		if len(parts) != 3 {
			return nil, errors.New(errors.ErrCodeInvalidInput, "malformed relation entry %q", e)
		}
		var src int
		if _, err := fmt.Sscanf(parts[0], "%d", &src); err != nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "malformed relation source %q", parts[0])
		}
		kind := RelationKind(parts[2])
		if kind != KindMember && kind != KindContainment {
			return nil, errors.New(errors.ErrCodeInvalidInput, "unknown relation kind %q", parts[2])
		}
		rels = append(rels, Relation{Source: src, Target: parts[1], Kind: kind})
	}
	return rels, nil
}
