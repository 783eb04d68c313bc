package hidef

import (
	"bufio"
	"os"
	"strings"

	"github.com/idekerlab/cdhidef-go/pkg/errors"
)

// Result holds the accumulated state of one conversion run: the relation
// list in emission order plus the registry and persistence scores needed
// to serialize the document. All state is scoped to the run; converting
// the same files twice yields byte-identical documents.
type Result struct {
	// Relations in emission order: all membership relations in nodes-file
	// row order, then all containment relations in edges-file row order.
	Relations []Relation

	// Registry maps cluster names to synthetic ids, discovery-ordered.
	Registry *Registry

	// Persistence holds the per-cluster stability scores.
	Persistence *PersistenceTracker

	// MaxNodeID is the highest original node id seen in the nodes file.
	// Zero when Empty.
	MaxNodeID int

	// Empty reports that the nodes file had no rows. Zero clusters is a
	// valid outcome; callers decide how to surface it.
	Empty bool
}

// MembershipCount returns the number of c-m relations.
func (r *Result) MembershipCount() int {
	return r.countKind(KindMember)
}

// ContainmentCount returns the number of c-c relations.
func (r *Result) ContainmentCount() int {
	return r.countKind(KindContainment)
}

func (r *Result) countKind(kind RelationKind) int {
	n := 0
	for _, rel := range r.Relations {
		if rel.Kind == kind {
			n++
		}
	}
	return n
}

// Convert reads a HiDeF nodes file and edges file and builds the full
// conversion result.
//
// The nodes file is read twice: a first pass finds the maximum original
// node id (cluster ids must be allocated above it, and the maximum is
// unknown until the whole file is read), a second pass allocates cluster
// ids in first-seen order, emits one membership relation per member token
// and records persistence scores (first row wins on duplicates). The
// edges file is read once afterwards, against the fully populated
// registry; an edge naming a cluster absent from the nodes file is a
// DANGLING_REFERENCE error, not a skip, since it means the two files
// disagree.
//
// An empty nodes file yields a Result with Empty set and no relations.
func Convert(nodesPath, edgesPath string) (*Result, error) {
	maxID, err := MaxNodeID(nodesPath)
	if err != nil {
		if errors.Is(err, errors.ErrCodeEmptyInput) {
			return &Result{
				Registry:    NewRegistry(0),
				Persistence: NewPersistenceTracker(),
				Empty:       true,
			}, nil
		}
		return nil, err
	}

	res := &Result{
		Registry:    NewRegistry(maxID),
		Persistence: NewPersistenceTracker(),
		MaxNodeID:   maxID,
	}

	err = forEachNodeRow(nodesPath, func(row nodeRow, lineNum int) error {
		clusterID := res.Registry.Resolve(row.cluster)
		res.Persistence.Record(clusterID, row.score)
		// Member order and duplicates are preserved exactly as emitted
		// by HiDeF.
		for _, member := range row.members {
			res.Relations = append(res.Relations, Relation{
				Source: clusterID,
				Target: member,
				Kind:   KindMember,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := res.appendContainments(edgesPath); err != nil {
		return nil, err
	}
	return res, nil
}

// appendContainments reads the edges file and emits one containment
// relation per row, in row order.
func (r *Result) appendContainments(edgesPath string) error {
	f, err := os.Open(edgesPath)
	if err != nil {
		return errors.Wrap(errors.ErrCodeMissingInput, err, "open edges file %s", edgesPath)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		fields := strings.Split(line, "\t")
		if len(fields) < edgesMinFields {
			return errors.New(errors.ErrCodeMalformedRow,
				"edges file line %d has %d fields, want at least %d: %q",
				lineNum, len(fields), edgesMinFields, line)
		}
		srcID, ok := r.Registry.Lookup(fields[0])
		if !ok {
			return danglingErr(fields[0], lineNum)
		}
		dstID, ok := r.Registry.Lookup(fields[1])
		if !ok {
			return danglingErr(fields[1], lineNum)
		}
		r.Relations = append(r.Relations, Relation{
			Source: srcID,
			Target: formatID(dstID),
			Kind:   KindContainment,
		})
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "read edges file %s", edgesPath)
	}
	return nil
}

func danglingErr(cluster string, lineNum int) error {
	return errors.New(errors.ErrCodeDanglingReference,
		"edges file line %d references cluster %q absent from nodes file", lineNum, cluster)
}
