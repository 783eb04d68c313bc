package hidef

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/idekerlab/cdhidef-go/pkg/errors"
)

// Column layout of the HiDeF nodes file. Each row is
// <cluster-name>\t<member-count>\t<space-separated-member-ids>\t<score>.
// The member-count column is redundant with the member list and ignored.
const (
	nodesColName    = 0
	nodesColMembers = 2
	nodesColScore   = 3

	nodesMinFields = 3
	edgesMinFields = 2
)

// nodeRow is one parsed row of the nodes file. Member ids are kept as the
// raw tokens from the file; they are echoed into the output verbatim so
// integer re-formatting can never alter them.
type nodeRow struct {
	cluster string
	members []string
	score   string // raw score token, empty if the row has no score column
}

// parseNodeRow splits a nodes-file line into its fields.
// Returns a MALFORMED_ROW error when the row has too few columns.
func parseNodeRow(line string, lineNum int) (nodeRow, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < nodesMinFields {
		return nodeRow{}, errors.New(errors.ErrCodeMalformedRow,
			"nodes file line %d has %d fields, want at least %d: %q",
			lineNum, len(fields), nodesMinFields, line)
	}
	row := nodeRow{
		cluster: fields[nodesColName],
		members: strings.Split(fields[nodesColMembers], " "),
	}
	if len(fields) > nodesColScore {
		row.score = fields[nodesColScore]
	}
	return row, nil
}

// forEachNodeRow streams the nodes file row by row.
// Returns a MISSING_INPUT error when the file cannot be opened.
func forEachNodeRow(path string, fn func(row nodeRow, lineNum int) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeMissingInput, err, "open nodes file %s", path)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		row, err := parseNodeRow(scanner.Text(), lineNum)
		if err != nil {
			return err
		}
		if err := fn(row, lineNum); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "read nodes file %s", path)
	}
	return nil
}

// MaxNodeID scans the nodes file and returns the highest original node id
// referenced in any member list. Every synthetic cluster id is later
// allocated strictly above this value.
//
// A nodes file with zero rows returns an EMPTY_INPUT error rather than a
// sentinel value, because 0 is a legitimate node id.
func MaxNodeID(nodesPath string) (int, error) {
	maxID := 0
	seen := false
	err := forEachNodeRow(nodesPath, func(row nodeRow, lineNum int) error {
		for _, tok := range row.members {
			id, err := strconv.Atoi(tok)
			if err != nil {
				return errors.New(errors.ErrCodeMalformedRow,
					"nodes file line %d has non-integer member id %q (cluster %s)",
					lineNum, tok, row.cluster)
			}
			if !seen || id > maxID {
				maxID = id
				seen = true
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if !seen {
		return 0, errors.New(errors.ErrCodeEmptyInput, "nodes file %s has no rows", nodesPath)
	}
	return maxID, nil
}
