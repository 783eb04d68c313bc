package hidef

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/idekerlab/cdhidef-go/pkg/errors"
)

// CX2 attribute declaration for the persistence column. PersistenceAttr
// is the canonical column name consumers expect; persistenceAlias is the
// compact alias used per node entry.
const (
	PersistenceAttr  = "HiDeF_persistence"
	persistenceAlias = "p1"
)

// DocumentOptions controls document serialization.
type DocumentOptions struct {
	// Plain emits the bare relation string followed by a newline, the
	// legacy stdout format, instead of the JSON document.
	Plain bool

	// NoAttributes omits the nodeAttributesAsCX2 block from the JSON
	// document even when persistence scores were recorded.
	NoAttributes bool
}

// document is the JSON interchange envelope.
type document struct {
	CommunityDetectionResult string         `json:"communityDetectionResult"`
	NodeAttributesAsCX2      *cx2Attributes `json:"nodeAttributesAsCX2,omitempty"`
}

// cx2Attributes is a minimal CX2 node-attribute block: one declaration
// plus per-node values.
type cx2Attributes struct {
	AttributeDeclarations []cx2Declarations `json:"attributeDeclarations"`
	Nodes                 []cx2Node         `json:"nodes"`
}

type cx2Declarations struct {
	Nodes map[string]cx2Column `json:"nodes"`
}

type cx2Column struct {
	DataType string `json:"d"`
	Alias    string `json:"a"`
	Default  int    `json:"v"`
}

type cx2Node struct {
	ID     int                        `json:"id"`
	Values map[string]json.RawMessage `json:"v"`
}

// formatID renders a synthetic cluster id for the relation grammar.
func formatID(id int) string {
	return strconv.Itoa(id)
}

// WriteRelations writes the relation section in the interchange grammar:
// every relation as <left>,<right>,<kind>; concatenated with no
// separators, in emission order.
func WriteRelations(w io.Writer, res *Result) error {
	for _, rel := range res.Relations {
		if _, err := io.WriteString(w, rel.String()); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "write relation")
		}
	}
	return nil
}

// RelationString returns the relation section as a string.
func RelationString(res *Result) string {
	var b []byte
	for _, rel := range res.Relations {
		b = append(b, rel.String()...)
	}
	return string(b)
}

// WriteDocument serializes the conversion result to w.
//
// The default output is a JSON object with the relation string under
// "communityDetectionResult" and, when persistence scores were recorded,
// a "nodeAttributesAsCX2" block declaring a single integer-typed
// HiDeF_persistence column with one entry per scored cluster, in
// ascending cluster-id (discovery) order. With opts.Plain the bare
// relation string plus a trailing newline is written instead.
func WriteDocument(w io.Writer, res *Result, opts DocumentOptions) error {
	if opts.Plain {
		if err := WriteRelations(w, res); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "write document")
		}
		return nil
	}

	doc := document{CommunityDetectionResult: RelationString(res)}
	if !opts.NoAttributes {
		doc.NodeAttributesAsCX2 = persistenceBlock(res)
	}

	enc := json.NewEncoder(w)
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode document")
	}
	return nil
}

// persistenceBlock builds the CX2 attribute block, or nil when no cluster
// has a recorded score.
func persistenceBlock(res *Result) *cx2Attributes {
	if res.Persistence.Len() == 0 {
		return nil
	}
	block := &cx2Attributes{
		AttributeDeclarations: []cx2Declarations{{
			Nodes: map[string]cx2Column{
				PersistenceAttr: {DataType: "integer", Alias: persistenceAlias, Default: 0},
			},
		}},
	}
	// Registry discovery order is ascending id order.
	for _, name := range res.Registry.Names() {
		id, _ := res.Registry.Lookup(name)
		score, ok := res.Persistence.Score(id)
		if !ok {
			continue
		}
		block.Nodes = append(block.Nodes, cx2Node{
			ID:     id,
			Values: map[string]json.RawMessage{persistenceAlias: scoreValue(score)},
		})
	}
	return block
}

// scoreValue embeds the raw score token in JSON without a numeric
// round-trip. Tokens that are not valid JSON scalars are quoted.
func scoreValue(score string) json.RawMessage {
	raw := json.RawMessage(score)
	if json.Valid(raw) {
		return raw
	}
	return json.RawMessage(fmt.Sprintf("%q", score))
}
