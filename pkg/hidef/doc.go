// Package hidef converts HiDeF clustering output into the CDAPS
// community-detection interchange format.
//
// HiDeF writes two tab-delimited files per run: a nodes file listing one
// cluster per row (name, member count, space-separated member ids,
// persistence score) and an edges file listing hierarchy edges between
// cluster names. This package turns the pair into a single document: a
// relation string linking synthetic cluster ids to their members ("c-m")
// and to contained clusters ("c-c"), optionally wrapped in JSON together
// with a CX2 node-attribute block carrying per-cluster persistence.
//
// Cluster ids are allocated above the highest original node id so the two
// id spaces never collide. Allocation is first-seen order over the nodes
// file, which makes conversion deterministic: identical input bytes
// produce identical output bytes.
//
// # Usage
//
//	res, err := hidef.Convert("x.nodes", "x.edges")
//	if err != nil {
//	    return err
//	}
//	err = hidef.WriteDocument(os.Stdout, res, hidef.DocumentOptions{})
package hidef
